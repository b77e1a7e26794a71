package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

const (
	defaultReconnectMin = time.Second
	defaultReconnectMax = 30 * time.Second
	defaultReadLimit    = 2 << 20
)

// depthMessage is the wire format of one depth snapshot. Levels are
// [price, size] string pairs, best price first.
type depthMessage struct {
	Type string     `json:"type"`
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
	Mark string     `json:"mark,omitempty"`
}

type FeedOption func(*Feed)

// WithSubscribe sends the given payload right after every (re)connect,
// for venues that require an explicit subscription message.
func WithSubscribe(payload interface{}) FeedOption {
	return func(f *Feed) {
		f.subscribe = payload
	}
}

func WithReconnectBackoff(minBackoff, maxBackoff time.Duration) FeedOption {
	return func(f *Feed) {
		f.reconnectMin = minBackoff
		f.reconnectMax = maxBackoff
	}
}

// Feed streams depth snapshots from a websocket venue into a Book. It
// reconnects with exponential backoff and only gives up when the context
// is cancelled.
type Feed struct {
	url       string
	book      *Book
	subscribe interface{}

	reconnectMin time.Duration
	reconnectMax time.Duration
}

func NewFeed(url string, book *Book, options ...FeedOption) *Feed {
	f := &Feed{
		url:          url,
		book:         book,
		reconnectMin: defaultReconnectMin,
		reconnectMax: defaultReconnectMax,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Run blocks until ctx is cancelled, maintaining the connection and
// applying every snapshot to the book.
func (f *Feed) Run(ctx context.Context) error {
	backoff := f.reconnectMin

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
		if err != nil {
			slog.Warn("unable to connect market data feed", "url", f.url, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, f.reconnectMax)
			continue
		}

		slog.Info("market data feed connected", "url", f.url)
		backoff = f.reconnectMin

		if err := f.consume(ctx, conn); err != nil {
			slog.Warn("market data feed disconnected", "error", err)
		}
		_ = conn.Close()
	}
}

func (f *Feed) consume(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(defaultReadLimit)

	if f.subscribe != nil {
		if err := conn.WriteJSON(f.subscribe); err != nil {
			return fmt.Errorf("unable to subscribe: %w", err)
		}
	}

	// Unblock the read when the context goes away.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-readDone:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var msg depthMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("unable to parse market data message", "error", err)
			continue
		}
		if msg.Type != "depth" {
			continue
		}

		if err := f.apply(msg); err != nil {
			slog.Warn("unable to apply depth snapshot", "error", err)
		}
	}
}

func (f *Feed) apply(msg depthMessage) error {
	bidLevels, err := parseLevels(msg.Bids)
	if err != nil {
		return fmt.Errorf("bad bid levels: %w", err)
	}
	askLevels, err := parseLevels(msg.Asks)
	if err != nil {
		return fmt.Errorf("bad ask levels: %w", err)
	}

	markPrice := fixed.Zero
	if msg.Mark != "" {
		if markPrice, err = fixed.Parse(msg.Mark); err != nil {
			return fmt.Errorf("bad mark price: %w", err)
		}
	}

	f.book.ApplySnapshot(bidLevels, askLevels, markPrice)
	return nil
}

func parseLevels(raw [][]string) ([]common.BookLevel, error) {
	levels := make([]common.BookLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("level must be a [price, size] pair, got %d fields", len(pair))
		}
		price, err := fixed.Parse(pair[0])
		if err != nil {
			return nil, err
		}
		size, err := fixed.Parse(pair[1])
		if err != nil {
			return nil, err
		}
		levels = append(levels, common.BookLevel{Price: price, Size: size})
	}
	return levels, nil
}
