// Package marketdata maintains the live order-book view the paper venue
// prices against.
package marketdata

import (
	"sync"

	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

// Book is a point-in-time snapshot of one instrument's depth, replaced
// wholesale on every feed update. Readers always see a complete snapshot,
// never a half-applied one.
type Book struct {
	mu sync.RWMutex

	bidLevels []common.BookLevel
	askLevels []common.BookLevel
	markPrice fixed.Point
}

func NewBook() *Book {
	return &Book{}
}

// ApplySnapshot replaces the current depth. Levels must arrive best-price
// first; an empty side is legal and renders the book unusable for pricing
// until the next snapshot.
func (b *Book) ApplySnapshot(bidLevels, askLevels []common.BookLevel, markPrice fixed.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bidLevels = bidLevels
	b.askLevels = askLevels
	b.markPrice = markPrice
}

func (b *Book) BestBid() fixed.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.bidLevels) == 0 {
		return fixed.Zero
	}
	return b.bidLevels[0].Price
}

func (b *Book) BestAsk() fixed.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.askLevels) == 0 {
		return fixed.Zero
	}
	return b.askLevels[0].Price
}

func (b *Book) BidLevels() []common.BookLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := make([]common.BookLevel, len(b.bidLevels))
	copy(levels, b.bidLevels)
	return levels
}

func (b *Book) AskLevels() []common.BookLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := make([]common.BookLevel, len(b.askLevels))
	copy(levels, b.askLevels)
	return levels
}

// MarkPrice returns the feed's mark price, falling back to the mid price
// when the feed does not carry one.
func (b *Book) MarkPrice() fixed.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.markPrice.IsZero() {
		return b.markPrice
	}
	if len(b.bidLevels) == 0 || len(b.askLevels) == 0 {
		return fixed.Zero
	}
	return b.bidLevels[0].Price.Add(b.askLevels[0].Price).DivInt(2)
}
