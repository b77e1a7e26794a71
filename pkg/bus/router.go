package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paperdex/paperdex/pkg/common"
)

type event struct {
	id   EventId
	data interface{}
}

// Router is a bounded single-consumer event channel. Producers Post from any
// goroutine; one goroutine runs Exec and dispatches to the configured
// handlers. A nil handler drops the event.
type Router struct {
	// Channels
	done   chan error
	events chan event

	// Handlers
	BalanceHandler       BalanceEventHandler
	EquityHandler        EquityEventHandler
	OrderAcceptedHandler OrderAcceptedEventHandler
	OrderRejectedHandler OrderRejectedEventHandler
	OrderFilledHandler   OrderFilledEventHandler
	TradeOpenHandler     TradeOpenEventHandler
	TradeCloseHandler    TradeCloseEventHandler

	// Statistics
	runTime       time.Duration
	postCount     uint64
	postFails     uint64
	dispatchCount uint64
	dispatchFails uint64
}

func NewRouter(eventCapacity int) *Router {
	return &Router{
		done:   make(chan error),
		events: make(chan event, eventCapacity),
	}
}

func (r *Router) Post(id EventId, data interface{}) error {
	select {
	case r.events <- event{id, data}:
		r.postCount++
		return nil
	default:
		r.postFails++
		return errors.New("event capacity reached")
	}
}

func (r *Router) Exec(ctx context.Context) {

	r.runTime = 0
	r.dispatchCount = 0
	r.dispatchFails = 0
	r.postCount = 0
	r.postFails = 0

	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			r.done <- ctx.Err()
			return
		case ev := <-r.events:
			r.dispatchCount++
			if err := r.dispatch(ctx, ev); err != nil {
				r.dispatchFails++
				slog.Warn("dispatch failed", "error", err, "event", ev)
			}
		}
	}
}

func (r *Router) Done() <-chan error {
	return r.done
}

func (r *Router) PrintStatistics() {
	slog.Info("router statistics",
		"run_time", r.runTime,
		"post_count", r.postCount,
		"post_fails", r.postFails,
		"dispatch_count", r.dispatchCount,
		"dispatch_fails", r.dispatchFails)
}

func (r *Router) dispatch(ctx context.Context, ev event) error {
	switch ev.id {
	case BalanceEvent:
		balance, ok := ev.data.(common.Balance)
		if !ok {
			return errors.New("invalid type assertion for balance event")
		}
		if r.BalanceHandler != nil {
			r.BalanceHandler(ctx, balance)
		}
	case EquityEvent:
		equity, ok := ev.data.(common.Equity)
		if !ok {
			return errors.New("invalid type assertion for equity event")
		}
		if r.EquityHandler != nil {
			r.EquityHandler(ctx, equity)
		}
	case OrderAcceptedEvent:
		accepted, ok := ev.data.(common.OrderAccepted)
		if !ok {
			return errors.New("invalid type assertion for order accepted event")
		}
		if r.OrderAcceptedHandler != nil {
			r.OrderAcceptedHandler(ctx, accepted)
		}
	case OrderRejectedEvent:
		rejected, ok := ev.data.(common.OrderRejected)
		if !ok {
			return errors.New("invalid type assertion for order rejected event")
		}
		if r.OrderRejectedHandler != nil {
			r.OrderRejectedHandler(ctx, rejected)
		}
	case OrderFilledEvent:
		filled, ok := ev.data.(common.OrderFilled)
		if !ok {
			return errors.New("invalid type assertion for order filled event")
		}
		if r.OrderFilledHandler != nil {
			r.OrderFilledHandler(ctx, filled)
		}
	case TradeOpenEvent:
		trade, ok := ev.data.(common.TradeRecord)
		if !ok {
			return errors.New("invalid type assertion for trade open event")
		}
		if r.TradeOpenHandler != nil {
			r.TradeOpenHandler(ctx, trade)
		}
	case TradeCloseEvent:
		trade, ok := ev.data.(common.TradeRecord)
		if !ok {
			return errors.New("invalid type assertion for trade close event")
		}
		if r.TradeCloseHandler != nil {
			r.TradeCloseHandler(ctx, trade)
		}
	default:
		return fmt.Errorf("unsupported event id: %v", ev.id)
	}
	return nil
}
