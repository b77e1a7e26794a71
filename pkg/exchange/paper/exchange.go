// Package paper implements a virtual exchange venue. Orders are accepted
// and filled against live market data without any funds leaving the
// account; the API mirrors a live venue so strategies cannot tell the
// difference.
package paper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paperdex/paperdex/pkg/bus"
	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/exchange"
	"github.com/paperdex/paperdex/pkg/journal"
	"github.com/paperdex/paperdex/pkg/portfolio"
	"github.com/paperdex/paperdex/pkg/simulator"
	"github.com/paperdex/paperdex/pkg/utility"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

const (
	componentName = "exchange.paper"

	defaultPollInterval  = 50 * time.Millisecond
	defaultErrorCooldown = time.Second
	defaultFillDelay     = 100 * time.Millisecond
)

var (
	// ErrInsufficientMargin rejects an order whose required margin exceeds
	// the free margin. A normal control-flow outcome, not a fault.
	ErrInsufficientMargin = errors.New("insufficient margin")

	// ErrNoMarketData rejects a market order while the book has no bid or
	// no ask to price against.
	ErrNoMarketData = errors.New("no market data")

	// ErrOrderNotFound signals a modify referencing an unknown order id.
	ErrOrderNotFound = errors.New("order not found")
)

// Exchange is the paper venue. Strategy goroutines call the order API
// directly while a background monitor re-evaluates resting limit orders
// against the book; a single fill mutex keeps each logical fill atomic
// across fee, position and trade-statistics updates.
type Exchange struct {
	router    *bus.Router
	market    exchange.MarketData
	simulator *simulator.Simulator
	tracker   *portfolio.Tracker
	journal   journal.Journal

	pollInterval     time.Duration
	errorCooldown    time.Duration
	fillDelay        time.Duration
	simulatorOptions []simulator.Option

	fillMu sync.Mutex

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

var _ exchange.Exchange = (*Exchange)(nil)

func NewExchange(router *bus.Router, market exchange.MarketData, initialBalance fixed.Point, maxLeverage int64, options ...Option) *Exchange {
	e := &Exchange{
		router:        router,
		market:        market,
		journal:       journal.Noop{},
		pollInterval:  defaultPollInterval,
		errorCooldown: defaultErrorCooldown,
		fillDelay:     defaultFillDelay,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}

	for _, option := range options {
		option(e)
	}

	e.simulator = simulator.NewSimulator(e.fillDelay, e.simulatorOptions...)
	e.tracker = portfolio.NewTracker(initialBalance, maxLeverage)
	return e
}

// Start launches the background order monitor. Subsequent calls are no-ops.
func (e *Exchange) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		e.started.Store(true)
		go e.monitor(ctx)
	})
}

// PlaceLimitOrder accepts a resting limit order. Acceptance is immediate;
// the order fills later through the monitor once the book allows it.
func (e *Exchange) PlaceLimitOrder(side common.OrderSide, size, price fixed.Point, reduceOnly bool) (common.Order, error) {
	order := e.newOrder(common.OrderTypeLimit, side, size, price, reduceOnly)

	if !reduceOnly {
		mark := e.market.MarkPrice()
		if mark.IsZero() {
			mark = price
		}
		if !e.tracker.CanOpenPosition(size, price, mark) {
			e.postRejection(order, "insufficient margin")
			return common.Order{}, ErrInsufficientMargin
		}
	}

	e.tracker.AddOrder(order)
	e.post(bus.OrderAcceptedEvent, common.OrderAccepted{
		OriginalOrder: order,
		Source:        componentName,
		ExecutionId:   utility.GetExecutionID(),
		TraceID:       utility.CreateTraceID(),
		TimeStamp:     time.Now(),
	})

	slog.Info("limit order placed",
		"id", order.Id, "side", side.String(), "size", size.String(), "price", price.String())
	return order, nil
}

// ModifyLimitOrder is cancel+replace under the same id: the resting order
// is removed and a fresh order with the new terms takes over its id.
func (e *Exchange) ModifyLimitOrder(id string, side common.OrderSide, size, price fixed.Point, reduceOnly bool) (common.Order, error) {
	if _, ok := e.tracker.RemoveOrder(id); !ok {
		return common.Order{}, ErrOrderNotFound
	}

	order := e.newOrder(common.OrderTypeLimit, side, size, price, reduceOnly)
	order.Id = id
	e.tracker.AddOrder(order)

	slog.Debug("limit order modified",
		"id", id, "side", side.String(), "size", size.String(), "price", price.String())
	return order, nil
}

// PlaceMarketOrder executes synchronously against the current book after
// the simulated latency. Market orders always fill in full.
func (e *Exchange) PlaceMarketOrder(side common.OrderSide, size fixed.Point, reduceOnly bool) (common.Fill, error) {
	order := e.newOrder(common.OrderTypeMarket, side, size, fixed.Zero, reduceOnly)

	bidLevels := e.market.BidLevels()
	askLevels := e.market.AskLevels()
	if len(bidLevels) == 0 || len(askLevels) == 0 {
		e.postRejection(order, "no market data")
		return common.Fill{}, ErrNoMarketData
	}
	bestBid := bidLevels[0].Price
	bestAsk := askLevels[0].Price

	if !reduceOnly {
		referencePrice := bestAsk
		if side == common.OrderSideSell {
			referencePrice = bestBid
		}
		mark := e.market.MarkPrice()
		if mark.IsZero() {
			mark = bestBid.Add(bestAsk).DivInt(2)
		}
		if !e.tracker.CanOpenPosition(size, referencePrice, mark) {
			e.postRejection(order, "insufficient margin")
			return common.Fill{}, ErrInsufficientMargin
		}
	}

	time.Sleep(e.simulator.FillDelay())

	avgPrice, filledSize := e.simulator.SimulateMarketFill(side, size, bestBid, bestAsk, bidLevels, askLevels)
	fill := common.Fill{Price: avgPrice, Size: filledSize, Maker: false}
	e.applyFill(order, fill)

	slog.Info("market order executed",
		"side", side.String(), "size", filledSize.String(), "price", avgPrice.String())
	return fill, nil
}

func (e *Exchange) CancelAllOrders() int {
	count := e.tracker.RemoveAllOrders()
	slog.Info("cancelled all orders", "count", count)
	return count
}

// CloseAllPositions flattens both slots with reduce-only market orders.
// Position closes are attempted independently; the joined error reports
// any that could not be executed.
func (e *Exchange) CloseAllPositions() error {
	var errs []error
	for _, position := range e.tracker.OpenPositions() {
		side := common.OrderSideSell
		if position.Side == common.PositionSideShort {
			side = common.OrderSideBuy
		}
		if _, err := e.PlaceMarketOrder(side, position.Size, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CriticalCloseAll is the terminal shutdown path: cancel orders, flatten
// positions, stop the monitor and wait it out, then finalize the trade
// log. Only the first call does work.
func (e *Exchange) CriticalCloseAll() error {
	var err error
	e.stopOnce.Do(func() {
		slog.Warn("critical close, cancelling all orders and closing positions")

		e.CancelAllOrders()
		closeErr := e.CloseAllPositions()

		close(e.stop)
		if e.started.Load() {
			<-e.done
		}

		err = errors.Join(closeErr, e.journal.Close())
		slog.Info("paper trading session ended", "balance", e.tracker.Balance().String())
	})
	return err
}

func (e *Exchange) Balance() fixed.Point {
	return e.tracker.Balance()
}

func (e *Exchange) Equity() fixed.Point {
	return e.tracker.Equity(e.market.MarkPrice())
}

func (e *Exchange) OpenOrders() []common.Order {
	return e.tracker.OpenOrders()
}

func (e *Exchange) OpenPositions() []common.Position {
	return e.tracker.OpenPositions()
}

func (e *Exchange) Statistics() portfolio.Statistics {
	return e.tracker.Statistics(e.market.MarkPrice())
}

func (e *Exchange) monitor(ctx context.Context) {
	defer close(e.done)
	slog.Info("order monitoring started")
	defer slog.Info("order monitoring stopped")

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-ticker.C:
			if err := e.pollOnce(); err != nil {
				slog.Error("order monitoring iteration failed", "error", err)
				select {
				case <-time.After(e.errorCooldown):
				case <-ctx.Done():
					return
				case <-e.stop:
					return
				}
			}
		}
	}
}

// pollOnce re-evaluates every resting order against the current book. An
// empty book is the wait-and-retry branch, not an error. Fixed-point
// arithmetic panics on overflow, so a poisoned book snapshot is caught
// here and surfaced as an error; it costs one iteration, not the loop.
func (e *Exchange) pollOnce() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("iteration panicked: %v", r)
		}
	}()

	bidLevels := e.market.BidLevels()
	askLevels := e.market.AskLevels()
	if len(bidLevels) == 0 || len(askLevels) == 0 {
		return nil
	}
	bestBid := bidLevels[0].Price
	bestAsk := askLevels[0].Price

	for _, order := range e.tracker.OpenOrders() {
		fill, ok := e.simulator.CheckLimitFill(order, bestBid, bestAsk, bidLevels, askLevels)
		if !ok {
			continue
		}

		// Claim the order before sleeping so a concurrent cancel or a
		// second evaluation cannot fill it twice.
		if _, ok := e.tracker.RemoveOrder(order.Id); !ok {
			continue
		}

		time.Sleep(e.simulator.FillDelay())
		e.applyFill(order, fill)

		maker := "taker"
		if fill.Maker {
			maker = "maker"
		}
		slog.Info("limit order filled",
			"id", order.Id, "side", order.Side.String(),
			"size", fill.Size.String(), "price", fill.Price.String(), "liquidity", maker)
	}
	return nil
}

// applyFill runs the close-then-open position-update procedure for one
// fill. Everything between lock and unlock lands atomically: the fee, the
// realized pnl, the slot updates and the trade statistics. A fill that
// exceeds the opposite slot both flattens it and opens the remainder on
// the fill's own side.
func (e *Exchange) applyFill(order common.Order, fill common.Fill) {
	e.fillMu.Lock()
	defer e.fillMu.Unlock()

	fee := e.simulator.Fee(fill.Price, fill.Size, fill.Maker)
	e.tracker.ApplyFee(fee)

	impliedSide := common.PositionSideOf(order.Side)
	oppositeSide := impliedSide.Opposite()
	remaining := fill.Size
	recordedFee := fee

	if opposite, ok := e.tracker.Position(oppositeSide); ok {
		closeSize := fixed.Min(remaining, opposite.Size)
		realizedPnl := e.simulator.RealizedPnl(
			opposite.EntryPrice, fill.Price, closeSize, oppositeSide == common.PositionSideLong)

		newSize := opposite.Size.Sub(closeSize)
		e.tracker.UpdatePosition(oppositeSide, newSize, opposite.EntryPrice, realizedPnl)
		e.tracker.RecordTrade(realizedPnl.IsPos())
		remaining = remaining.Sub(closeSize)

		e.emitTrade(bus.TradeCloseEvent, order, fill, closeSize, recordedFee, realizedPnl, newSize)
		recordedFee = fixed.Zero
	}

	if remaining.IsPos() {
		entryPrice := fill.Price
		newSize := remaining
		if current, ok := e.tracker.Position(impliedSide); ok {
			newSize = current.Size.Add(remaining)
			entryPrice = current.EntryPrice.Mul(current.Size).Add(fill.Price.Mul(remaining)).Div(newSize)
		}
		e.tracker.UpdatePosition(impliedSide, newSize, entryPrice, fixed.Zero)

		e.emitTrade(bus.TradeOpenEvent, order, fill, remaining, recordedFee, fixed.Zero, newSize)
	}

	now := time.Now()
	e.post(bus.OrderFilledEvent, common.OrderFilled{
		OriginalOrder: order,
		Fill:          fill,
		Source:        componentName,
		ExecutionId:   utility.GetExecutionID(),
		TraceID:       utility.CreateTraceID(),
		TimeStamp:     now,
	})
	e.post(bus.BalanceEvent, common.Balance{
		Source:      componentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   now,
		Value:       e.tracker.Balance(),
	})
	e.post(bus.EquityEvent, common.Equity{
		Source:      componentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   now,
		Value:       e.tracker.Equity(e.market.MarkPrice()),
	})
}

func (e *Exchange) emitTrade(event bus.EventId, order common.Order, fill common.Fill, size, fee, realizedPnl, positionSize fixed.Point) {
	record := common.TradeRecord{
		Side:         order.Side,
		Type:         order.Type,
		Price:        fill.Price,
		Size:         size,
		Fee:          fee,
		RealizedPnl:  realizedPnl,
		Balance:      e.tracker.Balance(),
		PositionSize: positionSize,
		Maker:        fill.Maker,
		Source:       componentName,
		ExecutionId:  utility.GetExecutionID(),
		TraceID:      utility.CreateTraceID(),
		TimeStamp:    time.Now(),
	}

	e.post(event, record)
	if err := e.journal.Record(record); err != nil {
		slog.Warn("unable to record trade", "error", err)
	}
}

func (e *Exchange) newOrder(orderType common.OrderType, side common.OrderSide, size, price fixed.Point, reduceOnly bool) common.Order {
	now := time.Now()
	return common.Order{
		Id:          utility.CreateOrderID(),
		Type:        orderType,
		Side:        side,
		Price:       price,
		Size:        size,
		ReduceOnly:  reduceOnly,
		CreatedAt:   now,
		Source:      componentName,
		ExecutionId: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   now,
	}
}

func (e *Exchange) post(event bus.EventId, payload interface{}) {
	if err := e.router.Post(event, payload); err != nil {
		slog.Warn("unable to post event", "event", event, "error", err)
	}
}

func (e *Exchange) postRejection(order common.Order, reason string) {
	e.post(bus.OrderRejectedEvent, common.OrderRejected{
		OriginalOrder: order,
		Reason:        reason,
		Source:        componentName,
		ExecutionId:   utility.GetExecutionID(),
		TraceID:       utility.CreateTraceID(),
		TimeStamp:     time.Now(),
	})
}
