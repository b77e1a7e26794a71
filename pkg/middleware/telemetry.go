package middleware

import (
	"context"

	"go.uber.org/zap"

	"github.com/paperdex/paperdex/pkg/bus"
	"github.com/paperdex/paperdex/pkg/common"
)

// Telemetry counts events as they flow through the bus dispatch goroutine.
// Counters are plain ints; the dispatch loop is the only writer.
type Telemetry struct {
	logger *zap.Logger

	balanceEventCounter       int64
	equityEventCounter        int64
	orderAcceptedEventCounter int64
	orderRejectedEventCounter int64
	orderFilledEventCounter   int64
	tradeOpenEventCounter     int64
	tradeCloseEventCounter    int64
}

func NewTelemetry(logger *zap.Logger) *Telemetry {
	return &Telemetry{
		logger: logger,
	}
}

func (t *Telemetry) WithBalance(handler bus.BalanceEventHandler) bus.BalanceEventHandler {
	return func(ctx context.Context, balance common.Balance) {
		t.balanceEventCounter++
		handler(ctx, balance)
	}
}

func (t *Telemetry) WithEquity(handler bus.EquityEventHandler) bus.EquityEventHandler {
	return func(ctx context.Context, equity common.Equity) {
		t.equityEventCounter++
		handler(ctx, equity)
	}
}

func (t *Telemetry) WithOrderAccepted(handler bus.OrderAcceptedEventHandler) bus.OrderAcceptedEventHandler {
	return func(ctx context.Context, accepted common.OrderAccepted) {
		t.orderAcceptedEventCounter++
		handler(ctx, accepted)
	}
}

func (t *Telemetry) WithOrderRejected(handler bus.OrderRejectedEventHandler) bus.OrderRejectedEventHandler {
	return func(ctx context.Context, rejected common.OrderRejected) {
		t.orderRejectedEventCounter++
		handler(ctx, rejected)
	}
}

func (t *Telemetry) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, filled common.OrderFilled) {
		t.orderFilledEventCounter++
		handler(ctx, filled)
	}
}

func (t *Telemetry) WithTradeOpen(handler bus.TradeOpenEventHandler) bus.TradeOpenEventHandler {
	return func(ctx context.Context, trade common.TradeRecord) {
		t.tradeOpenEventCounter++
		handler(ctx, trade)
	}
}

func (t *Telemetry) WithTradeClose(handler bus.TradeCloseEventHandler) bus.TradeCloseEventHandler {
	return func(ctx context.Context, trade common.TradeRecord) {
		t.tradeCloseEventCounter++
		handler(ctx, trade)
	}
}

func (t *Telemetry) PrintStatistics() {
	t.logger.Info("event statistics",
		zap.Int64("balance_events", t.balanceEventCounter),
		zap.Int64("equity_events", t.equityEventCounter),
		zap.Int64("order_accepted_events", t.orderAcceptedEventCounter),
		zap.Int64("order_rejected_events", t.orderRejectedEventCounter),
		zap.Int64("order_filled_events", t.orderFilledEventCounter),
		zap.Int64("trade_open_events", t.tradeOpenEventCounter),
		zap.Int64("trade_close_events", t.tradeCloseEventCounter))
}
