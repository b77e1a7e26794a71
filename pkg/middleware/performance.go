package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/paperdex/paperdex/pkg/bus"
	"github.com/paperdex/paperdex/pkg/common"
)

// Performance accumulates time spent inside downstream handlers, per event
// kind. Like Telemetry it relies on the single dispatch goroutine.
type Performance struct {
	logger *zap.Logger

	totalBalanceHandlerDur   time.Duration
	totalEquityHandlerDur    time.Duration
	totalOrderAccHandlerDur  time.Duration
	totalOrderRjctHandlerDur time.Duration
	totalOrderFillHandlerDur time.Duration
	totalTradeOpnHandlerDur  time.Duration
	totalTradeClsHandlerDur  time.Duration
}

func NewPerformance(logger *zap.Logger) *Performance {
	return &Performance{
		logger: logger,
	}
}

func (p *Performance) WithBalance(handler bus.BalanceEventHandler) bus.BalanceEventHandler {
	return func(ctx context.Context, balance common.Balance) {
		startTime := time.Now()
		handler(ctx, balance)
		p.totalBalanceHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithEquity(handler bus.EquityEventHandler) bus.EquityEventHandler {
	return func(ctx context.Context, equity common.Equity) {
		startTime := time.Now()
		handler(ctx, equity)
		p.totalEquityHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithOrderAccepted(handler bus.OrderAcceptedEventHandler) bus.OrderAcceptedEventHandler {
	return func(ctx context.Context, accepted common.OrderAccepted) {
		startTime := time.Now()
		handler(ctx, accepted)
		p.totalOrderAccHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithOrderRejected(handler bus.OrderRejectedEventHandler) bus.OrderRejectedEventHandler {
	return func(ctx context.Context, rejected common.OrderRejected) {
		startTime := time.Now()
		handler(ctx, rejected)
		p.totalOrderRjctHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, filled common.OrderFilled) {
		startTime := time.Now()
		handler(ctx, filled)
		p.totalOrderFillHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithTradeOpen(handler bus.TradeOpenEventHandler) bus.TradeOpenEventHandler {
	return func(ctx context.Context, trade common.TradeRecord) {
		startTime := time.Now()
		handler(ctx, trade)
		p.totalTradeOpnHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) WithTradeClose(handler bus.TradeCloseEventHandler) bus.TradeCloseEventHandler {
	return func(ctx context.Context, trade common.TradeRecord) {
		startTime := time.Now()
		handler(ctx, trade)
		p.totalTradeClsHandlerDur += time.Since(startTime)
	}
}

func (p *Performance) PrintStatistics() {
	p.logger.Info("handler performance",
		zap.Duration("balance_handlers", p.totalBalanceHandlerDur),
		zap.Duration("equity_handlers", p.totalEquityHandlerDur),
		zap.Duration("order_accepted_handlers", p.totalOrderAccHandlerDur),
		zap.Duration("order_rejected_handlers", p.totalOrderRjctHandlerDur),
		zap.Duration("order_filled_handlers", p.totalOrderFillHandlerDur),
		zap.Duration("trade_open_handlers", p.totalTradeOpnHandlerDur),
		zap.Duration("trade_close_handlers", p.totalTradeClsHandlerDur))
}
