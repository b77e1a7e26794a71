package middleware

import (
	"context"
	"log/slog"

	"github.com/paperdex/paperdex/pkg/bus"
	"github.com/paperdex/paperdex/pkg/common"
)

type MonitorFlags uint16

const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorBalance
	MonitorEquity
	MonitorOrdersAccepted
	MonitorOrdersRejected
	MonitorOrdersFilled
	MonitorTradesOpened
	MonitorTradesClosed
)

// Monitor logs the events selected by its flags before passing them on.
type Monitor struct {
	flags MonitorFlags
}

func NewMonitor(flags MonitorFlags) *Monitor {
	return &Monitor{
		flags: flags,
	}
}

func (m *Monitor) WithBalance(handler bus.BalanceEventHandler) bus.BalanceEventHandler {
	return func(ctx context.Context, balance common.Balance) {
		if m.flags&MonitorBalance != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "balance", balance)
		}
		handler(ctx, balance)
	}
}

func (m *Monitor) WithEquity(handler bus.EquityEventHandler) bus.EquityEventHandler {
	return func(ctx context.Context, equity common.Equity) {
		if m.flags&MonitorEquity != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "equity", equity)
		}
		handler(ctx, equity)
	}
}

func (m *Monitor) WithOrderAccepted(handler bus.OrderAcceptedEventHandler) bus.OrderAcceptedEventHandler {
	return func(ctx context.Context, accepted common.OrderAccepted) {
		if m.flags&MonitorOrdersAccepted != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "order_accepted", accepted)
		}
		handler(ctx, accepted)
	}
}

func (m *Monitor) WithOrderRejected(handler bus.OrderRejectedEventHandler) bus.OrderRejectedEventHandler {
	return func(ctx context.Context, rejected common.OrderRejected) {
		if m.flags&MonitorOrdersRejected != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "order_rejected", rejected)
		}
		handler(ctx, rejected)
	}
}

func (m *Monitor) WithOrderFilled(handler bus.OrderFilledEventHandler) bus.OrderFilledEventHandler {
	return func(ctx context.Context, filled common.OrderFilled) {
		if m.flags&MonitorOrdersFilled != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "order_filled", filled)
		}
		handler(ctx, filled)
	}
}

func (m *Monitor) WithTradeOpen(handler bus.TradeOpenEventHandler) bus.TradeOpenEventHandler {
	return func(ctx context.Context, trade common.TradeRecord) {
		if m.flags&MonitorTradesOpened != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "trade_open", trade)
		}
		handler(ctx, trade)
	}
}

func (m *Monitor) WithTradeClose(handler bus.TradeCloseEventHandler) bus.TradeCloseEventHandler {
	return func(ctx context.Context, trade common.TradeRecord) {
		if m.flags&MonitorTradesClosed != 0 || m.flags&MonitorAll != 0 {
			slog.Info("event", "trade_close", trade)
		}
		handler(ctx, trade)
	}
}
