package bus

import (
	"context"

	"github.com/paperdex/paperdex/pkg/common"
)

type EventHandler[T any] = func(context.Context, T)

type BalanceEventHandler EventHandler[common.Balance]
type EquityEventHandler EventHandler[common.Equity]
type OrderAcceptedEventHandler EventHandler[common.OrderAccepted]
type OrderRejectedEventHandler EventHandler[common.OrderRejected]
type OrderFilledEventHandler EventHandler[common.OrderFilled]
type TradeOpenEventHandler EventHandler[common.TradeRecord]
type TradeCloseEventHandler EventHandler[common.TradeRecord]

func MergeHandlers[T any](handlers ...EventHandler[T]) EventHandler[T] {
	return func(ctx context.Context, event T) {
		for _, handler := range handlers {
			handler(ctx, event)
		}
	}
}
