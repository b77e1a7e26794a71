package middleware

import (
	"context"

	"github.com/paperdex/paperdex/pkg/common"
)

//goland:noinspection ALL
var (
	NoopBalanceHdl   = func(context.Context, common.Balance) {}
	NoopEquityHdl    = func(context.Context, common.Equity) {}
	NoopOrderAccHdl  = func(context.Context, common.OrderAccepted) {}
	NoopOrderRjctHdl = func(context.Context, common.OrderRejected) {}
	NoopOrderFillHdl = func(context.Context, common.OrderFilled) {}
	NoopTradeOpnHdl  = func(context.Context, common.TradeRecord) {}
	NoopTradeClsHdl  = func(context.Context, common.TradeRecord) {}
)
