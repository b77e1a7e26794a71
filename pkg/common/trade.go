package common

import (
	"time"

	"github.com/paperdex/paperdex/pkg/utility"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

// TradeRecord is the structured open/close event handed to trade-log sinks.
// PositionSize is the size of the affected position slot after the fill was
// applied; RealizedPnl is zero for opening fills.
type TradeRecord struct {
	Side         OrderSide   `json:"side"`
	Type         OrderType   `json:"type"`
	Price        fixed.Point `json:"price"`
	Size         fixed.Point `json:"size"`
	Fee          fixed.Point `json:"fee"`
	RealizedPnl  fixed.Point `json:"realized_pnl"`
	Balance      fixed.Point `json:"balance"`
	PositionSize fixed.Point `json:"position_size"`
	Maker        bool        `json:"maker"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}
