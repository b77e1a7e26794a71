package common

import (
	"time"

	"github.com/paperdex/paperdex/pkg/utility"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

type OrderSide int
type OrderType int

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
)

func (s OrderSide) String() string {
	if s == OrderSideBuy {
		return "BUY"
	}
	return "SELL"
}

func (t OrderType) String() string {
	if t == OrderTypeMarket {
		return "MARKET"
	}
	return "LIMIT"
}

// Opposite returns the side a fill on s trades against.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// Order is a resting simulated order. Market orders never rest; they are
// executed synchronously and only appear inside fill events.
type Order struct {
	Id         string      `json:"id"`
	Type       OrderType   `json:"type"`
	Side       OrderSide   `json:"side"`
	Price      fixed.Point `json:"price"`
	Size       fixed.Point `json:"size"`
	ReduceOnly bool        `json:"reduce_only"`
	CreatedAt  time.Time   `json:"created_at"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderAccepted struct {
	OriginalOrder Order `json:"original_order"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderRejected struct {
	OriginalOrder Order  `json:"original_order"`
	Reason        string `json:"reason,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderFilled struct {
	OriginalOrder Order `json:"original_order"`
	Fill          Fill  `json:"fill"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}
