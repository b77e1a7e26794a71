package common

import (
	"time"

	"github.com/paperdex/paperdex/pkg/utility"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

type PositionSide int

const (
	PositionSideLong PositionSide = iota
	PositionSideShort
)

func (s PositionSide) String() string {
	if s == PositionSideLong {
		return "LONG"
	}
	return "SHORT"
}

func (s PositionSide) Opposite() PositionSide {
	if s == PositionSideLong {
		return PositionSideShort
	}
	return PositionSideLong
}

// PositionSideOf maps an order side onto the position slot it accumulates
// into: buys build the long slot, sells the short slot.
func PositionSideOf(side OrderSide) PositionSide {
	if side == OrderSideBuy {
		return PositionSideLong
	}
	return PositionSideShort
}

// Position is one of the two directional slots of the virtual portfolio.
// A slot with zero size does not exist as an entity; it is removed instead.
type Position struct {
	Side       PositionSide `json:"side"`
	Size       fixed.Point  `json:"size"`
	EntryPrice fixed.Point  `json:"entry_price"`
	CreatedAt  time.Time    `json:"created_at"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}
