// Package exchange defines the order execution surface strategies trade
// against, together with the market data view executions are priced from.
package exchange

import (
	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/portfolio"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

// Exchange is the venue-facing API. Implementations must be safe for
// concurrent use; a strategy goroutine and a monitoring goroutine will call
// into it at the same time.
type Exchange interface {
	PlaceLimitOrder(side common.OrderSide, size, price fixed.Point, reduceOnly bool) (common.Order, error)
	ModifyLimitOrder(id string, side common.OrderSide, size, price fixed.Point, reduceOnly bool) (common.Order, error)
	PlaceMarketOrder(side common.OrderSide, size fixed.Point, reduceOnly bool) (common.Fill, error)

	CancelAllOrders() int
	CloseAllPositions() error

	// CriticalCloseAll cancels every resting order, flattens every position
	// and permanently stops the venue. Safe to call more than once.
	CriticalCloseAll() error

	Balance() fixed.Point
	Equity() fixed.Point
	OpenOrders() []common.Order
	OpenPositions() []common.Position
	Statistics() portfolio.Statistics
}

// MarketData is a point-in-time view of the traded book. Implementations
// return copies; callers may hold the slices across calls.
type MarketData interface {
	BestBid() fixed.Point
	BestAsk() fixed.Point
	BidLevels() []common.BookLevel
	AskLevels() []common.BookLevel
	MarkPrice() fixed.Point
}
