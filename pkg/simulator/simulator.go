package simulator

import (
	"math/rand/v2"
	"time"

	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

// Default fee schedule, Paradex-like. Maker rate is a rebate.
var (
	DefaultMakerFeeRate = fixed.FromFloat64(-0.0002)
	DefaultTakerFeeRate = fixed.FromFloat64(0.0005)
)

var (
	emptyBookBuySlippage  = fixed.FromFloat64(1.01)
	emptyBookSellSlippage = fixed.FromFloat64(0.99)
	exhaustedBuySlippage  = fixed.FromFloat64(1.02)
	exhaustedSellSlippage = fixed.FromFloat64(0.98)
)

const (
	// A market order consumes at most this many book levels before the
	// remainder is priced with the exhausted-book slippage factor.
	maxWalkLevels = 10

	minFillDelay    = 10 * time.Millisecond
	fillDelayJitter = 20 // +/- milliseconds
)

// Simulator decides whether and how orders execute against a book snapshot.
// It holds no mutable state; every call is deterministic given its inputs,
// except FillDelay which carries a bounded random jitter.
type Simulator struct {
	makerFeeRate fixed.Point
	takerFeeRate fixed.Point
	fillDelay    time.Duration
}

type Option func(*Simulator)

func WithFeeRates(makerRate, takerRate fixed.Point) Option {
	return func(s *Simulator) {
		s.makerFeeRate = makerRate
		s.takerFeeRate = takerRate
	}
}

func NewSimulator(fillDelay time.Duration, options ...Option) *Simulator {
	s := &Simulator{
		makerFeeRate: DefaultMakerFeeRate,
		takerFeeRate: DefaultTakerFeeRate,
		fillDelay:    fillDelay,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// CheckLimitFill decides whether a resting limit order would execute against
// the given snapshot. Maker fills execute at the order price; taker fills are
// clamped to the touch. Fill size is capped by counter-side liquidity
// at-or-better than the limit price, so partial fills are expected.
func (s *Simulator) CheckLimitFill(order common.Order, bestBid, bestAsk fixed.Point, bidLevels, askLevels []common.BookLevel) (common.Fill, bool) {
	if order.Side == common.OrderSideBuy {
		if bestAsk.Gt(order.Price) {
			return common.Fill{}, false
		}

		maker := order.Price.Lt(bestBid)
		fillPrice := order.Price
		if !maker {
			fillPrice = fixed.Min(order.Price, bestAsk)
		}

		fillSize := fixed.Min(order.Size, availableLiquidity(askLevels, order.Price, true))
		if !fillSize.IsPos() {
			return common.Fill{}, false
		}
		return common.Fill{Price: fillPrice, Size: fillSize, Maker: maker}, true
	}

	if bestBid.Lt(order.Price) {
		return common.Fill{}, false
	}

	maker := order.Price.Gt(bestAsk)
	fillPrice := order.Price
	if !maker {
		fillPrice = fixed.Max(order.Price, bestBid)
	}

	fillSize := fixed.Min(order.Size, availableLiquidity(bidLevels, order.Price, false))
	if !fillSize.IsPos() {
		return common.Fill{}, false
	}
	return common.Fill{Price: fillPrice, Size: fillSize, Maker: maker}, true
}

// SimulateMarketFill walks the opposing book side and returns the
// size-weighted average price. Market orders always report full execution;
// liquidity shortfalls surface as slippage, never as a partial fill.
func (s *Simulator) SimulateMarketFill(side common.OrderSide, size, bestBid, bestAsk fixed.Point, bidLevels, askLevels []common.BookLevel) (fixed.Point, fixed.Point) {
	if side == common.OrderSideBuy {
		return walkBook(askLevels, size, bestAsk, true)
	}
	return walkBook(bidLevels, size, bestBid, false)
}

// Fee returns the signed fee for a fill: positive amounts are owed, negative
// amounts are maker rebates.
func (s *Simulator) Fee(fillPrice, fillSize fixed.Point, maker bool) fixed.Point {
	notional := fillPrice.Mul(fillSize)
	if maker {
		return notional.Mul(s.makerFeeRate)
	}
	return notional.Mul(s.takerFeeRate)
}

// RealizedPnl computes the profit realized by closing size at exitPrice
// against a position entered at entryPrice.
func (s *Simulator) RealizedPnl(entryPrice, exitPrice, size fixed.Point, long bool) fixed.Point {
	if long {
		return exitPrice.Sub(entryPrice).Mul(size)
	}
	return entryPrice.Sub(exitPrice).Mul(size)
}

// FillDelay returns the simulated order-processing latency: the configured
// base with random jitter, never below 10ms.
func (s *Simulator) FillDelay() time.Duration {
	jitter := time.Duration(rand.IntN(2*fillDelayJitter+1)-fillDelayJitter) * time.Millisecond
	delay := s.fillDelay + jitter
	if delay < minFillDelay {
		delay = minFillDelay
	}
	return delay
}

func walkBook(levels []common.BookLevel, size, startingPrice fixed.Point, buy bool) (fixed.Point, fixed.Point) {
	if len(levels) == 0 {
		factor := emptyBookSellSlippage
		if buy {
			factor = emptyBookBuySlippage
		}
		return startingPrice.Mul(factor), size
	}

	remaining := size
	totalCost := fixed.Zero
	totalFilled := fixed.Zero

	walkDepth := min(maxWalkLevels, len(levels))
	for _, level := range levels[:walkDepth] {
		if !remaining.IsPos() {
			break
		}
		fillAtLevel := fixed.Min(remaining, level.Size)
		totalCost = totalCost.Add(fillAtLevel.Mul(level.Price))
		totalFilled = totalFilled.Add(fillAtLevel)
		remaining = remaining.Sub(fillAtLevel)
	}

	if remaining.IsPos() {
		factor := exhaustedSellSlippage
		if buy {
			factor = exhaustedBuySlippage
		}
		remainderPrice := levels[walkDepth-1].Price.Mul(factor)
		totalCost = totalCost.Add(remaining.Mul(remainderPrice))
		totalFilled = totalFilled.Add(remaining)
	}

	if !totalFilled.IsPos() {
		return startingPrice, totalFilled
	}
	return totalCost.Div(totalFilled), totalFilled
}

// availableLiquidity sums level sizes at-or-better than the threshold price.
// Levels are assumed sorted best-first, so the walk stops at the first level
// past the threshold.
func availableLiquidity(levels []common.BookLevel, price fixed.Point, buy bool) fixed.Point {
	total := fixed.Zero
	for _, level := range levels {
		if buy {
			if level.Price.Gt(price) {
				break
			}
		} else {
			if level.Price.Lt(price) {
				break
			}
		}
		total = total.Add(level.Size)
	}
	return total
}
