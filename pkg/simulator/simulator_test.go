package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

func levels(pairs ...float64) []common.BookLevel {
	out := make([]common.BookLevel, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, common.BookLevel{
			Price: fixed.FromFloat64(pairs[i]),
			Size:  fixed.FromFloat64(pairs[i+1]),
		})
	}
	return out
}

func TestSimulator_CheckLimitFill(t *testing.T) {
	sim := NewSimulator(100 * time.Millisecond)

	tests := []struct {
		name       string
		order      common.Order
		bestBid    float64
		bestAsk    float64
		bidLevels  []common.BookLevel
		askLevels  []common.BookLevel
		wantFill   bool
		wantPrice  float64
		wantSize   float64
		wantMaker  bool
	}{
		{
			name: "buy no fill while ask above limit",
			order: common.Order{
				Side:  common.OrderSideBuy,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(99),
			},
			bestBid:   100,
			bestAsk:   101,
			bidLevels: levels(100, 10),
			askLevels: levels(101, 10),
			wantFill:  false,
		},
		{
			name: "buy taker fill at limit",
			order: common.Order{
				Side:  common.OrderSideBuy,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(99),
			},
			bestBid:   98,
			bestAsk:   99,
			bidLevels: levels(98, 10),
			askLevels: levels(99, 15),
			wantFill:  true,
			wantPrice: 99,
			wantSize:  10,
			wantMaker: false,
		},
		{
			name: "buy maker fill inside spread",
			order: common.Order{
				Side:  common.OrderSideBuy,
				Size:  fixed.FromFloat64(5),
				Price: fixed.FromFloat64(99),
			},
			bestBid:   99.5,
			bestAsk:   98.8,
			bidLevels: levels(99.5, 10),
			askLevels: levels(98.8, 20),
			wantFill:  true,
			wantPrice: 99,
			wantSize:  5,
			wantMaker: true,
		},
		{
			name: "buy taker clamped to better ask",
			order: common.Order{
				Side:  common.OrderSideBuy,
				Size:  fixed.FromFloat64(5),
				Price: fixed.FromFloat64(100),
			},
			bestBid:   99,
			bestAsk:   99.5,
			bidLevels: levels(99, 10),
			askLevels: levels(99.5, 10, 100, 10),
			wantFill:  true,
			wantPrice: 99.5,
			wantSize:  5,
			wantMaker: false,
		},
		{
			name: "buy partial fill capped by liquidity",
			order: common.Order{
				Side:  common.OrderSideBuy,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(99),
			},
			bestBid:   98,
			bestAsk:   99,
			bidLevels: levels(98, 10),
			askLevels: levels(99, 4, 99.5, 50),
			wantFill:  true,
			wantPrice: 99,
			wantSize:  4,
			wantMaker: false,
		},
		{
			name: "buy crossed book does not crash",
			order: common.Order{
				Side:  common.OrderSideBuy,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(99),
			},
			bestBid:   100,
			bestAsk:   99,
			bidLevels: levels(100, 10),
			askLevels: levels(99, 15),
			wantFill:  true,
			wantPrice: 99,
			wantSize:  10,
			wantMaker: true,
		},
		{
			name: "buy zero counter liquidity yields no fill",
			order: common.Order{
				Side:  common.OrderSideBuy,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(99),
			},
			bestBid:   98,
			bestAsk:   99,
			bidLevels: levels(98, 10),
			askLevels: levels(99.5, 50),
			wantFill:  false,
		},
		{
			name: "sell no fill while bid below limit",
			order: common.Order{
				Side:  common.OrderSideSell,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(101),
			},
			bestBid:   99,
			bestAsk:   100,
			bidLevels: levels(99, 10),
			askLevels: levels(100, 10),
			wantFill:  false,
		},
		{
			name: "sell taker fill at limit",
			order: common.Order{
				Side:  common.OrderSideSell,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(101),
			},
			bestBid:   101,
			bestAsk:   102,
			bidLevels: levels(101, 15),
			askLevels: levels(102, 10),
			wantFill:  true,
			wantPrice: 101,
			wantSize:  10,
			wantMaker: false,
		},
		{
			name: "sell maker fill inside spread",
			order: common.Order{
				Side:  common.OrderSideSell,
				Size:  fixed.FromFloat64(10),
				Price: fixed.FromFloat64(101),
			},
			bestBid:   101.5,
			bestAsk:   100.5,
			bidLevels: levels(101.5, 15),
			askLevels: levels(100.5, 10),
			wantFill:  true,
			wantPrice: 101,
			wantSize:  10,
			wantMaker: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fill, ok := sim.CheckLimitFill(tt.order,
				fixed.FromFloat64(tt.bestBid), fixed.FromFloat64(tt.bestAsk),
				tt.bidLevels, tt.askLevels)

			require.Equal(t, tt.wantFill, ok)
			if !tt.wantFill {
				return
			}
			assert.True(t, fill.Price.Eq(fixed.FromFloat64(tt.wantPrice)), "price %s", fill.Price)
			assert.True(t, fill.Size.Eq(fixed.FromFloat64(tt.wantSize)), "size %s", fill.Size)
			assert.Equal(t, tt.wantMaker, fill.Maker)
		})
	}
}

func TestSimulator_SimulateMarketFill(t *testing.T) {
	sim := NewSimulator(100 * time.Millisecond)

	t.Run("buy fills at touch with enough liquidity", func(t *testing.T) {
		price, size := sim.SimulateMarketFill(common.OrderSideBuy,
			fixed.FromFloat64(10), fixed.FromFloat64(99), fixed.FromFloat64(100),
			levels(99, 20), levels(100, 20))

		assert.True(t, price.Eq(fixed.FromFloat64(100)), "price %s", price)
		assert.True(t, size.Eq(fixed.FromFloat64(10)), "size %s", size)
	})

	t.Run("sell fills at touch with enough liquidity", func(t *testing.T) {
		price, size := sim.SimulateMarketFill(common.OrderSideSell,
			fixed.FromFloat64(10), fixed.FromFloat64(99), fixed.FromFloat64(100),
			levels(99, 20), levels(100, 20))

		assert.True(t, price.Eq(fixed.FromFloat64(99)), "price %s", price)
		assert.True(t, size.Eq(fixed.FromFloat64(10)), "size %s", size)
	})

	t.Run("buy walks levels and averages up", func(t *testing.T) {
		price, size := sim.SimulateMarketFill(common.OrderSideBuy,
			fixed.FromFloat64(30), fixed.FromFloat64(99), fixed.FromFloat64(100),
			levels(99, 10), levels(100, 10, 100.5, 10, 101, 10))

		assert.True(t, size.Eq(fixed.FromFloat64(30)), "size %s", size)
		assert.True(t, price.Gt(fixed.FromFloat64(100)), "price %s", price)
		assert.True(t, price.Lt(fixed.FromFloat64(101)), "price %s", price)
	})

	t.Run("empty book synthesizes slippage fill", func(t *testing.T) {
		price, size := sim.SimulateMarketFill(common.OrderSideBuy,
			fixed.FromFloat64(10), fixed.FromFloat64(99), fixed.FromFloat64(100),
			nil, nil)

		assert.True(t, price.Eq(fixed.FromFloat64(101)), "price %s", price)
		assert.True(t, size.Eq(fixed.FromFloat64(10)), "size %s", size)
	})

	t.Run("exhausted book prices remainder with extra slippage", func(t *testing.T) {
		price, size := sim.SimulateMarketFill(common.OrderSideBuy,
			fixed.FromFloat64(30), fixed.FromFloat64(99), fixed.FromFloat64(100),
			levels(99, 10), levels(100, 10))

		// 10 at 100, 20 at 100*1.02 = 102 → (1000 + 2040) / 30
		want := fixed.FromFloat64(1000 + 2040).DivInt(30)
		assert.True(t, size.Eq(fixed.FromFloat64(30)), "market orders always fill in full")
		assert.True(t, price.Eq(want), "price %s, want %s", price, want)
	})

	t.Run("sell remainder slips downward", func(t *testing.T) {
		price, size := sim.SimulateMarketFill(common.OrderSideSell,
			fixed.FromFloat64(20), fixed.FromFloat64(99), fixed.FromFloat64(100),
			levels(99, 10), levels(100, 10))

		assert.True(t, size.Eq(fixed.FromFloat64(20)))
		assert.True(t, price.Lt(fixed.FromFloat64(99)), "price %s", price)
	})
}

func TestSimulator_Fee(t *testing.T) {
	sim := NewSimulator(100 * time.Millisecond)

	maker := sim.Fee(fixed.FromFloat64(100), fixed.FromFloat64(10), true)
	taker := sim.Fee(fixed.FromFloat64(100), fixed.FromFloat64(10), false)

	assert.True(t, maker.Eq(fixed.FromFloat64(-0.2)), "maker fee %s", maker)
	assert.True(t, taker.Eq(fixed.FromFloat64(0.5)), "taker fee %s", taker)
}

func TestSimulator_FeeRatesConfigurable(t *testing.T) {
	sim := NewSimulator(100*time.Millisecond,
		WithFeeRates(fixed.FromFloat64(-0.0001), fixed.FromFloat64(0.001)))

	maker := sim.Fee(fixed.FromFloat64(100), fixed.FromFloat64(10), true)
	taker := sim.Fee(fixed.FromFloat64(100), fixed.FromFloat64(10), false)

	assert.True(t, maker.Eq(fixed.FromFloat64(-0.1)), "maker fee %s", maker)
	assert.True(t, taker.Eq(fixed.FromFloat64(1)), "taker fee %s", taker)
}

func TestSimulator_RealizedPnl(t *testing.T) {
	sim := NewSimulator(100 * time.Millisecond)

	long := sim.RealizedPnl(fixed.FromFloat64(100), fixed.FromFloat64(110), fixed.FromFloat64(10), true)
	short := sim.RealizedPnl(fixed.FromFloat64(100), fixed.FromFloat64(95), fixed.FromFloat64(10), false)
	longLoss := sim.RealizedPnl(fixed.FromFloat64(100), fixed.FromFloat64(95), fixed.FromFloat64(10), true)

	assert.True(t, long.Eq(fixed.FromFloat64(100)), "long pnl %s", long)
	assert.True(t, short.Eq(fixed.FromFloat64(50)), "short pnl %s", short)
	assert.True(t, longLoss.Eq(fixed.FromFloat64(-50)), "long loss %s", longLoss)
}

func TestSimulator_FillDelay(t *testing.T) {
	sim := NewSimulator(50 * time.Millisecond)

	for i := 0; i < 100; i++ {
		delay := sim.FillDelay()
		assert.GreaterOrEqual(t, delay, 30*time.Millisecond)
		assert.LessOrEqual(t, delay, 70*time.Millisecond)
	}
}

func TestSimulator_FillDelayFloor(t *testing.T) {
	sim := NewSimulator(0)

	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, sim.FillDelay(), 10*time.Millisecond)
	}
}
