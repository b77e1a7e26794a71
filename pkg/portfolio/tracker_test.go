package portfolio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

func newTestTracker() *Tracker {
	return NewTracker(fixed.FromInt(10000, 0), 10)
}

func TestTracker_Orders(t *testing.T) {
	tracker := newTestTracker()

	order := common.Order{
		Id:    "paper_0000000000000001",
		Type:  common.OrderTypeLimit,
		Side:  common.OrderSideBuy,
		Price: fixed.FromInt(100, 0),
		Size:  fixed.One,
	}
	tracker.AddOrder(order)

	got, ok := tracker.Order(order.Id)
	require.True(t, ok)
	assert.Equal(t, order.Id, got.Id)
	assert.Len(t, tracker.OpenOrders(), 1)

	removed, ok := tracker.RemoveOrder(order.Id)
	require.True(t, ok)
	assert.Equal(t, order.Id, removed.Id)

	_, ok = tracker.Order(order.Id)
	assert.False(t, ok)

	_, ok = tracker.RemoveOrder("paper_unknown")
	assert.False(t, ok)
}

func TestTracker_RemoveAllOrders(t *testing.T) {
	tracker := newTestTracker()

	for _, id := range []string{"paper_a", "paper_b", "paper_c"} {
		tracker.AddOrder(common.Order{Id: id, Side: common.OrderSideBuy, Price: fixed.FromInt(100, 0), Size: fixed.One})
	}

	assert.Equal(t, 3, tracker.RemoveAllOrders())
	assert.Empty(t, tracker.OpenOrders())
	assert.Equal(t, 0, tracker.RemoveAllOrders())
}

func TestTracker_UpdatePosition(t *testing.T) {
	tracker := newTestTracker()

	tracker.UpdatePosition(common.PositionSideLong, fixed.Two, fixed.FromInt(100, 0), fixed.Zero)

	position, ok := tracker.Position(common.PositionSideLong)
	require.True(t, ok)
	assert.True(t, position.Size.Eq(fixed.Two))
	assert.True(t, position.EntryPrice.Eq(fixed.FromInt(100, 0)))
	createdAt := position.CreatedAt

	// Increasing the slot keeps its original open time.
	tracker.UpdatePosition(common.PositionSideLong, fixed.FromInt(3, 0), fixed.FromInt(101, 0), fixed.Zero)
	position, ok = tracker.Position(common.PositionSideLong)
	require.True(t, ok)
	assert.Equal(t, createdAt, position.CreatedAt)

	// Closing settles realized pnl into the balance and removes the slot.
	tracker.UpdatePosition(common.PositionSideLong, fixed.Zero, fixed.Zero, fixed.FromInt(150, 0))
	_, ok = tracker.Position(common.PositionSideLong)
	assert.False(t, ok)
	assert.True(t, tracker.Balance().Eq(fixed.FromInt(10150, 0)))
}

func TestTracker_TwoSlots(t *testing.T) {
	tracker := newTestTracker()

	tracker.UpdatePosition(common.PositionSideLong, fixed.One, fixed.FromInt(100, 0), fixed.Zero)
	tracker.UpdatePosition(common.PositionSideShort, fixed.Two, fixed.FromInt(110, 0), fixed.Zero)

	positions := tracker.OpenPositions()
	require.Len(t, positions, 2)

	// Long gains 5, short gains 2*5 at mark 105.
	assert.True(t, tracker.UnrealizedPnl(fixed.FromInt(105, 0)).Eq(fixed.FromInt(15, 0)))
	assert.True(t, tracker.Equity(fixed.FromInt(105, 0)).Eq(fixed.FromInt(10015, 0)))
}

func TestTracker_ApplyFee(t *testing.T) {
	tracker := newTestTracker()

	tracker.ApplyFee(fixed.FromInt(5, 0))
	assert.True(t, tracker.Balance().Eq(fixed.FromInt(9995, 0)))

	// Maker rebate is a negative fee and credits the balance.
	tracker.ApplyFee(fixed.FromInt(-2, 0))
	assert.True(t, tracker.Balance().Eq(fixed.FromInt(9997, 0)))

	stats := tracker.Statistics(fixed.FromInt(100, 0))
	assert.True(t, stats.TotalFeesPaid.Eq(fixed.FromInt(3, 0)))
}

func TestTracker_CanOpenPosition(t *testing.T) {
	mark := fixed.FromInt(100, 0)

	testCases := []struct {
		name  string
		setup func(tracker *Tracker)
		size  fixed.Point
		price fixed.Point
		want  bool
	}{
		{
			name:  "flat account approves within leverage",
			setup: func(tracker *Tracker) {},
			size:  fixed.FromInt(100, 0),
			price: fixed.FromInt(100, 0),
			want:  true, // margin 1000 <= equity 10000
		},
		{
			name:  "flat account rejects beyond leverage",
			setup: func(tracker *Tracker) {},
			size:  fixed.FromInt(2000, 0),
			price: fixed.FromInt(100, 0),
			want:  false, // margin 20000 > equity 10000
		},
		{
			name: "used margin reduces headroom",
			setup: func(tracker *Tracker) {
				tracker.UpdatePosition(common.PositionSideLong, fixed.FromInt(900, 0), mark, fixed.Zero)
			},
			size:  fixed.FromInt(200, 0),
			price: fixed.FromInt(100, 0),
			want:  false, // free margin 10000-9000=1000 < required 2000
		},
		{
			name: "unrealized loss reduces equity",
			setup: func(tracker *Tracker) {
				// Long 100 @ 200, marked at 100: unrealized -10000 wipes the equity.
				tracker.UpdatePosition(common.PositionSideLong, fixed.FromInt(100, 0), fixed.FromInt(200, 0), fixed.Zero)
			},
			size:  fixed.One,
			price: fixed.FromInt(100, 0),
			want:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tracker := newTestTracker()
			tc.setup(tracker)

			assert.Equal(t, tc.want, tracker.CanOpenPosition(tc.size, tc.price, mark))

			// Pure query, repeated calls agree.
			assert.Equal(t, tc.want, tracker.CanOpenPosition(tc.size, tc.price, mark))
		})
	}
}

func TestTracker_RecordTrade(t *testing.T) {
	tracker := newTestTracker()

	tracker.UpdatePosition(common.PositionSideLong, fixed.Zero, fixed.Zero, fixed.FromInt(1000, 0))
	tracker.RecordTrade(true)

	stats := tracker.Statistics(fixed.FromInt(100, 0))
	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, 1, stats.WinningTrades)
	assert.True(t, stats.PeakBalance.Eq(fixed.FromInt(11000, 0)))
	assert.True(t, stats.MaxDrawdown.IsZero())

	tracker.UpdatePosition(common.PositionSideLong, fixed.Zero, fixed.Zero, fixed.FromInt(-2200, 0))
	tracker.RecordTrade(false)

	stats = tracker.Statistics(fixed.FromInt(100, 0))
	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 1, stats.LosingTrades)
	// Drawdown from peak 11000 down to 8800 is 20%.
	assert.True(t, stats.MaxDrawdown.Eq(fixed.FromInt(20, 0)))

	// Recovering does not shrink the recorded maximum.
	tracker.UpdatePosition(common.PositionSideLong, fixed.Zero, fixed.Zero, fixed.FromInt(1200, 0))
	tracker.RecordTrade(true)

	stats = tracker.Statistics(fixed.FromInt(100, 0))
	assert.True(t, stats.MaxDrawdown.Eq(fixed.FromInt(20, 0)))
	assert.True(t, stats.PeakBalance.Eq(fixed.FromInt(11000, 0)))
}

func TestTracker_Statistics(t *testing.T) {
	tracker := newTestTracker()

	tracker.AddOrder(common.Order{Id: "paper_a", Side: common.OrderSideBuy, Price: fixed.FromInt(100, 0), Size: fixed.One})
	tracker.UpdatePosition(common.PositionSideLong, fixed.One, fixed.FromInt(100, 0), fixed.Zero)

	stats := tracker.Statistics(fixed.FromInt(110, 0))
	assert.True(t, stats.UnrealizedPnl.Eq(fixed.FromInt(10, 0)))
	assert.True(t, stats.Equity.Eq(fixed.FromInt(10010, 0)))
	assert.True(t, stats.TotalReturn.IsZero())
	assert.True(t, stats.WinRate.IsZero())
	assert.Equal(t, 1, stats.OpenOrders)
	assert.Equal(t, 1, stats.OpenPositions)
}

func TestTracker_StatisticsZeroInitialBalance(t *testing.T) {
	tracker := NewTracker(fixed.Zero, 10)

	var stats Statistics
	assert.NotPanics(t, func() {
		stats = tracker.Statistics(fixed.FromInt(100, 0))
	})
	assert.True(t, stats.TotalReturn.IsZero())
	assert.True(t, stats.Balance.IsZero())
}

func TestTracker_Concurrency(t *testing.T) {
	tracker := newTestTracker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.ApplyFee(fixed.One)
				tracker.ApplyFee(fixed.One.Neg())
				tracker.UpdatePosition(common.PositionSideLong, fixed.One, fixed.FromInt(100, 0), fixed.Zero)
				_ = tracker.Equity(fixed.FromInt(100, 0))
				_ = tracker.CanOpenPosition(fixed.One, fixed.FromInt(100, 0), fixed.FromInt(100, 0))
			}
		}()
	}
	wg.Wait()

	assert.True(t, tracker.Balance().Eq(fixed.FromInt(10000, 0)))
}
