package portfolio

import (
	"sync"
	"time"

	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

// Tracker owns the virtual portfolio: balance, resting orders, the two
// directional position slots and the running performance counters. Every
// method takes the tracker mutex, so each call appears atomic to callers;
// compound sequences are serialized by the owning coordinator.
type Tracker struct {
	mu sync.Mutex

	initialBalance fixed.Point
	maxLeverage    int64

	balance   fixed.Point
	orders    map[string]common.Order
	positions [2]*common.Position // indexed by common.PositionSide

	totalTrades   int
	winningTrades int
	totalFeesPaid fixed.Point
	peakBalance   fixed.Point
	maxDrawdown   fixed.Point
}

func NewTracker(initialBalance fixed.Point, maxLeverage int64) *Tracker {
	return &Tracker{
		initialBalance: initialBalance,
		maxLeverage:    maxLeverage,
		balance:        initialBalance,
		orders:         make(map[string]common.Order),
		peakBalance:    initialBalance,
		maxDrawdown:    fixed.Zero,
		totalFeesPaid:  fixed.Zero,
	}
}

func (t *Tracker) AddOrder(order common.Order) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.orders[order.Id] = order
}

func (t *Tracker) RemoveOrder(id string) (common.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	order, ok := t.orders[id]
	if ok {
		delete(t.orders, id)
	}
	return order, ok
}

func (t *Tracker) Order(id string) (common.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	order, ok := t.orders[id]
	return order, ok
}

func (t *Tracker) OpenOrders() []common.Order {
	t.mu.Lock()
	defer t.mu.Unlock()

	orders := make([]common.Order, 0, len(t.orders))
	for _, order := range t.orders {
		orders = append(orders, order)
	}
	return orders
}

func (t *Tracker) RemoveAllOrders() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := len(t.orders)
	clear(t.orders)
	return count
}

// UpdatePosition replaces the slot for side with the given size and entry
// price, removing it when the size is zero. A non-zero realizedPnl settles
// into the balance in the same critical section; this is the only place
// realized profit is materialized.
func (t *Tracker) UpdatePosition(side common.PositionSide, size, entryPrice, realizedPnl fixed.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if size.IsZero() {
		t.positions[side] = nil
	} else {
		createdAt := time.Now()
		if existing := t.positions[side]; existing != nil {
			createdAt = existing.CreatedAt
		}
		t.positions[side] = &common.Position{
			Side:       side,
			Size:       size,
			EntryPrice: entryPrice,
			CreatedAt:  createdAt,
		}
	}

	if !realizedPnl.IsZero() {
		t.balance = t.balance.Add(realizedPnl)
	}
}

// ApplyFee subtracts the signed fee amount from the balance; maker rebates
// are negative amounts and increase it.
func (t *Tracker) ApplyFee(amount fixed.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.balance = t.balance.Sub(amount)
	t.totalFeesPaid = t.totalFeesPaid.Add(amount)
}

func (t *Tracker) Position(side common.PositionSide) (common.Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.positions[side] == nil {
		return common.Position{}, false
	}
	return *t.positions[side], true
}

func (t *Tracker) OpenPositions() []common.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	positions := make([]common.Position, 0, 2)
	for _, position := range t.positions {
		if position != nil {
			positions = append(positions, *position)
		}
	}
	return positions
}

func (t *Tracker) Balance() fixed.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balance
}

func (t *Tracker) UnrealizedPnl(markPrice fixed.Point) fixed.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unrealizedPnl(markPrice)
}

// Equity is the balance plus unrealized PnL across both slots at mark.
func (t *Tracker) Equity(markPrice fixed.Point) fixed.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balance.Add(t.unrealizedPnl(markPrice))
}

// CanOpenPosition is the static margin check: the free margin at mark must
// cover the new order's required margin. Pure query, evaluated fresh on
// every call.
func (t *Tracker) CanOpenPosition(size, price, markPrice fixed.Point) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	requiredMargin := size.Mul(price).DivInt64(t.maxLeverage)
	equity := t.balance.Add(t.unrealizedPnl(markPrice))

	usedMargin := fixed.Zero
	for _, position := range t.positions {
		if position != nil {
			usedMargin = usedMargin.Add(position.Size.Abs().Mul(markPrice).DivInt64(t.maxLeverage))
		}
	}

	return equity.Sub(usedMargin).Gte(requiredMargin)
}

// RecordTrade must be called exactly once per completed closing fill. Peak
// balance and max drawdown are only sampled here, so drawdown reflects
// trade-close points, not intraday equity swings.
func (t *Tracker) RecordTrade(profitable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalTrades++
	if profitable {
		t.winningTrades++
	}

	if t.balance.Gt(t.peakBalance) {
		t.peakBalance = t.balance
	}

	drawdown := t.peakBalance.Sub(t.balance).Div(t.peakBalance)
	if drawdown.Gt(t.maxDrawdown) {
		t.maxDrawdown = drawdown
	}
}

func (t *Tracker) unrealizedPnl(markPrice fixed.Point) fixed.Point {
	total := fixed.Zero
	for _, position := range t.positions {
		if position == nil {
			continue
		}
		if position.Side == common.PositionSideLong {
			total = total.Add(markPrice.Sub(position.EntryPrice).Mul(position.Size))
		} else {
			total = total.Add(position.EntryPrice.Sub(markPrice).Mul(position.Size))
		}
	}
	return total
}
