package portfolio

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

// Statistics is a point-in-time snapshot of the session performance,
// valued at the mark price passed to Tracker.Statistics.
type Statistics struct {
	InitialBalance fixed.Point
	Balance        fixed.Point
	Equity         fixed.Point
	UnrealizedPnl  fixed.Point
	TotalReturn    fixed.Point
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        fixed.Point
	TotalFeesPaid  fixed.Point
	PeakBalance    fixed.Point
	MaxDrawdown    fixed.Point
	OpenOrders     int
	OpenPositions  int
}

func (s Statistics) Print(logger *zap.Logger) {
	logger.Info("session report",
		zap.String("initial_balance", s.InitialBalance.String()),
		zap.String("balance", s.Balance.String()),
		zap.String("equity", s.Equity.String()),
		zap.String("unrealized_pnl", s.UnrealizedPnl.String()),
		zap.String("total_return", fmt.Sprintf("%s%%", s.TotalReturn.String())),
		zap.String("max_drawdown", fmt.Sprintf("%s%%", s.MaxDrawdown.String())),
	)

	logger.Info("trade statistics",
		zap.Int("total_trades", s.TotalTrades),
		zap.Int("winning_trades", s.WinningTrades),
		zap.Int("losing_trades", s.LosingTrades),
		zap.String("win_rate", fmt.Sprintf("%s%%", s.WinRate.String())),
		zap.String("total_fees_paid", s.TotalFeesPaid.String()),
		zap.Int("open_orders", s.OpenOrders),
		zap.Int("open_positions", s.OpenPositions),
	)
}

// Statistics assembles the snapshot under a single lock acquisition.
func (t *Tracker) Statistics(markPrice fixed.Point) Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	unrealized := t.unrealizedPnl(markPrice)
	equity := t.balance.Add(unrealized)

	winRate := fixed.Zero
	if t.totalTrades > 0 {
		winRate = fixed.FromInt(t.winningTrades, 0).DivInt(t.totalTrades).Mul(fixed.Hundred)
	}

	totalReturn := fixed.Zero
	if t.initialBalance.IsPos() {
		totalReturn = t.balance.Sub(t.initialBalance).Div(t.initialBalance).Mul(fixed.Hundred)
	}

	openPositions := 0
	for _, position := range t.positions {
		if position != nil {
			openPositions++
		}
	}

	return Statistics{
		InitialBalance: t.initialBalance,
		Balance:        t.balance,
		Equity:         equity,
		UnrealizedPnl:  unrealized,
		TotalReturn:    totalReturn,
		TotalTrades:    t.totalTrades,
		WinningTrades:  t.winningTrades,
		LosingTrades:   t.totalTrades - t.winningTrades,
		WinRate:        winRate,
		TotalFeesPaid:  t.totalFeesPaid,
		PeakBalance:    t.peakBalance,
		MaxDrawdown:    t.maxDrawdown.Mul(fixed.Hundred),
		OpenOrders:     len(t.orders),
		OpenPositions:  openPositions,
	}
}
