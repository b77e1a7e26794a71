package paper

import (
	"time"

	"github.com/paperdex/paperdex/pkg/journal"
	"github.com/paperdex/paperdex/pkg/simulator"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

type Option func(*Exchange)

// WithJournal attaches a trade-log sink. The exchange owns the sink from
// this point on and closes it during CriticalCloseAll.
func WithJournal(j journal.Journal) Option {
	return func(e *Exchange) {
		e.journal = j
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(e *Exchange) {
		e.pollInterval = interval
	}
}

func WithErrorCooldown(cooldown time.Duration) Option {
	return func(e *Exchange) {
		e.errorCooldown = cooldown
	}
}

func WithFillDelay(delay time.Duration) Option {
	return func(e *Exchange) {
		e.fillDelay = delay
	}
}

func WithFeeRates(makerRate, takerRate fixed.Point) Option {
	return func(e *Exchange) {
		e.simulatorOptions = append(e.simulatorOptions, simulator.WithFeeRates(makerRate, takerRate))
	}
}
