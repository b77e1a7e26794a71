// Package journal persists trade records produced by the paper venue.
package journal

import (
	"github.com/paperdex/paperdex/pkg/common"
)

// Journal is a durable sink for trade records. Record is called from the
// venue's critical path, so implementations should keep writes cheap and
// must tolerate Close being called once after the final Record.
type Journal interface {
	Record(record common.TradeRecord) error
	Close() error
}

// Noop discards every record. Used when no trade log was configured.
type Noop struct{}

func (Noop) Record(common.TradeRecord) error { return nil }
func (Noop) Close() error                    { return nil }
