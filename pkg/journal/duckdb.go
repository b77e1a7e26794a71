package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/paperdex/paperdex/pkg/common"
)

const createTradesTable = `
CREATE TABLE IF NOT EXISTS paper_trades (
	ts            TIMESTAMP,
	side          VARCHAR,
	type          VARCHAR,
	price         DOUBLE,
	size          DOUBLE,
	fee           DOUBLE,
	realized_pnl  DOUBLE,
	balance       DOUBLE,
	position_size DOUBLE,
	is_maker      BOOLEAN
);`

const insertTrade = `
INSERT INTO paper_trades (
	ts, side, type, price, size, fee, realized_pnl, balance, position_size, is_maker
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

// DuckDbJournal writes trade records into a DuckDB database file, which
// keeps the session queryable without a post-processing step.
type DuckDbJournal struct {
	db *sql.DB
}

func NewDuckDbJournal(dataSourceName string) (*DuckDbJournal, error) {
	db, err := sql.Open("duckdb", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("unable to open trade database: %w", err)
	}

	if _, err := db.Exec(createTradesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to create trades table: %w", err)
	}

	return &DuckDbJournal{db: db}, nil
}

func (j *DuckDbJournal) Record(record common.TradeRecord) error {
	price, _ := record.Price.Float64()
	size, _ := record.Size.Float64()
	fee, _ := record.Fee.Float64()
	realizedPnl, _ := record.RealizedPnl.Float64()
	balance, _ := record.Balance.Float64()
	positionSize, _ := record.PositionSize.Float64()

	if _, err := j.db.Exec(insertTrade,
		record.TimeStamp,
		record.Side.String(),
		record.Type.String(),
		price,
		size,
		fee,
		realizedPnl,
		balance,
		positionSize,
		record.Maker,
	); err != nil {
		return fmt.Errorf("unable to insert trade record: %w", err)
	}
	return nil
}

func (j *DuckDbJournal) Close() error {
	return j.db.Close()
}
