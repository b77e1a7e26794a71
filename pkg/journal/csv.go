package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/paperdex/paperdex/pkg/common"
)

var csvHeader = []string{
	"timestamp",
	"side",
	"type",
	"price",
	"size",
	"fee",
	"realized_pnl",
	"balance",
	"position_size",
	"is_maker",
}

// CsvJournal appends trade records to a timestamped CSV file. Every row is
// flushed immediately so a crash loses at most the record being written.
type CsvJournal struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCsvJournal creates outputDir if needed and opens a fresh file named
// paper_trades_<timestamp>.csv inside it.
func NewCsvJournal(outputDir string) (*CsvJournal, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("paper_trades_%s.csv", time.Now().Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create trade log: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("unable to write trade log header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("unable to flush trade log header: %w", err)
	}

	return &CsvJournal{path: path, file: file, writer: writer}, nil
}

func (j *CsvJournal) Path() string {
	return j.path
}

func (j *CsvJournal) Record(record common.TradeRecord) error {
	row := []string{
		record.TimeStamp.Format(time.RFC3339Nano),
		record.Side.String(),
		record.Type.String(),
		record.Price.String(),
		record.Size.String(),
		record.Fee.String(),
		record.RealizedPnl.String(),
		record.Balance.String(),
		record.PositionSize.String(),
		strconv.FormatBool(record.Maker),
	}

	if err := j.writer.Write(row); err != nil {
		return fmt.Errorf("unable to write trade record: %w", err)
	}
	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("unable to flush trade record: %w", err)
	}
	return nil
}

func (j *CsvJournal) Close() error {
	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		_ = j.file.Close()
		return fmt.Errorf("unable to flush trade log: %w", err)
	}
	return j.file.Close()
}
