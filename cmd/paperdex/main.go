package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/paperdex/paperdex/internal/dbg"
	"github.com/paperdex/paperdex/pkg/bus"
	"github.com/paperdex/paperdex/pkg/exchange/paper"
	"github.com/paperdex/paperdex/pkg/journal"
	"github.com/paperdex/paperdex/pkg/marketdata"
	"github.com/paperdex/paperdex/pkg/middleware"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

const Version = "0.3.0"

const monitorFlags = middleware.MonitorOrdersRejected | middleware.MonitorTradesOpened | middleware.MonitorTradesClosed

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		dbg.NewProdLogger().Fatal("unable to load configuration", zap.Error(err))
	}

	logger := dbg.NewProdLogger()
	if cfg.Runtime.LogFile != "" {
		logger = dbg.NewFileLogger(cfg.Runtime.LogFile)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("paperdex started", zap.String("version", Version))
	defer logger.Info("paperdex finished")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	router := bus.NewRouter(cfg.Runtime.RouterEventCapacity)

	book := marketdata.NewBook()
	feedOptions := []marketdata.FeedOption{}
	if cfg.Market.Subscribe != "" {
		feedOptions = append(feedOptions, marketdata.WithSubscribe(json.RawMessage(cfg.Market.Subscribe)))
	}
	feed := marketdata.NewFeed(cfg.Market.WsUrl, book, feedOptions...)

	sink, err := newJournal(cfg.Journal)
	if err != nil {
		logger.Fatal("unable to open trade journal", zap.Error(err))
	}

	exchangeOptions := []paper.Option{
		paper.WithJournal(sink),
		paper.WithFillDelay(cfg.Execution.FillDelay),
		paper.WithPollInterval(cfg.Execution.PollInterval),
	}
	if cfg.Execution.UseCustomFees {
		exchangeOptions = append(exchangeOptions, paper.WithFeeRates(
			fixed.FromFloat64(cfg.Execution.MakerFeeRate),
			fixed.FromFloat64(cfg.Execution.TakerFeeRate)))
	}

	venue := paper.NewExchange(router, book,
		fixed.FromFloat64(cfg.Account.InitialBalance), cfg.Account.MaxLeverage, exchangeOptions...)

	monitor := middleware.NewMonitor(monitorFlags)
	telemetry := middleware.NewTelemetry(logger)

	router.BalanceHandler = middleware.Chain(monitor.WithBalance, telemetry.WithBalance)(middleware.NoopBalanceHdl)
	router.EquityHandler = middleware.Chain(monitor.WithEquity, telemetry.WithEquity)(middleware.NoopEquityHdl)
	router.OrderAcceptedHandler = middleware.Chain(monitor.WithOrderAccepted, telemetry.WithOrderAccepted)(middleware.NoopOrderAccHdl)
	router.OrderRejectedHandler = middleware.Chain(monitor.WithOrderRejected, telemetry.WithOrderRejected)(middleware.NoopOrderRjctHdl)
	router.OrderFilledHandler = middleware.Chain(monitor.WithOrderFilled, telemetry.WithOrderFilled)(middleware.NoopOrderFillHdl)
	router.TradeOpenHandler = middleware.Chain(monitor.WithTradeOpen, telemetry.WithTradeOpen)(middleware.NoopTradeOpnHdl)
	router.TradeCloseHandler = middleware.Chain(monitor.WithTradeClose, telemetry.WithTradeClose)(middleware.NoopTradeClsHdl)

	go func() {
		if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("market data feed terminated", zap.Error(err))
			cancel()
		}
	}()

	if cfg.Account.OrderSize > 0 {
		if err := checkBalance(ctx, book, cfg.Account); err != nil {
			logger.Fatal("balance check failed", zap.Error(err))
		}
	}

	go router.Exec(ctx)
	venue.Start(ctx)

	defer router.PrintStatistics()
	defer telemetry.PrintStatistics()
	defer func() {
		if err := venue.CriticalCloseAll(); err != nil {
			logger.Error("shutdown incomplete", zap.Error(err))
		}
		venue.Statistics().Print(logger)
	}()

	if err := <-router.Done(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("something unexpected happened", zap.Error(err))
	}
}

// checkBalance waits for the first book snapshot and refuses to start when
// the configured order size cannot be margined at the top of the book.
func checkBalance(ctx context.Context, book *marketdata.Book, cfg AccountConfig) error {
	waitCtx, cancelWait := context.WithTimeout(ctx, 30*time.Second)
	defer cancelWait()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if ask := book.BestAsk(); ask.IsPos() {
			required := fixed.FromFloat64(cfg.OrderSize).Mul(ask).DivInt64(cfg.MaxLeverage)
			if required.Gt(fixed.FromFloat64(cfg.InitialBalance)) {
				return fmt.Errorf("initial balance %.2f cannot margin order size %v at price %v",
					cfg.InitialBalance, cfg.OrderSize, ask)
			}
			return nil
		}
		select {
		case <-waitCtx.Done():
			return errors.New("no market data received before balance check timed out")
		case <-ticker.C:
		}
	}
}

func newJournal(cfg JournalConfig) (journal.Journal, error) {
	switch cfg.Kind {
	case "", "none":
		return journal.Noop{}, nil
	case "csv":
		return journal.NewCsvJournal(cfg.Path)
	case "duckdb":
		return journal.NewDuckDbJournal(cfg.Path)
	default:
		return nil, errors.New("unknown journal kind: " + cfg.Kind)
	}
}
