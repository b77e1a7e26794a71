package main

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type MarketConfig struct {
	WsUrl     string
	Subscribe string
}

type AccountConfig struct {
	InitialBalance float64
	MaxLeverage    int64
	OrderSize      float64
}

type ExecutionConfig struct {
	FillDelay     time.Duration
	PollInterval  time.Duration
	MakerFeeRate  float64
	TakerFeeRate  float64
	UseCustomFees bool
}

type JournalConfig struct {
	Kind string // none, csv or duckdb
	Path string
}

type RuntimeConfig struct {
	LogFile             string
	RouterEventCapacity int
}

type Config struct {
	Market    MarketConfig
	Account   AccountConfig
	Execution ExecutionConfig
	Journal   JournalConfig
	Runtime   RuntimeConfig
}

func LoadConfig() (*Config, error) {
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetConfigName("paperdex")
	viper.SetEnvPrefix("paperdex")
	viper.AutomaticEnv()

	viper.SetDefault("account.initial_balance", 10000.0)
	viper.SetDefault("account.max_leverage", 10)
	viper.SetDefault("execution.fill_delay_ms", 100)
	viper.SetDefault("execution.poll_interval_ms", 50)
	viper.SetDefault("journal.kind", "csv")
	viper.SetDefault("journal.path", "logs/paper_trading")
	viper.SetDefault("runtime.router_event_capacity", 1000)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Market: MarketConfig{
			WsUrl:     viper.GetString("market.ws_url"),
			Subscribe: viper.GetString("market.subscribe"),
		},
		Account: AccountConfig{
			InitialBalance: viper.GetFloat64("account.initial_balance"),
			MaxLeverage:    viper.GetInt64("account.max_leverage"),
			OrderSize:      viper.GetFloat64("account.order_size"),
		},
		Execution: ExecutionConfig{
			FillDelay:     time.Duration(viper.GetInt64("execution.fill_delay_ms")) * time.Millisecond,
			PollInterval:  time.Duration(viper.GetInt64("execution.poll_interval_ms")) * time.Millisecond,
			MakerFeeRate:  viper.GetFloat64("execution.maker_fee_rate"),
			TakerFeeRate:  viper.GetFloat64("execution.taker_fee_rate"),
			UseCustomFees: viper.IsSet("execution.maker_fee_rate") && viper.IsSet("execution.taker_fee_rate"),
		},
		Journal: JournalConfig{
			Kind: viper.GetString("journal.kind"),
			Path: viper.GetString("journal.path"),
		},
		Runtime: RuntimeConfig{
			LogFile:             viper.GetString("runtime.log_file"),
			RouterEventCapacity: viper.GetInt("runtime.router_event_capacity"),
		},
	}

	if cfg.Market.WsUrl == "" {
		return nil, errors.New("market.ws_url is required")
	}
	if cfg.Account.InitialBalance <= 0 {
		return nil, errors.New("account.initial_balance must be positive")
	}
	if cfg.Account.MaxLeverage < 1 {
		return nil, errors.New("account.max_leverage must be at least 1")
	}
	if cfg.Account.OrderSize < 0 {
		return nil, errors.New("account.order_size must not be negative")
	}

	return cfg, nil
}
