package ioc

import (
	"time"

	"github.com/KNICEX/market-pulse/internal/repo"
	"github.com/KNICEX/market-pulse/internal/service/catalog"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/KNICEX/market-pulse/internal/service/notification"
	"github.com/KNICEX/market-pulse/internal/service/notifier"
	"github.com/spf13/viper"
)

type NotifierConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Detached       bool          `mapstructure:"detached"`
}

type ReconcilerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	MatchMarketType bool          `mapstructure:"match_market_type"`
}

func NotifierCfg() NotifierConfig {
	cfg := NotifierConfig{Interval: time.Minute}
	if err := viper.UnmarshalKey("notifier", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func ReconcilerCfg() ReconcilerConfig {
	var cfg ReconcilerConfig
	if err := viper.UnmarshalKey("reconciler", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitScheduler(cfg NotifierConfig, instrumentRepo repo.InstrumentRepo, subscriptionRepo repo.SubscriptionRepo,
	registry market.Registry, sink notification.Sink) *notifier.Scheduler {
	return notifier.NewScheduler(instrumentRepo, subscriptionRepo, registry, sink,
		notifier.WithMaxConcurrency(cfg.MaxConcurrency),
		notifier.WithDetached(cfg.Detached))
}

func InitReconciler(cfg ReconcilerConfig, instrumentRepo repo.InstrumentRepo, registry market.Registry) *catalog.Reconciler {
	return catalog.NewReconciler(instrumentRepo, registry, catalog.WithMatchMarketType(cfg.MatchMarketType))
}
