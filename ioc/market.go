package ioc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/KNICEX/market-pulse/internal/service/market/cache"
	"github.com/KNICEX/market-pulse/internal/service/market/coingecko"
	"github.com/KNICEX/market-pulse/internal/service/market/crypto"
	"github.com/KNICEX/market-pulse/internal/service/market/profit"
	"github.com/KNICEX/market-pulse/internal/service/market/stock"
	"github.com/KNICEX/market-pulse/pkg/httpx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const defaultUpstreamTimeout = 10 * time.Second

func InitRegistry(redisCli redis.UniversalClient) market.Registry {
	type CacheConfig struct {
		TTL      time.Duration `mapstructure:"ttl"`
		MaxItems int           `mapstructure:"max_items"`
	}

	var cacheCfg CacheConfig
	if err := viper.UnmarshalKey("market.cache", &cacheCfg); err != nil {
		panic(err)
	}

	var store cache.Store
	if redisCli != nil {
		store = cache.NewRedisStore(redisCli)
	} else {
		store = cache.NewMemoryStore(cacheCfg.MaxItems)
	}

	return market.NewRegistry(
		cache.Wrap(InitCryptoAdapter(), store, cacheCfg.TTL),
		cache.Wrap(InitStockAdapter(), store, cacheCfg.TTL),
	)
}

func upstreamTimeout() time.Duration {
	if timeout := viper.GetDuration("http.timeout"); timeout > 0 {
		return timeout
	}
	return defaultUpstreamTimeout
}

func InitCryptoAdapter() market.Adapter {
	type Config struct {
		Provider  string   `mapstructure:"provider"`
		Universe  []string `mapstructure:"universe"`
		CoinGecko struct {
			BaseURL string `mapstructure:"base_url"`
			ApiKey  string `mapstructure:"api_key"`
		} `mapstructure:"coingecko"`
		Binance struct {
			QuoteAsset string `mapstructure:"quote_asset"`
		} `mapstructure:"binance"`
	}

	cfg := Config{Provider: "coingecko"}
	if err := viper.UnmarshalKey("market.crypto", &cfg); err != nil {
		panic(err)
	}

	slog.Info("crypto market provider", "provider", cfg.Provider)
	switch cfg.Provider {
	case "coingecko":
		opts := []coingecko.Option{coingecko.WithHTTPClient(httpx.New("coingecko", upstreamTimeout()))}
		if cfg.CoinGecko.BaseURL != "" {
			opts = append(opts, coingecko.WithBaseURL(cfg.CoinGecko.BaseURL))
		}
		return crypto.NewCoinGeckoAdapter(coingecko.NewClient(cfg.CoinGecko.ApiKey, opts...), cfg.Universe)
	case "binance":
		return crypto.NewBinanceAdapter(InitBinanceCli(), cfg.Binance.QuoteAsset, cfg.Universe)
	default:
		panic(fmt.Errorf("unsupported crypto provider %q", cfg.Provider))
	}
}

func InitStockAdapter() market.Adapter {
	type Config struct {
		MaxConcurrency    int `mapstructure:"max_concurrency"`
		RequestsPerSecond int `mapstructure:"requests_per_second"`
		Profit            struct {
			BaseURL       string `mapstructure:"base_url"`
			Token         string `mapstructure:"token"`
			SnapshotLimit int    `mapstructure:"snapshot_limit"`
		} `mapstructure:"profit"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("market.stock", &cfg); err != nil {
		panic(err)
	}

	opts := []profit.Option{
		profit.WithHTTPClient(httpx.New("profit", upstreamTimeout())),
		profit.WithLimit(cfg.Profit.SnapshotLimit),
	}
	if cfg.Profit.BaseURL != "" {
		opts = append(opts, profit.WithBaseURL(cfg.Profit.BaseURL))
	}
	return stock.NewProfitAdapter(profit.NewClient(cfg.Profit.Token, opts...),
		stock.WithMaxConcurrency(cfg.MaxConcurrency),
		stock.WithRequestsPerSecond(cfg.RequestsPerSecond))
}
