package crypto

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/KNICEX/market-pulse/internal/service/market/coingecko"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var DefaultUniverse = []string{"btc", "eth"}

// CoinMarkets is the part of the CoinGecko client the adapter uses.
type CoinMarkets interface {
	Markets(ctx context.Context, symbols []string) ([]coingecko.Coin, error)
}

type CoinGeckoAdapter struct {
	client   CoinMarkets
	universe []string
}

func NewCoinGeckoAdapter(client CoinMarkets, universe []string) market.Adapter {
	if len(universe) == 0 {
		universe = DefaultUniverse
	}
	return &CoinGeckoAdapter{
		client:   client,
		universe: universe,
	}
}

func (a *CoinGeckoAdapter) MarketType() entity.MarketType {
	return entity.MarketCrypto
}

func (a *CoinGeckoAdapter) FetchSnapshot(ctx context.Context) ([]market.Quote, error) {
	return a.FetchMany(ctx, a.universe)
}

func (a *CoinGeckoAdapter) FetchOne(ctx context.Context, instrument entity.Instrument) (market.Quote, error) {
	quotes, err := a.FetchMany(ctx, []string{instrument.Symbol})
	if err != nil {
		return market.Quote{}, err
	}
	if len(quotes) == 0 {
		return market.Quote{}, fmt.Errorf("%w: crypto %s", errs.ErrNotFound, instrument.Symbol)
	}
	return quotes[0], nil
}

func (a *CoinGeckoAdapter) FetchMany(ctx context.Context, symbols []string) ([]market.Quote, error) {
	coins, err := a.client.Markets(ctx, symbols)
	if err != nil {
		return nil, err
	}

	requested := lo.SliceToMap(symbols, func(item string) (string, struct{}) {
		return strings.ToUpper(item), struct{}{}
	})

	quotes := lo.FilterMap(coins, func(item coingecko.Coin, index int) (market.Quote, bool) {
		symbol := strings.ToUpper(item.Symbol)
		if _, ok := requested[symbol]; !ok {
			return market.Quote{}, false
		}
		if item.CurrentPrice == nil {
			slog.Warn("coingecko returned coin without price", "symbol", symbol, "id", item.Id)
			return market.Quote{}, false
		}
		price, ok := decimalx.FromFloat(*item.CurrentPrice)
		if !ok {
			return market.Quote{}, false
		}
		return market.Quote{
			Symbol:     symbol,
			Name:       item.Name,
			MarketType: entity.MarketCrypto,
			Price:      price,
			DayHigh:    nullDecimal(item.High24h),
			DayLow:     nullDecimal(item.Low24h),
		}, true
	})

	// 同一个 symbol 可能对应多个币, 上游按市值排序, 取第一个
	return lo.UniqBy(quotes, func(item market.Quote) string {
		return item.Symbol
	}), nil
}

func nullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	d, ok := decimalx.FromFloat(*f)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}
