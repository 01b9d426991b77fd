package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/samber/lo"
)

// Store keeps quotes under string keys with an expiry.
type Store interface {
	// GetMany returns only the keys that are present and not expired.
	GetMany(ctx context.Context, keys []string) (map[string]market.Quote, error)
	SetMany(ctx context.Context, quotes map[string]market.Quote, ttl time.Duration) error
}

// Adapter caches FetchMany and FetchOne results per symbol for a TTL. Only missing symbols are
// requested from the wrapped adapter. Snapshots are never cached.
type Adapter struct {
	next  market.Adapter
	store Store
	ttl   time.Duration
}

// Wrap returns next unchanged when ttl is not positive.
func Wrap(next market.Adapter, store Store, ttl time.Duration) market.Adapter {
	if ttl <= 0 || store == nil {
		return next
	}
	return &Adapter{
		next:  next,
		store: store,
		ttl:   ttl,
	}
}

func (a *Adapter) MarketType() entity.MarketType {
	return a.next.MarketType()
}

func (a *Adapter) FetchSnapshot(ctx context.Context) ([]market.Quote, error) {
	return a.next.FetchSnapshot(ctx)
}

func (a *Adapter) FetchOne(ctx context.Context, instrument entity.Instrument) (market.Quote, error) {
	key := a.key(instrument.Symbol)
	cached := a.get(ctx, []string{key})
	if quote, ok := cached[key]; ok {
		return quote, nil
	}

	quote, err := a.next.FetchOne(ctx, instrument)
	if err != nil {
		return market.Quote{}, err
	}
	a.set(ctx, []market.Quote{quote})
	return quote, nil
}

func (a *Adapter) FetchMany(ctx context.Context, symbols []string) ([]market.Quote, error) {
	if len(symbols) == 0 {
		return a.next.FetchMany(ctx, symbols)
	}

	keys := lo.Map(symbols, func(item string, index int) string {
		return a.key(item)
	})
	cached := a.get(ctx, keys)

	missing := lo.Uniq(lo.Filter(symbols, func(item string, index int) bool {
		_, ok := cached[keys[index]]
		return !ok
	}))

	if len(missing) > 0 {
		fresh, err := a.next.FetchMany(ctx, missing)
		if err != nil {
			// 有部分缓存时先返回缓存
			if len(cached) == 0 {
				return nil, err
			}
			slog.Warn("serve cached quotes only", "market", a.MarketType(), "missing", missing, "error", err)
		}
		a.set(ctx, fresh)
		for _, quote := range fresh {
			cached[a.key(quote.Symbol)] = quote
		}
	}

	return lo.FilterMap(lo.Uniq(keys), func(item string, index int) (market.Quote, bool) {
		quote, ok := cached[item]
		return quote, ok
	}), nil
}

func (a *Adapter) key(symbol string) string {
	return "quote:" + string(a.next.MarketType()) + ":" + strings.ToUpper(symbol)
}

// get 缓存读失败当作未命中
func (a *Adapter) get(ctx context.Context, keys []string) map[string]market.Quote {
	cached, err := a.store.GetMany(ctx, keys)
	if err != nil {
		slog.Warn("quote cache read failed", "market", a.MarketType(), "error", err)
		return map[string]market.Quote{}
	}
	if cached == nil {
		cached = map[string]market.Quote{}
	}
	return cached
}

func (a *Adapter) set(ctx context.Context, quotes []market.Quote) {
	if len(quotes) == 0 {
		return
	}
	entries := lo.SliceToMap(quotes, func(item market.Quote) (string, market.Quote) {
		return a.key(item.Symbol), item
	})
	if err := a.store.SetMany(ctx, entries, a.ttl); err != nil {
		slog.Warn("quote cache write failed", "market", a.MarketType(), "error", err)
	}
}
