package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/metrics"
	"github.com/KNICEX/market-pulse/internal/repo"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Reconciler inserts the instruments upstream providers list but the catalog does not know yet.
// It never deletes.
type Reconciler struct {
	instrumentRepo repo.InstrumentRepo
	registry       market.Registry
	// 默认只按 symbol 判断是否已存在, 同名的股票和币会被当成同一个标的
	matchMarketType bool
}

type Option func(r *Reconciler)

// WithMatchMarketType keys the existence check on (symbol, market type) instead of symbol only.
func WithMatchMarketType(match bool) Option {
	return func(r *Reconciler) {
		r.matchMarketType = match
	}
}

func NewReconciler(instrumentRepo repo.InstrumentRepo, registry market.Registry, opts ...Option) *Reconciler {
	r := &Reconciler{
		instrumentRepo: instrumentRepo,
		registry:       registry,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile returns how many instruments were inserted. A failed snapshot aborts the run
// before anything is written.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	marketTypes := r.registry.MarketTypes()
	snapshots := make([][]market.Quote, len(marketTypes))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, marketType := range marketTypes {
		adapter := r.registry[marketType]
		eg.Go(func() error {
			quotes, err := adapter.FetchSnapshot(egCtx)
			if err != nil {
				return fmt.Errorf("fetch %s snapshot: %w", marketType, err)
			}
			// 以产出该报价的 adapter 为准
			snapshots[i] = lo.Map(quotes, func(item market.Quote, index int) market.Quote {
				item.MarketType = marketType
				return item
			})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		slog.Error("catalog reconcile aborted", "error", err)
		return 0, err
	}

	quotes := lo.Filter(lo.Flatten(snapshots), func(item market.Quote, index int) bool {
		return item.Symbol != ""
	})
	quotes = lo.UniqBy(quotes, func(item market.Quote) string {
		return r.identity(item.Symbol, item.MarketType)
	})

	existing, err := r.instrumentRepo.FindAllBySymbols(ctx, lo.Uniq(lo.Map(quotes, func(item market.Quote, index int) string {
		return item.Symbol
	})))
	if err != nil {
		return 0, fmt.Errorf("load known instruments: %w", err)
	}
	known := lo.SliceToMap(existing, func(item entity.Instrument) (string, struct{}) {
		return r.identity(item.Symbol, item.MarketType), struct{}{}
	})

	missing := lo.FilterMap(quotes, func(item market.Quote, index int) (entity.Instrument, bool) {
		if _, ok := known[r.identity(item.Symbol, item.MarketType)]; ok {
			return entity.Instrument{}, false
		}
		return entity.Instrument{
			Symbol:     item.Symbol,
			Name:       item.Name,
			MarketType: item.MarketType,
		}, true
	})
	if len(missing) == 0 {
		slog.Info("catalog is up to date", "snapshot", len(quotes))
		return 0, nil
	}

	if err := r.instrumentRepo.CreateBatch(ctx, missing); err != nil {
		return 0, fmt.Errorf("insert %d instruments: %w", len(missing), err)
	}

	for marketType, instruments := range lo.GroupBy(missing, func(item entity.Instrument) entity.MarketType {
		return item.MarketType
	}) {
		metrics.Reconciled.WithLabelValues(string(marketType)).Add(float64(len(instruments)))
	}
	slog.Info("catalog reconciled", "snapshot", len(quotes), "inserted", len(missing))
	return len(missing), nil
}

func (r *Reconciler) identity(symbol string, marketType entity.MarketType) string {
	if r.matchMarketType {
		return string(marketType) + ":" + symbol
	}
	return symbol
}
