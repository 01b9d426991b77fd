package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/metrics"
	"github.com/KNICEX/market-pulse/internal/repo"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/KNICEX/market-pulse/internal/service/notification"
	"github.com/KNICEX/market-pulse/internal/service/threshold"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrency = 16

// priceLookup market type -> symbol -> price
type priceLookup map[entity.MarketType]map[string]decimal.Decimal

func (l priceLookup) get(instrument entity.Instrument) (decimal.Decimal, bool) {
	price, ok := l[instrument.MarketType][strings.ToUpper(instrument.Symbol)]
	return price, ok
}

// Scheduler re-prices every instrument that has subscribers and alerts the subscribers whose
// threshold band was crossed.
type Scheduler struct {
	instrumentRepo   repo.InstrumentRepo
	subscriptionRepo repo.SubscriptionRepo
	registry         market.Registry
	sink             notification.Sink

	maxConcurrency int
	detached       bool
}

type Option func(s *Scheduler)

// WithMaxConcurrency 同时处理的标的数量上限
func WithMaxConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithDetached makes RunTick return as soon as the per-instrument work is dispatched. The work
// then runs on a context that ignores the tick's cancellation.
func WithDetached(detached bool) Option {
	return func(s *Scheduler) {
		s.detached = detached
	}
}

func NewScheduler(instrumentRepo repo.InstrumentRepo, subscriptionRepo repo.SubscriptionRepo,
	registry market.Registry, sink notification.Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		instrumentRepo:   instrumentRepo,
		subscriptionRepo: subscriptionRepo,
		registry:         registry,
		sink:             sink,
		maxConcurrency:   defaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunTick only fails when the instruments to watch cannot be loaded. Everything after that is
// logged and skipped per market or per instrument.
func (s *Scheduler) RunTick(ctx context.Context) error {
	start := time.Now()
	instruments, err := s.instrumentRepo.FindAllWithSubscriptions(ctx)
	if err != nil {
		metrics.Ticks.WithLabelValues("error").Inc()
		return fmt.Errorf("load subscribed instruments: %w", err)
	}
	if len(instruments) == 0 {
		metrics.Ticks.WithLabelValues("noop").Inc()
		slog.Info("no subscriptions, skip notify tick")
		return nil
	}

	partitions := lo.GroupBy(instruments, func(item entity.Instrument) entity.MarketType {
		return item.MarketType
	})
	prices := s.fetchPrices(ctx, partitions)

	if s.detached {
		go s.dispatch(context.WithoutCancel(ctx), instruments, prices)
		metrics.Ticks.WithLabelValues("dispatched").Inc()
		slog.Info("notify tick dispatched", "instruments", len(instruments))
		return nil
	}

	s.dispatch(ctx, instruments, prices)
	metrics.Ticks.WithLabelValues("ok").Inc()
	slog.Info("notify tick finished", "instruments", len(instruments), "cost", time.Since(start))
	return nil
}

// fetchPrices 每个已注册的市场都会调用 FetchMany, 分区为空时也调用
func (s *Scheduler) fetchPrices(ctx context.Context, partitions map[entity.MarketType][]entity.Instrument) priceLookup {
	marketTypes := s.registry.MarketTypes()
	results := make([][]market.Quote, len(marketTypes))

	var eg errgroup.Group
	for i, marketType := range marketTypes {
		adapter := s.registry[marketType]
		symbols := lo.Map(partitions[marketType], func(item entity.Instrument, index int) string {
			return item.Symbol
		})
		eg.Go(func() error {
			quotes, err := adapter.FetchMany(ctx, symbols)
			if err != nil {
				metrics.PartitionFailures.WithLabelValues(string(marketType)).Inc()
				slog.Error("failed to fetch market prices, skip market this tick",
					"market", marketType, "symbols", len(symbols), "error", err)
				return nil
			}
			results[i] = quotes
			return nil
		})
	}
	_ = eg.Wait()

	lookup := make(priceLookup, len(marketTypes))
	for i, marketType := range marketTypes {
		lookup[marketType] = lo.SliceToMap(results[i], func(item market.Quote) (string, decimal.Decimal) {
			return strings.ToUpper(item.Symbol), item.Price
		})
	}
	return lookup
}

func (s *Scheduler) dispatch(ctx context.Context, instruments []entity.Instrument, prices priceLookup) {
	var eg errgroup.Group
	eg.SetLimit(s.maxConcurrency)
	for _, instrument := range instruments {
		price, ok := prices.get(instrument)
		if !ok {
			slog.Warn("no price for instrument, skip", "symbol", instrument.Symbol, "market", instrument.MarketType)
			continue
		}
		eg.Go(func() error {
			s.safeProcess(ctx, instrument, price)
			return nil
		})
	}
	_ = eg.Wait()
}

func (s *Scheduler) safeProcess(ctx context.Context, instrument entity.Instrument, price decimal.Decimal) {
	defer func() {
		if r := recover(); r != nil {
			metrics.InstrumentFailures.WithLabelValues(string(instrument.MarketType)).Inc()
			slog.Error("panic while notifying instrument subscribers",
				"symbol", instrument.Symbol, "market", instrument.MarketType, "panic", r)
		}
	}()
	if err := s.processInstrument(ctx, instrument, price); err != nil {
		metrics.InstrumentFailures.WithLabelValues(string(instrument.MarketType)).Inc()
		slog.Error("failed to notify instrument subscribers",
			"symbol", instrument.Symbol, "market", instrument.MarketType, "error", err)
	}
}

// processInstrument load -> evaluate -> rebase -> notify, in that order.
func (s *Scheduler) processInstrument(ctx context.Context, instrument entity.Instrument, price decimal.Decimal) error {
	subscriptions, err := s.subscriptionRepo.FindAllByInstrument(ctx, instrument.Id)
	if err != nil {
		return fmt.Errorf("load subscriptions: %w", err)
	}

	notifying := lo.Filter(subscriptions, func(item entity.Subscription, index int) bool {
		return threshold.Evaluate(item, price).Notify
	})
	if len(notifying) == 0 {
		return nil
	}

	for i := range notifying {
		threshold.Rebase(&notifying[i], price)
	}
	ids := lo.Map(notifying, func(item entity.Subscription, index int) int64 {
		return item.Id
	})
	if err := s.subscriptionRepo.Rebase(ctx, ids, price); err != nil {
		return fmt.Errorf("rebase %d subscriptions: %w", len(ids), err)
	}

	message := threshold.Message(instrument.MarketType, instrument.Symbol, price)
	messages := lo.SliceToMap(notifying, func(item entity.Subscription) (string, string) {
		return item.Email, message
	})
	if err := s.sink.NotifyUsersByEmail(ctx, messages); err != nil {
		return fmt.Errorf("send %d notifications: %w", len(messages), err)
	}

	metrics.Notifications.WithLabelValues(string(instrument.MarketType)).Add(float64(len(messages)))
	slog.Info("subscribers notified", "symbol", instrument.Symbol, "market", instrument.MarketType,
		"price", price.String(), "subscribers", len(messages))
	return nil
}
