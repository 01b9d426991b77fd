package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/repo"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type service struct {
	instrumentRepo   repo.InstrumentRepo
	subscriptionRepo repo.SubscriptionRepo
	registry         market.Registry
	reconciler       Reconciler
	notifier         Notifier
}

func NewService(instrumentRepo repo.InstrumentRepo, subscriptionRepo repo.SubscriptionRepo,
	registry market.Registry, reconciler Reconciler, notifier Notifier) Service {
	return &service{
		instrumentRepo:   instrumentRepo,
		subscriptionRepo: subscriptionRepo,
		registry:         registry,
		reconciler:       reconciler,
		notifier:         notifier,
	}
}

func (s *service) GetCatalogSnapshot(ctx context.Context) (Catalog, error) {
	instruments, err := s.instrumentRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	catalog := newCatalog()
	for _, instrument := range instruments {
		catalog[instrument.MarketType] = append(catalog[instrument.MarketType], market.QuoteOf(instrument))
	}
	return catalog, nil
}

func (s *service) Subscribe(ctx context.Context, req SubscribeReq) error {
	if err := validate(req); err != nil {
		return err
	}
	adapter, err := s.registry.Get(req.MarketType)
	if err != nil {
		return err
	}

	exists, err := s.subscriptionRepo.Exists(ctx, req.Symbol, req.MarketType, req.Email)
	if err != nil {
		return fmt.Errorf("check subscription: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s is already subscribed to %s", errs.ErrConflict, req.Email, req.Symbol)
	}

	instrument, err := s.instrumentRepo.FindBySymbolAndMarketType(ctx, req.Symbol, req.MarketType)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: instrument %s %s", errs.ErrNotFound, req.MarketType, req.Symbol)
	}
	if err != nil {
		return fmt.Errorf("find instrument: %w", err)
	}

	quote, err := adapter.FetchOne(ctx, instrument)
	if err != nil {
		return err
	}

	_, err = s.subscriptionRepo.Create(ctx, entity.Subscription{
		InstrumentId:   instrument.Id,
		Email:          req.Email,
		UpperThreshold: req.UpperThreshold,
		LowerThreshold: req.LowerThreshold,
		ReferencePrice: quote.Price,
		OriginalPrice:  quote.Price,
	})
	// 并发订阅时由唯一索引兜底
	if errors.Is(err, repo.ErrDuplicated) {
		return fmt.Errorf("%w: %s is already subscribed to %s", errs.ErrConflict, req.Email, req.Symbol)
	}
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	slog.Info("user subscribed", "email", req.Email, "symbol", req.Symbol, "market", req.MarketType,
		"price", quote.Price.String())
	return nil
}

func (s *service) Unsubscribe(ctx context.Context, email, symbol string, marketType entity.MarketType) error {
	if err := s.subscriptionRepo.Delete(ctx, symbol, marketType, email); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// GetSubscribedInstruments 只对非空的市场调用 FetchMany
func (s *service) GetSubscribedInstruments(ctx context.Context, email string) (Catalog, error) {
	subscriptions, err := s.subscriptionRepo.FindAllByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}

	partitions := lo.GroupBy(subscriptions, func(item entity.Subscription) entity.MarketType {
		return item.Instrument.MarketType
	})

	for marketType := range partitions {
		if _, err := s.registry.Get(marketType); err != nil {
			return nil, err
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	quotes := make([][]market.Quote, len(entity.MarketTypes))
	for i, marketType := range entity.MarketTypes {
		subs := partitions[marketType]
		if len(subs) == 0 {
			continue
		}
		adapter := s.registry[marketType]
		symbols := lo.Map(subs, func(item entity.Subscription, index int) string {
			return item.Instrument.Symbol
		})
		eg.Go(func() error {
			res, err := adapter.FetchMany(egCtx, symbols)
			if err != nil {
				return fmt.Errorf("fetch %s quotes: %w", marketType, err)
			}
			quotes[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	catalog := newCatalog()
	for i, marketType := range entity.MarketTypes {
		if quotes[i] != nil {
			catalog[marketType] = quotes[i]
		}
	}
	return catalog, nil
}

func (s *service) Reconcile(ctx context.Context) (int, error) {
	return s.reconciler.Reconcile(ctx)
}

func (s *service) RunNotificationTick(ctx context.Context) error {
	return s.notifier.RunTick(ctx)
}

func validate(req SubscribeReq) error {
	if strings.TrimSpace(req.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", errs.ErrValidation)
	}
	// 只接受裸地址, 不接受 "Bob <a@b.com>"
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return fmt.Errorf("%w: invalid email %q", errs.ErrValidation, req.Email)
	}
	if !req.MarketType.IsValid() {
		return fmt.Errorf("%w: unknown market type %q", errs.ErrValidation, req.MarketType)
	}
	if req.UpperThreshold.IsNegative() || req.LowerThreshold.IsNegative() {
		return fmt.Errorf("%w: thresholds must be non-negative", errs.ErrValidation)
	}
	return nil
}
