package hub

import (
	"context"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/shopspring/decimal"
)

// Catalog groups quotes by market. Every known market type is present, possibly empty.
type Catalog map[entity.MarketType][]market.Quote

func newCatalog() Catalog {
	catalog := make(Catalog, len(entity.MarketTypes))
	for _, marketType := range entity.MarketTypes {
		catalog[marketType] = []market.Quote{}
	}
	return catalog
}

type SubscribeReq struct {
	Email      string
	Symbol     string
	MarketType entity.MarketType
	// 百分比
	UpperThreshold decimal.Decimal
	LowerThreshold decimal.Decimal
}

// Service is what the API layer calls.
type Service interface {
	// GetCatalogSnapshot lists every catalog instrument with a zero price, without calling providers.
	GetCatalogSnapshot(ctx context.Context) (Catalog, error)
	Subscribe(ctx context.Context, req SubscribeReq) error
	// Unsubscribe 订阅不存在时不报错
	Unsubscribe(ctx context.Context, email, symbol string, marketType entity.MarketType) error
	GetSubscribedInstruments(ctx context.Context, email string) (Catalog, error)
	Reconcile(ctx context.Context) (int, error)
	RunNotificationTick(ctx context.Context) error
}

type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

type Notifier interface {
	RunTick(ctx context.Context) error
}
