package market_test

import (
	"context"
	"testing"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	marketType entity.MarketType
}

func (s stubAdapter) MarketType() entity.MarketType { return s.marketType }

func (s stubAdapter) FetchSnapshot(ctx context.Context) ([]market.Quote, error) { return nil, nil }

func (s stubAdapter) FetchOne(ctx context.Context, instrument entity.Instrument) (market.Quote, error) {
	return market.QuoteOf(instrument), nil
}

func (s stubAdapter) FetchMany(ctx context.Context, symbols []string) ([]market.Quote, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	registry := market.NewRegistry(stubAdapter{marketType: entity.MarketStock}, stubAdapter{marketType: entity.MarketCrypto})

	adapter, err := registry.Get(entity.MarketCrypto)
	require.NoError(t, err)
	assert.Equal(t, entity.MarketCrypto, adapter.MarketType())

	assert.Equal(t, []entity.MarketType{entity.MarketCrypto, entity.MarketStock}, registry.MarketTypes())

	_, err = registry.Get("FOREX")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRegistry_OnlyRegisteredMarkets(t *testing.T) {
	registry := market.NewRegistry(stubAdapter{marketType: entity.MarketStock})

	assert.Equal(t, []entity.MarketType{entity.MarketStock}, registry.MarketTypes())
	_, err := registry.Get(entity.MarketCrypto)
	assert.ErrorIs(t, err, errs.ErrValidation)
}
