package crypto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initBinanceAdapter(t *testing.T, handler http.HandlerFunc) *BinanceAdapter {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cli := binance.NewClient("", "")
	cli.BaseURL = srv.URL
	return NewBinanceAdapter(cli, "", nil).(*BinanceAdapter)
}

func tickers(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v3/ticker/24hr" {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode([]map[string]any{
		{"symbol": "BTCUSDT", "lastPrice": "92611.50", "highPrice": "93000.00", "lowPrice": "90000.00"},
		{"symbol": "ETHBTC", "lastPrice": "0.035", "highPrice": "0.036", "lowPrice": "0.034"},
		{"symbol": "ETHUSDT", "lastPrice": "3300.10", "highPrice": "3400", "lowPrice": "3200"},
		{"symbol": "MATICUSDT", "lastPrice": "0.5", "highPrice": "0.6", "lowPrice": "0.4"},
	})
}

func TestBinanceAdapter_FetchMany(t *testing.T) {
	adapter := initBinanceAdapter(t, tickers)

	quotes, err := adapter.FetchMany(context.Background(), []string{"btc", "MATIC", "SOL"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.Equal(t, entity.MarketCrypto, quotes[0].MarketType)
	assert.True(t, quotes[0].Price.Equal(decimalx.MustFromString("92611.5")))
	assert.True(t, quotes[0].DayHigh.Decimal.Equal(decimalx.MustFromString("93000")))
}

func TestBinanceAdapter_FetchSnapshot(t *testing.T) {
	adapter := initBinanceAdapter(t, tickers)

	quotes, err := adapter.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestBinanceAdapter_FetchOne(t *testing.T) {
	adapter := initBinanceAdapter(t, tickers)

	quote, err := adapter.FetchOne(context.Background(), entity.Instrument{Symbol: "ETH", MarketType: entity.MarketCrypto})
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimalx.MustFromString("3300.1")))

	_, err = adapter.FetchOne(context.Background(), entity.Instrument{Symbol: "SOL", MarketType: entity.MarketCrypto})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBinanceAdapter_UpstreamFailure(t *testing.T) {
	adapter := initBinanceAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":-1000,"msg":"unknown"}`))
	})

	_, err := adapter.FetchMany(context.Background(), []string{"BTC"})
	assert.ErrorIs(t, err, errs.ErrTransport)
}
