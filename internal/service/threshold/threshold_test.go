package threshold

import (
	"math/rand"
	"testing"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sub(ref, upper, lower string) entity.Subscription {
	return entity.Subscription{
		ReferencePrice: decimalx.MustFromString(ref),
		OriginalPrice:  decimalx.MustFromString(ref),
		UpperThreshold: decimalx.MustFromString(upper),
		LowerThreshold: decimalx.MustFromString(lower),
	}
}

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		name      string
		sub       entity.Subscription
		price     string
		wantNote  bool
		wantUpper string
		wantLower string
	}{
		{name: "above upper", sub: sub("100", "10", "10"), price: "111", wantNote: true, wantUpper: "110", wantLower: "90"},
		{name: "exactly upper", sub: sub("100", "10", "10"), price: "110", wantNote: true, wantUpper: "110", wantLower: "90"},
		{name: "exactly lower", sub: sub("100", "10", "10"), price: "90", wantNote: true, wantUpper: "110", wantLower: "90"},
		{name: "inside band", sub: sub("100", "10", "10"), price: "109.99", wantNote: false, wantUpper: "110", wantLower: "90"},
		{name: "after rebase", sub: sub("111", "10", "10"), price: "105", wantNote: false, wantUpper: "122.1", wantLower: "99.9"},
		{name: "zero thresholds always notify", sub: sub("100", "0", "0"), price: "100", wantNote: true, wantUpper: "100", wantLower: "100"},
		{name: "full lower threshold floors at zero", sub: sub("100", "50", "100"), price: "0.01", wantNote: false, wantUpper: "150", wantLower: "0"},
		{name: "large upper", sub: sub("2", "250", "10"), price: "6.99", wantNote: false, wantUpper: "7", wantLower: "1.8"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.sub, decimalx.MustFromString(tc.price))
			assert.Equal(t, tc.wantNote, got.Notify)
			assert.True(t, got.UpperBound.Equal(decimalx.MustFromString(tc.wantUpper)), "upper %s", got.UpperBound)
			assert.True(t, got.LowerBound.Equal(decimalx.MustFromString(tc.wantLower)), "lower %s", got.LowerBound)
		})
	}
}

// notify iff price >= ref*(1+upper/100) or price <= ref*(1-lower/100)
func TestEvaluate_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hundred := decimal.NewFromInt(100)
	one := decimal.NewFromInt(1)

	for i := 0; i < 2000; i++ {
		ref := decimal.New(rng.Int63n(10_000_000)+1, -2)
		upper := decimal.New(rng.Int63n(5000), -2)
		lower := decimal.New(rng.Int63n(10000), -2)
		price := decimal.New(rng.Int63n(20_000_000), -2)

		s := entity.Subscription{ReferencePrice: ref, UpperThreshold: upper, LowerThreshold: lower}
		want := price.GreaterThanOrEqual(ref.Mul(one.Add(upper.Div(hundred)))) ||
			price.LessThanOrEqual(ref.Mul(one.Sub(lower.Div(hundred))))

		assert.Equal(t, want, Evaluate(s, price).Notify, "ref=%s upper=%s lower=%s price=%s", ref, upper, lower, price)
	}
}

func TestRebase(t *testing.T) {
	s := sub("100", "10", "10")
	Rebase(&s, decimalx.MustFromString("111"))

	assert.True(t, s.ReferencePrice.Equal(decimalx.MustFromString("111")))
	assert.True(t, s.OriginalPrice.Equal(decimalx.MustFromString("100")))
	assert.False(t, Evaluate(s, decimalx.MustFromString("105")).Notify)
}

func TestMessage(t *testing.T) {
	testCases := []struct {
		marketType entity.MarketType
		symbol     string
		price      string
		want       string
	}{
		{marketType: entity.MarketCrypto, symbol: "BTC", price: "111", want: "Crypto symbol BTC is now worth $111.00"},
		{marketType: entity.MarketStock, symbol: "AAPL", price: "227.525", want: "Stock symbol AAPL is now worth $227.53"},
		{marketType: entity.MarketCrypto, symbol: "DOGE", price: "0.1234", want: "Crypto symbol DOGE is now worth $0.12"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Message(tc.marketType, tc.symbol, decimalx.MustFromString(tc.price)))
		})
	}
}
