// Package threshold decides when a price move is large enough to alert a subscriber.
package threshold

import (
	"fmt"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/shopspring/decimal"
)

type Decision struct {
	Notify     bool
	UpperBound decimal.Decimal
	LowerBound decimal.Decimal
}

// Evaluate compares price against the band around the subscription's reference price.
// Hitting either bound exactly notifies.
func Evaluate(sub entity.Subscription, price decimal.Decimal) Decision {
	ref := sub.ReferencePrice
	upper := ref.Add(decimalx.PercentOf(ref, sub.UpperThreshold))
	lower := ref.Sub(decimalx.PercentOf(ref, sub.LowerThreshold))
	return Decision{
		Notify:     price.GreaterThanOrEqual(upper) || price.LessThanOrEqual(lower),
		UpperBound: upper,
		LowerBound: lower,
	}
}

// Rebase 通知后以当前价格作为新的参考价, OriginalPrice 不变
func Rebase(sub *entity.Subscription, price decimal.Decimal) {
	sub.ReferencePrice = price
}

func Message(marketType entity.MarketType, symbol string, price decimal.Decimal) string {
	return fmt.Sprintf("%s symbol %s is now worth $%s", marketType.Title(), symbol, price.StringFixed(2))
}
