package web

import (
	"strings"

	"github.com/KNICEX/market-pulse/internal/service/hub"
	"github.com/KNICEX/market-pulse/internal/service/market"
)

type SubscribeReq struct {
	Email      string `json:"email" binding:"required,email"`
	Symbol     string `json:"symbol" binding:"required"`
	MarketType string `json:"marketType" binding:"required,oneof=CRYPTO STOCK"`
	// 百分比
	UpperThreshold *float64 `json:"upperThreshold" binding:"required,gte=0"`
	LowerThreshold *float64 `json:"lowerThreshold" binding:"required,gte=0"`
}

type UnsubscribeReq struct {
	Email      string `form:"email" binding:"required,email"`
	Symbol     string `form:"symbol" binding:"required"`
	MarketType string `form:"marketType" binding:"required,oneof=CRYPTO STOCK"`
}

// CatalogVo is keyed by the lower-cased market type, e.g. "crypto".
type CatalogVo map[string][]market.Quote

func toCatalogVo(catalog hub.Catalog) CatalogVo {
	vo := make(CatalogVo, len(catalog))
	for marketType, quotes := range catalog {
		vo[strings.ToLower(string(marketType))] = quotes
	}
	return vo
}

type SyncVo struct {
	Inserted int `json:"inserted"`
}
