package entity

import "strings"

type MarketType string

const (
	MarketCrypto MarketType = "CRYPTO"
	MarketStock  MarketType = "STOCK"
)

// MarketTypes 已支持的市场, 顺序固定
var MarketTypes = []MarketType{MarketCrypto, MarketStock}

func (t MarketType) IsValid() bool {
	switch t {
	case MarketCrypto, MarketStock:
		return true
	default:
		return false
	}
}

// Title returns the market type with only its first letter upper-cased, e.g. "Crypto".
func (t MarketType) Title() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
