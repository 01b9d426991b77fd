package crypto

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/adshao/go-binance/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const DefaultQuoteAsset = "USDT"

// 过期/下架币种
var binanceOverdueBase = []string{
	"BCC", "VEN", "PAX", "BCHABC", "BCHSV", "WAVES", "BTT", "USDS", "XMR", "NANO", "OMG",
	"MITH", "MATIC", "FTM", "USDSB", "GTO", "ERD", "NPXS", "COCOS", "TOMO", "PERL", "MFT",
	"KEY", "STORM", "DOCK", "BUSD", "BEAM", "REN", "HC", "MCO", "VITE", "DREP", "BULL", "BEAR",
	"ETHBULL", "ETHBEAR", "TCT", "WRX", "BTS", "EOSBULL", "EOSBEAR", "XRPBULL", "XRPBEAR", "START", "AION",
	"BNBBULL", "BNBBEAR", "WTC", "XZC", "BTCUP", "BTCDOWN", "GXS", "LEND", "STMX", "REP", "PNT", "BKRW",
	"ETHUP", "ETHDOWN", "ADAUP", "ADADOWN", "LINKUP", "LINKDOWN", "GBP", "DAI", "XTZUP", "XTZDOWN",
	"AUD", "BLZ", "IRIS", "KMD", "JST", "SRM", "ANT", "OCEAN", "WNXM", "BZRX", "YFII", "EOSUP", "EOSDOWN",
	"TRXUP", "TRXDOWN", "DOTUP", "DOTDOWN", "LTCUP", "LTCDOWN", "NBS", "HNT", "UNIUP", "UNIDOWN",
	"ORN", "SXPUP", "SXPDOWN", "FILUP", "FILDOWN", "YFIUP", "YFIDOWN", "BCHUP", "BCHDOWN", "UNFI",
	"XEM", "AAVEUP", "AAVEDOWN", "SUSD", "SUSHIUP", "SUSHIDOWN", "XLMUP", "XLMDOWN", "REEF", "BTCST",
	"LIT", "LINA", "RANP", "EPS", "AUTO", "1INCHUP", "1INCHDOWN", "BTG", "MIR", "BURGER", "MDX",
	"NU", "TORN", "KEEP", "ERN", "KLAY", "CLV", "TVK", "BOND", "FOR", "TRIBE", "POLY", "FRONT", "CVP",
	"DAR", "BNX", "RGT", "KP3R", "VGX", "PLA", "RNDR", "MC", "ANY", "OOKI", "ANC", "NBT", "MULTI",
	"GAL", "EPX", "POLYX", "AGIX", "AMB", "BETH", "LOOM", "OAX", "AERGO", "AST", "COMBO", "GFT",
	"STRAT", "BNBUP", "BNBDOWN", "XRPUP", "XRPDOWN", "AKRO", "DNT", "RAMP", "POLS", "UST", "MOB",
	"NEBL",

	"USDC", "FUSDT", "USDP",
}

// BinanceAdapter prices crypto instruments from the exchange's 24h ticker list. Symbols are
// base assets, quoted in a single quote asset.
type BinanceAdapter struct {
	cli         *binance.Client
	quoteAsset  string
	universe    []string
	overdueBase map[string]struct{}
}

func NewBinanceAdapter(cli *binance.Client, quoteAsset string, universe []string) market.Adapter {
	if quoteAsset == "" {
		quoteAsset = DefaultQuoteAsset
	}
	if len(universe) == 0 {
		universe = DefaultUniverse
	}
	return &BinanceAdapter{
		cli:        cli,
		quoteAsset: strings.ToUpper(quoteAsset),
		universe:   universe,
		overdueBase: lo.SliceToMap(binanceOverdueBase, func(item string) (string, struct{}) {
			return item, struct{}{}
		}),
	}
}

func (a *BinanceAdapter) MarketType() entity.MarketType {
	return entity.MarketCrypto
}

func (a *BinanceAdapter) FetchSnapshot(ctx context.Context) ([]market.Quote, error) {
	return a.FetchMany(ctx, a.universe)
}

func (a *BinanceAdapter) FetchOne(ctx context.Context, instrument entity.Instrument) (market.Quote, error) {
	quotes, err := a.FetchMany(ctx, []string{instrument.Symbol})
	if err != nil {
		return market.Quote{}, err
	}
	if len(quotes) == 0 {
		return market.Quote{}, fmt.Errorf("%w: crypto %s", errs.ErrNotFound, instrument.Symbol)
	}
	return quotes[0], nil
}

func (a *BinanceAdapter) FetchMany(ctx context.Context, symbols []string) ([]market.Quote, error) {
	stats, err := a.cli.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: binance: %w", errs.ErrTransport, err)
	}

	requested := lo.SliceToMap(symbols, func(item string) (string, struct{}) {
		return strings.ToUpper(item), struct{}{}
	})

	return lo.FilterMap(stats, func(item *binance.PriceChangeStats, index int) (market.Quote, bool) {
		base, ok := strings.CutSuffix(item.Symbol, a.quoteAsset)
		if !ok || base == "" {
			return market.Quote{}, false
		}
		if _, ok := requested[base]; !ok {
			return market.Quote{}, false
		}
		if _, ok := a.overdueBase[base]; ok {
			return market.Quote{}, false
		}
		price, err := decimal.NewFromString(item.LastPrice)
		if err != nil {
			slog.Error("fail to parse price", "symbol", item.Symbol, "price", item.LastPrice, "error", err)
			return market.Quote{}, false
		}
		return market.Quote{
			Symbol:     base,
			Name:       base,
			MarketType: entity.MarketCrypto,
			Price:      price,
			DayHigh:    parseNullDecimal(item.HighPrice),
			DayLow:     parseNullDecimal(item.LowPrice),
		}, true
	}), nil
}

func parseNullDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
