package market

import (
	"fmt"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/samber/lo"
)

// Registry maps every supported market type to its adapter. Built once at startup.
type Registry map[entity.MarketType]Adapter

func NewRegistry(adapters ...Adapter) Registry {
	return lo.SliceToMap(adapters, func(item Adapter) (entity.MarketType, Adapter) {
		return item.MarketType(), item
	})
}

func (r Registry) Get(marketType entity.MarketType) (Adapter, error) {
	adapter, ok := r[marketType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported market type %q", errs.ErrValidation, marketType)
	}
	return adapter, nil
}

// MarketTypes 已注册的市场, 按 entity.MarketTypes 的顺序
func (r Registry) MarketTypes() []entity.MarketType {
	return lo.Filter(entity.MarketTypes, func(item entity.MarketType, index int) bool {
		_, ok := r[item]
		return ok
	})
}
