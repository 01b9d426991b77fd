package repo

import (
	"context"

	"github.com/KNICEX/market-pulse/internal/entity"
	"gorm.io/gorm"
)

const createBatchSize = 200

type InstrumentRepo interface {
	FindBySymbolAndMarketType(ctx context.Context, symbol string, marketType entity.MarketType) (entity.Instrument, error)
	FindAll(ctx context.Context) ([]entity.Instrument, error)
	// FindAllWithSubscriptions 返回至少有一个订阅者的标的
	FindAllWithSubscriptions(ctx context.Context) ([]entity.Instrument, error)
	FindAllBySymbols(ctx context.Context, symbols []string) ([]entity.Instrument, error)
	CreateBatch(ctx context.Context, instruments []entity.Instrument) error
}

type instrumentRepo struct {
	db *gorm.DB
}

func NewInstrumentRepo(db *gorm.DB) InstrumentRepo {
	return &instrumentRepo{
		db: db,
	}
}

func (repo *instrumentRepo) FindBySymbolAndMarketType(ctx context.Context, symbol string, marketType entity.MarketType) (entity.Instrument, error) {
	var instrument entity.Instrument
	err := repo.db.WithContext(ctx).
		Where("symbol = ? AND market_type = ?", symbol, marketType).
		First(&instrument).Error
	if err != nil {
		return entity.Instrument{}, translate(err)
	}
	return instrument, nil
}

func (repo *instrumentRepo) FindAll(ctx context.Context) ([]entity.Instrument, error) {
	var instruments []entity.Instrument
	err := repo.db.WithContext(ctx).Order("id").Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}

func (repo *instrumentRepo) FindAllWithSubscriptions(ctx context.Context) ([]entity.Instrument, error) {
	db := repo.db.WithContext(ctx)
	var instruments []entity.Instrument
	err := db.Where("id IN (?)", db.Model(&entity.Subscription{}).Select("instrument_id")).
		Order("id").
		Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}

func (repo *instrumentRepo) FindAllBySymbols(ctx context.Context, symbols []string) ([]entity.Instrument, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	var instruments []entity.Instrument
	err := repo.db.WithContext(ctx).Where("symbol IN ?", symbols).Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}

func (repo *instrumentRepo) CreateBatch(ctx context.Context, instruments []entity.Instrument) error {
	if len(instruments) == 0 {
		return nil
	}
	return translate(repo.db.WithContext(ctx).CreateInBatches(&instruments, createBatchSize).Error)
}
