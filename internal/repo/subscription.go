package repo

import (
	"context"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubscriptionRepo interface {
	Exists(ctx context.Context, symbol string, marketType entity.MarketType, email string) (bool, error)
	Create(ctx context.Context, subscription entity.Subscription) (int64, error)
	// Delete 不存在时不报错
	Delete(ctx context.Context, symbol string, marketType entity.MarketType, email string) error
	FindAllByEmail(ctx context.Context, email string) ([]entity.Subscription, error)
	FindAllByInstrument(ctx context.Context, instrumentId int64) ([]entity.Subscription, error)
	// Rebase moves the reference price of every given subscription to price in one statement.
	Rebase(ctx context.Context, ids []int64, price decimal.Decimal) error
}

type subscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) SubscriptionRepo {
	return &subscriptionRepo{
		db: db,
	}
}

func (repo *subscriptionRepo) instrumentIds(db *gorm.DB, symbol string, marketType entity.MarketType) *gorm.DB {
	return db.Model(&entity.Instrument{}).
		Select("id").
		Where("symbol = ? AND market_type = ?", symbol, marketType)
}

func (repo *subscriptionRepo) Exists(ctx context.Context, symbol string, marketType entity.MarketType, email string) (bool, error) {
	db := repo.db.WithContext(ctx)
	var count int64
	err := db.Model(&entity.Subscription{}).
		Where("email = ? AND instrument_id IN (?)", email, repo.instrumentIds(db, symbol, marketType)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *subscriptionRepo) Create(ctx context.Context, subscription entity.Subscription) (int64, error) {
	// 只保存外键, 不 upsert 关联的 instrument
	err := repo.db.WithContext(ctx).Omit("Instrument").Create(&subscription).Error
	if err != nil {
		return 0, translate(err)
	}
	return subscription.Id, nil
}

func (repo *subscriptionRepo) Delete(ctx context.Context, symbol string, marketType entity.MarketType, email string) error {
	db := repo.db.WithContext(ctx)
	return db.Where("email = ? AND instrument_id IN (?)", email, repo.instrumentIds(db, symbol, marketType)).
		Delete(&entity.Subscription{}).Error
}

func (repo *subscriptionRepo) FindAllByEmail(ctx context.Context, email string) ([]entity.Subscription, error) {
	var subscriptions []entity.Subscription
	err := repo.db.WithContext(ctx).
		Preload("Instrument").
		Where("email = ?", email).
		Order("id").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (repo *subscriptionRepo) FindAllByInstrument(ctx context.Context, instrumentId int64) ([]entity.Subscription, error) {
	var subscriptions []entity.Subscription
	err := repo.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentId).
		Order("id").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (repo *subscriptionRepo) Rebase(ctx context.Context, ids []int64, price decimal.Decimal) error {
	if len(ids) == 0 {
		return nil
	}
	return repo.db.WithContext(ctx).
		Model(&entity.Subscription{}).
		Where("id IN ?", ids).
		Update("reference_price", price).Error
}
