package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription 用户对某个标的的价格提醒
type Subscription struct {
	Id           int64      `gorm:"primaryKey;autoIncrement"`
	InstrumentId int64      `gorm:"uniqueIndex:subscription_idx;not null"`
	Instrument   Instrument `gorm:"foreignKey:InstrumentId"`
	Email        string     `gorm:"size:320;uniqueIndex:subscription_idx;index;not null"`
	// 百分比, 非负
	UpperThreshold decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	LowerThreshold decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	// ReferencePrice is the price the thresholds are measured against. Only a rebase after a
	// notification moves it.
	ReferencePrice decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	OriginalPrice  decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	CreatedOn      time.Time       `gorm:"autoCreateTime;not null"`
}
