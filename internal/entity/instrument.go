package entity

import (
	"time"
)

// Instrument 可订阅的金融标的, (Symbol, MarketType) 唯一
type Instrument struct {
	Id         int64      `gorm:"primaryKey;autoIncrement"`
	Symbol     string     `gorm:"size:32;uniqueIndex:instrument_idx"`
	Name       string     `gorm:"size:128"`
	MarketType MarketType `gorm:"size:16;uniqueIndex:instrument_idx;index"`
	CreatedAt  time.Time
}
