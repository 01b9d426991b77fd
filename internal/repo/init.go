package repo

import (
	"errors"

	"github.com/KNICEX/market-pulse/internal/entity"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicated = errors.New("record duplicated")
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Instrument{}, &entity.Subscription{})
}

// translate 把 gorm 的错误转成 repo 层错误, db 需要开启 TranslateError
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicated
	default:
		return err
	}
}
