package dao

import (
	"context"

	"token-pulse/internal/worker/model"

	"gorm.io/gorm"
)

// walletDAO 实现WalletDAO接口
type walletDAO struct {
	db *gorm.DB
}

// NewWalletDAO 创建WalletDAO实例
func NewWalletDAO(db *gorm.DB) WalletDAO {
	return &walletDAO{db: db}
}

func (w *walletDAO) ListWatched(ctx context.Context) ([]*model.WatchedWallet, error) {
	var wallets []*model.WatchedWallet
	err := w.db.WithContext(ctx).
		Select("address", "username", "profile_picture_url").
		Find(&wallets).Error
	if err != nil {
		return nil, err
	}
	return wallets, nil
}
