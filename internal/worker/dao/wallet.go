package dao

import (
	"context"

	"token-pulse/internal/worker/model"
)

// WalletDAO 关注钱包数据访问接口
type WalletDAO interface {
	// ListWatched 返回全部关注钱包
	ListWatched(ctx context.Context) ([]*model.WatchedWallet, error)
}
