package dao

import (
	"context"
	"time"

	"token-pulse/internal/worker/model"
)

// TokenDAO 发现类目的读路径
type TokenDAO interface {
	// GetSnapshot 读取 Redis 中的类目快照，found=false 表示缓存未命中
	GetSnapshot(ctx context.Context, cacheKey string) (tokens []*model.DiscoveryToken, found bool, err error)

	// ListByCategory 从数据库读取类目下的全部记录
	ListByCategory(ctx context.Context, category string) ([]*model.DiscoveryToken, error)

	// DeleteStale 删除 updated_at 早于 before 的记录
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
