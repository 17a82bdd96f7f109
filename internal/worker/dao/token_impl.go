package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-pulse/internal/worker/model"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// tokenDAO 实现TokenDAO接口
type tokenDAO struct {
	db  *gorm.DB
	rds *redis.Client
}

// NewTokenDAO 创建TokenDAO实例
func NewTokenDAO(db *gorm.DB, rds *redis.Client) TokenDAO {
	return &tokenDAO{
		db:  db,
		rds: rds,
	}
}

func (t *tokenDAO) GetSnapshot(ctx context.Context, cacheKey string) ([]*model.DiscoveryToken, bool, error) {
	if t.rds == nil {
		return nil, false, nil
	}

	cached, err := t.rds.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get snapshot %s: %w", cacheKey, err)
	}

	var tokens []*model.DiscoveryToken
	if err := sonic.Unmarshal(cached, &tokens); err != nil {
		return nil, false, fmt.Errorf("decode snapshot %s: %w", cacheKey, err)
	}
	return tokens, true, nil
}

func (t *tokenDAO) ListByCategory(ctx context.Context, category string) ([]*model.DiscoveryToken, error) {
	var tokens []*model.DiscoveryToken
	err := t.db.WithContext(ctx).
		Where("category = ?", category).
		Order("marketcap DESC NULLS LAST").
		Order("id ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (t *tokenDAO) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	result := t.db.WithContext(ctx).
		Where("updated_at < ?", before).
		Delete(&model.DiscoveryToken{})
	return result.RowsAffected, result.Error
}
