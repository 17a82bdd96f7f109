package token

import (
	"context"
	"fmt"
	"time"

	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/writer"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultSnapshotTTL = 120 * time.Second

type RedisTokenWriter struct {
	redis *redis.Client
	tl    *zap.Logger
	ttl   time.Duration
}

func NewRedisTokenWriter(rdb *redis.Client, tl *zap.Logger, ttl time.Duration) writer.BatchWriter[Snapshot] {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisTokenWriter{redis: rdb, tl: tl, ttl: ttl}
}

// BWrite 整个类目作为一个 JSON 覆盖写入，读方只会看到完整的新旧快照之一
func (w *RedisTokenWriter) BWrite(ctx context.Context, snapshots []Snapshot) error {
	for _, s := range snapshots {
		tokens := s.Tokens
		if tokens == nil {
			tokens = []*model.DiscoveryToken{}
		}
		data, err := sonic.Marshal(tokens)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", s.CacheKey, err)
		}
		if err := w.redis.Set(ctx, s.CacheKey, data, w.ttl).Err(); err != nil {
			w.tl.Warn("❌ Redis snapshot write failed", zap.String("key", s.CacheKey), zap.Error(err))
			return fmt.Errorf("set snapshot %s: %w", s.CacheKey, err)
		}
	}
	return nil
}

func (w *RedisTokenWriter) Close() error {
	return nil
}
