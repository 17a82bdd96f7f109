package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-pulse/internal/worker/dao"
	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"
	"token-pulse/internal/worker/writer"
	"token-pulse/internal/worker/writer/token"

	"go.uber.org/zap"
)

// TokenStore 类目快照的持久化与读取
//
// 写入：数据库逐条 upsert（单事务），Redis 整体覆盖写入并带 TTL。
// 数据库失败不影响缓存写入，缓存可能暂时领先于数据库。
//
// 读取：先读 Redis 快照，未命中或出错再回落到数据库。
type TokenStore struct {
	dbWriter    writer.BatchWriter[token.Snapshot]
	cacheWriter writer.BatchWriter[token.Snapshot]
	tokenDAO    dao.TokenDAO
	tl          *zap.Logger
	now         func() time.Time
}

func NewTokenStore(dbWriter, cacheWriter writer.BatchWriter[token.Snapshot], tokenDAO dao.TokenDAO, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		dbWriter:    dbWriter,
		cacheWriter: cacheWriter,
		tokenDAO:    tokenDAO,
		tl:          logger,
		now:         time.Now,
	}
}

// Save 返回数据库和缓存错误的合并结果，调用方只需记录日志
func (s *TokenStore) Save(ctx context.Context, tokens []*model.DiscoveryToken, category, cacheKey string) error {
	now := s.now()
	for _, t := range tokens {
		t.Category = category
		t.UpdatedAt = now
	}
	snapshot := token.Snapshot{Category: category, CacheKey: cacheKey, Tokens: tokens}

	var errs []error
	if s.dbWriter != nil {
		if err := s.dbWriter.BWrite(ctx, []token.Snapshot{snapshot}); err != nil {
			monitor.PersistenceFailures.WithLabelValues("db").Inc()
			s.tl.Error("Persist tokens to db failed", zap.String("category", category), zap.Error(err))
			errs = append(errs, fmt.Errorf("db: %w", err))
		}
	}
	if s.cacheWriter != nil {
		if err := s.cacheWriter.BWrite(ctx, []token.Snapshot{snapshot}); err != nil {
			monitor.PersistenceFailures.WithLabelValues("cache").Inc()
			s.tl.Error("Persist tokens to cache failed", zap.String("category", category), zap.Error(err))
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}

	monitor.DiscoveryTokensSaved.WithLabelValues(category).Set(float64(len(tokens)))
	return errors.Join(errs...)
}

func (s *TokenStore) Load(ctx context.Context, category, cacheKey string) ([]*model.DiscoveryToken, error) {
	tokens, found, err := s.tokenDAO.GetSnapshot(ctx, cacheKey)
	if err != nil {
		s.tl.Warn("Read snapshot from cache failed, falling back to db", zap.String("key", cacheKey), zap.Error(err))
	}
	if found {
		return tokens, nil
	}

	tokens, err = s.tokenDAO.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list %s tokens: %w", category, err)
	}
	return tokens, nil
}
