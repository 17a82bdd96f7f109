package job

import (
	"context"
	"time"

	"token-pulse/internal/worker/dao"

	"go.uber.org/zap"
)

// TokenCleanup 定时清理长时间未刷新的类目记录
//
// 数据库按 (mint, category) upsert，掉出榜单的 token 不会被覆盖，
// 缓存失效回落到数据库时会读到它们。
type TokenCleanup struct {
	tokens    dao.TokenDAO
	retention time.Duration
	now       func() time.Time
	tl        *zap.Logger
}

func NewTokenCleanup(tokens dao.TokenDAO, retention time.Duration, logger *zap.Logger) *TokenCleanup {
	return &TokenCleanup{
		tokens:    tokens,
		retention: retention,
		now:       time.Now,
		tl:        logger,
	}
}

func (j *TokenCleanup) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	j.tl.Info("Deleting discovery tokens not refreshed since cutoff",
		zap.String("cutoff_time", cutoff.Format("2006-01-02 15:04:05")))

	deleted, err := j.tokens.DeleteStale(ctx, cutoff)
	if err != nil {
		j.tl.Warn("Failed to cleanup stale discovery tokens", zap.Error(err), zap.Time("cutoff", cutoff))
		return err
	}

	j.tl.Info("Token cleanup completed successfully", zap.Int64("deleted_rows", deleted))
	return nil
}
