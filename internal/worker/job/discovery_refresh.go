package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-pulse/internal/worker/discovery"

	"go.uber.org/zap"
)

// DiscoveryRefresh 依次刷新所有发现类目
type DiscoveryRefresh struct {
	refreshers []discovery.Refresher
	logger     *zap.Logger
}

func NewDiscoveryRefresh(refreshers []discovery.Refresher, logger *zap.Logger) *DiscoveryRefresh {
	return &DiscoveryRefresh{refreshers: refreshers, logger: logger}
}

// Run 某个类目失败或耗时过长都不影响后续类目，所有错误合并后返回给调度器记录。
// ctx 上的截止时间不传给各类目，单次请求由 HTTP 超时约束；只有取消（关闭）会中止循环。
func (j *DiscoveryRefresh) Run(ctx context.Context) error {
	start := time.Now()
	j.logger.Info("Discovery refresh tick")

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		if errors.Is(ctx.Err(), context.Canceled) {
			cancel()
		}
	})
	defer stop()

	var errs []error
	total := 0
	for _, r := range j.refreshers {
		if errors.Is(ctx.Err(), context.Canceled) {
			errs = append(errs, fmt.Errorf("%s: %w", r.Category, ctx.Err()))
			break
		}
		tokens, err := r.Fetch(fetchCtx)
		if err != nil {
			errs = append(errs, err)
		}
		total += len(tokens)
	}

	j.logger.Info("Discovery refresh finished",
		zap.Int("tokens", total),
		zap.Int("failed", len(errs)),
		zap.Duration("took", time.Since(start)))
	return errors.Join(errs...)
}

// RunCategory 只刷新单个类目，供脚本手动触发
func (j *DiscoveryRefresh) RunCategory(ctx context.Context, category string) error {
	for _, r := range j.refreshers {
		if r.Category == category {
			_, err := r.Fetch(ctx)
			return err
		}
	}
	return fmt.Errorf("unknown category %q", category)
}
