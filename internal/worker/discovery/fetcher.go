package discovery

import (
	"context"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"
	"token-pulse/pkg/metadata"

	"go.uber.org/zap"
)

// Querier 上游 GraphQL 查询，*bitquery.Client 实现了它
type Querier interface {
	Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error
}

// MetadataResolver 链下元数据解析，失败返回 nil
type MetadataResolver interface {
	Resolve(ctx context.Context, uri string) *metadata.Metadata
}

// Store 类目快照持久化
type Store interface {
	Save(ctx context.Context, tokens []*model.DiscoveryToken, category, cacheKey string) error
}

// Fetcher 各发现类目的抓取入口
type Fetcher struct {
	querier     Querier
	resolver    MetadataResolver
	enricher    *Enricher
	analytics   *Analytics
	store       Store
	concurrency int
	tl          *zap.Logger
}

func NewFetcher(q Querier, resolver MetadataResolver, enricher *Enricher, analytics *Analytics, store Store, cfg config.DiscoveryConfig, logger *zap.Logger) *Fetcher {
	concurrency := cfg.EnrichConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Fetcher{
		querier:     q,
		resolver:    resolver,
		enricher:    enricher,
		analytics:   analytics,
		store:       store,
		concurrency: concurrency,
		tl:          logger,
	}
}

// instrumentedQuery 记录每个上游查询的耗时和结果
func instrumentedQuery(ctx context.Context, q Querier, name, query string, variables map[string]interface{}, out interface{}) error {
	start := time.Now()
	err := q.Query(ctx, query, variables, out)
	result := "ok"
	if err != nil {
		result = "error"
	}
	monitor.UpstreamRequestDuration.WithLabelValues(name, result).Observe(time.Since(start).Seconds())
	return err
}
