package worker

import (
	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/dao"
	"token-pulse/internal/worker/discovery"
	"token-pulse/internal/worker/repository"
	"token-pulse/internal/worker/service"
	"token-pulse/internal/worker/writer/token"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/metadata"

	"go.uber.org/zap"
)

// Discovery 类目刷新和实时推送共用的组件
type Discovery struct {
	Client    *bitquery.Client
	Resolver  *metadata.Resolver
	Analytics *discovery.Analytics
	Store     *service.TokenStore
	Fetcher   *discovery.Fetcher
}

func NewDiscovery(cfg config.Config, repo repository.Repository, daos *dao.DAOManager, logger *zap.Logger) *Discovery {
	client := bitquery.NewClient(cfg.Bitquery, logger)
	resolver := metadata.NewResolver(cfg.Metadata, logger)

	// 数据库 upsert + Redis 快照
	store := service.NewTokenStore(
		token.NewDbTokenWriter(repo.GetDB(), logger),
		token.NewRedisTokenWriter(repo.GetRDB(), logger, cfg.Discovery.CacheTTL),
		daos.TokenDAO,
		logger,
	)

	analytics := discovery.NewAnalytics(client, cfg.Analytics, logger)
	enricher := discovery.NewEnricher(client, resolver, cfg.Discovery, logger)
	return &Discovery{
		Client:    client,
		Resolver:  resolver,
		Analytics: analytics,
		Store:     store,
		Fetcher:   discovery.NewFetcher(client, resolver, enricher, analytics, store, cfg.Discovery, logger),
	}
}
