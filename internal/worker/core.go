package worker

import (
	"context"
	"time"

	"token-pulse/internal/worker/api"
	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/dao"
	"token-pulse/internal/worker/job"
	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"
	"token-pulse/internal/worker/relay"
	"token-pulse/internal/worker/repository"
	"token-pulse/internal/worker/writer"
	"token-pulse/internal/worker/writer/event"

	"go.uber.org/zap"
)

const (
	discoveryJobName = "discovery_refresh"
	cleanupJobName   = "token_cleanup"
	cleanupInterval  = time.Hour

	liveEventBatchSize     = 100
	liveEventFlushInterval = time.Second
)

type Core struct {
	cfg         config.Config
	tl          *zap.Logger
	repo        repository.Repository
	scheduler   *job.Scheduler
	relay       *relay.Relay
	liveEventMQ *writer.AsyncBatchWriter[model.LiveEvent]
	api         *api.Server
	metrics     *monitor.MetricsServer
}

func New(cfg config.Config, logger *zap.Logger) *Core {
	scheduler := job.NewScheduler(logger)
	repo := repository.New(cfg, logger)
	daos := dao.NewDAOManager(repo.GetDB(), repo.GetRDB())

	d := NewDiscovery(cfg, repo, daos, logger)

	if cfg.Discovery.Enable {
		refresh := job.NewDiscoveryRefresh(d.Fetcher.Refreshers(), logger)
		if cfg.Discovery.Cron != "" {
			if err := scheduler.RegisterCronJob(discoveryJobName, cfg.Discovery.Cron, refresh.Run); err != nil {
				panic(err)
			}
		} else {
			// 慢类目只推迟后续类目，不截断整轮刷新
			scheduler.RegisterJobWithoutDeadline(discoveryJobName, cfg.Discovery.Interval, refresh.Run)
		}
	}
	if cfg.Discovery.Retention > 0 {
		cleanup := job.NewTokenCleanup(daos.TokenDAO, cfg.Discovery.Retention, logger)
		scheduler.RegisterJob(cleanupJobName, cleanupInterval, cleanup.Run)
	}

	hub := api.NewHub(logger)
	core := &Core{
		cfg:       cfg,
		repo:      repo,
		tl:        logger,
		scheduler: scheduler,
		metrics:   monitor.NewMetricsServer(cfg.Monitor, logger),
	}

	if cfg.Relay.Enable {
		sinks := []relay.Sink{hub}
		if cfg.Relay.RedisChannel != "" {
			sinks = append(sinks, relay.NewRedisSink(repo.GetRDB(), cfg.Relay.RedisChannel))
		}
		if mq := repo.GetMQ(); mq != nil {
			core.liveEventMQ = writer.NewAsyncBatchWriter(logger,
				event.NewKafkaEventWriter(mq, logger, cfg.Kafka.TopicLiveEvents),
				liveEventBatchSize, liveEventFlushInterval, "live_events_kafka", 1)
			sinks = append(sinks, relay.NewKafkaSink(core.liveEventMQ))
		}
		core.relay = relay.NewRelay(d.Client.StreamURL(), cfg.Relay, daos.WalletDAO, d.Resolver, d.Analytics, sinks, logger)
	}

	core.api = api.NewServer(cfg.API, d.Store, d.Fetcher, hub, logger)
	core.api.AddHealthCheck("postgres", func(ctx context.Context) error {
		sqlDB, err := repo.GetDB().DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	core.api.AddHealthCheck("redis", func(ctx context.Context) error {
		return repo.GetRDB().Ping(ctx).Err()
	})
	return core
}

func (c *Core) Start(ctx context.Context) {
	c.tl.Info("Starting worker core...")
	if c.metrics != nil {
		c.metrics.Run()
	}
	c.api.Run()

	if c.liveEventMQ != nil {
		c.liveEventMQ.Start(ctx)
	}
	if c.relay != nil {
		// 实时推送失败不影响类目刷新
		if err := c.relay.Start(ctx); err != nil {
			c.tl.Error("Relay failed to start, continue without live events", zap.Error(err))
		}
	}

	c.scheduler.Start(ctx)
	c.tl.Info("Worker started successfully")

	<-ctx.Done()
	c.tl.Info("Shutting down worker due to context cancellation...")
}

// Stop 优雅关闭 Core 的所有资源
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping worker core...")

	if c.scheduler != nil {
		c.scheduler.Stop(ctx)
	}

	// 先停上游再关下游写入
	if c.relay != nil {
		c.relay.Stop(ctx)
	}
	if c.liveEventMQ != nil {
		c.liveEventMQ.Close()
	}

	if err := c.api.Stop(ctx); err != nil {
		c.tl.Warn("API server shutdown failed", zap.Error(err))
	}
	if c.metrics != nil {
		_ = c.metrics.Stop(ctx)
	}

	c.repo.Close()

	c.tl.Info("Worker core stopped.")
}
