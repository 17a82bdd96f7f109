package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-pulse/internal/worker"
	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/dao"
	"token-pulse/internal/worker/job"
	"token-pulse/internal/worker/repository"
	"token-pulse/pkg/logger"

	"go.uber.org/zap"
)

// 一次性任务：手动刷新全部或单个类目

func main() {
	category := flag.String("category", "", "refresh a single category (bluechip_meme, xstock, lsts, ai, trending, popular); empty refreshes all")
	flag.Parse()

	startTime := time.Now()
	cfg := config.InitConfig()

	logger.InitTrace("token-pulse", "script")
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	rootLogger := logger.NewLogger("script")
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	if err := cfg.Validate(); err != nil {
		tl.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	repo := repository.New(cfg, tl)
	defer repo.Close()

	d := worker.NewDiscovery(cfg, repo, dao.NewDAOManager(repo.GetDB(), repo.GetRDB()), tl)
	refresh := job.NewDiscoveryRefresh(d.Fetcher.Refreshers(), tl)

	// Ctrl-C 中止剩余类目，单个请求由 HTTP 超时约束
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tl.Info("Starting token-pulse discovery refresh...", zap.String("category", *category))
	var err error
	if *category != "" {
		err = refresh.RunCategory(ctx, *category)
	} else {
		err = refresh.Run(ctx)
	}
	if err != nil {
		tl.Error("Discovery refresh failed", zap.Error(err))
		os.Exit(1)
	}
	tl.Info("Task completed successfully", zap.Duration("taken_time", time.Since(startTime)))
}
