package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-pulse/internal/worker"
	"token-pulse/internal/worker/config"
	"token-pulse/pkg/logger"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// 初始化配置文件
	cfg := config.InitConfig()

	// 初始化 trace provider
	logger.InitTrace("token-pulse", "worker")
	// 启动主 span
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLoggerWithOptions("worker", logger.Options{
		Dir:        cfg.Log.Dir,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	if err := cfg.Validate(); err != nil {
		tl.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	// 启动配置热加载监听
	go config.WatchConfig(&cfg)

	core := worker.New(cfg, tl)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		tl.Info("Starting token-pulse worker...")
		core.Start(ctx)
	}()

	// 监听操作系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	tl.Info("Received shutdown signal, starting graceful shutdown...")
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	core.Stop(stopCtx)

	tl.Info("Shutting down all cores...")
}
