package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/model"
	"token-pulse/pkg/database"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var once sync.Once
var r *repositoryImpl

func New(cfg config.Config, logger *zap.Logger) Repository {
	once.Do(func() {
		r = &repositoryImpl{
			cfg:    cfg,
			logger: logger,
		}
		r.init()
	})
	return r
}

type repositoryImpl struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	mq     *kafka.Writer
}

func (r *repositoryImpl) init() {
	var err error
	r.db, err = database.InitPGWithPool(r.cfg.Postgres.DSN, database.PoolOptions{
		MaxIdleConns: r.cfg.Postgres.MaxIdleConns,
		MaxOpenConns: r.cfg.Postgres.MaxOpenConns,
	})
	if err != nil {
		panic(err)
	}

	if r.cfg.Postgres.AutoMigrate {
		if err := database.Migrate(r.db, &model.DiscoveryToken{}, &model.WatchedWallet{}); err != nil {
			panic(err)
		}
	}

	r.rdb = redis.NewClient(&redis.Options{
		Addr:     r.cfg.Redis.Address,
		Password: r.cfg.Redis.Password,
		DB:       r.cfg.Redis.DB,
		PoolSize: r.cfg.Redis.PoolSize,
	})

	if err := r.rdb.Ping(context.Background()).Err(); err != nil {
		r.logger.Warn("failed to connect to redis, continue", zap.Error(err))
	}

	// Kafka 可选，brokers 为空则跳过
	if strings.TrimSpace(r.cfg.Kafka.Brokers) == "" {
		r.logger.Info("kafka brokers empty, skip kafka writer initialization")
		return
	}
	brokers := strings.Split(r.cfg.Kafka.Brokers, ",")
	r.mq = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchBytes:   1024 * 1024, // 1MB
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
		MaxAttempts:  5,
		WriteTimeout: 500 * time.Millisecond,
	}
}

func (r *repositoryImpl) GetRDB() *redis.Client {
	return r.rdb
}

func (r *repositoryImpl) GetDB() *gorm.DB {
	return r.db
}

func (r *repositoryImpl) GetMQ() MQClient {
	return r.mq
}

func (r *repositoryImpl) Close() error {
	if r.db != nil {
		sqlDB, _ := r.db.DB()
		sqlDB.Close()
	}
	if r.rdb != nil {
		r.rdb.Close()
	}
	if r.mq != nil {
		r.mq.Close()
	}
	return nil
}
