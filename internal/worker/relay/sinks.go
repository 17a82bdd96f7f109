package relay

import (
	"context"

	"token-pulse/internal/worker/model"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// RedisSink 发布到 Redis 频道，供其他进程订阅
type RedisSink struct {
	rds     *redis.Client
	channel string
}

func NewRedisSink(rds *redis.Client, channel string) *RedisSink {
	return &RedisSink{rds: rds, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, ev model.LiveEvent) error {
	b, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rds.Publish(ctx, s.channel, b).Err()
}

// Submitter 异步批量写入器，队列满时丢弃
type Submitter interface {
	Submit(item model.LiveEvent)
}

// KafkaSink 经 AsyncBatchWriter 批量写 Kafka，不阻塞转发
type KafkaSink struct {
	w Submitter
}

func NewKafkaSink(w Submitter) *KafkaSink {
	return &KafkaSink{w: w}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(_ context.Context, ev model.LiveEvent) error {
	s.w.Submit(ev)
	return nil
}
