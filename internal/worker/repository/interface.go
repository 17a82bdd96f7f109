package repository

import (
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type RedisClient = *redis.Client
type DBClient = *gorm.DB
type MQClient = *kafka.Writer

type Repository interface {
	GetRDB() RedisClient
	GetDB() DBClient
	// GetMQ kafka.brokers 为空时返回 nil
	GetMQ() MQClient
	Close() error
}
