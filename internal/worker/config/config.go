package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"token-pulse/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const EnvPrefix = "TOKEN_PULSE"

// Config 定义整个配置的结构
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Bitquery  BitqueryConfig  `mapstructure:"bitquery"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Relay     RelayConfig     `mapstructure:"relay"`
	API       APIConfig       `mapstructure:"api"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// KafkaConfig Kafka 配置，brokers 为空时不启用
type KafkaConfig struct {
	Brokers         string `mapstructure:"brokers"`
	TopicLiveEvents string `mapstructure:"topic_live_events"`
}

type BitqueryConfig struct {
	URL        string `mapstructure:"url"`
	WSURL      string `mapstructure:"ws_url"`
	AuthToken  string `mapstructure:"auth_token"`
	Timeout    int    `mapstructure:"timeout"`    // 秒
	RateLimit  int    `mapstructure:"rate_limit"` // 每分钟
	MaxRetries int    `mapstructure:"max_retries"`
}

type MetadataConfig struct {
	IPFSGateway    string        `mapstructure:"ipfs_gateway"`
	ArweaveGateway string        `mapstructure:"arweave_gateway"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type AnalyticsConfig struct {
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	CurrentWindow time.Duration `mapstructure:"current_window"`
}

type DiscoveryConfig struct {
	Enable     bool          `mapstructure:"enable"`
	Interval   time.Duration `mapstructure:"interval"`
	Cron       string        `mapstructure:"cron"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	// 超过该时长未刷新的数据库记录会被清理，0 表示不清理
	Retention time.Duration `mapstructure:"retention"`
	// 按需类目单请求内的并发补全数
	EnrichConcurrency int `mapstructure:"enrich_concurrency"`
}

type RelayConfig struct {
	Enable         bool          `mapstructure:"enable"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RedisChannel   string        `mapstructure:"redis_channel"`
}

type APIConfig struct {
	Enable       bool          `mapstructure:"enable"`
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

// Validate 调度器启动前必须具备的配置
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Bitquery.URL) == "" {
		errs = append(errs, errors.New("bitquery.url is required"))
	}
	if strings.TrimSpace(c.Bitquery.AuthToken) == "" {
		errs = append(errs, errors.New("bitquery.auth_token is required"))
	}
	if c.Discovery.Interval <= 0 && c.Discovery.Cron == "" {
		errs = append(errs, errors.New("discovery.interval or discovery.cron is required"))
	}
	if c.Discovery.BatchSize <= 0 {
		errs = append(errs, errors.New("discovery.batch_size must be positive"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.max_open_conns", 50)
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic_live_events", "token-pulse-live-events")

	v.SetDefault("bitquery.url", "https://streaming.bitquery.io/eap")
	v.SetDefault("bitquery.ws_url", "wss://streaming.bitquery.io/eap")
	v.SetDefault("bitquery.auth_token", "")
	v.SetDefault("bitquery.timeout", 60)
	v.SetDefault("bitquery.rate_limit", 0)
	v.SetDefault("bitquery.max_retries", 2)

	v.SetDefault("metadata.ipfs_gateway", "https://ipfs.io/ipfs/")
	v.SetDefault("metadata.arweave_gateway", "https://arweave.net/")
	v.SetDefault("metadata.timeout", "15s")

	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("analytics.current_window", "24h")

	v.SetDefault("discovery.enable", true)
	v.SetDefault("discovery.interval", "5m")
	v.SetDefault("discovery.cron", "")
	v.SetDefault("discovery.batch_size", 5)
	v.SetDefault("discovery.batch_delay", "500ms")
	v.SetDefault("discovery.cache_ttl", "120s")
	v.SetDefault("discovery.retention", "168h")
	v.SetDefault("discovery.enrich_concurrency", 5)

	v.SetDefault("relay.enable", true)
	v.SetDefault("relay.reconnect_delay", "5s")
	v.SetDefault("relay.dial_timeout", "15s")
	v.SetDefault("relay.redis_channel", "token-pulse:live-events")

	v.SetDefault("api.enable", true)
	v.SetDefault("api.addr", ":3000")
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "60s")

	v.SetDefault("monitor.enable", true)
	v.SetDefault("monitor.prometheus_addr", ":9090")
}

// Load 从指定目录读取 config.worker.yaml，环境变量覆盖文件内容
func Load(v *viper.Viper, paths ...string) (Config, error) {
	var config Config

	v.SetConfigName("config.worker")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return config, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	return config, nil
}

func InitConfig() Config {
	config, err := Load(viper.GetViper(), "./config/")
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	return config
}

func WatchConfig(config *Config) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := Load(viper.GetViper())
		if err != nil {
			return
		}
		*config = newConfig
		logger.SetLogLevel(config.Log.Level)
	})
}
