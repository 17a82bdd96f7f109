package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// DiscoveryFetchTotal 类目刷新结果，result=ok|error
	DiscoveryFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_fetch_total",
			Help: "Total number of category refreshes by result.",
		},
		[]string{"category", "result"},
	)
	DiscoveryTokensSaved = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "discovery_tokens_saved",
			Help: "Number of tokens in the latest snapshot of each category.",
		},
		[]string{"category"},
	)
	DiscoveryFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_fetch_duration_seconds",
			Help:    "Time taken to refresh one category end to end.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"category"},
	)
	DetailBatchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_detail_batch_failures_total",
			Help: "Total number of detail chunks that failed and kept prior values.",
		},
	)
	PersistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_persistence_failures_total",
			Help: "Total number of failed snapshot writes by target.",
		},
		[]string{"target"},
	)

	// UpstreamRequestDuration Bitquery 请求耗时
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Time taken by upstream GraphQL queries.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"query", "result"},
	)

	// AnalyticsCacheRequests 分析数据本地缓存命中情况，result=hit|miss
	AnalyticsCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_requests_total",
			Help: "Total number of analytics lookups by cache result.",
		},
		[]string{"result"},
	)

	// RelayReconnects 实时推送相关
	RelayReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_reconnects_total",
			Help: "Total number of upstream websocket reconnect attempts.",
		},
	)
	RelayEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_published_total",
			Help: "Total number of live events published per sink.",
		},
		[]string{"type", "sink"},
	)
	HubMessagesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_hub_messages_dropped_total",
			Help: "Total number of live events dropped for slow websocket clients.",
		},
	)
	HubClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_hub_clients",
			Help: "Number of connected websocket clients.",
		},
	)

	// AsyncWriterMessagesQueued AsyncWriter 指标
	AsyncWriterMessagesQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_queued_total",
			Help: "Total number of messages queued to async writer.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterMessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_dropped_total",
			Help: "Total number of messages dropped due to full queue.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_batch_size",
			Help:    "Number of items in each batch submitted to the writer.",
			Buckets: []float64{1, 10, 50, 100, 200, 500},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_flush_count_total",
			Help: "Total number of batch flushes triggered.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_flush_duration_seconds",
			Help:    "Time taken to flush a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"writer_id"},
	)
	AsyncWriterItemsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_items_written_total",
			Help: "Total number of items successfully written by the async writer.",
		},
		[]string{"writer_id"},
	)
)

func init() {
	prometheus.MustRegister(
		// 发现类目刷新
		DiscoveryFetchTotal,
		DiscoveryTokensSaved,
		DiscoveryFetchDuration,
		DetailBatchFailures,
		PersistenceFailures,
		UpstreamRequestDuration,
		AnalyticsCacheRequests,

		// 实时推送
		RelayReconnects,
		RelayEventsPublished,
		HubMessagesDropped,
		HubClients,

		// async 写入指标
		AsyncWriterMessagesQueued,
		AsyncWriterMessagesDropped,
		AsyncWriterBatchSize,
		AsyncWriterFlushCount,
		AsyncWriterFlushDuration,
		AsyncWriterItemsWritten,
	)
}
