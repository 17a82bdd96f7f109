package discovery

import (
	"context"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"
	"token-pulse/pkg/bitquery"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const DefaultAnalyticsTTL = 5 * time.Minute

type analyticsEntry struct {
	snapshot  model.AnalyticsSnapshot
	expiresAt time.Time
}

// Analytics 单个 token 的交易统计，进程内缓存，过期时间从写入时刻起算
type Analytics struct {
	querier Querier
	ttl     time.Duration
	window  time.Duration
	cache   *cache.Cache
	now     func() time.Time
	tl      *zap.Logger
}

func NewAnalytics(q Querier, cfg config.AnalyticsConfig, logger *zap.Logger) *Analytics {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultAnalyticsTTL
	}
	window := cfg.CurrentWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Analytics{
		querier: q,
		ttl:     ttl,
		window:  window,
		cache:   cache.New(ttl, time.Minute),
		now:     time.Now,
		tl:      logger,
	}
}

// Get 失败时返回 Available=false 的零值快照，且不写缓存
func (a *Analytics) Get(ctx context.Context, mint string) model.AnalyticsResult {
	now := a.now()
	if v, ok := a.cache.Get(mint); ok {
		entry := v.(analyticsEntry)
		if now.Before(entry.expiresAt) {
			monitor.AnalyticsCacheRequests.WithLabelValues("hit").Inc()
			return model.AnalyticsResult{AnalyticsSnapshot: entry.snapshot, Available: true}
		}
		a.cache.Delete(mint)
	}
	monitor.AnalyticsCacheRequests.WithLabelValues("miss").Inc()

	var data bitquery.AnalyticsData
	vars := map[string]interface{}{
		"tokenMint": mint,
		"since":     now.Add(-a.window).UTC().Format(time.RFC3339),
	}
	if err := instrumentedQuery(ctx, a.querier, "token_analytics", bitquery.TokenAnalyticsQuery, vars, &data); err != nil {
		a.tl.Warn("Fetch token analytics failed", zap.String("mint", mint), zap.Error(err))
		return model.AnalyticsResult{}
	}

	snapshot := snapshotFromAnalytics(data)
	a.cache.Set(mint, analyticsEntry{snapshot: snapshot, expiresAt: now.Add(a.ttl)}, a.ttl)
	return model.AnalyticsResult{AnalyticsSnapshot: snapshot, Available: true}
}

func snapshotFromAnalytics(data bitquery.AnalyticsData) model.AnalyticsSnapshot {
	var s model.AnalyticsSnapshot
	if stats := data.Solana.AllTimeTradingStats; len(stats) > 0 {
		s.TotalBuys = stats[0].TotalBuys.IntPart()
		s.TotalSells = stats[0].TotalSells.IntPart()
		s.TotalTrades = stats[0].TotalTrades.IntPart()
		s.AllTimeVolumeUSD = stats[0].CurrentVolumeUSD.Value
	}
	if stats := data.Solana.CurrentTradingStats; len(stats) > 0 {
		s.CurrentVolumeUSD = stats[0].CurrentVolumeUSD.Value
	}
	if holders := data.Solana.HolderCount; len(holders) > 0 {
		s.HolderCount = holders[0].TotalHolders.IntPart()
	}
	return s
}
