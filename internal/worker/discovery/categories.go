package discovery

import (
	"context"
	"fmt"
	"time"

	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/utils"
	tokenutils "token-pulse/pkg/utils/token_utils"

	"go.uber.org/zap"
)

// refresh 查询、去重、过滤、补全、保存。
// 查询失败返回错误且不写入；保存失败时仍返回补全后的 token 以及错误。
func (f *Fetcher) refresh(ctx context.Context, category string, load func(ctx context.Context) ([]*model.DiscoveryToken, error)) ([]*model.DiscoveryToken, error) {
	start := time.Now()
	log := f.tl.With(zap.String("category", category))
	defer func() {
		monitor.DiscoveryFetchDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	}()

	tokens, err := load(ctx)
	if err != nil {
		monitor.DiscoveryFetchTotal.WithLabelValues(category, "error").Inc()
		log.Error("Fetch category failed", zap.Error(err))
		return nil, fmt.Errorf("fetch %s: %w", category, err)
	}

	tokens = tokenutils.DeduplicateTokens(tokens)
	if category == model.CategoryBluechipMeme {
		tokens = excludeBluechip(tokens)
	}
	tokens = f.enricher.Enrich(ctx, tokens)

	if err := f.store.Save(ctx, tokens, category, utils.CategoryCacheKey(category)); err != nil {
		monitor.DiscoveryFetchTotal.WithLabelValues(category, "error").Inc()
		log.Warn("Save category snapshot failed", zap.Int("tokens", len(tokens)), zap.Error(err))
		return tokens, fmt.Errorf("save %s: %w", category, err)
	}

	monitor.DiscoveryFetchTotal.WithLabelValues(category, "ok").Inc()
	log.Info("Category refreshed", zap.Int("tokens", len(tokens)), zap.Duration("took", time.Since(start)))
	return tokens, nil
}

func (f *Fetcher) FetchBluechip(ctx context.Context) ([]*model.DiscoveryToken, error) {
	return f.refresh(ctx, model.CategoryBluechipMeme, func(ctx context.Context) ([]*model.DiscoveryToken, error) {
		var data bitquery.BluechipData
		if err := instrumentedQuery(ctx, f.querier, "bluechip_memes", bitquery.BluechipMemesQuery, nil, &data); err != nil {
			return nil, err
		}
		return mapSupplyUpdates(data.Solana.TokenSupplyUpdates), nil
	})
}

func (f *Fetcher) FetchXStock(ctx context.Context) ([]*model.DiscoveryToken, error) {
	return f.refresh(ctx, model.CategoryXStock, func(ctx context.Context) ([]*model.DiscoveryToken, error) {
		var data bitquery.XStockData
		if err := instrumentedQuery(ctx, f.querier, "xstock_tokens", bitquery.XStockTokensQuery, nil, &data); err != nil {
			return nil, err
		}
		return mapXStock(data.Solana.DEXTradeByTokens), nil
	})
}

func (f *Fetcher) FetchLsts(ctx context.Context) ([]*model.DiscoveryToken, error) {
	return f.refresh(ctx, model.CategoryLsts, func(ctx context.Context) ([]*model.DiscoveryToken, error) {
		var data bitquery.LstData
		if err := instrumentedQuery(ctx, f.querier, "verified_lsts", bitquery.VerifiedLstsQuery, nil, &data); err != nil {
			return nil, err
		}
		return mapLsts(data.Solana.DEXTradeByTokens), nil
	})
}

func (f *Fetcher) FetchAi(ctx context.Context) ([]*model.DiscoveryToken, error) {
	return f.refresh(ctx, model.CategoryAI, func(ctx context.Context) ([]*model.DiscoveryToken, error) {
		var data bitquery.AIData
		if err := instrumentedQuery(ctx, f.querier, "ai_tokens", bitquery.AITokensQuery, nil, &data); err != nil {
			return nil, err
		}
		return mapAI(data.Solana.DEXTradeByTokens), nil
	})
}

func (f *Fetcher) FetchTrending(ctx context.Context) ([]*model.DiscoveryToken, error) {
	return f.refresh(ctx, model.CategoryTrending, func(ctx context.Context) ([]*model.DiscoveryToken, error) {
		var data bitquery.TrendingData
		if err := instrumentedQuery(ctx, f.querier, "trending_tokens", bitquery.TrendingTokensQuery, nil, &data); err != nil {
			return nil, err
		}
		if data.Solana == nil {
			return nil, bitquery.ErrEmptyData
		}
		return selectTrending(data.Frames()), nil
	})
}

func (f *Fetcher) FetchPopular(ctx context.Context) ([]*model.DiscoveryToken, error) {
	return f.refresh(ctx, model.CategoryPopular, func(ctx context.Context) ([]*model.DiscoveryToken, error) {
		var data bitquery.PopularData
		if err := instrumentedQuery(ctx, f.querier, "popular_tokens", bitquery.PopularTokensQuery, nil, &data); err != nil {
			return nil, err
		}
		if data.Solana == nil {
			return nil, bitquery.ErrEmptyData
		}
		return selectPopular(data.Frames()), nil
	})
}

// Refresher 单个类目的刷新函数，供调度任务按顺序调用
type Refresher struct {
	Category string
	Fetch    func(ctx context.Context) ([]*model.DiscoveryToken, error)
}

// Refreshers 定时刷新的六个类目，顺序即执行顺序
func (f *Fetcher) Refreshers() []Refresher {
	return []Refresher{
		{Category: model.CategoryBluechipMeme, Fetch: f.FetchBluechip},
		{Category: model.CategoryXStock, Fetch: f.FetchXStock},
		{Category: model.CategoryLsts, Fetch: f.FetchLsts},
		{Category: model.CategoryAI, Fetch: f.FetchAi},
		{Category: model.CategoryTrending, Fetch: f.FetchTrending},
		{Category: model.CategoryPopular, Fetch: f.FetchPopular},
	}
}
