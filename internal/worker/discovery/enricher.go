package discovery

import (
	"context"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize  = 5
	DefaultBatchDelay = 500 * time.Millisecond
)

// Enricher 分批补全市值、24h 涨跌幅和图片
type Enricher struct {
	querier   Querier
	resolver  MetadataResolver
	batchSize int
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	tl        *zap.Logger
}

func NewEnricher(q Querier, resolver MetadataResolver, cfg config.DiscoveryConfig, logger *zap.Logger) *Enricher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	delay := cfg.BatchDelay
	if delay < 0 {
		delay = DefaultBatchDelay
	}
	return &Enricher{
		querier:   q,
		resolver:  resolver,
		batchSize: batchSize,
		delay:     delay,
		sleep:     sleepContext,
		tl:        logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Enrich 原地修改并返回同一个切片。
// 批与批之间串行并等待 delay，批内详情查询与图片解析并发执行。
// 某一批失败时该批 token 保留原值。
func (e *Enricher) Enrich(ctx context.Context, tokens []*model.DiscoveryToken) []*model.DiscoveryToken {
	for start := 0; start < len(tokens); start += e.batchSize {
		end := min(start+e.batchSize, len(tokens))
		e.enrichChunk(ctx, tokens[start:end])

		if end < len(tokens) {
			if err := e.sleep(ctx, e.delay); err != nil {
				e.tl.Warn("Detail enrichment interrupted", zap.Int("done", end), zap.Int("total", len(tokens)), zap.Error(err))
				break
			}
		}
	}
	return tokens
}

func (e *Enricher) enrichChunk(ctx context.Context, chunk []*model.DiscoveryToken) {
	mints := make([]string, 0, len(chunk))
	for _, t := range chunk {
		mints = append(mints, t.Mint)
	}

	p := pool.New().WithMaxGoroutines(len(chunk) + 1)

	var (
		detail    bitquery.TokenDetailData
		detailErr error
	)
	p.Go(func() {
		detailErr = instrumentedQuery(ctx, e.querier, "token_detail", bitquery.TokenDetailQuery,
			map[string]interface{}{"mintAddresses": mints}, &detail)
	})

	// 每个 goroutine 只写自己的 token
	for _, t := range chunk {
		if t.Image != nil || t.Uri == nil || e.resolver == nil {
			continue
		}
		tok := t
		p.Go(func() {
			if meta := e.resolver.Resolve(ctx, *tok.Uri); meta != nil {
				tok.Image = utils.NilIfEmpty(meta.Image)
			}
		})
	}
	p.Wait()

	if detailErr != nil {
		monitor.DetailBatchFailures.Inc()
		e.tl.Warn("Fetch token detail batch failed", zap.Strings("mints", mints), zap.Error(detailErr))
		return
	}
	applyDetail(chunk, detail)
}

func applyDetail(chunk []*model.DiscoveryToken, detail bitquery.TokenDetailData) {
	supply := make(map[string]bitquery.SupplyUpdate, len(detail.Solana.TokenSupplyUpdates))
	for _, u := range detail.Solana.TokenSupplyUpdates {
		mint := u.TokenSupplyUpdate.Currency.MintAddress
		if _, ok := supply[mint]; !ok {
			supply[mint] = u.TokenSupplyUpdate
		}
	}
	prices := make(map[string]bitquery.Number, len(detail.Solana.LatestPrice))
	for _, p := range detail.Solana.LatestPrice {
		mint := p.Trade.Currency.MintAddress
		if _, ok := prices[mint]; !ok {
			prices[mint] = p.Trade.PriceInUSD
		}
	}
	changes := make(map[string]bitquery.Number, len(detail.Solana.PriceChange24h))
	for _, c := range detail.Solana.PriceChange24h {
		mint := c.Trade.Currency.MintAddress
		if _, ok := changes[mint]; !ok {
			changes[mint] = c.PriceChange24h
		}
	}

	for _, t := range chunk {
		if mc := marketcapFor(supply[t.Mint], prices[t.Mint]); mc != nil {
			t.Marketcap = mc
		}
		if change, ok := changes[t.Mint]; ok && change.Valid {
			t.PriceChange24h = change.Ptr()
		}
	}
}

// marketcapFor PostBalanceInUSD 优先，其次 PostBalance * 最新 USD 价格，都没有返回 nil
func marketcapFor(u bitquery.SupplyUpdate, price bitquery.Number) *decimal.Decimal {
	if u.PostBalanceInUSD.Positive() {
		return u.PostBalanceInUSD.Ptr()
	}
	if u.PostBalance.Positive() && price.Positive() {
		mc := u.PostBalance.Value.Mul(price.Value)
		return &mc
	}
	return nil
}
