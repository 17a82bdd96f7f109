package discovery

import (
	"context"
	"errors"
	"testing"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/model"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(q *fakeQuerier, r *fakeResolver, store *fakeStore) *Fetcher {
	cfg := config.DiscoveryConfig{BatchSize: 5, EnrichConcurrency: 4}
	enricher, _ := newTestEnricher(q, r, cfg.BatchSize)
	analytics := NewAnalytics(q, config.AnalyticsConfig{}, zap.NewNop())
	return NewFetcher(q, r, enricher, analytics, store, cfg, zap.NewNop())
}

func TestFetchBluechipExcludesStablecoins(t *testing.T) {
	data := `{"Solana":{"TokenSupplyUpdates":[
		{"TokenSupplyUpdate":{"Marketcap":"60000000000","Currency":{"MintAddress":"` + mintUSDC + `","Name":"USD Coin","Symbol":"USDC"}}},
		{"TokenSupplyUpdate":{"Marketcap":"1000000","Currency":{"MintAddress":"` + mintWif + `","Name":"Doge","Symbol":"DOGE","Uri":"ipfs://doge"}}},
		{"TokenSupplyUpdate":{"Marketcap":"999","Currency":{"MintAddress":"` + mintWif + `","Name":"Doge again","Symbol":"DOGE2"}}},
		{"TokenSupplyUpdate":{"Marketcap":"1","Currency":{"MintAddress":"` + mintJup + `","Name":"JUP","Symbol":"JUPITER"}}},
		{"TokenSupplyUpdate":{"Marketcap":"1","Currency":{"MintAddress":"bad\u0000mint","Symbol":"BAD"}}}
	]}}`
	q := newFakeQuerier().
		on(bitquery.BluechipMemesQuery, data).
		on(bitquery.TokenDetailQuery, `{"Solana":{}}`)
	r := &fakeResolver{metas: map[string]*metadata.Metadata{"ipfs://doge": {Image: "https://img/doge.png"}}}
	store := &fakeStore{}

	tokens, err := newTestFetcher(q, r, store).FetchBluechip(context.Background())
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, model.CategoryBluechipMeme, saved.category)
	assert.Equal(t, "bluechip-memes", saved.cacheKey)
	assert.Equal(t, tokens, saved.tokens)

	// USDC 按 symbol 排除，JUP 按 name 排除，重复 mint 保留第一条
	require.Equal(t, []string{mintWif}, mints(tokens))
	doge := tokens[0]
	assert.Equal(t, "DOGE", *doge.Symbol)
	assert.Equal(t, "1000000", doge.Marketcap.String())
	require.NotNil(t, doge.Image)
	assert.Equal(t, "https://img/doge.png", *doge.Image)
}

func TestFetchQueryFailureSkipsSave(t *testing.T) {
	q := newFakeQuerier().fail(bitquery.TrendingTokensQuery, errors.New("rate limited"))
	store := &fakeStore{}

	tokens, err := newTestFetcher(q, &fakeResolver{}, store).FetchTrending(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Nil(t, tokens)
	assert.Empty(t, store.saved)
}

func TestFetchNullSolanaKeepsPreviousSnapshot(t *testing.T) {
	q := newFakeQuerier().
		on(bitquery.TrendingTokensQuery, `{"Solana":null}`).
		on(bitquery.PopularTokensQuery, `{"Solana":null}`)
	store := &fakeStore{}
	f := newTestFetcher(q, &fakeResolver{}, store)

	tokens, err := f.FetchTrending(context.Background())
	require.ErrorIs(t, err, bitquery.ErrEmptyData)
	assert.Nil(t, tokens)

	tokens, err = f.FetchPopular(context.Background())
	require.ErrorIs(t, err, bitquery.ErrEmptyData)
	assert.Nil(t, tokens)

	// 不写入空快照
	assert.Empty(t, store.saved)
}

func TestFetchSaveFailureStillReturnsTokens(t *testing.T) {
	data := `{"Solana":{"DEXTradeByTokens":[
		{"Trade":{"Currency":{"MintAddress":"` + mintMSol + `","Name":"Marinade staked SOL","Symbol":"mSOL"},"latest_price_usd":"210.5","Dex":{"ProtocolName":"whirlpool"}},"volume_7d_usd":"1000","trades_7d":"12"},
		{"Trade":{"Currency":{"MintAddress":"` + mintMSol + `","Symbol":"mSOL"}},"volume_7d_usd":"1"}
	]}}`
	q := newFakeQuerier().
		on(bitquery.VerifiedLstsQuery, data).
		on(bitquery.TokenDetailQuery, `{"Solana":{}}`)
	store := &fakeStore{err: errors.New("db: connection refused")}

	tokens, err := newTestFetcher(q, &fakeResolver{}, store).FetchLsts(context.Background())
	require.Error(t, err)
	require.Len(t, tokens, 1)
	// lsts 不做 bluechip 排除
	assert.Equal(t, "mSOL", *tokens[0].Symbol)
	assert.Equal(t, 210.5, tokens[0].Metrics["latest_price_usd"])
	assert.Equal(t, float64(1000), tokens[0].Metrics["volume_7d_usd"])
	assert.NotContains(t, tokens[0].Metrics, "volume_30d_usd")
	require.Len(t, store.saved, 1)
	assert.Equal(t, "lsts-tokens", store.saved[0].cacheKey)
}

func TestFetchPopularSavesUnion(t *testing.T) {
	data := `{"Solana":{
		"popular_24h":[{"Trade":{"Currency":{"MintAddress":"` + mintBonk + `","Symbol":"BONK"}},"trades":"10"}],
		"popular_7d":[{"Trade":{"Currency":{"MintAddress":"` + mintPopcat + `","Symbol":"POPCAT"}},"trades":"5"},{"Trade":{"Currency":{"MintAddress":"` + mintBonk + `","Symbol":"BONK"}}}]
	}}`
	q := newFakeQuerier().
		on(bitquery.PopularTokensQuery, data).
		on(bitquery.TokenDetailQuery, `{"Solana":{}}`)
	store := &fakeStore{}

	tokens, err := newTestFetcher(q, &fakeResolver{}, store).FetchPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{mintBonk, mintPopcat}, mints(tokens))
	assert.Equal(t, "popular-tokens", store.saved[0].cacheKey)
}

func TestRefreshersOrder(t *testing.T) {
	f := newTestFetcher(newFakeQuerier(), &fakeResolver{}, &fakeStore{})
	var categories []string
	for _, r := range f.Refreshers() {
		categories = append(categories, r.Category)
	}
	assert.Equal(t, []string{
		model.CategoryBluechipMeme, model.CategoryXStock, model.CategoryLsts,
		model.CategoryAI, model.CategoryTrending, model.CategoryPopular,
	}, categories)
}
