package bitquery

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"token-pulse/internal/worker/config"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BitqueryConfig{
		URL:        srv.URL,
		WSURL:      "ws://stream.local/eap",
		AuthToken:  "secret",
		Timeout:    5,
		MaxRetries: 0,
	}, zap.NewNop())
}

func TestQueryDecodesData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req graphQLRequest
		require.NoError(t, sonic.Unmarshal(body, &req))
		assert.Equal(t, TokenAnalyticsQuery, req.Query)
		assert.Equal(t, "MINT", req.Variables["tokenMint"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"Solana":{"holder_count":[{"total_holders":"42"}],"all_time_trading_stats":[{"total_buys":3,"total_sells":"2","total_trades":5,"current_volume_usd":"12.5"}],"current_trading_stats":[]}}}`))
	})

	var out AnalyticsData
	err := c.Query(context.Background(), TokenAnalyticsQuery, map[string]interface{}{"tokenMint": "MINT"}, &out)
	require.NoError(t, err)
	require.Len(t, out.Solana.HolderCount, 1)
	assert.Equal(t, int64(42), out.Solana.HolderCount[0].TotalHolders.IntPart())
	assert.Equal(t, "12.5", out.Solana.AllTimeTradingStats[0].CurrentVolumeUSD.String())
	assert.Empty(t, out.Solana.CurrentTradingStats)
}

func TestQueryGraphQLErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"points exhausted"}]}`))
	})

	var out BluechipData
	err := c.Query(context.Background(), BluechipMemesQuery, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "points exhausted")
}

func TestQueryHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var out BluechipData
	err := c.Query(context.Background(), BluechipMemesQuery, nil, &out)
	require.Error(t, err)
}

func TestStreamURL(t *testing.T) {
	c := NewClient(config.BitqueryConfig{WSURL: "wss://stream.local/eap", AuthToken: "a b"}, zap.NewNop())
	assert.Equal(t, "wss://stream.local/eap?token=a+b", c.StreamURL())
}

func TestQueriesEmbedded(t *testing.T) {
	for _, q := range []string{
		BluechipMemesQuery, XStockTokensQuery, VerifiedLstsQuery, AITokensQuery,
		TrendingTokensQuery, PopularTokensQuery, TokenDetailQuery, TokenAnalyticsQuery,
		AlmostBondedQuery, MigratedTokensQuery, TokenMetadataQuery, NewlyCreatedTokensQuery,
		WalletTradesSubscription, NewTokensSubscription,
	} {
		assert.NotEmpty(t, q)
	}
	assert.Contains(t, TokenDetailQuery, "$mintAddresses")
	assert.Contains(t, WalletTradesSubscription, "$walletAddresses")
}
