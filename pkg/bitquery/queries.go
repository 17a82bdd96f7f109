package bitquery

import (
	"embed"
	"strings"
)

//go:embed queries/*.graphql
var queryFS embed.FS

// 查询文本随二进制发布，内容由 Bitquery 定义
var (
	BluechipMemesQuery      = mustQuery("bluechip_memes")
	XStockTokensQuery       = mustQuery("xstock_tokens")
	VerifiedLstsQuery       = mustQuery("verified_lsts")
	AITokensQuery           = mustQuery("ai_tokens")
	TrendingTokensQuery     = mustQuery("trending_tokens")
	PopularTokensQuery      = mustQuery("popular_tokens")
	TokenDetailQuery        = mustQuery("token_detail")
	TokenAnalyticsQuery     = mustQuery("token_analytics")
	AlmostBondedQuery       = mustQuery("almost_bonded")
	MigratedTokensQuery     = mustQuery("migrated_tokens")
	TokenMetadataQuery      = mustQuery("token_metadata")
	NewlyCreatedTokensQuery = mustQuery("newly_created_tokens")

	WalletTradesSubscription = mustQuery("wallet_trades_sub")
	NewTokensSubscription    = mustQuery("new_tokens_sub")
)

func mustQuery(name string) string {
	b, err := queryFS.ReadFile("queries/" + name + ".graphql")
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(b))
}
