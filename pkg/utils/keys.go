package utils

// 每个发现类目在 Redis 中的快照 key，也是对外 HTTP 路径
var categoryCacheKeys = map[string]string{
	"bluechip_meme": "bluechip-memes",
	"xstock":        "xstock-tokens",
	"lsts":          "lsts-tokens",
	"ai":            "ai-tokens",
	"trending":      "trending-tokens",
	"popular":       "popular-tokens",
}

// CategoryCacheKey 未知类目返回空字符串
func CategoryCacheKey(category string) string {
	return categoryCacheKeys[category]
}
