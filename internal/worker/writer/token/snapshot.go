package token

import "token-pulse/internal/worker/model"

// Snapshot 一个类目一次刷新的完整结果
type Snapshot struct {
	Category string
	CacheKey string
	Tokens   []*model.DiscoveryToken
}
