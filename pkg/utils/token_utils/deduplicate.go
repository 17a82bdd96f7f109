package tokenutils

import (
	"token-pulse/internal/worker/model"

	"github.com/gagliardetto/solana-go"
)

// DeduplicateTokens 按 mint 去重，保留第一次出现的记录
func DeduplicateTokens(tokens []*model.DiscoveryToken) []*model.DiscoveryToken {
	deduplicated := make([]*model.DiscoveryToken, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t == nil {
			continue
		}
		if _, ok := seen[t.Mint]; !ok {
			seen[t.Mint] = struct{}{}
			deduplicated = append(deduplicated, t)
		}
	}
	return deduplicated
}

// IsValidMint mint 必须是 32 字节的 base58 公钥
func IsValidMint(mint string) bool {
	if mint == "" {
		return false
	}
	_, err := solana.PublicKeyFromBase58(mint)
	return err == nil
}
