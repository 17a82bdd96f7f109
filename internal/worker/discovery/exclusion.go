package discovery

import (
	"token-pulse/internal/worker/model"
	"token-pulse/pkg/utils"
)

// bluechipExcluded 稳定币、LST、基础设施和 DeFi 代币不算 meme
var bluechipExcluded = map[string]struct{}{
	// 稳定币
	"USDC": {}, "USDT": {}, "FDUSD": {}, "USDY": {}, "USD1": {}, "DAI": {}, "TUSD": {}, "USDD": {},
	// LST
	"mSOL": {}, "JitoSOL": {}, "JupSOL": {}, "bnSOL": {}, "bbSOL": {}, "JSOL": {}, "BNSOL": {}, "hSOL": {}, "sSOL": {}, "MXSOL": {},
	// 基础设施
	"JTO": {}, "RENDER": {}, "W": {}, "SAROS": {}, "HNT": {}, "DBR": {}, "STIK": {},
	// 跨链资产
	"WBTC": {}, "WETH": {}, "cbBTC": {}, "renBTC": {}, "SPX": {},
	// DeFi
	"JUP": {}, "RAY": {}, "ORCA": {}, "KMNO": {}, "DRIFT": {}, "SONIC": {}, "NEON": {}, "HUMA": {}, "MPLX": {}, "ZBCN": {}, "ME": {}, "JLP": {},
}

// isBluechipExcluded symbol 或 name 命中即排除，大小写敏感
func isBluechipExcluded(t *model.DiscoveryToken) bool {
	if _, ok := bluechipExcluded[utils.StringValue(t.Symbol)]; ok {
		return true
	}
	_, ok := bluechipExcluded[utils.StringValue(t.Name)]
	return ok
}

func excludeBluechip(tokens []*model.DiscoveryToken) []*model.DiscoveryToken {
	kept := tokens[:0]
	for _, t := range tokens {
		if !isBluechipExcluded(t) {
			kept = append(kept, t)
		}
	}
	return kept
}
