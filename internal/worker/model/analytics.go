package model

import "github.com/shopspring/decimal"

type AnalyticsSnapshot struct {
	TotalBuys        int64           `json:"totalBuys"`
	TotalSells       int64           `json:"totalSells"`
	TotalTrades      int64           `json:"totalTrades"`
	AllTimeVolumeUSD decimal.Decimal `json:"allTimeVolumeUSD"`
	CurrentVolumeUSD decimal.Decimal `json:"currentVolumeUSD"`
	HolderCount      int64           `json:"holderCount"`
}

// AnalyticsResult Available=false 表示拉取失败，此时快照全为零值
type AnalyticsResult struct {
	AnalyticsSnapshot
	Available bool `json:"available"`
}
