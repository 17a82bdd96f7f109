package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	CategoryBluechipMeme = "bluechip_meme"
	CategoryXStock       = "xstock"
	CategoryLsts         = "lsts"
	CategoryAI           = "ai"
	CategoryTrending     = "trending"
	CategoryPopular      = "popular"
	CategoryAlmostBonded = "almost_bonded"
	CategoryMigrated     = "migrated"
	CategoryNewlyCreated = "newly_created"
)

// DiscoveryToken 某个发现类目下的一条 token 记录，(mint, category) 唯一
type DiscoveryToken struct {
	ID             int64             `gorm:"column:id;primaryKey;autoIncrement:true" json:"-"`
	Mint           string            `gorm:"column:mint;type:varchar(64);not null;uniqueIndex:uniq_discovery_mint_category,priority:1" json:"mint"`
	Category       string            `gorm:"column:category;type:varchar(32);not null;uniqueIndex:uniq_discovery_mint_category,priority:2;index" json:"category"`
	Name           *string           `gorm:"column:name" json:"name"`
	Symbol         *string           `gorm:"column:symbol" json:"symbol"`
	Uri            *string           `gorm:"column:uri" json:"uri"`
	Image          *string           `gorm:"column:image" json:"image"`
	Marketcap      *decimal.Decimal  `gorm:"column:marketcap;type:numeric" json:"marketcap"`               // nil 表示尚未计算
	PriceChange24h *decimal.Decimal  `gorm:"column:price_change_24h;type:numeric" json:"price_change_24h"` // 百分比
	Metrics        datatypes.JSONMap `gorm:"column:metrics;type:jsonb" json:"metrics,omitempty"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (*DiscoveryToken) TableName() string {
	return "discovery_tokens"
}

// LaunchToken 按需查询的发射期 token（快毕业、已迁移、新创建），不落库
type LaunchToken struct {
	Mint            string           `json:"mint"`
	Category        string           `json:"category"`
	Name            *string          `json:"name"`
	Symbol          *string          `json:"symbol"`
	Uri             *string          `json:"uri"`
	Image           *string          `json:"image"`
	CreatedOn       *string          `json:"createdOn"`
	Twitter         *string          `json:"twitterX"`
	Telegram        *string          `json:"telegramX"`
	Website         *string          `json:"website"`
	BlockTime       *string          `json:"blockTime"`
	Slot            *int64           `json:"slot"`
	FeePayer        *string          `json:"feePayer,omitempty"`
	Fee             *decimal.Decimal `json:"fee,omitempty"`
	FeeInUSD        *decimal.Decimal `json:"feeInUSD,omitempty"`
	BondingProgress *decimal.Decimal `json:"bondingProgress,omitempty"`
	ProtocolFamily  *string          `json:"protocolFamily,omitempty"`
	Method          *string          `json:"method,omitempty"`
	Analytics       AnalyticsResult  `json:"analytics"`
}
