package model

import "github.com/shopspring/decimal"

const (
	EventTokenTransfer   = "token_transfer"
	EventNewTokenCreated = "new_token_created"
)

const (
	TradeActionBuy  = "buy"
	TradeActionSell = "sell"
)

// LiveEvent 推送给下游的统一信封
type LiveEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type TradeToken struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	MintAddress string  `json:"mintAddress"`
	ImageURL    *string `json:"imageUrl"`
}

type TradeEvent struct {
	WalletAddress  string           `json:"walletAddress"`
	Username       string           `json:"username"`
	UserProfilePic string           `json:"userProfilePic"`
	Action         string           `json:"action"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Token          TradeToken       `json:"token"`
	Time           string           `json:"time"`
}

type TokenCreatedEvent struct {
	Mint      string          `json:"mint"`
	Owner     *string         `json:"owner"`
	Name      *string         `json:"name"`
	Symbol    *string         `json:"symbol"`
	Uri       *string         `json:"uri"`
	Image     *string         `json:"image"`
	CreatedOn *string         `json:"createdOn"`
	Twitter   *string         `json:"twitterX"`
	Telegram  *string         `json:"telegramX"`
	Website   *string         `json:"website"`
	BlockTime string          `json:"blockTime"`
	Slot      *int64          `json:"slot"`
	FeePayer  *string         `json:"feePayer"`
	Analytics AnalyticsResult `json:"analytics"`
}

// Key 消息分区键：交易按钱包，新币按 mint
func (e LiveEvent) Key() string {
	switch p := e.Payload.(type) {
	case *TradeEvent:
		return p.WalletAddress
	case *TokenCreatedEvent:
		return p.Mint
	}
	return e.Type
}
