package bitquery

// 数值字段统一用 Number 接收，见 number.go

type Currency struct {
	Name        string `json:"Name"`
	Symbol      string `json:"Symbol"`
	MintAddress string `json:"MintAddress"`
	Uri         string `json:"Uri"`
	Decimals    int    `json:"Decimals"`
	Fungible    bool   `json:"Fungible"`
}

type Block struct {
	Time string `json:"Time"`
	Slot Number `json:"Slot"`
	Hash string `json:"Hash"`
}

type Dex struct {
	ProtocolName   string `json:"ProtocolName"`
	ProtocolFamily string `json:"ProtocolFamily"`
	ProgramAddress string `json:"ProgramAddress"`
}

// ---------- bluechip / detail ----------

type SupplyUpdate struct {
	Marketcap        Number   `json:"Marketcap"`
	PostBalance      Number   `json:"PostBalance"`
	PostBalanceInUSD Number   `json:"PostBalanceInUSD"`
	Currency         Currency `json:"Currency"`
}

type SupplyUpdateEntry struct {
	TokenSupplyUpdate SupplyUpdate `json:"TokenSupplyUpdate"`
}

type BluechipData struct {
	Solana struct {
		TokenSupplyUpdates []SupplyUpdateEntry `json:"TokenSupplyUpdates"`
	} `json:"Solana"`
}

type LatestPriceEntry struct {
	Block Block `json:"Block"`
	Trade struct {
		Currency   Currency `json:"Currency"`
		Price      Number   `json:"Price"`
		PriceInUSD Number   `json:"PriceInUSD"`
	} `json:"Trade"`
}

type PriceChangeEntry struct {
	Trade struct {
		Currency     Currency `json:"Currency"`
		CurrentPrice Number   `json:"CurrentPrice"`
		Price24hAgo  Number   `json:"Price24hAgo"`
	} `json:"Trade"`
	PriceChange24h Number `json:"PriceChange24h"`
}

type TokenDetailData struct {
	Solana struct {
		TokenSupplyUpdates []SupplyUpdateEntry `json:"TokenSupplyUpdates"`
		LatestPrice        []LatestPriceEntry  `json:"LatestPrice"`
		PriceChange24h     []PriceChangeEntry  `json:"PriceChange24h"`
	} `json:"Solana"`
}

// ---------- xstock / lsts / ai ----------

type TradeMarket struct {
	MarketAddress string `json:"MarketAddress"`
}

type XStockEntry struct {
	Trade struct {
		Currency    Currency    `json:"Currency"`
		LatestPrice Number      `json:"latest_price"`
		Market      TradeMarket `json:"Market"`
		Dex         Dex         `json:"Dex"`
	} `json:"Trade"`
	TotalVolume   Number `json:"total_volume"`
	TotalTrades   Number `json:"total_trades"`
	UniqueTraders Number `json:"unique_traders"`
	UniqueDexs    Number `json:"unique_dexs"`
}

type XStockData struct {
	Solana struct {
		DEXTradeByTokens []XStockEntry `json:"DEXTradeByTokens"`
	} `json:"Solana"`
}

type LstEntry struct {
	Trade struct {
		Currency       Currency `json:"Currency"`
		LatestPriceUSD Number   `json:"latest_price_usd"`
		LatestPriceSOL Number   `json:"latest_price_sol"`
		Dex            Dex      `json:"Dex"`
	} `json:"Trade"`
	Volume7dUSD     Number `json:"volume_7d_usd"`
	Volume30dUSD    Number `json:"volume_30d_usd"`
	Trades7d        Number `json:"trades_7d"`
	Trades30d       Number `json:"trades_30d"`
	UniqueTraders7d Number `json:"unique_traders_7d"`
}

type LstData struct {
	Solana struct {
		DEXTradeByTokens []LstEntry `json:"DEXTradeByTokens"`
	} `json:"Solana"`
}

type AIEntry struct {
	Trade struct {
		Currency    Currency    `json:"Currency"`
		LatestPrice Number      `json:"latest_price"`
		Price24hAgo Number      `json:"price_24h_ago"`
		Price7dAgo  Number      `json:"price_7d_ago"`
		Market      TradeMarket `json:"Market"`
		Dex         Dex         `json:"Dex"`
	} `json:"Trade"`
	Volume24h        Number `json:"volume_24h"`
	Volume7d         Number `json:"volume_7d"`
	UniqueTraders24h Number `json:"unique_traders_24h"`
	UniqueTraders7d  Number `json:"unique_traders_7d"`
	TotalTrades24h   Number `json:"total_trades_24h"`
	TotalTrades7d    Number `json:"total_trades_7d"`
	BuyVolume24h     Number `json:"buy_volume_24h"`
	SellVolume24h    Number `json:"sell_volume_24h"`
	BuyTrades24h     Number `json:"buy_trades_24h"`
	SellTrades24h    Number `json:"sell_trades_24h"`
	UniqueDexs       Number `json:"unique_dexs"`
	AvgTradeSize24h  Number `json:"avg_trade_size_24h"`
}

type AIData struct {
	Solana struct {
		DEXTradeByTokens []AIEntry `json:"DEXTradeByTokens"`
	} `json:"Solana"`
}

// ---------- trending / popular ----------

// ActivityEntry 单个时间窗口内某个 token 的活跃度
type ActivityEntry struct {
	Trade struct {
		Currency Currency `json:"Currency"`
	} `json:"Trade"`
	UniqueTraders Number `json:"tradesCountWithUniqueTraders"`
	TradedVolume  Number `json:"traded_volume"`
	Trades        Number `json:"trades"`
}

type TrendingSolana struct {
	Trending1Min  []ActivityEntry `json:"trending_1min"`
	Trending5Min  []ActivityEntry `json:"trending_5min"`
	Trending30Min []ActivityEntry `json:"trending_30min"`
	Trending1Hour []ActivityEntry `json:"trending_1hour"`
}

// TrendingData Solana 为 null 时表示上游没有数据
type TrendingData struct {
	Solana *TrendingSolana `json:"Solana"`
}

// Frames 按时间窗口由近到远排列
func (d TrendingData) Frames() [][]ActivityEntry {
	if d.Solana == nil {
		return nil
	}
	return [][]ActivityEntry{
		d.Solana.Trending1Min,
		d.Solana.Trending5Min,
		d.Solana.Trending30Min,
		d.Solana.Trending1Hour,
	}
}

type PopularSolana struct {
	Popular24h []ActivityEntry `json:"popular_24h"`
	Popular7d  []ActivityEntry `json:"popular_7d"`
}

type PopularData struct {
	Solana *PopularSolana `json:"Solana"`
}

func (d PopularData) Frames() [][]ActivityEntry {
	if d.Solana == nil {
		return nil
	}
	return [][]ActivityEntry{d.Solana.Popular24h, d.Solana.Popular7d}
}

// ---------- analytics ----------

type AnalyticsData struct {
	Solana struct {
		HolderCount []struct {
			TotalHolders Number `json:"total_holders"`
		} `json:"holder_count"`
		AllTimeTradingStats []struct {
			TotalBuys        Number `json:"total_buys"`
			TotalSells       Number `json:"total_sells"`
			TotalTrades      Number `json:"total_trades"`
			CurrentVolumeUSD Number `json:"current_volume_usd"`
		} `json:"all_time_trading_stats"`
		CurrentTradingStats []struct {
			CurrentVolumeUSD Number `json:"current_volume_usd"`
		} `json:"current_trading_stats"`
	} `json:"Solana"`
}

// ---------- pools ----------

type DEXPoolEntry struct {
	BondingCurveProgress Number `json:"Bonding_Curve_Progress_Percentage"`
	Pool                 struct {
		Market struct {
			BaseCurrency  Currency `json:"BaseCurrency"`
			MarketAddress string   `json:"MarketAddress"`
		} `json:"Market"`
		Dex  Dex `json:"Dex"`
		Base struct {
			Balance Number `json:"Balance"`
		} `json:"Base"`
		Quote struct {
			PostAmount      Number `json:"PostAmount"`
			PriceInUSD      Number `json:"PriceInUSD"`
			PostAmountInUSD Number `json:"PostAmountInUSD"`
		} `json:"Quote"`
	} `json:"Pool"`
	Block Block `json:"Block"`
}

type DEXPoolsData struct {
	Solana struct {
		DEXPools []DEXPoolEntry `json:"DEXPools"`
	} `json:"Solana"`
}

// ---------- instructions ----------

type AccountToken struct {
	Mint      string `json:"Mint"`
	Owner     string `json:"Owner"`
	ProgramId string `json:"ProgramId"`
}

type InstructionAccount struct {
	Address string        `json:"Address"`
	Token   *AccountToken `json:"Token"`
}

type ArgumentValue struct {
	JSON    string `json:"json"`
	String  string `json:"string"`
	Address string `json:"address"`
}

type Argument struct {
	Name  string        `json:"Name"`
	Type  string        `json:"Type"`
	Value ArgumentValue `json:"Value"`
}

type Program struct {
	Address      string     `json:"Address"`
	Name         string     `json:"Name"`
	Method       string     `json:"Method"`
	Arguments    []Argument `json:"Arguments"`
	AccountNames []string   `json:"AccountNames"`
}

type InstructionEntry struct {
	Block       Block `json:"Block"`
	Transaction struct {
		Signature string `json:"Signature"`
		Signer    string `json:"Signer"`
		FeePayer  string `json:"FeePayer"`
		Fee       Number `json:"Fee"`
		FeeInUSD  Number `json:"FeeInUSD"`
	} `json:"Transaction"`
	Instruction struct {
		Accounts []InstructionAccount `json:"Accounts"`
		Program  Program              `json:"Program"`
	} `json:"Instruction"`
}

type InstructionsData struct {
	Solana struct {
		Instructions []InstructionEntry `json:"Instructions"`
	} `json:"Solana"`
}

// ---------- wallet trades ----------

type WalletTradeEntry struct {
	Block Block `json:"Block"`
	Trade struct {
		Amount Number `json:"Amount"`
		Price  Number `json:"Price"`
		Side   struct {
			Type     string   `json:"Type"`
			Amount   Number   `json:"Amount"`
			Currency Currency `json:"Currency"`
		} `json:"Side"`
		Account struct {
			Address string `json:"Address"`
		} `json:"Account"`
	} `json:"Trade"`
}

type WalletTradesData struct {
	Solana struct {
		DEXTradeByTokens []WalletTradeEntry `json:"DEXTradeByTokens"`
	} `json:"Solana"`
}
