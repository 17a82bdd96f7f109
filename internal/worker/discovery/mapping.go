package discovery

import (
	"token-pulse/internal/worker/model"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/utils"
	tokenutils "token-pulse/pkg/utils/token_utils"

	"gorm.io/datatypes"
)

// newToken 非法 mint 返回 nil
func newToken(c bitquery.Currency) *model.DiscoveryToken {
	mint := utils.SanitizeString(c.MintAddress)
	if !tokenutils.IsValidMint(mint) {
		return nil
	}
	return &model.DiscoveryToken{
		Mint:   mint,
		Name:   utils.NilIfEmpty(c.Name),
		Symbol: utils.NilIfEmpty(c.Symbol),
		Uri:    utils.NilIfEmpty(c.Uri),
	}
}

type metrics datatypes.JSONMap

// put 缺失的数值不写入
func (m metrics) put(key string, n bitquery.Number) metrics {
	if n.Valid {
		m[key] = n.Value.InexactFloat64()
	}
	return m
}

func (m metrics) putString(key, s string) metrics {
	if s != "" {
		m[key] = s
	}
	return m
}

func (m metrics) jsonMap() datatypes.JSONMap {
	if len(m) == 0 {
		return nil
	}
	return datatypes.JSONMap(m)
}

func mapSupplyUpdates(entries []bitquery.SupplyUpdateEntry) []*model.DiscoveryToken {
	tokens := make([]*model.DiscoveryToken, 0, len(entries))
	for _, e := range entries {
		u := e.TokenSupplyUpdate
		t := newToken(u.Currency)
		if t == nil {
			continue
		}
		t.Marketcap = u.Marketcap.Ptr()
		tokens = append(tokens, t)
	}
	return tokens
}

// mapTradeCurrencies 按交易行的 Currency 生成 token，stats 负责填充类目指标
func mapTradeCurrencies[E any](entries []E, currency func(E) bitquery.Currency, stats func(E) metrics) []*model.DiscoveryToken {
	tokens := make([]*model.DiscoveryToken, 0, len(entries))
	for _, e := range entries {
		t := newToken(currency(e))
		if t == nil {
			continue
		}
		t.Metrics = stats(e).jsonMap()
		tokens = append(tokens, t)
	}
	return tokens
}

func mapXStock(entries []bitquery.XStockEntry) []*model.DiscoveryToken {
	return mapTradeCurrencies(entries,
		func(e bitquery.XStockEntry) bitquery.Currency { return e.Trade.Currency },
		func(e bitquery.XStockEntry) metrics {
			return metrics{}.
				put("latest_price", e.Trade.LatestPrice).
				put("total_volume", e.TotalVolume).
				put("total_trades", e.TotalTrades).
				put("unique_traders", e.UniqueTraders).
				put("unique_dexs", e.UniqueDexs).
				putString("market_address", e.Trade.Market.MarketAddress).
				putString("protocol_family", e.Trade.Dex.ProtocolFamily)
		})
}

func mapLsts(entries []bitquery.LstEntry) []*model.DiscoveryToken {
	return mapTradeCurrencies(entries,
		func(e bitquery.LstEntry) bitquery.Currency { return e.Trade.Currency },
		func(e bitquery.LstEntry) metrics {
			return metrics{}.
				put("latest_price_usd", e.Trade.LatestPriceUSD).
				put("latest_price_sol", e.Trade.LatestPriceSOL).
				put("volume_7d_usd", e.Volume7dUSD).
				put("volume_30d_usd", e.Volume30dUSD).
				put("trades_7d", e.Trades7d).
				put("trades_30d", e.Trades30d).
				put("unique_traders_7d", e.UniqueTraders7d)
		})
}

func mapAI(entries []bitquery.AIEntry) []*model.DiscoveryToken {
	return mapTradeCurrencies(entries,
		func(e bitquery.AIEntry) bitquery.Currency { return e.Trade.Currency },
		func(e bitquery.AIEntry) metrics {
			return metrics{}.
				put("latest_price", e.Trade.LatestPrice).
				put("price_24h_ago", e.Trade.Price24hAgo).
				put("price_7d_ago", e.Trade.Price7dAgo).
				put("volume_24h", e.Volume24h).
				put("volume_7d", e.Volume7d).
				put("unique_traders_24h", e.UniqueTraders24h).
				put("unique_traders_7d", e.UniqueTraders7d).
				put("total_trades_24h", e.TotalTrades24h).
				put("total_trades_7d", e.TotalTrades7d).
				put("buy_volume_24h", e.BuyVolume24h).
				put("sell_volume_24h", e.SellVolume24h).
				put("buy_trades_24h", e.BuyTrades24h).
				put("sell_trades_24h", e.SellTrades24h).
				put("unique_dexs", e.UniqueDexs).
				put("avg_trade_size_24h", e.AvgTradeSize24h)
		})
}
