package discovery

import (
	"token-pulse/internal/worker/model"
	"token-pulse/pkg/bitquery"
)

type frameMetric struct {
	frame    int
	currency bitquery.Currency
	traders  bitquery.Number
	volume   bitquery.Number
	trades   bitquery.Number
}

// increased 缺失值按 0 比较
func (m frameMetric) increased(prev frameMetric) bool {
	return m.traders.Value.GreaterThan(prev.traders.Value) ||
		m.volume.Value.GreaterThan(prev.volume.Value) ||
		m.trades.Value.GreaterThan(prev.trades.Value)
}

// groupByMint 按 mint 汇总每个窗口的指标，顺序为 mint 首次出现的顺序
func groupByMint(frames [][]bitquery.ActivityEntry) ([]string, map[string][]frameMetric) {
	var order []string
	grouped := make(map[string][]frameMetric)
	for idx, frame := range frames {
		for _, e := range frame {
			mint := e.Trade.Currency.MintAddress
			if mint == "" {
				continue
			}
			if _, ok := grouped[mint]; !ok {
				order = append(order, mint)
			}
			grouped[mint] = append(grouped[mint], frameMetric{
				frame:    idx,
				currency: e.Trade.Currency,
				traders:  e.UniqueTraders,
				volume:   e.TradedVolume,
				trades:   e.Trades,
			})
		}
	}
	return order, grouped
}

// selectTrending 窗口由短到长，任意相邻两个出现过的窗口之间有一项指标严格增长即为趋势
func selectTrending(frames [][]bitquery.ActivityEntry) []*model.DiscoveryToken {
	order, grouped := groupByMint(frames)

	var tokens []*model.DiscoveryToken
	for _, mint := range order {
		// 按窗口顺序追加，本身已有序
		ms := grouped[mint]
		trending := false
		for i := 1; i < len(ms); i++ {
			if ms[i].increased(ms[i-1]) {
				trending = true
				break
			}
		}
		if !trending {
			continue
		}
		if t := newToken(ms[0].currency); t != nil {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// selectPopular 所有窗口的并集，元数据取首次出现
func selectPopular(frames [][]bitquery.ActivityEntry) []*model.DiscoveryToken {
	order, grouped := groupByMint(frames)

	tokens := make([]*model.DiscoveryToken, 0, len(order))
	for _, mint := range order {
		if t := newToken(grouped[mint][0].currency); t != nil {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
