package analysis

import (
	"sort"

	"regime-rotation/internal/backtest"
	"regime-rotation/internal/model"
)

// Contributor is one ticker's aggregate P&L contribution over a run.
type Contributor struct {
	Ticker     string  `json:"ticker"`
	Sector     string  `json:"sector"`
	LongWeeks  int     `json:"long_weeks"`
	ShortWeeks int     `json:"short_weeks"`
	PnL        float64 `json:"pnl"`
}

// RankContributors sums position P&L per ticker and sorts descending, ties by
// ticker. limit <= 0 returns every ticker.
func RankContributors(trades []backtest.TradeRecord, limit int) []Contributor {
	byTicker := map[string]*Contributor{}
	for _, t := range trades {
		for _, p := range t.Positions() {
			c, ok := byTicker[p.Ticker]
			if !ok {
				c = &Contributor{Ticker: p.Ticker, Sector: p.Sector}
				byTicker[p.Ticker] = c
			}
			if p.Side == model.SideShort {
				c.ShortWeeks++
			} else {
				c.LongWeeks++
			}
			c.PnL += p.PnL
		}
	}

	out := make([]Contributor, 0, len(byTicker))
	for _, c := range byTicker {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PnL != out[j].PnL {
			return out[i].PnL > out[j].PnL
		}
		return out[i].Ticker < out[j].Ticker
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
