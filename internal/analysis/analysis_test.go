package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-rotation/internal/backtest"
	"regime-rotation/internal/model"
)

func TestPercentileSorted(t *testing.T) {
	vals := []float64{0, 10, 20, 30, 40}
	assert.Equal(t, 0.0, percentileSorted(vals, 0))
	assert.Equal(t, 40.0, percentileSorted(vals, 1))
	assert.Equal(t, 20.0, percentileSorted(vals, 0.5))
	assert.InDelta(t, 2.0, percentileSorted(vals, 0.05), 1e-12)
	assert.Equal(t, 0.0, percentileSorted(nil, 0.5))
}

func TestByRegime(t *testing.T) {
	trades := []backtest.TradeRecord{
		{Regime: model.Goldilocks, Return: 0.1},
		{Regime: model.Goldilocks, Return: -0.05},
		{Regime: model.Slowdown, Return: 0, Skipped: backtest.SkipNoCandidates},
	}
	got := ByRegime(trades)
	require.Len(t, got, model.NumRegimes)

	g := got[model.Goldilocks]
	assert.Equal(t, 2, g.Weeks)
	assert.InDelta(t, 0.025, g.Mean, 1e-12)
	assert.Equal(t, -0.05, g.Min)
	assert.Equal(t, 0.1, g.Max)
	assert.Equal(t, 0.5, g.WinRate)
	assert.InDelta(t, 1.1*0.95-1, g.Compounded, 1e-12)
	assert.InDelta(t, -0.05+0.05*0.15, g.P05, 1e-12)

	s := got[model.Slowdown]
	assert.Equal(t, 1, s.Weeks)
	assert.Equal(t, 1, s.SkippedWeeks)
	assert.Zero(t, s.WinRate)

	assert.Zero(t, got[model.Stagflation].Weeks)
	assert.Equal(t, "Overheating", got[model.Overheating].Name)
}

func TestRankContributors(t *testing.T) {
	trades := []backtest.TradeRecord{
		{
			Longs:  []backtest.Position{{Ticker: "AAA", Sector: "XLK", Side: model.SideLong, PnL: 0.01}},
			Shorts: []backtest.Position{{Ticker: "BBB", Sector: "XLU", Side: model.SideShort, PnL: 0.02}},
		},
		{
			Longs: []backtest.Position{
				{Ticker: "AAA", Sector: "XLK", Side: model.SideLong, PnL: 0.015},
				{Ticker: "CCC", Sector: "XLK", Side: model.SideLong, PnL: -0.01},
			},
		},
	}
	got := RankContributors(trades, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "AAA", got[0].Ticker)
	assert.InDelta(t, 0.025, got[0].PnL, 1e-12)
	assert.Equal(t, 2, got[0].LongWeeks)
	assert.Equal(t, "BBB", got[1].Ticker)
	assert.Equal(t, 1, got[1].ShortWeeks)
	assert.Equal(t, "CCC", got[2].Ticker)

	assert.Len(t, RankContributors(trades, 1), 1)
	assert.Empty(t, RankContributors(nil, 5))
}
