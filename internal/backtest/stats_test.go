package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	curve := []EquityPoint{
		{Date: "2020-01-03", Return: 0.1, Equity: 1.1},
		{Date: "2020-01-10", Return: -0.1, Equity: 0.99},
	}
	s := ComputeStats(curve, 1)

	assert.Equal(t, 2, s.Weeks)
	assert.InDelta(t, -0.01, s.TotalReturn, 1e-12)
	assert.InDelta(t, math.Pow(0.99, 26)-1, s.CAGR, 1e-12)
	assert.InDelta(t, 0, s.WeeklyMean, 1e-12)
	assert.InDelta(t, 0.02, s.WeeklyVariance, 1e-12)
	assert.InDelta(t, math.Sqrt(0.02), s.WeeklyVol, 1e-12)
	assert.InDelta(t, math.Sqrt(0.02)*math.Sqrt(52), s.AnnualVol, 1e-12)
	assert.InDelta(t, s.CAGR/s.AnnualVol, s.Sharpe, 1e-12)
	assert.InDelta(t, -0.1, s.MaxDrawdown, 1e-12)
	assert.Equal(t, 0.5, s.WinRate)
	assert.Equal(t, 0.99, s.FinalEquity)
}

func TestComputeStatsEdgeCases(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := ComputeStats(nil, 1)
		assert.Equal(t, Stats{FinalEquity: 1}, s)
	})
	t.Run("flat curve has zero sharpe", func(t *testing.T) {
		s := ComputeStats([]EquityPoint{{Return: 0, Equity: 1}, {Return: 0, Equity: 1}}, 1)
		assert.Zero(t, s.AnnualVol)
		assert.Zero(t, s.Sharpe)
		assert.Zero(t, s.WinRate)
	})
	t.Run("first week loss counts against initial equity", func(t *testing.T) {
		s := ComputeStats([]EquityPoint{{Return: -0.2, Equity: 0.8}, {Return: 0.5, Equity: 1.2}}, 1)
		assert.InDelta(t, -0.2, s.MaxDrawdown, 1e-12)
	})
	t.Run("single week", func(t *testing.T) {
		s := ComputeStats([]EquityPoint{{Return: 0.01, Equity: 1.01}}, 1)
		assert.Zero(t, s.WeeklyVariance)
		assert.Zero(t, s.Sharpe)
		assert.Equal(t, 1.0, s.WinRate)
	})
}

func TestYearlyReturns(t *testing.T) {
	got := YearlyReturns([]EquityPoint{
		{Date: "2019-12-27", Return: 0.1},
		{Date: "2020-01-03", Return: 0.1},
		{Date: "2020-01-10", Return: -0.05},
	})
	assert.Len(t, got, 2)
	assert.Equal(t, 2019, got[0].Year)
	assert.InDelta(t, 0.1, got[0].Return, 1e-12)
	assert.Equal(t, 2020, got[1].Year)
	assert.Equal(t, 2, got[1].Weeks)
	assert.InDelta(t, 1.1*0.95-1, got[1].Return, 1e-12)
}
