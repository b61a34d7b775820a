package backtest

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

const weeksPerYear = 52

// Stats summarizes the weekly return series of a run.
type Stats struct {
	Weeks          int     `json:"weeks"`
	TotalReturn    float64 `json:"total_return"`
	CAGR           float64 `json:"cagr"`
	WeeklyMean     float64 `json:"weekly_mean"`
	WeeklyVariance float64 `json:"weekly_variance"`
	WeeklyVol      float64 `json:"weekly_vol"`
	AnnualVol      float64 `json:"annual_vol"`
	Sharpe         float64 `json:"sharpe"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	WinRate        float64 `json:"win_rate"`
	FinalEquity    float64 `json:"final_equity"`
}

// ComputeStats summarizes an equity curve that started at initial.
// Sharpe is CAGR over annualized weekly volatility.
func ComputeStats(curve []EquityPoint, initial float64) Stats {
	s := Stats{Weeks: len(curve), FinalEquity: initial}
	n := len(curve)
	if n == 0 || initial <= 0 {
		return s
	}

	rets := make([]float64, n)
	wins := 0
	peak := initial
	for i, p := range curve {
		rets[i] = p.Return
		if p.Return > 0 {
			wins++
		}
		if p.Equity > peak {
			peak = p.Equity
		}
		if dd := (p.Equity - peak) / peak; dd < s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	s.FinalEquity = curve[n-1].Equity
	s.TotalReturn = s.FinalEquity/initial - 1
	if 1+s.TotalReturn > 0 {
		s.CAGR = math.Pow(1+s.TotalReturn, float64(weeksPerYear)/float64(n)) - 1
	} else {
		s.CAGR = -1
	}

	s.WeeklyMean = stat.Mean(rets, nil)
	if n > 1 {
		s.WeeklyVariance = stat.Variance(rets, nil)
	}
	s.WeeklyVol = math.Sqrt(s.WeeklyVariance)
	s.AnnualVol = s.WeeklyVol * math.Sqrt(weeksPerYear)
	if s.AnnualVol > 0 {
		s.Sharpe = s.CAGR / s.AnnualVol
	}
	s.WinRate = float64(wins) / float64(n)
	return s
}

// YearlyReturns compounds weekly returns within each calendar year of the
// trade date, in curve order.
func YearlyReturns(curve []EquityPoint) []YearlyReturn {
	var out []YearlyReturn
	for _, p := range curve {
		y := yearOf(p.Date)
		if len(out) == 0 || out[len(out)-1].Year != y {
			out = append(out, YearlyReturn{Year: y, Return: 0})
		}
		cur := &out[len(out)-1]
		cur.Return = (1+cur.Return)*(1+p.Return) - 1
		cur.Weeks++
	}
	return out
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
