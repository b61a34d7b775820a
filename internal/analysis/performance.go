package analysis

import (
	"math"
	"sort"

	"regime-rotation/internal/backtest"
	"regime-rotation/internal/model"
)

// RegimePerformance summarizes the weekly returns earned while one regime
// was active.
type RegimePerformance struct {
	Regime model.Regime `json:"regime"`
	Name   string       `json:"name"`

	Weeks        int `json:"weeks"`
	SkippedWeeks int `json:"skipped_weeks"`

	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`
	WinRate      float64 `json:"win_rate"`
	// Compounded is the product of (1+r) over the regime's weeks, minus 1.
	Compounded float64 `json:"compounded"`
}

// ByRegime returns one summary per regime, ordered by id. Regimes that never
// occurred have Weeks == 0.
func ByRegime(trades []backtest.TradeRecord) []RegimePerformance {
	rets := make([][]float64, model.NumRegimes)
	out := make([]RegimePerformance, model.NumRegimes)
	for i := range out {
		out[i] = RegimePerformance{Regime: model.Regime(i), Name: model.Regime(i).String()}
	}
	for _, t := range trades {
		if !t.Regime.Valid() {
			continue
		}
		rets[t.Regime] = append(rets[t.Regime], t.Return)
		if t.Skipped != "" {
			out[t.Regime].SkippedWeeks++
		}
	}
	for i, vals := range rets {
		out[i] = summarize(out[i], vals)
	}
	return out
}

func summarize(p RegimePerformance, vals []float64) RegimePerformance {
	p.Weeks = len(vals)
	if len(vals) == 0 {
		return p
	}

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	growth := 1.0
	wins := 0
	for _, v := range vals {
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
		if v > 0 {
			wins++
		}
		growth *= 1 + v
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	p.Mean = sum / float64(len(vals))
	p.Min = minv
	p.Max = maxv
	p.P05 = percentileSorted(sorted, 0.05)
	p.P95 = percentileSorted(sorted, 0.95)
	p.SpreadP95P05 = p.P95 - p.P05
	p.WinRate = float64(wins) / float64(len(vals))
	p.Compounded = growth - 1
	return p
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
