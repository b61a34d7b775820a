// Package regime assigns macro regimes to feature rows with a fixed,
// ordered rule set. The first matching rule wins.
package regime

import "regime-rotation/internal/model"

// Inputs are the decision fields read from a row. Missing values read as 0.
type Inputs struct {
	Returns      float64
	Volatility   float64
	Growth       float64
	Inflation    float64
	VVIX         float64
	RealizedVol  float64
	IndPro       float64
	Unemployment float64
	CPIYoY       float64
}

// InputsFrom extracts the decision fields from row.
func InputsFrom(row model.FeatureRow) Inputs {
	return Inputs{
		Returns:      row.ValueOrZero(model.SPXRet3W),
		Volatility:   row.ValueOrZero(model.VIX),
		Growth:       row.ValueOrZero(model.PMI),
		Inflation:    row.ValueOrZero(model.Breakeven10),
		VVIX:         row.ValueOrZero(model.VVIX),
		RealizedVol:  row.ValueOrZero(model.RealizedVol),
		IndPro:       row.ValueOrZero(model.IndPro),
		Unemployment: row.ValueOrZero(model.Unemployment),
		CPIYoY:       row.ValueOrZero(model.CPIYoY),
	}
}

// Rule maps a predicate to the regime it assigns.
type Rule struct {
	Name   string
	Regime model.Regime
	Match  func(Inputs) bool
}

var rules = []Rule{
	{"stagflation", model.Stagflation, func(in Inputs) bool {
		return in.Growth <= 0 && in.Inflation >= 0.75 && in.Volatility >= 0
	}},
	{"overheating", model.Overheating, func(in Inputs) bool {
		return in.Returns >= 0.5 && in.Volatility <= -0.5 && in.VVIX+in.RealizedVol < -0.3
	}},
	{"slowdown", model.Slowdown, func(in Inputs) bool {
		return in.Returns <= -0.5 && in.Growth <= 0 && in.Volatility >= 0
	}},
	{"goldilocks", model.Goldilocks, func(in Inputs) bool {
		return in.Returns >= 0.5 && in.Volatility <= 0 && in.Growth >= 0 &&
			in.Inflation >= -0.5 && in.Inflation <= 0.75
	}},

	// Fallback cascade.
	{"fallback_goldilocks", model.Goldilocks, func(in Inputs) bool {
		return in.Returns > 0 && in.Volatility < 0 && in.IndPro-in.Unemployment > 0
	}},
	{"fallback_slowdown", model.Slowdown, func(in Inputs) bool {
		return in.Returns < 0 && in.Volatility > 0
	}},
	{"fallback_stagflation", model.Stagflation, func(in Inputs) bool {
		return in.Inflation > 0.5 || in.CPIYoY > 0.75
	}},
	{"fallback_overheating", model.Overheating, func(Inputs) bool { return true }},
}

// Rules returns the rule list in evaluation order. The last rule always matches.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Evaluate returns the first rule matching in.
func Evaluate(in Inputs) Rule {
	for _, r := range rules {
		if r.Match(in) {
			return r
		}
	}
	return rules[len(rules)-1]
}

// Label returns the regime of row.
func Label(row model.FeatureRow) model.Regime {
	return Evaluate(InputsFrom(row)).Regime
}

// Explain returns the name of the rule that labels row.
func Explain(row model.FeatureRow) string {
	return Evaluate(InputsFrom(row)).Name
}

// LabelAll returns labeled copies of rows; the input is left untouched.
func LabelAll(rows []model.FeatureRow) []model.FeatureRow {
	out := make([]model.FeatureRow, len(rows))
	for i, r := range rows {
		r.Regime = Label(r)
		r.Labeled = true
		out[i] = r
	}
	return out
}

// Series returns one regime point per row, in row order.
func Series(rows []model.FeatureRow) []model.RegimePoint {
	out := make([]model.RegimePoint, 0, len(rows))
	for _, r := range rows {
		reg := r.Regime
		if !r.Labeled {
			reg = Label(r)
		}
		out = append(out, model.RegimePoint{Date: r.Date, Regime: reg})
	}
	return out
}
