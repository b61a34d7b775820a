package model

import "math"

// Category groups features by the macro concept they measure.
type Category string

const (
	CategoryReturns     Category = "returns_momentum"
	CategoryVolatility  Category = "volatility"
	CategoryCredit      Category = "credit_rates"
	CategoryGrowth      Category = "growth"
	CategoryInflation   Category = "inflation"
	CategorySentiment   Category = "sentiment"
	CategoryCommodities Category = "commodities_cross_asset"
)

// Feature column names. All are z-scores.
const (
	SPXRet3W     = "spx_ret_3w_z"
	SPXRet12W    = "spx_ret_12w_z"
	SPXMom26W    = "spx_mom_26w_z"
	VIX          = "vix_z"
	VVIX         = "vvix_z"
	RealizedVol  = "realized_vol_z"
	HYOAS        = "hy_oas_z"
	IGOAS        = "ig_oas_z"
	YieldCurve   = "yc_10y2y_z"
	PMI          = "pmi_z"
	IndPro       = "indpro_z"
	Unemployment = "unemployment_z"
	Breakeven10  = "breakeven10_z"
	CPIYoY       = "cpi_yoy_z"
	CorePCE      = "core_pce_z"
	AAIIBullBear = "aaii_bull_bear_z"
	PutCall      = "put_call_z"
	ConsumerSent = "consumer_sent_z"
	Oil          = "oil_z"
	GoldCopper   = "gold_copper_z"
	DollarIndex  = "dxy_z"
)

// FeatureCategories lists the fixed feature set in display order.
var FeatureCategories = []struct {
	Category Category
	Features []string
}{
	{CategoryReturns, []string{SPXRet3W, SPXRet12W, SPXMom26W}},
	{CategoryVolatility, []string{VIX, VVIX, RealizedVol}},
	{CategoryCredit, []string{HYOAS, IGOAS, YieldCurve}},
	{CategoryGrowth, []string{PMI, IndPro, Unemployment}},
	{CategoryInflation, []string{Breakeven10, CPIYoY, CorePCE}},
	{CategorySentiment, []string{AAIIBullBear, PutCall, ConsumerSent}},
	{CategoryCommodities, []string{Oil, GoldCopper, DollarIndex}},
}

// FeatureNames returns the 21 model features in category order.
func FeatureNames() []string {
	out := make([]string, 0, 21)
	for _, c := range FeatureCategories {
		out = append(out, c.Features...)
	}
	return out
}

// CategoryOf returns the category a feature belongs to.
func CategoryOf(name string) (Category, bool) {
	for _, c := range FeatureCategories {
		for _, f := range c.Features {
			if f == name {
				return c.Category, true
			}
		}
	}
	return "", false
}

// FeatureRow is one dated observation of the indicator set.
// A feature is missing when its key is absent or its value is not finite.
type FeatureRow struct {
	Date     string             `json:"date"`
	Features map[string]float64 `json:"features"`

	Regime  Regime `json:"regime"`
	Labeled bool   `json:"labeled"`
}

// Value returns the feature value and whether it is present.
func (r FeatureRow) Value(name string) (float64, bool) {
	v, ok := r.Features[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ValueOrZero reads a feature, treating missing as 0.
func (r FeatureRow) ValueOrZero(name string) float64 {
	v, _ := r.Value(name)
	return v
}

// Year returns the calendar year of the row's canonical date, or 0.
func (r FeatureRow) Year() int {
	t, err := ParseDate(r.Date)
	if err != nil {
		return 0
	}
	return t.Year()
}
