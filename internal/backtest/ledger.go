package backtest

import "regime-rotation/internal/model"

// Skip reasons recorded on zero-return weeks.
const (
	SkipNoSectorConfig = "no_sector_config"
	SkipNoCandidates   = "no_candidates"
)

// Position is one stock held for one trade week.
type Position struct {
	Ticker      string     `json:"ticker"`
	Sector      string     `json:"sector"`
	Side        model.Side `json:"side"`
	PriorReturn float64    `json:"prior_return"`
	Return      float64    `json:"return"`
	Weight      float64    `json:"weight"`
	PnL         float64    `json:"pnl"`
}

// TradeRecord is one row of per-week output.
// This is the primary artifact for "what happened" in a backtest.
type TradeRecord struct {
	Date     string       `json:"date"`
	RankDate string       `json:"rank_date"`
	Regime   model.Regime `json:"regime"`

	Return       float64 `json:"return"`
	SectorReturn float64 `json:"sector_return"`
	Equity       float64 `json:"equity"`

	Longs  []Position `json:"longs"`
	Shorts []Position `json:"shorts"`

	Skipped string `json:"skipped,omitempty"`
}

// Positions returns longs followed by shorts.
func (t *TradeRecord) Positions() []Position {
	out := make([]Position, 0, len(t.Longs)+len(t.Shorts))
	out = append(out, t.Longs...)
	return append(out, t.Shorts...)
}

// EquityPoint is the equity after one simulated week and that week's return.
type EquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
	Return float64 `json:"return"`
}

// YearlyReturn compounds the weekly returns of one calendar year.
type YearlyReturn struct {
	Year   int     `json:"year"`
	Return float64 `json:"return"`
	Weeks  int     `json:"weeks"`
}

// Result is the full output of one backtest run.
type Result struct {
	Strategy      string                  `json:"strategy"`
	InitialEquity float64                 `json:"initial_equity"`
	Curve         []EquityPoint           `json:"curve"`
	Trades        []TradeRecord           `json:"trades"`
	TradesByDate  map[string]*TradeRecord `json:"-"`
	Yearly        []YearlyReturn          `json:"yearly"`
	Stats         Stats                   `json:"stats"`
}

// FinalEquity is the last point of the curve, or the initial equity when no
// week was simulated.
func (r *Result) FinalEquity() float64 {
	if len(r.Curve) == 0 {
		return r.InitialEquity
	}
	return r.Curve[len(r.Curve)-1].Equity
}

// Returns is the weekly return sequence.
func (r *Result) Returns() []float64 {
	out := make([]float64, len(r.Curve))
	for i, p := range r.Curve {
		out[i] = p.Return
	}
	return out
}
