package backtest

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"regime-rotation/internal/model"
	"regime-rotation/internal/strategy"
)

// ErrNoOverlappingDates means the three input tables share fewer than two dates.
var ErrNoOverlappingDates = errors.New("no overlapping dates")

// Params configures a backtest run.
type Params struct {
	// Cutoff is the first trade date eligible for simulation (YYYY-MM-DD).
	Cutoff        string  `json:"cutoff" yaml:"cutoff" default:"2015-01-01"`
	TopN          int     `json:"top_n" yaml:"top_n" default:"5" validate:"gte=1"`
	InitialEquity float64 `json:"initial_equity" yaml:"initial_equity" default:"1" validate:"gt=0"`
}

func DefaultParams() Params {
	return Params{Cutoff: "2015-01-01", TopN: strategy.DefaultTopN, InitialEquity: 1}
}

// Engine simulates a weekly long/short sector rotation over aligned inputs.
type Engine struct {
	params Params
}

func New(params Params) *Engine {
	d := DefaultParams()
	if params.Cutoff == "" {
		params.Cutoff = d.Cutoff
	}
	if params.TopN <= 0 {
		params.TopN = d.TopN
	}
	if params.InitialEquity <= 0 {
		params.InitialEquity = d.InitialEquity
	}
	return &Engine{params: params}
}

func (e *Engine) Params() Params { return e.params }

// Run walks the common dates of the three tables, trading each week from the
// cutoff on with a selection ranked on the previous date. Inputs are not
// modified.
func (e *Engine) Run(in model.BacktestInputs, strat strategy.Strategy) (*Result, error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	cutoff, err := model.NormalizeDate(e.params.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("cutoff: %w", err)
	}

	regimes := make(map[string]model.Regime, len(in.Regimes))
	for _, p := range in.Regimes {
		if d, ok := canonical(p.Date); ok {
			regimes[d] = p.Regime
		}
	}
	sectors := make(map[string]map[string]float64, len(in.Sectors))
	for _, s := range in.Sectors {
		if d, ok := canonical(s.Date); ok {
			sectors[d] = s.Returns
		}
	}
	stockRows := make([]model.StockReturnRow, 0, len(in.Stocks))
	for _, s := range in.Stocks {
		if d, ok := canonical(s.Date); ok {
			s.Date = d
			stockRows = append(stockRows, s)
		}
	}
	stocks := model.NewStockIndex(stockRows)

	var dates []string
	for d := range regimes {
		if _, ok := sectors[d]; ok && stocks.Has(d) {
			dates = append(dates, d)
		}
	}
	if len(dates) < 2 {
		return nil, fmt.Errorf("%w: %d regime, %d sector, %d stock dates share %d",
			ErrNoOverlappingDates, len(regimes), len(sectors), len(stocks.Dates()), len(dates))
	}
	sort.Strings(dates)

	books, _ := strat.(strategy.BookProvider)

	res := &Result{
		Strategy:      strat.Name(),
		InitialEquity: e.params.InitialEquity,
		TradesByDate:  make(map[string]*TradeRecord),
	}
	equity := e.params.InitialEquity

	for i := 1; i < len(dates); i++ {
		trade := dates[i]
		if trade < cutoff {
			continue
		}
		rec := TradeRecord{
			Date:     trade,
			RankDate: dates[i-1],
			Regime:   regimes[trade],
		}

		cands, err := strat.Select(strategy.Context{
			Date:     trade,
			RankDate: rec.RankDate,
			Regime:   rec.Regime,
			Stocks:   stocks,
		})
		switch {
		case errors.Is(err, strategy.ErrNoSectorConfig):
			rec.Skipped = SkipNoSectorConfig
		case err != nil:
			return nil, fmt.Errorf("week %s select: %w", trade, err)
		default:
			rec.Longs, rec.Shorts = positions(cands, stocks, trade)
			if len(rec.Longs)+len(rec.Shorts) == 0 {
				rec.Skipped = SkipNoCandidates
			}
		}
		if rec.Skipped != "" {
			log.Debug().Str("date", trade).Str("regime", rec.Regime.String()).Str("reason", rec.Skipped).Msg("zero-return week")
		}

		for _, p := range rec.Positions() {
			rec.Return += p.PnL
		}
		if books != nil {
			if b, ok := books.Book(rec.Regime); ok {
				rec.SectorReturn = sectorReturn(b, sectors[trade])
			}
		}

		equity *= 1 + rec.Return
		rec.Equity = equity
		res.Curve = append(res.Curve, EquityPoint{Date: trade, Equity: equity, Return: rec.Return})
		res.Trades = append(res.Trades, rec)
	}

	for i := range res.Trades {
		res.TradesByDate[res.Trades[i].Date] = &res.Trades[i]
	}
	res.Stats = ComputeStats(res.Curve, res.InitialEquity)
	res.Yearly = YearlyReturns(res.Curve)

	log.Debug().
		Str("strategy", res.Strategy).
		Int("dates", len(dates)).
		Int("weeks", len(res.Curve)).
		Float64("final_equity", res.FinalEquity()).
		Msg("backtest complete")
	return res, nil
}

// positions keeps the candidates with an observed trade-week return and
// weights each book to 0.5 of gross exposure. An empty book is not
// reallocated.
func positions(cands []strategy.Candidate, stocks *model.StockIndex, date string) (longs, shorts []Position) {
	for _, c := range cands {
		ret, ok := stocks.Return(date, c.Ticker)
		if !ok {
			continue
		}
		p := Position{Ticker: c.Ticker, Sector: c.Sector, Side: c.Side, PriorReturn: c.PriorReturn, Return: ret}
		if c.Side == model.SideShort {
			shorts = append(shorts, p)
		} else {
			longs = append(longs, p)
		}
	}
	weigh(longs, 0.5)
	weigh(shorts, -0.5)
	return longs, shorts
}

func weigh(ps []Position, gross float64) {
	if len(ps) == 0 {
		return
	}
	w := gross / float64(len(ps))
	for i := range ps {
		ps[i].Weight = w
		ps[i].PnL = w * ps[i].Return
	}
}

// sectorReturn applies the same half-long half-short weighting to the sector
// ETFs themselves.
func sectorReturn(b model.SectorBook, rets map[string]float64) float64 {
	side := func(tickers []string, gross float64) float64 {
		var sum float64
		n := 0
		for _, t := range tickers {
			v, ok := rets[t]
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			return 0
		}
		return gross * sum / float64(n)
	}
	return side(b.Long, 0.5) + side(b.Short, -0.5)
}

func canonical(s string) (string, bool) {
	d, err := model.NormalizeDate(s)
	if err != nil {
		log.Debug().Str("date", s).Msg("dropping row with unparseable date")
		return "", false
	}
	return d, true
}
