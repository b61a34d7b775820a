package model

import (
	"math"
	"sort"
)

// StockIndex is a read-only view over stock return rows keyed by canonical date.
type StockIndex struct {
	byDate map[string][]StockReturnRow
	ret    map[string]map[string]float64
}

// NewStockIndex indexes rows. Rows must already carry canonical dates.
// When a ticker repeats on a date the last row wins.
func NewStockIndex(rows []StockReturnRow) *StockIndex {
	idx := &StockIndex{
		byDate: make(map[string][]StockReturnRow),
		ret:    make(map[string]map[string]float64),
	}
	for _, r := range rows {
		m, ok := idx.ret[r.Date]
		if !ok {
			m = make(map[string]float64)
			idx.ret[r.Date] = m
		}
		if _, dup := m[r.Ticker]; dup {
			rs := idx.byDate[r.Date]
			for i := range rs {
				if rs[i].Ticker == r.Ticker {
					rs[i] = r
				}
			}
		} else {
			idx.byDate[r.Date] = append(idx.byDate[r.Date], r)
		}
		m[r.Ticker] = r.Return
	}
	return idx
}

// Dates returns every indexed date, ascending.
func (x *StockIndex) Dates() []string {
	out := make([]string, 0, len(x.byDate))
	for d := range x.byDate {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Has reports whether any stock row exists on date.
func (x *StockIndex) Has(date string) bool {
	_, ok := x.byDate[date]
	return ok
}

// Constituents returns the rows of sector on date with a finite return.
func (x *StockIndex) Constituents(date, sector string) []StockReturnRow {
	var out []StockReturnRow
	for _, r := range x.byDate[date] {
		if r.Sector == sector && isFinite(r.Return) {
			out = append(out, r)
		}
	}
	return out
}

// Return looks up ticker's return on date. Non-finite values count as missing.
func (x *StockIndex) Return(date, ticker string) (float64, bool) {
	v, ok := x.ret[date][ticker]
	if !ok || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
