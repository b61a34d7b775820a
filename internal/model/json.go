package model

import (
	"encoding/json"
	"math"
)

// JSON has no NaN, so a missing return travels as null. Decoding maps null to
// NaN, which every reader already treats as missing; encoding maps any
// non-finite value back to null.

type stockReturnWire struct {
	Date   string   `json:"date"`
	Ticker string   `json:"ticker"`
	Sector string   `json:"sector"`
	Return *float64 `json:"return"`
}

func (r StockReturnRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(stockReturnWire{
		Date:   r.Date,
		Ticker: r.Ticker,
		Sector: r.Sector,
		Return: finiteOrNil(r.Return),
	})
}

func (r *StockReturnRow) UnmarshalJSON(b []byte) error {
	var w stockReturnWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = StockReturnRow{Date: w.Date, Ticker: w.Ticker, Sector: w.Sector, Return: orNaN(w.Return)}
	return nil
}

type sectorReturnWire struct {
	Date    string              `json:"date"`
	Returns map[string]*float64 `json:"returns"`
}

func (r SectorReturnRow) MarshalJSON() ([]byte, error) {
	w := sectorReturnWire{Date: r.Date, Returns: make(map[string]*float64, len(r.Returns))}
	for k, v := range r.Returns {
		w.Returns[k] = finiteOrNil(v)
	}
	return json.Marshal(w)
}

func (r *SectorReturnRow) UnmarshalJSON(b []byte) error {
	var w sectorReturnWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = SectorReturnRow{Date: w.Date}
	if w.Returns != nil {
		r.Returns = make(map[string]float64, len(w.Returns))
		for k, v := range w.Returns {
			r.Returns[k] = orNaN(v)
		}
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
