package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"regime-rotation/internal/model"
)

// FeatureRecord is the JSON form of a feature row. Null values are missing.
type FeatureRecord struct {
	Date     string              `json:"date"`
	Features map[string]*float64 `json:"features"`
}

// Bundle is a self-contained dataset as exchanged over JSON.
type Bundle struct {
	Features []FeatureRecord         `json:"features,omitempty"`
	Regimes  []model.RegimePoint     `json:"regimes,omitempty"`
	Sectors  []model.SectorReturnRow `json:"sectors,omitempty"`
	Stocks   []model.StockReturnRow  `json:"stocks,omitempty"`
}

func LoadBundleJSON(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// FeatureRows converts the records, normalizing dates and dropping nulls.
func (b *Bundle) FeatureRows() ([]model.FeatureRow, error) {
	return ToFeatureRows(b.Features)
}

func ToFeatureRows(recs []FeatureRecord) ([]model.FeatureRow, error) {
	out := make([]model.FeatureRow, 0, len(recs))
	for i, rec := range recs {
		date, err := model.NormalizeDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("features[%d]: %w", i, err)
		}
		row := model.FeatureRow{Date: date, Features: make(map[string]float64, len(rec.Features))}
		for k, v := range rec.Features {
			if v != nil {
				row.Features[k] = *v
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// FromFeatureRows is the inverse of ToFeatureRows. Missing values become null.
func FromFeatureRows(rows []model.FeatureRow) []FeatureRecord {
	out := make([]FeatureRecord, len(rows))
	for i, r := range rows {
		rec := FeatureRecord{Date: r.Date, Features: make(map[string]*float64, len(r.Features))}
		names := make([]string, 0, len(r.Features))
		for k := range r.Features {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			if v, ok := r.Value(k); ok {
				rec.Features[k] = &v
			} else {
				rec.Features[k] = nil
			}
		}
		out[i] = rec
	}
	return out
}

// Inputs returns the backtest tables. Stock rows absent from the bundle are
// missing returns.
func (b *Bundle) Inputs() model.BacktestInputs {
	return model.BacktestInputs{Regimes: b.Regimes, Sectors: b.Sectors, Stocks: b.Stocks}
}
