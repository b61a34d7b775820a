package data

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"regime-rotation/internal/model"
	"regime-rotation/internal/regime"
)

const (
	syntheticStocksPerSector = 6
	syntheticPersistence     = 0.9
)

// syntheticTilt is the weekly drift added to each sector while a regime is
// active. Untilted sectors drift at zero.
var syntheticTilt = map[model.Regime]map[string]float64{
	model.Goldilocks:  {"XLK": 0.004, "XLY": 0.003, "XLC": 0.002, "XLU": -0.002, "XLP": -0.002},
	model.Slowdown:    {"XLP": 0.002, "XLU": 0.003, "XLV": 0.002, "XLY": -0.004, "XLF": -0.003},
	model.Stagflation: {"XLE": 0.004, "XLB": 0.002, "XLP": 0.001, "XLK": -0.003, "XLY": -0.003},
	model.Overheating: {"XLE": 0.003, "XLF": 0.003, "XLI": 0.002, "XLU": -0.002, "XLRE": -0.003},
}

// Dataset holds the three tables a full run needs.
type Dataset struct {
	Features []model.FeatureRow
	Sectors  []model.SectorReturnRow
	Stocks   []model.StockReturnRow
}

// Synthetic generates weeks of weekly data starting 2005-01-07. Features are
// persistent AR(1) z-scores; sector and stock returns drift with the labeled
// regime. About 1% of stock rows are left out to exercise missing returns.
func Synthetic(seed int64, weeks int) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	names := model.FeatureNames()
	z := make(map[string]float64, len(names))
	noise := math.Sqrt(1 - syntheticPersistence*syntheticPersistence)

	ds := &Dataset{
		Features: make([]model.FeatureRow, 0, weeks),
		Sectors:  make([]model.SectorReturnRow, 0, weeks),
		Stocks:   make([]model.StockReturnRow, 0, weeks*len(model.SectorTickers)*syntheticStocksPerSector),
	}
	start := time.Date(2005, 1, 7, 0, 0, 0, 0, time.UTC)

	for w := 0; w < weeks; w++ {
		date := start.AddDate(0, 0, 7*w).Format(model.DateLayout)

		row := model.FeatureRow{Date: date, Features: make(map[string]float64, len(names))}
		for _, n := range names {
			z[n] = syntheticPersistence*z[n] + noise*rng.NormFloat64()
			row.Features[n] = z[n]
		}
		ds.Features = append(ds.Features, row)

		tilt := syntheticTilt[regime.Label(row)]
		market := 0.001 + 0.015*rng.NormFloat64()
		sec := model.SectorReturnRow{Date: date, Returns: make(map[string]float64, len(model.SectorTickers))}
		for _, t := range model.SectorTickers {
			r := market + tilt[t] + 0.01*rng.NormFloat64()
			sec.Returns[t] = r
			for k := 1; k <= syntheticStocksPerSector; k++ {
				sr := r + 0.02*rng.NormFloat64()
				if rng.Float64() < 0.01 {
					continue
				}
				ds.Stocks = append(ds.Stocks, model.StockReturnRow{
					Date:   date,
					Ticker: fmt.Sprintf("%s%02d", t, k),
					Sector: t,
					Return: sr,
				})
			}
		}
		ds.Sectors = append(ds.Sectors, sec)
	}
	return ds
}

// Bundle returns the dataset in its JSON exchange form.
func (d *Dataset) Bundle() *Bundle {
	return &Bundle{
		Features: FromFeatureRows(d.Features),
		Regimes:  regime.Series(d.Features),
		Sectors:  d.Sectors,
		Stocks:   d.Stocks,
	}
}
