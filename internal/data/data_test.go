package data

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-rotation/internal/model"
)

func TestReadFeatureCSV(t *testing.T) {
	in := "observation_date,spx_ret_3w_z,vix_z,pmi_z\n" +
		"2016-01-08,1.5,NA,0.25\n" +
		"01/15/2016,,-0.5,null\n"
	rows, err := ReadFeatureCSV(strings.NewReader(in), "observation_date")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2016-01-08", rows[0].Date)
	v, ok := rows[0].Value(model.SPXRet3W)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	_, ok = rows[0].Value(model.VIX)
	assert.False(t, ok)

	assert.Equal(t, "2016-01-15", rows[1].Date)
	assert.Len(t, rows[1].Features, 1)
}

func TestReadFeatureCSVErrors(t *testing.T) {
	_, err := ReadFeatureCSV(strings.NewReader("when,vix_z\n2016-01-01,1\n"), "")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = ReadFeatureCSV(strings.NewReader("date,vix_z\n2016-01-01,high\n"), "")
	assert.ErrorContains(t, err, "line 2 column vix_z")

	_, err = ReadFeatureCSV(strings.NewReader("date,vix_z\nyesterday,1\n"), "")
	assert.Error(t, err)

	_, err = ReadFeatureCSV(strings.NewReader(""), "")
	assert.Error(t, err)
}

func TestReadSectorReturnsCSV(t *testing.T) {
	in := "Date,xlk,XLU\n2020-01-03,0.01,\n2020-01-10,-0.02,0.005\n"
	rows, err := ReadSectorReturnsCSV(strings.NewReader(in), "Date")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]float64{"XLK": 0.01}, rows[0].Returns)
	assert.Equal(t, 0.005, rows[1].Returns["XLU"])
}

func TestReadStockReturnsCSV(t *testing.T) {
	in := "date,ticker,sector,return\n2020-01-03,AAPL,xlk,0.02\n2020-01-03,MSFT,XLK,\n"
	rows, err := ReadStockReturnsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.StockReturnRow{Date: "2020-01-03", Ticker: "AAPL", Sector: "XLK", Return: 0.02}, rows[0])
	assert.True(t, math.IsNaN(rows[1].Return))

	idx := model.NewStockIndex(rows)
	_, ok := idx.Return("2020-01-03", "MSFT")
	assert.False(t, ok)

	_, err = ReadStockReturnsCSV(strings.NewReader("date,ticker,return\n"))
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestRegimeCSVRoundTrip(t *testing.T) {
	series := []model.RegimePoint{
		{Date: "2020-01-03", Regime: model.Slowdown},
		{Date: "2020-01-10", Regime: model.Overheating},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRegimeCSV(&buf, series))
	got, err := ReadRegimeCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, series, got)

	got, err = ReadRegimeCSV(strings.NewReader("date,regime\n2020-01-03,stagflation\n"))
	require.NoError(t, err)
	assert.Equal(t, model.Stagflation, got[0].Regime)

	_, err = ReadRegimeCSV(strings.NewReader("date,regime\n2020-01-03,7\n"))
	assert.Error(t, err)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "features.csv")
	require.NoError(t, os.WriteFile(p, []byte("date,vix_z\n2016-01-08,0.5\n"), 0o644))
	rows, err := LoadFeatureCSV(p, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = LoadFeatureCSV(filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)
	_, err = LoadSectorReturnsCSV(filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)
	_, err = LoadStockReturnsCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
	_, err = LoadRegimeCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestBundleKeepsNulls(t *testing.T) {
	raw := `{"features":[{"date":"2016-01-08","features":{"vix_z":null,"pmi_z":0.5}}],
	         "regimes":[{"date":"2016-01-08","regime":2}]}`
	var b Bundle
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	rows, err := b.FeatureRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, ok := rows[0].Value(model.VIX)
	assert.False(t, ok)
	assert.Equal(t, 0.5, rows[0].ValueOrZero(model.PMI))

	rows[0].Features[model.VIX] = math.NaN()
	recs := FromFeatureRows(rows)
	assert.Nil(t, recs[0].Features[model.VIX])
	require.NotNil(t, recs[0].Features[model.PMI])
	_, err = json.Marshal(recs)
	require.NoError(t, err)

	in := b.Inputs()
	assert.Equal(t, model.Stagflation, in.Regimes[0].Regime)

	dir := t.TempDir()
	p := filepath.Join(dir, "bundle.json")
	require.NoError(t, os.WriteFile(p, []byte(raw), 0o644))
	loaded, err := LoadBundleJSON(p)
	require.NoError(t, err)
	assert.Len(t, loaded.Features, 1)
}

func TestBundleNullReturnsAreMissing(t *testing.T) {
	raw := `{"sectors":[{"date":"2016-01-08","returns":{"XLK":null,"XLE":0.01}}],
	         "stocks":[{"date":"2016-01-08","ticker":"S1","sector":"XLK","return":null},
	                   {"date":"2016-01-08","ticker":"S2","sector":"XLK","return":0.02}]}`
	var b Bundle
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	in := b.Inputs()
	require.Len(t, in.Stocks, 2)
	assert.True(t, math.IsNaN(in.Stocks[0].Return))
	assert.Equal(t, 0.02, in.Stocks[1].Return)
	assert.True(t, math.IsNaN(in.Sectors[0].Returns["XLK"]))
	assert.Equal(t, 0.01, in.Sectors[0].Returns["XLE"])

	_, err := json.Marshal(&b)
	require.NoError(t, err)
}

func TestSynthetic(t *testing.T) {
	a := Synthetic(11, 60)
	b := Synthetic(11, 60)
	assert.Equal(t, a, b)

	require.Len(t, a.Features, 60)
	require.Len(t, a.Sectors, 60)
	assert.Equal(t, "2005-01-07", a.Features[0].Date)
	assert.Equal(t, "2005-01-14", a.Features[1].Date)
	assert.Len(t, a.Features[0].Features, len(model.FeatureNames()))
	assert.Len(t, a.Sectors[0].Returns, len(model.SectorTickers))

	limit := 60 * len(model.SectorTickers) * syntheticStocksPerSector
	assert.LessOrEqual(t, len(a.Stocks), limit)
	assert.Greater(t, len(a.Stocks), limit*9/10)

	bundle := a.Bundle()
	assert.Len(t, bundle.Regimes, 60)
	assert.Len(t, bundle.Features, 60)
}
