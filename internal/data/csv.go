package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"regime-rotation/internal/model"
)

// ErrColumnNotFound is returned when a required column is absent from the header.
var ErrColumnNotFound = errors.New("column not found")

// LoadFeatureCSV reads one feature row per line. dateColumn names the date
// column ("date" when empty); every other column is read as a feature.
func LoadFeatureCSV(path, dateColumn string) ([]model.FeatureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadFeatureCSV(f, dateColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func ReadFeatureCSV(r io.Reader, dateColumn string) ([]model.FeatureRow, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	di, err := column(header, dateColumn, "date")
	if err != nil {
		return nil, err
	}

	out := make([]model.FeatureRow, 0, len(records))
	for n, rec := range records {
		date, err := model.NormalizeDate(rec[di])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		row := model.FeatureRow{Date: date, Features: make(map[string]float64, len(header)-1)}
		for i, name := range header {
			if i == di {
				continue
			}
			v, ok, err := parseValue(rec[i])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", n+2, name, err)
			}
			if ok {
				row.Features[name] = v
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadSectorReturnsCSV reads the wide sector table: a date column plus one
// column per sector ticker.
func LoadSectorReturnsCSV(path, dateColumn string) ([]model.SectorReturnRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadSectorReturnsCSV(f, dateColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func ReadSectorReturnsCSV(r io.Reader, dateColumn string) ([]model.SectorReturnRow, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	di, err := column(header, dateColumn, "date")
	if err != nil {
		return nil, err
	}

	out := make([]model.SectorReturnRow, 0, len(records))
	for n, rec := range records {
		date, err := model.NormalizeDate(rec[di])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		row := model.SectorReturnRow{Date: date, Returns: make(map[string]float64, len(header)-1)}
		for i, ticker := range header {
			if i == di {
				continue
			}
			v, ok, err := parseValue(rec[i])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", n+2, ticker, err)
			}
			if ok {
				row.Returns[strings.ToUpper(ticker)] = v
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadStockReturnsCSV reads the long stock table with date, ticker, sector and
// return columns. A blank return is kept as NaN so the row reads as missing.
func LoadStockReturnsCSV(path string) ([]model.StockReturnRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadStockReturnsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func ReadStockReturnsCSV(r io.Reader) ([]model.StockReturnRow, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	var idx [4]int
	for i, name := range []string{"date", "ticker", "sector", "return"} {
		if idx[i], err = column(header, name, ""); err != nil {
			return nil, err
		}
	}

	out := make([]model.StockReturnRow, 0, len(records))
	for n, rec := range records {
		date, err := model.NormalizeDate(rec[idx[0]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		v, ok, err := parseValue(rec[idx[3]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		if !ok {
			v = math.NaN()
		}
		out = append(out, model.StockReturnRow{
			Date:   date,
			Ticker: strings.TrimSpace(rec[idx[1]]),
			Sector: strings.ToUpper(strings.TrimSpace(rec[idx[2]])),
			Return: v,
		})
	}
	return out, nil
}

// LoadRegimeCSV reads a date,regime series. Regimes may be ids or names.
func LoadRegimeCSV(path string) ([]model.RegimePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadRegimeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func ReadRegimeCSV(r io.Reader) ([]model.RegimePoint, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	di, err := column(header, "date", "")
	if err != nil {
		return nil, err
	}
	ri, err := column(header, "regime", "")
	if err != nil {
		return nil, err
	}

	out := make([]model.RegimePoint, 0, len(records))
	for n, rec := range records {
		date, err := model.NormalizeDate(rec[di])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		reg, err := model.ParseRegime(rec[ri])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		out = append(out, model.RegimePoint{Date: date, Regime: reg})
	}
	return out, nil
}

// WriteRegimeCSV writes a series in the shape ReadRegimeCSV accepts.
func WriteRegimeCSV(out io.Writer, series []model.RegimePoint) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"date", "regime", "name"}); err != nil {
		return err
	}
	for _, p := range series {
		if err := w.Write([]string{p.Date, strconv.Itoa(int(p.Regime)), p.Regime.String()}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty csv")
		}
		return nil, nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

func column(header []string, name, fallback string) (int, error) {
	if name == "" {
		name = fallback
	}
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// parseValue reads a numeric cell. Blank, NA, null and NaN cells are missing.
func parseValue(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "n/a", "null", "nan", "none":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}
