package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteTradesCSV writes one row per position, plus one row for every week
// that held nothing so skipped weeks stay visible.
func WriteTradesCSV(path string, trades []TradeRecord) error {
	return writeFile(path, func(w io.Writer) error { return EncodeTradesCSV(w, trades) })
}

func EncodeTradesCSV(out io.Writer, trades []TradeRecord) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"date",
		"rank_date",
		"regime",
		"ticker",
		"sector",
		"side",
		"prior_return",
		"return",
		"weight",
		"pnl",
		"week_return",
		"sector_return",
		"equity",
		"skipped",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		week := []string{
			fmtFloat(t.Return),
			fmtFloat(t.SectorReturn),
			fmtFloat(t.Equity),
			t.Skipped,
		}
		ps := t.Positions()
		if len(ps) == 0 {
			row := append([]string{t.Date, t.RankDate, t.Regime.String(), "", "", "", "", "", "", ""}, week...)
			if err := w.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, p := range ps {
			row := append([]string{
				t.Date,
				t.RankDate,
				t.Regime.String(),
				p.Ticker,
				p.Sector,
				string(p.Side),
				fmtFloat(p.PriorReturn),
				fmtFloat(p.Return),
				fmtFloat(p.Weight),
				fmtFloat(p.PnL),
			}, week...)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func WriteEquityCSV(path string, curve []EquityPoint) error {
	return writeFile(path, func(w io.Writer) error { return EncodeEquityCSV(w, curve) })
}

func EncodeEquityCSV(out io.Writer, curve []EquityPoint) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"date", "return", "equity"}); err != nil {
		return err
	}
	for _, p := range curve {
		if err := w.Write([]string{p.Date, fmtFloat(p.Return), fmtFloat(p.Equity)}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
