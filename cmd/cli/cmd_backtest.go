package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"regime-rotation/internal/analysis"
	"regime-rotation/internal/backtest"
	"regime-rotation/internal/data"
	"regime-rotation/internal/model"
	"regime-rotation/internal/regime"
	"regime-rotation/internal/store/duckdb"
	"regime-rotation/internal/strategy"
	"regime-rotation/internal/training"
)

type backtestFlags struct {
	bundle                             string
	features, regimes, sectors, stocks string
	strategy, cutoff                   string
	topN                               int
	useModel                           bool
	seed                               int64
	tradesOut, equityOut               string
	duckdbPath                         string
	top                                int
}

func newBacktestCmd() *cobra.Command {
	var f backtestFlags
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the weekly sector rotation backtest",
		Long: `Runs the weekly long/short rotation over the dates shared by the regime
series, sector returns and stock returns. The regime series is read from
--regimes, or labeled from features. --use-model trains a forest on the
features and trades its held-out predictions from the test period on; earlier
weeks keep their rule labels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.bundle, "bundle", "", "JSON bundle (as served by /api/v1/datasets/synthetic); replaces the CSV inputs")
	fl.StringVar(&f.features, "features", "", "Features CSV (defaults to data.features)")
	fl.StringVar(&f.regimes, "regimes", "", "Regime CSV (date,regime); skips labeling")
	fl.StringVar(&f.sectors, "sectors", "", "Sector returns CSV (defaults to data.sectors)")
	fl.StringVar(&f.stocks, "stocks", "", "Stock returns CSV (defaults to data.stocks)")
	fl.StringVar(&f.strategy, "strategy", "", "rotation or oracle (defaults to strategy.name)")
	fl.StringVar(&f.cutoff, "cutoff", "", "First eligible trade date (defaults to backtest.cutoff)")
	fl.IntVar(&f.topN, "top-n", 0, "Stocks per sector (defaults to backtest.top_n)")
	fl.BoolVar(&f.useModel, "use-model", false, "Trade forest predictions on held-out test weeks instead of rule labels")
	fl.Int64Var(&f.seed, "seed", 0, "Forest seed for --use-model")
	fl.StringVar(&f.tradesOut, "trades-out", "results/trades.csv", "Trade ledger CSV path (empty to skip)")
	fl.StringVar(&f.equityOut, "equity-out", "results/equity.csv", "Equity curve CSV path (empty to skip)")
	fl.StringVar(&f.duckdbPath, "duckdb", "", "Persist the run to this DuckDB file (defaults to store.duckdb_path)")
	fl.IntVar(&f.top, "top", 10, "Contributors to print")
	return cmd
}

func runBacktest(ctx context.Context, w io.Writer, f backtestFlags) error {
	in, err := loadInputs(f)
	if err != nil {
		return err
	}

	params := cfg.Backtest
	if f.cutoff != "" {
		params.Cutoff = f.cutoff
	}
	if f.topN > 0 {
		params.TopN = f.topN
	}
	engine := backtest.New(params)

	table, err := cfg.SectorTable()
	if err != nil {
		return err
	}
	strat, err := strategy.New(orDefault(f.strategy, cfg.Strategy.Name), table, engine.Params().TopN)
	if err != nil {
		return err
	}

	res, err := engine.Run(in, strat)
	if err != nil {
		return err
	}

	if f.tradesOut != "" {
		if err := backtest.WriteTradesCSV(f.tradesOut, res.Trades); err != nil {
			return err
		}
	}
	if f.equityOut != "" {
		if err := backtest.WriteEquityCSV(f.equityOut, res.Curve); err != nil {
			return err
		}
	}

	if path := orDefault(f.duckdbPath, cfg.Store.DuckDBPath); path != "" {
		if err := persist(ctx, path, res); err != nil {
			return err
		}
	}

	printResult(w, res, f.top)
	return nil
}

func loadInputs(f backtestFlags) (model.BacktestInputs, error) {
	if f.bundle != "" {
		b, err := data.LoadBundleJSON(f.bundle)
		if err != nil {
			return model.BacktestInputs{}, fmt.Errorf("load bundle: %w", err)
		}
		in := b.Inputs()
		if len(in.Regimes) == 0 || f.useModel {
			rows, err := b.FeatureRows()
			if err != nil {
				return model.BacktestInputs{}, err
			}
			if in.Regimes, err = classify(rows, f); err != nil {
				return model.BacktestInputs{}, err
			}
		}
		return in, nil
	}

	var in model.BacktestInputs
	var err error
	if f.regimes != "" {
		in.Regimes, err = data.LoadRegimeCSV(f.regimes)
	} else {
		var rows []model.FeatureRow
		if rows, err = featureRows(f.features); err == nil {
			in.Regimes, err = classify(rows, f)
		}
	}
	if err != nil {
		return in, err
	}
	if in.Sectors, err = data.LoadSectorReturnsCSV(orDefault(f.sectors, cfg.Data.Sectors), cfg.Data.SectorDateColumn); err != nil {
		return in, fmt.Errorf("load sectors: %w", err)
	}
	if in.Stocks, err = data.LoadStockReturnsCSV(orDefault(f.stocks, cfg.Data.Stocks)); err != nil {
		return in, fmt.Errorf("load stocks: %w", err)
	}
	return in, nil
}

// classify labels rows with the rules. Under --use-model a freshly trained
// forest replaces the labels on held-out test weeks only.
func classify(rows []model.FeatureRow, f backtestFlags) ([]model.RegimePoint, error) {
	if !f.useModel {
		return regime.Series(rows), nil
	}
	res, err := train(rows, f.seed, 0)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("seed", res.Seed).Float64("test_accuracy", res.TestAccuracy).Msg("classifying with trained forest")
	return training.PredictedSeries(res, rows), nil
}

func persist(ctx context.Context, path string, res *backtest.Result) error {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	client, err := duckdb.Open(ctx, path)
	if err != nil {
		return err
	}
	defer client.Close()

	id := uuid.NewString()
	if err := duckdb.NewRunRepo(client).Save(ctx, id, time.Now().UTC(), res); err != nil {
		return err
	}
	log.Info().Str("run_id", id).Str("path", path).Msg("persisted run")
	return nil
}

func printResult(w io.Writer, res *backtest.Result, top int) {
	s := res.Stats
	fmt.Fprintf(w, "strategy=%s weeks=%d final_equity=%.4f\n", res.Strategy, s.Weeks, res.FinalEquity())
	fmt.Fprintf(w, "total_return=%.2f%% cagr=%.2f%% vol=%.2f%% sharpe=%.2f max_dd=%.2f%% win_rate=%.1f%%\n",
		100*s.TotalReturn, 100*s.CAGR, 100*s.AnnualVol, s.Sharpe, 100*s.MaxDrawdown, 100*s.WinRate)

	fmt.Fprintf(w, "\n%-6s %10s %6s\n", "year", "return%", "weeks")
	for _, y := range res.Yearly {
		fmt.Fprintf(w, "%-6d %10.2f %6d\n", y.Year, 100*y.Return, y.Weeks)
	}

	fmt.Fprintf(w, "\n%-12s %6s %8s %10s %10s %8s\n", "regime", "weeks", "skipped", "mean%", "total%", "win%")
	for _, p := range analysis.ByRegime(res.Trades) {
		fmt.Fprintf(w, "%-12s %6d %8d %10.3f %10.2f %8.1f\n", p.Name, p.Weeks, p.SkippedWeeks, 100*p.Mean, 100*p.Compounded, 100*p.WinRate)
	}

	if top > 0 {
		fmt.Fprintf(w, "\n%-4s %-8s %-6s %6s %6s %10s\n", "rank", "ticker", "sector", "long", "short", "pnl")
		for i, c := range analysis.RankContributors(res.Trades, top) {
			fmt.Fprintf(w, "%-4d %-8s %-6s %6d %6d %10.4f\n", i+1, c.Ticker, c.Sector, c.LongWeeks, c.ShortWeeks, c.PnL)
		}
	}
}
