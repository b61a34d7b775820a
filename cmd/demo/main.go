package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"regime-rotation/internal/backtest"
	"regime-rotation/internal/config"
	"regime-rotation/internal/data"
	"regime-rotation/internal/logging"
	"regime-rotation/internal/model"
	"regime-rotation/internal/regime"
	"regime-rotation/internal/strategy"
	"regime-rotation/internal/training"
)

// Demo:
// - Generate a synthetic weekly dataset (features, sector and stock returns)
// - Label it and train the regime forest
// - Run the rotation strategy against the oracle benchmark
func main() {
	seed := flag.Int64("seed", 7, "Seed for the synthetic data and the forest")
	weeks := flag.Int("weeks", 52*18, "Weeks of synthetic data starting 2005-01-07")
	trees := flag.Int("trees", 25, "Trees in the forest")
	useModel := flag.Bool("use-model", false, "Trade on forest classifications instead of rule labels")
	outCSV := flag.String("out", "", "Optional path to write the trade ledger CSV")
	flag.Parse()

	if _, err := logging.Setup(logging.Config{Level: "info", Format: "console"}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ds := data.Synthetic(*seed, *weeks)
	log.Info().Int("weeks", len(ds.Features)).Int("stock_rows", len(ds.Stocks)).Msg("generated synthetic data")

	opts := training.DefaultOptions()
	opts.Params.Trees = *trees
	opts.Seed = *seed
	trained, err := training.LabelAndTrain(ds.Features, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	fmt.Printf("Forest: train_acc=%.3f test_acc=%.3f (train=%d test=%d rows)\n",
		trained.TrainAccuracy, trained.TestAccuracy, trained.TrainRows, trained.TestRows)
	for i, fi := range trained.FeatureImportance {
		if i == 5 {
			break
		}
		fmt.Printf("  %-18s %6.2f%%\n", fi.Feature, fi.Percent)
	}

	series := regime.Series(ds.Features)
	if *useModel {
		series = training.PredictedSeries(trained, ds.Features)
	}

	table, err := config.Default().SectorTable()
	if err != nil {
		log.Fatal().Err(err).Msg("sector table")
	}
	in := model.BacktestInputs{Regimes: series, Sectors: ds.Sectors, Stocks: ds.Stocks}
	engine := backtest.New(backtest.DefaultParams())

	var rotation *backtest.Result
	for _, name := range []string{"rotation", "oracle"} {
		strat, err := strategy.New(name, table, engine.Params().TopN)
		if err != nil {
			log.Fatal().Err(err).Msg("strategy")
		}
		res, err := engine.Run(in, strat)
		if err != nil {
			log.Fatal().Err(err).Str("strategy", name).Msg("backtest failed")
		}
		s := res.Stats
		fmt.Printf("%-9s weeks=%d final=%.4f cagr=%.2f%% sharpe=%.2f max_dd=%.2f%%\n",
			name, s.Weeks, res.FinalEquity(), 100*s.CAGR, s.Sharpe, 100*s.MaxDrawdown)
		if name == "rotation" {
			rotation = res
		}
	}

	if *outCSV != "" {
		if err := backtest.WriteTradesCSV(*outCSV, rotation.Trades); err != nil {
			log.Fatal().Err(err).Msg("write ledger")
		}
		fmt.Printf("Wrote ledger to %s\n", *outCSV)
	}
}
