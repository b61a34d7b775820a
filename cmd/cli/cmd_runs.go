package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"regime-rotation/internal/store/duckdb"
)

func newRunsCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)
	openRepo := func(cmd *cobra.Command) (*duckdb.Client, *duckdb.RunRepo, error) {
		path := orDefault(dbPath, cfg.Store.DuckDBPath)
		if path == "" {
			return nil, nil, fmt.Errorf("no database: pass --duckdb or set store.duckdb_path")
		}
		client, err := duckdb.Open(cmd.Context(), path)
		if err != nil {
			return nil, nil, err
		}
		return client, duckdb.NewRunRepo(client), nil
	}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List backtest runs persisted to DuckDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-36s %-9s %-20s %6s %10s %8s\n", "id", "strategy", "created", "weeks", "cagr%", "sharpe")
			for _, r := range runs {
				fmt.Fprintf(w, "%-36s %-9s %-20s %6d %10.2f %8.2f\n",
					r.ID, r.Strategy, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Stats.Weeks, 100*r.Stats.CAGR, r.Stats.Sharpe)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run's stats and top tickers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			run, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			curve, err := repo.Equity(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			tickers, err := repo.TopTickers(cmd.Context(), run.ID, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := run.Stats
			fmt.Fprintf(w, "id=%s strategy=%s weeks=%d final_equity=%.4f\n", run.ID, run.Strategy, s.Weeks, s.FinalEquity)
			fmt.Fprintf(w, "cagr=%.2f%% sharpe=%.2f max_dd=%.2f%% win_rate=%.1f%%\n", 100*s.CAGR, s.Sharpe, 100*s.MaxDrawdown, 100*s.WinRate)
			if n := len(curve); n > 0 {
				fmt.Fprintf(w, "window=%s..%s\n", curve[0].Date, curve[n-1].Date)
			}
			fmt.Fprintf(w, "\n%-8s %10s\n", "ticker", "pnl")
			for _, t := range tickers {
				fmt.Fprintf(w, "%-8s %10.4f\n", t.Ticker, t.PnL)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "duckdb", "", "DuckDB file (defaults to store.duckdb_path)")
	cmd.PersistentFlags().IntVar(&limit, "limit", 20, "Maximum rows")
	cmd.AddCommand(showCmd)
	return cmd
}
