package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"regime-rotation/internal/backtest"
	"regime-rotation/internal/store"
)

var ErrRunNotFound = errors.New("run not found")

var _ store.Persister = (*RunRepo)(nil)

// RunSummary is the stored headline of one run.
type RunSummary struct {
	ID            string         `json:"id"`
	Strategy      string         `json:"strategy"`
	CreatedAt     time.Time      `json:"created_at"`
	InitialEquity float64        `json:"initial_equity"`
	Stats         backtest.Stats `json:"stats"`
}

// RunRepo handles backtest run persistence
type RunRepo struct {
	client *Client
}

func NewRunRepo(client *Client) *RunRepo {
	return &RunRepo{client: client}
}

// Save writes the run headline, its equity curve and every position in one
// transaction.
func (r *RunRepo) Save(ctx context.Context, id string, createdAt time.Time, res *backtest.Result) error {
	tx, err := r.client.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := res.Stats
	_, err = tx.ExecContext(ctx, `
		INSERT INTO backtest_runs (
			run_id, strategy, created_at, weeks, initial_equity, final_equity,
			total_return, cagr, annual_vol, sharpe, max_drawdown, win_rate
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, res.Strategy, createdAt.UTC(), s.Weeks, res.InitialEquity, s.FinalEquity,
		s.TotalReturn, s.CAGR, s.AnnualVol, s.Sharpe, s.MaxDrawdown, s.WinRate)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	eq, err := tx.PrepareContext(ctx, `
		INSERT INTO equity_points (run_id, trade_date, regime, ret, equity, skipped)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer eq.Close()

	pos, err := tx.PrepareContext(ctx, `
		INSERT INTO positions (run_id, trade_date, ticker, sector, side, prior_ret, ret, weight, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer pos.Close()

	for _, t := range res.Trades {
		if _, err := eq.ExecContext(ctx, id, t.Date, int(t.Regime), t.Return, t.Equity, t.Skipped); err != nil {
			return fmt.Errorf("failed to insert equity point %s: %w", t.Date, err)
		}
		for _, p := range t.Positions() {
			_, err := pos.ExecContext(ctx, id, t.Date, p.Ticker, p.Sector, string(p.Side), p.PriorReturn, p.Return, p.Weight, p.PnL)
			if err != nil {
				return fmt.Errorf("failed to insert position %s/%s: %w", t.Date, p.Ticker, err)
			}
		}
	}

	return tx.Commit()
}

const selectSummary = `
	SELECT run_id, strategy, created_at, weeks, initial_equity, final_equity,
		   total_return, cagr, annual_vol, sharpe, max_drawdown, win_rate
	FROM backtest_runs
`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*RunSummary, error) {
	var s RunSummary
	err := row.Scan(
		&s.ID, &s.Strategy, &s.CreatedAt, &s.Stats.Weeks, &s.InitialEquity, &s.Stats.FinalEquity,
		&s.Stats.TotalReturn, &s.Stats.CAGR, &s.Stats.AnnualVol, &s.Stats.Sharpe, &s.Stats.MaxDrawdown, &s.Stats.WinRate,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RunRepo) Get(ctx context.Context, id string) (*RunSummary, error) {
	s, err := scanSummary(r.client.db.QueryRowContext(ctx, selectSummary+" WHERE run_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return s, nil
}

// List returns the newest runs first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]*RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.client.db.QueryContext(ctx, selectSummary+" ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []*RunSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Equity returns the stored curve of a run in date order.
func (r *RunRepo) Equity(ctx context.Context, id string) ([]backtest.EquityPoint, error) {
	rows, err := r.client.db.QueryContext(ctx, `
		SELECT trade_date, ret, equity
		FROM equity_points
		WHERE run_id = ?
		ORDER BY trade_date
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query equity: %w", err)
	}
	defer rows.Close()

	var out []backtest.EquityPoint
	for rows.Next() {
		var p backtest.EquityPoint
		if err := rows.Scan(&p.Date, &p.Return, &p.Equity); err != nil {
			return nil, fmt.Errorf("failed to scan equity point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type TickerPnL struct {
	Ticker string  `json:"ticker"`
	PnL    float64 `json:"pnl"`
}

// TopTickers sums stored position P&L per ticker for a run, best first.
func (r *RunRepo) TopTickers(ctx context.Context, id string, limit int) ([]TickerPnL, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.client.db.QueryContext(ctx, `
		SELECT ticker, SUM(pnl) AS total
		FROM positions
		WHERE run_id = ?
		GROUP BY ticker
		ORDER BY total DESC, ticker
		LIMIT ?
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var out []TickerPnL
	for rows.Next() {
		var t TickerPnL
		if err := rows.Scan(&t.Ticker, &t.PnL); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
