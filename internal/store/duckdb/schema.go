package duckdb

import (
	"context"
	"fmt"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS backtest_runs (
    run_id VARCHAR PRIMARY KEY,
    strategy VARCHAR NOT NULL,
    created_at TIMESTAMP NOT NULL,
    weeks INTEGER NOT NULL,
    initial_equity DOUBLE NOT NULL,
    final_equity DOUBLE NOT NULL,
    total_return DOUBLE,
    cagr DOUBLE,
    annual_vol DOUBLE,
    sharpe DOUBLE,
    max_drawdown DOUBLE,
    win_rate DOUBLE
);
`

const createEquityTable = `
CREATE TABLE IF NOT EXISTS equity_points (
    run_id VARCHAR NOT NULL,
    trade_date VARCHAR NOT NULL,
    regime INTEGER NOT NULL,
    ret DOUBLE NOT NULL,
    equity DOUBLE NOT NULL,
    skipped VARCHAR,
    PRIMARY KEY (run_id, trade_date)
);
`

const createPositionsTable = `
CREATE TABLE IF NOT EXISTS positions (
    run_id VARCHAR NOT NULL,
    trade_date VARCHAR NOT NULL,
    ticker VARCHAR NOT NULL,
    sector VARCHAR NOT NULL,
    side VARCHAR NOT NULL,
    prior_ret DOUBLE,
    ret DOUBLE NOT NULL,
    weight DOUBLE NOT NULL,
    pnl DOUBLE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_run ON positions(run_id, trade_date);
`

func (c *Client) initSchema(ctx context.Context) error {
	for _, stmt := range []string{createRunsTable, createEquityTable, createPositionsTable} {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
