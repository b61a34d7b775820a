package model

// BacktestInputs is the canonical set of tables the backtest consumes.
// All three are read-only once loaded.
type BacktestInputs struct {
	Regimes []RegimePoint
	Sectors []SectorReturnRow
	Stocks  []StockReturnRow
}
