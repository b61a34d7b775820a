package strategy

import (
	"errors"
	"fmt"

	"regime-rotation/internal/model"
)

// ErrNoSectorConfig means the regime has no entry in the sector table.
// The engine records a zero-return week when it sees it.
var ErrNoSectorConfig = errors.New("no sector configuration for regime")

// Context is what a strategy sees for one trade week.
type Context struct {
	Date     string
	RankDate string
	Regime   model.Regime
	Stocks   *model.StockIndex
}

// Candidate is a stock picked for one book. PriorReturn is its RankDate return.
type Candidate struct {
	Ticker      string
	Sector      string
	Side        model.Side
	PriorReturn float64
}

type Strategy interface {
	Name() string
	Select(ctx Context) ([]Candidate, error)
}

// BookProvider is implemented by strategies that trade a configured sector
// book, so the engine can report the sector-level reference return.
type BookProvider interface {
	Book(r model.Regime) (model.SectorBook, bool)
}

// New builds a strategy by name.
func New(name string, table model.RegimeSectorTable, topN int) (Strategy, error) {
	switch name {
	case "", "rotation":
		return NewRotation(table, topN), nil
	case "oracle":
		return NewOracle(table, topN), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
