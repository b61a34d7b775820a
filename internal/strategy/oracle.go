package strategy

import (
	"fmt"

	"regime-rotation/internal/model"
)

// OracleStrategy is a perfect-foresight benchmark. It trades the same sector
// books as RotationStrategy but ranks constituents by their trade-week return
// instead of the prior week's. Useful as an upper bound when comparing runs;
// it is not tradable.
type OracleStrategy struct {
	Table model.RegimeSectorTable
	TopN  int
}

func NewOracle(table model.RegimeSectorTable, topN int) *OracleStrategy {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &OracleStrategy{Table: table, TopN: topN}
}

func (s *OracleStrategy) Name() string { return "oracle" }

func (s *OracleStrategy) Book(r model.Regime) (model.SectorBook, bool) {
	return s.Table.Lookup(r)
}

func (s *OracleStrategy) Select(ctx Context) ([]Candidate, error) {
	book, ok := s.Table.Lookup(ctx.Regime)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSectorConfig, ctx.Regime)
	}
	n := s.TopN
	if n <= 0 {
		n = DefaultTopN
	}

	var out []Candidate
	pick := func(sectors []string, side model.Side) {
		for _, sec := range sectors {
			rows := ctx.Stocks.Constituents(ctx.Date, sec)
			start := len(out)
			out = appendRanked(out, rows, n, side, priorScore)
			// Report the prior-week return, not the one used to rank.
			for i := start; i < len(out); i++ {
				out[i].PriorReturn, _ = ctx.Stocks.Return(ctx.RankDate, out[i].Ticker)
			}
		}
	}
	pick(book.Long, model.SideLong)
	pick(book.Short, model.SideShort)
	return out, nil
}
