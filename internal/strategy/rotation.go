package strategy

import (
	"fmt"
	"sort"

	"regime-rotation/internal/model"
)

const DefaultTopN = 5

// RotationStrategy trades the sector book of the active regime: for each long
// sector the TopN constituents with the best RankDate return, for each short
// sector the TopN with the worst.
type RotationStrategy struct {
	Table model.RegimeSectorTable
	TopN  int
}

func NewRotation(table model.RegimeSectorTable, topN int) *RotationStrategy {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &RotationStrategy{Table: table, TopN: topN}
}

func (s *RotationStrategy) Name() string { return "rotation" }

func (s *RotationStrategy) Book(r model.Regime) (model.SectorBook, bool) {
	return s.Table.Lookup(r)
}

func (s *RotationStrategy) Select(ctx Context) ([]Candidate, error) {
	book, ok := s.Table.Lookup(ctx.Regime)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSectorConfig, ctx.Regime)
	}
	n := s.TopN
	if n <= 0 {
		n = DefaultTopN
	}

	var out []Candidate
	for _, sec := range book.Long {
		rows := ctx.Stocks.Constituents(ctx.RankDate, sec)
		out = appendRanked(out, rows, n, model.SideLong, priorScore)
	}
	for _, sec := range book.Short {
		rows := ctx.Stocks.Constituents(ctx.RankDate, sec)
		out = appendRanked(out, rows, n, model.SideShort, priorScore)
	}
	return out, nil
}

func priorScore(r model.StockReturnRow) float64 { return r.Return }

// appendRanked adds the n best rows by score for longs, the n worst for
// shorts. Ties break on ticker so the selection is stable.
func appendRanked(out []Candidate, rows []model.StockReturnRow, n int, side model.Side, score func(model.StockReturnRow) float64) []Candidate {
	ranked := append([]model.StockReturnRow(nil), rows...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score(ranked[i]), score(ranked[j])
		if si != sj {
			if side == model.SideShort {
				return si < sj
			}
			return si > sj
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	for _, r := range ranked {
		out = append(out, Candidate{
			Ticker:      r.Ticker,
			Sector:      r.Sector,
			Side:        side,
			PriorReturn: r.Return,
		})
	}
	return out
}
