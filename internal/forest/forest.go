// Package forest implements a bootstrap-aggregated decision-tree classifier
// over regime-labeled feature rows.
package forest

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"regime-rotation/internal/model"
)

var ErrNoRows = errors.New("forest: no training rows")

// Params controls tree growth and ensemble size.
type Params struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// DefaultParams returns 100 trees of depth <= 12, splitting nodes of 15+ rows
// into children of 5+ rows.
func DefaultParams() Params {
	return Params{Trees: 100, MaxDepth: 12, MinSamplesSplit: 15, MinSamplesLeaf: 5}
}

func (p Params) Validate() error {
	if p.Trees < 1 {
		return errors.New("trees must be >= 1")
	}
	if p.MaxDepth < 0 {
		return errors.New("max_depth must be >= 0")
	}
	if p.MinSamplesSplit < 1 {
		return errors.New("min_samples_split must be >= 1")
	}
	if p.MinSamplesLeaf < 1 {
		return errors.New("min_samples_leaf must be >= 1")
	}
	return nil
}

// NewRand returns a generator seeded with seed, or with the clock when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Forest is an ordered collection of independently trained trees.
type Forest struct {
	Trees    []*Node  `json:"trees"`
	Features []string `json:"features"`
}

// Train grows params.Trees trees, each on a bootstrap resample of rows.
func Train(rows []model.FeatureRow, features []string, params Params, rng *rand.Rand) (*Forest, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("forest params: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	if len(features) == 0 {
		return nil, errors.New("forest: no features")
	}
	if rng == nil {
		rng = NewRand(0)
	}

	f := &Forest{
		Trees:    make([]*Node, 0, params.Trees),
		Features: append([]string(nil), features...),
	}
	for i := 0; i < params.Trees; i++ {
		f.Trees = append(f.Trees, TrainTree(Bootstrap(rows, rng), f.Features, params, rng))
	}

	log.Debug().
		Int("trees", len(f.Trees)).
		Int("rows", len(rows)).
		Int("features", len(features)).
		Msg("forest trained")
	return f, nil
}

// Bootstrap draws len(rows) rows with replacement.
func Bootstrap(rows []model.FeatureRow, rng *rand.Rand) []model.FeatureRow {
	out := make([]model.FeatureRow, len(rows))
	for i := range out {
		out[i] = rows[rng.Intn(len(rows))]
	}
	return out
}

// Probabilities is the share of trees voting for each regime.
type Probabilities [model.NumRegimes]float64

// ArgMax returns the most likely regime; ties go to the lowest id.
func (p Probabilities) ArgMax() model.Regime {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return model.Regime(best)
}

func (p Probabilities) Sum() float64 {
	s := 0.0
	for _, v := range p {
		s += v
	}
	return s
}

// Predict tallies one vote per tree and normalizes by the tree count.
// An empty forest returns all zeros.
func (f *Forest) Predict(row model.FeatureRow) Probabilities {
	var votes Counts
	for _, t := range f.Trees {
		if c := t.Predict(row); c.Valid() {
			votes[c]++
		}
	}
	var p Probabilities
	if len(f.Trees) == 0 {
		return p
	}
	for i, v := range votes {
		p[i] = float64(v) / float64(len(f.Trees))
	}
	return p
}

// Classify returns the argmax regime for row.
func (f *Forest) Classify(row model.FeatureRow) model.Regime {
	return f.Predict(row).ArgMax()
}

// Accuracy is the share of rows whose argmax prediction equals their label.
func (f *Forest) Accuracy(rows []model.FeatureRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	hit := 0
	for _, r := range rows {
		if f.Classify(r) == r.Regime {
			hit++
		}
	}
	return float64(hit) / float64(len(rows))
}
