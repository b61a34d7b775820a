// Package training labels feature rows, fits the regime forest on the
// fixed training window and scores the held-out period.
package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"regime-rotation/internal/forest"
	"regime-rotation/internal/model"
	"regime-rotation/internal/regime"
)

// ErrInputIncomplete means no row fell inside the training window.
var ErrInputIncomplete = errors.New("no eligible training rows")

// The train/test split is a fixed policy.
const (
	TrainStartYear = 2005
	TrainEndYear   = 2015
	TestStartYear  = 2016
)

type Options struct {
	Params forest.Params
	// Seed drives bootstrap and feature sampling. 0 picks one from the clock;
	// the seed used is reported in Result.Seed.
	Seed int64
	// Features defaults to model.FeatureNames().
	Features []string
}

func DefaultOptions() Options {
	return Options{Params: forest.DefaultParams()}
}

type RegimeAccuracy struct {
	Regime   model.Regime `json:"regime"`
	Name     string       `json:"name"`
	Correct  int          `json:"correct"`
	Total    int          `json:"total"`
	Accuracy float64      `json:"accuracy"`
}

type Prediction struct {
	Date          string               `json:"date"`
	Probabilities forest.Probabilities `json:"probabilities"`
	Predicted     model.Regime         `json:"predicted"`
	Label         model.Regime         `json:"label"`
}

type Result struct {
	Forest *forest.Forest `json:"-"`
	Seed   int64          `json:"seed"`

	TrainRows int `json:"train_rows"`
	TestRows  int `json:"test_rows"`

	TrainAccuracy     float64                    `json:"train_accuracy"`
	TestAccuracy      float64                    `json:"test_accuracy"`
	RegimeAccuracy    []RegimeAccuracy           `json:"regime_accuracy"`
	TestPredictions   []Prediction               `json:"test_predictions"`
	FeatureImportance []forest.FeatureImportance `json:"feature_importance"`

	Duration time.Duration `json:"duration"`
}

// Split partitions rows by calendar year into the training window
// (2005-2015 inclusive) and the test period (2016 on). Earlier rows and rows
// with unparseable dates are dropped.
func Split(rows []model.FeatureRow) (train, test []model.FeatureRow) {
	for _, r := range rows {
		y := r.Year()
		switch {
		case y >= TrainStartYear && y <= TrainEndYear:
			train = append(train, r)
		case y >= TestStartYear:
			test = append(test, r)
		}
	}
	return train, test
}

// LabelAndTrain labels rows, trains the forest on the training window and
// reports training accuracy, per-regime accuracy, test-period probabilities
// and feature importance.
func LabelAndTrain(rows []model.FeatureRow, opts Options) (*Result, error) {
	start := time.Now()

	train, test := Split(regime.LabelAll(rows))
	if len(train) == 0 {
		return nil, fmt.Errorf("%w: %d rows, none in %d-%d", ErrInputIncomplete, len(rows), TrainStartYear, TrainEndYear)
	}

	features := opts.Features
	if len(features) == 0 {
		features = model.FeatureNames()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f, err := forest.Train(train, features, opts.Params, forest.NewRand(seed))
	if err != nil {
		return nil, fmt.Errorf("train forest: %w", err)
	}

	res := &Result{
		Forest:            f,
		Seed:              seed,
		TrainRows:         len(train),
		TestRows:          len(test),
		RegimeAccuracy:    make([]RegimeAccuracy, model.NumRegimes),
		TestPredictions:   make([]Prediction, 0, len(test)),
		FeatureImportance: f.Importance(),
	}

	for i := range res.RegimeAccuracy {
		r := model.Regime(i)
		res.RegimeAccuracy[i] = RegimeAccuracy{Regime: r, Name: r.String()}
	}
	hits := 0
	for _, row := range train {
		ra := &res.RegimeAccuracy[row.Regime]
		ra.Total++
		if f.Classify(row) == row.Regime {
			ra.Correct++
			hits++
		}
	}
	res.TrainAccuracy = float64(hits) / float64(len(train))
	for i := range res.RegimeAccuracy {
		ra := &res.RegimeAccuracy[i]
		if ra.Total > 0 {
			ra.Accuracy = float64(ra.Correct) / float64(ra.Total)
		}
	}

	testHits := 0
	for _, row := range test {
		p := f.Predict(row)
		pred := p.ArgMax()
		if pred == row.Regime {
			testHits++
		}
		res.TestPredictions = append(res.TestPredictions, Prediction{
			Date:          row.Date,
			Probabilities: p,
			Predicted:     pred,
			Label:         row.Regime,
		})
	}
	if len(test) > 0 {
		res.TestAccuracy = float64(testHits) / float64(len(test))
	}
	res.Duration = time.Since(start)

	log.Info().
		Int("train_rows", res.TrainRows).
		Int("test_rows", res.TestRows).
		Float64("train_accuracy", res.TrainAccuracy).
		Float64("test_accuracy", res.TestAccuracy).
		Int64("seed", seed).
		Dur("took", res.Duration).
		Msg("regime forest trained")
	return res, nil
}

// PredictedSeries returns a regime series for rows that uses the forest's
// prediction on test-period dates and the rule label everywhere else.
func PredictedSeries(res *Result, rows []model.FeatureRow) []model.RegimePoint {
	pred := make(map[string]model.Regime, len(res.TestPredictions))
	for _, p := range res.TestPredictions {
		pred[p.Date] = p.Predicted
	}
	series := regime.Series(rows)
	for i := range series {
		if r, ok := pred[series[i].Date]; ok {
			series[i].Regime = r
		}
	}
	return series
}

// OutOfSampleSeries classifies rows dated in the test period with f and
// keeps the rule label on earlier rows, which the forest may have seen.
func OutOfSampleSeries(f *forest.Forest, rows []model.FeatureRow) []model.RegimePoint {
	series := regime.Series(rows)
	for i, r := range rows {
		if r.Year() >= TestStartYear {
			series[i].Regime = f.Classify(r)
		}
	}
	return series
}
