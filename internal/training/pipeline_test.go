package training

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-rotation/internal/forest"
	"regime-rotation/internal/model"
	"regime-rotation/internal/regime"
)

func weeklyRows(fromYear, toYear int, rng *rand.Rand) []model.FeatureRow {
	var rows []model.FeatureRow
	for y := fromYear; y <= toYear; y++ {
		for w := 0; w < 52; w++ {
			month := w/5 + 1
			if month > 12 {
				month = 12
			}
			kv := map[string]float64{}
			for _, n := range model.FeatureNames() {
				kv[n] = rng.NormFloat64()
			}
			rows = append(rows, model.FeatureRow{
				Date:     fmt.Sprintf("%04d-%02d-%02d", y, month, w%5*5+1),
				Features: kv,
			})
		}
	}
	return rows
}

func smallOptions(seed int64) Options {
	opts := DefaultOptions()
	opts.Params.Trees = 10
	opts.Seed = seed
	return opts
}

func TestSplitBoundaries(t *testing.T) {
	rows := []model.FeatureRow{
		{Date: "2004-12-31"},
		{Date: "2005-01-01"},
		{Date: "2015-12-31"},
		{Date: "2016-01-01"},
		{Date: "2024-06-30"},
		{Date: "not a date"},
	}
	train, test := Split(rows)
	require.Len(t, train, 2)
	require.Len(t, test, 2)
	assert.Equal(t, "2005-01-01", train[0].Date)
	assert.Equal(t, "2015-12-31", train[1].Date)
	assert.Equal(t, "2016-01-01", test[0].Date)
}

func TestLabelAndTrainRequiresTrainingRows(t *testing.T) {
	rows := weeklyRows(2016, 2017, rand.New(rand.NewSource(1)))
	_, err := LabelAndTrain(rows, smallOptions(1))
	assert.ErrorIs(t, err, ErrInputIncomplete)

	_, err = LabelAndTrain(nil, smallOptions(1))
	assert.ErrorIs(t, err, ErrInputIncomplete)
}

func TestLabelAndTrain(t *testing.T) {
	rows := weeklyRows(2003, 2018, rand.New(rand.NewSource(2)))
	res, err := LabelAndTrain(rows, smallOptions(7))
	require.NoError(t, err)

	assert.Equal(t, 11*52, res.TrainRows)
	assert.Equal(t, 3*52, res.TestRows)
	assert.Equal(t, int64(7), res.Seed)
	require.Len(t, res.Forest.Trees, 10)

	assert.Greater(t, res.TrainAccuracy, 0.4)
	assert.LessOrEqual(t, res.TrainAccuracy, 1.0)

	require.Len(t, res.RegimeAccuracy, model.NumRegimes)
	total, correct := 0, 0
	for i, ra := range res.RegimeAccuracy {
		assert.Equal(t, model.Regime(i), ra.Regime)
		assert.LessOrEqual(t, ra.Correct, ra.Total)
		total += ra.Total
		correct += ra.Correct
	}
	assert.Equal(t, res.TrainRows, total)
	assert.InDelta(t, res.TrainAccuracy, float64(correct)/float64(total), 1e-12)

	require.Len(t, res.TestPredictions, res.TestRows)
	for _, p := range res.TestPredictions {
		assert.InDelta(t, 1.0, p.Probabilities.Sum(), 1e-9)
		assert.Equal(t, p.Probabilities.ArgMax(), p.Predicted)
		assert.GreaterOrEqual(t, p.Date, "2016-01-01")
	}

	require.Len(t, res.FeatureImportance, len(model.FeatureNames()))
	sum := 0.0
	for _, fi := range res.FeatureImportance {
		sum += fi.Percent
	}
	assert.InDelta(t, 100, sum, 1e-6)
}

func TestLabelAndTrainSeeded(t *testing.T) {
	rows := weeklyRows(2010, 2017, rand.New(rand.NewSource(3)))
	a, err := LabelAndTrain(rows, smallOptions(5))
	require.NoError(t, err)
	b, err := LabelAndTrain(rows, smallOptions(5))
	require.NoError(t, err)
	assert.Equal(t, a.TestPredictions, b.TestPredictions)
	assert.Equal(t, a.FeatureImportance, b.FeatureImportance)
}

func TestLabelAndTrainPropagatesParamErrors(t *testing.T) {
	rows := weeklyRows(2010, 2011, rand.New(rand.NewSource(4)))
	opts := Options{Params: forest.Params{Trees: 0}}
	_, err := LabelAndTrain(rows, opts)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInputIncomplete)
}

func TestPredictedSeries(t *testing.T) {
	rows := []model.FeatureRow{{Date: "2015-06-05"}, {Date: "2016-06-03"}}
	res := &Result{TestPredictions: []Prediction{{Date: "2016-06-03", Predicted: model.Stagflation}}}
	series := PredictedSeries(res, rows)
	require.Len(t, series, 2)
	assert.Equal(t, model.Overheating, series[0].Regime, "empty row falls through to overheating")
	assert.Equal(t, model.Stagflation, series[1].Regime)
}

func TestOutOfSampleSeriesKeepsRuleLabelsBeforeTestPeriod(t *testing.T) {
	rows := weeklyRows(2010, 2017, rand.New(rand.NewSource(6)))
	res, err := LabelAndTrain(rows, smallOptions(9))
	require.NoError(t, err)

	labels := regime.Series(rows)
	series := OutOfSampleSeries(res.Forest, rows)
	require.Len(t, series, len(rows))
	for i, p := range series {
		assert.Equal(t, rows[i].Date, p.Date)
		if rows[i].Year() < TestStartYear {
			assert.Equal(t, labels[i].Regime, p.Regime, rows[i].Date)
		} else {
			assert.Equal(t, res.Forest.Classify(rows[i]), p.Regime, rows[i].Date)
		}
	}
}
