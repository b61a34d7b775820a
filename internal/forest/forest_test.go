package forest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-rotation/internal/model"
)

func labeled(reg model.Regime, kv map[string]float64) model.FeatureRow {
	return model.FeatureRow{Date: "2010-01-01", Features: kv, Regime: reg, Labeled: true}
}

// separable returns 200 rows where x > 0 is Goldilocks and x <= 0 is Slowdown.
func separable(rng *rand.Rand) []model.FeatureRow {
	rows := make([]model.FeatureRow, 0, 200)
	for i := 0; i < 200; i++ {
		x := float64(i-100) + 0.5
		reg := model.Slowdown
		if x > 0 {
			reg = model.Goldilocks
		}
		rows = append(rows, labeled(reg, map[string]float64{"x": x, "y": rng.NormFloat64()}))
	}
	return rows
}

func TestGini(t *testing.T) {
	assert.Equal(t, 1.0, Gini(nil))
	pure := []model.FeatureRow{labeled(model.Slowdown, nil), labeled(model.Slowdown, nil)}
	assert.Equal(t, 0.0, Gini(pure))
	even := []model.FeatureRow{
		labeled(model.Goldilocks, nil), labeled(model.Slowdown, nil),
		labeled(model.Stagflation, nil), labeled(model.Overheating, nil),
	}
	assert.InDelta(t, 0.75, Gini(even), 1e-12)
	half := []model.FeatureRow{labeled(model.Goldilocks, nil), labeled(model.Overheating, nil)}
	assert.InDelta(t, 0.5, Gini(half), 1e-12)
}

func TestCountsMajorityTiesGoLow(t *testing.T) {
	assert.Equal(t, model.Slowdown, Counts{0, 3, 3, 1}.Majority())
	assert.Equal(t, model.Goldilocks, Counts{}.Majority())
	assert.Equal(t, model.Overheating, Counts{1, 0, 0, 2}.Majority())
}

func TestTrainTreeStopsBelowMinSamples(t *testing.T) {
	rows := make([]model.FeatureRow, 14)
	for i := range rows {
		rows[i] = labeled(model.Stagflation, map[string]float64{"x": float64(i)})
	}
	root := TrainTree(rows, []string{"x"}, DefaultParams(), rand.New(rand.NewSource(1)))
	assert.True(t, root.Leaf)
	assert.Equal(t, model.Stagflation, root.Class)
}

func TestTrainTreeRespectsMaxDepth(t *testing.T) {
	p := DefaultParams()
	p.MaxDepth = 0
	root := TrainTree(separable(rand.New(rand.NewSource(2))), []string{"x"}, p, rand.New(rand.NewSource(1)))
	assert.True(t, root.Leaf)

	p.MaxDepth = 2
	root = TrainTree(separable(rand.New(rand.NewSource(2))), []string{"x"}, p, rand.New(rand.NewSource(1)))
	assert.LessOrEqual(t, root.Depth(), 2)
}

func TestTrainTreeRejectsSmallPartitions(t *testing.T) {
	// Every cut point lands on 0, leaving 3 rows on the right.
	var rows []model.FeatureRow
	for i := 0; i < 12; i++ {
		rows = append(rows, labeled(model.Slowdown, map[string]float64{"x": 0}))
	}
	for i := 0; i < 3; i++ {
		rows = append(rows, labeled(model.Overheating, map[string]float64{"x": 1}))
	}
	root := TrainTree(rows, []string{"x"}, DefaultParams(), rand.New(rand.NewSource(1)))
	require.True(t, root.Leaf)
	assert.Equal(t, model.Slowdown, root.Class)
}

func TestTrainTreeSkipsAllMissingFeature(t *testing.T) {
	rows := make([]model.FeatureRow, 20)
	for i := range rows {
		rows[i] = labeled(model.Regime(i%2), nil)
	}
	root := TrainTree(rows, []string{"x"}, DefaultParams(), rand.New(rand.NewSource(1)))
	assert.True(t, root.Leaf)
	assert.Equal(t, model.Goldilocks, root.Class)
}

func TestTrainTreeSplitsOnSignal(t *testing.T) {
	rows := separable(rand.New(rand.NewSource(3)))
	root := TrainTree(rows, []string{"x"}, DefaultParams(), rand.New(rand.NewSource(1)))
	require.False(t, root.Leaf)
	assert.Equal(t, "x", root.Feature)
	// vals[100] = 0.5, so x = 0.5 is the only row on the wrong side.
	assert.Equal(t, 0.5, root.Threshold)
	miss := 0
	for _, r := range rows {
		if root.Predict(r) != r.Regime {
			miss++
		}
	}
	assert.LessOrEqual(t, miss, 1)
}

func TestPredictMissingFeatureUsesFallback(t *testing.T) {
	n := &Node{
		Feature:   "x",
		Threshold: 0,
		Fallback:  model.Stagflation,
		Left:      &Node{Leaf: true, Class: model.Goldilocks},
		Right:     &Node{Leaf: true, Class: model.Slowdown},
	}
	assert.Equal(t, model.Goldilocks, n.Predict(labeled(0, map[string]float64{"x": 0})))
	assert.Equal(t, model.Slowdown, n.Predict(labeled(0, map[string]float64{"x": 0.1})))
	assert.Equal(t, model.Stagflation, n.Predict(labeled(0, nil)))
}

func TestTrainValidates(t *testing.T) {
	_, err := Train(nil, []string{"x"}, DefaultParams(), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoRows)

	p := DefaultParams()
	p.Trees = 0
	_, err = Train(separable(rand.New(rand.NewSource(1))), []string{"x"}, p, nil)
	assert.Error(t, err)

	_, err = Train(separable(rand.New(rand.NewSource(1))), nil, DefaultParams(), nil)
	assert.Error(t, err)
}

func TestForestSeparableAccuracy(t *testing.T) {
	rows := separable(rand.New(rand.NewSource(4)))
	p := DefaultParams()
	p.Trees = 25
	f, err := Train(rows, []string{"x", "y"}, p, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.Len(t, f.Trees, 25)
	assert.GreaterOrEqual(t, f.Accuracy(rows), 0.95)
}

func TestForestProbabilitiesSumToOne(t *testing.T) {
	rows := separable(rand.New(rand.NewSource(5)))
	probe := append(rows[:10:10], labeled(0, nil), labeled(0, map[string]float64{"y": 3}))
	for _, n := range []int{1, 2, 7} {
		p := DefaultParams()
		p.Trees = n
		f, err := Train(rows, []string{"x", "y"}, p, rand.New(rand.NewSource(int64(n))))
		require.NoError(t, err)
		for _, r := range probe {
			probs := f.Predict(r)
			assert.InDelta(t, 1.0, probs.Sum(), 1e-9)
			assert.Equal(t, probs, f.Predict(r), "prediction is idempotent")
		}
	}
}

func TestForestSeededTrainingIsReproducible(t *testing.T) {
	rows := separable(rand.New(rand.NewSource(6)))
	p := DefaultParams()
	p.Trees = 5
	a, err := Train(rows, []string{"x", "y"}, p, NewRand(99))
	require.NoError(t, err)
	b, err := Train(rows, []string{"x", "y"}, p, NewRand(99))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmptyForestPredictsZeros(t *testing.T) {
	var f Forest
	assert.Equal(t, Probabilities{}, f.Predict(labeled(0, nil)))
	assert.Equal(t, model.Goldilocks, Probabilities{}.ArgMax())
	assert.Equal(t, model.Stagflation, Probabilities{0.2, 0.2, 0.3, 0.3}.ArgMax())
}

func TestBootstrapDrawsWithReplacement(t *testing.T) {
	rows := separable(rand.New(rand.NewSource(7)))
	sample := Bootstrap(rows, rand.New(rand.NewSource(8)))
	require.Len(t, sample, len(rows))
	seen := map[float64]int{}
	for _, r := range sample {
		seen[r.Features["x"]]++
	}
	assert.Less(t, len(seen), len(rows), "some rows repeat")
}
