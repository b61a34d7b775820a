package forest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regime-rotation/internal/model"
)

func TestImportanceDepthWeighting(t *testing.T) {
	leaf := &Node{Leaf: true}
	f := &Forest{
		Features: []string{"a", "b", "c"},
		Trees: []*Node{
			{Feature: "a", Left: &Node{Feature: "b", Left: leaf, Right: leaf}, Right: leaf},
			{Feature: "a", Left: leaf, Right: leaf},
		},
	}
	// a: 1 + 1 = 2, b: 1/2, c: 0
	imp := f.Importance()
	require.Len(t, imp, 3)
	assert.Equal(t, "a", imp[0].Feature)
	assert.InDelta(t, 80, imp[0].Percent, 1e-9)
	assert.Equal(t, "b", imp[1].Feature)
	assert.InDelta(t, 20, imp[1].Percent, 1e-9)
	assert.Equal(t, "c", imp[2].Feature)
	assert.Zero(t, imp[2].Percent)
}

func TestImportanceWithoutSplits(t *testing.T) {
	f := &Forest{Features: []string{"a", "b"}, Trees: []*Node{{Leaf: true}}}
	for _, fi := range f.Importance() {
		assert.Zero(t, fi.Percent)
	}
}

func TestImportanceCoversEveryFeature(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	names := model.FeatureNames()
	rows := make([]model.FeatureRow, 300)
	for i := range rows {
		kv := map[string]float64{}
		for _, n := range names {
			kv[n] = rng.NormFloat64()
		}
		rows[i] = labeled(model.Regime(rng.Intn(model.NumRegimes)), kv)
	}
	p := DefaultParams()
	p.Trees = 10
	f, err := Train(rows, names, p, rng)
	require.NoError(t, err)

	imp := f.Importance()
	require.Len(t, imp, len(names))
	seen := map[string]bool{}
	sum := 0.0
	for i, fi := range imp {
		assert.False(t, seen[fi.Feature])
		seen[fi.Feature] = true
		assert.NotEmpty(t, fi.Category)
		sum += fi.Percent
		if i > 0 {
			assert.GreaterOrEqual(t, imp[i-1].Percent, fi.Percent)
		}
	}
	assert.InDelta(t, 100, sum, 1e-6)
}
