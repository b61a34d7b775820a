package forest

import (
	"math"
	"math/rand"
	"sort"

	"regime-rotation/internal/model"
)

// Node is either a leaf holding Class, or an internal split on Feature.
// Rows with Feature <= Threshold go Left. Fallback is the majority class of
// the rows the node was built from, used when a row lacks Feature.
type Node struct {
	Leaf  bool         `json:"leaf,omitempty"`
	Class model.Regime `json:"class"`

	Feature   string       `json:"feature,omitempty"`
	Threshold float64      `json:"threshold,omitempty"`
	Fallback  model.Regime `json:"fallback"`
	Left      *Node        `json:"left,omitempty"`
	Right     *Node        `json:"right,omitempty"`
}

// Predict routes row to a leaf.
func (n *Node) Predict(row model.FeatureRow) model.Regime {
	for !n.Leaf {
		v, ok := row.Value(n.Feature)
		if !ok {
			return n.Fallback
		}
		if v <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Class
}

// Depth is the length of the longest root-to-leaf path.
func (n *Node) Depth() int {
	if n == nil || n.Leaf {
		return 0
	}
	l, r := n.Left.Depth(), n.Right.Depth()
	if r > l {
		l = r
	}
	return l + 1
}

// cut points, taken by index into the sorted values
var cutQuantiles = [...]float64{0.25, 0.5, 0.75}

type split struct {
	feature   string
	threshold float64
	impurity  float64
}

type treeBuilder struct {
	params   Params
	features []string
	mtry     int
	rng      *rand.Rand
}

// TrainTree grows one tree on rows, drawing ceil(sqrt(len(features)))
// candidate features per node from rng.
func TrainTree(rows []model.FeatureRow, features []string, params Params, rng *rand.Rand) *Node {
	mtry := int(math.Ceil(math.Sqrt(float64(len(features)))))
	if mtry > len(features) {
		mtry = len(features)
	}
	b := &treeBuilder{params: params, features: features, mtry: mtry, rng: rng}
	return b.build(rows, 0)
}

func (b *treeBuilder) build(rows []model.FeatureRow, depth int) *Node {
	majority := countClasses(rows).Majority()
	if depth >= b.params.MaxDepth || len(rows) < b.params.MinSamplesSplit {
		return &Node{Leaf: true, Class: majority, Fallback: majority}
	}

	s, ok := b.bestSplit(rows)
	if !ok {
		return &Node{Leaf: true, Class: majority, Fallback: majority}
	}

	left, right := partition(rows, s.feature, s.threshold)
	if len(left) == 0 || len(right) == 0 {
		return &Node{Leaf: true, Class: majority, Fallback: majority}
	}

	return &Node{
		Class:     majority,
		Feature:   s.feature,
		Threshold: s.threshold,
		Fallback:  majority,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

func (b *treeBuilder) bestSplit(rows []model.FeatureRow) (split, bool) {
	best := split{impurity: math.Inf(1)}
	found := false
	vals := make([]float64, 0, len(rows))

	for _, f := range b.sampleFeatures() {
		vals = vals[:0]
		for _, r := range rows {
			if v, ok := r.Value(f); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)

		for _, q := range cutQuantiles {
			thr := vals[int(q*float64(len(vals)))]
			l, r := splitCounts(rows, f, thr)
			nl, nr := l.Total(), r.Total()
			if nl < b.params.MinSamplesLeaf || nr < b.params.MinSamplesLeaf {
				continue
			}
			imp := (float64(nl)*l.Gini() + float64(nr)*r.Gini()) / float64(nl+nr)
			if imp < best.impurity {
				best = split{feature: f, threshold: thr, impurity: imp}
				found = true
			}
		}
	}
	return best, found
}

// sampleFeatures draws mtry features without replacement.
func (b *treeBuilder) sampleFeatures() []string {
	perm := b.rng.Perm(len(b.features))
	out := make([]string, b.mtry)
	for i := 0; i < b.mtry; i++ {
		out[i] = b.features[perm[i]]
	}
	return out
}

// splitCounts histograms the rows that would go to each side.
// Rows missing the feature land on neither side.
func splitCounts(rows []model.FeatureRow, feature string, thr float64) (left, right Counts) {
	for _, r := range rows {
		v, ok := r.Value(feature)
		if !ok || !r.Regime.Valid() {
			continue
		}
		if v <= thr {
			left[r.Regime]++
		} else {
			right[r.Regime]++
		}
	}
	return left, right
}

func partition(rows []model.FeatureRow, feature string, thr float64) (left, right []model.FeatureRow) {
	for _, r := range rows {
		v, ok := r.Value(feature)
		if !ok {
			continue
		}
		if v <= thr {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}
