package forest

import (
	"sort"

	"regime-rotation/internal/model"
)

// FeatureImportance is a feature's share of depth-weighted split counts, in percent.
type FeatureImportance struct {
	Feature  string         `json:"feature"`
	Category model.Category `json:"category,omitempty"`
	Percent  float64        `json:"percent"`
}

// Importance credits each internal node's feature with 1/(depth+1) and
// normalizes to percentages. Every forest feature is listed once, sorted by
// descending share. With no internal nodes all shares are 0.
func (f *Forest) Importance() []FeatureImportance {
	acc := make(map[string]float64, len(f.Features))
	for _, name := range f.Features {
		acc[name] = 0
	}
	for _, t := range f.Trees {
		accumulate(t, 0, acc)
	}

	total := 0.0
	for _, v := range acc {
		total += v
	}

	out := make([]FeatureImportance, 0, len(acc))
	for name, v := range acc {
		pct := 0.0
		if total > 0 {
			pct = v / total * 100
		}
		cat, _ := model.CategoryOf(name)
		out = append(out, FeatureImportance{Feature: name, Category: cat, Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

func accumulate(n *Node, depth int, acc map[string]float64) {
	if n == nil || n.Leaf {
		return
	}
	acc[n.Feature] += 1 / float64(depth+1)
	accumulate(n.Left, depth+1, acc)
	accumulate(n.Right, depth+1, acc)
}
