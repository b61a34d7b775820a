package forest

import "regime-rotation/internal/model"

// Counts is a class histogram over the fixed regime set.
type Counts [model.NumRegimes]int

func countClasses(rows []model.FeatureRow) Counts {
	var c Counts
	for _, r := range rows {
		if r.Regime.Valid() {
			c[r.Regime]++
		}
	}
	return c
}

// Total is the number of rows counted.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Majority returns the most frequent class. Ties go to the lowest id.
func (c Counts) Majority() model.Regime {
	best := 0
	for i := 1; i < len(c); i++ {
		if c[i] > c[best] {
			best = i
		}
	}
	return model.Regime(best)
}

// Gini is 1 - sum(share^2). An empty histogram scores 1.
func (c Counts) Gini() float64 {
	n := c.Total()
	if n == 0 {
		return 1
	}
	g := 1.0
	for _, v := range c {
		p := float64(v) / float64(n)
		g -= p * p
	}
	return g
}

// Gini computes the impurity of the regime labels in rows.
func Gini(rows []model.FeatureRow) float64 {
	return countClasses(rows).Gini()
}
