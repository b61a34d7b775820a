package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2016-03-04":                "2016-03-04",
		"2016-03-04T10:00:00Z":      "2016-03-04",
		"2016-03-04T23:30:00-05:00": "2016-03-04",
		"2016/03/04":                "2016-03-04",
		"03/04/2016":                "2016-03-04",
		"3/4/2016":                  "2016-03-04",
		" 2016-03-04 ":              "2016-03-04",
		"1457049600":                "2016-03-04",
	}
	for in, want := range cases {
		got, err := NormalizeDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2016-13-40"} {
		_, err := NormalizeDate(in)
		assert.Error(t, err, in)
	}
}

func TestFeatureRowValue(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	row := FeatureRow{Features: map[string]float64{VIX: -1.5, PMI: nan}}

	v, ok := row.Value(VIX)
	assert.True(t, ok)
	assert.Equal(t, -1.5, v)

	_, ok = row.Value(PMI)
	assert.False(t, ok, "NaN is missing")
	_, ok = row.Value(CPIYoY)
	assert.False(t, ok, "absent is missing")
	assert.Zero(t, row.ValueOrZero(CPIYoY))
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	require.Len(t, names, 21)
	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
		_, ok := CategoryOf(n)
		assert.True(t, ok, n)
	}
	assert.Len(t, FeatureCategories, 7)
}
