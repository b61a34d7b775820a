package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordTraining(2*time.Second, 0.9, 0.7)
	r.RecordTrainingError()
	r.RecordBacktest("rotation", 10, map[string]int{"no_candidates": 2}, 1.25)
	r.RecordBacktestError("rotation")
	r.RecordRequest("/health", "200", 0.001)

	assert.Equal(t, 0.9, testutil.ToFloat64(r.trainAccuracy.WithLabelValues("train")))
	assert.Equal(t, 0.7, testutil.ToFloat64(r.trainAccuracy.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.trainRuns.WithLabelValues("error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.weeks.WithLabelValues("traded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.weeks.WithLabelValues("no_candidates")))
	assert.Equal(t, 1.25, testutil.ToFloat64(r.finalEquity.WithLabelValues("rotation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.backtestRuns.WithLabelValues("rotation", "error")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordTraining(time.Second, 1, 1)
		r.RecordTrainingError()
		r.RecordBacktest("x", 1, nil, 1)
		r.RecordBacktestError("x")
		r.RecordRequest("/", "200", 0)
	})
}
