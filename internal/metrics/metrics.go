// Package metrics exposes training and backtest counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the application collectors. A nil *Recorder is a no-op.
type Recorder struct {
	trainDuration  prometheus.Histogram
	trainAccuracy  *prometheus.GaugeVec
	trainRuns      *prometheus.CounterVec
	backtestRuns   *prometheus.CounterVec
	weeks          *prometheus.CounterVec
	finalEquity    *prometheus.GaugeVec
	requestLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		trainDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "regime_train_duration_seconds",
			Help:    "Duration of forest training runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		trainAccuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "regime_train_accuracy",
			Help: "Accuracy of the last training run by partition",
		}, []string{"partition"}),
		trainRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regime_train_runs_total",
			Help: "Training runs by outcome",
		}, []string{"outcome"}),
		backtestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regime_backtest_runs_total",
			Help: "Backtest runs by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		weeks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regime_backtest_weeks_total",
			Help: "Simulated weeks by status (traded or the skip reason)",
		}, []string{"status"}),
		finalEquity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "regime_backtest_final_equity",
			Help: "Final equity of the last backtest per strategy",
		}, []string{"strategy"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regime_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	if reg != nil {
		reg.MustRegister(r.trainDuration, r.trainAccuracy, r.trainRuns, r.backtestRuns, r.weeks, r.finalEquity, r.requestLatency)
	}
	return r
}

// RecordTraining records a finished training run.
func (r *Recorder) RecordTraining(d time.Duration, trainAcc, testAcc float64) {
	if r == nil {
		return
	}
	r.trainDuration.Observe(d.Seconds())
	r.trainAccuracy.WithLabelValues("train").Set(trainAcc)
	r.trainAccuracy.WithLabelValues("test").Set(testAcc)
	r.trainRuns.WithLabelValues("ok").Inc()
}

// RecordTrainingError records a training run that did not produce a model.
func (r *Recorder) RecordTrainingError() {
	if r == nil {
		return
	}
	r.trainRuns.WithLabelValues("error").Inc()
}

// RecordBacktest records a finished run. skipped maps skip reason to week count.
func (r *Recorder) RecordBacktest(strategy string, traded int, skipped map[string]int, finalEquity float64) {
	if r == nil {
		return
	}
	r.backtestRuns.WithLabelValues(strategy, "ok").Inc()
	r.weeks.WithLabelValues("traded").Add(float64(traded))
	for reason, n := range skipped {
		r.weeks.WithLabelValues(reason).Add(float64(n))
	}
	r.finalEquity.WithLabelValues(strategy).Set(finalEquity)
}

func (r *Recorder) RecordBacktestError(strategy string) {
	if r == nil {
		return
	}
	r.backtestRuns.WithLabelValues(strategy, "error").Inc()
}

// RecordRequest records HTTP latency in seconds.
func (r *Recorder) RecordRequest(route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.requestLatency.WithLabelValues(route, status).Observe(seconds)
}
