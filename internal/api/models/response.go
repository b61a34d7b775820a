package models

import (
	"regime-rotation/internal/analysis"
	"regime-rotation/internal/backtest"
	"regime-rotation/internal/forest"
	"regime-rotation/internal/model"
	"regime-rotation/internal/training"
)

// LabeledRow is one labeled feature row
type LabeledRow struct {
	Date   string       `json:"date"`
	Regime model.Regime `json:"regime"`
	Name   string       `json:"name"`
	Rule   string       `json:"rule,omitempty"`
}

type LabelResponse struct {
	Labels []LabeledRow   `json:"labels"`
	Counts map[string]int `json:"counts"`
}

type TrainResponse struct {
	Seed              int64                      `json:"seed"`
	Forest            ForestParams               `json:"forest"`
	TrainRows         int                        `json:"train_rows"`
	TestRows          int                        `json:"test_rows"`
	TrainAccuracy     float64                    `json:"train_accuracy"`
	TestAccuracy      float64                    `json:"test_accuracy"`
	RegimeAccuracy    []training.RegimeAccuracy  `json:"regime_accuracy"`
	FeatureImportance []forest.FeatureImportance `json:"feature_importance"`
	TestPredictions   []training.Prediction      `json:"test_predictions,omitempty"`
	DurationMS        int64                      `json:"duration_ms"`
}

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID       string          `json:"id,omitempty"`
	Status   string          `json:"status"`
	Strategy string          `json:"strategy"`
	Summary  BacktestSummary `json:"summary"`

	Curve  []backtest.EquityPoint `json:"curve"`
	Trades []backtest.TradeRecord `json:"trades,omitempty"`
}

// BacktestSummary contains aggregated backtest results
type BacktestSummary struct {
	Stats           backtest.Stats               `json:"stats"`
	Window          DateWindow                   `json:"window"`
	Yearly          []backtest.YearlyReturn      `json:"yearly"`
	ByRegime        []analysis.RegimePerformance `json:"by_regime"`
	SkippedWeeks    map[string]int               `json:"skipped_weeks"`
	TopContributors []analysis.Contributor       `json:"top_contributors,omitempty"`
}

// DateWindow is the first and last simulated trade date
type DateWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RunInfo lists a stored run
type RunInfo struct {
	ID          string  `json:"id"`
	Strategy    string  `json:"strategy"`
	CreatedAt   string  `json:"created_at"`
	ExpiresAt   string  `json:"expires_at"`
	Weeks       int     `json:"weeks"`
	FinalEquity float64 `json:"final_equity"`
}

// RegimeInfo is regime metadata plus its configured sector book
type RegimeInfo struct {
	model.RegimeInfo
	Configured bool     `json:"configured"`
	Long       []string `json:"long"`
	Short      []string `json:"short"`
}

// FeatureInfo describes one model feature
type FeatureInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "string"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Code    string                 `json:"code"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
