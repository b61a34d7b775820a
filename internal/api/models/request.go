package models

import (
	"regime-rotation/internal/data"
	"regime-rotation/internal/model"
)

// LabelRequest represents the request body for labeling feature rows
type LabelRequest struct {
	Features []data.FeatureRecord `json:"features" validate:"required,min=1"`
	Explain  bool                 `json:"explain,omitempty"` // include the rule that fired
}

// TrainRequest represents the request body for training the regime forest
type TrainRequest struct {
	Features []data.FeatureRecord `json:"features" validate:"required,min=1"`
	Forest   ForestParams         `json:"forest,omitempty"`
	Seed     int64                `json:"seed,omitempty"` // 0 = configured seed, then the clock

	IncludePredictions bool `json:"include_predictions,omitempty"`
}

// ForestParams mirrors the forest section of the server config. Zero fields
// take the configured value.
type ForestParams struct {
	Trees           int `json:"trees,omitempty" validate:"omitempty,gte=1,lte=1000"`
	MaxDepth        int `json:"max_depth,omitempty" validate:"omitempty,gte=1,lte=32"`
	MinSamplesSplit int `json:"min_samples_split,omitempty" validate:"omitempty,gte=2"`
	MinSamplesLeaf  int `json:"min_samples_leaf,omitempty" validate:"omitempty,gte=1"`
}

// BacktestRequest represents the request body for running a backtest.
// The regime series comes from Regimes when given, otherwise Features are
// labeled (or, with use_model, classified by the last trained forest).
type BacktestRequest struct {
	Regimes  []model.RegimePoint     `json:"regimes,omitempty" validate:"required_without=Features"`
	Features []data.FeatureRecord    `json:"features,omitempty" validate:"required_without=Regimes"`
	Sectors  []model.SectorReturnRow `json:"sectors" validate:"required,min=2"`
	Stocks   []model.StockReturnRow  `json:"stocks" validate:"required,min=2"`

	Strategy      string  `json:"strategy,omitempty" default:"rotation" validate:"oneof=rotation oracle"`
	Cutoff        string  `json:"cutoff,omitempty"`
	TopN          int     `json:"top_n,omitempty" validate:"gte=0,lte=50"`
	InitialEquity float64 `json:"initial_equity,omitempty" validate:"gte=0"`
	UseModel      bool    `json:"use_model,omitempty"`

	Options BacktestOptions `json:"options,omitempty"`
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	IncludeTrades   bool `json:"include_trades,omitempty"` // default: false
	TopContributors int  `json:"top_contributors" default:"10" validate:"gte=0,lte=500"`
}
