package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"regime-rotation/internal/analysis"
	"regime-rotation/internal/api/models"
	"regime-rotation/internal/backtest"
	"regime-rotation/internal/data"
	"regime-rotation/internal/metrics"
	"regime-rotation/internal/model"
	"regime-rotation/internal/regime"
	"regime-rotation/internal/store"
	"regime-rotation/internal/strategy"
	"regime-rotation/internal/training"
)

// ModelSource provides the most recently trained model, if any.
type ModelSource interface {
	Latest() *training.Result
}

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	params  backtest.Params
	table   model.RegimeSectorTable
	runs    *store.RunStore
	persist store.Persister
	models  ModelSource
	metrics *metrics.Recorder
}

type BacktestDeps struct {
	Params  backtest.Params
	Table   model.RegimeSectorTable
	Runs    *store.RunStore
	Persist store.Persister // optional
	Models  ModelSource     // optional
	Metrics *metrics.Recorder
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(d BacktestDeps) *BacktestHandler {
	return &BacktestHandler{
		params:  d.Params,
		table:   d.Table,
		runs:    d.Runs,
		persist: d.Persist,
		models:  d.Models,
		metrics: d.Metrics,
	}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if !bindJSON(c, &req) {
		return
	}

	regimes := req.Regimes
	if len(regimes) == 0 {
		rows, err := data.ToFeatureRows(req.Features)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
			return
		}
		if req.UseModel {
			var latest *training.Result
			if h.models != nil {
				latest = h.models.Latest()
			}
			if latest == nil {
				respondError(c, http.StatusConflict, "MODEL_NOT_TRAINED", "use_model requires a completed training run")
				return
			}
			regimes = training.OutOfSampleSeries(latest.Forest, rows)
		} else {
			regimes = regime.Series(rows)
		}
	}

	params := h.params
	if req.Cutoff != "" {
		if _, err := model.NormalizeDate(req.Cutoff); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
			return
		}
		params.Cutoff = req.Cutoff
	}
	if req.TopN > 0 {
		params.TopN = req.TopN
	}
	if req.InitialEquity > 0 {
		params.InitialEquity = req.InitialEquity
	}
	engine := backtest.New(params)

	strat, err := strategy.New(req.Strategy, h.table, engine.Params().TopN)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
		return
	}

	inputs := model.BacktestInputs{Regimes: regimes, Sectors: req.Sectors, Stocks: req.Stocks}
	res, err := engine.Run(inputs, strat)
	if err != nil {
		h.metrics.RecordBacktestError(strat.Name())
		respondRunError(c, err)
		return
	}

	run := h.runs.Put(res)
	if h.persist != nil {
		if err := h.persist.Save(c.Request.Context(), run.ID, run.CreatedAt, res); err != nil {
			log.Warn().Err(err).Str("run_id", run.ID).Msg("failed to persist run")
		}
	}

	summary := summarize(res)
	summary.TopContributors = analysis.RankContributors(res.Trades, req.Options.TopContributors)
	h.metrics.RecordBacktest(strat.Name(), len(res.Trades)-skippedTotal(summary.SkippedWeeks), summary.SkippedWeeks, res.FinalEquity())

	log.Info().
		Str("run_id", run.ID).
		Str("strategy", res.Strategy).
		Int("weeks", res.Stats.Weeks).
		Float64("final_equity", res.FinalEquity()).
		Msg("backtest complete")

	resp := models.BacktestResponse{
		ID:       run.ID,
		Status:   "completed",
		Strategy: res.Strategy,
		Summary:  summary,
		Curve:    res.Curve,
	}
	if req.Options.IncludeTrades {
		resp.Trades = res.Trades
	}
	c.JSON(http.StatusOK, resp)
}

// ListRuns handles GET /api/v1/backtest
func (h *BacktestHandler) ListRuns(c *gin.Context) {
	runs := h.runs.List()
	out := make([]models.RunInfo, 0, len(runs))
	for _, r := range runs {
		out = append(out, models.RunInfo{
			ID:          r.ID,
			Strategy:    r.Result.Strategy,
			CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
			ExpiresAt:   r.ExpiresAt.UTC().Format(time.RFC3339),
			Weeks:       r.Result.Stats.Weeks,
			FinalEquity: r.Result.FinalEquity(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

// GetLedger handles GET /api/v1/backtest/:id/ledger. format=csv streams the
// trade ledger as CSV.
func (h *BacktestHandler) GetLedger(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="ledger-`+run.ID+`.csv"`)
		c.Status(http.StatusOK)
		if err := backtest.EncodeTradesCSV(c.Writer, run.Result.Trades); err != nil {
			log.Error().Err(err).Str("run_id", run.ID).Msg("ledger csv write failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     run.ID,
		"trades": run.Result.Trades,
	})
}

func (h *BacktestHandler) lookup(c *gin.Context) (*store.Run, bool) {
	id := c.Param("id")
	run, ok := h.runs.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "RUN_NOT_FOUND", "no live run with id "+id)
		return nil, false
	}
	return run, true
}

func summarize(res *backtest.Result) models.BacktestSummary {
	s := models.BacktestSummary{
		Stats:        res.Stats,
		Yearly:       res.Yearly,
		ByRegime:     analysis.ByRegime(res.Trades),
		SkippedWeeks: map[string]int{},
	}
	if n := len(res.Curve); n > 0 {
		s.Window = models.DateWindow{Start: res.Curve[0].Date, End: res.Curve[n-1].Date}
	}
	for _, t := range res.Trades {
		if t.Skipped != "" {
			s.SkippedWeeks[t.Skipped]++
		}
	}
	return s
}

func skippedTotal(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
