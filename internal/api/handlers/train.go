package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"regime-rotation/internal/api/models"
	"regime-rotation/internal/data"
	"regime-rotation/internal/forest"
	"regime-rotation/internal/metrics"
	"regime-rotation/internal/training"
)

// TrainHandler trains the regime forest. At most one run is active; the
// last successful result is kept for model-driven backtests.
type TrainHandler struct {
	metrics *metrics.Recorder
	params  forest.Params
	seed    int64

	running sync.Mutex

	mu     sync.RWMutex
	latest *training.Result
}

// NewTrainHandler uses params and seed for whatever a request leaves unset.
// Zero params mean forest.DefaultParams.
func NewTrainHandler(m *metrics.Recorder, params forest.Params, seed int64) *TrainHandler {
	if params == (forest.Params{}) {
		params = forest.DefaultParams()
	}
	return &TrainHandler{metrics: m, params: params, seed: seed}
}

// resolve overlays the request's non-zero fields on the configured defaults.
func (h *TrainHandler) resolve(req models.TrainRequest) (forest.Params, int64) {
	p := h.params
	if req.Forest.Trees > 0 {
		p.Trees = req.Forest.Trees
	}
	if req.Forest.MaxDepth > 0 {
		p.MaxDepth = req.Forest.MaxDepth
	}
	if req.Forest.MinSamplesSplit > 0 {
		p.MinSamplesSplit = req.Forest.MinSamplesSplit
	}
	if req.Forest.MinSamplesLeaf > 0 {
		p.MinSamplesLeaf = req.Forest.MinSamplesLeaf
	}
	seed := h.seed
	if req.Seed != 0 {
		seed = req.Seed
	}
	return p, seed
}

// Latest returns the last trained result, or nil.
func (h *TrainHandler) Latest() *training.Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Train handles POST /api/v1/train
func (h *TrainHandler) Train(c *gin.Context) {
	var req models.TrainRequest
	if !bindJSON(c, &req) {
		return
	}
	rows, err := data.ToFeatureRows(req.Features)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}

	if !h.running.TryLock() {
		respondError(c, http.StatusConflict, "TRAINING_IN_PROGRESS", "a training run is already active")
		return
	}
	defer h.running.Unlock()

	params, seed := h.resolve(req)
	res, err := training.LabelAndTrain(rows, training.Options{Params: params, Seed: seed})
	if err != nil {
		h.metrics.RecordTrainingError()
		log.Warn().Err(err).Int("rows", len(rows)).Msg("training failed")
		respondRunError(c, err)
		return
	}
	h.metrics.RecordTraining(res.Duration, res.TrainAccuracy, res.TestAccuracy)

	h.mu.Lock()
	h.latest = res
	h.mu.Unlock()

	resp := models.TrainResponse{
		Seed: res.Seed,
		Forest: models.ForestParams{
			Trees:           params.Trees,
			MaxDepth:        params.MaxDepth,
			MinSamplesSplit: params.MinSamplesSplit,
			MinSamplesLeaf:  params.MinSamplesLeaf,
		},
		TrainRows:         res.TrainRows,
		TestRows:          res.TestRows,
		TrainAccuracy:     res.TrainAccuracy,
		TestAccuracy:      res.TestAccuracy,
		RegimeAccuracy:    res.RegimeAccuracy,
		FeatureImportance: res.FeatureImportance,
		DurationMS:        res.Duration.Milliseconds(),
	}
	if req.IncludePredictions {
		resp.TestPredictions = res.TestPredictions
	}
	c.JSON(http.StatusOK, resp)
}
