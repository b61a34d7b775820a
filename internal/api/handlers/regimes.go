package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regime-rotation/internal/api/models"
	"regime-rotation/internal/data"
	"regime-rotation/internal/model"
	"regime-rotation/internal/regime"
)

// RegimeHandler serves regime metadata and rule labeling
type RegimeHandler struct {
	table model.RegimeSectorTable
}

func NewRegimeHandler(table model.RegimeSectorTable) *RegimeHandler {
	return &RegimeHandler{table: table}
}

// ListRegimes handles GET /api/v1/regimes
func (h *RegimeHandler) ListRegimes(c *gin.Context) {
	out := make([]models.RegimeInfo, 0, model.NumRegimes)
	for _, info := range model.Regimes() {
		ri := models.RegimeInfo{RegimeInfo: info, Long: []string{}, Short: []string{}}
		if b, ok := h.table.Lookup(info.ID); ok {
			ri.Configured = true
			ri.Long = append(ri.Long, b.Long...)
			ri.Short = append(ri.Short, b.Short...)
		}
		out = append(out, ri)
	}
	c.JSON(http.StatusOK, gin.H{"regimes": out})
}

// ListFeatures handles GET /api/v1/features
func (h *RegimeHandler) ListFeatures(c *gin.Context) {
	out := make([]models.FeatureInfo, 0, len(model.FeatureNames()))
	for _, cat := range model.FeatureCategories {
		for _, name := range cat.Features {
			out = append(out, models.FeatureInfo{Name: name, Category: string(cat.Category)})
		}
	}
	c.JSON(http.StatusOK, gin.H{"features": out})
}

// Label handles POST /api/v1/label
func (h *RegimeHandler) Label(c *gin.Context) {
	var req models.LabelRequest
	if !bindJSON(c, &req) {
		return
	}
	rows, err := data.ToFeatureRows(req.Features)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}

	resp := models.LabelResponse{
		Labels: make([]models.LabeledRow, 0, len(rows)),
		Counts: make(map[string]int, model.NumRegimes),
	}
	for _, row := range rows {
		rule := regime.Evaluate(regime.InputsFrom(row))
		lr := models.LabeledRow{Date: row.Date, Regime: rule.Regime, Name: rule.Regime.String()}
		if req.Explain {
			lr.Rule = rule.Name
		}
		resp.Labels = append(resp.Labels, lr)
		resp.Counts[lr.Name]++
	}
	c.JSON(http.StatusOK, resp)
}
