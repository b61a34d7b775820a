package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"regime-rotation/internal/analysis"
)

// GetContributors handles GET /api/v1/backtest/:id/contributors
func (h *BacktestHandler) GetContributors(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}

	limit := 10
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_PARAM", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ranked := analysis.RankContributors(run.Result.Trades, limit)
	rankings := make([]gin.H, 0, len(ranked))
	for i, r := range ranked {
		rankings = append(rankings, gin.H{
			"rank":        i + 1,
			"ticker":      r.Ticker,
			"sector":      r.Sector,
			"long_weeks":  r.LongWeeks,
			"short_weeks": r.ShortWeeks,
			"pnl":         r.PnL,
		})
	}
	c.JSON(http.StatusOK, gin.H{"id": run.ID, "rankings": rankings})
}
