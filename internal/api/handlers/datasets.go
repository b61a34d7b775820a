package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"regime-rotation/internal/data"
)

const maxSyntheticWeeks = 52 * 50

// SyntheticDataset handles GET /api/v1/datasets/synthetic. It returns a
// generated bundle that can be posted back to /label, /train or /backtest.
func SyntheticDataset(c *gin.Context) {
	seed, err := strconv.ParseInt(c.DefaultQuery("seed", "1"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PARAM", "seed must be an integer")
		return
	}
	weeks, err := strconv.Atoi(c.DefaultQuery("weeks", "1040"))
	if err != nil || weeks < 2 || weeks > maxSyntheticWeeks {
		respondError(c, http.StatusBadRequest, "INVALID_PARAM", "weeks must be an integer between 2 and "+strconv.Itoa(maxSyntheticWeeks))
		return
	}
	c.JSON(http.StatusOK, data.Synthetic(seed, weeks).Bundle())
}
