package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regime-rotation/internal/api/models"
	"regime-rotation/internal/strategy"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct{}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

var topNParam = models.ParameterInfo{
	Name:        "top_n",
	Type:        "int",
	Description: "Stocks taken per configured sector",
	Default:     strategy.DefaultTopN,
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies := []models.StrategyInfo{
		{
			Name:        "rotation",
			Description: "Regime sector rotation. Longs the prior week's best stocks in the regime's long sectors and shorts the worst in its short sectors, half of gross exposure per book.",
			Parameters:  []models.ParameterInfo{topNParam},
		},
		{
			Name:        "oracle",
			Description: "Perfect foresight benchmark. Same books, ranked on the trade week's own returns. An upper bound, not tradable.",
			Parameters:  []models.ParameterInfo{topNParam},
		},
	}
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
