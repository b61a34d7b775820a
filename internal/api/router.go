// Package api wires the HTTP surface.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"regime-rotation/internal/api/handlers"
	"regime-rotation/internal/api/middleware"
	"regime-rotation/internal/backtest"
	"regime-rotation/internal/forest"
	"regime-rotation/internal/metrics"
	"regime-rotation/internal/model"
	"regime-rotation/internal/store"
)

// Deps are the shared services behind the router.
type Deps struct {
	Params backtest.Params
	// Forest and Seed are the training defaults; zero Forest means
	// forest.DefaultParams.
	Forest  forest.Params
	Seed    int64
	Table   model.RegimeSectorTable
	Runs    *store.RunStore
	Persist store.Persister // optional
	Metrics *metrics.Recorder
	// Gatherer backs /metrics; nil skips the endpoint.
	Gatherer prometheus.Gatherer
	MaxBody  int64
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(d.Metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())
	router.Use(middleware.BodyLimit(d.MaxBody))

	trainHandler := handlers.NewTrainHandler(d.Metrics, d.Forest, d.Seed)
	backtestHandler := handlers.NewBacktestHandler(handlers.BacktestDeps{
		Params:  d.Params,
		Table:   d.Table,
		Runs:    d.Runs,
		Persist: d.Persist,
		Models:  trainHandler,
		Metrics: d.Metrics,
	})
	regimeHandler := handlers.NewRegimeHandler(d.Table)
	strategyHandler := handlers.NewStrategyHandler()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/regimes", regimeHandler.ListRegimes)
		v1.GET("/features", regimeHandler.ListFeatures)
		v1.GET("/strategies", strategyHandler.ListStrategies)

		v1.POST("/label", regimeHandler.Label)
		v1.POST("/train", trainHandler.Train)

		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.GET("/backtest", backtestHandler.ListRuns)
		v1.GET("/backtest/:id/ledger", backtestHandler.GetLedger)
		v1.GET("/backtest/:id/contributors", backtestHandler.GetContributors)

		v1.GET("/datasets/synthetic", handlers.SyntheticDataset)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
	})
	return router
}
