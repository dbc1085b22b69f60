package api

import (
	"github.com/gin-gonic/gin"

	"github.com/coinbounce/backend/internal/api/handlers"
	"github.com/coinbounce/backend/internal/config"
	"github.com/coinbounce/backend/internal/middleware"
	"github.com/coinbounce/backend/internal/run"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, rm *run.RunManager, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		runs := v1.Group("/runs")
		{
			runs.POST("", handlers.CreateRun(rm))
			runs.GET("", handlers.ListRuns(rm))
			runs.GET("/:id", handlers.GetRun(rm))
			runs.GET("/:id/statistics", handlers.GetRunStatistics(rm))
			runs.PUT("/:id/speed", handlers.SetRunSpeed(rm))
			runs.POST("/:id/pause", handlers.PauseRun(rm))
			runs.POST("/:id/resume", handlers.ResumeRun(rm))
			runs.DELETE("/:id", handlers.DeleteRun(rm))
			runs.GET("/:id/ws", handlers.HandleRunWebSocket(rm))
		}
	}
}
