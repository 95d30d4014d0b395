package api

import (
	"github.com/brewops/schemasync/internal/api/handler"
	"github.com/brewops/schemasync/internal/api/middleware"
	"github.com/brewops/schemasync/internal/config"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/brewops/schemasync/internal/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	runService *service.RunService,
	fetchService *service.FetchService,
	runs *repository.RunRepository,
	pages *repository.PageRepository,
	settings *repository.SettingsRepository,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	runHandler := handler.NewRunHandler(runService, runs)
	pageHandler := handler.NewPageHandler(fetchService, pages)
	settingsHandler := handler.NewSettingsHandler(settings)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Runs
		v1.POST("/runs", runHandler.CreateRun)
		v1.GET("/runs", runHandler.ListRuns)
		v1.GET("/runs/:id", runHandler.GetRun)
		v1.POST("/runs/:id/process", runHandler.ProcessRun)

		// Pages
		v1.GET("/pages", pageHandler.ListPages)
		v1.GET("/pages/stats", pageHandler.PageStats)
		v1.GET("/pages/:id", pageHandler.GetPage)
		v1.POST("/pages/:id/fetch", pageHandler.FetchPage)
		v1.PUT("/pages/:id/status", pageHandler.UpdatePageStatus)

		// Settings
		v1.GET("/settings", settingsHandler.GetSettings)
		v1.PUT("/settings", settingsHandler.UpdateSettings)
	}

	return r
}
