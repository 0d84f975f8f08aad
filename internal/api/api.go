// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/demandcast/internal/api/handlers"
	"github.com/andresuchdata/demandcast/internal/api/middleware"
	"github.com/andresuchdata/demandcast/internal/service"
)

func NewRouter(forecastService *service.ForecastService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if forecastService != nil {
		datasetHandler := handlers.NewDatasetHandler(forecastService)
		forecastHandler := handlers.NewForecastHandler(forecastService)

		datasetGroup := apiGroup.Group("/datasets")
		{
			datasetGroup.POST("", datasetHandler.Upload)
			datasetGroup.GET("", datasetHandler.List)
			datasetGroup.GET("/:id", datasetHandler.Get)
			datasetGroup.GET("/:id/columns", datasetHandler.Columns)
			datasetGroup.DELETE("/:id", datasetHandler.Delete)

			datasetGroup.GET("/:id/forecast", forecastHandler.GetForecast)
			datasetGroup.GET("/:id/forecast/download", forecastHandler.Download)
			datasetGroup.GET("/:id/alerts", forecastHandler.GetAlerts)
			datasetGroup.GET("/:id/aggregate", forecastHandler.GetAggregate)
			datasetGroup.GET("/:id/summary", forecastHandler.GetSummary)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
