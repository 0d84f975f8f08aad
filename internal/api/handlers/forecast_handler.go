// internal/api/handlers/forecast_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/engine"
	"github.com/andresuchdata/demandcast/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// parseParams builds engine parameters from query values. Anything left unset
// falls back to the service defaults; column overrides let the client correct
// a bad auto-detection without re-uploading.
func (h *ForecastHandler) parseParams(c *gin.Context) (engine.Params, error) {
	var params engine.Params

	if v := strings.TrimSpace(c.Query("granularity")); v != "" {
		granularity, err := domain.ParseGranularity(v)
		if err != nil {
			return params, err
		}
		params.Granularity = granularity
	}

	if v := strings.TrimSpace(c.Query("strategy")); v != "" {
		strategy, err := domain.ParseStrategy(v)
		if err != nil {
			return params, err
		}
		params.Strategy = strategy
	}

	if v := strings.TrimSpace(c.Query("policy")); v != "" {
		policy, err := domain.ParseReorderPolicy(v)
		if err != nil {
			return params, err
		}
		params.Policy = policy
	}

	if v := c.Query("horizon"); v != "" {
		horizon, err := strconv.Atoi(v)
		if err != nil || horizon < 1 {
			return params, errors.New("horizon must be a positive integer")
		}
		params.Horizon = horizon
	}

	if v := c.Query("lead_time"); v != "" {
		leadTime, err := strconv.Atoi(v)
		if err != nil || leadTime < 1 {
			return params, errors.New("lead_time must be a positive integer")
		}
		params.LeadTime = leadTime
	}

	if v := c.Query("service_level"); v != "" {
		level, err := strconv.ParseFloat(v, 64)
		if err != nil || level <= 0 {
			return params, errors.New("service_level must be a positive number")
		}
		params.ServiceLevel = level
	}

	overrides := map[engine.Role]string{
		engine.RoleDate:      c.Query("date_column"),
		engine.RoleProduct:   c.Query("product_column"),
		engine.RoleDemand:    c.Query("demand_column"),
		engine.RoleInventory: c.Query("inventory_column"),
	}
	hasOverride := false
	for _, v := range overrides {
		if v != "" {
			hasOverride = true
		}
	}
	if hasOverride {
		resolution, err := h.service.Columns(c.Param("id"))
		if err != nil {
			return params, err
		}
		mapping := resolution.Mapping
		if v := overrides[engine.RoleDate]; v != "" {
			mapping.Date = v
		}
		if v := overrides[engine.RoleProduct]; v != "" {
			mapping.Product = v
		}
		if v := overrides[engine.RoleDemand]; v != "" {
			mapping.Demand = v
		}
		if v := overrides[engine.RoleInventory]; v != "" {
			mapping.Inventory = v
		}
		params.Mapping = mapping
	}

	return params, nil
}

func (h *ForecastHandler) run(c *gin.Context) (*engine.Result, bool) {
	params, err := h.parseParams(c)
	if err != nil {
		respondForecastError(c, err)
		return nil, false
	}

	result, err := h.service.RunForecast(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondForecastError(c, err)
		return nil, false
	}

	return result, true
}

// GetForecast returns the per-product forecast table
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forecasts":        result.Forecasts,
		"predictions":      result.Predictions,
		"skipped_products": result.SkippedProducts,
	})
}

// GetAlerts returns the reorder-alert table
func (h *ForecastHandler) GetAlerts(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": result.Alerts})
}

// GetAggregate returns the aggregated (product, period) table
func (h *ForecastHandler) GetAggregate(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"aggregates": result.Aggregates})
}

// GetSummary returns the headline KPIs and category breakdown
func (h *ForecastHandler) GetSummary(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":         result.Summary,
		"category_demand": result.CategoryDemand,
	})
}

// Download streams the forecast table as a CSV attachment
func (h *ForecastHandler) Download(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		respondForecastError(c, err)
		return
	}

	path, err := h.service.ExportForecastCSV(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondForecastError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="forecast.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.File(path)
}

func respondForecastError(c *gin.Context, err error) {
	var validationErr *engine.ValidationError
	switch {
	case errors.Is(err, service.ErrDatasetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error()})
	default:
		log.Error().Err(err).Msg("forecast request failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
