// internal/domain/models.go
package domain

import "time"

// SalesRecord is one cleaned observation from an uploaded dataset.
// Optional fields are zero-valued when the source table has no column for them.
type SalesRecord struct {
	Date      time.Time `json:"date"`
	Product   string    `json:"product"`
	Category  string    `json:"category,omitempty"`
	Region    string    `json:"region,omitempty"`
	Demand    float64   `json:"demand"`
	Inventory float64   `json:"inventory"`
	Price     float64   `json:"price"`
}

// PeriodAggregate is one (product, period) bucket after aggregation.
type PeriodAggregate struct {
	Product      string    `json:"product"`
	Category     string    `json:"category,omitempty"`
	Region       string    `json:"region,omitempty"`
	Period       string    `json:"period"`
	PeriodStart  time.Time `json:"period_start"`
	Demand       float64   `json:"demand"`
	AvgInventory float64   `json:"avg_inventory"`
	AvgPrice     float64   `json:"avg_price"`
	Rows         int       `json:"rows"`
}

// ForecastResult is the per-product output of the forecast engine.
// GrowthRate is nil for strategies that do not estimate one.
type ForecastResult struct {
	Product    string   `json:"product"`
	LastValue  float64  `json:"last_value"`
	Forecast   float64  `json:"forecast"`
	Horizon    int      `json:"horizon"`
	GrowthRate *float64 `json:"growth_rate,omitempty"`
}

// ReorderAlert is the per-product output of the reorder advisor.
// For the simple policy ReorderPoint equals the predicted demand and
// SafetyStock is zero.
type ReorderAlert struct {
	Product      string      `json:"product"`
	Forecast     float64     `json:"forecast"`
	ReorderPoint float64     `json:"reorder_point"`
	SafetyStock  float64     `json:"safety_stock"`
	Inventory    float64     `json:"inventory"`
	Status       StockStatus `json:"status"`
}

// PredictedPoint is an in-sample prediction for one (product, period) row,
// produced by the regression strategy.
type PredictedPoint struct {
	Product   string  `json:"product"`
	Period    string  `json:"period"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

// Summary holds the headline KPIs for a processed dataset.
type Summary struct {
	TotalProducts   int     `json:"total_products"`
	TotalUnitsSold  int     `json:"total_units_sold"`
	LowStockAlerts  int     `json:"low_stock_alerts"`
	AvgPeriodDemand float64 `json:"avg_period_demand"`
	SkippedProducts int     `json:"skipped_products"`
	DroppedRows     int     `json:"dropped_rows"`
}

// CategoryDemand is total demand attributed to one category (or region).
type CategoryDemand struct {
	Name   string  `json:"name"`
	Demand float64 `json:"demand"`
}

// Dataset describes an uploaded file held in memory for the session.
type Dataset struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	UploadedAt time.Time `json:"uploaded_at"`
}
