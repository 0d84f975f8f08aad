// Package engine implements the demand forecasting and inventory reorder
// computation: normalize an uploaded table, aggregate per (product, period),
// forecast demand with a configurable strategy and flag products that need
// replenishment. Every run is a pure batch over the input; nothing is shared
// between invocations.
package engine

import (
	"fmt"
	"sort"

	"github.com/andresuchdata/demandcast/internal/dataset"
	"github.com/andresuchdata/demandcast/internal/domain"
)

// Params configures one engine run. Mapping must name at least the date,
// product and demand columns of the input table.
type Params struct {
	Mapping      Mapping
	Granularity  domain.Granularity
	Strategy     domain.Strategy
	Policy       domain.ReorderPolicy
	Horizon      int
	LeadTime     int
	ServiceLevel float64
}

// Result is everything one run produces.
type Result struct {
	Aggregates      []domain.PeriodAggregate `json:"aggregates"`
	Forecasts       []domain.ForecastResult  `json:"forecasts"`
	Predictions     []domain.PredictedPoint  `json:"predictions,omitempty"`
	Alerts          []domain.ReorderAlert    `json:"alerts"`
	Summary         domain.Summary           `json:"summary"`
	CategoryDemand  []domain.CategoryDemand  `json:"category_demand,omitempty"`
	SkippedProducts []string                 `json:"skipped_products,omitempty"`
}

// Run executes the full computation over a raw table. Row-level problems are
// absorbed (dropped or coerced, with counts in the summary); only unusable
// input returns an error, and then always a ValidationError or a fit error,
// never a panic.
func Run(table *dataset.Table, params Params) (*Result, error) {
	if params.Horizon < 0 {
		return nil, fmt.Errorf("horizon must be non-negative, got %d", params.Horizon)
	}
	if params.Granularity == "" {
		params.Granularity = domain.GranularityMonthly
	}

	cleaned, err := Normalize(table, params.Mapping)
	if err != nil {
		return nil, err
	}

	aggregates := Aggregate(cleaned.Records, params.Granularity)

	forecaster, err := NewForecaster(params.Strategy)
	if err != nil {
		return nil, err
	}

	forecasts, skipped, err := forecaster.Forecast(aggregates, params.Horizon)
	if err != nil {
		return nil, err
	}

	history := seriesByProduct(aggregates)
	inventory := latestInventoryByProduct(aggregates)
	alerts := Advise(forecasts, history, inventory, ReorderParams{
		Policy:       params.Policy,
		LeadTime:     params.LeadTime,
		ServiceLevel: params.ServiceLevel,
	})

	result := &Result{
		Aggregates:      aggregates,
		Forecasts:       forecasts,
		Alerts:          alerts,
		SkippedProducts: skipped,
		CategoryDemand:  categoryDemand(cleaned.Records),
		Summary:         summarize(cleaned, aggregates, alerts, skipped),
	}
	if rf, ok := forecaster.(*RegressionForecaster); ok {
		result.Predictions = rf.Predictions
	}

	return result, nil
}

func summarize(cleaned *CleanResult, aggregates []domain.PeriodAggregate, alerts []domain.ReorderAlert, skipped []string) domain.Summary {
	products := make(map[string]bool)
	var totalUnits float64
	for _, r := range cleaned.Records {
		products[r.Product] = true
		totalUnits += r.Demand
	}

	var lowStock int
	for _, a := range alerts {
		if a.Status == domain.StatusReorder {
			lowStock++
		}
	}

	var avgDemand float64
	if len(aggregates) > 0 {
		var sum float64
		for _, a := range aggregates {
			sum += a.Demand
		}
		avgDemand = sum / float64(len(aggregates))
	}

	return domain.Summary{
		TotalProducts:   len(products),
		TotalUnitsSold:  int(totalUnits),
		LowStockAlerts:  lowStock,
		AvgPeriodDemand: avgDemand,
		SkippedProducts: len(skipped),
		DroppedRows:     cleaned.DroppedRows,
	}
}

func categoryDemand(records []domain.SalesRecord) []domain.CategoryDemand {
	totals := make(map[string]float64)
	for _, r := range records {
		if r.Category == "" {
			continue
		}
		totals[r.Category] += r.Demand
	}
	if len(totals) == 0 {
		return nil
	}

	breakdown := make([]domain.CategoryDemand, 0, len(totals))
	for name, demand := range totals {
		breakdown = append(breakdown, domain.CategoryDemand{Name: name, Demand: demand})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Demand != breakdown[j].Demand {
			return breakdown[i].Demand > breakdown[j].Demand
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}
