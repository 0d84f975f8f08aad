package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandcast/internal/domain"
)

func TestAdviseSimplePolicy(t *testing.T) {
	forecasts := []domain.ForecastResult{
		{Product: "LOW", Forecast: 55},
		{Product: "SAFE", Forecast: 55},
	}
	inventory := map[string]float64{"LOW": 40, "SAFE": 60}

	alerts := Advise(forecasts, nil, inventory, ReorderParams{Policy: domain.PolicySimple})
	require.Len(t, alerts, 2)

	assert.Equal(t, domain.StatusReorder, alerts[0].Status)
	assert.Equal(t, 55.0, alerts[0].ReorderPoint)
	assert.Equal(t, domain.StatusOK, alerts[1].Status)
}

func TestAdviseMonotonicInInventory(t *testing.T) {
	forecasts := []domain.ForecastResult{{Product: "P1", Forecast: 55}}

	previous := domain.StatusReorder
	for inv := 0.0; inv <= 120; inv += 5 {
		alerts := Advise(forecasts, nil, map[string]float64{"P1": inv}, ReorderParams{Policy: domain.PolicySimple})
		require.Len(t, alerts, 1)

		// raising inventory can only move reorder -> ok, never back
		if previous == domain.StatusOK {
			assert.Equal(t, domain.StatusOK, alerts[0].Status, "inventory %.0f", inv)
		}
		previous = alerts[0].Status
	}
	assert.Equal(t, domain.StatusOK, previous)
}

func TestAdviseSafetyStockPolicy(t *testing.T) {
	history := map[string][]float64{"P1": {100, 110, 90, 105, 95}}
	forecasts := []domain.ForecastResult{{Product: "P1", Forecast: 100}}

	params := ReorderParams{Policy: domain.PolicySafetyStock, LeadTime: 7, ServiceLevel: 1.65}
	alerts := Advise(forecasts, history, map[string]float64{"P1": 500}, params)
	require.Len(t, alerts, 1)

	mean := 100.0
	// sample standard deviation of the series
	variance := (0.0 + 100 + 100 + 25 + 25) / 4
	std := math.Sqrt(variance)
	wantSafety := 1.65 * std * math.Sqrt(7)
	wantReorderPoint := mean*7 + wantSafety

	assert.InDelta(t, wantSafety, alerts[0].SafetyStock, 1e-9)
	assert.InDelta(t, wantReorderPoint, alerts[0].ReorderPoint, 1e-9)
	assert.Equal(t, domain.StatusReorder, alerts[0].Status)

	// ample inventory flips to ok
	alerts = Advise(forecasts, history, map[string]float64{"P1": wantReorderPoint + 1}, params)
	assert.Equal(t, domain.StatusOK, alerts[0].Status)
}

func TestAdviseSafetyStockShortSeries(t *testing.T) {
	history := map[string][]float64{"P1": {100}}
	forecasts := []domain.ForecastResult{{Product: "P1", Forecast: 100}}

	params := ReorderParams{Policy: domain.PolicySafetyStock, LeadTime: 7, ServiceLevel: 1.65}
	alerts := Advise(forecasts, history, map[string]float64{"P1": 0}, params)
	require.Len(t, alerts, 1)

	// one data point: no deviation, no safety margin, never NaN
	assert.Equal(t, 0.0, alerts[0].SafetyStock)
	assert.Equal(t, 700.0, alerts[0].ReorderPoint)
	assert.False(t, math.IsNaN(alerts[0].ReorderPoint))
}

func TestAdviseDefaults(t *testing.T) {
	forecasts := []domain.ForecastResult{{Product: "P1", Forecast: 10}}

	// zero-valued params fall back to the documented defaults
	alerts := Advise(forecasts, map[string][]float64{"P1": {10, 10}}, nil, ReorderParams{Policy: domain.PolicySafetyStock})
	require.Len(t, alerts, 1)
	assert.Equal(t, 70.0, alerts[0].ReorderPoint)
}
