package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandcast/internal/domain"
)

func aggregatesFromSeries(product string, series []float64) []domain.PeriodAggregate {
	aggs := make([]domain.PeriodAggregate, 0, len(series))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, demand := range series {
		periodStart := start.AddDate(0, i, 0)
		aggs = append(aggs, domain.PeriodAggregate{
			Product:     product,
			Period:      periodStart.Format("2006-01"),
			PeriodStart: periodStart,
			Demand:      demand,
			Rows:        1,
		})
	}
	return aggs
}

func TestGrowthRate(t *testing.T) {
	// 100 -> 110 -> 121 is steady 10% growth
	assert.InDelta(t, 0.10, GrowthRate([]float64{100, 110, 121}), 1e-9)

	// changes with a zero denominator are discarded, not averaged as Inf
	assert.InDelta(t, -1.0, GrowthRate([]float64{50, 0, 60}), 1e-9)

	// an all-zero series has no finite changes and defaults to 0
	assert.Equal(t, 0.0, GrowthRate([]float64{0, 0, 0}))

	// too short to compute any change
	assert.Equal(t, 0.0, GrowthRate([]float64{42}))
	assert.Equal(t, 0.0, GrowthRate(nil))
}

func TestGrowthForecastCompounds(t *testing.T) {
	f := &GrowthForecaster{}

	results, skipped, err := f.Forecast(aggregatesFromSeries("P1", []float64{100, 110, 121}), 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, skipped)

	// 121 * 1.1^2 = 146.41
	assert.Equal(t, "P1", results[0].Product)
	assert.Equal(t, 121.0, results[0].LastValue)
	assert.InDelta(t, 146.41, results[0].Forecast, 1e-9)
	require.NotNil(t, results[0].GrowthRate)
	assert.InDelta(t, 0.10, *results[0].GrowthRate, 1e-9)
}

func TestGrowthForecastZeroDenominator(t *testing.T) {
	f := &GrowthForecaster{}

	// mean growth is -1.0, so the forecast collapses to 0 for any H >= 1
	results, _, err := f.Forecast(aggregatesFromSeries("P1", []float64{50, 0, 60}), 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Forecast)
}

func TestGrowthForecastZeroSeries(t *testing.T) {
	f := &GrowthForecaster{}

	results, _, err := f.Forecast(aggregatesFromSeries("P1", []float64{0, 0, 0}), 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].GrowthRate)
	assert.Equal(t, 0.0, *results[0].GrowthRate)
	assert.Equal(t, 0.0, results[0].Forecast)
}

func TestGrowthForecastZeroHorizonIdentity(t *testing.T) {
	f := &GrowthForecaster{}

	results, _, err := f.Forecast(aggregatesFromSeries("P1", []float64{80, 120}), 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 120.0, results[0].Forecast)
}

func TestGrowthForecastSkipsShortSeries(t *testing.T) {
	f := &GrowthForecaster{}

	aggs := aggregatesFromSeries("LONG", []float64{10, 12, 15})
	aggs = append(aggs, aggregatesFromSeries("SHORT", []float64{99})...)

	results, skipped, err := f.Forecast(aggs, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "LONG", results[0].Product)
	assert.Equal(t, []string{"SHORT"}, skipped)
}

func TestGrowthForecastNeverNegative(t *testing.T) {
	f := &GrowthForecaster{}

	// strongly declining series: growth below -100% must still floor at 0
	for horizon := 0; horizon <= 5; horizon++ {
		results, _, err := f.Forecast(aggregatesFromSeries("P1", []float64{100, 10, 1}), horizon)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.GreaterOrEqual(t, results[0].Forecast, 0.0, "horizon %d", horizon)
	}
}

func TestGrowthForecastRejectsNegativeHorizon(t *testing.T) {
	f := &GrowthForecaster{}

	_, _, err := f.Forecast(aggregatesFromSeries("P1", []float64{1, 2}), -1)
	assert.Error(t, err)
}

func TestNewForecaster(t *testing.T) {
	f, err := NewForecaster(domain.StrategyGrowth)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyGrowth, f.Name())

	f, err = NewForecaster(domain.StrategyRegression)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyRegression, f.Name())

	_, err = NewForecaster("arima")
	assert.Error(t, err)
}
