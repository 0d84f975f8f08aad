package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// Forecaster produces per-product demand forecasts from sorted period
// aggregates. Implementations must never emit negative or non-finite values.
type Forecaster interface {
	Name() domain.Strategy

	// Forecast returns one result per forecastable product plus the list of
	// products that had to be skipped (too little history).
	Forecast(aggregates []domain.PeriodAggregate, horizon int) ([]domain.ForecastResult, []string, error)
}

// NewForecaster returns the forecaster for a strategy.
func NewForecaster(strategy domain.Strategy) (Forecaster, error) {
	switch strategy {
	case domain.StrategyGrowth, "":
		return &GrowthForecaster{}, nil
	case domain.StrategyRegression:
		return &RegressionForecaster{}, nil
	default:
		return nil, fmt.Errorf("unknown forecast strategy %q", strategy)
	}
}

// GrowthForecaster extrapolates each product's last observed demand by its
// mean period-over-period growth rate. It is fully local: no information
// crosses product boundaries.
type GrowthForecaster struct{}

func (f *GrowthForecaster) Name() domain.Strategy { return domain.StrategyGrowth }

func (f *GrowthForecaster) Forecast(aggregates []domain.PeriodAggregate, horizon int) ([]domain.ForecastResult, []string, error) {
	if horizon < 0 {
		return nil, nil, fmt.Errorf("horizon must be non-negative, got %d", horizon)
	}

	series := seriesByProduct(aggregates)

	products := make([]string, 0, len(series))
	for p := range series {
		products = append(products, p)
	}
	sort.Strings(products)

	var results []domain.ForecastResult
	var skipped []string
	for _, product := range products {
		s := series[product]
		if len(s) < 2 {
			// Not enough history to estimate growth; the product is excluded
			// from the forecast table and reported to the caller.
			skipped = append(skipped, product)
			continue
		}

		g := GrowthRate(s)
		last := s[len(s)-1]
		forecast := last * math.Pow(1+g, float64(horizon))
		if forecast < 0 || math.IsNaN(forecast) || math.IsInf(forecast, 0) {
			forecast = 0
		}

		rate := g
		results = append(results, domain.ForecastResult{
			Product:    product,
			LastValue:  last,
			Forecast:   forecast,
			Horizon:    horizon,
			GrowthRate: &rate,
		})
	}

	return results, skipped, nil
}

// GrowthRate computes the mean finite period-over-period percentage change of
// a demand series. Changes with a zero denominator are discarded rather than
// averaged in as infinities. A series with no finite changes yields 0.
func GrowthRate(series []float64) float64 {
	var sum float64
	var count int
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev == 0 {
			continue
		}
		change := (series[i] - prev) / prev
		if math.IsNaN(change) || math.IsInf(change, 0) {
			continue
		}
		sum += change
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
