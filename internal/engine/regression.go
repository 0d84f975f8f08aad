package engine

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// RegressionForecaster fits a single least-squares model across all products
// on lag and rolling-mean features, then predicts demand in-sample for every
// row with complete features. Unlike the growth strategy this is a global
// fit: one model serves every product.
type RegressionForecaster struct {
	// Predictions holds the per-row in-sample predictions of the last
	// Forecast call.
	Predictions []domain.PredictedPoint
}

func (f *RegressionForecaster) Name() domain.Strategy { return domain.StrategyRegression }

// featureRow is one complete (product, period) training row.
type featureRow struct {
	agg      domain.PeriodAggregate
	lag1     float64
	lag3     float64
	rolling3 float64
}

func (f *RegressionForecaster) Forecast(aggregates []domain.PeriodAggregate, horizon int) ([]domain.ForecastResult, []string, error) {
	if horizon < 0 {
		return nil, nil, fmt.Errorf("horizon must be non-negative, got %d", horizon)
	}

	rowsByProduct := groupByProduct(aggregates)

	products := make([]string, 0, len(rowsByProduct))
	for p := range rowsByProduct {
		products = append(products, p)
	}
	sort.Strings(products)

	// Build lag/rolling features per product; the first periods of each
	// product's history have incomplete features and are dropped.
	var complete []featureRow
	hasComplete := make(map[string]bool)
	for _, product := range products {
		rows := rowsByProduct[product]
		for i, agg := range rows {
			if i < 3 {
				continue
			}
			fr := featureRow{
				agg:      agg,
				lag1:     rows[i-1].Demand,
				lag3:     rows[i-3].Demand,
				rolling3: (rows[i].Demand + rows[i-1].Demand + rows[i-2].Demand) / 3,
			}
			complete = append(complete, fr)
			hasComplete[product] = true
		}
	}

	var skipped []string
	for _, product := range products {
		if !hasComplete[product] {
			skipped = append(skipped, product)
		}
	}

	productCodes := encodeLabels(aggregates, func(a domain.PeriodAggregate) string { return a.Product })
	categoryCodes := encodeLabels(aggregates, func(a domain.PeriodAggregate) string { return a.Category })
	regionCodes := encodeLabels(aggregates, func(a domain.PeriodAggregate) string { return a.Region })

	const numFeatures = 9 // intercept + inventory, price, lag1, lag3, rolling3, product, category, region
	if len(complete) < numFeatures {
		return nil, nil, fmt.Errorf("regression needs at least %d complete feature rows, got %d", numFeatures, len(complete))
	}

	X := mat.NewDense(len(complete), numFeatures, nil)
	y := mat.NewVecDense(len(complete), nil)
	for i, fr := range complete {
		X.SetRow(i, []float64{
			1,
			fr.agg.AvgInventory,
			fr.agg.AvgPrice,
			fr.lag1,
			fr.lag3,
			fr.rolling3,
			float64(productCodes[fr.agg.Product]),
			float64(categoryCodes[fr.agg.Category]),
			float64(regionCodes[fr.agg.Region]),
		})
		y.SetVec(i, fr.agg.Demand)
	}

	// Normal equations with a tiny ridge term: uploaded data routinely has
	// constant or collinear feature columns, which would make a plain
	// least-squares solve singular.
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var trace float64
	for i := 0; i < numFeatures; i++ {
		trace += xtx.At(i, i)
	}
	ridge := 1e-6*trace/float64(numFeatures) + 1e-9
	for i := 0; i < numFeatures; i++ {
		xtx.Set(i, i, xtx.At(i, i)+ridge)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, nil, fmt.Errorf("regression fit failed: %w", err)
	}

	f.Predictions = f.Predictions[:0]
	latest := make(map[string]domain.PredictedPoint)
	lastValue := make(map[string]float64)
	for i, fr := range complete {
		var predicted float64
		row := mat.Row(nil, i, X)
		for j, v := range row {
			predicted += v * beta.AtVec(j)
		}
		if predicted < 0 || math.IsNaN(predicted) || math.IsInf(predicted, 0) {
			predicted = 0
		}

		point := domain.PredictedPoint{
			Product:   fr.agg.Product,
			Period:    fr.agg.Period,
			Actual:    fr.agg.Demand,
			Predicted: predicted,
		}
		f.Predictions = append(f.Predictions, point)
		latest[fr.agg.Product] = point
		lastValue[fr.agg.Product] = fr.agg.Demand
	}

	var results []domain.ForecastResult
	for _, product := range products {
		point, ok := latest[product]
		if !ok {
			continue
		}
		results = append(results, domain.ForecastResult{
			Product:   product,
			LastValue: lastValue[product],
			Forecast:  point.Predicted,
			Horizon:   horizon,
		})
	}

	return results, skipped, nil
}

func groupByProduct(aggregates []domain.PeriodAggregate) map[string][]domain.PeriodAggregate {
	grouped := make(map[string][]domain.PeriodAggregate)
	for _, a := range aggregates {
		grouped[a.Product] = append(grouped[a.Product], a)
	}
	return grouped
}

// encodeLabels assigns dense integer codes to the sorted unique values of a
// categorical field.
func encodeLabels(aggregates []domain.PeriodAggregate, value func(domain.PeriodAggregate) string) map[string]int {
	seen := make(map[string]bool)
	var values []string
	for _, a := range aggregates {
		v := value(a)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)

	codes := make(map[string]int, len(values))
	for i, v := range values {
		codes[v] = i
	}
	return codes
}
