package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// Reorder defaults: replenishment arrives after 7 periods and the service
// factor 1.65 targets roughly a 95% service level.
const (
	DefaultLeadTime     = 7
	DefaultServiceLevel = 1.65
)

// ReorderParams configures the reorder advisor.
type ReorderParams struct {
	Policy       domain.ReorderPolicy
	LeadTime     int
	ServiceLevel float64
}

func (p ReorderParams) withDefaults() ReorderParams {
	if p.Policy == "" {
		p.Policy = domain.PolicySimple
	}
	if p.LeadTime <= 0 {
		p.LeadTime = DefaultLeadTime
	}
	if p.ServiceLevel <= 0 {
		p.ServiceLevel = DefaultServiceLevel
	}
	return p
}

// Advise produces one reorder alert per forecasted product.
//
// The simple policy flags a shortage when inventory is below the predicted
// demand. The safety-stock policy computes
//
//	safety_stock  = z * std(demand) * sqrt(lead_time)
//	reorder_point = avg(demand) * lead_time + safety_stock
//
// over the product's full historical series and flags a shortage when
// inventory is below the reorder point. A series with fewer than 2 points has
// no defined deviation; its safety stock is 0 rather than NaN.
func Advise(forecasts []domain.ForecastResult, history map[string][]float64, inventory map[string]float64, params ReorderParams) []domain.ReorderAlert {
	params = params.withDefaults()

	alerts := make([]domain.ReorderAlert, 0, len(forecasts))
	for _, fc := range forecasts {
		alert := domain.ReorderAlert{
			Product:   fc.Product,
			Forecast:  fc.Forecast,
			Inventory: inventory[fc.Product],
		}

		switch params.Policy {
		case domain.PolicySafetyStock:
			avg, std := meanStd(history[fc.Product])
			alert.SafetyStock = params.ServiceLevel * std * math.Sqrt(float64(params.LeadTime))
			alert.ReorderPoint = avg*float64(params.LeadTime) + alert.SafetyStock
		default:
			alert.ReorderPoint = fc.Forecast
		}

		if alert.Inventory < alert.ReorderPoint {
			alert.Status = domain.StatusReorder
		} else {
			alert.Status = domain.StatusOK
		}

		alerts = append(alerts, alert)
	}

	return alerts
}

// meanStd returns the mean and sample standard deviation of a series.
// Fewer than 2 points yields a zero deviation.
func meanStd(series []float64) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}
	if len(series) < 2 {
		return series[0], 0
	}
	mean, std := stat.MeanStdDev(series, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}
