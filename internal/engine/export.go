package engine

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// WriteForecastCSV serializes the forecast table as UTF-8 delimited text:
// header row, one row per product, numeric fields as plain integers, no index
// column. The growth rate is included as a percentage string when present.
func WriteForecastCSV(w io.Writer, forecasts []domain.ForecastResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"product", "last_value", "forecast", "growth_rate"}); err != nil {
		return fmt.Errorf("failed to write forecast header: %w", err)
	}

	for _, fc := range forecasts {
		growth := ""
		if fc.GrowthRate != nil {
			growth = fmt.Sprintf("%.1f%%", *fc.GrowthRate*100)
		}
		row := []string{
			fc.Product,
			fmt.Sprintf("%d", int(fc.LastValue)),
			fmt.Sprintf("%d", int(fc.Forecast)),
			growth,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write forecast row for %s: %w", fc.Product, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteAlertsCSV serializes the reorder-alert table in the same format.
func WriteAlertsCSV(w io.Writer, alerts []domain.ReorderAlert) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"product", "reorder_point", "inventory", "status"}); err != nil {
		return fmt.Errorf("failed to write alerts header: %w", err)
	}

	for _, a := range alerts {
		row := []string{
			a.Product,
			fmt.Sprintf("%d", int(a.ReorderPoint)),
			fmt.Sprintf("%d", int(a.Inventory)),
			string(a.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write alert row for %s: %w", a.Product, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
