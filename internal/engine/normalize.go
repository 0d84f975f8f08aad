package engine

import (
	"fmt"

	"github.com/andresuchdata/demandcast/internal/dataset"
	"github.com/andresuchdata/demandcast/internal/domain"
)

// ValidationError reports input that the engine cannot work with at all.
// Row-level problems are dropped and counted instead.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// CleanResult is the output of normalization: usable records plus counts of
// what was repaired or discarded along the way.
type CleanResult struct {
	Records       []domain.SalesRecord
	DroppedRows   int
	CoercedDemand int
}

// Normalize turns a raw table into cleaned sales records using the given
// column mapping. Rows with unparseable dates or no product are dropped and
// counted;
// non-numeric or negative demand values are coerced to zero and counted.
// It returns a ValidationError when the date column never parses or when
// nothing usable remains.
func Normalize(table *dataset.Table, m Mapping) (*CleanResult, error) {
	if m.Date == "" || m.Product == "" || m.Demand == "" {
		return nil, &ValidationError{Reason: "date, product and demand columns must be mapped"}
	}

	dateIdx := table.IndexOf(m.Date)
	productIdx := table.IndexOf(m.Product)
	demandIdx := table.IndexOf(m.Demand)
	if dateIdx < 0 || productIdx < 0 || demandIdx < 0 {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("mapped column not found in header (date=%q product=%q demand=%q)", m.Date, m.Product, m.Demand),
		}
	}

	inventoryIdx := optionalIndex(table, m.Inventory)
	categoryIdx := optionalIndex(table, m.Category)
	regionIdx := optionalIndex(table, m.Region)
	priceIdx := optionalIndex(table, m.Price)

	result := &CleanResult{}
	for _, row := range table.Rows {
		date, ok := dataset.ParseDate(table.Cell(row, dateIdx))
		if !ok {
			result.DroppedRows++
			continue
		}

		product := table.Cell(row, productIdx)
		if product == "" {
			result.DroppedRows++
			continue
		}

		demand, ok := dataset.ParseNumber(table.Cell(row, demandIdx))
		if !ok || demand < 0 {
			demand = 0
			result.CoercedDemand++
		}

		record := domain.SalesRecord{
			Date:    date,
			Product: product,
			Demand:  demand,
		}
		if inventoryIdx >= 0 {
			record.Inventory, _ = dataset.ParseNumber(table.Cell(row, inventoryIdx))
		}
		if categoryIdx >= 0 {
			record.Category = table.Cell(row, categoryIdx)
		}
		if regionIdx >= 0 {
			record.Region = table.Cell(row, regionIdx)
		}
		if priceIdx >= 0 {
			record.Price, _ = dataset.ParseNumber(table.Cell(row, priceIdx))
		}
		result.Records = append(result.Records, record)
	}

	if len(result.Records) == 0 {
		if len(table.Rows) > 0 && result.DroppedRows == len(table.Rows) {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("column %q cannot be interpreted as dates (all %d rows dropped)", m.Date, len(table.Rows)),
			}
		}
		return nil, &ValidationError{Reason: "no usable rows after cleaning"}
	}

	return result, nil
}

func optionalIndex(table *dataset.Table, name string) int {
	if name == "" {
		return -1
	}
	return table.IndexOf(name)
}
