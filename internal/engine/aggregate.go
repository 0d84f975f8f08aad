package engine

import (
	"sort"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

type bucket struct {
	agg          domain.PeriodAggregate
	sumInventory float64
	sumPrice     float64
}

// Aggregate groups cleaned records into (product, period) buckets. Demand is
// summed; inventory and price are averaged over the rows in the bucket. Rows
// that land in an existing bucket always add to it. The output is sorted by
// product and chronologically within each product.
func Aggregate(records []domain.SalesRecord, granularity domain.Granularity) []domain.PeriodAggregate {
	type key struct {
		product string
		period  string
	}

	buckets := make(map[key]*bucket)
	for _, r := range records {
		period, start := periodOf(r.Date, granularity)
		k := key{product: r.Product, period: period}

		b, ok := buckets[k]
		if !ok {
			b = &bucket{agg: domain.PeriodAggregate{
				Product:     r.Product,
				Category:    r.Category,
				Region:      r.Region,
				Period:      period,
				PeriodStart: start,
			}}
			buckets[k] = b
		}

		b.agg.Demand += r.Demand
		b.agg.Rows++
		b.sumInventory += r.Inventory
		b.sumPrice += r.Price
	}

	aggregates := make([]domain.PeriodAggregate, 0, len(buckets))
	for _, b := range buckets {
		if b.agg.Rows > 0 {
			b.agg.AvgInventory = b.sumInventory / float64(b.agg.Rows)
			b.agg.AvgPrice = b.sumPrice / float64(b.agg.Rows)
		}
		aggregates = append(aggregates, b.agg)
	}

	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].Product != aggregates[j].Product {
			return aggregates[i].Product < aggregates[j].Product
		}
		return aggregates[i].PeriodStart.Before(aggregates[j].PeriodStart)
	})

	return aggregates
}

// periodOf returns the bucket label and its start time for a date.
func periodOf(t time.Time, granularity domain.Granularity) (string, time.Time) {
	if granularity == domain.GranularityYearly {
		start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006"), start
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start.Format("2006-01"), start
}

// seriesByProduct extracts each product's chronological demand series from
// sorted aggregates.
func seriesByProduct(aggregates []domain.PeriodAggregate) map[string][]float64 {
	series := make(map[string][]float64)
	for _, a := range aggregates {
		series[a.Product] = append(series[a.Product], a.Demand)
	}
	return series
}

// latestInventoryByProduct returns each product's most recent average
// inventory level from sorted aggregates.
func latestInventoryByProduct(aggregates []domain.PeriodAggregate) map[string]float64 {
	latest := make(map[string]float64)
	for _, a := range aggregates {
		latest[a.Product] = a.AvgInventory
	}
	return latest
}
