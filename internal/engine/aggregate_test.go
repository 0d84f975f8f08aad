package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandcast/internal/domain"
)

func record(day string, product string, demand, inventory float64) domain.SalesRecord {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return domain.SalesRecord{Date: date, Product: product, Demand: demand, Inventory: inventory}
}

func TestAggregateSumsSamePeriod(t *testing.T) {
	records := []domain.SalesRecord{
		record("2024-01-05", "P1", 10, 100),
		record("2024-01-20", "P1", 15, 80),
		record("2024-02-02", "P1", 7, 60),
	}

	aggs := Aggregate(records, domain.GranularityMonthly)
	require.Len(t, aggs, 2)

	assert.Equal(t, "2024-01", aggs[0].Period)
	assert.Equal(t, 25.0, aggs[0].Demand)
	assert.Equal(t, 90.0, aggs[0].AvgInventory)
	assert.Equal(t, 2, aggs[0].Rows)

	assert.Equal(t, "2024-02", aggs[1].Period)
	assert.Equal(t, 7.0, aggs[1].Demand)
}

func TestAggregateRoundTrip(t *testing.T) {
	records := []domain.SalesRecord{
		record("2024-01-05", "P1", 10, 0),
		record("2024-03-20", "P1", 15, 0),
		record("2024-01-02", "P2", 7, 0),
		record("2025-06-11", "P2", 3, 0),
		record("2024-01-05", "P3", 0, 0),
	}

	var rawTotal float64
	for _, r := range records {
		rawTotal += r.Demand
	}

	for _, granularity := range []domain.Granularity{domain.GranularityMonthly, domain.GranularityYearly} {
		var aggTotal float64
		for _, a := range Aggregate(records, granularity) {
			aggTotal += a.Demand
		}
		assert.Equal(t, rawTotal, aggTotal, "granularity %s", granularity)
	}
}

func TestAggregateChronologicalWithinProduct(t *testing.T) {
	records := []domain.SalesRecord{
		record("2024-05-01", "P1", 1, 0),
		record("2024-01-01", "P1", 2, 0),
		record("2024-03-01", "P1", 3, 0),
		record("2023-12-01", "P2", 4, 0),
	}

	aggs := Aggregate(records, domain.GranularityMonthly)
	require.Len(t, aggs, 4)

	for i := 1; i < len(aggs); i++ {
		if aggs[i].Product == aggs[i-1].Product {
			assert.True(t, aggs[i-1].PeriodStart.Before(aggs[i].PeriodStart))
		}
	}
	// sorted by product first
	assert.Equal(t, "P1", aggs[0].Product)
	assert.Equal(t, "P2", aggs[3].Product)
}

func TestAggregateYearly(t *testing.T) {
	records := []domain.SalesRecord{
		record("2024-01-05", "P1", 10, 0),
		record("2024-11-20", "P1", 15, 0),
		record("2025-02-02", "P1", 7, 0),
	}

	aggs := Aggregate(records, domain.GranularityYearly)
	require.Len(t, aggs, 2)
	assert.Equal(t, "2024", aggs[0].Period)
	assert.Equal(t, 25.0, aggs[0].Demand)
	assert.Equal(t, "2025", aggs[1].Period)
}
