package domain

import (
	"fmt"
	"strings"
)

// StockStatus signals whether a product needs replenishment.
type StockStatus string

const (
	StatusReorder StockStatus = "reorder"
	StatusOK      StockStatus = "ok"
)

// Granularity selects the aggregation period.
type Granularity string

const (
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

// Strategy selects the forecasting method.
type Strategy string

const (
	StrategyGrowth     Strategy = "growth"
	StrategyRegression Strategy = "regression"
)

// ReorderPolicy selects how the shortage threshold is computed. The two
// policies are deliberate alternatives, neither supersedes the other.
type ReorderPolicy string

const (
	PolicySimple      ReorderPolicy = "simple"
	PolicySafetyStock ReorderPolicy = "safety_stock"
)

// ParseGranularity returns the granularity for a label (case-insensitive).
func ParseGranularity(label string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "monthly", "month":
		return GranularityMonthly, nil
	case "yearly", "year":
		return GranularityYearly, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want monthly or yearly)", label)
	}
}

// ParseStrategy returns the forecast strategy for a label (case-insensitive).
func ParseStrategy(label string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "growth":
		return StrategyGrowth, nil
	case "regression":
		return StrategyRegression, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want growth or regression)", label)
	}
}

// ParseReorderPolicy returns the reorder policy for a label (case-insensitive).
func ParseReorderPolicy(label string) (ReorderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "simple":
		return PolicySimple, nil
	case "safety_stock", "safety-stock", "safetystock":
		return PolicySafetyStock, nil
	default:
		return "", fmt.Errorf("unknown reorder policy %q (want simple or safety_stock)", label)
	}
}
