// cmd/forecast/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/demandcast/internal/dataset"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/engine"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Run the demand forecast and reorder analysis over a local CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Input CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory for forecast and alert CSVs",
				Value: "data/output",
			},
			&cli.StringFlag{
				Name:  "granularity",
				Usage: "Aggregation period: monthly or yearly",
				Value: "monthly",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Forecast strategy: growth or regression",
				Value: "growth",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "Reorder policy: simple or safety_stock",
				Value: "simple",
			},
			&cli.IntFlag{
				Name:  "horizon",
				Usage: "Forecast horizon in periods",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "lead-time",
				Usage: "Replenishment lead time in periods (safety_stock policy)",
				Value: engine.DefaultLeadTime,
			},
			&cli.Float64Flag{
				Name:  "service-level",
				Usage: "Service level factor z (safety_stock policy)",
				Value: engine.DefaultServiceLevel,
			},
			&cli.StringFlag{Name: "date-column", Usage: "Override the detected date column"},
			&cli.StringFlag{Name: "product-column", Usage: "Override the detected product column"},
			&cli.StringFlag{Name: "demand-column", Usage: "Override the detected demand column"},
			&cli.StringFlag{Name: "inventory-column", Usage: "Override the detected inventory column"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	table, err := dataset.Read(f)
	if err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}

	overrides := map[engine.Role]string{
		engine.RoleDate:      c.String("date-column"),
		engine.RoleProduct:   c.String("product-column"),
		engine.RoleDemand:    c.String("demand-column"),
		engine.RoleInventory: c.String("inventory-column"),
	}
	resolution := engine.ResolveColumns(table.Header, overrides)
	if !resolution.OK() {
		for role, columns := range resolution.Ambiguous {
			log.Printf("ambiguous %s column, candidates: %v", role, columns)
		}
		return fmt.Errorf("could not resolve required columns: %v (use the --*-column flags)", resolution.Missing)
	}

	granularity, err := domain.ParseGranularity(c.String("granularity"))
	if err != nil {
		return err
	}
	strategy, err := domain.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}
	policy, err := domain.ParseReorderPolicy(c.String("policy"))
	if err != nil {
		return err
	}

	result, err := engine.Run(table, engine.Params{
		Mapping:      resolution.Mapping,
		Granularity:  granularity,
		Strategy:     strategy,
		Policy:       policy,
		Horizon:      c.Int("horizon"),
		LeadTime:     c.Int("lead-time"),
		ServiceLevel: c.Float64("service-level"),
	})
	if err != nil {
		return err
	}

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeCSV(filepath.Join(outDir, "forecast.csv"), func(f *os.File) error {
		return engine.WriteForecastCSV(f, result.Forecasts)
	}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outDir, "alerts.csv"), func(f *os.File) error {
		return engine.WriteAlertsCSV(f, result.Alerts)
	}); err != nil {
		return err
	}

	fmt.Printf("Products analyzed:  %d\n", result.Summary.TotalProducts)
	fmt.Printf("Total units sold:   %d\n", result.Summary.TotalUnitsSold)
	fmt.Printf("Low stock alerts:   %d\n", result.Summary.LowStockAlerts)
	fmt.Printf("Avg period demand:  %.1f\n", result.Summary.AvgPeriodDemand)
	if result.Summary.DroppedRows > 0 {
		fmt.Printf("Rows dropped (bad dates): %d\n", result.Summary.DroppedRows)
	}
	if len(result.SkippedProducts) > 0 {
		fmt.Printf("Skipped (too little history): %v\n", result.SkippedProducts)
	}
	fmt.Printf("Output written to %s\n", outDir)

	return nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
