package main

import (
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/MerlinStacks/woodash-forecast/internal/alert"
	"github.com/MerlinStacks/woodash-forecast/internal/cache"
	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/forecast"
	"github.com/MerlinStacks/woodash-forecast/internal/repository/postgres"
	"github.com/MerlinStacks/woodash-forecast/internal/service"
	"github.com/MerlinStacks/woodash-forecast/internal/storage"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newAccountFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:     "account",
		Usage:    "Account id to forecast",
		Required: true,
	}
}

func buildService(c *cli.Context) (*service.ForecastService, error) {
	cfg := config.Load()

	db, err := postgres.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, err
	}

	engine := forecast.NewEngine(
		postgres.NewCatalogRepository(db),
		postgres.NewSalesRepository(db),
		cfg.Forecast,
	)

	var store service.ReportStore
	if cfg.Export.Enabled {
		minioStore, err := storage.NewMinioClient(cfg.Export)
		if err != nil {
			return nil, fmt.Errorf("report storage unavailable: %w", err)
		}
		store = minioStore
	}

	return service.NewForecastService(engine, cache.NewNoopForecastCache(), alert.NewNoopSink(), store, cfg.Forecast), nil
}

func runForecast(c *cli.Context) error {
	svc, err := buildService(c)
	if err != nil {
		return err
	}

	forecasts, err := svc.GetSkuForecasts(c.Context, c.Int64("account"), 0)
	if err != nil {
		return err
	}

	fmt.Printf("%-28s %-10s %8s %10s %10s %8s %6s\n",
		"NAME", "RISK", "STOCK", "DEMAND/D", "DAYS LEFT", "REORDER", "CONF")
	limit := c.Int("limit")
	for i, f := range forecasts {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Printf("%-28.28s %-10s %8d %10.2f %10.1f %8d %5.0f%%\n",
			f.Name, f.StockoutRisk, f.CurrentStock, f.TotalDemand,
			f.DaysUntilStockout, f.RecommendedReorderQty, f.Confidence)
	}
	fmt.Printf("\n%d entities forecast\n", len(forecasts))
	return nil
}

func runAlerts(c *cli.Context) error {
	svc, err := buildService(c)
	if err != nil {
		return err
	}

	alerts, err := svc.GetStockoutAlerts(c.Context, c.Int64("account"), c.Int("threshold"))
	if err != nil {
		return err
	}

	printTier := func(label string, items []domain.AlertItem) {
		if len(items) == 0 {
			return
		}
		fmt.Printf("%s (%d):\n", label, len(items))
		for _, item := range items {
			fmt.Printf("  %-28.28s stock=%d days=%.1f reorder=%d\n",
				item.Name, item.CurrentStock, item.DaysUntilStockout, item.RecommendedReorderQty)
		}
	}
	printTier("CRITICAL", alerts.Critical)
	printTier("HIGH", alerts.High)
	printTier("MEDIUM", alerts.Medium)
	fmt.Printf("\n%d entities at risk within %d days\n",
		alerts.Summary.TotalAtRisk, alerts.Summary.ThresholdDays)
	return nil
}

func runExport(c *cli.Context) error {
	svc, err := buildService(c)
	if err != nil {
		return err
	}

	key, err := svc.ExportAlertReport(c.Context, c.Int64("account"), c.Int("threshold"))
	if err != nil {
		return err
	}
	fmt.Printf("alert report uploaded: %s\n", key)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Run SKU demand forecasts and stockout alerts against the catalog database",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Compute the full forecast list for an account",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newAccountFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Max rows to print", Value: 50},
				},
				Action: runForecast,
			},
			{
				Name:  "alerts",
				Usage: "Show entities at risk of stockout",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newAccountFlag(),
					&cli.IntFlag{Name: "threshold", Usage: "Day threshold for alerting", Value: 0},
				},
				Action: runAlerts,
			},
			{
				Name:  "export",
				Usage: "Upload the alert batch as CSV to object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newAccountFlag(),
					&cli.IntFlag{Name: "threshold", Usage: "Day threshold for alerting", Value: 0},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
