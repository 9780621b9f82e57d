// Command report runs a single render pass and prints the dashboard views
// as terminal tables.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/pipeline"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/source"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	granularity, err := pipeline.ParseGranularity(cfg.Granularity)
	if err != nil {
		log.Fatalf("Invalid ranking granularity: %v", err)
	}

	providerConfig := source.ProviderConfig{
		Type:      source.ProviderType(cfg.Source.Type),
		Location:  cfg.Source.Location,
		Sheet:     cfg.Source.Sheet,
		Timeout:   cfg.Source.Timeout,
		RateLimit: cfg.Source.RateLimit,
		Logger:    logger,
	}

	if providerConfig.Type == source.ProviderTypePostgres {
		dtb, dbErr := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if dbErr != nil {
			log.Fatalf("Failed to connect to DB: %v", dbErr)
		}
		defer dtb.Close()

		providerConfig.Repository = repository.NewRepository(dtb, logger)
	}

	provider, err := source.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create order source: %v", err)
	}

	dashboardService := service.NewDashboardService(
		logger,
		provider,
		cfg.Source.Type,
		pipeline.New(granularity),
		metrics.NewMetrics(prometheus.NewRegistry()),
	)

	dashboard, err := dashboardService.Render(ctx)
	if err != nil {
		log.Fatalf("Render pass failed: %v", err)
	}

	printDashboard(os.Stdout, dashboard)
}

func printDashboard(w io.Writer, dashboard *models.Dashboard) {
	fmt.Fprintf(w, "Pass %s: %d orders, %d with coordinates, ranked by %s\n\n",
		dashboard.PassID, dashboard.RowsLoaded, dashboard.RowsLocated, dashboard.Granularity)

	revenue := newTable(w, "#", "Top city", "Revenue (BRL)", "Bottom city", "Revenue (BRL)")
	for i := range max(len(dashboard.TopRevenue), len(dashboard.BottomRevenue)) {
		row := []string{strconv.Itoa(i + 1), "", "", "", ""}
		if i < len(dashboard.TopRevenue) {
			row[1], row[2] = dashboard.TopRevenue[i].City, money(dashboard.TopRevenue[i].Revenue)
		}
		if i < len(dashboard.BottomRevenue) {
			row[3], row[4] = dashboard.BottomRevenue[i].City, money(dashboard.BottomRevenue[i].Revenue)
		}
		revenue.Append(row)
	}
	revenue.Render()

	markers := newTable(w, "#", "City", "Delay (days)", "Latitude", "Longitude")
	for i, m := range dashboard.DelayMarkers {
		markers.Append([]string{
			strconv.Itoa(i + 1),
			m.City,
			number(m.Delay),
			coordinate(m.Coordinates.Latitude),
			coordinate(m.Coordinates.Longitude),
		})
	}
	if dashboard.DelayRange.Valid {
		markers.SetFooter([]string{"", "range", number(dashboard.DelayRange.Min) + " .. " + number(dashboard.DelayRange.Max), "", ""})
	}
	markers.Render()

	// The density view is long, so it is summarised.
	density := newTable(w, "Heat points", "Highest delay", "Lowest delay")
	if n := len(dashboard.DelayDensity); n > 0 {
		density.Append([]string{
			strconv.Itoa(n),
			number(dashboard.DelayDensity[0].Delay),
			number(dashboard.DelayDensity[n-1].Delay),
		})
	} else {
		density.Append([]string{"0", "-", "-"})
	}
	density.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(header)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAlignment(tablewriter.ALIGN_LEFT)
	return tbl
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func coordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
