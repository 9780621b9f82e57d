package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/pipeline"
	"github.com/UnknownOlympus/meridian/internal/source"
	"github.com/google/uuid"
)

// DashboardService runs render passes: it loads a fresh order table,
// runs the selection pipeline over it and packages the views.
type DashboardService struct {
	log        *slog.Logger       // Logger for logging service activities
	provider   source.Provider    // Source of the order table
	sourceName string             // Name of the source for metrics labeling
	pipeline   *pipeline.Pipeline // Selection and aggregation pipeline
	metrics    *metrics.Metrics   // Metrics for tracking render passes
	now        func() time.Time
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(
	log *slog.Logger,
	provider source.Provider,
	sourceName string,
	pipe *pipeline.Pipeline,
	metrics *metrics.Metrics,
) *DashboardService {
	return &DashboardService{
		log:        log,
		provider:   provider,
		sourceName: sourceName,
		pipeline:   pipe,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Render performs one complete render pass. Nothing is shared between passes,
// so concurrent calls are safe. A schema error from the source is returned
// unchanged in the chain and can be detected with errors.Is.
func (ds *DashboardService) Render(ctx context.Context) (*models.Dashboard, error) {
	passID := uuid.NewString()
	log := ds.log.With("pass_id", passID)
	started := time.Now()

	log.DebugContext(ctx, "Render pass started", "source", ds.sourceName)

	tbl, err := ds.provider.Load(ctx)
	ds.metrics.SourceLoadSeconds.WithLabelValues(ds.sourceName).Observe(time.Since(started).Seconds())
	if err != nil {
		ds.metrics.RenderPasses.WithLabelValues("failure").Inc()
		log.ErrorContext(ctx, "Failed to load order table", "source", ds.sourceName, "error", err)
		return nil, fmt.Errorf("failed to load order table: %w", err)
	}

	unlocated := tbl.Len() - tbl.Located()
	ds.metrics.TableRows.Set(float64(tbl.Len()))
	ds.metrics.UnlocatedRows.Add(float64(unlocated))
	if unlocated > 0 {
		log.DebugContext(ctx, "Rows without coordinates excluded from map views", "rows", unlocated)
	}

	views := ds.pipeline.Build(tbl)

	dashboard := &models.Dashboard{
		PassID:        passID,
		GeneratedAt:   ds.now().UTC(),
		Granularity:   ds.pipeline.Granularity(),
		RowsLoaded:    tbl.Len(),
		RowsLocated:   tbl.Located(),
		TopRevenue:    views.TopRevenue,
		BottomRevenue: views.BottomRevenue,
		DelayMarkers:  views.DelayMarkers,
		DelayRange:    views.DelayRange,
		DelayDensity:  views.DelayDensity,
	}

	elapsed := time.Since(started)
	ds.metrics.RenderSeconds.Observe(elapsed.Seconds())
	ds.metrics.RenderPasses.WithLabelValues("success").Inc()

	log.InfoContext(ctx, "Render pass finished",
		"rows", dashboard.RowsLoaded,
		"located", dashboard.RowsLocated,
		"markers", len(dashboard.DelayMarkers),
		"heat_points", len(dashboard.DelayDensity),
		"duration", elapsed,
	)

	return dashboard, nil
}
