package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/pipeline"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleTable() *table.Table {
	return table.FromOrders([]models.OrderRecord{
		{SellerCity: "sao paulo", Price: 1000, DeliveryDelay: 3, Location: &models.Coordinates{Latitude: -23.55, Longitude: -46.63}},
		{SellerCity: "palotina", Price: 1, DeliveryDelay: 12, Location: &models.Coordinates{Latitude: -24.28, Longitude: -53.84}},
		{SellerCity: "curitiba", Price: 250, DeliveryDelay: 30},
	})
}

func newTestService(t *testing.T, provider *mocks.Provider) (*DashboardService, *metrics.Metrics) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	service := NewDashboardService(logger, provider, "file", pipeline.New(models.GranularityOrder), appMetrics)
	service.now = func() time.Time {
		return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	}

	return service, appMetrics
}

func TestRender(t *testing.T) {
	ctx := t.Context()

	t.Run("successful render pass", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Load", ctx).Return(sampleTable(), nil).Once()
		service, appMetrics := newTestService(t, provider)

		dashboard, err := service.Render(ctx)

		require.NoError(t, err)
		_, err = uuid.Parse(dashboard.PassID)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), dashboard.GeneratedAt)
		assert.Equal(t, models.GranularityOrder, dashboard.Granularity)
		assert.Equal(t, 3, dashboard.RowsLoaded)
		assert.Equal(t, 2, dashboard.RowsLocated)

		require.Len(t, dashboard.TopRevenue, 3)
		assert.Equal(t, "sao paulo", dashboard.TopRevenue[0].City)
		assert.Equal(t, "palotina", dashboard.BottomRevenue[0].City)

		require.Len(t, dashboard.DelayMarkers, 2)
		assert.Equal(t, "palotina", dashboard.DelayMarkers[0].City)
		assert.Equal(t, models.DelayRange{Min: 3, Max: 12, Valid: true}, dashboard.DelayRange)
		assert.Len(t, dashboard.DelayDensity, 2)

		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RenderPasses.WithLabelValues("success")), 0)
		assert.InDelta(t, 3, testutil.ToFloat64(appMetrics.TableRows), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.UnlocatedRows), 0)
	})

	t.Run("every pass gets its own id", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Load", ctx).Return(sampleTable(), nil).Twice()
		service, _ := newTestService(t, provider)

		first, err := service.Render(ctx)
		require.NoError(t, err)
		second, err := service.Render(ctx)
		require.NoError(t, err)

		assert.NotEqual(t, first.PassID, second.PassID)
		assert.Equal(t, first.TopRevenue, second.TopRevenue)
	})

	t.Run("empty table renders empty views", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Load", ctx).Return(table.FromOrders(nil), nil).Once()
		service, _ := newTestService(t, provider)

		dashboard, err := service.Render(ctx)

		require.NoError(t, err)
		assert.Empty(t, dashboard.TopRevenue)
		assert.Empty(t, dashboard.BottomRevenue)
		assert.Empty(t, dashboard.DelayMarkers)
		assert.Empty(t, dashboard.DelayDensity)
		assert.False(t, dashboard.DelayRange.Valid)
	})

	t.Run("schema error fails the pass", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Load", ctx).Return(nil, table.ErrMissingColumn).Once()
		service, appMetrics := newTestService(t, provider)

		dashboard, err := service.Render(ctx)

		require.ErrorIs(t, err, table.ErrMissingColumn)
		assert.Nil(t, dashboard)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RenderPasses.WithLabelValues("failure")), 0)
		assert.Equal(t, 1, testutil.CollectAndCount(appMetrics.SourceLoadSeconds))
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		provider := mocks.NewProvider(t)
		provider.On("Load", mock.Anything).Return(nil, context.Canceled).Once()
		service, _ := newTestService(t, provider)

		_, err := service.Render(cancelled)

		require.ErrorIs(t, err, context.Canceled)
	})
}
