package source_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/source"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPostgresProvider_Load(t *testing.T) {
	ctx := t.Context()

	t.Run("orders become a table", func(t *testing.T) {
		repo := mocks.NewInterface(t)
		repo.On("FetchOrders", mock.Anything).Return([]models.OrderRecord{
			{SellerCity: "sao paulo", Price: 1000, DeliveryDelay: 3, Location: &models.Coordinates{Latitude: -23.55, Longitude: -46.63}},
			{SellerCity: "curitiba", Price: 250, DeliveryDelay: -2},
		}, nil).Once()

		tbl, err := source.NewPostgresProvider(repo, slog.Default()).Load(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, tbl.Len())
		assert.Equal(t, 1, tbl.Located())
	})

	t.Run("schema error is propagated", func(t *testing.T) {
		repo := mocks.NewInterface(t)
		repo.On("FetchOrders", mock.Anything).Return(nil, table.ErrMissingColumn).Once()

		tbl, err := source.NewPostgresProvider(repo, slog.Default()).Load(ctx)

		require.ErrorIs(t, err, table.ErrMissingColumn)
		assert.Nil(t, tbl)
	})
}
