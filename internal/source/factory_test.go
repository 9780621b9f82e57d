package source_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/meridian/internal/source"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("create HTTP provider successfully", func(t *testing.T) {
		provider, err := source.NewProvider(source.ProviderConfig{
			Type:      source.ProviderTypeHTTP,
			Location:  exportURL,
			Timeout:   5 * time.Second,
			RateLimit: 2,
			Logger:    logger,
		})

		require.NoError(t, err)
		_, ok := provider.(*source.HTTPProvider)
		assert.True(t, ok, "expected provider to be *HTTPProvider")
	})

	t.Run("create HTTP provider without rate limit uses default", func(t *testing.T) {
		provider, err := source.NewProvider(source.ProviderConfig{
			Type:     source.ProviderTypeHTTP,
			Location: exportURL,
			Logger:   logger,
		})

		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("create file provider successfully", func(t *testing.T) {
		provider, err := source.NewProvider(source.ProviderConfig{
			Type:     source.ProviderTypeFile,
			Location: "all_data.csv",
		})

		require.NoError(t, err)
		_, ok := provider.(*source.FileProvider)
		assert.True(t, ok, "expected provider to be *FileProvider")
	})

	t.Run("create xlsx provider successfully", func(t *testing.T) {
		provider, err := source.NewProvider(source.ProviderConfig{
			Type:     source.ProviderTypeXLSX,
			Location: "all_data.xlsx",
			Sheet:    "orders",
			Logger:   logger,
		})

		require.NoError(t, err)
		_, ok := provider.(*source.XLSXProvider)
		assert.True(t, ok, "expected provider to be *XLSXProvider")
	})

	t.Run("create postgres provider successfully", func(t *testing.T) {
		provider, err := source.NewProvider(source.ProviderConfig{
			Type:       source.ProviderTypePostgres,
			Repository: mocks.NewInterface(t),
			Logger:     logger,
		})

		require.NoError(t, err)
		_, ok := provider.(*source.PostgresProvider)
		assert.True(t, ok, "expected provider to be *PostgresProvider")
	})

	t.Run("postgres provider without repository fails", func(t *testing.T) {
		provider, err := source.NewProvider(source.ProviderConfig{
			Type:   source.ProviderTypePostgres,
			Logger: logger,
		})

		require.ErrorIs(t, err, source.ErrRepositoryNeeded)
		assert.Nil(t, provider)
	})

	t.Run("location is required", func(t *testing.T) {
		for _, typ := range []source.ProviderType{source.ProviderTypeHTTP, source.ProviderTypeFile, source.ProviderTypeXLSX} {
			provider, err := source.NewProvider(source.ProviderConfig{Type: typ, Logger: logger})

			require.ErrorIs(t, err, source.ErrLocationRequired, string(typ))
			assert.Nil(t, provider)
		}
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		provider, err := source.NewProvider(source.ProviderConfig{Type: "ftp", Logger: logger})

		require.ErrorIs(t, err, source.ErrUnsupportedType)
		assert.Nil(t, provider)
		assert.Contains(t, err.Error(), "ftp")
	})
}
