package source

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/repository"
)

// ProviderType represents the kind of order table source.
type ProviderType string

const (
	// ProviderTypeHTTP fetches a CSV export over HTTP.
	ProviderTypeHTTP ProviderType = "http"
	// ProviderTypeFile reads a CSV export from the local filesystem.
	ProviderTypeFile ProviderType = "file"
	// ProviderTypeXLSX reads a sheet of an Excel workbook.
	ProviderTypeXLSX ProviderType = "xlsx"
	// ProviderTypePostgres reads the all_data table of a PostgreSQL database.
	ProviderTypePostgres ProviderType = "postgres"
)

var (
	ErrUnsupportedType  = errors.New("unsupported source type")
	ErrLocationRequired = errors.New("source location is required")
	ErrRepositoryNeeded = errors.New("repository is required for postgres source")
)

// ProviderConfig holds configuration for creating a source provider.
type ProviderConfig struct {
	Type       ProviderType         // Type of provider to create
	Location   string               // URL (http) or path (file, xlsx)
	Sheet      string               // Workbook sheet, first sheet when empty (xlsx)
	Timeout    time.Duration        // Timeout of a single fetch (http)
	RateLimit  int                  // Fetches per second (http)
	Repository repository.Interface // Order repository (postgres)
	Logger     *slog.Logger         // Logger for the provider
}

// NewProvider creates a source provider based on the provided configuration.
//
// Supported provider types:
// - "http": remote CSV export
// - "file": local CSV export
// - "xlsx": local Excel workbook
// - "postgres": PostgreSQL table (requires a repository)
func NewProvider(config ProviderConfig) (Provider, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	switch config.Type {
	case ProviderTypeHTTP:
		return newHTTPProvider(config)
	case ProviderTypeFile:
		if config.Location == "" {
			return nil, fmt.Errorf("%w: %s", ErrLocationRequired, config.Type)
		}
		return NewFileProvider(config.Location, config.Logger), nil
	case ProviderTypeXLSX:
		if config.Location == "" {
			return nil, fmt.Errorf("%w: %s", ErrLocationRequired, config.Type)
		}
		return NewXLSXProvider(config.Location, config.Sheet, config.Logger), nil
	case ProviderTypePostgres:
		if config.Repository == nil {
			return nil, ErrRepositoryNeeded
		}
		return NewPostgresProvider(config.Repository, config.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, config.Type)
	}
}

func newHTTPProvider(config ProviderConfig) (Provider, error) {
	if config.Location == "" {
		return nil, fmt.Errorf("%w: %s", ErrLocationRequired, config.Type)
	}

	if config.RateLimit <= 0 {
		config.RateLimit = 1
		config.Logger.Warn("Rate limit for remote source not set, set a default value", "value", config.RateLimit)
	}

	return NewHTTPProvider(config.Location, config.Timeout, config.RateLimit, config.Logger), nil
}
