package source

import (
	"context"

	"github.com/UnknownOlympus/meridian/internal/table"
)

// Provider loads a fresh order table. Every call re-reads the underlying data.
type Provider interface {
	Load(ctx context.Context) (*table.Table, error)
}
