package source

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/table"
)

// PostgresProvider reads the order table through the repository.
type PostgresProvider struct {
	repo repository.Interface
	log  *slog.Logger
}

func NewPostgresProvider(repo repository.Interface, log *slog.Logger) *PostgresProvider {
	return &PostgresProvider{repo: repo, log: log}
}

func (pp *PostgresProvider) Load(ctx context.Context) (*table.Table, error) {
	orders, err := pp.repo.FetchOrders(ctx)
	if err != nil {
		return nil, err
	}

	tbl := table.FromOrders(orders)
	pp.log.DebugContext(ctx, "Orders loaded from database", "rows", tbl.Len())
	return tbl, nil
}
