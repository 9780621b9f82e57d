package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// undefinedColumn is the SQLSTATE postgres reports for an unknown column.
const undefinedColumn = "42703"

// FetchOrders retrieves every order row of the dashboard dataset.
// Rows are ordered by all selected columns, so rows that tie on every column are
// indistinguishable and the result is reproducible.
//
// A query referencing a column the table lacks is reported as table.ErrMissingColumn.
func (r *Repository) FetchOrders(ctx context.Context) ([]models.OrderRecord, error) {
	query := `
		SELECT seller_city, price, delivery_delay, geolocation_lat, geolocation_lng
		FROM public.all_data
		ORDER BY seller_city, price, delivery_delay, geolocation_lat, geolocation_lng;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedColumn {
			return nil, fmt.Errorf("%w: %s", table.ErrMissingColumn, pgErr.Message)
		}
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderRecord
	for rows.Next() {
		var (
			city                pgtype.Text
			price, delay        pgtype.Float8
			latitude, longitude pgtype.Float8
		)
		if errScan := rows.Scan(&city, &price, &delay, &latitude, &longitude); errScan != nil {
			return nil, fmt.Errorf("failed to scan order: %w", errScan)
		}

		order := models.OrderRecord{
			SellerCity:    city.String,
			Price:         floatOrNaN(price),
			DeliveryDelay: floatOrNaN(delay),
		}
		if latitude.Valid && longitude.Valid {
			order.Location = &models.Coordinates{Latitude: latitude.Float64, Longitude: longitude.Float64}
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Orders fetched from database", "rows", len(orders))

	return orders, nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func floatOrNaN(v pgtype.Float8) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
