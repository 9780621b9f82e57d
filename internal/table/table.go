// Package table holds the immutable order table a render pass works on.
package table

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names every order source must provide.
const (
	ColumnSellerCity    = "seller_city"
	ColumnPrice         = "price"
	ColumnDeliveryDelay = "delivery_delay"
	ColumnLatitude      = "geolocation_lat"
	ColumnLongitude     = "geolocation_lng"
)

// RequiredColumns lists the schema in the order it is reported on failure.
var RequiredColumns = []string{
	ColumnSellerCity,
	ColumnPrice,
	ColumnDeliveryDelay,
	ColumnLatitude,
	ColumnLongitude,
}

// ErrMissingColumn is returned when the source lacks one of RequiredColumns.
var ErrMissingColumn = errors.New("required column is missing")

// nanValues are cell contents treated as missing values.
var nanValues = []string{"", "NA", "NaN", "nan", "NULL", "null", "None", "<nil>"}

type row struct {
	city     string
	price    float64
	delay    float64
	lat      float64
	lng      float64
	located  bool
	position int
}

// Table is an immutable set of order rows. The zero value is an empty table.
type Table struct {
	rows    []row
	located int
}

// FromRecords builds a table from raw string records whose first record is the header.
// A header without data rows yields an empty table.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(RequiredColumns, ", "))
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	if err := ValidateHeader(header); err != nil {
		return nil, err
	}

	if len(records) == 1 {
		return &Table{}, nil
	}

	normalized := make([][]string, 0, len(records))
	normalized = append(normalized, dedupeHeader(header))
	for _, rec := range records[1:] {
		normalized = append(normalized, fitWidth(rec, len(header)))
	}

	frame := dataframe.LoadRecords(
		normalized,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
		dataframe.WithTypes(map[string]series.Type{
			ColumnPrice:         series.Float,
			ColumnDeliveryDelay: series.Float,
			ColumnLatitude:      series.Float,
			ColumnLongitude:     series.Float,
		}),
	)
	if frame.Err != nil {
		return nil, fmt.Errorf("failed to load order records: %w", frame.Err)
	}

	return fromFrame(frame)
}

// FromOrders builds a table from already typed rows.
func FromOrders(orders []models.OrderRecord) *Table {
	tbl := &Table{rows: make([]row, 0, len(orders))}
	for i, order := range orders {
		r := row{
			city:     strings.TrimSpace(order.SellerCity),
			price:    finiteOrNaN(order.Price),
			delay:    finiteOrNaN(order.DeliveryDelay),
			position: i,
		}
		if order.Location != nil {
			r.lat, r.lng = order.Location.Latitude, order.Location.Longitude
			r.located = validCoordinate(r.lat) && validCoordinate(r.lng)
		}
		tbl.append(r)
	}

	return tbl
}

// ValidateHeader reports every required column absent from header.
func ValidateHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Located returns the number of rows carrying both coordinates.
func (t *Table) Located() int {
	if t == nil {
		return 0
	}
	return t.located
}

// Each calls fn for every row in source order. The record passed to fn is a copy.
func (t *Table) Each(fn func(position int, order models.OrderRecord)) {
	if t == nil {
		return
	}
	for _, r := range t.rows {
		fn(r.position, r.record())
	}
}

// Orders returns a copy of all rows.
func (t *Table) Orders() []models.OrderRecord {
	orders := make([]models.OrderRecord, 0, t.Len())
	t.Each(func(_ int, order models.OrderRecord) {
		orders = append(orders, order)
	})
	return orders
}

func (t *Table) append(r row) {
	t.rows = append(t.rows, r)
	if r.located {
		t.located++
	}
}

func (r row) record() models.OrderRecord {
	order := models.OrderRecord{
		SellerCity:    r.city,
		Price:         r.price,
		DeliveryDelay: r.delay,
	}
	if r.located {
		order.Location = &models.Coordinates{Latitude: r.lat, Longitude: r.lng}
	}
	return order
}

func fromFrame(frame dataframe.DataFrame) (*Table, error) {
	cols := make(map[string]series.Series, len(RequiredColumns))
	for _, name := range RequiredColumns {
		col := frame.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingColumn, name, col.Err)
		}
		cols[name] = col
	}

	cities := cols[ColumnSellerCity]
	prices := cols[ColumnPrice].Float()
	delays := cols[ColumnDeliveryDelay].Float()
	lats := cols[ColumnLatitude].Float()
	lngs := cols[ColumnLongitude].Float()

	tbl := &Table{rows: make([]row, 0, frame.Nrow())}
	for i := range frame.Nrow() {
		var city string
		if elem := cities.Elem(i); !elem.IsNA() {
			city = strings.TrimSpace(elem.String())
		}
		tbl.append(row{
			city:     city,
			price:    finiteOrNaN(prices[i]),
			delay:    finiteOrNaN(delays[i]),
			lat:      lats[i],
			lng:      lngs[i],
			located:  validCoordinate(lats[i]) && validCoordinate(lngs[i]),
			position: i,
		})
	}

	return tbl, nil
}

// dedupeHeader keeps the first occurrence of a column name and renames later
// ones to name.1, name.2, ... so the frame never sees two equal names.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for _, name := range header {
		seen[name] = 0
	}
	used := make(map[string]struct{}, len(header))
	for i, name := range header {
		if _, dup := used[name]; !dup {
			out[i] = name
			used[name] = struct{}{}
			continue
		}
		for {
			seen[name]++
			candidate := fmt.Sprintf("%s.%d", name, seen[name])
			if _, taken := used[candidate]; taken {
				continue
			}
			if _, later := seen[candidate]; later {
				continue
			}
			out[i] = candidate
			used[candidate] = struct{}{}
			break
		}
	}
	return out
}

func fitWidth(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}

func validCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteOrNaN marks infinite metrics as missing so they are never ranked.
func finiteOrNaN(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
