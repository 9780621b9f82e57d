// Package pipeline turns an order table into the ranked views shown on the dashboard.
//
// Every operation is a pure function of the table it is given: nothing is cached
// between calls and the table is never modified.
package pipeline

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/table"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View sizes rendered by the dashboard.
const (
	RevenueCount = 10
	MarkerCount  = 20
	DensityCount = 250
)

// ErrUnknownGranularity is returned by ParseGranularity for unsupported values.
var ErrUnknownGranularity = errors.New("unknown granularity")

// Views groups every view produced by a single pipeline run.
type Views struct {
	TopRevenue    []models.CityRevenue
	BottomRevenue []models.CityRevenue
	DelayMarkers  []models.CityDelay
	DelayRange    models.DelayRange
	DelayDensity  []models.HeatPoint
}

// Pipeline ranks orders either row by row or per city.
type Pipeline struct {
	granularity models.Granularity
}

// ParseGranularity validates a granularity name.
func ParseGranularity(value string) (models.Granularity, error) {
	switch g := models.Granularity(value); g {
	case models.GranularityOrder, models.GranularityCity:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, value)
	}
}

// New returns a pipeline for the given granularity. Anything other than
// GranularityCity ranks raw order rows.
func New(granularity models.Granularity) *Pipeline {
	if granularity != models.GranularityCity {
		granularity = models.GranularityOrder
	}
	return &Pipeline{granularity: granularity}
}

// Granularity returns the ranking granularity in use.
func (p *Pipeline) Granularity() models.Granularity {
	return p.granularity
}

// Build runs every operation with the dashboard's fixed view sizes.
func (p *Pipeline) Build(tbl *table.Table) Views {
	top, bottom := p.TopBottomRevenue(tbl, RevenueCount)
	markers := p.TopDelayCities(tbl, MarkerCount)

	return Views{
		TopRevenue:    top,
		BottomRevenue: bottom,
		DelayMarkers:  markers,
		DelayRange:    DelayRange(markers),
		DelayDensity:  p.TopDelayCitiesForDensity(tbl, DensityCount),
	}
}

// TopBottomRevenue returns the n highest and the n lowest revenue entries.
// Rows without a price are not ranked.
func (p *Pipeline) TopBottomRevenue(tbl *table.Table, n int) ([]models.CityRevenue, []models.CityRevenue) {
	var entries []entry
	if p.granularity == models.GranularityCity {
		entries = cityRevenue(tbl)
	} else {
		entries = orderRevenue(tbl)
	}

	order := newOrdering()
	top := order.rank(entries, true, n)
	bottom := order.rank(entries, false, n)

	return toRevenue(top), toRevenue(bottom)
}

// TopDelayCities returns up to n entries with the highest delivery delay.
// Rows without coordinates are dropped before ranking.
func (p *Pipeline) TopDelayCities(tbl *table.Table, n int) []models.CityDelay {
	ranked := newOrdering().rank(p.delayEntries(tbl), true, n)

	view := make([]models.CityDelay, 0, len(ranked))
	for _, e := range ranked {
		view = append(view, models.CityDelay{City: e.city, Delay: e.value, Coordinates: e.coords})
	}
	return view
}

// TopDelayCitiesForDensity ranks like TopDelayCities but returns bare
// weighted points for heatmap rendering.
func (p *Pipeline) TopDelayCitiesForDensity(tbl *table.Table, m int) []models.HeatPoint {
	ranked := newOrdering().rank(p.delayEntries(tbl), true, m)

	points := make([]models.HeatPoint, 0, len(ranked))
	for _, e := range ranked {
		points = append(points, models.HeatPoint{
			Latitude:  e.coords.Latitude,
			Longitude: e.coords.Longitude,
			Delay:     e.value,
		})
	}
	return points
}

// DelayRange returns the smallest and largest delay present in view.
func DelayRange(view []models.CityDelay) models.DelayRange {
	if len(view) == 0 {
		return models.DelayRange{}
	}

	rng := models.DelayRange{Min: view[0].Delay, Max: view[0].Delay, Valid: true}
	for _, v := range view[1:] {
		rng.Min = math.Min(rng.Min, v.Delay)
		rng.Max = math.Max(rng.Max, v.Delay)
	}
	return rng
}

func (p *Pipeline) delayEntries(tbl *table.Table) []entry {
	if p.granularity == models.GranularityCity {
		return cityDelay(tbl)
	}
	return orderDelay(tbl)
}

// entry is a rankable value. position is the source row of the entry, or of
// the first row of its city when aggregated.
type entry struct {
	city     string
	value    float64
	coords   models.Coordinates
	position int
}

// ordering sorts by value, then city name in Brazilian Portuguese collation,
// then source position. Collators are not safe for concurrent use; build one
// per operation.
type ordering struct {
	collator *collate.Collator
}

func newOrdering() *ordering {
	return &ordering{collator: collate.New(language.BrazilianPortuguese)}
}

func (o *ordering) rank(entries []entry, descending bool, n int) []entry {
	if n <= 0 || len(entries) == 0 {
		return nil
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b entry) int {
		if c := cmp.Compare(a.value, b.value); c != 0 {
			if descending {
				return -c
			}
			return c
		}
		if c := o.collator.CompareString(a.city, b.city); c != 0 {
			return c
		}
		return cmp.Compare(a.position, b.position)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func toRevenue(entries []entry) []models.CityRevenue {
	out := make([]models.CityRevenue, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.CityRevenue{City: e.city, Revenue: e.value})
	}
	return out
}

func orderRevenue(tbl *table.Table) []entry {
	entries := make([]entry, 0, tbl.Len())
	tbl.Each(func(position int, order models.OrderRecord) {
		if math.IsNaN(order.Price) {
			return
		}
		entries = append(entries, entry{city: order.SellerCity, value: order.Price, position: position})
	})
	return entries
}

func orderDelay(tbl *table.Table) []entry {
	entries := make([]entry, 0, tbl.Located())
	tbl.Each(func(position int, order models.OrderRecord) {
		if !order.Located() || math.IsNaN(order.DeliveryDelay) {
			return
		}
		entries = append(entries, entry{
			city:     order.SellerCity,
			value:    order.DeliveryDelay,
			coords:   *order.Location,
			position: position,
		})
	})
	return entries
}
