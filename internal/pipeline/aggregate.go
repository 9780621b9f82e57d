package pipeline

import (
	"math"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/text/unicode/norm"
)

// cityGroup accumulates the rows of one city. Groups are keyed by the
// NFC form of the city name so composed and decomposed spellings merge.
type cityGroup struct {
	city     string
	position int
	sum      float64
	count    int // located rows, delay only
	points   orb.MultiPoint
}

type groups struct {
	byKey map[string]*cityGroup
	order []*cityGroup
}

func newGroups() *groups {
	return &groups{byKey: make(map[string]*cityGroup)}
}

func (g *groups) get(city string, position int) *cityGroup {
	key := norm.NFC.String(city)
	grp, ok := g.byKey[key]
	if !ok {
		grp = &cityGroup{city: key, position: position}
		g.byKey[key] = grp
		g.order = append(g.order, grp)
	}
	return grp
}

// cityRevenue sums prices per city.
func cityRevenue(tbl *table.Table) []entry {
	grp := newGroups()
	tbl.Each(func(position int, order models.OrderRecord) {
		if math.IsNaN(order.Price) {
			return
		}
		g := grp.get(order.SellerCity, position)
		g.sum += order.Price
	})

	entries := make([]entry, 0, len(grp.order))
	for _, g := range grp.order {
		entries = append(entries, entry{city: g.city, value: g.sum, position: g.position})
	}
	return entries
}

// cityDelay averages the delay of each city's located rows and places the
// city at the centroid of those rows.
func cityDelay(tbl *table.Table) []entry {
	grp := newGroups()
	tbl.Each(func(position int, order models.OrderRecord) {
		if !order.Located() || math.IsNaN(order.DeliveryDelay) {
			return
		}
		g := grp.get(order.SellerCity, position)
		g.sum += order.DeliveryDelay
		g.count++
		g.points = append(g.points, orb.Point{order.Location.Longitude, order.Location.Latitude})
	})

	entries := make([]entry, 0, len(grp.order))
	for _, g := range grp.order {
		centroid, _ := planar.CentroidArea(g.points)
		entries = append(entries, entry{
			city:     g.city,
			value:    g.sum / float64(g.count),
			coords:   models.Coordinates{Latitude: centroid.Lat(), Longitude: centroid.Lon()},
			position: g.position,
		})
	}
	return entries
}
