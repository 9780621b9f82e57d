package render

import (
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Map presentation defaults for Brazil.
const (
	CenterLatitude  = -14.2350
	CenterLongitude = -51.9253
	DefaultZoom     = 4

	MarkerRadius  = 16
	MarkerOpacity = 0.6
	HeatRadius    = 15
	HeatBlur      = 10
	HeatMaxZoom   = 4
)

// MapView carries the client side map settings.
type MapView struct {
	Center     models.Coordinates `json:"center"`
	Zoom       int                `json:"zoom"`
	HeatRadius int                `json:"heat_radius"`
	HeatBlur   int                `json:"heat_blur"`
	MaxZoom    int                `json:"max_zoom"`
	Scale      ColorScale         `json:"scale"`
	Legend     []Stop             `json:"legend"`
}

// NewMapView returns the default map settings with a colour scale for rng.
func NewMapView(rng models.DelayRange) MapView {
	scale := NewColorScale(rng)
	return MapView{
		Center:     models.Coordinates{Latitude: CenterLatitude, Longitude: CenterLongitude},
		Zoom:       DefaultZoom,
		HeatRadius: HeatRadius,
		HeatBlur:   HeatBlur,
		MaxZoom:    HeatMaxZoom,
		Scale:      scale,
		Legend:     scale.Stops(),
	}
}

// MarkerLayer turns the delay markers into circle marker features coloured
// by the view's own delay range.
func MarkerLayer(view []models.CityDelay, rng models.DelayRange) *geojson.FeatureCollection {
	scale := NewColorScale(rng)
	fc := geojson.NewFeatureCollection()

	for rank, marker := range view {
		feature := geojson.NewFeature(orb.Point{marker.Coordinates.Longitude, marker.Coordinates.Latitude})
		feature.Properties["rank"] = rank + 1
		feature.Properties["city"] = marker.City
		feature.Properties["delay"] = marker.Delay
		feature.Properties["color"] = scale.Hex(marker.Delay)
		feature.Properties["radius"] = MarkerRadius
		feature.Properties["fill_opacity"] = MarkerOpacity
		fc.Append(feature)
	}

	return fc
}

// HeatLayer turns density points into weighted point features.
func HeatLayer(points []models.HeatPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, p := range points {
		feature := geojson.NewFeature(orb.Point{p.Longitude, p.Latitude})
		feature.Properties["weight"] = p.Delay
		fc.Append(feature)
	}

	return fc
}
