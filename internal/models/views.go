package models

import "time"

// Granularity selects whether the pipeline ranks raw order rows or per-city aggregates.
type Granularity string

const (
	// GranularityOrder ranks individual order rows.
	GranularityOrder Granularity = "order"
	// GranularityCity aggregates rows per city before ranking.
	GranularityCity Granularity = "city"
)

// CityRevenue is one entry of a revenue ranking.
type CityRevenue struct {
	City    string  `json:"city"`
	Revenue float64 `json:"revenue"`
}

// CityDelay is one entry of a delivery delay ranking, always carrying coordinates.
type CityDelay struct {
	City        string      `json:"city"`
	Delay       float64     `json:"delay"`
	Coordinates Coordinates `json:"coordinates"`
}

// HeatPoint is a weighted point for density rendering.
type HeatPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Delay     float64 `json:"delay"`
}

// DelayRange is the span of delay values present in a marker view.
// Valid is false when the view is empty.
type DelayRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Valid bool    `json:"valid"`
}

// Dashboard is the complete output of one render pass.
type Dashboard struct {
	PassID        string        `json:"pass_id"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Granularity   Granularity   `json:"granularity"`
	RowsLoaded    int           `json:"rows_loaded"`
	RowsLocated   int           `json:"rows_located"`
	TopRevenue    []CityRevenue `json:"top_revenue"`
	BottomRevenue []CityRevenue `json:"bottom_revenue"`
	DelayMarkers  []CityDelay   `json:"delay_markers"`
	DelayRange    DelayRange    `json:"delay_range"`
	DelayDensity  []HeatPoint   `json:"delay_density"`
}
