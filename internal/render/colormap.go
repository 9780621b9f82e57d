package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// ylOrRd9 is the nine class yellow-orange-red sequential scheme.
var ylOrRd9 = []color.RGBA{
	{R: 0xff, G: 0xff, B: 0xcc, A: 0xff},
	{R: 0xff, G: 0xed, B: 0xa0, A: 0xff},
	{R: 0xfe, G: 0xd9, B: 0x76, A: 0xff},
	{R: 0xfe, G: 0xb2, B: 0x4c, A: 0xff},
	{R: 0xfd, G: 0x8d, B: 0x3c, A: 0xff},
	{R: 0xfc, G: 0x4e, B: 0x2a, A: 0xff},
	{R: 0xe3, G: 0x1a, B: 0x1c, A: 0xff},
	{R: 0xbd, G: 0x00, B: 0x26, A: 0xff},
	{R: 0x80, G: 0x00, B: 0x26, A: 0xff},
}

// ColorScale maps delay values linearly onto the YlOrRd scheme.
// Values outside [Min, Max] are clamped.
type ColorScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewColorScale derives the scale from a delay range alone.
func NewColorScale(rng models.DelayRange) ColorScale {
	if !rng.Valid {
		return ColorScale{}
	}
	return ColorScale{Min: rng.Min, Max: rng.Max}
}

// Color returns the interpolated colour for v. A degenerate scale
// (Min == Max) yields the first colour.
func (cs ColorScale) Color(v float64) color.RGBA {
	span := cs.Max - cs.Min
	if span <= 0 || math.IsNaN(v) || v <= cs.Min {
		return ylOrRd9[0]
	}
	if v >= cs.Max {
		return ylOrRd9[len(ylOrRd9)-1]
	}

	pos := (v - cs.Min) / span * float64(len(ylOrRd9)-1)
	idx := int(math.Floor(pos))
	if idx >= len(ylOrRd9)-1 {
		return ylOrRd9[len(ylOrRd9)-1]
	}
	frac := pos - float64(idx)

	lo, hi := ylOrRd9[idx], ylOrRd9[idx+1]
	return color.RGBA{
		R: lerp(lo.R, hi.R, frac),
		G: lerp(lo.G, hi.G, frac),
		B: lerp(lo.B, hi.B, frac),
		A: 0xff,
	}
}

// Hex returns Color(v) as #rrggbb.
func (cs ColorScale) Hex(v float64) string {
	return hex(cs.Color(v))
}

// Stops returns the scheme colours paired with the values they sit at, for legends.
func (cs ColorScale) Stops() []Stop {
	stops := make([]Stop, len(ylOrRd9))
	step := (cs.Max - cs.Min) / float64(len(ylOrRd9)-1)
	for i, c := range ylOrRd9 {
		stops[i] = Stop{Value: cs.Min + step*float64(i), Color: hex(c)}
	}
	return stops
}

// Stop is one legend entry.
type Stop struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
