package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/UnknownOlympus/meridian/internal/models"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChartKind names one of the two revenue charts.
type ChartKind string

const (
	ChartTop    ChartKind = "top"
	ChartBottom ChartKind = "bottom"
)

var ErrUnknownChart = errors.New("unknown revenue chart")

const (
	chartWidth  = 7.5 * vg.Inch
	chartHeight = 6 * vg.Inch
)

var (
	barWidth = vg.Points(14)

	topHighlight    = color.RGBA{R: 0x39, G: 0x74, B: 0xfe, A: 0xff}
	topFill         = color.RGBA{R: 0x9a, G: 0xc9, B: 0xff, A: 0xff}
	bottomHighlight = color.RGBA{R: 0xe5, G: 0x20, B: 0x20, A: 0xff}
	bottomFill      = color.RGBA{R: 0xfa, G: 0xa8, B: 0xa8, A: 0xff}
)

// ParseChartKind validates a chart name taken from a request path.
func ParseChartKind(value string) (ChartKind, error) {
	switch kind := ChartKind(value); kind {
	case ChartTop, ChartBottom:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChart, value)
	}
}

// FormatMillions renders a revenue tick in millions of reais.
func FormatMillions(v float64) string {
	return fmt.Sprintf("R$%.1fJt", v/1_000_000)
}

// RevenueChart draws a horizontal bar chart of a revenue view. The first
// entry is drawn on top in the highlight colour. The bottom chart grows
// right to left.
func RevenueChart(kind ChartKind, view []models.CityRevenue) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Total revenue (BRL)"
	p.Y.Label.Text = "City"
	p.X.Tick.Marker = plot.TickerFunc(millionTicks)

	var highlight, fill color.Color
	switch kind {
	case ChartTop:
		p.Title.Text = fmt.Sprintf("Top %d cities by revenue (million BRL)", len(view))
		highlight, fill = topHighlight, topFill
	case ChartBottom:
		p.Title.Text = fmt.Sprintf("Bottom %d cities by revenue (BRL)", len(view))
		highlight, fill = bottomHighlight, bottomFill
		p.X.Scale = plot.InvertedScale{Normalizer: p.X.Scale}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}

	if len(view) == 0 {
		return p, nil
	}

	// Nominal rows count from the bottom, so the ranking is laid out reversed.
	n := len(view)
	names := make([]string, n)
	first := make(plotter.Values, n)
	rest := make(plotter.Values, n)
	for rank, entry := range view {
		y := n - 1 - rank
		names[y] = entry.City
		if rank == 0 {
			first[y] = entry.Revenue
		} else {
			rest[y] = entry.Revenue
		}
	}

	for _, series := range []struct {
		values plotter.Values
		color  color.Color
	}{{first, highlight}, {rest, fill}} {
		bars, err := plotter.NewBarChart(series.values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to build bar chart: %w", err)
		}
		bars.Horizontal = true
		bars.Color = series.color
		bars.LineStyle.Width = 0
		p.Add(bars)
	}
	p.NominalY(names...)

	return p, nil
}

// WriteRevenuePNG renders the chart as a PNG image to w.
func WriteRevenuePNG(w io.Writer, kind ChartKind, view []models.CityRevenue) error {
	p, err := RevenueChart(kind, view)
	if err != nil {
		return err
	}

	img, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	if _, err = img.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	return nil
}

func millionTicks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = FormatMillions(ticks[i].Value)
		}
	}
	return ticks
}
