package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RenderPasses      *prometheus.CounterVec
	RenderSeconds     prometheus.Histogram
	SourceLoadSeconds *prometheus.HistogramVec
	TableRows         prometheus.Gauge
	UnlocatedRows     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RenderPasses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_render_passes_total",
			Help: "Total number of dashboard render passes.",
		}, []string{"status"}),
		RenderSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_render_duration_seconds",
			Help:    "Duration of a full render pass, from table load to finished views.",
			Buckets: prometheus.DefBuckets,
		}),
		SourceLoadSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meridian_source_load_duration_seconds",
			Help:    "Duration of loading the order table from its source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		TableRows: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "meridian_table_rows",
			Help: "Number of order rows loaded by the latest render pass.",
		}),
		UnlocatedRows: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "meridian_rows_without_coordinates_total",
			Help: "Total number of order rows excluded from map views for lacking coordinates.",
		}),
	}
}
