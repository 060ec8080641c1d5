package convert

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records conversion counters and timings. A nil *Metrics is valid and records nothing.
type Metrics struct {
	images   *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates and registers conversion metrics with 'reg'.
func NewMetrics(reg prometheus.Registerer) *Metrics {

	f := promauto.With(reg)

	m := &Metrics{
		images: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photos_kmz",
			Name:      "images_total",
			Help:      "Total images considered for conversion, by outcome",
		}, []string{"outcome"}),

		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photos_kmz",
			Name:      "skipped_total",
			Help:      "Total images skipped, by reason",
		}, []string{"reason"}),

		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "photos_kmz",
			Name:      "convert_duration_seconds",
			Help:      "Duration of batch conversions",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	return m
}

func (m *Metrics) processed() {

	if m == nil {
		return
	}

	m.images.WithLabelValues(string(Processed)).Inc()
}

func (m *Metrics) skip(reason SkipReason) {

	if m == nil {
		return
	}

	m.images.WithLabelValues(string(Skipped)).Inc()
	m.skipped.WithLabelValues(reason.String()).Inc()
}

func (m *Metrics) observe(t1 time.Time) {

	if m == nil {
		return
	}

	m.duration.Observe(time.Since(t1).Seconds())
}
