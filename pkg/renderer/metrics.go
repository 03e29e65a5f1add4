package renderer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports render progress to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	frames        prometheus.Counter
	samples       *prometheus.CounterVec
	steps         prometheus.Counter
	frameDuration prometheus.Histogram
	sampleIndex   prometheus.Gauge
	resets        prometheus.Counter
}

// NewMetrics registers render metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "blackhole_frames_total",
			Help: "Total frames rendered",
		}),
		samples: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blackhole_samples_total",
			Help: "Total kernel samples by photon outcome",
		}, []string{"outcome"}),
		steps: factory.NewCounter(prometheus.CounterOpts{
			Name: "blackhole_integration_steps_total",
			Help: "Total geodesic integration steps",
		}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "blackhole_frame_duration_seconds",
			Help:    "Frame render duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}),
		sampleIndex: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blackhole_sample_index",
			Help: "Current progressive sample index",
		}),
		resets: factory.NewCounter(prometheus.CounterOpts{
			Name: "blackhole_accumulation_resets_total",
			Help: "Times the accumulation buffer was reset",
		}),
	}
}

// ObserveFrame records a finished frame
func (m *Metrics) ObserveFrame(fs FrameStats) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.samples.WithLabelValues("absorbed").Add(float64(fs.Samples.Absorbed))
	m.samples.WithLabelValues("escaped").Add(float64(fs.Samples.Escaped))
	m.samples.WithLabelValues("discarded").Add(float64(fs.Samples.Discarded))
	m.samples.WithLabelValues("invalid").Add(float64(fs.Samples.Invalid))
	m.steps.Add(float64(fs.Samples.TotalSteps))
	m.frameDuration.Observe(fs.Duration.Seconds())
	m.sampleIndex.Set(float64(fs.SampleIndex))
}

// ObserveReset records an accumulation reset
func (m *Metrics) ObserveReset() {
	if m == nil {
		return
	}
	m.resets.Inc()
	m.sampleIndex.Set(0)
}
