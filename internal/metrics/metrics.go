// Package metrics records pictier activity in a Prometheus registry and
// exports it in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pictier/internal/pt"
)

const namespace = "pictier"

// Recorder implements pt.Recorder on its own registry so that several
// instances (one per test, say) never collide.
type Recorder struct {
	registry *prometheus.Registry

	ingested     *prometheus.CounterVec
	promoted     *prometheus.CounterVec
	deleted      *prometheus.CounterVec
	failures     *prometheus.CounterVec
	dropped      prometheus.Counter
	thumbnailDur prometheus.Histogram
	photos       *prometheus.GaugeVec
	lastRun      prometheus.Gauge
}

var _ pt.Recorder = (*Recorder)(nil)

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		ingested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingested_total",
				Help:      "Files accepted by ingestion, by result",
			},
			[]string{"result"}, // "new", "duplicate"
		),
		promoted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "promoted_total",
				Help:      "Successful tier moves, by destination tier",
			},
			[]string{"tier"},
		),
		deleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deleted_total",
				Help:      "Deleted photos, by mode",
			},
			[]string{"mode"}, // "soft", "permanent"
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Failed operations, by operation",
			},
			[]string{"operation"},
		),
		dropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "background_tasks_dropped_total",
				Help:      "Background tasks dropped because the queue was full",
			},
		),
		thumbnailDur: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "thumbnail_render_duration_seconds",
				Help:      "Time to decode, resize and encode one thumbnail",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		photos: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "photos",
				Help:      "Photos in the catalog, by tier (trash counted as \"trash\")",
			},
			[]string{"tier"},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last command finished",
			},
		),
	}
}

func (r *Recorder) Ingested(duplicate bool) {
	result := "new"
	if duplicate {
		result = "duplicate"
	}
	r.ingested.WithLabelValues(result).Inc()
}

func (r *Recorder) Promoted(tier pt.Tier) {
	r.promoted.WithLabelValues(string(tier)).Inc()
}

func (r *Recorder) Deleted(permanent bool) {
	mode := "soft"
	if permanent {
		mode = "permanent"
	}
	r.deleted.WithLabelValues(mode).Inc()
}

func (r *Recorder) ThumbnailRendered(d time.Duration) {
	r.thumbnailDur.Observe(d.Seconds())
}

func (r *Recorder) TaskDropped() {
	r.dropped.Inc()
}

func (r *Recorder) Failed(op string) {
	r.failures.WithLabelValues(op).Inc()
}

// ObserveStatus sets the per-tier photo gauges from a library status.
func (r *Recorder) ObserveStatus(status *pt.LibraryStatus) {
	for _, tc := range status.Tiers {
		r.photos.WithLabelValues(string(tc.Tier)).Set(float64(tc.Count))
	}
	r.photos.WithLabelValues("trash").Set(float64(status.Trashed))
}

// WriteTextfile stamps the run time and writes every metric to path in
// the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string, now time.Time) error {
	r.lastRun.Set(float64(now.Unix()))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
