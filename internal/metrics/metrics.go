package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_imports_total",
		Help: "Schedule imports by outcome.",
	}, []string{"status"})

	importedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_imported_events_total",
		Help: "Events written by imports, split into created and updated.",
	}, []string{"kind"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_import_duration_seconds",
		Help:    "Wall time of a schedule import, lock to commit.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)

// Import outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusLocked  = "locked"
)

// ObserveImport records one finished import.
func ObserveImport(status string, created, updated int, took time.Duration) {
	importsTotal.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		importedEvents.WithLabelValues("created").Add(float64(created))
		importedEvents.WithLabelValues("updated").Add(float64(updated))
	}
	importDuration.Observe(took.Seconds())
}

// Handler serves the default registry at /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
