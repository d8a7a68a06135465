package metrics

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Purge reasons for the cv_purged_total counter.
const (
	PurgeExpired   = "expired"
	PurgePermanent = "permanent"
	PurgeEmptied   = "emptied"
)

var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)

	cvSavedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cv_saved_total",
		Help: "Total CV snapshots created by save or duplicate",
	})
	cvTrashedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cv_trashed_total",
		Help: "Total CVs moved to the recycle bin",
	})
	cvRestoredTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cv_restored_total",
		Help: "Total CVs restored from the recycle bin",
	})
	cvPurgedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cv_purged_total",
		Help: "Total CVs removed from the recycle bin for good",
	}, []string{"reason"})
	storageErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cv_storage_errors_total",
		Help: "Storage reads or writes that failed and were degraded",
	}, []string{"op"})
	quotaRejectionsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cv_quota_rejections_total",
		Help: "Save attempts rejected by the tier limit",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncSaved increments the saved counter.
func IncSaved() { cvSavedTotal.Inc() }

// IncTrashed increments the trashed counter.
func IncTrashed() { cvTrashedTotal.Inc() }

// IncRestored increments the restored counter.
func IncRestored() { cvRestoredTotal.Inc() }

// AddPurged adds n purged entries for reason.
func AddPurged(reason string, n int) {
	if n <= 0 {
		return
	}
	cvPurgedTotal.WithLabelValues(reason).Add(float64(n))
}

// IncStorageError counts a degraded storage operation ("read" or "write").
func IncStorageError(op string) { storageErrorsTotal.WithLabelValues(op).Inc() }

// IncQuotaRejection counts a save refused by the tier limit.
func IncQuotaRejection() { quotaRejectionsTotal.Inc() }

// RegisterDB exports connection pool stats of db under name. Registering the
// same name twice is not an error.
func RegisterDB(db *sql.DB, name string) error {
	err := registry.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}

// Registry exposes the registry backing the handler, for tests and embedding.
func Registry() *prometheus.Registry { return registry }

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
