package telemetry

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taller/photovault/common/logger"
)

// Telemetry holds observability components
type Telemetry struct {
	log         *logger.Logger
	pprofAddr   string
	metricsAddr string
	enablePprof bool

	registry *prometheus.Registry

	UploadsTotal     *prometheus.CounterVec
	UploadBytes      prometheus.Histogram
	UploadFailures   *prometheus.CounterVec
	DeletesTotal     prometheus.Counter
	OrphanedBlobs    prometheus.Counter
	NotifyFailures   prometheus.Counter
}

// New creates telemetry components and registers the service metrics
func New(pprofPort, metricsPort int, enablePprof bool, log *logger.Logger) *Telemetry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	t := &Telemetry{
		log:         log,
		pprofAddr:   fmt.Sprintf("localhost:%d", pprofPort),
		metricsAddr: fmt.Sprintf(":%d", metricsPort),
		enablePprof: enablePprof,
		registry:    registry,
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photovault_uploads_total",
			Help: "Photos persisted, by stage.",
		}, []string{"stage"}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photovault_upload_bytes",
			Help:    "Size distribution of uploaded photos.",
			Buckets: prometheus.ExponentialBuckets(64<<10, 2, 8), // 64KiB..8MiB
		}),
		UploadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photovault_upload_failures_total",
			Help: "Upload batches aborted, by failure kind.",
		}, []string{"kind"}),
		DeletesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photovault_deletes_total",
			Help: "Photo records deleted.",
		}),
		OrphanedBlobs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photovault_orphaned_blobs_total",
			Help: "Blob deletions that failed and were tolerated.",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photovault_notification_failures_total",
			Help: "Notification attempts that failed and were swallowed.",
		}),
	}

	registry.MustRegister(
		t.UploadsTotal,
		t.UploadBytes,
		t.UploadFailures,
		t.DeletesTotal,
		t.OrphanedBlobs,
		t.NotifyFailures,
	)

	return t
}

// Start starts the metrics endpoint and, when enabled, the pprof server
func (t *Telemetry) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))

	go func() {
		t.log.Info("metrics server starting", "addr", t.metricsAddr)
		if err := http.ListenAndServe(t.metricsAddr, mux); err != nil {
			t.log.Error("metrics server error", "error", err)
		}
	}()

	if t.enablePprof {
		go func() {
			t.log.Info("pprof server starting", "addr", t.pprofAddr)
			if err := http.ListenAndServe(t.pprofAddr, nil); err != nil {
				t.log.Error("pprof server error", "error", err)
			}
		}()
	}

	return nil
}
