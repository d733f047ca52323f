// Package metrics exposes batch run counters for the node_exporter textfile
// collector.
package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"recoder/internal/batch"
	"recoder/internal/lifecycle"
)

const namespace = "recoder"

// Collector holds the run metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	FilesTotal     *prometheus.CounterVec
	InputBytes     prometheus.Counter
	OutputBytes    prometheus.Counter
	EncodeDuration prometheus.Histogram
	LastRun        prometheus.Gauge
	LastRunFiles   *prometheus.GaugeVec
}

// New creates a collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		FilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files processed by outcome and failure reason.",
		}, []string{"outcome", "reason"}),
		InputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Bytes of source files that were encoded and archived.",
		}),
		OutputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes of finalized encoded files.",
		}),
		EncodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Wall time of successful ffmpeg encodes.",
			Buckets:   []float64{30, 60, 300, 600, 1200, 1800, 3600, 7200, 14400},
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch run finished.",
		}),
		LastRunFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_files",
			Help:      "Files in the last batch run by outcome.",
		}, []string{"outcome"}),
	}
	c.registry.MustRegister(
		c.FilesTotal,
		c.InputBytes,
		c.OutputBytes,
		c.EncodeDuration,
		c.LastRun,
		c.LastRunFiles,
	)
	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Record implements batch.Recorder.
func (c *Collector) Record(_ context.Context, outcome lifecycle.Outcome) error {
	c.FilesTotal.WithLabelValues(outcome.Label(), string(outcome.Reason)).Inc()
	if outcome.Succeeded() {
		c.InputBytes.Add(float64(outcome.InputBytes))
		c.OutputBytes.Add(float64(outcome.OutputBytes))
		c.EncodeDuration.Observe(outcome.EncodeDuration.Seconds())
	}
	return nil
}

// ObserveRun records the totals of a finished run.
func (c *Collector) ObserveRun(summary batch.Summary) {
	if !summary.FinishedAt.IsZero() {
		c.LastRun.Set(float64(summary.FinishedAt.Unix()))
	}
	c.LastRunFiles.WithLabelValues("encoded").Set(float64(summary.Encoded))
	c.LastRunFiles.WithLabelValues("planned").Set(float64(summary.Planned))
	c.LastRunFiles.WithLabelValues("skipped").Set(float64(summary.Skipped))
	c.LastRunFiles.WithLabelValues("failed").Set(float64(summary.Failed))
}

// WriteTextfile writes the registry in text exposition format to path. The
// file is replaced atomically by the client library.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
