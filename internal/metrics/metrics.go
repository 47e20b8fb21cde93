// Package metrics exports scan results as Prometheus metrics, either to a
// registry or to a node_exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/idelchi/diskinsight/internal/insight"
)

// Metrics holds the gauges describing the most recent scan.
type Metrics struct {
	registry *prometheus.Registry

	Files           prometheus.Gauge
	Directories     prometheus.Gauge
	Bytes           prometheus.Gauge
	Errors          prometheus.Gauge
	Duration        prometheus.Gauge
	DuplicateGroups prometheus.Gauge
	DuplicateWasted prometheus.Gauge
	ExtensionBytes  *prometheus.GaugeVec
	ExtensionFiles  *prometheus.GaugeVec
}

// New creates the metrics and registers them on a fresh registry.
// Every series carries a root label identifying the scan.
func New(root string) *Metrics {
	labels := prometheus.Labels{"root": root}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "diskinsight",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	m := &Metrics{
		registry:        prometheus.NewRegistry(),
		Files:           gauge("files", "Number of files recorded by the scan."),
		Directories:     gauge("directories", "Number of directories in the scanned tree."),
		Bytes:           gauge("bytes", "Total size of all recorded files in bytes."),
		Errors:          gauge("skipped_entries", "Entries skipped because they could not be read."),
		Duration:        gauge("scan_duration_seconds", "Wall-clock duration of the scan."),
		DuplicateGroups: gauge("duplicate_groups", "Number of groups of files with identical content."),
		DuplicateWasted: gauge("duplicate_wasted_bytes", "Bytes freed by keeping one file per duplicate group."),
		ExtensionBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "diskinsight",
			Name:        "extension_bytes",
			Help:        "Total size of files per extension in bytes.",
			ConstLabels: labels,
		}, []string{"ext"}),
		ExtensionFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "diskinsight",
			Name:        "extension_files",
			Help:        "Number of files per extension.",
			ConstLabels: labels,
		}, []string{"ext"}),
	}

	m.registry.MustRegister(
		m.Files, m.Directories, m.Bytes, m.Errors, m.Duration,
		m.DuplicateGroups, m.DuplicateWasted, m.ExtensionBytes, m.ExtensionFiles,
	)

	return m
}

// Observe sets every gauge from a finished scan. Only the top extensions by
// size get their own series to bound cardinality.
func (m *Metrics) Observe(result *insight.Result, topExtensions int) {
	m.Files.Set(float64(len(result.Files)))
	m.Directories.Set(float64(len(result.Tree)))
	m.Bytes.Set(float64(result.CombinedSize))
	m.Errors.Set(float64(result.ErrorCount))
	m.Duration.Set(result.Elapsed.Seconds())

	groups := result.DuplicateGroups()

	var wasted uint64
	for _, g := range groups {
		wasted += g.Wasted()
	}

	m.DuplicateGroups.Set(float64(len(groups)))
	m.DuplicateWasted.Set(float64(wasted))

	m.ExtensionBytes.Reset()
	m.ExtensionFiles.Reset()

	for i, ftype := range result.TypesBySize {
		if topExtensions > 0 && i >= topExtensions {
			break
		}

		m.ExtensionBytes.WithLabelValues(ftype.Ext).Set(float64(ftype.Size))
		m.ExtensionFiles.WithLabelValues(ftype.Ext).Set(float64(len(ftype.Files)))
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in text exposition format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}

	return nil
}
