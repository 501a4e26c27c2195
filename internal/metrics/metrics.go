// Package metrics defines the Prometheus metrics of the scan engine.
//
// Metric naming follows Prometheus conventions: assetscan_ prefix, _total
// suffix for counters, _seconds suffix for duration histograms.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scan runs by kind (compliance | health) and
	// terminal status (ok | error).
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetscan_scans_total",
			Help: "Total number of scan runs by kind and status.",
		},
		[]string{"kind", "status"},
	)

	// ScanDurationSeconds is a histogram of scan duration by kind.
	ScanDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetscan_scan_duration_seconds",
			Help:    "Duration of scan runs in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		},
		[]string{"kind"},
	)

	// FindingsTotal counts findings by notification category.
	FindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetscan_findings_total",
			Help: "Total findings emitted by notification category.",
		},
		[]string{"category"},
	)

	// ActiveAlerts tracks the number of currently ACTIVE alert rows.
	ActiveAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assetscan_active_alerts",
			Help: "Number of currently active hardware alerts.",
		},
	)
)
