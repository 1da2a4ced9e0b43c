// Package metrics defines the prometheus collectors updated by linerotate.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors for linerotate.Writer.
var (
	WrittenBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linerotate_written_bytes_total",
		Help: "Cumulative number of bytes appended to the output file.",
	})
	WrittenLinesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linerotate_written_lines_total",
		Help: "Cumulative number of records appended to the output file.",
	})
	RotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linerotate_rotations_total",
		Help: "Cumulative number of rotation events.",
	})
	RenameFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linerotate_rename_failures_total",
		Help: "Cumulative number of rotation steps whose rename failed.",
	})
	LockWaitSecondsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linerotate_lock_wait_seconds_total",
		Help: "Cumulative number of seconds spent waiting for the lock file.",
	})
	OutputSizeBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "linerotate_output_size_bytes",
		Help: "Bytes appended to the active output file since it was last opened fresh.",
	})
)

// Collectors returns all linerotate collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		WrittenBytesTotal,
		WrittenLinesTotal,
		RotationsTotal,
		RenameFailuresTotal,
		LockWaitSecondsTotal,
		OutputSizeBytes,
	}
}

// Register registers all collectors with r.
func Register(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
