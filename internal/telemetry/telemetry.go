// Package telemetry carries error reports out of the migration and export pipelines.
// Reporting is fire-and-forget: a Reporter never blocks the caller and never fails.
package telemetry

import (
	"log/slog"
	"maps"
	"slices"
)

type Reporter interface {
	Report(err error, fields map[string]string)
}

// LogReporter writes reports to the structured log only.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(err error, fields map[string]string) {
	attrs := make([]any, 0, len(fields)+1)
	attrs = append(attrs, slog.Any("error", err))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		attrs = append(attrs, slog.String(k, fields[k]))
	}
	r.logger.Warn("reported anomaly", attrs...)
}

// Nop discards every report.
type Nop struct{}

func (Nop) Report(error, map[string]string) {}
