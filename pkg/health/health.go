// Package health keeps in-memory operational telemetry for the daemon:
// counters plus capped buffers of recent debug logs, error reports and timing
// samples. Nothing is persisted; a restart starts the dashboard clean.
package health

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	maxDebugLogs    = 100
	maxErrorReports = 50
	maxPerfSamples  = 50
)

// LogEntry is one debug log line.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// ErrorReport is one recorded error with its origin.
type ErrorReport struct {
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

// PerfSample is one timed operation.
type PerfSample struct {
	Time       time.Time `json:"time"`
	Name       string    `json:"name"`
	DurationMS int64     `json:"durationMs"`
}

// Monitor collects telemetry. Safe for concurrent use.
type Monitor struct {
	mu        sync.Mutex
	startedAt time.Time
	counters  map[string]int64
	logs      []LogEntry
	errors    []ErrorReport
	samples   []PerfSample
}

// NewMonitor returns an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		startedAt: time.Now(),
		counters:  map[string]int64{},
	}
}

func appendCapped[T any](buf []T, v T, max int) []T {
	buf = append(buf, v)
	if len(buf) > max {
		buf = buf[len(buf)-max:]
	}
	return buf
}

// Count increments the named counter.
func (m *Monitor) Count(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Debugf appends a formatted debug log line.
func (m *Monitor) Debugf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = appendCapped(m.logs, LogEntry{
		Time:    time.Now(),
		Message: fmt.Sprintf(format, args...),
	}, maxDebugLogs)
}

// RecordError appends an error report.
func (m *Monitor) RecordError(source string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters["errors"]++
	m.errors = appendCapped(m.errors, ErrorReport{
		Time:    time.Now(),
		Source:  source,
		Message: err.Error(),
	}, maxErrorReports)
}

// RecordDuration appends a timing sample.
func (m *Monitor) RecordDuration(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = appendCapped(m.samples, PerfSample{
		Time:       time.Now(),
		Name:       name,
		DurationMS: d.Milliseconds(),
	}, maxPerfSamples)
}

// Logs returns a copy of the recent debug log lines.
func (m *Monitor) Logs() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.logs))
	copy(out, m.logs)
	return out
}

// Errors returns a copy of the recent error reports.
func (m *Monitor) Errors() []ErrorReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ErrorReport, len(m.errors))
	copy(out, m.errors)
	return out
}

// Report is a point-in-time snapshot of the monitor.
type Report struct {
	StartedAt time.Time        `json:"startedAt"`
	UptimeSec int64            `json:"uptimeSec"`
	Counters  map[string]int64 `json:"counters"`
	DebugLogs []LogEntry       `json:"debugLogs"`
	Errors    []ErrorReport    `json:"errors"`
	Samples   []PerfSample     `json:"samples"`
}

// Snapshot copies the current state into a Report.
func (m *Monitor) Snapshot() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	return Report{
		StartedAt: m.startedAt,
		UptimeSec: int64(time.Since(m.startedAt).Seconds()),
		Counters:  counters,
		DebugLogs: append([]LogEntry(nil), m.logs...),
		Errors:    append([]ErrorReport(nil), m.errors...),
		Samples:   append([]PerfSample(nil), m.samples...),
	}
}

// Export renders the snapshot as indented JSON for the health report export.
func (m *Monitor) Export() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}
