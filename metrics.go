package gofsh

import (
	"sync/atomic"
	"time"
)

// Metrics tracks export metrics using lock-free atomic counters, so a
// future parallel driver needs no changes here.
type Metrics struct {
	resourcesTotal atomic.Uint64
	rulesTotal     atomic.Uint64
	warningsTotal  atomic.Uint64
	skippedTotal   atomic.Uint64

	exportTimeTotal atomic.Uint64 // nanoseconds
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordResource records one processed resource.
func (m *Metrics) RecordResource() {
	m.resourcesTotal.Add(1)
}

// RecordRules records n emitted statements.
func (m *Metrics) RecordRules(n int) {
	m.rulesTotal.Add(uint64(n))
}

// RecordWarning records a degraded-but-recovered condition.
func (m *Metrics) RecordWarning() {
	m.warningsTotal.Add(1)
}

// RecordSkipped records a statement refused under the empty-value policy.
func (m *Metrics) RecordSkipped() {
	m.skippedTotal.Add(1)
}

// RecordExportTime accumulates wall time spent exporting.
func (m *Metrics) RecordExportTime(d time.Duration) {
	m.exportTimeTotal.Add(uint64(d.Nanoseconds()))
}

// Stats is a point-in-time snapshot of the metrics.
type Stats struct {
	Resources  uint64
	Rules      uint64
	Warnings   uint64
	Skipped    uint64
	ExportTime time.Duration
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Stats {
	return Stats{
		Resources:  m.resourcesTotal.Load(),
		Rules:      m.rulesTotal.Load(),
		Warnings:   m.warningsTotal.Load(),
		Skipped:    m.skippedTotal.Load(),
		ExportTime: time.Duration(m.exportTimeTotal.Load()),
	}
}
