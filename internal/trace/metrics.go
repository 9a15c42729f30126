// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trace

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Metrics aggregates stage latencies and pipeline counters. It doubles as
// a Sink so it can be wired next to the logging sink. Safe for concurrent
// use.
type Metrics struct {
	mu        sync.Mutex
	latencies map[string][]time.Duration
	counters  map[string]float64
}

var _ Sink = (*Metrics)(nil)

// NewMetrics returns an empty registry.
func NewMetrics() *Metrics {
	return &Metrics{
		latencies: make(map[string][]time.Duration),
		counters:  make(map[string]float64),
	}
}

func (m *Metrics) StageStarted(_ string) {}

func (m *Metrics) StageCompleted(ev StageEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies[ev.Stage] = append(m.latencies[ev.Stage], ev.Duration)
	if ev.Err != nil {
		m.counters[ev.Stage+"_errors"]++
	}
}

// Observe records a named scalar sample, accumulating into a counter.
func (m *Metrics) Observe(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

// Set records a named scalar gauge, overwriting any prior value.
func (m *Metrics) Set(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = value
}

// StageLatency summarizes one stage's latency distribution in
// milliseconds.
type StageLatency struct {
	Count int     `json:"count"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
}

// Snapshot is the exported metrics state.
type Snapshot struct {
	Stages   map[string]StageLatency `json:"stages"`
	Counters map[string]float64      `json:"counters"`
}

// Snapshot returns a copy of the current state.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Stages:   make(map[string]StageLatency, len(m.latencies)),
		Counters: make(map[string]float64, len(m.counters)),
	}
	for stage, samples := range m.latencies {
		snap.Stages[stage] = summarize(samples)
	}
	for name, v := range m.counters {
		snap.Counters[name] = v
	}
	return snap
}

// ExportJSON renders the snapshot as indented JSON.
func (m *Metrics) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}

// summarize computes percentile latencies over a sample set.
func summarize(samples []time.Duration) StageLatency {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return StageLatency{
		Count: len(sorted),
		P50:   percentile(sorted, 0.50),
		P95:   percentile(sorted, 0.95),
		P99:   percentile(sorted, 0.99),
	}
}

// percentile uses nearest-rank on a sorted sample set.
func percentile(sorted []time.Duration, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return float64(sorted[rank]) / float64(time.Millisecond)
}
