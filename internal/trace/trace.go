// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trace observes pipeline execution. A Sink receives one event per
// stage; the Metrics registry aggregates latencies and counters and exports
// a JSON snapshot.
package trace

import (
	"log/slog"
	"time"
)

// StageEvent describes one completed pipeline stage.
type StageEvent struct {
	// Stage is the stage name (terms, search, chunk, summarize, verify).
	Stage string `json:"stage"`

	// InputSummary and OutputSummary are short human-readable descriptions
	// of what went in and came out, e.g. "12 terms".
	InputSummary  string `json:"input_summary"`
	OutputSummary string `json:"output_summary"`

	// Duration is the stage wall time.
	Duration time.Duration `json:"duration"`

	// Err is the stage error, nil on success.
	Err error `json:"-"`
}

// Sink receives stage events. Implementations must be safe for concurrent
// use across pipeline invocations.
type Sink interface {
	StageStarted(stage string)
	StageCompleted(ev StageEvent)
}

// NoopSink discards all events.
type NoopSink struct{}

var _ Sink = (*NoopSink)(nil)

func (NoopSink) StageStarted(_ string)       {}
func (NoopSink) StageCompleted(_ StageEvent) {}

// SlogSink logs stage events through a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

var _ Sink = (*SlogSink)(nil)

// NewSlogSink wraps a logger as a tracing sink.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) StageStarted(stage string) {
	s.Logger.Debug("stage started", "stage", stage)
}

func (s *SlogSink) StageCompleted(ev StageEvent) {
	if ev.Err != nil {
		s.Logger.Warn("stage completed with error",
			"stage", ev.Stage,
			"in", ev.InputSummary,
			"out", ev.OutputSummary,
			"duration_ms", ev.Duration.Milliseconds(),
			"error", ev.Err)
		return
	}
	s.Logger.Info("stage completed",
		"stage", ev.Stage,
		"in", ev.InputSummary,
		"out", ev.OutputSummary,
		"duration_ms", ev.Duration.Milliseconds())
}

// MultiSink fans events out to several sinks.
type MultiSink []Sink

var _ Sink = (MultiSink)(nil)

func (m MultiSink) StageStarted(stage string) {
	for _, s := range m {
		s.StageStarted(stage)
	}
}

func (m MultiSink) StageCompleted(ev StageEvent) {
	for _, s := range m {
		s.StageCompleted(ev)
	}
}
