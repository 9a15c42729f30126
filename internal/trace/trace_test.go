// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trace

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsLatencyPercentiles(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.StageCompleted(StageEvent{Stage: "search", Duration: time.Duration(i) * time.Millisecond})
	}

	snap := m.Snapshot()
	lat, ok := snap.Stages["search"]
	require.True(t, ok)
	assert.Equal(t, 100, lat.Count)
	assert.InDelta(t, 50, lat.P50, 1)
	assert.InDelta(t, 95, lat.P95, 1)
	assert.InDelta(t, 99, lat.P99, 1)
}

func TestMetricsErrorsCounted(t *testing.T) {
	m := NewMetrics()
	m.StageCompleted(StageEvent{Stage: "summarize", Duration: time.Millisecond, Err: fmt.Errorf("boom")})
	m.StageCompleted(StageEvent{Stage: "summarize", Duration: time.Millisecond})

	snap := m.Snapshot()
	assert.Equal(t, float64(1), snap.Counters["summarize_errors"])
	assert.Equal(t, 2, snap.Stages["summarize"].Count)
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.Observe("documents_retrieved", 12)
	m.Observe("documents_retrieved", 8)
	m.Set("citation_coverage", 0.85)

	snap := m.Snapshot()
	assert.Equal(t, float64(20), snap.Counters["documents_retrieved"])
	assert.Equal(t, 0.85, snap.Counters["citation_coverage"])
}

func TestMetricsExportJSON(t *testing.T) {
	m := NewMetrics()
	m.StageCompleted(StageEvent{Stage: "verify", Duration: 5 * time.Millisecond})
	m.Set("citation_coverage", 1)

	data, err := m.ExportJSON()
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Contains(t, snap.Stages, "verify")
	assert.Equal(t, float64(1), snap.Counters["citation_coverage"])
}

func TestMetricsConcurrentUse(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.StageCompleted(StageEvent{Stage: "chunk", Duration: time.Millisecond})
				m.Observe("chunks_created", 1)
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, 800, snap.Stages["chunk"].Count)
	assert.Equal(t, float64(800), snap.Counters["chunks_created"])
}

func TestMultiSinkFansOut(t *testing.T) {
	m1, m2 := NewMetrics(), NewMetrics()
	multi := MultiSink{m1, m2}
	multi.StageStarted("terms")
	multi.StageCompleted(StageEvent{Stage: "terms", Duration: time.Millisecond})

	assert.Equal(t, 1, m1.Snapshot().Stages["terms"].Count)
	assert.Equal(t, 1, m2.Snapshot().Stages["terms"].Count)
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.Set("x", 1)
	snap := m.Snapshot()
	snap.Counters["x"] = 99

	assert.Equal(t, float64(1), m.Snapshot().Counters["x"])
}
