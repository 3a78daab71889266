package kpalette

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}

	m.RecordIteration(10*time.Millisecond, 100.5, 40)
	m.RecordIteration(30*time.Millisecond, 80.25, 2)
	m.RecordEmptyCluster(2)
	m.RecordRun(2, true, time.Second, nil)
	m.RecordRun(10, false, 3*time.Second, errors.New("boom"))

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.IterationCount)
	assert.Equal(t, (20 * time.Millisecond).Nanoseconds(), stats.IterationAvgNanos)
	assert.Equal(t, int64(42), stats.Reassigned)
	assert.Equal(t, int64(2), stats.EmptyClusters)
	assert.Equal(t, int64(2), stats.RunCount)
	assert.Equal(t, int64(1), stats.RunErrors)
	assert.Equal(t, int64(1), stats.ConvergedRuns)
	assert.Equal(t, (2 * time.Second).Nanoseconds(), stats.RunAvgNanos)
	assert.InDelta(t, 80.25, stats.LastInertia, 1e-12)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	stats := (&BasicMetricsCollector{}).GetStats()
	assert.Zero(t, stats.RunAvgNanos)
	assert.Zero(t, stats.IterationAvgNanos)
}
