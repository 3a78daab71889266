package kpalette

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting clustering metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordIteration is called after each assign+update pass.
	RecordIteration(duration time.Duration, inertia float64, reassigned int)

	// RecordEmptyCluster is called when count clusters received no pixels in a pass.
	RecordEmptyCluster(count int)

	// RecordRun is called once per Cluster call, err is nil if successful.
	RecordRun(iterations int, converged bool, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIteration(time.Duration, float64, int) {}
func (NoopMetricsCollector) RecordEmptyCluster(int)                      {}
func (NoopMetricsCollector) RecordRun(int, bool, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount            atomic.Int64
	RunErrors           atomic.Int64
	ConvergedRuns       atomic.Int64
	RunTotalNanos       atomic.Int64
	IterationCount      atomic.Int64
	IterationTotalNanos atomic.Int64
	Reassigned          atomic.Int64
	EmptyClusters       atomic.Int64
	lastInertia         atomic.Uint64
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(duration time.Duration, inertia float64, reassigned int) {
	b.IterationCount.Add(1)
	b.IterationTotalNanos.Add(duration.Nanoseconds())
	b.Reassigned.Add(int64(reassigned))
	b.lastInertia.Store(math.Float64bits(inertia))
}

// RecordEmptyCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmptyCluster(count int) {
	b.EmptyClusters.Add(int64(count))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, converged bool, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
	if converged {
		b.ConvergedRuns.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
		ConvergedRuns:     b.ConvergedRuns.Load(),
		RunAvgNanos:       avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		IterationCount:    b.IterationCount.Load(),
		IterationAvgNanos: avg(b.IterationTotalNanos.Load(), b.IterationCount.Load()),
		Reassigned:        b.Reassigned.Load(),
		EmptyClusters:     b.EmptyClusters.Load(),
		LastInertia:       math.Float64frombits(b.lastInertia.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount          int64
	RunErrors         int64
	ConvergedRuns     int64
	RunAvgNanos       int64
	IterationCount    int64
	IterationAvgNanos int64
	Reassigned        int64
	EmptyClusters     int64
	LastInertia       float64
}
