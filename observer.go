package kpalette

import (
	"context"
	"time"

	"github.com/hupe1980/kpalette/internal/kmeans"
	"golang.org/x/time/rate"
)

// Snapshot is the clustering state after one assign+update pass.
//
// Centroids holds the updated centroids; Assignments holds the assignment made
// against the centroids of the previous pass. Slices are only valid for the
// duration of the OnIteration call and must not be modified.
type Snapshot struct {
	// Iteration is zero-based.
	Iteration     int
	Centroids     []ColorVector
	Assignments   []int
	Inertia       float64
	Shift         float64
	Reassigned    int
	EmptyClusters []int
	Converged     bool
	Width         int
	Height        int
	Channels      int
}

// Observer receives a Snapshot after every pass. Returning an error stops the run.
type Observer interface {
	OnIteration(ctx context.Context, s *Snapshot) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, s *Snapshot) error

// OnIteration implements Observer.
func (f ObserverFunc) OnIteration(ctx context.Context, s *Snapshot) error {
	return f(ctx, s)
}

// runObserver fans engine iterations out to metrics and observers.
type runObserver struct {
	observers []Observer
	metrics   MetricsCollector
	width     int
	height    int
	channels  int
	last      time.Time
}

func (r *runObserver) observe(ctx context.Context, it *kmeans.Iteration) error {
	now := time.Now()
	r.metrics.RecordIteration(now.Sub(r.last), it.Inertia, it.Reassigned)
	r.last = now
	if len(it.Empty) > 0 {
		r.metrics.RecordEmptyCluster(len(it.Empty))
	}

	s := &Snapshot{
		Iteration:     it.Index,
		Centroids:     splitCentroids(it.Centroids, r.channels),
		Assignments:   it.Assignments,
		Inertia:       it.Inertia,
		Shift:         it.Shift,
		Reassigned:    it.Reassigned,
		EmptyClusters: it.Empty,
		Converged:     it.Converged,
		Width:         r.width,
		Height:        r.height,
		Channels:      r.channels,
	}

	for _, obs := range r.observers {
		if err := obs.OnIteration(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// progressLogger logs every pass at DEBUG, empty clusters at WARN and a
// progress line at INFO at most once per second.
type progressLogger struct {
	logger        *Logger
	maxIterations int
	sometimes     rate.Sometimes
}

func newProgressLogger(logger *Logger, maxIterations int) *progressLogger {
	return &progressLogger{
		logger:        logger,
		maxIterations: maxIterations,
		sometimes:     rate.Sometimes{First: 1, Interval: time.Second},
	}
}

func (p *progressLogger) OnIteration(ctx context.Context, s *Snapshot) error {
	p.logger.LogIteration(ctx, s)
	if len(s.EmptyClusters) > 0 {
		p.logger.LogEmptyClusters(ctx, s.Iteration, s.EmptyClusters)
	}
	p.sometimes.Do(func() {
		p.logger.InfoContext(ctx, "clustering progress",
			"iteration", s.Iteration+1,
			"max_iterations", p.maxIterations,
			"shift", s.Shift,
		)
	})
	return nil
}
