package kpalette

import (
	"fmt"
	"strings"
)

// EmptyClusterPolicy selects what happens to a centroid that received no pixels.
type EmptyClusterPolicy int

const (
	// HoldPrevious keeps the centroid of the previous iteration.
	HoldPrevious EmptyClusterPolicy = iota
	// Reseed replaces the centroid with a randomly drawn pixel color.
	Reseed
)

func (p EmptyClusterPolicy) String() string {
	switch p {
	case HoldPrevious:
		return "hold"
	case Reseed:
		return "reseed"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParseEmptyClusterPolicy parses "hold" or "reseed".
func ParseEmptyClusterPolicy(s string) (EmptyClusterPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hold", "hold-previous":
		return HoldPrevious, nil
	case "reseed":
		return Reseed, nil
	default:
		return 0, fmt.Errorf("unknown empty cluster policy %q", s)
	}
}

// RandSource is the random source used for initialization and re-seeding.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type options struct {
	maxIterations int
	epsilon       float64
	seed          uint64
	seedSet       bool
	rand          RandSource
	emptyCluster  EmptyClusterPolicy
	workers       int
	logger        *Logger
	metrics       MetricsCollector
	observers     []Observer
}

func defaultOptions() options {
	return options{
		maxIterations: DefaultMaxIterations,
		epsilon:       DefaultEpsilon,
		emptyCluster:  HoldPrevious,
		workers:       1,
		logger:        NoopLogger(),
		metrics:       NoopMetricsCollector{},
	}
}

// Option configures Cluster.
type Option func(*options)

// WithMaxIterations bounds the number of assign+update passes.
// Values below 1 are rejected by Cluster with ErrInvalidMaxIterations.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithEpsilon sets the centroid shift below which a cluster counts as stable.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// WithSeed seeds the PCG random source used for initialization and re-seeding.
// Two runs with the same seed and input produce identical results.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithRandSource uses r instead of an internally created source. It takes
// precedence over WithSeed.
func WithRandSource(r RandSource) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithEmptyClusterPolicy selects the empty cluster handling.
func WithEmptyClusterPolicy(p EmptyClusterPolicy) Option {
	return func(o *options) {
		o.emptyCluster = p
	}
}

// WithWorkers shards the assignment and accumulation steps across n goroutines.
//
// Shards are contiguous pixel ranges; per-shard sums are merged before the
// division, so for integer channel values the result is identical to the
// single-threaded run. n <= 1 disables sharding (the default).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kpalette.BasicMetricsCollector{}
//	res, _ := kpalette.Cluster(ctx, ps, 8, kpalette.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithObserver adds observers that receive a Snapshot after every pass.
func WithObserver(obs ...Observer) Option {
	return func(o *options) {
		for _, ob := range obs {
			if ob != nil {
				o.observers = append(o.observers, ob)
			}
		}
	}
}
