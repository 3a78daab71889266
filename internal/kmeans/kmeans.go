package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/kpalette/distance"
)

// DefaultEpsilon is the centroid shift below which a cluster is considered stable.
const DefaultEpsilon = 0.1

var (
	ErrInvalidK             = errors.New("kmeans: k must be at least 2")
	ErrNoVectors            = errors.New("kmeans: no vectors to cluster")
	ErrTooManyClusters      = errors.New("kmeans: k exceeds the number of vectors")
	ErrInvalidMaxIterations = errors.New("kmeans: max iterations must be positive")
	ErrInvalidEpsilon       = errors.New("kmeans: epsilon must be positive")
	ErrInvalidDimension     = errors.New("kmeans: invalid dimension")
	ErrNilRandSource        = errors.New("kmeans: random source is nil")
)

// RandSource is the random source used for initialization and re-seeding.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

// EmptyClusterPolicy selects what happens to a centroid that received no vectors.
type EmptyClusterPolicy int

const (
	// HoldPrevious keeps the centroid from the previous iteration.
	HoldPrevious EmptyClusterPolicy = iota
	// Reseed replaces the centroid with a randomly drawn vector.
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

// Iteration is the state after one assign+update pass.
// The slices are owned by the engine and must not be retained or modified.
type Iteration struct {
	Index       int
	Centroids   []float32
	Assignments []int
	Inertia     float64
	Shift       float64
	Reassigned  int
	Empty       []int
	Converged   bool
}

// ObserverFunc is called after every pass. A non-nil error stops the run.
type ObserverFunc func(ctx context.Context, it *Iteration) error

// Config configures an Engine.
type Config struct {
	K             int
	MaxIterations int
	Epsilon       float64
	EmptyCluster  EmptyClusterPolicy
	// Workers > 1 shards assignment and accumulation over contiguous vector ranges.
	Workers  int
	Rand     RandSource
	Observer ObserverFunc
}

// Result is the outcome of Run.
type Result struct {
	Centroids          []float32
	Assignments        []int
	Iterations         int
	Converged          bool
	Inertia            float64
	EmptyClusterEvents int
}

// Update is the outcome of a single update step.
type Update struct {
	Centroids []float32
	Converged bool
	// Shift is the largest distance any centroid moved.
	Shift float64
	Empty []int
}

// Engine runs k-means over flattened color vectors.
// An Engine must not be used concurrently.
type Engine struct {
	cfg  Config
	dist distance.Func
}

// New validates cfg and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.K < 2 {
		return nil, ErrInvalidK
	}
	if cfg.MaxIterations < 1 {
		return nil, ErrInvalidMaxIterations
	}
	if !(cfg.Epsilon > 0) {
		return nil, ErrInvalidEpsilon
	}
	if cfg.Rand == nil {
		return nil, ErrNilRandSource
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	distFunc, err := distance.Provider(distance.MetricL2)
	if err != nil {
		return nil, err
	}

	return &Engine{cfg: cfg, dist: distFunc}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func validateInput(vectors []float32, dim int) (int, error) {
	if dim < 1 || len(vectors)%dim != 0 {
		return 0, fmt.Errorf("%w: %d values with dimension %d", ErrInvalidDimension, len(vectors), dim)
	}
	n := len(vectors) / dim
	if n == 0 {
		return 0, ErrNoVectors
	}
	return n, nil
}

// Initialize samples k vectors uniformly at random, with replacement, as the
// starting centroids. Duplicate centroids are possible and allowed.
func (e *Engine) Initialize(vectors []float32, dim int) ([]float32, error) {
	n, err := validateInput(vectors, dim)
	if err != nil {
		return nil, err
	}

	k := e.cfg.K
	centroids := make([]float32, k*dim)
	for i := 0; i < k; i++ {
		idx := e.cfg.Rand.IntN(n)
		copy(centroids[i*dim:(i+1)*dim], vectors[idx*dim:(idx+1)*dim])
	}
	return centroids, nil
}

// Nearest returns the index of the centroid closest to vec and its squared
// distance. Ties go to the lowest index.
func Nearest(vec []float32, centroids []float32, dim int) (int, float32) {
	return nearest(distance.SquaredL2, vec, centroids, dim)
}

func nearest(dist distance.Func, vec []float32, centroids []float32, dim int) (int, float32) {
	k := len(centroids) / dim
	best := 0
	minDist := dist(vec, centroids[:dim])
	for j := 1; j < k; j++ {
		d := dist(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best, minDist
}

// Assign writes the nearest centroid index of every vector into assignments and
// returns the total within-cluster sum of squares and the number of vectors whose
// assignment changed.
func (e *Engine) Assign(vectors []float32, dim int, centroids []float32, assignments []int) (float64, int) {
	n := len(vectors) / dim
	if e.cfg.Workers == 1 || n < 2 {
		return e.assignRange(vectors, dim, centroids, assignments, 0, n)
	}
	return e.assignSharded(vectors, dim, centroids, assignments)
}

func (e *Engine) assignRange(vectors []float32, dim int, centroids []float32, assignments []int, lo, hi int) (float64, int) {
	var inertia float64
	reassigned := 0

	for i := lo; i < hi; i++ {
		best, minDist := nearest(e.dist, vectors[i*dim:(i+1)*dim], centroids, dim)
		if assignments[i] != best {
			assignments[i] = best
			reassigned++
		}
		inertia += float64(minDist)
	}

	return inertia, reassigned
}

// Update recomputes every centroid as the per-channel mean of its assigned
// vectors. Clusters without vectors are handled by the configured policy.
func (e *Engine) Update(vectors []float32, dim int, assignments []int, old []float32) Update {
	k := len(old) / dim
	n := len(vectors) / dim

	var acc *partial
	if e.cfg.Workers == 1 || n < 2 {
		acc = accumulate(vectors, dim, assignments, k, 0, n)
	} else {
		acc = e.accumulateSharded(vectors, dim, assignments, k)
	}

	centroids := make([]float32, k*dim)
	var empty []int
	for j := 0; j < k; j++ {
		dst := centroids[j*dim : (j+1)*dim]
		if acc.counts[j] == 0 {
			empty = append(empty, j)
			switch e.cfg.EmptyCluster {
			case Reseed:
				idx := e.cfg.Rand.IntN(n)
				copy(dst, vectors[idx*dim:(idx+1)*dim])
			default:
				copy(dst, old[j*dim:(j+1)*dim])
			}
			continue
		}

		count := float64(acc.counts[j])
		for d := 0; d < dim; d++ {
			dst[d] = float32(acc.sums[j*dim+d] / count)
		}
	}

	converged := true
	shift := 0.0
	for j := 0; j < k; j++ {
		s := distance.L2(old[j*dim:(j+1)*dim], centroids[j*dim:(j+1)*dim])
		shift = math.Max(shift, s)
		if !(s < e.cfg.Epsilon) {
			converged = false
		}
	}

	return Update{
		Centroids: centroids,
		Converged: converged,
		Shift:     shift,
		Empty:     empty,
	}
}

// Run clusters vectors until every centroid moves less than Epsilon or
// MaxIterations passes have completed. Reaching MaxIterations is not an error;
// Result.Converged reports which stop condition fired.
//
// The context is checked at the start of every pass. When it is done, Run
// returns the result of the last completed pass (nil if there was none)
// together with the context error.
func (e *Engine) Run(ctx context.Context, vectors []float32, dim int) (*Result, error) {
	n, err := validateInput(vectors, dim)
	if err != nil {
		return nil, err
	}
	if e.cfg.K > n {
		return nil, fmt.Errorf("%w: k=%d, vectors=%d", ErrTooManyClusters, e.cfg.K, n)
	}

	centroids, err := e.Initialize(vectors, dim)
	if err != nil {
		return nil, err
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	var res *Result
	emptyEvents := 0

	for iter := 0; iter < e.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		inertia, reassigned := e.Assign(vectors, dim, centroids, assignments)
		upd := e.Update(vectors, dim, assignments, centroids)
		centroids = upd.Centroids
		emptyEvents += len(upd.Empty)

		res = &Result{
			Centroids:          centroids,
			Assignments:        assignments,
			Iterations:         iter + 1,
			Converged:          upd.Converged,
			Inertia:            inertia,
			EmptyClusterEvents: emptyEvents,
		}

		if e.cfg.Observer != nil {
			it := &Iteration{
				Index:       iter,
				Centroids:   centroids,
				Assignments: assignments,
				Inertia:     inertia,
				Shift:       upd.Shift,
				Reassigned:  reassigned,
				Empty:       upd.Empty,
				Converged:   upd.Converged,
			}
			if err := e.cfg.Observer(ctx, it); err != nil {
				return res, fmt.Errorf("kmeans: observer: %w", err)
			}
		}

		if upd.Converged {
			break
		}
	}

	return res, nil
}
