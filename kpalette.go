package kpalette

import (
	"context"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/kpalette/internal/kmeans"
)

const (
	// DefaultK is the number of clusters used by the CLI when none is given.
	DefaultK = 8
	// DefaultMaxIterations bounds the number of assign+update passes.
	DefaultMaxIterations = 10
	// DefaultEpsilon is the centroid shift below which a cluster is stable.
	DefaultEpsilon = kmeans.DefaultEpsilon
)

// ColorVector is one color: a fixed-length sequence of channel values in 0-255.
type ColorVector []float32

// PixelSet is an immutable, row-major set of color vectors with a fixed shape.
type PixelSet struct {
	data     []float32
	height   int
	width    int
	channels int
}

// NewPixelSet validates the shape and channel values of data and returns a
// PixelSet holding a copy of it. Every value must be finite and within
// [0, 255]. A zero-sized shape is accepted; clustering it fails with
// ErrEmptyPixelSet.
func NewPixelSet(data []float32, height, width, channels int) (*PixelSet, error) {
	if !shapeMatches(len(data), height, width, channels) {
		return nil, &ErrInvalidShape{Height: height, Width: width, Channels: channels, Len: len(data)}
	}

	for i, v := range data {
		if math.IsNaN(float64(v)) || v < 0 || v > 255 {
			return nil, &ErrInvalidValue{Pixel: i / channels, Channel: i % channels, Value: v}
		}
	}

	copied := make([]float32, len(data))
	copy(copied, data)

	return &PixelSet{
		data:     copied,
		height:   height,
		width:    width,
		channels: channels,
	}, nil
}

// PixelSetFromImage converts img to a 3-channel RGB PixelSet. Colors are
// un-premultiplied by the NRGBA conversion, then alpha is dropped.
func PixelSetFromImage(img image.Image) *PixelSet {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float32, 0, w*h*3)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data = append(data, float32(c.R), float32(c.G), float32(c.B))
		}
	}

	return &PixelSet{data: data, height: h, width: w, channels: 3}
}

// shapeMatches reports whether height*width*channels equals n without
// overflowing int.
func shapeMatches(n, height, width, channels int) bool {
	if height < 0 || width < 0 || channels < 1 {
		return false
	}
	if width != 0 && height > math.MaxInt/width {
		return false
	}
	pixels := height * width
	if pixels > math.MaxInt/channels {
		return false
	}
	return pixels*channels == n
}

// Len returns the number of pixels.
func (p *PixelSet) Len() int {
	if p == nil {
		return 0
	}
	return p.height * p.width
}

// Height returns the number of rows.
func (p *PixelSet) Height() int { return p.height }

// Width returns the number of columns.
func (p *PixelSet) Width() int { return p.width }

// Channels returns the number of channels per pixel.
func (p *PixelSet) Channels() int { return p.channels }

// At returns a copy of the color of pixel i in row-major order.
func (p *PixelSet) At(i int) ColorVector {
	v := make(ColorVector, p.channels)
	copy(v, p.data[i*p.channels:(i+1)*p.channels])
	return v
}

// Result is the outcome of Cluster.
type Result struct {
	// Centroids holds exactly k colors, indexed by cluster.
	Centroids []ColorVector
	// Assignments holds one cluster index per pixel, row-major.
	Assignments []int
	Iterations  int
	// Converged is false when the iteration limit was reached first.
	Converged bool
	// Inertia is the within-cluster sum of squared distances of the last pass.
	Inertia            float64
	EmptyClusterEvents int
	// Seed is the seed of the random source, zero when WithRandSource was used.
	Seed     uint64
	Width    int
	Height   int
	Channels int
}

// K returns the number of clusters.
func (r *Result) K() int {
	return len(r.Centroids)
}

// Counts returns the number of pixels assigned to each cluster.
func (r *Result) Counts() []int {
	counts := make([]int, len(r.Centroids))
	for _, a := range r.Assignments {
		counts[a]++
	}
	return counts
}

// ColorAt returns the centroid color assigned to pixel i.
func (r *Result) ColorAt(i int) ColorVector {
	return r.Centroids[r.Assignments[i]]
}

// Cluster groups the pixels of ps into k clusters.
//
// Invalid input (k < 2, k larger than the pixel count, an empty pixel set)
// fails before any iteration. Reaching the iteration limit is not an error.
// When ctx is canceled between passes, or an observer fails, Cluster returns
// the result of the last completed pass (nil if none completed) along with
// the error.
func Cluster(ctx context.Context, ps *PixelSet, k int, optFns ...Option) (*Result, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	if ps.Len() == 0 {
		return nil, ErrEmptyPixelSet
	}
	if k < 2 {
		return nil, ErrInvalidK
	}

	logger := o.logger.WithK(k).WithCount(ps.Len())

	rng := o.rand
	seed := o.seed
	if rng == nil {
		if !o.seedSet {
			seed = uint64(time.Now().UnixNano())
		}
		rng = rand.New(rand.NewPCG(seed, seed))
	} else {
		seed = 0
	}

	run := &runObserver{
		observers: append([]Observer{newProgressLogger(logger, o.maxIterations)}, o.observers...),
		metrics:   o.metrics,
		width:     ps.width,
		height:    ps.height,
		channels:  ps.channels,
		last:      time.Now(),
	}

	engine, err := kmeans.New(kmeans.Config{
		K:             k,
		MaxIterations: o.maxIterations,
		Epsilon:       o.epsilon,
		EmptyCluster:  kmeans.EmptyClusterPolicy(o.emptyCluster),
		Workers:       o.workers,
		Rand:          rng,
		Observer:      run.observe,
	})
	if err != nil {
		err = translateError(err)
		logger.LogRun(ctx, nil, err)
		return nil, err
	}

	start := time.Now()
	res, err := engine.Run(ctx, ps.data, ps.channels)
	err = translateError(err)

	var out *Result
	if res != nil {
		out = &Result{
			Centroids:          splitCentroids(res.Centroids, ps.channels),
			Assignments:        res.Assignments,
			Iterations:         res.Iterations,
			Converged:          res.Converged,
			Inertia:            res.Inertia,
			EmptyClusterEvents: res.EmptyClusterEvents,
			Seed:               seed,
			Width:              ps.width,
			Height:             ps.height,
			Channels:           ps.channels,
		}
	}

	iterations, converged := 0, false
	if out != nil {
		iterations, converged = out.Iterations, out.Converged
	}
	o.metrics.RecordRun(iterations, converged, time.Since(start), err)
	logger.LogRun(ctx, out, err)

	return out, err
}

func splitCentroids(flat []float32, dim int) []ColorVector {
	k := len(flat) / dim
	out := make([]ColorVector, k)
	for j := 0; j < k; j++ {
		out[j] = ColorVector(flat[j*dim : (j+1)*dim : (j+1)*dim])
	}
	return out
}
