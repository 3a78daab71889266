package testutil

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"sync"
)

// RNG wraps a seeded PCG generator. It is thread-safe and satisfies
// kpalette.RandSource.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a non-negative pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// UniformPixels generates height*width*channels integer channel values in [0, 256).
func (r *RNG) UniformPixels(height, width, channels int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, height*width*channels)
	for i := range data {
		data[i] = float32(r.rand.IntN(256))
	}
	return data
}

// ClusteredPixels generates pixels scattered around the given palette colors.
// Pixel i belongs to palette[i%len(palette)] and is offset by Gaussian noise
// with the given spread, rounded and clamped to [0, 255]. The second return
// value holds the palette index of every pixel.
func (r *RNG) ClusteredPixels(height, width int, palette [][]float32, spread float64) ([]float32, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels := len(palette[0])
	n := height * width
	data := make([]float32, n*channels)
	labels := make([]int, n)

	for i := range n {
		label := i % len(palette)
		labels[i] = label
		for c := range channels {
			v := float64(palette[label][c]) + r.rand.NormFloat64()*spread
			data[i*channels+c] = float32(math.Min(255, math.Max(0, math.Round(v))))
		}
	}
	return data, labels
}

// Shuffle permutes pixels and their labels together.
func (r *RNG) Shuffle(data []float32, labels []int, channels int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rand.Shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
		for c := range channels {
			data[i*channels+c], data[j*channels+c] = data[j*channels+c], data[i*channels+c]
		}
	})
}

// Solid returns a width x height image filled with c.
func Solid(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, c)
		}
	}
	return img
}

// Stripes returns an image made of vertical stripes, each stripeWidth pixels
// wide, cycling through colors.
func Stripes(height, stripeWidth int, colors ...color.Color) *image.NRGBA {
	width := stripeWidth * len(colors)
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, colors[x/stripeWidth])
		}
	}
	return img
}

// Purity scores how well assignments recover known labels: for every cluster
// the most frequent label is counted as correct. 1.0 means every cluster is
// label-pure.
func Purity(labels, assignments []int) float64 {
	if len(labels) == 0 || len(labels) != len(assignments) {
		return 0
	}

	counts := make(map[int]map[int]int)
	for i, a := range assignments {
		if counts[a] == nil {
			counts[a] = make(map[int]int)
		}
		counts[a][labels[i]]++
	}

	hits := 0
	for _, byLabel := range counts {
		best := 0
		for _, c := range byLabel {
			best = max(best, c)
		}
		hits += best
	}

	return float64(hits) / float64(len(labels))
}
