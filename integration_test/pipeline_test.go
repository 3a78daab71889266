package integration_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/hupe1980/kpalette"
	"github.com/hupe1980/kpalette/blobstore"
	"github.com/hupe1980/kpalette/frames"
	"github.com/hupe1980/kpalette/raster"
	"github.com/hupe1980/kpalette/report"
	"github.com/hupe1980/kpalette/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePixels turns generated RGB data into an encoded PNG.
func encodePixels(t *testing.T, data []float32, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := range width * height {
		img.Set(i%width, i/width, color.NRGBA{
			R: uint8(data[i*3]), G: uint8(data[i*3+1]), B: uint8(data[i*3+2]), A: 255,
		})
	}
	var buf bytes.Buffer
	require.NoError(t, raster.Encode(&buf, img, raster.PNG))
	return buf.Bytes()
}

func TestPipeline_DecodeClusterRenderReport(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	palette := [][]float32{{200, 30, 30}, {30, 200, 30}, {30, 30, 200}}
	rng := testutil.NewRNG(11)
	data, labels := rng.ClusteredPixels(20, 15, palette, 5)
	require.NoError(t, store.Put(ctx, "in/photo.png", encodePixels(t, data, 15, 20)))

	raw, err := blobstore.ReadAll(ctx, store, "in/photo.png")
	require.NoError(t, err)
	img, _, err := raster.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	ps := kpalette.PixelSetFromImage(img)
	require.Equal(t, 300, ps.Len())

	fw, err := frames.New(store, frames.WithDir("frames"))
	require.NoError(t, err)
	metrics := &kpalette.BasicMetricsCollector{}

	// Pixels 0, 1 and 2 carry labels 0, 1 and 2.
	res, err := kpalette.Cluster(ctx, ps, 3,
		kpalette.WithRandSource(&sequence{vals: []int{0, 1, 2}}),
		kpalette.WithObserver(fw),
		kpalette.WithMetricsCollector(metrics),
		kpalette.WithLogger(kpalette.NoopLogger()),
	)
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.InDelta(t, 1.0, testutil.Purity(labels, res.Assignments), 1e-9)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(res.Iterations), stats.IterationCount)

	out, err := raster.Render(res)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, raster.Encode(&buf, out, raster.PNG))
	require.NoError(t, store.Put(ctx, "out/photo.png", buf.Bytes()))

	require.NoError(t, report.Write(ctx, store, "out/palette.json.lz4", report.New(res)))
	rep, err := report.Read(ctx, store, "out/palette.json.lz4")
	require.NoError(t, err)
	for j, s := range rep.Swatches {
		assert.Equal(t, 100, s.Pixels, "cluster %d", j)
	}

	frameNames, err := store.List(ctx, "frames/")
	require.NoError(t, err)
	assert.Len(t, frameNames, res.Iterations-1)
	assert.Equal(t, fw.Written(), frameNames)
}

func TestPipeline_MasksPartitionImage(t *testing.T) {
	rng := testutil.NewRNG(5)
	ps, err := kpalette.NewPixelSet(rng.UniformPixels(32, 32, 3), 32, 32, 3)
	require.NoError(t, err)

	res, err := kpalette.Cluster(context.Background(), ps, 6, kpalette.WithRandSource(rng))
	require.NoError(t, err)

	masks := raster.Masks(res)
	var total uint64
	for i, m := range masks {
		total += m.GetCardinality()
		for j := i + 1; j < len(masks); j++ {
			assert.False(t, m.Intersects(masks[j]))
		}
	}
	assert.Equal(t, uint64(ps.Len()), total)
}

func TestPipeline_ShardedMatchesSequential(t *testing.T) {
	rng := testutil.NewRNG(8)
	data := rng.UniformPixels(40, 40, 3)
	ps, err := kpalette.NewPixelSet(data, 40, 40, 3)
	require.NoError(t, err)

	seq, err := kpalette.Cluster(context.Background(), ps, 8, kpalette.WithSeed(21))
	require.NoError(t, err)
	par, err := kpalette.Cluster(context.Background(), ps, 8, kpalette.WithSeed(21), kpalette.WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, seq.Assignments, par.Assignments)
	assert.Equal(t, seq.Centroids, par.Centroids)
	assert.Equal(t, seq.Iterations, par.Iterations)
}

type sequence struct {
	vals []int
	pos  int
}

func (s *sequence) IntN(n int) int {
	v := s.vals[s.pos%len(s.vals)] % n
	s.pos++
	return v
}
