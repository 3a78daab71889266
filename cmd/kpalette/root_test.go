package main

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/kpalette"
	"github.com/hupe1980/kpalette/blobstore"
	"github.com/hupe1980/kpalette/raster"
	"github.com/hupe1980/kpalette/report"
	"github.com/hupe1980/kpalette/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStripes(t *testing.T, path string) {
	t.Helper()
	img := testutil.Stripes(6, 3,
		color.NRGBA{R: 250, A: 255},
		color.NRGBA{G: 250, A: 255},
		color.NRGBA{B: 250, A: 255},
		color.NRGBA{R: 250, G: 250, B: 250, A: 255},
	)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0")

	assert.Equal(t, "kpalette <input> <output> [k]", cmd.Use)
	assert.Equal(t, "1.0.0", cmd.Version)

	for _, name := range []string{
		"config", "max-iterations", "epsilon", "seed", "empty-cluster", "workers",
		"frames", "report", "isolate", "log-level", "log-format",
	} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	watch, _, err := cmd.Find([]string{"watch"})
	require.NoError(t, err)
	assert.Equal(t, "watch", watch.Name())
}

func TestRootCmd_Args(t *testing.T) {
	_, err := execute(t, "only-input.png")
	assert.Error(t, err)

	_, err = execute(t, "a.png", "b.png", "3", "extra")
	assert.Error(t, err)
}

func TestRootCmd_InvalidK(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeStripes(t, in)

	_, err := execute(t, in, filepath.Join(dir, "out.png"), "1")
	assert.ErrorIs(t, err, kpalette.ErrInvalidK)

	_, err = execute(t, in, filepath.Join(dir, "out.png"), "eight")
	assert.ErrorContains(t, err, "k must be an integer")
}

func TestRootCmd_UnsupportedOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeStripes(t, in)

	_, err := execute(t, in, filepath.Join(dir, "out.webp"))
	assert.ErrorIs(t, err, raster.ErrUnsupportedFormat)
}

func TestRootCmd_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.png"))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestRootCmd_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	framesDir := filepath.Join(dir, "frames")
	reportPath := filepath.Join(dir, "palette.json.zst")
	writeStripes(t, in)

	stdout, err := execute(t, in, out, "4",
		"--seed", "7",
		"--frames", framesDir,
		"--report", reportPath,
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "4 colors")
	assert.Contains(t, stdout, "(seed 7)")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := raster.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, raster.PNG, format)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	ctx := context.Background()
	rep, err := report.Read(ctx, blobstore.NewLocalStore(dir), "palette.json.zst")
	require.NoError(t, err)
	assert.Equal(t, 4, rep.K)
	assert.Equal(t, uint64(7), rep.Seed)

	total := 0
	for _, s := range rep.Swatches {
		total += s.Pixels
	}
	assert.Equal(t, 72, total)

	// Every output pixel carries one of the reported colors.
	hexes := make(map[string]bool)
	for _, s := range rep.Swatches {
		hexes[s.Hex] = true
	}
	for y := range 6 {
		for x := range 12 {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			assert.True(t, hexes[hex(c)], "pixel %d,%d", x, y)
		}
	}

	frameNames, err := blobstore.NewLocalStore(framesDir).List(ctx, "")
	require.NoError(t, err)
	want := rep.Iterations
	if rep.Converged {
		want--
	}
	assert.Len(t, frameNames, want)
}

func TestRootCmd_Isolate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "isolated.png")
	writeStripes(t, in)

	_, err := execute(t, in, out, "2", "--seed", "1", "--isolate", "0", "--log-level", "error")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := raster.Decode(f)
	require.NoError(t, err)

	transparent := 0
	for y := range 6 {
		for x := range 12 {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				transparent++
			}
		}
	}
	assert.Less(t, transparent, 72)
}

func hex(c color.NRGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
