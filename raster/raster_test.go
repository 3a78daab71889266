package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/hupe1980/kpalette/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"out.png", PNG, false},
		{"dir/out.PNG", PNG, false},
		{"photo.jpg", JPEG, false},
		{"photo.jpeg", JPEG, false},
		{"s3://bucket/anim.gif", GIF, false},
		{"out.bmp", BMP, false},
		{"scan.tif", TIFF, false},
		{"photo.webp", WEBP, false},
		{"notes.txt", 0, true},
		{"noext", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FormatFromName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "png", PNG.String())
	assert.Equal(t, "jpeg", JPEG.String())
	assert.Equal(t, "gif", GIF.String())
	assert.Equal(t, "Unknown(9)", Format(9).String())
	assert.Equal(t, ".jpg", JPEG.Extension())
	assert.Equal(t, ".tiff", TIFF.Extension())
}

func TestOutputFormat(t *testing.T) {
	f, err := OutputFormat("out.bmp")
	require.NoError(t, err)
	assert.Equal(t, BMP, f)

	_, err = OutputFormat("out.webp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = OutputFormat("out")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	res := twoColorResult()
	src, err := Render(res)
	require.NoError(t, err)

	// Paletted sources survive the lossless formats unchanged.
	for _, f := range []Format{PNG, GIF, BMP, TIFF} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, f))

			img, got, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, f, got)
			assert.Equal(t, src.Bounds(), img.Bounds())

			for i, a := range res.Assignments {
				x, y := i%res.Width, i/res.Width
				assert.Equal(t, ToColor(res.Centroids[a]), color.NRGBAModel.Convert(img.At(x, y)))
			}
		})
	}

	t.Run("jpeg", func(t *testing.T) {
		stripes := testutil.Stripes(8, 8, color.NRGBA{R: 255, A: 255}, color.NRGBA{B: 255, A: 255})
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, stripes, JPEG))
		img, got, err := Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, JPEG, got)
		assert.Equal(t, stripes.Bounds(), img.Bounds())
	})
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestEncodeUnknownFormat(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	assert.ErrorIs(t, Encode(&bytes.Buffer{}, img, Format(42)), ErrUnsupportedFormat)
	assert.ErrorIs(t, Encode(&bytes.Buffer{}, img, WEBP), ErrUnsupportedFormat)
}
