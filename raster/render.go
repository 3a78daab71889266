package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hupe1980/kpalette"
)

// ErrShapeMismatch is returned when assignments do not cover width*height pixels.
var ErrShapeMismatch = errors.New("raster: assignments do not match image size")

// ToColor converts a color vector in the 0-255 range to an 8-bit color.
// One channel is gray, two are gray and alpha, three are RGB and four or more
// are RGBA. Values are rounded and clamped.
func ToColor(v kpalette.ColorVector) color.NRGBA {
	switch len(v) {
	case 0:
		return color.NRGBA{A: 0xff}
	case 1:
		g := channel(v[0])
		return color.NRGBA{R: g, G: g, B: g, A: 0xff}
	case 2:
		g := channel(v[0])
		return color.NRGBA{R: g, G: g, B: g, A: channel(v[1])}
	case 3:
		return color.NRGBA{R: channel(v[0]), G: channel(v[1]), B: channel(v[2]), A: 0xff}
	default:
		return color.NRGBA{R: channel(v[0]), G: channel(v[1]), B: channel(v[2]), A: channel(v[3])}
	}
}

func channel(v float32) uint8 {
	switch {
	case math.IsNaN(float64(v)) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(float64(v)))
	}
}

// Palette converts centroids to a color.Palette, index for index.
func Palette(centroids []kpalette.ColorVector) color.Palette {
	p := make(color.Palette, len(centroids))
	for i, c := range centroids {
		p[i] = ToColor(c)
	}
	return p
}

// Render draws the clustered image of res.
func Render(res *kpalette.Result) (image.Image, error) {
	return RenderAssignments(res.Width, res.Height, res.Centroids, res.Assignments)
}

// RenderAssignments draws a width x height image where pixel i has the color of
// centroids[assignments[i]]. Up to 256 centroids produce an *image.Paletted,
// more produce an *image.NRGBA.
func RenderAssignments(width, height int, centroids []kpalette.ColorVector, assignments []int) (image.Image, error) {
	if width*height != len(assignments) {
		return nil, fmt.Errorf("%w: %dx%d vs %d assignments", ErrShapeMismatch, width, height, len(assignments))
	}

	rect := image.Rect(0, 0, width, height)
	palette := Palette(centroids)

	if len(palette) <= 256 {
		img := image.NewPaletted(rect, palette)
		for i, a := range assignments {
			img.Pix[i] = uint8(a)
		}
		return img, nil
	}

	img := image.NewNRGBA(rect)
	for i, a := range assignments {
		c := palette[a].(color.NRGBA)
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = c.A
	}
	return img, nil
}
