package raster

import (
	"fmt"
	"image"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/kpalette"
)

// Masks returns, for every cluster, the bitmap of row-major pixel indices
// assigned to it.
func Masks(res *kpalette.Result) []*roaring.Bitmap {
	members := make([][]uint32, res.K())
	for i, a := range res.Assignments {
		members[a] = append(members[a], uint32(i))
	}

	masks := make([]*roaring.Bitmap, len(members))
	for j, idx := range members {
		masks[j] = roaring.BitmapOf(idx...)
	}
	return masks
}

// Isolate renders only the pixels of the listed clusters; all other pixels
// are fully transparent.
func Isolate(res *kpalette.Result, clusters ...int) (*image.NRGBA, error) {
	if res.Width*res.Height != len(res.Assignments) {
		return nil, fmt.Errorf("%w: %dx%d vs %d assignments", ErrShapeMismatch, res.Width, res.Height, len(res.Assignments))
	}

	masks := Masks(res)
	keep := make([]*roaring.Bitmap, 0, len(clusters))
	for _, c := range clusters {
		if c < 0 || c >= len(masks) {
			return nil, fmt.Errorf("raster: cluster %d out of range [0, %d)", c, len(masks))
		}
		keep = append(keep, masks[c])
	}
	visible := roaring.FastOr(keep...)

	palette := Palette(res.Centroids)
	img := image.NewNRGBA(image.Rect(0, 0, res.Width, res.Height))
	it := visible.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		img.Set(i%res.Width, i/res.Width, palette[res.Assignments[i]])
	}
	return img, nil
}
