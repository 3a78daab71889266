package report

import (
	"context"
	"fmt"

	"github.com/hupe1980/kpalette"
	"github.com/hupe1980/kpalette/blobstore"
	"github.com/hupe1980/kpalette/codec"
	"github.com/hupe1980/kpalette/raster"
	"github.com/lucasb-eyer/go-colorful"
)

// Swatch describes one cluster.
type Swatch struct {
	Index int    `json:"index" yaml:"index"`
	Hex   string `json:"hex" yaml:"hex"`
	// Color is the raw centroid in the 0-255 channel range.
	Color []float32 `json:"color" yaml:"color"`
	// Lightness is the CIE L* of the rendered color, in [0, 1].
	Lightness float64 `json:"lightness" yaml:"lightness"`
	Pixels    int     `json:"pixels" yaml:"pixels"`
	Share     float64 `json:"share" yaml:"share"`
}

// Report summarizes a clustering run.
type Report struct {
	K                  int      `json:"k" yaml:"k"`
	Width              int      `json:"width" yaml:"width"`
	Height             int      `json:"height" yaml:"height"`
	Channels           int      `json:"channels" yaml:"channels"`
	Iterations         int      `json:"iterations" yaml:"iterations"`
	Converged          bool     `json:"converged" yaml:"converged"`
	Inertia            float64  `json:"inertia" yaml:"inertia"`
	EmptyClusterEvents int      `json:"empty_cluster_events" yaml:"empty_cluster_events"`
	Seed               uint64   `json:"seed" yaml:"seed"`
	Swatches           []Swatch `json:"swatches" yaml:"swatches"`
}

// New builds the report for res. Swatches are ordered by cluster index.
func New(res *kpalette.Result) *Report {
	r := &Report{
		K:                  res.K(),
		Width:              res.Width,
		Height:             res.Height,
		Channels:           res.Channels,
		Iterations:         res.Iterations,
		Converged:          res.Converged,
		Inertia:            res.Inertia,
		EmptyClusterEvents: res.EmptyClusterEvents,
		Seed:               res.Seed,
		Swatches:           make([]Swatch, res.K()),
	}

	counts := res.Counts()
	total := len(res.Assignments)

	for j, c := range res.Centroids {
		nrgba := raster.ToColor(c)
		col := colorful.Color{
			R: float64(nrgba.R) / 255,
			G: float64(nrgba.G) / 255,
			B: float64(nrgba.B) / 255,
		}
		l, _, _ := col.Lab()

		s := Swatch{
			Index:     j,
			Hex:       col.Hex(),
			Color:     append([]float32(nil), c...),
			Lightness: l,
			Pixels:    counts[j],
		}
		if total > 0 {
			s.Share = float64(counts[j]) / float64(total)
		}
		r.Swatches[j] = s
	}

	return r
}

// Dominant returns the swatch covering the most pixels. Ties go to the
// lowest index. It reports false when the report has no swatches.
func (r *Report) Dominant() (Swatch, bool) {
	if len(r.Swatches) == 0 {
		return Swatch{}, false
	}
	best := 0
	for j, s := range r.Swatches {
		if s.Pixels > r.Swatches[best].Pixels {
			best = j
		}
	}
	return r.Swatches[best], true
}

// Marshal encodes r with c and compresses it with comp.
func Marshal(r *Report, c codec.Codec, comp Compression) ([]byte, error) {
	data, err := c.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("report: encode %s: %w", c.Name(), err)
	}
	return compress(data, comp)
}

// Unmarshal reverses Marshal.
func Unmarshal(data []byte, c codec.Codec, comp Compression) (*Report, error) {
	raw, err := decompress(data, comp)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := c.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("report: decode %s: %w", c.Name(), err)
	}
	return &r, nil
}

// Write stores r under name. Codec and compression follow the name.
func Write(ctx context.Context, store blobstore.BlobStore, name string, r *Report) error {
	data, err := Marshal(r, codec.ForName(name), CompressionFromName(name))
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("report: write %s: %w", name, err)
	}
	return nil
}

// Read loads the report stored under name.
func Read(ctx context.Context, store blobstore.BlobStore, name string) (*Report, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, codec.ForName(name), CompressionFromName(name))
}
