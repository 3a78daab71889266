// Package frames writes one diagnostic image per clustering pass that did
// not converge.
package frames

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/hupe1980/kpalette"
	"github.com/hupe1980/kpalette/blobstore"
	"github.com/hupe1980/kpalette/raster"
)

// DefaultPattern names frames output_0.png, output_1.png, ...
const DefaultPattern = "output_%d.png"

// Writer is a kpalette.Observer that renders each non-converged pass into a
// blob store.
type Writer struct {
	store   blobstore.BlobStore
	dir     string
	pattern string
	format  raster.Format

	mu      sync.Mutex
	written []string
}

var _ kpalette.Observer = (*Writer)(nil)

// Option configures a Writer.
type Option func(*Writer)

// WithDir places frames under dir inside the store.
func WithDir(dir string) Option {
	return func(w *Writer) { w.dir = dir }
}

// WithPattern sets the fmt pattern for frame names. It receives the zero-based
// iteration index; the extension selects the image format.
func WithPattern(pattern string) Option {
	return func(w *Writer) { w.pattern = pattern }
}

// New creates a Writer storing frames in store.
func New(store blobstore.BlobStore, optFns ...Option) (*Writer, error) {
	w := &Writer{
		store:   store,
		pattern: DefaultPattern,
	}
	for _, fn := range optFns {
		fn(w)
	}

	f, err := raster.OutputFormat(w.pattern)
	if err != nil {
		return nil, fmt.Errorf("frames: %w", err)
	}
	w.format = f

	return w, nil
}

// OnIteration implements kpalette.Observer.
func (w *Writer) OnIteration(ctx context.Context, s *kpalette.Snapshot) error {
	if s.Converged {
		return nil
	}

	img, err := raster.RenderAssignments(s.Width, s.Height, s.Centroids, s.Assignments)
	if err != nil {
		return fmt.Errorf("frames: render iteration %d: %w", s.Iteration, err)
	}

	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, w.format); err != nil {
		return fmt.Errorf("frames: iteration %d: %w", s.Iteration, err)
	}

	name := path.Join(w.dir, fmt.Sprintf(w.pattern, s.Iteration))
	if err := w.store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("frames: write %s: %w", name, err)
	}

	w.mu.Lock()
	w.written = append(w.written, name)
	w.mu.Unlock()

	return nil
}

// Written returns the names of all frames written so far, in order.
func (w *Writer) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.written...)
}
