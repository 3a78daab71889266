package kpalette

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kpalette/internal/kmeans"
)

var (
	// ErrInvalidK is returned when k is less than 2.
	ErrInvalidK = errors.New("must have at least 2 color clusters")

	// ErrTooManyClusters is returned when k exceeds the number of pixels.
	ErrTooManyClusters = errors.New("k exceeds the number of pixels")

	// ErrEmptyPixelSet is returned when there are no pixels to cluster.
	ErrEmptyPixelSet = errors.New("pixel set is empty")

	// ErrInvalidMaxIterations is returned when the iteration limit is below 1.
	ErrInvalidMaxIterations = errors.New("max iterations must be positive")

	// ErrInvalidEpsilon is returned when epsilon is not a positive number.
	ErrInvalidEpsilon = errors.New("epsilon must be positive")
)

// ErrInvalidShape indicates that a pixel buffer does not match its declared shape.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidShape struct {
	Height   int
	Width    int
	Channels int
	Len      int
	cause    error
}

func (e *ErrInvalidShape) Error() string {
	return fmt.Sprintf("invalid pixel shape: %dx%dx%d does not match %d values", e.Height, e.Width, e.Channels, e.Len)
}

func (e *ErrInvalidShape) Unwrap() error { return e.cause }

// ErrInvalidValue indicates a channel value that is NaN or outside [0, 255].
// Infinities fall outside the range.
type ErrInvalidValue struct {
	Pixel   int
	Channel int
	Value   float32
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid channel value %v at pixel %d channel %d: must be within [0, 255]", e.Value, e.Pixel, e.Channel)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, kmeans.ErrInvalidK):
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	case errors.Is(err, kmeans.ErrTooManyClusters):
		return fmt.Errorf("%w: %w", ErrTooManyClusters, err)
	case errors.Is(err, kmeans.ErrNoVectors):
		return fmt.Errorf("%w: %w", ErrEmptyPixelSet, err)
	case errors.Is(err, kmeans.ErrInvalidMaxIterations):
		return fmt.Errorf("%w: %w", ErrInvalidMaxIterations, err)
	case errors.Is(err, kmeans.ErrInvalidEpsilon):
		return fmt.Errorf("%w: %w", ErrInvalidEpsilon, err)
	}

	return err
}
