// Package testutil provides testing utilities for kpalette.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source, pixel and image generators and a
// purity score for comparing cluster assignments against known labels.
//
// # Random Pixels
//
//	rng := testutil.NewRNG(seed)
//	data := rng.UniformPixels(64, 64, 3)          // integer values in [0, 256)
//	data, labels := rng.ClusteredPixels(64, 64, palette, 4)
//
// # Synthetic Images
//
//	img := testutil.Stripes(8, 2, colors...)
//
// # Purity
//
//	p := testutil.Purity(labels, res.Assignments)
package testutil
