// Package kpalette reduces the color palette of an image with k-means clustering.
//
// The input is a PixelSet: a row-major buffer of color vectors with a validated
// (height, width, channels) shape. Channel values use the 8-bit source range
// 0-255, stored as float32, everywhere in the package. Cluster groups the pixels
// into k clusters and returns the centroid colors together with one cluster
// index per pixel, from which the raster package renders the reduced image.
//
// # Quick Start
//
//	img, _, _ := raster.Decode(f)
//	ps := kpalette.PixelSetFromImage(img)
//	res, err := kpalette.Cluster(ctx, ps, 8, kpalette.WithSeed(42))
//	out, _ := raster.Render(res)
//
// # Stop Conditions
//
// A run stops when every centroid moved less than epsilon during the last pass
// (Result.Converged is true) or after the configured number of iterations
// (Result.Converged is false). Both are valid results; only invalid input is an
// error.
//
// # Empty Clusters
//
// A cluster that receives no pixels keeps its previous centroid (HoldPrevious,
// the default) or is re-seeded with a random pixel (Reseed). Either way the
// event is logged at WARN level and reported in the iteration Snapshot.
//
// # Observers
//
// Observers receive a Snapshot after every pass. The frames package provides
// an observer that writes intermediate images to a blob store.
package kpalette
