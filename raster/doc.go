// Package raster converts between encoded images and clustering results.
//
// Decode handles PNG, JPEG, GIF, BMP, TIFF and WebP. Encode writes all of
// them except WebP. Render replaces every pixel with the color of its cluster;
// when there are at most 256 clusters the output is an *image.Paletted whose
// palette is exactly the centroid colors, so PNG, GIF, BMP and TIFF output is
// lossless. Masks and Isolate expose per-cluster pixel sets as roaring
// bitmaps.
package raster
