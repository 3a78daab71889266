// Package distance provides the color-space distance kernels used by clustering.
//
// Only Euclidean distance is supported. Clustering compares squared distances in
// the hot loop (the argmin is the same as for the true distance) and takes the
// square root only where an actual length is needed, such as the centroid shift
// tested against the convergence threshold.
//
// # Usage
//
//	d2 := distance.SquaredL2(pixel, centroid)
//	shift := distance.L2(oldCentroid, newCentroid)
package distance
