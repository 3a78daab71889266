// Package kmeans implements the color clustering engine (Lloyd's algorithm).
//
// Vectors are stored flattened (n * dim float32 values, row-major) and centroids
// use the same layout (k * dim). One Run is:
//
//	Initialize -> { Assign -> Update } until converged or MaxIterations
//
// Randomness is only ever drawn from the RandSource in Config, so a seeded
// source makes a run fully reproducible.
package kmeans
