package kpalette_test

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/hupe1980/kpalette"
)

// Example clusters a 2x2 image made of two black and two white pixels.
func Example() {
	ps, err := kpalette.NewPixelSet([]float32{
		0, 0, 0, 255, 255, 255,
		255, 255, 255, 0, 0, 0,
	}, 2, 2, 3)
	if err != nil {
		log.Fatal(err)
	}

	res, err := kpalette.Cluster(context.Background(), ps, 2, kpalette.WithSeed(42))
	if err != nil {
		log.Fatal(err)
	}

	reds := []float32{res.Centroids[0][0], res.Centroids[1][0]}
	sort.Slice(reds, func(i, j int) bool { return reds[i] < reds[j] })

	counts := res.Counts()
	fmt.Println("clusters:", res.K())
	fmt.Println("converged:", res.Converged)
	fmt.Println("red channels:", reds)
	fmt.Println("pixels per cluster:", counts[0], counts[1])
	// Output:
	// clusters: 2
	// converged: true
	// red channels: [0 255]
	// pixels per cluster: 2 2
}
