package kmeans

import (
	"golang.org/x/sync/errgroup"
)

// partial holds per-cluster channel sums and member counts for a range of
// vectors. Partials are merged additively and divided only once, after the merge.
type partial struct {
	sums   []float64
	counts []int
}

func newPartial(k, dim int) *partial {
	return &partial{
		sums:   make([]float64, k*dim),
		counts: make([]int, k),
	}
}

func (p *partial) merge(o *partial) {
	for i, s := range o.sums {
		p.sums[i] += s
	}
	for i, c := range o.counts {
		p.counts[i] += c
	}
}

func accumulate(vectors []float32, dim int, assignments []int, k, lo, hi int) *partial {
	p := newPartial(k, dim)
	for i := lo; i < hi; i++ {
		cluster := assignments[i]
		vec := vectors[i*dim : (i+1)*dim]
		sums := p.sums[cluster*dim : (cluster+1)*dim]
		for d, v := range vec {
			sums[d] += float64(v)
		}
		p.counts[cluster]++
	}
	return p
}

type shard struct {
	lo, hi int
}

// split divides n vectors into at most workers contiguous, non-empty shards.
func split(n, workers int) []shard {
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	shards := make([]shard, 0, workers)
	size := n / workers
	rem := n % workers
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + size
		if w < rem {
			hi++
		}
		shards = append(shards, shard{lo: lo, hi: hi})
		lo = hi
	}
	return shards
}

func (e *Engine) assignSharded(vectors []float32, dim int, centroids []float32, assignments []int) (float64, int) {
	shards := split(len(vectors)/dim, e.cfg.Workers)
	inertias := make([]float64, len(shards))
	reassigned := make([]int, len(shards))

	var g errgroup.Group
	for s, sh := range shards {
		g.Go(func() error {
			inertias[s], reassigned[s] = e.assignRange(vectors, dim, centroids, assignments, sh.lo, sh.hi)
			return nil
		})
	}
	_ = g.Wait()

	var inertia float64
	total := 0
	for s := range shards {
		inertia += inertias[s]
		total += reassigned[s]
	}
	return inertia, total
}

func (e *Engine) accumulateSharded(vectors []float32, dim int, assignments []int, k int) *partial {
	shards := split(len(vectors)/dim, e.cfg.Workers)
	partials := make([]*partial, len(shards))

	var g errgroup.Group
	for s, sh := range shards {
		g.Go(func() error {
			partials[s] = accumulate(vectors, dim, assignments, k, sh.lo, sh.hi)
			return nil
		})
	}
	_ = g.Wait()

	acc := newPartial(k, dim)
	for _, p := range partials {
		acc.merge(p)
	}
	return acc
}
