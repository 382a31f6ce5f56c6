package anomaly

import (
	"math"
	"math/rand/v2"
)

// eulerGamma is the Euler–Mascheroni constant used by the harmonic estimate.
const eulerGamma = 0.5772156649015329

// node is one node of an isolation tree over scalar values.
type node struct {
	split       float64
	left, right *node
	size        int // leaf only
}

func (n *node) leaf() bool { return n.left == nil }

// forest is an isolation forest fitted on one-dimensional data.
type forest struct {
	trees   []*node
	samples int
}

func fit(values []float64, trees, maxSamples int, rng *rand.Rand) *forest {
	psi := maxSamples
	if psi <= 0 || psi > len(values) {
		psi = len(values)
	}
	limit := int(math.Ceil(math.Log2(math.Max(float64(psi), 2))))

	f := &forest{samples: psi}
	sample := make([]float64, psi)
	for t := 0; t < trees; t++ {
		perm := rng.Perm(len(values))
		for i := 0; i < psi; i++ {
			sample[i] = values[perm[i]]
		}
		f.trees = append(f.trees, grow(append([]float64(nil), sample...), 0, limit, rng))
	}
	return f
}

func grow(values []float64, depth, limit int, rng *rand.Rand) *node {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if depth >= limit || len(values) <= 1 || lo == hi {
		return &node{size: len(values)}
	}
	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{size: len(values)}
	}
	return &node{
		split: split,
		left:  grow(left, depth+1, limit, rng),
		right: grow(right, depth+1, limit, rng),
	}
}

// pathLength is the depth at which x is isolated, adjusted at leaves by the
// expected depth of the points left unsplit.
func pathLength(n *node, x float64) float64 {
	depth := 0.0
	for !n.leaf() {
		if x < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return depth + averagePath(n.size)
}

// averagePath is c(n), the mean unsuccessful search length in a binary
// search tree of n points.
func averagePath(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// score is 2^(-E[h(x)]/c(psi)), in (0, 1]; higher means more isolated.
func (f *forest) score(x float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(t, x)
	}
	mean := total / float64(len(f.trees))
	c := averagePath(f.samples)
	if c == 0 {
		return 0.5
	}
	return math.Pow(2, -mean/c)
}

// percentile uses linear interpolation between closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
