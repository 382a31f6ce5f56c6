package segment

import (
	"math"
	"math/rand/v2"
)

type point struct{ x, y float64 }

func dist2(a, b point) float64 {
	dx, dy := a.x-b.x, a.y-b.y
	return dx*dx + dy*dy
}

type run struct {
	centers []point
	labels  []int
	inertia float64
}

// kmeans runs nInit seeded restarts of Lloyd's algorithm and keeps the
// lowest inertia. Earlier runs win ties.
func kmeans(pts []point, k, nInit, maxIter int, tol float64, rng *rand.Rand) run {
	tol *= meanVariance(pts)
	best := run{inertia: math.Inf(1)}
	for i := 0; i < nInit; i++ {
		r := lloyd(pts, seedCenters(pts, k, rng), maxIter, tol)
		if r.inertia < best.inertia {
			best = r
		}
	}
	return best
}

// seedCenters is greedy k-means++: each new center is the best of a few
// D²-weighted candidates.
func seedCenters(pts []point, k int, rng *rand.Rand) []point {
	n := len(pts)
	centers := []point{pts[rng.IntN(n)]}
	d2 := make([]float64, n)
	for i, p := range pts {
		d2[i] = dist2(p, centers[0])
	}
	trials := 2 + int(math.Log(float64(k)))

	for len(centers) < k {
		total := 0.0
		for _, d := range d2 {
			total += d
		}
		if total == 0 {
			break
		}
		bestIdx, bestPot := -1, math.Inf(1)
		var bestD2 []float64
		for t := 0; t < trials; t++ {
			cand := sampleIndex(d2, total, rng)
			nd := make([]float64, n)
			pot := 0.0
			for i, p := range pts {
				nd[i] = math.Min(d2[i], dist2(p, pts[cand]))
				pot += nd[i]
			}
			if pot < bestPot {
				bestIdx, bestPot, bestD2 = cand, pot, nd
			}
		}
		centers = append(centers, pts[bestIdx])
		d2 = bestD2
	}
	return centers
}

func sampleIndex(weights []float64, total float64, rng *rand.Rand) int {
	r := rng.Float64() * total
	last := -1
	cum := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cum += w
		if cum > r {
			return i
		}
	}
	return last
}

func lloyd(pts []point, centers []point, maxIter int, tol float64) run {
	k := len(centers)
	labels := make([]int, len(pts))
	for it := 0; it < maxIter; it++ {
		assign(pts, centers, labels)

		sums := make([]point, k)
		counts := make([]int, k)
		for i, p := range pts {
			c := labels[i]
			sums[c].x += p.x
			sums[c].y += p.y
			counts[c]++
		}
		shift := 0.0
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			next := point{sums[c].x / float64(counts[c]), sums[c].y / float64(counts[c])}
			shift += dist2(centers[c], next)
			centers[c] = next
		}
		if shift <= tol {
			break
		}
	}
	inertia := assign(pts, centers, labels)
	return run{centers: centers, labels: labels, inertia: inertia}
}

// assign labels each point with its nearest center and returns the inertia.
func assign(pts []point, centers []point, labels []int) float64 {
	inertia := 0.0
	for i, p := range pts {
		best, bestD := 0, math.Inf(1)
		for c, ctr := range centers {
			if d := dist2(p, ctr); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
		inertia += bestD
	}
	return inertia
}

func meanVariance(pts []point) float64 {
	n := float64(len(pts))
	var mx, my float64
	for _, p := range pts {
		mx += p.x
		my += p.y
	}
	mx, my = mx/n, my/n
	var vx, vy float64
	for _, p := range pts {
		vx += (p.x - mx) * (p.x - mx)
		vy += (p.y - my) * (p.y - my)
	}
	return (vx/n + vy/n) / 2
}
