// Package segment groups employees by purchasing behaviour (transaction count
// against total spend) and names the extreme groups for review.
package segment

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

const (
	LabelHighFreqLowSpend = "High-Frequency, Low-Spend"
	LabelLowFreqHighSpend = "Low-Frequency, High-Spend"
	LabelMidRange         = "Mid-Range"
)

// ErrInvalidConfig is returned for a non-positive cluster count.
var ErrInvalidConfig = errors.New("invalid segmentation config")

type Config struct {
	K       int
	NInit   int
	MaxIter int
	Tol     float64
	Seed    uint64
}

func DefaultConfig() Config {
	return Config{K: 3, NInit: 10, MaxIter: 300, Tol: 1e-4, Seed: 42}
}

// Feature is one employee's activity for the period.
type Feature struct {
	Employee     string  `json:"employee"`
	Spend        float64 `json:"spend"`
	Transactions int     `json:"transactions"`
}

// Centroid is a cluster center in feature space.
type Centroid struct {
	Cluster      int     `json:"cluster"`
	Spend        float64 `json:"spend"`
	Transactions float64 `json:"transactions"`
}

// Assignment places one employee in a labelled cluster.
type Assignment struct {
	Feature
	Cluster int    `json:"cluster"`
	Label   string `json:"label"`
}

type Result struct {
	Assignments []Assignment   `json:"assignments"`
	Centroids   []Centroid     `json:"centroids"`
	Labels      map[int]string `json:"labels"`
	Inertia     float64        `json:"inertia"`
	Skipped     bool           `json:"skipped"`
	Reason      string         `json:"reason,omitempty"`
}

// Members returns the employees carrying label, in input order.
func (r Result) Members(label string) []string {
	var out []string
	for _, a := range r.Assignments {
		if a.Label == label {
			out = append(out, a.Employee)
		}
	}
	return out
}

// FromActivity keeps employees with positive spend and at least one transaction.
func FromActivity(acts []core.EmployeeActivity) []Feature {
	var out []Feature
	for _, a := range acts {
		if a.Spend.Valid && a.Spend.Value > 0 && a.Transactions > 0 {
			out = append(out, Feature{Employee: a.Employee, Spend: a.Spend.Value, Transactions: a.Transactions})
		}
	}
	return out
}

// Cluster partitions qualifying employees into cfg.K groups over
// (spend, transactions). Too few employees or distinct points skip
// clustering rather than fail.
func Cluster(features []Feature, cfg Config) (Result, error) {
	d := DefaultConfig()
	if cfg.K == 0 {
		cfg.K = d.K
	}
	if cfg.K < 1 {
		return Result{}, fmt.Errorf("%w: k=%d", ErrInvalidConfig, cfg.K)
	}
	if cfg.NInit <= 0 {
		cfg.NInit = d.NInit
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = d.MaxIter
	}
	if cfg.Tol <= 0 {
		cfg.Tol = d.Tol
	}

	var kept []Feature
	distinct := make(map[point]struct{})
	for _, f := range features {
		if f.Spend > 0 && f.Transactions > 0 {
			kept = append(kept, f)
			distinct[point{f.Spend, float64(f.Transactions)}] = struct{}{}
		}
	}
	if len(kept) < cfg.K {
		return Result{Skipped: true, Reason: fmt.Sprintf("%d qualifying employees, need at least %d", len(kept), cfg.K)}, nil
	}
	if len(distinct) < cfg.K {
		return Result{Skipped: true, Reason: fmt.Sprintf("%d distinct activity profiles, need at least %d", len(distinct), cfg.K)}, nil
	}

	pts := make([]point, len(kept))
	for i, f := range kept {
		pts[i] = point{f.Spend, float64(f.Transactions)}
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	r := kmeans(pts, cfg.K, cfg.NInit, cfg.MaxIter, cfg.Tol, rng)

	res := Result{Inertia: r.inertia}
	for c, ctr := range r.centers {
		res.Centroids = append(res.Centroids, Centroid{Cluster: c, Spend: ctr.x, Transactions: ctr.y})
	}
	res.Labels = Label(res.Centroids)
	for i, f := range kept {
		c := r.labels[i]
		res.Assignments = append(res.Assignments, Assignment{Feature: f, Cluster: c, Label: res.Labels[c]})
	}
	return res, nil
}

// Label names clusters from their centroids. The highest transaction
// centroid (ties: lowest spend) is high-frequency low-spend, the lowest
// (ties: highest spend) is low-frequency high-spend, the rest mid-range.
// When both pick the same cluster the high-frequency label stands.
func Label(centroids []Centroid) map[int]string {
	labels := make(map[int]string, len(centroids))
	if len(centroids) == 0 {
		return labels
	}
	hf, lf := centroids[0], centroids[0]
	for _, c := range centroids[1:] {
		if c.Transactions > hf.Transactions || (c.Transactions == hf.Transactions && c.Spend < hf.Spend) {
			hf = c
		}
		if c.Transactions < lf.Transactions || (c.Transactions == lf.Transactions && c.Spend > lf.Spend) {
			lf = c
		}
	}
	for _, c := range centroids {
		labels[c.Cluster] = LabelMidRange
	}
	labels[lf.Cluster] = LabelLowFreqHighSpend
	labels[hf.Cluster] = LabelHighFreqLowSpend
	return labels
}
