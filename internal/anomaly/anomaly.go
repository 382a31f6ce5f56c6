// Package anomaly flags employees whose period spend stands out from their
// peers, using an isolation forest over one feature: total spend.
package anomaly

import (
	"math/rand/v2"
	"sort"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

// Labels follow the usual outlier-detector convention.
const (
	LabelAnomaly = -1
	LabelNormal  = 1
)

// Config tunes the forest. It is fitted fresh on every call.
type Config struct {
	Trees         int
	MaxSamples    int
	Contamination float64
	Seed          uint64
}

func DefaultConfig() Config {
	return Config{Trees: 100, MaxSamples: 256, Contamination: 0.05, Seed: 42}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.MaxSamples <= 0 {
		c.MaxSamples = d.MaxSamples
	}
	if c.Contamination <= 0 || c.Contamination > 0.5 {
		c.Contamination = d.Contamination
	}
	return c
}

// EmployeeSpend is the single feature scored per employee.
type EmployeeSpend struct {
	Employee string  `json:"employee"`
	Spend    float64 `json:"spend"`
}

// Score is the outcome for one employee.
type Score struct {
	Employee string  `json:"employee"`
	Spend    float64 `json:"spend"`
	Score    float64 `json:"score"`
	Anomaly  bool    `json:"anomaly"`
	Label    int     `json:"label"`
}

// Result holds per-employee scores in input order and the flagged subset
// sorted by spend ascending.
type Result struct {
	Scores    []Score `json:"scores"`
	Anomalies []Score `json:"anomalies"`
	Threshold float64 `json:"threshold"`
	Skipped   bool    `json:"skipped"`
	Reason    string  `json:"reason,omitempty"`
}

// FromActivity keeps employees with a present, positive spend.
func FromActivity(acts []core.EmployeeActivity) []EmployeeSpend {
	var out []EmployeeSpend
	for _, a := range acts {
		if a.Spend.Valid && a.Spend.Value > 0 {
			out = append(out, EmployeeSpend{Employee: a.Employee, Spend: a.Spend.Value})
		}
	}
	return out
}

// Detect scores every employee with positive spend. An employee is anomalous
// when its score strictly exceeds the contamination quantile threshold, so
// tied extremes flag nobody. Fewer than two employees yields a skipped,
// empty result.
func Detect(spends []EmployeeSpend, cfg Config) Result {
	cfg = cfg.withDefaults()

	var kept []EmployeeSpend
	distinct := make(map[string]struct{})
	for _, s := range spends {
		if s.Spend > 0 {
			kept = append(kept, s)
			distinct[s.Employee] = struct{}{}
		}
	}
	if len(distinct) < 2 {
		return Result{Skipped: true, Reason: "fewer than two employees with positive spend"}
	}

	values := make([]float64, len(kept))
	for i, s := range kept {
		values[i] = s.Spend
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	f := fit(values, cfg.Trees, cfg.MaxSamples, rng)

	res := Result{Scores: make([]Score, len(kept))}
	negated := make([]float64, len(kept))
	for i, s := range kept {
		sc := f.score(s.Spend)
		res.Scores[i] = Score{Employee: s.Employee, Spend: s.Spend, Score: sc, Label: LabelNormal}
		negated[i] = -sc
	}
	sort.Float64s(negated)
	res.Threshold = -percentile(negated, cfg.Contamination*100)

	for i := range res.Scores {
		if res.Scores[i].Score > res.Threshold {
			res.Scores[i].Anomaly = true
			res.Scores[i].Label = LabelAnomaly
			res.Anomalies = append(res.Anomalies, res.Scores[i])
		}
	}
	sort.SliceStable(res.Anomalies, func(i, j int) bool { return res.Anomalies[i].Spend < res.Anomalies[j].Spend })
	return res
}
