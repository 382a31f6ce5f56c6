// Package analytics derives the dashboard aggregates from a canonical table.
// All functions are pure: they read the table and return fresh values.
package analytics

import (
	"sort"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

// DefaultTopN is the length of item rankings.
const DefaultTopN = 10

// KPI holds the headline totals of a view.
type KPI struct {
	TotalValue       float64 `json:"total_value"`
	TotalQuantity    float64 `json:"total_quantity"`
	Records          int     `json:"records"`
	MissingExtension int     `json:"missing_extension"`
}

// HasMissingExtension reports whether missing costs were counted as zero.
func (k KPI) HasMissingExtension() bool { return k.MissingExtension > 0 }

// Totals sums value and quantity. Missing extensions count as zero here and
// only here.
func Totals(t *core.Table) (KPI, error) {
	if t.Empty() {
		return KPI{}, core.ErrNoData
	}
	recs := t.Records()
	ext := make([]core.Amount, len(recs))
	qty := make([]core.Amount, len(recs))
	for i, r := range recs {
		ext[i], qty[i] = r.Extension, r.Quantity
	}
	value, _ := core.SumAmounts(ext)
	quantity, _ := core.SumAmounts(qty)
	return KPI{
		TotalValue:       value,
		TotalQuantity:    quantity,
		Records:          len(recs),
		MissingExtension: t.MissingExtensions(),
	}, nil
}

// group accumulates amounts per key in first-seen order.
type group struct {
	keys    []string
	amounts map[string][]core.Amount
	counts  map[string]int
}

func newGroup() *group {
	return &group{amounts: map[string][]core.Amount{}, counts: map[string]int{}}
}

func (g *group) add(key string, a core.Amount) {
	if _, ok := g.amounts[key]; !ok {
		g.keys = append(g.keys, key)
		g.amounts[key] = nil
	}
	g.amounts[key] = append(g.amounts[key], a)
	g.counts[key]++
}

func (g *group) sum(key string) core.Amount {
	v, ok := core.SumAmounts(g.amounts[key])
	if !ok {
		return core.Missing()
	}
	return core.Some(v)
}

// MonthlySpend sums extensions per calendar month, oldest first. A month in
// which every extension is missing reports a missing total.
func MonthlySpend(t *core.Table) ([]core.MonthTotal, error) {
	if t.Empty() {
		return nil, core.ErrNoData
	}
	g := newGroup()
	months := map[string]time.Time{}
	for _, r := range t.Records() {
		m := r.Month()
		key := m.Format("2006-01")
		months[key] = m
		g.add(key, r.Extension)
	}
	keys := append([]string(nil), g.keys...)
	sort.Strings(keys)

	out := make([]core.MonthTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, core.MonthTotal{Month: months[k], Total: g.sum(k), Records: g.counts[k]})
	}
	return out, nil
}

// TopItemsByQuantity ranks items by summed quantity.
func TopItemsByQuantity(t *core.Table, n int) ([]core.ItemTotal, error) {
	return topItems(t, n, func(r core.Record) core.Amount { return r.Quantity })
}

// TopItemsByExtension ranks items by summed extension.
func TopItemsByExtension(t *core.Table, n int) ([]core.ItemTotal, error) {
	return topItems(t, n, func(r core.Record) core.Amount { return r.Extension })
}

// topItems ranks descending and keeps the first n. Items whose values are all
// missing are left out. Ties keep first-seen order.
func topItems(t *core.Table, n int, value func(core.Record) core.Amount) ([]core.ItemTotal, error) {
	if t.Empty() {
		return nil, core.ErrNoData
	}
	if n <= 0 {
		n = DefaultTopN
	}
	g := newGroup()
	for _, r := range t.Records() {
		g.add(r.Item, value(r))
	}
	var out []core.ItemTotal
	for _, k := range g.keys {
		if s := g.sum(k); s.Valid {
			out = append(out, core.ItemTotal{Item: k, Value: s.Value})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// DepartmentShare sums extensions per department. With unassigned set,
// records without a department are bucketed as core.Unassigned; otherwise
// they are skipped. Percent is computed over the present totals. Rows are
// sorted by department label.
func DepartmentShare(t *core.Table, unassigned bool) ([]core.DepartmentAmount, error) {
	if t.Empty() {
		return nil, core.ErrNoData
	}
	g := newGroup()
	for _, r := range t.Records() {
		label := r.Department
		if label == "" {
			if !unassigned {
				continue
			}
			label = core.Unassigned
		}
		g.add(label, r.Extension)
	}
	keys := append([]string(nil), g.keys...)
	sort.Strings(keys)

	out := make([]core.DepartmentAmount, 0, len(keys))
	var total float64
	for _, k := range keys {
		s := g.sum(k)
		total += s.OrZero()
		out = append(out, core.DepartmentAmount{Department: k, Amount: s})
	}
	if total != 0 {
		for i := range out {
			if out[i].Amount.Valid {
				out[i].Percent = out[i].Amount.Value / total * 100
			}
		}
	}
	return out, nil
}

// EmployeeTotals returns spend and transaction count per employee in
// first-seen order. Transactions counts records with a present extension.
// Records without an employee are skipped.
func EmployeeTotals(t *core.Table) []core.EmployeeActivity {
	g := newGroup()
	txns := map[string]int{}
	for _, r := range t.Records() {
		if r.Employee == "" {
			continue
		}
		g.add(r.Employee, r.Extension)
		if r.Extension.Valid {
			txns[r.Employee]++
		}
	}
	out := make([]core.EmployeeActivity, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, core.EmployeeActivity{Employee: k, Spend: g.sum(k), Transactions: txns[k]})
	}
	return out
}
