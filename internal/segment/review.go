package segment

import (
	"sort"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

// Thresholds bound the purchase lines surfaced for review. Both are strict.
type Thresholds struct {
	MinSpend float64
	MinTxns  int
}

func DefaultThresholds() Thresholds {
	return Thresholds{MinSpend: 200, MinTxns: 5}
}

// ReviewRow is one employee's purchases of one item.
type ReviewRow struct {
	Employee     string  `json:"employee"`
	Item         string  `json:"item"`
	Quantity     float64 `json:"quantity"`
	Spend        float64 `json:"spend"`
	Transactions int     `json:"transactions"`
}

// ReviewDetails sums quantity and spend per (employee, item) over the table
// rows of the given employees, keeps lines above both thresholds and sorts
// by spend descending. Transactions counts rows with an extension.
func ReviewDetails(t *core.Table, employees []string, th Thresholds) []ReviewRow {
	if len(employees) == 0 || t.Empty() {
		return nil
	}
	wanted := make(map[string]bool, len(employees))
	for _, e := range employees {
		wanted[e] = true
	}

	type key struct{ employee, item string }
	rows := make(map[key]*ReviewRow)
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		if !wanted[r.Employee] {
			continue
		}
		k := key{r.Employee, r.Item}
		row, ok := rows[k]
		if !ok {
			row = &ReviewRow{Employee: r.Employee, Item: r.Item}
			rows[k] = row
		}
		row.Quantity += r.Quantity.OrZero()
		row.Spend += r.Extension.OrZero()
		if r.Extension.Valid {
			row.Transactions++
		}
	}

	var out []ReviewRow
	for _, row := range rows {
		if row.Spend > th.MinSpend && row.Transactions > th.MinTxns {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		if out[i].Employee != out[j].Employee {
			return out[i].Employee < out[j].Employee
		}
		return out[i].Item < out[j].Item
	})
	return out
}
