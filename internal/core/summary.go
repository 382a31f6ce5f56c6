package core

import (
	"strconv"
	"time"
)

// MonthTotal is the summed extension for one calendar month.
type MonthTotal struct {
	Month   time.Time `json:"month"`
	Total   Amount    `json:"total"`
	Records int       `json:"records"`
}

// ItemTotal is one entry of an item ranking.
type ItemTotal struct {
	Rank  int     `json:"rank"`
	Item  string  `json:"item"`
	Value float64 `json:"value"`
}

// DepartmentAmount is the extension attributed to one department.
type DepartmentAmount struct {
	Department string  `json:"department"`
	Amount     Amount  `json:"amount"`
	Percent    float64 `json:"percent"`
}

// EmployeeActivity summarises one employee over a period.
type EmployeeActivity struct {
	Employee     string `json:"employee"`
	Spend        Amount `json:"spend"`
	Transactions int    `json:"transactions"`
}

// LoadSummary describes one load pass.
type LoadSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Sources    int       `json:"sources"`
	Failed     int       `json:"failed"`
	Rows       int       `json:"rows"`
	Records    int       `json:"records"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// Label renders the ranked display name, e.g. "1. GLOVES".
func (t ItemTotal) Label() string {
	return strconv.Itoa(t.Rank) + ". " + t.Item
}
