package core

import (
	"sort"
	"time"
)

// Table is the merged canonical table. It is immutable once built: filters
// return new tables and Records returns a copy.
type Table struct {
	records []Record
}

// NewTable copies recs into a new table.
func NewTable(recs []Record) *Table {
	cp := make([]Record, len(recs))
	copy(cp, recs)
	return &Table{records: cp}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Empty reports whether the table holds no record.
func (t *Table) Empty() bool { return t.Len() == 0 }

// At returns the i-th record.
func (t *Table) At(i int) Record { return t.records[i] }

// Records returns a copy of the rows.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	cp := make([]Record, len(t.records))
	copy(cp, t.records)
	return cp
}

// Filter returns the records matching keep, in order.
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := &Table{}
	if t == nil {
		return out
	}
	for _, r := range t.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Department is a strict filter on a canonical code.
func (t *Table) Department(code string) *Table {
	return t.Filter(func(r Record) bool { return r.Department == code })
}

// Year keeps records dated in year.
func (t *Table) Year(year int) *Table {
	return t.Filter(func(r Record) bool { return r.Date.Year() == year })
}

// InMonth keeps records in the calendar month of m.
func (t *Table) InMonth(m time.Time) *Table {
	m = MonthOf(m)
	return t.Filter(func(r Record) bool { return r.Month().Equal(m) })
}

// Years returns the distinct years present, ascending.
func (t *Table) Years() []int {
	seen := map[int]struct{}{}
	var years []int
	for i := 0; i < t.Len(); i++ {
		y := t.records[i].Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LatestMonth returns the most recent month present. ok is false for an
// empty table.
func (t *Table) LatestMonth() (time.Time, bool) {
	var latest time.Time
	for i := 0; i < t.Len(); i++ {
		if m := t.records[i].Month(); m.After(latest) {
			latest = m
		}
	}
	return latest, !latest.IsZero()
}

// MissingExtensions counts records without a monetary value.
func (t *Table) MissingExtensions() int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if !t.records[i].Extension.Valid {
			n++
		}
	}
	return n
}
