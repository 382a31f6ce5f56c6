package normalize

import (
	"strings"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

// RawRecord is a batch row restricted to the canonical field set. Numeric
// fields are still raw text; only the date has been parsed.
type RawRecord struct {
	Date        time.Time
	Item        string
	Description string
	Quantity    string
	Price       string
	Extension   string
	Employee    string
	Department  string
	Source      string
}

// Stats counts what happened to rows while building canonical records.
type Stats struct {
	Rows            int `json:"rows"`
	Kept            int `json:"kept"`
	InvalidDate     int `json:"invalid_date"`
	InvalidQuantity int `json:"invalid_quantity"`
	Excluded        int `json:"excluded"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rows += other.Rows
	s.Kept += other.Kept
	s.InvalidDate += other.InvalidDate
	s.InvalidQuantity += other.InvalidQuantity
	s.Excluded += other.Excluded
}

// Normalizer runs the schema, sanitizer and department mapper over batches.
type Normalizer struct {
	schema *Schema
	depts  *core.DepartmentMapper
}

// New creates a Normalizer. Nil arguments fall back to the defaults.
func New(schema *Schema, depts *core.DepartmentMapper) *Normalizer {
	if schema == nil {
		schema = NewSchema(nil)
	}
	if depts == nil {
		depts = core.NewDepartmentMapper()
	}
	return &Normalizer{schema: schema, depts: depts}
}

// Restrict projects a batch onto the canonical field set. Columns absent
// from the batch stay empty. Fully blank rows are skipped.
func (n *Normalizer) Restrict(b Batch) ([]RawRecord, error) {
	cols, err := n.schema.Resolve(b.Header)
	if err != nil {
		return nil, err
	}
	get := func(row []string, f Field) string {
		idx, ok := cols[f]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	out := make([]RawRecord, 0, len(b.Rows))
	for _, row := range b.Rows {
		if blank(row) {
			continue
		}
		out = append(out, RawRecord{
			Date:        ParseDate(get(row, FieldDate)),
			Item:        get(row, FieldItem),
			Description: get(row, FieldDescription),
			Quantity:    get(row, FieldQuantity),
			Price:       get(row, FieldPrice),
			Extension:   get(row, FieldExtension),
			Employee:    get(row, FieldEmployee),
			Department:  get(row, FieldDepartment),
			Source:      b.Source,
		})
	}
	return out, nil
}

// Canonicalize sanitizes numeric fields and maps departments. Rows without a
// valid date or quantity, and rows from excluded departments, are dropped.
func (n *Normalizer) Canonicalize(raws []RawRecord) ([]core.Record, Stats) {
	st := Stats{Rows: len(raws)}
	out := make([]core.Record, 0, len(raws))
	for _, r := range raws {
		dept, keep := n.depts.Map(r.Department)
		if !keep {
			st.Excluded++
			continue
		}
		rec := core.Record{
			Date:        r.Date,
			Item:        r.Item,
			Description: r.Description,
			Quantity:    core.ParseQuantity(r.Quantity),
			Price:       core.ParseAmount(r.Price),
			Extension:   core.ParseAmount(r.Extension),
			Employee:    r.Employee,
			Department:  dept,
			Source:      r.Source,
		}
		if !rec.HasDate() {
			st.InvalidDate++
			continue
		}
		if !rec.Quantity.Valid {
			st.InvalidQuantity++
			continue
		}
		out = append(out, rec)
	}
	st.Kept = len(out)
	return out, st
}

// Batch normalizes one batch end to end.
func (n *Normalizer) Batch(b Batch) ([]core.Record, Stats, error) {
	raws, err := n.Restrict(b)
	if err != nil {
		return nil, Stats{}, err
	}
	recs, st := n.Canonicalize(raws)
	return recs, st, nil
}

// Merge concatenates record slices in order. No de-duplication is done:
// sources are trusted to be disjoint.
func Merge(parts ...[]core.Record) []core.Record {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]core.Record, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
