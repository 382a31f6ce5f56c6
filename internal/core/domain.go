package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Canonical department codes.
const (
	DeptBT  = "BT"
	DeptWT  = "WT"
	DeptIM  = "IM"
	DeptQC  = "QC"
	DeptMT  = "MT"
	DeptSCM = "SCM"

	// Unassigned labels records without a department in overview aggregates.
	Unassigned = "Unassigned"
)

var (
	// ErrNoData is returned when no usable record remains after filtering.
	ErrNoData = errors.New("no data")
	// ErrSourceUnavailable wraps failures to fetch or parse a single input batch.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSchema is returned for batches missing the columns required to build records.
	ErrSchema = errors.New("unusable schema")
)

type (
	// Amount is a numeric field that may be missing.
	// A missing amount is never the same thing as zero.
	Amount struct {
		Value float64
		Valid bool
	}

	// Record is one canonical transaction line.
	Record struct {
		Date        time.Time // zero when the source value could not be parsed
		Item        string
		Description string
		Quantity    Amount
		Price       Amount
		Extension   Amount
		Employee    string
		Department  string // canonical code, raw pass-through label, or empty
		Source      string // batch the record came from
	}
)

// Departments returns the canonical codes in display order.
func Departments() []string {
	return []string{DeptBT, DeptWT, DeptIM, DeptQC, DeptMT, DeptSCM}
}

// IsCanonical reports whether code belongs to the fixed department set.
func IsCanonical(code string) bool {
	switch code {
	case DeptBT, DeptWT, DeptIM, DeptQC, DeptMT, DeptSCM:
		return true
	}
	return false
}

// Some returns a present amount.
func Some(v float64) Amount { return Amount{Value: v, Valid: true} }

// Missing returns an absent amount.
func Missing() Amount { return Amount{} }

// OrZero returns the value, or 0 when missing.
func (a Amount) OrZero() float64 {
	if !a.Valid {
		return 0
	}
	return a.Value
}

// MarshalJSON encodes a missing amount as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// HasDate reports whether the record carries a parsed calendar date.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

// Usable reports whether the record may take part in aggregation:
// it needs a valid date and a valid quantity.
func (r Record) Usable() bool {
	return r.HasDate() && r.Quantity.Valid
}

// Month returns the first day of the record's calendar month.
func (r Record) Month() time.Time {
	return MonthOf(r.Date)
}

// MonthOf truncates t to the first day of its month in UTC.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DepartmentLabel returns the department, or Unassigned when empty.
func (r Record) DepartmentLabel() string {
	if strings.TrimSpace(r.Department) == "" {
		return Unassigned
	}
	return r.Department
}
