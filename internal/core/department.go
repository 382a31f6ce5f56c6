package core

import "strings"

// DefaultDepartmentAliases maps normalized raw labels to canonical codes.
var DefaultDepartmentAliases = map[string]string{
	"BTC":        DeptBT,
	"BT":         DeptBT,
	"WTC":        DeptWT,
	"WT":         DeptWT,
	"IM":         DeptIM,
	"QC AND NDT": DeptQC,
	"QC":         DeptQC,
	"MAINT":      DeptMT,
	"MT":         DeptMT,
	"WH":         DeptSCM,
	"LOGI":       DeptSCM,
	"SCM":        DeptSCM,
}

// DefaultDepartmentExclusions are labels whose records never enter analysis.
var DefaultDepartmentExclusions = []string{
	"KONE,CRANE PUEBLO",
	"Portugal,Employee",
	"Pueblo,HSE",
	"Pueblo,Kitting",
}

// DepartmentMapper canonicalizes free-text department labels.
type DepartmentMapper struct {
	aliases  map[string]string
	excluded map[string]struct{}
}

// NewDepartmentMapper builds a mapper from the default tables plus extra
// exclusions.
func NewDepartmentMapper(extraExclusions ...string) *DepartmentMapper {
	m := &DepartmentMapper{
		aliases:  make(map[string]string, len(DefaultDepartmentAliases)),
		excluded: make(map[string]struct{}),
	}
	for raw, code := range DefaultDepartmentAliases {
		m.aliases[normalizeLabel(raw)] = code
	}
	for _, raw := range DefaultDepartmentExclusions {
		m.Exclude(raw)
	}
	for _, raw := range extraExclusions {
		m.Exclude(raw)
	}
	return m
}

// Alias registers an additional raw label for a canonical code.
func (m *DepartmentMapper) Alias(raw, code string) {
	m.aliases[normalizeLabel(raw)] = code
}

// Exclude adds a label to the exclusion list.
func (m *DepartmentMapper) Exclude(raw string) {
	key := normalizeLabel(raw)
	if key == "" {
		return
	}
	m.excluded[key] = struct{}{}
}

// Map returns the canonical code for raw. Labels not in the lookup pass
// through trimmed. keep is false when the label is excluded, in which case
// the whole record must be dropped.
func (m *DepartmentMapper) Map(raw string) (code string, keep bool) {
	key := normalizeLabel(raw)
	if _, ok := m.excluded[key]; ok {
		return "", false
	}
	if isNullLabel(key) {
		return "", true
	}
	if code, ok := m.aliases[key]; ok {
		return code, true
	}
	return strings.Join(strings.Fields(raw), " "), true
}

// normalizeLabel trims, uppercases and collapses inner whitespace.
func normalizeLabel(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func isNullLabel(key string) bool {
	switch key {
	case "", "NAN", "NONE", "NULL", "N/A", "<NA>":
		return true
	}
	return false
}
