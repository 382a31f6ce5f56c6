// Package normalize turns heterogeneous raw tabular batches into canonical
// transaction records.
//
// Column names are reconciled once per batch through an explicit alias table;
// every batch then produces the same fixed record shape no matter how its
// header was spelled.
package normalize

import (
	"fmt"
	"strings"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

// Field is a canonical column.
type Field string

const (
	FieldDate        Field = "date"
	FieldItem        Field = "item"
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldPrice       Field = "price"
	FieldExtension   Field = "extension"
	FieldEmployee    Field = "employee"
	FieldDepartment  Field = "department"
)

// Fields lists the canonical field set in display order.
func Fields() []Field {
	return []Field{
		FieldDate, FieldItem, FieldDescription, FieldQuantity,
		FieldPrice, FieldExtension, FieldEmployee, FieldDepartment,
	}
}

// ParseField resolves a canonical field name, case-insensitively.
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range Fields() {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// DefaultAliases maps header spellings to canonical fields. Keys are
// compared after aliasKey normalisation.
var DefaultAliases = map[string]Field{
	"date":             FieldDate,
	"txn date":         FieldDate,
	"transaction date": FieldDate,
	"posting date":     FieldDate,

	"item":        FieldItem,
	"item no":     FieldItem,
	"item number": FieldItem,
	"item #":      FieldItem,

	"description":      FieldDescription,
	"item description": FieldDescription,
	"desc":             FieldDescription,

	"quantity": FieldQuantity,
	"qty":      FieldQuantity,

	"price":      FieldPrice,
	"unit price": FieldPrice,

	"extension":  FieldExtension,
	"ext":        FieldExtension,
	"amount":     FieldExtension,
	"total":      FieldExtension,
	"line total": FieldExtension,

	"employee.1":    FieldEmployee,
	"employee":      FieldEmployee,
	"employee id":   FieldEmployee,
	"employee name": FieldEmployee,

	"dept":         FieldDepartment,
	"dept.":        FieldDepartment,
	"department":   FieldDepartment,
	"departement":  FieldDepartment,
	"département":  FieldDepartment,
	"departamento": FieldDepartment,
	"abteilung":    FieldDepartment,
	"部门":           FieldDepartment,
}

// Batch is one raw input table.
type Batch struct {
	Source string
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (b Batch) Len() int { return len(b.Rows) }

// Schema resolves batch headers against an alias table.
type Schema struct {
	aliases map[string]Field
}

// NewSchema builds a schema from DefaultAliases plus extra aliases.
func NewSchema(extra map[string]Field) *Schema {
	s := &Schema{aliases: make(map[string]Field, len(DefaultAliases)+len(extra))}
	for k, v := range DefaultAliases {
		s.aliases[aliasKey(k)] = v
	}
	for k, v := range extra {
		s.aliases[aliasKey(k)] = v
	}
	return s
}

// Columns maps each canonical field present in header to its column index.
// When several columns resolve to the same field the first one wins.
func (s *Schema) Columns(header []string) map[Field]int {
	cols := make(map[Field]int)
	for i, h := range header {
		f, ok := s.aliases[aliasKey(h)]
		if !ok {
			continue
		}
		if _, seen := cols[f]; seen {
			continue
		}
		cols[f] = i
	}
	return cols
}

// Resolve checks that header can produce usable records.
// A batch without a date or a quantity column cannot.
func (s *Schema) Resolve(header []string) (map[Field]int, error) {
	cols := s.Columns(header)
	var missing []string
	if _, ok := cols[FieldDate]; !ok {
		missing = append(missing, string(FieldDate))
	}
	if _, ok := cols[FieldQuantity]; !ok {
		missing = append(missing, string(FieldQuantity))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s; got headers=%v", core.ErrSchema, strings.Join(missing, ","), header)
	}
	return cols, nil
}

// aliasKey lowercases, strips a BOM and collapses whitespace.
func aliasKey(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
