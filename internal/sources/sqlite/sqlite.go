// Package sqlite imports one table of a SQLite export as a batch. The file is
// opened read-only; nothing is ever written back.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table selects every column of table in rowid order.
type Table struct {
	path  string
	table string
}

var _ sources.Source = (*Table)(nil)

func New(path, table string) (*Table, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Table{path: path, table: table}, nil
}

func (t *Table) Name() string { return filepath.Base(t.path) + ":" + t.table }

func (t *Table) Key() string {
	k := "sqlite:" + t.path + "#" + t.table
	if info, err := os.Stat(t.path); err == nil {
		k += fmt.Sprintf("@%d-%d", info.ModTime().UnixNano(), info.Size())
	}
	return k
}

func (t *Table) Fetch(ctx context.Context) (normalize.Batch, error) {
	if _, err := os.Stat(t.path); err != nil {
		return normalize.Batch{}, fmt.Errorf("stat %s: %w", t.path, err)
	}
	db, err := sql.Open("sqlite", "file:"+t.path+"?mode=ro")
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, t.table))
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("query %s: %w", t.table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return normalize.Batch{}, fmt.Errorf("columns of %s: %w", t.table, err)
	}

	b := normalize.Batch{Source: t.Name(), Header: header}
	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return normalize.Batch{}, fmt.Errorf("scan %s: %w", t.table, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellString(v)
		}
		b.Rows = append(b.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return normalize.Batch{}, fmt.Errorf("iterate %s: %w", t.table, err)
	}
	return b, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
