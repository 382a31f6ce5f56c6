// Package sources defines the raw inputs of a load pass. Each Source yields
// one batch of header plus rows; a Lister discovers sources at load time.
package sources

import (
	"context"
	"strings"

	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
)

// Ports for inbound adapters.
type (
	// Source fetches one raw batch.
	Source interface {
		// Name identifies the batch in warnings and records.
		Name() string
		// Key is the memoization identity: the name plus a version marker
		// (modification time, blob sha, ...), so a changed input gets a new key.
		Key() string
		Fetch(ctx context.Context) (normalize.Batch, error)
	}

	// Lister discovers sources, e.g. the monthly extracts of a folder.
	Lister interface {
		Name() string
		List(ctx context.Context) ([]Source, error)
	}
)

// Static is a Lister over a fixed set of sources.
type Static struct {
	name  string
	items []Source
}

var _ Lister = (*Static)(nil)

func NewStatic(name string, items ...Source) *Static {
	return &Static{name: name, items: append([]Source(nil), items...)}
}

func (s *Static) Name() string { return s.name }

func (s *Static) List(context.Context) ([]Source, error) {
	return append([]Source(nil), s.items...), nil
}

// BatchFromRows uses the first non-blank row as header and the rest as data.
func BatchFromRows(name string, rows [][]string) normalize.Batch {
	b := normalize.Batch{Source: name}
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		b.Header = row
		b.Rows = rows[i+1:]
		break
	}
	return b
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
