package backend

import (
	"context"

	"github.com/Zhengnan817/consumables-dashboard/internal/config"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
)

// BackendType names one kind of input.
type BackendType string

const (
	XLSXBackend   BackendType = "xlsx"
	CSVDirBackend BackendType = "csvdir"
	GitHubBackend BackendType = "github"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case XLSXBackend, CSVDirBackend, GitHubBackend, SheetsBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Set is the configured inputs of a load pass: the historical source first,
// then the incremental listers in order.
type Set struct {
	History     sources.Source
	Incremental []sources.Lister
	Types       []BackendType
}

// Empty reports whether no input is configured.
func (s *Set) Empty() bool {
	return s == nil || (s.History == nil && len(s.Incremental) == 0)
}

// Factory creates the input set based on configuration
type Factory interface {
	Create(ctx context.Context, cfg *config.Config) (*Set, error)
}
