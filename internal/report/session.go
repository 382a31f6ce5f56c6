package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

// Session pins one loaded table. The table is immutable, so a session may be
// read from many goroutines; nothing but the table is retained.
type Session struct {
	ID       string
	LoadedAt time.Time
	Warnings []string

	table   *core.Table
	service *Service
}

func NewSession(t *core.Table, svc *Service, warnings ...string) *Session {
	if t == nil {
		t = core.NewTable(nil)
	}
	if svc == nil {
		svc = NewService()
	}
	return &Session{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Warnings: warnings,
		table:    t,
		service:  svc,
	}
}

func (s *Session) Table() *core.Table { return s.table }

// Build renders view against the pinned table.
func (s *Session) Build(ctx context.Context, view string, opts Options) (Report, error) {
	return s.service.Build(ctx, s.table, view, opts)
}
