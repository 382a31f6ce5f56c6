// Package worker keeps a report session fresh by reloading on an interval.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
	"github.com/Zhengnan817/consumables-dashboard/internal/loader"
	applog "github.com/Zhengnan817/consumables-dashboard/internal/log"
	"github.com/Zhengnan817/consumables-dashboard/internal/report"
)

// Loader runs one load pass.
type Loader interface {
	Load(ctx context.Context) (*loader.Result, error)
}

// RefreshWorker reloads all sources and swaps in a new session. A failed
// reload keeps the previous session.
type RefreshWorker struct {
	loader   Loader
	service  *report.Service
	interval time.Duration
	current  atomic.Pointer[report.Session]
	logger   *applog.Logger

	// OnRefresh, when set, runs after every successful swap.
	OnRefresh func(ctx context.Context, s *report.Session)
}

func NewRefreshWorker(l Loader, svc *report.Service, interval time.Duration, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &RefreshWorker{
		loader:   l,
		service:  svc,
		interval: interval,
		logger:   logger.WithComponent(applog.ComponentLoader),
	}
}

// Current returns the latest good session, or nil before the first load.
func (w *RefreshWorker) Current() *report.Session {
	return w.current.Load()
}

// Refresh runs one load pass and publishes its session.
func (w *RefreshWorker) Refresh(ctx context.Context) (*report.Session, error) {
	res, err := w.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNoData) && w.Current() != nil {
			w.logger.WarnContext(ctx, "Reload produced no data, keeping previous session", applog.FieldError, err)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	warnings := make([]string, len(res.Warnings))
	for i, warn := range res.Warnings {
		warnings[i] = warn.Error()
	}
	s := report.NewSession(res.Table, w.service, warnings...)
	w.current.Store(s)

	w.logger.InfoContext(ctx, "Session refreshed",
		applog.FieldRunID, res.RunID,
		applog.FieldRecords, res.Table.Len(),
		applog.FieldWarnings, len(warnings))
	if w.OnRefresh != nil {
		w.OnRefresh(ctx, s)
	}
	return s, nil
}

// Run refreshes immediately, then every interval until ctx is done. Failed
// periodic refreshes are logged and retried on the next tick.
func (w *RefreshWorker) Run(ctx context.Context) error {
	if _, err := w.Refresh(ctx); err != nil {
		return err
	}
	if w.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Refresh loop stopped", "reason", ctx.Err())
			return nil
		case now := <-ticker.C:
			if _, err := w.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.ErrorContext(ctx, "Periodic refresh failed", applog.FieldError, err)
				continue
			}
			w.logger.DebugContext(ctx, "Next refresh", "at", now.Add(w.interval).Format("15:04:05"))
		}
	}
}
