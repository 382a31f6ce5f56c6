// Package loader runs a load pass: fetch every batch, normalize it and merge
// the results into one canonical table. A failing batch becomes a warning;
// only an empty result is fatal.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Zhengnan817/consumables-dashboard/internal/cache"
	"github.com/Zhengnan817/consumables-dashboard/internal/core"
	applog "github.com/Zhengnan817/consumables-dashboard/internal/log"
	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
	"github.com/Zhengnan817/consumables-dashboard/internal/sources"
)

const defaultConcurrency = 4

// Notifier receives a summary after each load pass.
type Notifier interface {
	Notify(ctx context.Context, s core.LoadSummary) error
}

// Warning reports a batch (or lister) that was skipped.
type Warning struct {
	Source string
	Err    error
}

func (w Warning) Error() string { return w.Source + ": " + w.Err.Error() }

func (w Warning) Unwrap() error { return w.Err }

// Result is the outcome of a load pass.
type Result struct {
	RunID    string
	Table    *core.Table
	Warnings []Warning
	Stats    normalize.Stats
	Sources  int
}

// Loader fetches and merges batches. The cache is owned by the caller and
// may be shared across loaders.
type Loader struct {
	history     sources.Source
	listers     []sources.Lister
	normalizer  *normalize.Normalizer
	cache       cache.Cache[normalize.Batch]
	group       singleflight.Group
	concurrency int
	notifier    Notifier
	logger      *applog.Logger
	now         func() time.Time
}

type Option func(*Loader)

// WithCache memoizes fetched batches by source key.
func WithCache(c cache.Cache[normalize.Batch]) Option {
	return func(l *Loader) { l.cache = c }
}

// WithConcurrency bounds the number of fetches in flight.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(l *Loader) { l.notifier = n }
}

func WithNormalizer(n *normalize.Normalizer) Option {
	return func(l *Loader) { l.normalizer = n }
}

func WithLogger(logger *applog.Logger) Option {
	return func(l *Loader) { l.logger = logger.WithComponent(applog.ComponentLoader) }
}

// New builds a loader reading history first (may be nil), then every source
// of each lister in order.
func New(history sources.Source, listers []sources.Lister, opts ...Option) *Loader {
	l := &Loader{
		history:     history,
		listers:     listers,
		normalizer:  normalize.New(nil, nil),
		concurrency: defaultConcurrency,
		logger:      applog.FromContext(context.Background()).WithComponent(applog.ComponentLoader),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type slot struct {
	records []core.Record
	stats   normalize.Stats
	err     error
}

// Load runs one pass. When no record survives it returns core.ErrNoData
// together with the partial result, so callers can still show warnings.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	started := l.now()
	res := &Result{RunID: uuid.NewString()}
	logger := l.logger.With(applog.FieldRunID, res.RunID)

	srcs, listWarnings, err := l.plan(ctx)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, listWarnings...)
	res.Sources = len(srcs)

	slots := make([]slot, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, src := range srcs {
		g.Go(func() error {
			b, err := l.fetch(gctx, src)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slots[i].err = err
				return nil
			}
			recs, st, err := l.normalizer.Batch(b)
			slots[i] = slot{records: recs, stats: st, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	parts := make([][]core.Record, 0, len(slots))
	for i, s := range slots {
		if s.err != nil {
			w := Warning{Source: srcs[i].Name(), Err: fmt.Errorf("%w: %w", core.ErrSourceUnavailable, s.err)}
			res.Warnings = append(res.Warnings, w)
			logger.WarnContext(ctx, "Skipping batch", applog.FieldSource, w.Source, applog.FieldError, s.err)
			continue
		}
		res.Stats.Add(s.stats)
		parts = append(parts, s.records)
		logger.DebugContext(ctx, "Batch normalized", applog.NewFields().WithSource(srcs[i].Name()).WithBatch(s.stats.Rows, s.stats.Kept).ToSlice()...)
	}
	res.Table = core.NewTable(normalize.Merge(parts...))

	duration := l.now().Sub(started)
	logger.InfoContext(ctx, "Load complete",
		applog.FieldSources, res.Sources,
		applog.FieldRecords, res.Table.Len(),
		applog.FieldWarnings, len(res.Warnings),
		applog.FieldDuration, duration.Milliseconds())
	l.notify(ctx, res, started, duration)

	if res.Table.Empty() {
		return res, fmt.Errorf("load: %w", core.ErrNoData)
	}
	return res, nil
}

// plan lists every source in load order. Lister failures are warnings.
func (l *Loader) plan(ctx context.Context) ([]sources.Source, []Warning, error) {
	listed := make([][]sources.Source, len(l.listers))
	failed := make([]error, len(l.listers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, lister := range l.listers {
		g.Go(func() error {
			items, err := lister.List(gctx)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			listed[i], failed[i] = items, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("list sources: %w", err)
	}

	var srcs []sources.Source
	if l.history != nil {
		srcs = append(srcs, l.history)
	}
	var warnings []Warning
	for i, lister := range l.listers {
		if failed[i] != nil {
			warnings = append(warnings, Warning{Source: lister.Name(), Err: fmt.Errorf("%w: %w", core.ErrSourceUnavailable, failed[i])})
			l.logger.WarnContext(ctx, "Skipping lister", applog.FieldSource, lister.Name(), applog.FieldError, failed[i])
			continue
		}
		srcs = append(srcs, listed[i]...)
	}
	return srcs, warnings, nil
}

// fetch memoizes by source key and collapses concurrent identical fetches.
func (l *Loader) fetch(ctx context.Context, src sources.Source) (normalize.Batch, error) {
	key := src.Key()
	if l.cache != nil {
		if b, ok := l.cache.Get(key); ok {
			l.logger.DebugContext(ctx, "Batch served from cache", applog.FieldSource, src.Name(), applog.FieldCacheHit, true)
			return b, nil
		}
	}
	v, err, _ := l.group.Do(key, func() (any, error) {
		b, err := src.Fetch(ctx)
		if err != nil {
			return normalize.Batch{}, err
		}
		if l.cache != nil {
			l.cache.Set(key, b)
		}
		return b, nil
	})
	if err != nil {
		return normalize.Batch{}, err
	}
	return v.(normalize.Batch), nil
}

func (l *Loader) notify(ctx context.Context, res *Result, started time.Time, d time.Duration) {
	if l.notifier == nil {
		return
	}
	s := core.LoadSummary{
		RunID:      res.RunID,
		StartedAt:  started,
		DurationMs: d.Milliseconds(),
		Sources:    res.Sources,
		Failed:     len(res.Warnings),
		Rows:       res.Stats.Rows,
		Records:    res.Table.Len(),
	}
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	if err := l.notifier.Notify(ctx, s); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish load summary", applog.FieldError, err)
	}
}

// IsUnavailable reports whether err marks a skipped batch.
func IsUnavailable(err error) bool {
	return errors.Is(err, core.ErrSourceUnavailable)
}
