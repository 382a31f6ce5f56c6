package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/analytics"
	"github.com/Zhengnan817/consumables-dashboard/internal/anomaly"
	"github.com/Zhengnan817/consumables-dashboard/internal/core"
	applog "github.com/Zhengnan817/consumables-dashboard/internal/log"
	"github.com/Zhengnan817/consumables-dashboard/internal/segment"
)

// Service builds views. It holds tuning only; every Build recomputes from
// the table it is given.
type Service struct {
	anomaly    anomaly.Config
	segment    segment.Config
	thresholds segment.Thresholds
	logger     *applog.Logger
	now        func() time.Time
}

type ServiceOption func(*Service)

func WithAnomalyConfig(c anomaly.Config) ServiceOption {
	return func(s *Service) { s.anomaly = c }
}

func WithSegmentConfig(c segment.Config) ServiceOption {
	return func(s *Service) { s.segment = c }
}

func WithThresholds(t segment.Thresholds) ServiceOption {
	return func(s *Service) { s.thresholds = t }
}

func WithLogger(l *applog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l.WithComponent(applog.ComponentReport) }
}

func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		anomaly:    anomaly.DefaultConfig(),
		segment:    segment.DefaultConfig(),
		thresholds: segment.DefaultThresholds(),
		logger:     applog.FromContext(context.Background()).WithComponent(applog.ComponentReport),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build renders one view of t.
func (s *Service) Build(ctx context.Context, t *core.Table, view string, opts Options) (Report, error) {
	if !ValidView(view) {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	if opts.TopN <= 0 {
		opts.TopN = analytics.DefaultTopN
	}
	start := s.now()

	var (
		rep Report
		err error
	)
	if view == ViewOverview {
		rep, err = s.overview(t, opts)
	} else {
		rep, err = s.department(ctx, t, view, opts)
	}
	if err != nil {
		return Report{}, fmt.Errorf("build %s: %w", view, err)
	}
	rep.View = view
	rep.GeneratedAt = start.UTC()

	s.logger.DebugContext(ctx, "Report built",
		applog.FieldView, view,
		applog.FieldRecords, rep.KPI.Records,
		applog.FieldDuration, s.now().Sub(start).Milliseconds())
	return rep, nil
}

func (s *Service) overview(t *core.Table, opts Options) (Report, error) {
	kpi, err := analytics.Totals(t)
	if err != nil {
		return Report{}, err
	}
	ov := &OverviewReport{Years: analytics.Years(t)}

	if ov.AllTime, err = analytics.MonthlySpend(t); err != nil {
		return Report{}, err
	}

	ov.SelectedYear = ov.Years[len(ov.Years)-1]
	if opts.Year != 0 {
		if !slices.Contains(ov.Years, opts.Year) {
			return Report{}, fmt.Errorf("year %d: %w", opts.Year, core.ErrNoData)
		}
		ov.SelectedYear = opts.Year
	}
	if ov.YearMonthly, err = analytics.MonthlySpend(analytics.FilterYear(t, ov.SelectedYear)); err != nil {
		return Report{}, err
	}

	if ov.LatestMonth, err = analytics.LatestMonth(t); err != nil {
		return Report{}, err
	}
	if ov.LatestShare, err = analytics.DepartmentShare(analytics.FilterMonth(t, ov.LatestMonth), true); err != nil {
		return Report{}, err
	}
	if ov.OverallShare, err = analytics.DepartmentShare(t, false); err != nil {
		return Report{}, err
	}

	if ov.TopByQuantity, err = analytics.TopItemsByQuantity(t, opts.TopN); err != nil {
		return Report{}, err
	}
	if ov.TopByExtension, err = analytics.TopItemsByExtension(t, opts.TopN); err != nil {
		return Report{}, err
	}
	return Report{KPI: kpi, Overview: ov}, nil
}

func (s *Service) department(ctx context.Context, all *core.Table, code string, opts Options) (Report, error) {
	t := analytics.FilterDepartment(all, code)
	kpi, err := analytics.Totals(t)
	if err != nil {
		return Report{}, err
	}
	d := &DepartmentReport{}

	if d.Trend, err = analytics.MonthlySpend(t); err != nil {
		return Report{}, err
	}
	if d.TopByQuantity, err = analytics.TopItemsByQuantity(t, opts.TopN); err != nil {
		return Report{}, err
	}
	if d.TopByExtension, err = analytics.TopItemsByExtension(t, opts.TopN); err != nil {
		return Report{}, err
	}

	if d.LatestMonth, err = analytics.LatestMonth(t); err != nil {
		return Report{}, err
	}
	latest := analytics.FilterMonth(t, d.LatestMonth)
	if d.LatestTopByQuantity, err = analytics.TopItemsByQuantity(latest, opts.TopN); err != nil {
		return Report{}, err
	}
	if d.LatestTopByExtension, err = analytics.TopItemsByExtension(latest, opts.TopN); err != nil {
		return Report{}, err
	}

	employees := analytics.EmployeeTotals(latest)
	d.Anomalies = anomaly.Detect(anomaly.FromActivity(employees), s.anomaly)

	if d.Segments, err = segment.Cluster(segment.FromActivity(employees), s.segment); err != nil {
		return Report{}, err
	}
	if d.Segments.Skipped {
		s.logger.InfoContext(ctx, "Clustering skipped", applog.FieldView, code, "reason", d.Segments.Reason)
	} else {
		d.HighFrequencyReview = segment.ReviewDetails(latest, d.Segments.Members(segment.LabelHighFreqLowSpend), s.thresholds)
		d.LowFrequencyReview = segment.ReviewDetails(latest, d.Segments.Members(segment.LabelLowFreqHighSpend), s.thresholds)
	}
	return Report{KPI: kpi, Department: d}, nil
}
