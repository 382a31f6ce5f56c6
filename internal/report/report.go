// Package report assembles the dashboard views from a loaded table.
package report

import (
	"errors"
	"slices"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/analytics"
	"github.com/Zhengnan817/consumables-dashboard/internal/anomaly"
	"github.com/Zhengnan817/consumables-dashboard/internal/core"
	"github.com/Zhengnan817/consumables-dashboard/internal/segment"
)

// ViewOverview is the company-wide view; every other view is a department code.
const ViewOverview = "Overview"

// ErrUnknownView is returned for a view that is neither the overview nor a
// canonical department.
var ErrUnknownView = errors.New("unknown view")

// Views lists the selectable views in display order.
func Views() []string {
	return append([]string{ViewOverview}, core.Departments()...)
}

// ValidView reports whether view can be built.
func ValidView(view string) bool {
	return slices.Contains(Views(), view)
}

// Options tune a single build.
type Options struct {
	// Year selects the overview's yearly series; zero means the latest year.
	Year int
	TopN int
}

// Report is one rendered view. Exactly one of Overview and Department is set.
type Report struct {
	View        string            `json:"view"`
	GeneratedAt time.Time         `json:"generated_at"`
	KPI         analytics.KPI     `json:"kpi"`
	Overview    *OverviewReport   `json:"overview,omitempty"`
	Department  *DepartmentReport `json:"department,omitempty"`
}

type OverviewReport struct {
	Years          []int                   `json:"years"`
	SelectedYear   int                     `json:"selected_year"`
	AllTime        []core.MonthTotal       `json:"all_time"`
	YearMonthly    []core.MonthTotal       `json:"year_monthly"`
	LatestMonth    time.Time               `json:"latest_month"`
	LatestShare    []core.DepartmentAmount `json:"latest_share"`
	OverallShare   []core.DepartmentAmount `json:"overall_share"`
	TopByQuantity  []core.ItemTotal        `json:"top_by_quantity"`
	TopByExtension []core.ItemTotal        `json:"top_by_extension"`
}

type DepartmentReport struct {
	Trend                []core.MonthTotal   `json:"trend"`
	TopByQuantity        []core.ItemTotal    `json:"top_by_quantity"`
	TopByExtension       []core.ItemTotal    `json:"top_by_extension"`
	LatestMonth          time.Time           `json:"latest_month"`
	LatestTopByQuantity  []core.ItemTotal    `json:"latest_top_by_quantity"`
	LatestTopByExtension []core.ItemTotal    `json:"latest_top_by_extension"`
	Anomalies            anomaly.Result      `json:"anomalies"`
	Segments             segment.Result      `json:"segments"`
	HighFrequencyReview  []segment.ReviewRow `json:"high_frequency_review"`
	LowFrequencyReview   []segment.ReviewRow `json:"low_frequency_review"`
}
