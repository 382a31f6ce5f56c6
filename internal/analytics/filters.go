package analytics

import (
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

// Years lists the distinct years present, ascending.
func Years(t *core.Table) []int { return t.Years() }

// LatestMonth returns the most recent month present.
func LatestMonth(t *core.Table) (time.Time, error) {
	m, ok := t.LatestMonth()
	if !ok {
		return time.Time{}, core.ErrNoData
	}
	return m, nil
}

func FilterYear(t *core.Table, year int) *core.Table { return t.Year(year) }

func FilterMonth(t *core.Table, month time.Time) *core.Table { return t.InMonth(month) }

// FilterDepartment keeps records of one canonical department only.
func FilterDepartment(t *core.Table, code string) *core.Table { return t.Department(code) }
