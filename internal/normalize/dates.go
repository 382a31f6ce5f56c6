package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Month-first wins over day-first for
// ambiguous slash dates, matching the US-formatted extracts.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"1/2/06",
	"01-02-2006",
	"01-02-06",
	"2-Jan-2006",
	"02-Jan-06",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

// Excel serial day numbers accepted as dates: 1910-01-01 .. 9999-12-31.
// Smaller bare numbers are quantities or years typed into a date column.
const (
	minExcelSerial = 3653
	maxExcelSerial = 2958465
)

// ParseDate parses a textual date. It returns the zero time when the value
// cannot be understood; callers treat that as an unknown date.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= minExcelSerial && f <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return dateOnly(t)
		}
	}
	return time.Time{}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
