package timerecord

import (
	"fmt"
	"time"
)

// YearMonth is a calendar bucket. Its sort key orders buckets chronologically
// with plain string comparison, independent of locale.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// Fixed three-letter month abbreviations. A lookup table rather than
// time.Month.String()[:3] so the mapping can never follow platform locale.
var monthNames = [13]string{
	"", "Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// BucketOf returns the calendar bucket a date falls in.
func BucketOf(date time.Time) YearMonth {
	return YearMonth{Year: date.Year(), Month: int(date.Month())}
}

// MonthName returns the fixed Jan-Dec abbreviation, or "" for an
// out-of-range month.
func (ym YearMonth) MonthName() string {
	if ym.Month < 1 || ym.Month > 12 {
		return ""
	}
	return monthNames[ym.Month]
}

// SortKey returns "YYYY-MM" with a zero-padded month for lexicographic
// chronological ordering.
func (ym YearMonth) SortKey() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Label returns the display form, e.g. "Jan 2026".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%s %d", ym.MonthName(), ym.Year)
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// WeekStart returns the Monday of the week the date falls in, truncated to
// midnight UTC, so daily records can be lined up against weekly capacity rows.
func WeekStart(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}
