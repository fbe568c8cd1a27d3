package fiscal

import (
	"fmt"
	"time"
)

// =============================================================================
// YEAR-MONTH - Calendar month value type
// =============================================================================

const (
	yearMonthLayout = "2006-01"
	dateLayout      = "2006-01-02"
)

// YearMonth identifies a calendar month. It is used as the key for all sparse
// per-month data (cost overrides, time-charge prices, sales targets) instead
// of raw "YYYY-MM" strings, and it text-marshals back to that form so stored
// JSON keeps the original wire shape.
type YearMonth struct {
	Year  int
	Month time.Month
}

func YM(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}
}

// YearMonthOf returns the month containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses a "YYYY-MM" key. The zero value and false are
// returned for malformed input; callers treat that as "no data".
func ParseYearMonth(s string) (YearMonth, bool) {
	t, err := time.ParseInLocation(yearMonthLayout, s, time.Local)
	if err != nil {
		return YearMonth{}, false
	}
	return YearMonthOf(t), true
}

// ParseDate parses a "YYYY-MM-DD" string to local midnight. Date-only input
// must never be parsed as UTC: with a nonzero timezone offset that shifts
// every month-boundary comparison by a day and misassigns revenue.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

// Key returns the "YYYY-MM" form.
func (ym YearMonth) Key() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) String() string { return ym.Key() }

// Label returns the display form used in projection rows, e.g. "Dec 2025".
func (ym YearMonth) Label() string {
	return ym.Start().Format("Jan 2006")
}

// Index returns a monotonically increasing month ordinal. Month distances
// and comparisons are differences of indexes.
func (ym YearMonth) Index() int {
	return ym.Year*12 + int(ym.Month) - 1
}

func (ym YearMonth) Before(other YearMonth) bool { return ym.Index() < other.Index() }
func (ym YearMonth) After(other YearMonth) bool  { return ym.Index() > other.Index() }

func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(n), 1, 0, 0, 0, 0, time.Local)
	return YearMonthOf(t)
}

// Start returns the first day of the month at local midnight.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.Local)
}

// End returns the last day of the month at local midnight.
func (ym YearMonth) End() time.Time {
	return time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.Local).AddDate(0, 0, -1)
}

// Days returns the number of calendar days in the month.
func (ym YearMonth) Days() int { return ym.End().Day() }

// Contains reports whether t falls inside the month.
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// MonthsBetween returns the signed month distance from a to b.
func MonthsBetween(a, b YearMonth) int { return b.Index() - a.Index() }

// MarshalText implements encoding.TextMarshaler so YearMonth works as a JSON
// map key.
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, ok := ParseYearMonth(string(b))
	if !ok {
		return fmt.Errorf("invalid year-month %q", b)
	}
	*ym = parsed
	return nil
}
