/*
term.go - Fiscal term calendar

PURPOSE:

	The accounting year runs December through November and is identified by
	its ending calendar year: Term(2026) spans Dec 1 2025 - Nov 30 2026.
	This file enumerates the term's months, builds the Monday-week schedule
	the resource planning grid consumes, and provides the month-duration
	helper used for contract length display.

WEEK ASSIGNMENT:

	Business weeks run Monday through Friday. A week belongs to the month
	containing its Monday; the week straddling the term start is folded into
	the first month. Week numbers restart at 1 in every month.

SEE ALSO:
  - yearmonth.go: YearMonth value type
  - projection.go: iterates Term.Months()
*/
package fiscal

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Term is a fiscal year identified by the calendar year it ends in.
type Term int

// TermOf returns the term containing the given date. December belongs to the
// following term.
func TermOf(t time.Time) Term {
	if t.Month() == time.December {
		return Term(t.Year() + 1)
	}
	return Term(t.Year())
}

// Start returns December 1 of the preceding calendar year.
func (t Term) Start() time.Time {
	return time.Date(int(t)-1, time.December, 1, 0, 0, 0, 0, time.Local)
}

// End returns November 30 of the term year.
func (t Term) End() time.Time {
	return time.Date(int(t), time.November, 30, 0, 0, 0, 0, time.Local)
}

// Months returns the term's 12 months, December first.
func (t Term) Months() []YearMonth {
	months := make([]YearMonth, 0, 12)
	ym := YearMonthOf(t.Start())
	for i := 0; i < 12; i++ {
		months = append(months, ym)
		ym = ym.AddMonths(1)
	}
	return months
}

// Contains reports whether the month falls inside the term.
func (t Term) Contains(ym YearMonth) bool {
	first := YearMonthOf(t.Start())
	return ym.Index() >= first.Index() && ym.Index() < first.Index()+12
}

// =============================================================================
// WEEK SCHEDULE
// =============================================================================

// Week is one Monday-start business week inside a month's schedule.
type Week struct {
	Number int       // ordinal within the month, starting at 1
	Start  time.Time // the Monday
}

// End returns the Friday closing the business week.
func (w Week) End() time.Time { return w.Start.AddDate(0, 0, 4) }

// MonthSchedule is a month's label plus its business weeks.
type MonthSchedule struct {
	Month YearMonth
	Label string
	Weeks []Week
}

// Schedule materializes the term's months with their business weeks. Weeks
// are assigned to the month containing their Monday; the week whose Monday
// precedes the term start is folded into the first month. Consumers index
// into the result by month, so this is a fully built slice rather than a
// stream.
func (t Term) Schedule() []MonthSchedule {
	months := t.Months()
	schedule := make([]MonthSchedule, len(months))
	for i, m := range months {
		schedule[i] = MonthSchedule{Month: m, Label: m.Label()}
	}

	firstIdx := months[0].Index()
	for monday := mondayOnOrBefore(t.Start()); !monday.After(t.End()); monday = monday.AddDate(0, 0, 7) {
		target := YearMonthOf(monday)
		if monday.Before(t.Start()) {
			target = months[0]
		}
		i := target.Index() - firstIdx
		if i < 0 || i >= len(schedule) {
			continue
		}
		schedule[i].Weeks = append(schedule[i].Weeks, Week{
			Number: len(schedule[i].Weeks) + 1,
			Start:  monday,
		})
	}
	return schedule
}

func mondayOnOrBefore(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// =============================================================================
// MONTH DURATION
// =============================================================================

var daysPerMonth = decimal.NewFromFloat(30.44)

// ExactMonthsBetween returns the span between two dates in average months,
// rounded to one decimal. Display only; monetary proration never uses this.
// Returns 0 when either date is missing or end precedes start.
func ExactMonthsBetween(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	days := math.Ceil(end.Sub(start).Hours() / 24)
	months := decimal.NewFromFloat(days).Div(daysPerMonth).Round(1)
	f, _ := months.Float64()
	return f
}
