package fiscal

import "time"

// =============================================================================
// DAILY CASH FLOW - Day-level distribution of one month's events
// =============================================================================

// DailyCashFlow is one calendar day's cash movements and the balance after
// them.
type DailyCashFlow struct {
	Date    time.Time
	Day     int
	Events  []CashEvent
	Inflow  Yen
	Outflow Yen
	Balance Yen
}

// GenerateDailyCashFlow distributes the month's cash events across its
// calendar days and walks day 1..N accumulating a running balance from the
// given opening balance. It samples the same event stream as the monthly
// aggregator, so the month's totals match by construction. Labor payments
// are a monthly construct and do not appear at day level.
func GenerateDailyCashFlow(month YearMonth, projects []*Project, settings *Settings, opening Yen) []DailyCashFlow {
	if settings == nil {
		settings = &Settings{}
	}
	events := CollectCashEvents(projects, settings, month.Start(), month.End())
	byDay := make(map[int][]CashEvent)
	for _, e := range events {
		byDay[e.Date.Day()] = append(byDay[e.Date.Day()], e)
	}

	balance := opening
	days := month.Days()
	out := make([]DailyCashFlow, 0, days)
	for d := 1; d <= days; d++ {
		row := DailyCashFlow{
			Date:   time.Date(month.Year, month.Month, d, 0, 0, 0, 0, time.Local),
			Day:    d,
			Events: byDay[d],
		}
		for _, e := range row.Events {
			if e.Inflow {
				row.Inflow += e.Amount
			} else {
				row.Outflow += e.Amount
			}
		}
		balance += row.Inflow - row.Outflow
		row.Balance = balance
		out = append(out, row)
	}
	return out
}
