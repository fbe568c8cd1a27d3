/*
cash.go - Payment dates and the cash event generator

PURPOSE:

	Derives concrete payment dates from billing rules and turns contracts
	plus ledger items into a flat, date-sorted stream of cash events. The
	monthly aggregator (projection.go) and the day-level distributor
	(daily.go) both sample this one stream, so the two granularities agree
	by construction.

EVENT KINDS:

	flow_start / flow_end  contract billing events, tax-inclusive inflow
	stock / time_charge    recurring sales inflow paid in arrears under the
	                       project's stock billing rule, tax-inclusive
	ledger                 CashFlowItem lines, signed by category; only
	                       loan drawdowns are inflows

TAX:

	The 10% consumption-tax markup is applied per sales event as it is
	generated. Ledger items carry their amounts as entered.

SEE ALSO:
  - projection.go: buckets events by month
  - daily.go:      buckets events by day
*/
package fiscal

import (
	"sort"
	"time"
)

// LastDayOfMonth is the PayDay sentinel for "last calendar day".
const LastDayOfMonth = 99

// PaymentDate resolves a billing rule against an invoice month: shift
// forward DelayMonths, then pin to PayDay. PayDay 99 or 0 resolves to the
// last day of the shifted month. Out-of-range days roll into the following
// month via calendar normalization; see DESIGN.md.
func PaymentDate(ym YearMonth, rule PaymentRule) time.Time {
	shifted := ym.AddMonths(rule.DelayMonths)
	if rule.PayDay == LastDayOfMonth || rule.PayDay <= 0 {
		return shifted.End()
	}
	return time.Date(shifted.Year, shifted.Month, rule.PayDay, 0, 0, 0, 0, time.Local)
}

// =============================================================================
// CASH EVENTS
// =============================================================================

type CashEventKind string

const (
	EventFlowStart  CashEventKind = "flow_start"
	EventFlowEnd    CashEventKind = "flow_end"
	EventStock      CashEventKind = "stock"
	EventTimeCharge CashEventKind = "time_charge"
	EventLedger     CashEventKind = "ledger"
)

// CashEvent is one dated cash movement. Amount is always positive; Inflow
// carries the sign. Category is set for ledger events only.
type CashEvent struct {
	Date      time.Time
	Kind      CashEventKind
	Label     string
	Amount    Yen
	Inflow    bool
	Category  CashFlowCategory
	ProjectID ProjectID
}

// CollectCashEvents generates every cash event whose payment date falls in
// [from, to], across all projects and the settings ledger. Lost projects
// produce nothing. The result is sorted by date.
func CollectCashEvents(projects []*Project, settings *Settings, from, to time.Time) []CashEvent {
	var events []CashEvent
	add := func(e CashEvent) {
		if e.Amount == 0 || e.Date.Before(from) || e.Date.After(to) {
			return
		}
		events = append(events, e)
	}

	for _, p := range projects {
		if p.Status == StatusLost {
			continue
		}
		collectFlowEvents(p, add)
		collectRecurringSalesEvents(p, from, to, add)
	}
	if settings != nil {
		for _, item := range settings.CashFlowItems {
			collectLedgerEvents(item, from, to, add)
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

// collectFlowEvents emits the start and end billing events of a flow
// contract. Lump billing produces a single end event.
func collectFlowEvents(p *Project, add func(CashEvent)) {
	f := p.Flow
	if f == nil || f.Start.IsZero() || f.End.IsZero() {
		return
	}
	startAmt, endAmt := f.SplitAmounts()
	if startAmt > 0 {
		add(CashEvent{
			Date:      PaymentDate(YearMonthOf(f.Start), f.Billing.Start),
			Kind:      EventFlowStart,
			Label:     p.Name,
			Amount:    startAmt.WithTax(),
			Inflow:    true,
			ProjectID: p.ID,
		})
	}
	if endAmt > 0 {
		add(CashEvent{
			Date:      PaymentDate(YearMonthOf(f.End), f.Billing.End),
			Kind:      EventFlowEnd,
			Label:     p.Name,
			Amount:    endAmt.WithTax(),
			Inflow:    true,
			ProjectID: p.ID,
		})
	}
}

// collectRecurringSalesEvents emits stock and time-charge inflows. Each
// invoice month's recognized revenue is paid under the project's stock
// billing rule, so the payment lands DelayMonths later.
func collectRecurringSalesEvents(p *Project, from, to time.Time, add func(CashEvent)) {
	rule := p.stockBilling()

	if p.Stock != nil && !p.Stock.Start.IsZero() && p.Stock.MonthlyAmount > 0 {
		// Walk invoice months whose payment could land in the window. The
		// extra leading month absorbs pay-day rollover.
		first := YearMonthOf(from).AddMonths(-(rule.DelayMonths + 1))
		if sm := YearMonthOf(p.Stock.Start); sm.After(first) {
			first = sm
		}
		last := YearMonthOf(to)
		for m := first; !m.After(last); m = m.AddMonths(1) {
			add(CashEvent{
				Date:      PaymentDate(m, rule),
				Kind:      EventStock,
				Label:     p.Name,
				Amount:    p.Stock.MonthlyAmount.WithTax(),
				Inflow:    true,
				ProjectID: p.ID,
			})
		}
	}

	if p.TimeCharge != nil {
		for m, amount := range p.TimeCharge.Prices {
			add(CashEvent{
				Date:      PaymentDate(m, rule),
				Kind:      EventTimeCharge,
				Label:     p.Name,
				Amount:    amount.WithTax(),
				Inflow:    true,
				ProjectID: p.ID,
			})
		}
	}
}

// collectLedgerEvents emits a CashFlowItem's payments: one per month across
// its recurring window, or a single one-time payment.
func collectLedgerEvents(item CashFlowItem, from, to time.Time, add func(CashEvent)) {
	event := func(date time.Time) CashEvent {
		return CashEvent{
			Date:     date,
			Kind:     EventLedger,
			Label:    item.Name,
			Amount:   item.Amount,
			Inflow:   item.Category.Inflow(),
			Category: item.Category,
		}
	}

	if item.Recurring() {
		first := *item.PeriodStart
		if wf := YearMonthOf(from).AddMonths(-1); wf.After(first) {
			first = wf
		}
		last := YearMonthOf(to)
		if item.PeriodEnd != nil && item.PeriodEnd.Before(last) {
			last = *item.PeriodEnd
		}
		for m := first; !m.After(last); m = m.AddMonths(1) {
			add(event(PaymentDate(m, PaymentRule{PayDay: item.PayDay})))
		}
		return
	}
	if item.PaymentDate != nil {
		add(event(*item.PaymentDate))
	}
}
