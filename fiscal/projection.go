/*
projection.go - The 12-month projection driver

PURPOSE:

	Walks the fiscal term's 12 months once per invocation and produces, per
	month: recognized revenue with its confirmed/potential and flow/stock
	splits, labor cost (actual for past months, planned otherwise), cash
	inflow and outflow, and the running cash balance seeded from the
	settings' opening balance.

PAYMENT RULES APPLIED HERE:

	- Labor is paid one month in arrears, unconditionally: month M's
	  outflow carries month M-1's labor cost, classified actual-or-planned
	  by M-1's own position relative to the evaluation month.
	- Sales inflows arrive tax-inclusive on their derived payment dates.
	- Ledger items bucket into SG&A, tax/loan repayment, and investment;
	  loan drawdowns count as financial inflow instead.

STATELESSNESS:

	The driver recomputes everything from the input collections on every
	call. The only instant it reasons about is the injected AsOf.

SEE ALSO:
  - cost.go, revenue.go, cash.go: the per-project engines
  - daily.go: the day-level distribution of the same events
*/
package fiscal

import "time"

// ProjectionInput carries everything a term projection depends on. AsOf is
// the evaluation instant deciding which months are "past"; callers pass the
// current time for live views and a fixed time in tests.
type ProjectionInput struct {
	Term      Term
	Projects  []*Project
	Employees []*Employee
	WorkLogs  []*WorkLog
	Settings  *Settings
	AsOf      time.Time
}

// MonthlyProjection is one fiscal month's computed row.
type MonthlyProjection struct {
	Month YearMonth
	Label string

	Revenue          Yen
	Target           Yen
	ConfirmedRevenue Yen // status ordered/delivered
	PotentialRevenue Yen // status preorder
	FlowRevenue      Yen
	StockRevenue     Yen

	LaborCost Yen // this month's labor, actual-or-planned (P&L view)
	LaborPaid Yen // previous month's labor, paid this month

	SGA          Yen
	TaxRepayment Yen
	Investment   Yen

	CashIn      Yen // tax-inclusive sales inflow
	FinancialIn Yen // loan drawdowns
	CashOut     Yen // labor paid + expense buckets

	Balance Yen // running balance after this month
}

// GenerateProjections computes the term's 12 monthly rows.
func GenerateProjections(in ProjectionInput) []MonthlyProjection {
	settings := in.Settings
	if settings == nil {
		settings = &Settings{}
	}
	months := in.Term.Months()
	asOf := YearMonthOf(in.AsOf)

	events := CollectCashEvents(in.Projects, settings, in.Term.Start(), in.Term.End())
	byMonth := make(map[YearMonth][]CashEvent)
	for _, e := range events {
		m := YearMonthOf(e.Date)
		byMonth[m] = append(byMonth[m], e)
	}

	balance := settings.InitialCashBalance
	// November of the previous term, paid out in December.
	prevLabor := totalLaborCost(in, months[0].AddMonths(-1), asOf)

	out := make([]MonthlyProjection, 0, len(months))
	for _, m := range months {
		row := MonthlyProjection{
			Month:  m,
			Label:  m.Label(),
			Target: settings.SalesTargetFor(m),
		}

		for _, p := range in.Projects {
			if p.Status == StatusLost {
				continue
			}
			r := MonthlyRevenue(p, m)
			if r != 0 {
				row.Revenue += r
				if p.Status.Confirmed() {
					row.ConfirmedRevenue += r
				} else {
					row.PotentialRevenue += r
				}
			}
			if p.Stock != nil {
				row.StockRevenue += stockRevenue(p.Stock, m)
			}
		}
		// The stock share never exceeds what was actually recognized; the
		// remainder is attributed to flow.
		if row.StockRevenue > row.Revenue {
			row.StockRevenue = row.Revenue
		}
		row.FlowRevenue = row.Revenue - row.StockRevenue

		row.LaborCost = totalLaborCost(in, m, asOf)
		row.LaborPaid = prevLabor

		for _, e := range byMonth[m] {
			switch {
			case e.Inflow && e.Kind == EventLedger:
				row.FinancialIn += e.Amount
			case e.Inflow:
				row.CashIn += e.Amount
			default:
				switch e.Category.Bucket() {
				case BucketTaxRepayment:
					row.TaxRepayment += e.Amount
				case BucketInvestment:
					row.Investment += e.Amount
				default:
					row.SGA += e.Amount
				}
			}
		}

		row.CashOut = row.LaborPaid + row.SGA + row.TaxRepayment + row.Investment
		balance += row.CashIn + row.FinancialIn - row.CashOut
		row.Balance = balance

		prevLabor = row.LaborCost
		out = append(out, row)
	}
	return out
}

// totalLaborCost sums the hybrid monthly cost across all non-lost projects.
func totalLaborCost(in ProjectionInput, m, asOf YearMonth) Yen {
	var total Yen
	for _, p := range in.Projects {
		if p.Status == StatusLost {
			continue
		}
		total += MonthlyCost(p, in.Employees, in.WorkLogs, m, asOf)
	}
	return total
}
