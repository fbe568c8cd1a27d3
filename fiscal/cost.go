/*
cost.go - Labor cost engine

PURPOSE:

	Computes per-project monthly labor cost two ways and switches between
	them on an injected evaluation month:

	  planned:  sum over assignments of effective employee cost scaled by
	            utilization rate, gated to the contract's delivery phase
	  actual:   sum over the month's work logs of hours times the derived
	            hourly rate (effective cost / effective hours)

	Months strictly before the evaluation month use actual cost; the
	evaluation month itself and later months use planned cost. The switch is
	a parameter, never the wall clock, so results are reproducible.

GATING:

	A flow project with both dates staffs its team only during delivery:
	months outside [flowStart, flowEnd] plan to zero. A stock-only project
	plans to zero before the subscription starts. A project with no active
	contract kind plans to zero everywhere.

SEE ALSO:
  - types.go:      Employee.EffectiveMonthlyFigures
  - projection.go: aggregates these across projects and feeds the arrears
    payment rule
*/
package fiscal

import "github.com/shopspring/decimal"

// EmployeeIndex is a lookup of employees by id. Assignments and work logs
// referencing an absent id contribute nothing.
type EmployeeIndex map[EmployeeID]*Employee

// IndexEmployees builds an EmployeeIndex from a slice.
func IndexEmployees(employees []*Employee) EmployeeIndex {
	idx := make(EmployeeIndex, len(employees))
	for _, e := range employees {
		idx[e.ID] = e
	}
	return idx
}

// PlannedMonthlyCost returns the staffing cost implied by the project's
// assignments for the month, or zero outside the plan-active phase.
func PlannedMonthlyCost(p *Project, employees []*Employee, ym YearMonth) Yen {
	if !planPhaseActive(p, ym) {
		return 0
	}
	idx := IndexEmployees(employees)
	total := decimal.Zero
	for _, a := range p.Assignments {
		e, ok := idx[a.EmployeeID]
		if !ok {
			continue
		}
		cost := e.EffectiveMonthlyFigures(ym).Cost
		share := cost.Decimal().Mul(decimal.NewFromInt(int64(a.UtilizationRate))).Div(hundred)
		total = total.Add(share)
	}
	return FloorYen(total)
}

// planPhaseActive applies the contract-phase gate described in the file
// header.
func planPhaseActive(p *Project, ym YearMonth) bool {
	switch {
	case p.Flow != nil && !p.Flow.Start.IsZero() && !p.Flow.End.IsZero():
		return !p.Flow.Start.After(ym.End()) && !p.Flow.End.Before(ym.Start())
	case p.Stock != nil && !p.Stock.Start.IsZero():
		return !p.Stock.Start.After(ym.End())
	case p.Flow == nil && p.Stock == nil && p.TimeCharge == nil:
		return false
	default:
		return true
	}
}

// ActualMonthlyCost prices the project's work logs whose week starts inside
// the month. Each log is charged at the employee's derived hourly rate for
// that month; employees with zero standard hours contribute nothing.
func ActualMonthlyCost(p *Project, employees []*Employee, logs []*WorkLog, ym YearMonth) Yen {
	idx := IndexEmployees(employees)
	total := decimal.Zero
	for _, l := range logs {
		if l.ProjectID != p.ID || !ym.Contains(l.WeekStart) {
			continue
		}
		e, ok := idx[l.EmployeeID]
		if !ok {
			continue
		}
		fig := e.EffectiveMonthlyFigures(ym)
		if fig.Hours == 0 {
			continue
		}
		rate := fig.Cost.Decimal().Div(decimal.NewFromFloat(fig.Hours))
		total = total.Add(rate.Mul(decimal.NewFromFloat(l.Hours)))
	}
	return FloorYen(total)
}

// MonthlyCost returns actual cost for months strictly before asOf and
// planned cost from asOf onward.
func MonthlyCost(p *Project, employees []*Employee, logs []*WorkLog, ym, asOf YearMonth) Yen {
	if ym.Index() < asOf.Index() {
		return ActualMonthlyCost(p, employees, logs, ym)
	}
	return PlannedMonthlyCost(p, employees, ym)
}
