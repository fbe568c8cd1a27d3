/*
revenue.go - Revenue recognition engine

PURPOSE:

	Computes a project's recognized revenue for one calendar month by
	summing the contributions of its active contract kinds:

	  flow/milestone: revenue posts only in the months containing the
	                  contract's start and/or end dates, split per billing
	  flow/duration:  the amount spreads evenly across every month the date
	                  range touches, integer remainder in the final month
	  stock:          the full monthly amount in every month the
	                  subscription has started by month end (a first
	                  partial month still bills in full)
	  time-charge:    the manually entered amount for the month, if any

EXACTNESS:

	Both flow methods preserve the contract amount to the yen. Duration
	assigns floor(amount/months) everywhere and the remainder to the final
	month; milestone split computes the end portion by subtraction. The
	bias toward completion is deliberate.

SEE ALSO:
  - cash.go: billing dates for the same contracts
*/
package fiscal

// MonthlyRevenue returns the project's recognized revenue for the month.
// The recognition method applies to flow only; stock and time-charge have a
// single policy.
func MonthlyRevenue(p *Project, ym YearMonth) Yen {
	var total Yen
	if p.Flow != nil {
		total += flowRevenue(p.Flow, ym)
	}
	if p.Stock != nil {
		total += stockRevenue(p.Stock, ym)
	}
	if p.TimeCharge != nil {
		total += p.TimeCharge.Prices[ym]
	}
	return total
}

func flowRevenue(f *FlowContract, ym YearMonth) Yen {
	if f.Start.IsZero() || f.End.IsZero() {
		return 0
	}
	start := YearMonthOf(f.Start)
	end := YearMonthOf(f.End)
	if end.Before(start) {
		return 0
	}

	if f.Method == MethodMilestone {
		startAmt, endAmt := f.SplitAmounts()
		var r Yen
		if ym == start {
			r += startAmt
		}
		if ym == end {
			r += endAmt
		}
		return r
	}

	// Duration proration across the inclusive month count.
	if ym.Before(start) || ym.After(end) {
		return 0
	}
	months := int64(MonthsBetween(start, end)) + 1
	base := Yen(int64(f.Amount) / months)
	if ym == end {
		return base + Yen(int64(f.Amount)%months)
	}
	return base
}

func stockRevenue(s *StockContract, ym YearMonth) Yen {
	if s.Start.IsZero() || s.Start.After(ym.End()) {
		return 0
	}
	return s.MonthlyAmount
}
