package fiscal_test

import (
	"time"

	"github.com/atlas/fiscal-engine/fiscal"
)

// =============================================================================
// SHARED FIXTURES
// =============================================================================

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func employee(id string, cost fiscal.Yen, hours float64) *fiscal.Employee {
	return &fiscal.Employee{
		ID:                  fiscal.EmployeeID(id),
		Name:                id,
		Employment:          fiscal.EmploymentFullTime,
		DefaultMonthlyCost:  cost,
		DefaultMonthlyHours: hours,
	}
}

func flowProject(id string, amount fiscal.Yen, start, end time.Time, method fiscal.RecognitionMethod) *fiscal.Project {
	return &fiscal.Project{
		ID:     fiscal.ProjectID(id),
		Name:   id,
		Status: fiscal.StatusOrdered,
		Flow: &fiscal.FlowContract{
			Amount: amount,
			Start:  start,
			End:    end,
			Method: method,
		},
	}
}

func stockProject(id string, monthly fiscal.Yen, start time.Time, billing fiscal.PaymentRule) *fiscal.Project {
	return &fiscal.Project{
		ID:     fiscal.ProjectID(id),
		Name:   id,
		Status: fiscal.StatusOrdered,
		Stock: &fiscal.StockContract{
			MonthlyAmount: monthly,
			Start:         start,
			Billing:       billing,
		},
	}
}

func weekLog(project, emp string, weekStart time.Time, hours float64) *fiscal.WorkLog {
	return &fiscal.WorkLog{
		ID:         fiscal.WorkLogID(project + "/" + emp + "/" + weekStart.Format("2006-01-02")),
		ProjectID:  fiscal.ProjectID(project),
		EmployeeID: fiscal.EmployeeID(emp),
		WeekStart:  weekStart,
		Hours:      hours,
	}
}

// sumRevenue adds MonthlyRevenue over an inclusive month range.
func sumRevenue(p *fiscal.Project, from, to fiscal.YearMonth) fiscal.Yen {
	var total fiscal.Yen
	for m := from; !m.After(to); m = m.AddMonths(1) {
		total += fiscal.MonthlyRevenue(p, m)
	}
	return total
}
