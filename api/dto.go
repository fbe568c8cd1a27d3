/*
dto.go - Request/response data structures

PURPOSE:

	JSON shapes for the REST API and their conversions to and from the
	domain types. Dates cross the wire as "YYYY-MM-DD" strings and months
	as "YYYY-MM" keys; amounts are integral yen.

CONVERSION RULES:

	- Parsing a date string resolves to local midnight. A malformed date in
	  a request is a 400, never a silently zeroed field.
	- Contract sections are optional in both directions: an absent section
	  means the project does not carry that contract kind.
	- Settings round-trip through the domain type directly; its JSON tags
	  are the wire format.

SEE ALSO:
  - handlers.go: where these shapes are produced and consumed
*/
package api

import (
	"fmt"

	"github.com/atlas/fiscal-engine/fiscal"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Employment          string  `json:"employment"`
	DefaultMonthlyCost  int64   `json:"defaultMonthlyCost"`
	DefaultMonthlyHours float64 `json:"defaultMonthlyHours"`

	// Sparse "YYYY-MM" -> figures overrides.
	MonthlyOverrides map[string]fiscal.MonthlyFigures `json:"monthlyOverrides,omitempty"`
}

func toEmployeeDTO(e *fiscal.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:                  string(e.ID),
		Name:                e.Name,
		Employment:          string(e.Employment),
		DefaultMonthlyCost:  int64(e.DefaultMonthlyCost),
		DefaultMonthlyHours: e.DefaultMonthlyHours,
	}
	if len(e.Overrides) > 0 {
		dto.MonthlyOverrides = make(map[string]fiscal.MonthlyFigures, len(e.Overrides))
		for ym, f := range e.Overrides {
			dto.MonthlyOverrides[ym.Key()] = f
		}
	}
	return dto
}

func employeeFromDTO(dto EmployeeDTO) (*fiscal.Employee, error) {
	e := &fiscal.Employee{
		ID:                  fiscal.EmployeeID(dto.ID),
		Name:                dto.Name,
		Employment:          fiscal.EmploymentType(dto.Employment),
		DefaultMonthlyCost:  fiscal.Yen(dto.DefaultMonthlyCost),
		DefaultMonthlyHours: dto.DefaultMonthlyHours,
	}
	if len(dto.MonthlyOverrides) > 0 {
		e.Overrides = make(map[fiscal.YearMonth]fiscal.MonthlyFigures, len(dto.MonthlyOverrides))
		for key, f := range dto.MonthlyOverrides {
			ym, ok := fiscal.ParseYearMonth(key)
			if !ok {
				return nil, fmt.Errorf("invalid month key %q (use YYYY-MM)", key)
			}
			e.Overrides[ym] = f
		}
	}
	return e, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

type FlowContractDTO struct {
	Amount  int64              `json:"amount"`
	Start   string             `json:"start"`
	End     string             `json:"end"`
	Method  string             `json:"method"`
	Billing fiscal.FlowBilling `json:"billing"`
}

type StockContractDTO struct {
	MonthlyAmount int64              `json:"monthlyAmount"`
	Start         string             `json:"start"`
	Billing       fiscal.PaymentRule `json:"billing"`
}

type TimeChargeDTO struct {
	// "YYYY-MM" -> amount.
	Prices map[string]int64 `json:"prices"`
}

type ProjectDTO struct {
	ID          string   `json:"id"`
	ClientName  string   `json:"clientName"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	LeadSources []string `json:"leadSources,omitempty"`

	Flow       *FlowContractDTO  `json:"flow,omitempty"`
	Stock      *StockContractDTO `json:"stock,omitempty"`
	TimeCharge *TimeChargeDTO    `json:"timeCharge,omitempty"`

	Tasks       []fiscal.Task       `json:"tasks,omitempty"`
	Assignments []fiscal.Assignment `json:"assignments,omitempty"`
}

func toProjectDTO(p *fiscal.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          string(p.ID),
		ClientName:  p.ClientName,
		Name:        p.Name,
		Type:        p.Type,
		Status:      string(p.Status),
		LeadSources: p.LeadSources,
		Tasks:       p.Tasks,
		Assignments: p.Assignments,
	}
	if p.Flow != nil {
		dto.Flow = &FlowContractDTO{
			Amount:  int64(p.Flow.Amount),
			Start:   p.Flow.Start.Format("2006-01-02"),
			End:     p.Flow.End.Format("2006-01-02"),
			Method:  string(p.Flow.Method),
			Billing: p.Flow.Billing,
		}
	}
	if p.Stock != nil {
		dto.Stock = &StockContractDTO{
			MonthlyAmount: int64(p.Stock.MonthlyAmount),
			Start:         p.Stock.Start.Format("2006-01-02"),
			Billing:       p.Stock.Billing,
		}
	}
	if p.TimeCharge != nil {
		prices := make(map[string]int64, len(p.TimeCharge.Prices))
		for ym, amount := range p.TimeCharge.Prices {
			prices[ym.Key()] = int64(amount)
		}
		dto.TimeCharge = &TimeChargeDTO{Prices: prices}
	}
	return dto
}

func projectFromDTO(dto ProjectDTO) (*fiscal.Project, error) {
	p := &fiscal.Project{
		ID:          fiscal.ProjectID(dto.ID),
		ClientName:  dto.ClientName,
		Name:        dto.Name,
		Type:        dto.Type,
		Status:      fiscal.ProjectStatus(dto.Status),
		LeadSources: dto.LeadSources,
		Tasks:       dto.Tasks,
		Assignments: dto.Assignments,
	}
	if dto.Flow != nil {
		start, ok := fiscal.ParseDate(dto.Flow.Start)
		if !ok {
			return nil, fmt.Errorf("invalid flow start date %q (use YYYY-MM-DD)", dto.Flow.Start)
		}
		end, ok := fiscal.ParseDate(dto.Flow.End)
		if !ok {
			return nil, fmt.Errorf("invalid flow end date %q (use YYYY-MM-DD)", dto.Flow.End)
		}
		p.Flow = &fiscal.FlowContract{
			Amount:  fiscal.Yen(dto.Flow.Amount),
			Start:   start,
			End:     end,
			Method:  fiscal.RecognitionMethod(dto.Flow.Method),
			Billing: dto.Flow.Billing,
		}
	}
	if dto.Stock != nil {
		start, ok := fiscal.ParseDate(dto.Stock.Start)
		if !ok {
			return nil, fmt.Errorf("invalid stock start date %q (use YYYY-MM-DD)", dto.Stock.Start)
		}
		p.Stock = &fiscal.StockContract{
			MonthlyAmount: fiscal.Yen(dto.Stock.MonthlyAmount),
			Start:         start,
			Billing:       dto.Stock.Billing,
		}
	}
	if dto.TimeCharge != nil {
		prices := make(map[fiscal.YearMonth]fiscal.Yen, len(dto.TimeCharge.Prices))
		for key, amount := range dto.TimeCharge.Prices {
			ym, ok := fiscal.ParseYearMonth(key)
			if !ok {
				return nil, fmt.Errorf("invalid time-charge month %q (use YYYY-MM)", key)
			}
			prices[ym] = fiscal.Yen(amount)
		}
		p.TimeCharge = &fiscal.TimeChargeContract{Prices: prices}
	}
	return p, nil
}

// =============================================================================
// WORK LOGS
// =============================================================================

type WorkLogDTO struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"projectId"`
	TaskID     string  `json:"taskId,omitempty"`
	EmployeeID string  `json:"employeeId"`
	WeekStart  string  `json:"weekStart"`
	Hours      float64 `json:"hours"`
}

func toWorkLogDTO(l *fiscal.WorkLog) WorkLogDTO {
	return WorkLogDTO{
		ID:         string(l.ID),
		ProjectID:  string(l.ProjectID),
		TaskID:     string(l.TaskID),
		EmployeeID: string(l.EmployeeID),
		WeekStart:  l.WeekStart.Format("2006-01-02"),
		Hours:      l.Hours,
	}
}

func workLogFromDTO(dto WorkLogDTO) (*fiscal.WorkLog, error) {
	week, ok := fiscal.ParseDate(dto.WeekStart)
	if !ok {
		return nil, fmt.Errorf("invalid week start %q (use YYYY-MM-DD)", dto.WeekStart)
	}
	return &fiscal.WorkLog{
		ID:         fiscal.WorkLogID(dto.ID),
		ProjectID:  fiscal.ProjectID(dto.ProjectID),
		TaskID:     fiscal.TaskID(dto.TaskID),
		EmployeeID: fiscal.EmployeeID(dto.EmployeeID),
		WeekStart:  week,
		Hours:      dto.Hours,
	}, nil
}

// =============================================================================
// PROJECTIONS AND CASH FLOW
// =============================================================================

type MonthlyProjectionDTO struct {
	Month string `json:"month"`
	Label string `json:"label"`

	Revenue          int64 `json:"revenue"`
	Target           int64 `json:"target"`
	ConfirmedRevenue int64 `json:"confirmedRevenue"`
	PotentialRevenue int64 `json:"potentialRevenue"`
	FlowRevenue      int64 `json:"flowRevenue"`
	StockRevenue     int64 `json:"stockRevenue"`

	LaborCost int64 `json:"laborCost"`
	LaborPaid int64 `json:"laborPaid"`

	SGA          int64 `json:"sga"`
	TaxRepayment int64 `json:"taxRepayment"`
	Investment   int64 `json:"investment"`

	CashIn      int64 `json:"cashIn"`
	FinancialIn int64 `json:"financialIn"`
	CashOut     int64 `json:"cashOut"`

	Balance int64 `json:"balance"`
}

func toProjectionDTO(m fiscal.MonthlyProjection) MonthlyProjectionDTO {
	return MonthlyProjectionDTO{
		Month:            m.Month.Key(),
		Label:            m.Label,
		Revenue:          int64(m.Revenue),
		Target:           int64(m.Target),
		ConfirmedRevenue: int64(m.ConfirmedRevenue),
		PotentialRevenue: int64(m.PotentialRevenue),
		FlowRevenue:      int64(m.FlowRevenue),
		StockRevenue:     int64(m.StockRevenue),
		LaborCost:        int64(m.LaborCost),
		LaborPaid:        int64(m.LaborPaid),
		SGA:              int64(m.SGA),
		TaxRepayment:     int64(m.TaxRepayment),
		Investment:       int64(m.Investment),
		CashIn:           int64(m.CashIn),
		FinancialIn:      int64(m.FinancialIn),
		CashOut:          int64(m.CashOut),
		Balance:          int64(m.Balance),
	}
}

type CashEventDTO struct {
	Date      string `json:"date"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Amount    int64  `json:"amount"`
	Inflow    bool   `json:"inflow"`
	ProjectID string `json:"projectId,omitempty"`
}

type DailyCashFlowDTO struct {
	Date    string         `json:"date"`
	Day     int            `json:"day"`
	Events  []CashEventDTO `json:"events"`
	Inflow  int64          `json:"inflow"`
	Outflow int64          `json:"outflow"`
	Balance int64          `json:"balance"`
}

func toDailyDTO(d fiscal.DailyCashFlow) DailyCashFlowDTO {
	events := make([]CashEventDTO, 0, len(d.Events))
	for _, e := range d.Events {
		events = append(events, CashEventDTO{
			Date:      e.Date.Format("2006-01-02"),
			Kind:      string(e.Kind),
			Label:     e.Label,
			Amount:    int64(e.Amount),
			Inflow:    e.Inflow,
			ProjectID: string(e.ProjectID),
		})
	}
	return DailyCashFlowDTO{
		Date:    d.Date.Format("2006-01-02"),
		Day:     d.Day,
		Events:  events,
		Inflow:  int64(d.Inflow),
		Outflow: int64(d.Outflow),
		Balance: int64(d.Balance),
	}
}

// =============================================================================
// TERM SCHEDULE
// =============================================================================

type WeekDTO struct {
	Number int    `json:"number"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type MonthScheduleDTO struct {
	Month string    `json:"month"`
	Label string    `json:"label"`
	Weeks []WeekDTO `json:"weeks"`
}

func toScheduleDTO(months []fiscal.MonthSchedule) []MonthScheduleDTO {
	out := make([]MonthScheduleDTO, 0, len(months))
	for _, m := range months {
		weeks := make([]WeekDTO, 0, len(m.Weeks))
		for _, w := range m.Weeks {
			weeks = append(weeks, WeekDTO{
				Number: w.Number,
				Start:  w.Start.Format("2006-01-02"),
				End:    w.End().Format("2006-01-02"),
			})
		}
		out = append(out, MonthScheduleDTO{Month: m.Month.Key(), Label: m.Label, Weeks: weeks})
	}
	return out
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
