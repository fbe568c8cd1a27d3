/*
Package fiscal implements the financial projection engine for a services
company: client/project contracts, employee cost and utilization, revenue
recognition, and cash-flow projection across a December-November fiscal term.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: default monthly cost/hours with sparse per-month overrides
  - Project: any combination of flow (fixed-fee), stock (subscription) and
    time-charge (variable) contracts, plus tasks and staffing assignments
  - WorkLog: actual hours per (project, task, employee, week)
  - CashFlowItem: recurring or one-time ledger lines outside project revenue
  - Settings: targets, initial cash balance, ledger items, lead sources

DESIGN PRINCIPLES:
 1. The engine is pure: every computation is a function of the entity
    collections plus an explicit evaluation instant. Nothing reads the
    system clock and nothing mutates its inputs.
 2. Missing or malformed data degrades to zero contribution, never to an
    error: an assignment pointing at a deleted employee is skipped, a
    contract without dates recognizes nothing.
 3. Money is integral yen; decimals exist only inside a computation.

SEE ALSO:
  - cost.go:       planned/actual labor cost
  - revenue.go:    per-contract-kind revenue recognition
  - cash.go:       payment dates and cash events
  - projection.go: the 12-month driver
*/
package fiscal

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ProjectID string
type TaskID string
type WorkLogID string

// =============================================================================
// EMPLOYEE
// =============================================================================

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "fulltime"
	EmploymentContract   EmploymentType = "contract"
	EmploymentOutsourced EmploymentType = "outsourced"
)

// MonthlyFigures is an employee's cost and standard hours for one month.
type MonthlyFigures struct {
	Cost  Yen     `json:"cost"`
	Hours float64 `json:"monthlyHours"`
}

type Employee struct {
	ID                  EmployeeID
	Name                string
	Employment          EmploymentType
	DefaultMonthlyCost  Yen
	DefaultMonthlyHours float64

	// Sparse per-month overrides; months without an entry use the defaults.
	Overrides map[YearMonth]MonthlyFigures
}

// EffectiveMonthlyFigures returns the override for the month if present,
// else the defaults.
func (e *Employee) EffectiveMonthlyFigures(ym YearMonth) MonthlyFigures {
	if o, ok := e.Overrides[ym]; ok {
		return o
	}
	return MonthlyFigures{Cost: e.DefaultMonthlyCost, Hours: e.DefaultMonthlyHours}
}

// =============================================================================
// PROJECT
// =============================================================================

type ProjectStatus string

const (
	StatusPreOrder  ProjectStatus = "preorder"
	StatusOrdered   ProjectStatus = "ordered"
	StatusDelivered ProjectStatus = "delivered"
	StatusLost      ProjectStatus = "lost"
)

// Confirmed reports whether revenue for this status counts as confirmed
// rather than potential.
func (s ProjectStatus) Confirmed() bool {
	return s == StatusOrdered || s == StatusDelivered
}

type RecognitionMethod string

const (
	// MethodDuration spreads flow revenue evenly across every month the
	// contract touches, remainder in the final month.
	MethodDuration RecognitionMethod = "duration"
	// MethodMilestone recognizes flow revenue only at the start and/or end
	// billing events.
	MethodMilestone RecognitionMethod = "milestone"
)

// PaymentRule shifts an invoice month forward DelayMonths and pins the
// payment to PayDay. PayDay 99 (or 0, for unset rules) resolves to the last
// calendar day of the shifted month. Days past the month's length roll into
// the next month, matching calendar normalization.
type PaymentRule struct {
	DelayMonths int `json:"delayMonths"`
	PayDay      int `json:"payDay"`
}

// FlowBilling configures how a fixed-fee contract is invoiced: a single lump
// at completion, or a split with StartRatio percent billed at the start.
type FlowBilling struct {
	Split      bool        `json:"split"`
	StartRatio int         `json:"startRatio"`
	Start      PaymentRule `json:"start"`
	End        PaymentRule `json:"end"`
}

// FlowContract is a fixed-fee engagement over an inclusive date range.
type FlowContract struct {
	Amount  Yen               `json:"amount"`
	Start   time.Time         `json:"start"`
	End     time.Time         `json:"end"`
	Method  RecognitionMethod `json:"method"`
	Billing FlowBilling       `json:"billing"`
}

// SplitAmounts returns the start-billing and end-billing portions. The end
// portion is computed by subtraction so the two always sum to Amount exactly;
// without split billing everything lands at the end.
func (f *FlowContract) SplitAmounts() (start, end Yen) {
	if !f.Billing.Split {
		return 0, f.Amount
	}
	start = f.Amount.Percent(f.Billing.StartRatio)
	return start, f.Amount - start
}

// StockContract is an open-ended fixed monthly subscription.
type StockContract struct {
	MonthlyAmount Yen         `json:"monthlyAmount"`
	Start         time.Time   `json:"start"`
	Billing       PaymentRule `json:"billing"`
}

// TimeChargeContract holds manually entered variable revenue per month.
// Its inflow is paid under the project's stock billing rule.
type TimeChargeContract struct {
	Prices map[YearMonth]Yen `json:"prices"`
}

type Task struct {
	ID   TaskID `json:"id"`
	Name string `json:"name"`
}

// Assignment allocates a percentage of an employee's standard monthly
// capacity to the project. UtilizationRate is in [0,100].
type Assignment struct {
	EmployeeID      EmployeeID `json:"employeeId"`
	UtilizationRate int        `json:"utilizationRate"`
}

type Project struct {
	ID          ProjectID
	ClientName  string
	Name        string
	Type        string
	Status      ProjectStatus
	LeadSources []string

	// Contract kinds, independently toggleable; a project combines any
	// non-empty subset.
	Flow       *FlowContract
	Stock      *StockContract
	TimeCharge *TimeChargeContract

	Tasks       []Task
	Assignments []Assignment
}

func (p *Project) HasFlow() bool       { return p.Flow != nil }
func (p *Project) HasStock() bool      { return p.Stock != nil }
func (p *Project) HasTimeCharge() bool { return p.TimeCharge != nil }

// stockBilling returns the payment rule shared by stock and time-charge
// inflows. The zero rule pays at end of month with no delay.
func (p *Project) stockBilling() PaymentRule {
	if p.Stock != nil {
		return p.Stock.Billing
	}
	return PaymentRule{}
}

// =============================================================================
// WORK LOG
// =============================================================================

// WorkLog records actual hours one employee spent on a project (optionally a
// specific task) during the business week starting at WeekStart. Task and
// employee references are weak: a log whose referent is gone simply stops
// contributing.
type WorkLog struct {
	ID         WorkLogID
	ProjectID  ProjectID
	TaskID     TaskID // optional
	EmployeeID EmployeeID
	WeekStart  time.Time // Monday
	Hours      float64
}

// =============================================================================
// CASH FLOW LEDGER ITEMS
// =============================================================================

type CashFlowCategory string

const (
	CategoryOperating     CashFlowCategory = "operating"
	CategoryTax           CashFlowCategory = "tax"
	CategoryLoanRepayment CashFlowCategory = "loan_repayment"
	CategoryLoanIn        CashFlowCategory = "loan_in"
	CategoryInvestment    CashFlowCategory = "investment"
	CategoryOther         CashFlowCategory = "other"
)

// Inflow reports whether the category adds cash. Only loan drawdowns do;
// every other category is an outflow.
func (c CashFlowCategory) Inflow() bool { return c == CategoryLoanIn }

// ExpenseBucket is the outflow grouping shown per projection month.
type ExpenseBucket string

const (
	BucketSGA          ExpenseBucket = "sga"
	BucketTaxRepayment ExpenseBucket = "tax_repayment"
	BucketInvestment   ExpenseBucket = "investment"
)

// Bucket maps a category to its outflow bucket. Unrecognized categories
// default to SG&A.
func (c CashFlowCategory) Bucket() ExpenseBucket {
	switch c {
	case CategoryTax, CategoryLoanRepayment:
		return BucketTaxRepayment
	case CategoryInvestment:
		return BucketInvestment
	default:
		return BucketSGA
	}
}

// CashFlowItem is a ledger line outside project revenue: either recurring
// over [PeriodStart, PeriodEnd] paid on PayDay each month, or a one-time
// payment on PaymentDate.
type CashFlowItem struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category CashFlowCategory `json:"category"`
	Amount   Yen              `json:"amount"`

	PeriodStart *YearMonth `json:"periodStart,omitempty"`
	PeriodEnd   *YearMonth `json:"periodEnd,omitempty"` // open-ended when nil
	PayDay      int        `json:"payDay,omitempty"`

	PaymentDate *time.Time `json:"paymentDate,omitempty"`
}

// Recurring reports whether the item repeats monthly.
func (i CashFlowItem) Recurring() bool { return i.PeriodStart != nil }

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the installation-wide singleton: profitability guardrails,
// sales targets, opening cash, the cash-flow ledger, and the lead-source
// taxonomy.
type Settings struct {
	LaborShareTargetMin int `json:"laborShareTargetMin"` // percent
	LaborShareTargetMax int `json:"laborShareTargetMax"` // percent

	SalesTargets       map[YearMonth]Yen `json:"salesTargets"`
	DefaultSalesTarget Yen               `json:"defaultSalesTarget"`

	InitialCashBalance Yen            `json:"initialCashBalance"`
	CashFlowItems      []CashFlowItem `json:"cashFlowItems"`

	LeadSources []string `json:"leadSources"`
}

// SalesTargetFor returns the month's target, falling back to the default.
func (s *Settings) SalesTargetFor(ym YearMonth) Yen {
	if t, ok := s.SalesTargets[ym]; ok {
		return t
	}
	return s.DefaultSalesTarget
}
