package fiscal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atlas/fiscal-engine/fiscal"
)

// =============================================================================
// EFFECTIVE MONTHLY FIGURES
// =============================================================================

func TestEffectiveMonthlyFigures_OverrideWins(t *testing.T) {
	e := employee("alice", 800000, 160)
	e.Overrides = map[fiscal.YearMonth]fiscal.MonthlyFigures{
		fiscal.YM(2025, time.March): {Cost: 900000, Hours: 140},
	}

	assert.Equal(t, fiscal.MonthlyFigures{Cost: 900000, Hours: 140}, e.EffectiveMonthlyFigures(fiscal.YM(2025, time.March)))
	assert.Equal(t, fiscal.MonthlyFigures{Cost: 800000, Hours: 160}, e.EffectiveMonthlyFigures(fiscal.YM(2025, time.April)))
}

// =============================================================================
// PLANNED COST
// =============================================================================

func TestPlannedMonthlyCost_Utilization(t *testing.T) {
	emps := []*fiscal.Employee{employee("alice", 1000000, 160), employee("bob", 333333, 160)}
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	p.Assignments = []fiscal.Assignment{
		{EmployeeID: "alice", UtilizationRate: 50},
		{EmployeeID: "bob", UtilizationRate: 50},
	}

	// 500,000 + 166,666.5, floored once after summing.
	assert.Equal(t, fiscal.Yen(666666), fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.March)))
}

func TestPlannedMonthlyCost_FlowPhaseGate(t *testing.T) {
	// GIVEN: a flow-only project with full staffing
	emps := []*fiscal.Employee{employee("alice", 1000000, 160)}
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	p.Assignments = []fiscal.Assignment{{EmployeeID: "alice", UtilizationRate: 100}}

	// THEN: months outside the delivery window plan to zero
	assert.Zero(t, fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2024, time.December)))
	assert.Zero(t, fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.July)))
	assert.Equal(t, fiscal.Yen(1000000), fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.January)))
	assert.Equal(t, fiscal.Yen(1000000), fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.June)))
}

func TestPlannedMonthlyCost_StockGate(t *testing.T) {
	emps := []*fiscal.Employee{employee("alice", 1000000, 160)}
	p := stockProject("p1", 100000, date(2025, time.April, 15), fiscal.PaymentRule{})
	p.Assignments = []fiscal.Assignment{{EmployeeID: "alice", UtilizationRate: 30}}

	assert.Zero(t, fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.March)))
	// The partial first month already staffs.
	assert.Equal(t, fiscal.Yen(300000), fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.April)))
	assert.Equal(t, fiscal.Yen(300000), fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2026, time.January)))
}

func TestPlannedMonthlyCost_NoActiveContract(t *testing.T) {
	emps := []*fiscal.Employee{employee("alice", 1000000, 160)}
	p := &fiscal.Project{
		ID:          "p1",
		Status:      fiscal.StatusOrdered,
		Assignments: []fiscal.Assignment{{EmployeeID: "alice", UtilizationRate: 100}},
	}

	assert.Zero(t, fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.March)))
}

func TestPlannedMonthlyCost_UnknownEmployeeSkipped(t *testing.T) {
	emps := []*fiscal.Employee{employee("alice", 1000000, 160)}
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	p.Assignments = []fiscal.Assignment{
		{EmployeeID: "alice", UtilizationRate: 50},
		{EmployeeID: "ghost", UtilizationRate: 100},
	}

	assert.Equal(t, fiscal.Yen(500000), fiscal.PlannedMonthlyCost(p, emps, fiscal.YM(2025, time.March)))
}

func TestPlannedMonthlyCost_UsesMonthOverride(t *testing.T) {
	e := employee("alice", 800000, 160)
	e.Overrides = map[fiscal.YearMonth]fiscal.MonthlyFigures{
		fiscal.YM(2025, time.February): {Cost: 1000000, Hours: 160},
	}
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	p.Assignments = []fiscal.Assignment{{EmployeeID: "alice", UtilizationRate: 100}}

	assert.Equal(t, fiscal.Yen(1000000), fiscal.PlannedMonthlyCost(p, []*fiscal.Employee{e}, fiscal.YM(2025, time.February)))
	assert.Equal(t, fiscal.Yen(800000), fiscal.PlannedMonthlyCost(p, []*fiscal.Employee{e}, fiscal.YM(2025, time.March)))
}

// =============================================================================
// ACTUAL COST
// =============================================================================

func TestActualMonthlyCost_RateTimesHours(t *testing.T) {
	// 800,000 / 160h = 5,000/h
	emps := []*fiscal.Employee{employee("alice", 800000, 160)}
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	logs := []*fiscal.WorkLog{
		weekLog("p1", "alice", date(2025, time.March, 3), 32),
		weekLog("p1", "alice", date(2025, time.March, 10), 8.5),
		weekLog("p1", "alice", date(2025, time.April, 7), 40),  // other month
		weekLog("p2", "alice", date(2025, time.March, 17), 40), // other project
	}

	assert.Equal(t, fiscal.Yen(5000*32+42500), fiscal.ActualMonthlyCost(p, emps, logs, fiscal.YM(2025, time.March)))
}

func TestActualMonthlyCost_ZeroHoursEmployee(t *testing.T) {
	emps := []*fiscal.Employee{employee("alice", 800000, 0)}
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	logs := []*fiscal.WorkLog{weekLog("p1", "alice", date(2025, time.March, 3), 40)}

	// Zero standard hours means no derivable rate; the log is inert.
	assert.Zero(t, fiscal.ActualMonthlyCost(p, emps, logs, fiscal.YM(2025, time.March)))
}

func TestActualMonthlyCost_DeletedEmployeeInert(t *testing.T) {
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	logs := []*fiscal.WorkLog{weekLog("p1", "ghost", date(2025, time.March, 3), 40)}

	assert.Zero(t, fiscal.ActualMonthlyCost(p, nil, logs, fiscal.YM(2025, time.March)))
}

// =============================================================================
// ACTUAL/PLAN SWITCH
// =============================================================================

func TestMonthlyCost_PastFutureBoundary(t *testing.T) {
	// GIVEN: a staffed flow project with a work log in both March and April
	emps := []*fiscal.Employee{employee("alice", 800000, 160)}
	p := flowProject("p1", 1, date(2025, time.January, 1), date(2025, time.June, 30), fiscal.MethodDuration)
	p.Assignments = []fiscal.Assignment{{EmployeeID: "alice", UtilizationRate: 100}}
	logs := []*fiscal.WorkLog{
		weekLog("p1", "alice", date(2025, time.March, 3), 10),
		weekLog("p1", "alice", date(2025, time.April, 7), 10),
	}
	asOf := fiscal.YM(2025, time.April)

	// THEN: the month before the evaluation month prices its work logs
	assert.Equal(t, fiscal.Yen(50000), fiscal.MonthlyCost(p, emps, logs, fiscal.YM(2025, time.March), asOf))

	// AND: the evaluation month itself ignores its logs and uses the plan
	assert.Equal(t, fiscal.Yen(800000), fiscal.MonthlyCost(p, emps, logs, fiscal.YM(2025, time.April), asOf))
	assert.Equal(t, fiscal.Yen(800000), fiscal.MonthlyCost(p, emps, logs, fiscal.YM(2025, time.May), asOf))
}
