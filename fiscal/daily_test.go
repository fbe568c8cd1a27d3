package fiscal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas/fiscal-engine/fiscal"
)

func TestGenerateDailyCashFlow_WalksEveryDay(t *testing.T) {
	// GIVEN: a flow payment on Jan 31 and rent on Jan 25
	p := flowProject("p1", 3000000, date(2024, time.October, 1), date(2025, time.January, 15), fiscal.MethodMilestone)
	p.Flow.Billing = fiscal.FlowBilling{End: fiscal.PaymentRule{PayDay: fiscal.LastDayOfMonth}}
	start := fiscal.YM(2025, time.January)
	settings := &fiscal.Settings{
		CashFlowItems: []fiscal.CashFlowItem{
			{ID: "rent", Name: "Rent", Category: fiscal.CategoryOperating, Amount: 250000, PeriodStart: &start, PayDay: 25},
		},
	}

	days := fiscal.GenerateDailyCashFlow(fiscal.YM(2025, time.January), []*fiscal.Project{p}, settings, 1000000)
	require.Len(t, days, 31)

	// THEN: the balance walks day by day, dipping at rent and recovering at
	// the contract payment
	assert.Equal(t, fiscal.Yen(1000000), days[0].Balance)
	day25 := days[24]
	assert.Equal(t, 25, day25.Day)
	assert.Equal(t, fiscal.Yen(250000), day25.Outflow)
	assert.Equal(t, fiscal.Yen(750000), day25.Balance)

	day31 := days[30]
	assert.Equal(t, fiscal.Yen(3300000), day31.Inflow)
	assert.Equal(t, fiscal.Yen(4050000), day31.Balance)
	require.Len(t, day31.Events, 1)
	assert.Equal(t, fiscal.EventFlowEnd, day31.Events[0].Kind)
}

func TestGenerateDailyCashFlow_MatchesMonthlyAggregation(t *testing.T) {
	// The daily distributor and the monthly aggregator sample the same event
	// stream, so their totals must agree (labor arrears is monthly-only).
	flow := flowProject("f", 1234567, date(2025, time.March, 3), date(2025, time.July, 11), fiscal.MethodMilestone)
	flow.Flow.Billing = fiscal.FlowBilling{
		Split:      true,
		StartRatio: 37,
		Start:      fiscal.PaymentRule{PayDay: 10},
		End:        fiscal.PaymentRule{DelayMonths: 1, PayDay: fiscal.LastDayOfMonth},
	}
	stock := stockProject("s", 321000, date(2025, time.January, 20), fiscal.PaymentRule{DelayMonths: 2, PayDay: 4})
	start := fiscal.YM(2025, time.January)
	loan := date(2025, time.March, 12)
	settings := &fiscal.Settings{
		CashFlowItems: []fiscal.CashFlowItem{
			{ID: "rent", Name: "Rent", Category: fiscal.CategoryOperating, Amount: 198000, PeriodStart: &start, PayDay: 27},
			{ID: "draw", Name: "Loan", Category: fiscal.CategoryLoanIn, Amount: 750000, PaymentDate: &loan},
		},
	}
	projects := []*fiscal.Project{flow, stock}

	rows := fiscal.GenerateProjections(fiscal.ProjectionInput{
		Term:     fiscal.Term(2025),
		Projects: projects,
		Settings: settings,
		AsOf:     date(2024, time.December, 1),
	})

	for _, r := range rows {
		days := fiscal.GenerateDailyCashFlow(r.Month, projects, settings, 0)
		require.Len(t, days, r.Month.Days())

		var in, out fiscal.Yen
		for _, d := range days {
			in += d.Inflow
			out += d.Outflow
		}
		assert.Equal(t, r.CashIn+r.FinancialIn, in, r.Label)
		assert.Equal(t, r.SGA+r.TaxRepayment+r.Investment, out, r.Label)
		assert.Equal(t, in-out, days[len(days)-1].Balance, r.Label)
	}
}

func TestGenerateDailyCashFlow_EmptyMonth(t *testing.T) {
	days := fiscal.GenerateDailyCashFlow(fiscal.YM(2025, time.February), nil, nil, 500000)

	require.Len(t, days, 28)
	for _, d := range days {
		assert.Zero(t, d.Inflow)
		assert.Zero(t, d.Outflow)
		assert.Equal(t, fiscal.Yen(500000), d.Balance)
	}
}
