/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario creates employees, projects, work logs,
	and settings that demonstrate specific engine features.

AVAILABLE SCENARIOS:

	split-contract:  One flow project with 50/50 split billing
	hybrid-project:  Subscription plus time-charge on the same client
	staffed-team:    Assignments, cost overrides, and logged hours

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Save employees and projects
 3. Save work logs and settings

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "staffed-team"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: the CRUD and projection handlers
  - server.go: route wiring
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/atlas/fiscal-engine/fiscal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "split-contract",
		Name:        "Split Contract",
		Description: "Fixed-fee project billed 50% up front, 50% on delivery",
	},
	{
		ID:          "hybrid-project",
		Name:        "Hybrid Project",
		Description: "Monthly subscription plus variable time-charge revenue",
	},
	{
		ID:          "staffed-team",
		Name:        "Staffed Team",
		Description: "Assignments with cost overrides and logged hours",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.internalError(w, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "split-contract":
		err = loadSplitContractScenario(ctx, h, h.Now())
	case "hybrid-project":
		err = loadHybridProjectScenario(ctx, h, h.Now())
	case "staffed-team":
		err = loadStaffedTeamScenario(ctx, h, h.Now())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetStore clears all data.
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.internalError(w, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// termAnchor returns the first month of the term containing now, as a date.
func termAnchor(now time.Time) time.Time {
	return fiscal.TermOf(now).Start()
}

func loadSplitContractScenario(ctx context.Context, h *Handler, now time.Time) error {
	start := termAnchor(now).AddDate(0, 1, 14)

	project := &fiscal.Project{
		ID:         fiscal.ProjectID(uuid.NewString()),
		ClientName: "Northwind Retail",
		Name:       "EC site renewal",
		Type:       "web",
		Status:     fiscal.StatusOrdered,
		Flow: &fiscal.FlowContract{
			Amount: 9000000,
			Start:  start,
			End:    start.AddDate(0, 5, 0),
			Method: fiscal.MethodMilestone,
			Billing: fiscal.FlowBilling{
				Split:      true,
				StartRatio: 50,
				Start:      fiscal.PaymentRule{PayDay: fiscal.LastDayOfMonth},
				End:        fiscal.PaymentRule{DelayMonths: 1, PayDay: fiscal.LastDayOfMonth},
			},
		},
	}
	if err := h.Store.SaveProject(ctx, project); err != nil {
		return err
	}

	return h.Store.SaveSettings(ctx, &fiscal.Settings{
		DefaultSalesTarget: 5000000,
		InitialCashBalance: 10000000,
	})
}

func loadHybridProjectScenario(ctx context.Context, h *Handler, now time.Time) error {
	anchor := termAnchor(now)
	m1 := fiscal.YearMonthOf(anchor).AddMonths(2)
	m2 := m1.AddMonths(1)

	project := &fiscal.Project{
		ID:         fiscal.ProjectID(uuid.NewString()),
		ClientName: "Contoso Logistics",
		Name:       "Operations support",
		Type:       "consulting",
		Status:     fiscal.StatusDelivered,
		Stock: &fiscal.StockContract{
			MonthlyAmount: 400000,
			Start:         anchor,
			Billing:       fiscal.PaymentRule{DelayMonths: 1, PayDay: fiscal.LastDayOfMonth},
		},
		TimeCharge: &fiscal.TimeChargeContract{
			Prices: map[fiscal.YearMonth]fiscal.Yen{
				m1: 250000,
				m2: 180000,
			},
		},
	}
	if err := h.Store.SaveProject(ctx, project); err != nil {
		return err
	}

	rentStart := fiscal.YearMonthOf(anchor)
	return h.Store.SaveSettings(ctx, &fiscal.Settings{
		DefaultSalesTarget: 3000000,
		InitialCashBalance: 8000000,
		CashFlowItems: []fiscal.CashFlowItem{
			{ID: uuid.NewString(), Name: "Office rent", Category: fiscal.CategoryOperating, Amount: 300000, PeriodStart: &rentStart, PayDay: 25},
		},
	})
}

func loadStaffedTeamScenario(ctx context.Context, h *Handler, now time.Time) error {
	anchor := termAnchor(now)
	overrideMonth := fiscal.YearMonthOf(anchor).AddMonths(3)

	lead := &fiscal.Employee{
		ID:                  fiscal.EmployeeID(uuid.NewString()),
		Name:                "Aoki",
		Employment:          fiscal.EmploymentFullTime,
		DefaultMonthlyCost:  800000,
		DefaultMonthlyHours: 160,
		Overrides: map[fiscal.YearMonth]fiscal.MonthlyFigures{
			overrideMonth: {Cost: 850000, Hours: 150},
		},
	}
	engineer := &fiscal.Employee{
		ID:                  fiscal.EmployeeID(uuid.NewString()),
		Name:                "Mori",
		Employment:          fiscal.EmploymentContract,
		DefaultMonthlyCost:  600000,
		DefaultMonthlyHours: 160,
	}
	for _, e := range []*fiscal.Employee{lead, engineer} {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	design := fiscal.Task{ID: fiscal.TaskID(uuid.NewString()), Name: "Design"}
	build := fiscal.Task{ID: fiscal.TaskID(uuid.NewString()), Name: "Implementation"}
	project := &fiscal.Project{
		ID:         fiscal.ProjectID(uuid.NewString()),
		ClientName: "Fabrikam Foods",
		Name:       "Inventory dashboard",
		Type:       "web",
		Status:     fiscal.StatusOrdered,
		Flow: &fiscal.FlowContract{
			Amount: 12000000,
			Start:  anchor,
			End:    anchor.AddDate(0, 7, -1),
			Method: fiscal.MethodDuration,
			Billing: fiscal.FlowBilling{
				End: fiscal.PaymentRule{DelayMonths: 1, PayDay: fiscal.LastDayOfMonth},
			},
		},
		Tasks: []fiscal.Task{design, build},
		Assignments: []fiscal.Assignment{
			{EmployeeID: lead.ID, UtilizationRate: 60},
			{EmployeeID: engineer.ID, UtilizationRate: 100},
		},
	}
	if err := h.Store.SaveProject(ctx, project); err != nil {
		return err
	}

	// Two weeks of actuals in the first month.
	monday := mondayOnOrAfter(anchor)
	logs := []*fiscal.WorkLog{
		{ID: fiscal.WorkLogID(uuid.NewString()), ProjectID: project.ID, TaskID: design.ID, EmployeeID: lead.ID, WeekStart: monday, Hours: 24},
		{ID: fiscal.WorkLogID(uuid.NewString()), ProjectID: project.ID, TaskID: build.ID, EmployeeID: engineer.ID, WeekStart: monday, Hours: 40},
		{ID: fiscal.WorkLogID(uuid.NewString()), ProjectID: project.ID, TaskID: build.ID, EmployeeID: engineer.ID, WeekStart: monday.AddDate(0, 0, 7), Hours: 36},
	}
	for _, l := range logs {
		if err := h.Store.SaveWorkLog(ctx, l); err != nil {
			return err
		}
	}

	return h.Store.SaveSettings(ctx, &fiscal.Settings{
		LaborShareTargetMin: 30,
		LaborShareTargetMax: 50,
		DefaultSalesTarget:  6000000,
		InitialCashBalance:  15000000,
	})
}

func mondayOnOrAfter(d time.Time) time.Time {
	offset := (8 - int(d.Weekday())) % 7
	return d.AddDate(0, 0, offset)
}
