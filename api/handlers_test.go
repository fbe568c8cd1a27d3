package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlas/fiscal-engine/api"
	"github.com/atlas/fiscal-engine/fiscal"
	"github.com/atlas/fiscal-engine/store/memory"
)

// newServer builds a router over a fresh in-memory store with the clock
// pinned to Dec 1 2024, the first day of term 2025.
func newServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	h := api.NewHandler(store, zap.NewNop())
	h.Now = func() time.Time {
		return time.Date(2024, time.December, 1, 9, 0, 0, 0, time.Local)
	}
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestEmployeeCRUD(t *testing.T) {
	srv, _ := newServer(t)

	create := api.EmployeeDTO{
		ID:                  "e1",
		Name:                "Sato",
		Employment:          "fulltime",
		DefaultMonthlyCost:  650000,
		DefaultMonthlyHours: 160,
		MonthlyOverrides: map[string]fiscal.MonthlyFigures{
			"2025-04": {Cost: 700000, Hours: 150},
		},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees/", create, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got api.EmployeeDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/employees/e1", nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Sato", got.Name)
	require.Contains(t, got.MonthlyOverrides, "2025-04")
	assert.Equal(t, fiscal.Yen(700000), got.MonthlyOverrides["2025-04"].Cost)

	// PUT takes its id from the path.
	update := got
	update.ID = "ignored"
	update.Name = "Sato K."
	var updated api.EmployeeDTO
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/employees/e1", update, &updated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "e1", updated.ID)
	assert.Equal(t, "Sato K.", updated.Name)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/employees/e1", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/employees/e1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveEmployee_Validation(t *testing.T) {
	srv, _ := newServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees/", api.EmployeeDTO{ID: "e1"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad := api.EmployeeDTO{
		ID:               "e1",
		Name:             "Sato",
		MonthlyOverrides: map[string]fiscal.MonthlyFigures{"April 2025": {}},
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/employees/", bad, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveEmployee_GeneratesID(t *testing.T) {
	srv, _ := newServer(t)

	var created api.EmployeeDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees/", api.EmployeeDTO{Name: "Tanaka"}, &created)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.ID)
}

func TestProjectRoundTrip(t *testing.T) {
	srv, _ := newServer(t)

	create := api.ProjectDTO{
		ID:         "p1",
		ClientName: "Acme",
		Name:       "Platform rebuild",
		Status:     "ordered",
		Flow: &api.FlowContractDTO{
			Amount: 6000000,
			Start:  "2025-01-01",
			End:    "2025-06-30",
			Method: "milestone",
			Billing: fiscal.FlowBilling{
				Split:      true,
				StartRatio: 50,
				Start:      fiscal.PaymentRule{PayDay: fiscal.LastDayOfMonth},
				End:        fiscal.PaymentRule{PayDay: fiscal.LastDayOfMonth},
			},
		},
		TimeCharge: &api.TimeChargeDTO{
			Prices: map[string]int64{"2025-03": 200000},
		},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects/", create, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got api.ProjectDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/projects/p1", nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, got.Flow)
	assert.Equal(t, "2025-01-01", got.Flow.Start)
	assert.True(t, got.Flow.Billing.Split)
	require.NotNil(t, got.TimeCharge)
	assert.Equal(t, int64(200000), got.TimeCharge.Prices["2025-03"])
	assert.Nil(t, got.Stock)
}

func TestSaveProject_InvalidDate(t *testing.T) {
	srv, _ := newServer(t)

	create := api.ProjectDTO{
		ID:     "p1",
		Name:   "Bad dates",
		Status: "ordered",
		Flow:   &api.FlowContractDTO{Amount: 1, Start: "01/15/2025", End: "2025-06-30"},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects/", create, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkLogUpsert(t *testing.T) {
	srv, _ := newServer(t)

	log := api.WorkLogDTO{
		ID: "w1", ProjectID: "p1", TaskID: "t1", EmployeeID: "e1",
		WeekStart: "2025-03-03", Hours: 8,
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/worklogs/", log, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	log.Hours = 12
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/worklogs/", log, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var list []api.WorkLogDTO
	doJSON(t, http.MethodGet, srv.URL+"/api/worklogs/", nil, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 12.0, list[0].Hours)
}

func TestGetProjections(t *testing.T) {
	srv, store := newServer(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProject(ctx, &fiscal.Project{
		ID:     "p1",
		Name:   "Renewal",
		Status: fiscal.StatusOrdered,
		Flow: &fiscal.FlowContract{
			Amount: 3000000,
			Start:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local),
			End:    time.Date(2025, time.June, 30, 0, 0, 0, 0, time.Local),
			Method: fiscal.MethodMilestone,
			Billing: fiscal.FlowBilling{
				End: fiscal.PaymentRule{PayDay: fiscal.LastDayOfMonth},
			},
		},
	}))
	require.NoError(t, store.SaveSettings(ctx, &fiscal.Settings{
		InitialCashBalance: 1000000,
		DefaultSalesTarget: 2000000,
	}))

	var got struct {
		Term   int                        `json:"term"`
		Months []api.MonthlyProjectionDTO `json:"months"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/projections?term=2025", nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2025, got.Term)
	require.Len(t, got.Months, 12)

	assert.Equal(t, "2024-12", got.Months[0].Month)
	assert.Equal(t, int64(2000000), got.Months[0].Target)

	byMonth := map[string]api.MonthlyProjectionDTO{}
	for _, m := range got.Months {
		byMonth[m.Month] = m
	}
	// Milestone contract: all revenue in June, cash lands tax-inclusive.
	assert.Equal(t, int64(3000000), byMonth["2025-06"].Revenue)
	assert.Equal(t, int64(3000000), byMonth["2025-06"].ConfirmedRevenue)
	assert.Equal(t, int64(3300000), byMonth["2025-06"].CashIn)
	assert.Equal(t, int64(4300000), byMonth["2025-11"].Balance)
}

func TestGetProjections_InvalidTerm(t *testing.T) {
	srv, _ := newServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/projections?term=next", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDailyCashFlow(t *testing.T) {
	srv, store := newServer(t)
	ctx := context.Background()

	start := fiscal.YM(2025, time.January)
	require.NoError(t, store.SaveSettings(ctx, &fiscal.Settings{
		CashFlowItems: []fiscal.CashFlowItem{
			{ID: "rent", Name: "Rent", Category: fiscal.CategoryOperating, Amount: 250000, PeriodStart: &start, PayDay: 25},
		},
	}))

	var got struct {
		Month string                 `json:"month"`
		Days  []api.DailyCashFlowDTO `json:"days"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/cashflow/daily?month=2025-01&balance=1000000", nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2025-01", got.Month)
	require.Len(t, got.Days, 31)
	assert.Equal(t, int64(1000000), got.Days[0].Balance)
	assert.Equal(t, int64(250000), got.Days[24].Outflow)
	assert.Equal(t, int64(750000), got.Days[30].Balance)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/cashflow/daily", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTermSchedule(t *testing.T) {
	srv, _ := newServer(t)

	var got struct {
		Term   int                    `json:"term"`
		Start  string                 `json:"start"`
		End    string                 `json:"end"`
		Months []api.MonthScheduleDTO `json:"months"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/terms/2025/schedule", nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-12-01", got.Start)
	assert.Equal(t, "2025-11-30", got.End)
	require.Len(t, got.Months, 12)

	dec := got.Months[0]
	assert.Equal(t, "2024-12", dec.Month)
	require.NotEmpty(t, dec.Weeks)
	// The week straddling the term start folds into December.
	assert.Equal(t, "2024-11-25", dec.Weeks[0].Start)
	assert.Equal(t, 1, dec.Weeks[0].Number)
}

func TestScenarioLifecycle(t *testing.T) {
	srv, store := newServer(t)

	var list []api.ScenarioDTO
	doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/", nil, &list)
	require.NotEmpty(t, list)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		map[string]string{"scenario_id": "staffed-team"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Employees, 2)
	assert.Len(t, snap.Projects, 1)
	assert.NotEmpty(t, snap.WorkLogs)

	var current api.ScenarioDTO
	doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil, &current)
	assert.Equal(t, "staffed-team", current.ID)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/reset", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	snap, err = store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Projects)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		map[string]string{"scenario_id": "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
