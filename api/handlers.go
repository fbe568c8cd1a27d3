/*
handlers.go - HTTP API handlers for the projection dashboard

PURPOSE:

	Exposes the fiscal projection engine via REST API. Handles HTTP
	request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:

	Employees:
	  GET    /api/employees          List all employees
	  POST   /api/employees          Create or update employee
	  GET    /api/employees/{id}     Get employee
	  PUT    /api/employees/{id}     Update employee
	  DELETE /api/employees/{id}     Delete employee (cascades assignments)

	Projects:
	  GET    /api/projects           List all projects
	  POST   /api/projects           Create or update project
	  GET    /api/projects/{id}      Get project
	  PUT    /api/projects/{id}      Update project
	  DELETE /api/projects/{id}      Delete project

	Work logs:
	  GET    /api/worklogs           List all work logs
	  POST   /api/worklogs           Upsert hours for a week slot
	  DELETE /api/worklogs/{id}      Delete a work log

	Settings:
	  GET    /api/settings           Get settings
	  PUT    /api/settings           Replace settings

	Projections:
	  GET    /api/projections?term=2026            12 monthly rows
	  GET    /api/cashflow/daily?month=2026-01     Day-level cash flow
	  GET    /api/terms/{year}/schedule            Week schedule

	Scenarios:
	  GET    /api/scenarios          List demo scenarios
	  POST   /api/scenarios/load     Load a demo scenario
	  POST   /api/scenarios/reset    Clear all data

ARCHITECTURE:

	Handler holds the store, a logger, and an injectable clock. The clock
	decides which projection months count as past; tests pin it.

ERROR HANDLING:

	Errors are returned as JSON with appropriate HTTP status:
	- 400: Validation errors, invalid input
	- 404: Resource not found
	- 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas/fiscal-engine/fiscal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  fiscal.Store
	Logger *zap.Logger

	// Now supplies the evaluation instant for projections.
	Now func() time.Time

	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store fiscal.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:  store,
		Logger: logger,
		Now:    time.Now,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.internalError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := fiscal.EmployeeID(chi.URLParam(r, "id"))

	e, err := h.Store.GetEmployee(r.Context(), id)
	if errors.Is(err, fiscal.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// SaveEmployee creates or updates an employee. A missing id gets generated.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var dto EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}

	e, err := employeeFromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		h.internalError(w, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// UpdateEmployee updates the employee at the URL; the path id wins over any
// id in the body.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	dto.ID = chi.URLParam(r, "id")
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	e, err := employeeFromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		h.internalError(w, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// DeleteEmployee deletes an employee and strips its project assignments.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := fiscal.EmployeeID(chi.URLParam(r, "id"))

	err := h.Store.DeleteEmployee(r.Context(), id)
	if errors.Is(err, fiscal.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		h.internalError(w, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toProjectDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := fiscal.ProjectID(chi.URLParam(r, "id"))

	p, err := h.Store.GetProject(r.Context(), id)
	if errors.Is(err, fiscal.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

// SaveProject creates or updates a project. A missing id gets generated.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}

	p, err := projectFromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project", err)
		return
	}
	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		h.internalError(w, "Failed to save project", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// UpdateProject updates the project at the URL; the path id wins over any id
// in the body.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	dto.ID = chi.URLParam(r, "id")
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	p, err := projectFromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project", err)
		return
	}
	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		h.internalError(w, "Failed to save project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

// DeleteProject deletes a project.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := fiscal.ProjectID(chi.URLParam(r, "id"))

	err := h.Store.DeleteProject(r.Context(), id)
	if errors.Is(err, fiscal.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to delete project", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// WORK LOG HANDLERS
// =============================================================================

// ListWorkLogs returns all work logs.
func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Store.ListWorkLogs(r.Context())
	if err != nil {
		h.internalError(w, "Failed to list work logs", err)
		return
	}

	dtos := make([]WorkLogDTO, 0, len(logs))
	for _, l := range logs {
		dtos = append(dtos, toWorkLogDTO(l))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveWorkLog upserts hours for a (project, task, employee, week) slot.
func (h *Handler) SaveWorkLog(w http.ResponseWriter, r *http.Request) {
	var dto WorkLogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if dto.ProjectID == "" || dto.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "projectId and employeeId are required", nil)
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}

	l, err := workLogFromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work log", err)
		return
	}
	if err := h.Store.SaveWorkLog(r.Context(), l); err != nil {
		h.internalError(w, "Failed to save work log", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkLogDTO(l))
}

// DeleteWorkLog deletes a work log.
func (h *Handler) DeleteWorkLog(w http.ResponseWriter, r *http.Request) {
	id := fiscal.WorkLogID(chi.URLParam(r, "id"))

	err := h.Store.DeleteWorkLog(r.Context(), id)
	if errors.Is(err, fiscal.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Work log not found", nil)
		return
	}
	if err != nil {
		h.internalError(w, "Failed to delete work log", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the installation settings, zero-valued when unset.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.internalError(w, "Failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SaveSettings replaces the installation settings.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings fiscal.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), &settings); err != nil {
		h.internalError(w, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// GetProjections returns the 12 monthly projection rows for a term.
// GET /api/projections?term=2026
func (h *Handler) GetProjections(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	term := fiscal.TermOf(now)
	if raw := r.URL.Query().Get("term"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid term (use a year like 2026)", err)
			return
		}
		term = fiscal.Term(year)
	}

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		h.internalError(w, "Failed to load data", err)
		return
	}

	rows := fiscal.GenerateProjections(fiscal.ProjectionInput{
		Term:      term,
		Projects:  snap.Projects,
		Employees: snap.Employees,
		WorkLogs:  snap.WorkLogs,
		Settings:  snap.Settings,
		AsOf:      now,
	})

	dtos := make([]MonthlyProjectionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toProjectionDTO(row))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"term":   int(term),
		"months": dtos,
	})
}

// GetDailyCashFlow returns the day-level cash flow for one month.
// GET /api/cashflow/daily?month=2026-01&balance=5000000
func (h *Handler) GetDailyCashFlow(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "month is required (use YYYY-MM)", nil)
		return
	}
	month, ok := fiscal.ParseYearMonth(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", nil)
		return
	}

	var opening fiscal.Yen
	if b := r.URL.Query().Get("balance"); b != "" {
		v, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid balance", err)
			return
		}
		opening = fiscal.Yen(v)
	}

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		h.internalError(w, "Failed to load data", err)
		return
	}

	days := fiscal.GenerateDailyCashFlow(month, snap.Projects, snap.Settings, opening)
	dtos := make([]DailyCashFlowDTO, 0, len(days))
	for _, d := range days {
		dtos = append(dtos, toDailyDTO(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month.Key(),
		"days":  dtos,
	})
}

// GetTermSchedule returns a term's months with their Monday business weeks.
// GET /api/terms/{year}/schedule
func (h *Handler) GetTermSchedule(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid term year", err)
		return
	}
	term := fiscal.Term(year)

	writeJSON(w, http.StatusOK, map[string]any{
		"term":   year,
		"start":  term.Start().Format("2006-01-02"),
		"end":    term.End().Format("2006-01-02"),
		"months": toScheduleDTO(term.Schedule()),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	h.Logger.Error(message, zap.Error(err))
	writeError(w, http.StatusInternalServerError, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
