// Package memory provides an in-memory Store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/atlas/fiscal-engine/fiscal"
)

// Store keeps all entities in maps guarded by a RWMutex. Values are cloned
// on the way in and out so callers can treat results as private snapshots.
type Store struct {
	mu        sync.RWMutex
	employees map[fiscal.EmployeeID]*fiscal.Employee
	projects  map[fiscal.ProjectID]*fiscal.Project
	workLogs  map[fiscal.WorkLogID]*fiscal.WorkLog
	settings  *fiscal.Settings
}

var _ fiscal.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		employees: make(map[fiscal.EmployeeID]*fiscal.Employee),
		projects:  make(map[fiscal.ProjectID]*fiscal.Project),
		workLogs:  make(map[fiscal.WorkLogID]*fiscal.WorkLog),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) ListEmployees(_ context.Context) ([]*fiscal.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*fiscal.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, cloneEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetEmployee(_ context.Context, id fiscal.EmployeeID) (*fiscal.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, fiscal.ErrNotFound
	}
	return cloneEmployee(e), nil
}

func (s *Store) SaveEmployee(_ context.Context, e *fiscal.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = cloneEmployee(e)
	return nil
}

// DeleteEmployee removes the employee and cascades to strip its assignments
// from every project. Work logs keep their weak reference.
func (s *Store) DeleteEmployee(_ context.Context, id fiscal.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return fiscal.ErrNotFound
	}
	delete(s.employees, id)
	for _, p := range s.projects {
		kept := p.Assignments[:0]
		for _, a := range p.Assignments {
			if a.EmployeeID != id {
				kept = append(kept, a)
			}
		}
		p.Assignments = kept
	}
	return nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) ListProjects(_ context.Context) ([]*fiscal.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*fiscal.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetProject(_ context.Context, id fiscal.ProjectID) (*fiscal.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, fiscal.ErrNotFound
	}
	return cloneProject(p), nil
}

func (s *Store) SaveProject(_ context.Context, p *fiscal.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = cloneProject(p)
	return nil
}

func (s *Store) DeleteProject(_ context.Context, id fiscal.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return fiscal.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

// =============================================================================
// WORK LOGS
// =============================================================================

func (s *Store) ListWorkLogs(_ context.Context) ([]*fiscal.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*fiscal.WorkLog, 0, len(s.workLogs))
	for _, l := range s.workLogs {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveWorkLog upserts on (project, task, employee, week start): logging the
// same slot twice replaces the hours rather than duplicating the row.
func (s *Store) SaveWorkLog(_ context.Context, l *fiscal.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.workLogs {
		if existing.ProjectID == l.ProjectID &&
			existing.TaskID == l.TaskID &&
			existing.EmployeeID == l.EmployeeID &&
			existing.WeekStart.Equal(l.WeekStart) {
			delete(s.workLogs, id)
			break
		}
	}
	cp := *l
	s.workLogs[l.ID] = &cp
	return nil
}

func (s *Store) DeleteWorkLog(_ context.Context, id fiscal.WorkLogID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workLogs[id]; !ok {
		return fiscal.ErrNotFound
	}
	delete(s.workLogs, id)
	return nil
}

// =============================================================================
// SETTINGS AND SNAPSHOT
// =============================================================================

func (s *Store) GetSettings(_ context.Context) (*fiscal.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return &fiscal.Settings{}, nil
	}
	return cloneSettings(s.settings), nil
}

func (s *Store) SaveSettings(_ context.Context, st *fiscal.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = cloneSettings(st)
	return nil
}

func (s *Store) Snapshot(ctx context.Context) (*fiscal.Dataset, error) {
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.ListWorkLogs(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &fiscal.Dataset{Employees: employees, Projects: projects, WorkLogs: logs, Settings: settings}, nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = make(map[fiscal.EmployeeID]*fiscal.Employee)
	s.projects = make(map[fiscal.ProjectID]*fiscal.Project)
	s.workLogs = make(map[fiscal.WorkLogID]*fiscal.WorkLog)
	s.settings = nil
	return nil
}

// =============================================================================
// CLONING
// =============================================================================

func cloneEmployee(e *fiscal.Employee) *fiscal.Employee {
	cp := *e
	if e.Overrides != nil {
		cp.Overrides = make(map[fiscal.YearMonth]fiscal.MonthlyFigures, len(e.Overrides))
		for k, v := range e.Overrides {
			cp.Overrides[k] = v
		}
	}
	return &cp
}

func cloneProject(p *fiscal.Project) *fiscal.Project {
	cp := *p
	cp.LeadSources = append([]string(nil), p.LeadSources...)
	cp.Tasks = append([]fiscal.Task(nil), p.Tasks...)
	cp.Assignments = append([]fiscal.Assignment(nil), p.Assignments...)
	if p.Flow != nil {
		f := *p.Flow
		cp.Flow = &f
	}
	if p.Stock != nil {
		st := *p.Stock
		cp.Stock = &st
	}
	if p.TimeCharge != nil {
		tc := fiscal.TimeChargeContract{Prices: make(map[fiscal.YearMonth]fiscal.Yen, len(p.TimeCharge.Prices))}
		for k, v := range p.TimeCharge.Prices {
			tc.Prices[k] = v
		}
		cp.TimeCharge = &tc
	}
	return &cp
}

func cloneSettings(s *fiscal.Settings) *fiscal.Settings {
	cp := *s
	if s.SalesTargets != nil {
		cp.SalesTargets = make(map[fiscal.YearMonth]fiscal.Yen, len(s.SalesTargets))
		for k, v := range s.SalesTargets {
			cp.SalesTargets[k] = v
		}
	}
	cp.CashFlowItems = append([]fiscal.CashFlowItem(nil), s.CashFlowItems...)
	cp.LeadSources = append([]string(nil), s.LeadSources...)
	return &cp
}
