/*
Package sqlite provides the SQLite-backed implementation of fiscal.Store.

PURPOSE:

	Persists the entity collections the projection engine consumes. Scalar
	fields live in columns; contract configuration, overrides, and settings
	are JSON documents in config columns, so the schema stays stable while
	the contract shapes evolve.

KEY TABLES:

	employees:  scalar defaults + overrides_json (sparse month map)
	projects:   identity/status columns + config_json (contracts, tasks,
	            assignments, lead sources)
	work_logs:  one row per (project, task, employee, week start), hours
	settings:   single-row JSON document

CASCADES:

	Deleting an employee rewrites every project config to drop that
	employee's assignments. Work logs are weak references and are never
	purged by cascades.

WAL MODE:

	Opened with WAL journaling for concurrent readers. A RWMutex serializes
	writers in-process.

USAGE:

	store, err := sqlite.New("./data/fiscal.db")
	if err != nil { ... }
	defer store.Close()

SEE ALSO:
  - fiscal/store.go: interface contract
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atlas/fiscal-engine/fiscal"
)

// Store implements fiscal.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ fiscal.Store = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		employment TEXT NOT NULL,
		default_cost INTEGER NOT NULL DEFAULT 0,
		default_hours REAL NOT NULL DEFAULT 0,
		overrides_json TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		project_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		config_json TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS work_logs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		task_id TEXT NOT NULL DEFAULT '',
		employee_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		hours REAL NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_work_logs_slot
		ON work_logs(project_id, task_id, employee_id, week_start);
	CREATE INDEX IF NOT EXISTS idx_work_logs_project ON work_logs(project_id);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// projectConfig is the JSON document stored per project.
type projectConfig struct {
	LeadSources []string                   `json:"leadSources,omitempty"`
	Flow        *fiscal.FlowContract       `json:"flow,omitempty"`
	Stock       *fiscal.StockContract      `json:"stock,omitempty"`
	TimeCharge  *fiscal.TimeChargeContract `json:"timeCharge,omitempty"`
	Tasks       []fiscal.Task              `json:"tasks,omitempty"`
	Assignments []fiscal.Assignment        `json:"assignments,omitempty"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) ListEmployees(ctx context.Context) ([]*fiscal.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, employment, default_cost, default_hours, overrides_json
		 FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*fiscal.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id fiscal.EmployeeID) (*fiscal.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, employment, default_cost, default_hours, overrides_json
		 FROM employees WHERE id = ?`, string(id))
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, fiscal.ErrNotFound
	}
	return e, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(r rowScanner) (*fiscal.Employee, error) {
	var (
		e             fiscal.Employee
		overridesJSON string
	)
	if err := r.Scan(&e.ID, &e.Name, &e.Employment, &e.DefaultMonthlyCost, &e.DefaultMonthlyHours, &overridesJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(overridesJSON), &e.Overrides); err != nil {
		return nil, fmt.Errorf("corrupt overrides for employee %s: %w", e.ID, err)
	}
	return &e, nil
}

func (s *Store) SaveEmployee(ctx context.Context, e *fiscal.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrides := e.Overrides
	if overrides == nil {
		overrides = map[fiscal.YearMonth]fiscal.MonthlyFigures{}
	}
	raw, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, employment, default_cost, default_hours, overrides_json)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   employment = excluded.employment,
		   default_cost = excluded.default_cost,
		   default_hours = excluded.default_hours,
		   overrides_json = excluded.overrides_json`,
		string(e.ID), e.Name, string(e.Employment), int64(e.DefaultMonthlyCost), e.DefaultMonthlyHours, string(raw))
	return err
}

// DeleteEmployee removes the employee and strips its assignments from every
// project config in the same transaction.
func (s *Store) DeleteEmployee(ctx context.Context, id fiscal.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiscal.ErrNotFound
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, config_json FROM projects`)
	if err != nil {
		return err
	}
	type patch struct {
		id   string
		json string
	}
	var patches []patch
	for rows.Next() {
		var pid, raw string
		if err := rows.Scan(&pid, &raw); err != nil {
			rows.Close()
			return err
		}
		var cfg projectConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			rows.Close()
			return fmt.Errorf("corrupt config for project %s: %w", pid, err)
		}
		kept := cfg.Assignments[:0]
		for _, a := range cfg.Assignments {
			if a.EmployeeID != id {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(cfg.Assignments) {
			continue
		}
		cfg.Assignments = kept
		updated, err := json.Marshal(cfg)
		if err != nil {
			rows.Close()
			return err
		}
		patches = append(patches, patch{id: pid, json: string(updated)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range patches {
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET config_json = ? WHERE id = ?`, p.json, p.id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) ListProjects(ctx context.Context) ([]*fiscal.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_name, name, project_type, status, config_json FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*fiscal.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id fiscal.ProjectID) (*fiscal.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, client_name, name, project_type, status, config_json FROM projects WHERE id = ?`, string(id))
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, fiscal.ErrNotFound
	}
	return p, err
}

func scanProject(r rowScanner) (*fiscal.Project, error) {
	var (
		p   fiscal.Project
		raw string
	)
	if err := r.Scan(&p.ID, &p.ClientName, &p.Name, &p.Type, &p.Status, &raw); err != nil {
		return nil, err
	}
	var cfg projectConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("corrupt config for project %s: %w", p.ID, err)
	}
	p.LeadSources = cfg.LeadSources
	p.Flow = cfg.Flow
	p.Stock = cfg.Stock
	p.TimeCharge = cfg.TimeCharge
	p.Tasks = cfg.Tasks
	p.Assignments = cfg.Assignments
	return &p, nil
}

func (s *Store) SaveProject(ctx context.Context, p *fiscal.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(projectConfig{
		LeadSources: p.LeadSources,
		Flow:        p.Flow,
		Stock:       p.Stock,
		TimeCharge:  p.TimeCharge,
		Tasks:       p.Tasks,
		Assignments: p.Assignments,
	})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, client_name, name, project_type, status, config_json)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_name = excluded.client_name,
		   name = excluded.name,
		   project_type = excluded.project_type,
		   status = excluded.status,
		   config_json = excluded.config_json`,
		string(p.ID), p.ClientName, p.Name, p.Type, string(p.Status), string(raw))
	return err
}

func (s *Store) DeleteProject(ctx context.Context, id fiscal.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiscal.ErrNotFound
	}
	return nil
}

// =============================================================================
// WORK LOGS
// =============================================================================

func (s *Store) ListWorkLogs(ctx context.Context) ([]*fiscal.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, task_id, employee_id, week_start, hours FROM work_logs ORDER BY week_start, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*fiscal.WorkLog
	for rows.Next() {
		var (
			l    fiscal.WorkLog
			week string
		)
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.TaskID, &l.EmployeeID, &week, &l.Hours); err != nil {
			return nil, err
		}
		if parsed, ok := fiscal.ParseDate(week); ok {
			l.WeekStart = parsed
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (s *Store) SaveWorkLog(ctx context.Context, l *fiscal.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_logs (id, project_id, task_id, employee_id, week_start, hours)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, task_id, employee_id, week_start) DO UPDATE SET
		   hours = excluded.hours`,
		string(l.ID), string(l.ProjectID), string(l.TaskID), string(l.EmployeeID),
		l.WeekStart.Format("2006-01-02"), l.Hours)
	return err
}

func (s *Store) DeleteWorkLog(ctx context.Context, id fiscal.WorkLogID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM work_logs WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fiscal.ErrNotFound
	}
	return nil
}

// =============================================================================
// SETTINGS AND SNAPSHOT
// =============================================================================

func (s *Store) GetSettings(ctx context.Context) (*fiscal.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT config_json FROM settings WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return &fiscal.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	var settings fiscal.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("corrupt settings: %w", err)
	}
	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings *fiscal.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (id, config_json) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json`,
		string(raw))
	return err
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

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"work_logs", "projects", "employees", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
