package fiscal

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store lookups for missing entities.
var ErrNotFound = errors.New("not found")

// Dataset is a whole-installation snapshot, loaded wholesale for each
// projection run.
type Dataset struct {
	Employees []*Employee
	Projects  []*Project
	WorkLogs  []*WorkLog
	Settings  *Settings
}

// Store persists the entity collections the engine consumes. The engine
// itself never touches a Store; handlers load a snapshot and call the pure
// functions.
//
// Contract notes:
//   - DeleteEmployee cascades to remove the employee's assignments from
//     every project. Work logs keep their weak reference and become inert.
//   - SaveWorkLog upserts on (project, task, employee, week start).
//   - GetSettings returns zero-valued settings when none were saved yet.
type Store interface {
	ListEmployees(ctx context.Context) ([]*Employee, error)
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	SaveEmployee(ctx context.Context, e *Employee) error
	DeleteEmployee(ctx context.Context, id EmployeeID) error

	ListProjects(ctx context.Context) ([]*Project, error)
	GetProject(ctx context.Context, id ProjectID) (*Project, error)
	SaveProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id ProjectID) error

	ListWorkLogs(ctx context.Context) ([]*WorkLog, error)
	SaveWorkLog(ctx context.Context, l *WorkLog) error
	DeleteWorkLog(ctx context.Context, id WorkLogID) error

	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error

	// Snapshot loads everything a projection needs in one call.
	Snapshot(ctx context.Context) (*Dataset, error)

	// Reset clears all data. Used by demo scenario loading.
	Reset(ctx context.Context) error
}
