/*
snapshot.go - Immutable input snapshot and the engine facade

PURPOSE:
  The engine computes over a snapshot fetched up front: all projects with
  their full histories, all employees, all salary records. The day-by-day
  walk performs no further data-source I/O. Providers are the seam between
  the engine and whatever persistence layer surrounds it; implementations
  live in store/sqlite (production) and engine/store (in-memory).

FAILURE MODEL:
  A provider error during the snapshot fetch propagates wholesale - there
  is no partial-result mode. Either the full snapshot is obtained and the
  full report computed, or the operation fails.
*/
package engine

import "context"

// =============================================================================
// PROVIDERS - Interfaces the surrounding persistence layer implements
// =============================================================================

// ProjectProvider returns all projects with their extensions, status
// history and assignment records attached.
type ProjectProvider interface {
	Projects(ctx context.Context) ([]Project, error)
}

// EmployeeProvider returns all employees plus salary history per employee.
type EmployeeProvider interface {
	Employees(ctx context.Context) ([]Employee, error)
	SalaryHistory(ctx context.Context, id EmployeeID) ([]SalaryRecord, error)
}

// =============================================================================
// SNAPSHOT - Frozen inputs for one report computation
// =============================================================================

// Snapshot holds everything a report computation reads. The engine treats
// it as read-only; shared slices are copied before any sort.
type Snapshot struct {
	Projects  []Project
	Employees []Employee
	Salaries  []SalaryRecord

	// AsOf caps the analysis window. Injected by the caller, never read
	// from ambient time inside the engine.
	AsOf Date
}

// LoadSnapshot fetches the full snapshot from the providers. Any provider
// error aborts the load.
func LoadSnapshot(ctx context.Context, pp ProjectProvider, ep EmployeeProvider, asOf Date) (*Snapshot, error) {
	projects, err := pp.Projects(ctx)
	if err != nil {
		return nil, &SnapshotError{Source: "projects", Err: err}
	}
	employees, err := ep.Employees(ctx)
	if err != nil {
		return nil, &SnapshotError{Source: "employees", Err: err}
	}

	var salaries []SalaryRecord
	for _, e := range employees {
		history, err := ep.SalaryHistory(ctx, e.ID)
		if err != nil {
			return nil, &SnapshotError{Source: "salaries", Err: err}
		}
		salaries = append(salaries, history...)
	}

	return &Snapshot{
		Projects:  projects,
		Employees: employees,
		Salaries:  salaries,
		AsOf:      asOf,
	}, nil
}

// =============================================================================
// ENGINE FACADE - The single operation exposed to callers
// =============================================================================

// Engine wires providers to the allocation walk and report assembly.
type Engine struct {
	Projects  ProjectProvider
	Employees EmployeeProvider
}

func NewEngine(pp ProjectProvider, ep EmployeeProvider) *Engine {
	return &Engine{Projects: pp, Employees: ep}
}

// ComputeProfitLossReport fetches a snapshot as of the given day and
// computes the full profit/loss report. Deterministic and side-effect-free
// for a fixed snapshot and asOf.
func (e *Engine) ComputeProfitLossReport(ctx context.Context, asOf Date) (*Report, error) {
	snap, err := LoadSnapshot(ctx, e.Projects, e.Employees, asOf)
	if err != nil {
		return nil, err
	}
	alloc := Allocate(snap)
	return AssembleReport(snap, alloc), nil
}
