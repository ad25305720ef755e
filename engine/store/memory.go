// Package store provides provider implementations for the engine.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/margin-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory provider (for testing/dev)
// =============================================================================

// Memory implements engine.ProjectProvider and engine.EmployeeProvider
// over in-process maps. History writes are append-only, matching the
// semantics of the SQLite store.
type Memory struct {
	mu        sync.RWMutex
	projects  map[engine.ProjectID]engine.Project
	employees map[engine.EmployeeID]engine.Employee
	salaries  map[engine.EmployeeID][]engine.SalaryRecord
}

func NewMemory() *Memory {
	return &Memory{
		projects:  make(map[engine.ProjectID]engine.Project),
		employees: make(map[engine.EmployeeID]engine.Employee),
		salaries:  make(map[engine.EmployeeID][]engine.SalaryRecord),
	}
}

// Compile-time provider checks.
var (
	_ engine.ProjectProvider  = (*Memory)(nil)
	_ engine.EmployeeProvider = (*Memory)(nil)
)

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) SaveProject(_ context.Context, p engine.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Start.After(p.ScheduledEnd) {
		return engine.ErrInvalidDateRange
	}
	m.projects[p.ID] = p
	return nil
}

func (m *Memory) SaveEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

// AddExtension appends an extension to a project's history.
func (m *Memory) AddExtension(_ context.Context, id engine.ProjectID, ext engine.Extension) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return engine.ErrProjectNotFound
	}
	p.Extensions = append(p.Extensions, ext)
	m.projects[id] = p
	return nil
}

// AddStatusChange appends a status event to a project's log.
func (m *Memory) AddStatusChange(_ context.Context, id engine.ProjectID, sc engine.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return engine.ErrProjectNotFound
	}
	p.StatusHistory = append(p.StatusHistory, sc)
	p.Status = sc.Status
	m.projects[id] = p
	return nil
}

// AddAssignment appends an assignment record to a project.
func (m *Memory) AddAssignment(_ context.Context, id engine.ProjectID, a engine.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return engine.ErrProjectNotFound
	}
	p.Assignments = append(p.Assignments, a)
	m.projects[id] = p
	return nil
}

// AddSalaryRecord appends a salary record to an employee's history.
func (m *Memory) AddSalaryRecord(_ context.Context, rec engine.SalaryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[rec.EmployeeID]; !ok {
		return engine.ErrEmployeeNotFound
	}
	m.salaries[rec.EmployeeID] = append(m.salaries[rec.EmployeeID], rec)
	return nil
}

// =============================================================================
// PROVIDER READS
// =============================================================================

func (m *Memory) Projects(_ context.Context) ([]engine.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, cloneProject(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) Employees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SalaryHistory(_ context.Context, id engine.EmployeeID) ([]engine.SalaryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.SalaryRecord, len(m.salaries[id]))
	copy(result, m.salaries[id])
	return result, nil
}

// cloneProject copies the history slices so snapshot consumers never share
// backing arrays with the store.
func cloneProject(p engine.Project) engine.Project {
	out := p
	out.Extensions = append([]engine.Extension(nil), p.Extensions...)
	out.StatusHistory = append([]engine.StatusChange(nil), p.StatusHistory...)
	out.Assignments = append([]engine.Assignment(nil), p.Assignments...)
	return out
}
