/*
Package factory provides JSON to Go fixture conversion.

PURPOSE:
  Converts JSON dataset definitions into engine records (projects with
  their histories, employees, salary records). This is how demo scenarios
  and seed data are defined without code changes - a dataset is a JSON
  document, and the factory turns it into proper Go structs.

JSON SCHEMA:
  {
    "projects": [
      {
        "id": "proj-alpha",
        "name": "Alpha Rollout",
        "client_id": "client-1",
        "start": "2024-04-01",
        "scheduled_end": "2024-09-30",
        "budget": "250000.00",
        "status": "in-progress",
        "extensions": [
          {"new_end": "2024-11-30", "added_budget": "40000.00"}
        ],
        "status_changes": [
          {"status": "on-hold", "at": "2024-06-01T09:00:00Z"}
        ],
        "assignments": [
          {"employee_id": "emp-1", "assigned_at": "2024-04-01T00:00:00Z"}
        ]
      }
    ],
    "employees": [
      {
        "id": "emp-1",
        "name": "Asha Rao",
        "legacy_salary": "900000",
        "salaries": [
          {"financial_year": "2024-25", "annual": "1095000", "effective_from": "2024-04-01"}
        ]
      }
    ]
  }

PARSING POLICY:
  Malformed or absent optional dates are dropped (that field becomes
  absent), matching the engine's skip-the-branch behavior. Malformed
  required dates fail the parse.

SEE ALSO:
  - api/scenarios.go: Demo scenarios built on these fixtures
  - engine/types.go: Target record types
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/margin-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// FixtureJSON is the JSON representation of a full dataset.
type FixtureJSON struct {
	Projects  []ProjectJSON  `json:"projects"`
	Employees []EmployeeJSON `json:"employees"`
}

type ProjectJSON struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	ClientID      string             `json:"client_id,omitempty"`
	Start         string             `json:"start"`
	ScheduledEnd  string             `json:"scheduled_end"`
	CompletedOn   string             `json:"completed_on,omitempty"`
	Budget        string             `json:"budget"`
	Status        string             `json:"status"`
	Extensions    []ExtensionJSON    `json:"extensions,omitempty"`
	StatusChanges []StatusChangeJSON `json:"status_changes,omitempty"`
	Assignments   []AssignmentJSON   `json:"assignments,omitempty"`
}

type ExtensionJSON struct {
	NewEnd      string `json:"new_end,omitempty"`
	AddedBudget string `json:"added_budget,omitempty"`
	CompletedOn string `json:"completed_on,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type StatusChangeJSON struct {
	Status string `json:"status"`
	At     string `json:"at"` // RFC3339
	Notes  string `json:"notes,omitempty"`
}

type AssignmentJSON struct {
	EmployeeID   string `json:"employee_id"`
	AssignedAt   string `json:"assigned_at"`              // RFC3339
	UnassignedAt string `json:"unassigned_at,omitempty"` // RFC3339
}

type EmployeeJSON struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	LegacySalary string       `json:"legacy_salary,omitempty"`
	Salaries     []SalaryJSON `json:"salaries,omitempty"`
}

type SalaryJSON struct {
	FinancialYear string `json:"financial_year"`
	Annual        string `json:"annual"`
	EffectiveFrom string `json:"effective_from"`
}

// =============================================================================
// FIXTURE - Parsed records ready for a store
// =============================================================================

// Fixture is the parsed dataset.
type Fixture struct {
	Projects  []engine.Project
	Employees []engine.Employee
	Salaries  []engine.SalaryRecord
}

// ParseFixture converts a JSON dataset into engine records.
func ParseFixture(data string) (*Fixture, error) {
	var doc FixtureJSON
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("invalid fixture JSON: %w", err)
	}

	fixture := &Fixture{}

	for _, pj := range doc.Projects {
		p, err := parseProject(pj)
		if err != nil {
			return nil, err
		}
		fixture.Projects = append(fixture.Projects, p)
	}

	for _, ej := range doc.Employees {
		emp := engine.Employee{
			ID:   engine.EmployeeID(ej.ID),
			Name: ej.Name,
		}
		if ej.LegacySalary != "" {
			m := engine.MustParseMoney(ej.LegacySalary)
			emp.LegacySalary = &m
		}
		fixture.Employees = append(fixture.Employees, emp)

		for _, sj := range ej.Salaries {
			effective, err := engine.ParseDate(sj.EffectiveFrom)
			if err != nil {
				return nil, fmt.Errorf("employee %s: invalid effective_from %q: %w", ej.ID, sj.EffectiveFrom, err)
			}
			fixture.Salaries = append(fixture.Salaries, engine.SalaryRecord{
				EmployeeID:    emp.ID,
				FinancialYear: sj.FinancialYear,
				Annual:        engine.MustParseMoney(sj.Annual),
				EffectiveFrom: effective,
			})
		}
	}

	return fixture, nil
}

func parseProject(pj ProjectJSON) (engine.Project, error) {
	start, err := engine.ParseDate(pj.Start)
	if err != nil {
		return engine.Project{}, fmt.Errorf("project %s: invalid start %q: %w", pj.ID, pj.Start, err)
	}
	scheduledEnd, err := engine.ParseDate(pj.ScheduledEnd)
	if err != nil {
		return engine.Project{}, fmt.Errorf("project %s: invalid scheduled_end %q: %w", pj.ID, pj.ScheduledEnd, err)
	}
	if start.After(scheduledEnd) {
		return engine.Project{}, engine.ErrInvalidDateRange
	}

	p := engine.Project{
		ID:           engine.ProjectID(pj.ID),
		Name:         pj.Name,
		ClientID:     engine.ClientID(pj.ClientID),
		Start:        start,
		ScheduledEnd: scheduledEnd,
		CompletedOn:  optionalDate(pj.CompletedOn),
		Budget:       engine.MustParseMoney(pj.Budget),
		Status:       engine.ProjectStatus(pj.Status),
	}

	for _, xj := range pj.Extensions {
		p.Extensions = append(p.Extensions, engine.Extension{
			NewEnd:      optionalDate(xj.NewEnd),
			AddedBudget: engine.MustParseMoney(xj.AddedBudget),
			CompletedOn: optionalDate(xj.CompletedOn),
			Notes:       xj.Notes,
		})
	}

	for _, sj := range pj.StatusChanges {
		at, err := time.Parse(time.RFC3339, sj.At)
		if err != nil {
			return engine.Project{}, fmt.Errorf("project %s: invalid status change time %q: %w", pj.ID, sj.At, err)
		}
		p.StatusHistory = append(p.StatusHistory, engine.StatusChange{
			Status: engine.ProjectStatus(sj.Status),
			At:     at,
			Notes:  sj.Notes,
		})
	}

	for _, aj := range pj.Assignments {
		at, err := time.Parse(time.RFC3339, aj.AssignedAt)
		if err != nil {
			return engine.Project{}, fmt.Errorf("project %s: invalid assigned_at %q: %w", pj.ID, aj.AssignedAt, err)
		}
		assignment := engine.Assignment{
			EmployeeID: engine.EmployeeID(aj.EmployeeID),
			AssignedAt: at,
		}
		if aj.UnassignedAt != "" {
			until, err := time.Parse(time.RFC3339, aj.UnassignedAt)
			if err != nil {
				return engine.Project{}, fmt.Errorf("project %s: invalid unassigned_at %q: %w", pj.ID, aj.UnassignedAt, err)
			}
			assignment.UnassignedAt = &until
		}
		p.Assignments = append(p.Assignments, assignment)
	}

	return p, nil
}

// optionalDate parses an optional date string. Malformed or empty input is
// treated as absent - that branch of the engine's priority chain is simply
// skipped.
func optionalDate(s string) *engine.Date {
	if s == "" {
		return nil
	}
	d, err := engine.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}
