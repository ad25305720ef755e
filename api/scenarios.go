/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built datasets that populate the database with realistic
  project/employee history for demos. Each scenario exercises a specific
  part of the allocation engine.

AVAILABLE SCENARIOS:
  consultancy-quarter: One project, two employees, FY-scoped salaries
  shared-team:         Overlapping projects, proration across assignments
  on-hold-recovery:    Hold stretch + extension completion + retroactive
                       assignment entry

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Parse the fixture JSON via the factory
 3. Save employees, salary records, projects and their histories

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "shared-team"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Other handlers on the same Handler struct
  - factory/fixture.go: Fixture JSON format
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/margin-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "consultancy-quarter",
		Name:        "Consultancy Quarter",
		Description: "One fixed-budget project, two employees with financial-year salaries",
	},
	{
		ID:          "shared-team",
		Name:        "Shared Team",
		Description: "Three overlapping projects sharing employees; daily cost prorated across simultaneous assignments",
	},
	{
		ID:          "on-hold-recovery",
		Name:        "On-Hold Recovery",
		Description: "Project held mid-flight, extended with budget, completed under the extension; one assignment entered retroactively",
	},
}

var scenarioFixtures = map[string]string{
	"consultancy-quarter": consultancyQuarterJSON,
	"shared-team":         sharedTeamJSON,
	"on-hold-recovery":    onHoldRecoveryJSON,
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, scenarios)
}

func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	data, ok := scenarioFixtures[req.ScenarioID]
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown scenario: %s", req.ScenarioID))
		return
	}

	if err := h.loadFixture(r.Context(), data); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.currentScenario = req.ScenarioID
	respondJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": req.ScenarioID})
}

func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.currentScenario = ""
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// loadFixture resets the store and writes a parsed fixture into it.
func (h *Handler) loadFixture(ctx context.Context, data string) error {
	fixture, err := factory.ParseFixture(data)
	if err != nil {
		return fmt.Errorf("failed to parse fixture: %w", err)
	}

	if err := h.Store.Reset(ctx); err != nil {
		return err
	}

	// Employees first: assignments and salaries reference them.
	for _, e := range fixture.Employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}
	for _, rec := range fixture.Salaries {
		if err := h.Store.AddSalaryRecord(ctx, rec); err != nil {
			return err
		}
	}

	for _, p := range fixture.Projects {
		master := p
		master.Extensions = nil
		master.StatusHistory = nil
		master.Assignments = nil
		if err := h.Store.SaveProject(ctx, master); err != nil {
			return err
		}
		for _, ext := range p.Extensions {
			if err := h.Store.AddExtension(ctx, p.ID, ext); err != nil {
				return err
			}
		}
		for _, sc := range p.StatusHistory {
			if err := h.Store.AddStatusChange(ctx, p.ID, sc); err != nil {
				return err
			}
		}
		for _, a := range p.Assignments {
			if err := h.Store.AddAssignment(ctx, p.ID, a); err != nil {
				return err
			}
		}
	}

	return nil
}

// =============================================================================
// FIXTURE DATA
// =============================================================================

const consultancyQuarterJSON = `{
  "projects": [
    {
      "id": "proj-atlas",
      "name": "Atlas Migration",
      "client_id": "client-northwind",
      "start": "2025-04-01",
      "scheduled_end": "2025-06-30",
      "budget": "180000.00",
      "status": "in-progress",
      "status_changes": [
        {"status": "in-progress", "at": "2025-04-01T09:00:00Z"}
      ],
      "assignments": [
        {"employee_id": "emp-asha", "assigned_at": "2025-04-01T00:00:00Z"},
        {"employee_id": "emp-ben", "assigned_at": "2025-04-15T00:00:00Z"}
      ]
    }
  ],
  "employees": [
    {
      "id": "emp-asha",
      "name": "Asha Rao",
      "salaries": [
        {"financial_year": "2025-26", "annual": "146000", "effective_from": "2025-04-01"}
      ]
    },
    {
      "id": "emp-ben",
      "name": "Ben Okafor",
      "salaries": [
        {"financial_year": "2025-26", "annual": "109500", "effective_from": "2025-04-01"}
      ]
    }
  ]
}`

const sharedTeamJSON = `{
  "projects": [
    {
      "id": "proj-ember",
      "name": "Ember Platform",
      "client_id": "client-acme",
      "start": "2025-01-06",
      "scheduled_end": "2025-05-30",
      "budget": "320000.00",
      "status": "in-progress",
      "assignments": [
        {"employee_id": "emp-asha", "assigned_at": "2025-01-06T00:00:00Z"},
        {"employee_id": "emp-chen", "assigned_at": "2025-01-06T00:00:00Z"}
      ]
    },
    {
      "id": "proj-flint",
      "name": "Flint Integrations",
      "client_id": "client-acme",
      "start": "2025-02-03",
      "scheduled_end": "2025-04-30",
      "budget": "140000.00",
      "status": "completed",
      "completed_on": "2025-04-25",
      "assignments": [
        {"employee_id": "emp-asha", "assigned_at": "2025-02-03T00:00:00Z", "unassigned_at": "2025-04-26T00:00:00Z"},
        {"employee_id": "emp-ben", "assigned_at": "2025-02-03T00:00:00Z"}
      ]
    },
    {
      "id": "proj-grove",
      "name": "Grove Analytics",
      "client_id": "client-birch",
      "start": "2025-03-03",
      "scheduled_end": "2025-07-31",
      "budget": "210000.00",
      "status": "in-progress",
      "extensions": [
        {"new_end": "2025-08-29", "added_budget": "35000.00", "notes": "reporting phase added"}
      ],
      "assignments": [
        {"employee_id": "emp-chen", "assigned_at": "2025-03-03T00:00:00Z"},
        {"employee_id": "emp-ben", "assigned_at": "2025-05-01T00:00:00Z"}
      ]
    }
  ],
  "employees": [
    {
      "id": "emp-asha",
      "name": "Asha Rao",
      "salaries": [
        {"financial_year": "2024-25", "annual": "138700", "effective_from": "2024-04-01"},
        {"financial_year": "2025-26", "annual": "146000", "effective_from": "2025-04-01"}
      ]
    },
    {
      "id": "emp-ben",
      "name": "Ben Okafor",
      "salaries": [
        {"financial_year": "2024-25", "annual": "102200", "effective_from": "2024-04-01"},
        {"financial_year": "2025-26", "annual": "109500", "effective_from": "2025-04-01"}
      ]
    },
    {
      "id": "emp-chen",
      "name": "Chen Wei",
      "legacy_salary": "91250"
    }
  ]
}`

const onHoldRecoveryJSON = `{
  "projects": [
    {
      "id": "proj-harbor",
      "name": "Harbor Replatform",
      "client_id": "client-tidal",
      "start": "2024-10-01",
      "scheduled_end": "2025-01-31",
      "budget": "260000.00",
      "status": "completed",
      "extensions": [
        {"new_end": "2025-03-31", "added_budget": "55000.00", "notes": "scope recovery after hold"},
        {"completed_on": "2025-03-21", "notes": "delivered under extension"}
      ],
      "status_changes": [
        {"status": "in-progress", "at": "2024-10-01T09:00:00Z"},
        {"status": "on-hold", "at": "2024-12-02T09:00:00Z", "notes": "client budget freeze"},
        {"status": "in-progress", "at": "2025-01-06T09:00:00Z"},
        {"status": "completed", "at": "2025-03-21T17:00:00Z"}
      ],
      "assignments": [
        {"employee_id": "emp-asha", "assigned_at": "2024-10-01T00:00:00Z", "unassigned_at": "2025-03-22T00:00:00Z"},
        {"employee_id": "emp-dana", "assigned_at": "2025-06-01T00:00:00Z"}
      ]
    }
  ],
  "employees": [
    {
      "id": "emp-asha",
      "name": "Asha Rao",
      "salaries": [
        {"financial_year": "2024-25", "annual": "138700", "effective_from": "2024-04-01"},
        {"financial_year": "2025-26", "annual": "146000", "effective_from": "2025-04-01"}
      ]
    },
    {
      "id": "emp-dana",
      "name": "Dana Silva",
      "salaries": [
        {"financial_year": "2024-2025", "annual": "95000", "effective_from": "2024-04-01"}
      ]
    }
  ]
}`
