/*
handlers.go - HTTP API handlers for the profit/loss engine

PURPOSE:
  Exposes the cost-allocation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine and
  the store. The engine itself owns no HTTP or persistence concerns.

ENDPOINTS:
  Reports:
    GET    /api/reports/profit-loss          The full P&L report
                                             (?as_of=YYYY-MM-DD optional)

  Projects:
    GET    /api/projects                     List projects
    POST   /api/projects                     Create project
    GET    /api/projects/{id}                Get project
    POST   /api/projects/{id}/extensions     Append extension
    POST   /api/projects/{id}/status         Append status change
    POST   /api/projects/{id}/assignments    Append assignment record

  Employees:
    GET    /api/employees                    List employees
    POST   /api/employees                    Create employee
    POST   /api/employees/{id}/salaries      Append salary record

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    POST   /api/scenarios/load               Load a demo scenario
    POST   /api/scenarios/reset              Clear the database

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors (including snapshot fetch failures - there is no
         partial-report mode)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/margin-engine/engine"
	"github.com/warp/margin-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *engine.Engine

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:  store,
		Engine: engine.NewEngine(store, store),
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetProfitLossReport computes the full report. The analysis window is
// capped at "as_of" (default: today), injected here so the engine stays
// deterministic.
func (h *Handler) GetProfitLossReport(w http.ResponseWriter, r *http.Request) {
	asOf := engine.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		parsed, err := engine.ParseDate(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	report, err := h.Engine.ComputeProfitLossReport(r.Context(), asOf)
	if err != nil {
		// Snapshot fetch failures surface wholesale; no partial report.
		log.Printf("profit/loss report failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to compute report")
		return
	}

	respondJSON(w, http.StatusOK, toReportDTO(report, asOf))
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.Projects(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toProjectDTO(p))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := engine.ProjectID(chi.URLParam(r, "id"))
	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProjectDTO(*p))
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	start, err := engine.ParseDate(req.Start)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	scheduledEnd, err := engine.ParseDate(req.ScheduledEnd)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid scheduled_end date")
		return
	}

	status := engine.ProjectStatus(req.Status)
	if status == "" {
		status = engine.StatusPlanning
	}

	p := engine.Project{
		ID:           engine.ProjectID(req.ID),
		Name:         req.Name,
		ClientID:     engine.ClientID(req.ClientID),
		Start:        start,
		ScheduledEnd: scheduledEnd,
		Budget:       engine.MustParseMoney(req.Budget),
		Status:       status,
	}
	if req.CompletedOn != "" {
		if d, err := engine.ParseDate(req.CompletedOn); err == nil {
			p.CompletedOn = &d
		}
	}

	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toProjectDTO(p))
}

func (h *Handler) AddExtension(w http.ResponseWriter, r *http.Request) {
	id := engine.ProjectID(chi.URLParam(r, "id"))

	var req AddExtensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ext := engine.Extension{
		AddedBudget: engine.MustParseMoney(req.AddedBudget),
		Notes:       req.Notes,
	}
	// Malformed optional dates are treated as absent.
	if req.NewEnd != "" {
		if d, err := engine.ParseDate(req.NewEnd); err == nil {
			ext.NewEnd = &d
		}
	}
	if req.CompletedOn != "" {
		if d, err := engine.ParseDate(req.CompletedOn); err == nil {
			ext.CompletedOn = &d
		}
	}

	if err := h.Store.AddExtension(r.Context(), id, ext); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "extension added"})
}

func (h *Handler) AddStatusChange(w http.ResponseWriter, r *http.Request) {
	id := engine.ProjectID(chi.URLParam(r, "id"))

	var req AddStatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	at := time.Now().UTC()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid at timestamp, expected RFC3339")
			return
		}
		at = parsed
	}

	sc := engine.StatusChange{
		Status: engine.ProjectStatus(req.Status),
		At:     at,
		Notes:  req.Notes,
	}
	if err := h.Store.AddStatusChange(r.Context(), id, sc); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "status change recorded"})
}

func (h *Handler) AddAssignment(w http.ResponseWriter, r *http.Request) {
	id := engine.ProjectID(chi.URLParam(r, "id"))

	var req AddAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.EmployeeID == "" {
		respondError(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	assignedAt := time.Now().UTC()
	if req.AssignedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.AssignedAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid assigned_at timestamp, expected RFC3339")
			return
		}
		assignedAt = parsed
	}

	a := engine.Assignment{
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		AssignedAt: assignedAt,
	}
	if req.UnassignedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.UnassignedAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid unassigned_at timestamp, expected RFC3339")
			return
		}
		a.UnassignedAt = &parsed
	}

	if err := h.Store.AddAssignment(r.Context(), id, a); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "assignment recorded"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.Employees(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	e := engine.Employee{
		ID:   engine.EmployeeID(req.ID),
		Name: req.Name,
	}
	if req.LegacySalary != "" {
		m := engine.MustParseMoney(req.LegacySalary)
		e.LegacySalary = &m
	}

	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

func (h *Handler) AddSalaryRecord(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req AddSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FinancialYear == "" || req.Annual == "" {
		respondError(w, http.StatusBadRequest, "financial_year and annual are required")
		return
	}

	effective, err := engine.ParseDate(req.EffectiveFrom)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid effective_from date")
		return
	}

	rec := engine.SalaryRecord{
		EmployeeID:    id,
		FinancialYear: req.FinancialYear,
		Annual:        engine.MustParseMoney(req.Annual),
		EffectiveFrom: effective,
	}
	if err := h.Store.AddSalaryRecord(r.Context(), rec); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "salary record added"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondEngineError maps engine errors to HTTP status codes.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case engine.IsClientError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
