/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal engine model from the external API contract. The engine
  itself owns no wire format; serialization happens entirely here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Money fields serialize as fixed two-decimal strings ("104500.49") so
  clients never see float drift.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/report.go: Source report types
*/
package api

import (
	"github.com/warp/margin-engine/engine"
)

// =============================================================================
// REPORT DTOs
// =============================================================================

// ReportDTO is the full profit/loss report response.
type ReportDTO struct {
	AsOf          string               `json:"as_of"`
	TotalRevenue  string               `json:"total_revenue"`
	TotalCost     string               `json:"total_cost"`
	OverallProfit string               `json:"overall_profit"`
	OverallMargin string               `json:"overall_margin"`
	Projects      []ProjectAnalysisDTO `json:"projects"`
	Employees     []EmployeeAnalysisDTO `json:"employees"`
	FinancialYears []YearBreakdownDTO  `json:"financial_years"`
}

type ProjectAnalysisDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Revenue       string `json:"revenue"`
	Cost          string `json:"cost"`
	Profit        string `json:"profit"`
	Margin        string `json:"margin"`
	DurationDays  int    `json:"duration_days"`
	Status        string `json:"status"`
	FinancialYear string `json:"financial_year"`
}

type EmployeeAnalysisDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	TotalSalaryCost    string `json:"total_salary_cost"`
	ProjectsWorked     int    `json:"projects_worked"`
	RevenueGenerated   string `json:"revenue_generated"`
	ProfitContribution string `json:"profit_contribution"`
	UtilizationRate    string `json:"utilization_rate"`
}

type YearBreakdownDTO struct {
	Label        string `json:"label"`
	Revenue      string `json:"revenue"`
	Cost         string `json:"cost"`
	Profit       string `json:"profit"`
	Margin       string `json:"margin"`
	ProjectCount int    `json:"project_count"`
}

// toReportDTO converts an engine report to its wire form.
func toReportDTO(r *engine.Report, asOf engine.Date) ReportDTO {
	dto := ReportDTO{
		AsOf:          asOf.String(),
		TotalRevenue:  r.TotalRevenue.String(),
		TotalCost:     r.TotalCost.String(),
		OverallProfit: r.OverallProfit.String(),
		OverallMargin: r.OverallMargin.StringFixed(2),
		Projects:      []ProjectAnalysisDTO{},
		Employees:     []EmployeeAnalysisDTO{},
		FinancialYears: []YearBreakdownDTO{},
	}
	for _, pa := range r.Projects {
		dto.Projects = append(dto.Projects, ProjectAnalysisDTO{
			ID:            string(pa.ID),
			Name:          pa.Name,
			Revenue:       pa.Revenue.String(),
			Cost:          pa.Cost.String(),
			Profit:        pa.Profit.String(),
			Margin:        pa.Margin.StringFixed(2),
			DurationDays:  pa.DurationDays,
			Status:        string(pa.Status),
			FinancialYear: pa.FinancialYear,
		})
	}
	for _, ea := range r.Employees {
		dto.Employees = append(dto.Employees, EmployeeAnalysisDTO{
			ID:                 string(ea.ID),
			Name:               ea.Name,
			TotalSalaryCost:    ea.TotalSalaryCost.String(),
			ProjectsWorked:     ea.ProjectsWorked,
			RevenueGenerated:   ea.RevenueGenerated.String(),
			ProfitContribution: ea.ProfitContribution.String(),
			UtilizationRate:    ea.UtilizationRate.StringFixed(2),
		})
	}
	for _, yb := range r.Years {
		dto.FinancialYears = append(dto.FinancialYears, YearBreakdownDTO{
			Label:        yb.Label,
			Revenue:      yb.Revenue.String(),
			Cost:         yb.Cost.String(),
			Profit:       yb.Profit.String(),
			Margin:       yb.Margin.StringFixed(2),
			ProjectCount: yb.ProjectCount,
		})
	}
	return dto
}

// =============================================================================
// ENTITY DTOs
// =============================================================================

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ClientID     string `json:"client_id,omitempty"`
	Start        string `json:"start"`
	ScheduledEnd string `json:"scheduled_end"`
	CompletedOn  string `json:"completed_on,omitempty"`
	Budget       string `json:"budget"`
	TotalRevenue string `json:"total_revenue"`
	Status       string `json:"status"`
	EffectiveEnd string `json:"effective_end"`
	Extensions   int    `json:"extensions"`
	Assignments  int    `json:"assignments"`
}

func toProjectDTO(p engine.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:           string(p.ID),
		Name:         p.Name,
		ClientID:     string(p.ClientID),
		Start:        p.Start.String(),
		ScheduledEnd: p.ScheduledEnd.String(),
		Budget:       p.Budget.String(),
		TotalRevenue: p.TotalRevenue().String(),
		Status:       string(p.Status),
		EffectiveEnd: engine.EffectiveEnd(p).String(),
		Extensions:   len(p.Extensions),
		Assignments:  len(p.Assignments),
	}
	if p.CompletedOn != nil {
		dto.CompletedOn = p.CompletedOn.String()
	}
	return dto
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LegacySalary string `json:"legacy_salary,omitempty"`
}

func toEmployeeDTO(e engine.Employee) EmployeeDTO {
	dto := EmployeeDTO{ID: string(e.ID), Name: e.Name}
	if e.LegacySalary != nil {
		dto.LegacySalary = e.LegacySalary.String()
	}
	return dto
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateProjectRequest is the request to create a project.
type CreateProjectRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ClientID     string `json:"client_id,omitempty"`
	Start        string `json:"start"`
	ScheduledEnd string `json:"scheduled_end"`
	CompletedOn  string `json:"completed_on,omitempty"`
	Budget       string `json:"budget"`
	Status       string `json:"status,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LegacySalary string `json:"legacy_salary,omitempty"`
}

// AddExtensionRequest appends an extension to a project.
type AddExtensionRequest struct {
	NewEnd      string `json:"new_end,omitempty"`
	AddedBudget string `json:"added_budget,omitempty"`
	CompletedOn string `json:"completed_on,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// AddStatusChangeRequest appends a status event.
type AddStatusChangeRequest struct {
	Status string `json:"status"`
	At     string `json:"at,omitempty"` // RFC3339; defaults to now
	Notes  string `json:"notes,omitempty"`
}

// AddAssignmentRequest appends an assignment record.
type AddAssignmentRequest struct {
	EmployeeID   string `json:"employee_id"`
	AssignedAt   string `json:"assigned_at,omitempty"` // RFC3339; defaults to now
	UnassignedAt string `json:"unassigned_at,omitempty"`
}

// AddSalaryRequest appends a salary record to an employee.
type AddSalaryRequest struct {
	FinancialYear string `json:"financial_year"`
	Annual        string `json:"annual"`
	EffectiveFrom string `json:"effective_from"`
}

// =============================================================================
// SCENARIO DTOs
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
