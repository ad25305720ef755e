/*
report.go - Profit/loss report assembly

PURPOSE:
  Combines the allocation walk's cost accumulators with project revenue
  (budget + extension budgets) into the final report: per-project analyses,
  per-employee analyses, per-financial-year breakdowns and overall totals.

CALCULATIONS:
  Project: revenue = budget + extension budgets (cent-exact), profit =
  revenue - allocated cost, margin = profit/revenue*100 (0 when revenue is
  0), duration = days from start to effective end minus computed hold days.

  Employee: utilization = active days / total days * 100, attributed
  revenue = sum over worked projects of revenue / distinct-employee count,
  profit contribution = attributed revenue - accumulated salary cost.

  Financial year: revenue sums projects with any non-hold activity in that
  year; cost comes straight from the walk's per-year accumulator.

All money in the report is rounded to cents at this boundary; accumulation
upstream runs at full decimal precision.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

type Report struct {
	TotalRevenue  Money
	TotalCost     Money
	OverallProfit Money
	OverallMargin decimal.Decimal

	Projects  []ProjectAnalysis
	Employees []EmployeeAnalysis
	Years     []YearBreakdown
}

type ProjectAnalysis struct {
	ID            ProjectID
	Name          string
	Revenue       Money
	Cost          Money
	Profit        Money
	Margin        decimal.Decimal
	DurationDays  int
	Status        ProjectStatus
	FinancialYear string // financial year the project started in
}

type EmployeeAnalysis struct {
	ID                 EmployeeID
	Name               string
	TotalSalaryCost    Money
	ProjectsWorked     int
	RevenueGenerated   Money
	ProfitContribution Money
	UtilizationRate    decimal.Decimal
}

type YearBreakdown struct {
	Label        string
	Revenue      Money
	Cost         Money
	Profit       Money
	Margin       decimal.Decimal
	ProjectCount int
}

// =============================================================================
// ASSEMBLY
// =============================================================================

var hundred = decimal.NewFromInt(100)

// AssembleReport combines the snapshot's revenue data with the walk's cost
// accumulators. Pure function of its inputs.
func AssembleReport(snap *Snapshot, alloc *Allocation) *Report {
	report := &Report{
		TotalRevenue:  ZeroMoney(),
		TotalCost:     ZeroMoney(),
		OverallProfit: ZeroMoney(),
	}

	for _, p := range snap.Projects {
		report.Projects = append(report.Projects, assembleProject(p, alloc))
	}
	for _, e := range snap.Employees {
		report.Employees = append(report.Employees, assembleEmployee(e, snap, alloc))
	}
	report.Years = assembleYears(snap, alloc)

	for _, pa := range report.Projects {
		report.TotalRevenue = report.TotalRevenue.Add(pa.Revenue)
		report.TotalCost = report.TotalCost.Add(pa.Cost)
	}
	report.OverallProfit = report.TotalRevenue.Sub(report.TotalCost)
	report.OverallMargin = report.OverallProfit.Percent(report.TotalRevenue).Round(2)

	return report
}

func assembleProject(p Project, alloc *Allocation) ProjectAnalysis {
	revenue := p.TotalRevenue()
	cost := alloc.ProjectCosts[p.ID].Round2()
	profit := revenue.Sub(cost)

	end := EffectiveEnd(p)
	duration := 0
	if !end.Before(p.Start) {
		holds := NewHoldCalendar(p.StatusHistory)
		duration = DaysBetween(p.Start, end) + 1 - holds.HoldDays(p.Start, end)
	}

	return ProjectAnalysis{
		ID:            p.ID,
		Name:          p.Name,
		Revenue:       revenue,
		Cost:          cost,
		Profit:        profit,
		Margin:        profit.Percent(revenue).Round(2),
		DurationDays:  duration,
		Status:        p.Status,
		FinancialYear: FinancialYearOf(p.Start).Label(),
	}
}

func assembleEmployee(e Employee, snap *Snapshot, alloc *Allocation) EmployeeAnalysis {
	cost := alloc.EmployeeCosts[e.ID].Round2()

	// Attribute revenue: each worked project's revenue splits evenly
	// across the distinct employees charged to it.
	revenue := ZeroMoney()
	for _, p := range snap.Projects {
		if !alloc.EmployeeProjects[e.ID][p.ID] {
			continue
		}
		headcount := len(alloc.ProjectEmployees[p.ID])
		if headcount == 0 {
			continue
		}
		revenue = revenue.Add(p.TotalRevenue().DivInt(headcount))
	}
	revenue = revenue.Round2()

	utilization := decimal.Zero
	if act := alloc.Activity[e.ID]; act != nil && act.TotalDays > 0 {
		utilization = decimal.NewFromInt(int64(act.ActiveDays)).
			Div(decimal.NewFromInt(int64(act.TotalDays))).
			Mul(hundred).Round(2)
	}

	return EmployeeAnalysis{
		ID:                 e.ID,
		Name:               e.Name,
		TotalSalaryCost:    cost,
		ProjectsWorked:     len(alloc.EmployeeProjects[e.ID]),
		RevenueGenerated:   revenue,
		ProfitContribution: revenue.Sub(cost),
		UtilizationRate:    utilization,
	}
}

func assembleYears(snap *Snapshot, alloc *Allocation) []YearBreakdown {
	// Union of years with cost and years with project activity.
	labels := make(map[string]bool)
	for label := range alloc.YearCosts {
		labels[label] = true
	}
	for _, years := range alloc.ProjectYearActivity {
		for label := range years {
			labels[label] = true
		}
	}

	var breakdowns []YearBreakdown
	for label := range labels {
		revenue := ZeroMoney()
		count := 0
		for _, p := range snap.Projects {
			if alloc.ProjectYearActivity[p.ID][label] {
				revenue = revenue.Add(p.TotalRevenue())
				count++
			}
		}
		cost := alloc.YearCosts[label].Round2()
		profit := revenue.Sub(cost)
		breakdowns = append(breakdowns, YearBreakdown{
			Label:        label,
			Revenue:      revenue,
			Cost:         cost,
			Profit:       profit,
			Margin:       profit.Percent(revenue).Round(2),
			ProjectCount: count,
		})
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].Label < breakdowns[j].Label
	})
	return breakdowns
}
