/*
Package engine implements the date-driven profit/loss cost-allocation core.

PURPOSE:
  Given projects (with extensions, hold periods and status-change history)
  and employees (with financial-year-scoped salary history and possibly
  overlapping assignments), the engine walks the analysis window day by day,
  prorates each employee's daily salary cost across every project they are
  simultaneously active on, and aggregates the result into per-project,
  per-employee and per-financial-year profit/loss breakdowns.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal (cent-exact)
  - Project/Extension/StatusChange/Assignment: the project history model
  - Employee/SalaryRecord: the salary history model

DESIGN PRINCIPLES:
  1. Immutability: the engine works on read-only snapshots; history slices
     are copied before any sort
  2. Precision: decimal.Decimal everywhere money or percentages appear
  3. Determinism: "today" is an injected parameter, never ambient time

SEE ALSO:
  - date.go: UTC day arithmetic
  - fiscal.go: financial-year periods and labels
  - timeline.go, assignment.go, salary.go: the resolvers
  - allocate.go: the day-by-day allocation walk
  - report.go: the final report assembly
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount (always the same implicit currency)
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

// MustParseMoney parses a decimal string, returning zero money on failure.
// Malformed amounts degrade to zero rather than aborting a computation.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money              { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money              { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money    { return Money{Value: m.Value.Div(s)} }
func (m Money) DivInt(n int) Money             { return Money{Value: m.Value.Div(decimal.NewFromInt(int64(n)))} }
func (m Money) Neg() Money                     { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                   { return m.Value.IsZero() }
func (m Money) IsPositive() bool               { return m.Value.IsPositive() }
func (m Money) IsNegative() bool               { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool             { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool       { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool          { return m.Value.LessThan(o.Value) }

// Round2 rounds to cents. Accumulation happens at full precision; rounding
// is applied only at report-assembly boundaries.
func (m Money) Round2() Money   { return Money{Value: m.Value.Round(2)} }
func (m Money) Float64() float64 { f, _ := m.Value.Float64(); return f }
func (m Money) String() string  { return m.Value.StringFixed(2) }

// Percent computes m/total*100, returning zero when total is zero.
func (m Money) Percent(total Money) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return m.Value.Div(total.Value).Mul(decimal.NewFromInt(100))
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProjectID string
type EmployeeID string
type ClientID string

// =============================================================================
// PROJECT STATUS
// =============================================================================

type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "planning"
	StatusInProgress ProjectStatus = "in-progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusOnHold     ProjectStatus = "on-hold"
	StatusCancelled  ProjectStatus = "cancelled"
)

// =============================================================================
// PROJECT - With its full append-only history
// =============================================================================

// Project is a read-only snapshot record. Extensions, StatusHistory and
// Assignments are append-only in storage; the engine never mutates them
// in place (sorts operate on copies).
type Project struct {
	ID       ProjectID
	Name     string
	ClientID ClientID

	Start        Date
	ScheduledEnd Date
	CompletedOn  *Date // recorded completion, if any

	Budget Money
	Status ProjectStatus

	Extensions    []Extension
	StatusHistory []StatusChange
	Assignments   []Assignment
}

// TotalRevenue is budget plus all extension budgets, exact to the cent.
func (p Project) TotalRevenue() Money {
	total := p.Budget
	for _, ext := range p.Extensions {
		total = total.Add(ext.AddedBudget)
	}
	return total
}

// Extension extends a project. Immutable once created.
type Extension struct {
	NewEnd      *Date // proposed new end date, if set
	AddedBudget Money // additional budget, zero if none
	CompletedOn *Date // actual completion under this extension, if set
	Notes       string
}

// StatusChange is one entry in a project's append-only status log.
// The project's current status is the value of the most recent entry.
type StatusChange struct {
	Status ProjectStatus
	At     time.Time
	Notes  string
}

// Assignment links an employee to a project over a half-open interval:
// active at instant T iff AssignedAt <= T and (UnassignedAt is nil or
// UnassignedAt > T). Multiple historical records per (project, employee)
// pair are normal (reassignment after removal).
type Assignment struct {
	EmployeeID   EmployeeID
	AssignedAt   time.Time
	UnassignedAt *time.Time
}

// ActiveAt reports whether the assignment covers the given instant.
func (a Assignment) ActiveAt(t time.Time) bool {
	if t.Before(a.AssignedAt) {
		return false
	}
	return a.UnassignedAt == nil || a.UnassignedAt.After(t)
}

// =============================================================================
// EMPLOYEE - With salary history
// =============================================================================

type Employee struct {
	ID   EmployeeID
	Name string

	// LegacySalary is the flat annual salary used only when no
	// financial-year salary history exists for the employee.
	LegacySalary *Money
}

// SalaryRecord scopes an annual salary to a financial year. An employee may
// have several records per year; the latest EffectiveFrom <= the query date
// applies.
type SalaryRecord struct {
	EmployeeID    EmployeeID
	FinancialYear string // label, e.g. "2024-25"
	Annual        Money
	EffectiveFrom Date
}
