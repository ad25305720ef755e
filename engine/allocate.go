/*
allocate.go - The day-by-day cost-allocation walk

PURPOSE:
  The heart of the engine. Walks every calendar day from the earliest
  project start to the later project end (capped at the snapshot's AsOf)
  and, for each day:

  1. Finds active projects: day within [start, effective end], not on hold
  2. Finds the employees assigned to each active project that day
  3. Counts, per employee, how many active projects they are on that day
  4. Charges each (project, employee) pair the employee's daily rate
     divided by that simultaneous-project count

  Accumulates into per-project, per-employee and per-financial-year cost
  totals, plus per-employee active/total day counts for utilization.

POLICY POINTS:
  - On-hold days attribute no cost and do not count as financial-year
    activity for the project
  - Zero or negative salary resolutions contribute nothing
  - Every employee's total-day counter advances every day in the window
    (utilization denominator), active or not

  The walk is synchronous and single-pass. Per-day computations across
  projects are independent, but proration needs the employee's project
  count across ALL active projects that day, so the count is taken before
  any charging happens.
*/
package engine

// =============================================================================
// ALLOCATION - Accumulated output of the walk
// =============================================================================

// EmployeeActivity counts days for the utilization ratio.
type EmployeeActivity struct {
	ActiveDays int
	TotalDays  int
}

// Allocation is everything the walk accumulates. Report assembly combines
// it with project revenue.
type Allocation struct {
	// Window is the analysis range the walk covered. Zero-valued when the
	// snapshot had no projects.
	Window Period

	ProjectCosts  map[ProjectID]Money
	EmployeeCosts map[EmployeeID]Money
	YearCosts     map[string]Money // keyed by financial-year label

	Activity map[EmployeeID]*EmployeeActivity

	// ProjectEmployees tracks the distinct employees ever charged to a
	// project (revenue attribution denominator).
	ProjectEmployees map[ProjectID]map[EmployeeID]bool

	// EmployeeProjects tracks the distinct projects an employee was
	// charged to (projects-worked count).
	EmployeeProjects map[EmployeeID]map[ProjectID]bool

	// ProjectYearActivity marks the financial years in which a project had
	// at least one non-hold active day.
	ProjectYearActivity map[ProjectID]map[string]bool
}

func newAllocation() *Allocation {
	return &Allocation{
		ProjectCosts:        make(map[ProjectID]Money),
		EmployeeCosts:       make(map[EmployeeID]Money),
		YearCosts:           make(map[string]Money),
		Activity:            make(map[EmployeeID]*EmployeeActivity),
		ProjectEmployees:    make(map[ProjectID]map[EmployeeID]bool),
		EmployeeProjects:    make(map[EmployeeID]map[ProjectID]bool),
		ProjectYearActivity: make(map[ProjectID]map[string]bool),
	}
}

// resolvedProject pairs a project with its resolved timeline, computed once
// before the walk.
type resolvedProject struct {
	Project      Project
	EffectiveEnd Date
	Holds        *HoldCalendar
}

// =============================================================================
// THE WALK
// =============================================================================

// Allocate runs the full day-by-day walk over the snapshot. An empty
// project set yields an Allocation with empty maps - never an error.
func Allocate(snap *Snapshot) *Allocation {
	alloc := newAllocation()
	for _, e := range snap.Employees {
		alloc.Activity[e.ID] = &EmployeeActivity{}
	}

	if len(snap.Projects) == 0 {
		return alloc
	}

	// Resolve timelines once; the walk queries them every day.
	resolved := make([]resolvedProject, 0, len(snap.Projects))
	var windowStart, windowEnd Date
	for i, p := range snap.Projects {
		end := EffectiveEnd(p)
		resolved = append(resolved, resolvedProject{
			Project:      p,
			EffectiveEnd: end,
			Holds:        NewHoldCalendar(p.StatusHistory),
		})
		if i == 0 || p.Start.Before(windowStart) {
			windowStart = p.Start
		}
		if i == 0 || end.After(windowEnd) {
			windowEnd = end
		}
	}
	// Never walk past the injected "today".
	windowEnd = windowEnd.Min(snap.AsOf)
	if windowEnd.Before(windowStart) {
		return alloc
	}
	alloc.Window = Period{Start: windowStart, End: windowEnd}

	resolver := NewSalaryResolver(snap.Employees, snap.Salaries)

	for day := windowStart; day.BeforeOrEqual(windowEnd); day = day.Next() {
		alloc.walkDay(day, resolved, resolver)
	}
	return alloc
}

// activePair is one (project, employee) combination active on a day.
type activePair struct {
	Project  ProjectID
	Employee EmployeeID
}

func (a *Allocation) walkDay(day Date, projects []resolvedProject, resolver *SalaryResolver) {
	fyLabel := FinancialYearOf(day).Label()

	// Phase 1: collect all active pairs and simultaneous-project counts.
	// Proration depends on the count across ALL active projects, so no
	// charging happens until the counts are complete.
	var pairs []activePair
	projectCount := make(map[EmployeeID]int)

	for _, rp := range projects {
		if day.Before(rp.Project.Start) || day.After(rp.EffectiveEnd) {
			continue
		}
		if rp.Holds.OnHold(day) {
			continue
		}

		a.markYearActivity(rp.Project.ID, fyLabel)

		for _, empID := range ActiveEmployees(rp.Project, rp.EffectiveEnd, day) {
			pairs = append(pairs, activePair{Project: rp.Project.ID, Employee: empID})
			projectCount[empID]++
		}
	}

	// Phase 2: charge each pair its prorated share of the daily rate.
	activeToday := make(map[EmployeeID]bool)
	for _, pair := range pairs {
		rate := resolver.DailyRate(pair.Employee, day)
		if !rate.IsPositive() {
			continue
		}
		prorated := rate.DivInt(projectCount[pair.Employee])

		a.ProjectCosts[pair.Project] = a.ProjectCosts[pair.Project].Add(prorated)
		a.EmployeeCosts[pair.Employee] = a.EmployeeCosts[pair.Employee].Add(prorated)
		a.YearCosts[fyLabel] = a.YearCosts[fyLabel].Add(prorated)

		a.markPair(pair)
		activeToday[pair.Employee] = true
	}

	// Phase 3: advance day counters. Total days advance for everyone;
	// active days only for employees charged at least once today.
	for id, act := range a.Activity {
		act.TotalDays++
		if activeToday[id] {
			act.ActiveDays++
		}
	}
}

func (a *Allocation) markYearActivity(id ProjectID, fyLabel string) {
	years := a.ProjectYearActivity[id]
	if years == nil {
		years = make(map[string]bool)
		a.ProjectYearActivity[id] = years
	}
	years[fyLabel] = true
}

func (a *Allocation) markPair(pair activePair) {
	emps := a.ProjectEmployees[pair.Project]
	if emps == nil {
		emps = make(map[EmployeeID]bool)
		a.ProjectEmployees[pair.Project] = emps
	}
	emps[pair.Employee] = true

	projs := a.EmployeeProjects[pair.Employee]
	if projs == nil {
		projs = make(map[ProjectID]bool)
		a.EmployeeProjects[pair.Employee] = projs
	}
	projs[pair.Project] = true
}
