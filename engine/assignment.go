/*
assignment.go - Which employees worked a project on a given day

PURPOSE:
  Assignment records are half-open intervals: an employee is active at
  instant T iff assigned-at <= T and (unassigned-at is absent or
  unassigned-at > T). A calendar day is itself the half-open interval
  [day start, next day start), so an employee is active on a day iff the
  two intervals overlap.

RETROACTIVE-ENTRY CLAMP:
  Assignment data is often entered after a project has already completed,
  with assigned-at stamped at entry time rather than when the work
  happened. If the recorded start lands after the project's resolved end,
  the effective start is clamped to the project's start date instead of
  dropping the record. Losing the record would silently erase that
  employee's historical cost attribution.

An employee can have several records on one project (reassignment after
removal); they count once per day regardless of how many records cover it.
*/
package engine

import "sort"

// ActiveEmployees returns the distinct employees assigned to the project on
// the given day, sorted by ID for determinism. effectiveEnd is the
// project's resolved end date (see timeline.go).
func ActiveEmployees(p Project, effectiveEnd Date, day Date) []EmployeeID {
	seen := make(map[EmployeeID]bool)
	for _, a := range p.Assignments {
		if assignmentCoversDay(a, p.Start, effectiveEnd, day) {
			seen[a.EmployeeID] = true
		}
	}

	ids := make([]EmployeeID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// assignmentCoversDay checks interval overlap between the assignment and
// the day, applying the retroactive-entry clamp.
func assignmentCoversDay(a Assignment, projectStart, effectiveEnd, day Date) bool {
	start := a.AssignedAt

	// Clamp: a start recorded after the project's effective end means the
	// record was entered retroactively; attribute from the project start.
	if !start.Before(effectiveEnd.End()) {
		start = projectStart.Start()
	}

	// Overlap of [start, unassigned-at-or-infinity) with [day, day+1).
	if !start.Before(day.End()) {
		return false
	}
	if a.UnassignedAt != nil && !a.UnassignedAt.After(day.Start()) {
		return false
	}
	return true
}
