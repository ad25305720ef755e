/*
timeline.go - Effective end date and hold-state resolution

PURPOSE:
  A project's real lifetime rarely matches its scheduled dates. Extensions
  push the end out, completion records pull it in, and on-hold stretches
  suspend it entirely. This file answers two questions for the allocation
  walk:

  1. When did the project actually end? (EffectiveEnd)
  2. Was the project on hold on a given day? (OnHold)

EFFECTIVE END PRIORITY:
  1. Latest actual-completion date across extensions that set one
  2. Else latest new-end date across extensions that set one
  3. Else the project's recorded completion date
  4. Else the scheduled end date

  Absent dates simply skip their branch; the chain never fails.

HOLD STATE:
  Replays the status-change log in ascending timestamp order, ignoring
  events after the target day. An "on-hold" event raises the flag; any
  "in-progress" or "completed" event clears it. No history means not held.

Both functions are pure: no side effects, no ambient time, sorts operate
on copies of the shared history slices.
*/
package engine

import (
	"sort"
)

// =============================================================================
// EFFECTIVE END DATE
// =============================================================================

// EndSource says which branch of the priority chain produced the end date.
type EndSource string

const (
	EndFromExtensionCompletion EndSource = "extension_completion"
	EndFromExtensionNewEnd     EndSource = "extension_new_end"
	EndFromCompletion          EndSource = "recorded_completion"
	EndFromSchedule            EndSource = "scheduled_end"
)

// EffectiveEnd resolves the project's effective end date.
func EffectiveEnd(p Project) Date {
	end, _ := EffectiveEndWithSource(p)
	return end
}

// EffectiveEndWithSource resolves the effective end date and reports which
// priority branch fired, so callers (and tests) can assert the chain.
func EffectiveEndWithSource(p Project) (Date, EndSource) {
	var latestCompletion, latestNewEnd Date
	for _, ext := range p.Extensions {
		if ext.CompletedOn != nil && !ext.CompletedOn.IsZero() && ext.CompletedOn.After(latestCompletion) {
			latestCompletion = *ext.CompletedOn
		}
		if ext.NewEnd != nil && !ext.NewEnd.IsZero() && ext.NewEnd.After(latestNewEnd) {
			latestNewEnd = *ext.NewEnd
		}
	}

	if !latestCompletion.IsZero() {
		return latestCompletion, EndFromExtensionCompletion
	}
	if !latestNewEnd.IsZero() {
		return latestNewEnd, EndFromExtensionNewEnd
	}
	if p.CompletedOn != nil && !p.CompletedOn.IsZero() {
		return *p.CompletedOn, EndFromCompletion
	}
	return p.ScheduledEnd, EndFromSchedule
}

// =============================================================================
// HOLD STATE
// =============================================================================

// OnHold reports whether the status history marks the project as on hold
// at the end of the given day. Events after the day are ignored.
func OnHold(history []StatusChange, day Date) bool {
	if len(history) == 0 {
		return false
	}

	// Copy before sorting: the history slice is shared snapshot state.
	events := make([]StatusChange, len(history))
	copy(events, history)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})

	held := false
	for _, ev := range events {
		if !ev.At.Before(day.End()) {
			break
		}
		switch ev.Status {
		case StatusOnHold:
			held = true
		case StatusInProgress, StatusCompleted:
			held = false
		}
	}
	return held
}

// CurrentStatus returns the value of the most recent status event at or
// before the given day, falling back to the project's stored status field
// when the log is empty.
func CurrentStatus(p Project, day Date) ProjectStatus {
	if len(p.StatusHistory) == 0 {
		return p.Status
	}

	events := make([]StatusChange, len(p.StatusHistory))
	copy(events, p.StatusHistory)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})

	status := p.Status
	for _, ev := range events {
		if !ev.At.Before(day.End()) {
			break
		}
		status = ev.Status
	}
	return status
}

// =============================================================================
// HOLD CALENDAR - Sorted view for repeated per-day queries
// =============================================================================

// HoldCalendar answers OnHold for many days without re-sorting the history
// each time. The allocation walk builds one per project.
type HoldCalendar struct {
	events []StatusChange // ascending by timestamp
}

func NewHoldCalendar(history []StatusChange) *HoldCalendar {
	events := make([]StatusChange, len(history))
	copy(events, history)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return &HoldCalendar{events: events}
}

// OnHold reports the hold state at the end of the given day.
func (hc *HoldCalendar) OnHold(day Date) bool {
	held := false
	for _, ev := range hc.events {
		if !ev.At.Before(day.End()) {
			break
		}
		switch ev.Status {
		case StatusOnHold:
			held = true
		case StatusInProgress, StatusCompleted:
			held = false
		}
	}
	return held
}

// HoldDays counts the days within [from, to] on which the project was on
// hold. Used for duration reporting (duration excludes hold stretches).
func (hc *HoldCalendar) HoldDays(from, to Date) int {
	count := 0
	for day := from; day.BeforeOrEqual(to); day = day.Next() {
		if hc.OnHold(day) {
			count++
		}
	}
	return count
}
