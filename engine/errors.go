/*
errors.go - Centralized error types for the engine and its providers

PURPOSE:
  All error types in one place. Storage implementations return these so
  the HTTP layer can map them to status codes without knowing the backend.

NOTE ON DEGRADATION:
  Missing salary data and malformed optional dates are NOT errors anywhere
  in this package - they resolve to zero cost / skipped branches by policy
  (see salary.go, timeline.go). The only failure mode the engine surfaces
  is a provider error during the snapshot fetch, which aborts the whole
  report.
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrSnapshotFetch is returned when the provider fails to supply the
	// full input snapshot. There is no partial-result mode.
	ErrSnapshotFetch = errors.New("snapshot fetch failed")

	// ErrInvalidDateRange is returned when a project's start is after its
	// scheduled end.
	ErrInvalidDateRange = errors.New("invalid date range: start after end")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SnapshotError wraps a storage failure during the snapshot fetch.
type SnapshotError struct {
	Source string // "projects", "employees", "salaries"
	Err    error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot fetch failed loading %s: %v", e.Source, e.Err)
}

func (e *SnapshotError) Unwrap() error { return ErrSnapshotFetch }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}
