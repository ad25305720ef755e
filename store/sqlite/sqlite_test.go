package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/margin-engine/engine"
	"github.com/warp/margin-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(y int, m time.Month, d int) engine.Date {
	return engine.NewDate(y, m, d)
}

func seedProject(t *testing.T, s *sqlite.Store, id engine.ProjectID) {
	t.Helper()
	require.NoError(t, s.SaveProject(context.Background(), engine.Project{
		ID:           id,
		Name:         "Project " + string(id),
		ClientID:     "client-1",
		Start:        day(2025, time.January, 1),
		ScheduledEnd: day(2025, time.June, 30),
		Budget:       engine.MustParseMoney("100000.00"),
		Status:       engine.StatusInProgress,
	}))
}

func seedEmployee(t *testing.T, s *sqlite.Store, id engine.EmployeeID) {
	t.Helper()
	require.NoError(t, s.SaveEmployee(context.Background(), engine.Employee{
		ID:   id,
		Name: "Employee " + string(id),
	}))
}

// =============================================================================
// PROJECT ROUND-TRIPS
// =============================================================================

func TestStore_ProjectRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	completed := day(2025, time.May, 15)
	legacy := engine.MustParseMoney("73000")
	require.NoError(t, store.SaveEmployee(ctx, engine.Employee{
		ID:           "emp-1",
		Name:         "Asha",
		LegacySalary: &legacy,
	}))
	require.NoError(t, store.SaveProject(ctx, engine.Project{
		ID:           "proj-1",
		Name:         "Atlas",
		ClientID:     "client-1",
		Start:        day(2025, time.January, 1),
		ScheduledEnd: day(2025, time.June, 30),
		CompletedOn:  &completed,
		Budget:       engine.MustParseMoney("100000.00"),
		Status:       engine.StatusCompleted,
	}))

	newEnd := day(2025, time.August, 31)
	require.NoError(t, store.AddExtension(ctx, "proj-1", engine.Extension{
		NewEnd:      &newEnd,
		AddedBudget: engine.MustParseMoney("2500.50"),
		Notes:       "scope increase",
	}))
	require.NoError(t, store.AddStatusChange(ctx, "proj-1", engine.StatusChange{
		Status: engine.StatusOnHold,
		At:     time.Date(2025, time.February, 3, 10, 30, 0, 0, time.UTC),
		Notes:  "client review",
	}))
	require.NoError(t, store.AddAssignment(ctx, "proj-1", engine.Assignment{
		EmployeeID: "emp-1",
		AssignedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))

	got, err := store.GetProject(ctx, "proj-1")
	require.NoError(t, err)

	assert.Equal(t, "Atlas", got.Name)
	assert.Equal(t, engine.ClientID("client-1"), got.ClientID)
	assert.True(t, got.Start.Equal(day(2025, time.January, 1)))
	require.NotNil(t, got.CompletedOn)
	assert.True(t, got.CompletedOn.Equal(completed))
	assert.True(t, got.Budget.Equal(engine.MustParseMoney("100000.00")))

	require.Len(t, got.Extensions, 1)
	require.NotNil(t, got.Extensions[0].NewEnd)
	assert.True(t, got.Extensions[0].NewEnd.Equal(newEnd))
	assert.True(t, got.Extensions[0].AddedBudget.Equal(engine.MustParseMoney("2500.50")))
	assert.Equal(t, "scope increase", got.Extensions[0].Notes)

	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, engine.StatusOnHold, got.StatusHistory[0].Status)

	require.Len(t, got.Assignments, 1)
	assert.Equal(t, engine.EmployeeID("emp-1"), got.Assignments[0].EmployeeID)
	assert.Nil(t, got.Assignments[0].UnassignedAt)
}

func TestStore_StatusChangeUpdatesCurrentStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedProject(t, store, "proj-1")

	require.NoError(t, store.AddStatusChange(ctx, "proj-1", engine.StatusChange{
		Status: engine.StatusOnHold,
		At:     time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
	}))

	got, err := store.GetProject(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOnHold, got.Status)
}

func TestStore_SaveProjectValidatesDateRange(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveProject(context.Background(), engine.Project{
		ID:           "proj-bad",
		Name:         "Backwards",
		Start:        day(2025, time.June, 30),
		ScheduledEnd: day(2025, time.January, 1),
		Status:       engine.StatusPlanning,
	})
	assert.ErrorIs(t, err, engine.ErrInvalidDateRange)
}

func TestStore_SaveProjectUpsertsWithoutDuplicating(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedProject(t, store, "proj-1")

	require.NoError(t, store.SaveProject(ctx, engine.Project{
		ID:           "proj-1",
		Name:         "Renamed",
		Start:        day(2025, time.January, 1),
		ScheduledEnd: day(2025, time.June, 30),
		Budget:       engine.MustParseMoney("120000.00"),
		Status:       engine.StatusInProgress,
	}))

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Renamed", projects[0].Name)
	assert.True(t, projects[0].Budget.Equal(engine.MustParseMoney("120000.00")))
}

func TestStore_HistoryWritesRequireExistingProject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.AddExtension(ctx, "missing", engine.Extension{}),
		engine.ErrProjectNotFound)
	assert.ErrorIs(t, store.AddStatusChange(ctx, "missing", engine.StatusChange{
		Status: engine.StatusOnHold, At: time.Now().UTC(),
	}), engine.ErrProjectNotFound)
	assert.ErrorIs(t, store.AddAssignment(ctx, "missing", engine.Assignment{
		EmployeeID: "emp-1", AssignedAt: time.Now().UTC(),
	}), engine.ErrProjectNotFound)
}

func TestStore_GetMissingProject(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, engine.ErrProjectNotFound)
}

// =============================================================================
// EMPLOYEE AND SALARY ROUND-TRIPS
// =============================================================================

func TestStore_EmployeeAndSalaryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	require.NoError(t, store.AddSalaryRecord(ctx, engine.SalaryRecord{
		EmployeeID:    "emp-1",
		FinancialYear: "2025-26",
		Annual:        engine.MustParseMoney("146000"),
		EffectiveFrom: day(2025, time.April, 1),
	}))
	require.NoError(t, store.AddSalaryRecord(ctx, engine.SalaryRecord{
		EmployeeID:    "emp-1",
		FinancialYear: "2025-26",
		Annual:        engine.MustParseMoney("155000"),
		EffectiveFrom: day(2025, time.October, 1),
	}))

	history, err := store.SalaryHistory(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Annual.Equal(engine.MustParseMoney("146000")))
	assert.True(t, history[1].EffectiveFrom.Equal(day(2025, time.October, 1)))
}

func TestStore_SalaryRecordRequiresExistingEmployee(t *testing.T) {
	store := newTestStore(t)

	err := store.AddSalaryRecord(context.Background(), engine.SalaryRecord{
		EmployeeID:    "missing",
		FinancialYear: "2025-26",
		Annual:        engine.MustParseMoney("100000"),
		EffectiveFrom: day(2025, time.April, 1),
	})
	assert.ErrorIs(t, err, engine.ErrEmployeeNotFound)
}

func TestStore_LegacySalaryNullability(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	legacy := engine.MustParseMoney("91250")
	require.NoError(t, store.SaveEmployee(ctx, engine.Employee{ID: "emp-flat", Name: "Chen", LegacySalary: &legacy}))
	require.NoError(t, store.SaveEmployee(ctx, engine.Employee{ID: "emp-none", Name: "Dana"}))

	employees, err := store.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	require.NotNil(t, employees[0].LegacySalary)
	assert.True(t, employees[0].LegacySalary.Equal(legacy))
	assert.Nil(t, employees[1].LegacySalary)
}

// =============================================================================
// RESET AND ENGINE INTEGRATION
// =============================================================================

func TestStore_ResetClearsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")
	seedProject(t, store, "proj-1")
	require.NoError(t, store.AddAssignment(ctx, "proj-1", engine.Assignment{
		EmployeeID: "emp-1",
		AssignedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, store.Reset(ctx))

	projects, err := store.Projects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	employees, err := store.Employees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestStore_ServesEngineSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")
	require.NoError(t, store.AddSalaryRecord(ctx, engine.SalaryRecord{
		EmployeeID:    "emp-1",
		FinancialYear: "2024-25",
		Annual:        engine.MustParseMoney("36500"),
		EffectiveFrom: day(2024, time.April, 1),
	}))
	require.NoError(t, store.SaveProject(ctx, engine.Project{
		ID:           "proj-1",
		Name:         "Atlas",
		Start:        day(2025, time.January, 1),
		ScheduledEnd: day(2025, time.January, 10),
		Budget:       engine.MustParseMoney("5000"),
		Status:       engine.StatusInProgress,
	}))
	require.NoError(t, store.AddAssignment(ctx, "proj-1", engine.Assignment{
		EmployeeID: "emp-1",
		AssignedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))

	eng := engine.NewEngine(store, store)
	report, err := eng.ComputeProfitLossReport(ctx, day(2025, time.December, 31))
	require.NoError(t, err)

	assert.True(t, report.TotalRevenue.Equal(engine.MustParseMoney("5000")))
	assert.True(t, report.TotalCost.Equal(engine.MustParseMoney("1000")))
}
