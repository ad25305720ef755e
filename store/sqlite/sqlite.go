/*
Package sqlite provides a SQLite-backed implementation of the engine's
provider interfaces.

PURPOSE:
  Implements engine.ProjectProvider and engine.EmployeeProvider using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  projects:                Project master records
  project_extensions:      Append-only extension history
  project_status_changes:  Append-only status event log
  project_assignments:     Assignment records (current and historical)
  employees:               Employee records with optional legacy salary
  salary_records:          Financial-year-scoped salary history

APPEND-ONLY HISTORY:
  Extensions, status changes and salary records have no UPDATE or DELETE
  paths. The engine's priority chains and status replay depend on history
  never being rewritten.

SNAPSHOT READS:
  Projects() assembles each project with its full child history, so the
  engine gets a complete immutable snapshot up front and performs no
  further I/O during the day-by-day walk.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block each other.

USAGE:
  store, err := sqlite.New("./data/margin.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  eng := engine.NewEngine(store, store)

SEE ALSO:
  - engine/snapshot.go: Provider interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/margin-engine/engine"
)

// Store implements the engine's provider interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time provider checks.
var (
	_ engine.ProjectProvider  = (*Store)(nil)
	_ engine.EmployeeProvider = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Projects
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client_id TEXT,
		start_date TEXT NOT NULL,
		scheduled_end TEXT NOT NULL,
		completed_on TEXT,
		budget TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Extensions (append-only)
	CREATE TABLE IF NOT EXISTS project_extensions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL REFERENCES projects(id),
		new_end TEXT,
		added_budget TEXT NOT NULL DEFAULT '0',
		completed_on TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extensions_project
		ON project_extensions(project_id);

	-- Status change events (append-only log)
	CREATE TABLE IF NOT EXISTS project_status_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL REFERENCES projects(id),
		status TEXT NOT NULL,
		changed_at TEXT NOT NULL,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_status_changes_project_time
		ON project_status_changes(project_id, changed_at);

	-- Assignment records (current and historical)
	CREATE TABLE IF NOT EXISTS project_assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL REFERENCES projects(id),
		employee_id TEXT NOT NULL REFERENCES employees(id),
		assigned_at TEXT NOT NULL,
		unassigned_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_project
		ON project_assignments(project_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON project_assignments(employee_id);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		legacy_salary TEXT,
		created_at TEXT NOT NULL
	);

	-- Salary records (financial-year scoped, append-only)
	CREATE TABLE IF NOT EXISTS salary_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		financial_year TEXT NOT NULL,
		annual_amount TEXT NOT NULL,
		effective_from TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_salary_records_employee
		ON salary_records(employee_id, financial_year, effective_from);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// SaveProject inserts or replaces a project master record. Histories are
// written through the Add* methods and are never replaced here.
func (s *Store) SaveProject(ctx context.Context, p engine.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Start.After(p.ScheduledEnd) {
		return engine.ErrInvalidDateRange
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, client_id, start_date, scheduled_end, completed_on, budget, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			client_id = excluded.client_id,
			start_date = excluded.start_date,
			scheduled_end = excluded.scheduled_end,
			completed_on = excluded.completed_on,
			budget = excluded.budget,
			status = excluded.status
	`,
		p.ID, p.Name, p.ClientID,
		p.Start.String(), p.ScheduledEnd.String(), nullDate(p.CompletedOn),
		p.Budget.Value.String(), p.Status,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var legacy any
	if e.LegacySalary != nil {
		legacy = e.LegacySalary.Value.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, legacy_salary, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			legacy_salary = excluded.legacy_salary
	`,
		e.ID, e.Name, legacy, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// AddExtension appends an extension to a project's history.
func (s *Store) AddExtension(ctx context.Context, id engine.ProjectID, ext engine.Extension) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.projectExists(ctx, id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_extensions (project_id, new_end, added_budget, completed_on, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		id, nullDate(ext.NewEnd), ext.AddedBudget.Value.String(),
		nullDate(ext.CompletedOn), ext.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to add extension: %w", err)
	}
	return nil
}

// AddStatusChange appends a status event and updates the project's current
// status field.
func (s *Store) AddStatusChange(ctx context.Context, id engine.ProjectID, sc engine.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.projectExists(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO project_status_changes (project_id, status, changed_at, notes)
		VALUES (?, ?, ?, ?)
	`, id, sc.Status, sc.At.UTC().Format(time.RFC3339), sc.Notes); err != nil {
		return fmt.Errorf("failed to add status change: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET status = ? WHERE id = ?`, sc.Status, id); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	return tx.Commit()
}

// AddAssignment appends an assignment record.
func (s *Store) AddAssignment(ctx context.Context, id engine.ProjectID, a engine.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.projectExists(ctx, id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_assignments (project_id, employee_id, assigned_at, unassigned_at)
		VALUES (?, ?, ?, ?)
	`,
		id, a.EmployeeID,
		a.AssignedAt.UTC().Format(time.RFC3339), nullTime(a.UnassignedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to add assignment: %w", err)
	}
	return nil
}

// AddSalaryRecord appends a salary record to an employee's history.
func (s *Store) AddSalaryRecord(ctx context.Context, rec engine.SalaryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE id = ?`, rec.EmployeeID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return engine.ErrEmployeeNotFound
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salary_records (employee_id, financial_year, annual_amount, effective_from)
		VALUES (?, ?, ?, ?)
	`,
		rec.EmployeeID, rec.FinancialYear,
		rec.Annual.Value.String(), rec.EffectiveFrom.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to add salary record: %w", err)
	}
	return nil
}

// Reset clears all data. Used by scenario loading; dev/demo only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{
		"salary_records", "project_assignments", "project_status_changes",
		"project_extensions", "projects", "employees",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) projectExists(ctx context.Context, id engine.ProjectID) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return engine.ErrProjectNotFound
	}
	return nil
}

// =============================================================================
// PROVIDER READS (engine.ProjectProvider)
// =============================================================================

// Projects returns all projects with full histories attached, ordered by ID.
func (s *Store) Projects(ctx context.Context) ([]engine.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, client_id, start_date, scheduled_end, completed_on, budget, status
		FROM projects ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []engine.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		if err := s.loadHistories(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// GetProject returns one project with full histories.
func (s *Store) GetProject(ctx context.Context, id engine.ProjectID) (*engine.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, client_id, start_date, scheduled_end, completed_on, budget, status
		FROM projects WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, engine.ErrProjectNotFound
	}
	p, err := scanProject(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.loadHistories(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) loadHistories(ctx context.Context, p *engine.Project) error {
	// Extensions, in creation order (append-only).
	extRows, err := s.db.QueryContext(ctx, `
		SELECT new_end, added_budget, completed_on, notes
		FROM project_extensions WHERE project_id = ? ORDER BY id ASC
	`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query extensions: %w", err)
	}
	defer extRows.Close()
	for extRows.Next() {
		var (
			newEnd, completedOn sql.NullString
			budget              string
			notes               sql.NullString
		)
		if err := extRows.Scan(&newEnd, &budget, &completedOn, &notes); err != nil {
			return fmt.Errorf("failed to scan extension: %w", err)
		}
		p.Extensions = append(p.Extensions, engine.Extension{
			NewEnd:      parseDatePtr(newEnd),
			AddedBudget: engine.MustParseMoney(budget),
			CompletedOn: parseDatePtr(completedOn),
			Notes:       notes.String,
		})
	}
	if err := extRows.Err(); err != nil {
		return err
	}

	// Status change log, ascending by timestamp.
	scRows, err := s.db.QueryContext(ctx, `
		SELECT status, changed_at, notes
		FROM project_status_changes WHERE project_id = ? ORDER BY changed_at ASC, id ASC
	`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query status changes: %w", err)
	}
	defer scRows.Close()
	for scRows.Next() {
		var (
			status, changedAt string
			notes             sql.NullString
		)
		if err := scRows.Scan(&status, &changedAt, &notes); err != nil {
			return fmt.Errorf("failed to scan status change: %w", err)
		}
		at, _ := time.Parse(time.RFC3339, changedAt)
		p.StatusHistory = append(p.StatusHistory, engine.StatusChange{
			Status: engine.ProjectStatus(status),
			At:     at,
			Notes:  notes.String,
		})
	}
	if err := scRows.Err(); err != nil {
		return err
	}

	// Assignment records, current and historical.
	asRows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, assigned_at, unassigned_at
		FROM project_assignments WHERE project_id = ? ORDER BY assigned_at ASC, id ASC
	`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query assignments: %w", err)
	}
	defer asRows.Close()
	for asRows.Next() {
		var (
			employeeID, assignedAt string
			unassignedAt           sql.NullString
		)
		if err := asRows.Scan(&employeeID, &assignedAt, &unassignedAt); err != nil {
			return fmt.Errorf("failed to scan assignment: %w", err)
		}
		at, _ := time.Parse(time.RFC3339, assignedAt)
		p.Assignments = append(p.Assignments, engine.Assignment{
			EmployeeID:   engine.EmployeeID(employeeID),
			AssignedAt:   at,
			UnassignedAt: parseTimePtr(unassignedAt),
		})
	}
	return asRows.Err()
}

func scanProject(rows *sql.Rows) (engine.Project, error) {
	var (
		p                       engine.Project
		clientID                sql.NullString
		startDate, scheduledEnd string
		completedOn             sql.NullString
		budget, status          string
	)
	if err := rows.Scan(&p.ID, &p.Name, &clientID, &startDate, &scheduledEnd, &completedOn, &budget, &status); err != nil {
		return p, fmt.Errorf("failed to scan project: %w", err)
	}

	// Malformed optional dates degrade to absent rather than failing the
	// snapshot; the engine skips that branch of its priority chain.
	p.Start, _ = engine.ParseDate(startDate)
	p.ScheduledEnd, _ = engine.ParseDate(scheduledEnd)
	p.CompletedOn = parseDatePtr(completedOn)
	p.ClientID = engine.ClientID(clientID.String)
	p.Budget = engine.MustParseMoney(budget)
	p.Status = engine.ProjectStatus(status)
	return p, nil
}

// =============================================================================
// PROVIDER READS (engine.EmployeeProvider)
// =============================================================================

func (s *Store) Employees(ctx context.Context) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, legacy_salary FROM employees ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []engine.Employee
	for rows.Next() {
		var (
			e      engine.Employee
			legacy sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &legacy); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		if legacy.Valid {
			m := engine.MustParseMoney(legacy.String)
			e.LegacySalary = &m
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) SalaryHistory(ctx context.Context, id engine.EmployeeID) ([]engine.SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, financial_year, annual_amount, effective_from
		FROM salary_records WHERE employee_id = ?
		ORDER BY effective_from ASC, id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary records: %w", err)
	}
	defer rows.Close()

	var records []engine.SalaryRecord
	for rows.Next() {
		var (
			rec                   engine.SalaryRecord
			fy, annual, effective string
		)
		if err := rows.Scan(&rec.EmployeeID, &fy, &annual, &effective); err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		rec.FinancialYear = fy
		rec.Annual = engine.MustParseMoney(annual)
		rec.EffectiveFrom, _ = engine.ParseDate(effective)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func nullDate(d *engine.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseDatePtr(s sql.NullString) *engine.Date {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := engine.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
