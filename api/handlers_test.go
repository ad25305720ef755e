/*
handlers_test.go - HTTP-level tests for the API handlers

Tests use an in-memory SQLite store behind the real router, so request
routing, JSON codecs and error mapping are all exercised.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/warp/margin-engine/engine"
	"github.com/warp/margin-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*Handler, *httptest.Server) {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return h, srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func seedReportData(t *testing.T, h *Handler) {
	t.Helper()
	ctx := context.Background()

	if err := h.Store.SaveEmployee(ctx, engine.Employee{ID: "emp-1", Name: "Asha"}); err != nil {
		t.Fatalf("Failed to seed employee: %v", err)
	}
	if err := h.Store.AddSalaryRecord(ctx, engine.SalaryRecord{
		EmployeeID:    "emp-1",
		FinancialYear: "2024-25",
		Annual:        engine.MustParseMoney("36500"),
		EffectiveFrom: engine.NewDate(2024, time.April, 1),
	}); err != nil {
		t.Fatalf("Failed to seed salary: %v", err)
	}
	if err := h.Store.SaveProject(ctx, engine.Project{
		ID:           "proj-1",
		Name:         "Atlas",
		Start:        engine.NewDate(2025, time.January, 1),
		ScheduledEnd: engine.NewDate(2025, time.January, 10),
		Budget:       engine.MustParseMoney("5000"),
		Status:       engine.StatusInProgress,
	}); err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	if err := h.Store.AddAssignment(ctx, "proj-1", engine.Assignment{
		EmployeeID: "emp-1",
		AssignedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Failed to seed assignment: %v", err)
	}
}

// =============================================================================
// REPORT ENDPOINT
// =============================================================================

func TestGetProfitLossReport_Success(t *testing.T) {
	// GIVEN: One project, one salaried employee assigned throughout
	h, srv := newTestServer(t)
	seedReportData(t, h)

	// WHEN: Fetching the report with a pinned analysis date
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports/profit-loss?as_of=2025-12-31", nil)

	// THEN: 10 days x 100/day against revenue 5000
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	report := decode[ReportDTO](t, resp)

	if report.AsOf != "2025-12-31" {
		t.Errorf("Expected as_of 2025-12-31, got %s", report.AsOf)
	}
	if report.TotalRevenue != "5000.00" {
		t.Errorf("Expected total revenue 5000.00, got %s", report.TotalRevenue)
	}
	if report.TotalCost != "1000.00" {
		t.Errorf("Expected total cost 1000.00, got %s", report.TotalCost)
	}
	if len(report.Projects) != 1 || report.Projects[0].ID != "proj-1" {
		t.Fatalf("Expected one project analysis, got %+v", report.Projects)
	}
	if len(report.Employees) != 1 || report.Employees[0].UtilizationRate != "100.00" {
		t.Fatalf("Expected fully utilized employee, got %+v", report.Employees)
	}
}

func TestGetProfitLossReport_EmptyStore(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports/profit-loss", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	report := decode[ReportDTO](t, resp)
	if report.TotalRevenue != "0.00" {
		t.Errorf("Expected zero revenue, got %s", report.TotalRevenue)
	}
	// Empty report still serializes arrays, never null.
	if report.Projects == nil || report.Employees == nil || report.FinancialYears == nil {
		t.Error("Expected empty arrays, got null fields")
	}
}

func TestGetProfitLossReport_InvalidAsOf(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports/profit-loss?as_of=31-12-2025", nil)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

func TestCreateProject_Success(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects", CreateProjectRequest{
		ID:           "proj-new",
		Name:         "New Build",
		Start:        "2025-02-01",
		ScheduledEnd: "2025-05-31",
		Budget:       "75000.00",
	})

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	dto := decode[ProjectDTO](t, resp)
	if dto.Status != string(engine.StatusPlanning) {
		t.Errorf("Expected default status planning, got %s", dto.Status)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/projects/proj-new", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on fetch, got %d", resp.StatusCode)
	}
	fetched := decode[ProjectDTO](t, resp)
	if fetched.Budget != "75000.00" {
		t.Errorf("Expected budget 75000.00, got %s", fetched.Budget)
	}
}

func TestCreateProject_BackwardsDatesRejected(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects", CreateProjectRequest{
		ID:           "proj-bad",
		Name:         "Backwards",
		Start:        "2025-06-30",
		ScheduledEnd: "2025-01-01",
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/projects/missing", nil)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestAddExtension_ReflectedInEffectiveEnd(t *testing.T) {
	// GIVEN: A project extended past its scheduled end
	h, srv := newTestServer(t)
	seedReportData(t, h)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects/proj-1/extensions", AddExtensionRequest{
		NewEnd:      "2025-02-28",
		AddedBudget: "1500.00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/projects/proj-1", nil)
	dto := decode[ProjectDTO](t, resp)
	if dto.EffectiveEnd != "2025-02-28" {
		t.Errorf("Expected effective end 2025-02-28, got %s", dto.EffectiveEnd)
	}
	if dto.TotalRevenue != "6500.00" {
		t.Errorf("Expected total revenue 6500.00, got %s", dto.TotalRevenue)
	}
}

func TestAddSalaryRecord_UnknownEmployee(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees/missing/salaries", AddSalaryRequest{
		FinancialYear: "2025-26",
		Annual:        "100000",
		EffectiveFrom: "2025-04-01",
	})

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

func TestLoadScenario_ThenReport(t *testing.T) {
	// GIVEN: A demo scenario loaded through the API
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load", LoadScenarioRequest{
		ScenarioID: "consultancy-quarter",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil)
	current := decode[map[string]string](t, resp)
	if current["scenario_id"] != "consultancy-quarter" {
		t.Errorf("Expected current scenario consultancy-quarter, got %s", current["scenario_id"])
	}

	// WHEN: Computing the report over the loaded data
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/profit-loss?as_of=2026-03-31", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	report := decode[ReportDTO](t, resp)
	if len(report.Projects) == 0 || len(report.Employees) == 0 {
		t.Fatal("Expected populated report from scenario data")
	}
}

func TestLoadScenario_Unknown(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load", LoadScenarioRequest{
		ScenarioID: "does-not-exist",
	})

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestResetDatabase_ClearsScenario(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load", LoadScenarioRequest{
		ScenarioID: "shared-team",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on load, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on reset, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/projects", nil)
	projects := decode[[]ProjectDTO](t, resp)
	if len(projects) != 0 {
		t.Errorf("Expected no projects after reset, got %d", len(projects))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil)
	current := decode[map[string]string](t, resp)
	if current["scenario_id"] != "" {
		t.Errorf("Expected cleared scenario, got %s", current["scenario_id"])
	}
}
