package engine_test

import (
	"testing"
	"time"

	"github.com/warp/margin-engine/engine"
)

func TestMoney_CentExactAddition(t *testing.T) {
	// 100000.00 + 2500.50 + 1999.99 - the classic float-drift trap
	got := engine.MustParseMoney("100000.00").
		Add(engine.MustParseMoney("2500.50")).
		Add(engine.MustParseMoney("1999.99"))

	if got.String() != "104500.49" {
		t.Errorf("expected 104500.49, got %s", got)
	}
}

func TestMustParseMoney_MalformedDegradesToZero(t *testing.T) {
	for _, s := range []string{"", "abc", "12,50"} {
		if got := engine.MustParseMoney(s); !got.IsZero() {
			t.Errorf("expected zero for %q, got %s", s, got)
		}
	}
}

func TestMoney_Percent(t *testing.T) {
	if got := engine.MustParseMoney("50").Percent(engine.MustParseMoney("200")); got.String() != "25" {
		t.Errorf("expected 25, got %s", got)
	}
	if got := engine.MustParseMoney("50").Percent(engine.ZeroMoney()); !got.IsZero() {
		t.Errorf("expected 0 on zero total, got %s", got)
	}
}

func TestMoney_StringAlwaysTwoDecimals(t *testing.T) {
	if got := engine.NewMoneyFromInt(5000).String(); got != "5000.00" {
		t.Errorf("expected 5000.00, got %s", got)
	}
}

func TestProject_TotalRevenue(t *testing.T) {
	p := engine.Project{
		Budget: engine.MustParseMoney("100000.00"),
		Extensions: []engine.Extension{
			{AddedBudget: engine.MustParseMoney("2500.50")},
			{AddedBudget: engine.MustParseMoney("1999.99")},
		},
	}
	if got := p.TotalRevenue(); !got.Equal(engine.MustParseMoney("104500.49")) {
		t.Errorf("expected 104500.49, got %s", got)
	}
}

func TestProject_TotalRevenue_NoExtensions(t *testing.T) {
	p := engine.Project{Budget: engine.MustParseMoney("100000.00")}
	if got := p.TotalRevenue(); !got.Equal(engine.MustParseMoney("100000.00")) {
		t.Errorf("expected 100000.00, got %s", got)
	}
}

func TestAssignment_ActiveAt(t *testing.T) {
	until := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	a := engine.Assignment{
		EmployeeID:   "emp-1",
		AssignedAt:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		UnassignedAt: &until,
	}

	if a.ActiveAt(time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC)) {
		t.Error("expected inactive before assignment")
	}
	if !a.ActiveAt(time.Date(2025, time.February, 1, 12, 0, 0, 0, time.UTC)) {
		t.Error("expected active mid-assignment")
	}
	// Unassignment bound is exclusive.
	if a.ActiveAt(until) {
		t.Error("expected inactive at the unassignment instant")
	}
}
