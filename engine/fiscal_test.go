package engine_test

import (
	"testing"
	"time"

	"github.com/warp/margin-engine/engine"
)

func TestFinancialYearOf_AprilFirstStartsNewYear(t *testing.T) {
	fy := engine.FinancialYearOf(date(2025, time.April, 1))
	if fy.StartYear != 2025 {
		t.Errorf("expected start year 2025, got %d", fy.StartYear)
	}
}

func TestFinancialYearOf_MarchBelongsToPreviousYear(t *testing.T) {
	fy := engine.FinancialYearOf(date(2025, time.March, 31))
	if fy.StartYear != 2024 {
		t.Errorf("expected start year 2024, got %d", fy.StartYear)
	}
}

func TestFinancialYear_Labels(t *testing.T) {
	fy := engine.FinancialYear{StartYear: 2025}

	if got := fy.Label(); got != "2025-26" {
		t.Errorf("expected label 2025-26, got %s", got)
	}
	if got := fy.LegacyLabel(); got != "2025-2026" {
		t.Errorf("expected legacy label 2025-2026, got %s", got)
	}
}

func TestFinancialYear_CenturyRolloverLabel(t *testing.T) {
	fy := engine.FinancialYear{StartYear: 2099}
	if got := fy.Label(); got != "2099-00" {
		t.Errorf("expected label 2099-00, got %s", got)
	}
}

func TestFinancialYear_Bounds(t *testing.T) {
	fy := engine.FinancialYear{StartYear: 2024}

	if !fy.Start().Equal(date(2024, time.April, 1)) {
		t.Errorf("unexpected start %s", fy.Start())
	}
	if !fy.End().Equal(date(2025, time.March, 31)) {
		t.Errorf("unexpected end %s", fy.End())
	}
	if !fy.Contains(date(2024, time.December, 25)) {
		t.Error("expected December 2024 inside FY 2024-25")
	}
	if fy.Contains(date(2025, time.April, 1)) {
		t.Error("April 1 of the next year must not be inside FY 2024-25")
	}
}

func TestFinancialYear_Next(t *testing.T) {
	fy := engine.FinancialYear{StartYear: 2024}
	if fy.Next().StartYear != 2025 {
		t.Errorf("expected 2025, got %d", fy.Next().StartYear)
	}
}
