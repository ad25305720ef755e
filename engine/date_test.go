package engine_test

import (
	"testing"
	"time"

	"github.com/warp/margin-engine/engine"
)

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := engine.ParseDate("2025-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-06-15" {
		t.Errorf("expected 2025-06-15, got %s", d.String())
	}
}

func TestParseDate_Malformed(t *testing.T) {
	for _, s := range []string{"", "15/06/2025", "2025-6-15", "not-a-date"} {
		if _, err := engine.ParseDate(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestDateOf_TruncatesToUTCDay(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC the same calendar day.
	loc := time.FixedZone("UTC+5", 5*3600)
	d := engine.DateOf(time.Date(2025, time.June, 15, 23, 30, 0, 0, loc))

	if !d.Equal(date(2025, time.June, 15)) {
		t.Errorf("expected 2025-06-15, got %s", d)
	}
}

func TestDate_DayIntervalBounds(t *testing.T) {
	d := date(2025, time.June, 15)

	if !d.Start().Equal(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %s", d.Start())
	}
	if !d.End().Equal(time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %s", d.End())
	}
}

func TestDaysBetween(t *testing.T) {
	from := date(2025, time.January, 1)
	if got := engine.DaysBetween(from, date(2025, time.January, 10)); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
	if got := engine.DaysBetween(from, from); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	// Across the Feb 29 leap boundary.
	if got := engine.DaysBetween(date(2024, time.February, 28), date(2024, time.March, 1)); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestPeriod_Days(t *testing.T) {
	p := engine.Period{Start: date(2025, time.January, 1), End: date(2025, time.January, 10)}
	if got := p.Days(); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}

	backwards := engine.Period{Start: date(2025, time.January, 10), End: date(2025, time.January, 1)}
	if got := backwards.Days(); got != 0 {
		t.Errorf("expected 0 for backwards period, got %d", got)
	}
}

func TestDate_MinMax(t *testing.T) {
	a := date(2025, time.January, 1)
	b := date(2025, time.June, 1)

	if !a.Min(b).Equal(a) || !b.Min(a).Equal(a) {
		t.Error("Min picked the later day")
	}
	if !a.Max(b).Equal(b) || !b.Max(a).Equal(b) {
		t.Error("Max picked the earlier day")
	}
}
