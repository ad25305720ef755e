package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// FINANCIAL YEAR - April 1 through March 31
// =============================================================================

// FinancialYear identifies one April-to-March accounting year by the
// calendar year it starts in. The year starting 2024-04-01 is labeled
// "2024-25".
type FinancialYear struct {
	StartYear int
}

// FinancialYearOf returns the financial year containing the given day.
// January through March belong to the year that started the previous April.
func FinancialYearOf(d Date) FinancialYear {
	year := d.Year()
	if d.Month() < time.April {
		year--
	}
	return FinancialYear{StartYear: year}
}

// Label returns the short form, e.g. "2024-25".
func (fy FinancialYear) Label() string {
	return fmt.Sprintf("%d-%02d", fy.StartYear, (fy.StartYear+1)%100)
}

// LegacyLabel returns the long form some older salary records carry,
// e.g. "2024-2025".
func (fy FinancialYear) LegacyLabel() string {
	return fmt.Sprintf("%d-%d", fy.StartYear, fy.StartYear+1)
}

func (fy FinancialYear) Start() Date { return NewDate(fy.StartYear, time.April, 1) }
func (fy FinancialYear) End() Date   { return NewDate(fy.StartYear+1, time.March, 31) }

func (fy FinancialYear) Period() Period {
	return Period{Start: fy.Start(), End: fy.End()}
}

func (fy FinancialYear) Contains(d Date) bool { return fy.Period().Contains(d) }

func (fy FinancialYear) Next() FinancialYear {
	return FinancialYear{StartYear: fy.StartYear + 1}
}
