/*
salary.go - Salary resolution with an explicit fallback chain

PURPOSE:
  Answers "what did this employee cost per day on this date?". Salary data
  arrives in layers of decreasing quality:

  1. ExactMatch:       a record labeled with the day's financial year
  2. LegacyLabelMatch: a record using the older long label form (2024-2025)
  3. AnyRecordMatch:   any salary record for the employee
  4. LegacyFlatField:  the employee's flat annual salary field
  5. NoData:           nothing - resolves to zero, never an error

  Within the first three branches, the record with the latest
  effective-from date <= the query date wins. Zero cost on missing data is
  a deliberate silent-degradation policy: a gap in salary history must not
  abort a whole report.

DAILY RATE:
  Annual amount / 365, a fixed-day-count policy. Not calendar-accurate in
  leap years; the simplification is intentional and documented.

MEMOIZATION:
  A resolver carries a per-computation memo table keyed by (employee, day).
  It is scoped to one report computation - never module-global - so the
  engine stays pure and testable. Lookups are repeatable and side-effect
  free, which makes the cache correctness-neutral.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// RESOLUTION RESULT - Tagged with which branch fired
// =============================================================================

type SalarySource string

const (
	SalaryExactMatch      SalarySource = "exact_match"
	SalaryLegacyLabel     SalarySource = "legacy_label_match"
	SalaryAnyRecord       SalarySource = "any_record_match"
	SalaryLegacyFlatField SalarySource = "legacy_flat_field"
	SalaryNoData          SalarySource = "no_data"
)

// SalaryResolution is the outcome of resolving one employee-day pair.
type SalaryResolution struct {
	Annual Money
	Source SalarySource
}

var daysPerYear = decimal.NewFromInt(365)

// DailyRate converts the resolved annual amount to a daily rate (÷365).
func (r SalaryResolution) DailyRate() Money {
	if r.Source == SalaryNoData {
		return ZeroMoney()
	}
	return r.Annual.Div(daysPerYear)
}

// =============================================================================
// SALARY RESOLVER
// =============================================================================

type salaryKey struct {
	Employee EmployeeID
	Day      Date
}

// SalaryResolver resolves annual salaries per employee-day against an
// immutable snapshot of salary history. Construct one per report
// computation; the memo table is not shared across computations.
type SalaryResolver struct {
	histories map[EmployeeID][]SalaryRecord
	legacy    map[EmployeeID]*Money
	memo      map[salaryKey]SalaryResolution
}

func NewSalaryResolver(employees []Employee, records []SalaryRecord) *SalaryResolver {
	r := &SalaryResolver{
		histories: make(map[EmployeeID][]SalaryRecord),
		legacy:    make(map[EmployeeID]*Money),
		memo:      make(map[salaryKey]SalaryResolution),
	}
	for _, e := range employees {
		r.legacy[e.ID] = e.LegacySalary
	}
	for _, rec := range records {
		r.histories[rec.EmployeeID] = append(r.histories[rec.EmployeeID], rec)
	}
	return r
}

// Resolve returns the annual salary applicable on the given day, tagged
// with the branch that produced it.
func (r *SalaryResolver) Resolve(id EmployeeID, day Date) SalaryResolution {
	k := salaryKey{Employee: id, Day: day}
	if res, ok := r.memo[k]; ok {
		return res
	}
	res := r.resolve(id, day)
	r.memo[k] = res
	return res
}

func (r *SalaryResolver) resolve(id EmployeeID, day Date) SalaryResolution {
	records := r.histories[id]
	fy := FinancialYearOf(day)

	if rec, ok := latestApplicable(records, day, fy.Label()); ok {
		return SalaryResolution{Annual: rec.Annual, Source: SalaryExactMatch}
	}
	if rec, ok := latestApplicable(records, day, fy.LegacyLabel()); ok {
		return SalaryResolution{Annual: rec.Annual, Source: SalaryLegacyLabel}
	}
	if rec, ok := latestApplicable(records, day, ""); ok {
		return SalaryResolution{Annual: rec.Annual, Source: SalaryAnyRecord}
	}
	if flat := r.legacy[id]; flat != nil {
		return SalaryResolution{Annual: *flat, Source: SalaryLegacyFlatField}
	}
	return SalaryResolution{Annual: ZeroMoney(), Source: SalaryNoData}
}

// DailyRate is a convenience wrapper over Resolve.
func (r *SalaryResolver) DailyRate(id EmployeeID, day Date) Money {
	return r.Resolve(id, day).DailyRate()
}

// latestApplicable picks the record with the latest effective-from <= day,
// filtered to the given financial-year label ("" matches any label).
func latestApplicable(records []SalaryRecord, day Date, label string) (SalaryRecord, bool) {
	var best SalaryRecord
	found := false
	for _, rec := range records {
		if label != "" && rec.FinancialYear != label {
			continue
		}
		if rec.EffectiveFrom.After(day) {
			continue
		}
		if !found || rec.EffectiveFrom.After(best.EffectiveFrom) {
			best = rec
			found = true
		}
	}
	return best, found
}
