// Package aggregate turns raw test-run records into the sorted,
// defaulted sequence that the dashboard and detail views render.
package aggregate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lei/test-results/internal/models"
)

// Defaults substituted for missing record fields.
const (
	UnknownTime        = "Unknown time"
	UnknownStatus      = "UNKNOWN"
	UnnamedSuite       = "Unnamed Suite"
	UnknownEnvironment = "unknown"
	UnknownTrigger     = "unknown"
)

// Run is the UI-facing form of a test run
type Run struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	StartedAt   string `json:"startedAt"`
	Total       int64  `json:"total"`
	Passed      int64  `json:"passed"`
	Failed      int64  `json:"failed"`
	Environment string `json:"environment"`
	TriggeredBy string `json:"triggeredBy"`

	// placeholder is "TR-<n>" for the record's 1-based input position,
	// kept even when the record carries a real identifier.
	placeholder string
}

// Placeholder returns the positional identifier assigned during normalization
func (r Run) Placeholder() string {
	return r.placeholder
}

// Normalize projects records into runs, newest first.
// The input slice is not modified.
func Normalize(records []models.TestRunRecord) []Run {
	return NormalizeWhere(records, nil)
}

// NormalizeWhere is Normalize restricted to the records keep accepts.
// Placeholders are numbered over every input position, so a run keeps the
// same "TR-<n>" whether or not the rest of the list is filtered out.
// A nil keep accepts every record.
func NormalizeWhere(records []models.TestRunRecord, keep func(models.TestRunRecord) bool) []Run {
	runs := make([]Run, 0, len(records))
	for i, rec := range records {
		if keep != nil && !keep(rec) {
			continue
		}
		runs = append(runs, normalizeOne(i, rec))
	}

	slices.SortStableFunc(runs, func(a, b Run) int {
		return compareNewestFirst(a.StartedAt, b.StartedAt, UnknownTime)
	})

	return runs
}

func normalizeOne(i int, rec models.TestRunRecord) Run {
	placeholder := fmt.Sprintf("TR-%d", i+1)

	return Run{
		ID:          stringOr(rec.TestRunID, placeholder),
		Name:        stringOr(rec.SuiteName, UnnamedSuite),
		Status:      strings.ToUpper(stringOr(rec.Status, UnknownStatus)),
		StartedAt:   stringOr(rec.CreatedAt, UnknownTime),
		Total:       intOr(rec.TotalTests),
		Passed:      intOr(rec.Passed),
		Failed:      intOr(rec.Failed),
		Environment: stringOr(rec.Environment, UnknownEnvironment),
		TriggeredBy: stringOr(rec.TriggeredBy, UnknownTrigger),
		placeholder: placeholder,
	}
}

// FindByID returns the first run whose ID equals id. Failing that, it
// returns the first run whose positional placeholder equals id.
func FindByID(id string, runs []Run) (Run, bool) {
	for _, r := range runs {
		if r.ID == id {
			return r, true
		}
	}
	for _, r := range runs {
		if r.placeholder == id {
			return r, true
		}
	}
	return Run{}, false
}

// SortRecords returns a copy of records ordered newest first by created_at.
// Records without created_at go last; equal keys keep their input order.
func SortRecords(records []models.TestRunRecord) []models.TestRunRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.TestRunRecord) int {
		return compareNewestFirst(stringOr(a.CreatedAt, ""), stringOr(b.CreatedAt, ""), "")
	})
	return sorted
}

// compareNewestFirst orders timestamps descending by plain string
// comparison, placing the missing marker after everything else.
func compareNewestFirst(a, b, missing string) int {
	aMissing, bMissing := a == missing, b == missing
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return 1
	case bMissing:
		return -1
	}
	return strings.Compare(b, a)
}

func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func intOr(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
