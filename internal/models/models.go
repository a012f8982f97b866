package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// TestRunRecord is the stored form of a test run.
// Every field is optional because items written by older clients, or by
// hand, may lack attributes; absent fields are omitted on output.
type TestRunRecord struct {
	TestRunID   *string `json:"test_run_id,omitempty" dynamodbav:"test_run_id,omitempty"`
	SuiteName   *string `json:"suite_name,omitempty" dynamodbav:"suite_name,omitempty"`
	Environment *string `json:"environment,omitempty" dynamodbav:"environment,omitempty"`
	Status      *string `json:"status,omitempty" dynamodbav:"status,omitempty"`
	TotalTests  *int64  `json:"total_tests,omitempty" dynamodbav:"total_tests,omitempty"`
	Passed      *int64  `json:"passed,omitempty" dynamodbav:"passed,omitempty"`
	Failed      *int64  `json:"failed,omitempty" dynamodbav:"failed,omitempty"`
	TriggeredBy *string `json:"triggered_by,omitempty" dynamodbav:"triggered_by,omitempty"`
	CreatedAt   *string `json:"created_at,omitempty" dynamodbav:"created_at,omitempty"`
}

// TestRunInput is a validated, coerced ingest request
type TestRunInput struct {
	SuiteName   string `json:"suite_name"`
	Environment string `json:"environment,omitempty"`
	Status      string `json:"status"`
	TotalTests  int64  `json:"total_tests"`
	Passed      int64  `json:"passed"`
	Failed      int64  `json:"failed"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// RunFilter holds the optional equality filters of a query.
// Empty fields do not filter.
type RunFilter struct {
	Status      string
	Environment string
	TriggeredBy string
}

// IsZero reports whether no filter is set
func (f RunFilter) IsZero() bool {
	return f.Status == "" && f.Environment == "" && f.TriggeredBy == ""
}

// Matches reports whether rec satisfies every non-empty filter,
// comparing case-insensitively. A missing field never matches.
func (f RunFilter) Matches(rec TestRunRecord) bool {
	return matchField(rec.Status, f.Status) &&
		matchField(rec.Environment, f.Environment) &&
		matchField(rec.TriggeredBy, f.TriggeredBy)
}

func matchField(value *string, want string) bool {
	if want == "" {
		return true
	}
	if value == nil {
		return false
	}
	return strings.EqualFold(*value, want)
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// RecordFromItem converts a loosely typed store item into a record.
// Attributes with an unexpected type are treated as missing.
func RecordFromItem(item map[string]any) TestRunRecord {
	return TestRunRecord{
		TestRunID:   stringAttr(item["test_run_id"]),
		SuiteName:   stringAttr(item["suite_name"]),
		Environment: stringAttr(item["environment"]),
		Status:      stringAttr(item["status"]),
		TotalTests:  intAttr(item["total_tests"]),
		Passed:      intAttr(item["passed"]),
		Failed:      intAttr(item["failed"]),
		TriggeredBy: stringAttr(item["triggered_by"]),
		CreatedAt:   stringAttr(item["created_at"]),
	}
}

func stringAttr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func intAttr(v any) *int64 {
	n, ok := ToInt(v)
	if !ok {
		return nil
	}
	return &n
}

// ToInt coerces JSON-ish numeric values to an integer, truncating
// fractions toward zero. Numeric strings are accepted.
func ToInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt(n)
	case json.Number:
		return parseNumeric(n.String())
	case string:
		return parseNumeric(strings.TrimSpace(n))
	default:
		return 0, false
	}
}

func parseNumeric(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
