// Package view renders normalized test runs as HTML pages and terminal
// output, and models a single fetch as an observable lifecycle.
package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/lei/test-results/internal/aggregate"
)

// Badge colours
const (
	ColorPassed  = "#22c55e"
	ColorFailed  = "#ef4444"
	ColorRunning = "#f97316"
	ColorProd    = "#dc2626"
	ColorStaging = "#fbbf24"
	ColorQA      = "#0ea5e9"
	ColorDefault = "#6b7280"
)

// DateLayout is how run start times are displayed
const DateLayout = "Jan 02, 2006, 03:04 PM"

// StatusColor maps a run status to its badge colour, ignoring case
func StatusColor(status string) string {
	switch strings.ToUpper(status) {
	case "PASSED":
		return ColorPassed
	case "FAILED":
		return ColorFailed
	case "RUNNING":
		return ColorRunning
	default:
		return ColorDefault
	}
}

// EnvironmentColor maps an environment to its badge colour, ignoring case
func EnvironmentColor(env string) string {
	switch strings.ToUpper(env) {
	case "PROD":
		return ColorProd
	case "STG":
		return ColorStaging
	case "QA":
		return ColorQA
	default:
		return ColorDefault
	}
}

// FormatDateTime renders an RFC 3339 timestamp in loc. Empty, sentinel
// and unparseable values render as aggregate.UnknownTime.
func FormatDateTime(s string, loc *time.Location) string {
	if s == "" || s == aggregate.UnknownTime {
		return aggregate.UnknownTime
	}
	if loc == nil {
		loc = time.UTC
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// date-only values are read as UTC midnight
		t, err = time.Parse(time.DateOnly, s)
		if err != nil {
			return aggregate.UnknownTime
		}
	}
	return t.In(loc).Format(DateLayout)
}

// Slice is one segment of the pass/fail chart
type Slice struct {
	Label string
	Value int64
	Color string
}

// Breakdown returns the passed and failed segments of run, or nil when
// both are zero
func Breakdown(run aggregate.Run) []Slice {
	if run.Passed == 0 && run.Failed == 0 {
		return nil
	}
	return []Slice{
		{Label: "Passed", Value: run.Passed, Color: ColorPassed},
		{Label: "Failed", Value: run.Failed, Color: ColorFailed},
	}
}

// PassPercent is the passed share of passed+failed, 0 when that sum is
// not positive
func PassPercent(run aggregate.Run) float64 {
	sum := run.Passed + run.Failed
	if sum <= 0 {
		return 0
	}
	pct := float64(run.Passed) / float64(sum) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
