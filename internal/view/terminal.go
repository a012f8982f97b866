package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lei/test-results/internal/aggregate"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5"))
)

func badgeStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

// Terminal renders runs for the CLI
type Terminal struct {
	loc *time.Location
}

// NewTerminal creates a terminal renderer. A nil loc renders times in UTC.
func NewTerminal(loc *time.Location) *Terminal {
	if loc == nil {
		loc = time.UTC
	}
	return &Terminal{loc: loc}
}

// RenderList renders the dashboard table
func (t *Terminal) RenderList(runs []aggregate.Run) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Test Results Dashboard"))
	sb.WriteString("\n")

	if len(runs) == 0 {
		sb.WriteString(mutedStyle.Render("No test runs yet."))
		sb.WriteString("\n")
		return sb.String()
	}

	headers := []string{"ID", "SUITE", "STATUS", "ENV", "STARTED", "TOTAL", "PASSED", "FAILED"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Name,
			badgeStyle(StatusColor(run.Status)).Render(run.Status),
			badgeStyle(EnvironmentColor(run.Environment)).Render(strings.ToUpper(run.Environment)),
			FormatDateTime(run.StartedAt, t.loc),
			strconv.FormatInt(run.Total, 10),
			strconv.FormatInt(run.Passed, 10),
			strconv.FormatInt(run.Failed, 10),
		})
	}

	sb.WriteString(renderTable(headers, rows))
	return sb.String()
}

// RenderDetail renders one run with its pass/fail breakdown
func (t *Terminal) RenderDetail(run aggregate.Run) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Test Run Details"))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("ID: " + run.ID))
	sb.WriteString("\n\n")

	fields := [][2]string{
		{"Suite Name", run.Name},
		{"Environment", badgeStyle(EnvironmentColor(run.Environment)).Render(strings.ToUpper(run.Environment))},
		{"Triggered By", run.TriggeredBy},
		{"Started At", FormatDateTime(run.StartedAt, t.loc)},
		{"Status", badgeStyle(StatusColor(run.Status)).Render(run.Status)},
		{"Total Tests", strconv.FormatInt(run.Total, 10)},
		{"Passed", strconv.FormatInt(run.Passed, 10)},
		{"Failed", strconv.FormatInt(run.Failed, 10)},
	}

	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, lipgloss.Width(f[0]))
	}
	for _, f := range fields {
		sb.WriteString(mutedStyle.Width(labelWidth + 2).Render(f[0]))
		sb.WriteString(f[1])
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(headStyle.UnsetPadding().Render("Pass / Fail Breakdown"))
	sb.WriteString("\n")

	slices := Breakdown(run)
	if slices == nil {
		sb.WriteString(mutedStyle.Render("No pass/fail data available for this run."))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(renderBar(slices, 40))
	sb.WriteString(" ")
	sb.WriteString(formatPercent(PassPercent(run)))
	sb.WriteString("% passed\n")
	return sb.String()
}

// RenderError renders a failed fetch as a single message
func (t *Terminal) RenderError(err error) string {
	return errorStyle.Render("Error: "+err.Error()) + "\n"
}

// renderBar draws the breakdown as a horizontal bar of width cells
func renderBar(slices []Slice, width int) string {
	var total int64
	for _, s := range slices {
		total += max(s.Value, 0)
	}
	if total == 0 {
		return ""
	}

	var sb strings.Builder
	used := 0
	for i, s := range slices {
		n := int(max(s.Value, 0) * int64(width) / total)
		if i == len(slices)-1 {
			n = width - used
		}
		used += n
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", n)))
	}
	return sb.String()
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	// lipgloss widths include padding
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(headStyle.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
