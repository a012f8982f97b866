package view

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lei/test-results/internal/aggregate"
	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages serves the HTML dashboard and detail views
type Pages struct {
	source RunSource
	loc    *time.Location
	logger *logger.Logger
	tmpl   *template.Template
}

// NewPages parses the embedded templates. A nil loc renders times in UTC.
func NewPages(src RunSource, loc *time.Location, log *logger.Logger) (*Pages, error) {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Pages{
		source: src,
		loc:    loc,
		logger: log,
		tmpl:   tmpl,
	}, nil
}

type badge struct {
	Text  string
	Color template.CSS
}

type dashboardRow struct {
	ID          string
	Link        string
	Name        string
	Status      badge
	Environment badge
	Started     string
	Total       int64
	Passed      int64
	Failed      int64
}

type dashboardPage struct {
	Rows []dashboardRow
}

type detailPage struct {
	Run         aggregate.Run
	Started     string
	Status      badge
	Environment badge
	Slices      []Slice
	Chart       template.CSS
	PassPercent string
}

type errorPage struct {
	Title   string
	Message string
}

// Dashboard handles GET /
func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	res := Fetch(r.Context(), func(ctx context.Context) ([]aggregate.Run, error) {
		return LoadRuns(ctx, p.source, models.RunFilter{})
	}, logTransitions[[]aggregate.Run](p.getLogger(r.Context()), "dashboard"))

	if res.State == StateFailed {
		p.renderError(w, r, http.StatusInternalServerError, "Failed to load test runs", res.Err.Error())
		return
	}

	page := dashboardPage{Rows: make([]dashboardRow, 0, len(res.Data))}
	for _, run := range res.Data {
		page.Rows = append(page.Rows, dashboardRow{
			ID:          run.ID,
			Link:        "/test-run/" + url.PathEscape(run.ID),
			Name:        run.Name,
			Status:      badge{Text: run.Status, Color: template.CSS(StatusColor(run.Status))},
			Environment: badge{Text: run.Environment, Color: template.CSS(EnvironmentColor(run.Environment))},
			Started:     FormatDateTime(run.StartedAt, p.loc),
			Total:       run.Total,
			Passed:      run.Passed,
			Failed:      run.Failed,
		})
	}

	p.render(w, r, http.StatusOK, "dashboard.html", page)
}

// Detail handles GET /test-run/{id}
func (p *Pages) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// chi routes on RawPath when it is set, leaving the param escaped
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}

	res := Fetch(r.Context(), func(ctx context.Context) (aggregate.Run, error) {
		return LoadRun(ctx, p.source, id)
	}, logTransitions[aggregate.Run](p.getLogger(r.Context()), "detail"))

	if res.State == StateFailed {
		if errors.Is(res.Err, ErrRunNotFound) {
			p.renderError(w, r, http.StatusNotFound, "Test Run Details", "Test run not found")
			return
		}
		p.renderError(w, r, http.StatusInternalServerError, "Test Run Details", res.Err.Error())
		return
	}

	run := res.Data
	page := detailPage{
		Run:         run,
		Started:     FormatDateTime(run.StartedAt, p.loc),
		Status:      badge{Text: run.Status, Color: template.CSS(StatusColor(run.Status))},
		Environment: badge{Text: run.Environment, Color: template.CSS(EnvironmentColor(run.Environment))},
		Slices:      Breakdown(run),
	}
	if page.Slices != nil {
		pct := formatPercent(PassPercent(run))
		page.PassPercent = pct
		page.Chart = template.CSS(fmt.Sprintf("conic-gradient(%s 0 %s%%, %s %s%% 100%%)",
			ColorPassed, pct, ColorFailed, pct))
	}

	p.render(w, r, http.StatusOK, "detail.html", page)
}

// logTransitions reports each lifecycle state of a page fetch at debug level
func logTransitions[T any](log *logger.Logger, page string) func(Result[T]) {
	return func(res Result[T]) {
		if res.Err != nil {
			log.Debug("view: fetch "+res.State.String(), "page", page, "error", res.Err)
			return
		}
		log.Debug("view: fetch "+res.State.String(), "page", page)
	}
}

func (p *Pages) getLogger(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return p.logger
}

func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	p.render(w, r, status, "error.html", errorPage{Title: title, Message: message})
}

// render executes into a buffer so a template failure never leaves a
// half-written page
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		p.getLogger(r.Context()).Error("view: template execution failed", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
