package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/lei/test-results/internal/aggregate"
	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/internal/store"
	"github.com/lei/test-results/pkg/logger"
)

// CreatedAtLayout is the server-side timestamp format (UTC, milliseconds)
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// Service coordinates business logic between API and store layers
type Service struct {
	store  store.RecordStore
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new service instance
func NewService(st store.RecordStore, log *logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
		now:    time.Now,
	}
}

// getLogger retrieves logger from context or falls back to service logger
func (s *Service) getLogger(ctx context.Context) *logger.Logger {
	if ctxLogger := logger.FromContext(ctx); ctxLogger != nil {
		return ctxLogger
	}
	return s.logger
}

// CreateTestRun checks configuration, parses body and ingests the result.
// It returns the stored record.
func (s *Service) CreateTestRun(ctx context.Context, body []byte) (models.TestRunRecord, error) {
	logger := s.getLogger(ctx)

	if err := s.store.Ready(); err != nil {
		logger.Error("service: store not ready", "error", err)
		return models.TestRunRecord{}, &ConfigurationError{Err: err}
	}

	in, err := ParseTestRunInput(body)
	if err != nil {
		logger.Debug("service: rejected ingest body", "error", err)
		return models.TestRunRecord{}, err
	}

	return s.Ingest(ctx, in)
}

// Ingest validates in, derives the identifier and timestamp, and writes
// the record. An existing record with the same identifier is replaced.
func (s *Service) Ingest(ctx context.Context, in models.TestRunInput) (models.TestRunRecord, error) {
	logger := s.getLogger(ctx)

	if in.SuiteName == "" || in.Status == "" {
		return models.TestRunRecord{}, &ValidationError{Err: ErrMissingRequired}
	}
	if in.Environment == "" {
		in.Environment = aggregate.UnknownEnvironment
	}
	if in.TriggeredBy == "" {
		in.TriggeredBy = aggregate.UnknownTrigger
	}

	now := s.now().UTC()
	id := NewTestRunID(now, in.SuiteName)

	rec := models.TestRunRecord{
		TestRunID:   models.Ptr(id),
		SuiteName:   models.Ptr(in.SuiteName),
		Environment: models.Ptr(in.Environment),
		Status:      models.Ptr(in.Status),
		TotalTests:  models.Ptr(in.TotalTests),
		Passed:      models.Ptr(in.Passed),
		Failed:      models.Ptr(in.Failed),
		TriggeredBy: models.Ptr(in.TriggeredBy),
		CreatedAt:   models.Ptr(now.Format(CreatedAtLayout)),
	}

	logger.Debug("service: storing test run",
		"test_run_id", id,
		"suite_name", in.SuiteName,
		"status", in.Status)

	if err := s.store.Put(ctx, rec); err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			return models.TestRunRecord{}, &ConfigurationError{Err: err}
		}
		logger.Error("service: store put failed", "test_run_id", id, "error", err)
		return models.TestRunRecord{}, &StoreError{Op: "put", Err: err}
	}

	logger.Info("service: test run stored", "test_run_id", id)
	return rec, nil
}

// ListTestRuns scans the store, keeps records matching filter and
// orders them newest first
func (s *Service) ListTestRuns(ctx context.Context, filter models.RunFilter) ([]models.TestRunRecord, error) {
	logger := s.getLogger(ctx)

	logger.Debug("service: listing test runs",
		"status", filter.Status,
		"environment", filter.Environment,
		"triggered_by", filter.TriggeredBy)

	records, err := s.store.Scan(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			logger.Error("service: store not ready", "error", err)
			return nil, &ConfigurationError{Err: err}
		}
		logger.Error("service: store scan failed", "error", err)
		return nil, &StoreError{Op: "scan", Err: err}
	}

	filtered := FilterRecords(records, filter)

	logger.Debug("service: test runs listed", "scanned", len(records), "matched", len(filtered))
	return aggregate.SortRecords(filtered), nil
}

// HealthCheck reports whether the store is usable
func (s *Service) HealthCheck(ctx context.Context) map[string]interface{} {
	logger := s.getLogger(ctx)

	health := map[string]interface{}{
		"status":  "healthy",
		"service": "test-results",
	}

	if err := s.store.Ready(); err != nil {
		logger.Warn("store health check failed", "error", err)
		health["status"] = "degraded"
		health["store"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		return health
	}

	health["store"] = map[string]interface{}{
		"status": "healthy",
		"kind":   fmt.Sprintf("%T", s.store),
	}
	return health
}

// FilterRecords keeps the records matching every non-empty filter,
// preserving input order
func FilterRecords(records []models.TestRunRecord, filter models.RunFilter) []models.TestRunRecord {
	if filter.IsZero() {
		return records
	}

	filtered := make([]models.TestRunRecord, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// NewTestRunID derives "<unix-millis>-<suite>" with each whitespace run
// collapsed to a single hyphen. Two ingests of one suite in the same
// millisecond produce the same identifier.
func NewTestRunID(now time.Time, suite string) string {
	raw := fmt.Sprintf("%d-%s", now.UnixMilli(), suite)

	var b strings.Builder
	b.Grow(len(raw))
	inSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// ParseTestRunInput decodes an ingest body. An empty body counts as {}.
// Counts accept numbers and numeric strings; anything else becomes 0.
// Non-string text fields are treated as absent.
func ParseTestRunInput(body []byte) (models.TestRunInput, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return models.TestRunInput{}, &ValidationError{Err: ErrInvalidBody}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return models.TestRunInput{}, &ValidationError{Err: ErrInvalidBody}
	}

	in := models.TestRunInput{
		SuiteName:   stringField(raw, "suite_name"),
		Environment: stringField(raw, "environment"),
		Status:      stringField(raw, "status"),
		TotalTests:  intField(raw, "total_tests"),
		Passed:      intField(raw, "passed"),
		Failed:      intField(raw, "failed"),
		TriggeredBy: stringField(raw, "triggered_by"),
	}

	if in.SuiteName == "" || in.Status == "" {
		return models.TestRunInput{}, &ValidationError{Err: ErrMissingRequired}
	}

	return in, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func intField(raw map[string]any, key string) int64 {
	n, _ := models.ToInt(raw[key])
	return n
}
