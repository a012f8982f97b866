package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/internal/service"
)

// maxBodyBytes bounds an ingest request body
const maxBodyBytes = 1 << 20

// Handlers contains HTTP handler functions
type Handlers struct {
	service *service.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{service: svc}
}

// Health handles health check requests
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	health := h.service.HealthCheck(r.Context())

	status := http.StatusOK
	if health["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

// CreateTestRun handles POST /test-runs
func (h *Handlers) CreateTestRun(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		if logger != nil {
			logger.Warn("failed to read request body", "error", err)
		}
		respondError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if logger != nil {
		logger.Debug("creating test run", "body_bytes", len(body))
	}

	rec, err := h.service.CreateTestRun(r.Context(), body)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if logger != nil {
		logger.Info("test run created", "test_run_id", *rec.TestRunID)
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":     "Test run created",
		"test_run_id": *rec.TestRunID,
	})
}

// ListTestRuns handles GET /test-runs
func (h *Handlers) ListTestRuns(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	filter := parseRunFilter(r.URL.Query())

	records, err := h.service.ListTestRuns(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if records == nil {
		records = []models.TestRunRecord{}
	}

	if logger != nil {
		logger.Info("test runs listed", "count", len(records))
	}

	respondJSON(w, http.StatusOK, records)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a {"message": ...} error response with logging
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logger := GetLogger(r.Context())
	requestID := GetRequestID(r.Context())

	if logger != nil {
		logger.Error("returning error response",
			"status", status,
			"message", message,
			"request_id", requestID)
	}

	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	respondJSON(w, status, map[string]string{"message": message})
}

// handleServiceError maps service errors to HTTP responses with detailed logging
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := GetLogger(r.Context())

	if logger != nil {
		logger.Error("service error occurred",
			"error", err.Error(),
			"error_type", fmt.Sprintf("%T", err))
	}

	var (
		validationErr *service.ValidationError
		configErr     *service.ConfigurationError
		storeErr      *service.StoreError
	)

	switch {
	case errors.Is(err, service.ErrInvalidBody):
		respondError(w, r, http.StatusBadRequest, "Invalid JSON body")
	case errors.Is(err, service.ErrMissingRequired):
		respondError(w, r, http.StatusBadRequest, "suite_name and status are required")
	case errors.As(err, &validationErr):
		respondError(w, r, http.StatusBadRequest, validationErr.Err.Error())
	case errors.As(err, &configErr):
		respondError(w, r, http.StatusInternalServerError, "Server misconfigured")
	case errors.As(err, &storeErr) && storeErr.Op == "put":
		respondError(w, r, http.StatusInternalServerError, "Failed to store test run")
	default:
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
