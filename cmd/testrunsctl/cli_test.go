package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/test-results/internal/aggregate"
	"github.com/lei/test-results/internal/api"
	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/internal/service"
	"github.com/lei/test-results/internal/store"
	"github.com/lei/test-results/pkg/logger"
)

func newTestAPI(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	log := logger.Nop()
	svc := service.NewService(st, log)
	srv := httptest.NewServer(api.NewRouter(api.NewHandlers(svc), api.NewLoggingMiddleware(log), nil))
	t.Cleanup(srv.Close)
	return srv, st
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--time-zone", "UTC"))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSubmitListShow(t *testing.T) {
	srv, st := newTestAPI(t)

	out, _, err := execute(t, "submit", "--api-url", srv.URL,
		"--suite", "smoke", "--status", "passed", "--environment", "qa",
		"--total", "10", "--passed", "9", "--failed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Test run created: ")
	assert.Regexp(t, `-smoke\n$`, out)

	require.NoError(t, st.Put(context.Background(), models.TestRunRecord{
		TestRunID: models.Ptr("legacy"),
		Status:    models.Ptr("FAILED"),
	}))

	out, _, err = execute(t, "list", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Results Dashboard")
	assert.Contains(t, out, "smoke")
	assert.Contains(t, out, "legacy")

	out, _, err = execute(t, "list", "--api-url", srv.URL, "--status", "failed", "--json")
	require.NoError(t, err)
	var runs []aggregate.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "legacy", runs[0].ID)
	assert.Equal(t, "Unnamed Suite", runs[0].Name)

	stored, err := st.Scan(context.Background())
	require.NoError(t, err)
	id := *stored[0].TestRunID

	out, _, err = execute(t, "show", id, "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "ID: "+id)
	assert.Contains(t, out, "90.0% passed")
}

func TestListFilteredThenShowPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"suite_name":"alpha","status":"passed","created_at":"2024-02-01T00:00:00Z"},
			{"suite_name":"beta","status":"failed","created_at":"2024-01-01T00:00:00Z"}
		]`))
	}))
	defer srv.Close()

	out, _, err := execute(t, "list", "--api-url", srv.URL, "--status", "failed", "--json")
	require.NoError(t, err)
	var runs []aggregate.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "beta", runs[0].Name)

	out, _, err = execute(t, "show", runs[0].ID, "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "beta")
	assert.NotContains(t, out, "alpha")

	out, _, err = execute(t, "show", "TR-1", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
}

func TestShow_NotFound(t *testing.T) {
	srv, _ := newTestAPI(t)

	_, stderr, err := execute(t, "show", "missing", "--api-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, stderr, "test run not found")
}

func TestList_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Server misconfigured"}`))
	}))
	defer srv.Close()

	out, stderr, err := execute(t, "list", "--api-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, stderr, `API 500: {"message":"Server misconfigured"}`)
	assert.NotContains(t, out, "Test Results Dashboard")
}

func TestSubmit_RequiresSuiteAndStatus(t *testing.T) {
	srv, st := newTestAPI(t)

	_, _, err := execute(t, "submit", "--api-url", srv.URL, "--suite", "smoke")
	assert.ErrorContains(t, err, "--suite and --status are required")

	stored, err := st.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAPIURLFromEnv(t *testing.T) {
	srv, _ := newTestAPI(t)
	t.Setenv(envAPIURL, srv.URL)

	out, _, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No test runs yet.")
}

func TestAPIURLMissing(t *testing.T) {
	t.Setenv(envAPIURL, "")

	_, _, err := execute(t, "list")
	assert.ErrorContains(t, err, "API URL is not set")
}
