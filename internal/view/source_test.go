package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/test-results/internal/models"
)

func unidentifiedRuns() []models.TestRunRecord {
	return []models.TestRunRecord{
		{SuiteName: models.Ptr("alpha"), Status: models.Ptr("passed"), CreatedAt: models.Ptr("2024-02-01T00:00:00Z")},
		{SuiteName: models.Ptr("beta"), Status: models.Ptr("failed"), CreatedAt: models.Ptr("2024-01-01T00:00:00Z")},
	}
}

func TestLoadRuns_FilteredPlaceholdersResolve(t *testing.T) {
	src := &fakeSource{records: unidentifiedRuns()}
	ctx := context.Background()

	runs, err := LoadRuns(ctx, src, models.RunFilter{Status: "FAILED"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "TR-2", runs[0].ID)
	assert.Equal(t, "beta", runs[0].Name)

	run, err := LoadRun(ctx, src, runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "beta", run.Name)

	run, err = LoadRun(ctx, src, "TR-1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", run.Name)

	for _, f := range src.filters {
		assert.True(t, f.IsZero(), "filters apply after normalization")
	}
}

func TestLoadRuns_FilterUsesStoredFields(t *testing.T) {
	src := &fakeSource{records: unidentifiedRuns()}

	// "unknown" is a display default, not a stored environment
	runs, err := LoadRuns(context.Background(), src, models.RunFilter{Environment: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadRun_NotFound(t *testing.T) {
	_, err := LoadRun(context.Background(), &fakeSource{records: unidentifiedRuns()}, "TR-3")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
