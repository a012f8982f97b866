package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/test-results/internal/config"
	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/pkg/logger"
)

func sampleRecord(id, suite string) models.TestRunRecord {
	return models.TestRunRecord{
		TestRunID:   models.Ptr(id),
		SuiteName:   models.Ptr(suite),
		Environment: models.Ptr("qa"),
		Status:      models.Ptr("passed"),
		TotalTests:  models.Ptr(int64(10)),
		Passed:      models.Ptr(int64(10)),
		Failed:      models.Ptr(int64(0)),
		TriggeredBy: models.Ptr("ci"),
		CreatedAt:   models.Ptr("2024-01-01T00:00:00.000Z"),
	}
}

// exerciseStore runs the behaviour every backend shares
func exerciseStore(t *testing.T, s RecordStore) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, s.Ready())

	empty, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Put(ctx, sampleRecord("1-smoke", "smoke")))
	require.NoError(t, s.Put(ctx, sampleRecord("2-regression", "regression")))

	// Same key overwrites silently.
	replacement := sampleRecord("1-smoke", "smoke")
	replacement.Status = models.Ptr("failed")
	require.NoError(t, s.Put(ctx, replacement))

	// Partially populated records survive the round trip.
	require.NoError(t, s.Put(ctx, models.TestRunRecord{TestRunID: models.Ptr("3-bare")}))

	records, err := s.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	byID := make(map[string]models.TestRunRecord, len(records))
	for _, r := range records {
		byID[*r.TestRunID] = r
	}

	assert.Equal(t, "failed", *byID["1-smoke"].Status)
	assert.Equal(t, sampleRecord("2-regression", "regression"), byID["2-regression"])

	bare := byID["3-bare"]
	assert.Nil(t, bare.Status)
	assert.Nil(t, bare.TotalTests)
	assert.Nil(t, bare.CreatedAt)

	assert.ErrorIs(t, s.Put(ctx, models.TestRunRecord{}), ErrMissingKey)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, sampleRecord("1-smoke", "smoke")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	records, err := reopened.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "smoke", *records[0].SuiteName)
}

func TestMemoryStore_ScanHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	log := logger.Nop()
	ctx := context.Background()

	mem, err := Open(ctx, &config.StoreConfig{Kind: config.StoreMemory}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	lite, err := Open(ctx, &config.StoreConfig{
		Kind:   config.StoreSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "open.db")},
	}, log)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, lite)
	t.Cleanup(func() { _ = lite.(*SQLiteStore).Close() })

	_, err = Open(ctx, &config.StoreConfig{Kind: "redis"}, log)
	assert.ErrorContains(t, err, "unsupported store kind")
}
