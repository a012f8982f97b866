package view

import (
	"context"
	"errors"

	"github.com/lei/test-results/internal/aggregate"
	"github.com/lei/test-results/internal/models"
)

// ErrRunNotFound is returned by LoadRun when no run matches the identifier
var ErrRunNotFound = errors.New("test run not found")

// RunSource lists stored test runs. The service and the HTTP client
// both satisfy it.
type RunSource interface {
	ListTestRuns(ctx context.Context, filter models.RunFilter) ([]models.TestRunRecord, error)
}

// LoadRuns fetches every record and normalizes those matching filter for
// display. Placeholders are assigned over the unfiltered list so that an
// identifier shown here resolves to the same run in LoadRun.
func LoadRuns(ctx context.Context, src RunSource, filter models.RunFilter) ([]aggregate.Run, error) {
	records, err := src.ListTestRuns(ctx, models.RunFilter{})
	if err != nil {
		return nil, err
	}
	if filter.IsZero() {
		return aggregate.Normalize(records), nil
	}
	return aggregate.NormalizeWhere(records, filter.Matches), nil
}

// LoadRun fetches every record and locates id by stored identifier or
// by positional placeholder
func LoadRun(ctx context.Context, src RunSource, id string) (aggregate.Run, error) {
	runs, err := LoadRuns(ctx, src, models.RunFilter{})
	if err != nil {
		return aggregate.Run{}, err
	}

	run, ok := aggregate.FindByID(id, runs)
	if !ok {
		return aggregate.Run{}, ErrRunNotFound
	}
	return run, nil
}
