package api

import (
	"net/url"

	"github.com/lei/test-results/internal/models"
)

// parseRunFilter reads the optional equality filters from query parameters
func parseRunFilter(q url.Values) models.RunFilter {
	return models.RunFilter{
		Status:      q.Get("status"),
		Environment: q.Get("environment"),
		TriggeredBy: q.Get("triggered_by"),
	}
}
