package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lei/test-results/internal/models"
)

func TestParseRunFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.RunFilter
	}{
		{"no filters", "", models.RunFilter{}},
		{"status", "status=FAILED", models.RunFilter{Status: "FAILED"}},
		{"environment", "environment=qa", models.RunFilter{Environment: "qa"}},
		{"triggered_by", "triggered_by=jenkins", models.RunFilter{TriggeredBy: "jenkins"}},
		{"combined", "status=passed&environment=prod&triggered_by=alice",
			models.RunFilter{Status: "passed", Environment: "prod", TriggeredBy: "alice"}},
		{"empty value ignored", "status=", models.RunFilter{}},
		{"first value wins", "status=passed&status=failed", models.RunFilter{Status: "passed"}},
		{"unknown params ignored", "suite_name=smoke&limit=5", models.RunFilter{}},
		{"escaped value", "triggered_by=ci%20bot", models.RunFilter{TriggeredBy: "ci bot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			got := parseRunFilter(q)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.IsZero(), got.IsZero())
		})
	}
}
