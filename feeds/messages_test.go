package feeds

import (
	"testing"

	"campusvoice/models"

	"github.com/stretchr/testify/assert"
)

func TestEmptyMessage(t *testing.T) {
	tests := []struct {
		name     string
		sel      models.FilterSelection
		expected string
	}{
		{
			name:     "no filters",
			sel:      models.FilterSelection{},
			expected: msgNoIssues,
		},
		{
			name:     "school filter",
			sel:      models.FilterSelection{Schools: []string{"CCNY"}},
			expected: msgNoMatches,
		},
		{
			name:     "category filter",
			sel:      models.FilterSelection{Categories: []string{"Facilities"}},
			expected: msgNoMatches,
		},
		{
			name:     "search query",
			sel:      models.FilterSelection{SearchQuery: "wifi"},
			expected: msgNoMatches,
		},
		{
			name:     "author scope",
			sel:      models.FilterSelection{AuthorID: "alice"},
			expected: msgNoAuthored,
		},
		{
			name: "author scope wins over other filters",
			sel: models.FilterSelection{
				AuthorID:    "alice",
				Schools:     []string{"CCNY"},
				SearchQuery: "wifi",
			},
			expected: msgNoAuthored,
		},
		{
			name:     "whitespace search does not count as filtering",
			sel:      models.FilterSelection{SearchQuery: "   "},
			expected: msgNoIssues,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EmptyMessage(tt.sel))
		})
	}
}
