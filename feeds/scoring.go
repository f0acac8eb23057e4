package feeds

import (
	"sort"
	"strings"

	"campusvoice/models"
)

// Relevance tiers. Scores are additive: an exact title match also satisfies
// the prefix and contains tiers.
const (
	scoreExactTitle       = 8
	scoreTitlePrefix      = 5
	scoreTitleContains    = 3
	scoreDescriptionMatch = 1
)

// relevanceScore scores an issue against a search query, case-insensitively.
func relevanceScore(title, description, query string) int {
	q := strings.ToLower(query)
	t := strings.ToLower(title)
	d := strings.ToLower(description)

	score := 0
	if t == q {
		score += scoreExactTitle
	}
	if strings.HasPrefix(t, q) {
		score += scoreTitlePrefix
	}
	if strings.Contains(t, q) {
		score += scoreTitleContains
	}
	if strings.Contains(d, q) {
		score += scoreDescriptionMatch
	}
	return score
}

// rankByRelevance orders rows by descending relevance score, breaking ties
// by most recent created_at. It is only called when a search query is
// active; recency-ordered feeds keep their store ordering untouched.
func rankByRelevance(rows []models.FeedIssue, query string) {
	scores := make(map[string]int, len(rows))
	for _, row := range rows {
		scores[row.ID] = relevanceScore(row.Title, row.Description, query)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := scores[rows[i].ID], scores[rows[j].ID]
		if si != sj {
			return si > sj
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}
