package feeds

import (
	"campusvoice/models"
)

// Empty-feed copy. Author scoping takes priority over filter scoping.
const (
	msgNoAuthored = "You haven't reported any issues yet."
	msgNoMatches  = "No issues found matching your filters."
	msgNoIssues   = "No issues yet. Be the first to report one!"
)

// EmptyMessage picks the message shown when a load returns zero issues.
func EmptyMessage(sel models.FilterSelection) string {
	if sel.AuthorID != "" {
		return msgNoAuthored
	}
	if len(sel.Schools) > 0 || len(sel.Categories) > 0 || sel.HasSearch() {
		return msgNoMatches
	}
	return msgNoIssues
}
