package store

import (
	"fmt"
	"strings"

	"campusvoice/query"

	"github.com/huandu/go-sqlbuilder"
)

// SchoolFilter restricts issues to a set of school codes. An empty set means
// no restriction.
type SchoolFilter struct {
	Schools []string
}

func (f *SchoolFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if len(f.Schools) > 0 {
		sb.Where(sb.In("issues.school", asAny(f.Schools)...))
	}
}

// CategoryFilter restricts issues to a set of category names.
type CategoryFilter struct {
	Categories []string
}

func (f *CategoryFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if len(f.Categories) > 0 {
		sb.Where(sb.In("issues.category", asAny(f.Categories)...))
	}
}

// AuthorFilter restricts issues to a single author, used for the
// "my issues" view.
type AuthorFilter struct {
	AuthorID string
}

func (f *AuthorFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if f.AuthorID != "" {
		sb.Where(sb.Equal("issues.author_id", f.AuthorID))
	}
}

// TitleSearchFilter restricts issues to those whose title contains the query,
// case-insensitively. This is a pre-filter only; relevance ranking happens in
// memory after enrichment.
type TitleSearchFilter struct {
	Query string
}

func (f *TitleSearchFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return
	}
	pattern := "%" + strings.ToLower(q) + "%"
	sb.Where(fmt.Sprintf("LOWER(issues.title) LIKE %s", sb.Args.Add(pattern)))
}

func asAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var _ query.FilterStrategy = (*SchoolFilter)(nil)
var _ query.FilterStrategy = (*CategoryFilter)(nil)
var _ query.FilterStrategy = (*AuthorFilter)(nil)
var _ query.FilterStrategy = (*TitleSearchFilter)(nil)
