package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"campusvoice/models"
	"campusvoice/query"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

var issueColumns = []string{
	"issues.id", "issues.title", "issues.description", "issues.school",
	"issues.category", "issues.status", "issues.image_url", "issues.upvotes",
	"issues.downvotes", "issues.created_at", "issues.updated_at",
	"issues.author_id",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(row rowScanner) (models.Issue, error) {
	var issue models.Issue
	var imageURL sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&issue.ID, &issue.Title, &issue.Description, &issue.School,
		&issue.Category, &issue.Status, &imageURL, &issue.Upvotes,
		&issue.Downvotes, &createdAt, &updatedAt, &issue.AuthorID,
	)
	if err != nil {
		return issue, err
	}

	issue.ImageURL = imageURL.String
	issue.CreatedAt = time.Unix(createdAt, 0).UTC()
	issue.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return issue, nil
}

// QueryIssues selects all issue fields matching the filter selection. All
// predicates combine conjunctively. Results come back ordered by recency
// only when no search query is active; the search path leaves ordering to
// the caller's relevance ranking.
func (s *Store) QueryIssues(ctx context.Context, sel models.FilterSelection) ([]models.Issue, error) {
	log.WithFields(log.Fields{
		"schools":    sel.Schools,
		"categories": sel.Categories,
		"authorId":   sel.AuthorID,
		"search":     sel.SearchQuery,
	}).Debug("Querying issues")

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(issueColumns...).From("issues")

	filters := []query.FilterStrategy{
		&SchoolFilter{Schools: sel.Schools},
		&CategoryFilter{Categories: sel.Categories},
		&AuthorFilter{AuthorID: sel.AuthorID},
		&TitleSearchFilter{Query: sel.SearchQuery},
	}
	for _, filter := range filters {
		filter.ApplyFilter(sb)
	}

	if strings.TrimSpace(sel.SearchQuery) == "" {
		sb.OrderBy("issues.created_at").Desc()
	}

	sqlStr, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify("query issues", err)
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, classify("scan issue", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("query issues", err)
	}

	return issues, nil
}

// GetIssue fetches a single issue by id.
func (s *Store) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(issueColumns...).From("issues").Where(sb.Equal("issues.id", id))
	sqlStr, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	issue, err := scanIssue(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("get issue", err)
	}
	return &issue, nil
}

// CreateIssue inserts a new issue row.
func (s *Store) CreateIssue(ctx context.Context, issue models.Issue) error {
	log.WithFields(log.Fields{
		"id":       issue.ID,
		"school":   issue.School,
		"category": issue.Category,
	}).Info("Creating issue")

	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("issues").
		Cols("id", "title", "description", "school", "category", "status",
			"image_url", "upvotes", "downvotes", "created_at", "updated_at",
			"author_id").
		Values(issue.ID, issue.Title, issue.Description, issue.School,
			issue.Category, string(issue.Status), nullable(issue.ImageURL),
			issue.Upvotes, issue.Downvotes, issue.CreatedAt.Unix(),
			issue.UpdatedAt.Unix(), issue.AuthorID)

	sqlStr, args := ib.BuildWithFlavor(sqlbuilder.SQLite)
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return classify("insert issue", err)
	}
	return nil
}

// UpdateStatus moves an issue to a new status and bumps updated_at.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update("issues").
		Set(
			ub.Assign("status", string(status)),
			ub.Assign("updated_at", time.Now().Unix()),
		).
		Where(ub.Equal("id", id))

	sqlStr, args := ub.BuildWithFlavor(sqlbuilder.SQLite)
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return classify("update status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIssue removes an issue. Deleting an id that does not exist returns
// ErrNotFound and changes nothing.
func (s *Store) DeleteIssue(ctx context.Context, id string) error {
	log.WithFields(log.Fields{"id": id}).Info("Deleting issue")

	res, err := s.db.ExecContext(ctx, "DELETE FROM issues WHERE id = ?", id)
	if err != nil {
		return classify("delete issue", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchTitles returns the titles of issues whose title contains the query,
// case-insensitively, together with their issues, for suggestion ranking.
func (s *Store) SearchTitles(ctx context.Context, q string, limit int) ([]models.Issue, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(issueColumns...).From("issues")
	(&TitleSearchFilter{Query: q}).ApplyFilter(sb)
	if limit > 0 {
		sb.Limit(limit)
	}

	sqlStr, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify("search titles", err)
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, classify("scan issue", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("search titles", err)
	}
	return issues, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
