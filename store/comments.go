package store

import (
	"context"
	"time"

	"campusvoice/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// ListComments returns an issue's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, issueID string) ([]models.Comment, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "issue_id", "author_id", "content", "created_at").
		From("issue_comments").
		Where(sb.Equal("issue_id", issueID))
	sb.OrderBy("created_at").Asc()

	sqlStr, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify("list comments", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.IssueID, &c.AuthorID, &c.Content, &createdAt); err != nil {
			return nil, classify("scan comment", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list comments", err)
	}
	return comments, nil
}

// CreateComment inserts a comment row.
func (s *Store) CreateComment(ctx context.Context, c models.Comment) error {
	log.WithFields(log.Fields{
		"issueId": c.IssueID,
		"author":  c.AuthorID,
	}).Info("Creating comment")

	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("issue_comments").
		Cols("id", "issue_id", "author_id", "content", "created_at").
		Values(c.ID, c.IssueID, c.AuthorID, c.Content, c.CreatedAt.Unix())

	sqlStr, args := ib.BuildWithFlavor(sqlbuilder.SQLite)
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return classify("insert comment", err)
	}
	return nil
}
