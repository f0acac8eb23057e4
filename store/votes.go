package store

import (
	"context"
	"database/sql"
	"fmt"

	"campusvoice/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// GetUserVotes batch-fetches one user's votes for a set of issue ids,
// returned as issue id -> vote type. Issues with no vote are absent from
// the map.
func (s *Store) GetUserVotes(ctx context.Context, userID string, issueIDs []string) (map[string]models.VoteType, error) {
	votes := make(map[string]models.VoteType)
	if userID == "" || len(issueIDs) == 0 {
		return votes, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("issue_id", "vote_type").From("issue_votes")
	sb.Where(sb.Equal("user_id", userID))
	sb.Where(sb.In("issue_id", asAny(issueIDs)...))

	sqlStr, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify("get user votes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var issueID string
		var voteType models.VoteType
		if err := rows.Scan(&issueID, &voteType); err != nil {
			return nil, classify("scan vote", err)
		}
		votes[issueID] = voteType
	}
	if err := rows.Err(); err != nil {
		return nil, classify("get user votes", err)
	}
	return votes, nil
}

// SetVote replaces the user's vote on an issue with voteType and keeps the
// denormalized counters on the issue row consistent, all in one transaction.
// Passing an empty voteType removes the vote.
func (s *Store) SetVote(ctx context.Context, issueID, userID string, voteType models.VoteType) error {
	log.WithFields(log.Fields{
		"issueId": issueID,
		"userId":  userID,
		"vote":    voteType,
	}).Info("Setting vote")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin vote tx", err)
	}
	defer tx.Rollback()

	// Clear any existing vote and its counter contribution
	var existing models.VoteType
	err = tx.QueryRowContext(ctx,
		"SELECT vote_type FROM issue_votes WHERE issue_id = ? AND user_id = ?",
		issueID, userID,
	).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return classify("read existing vote", err)
	}

	if existing != "" {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM issue_votes WHERE issue_id = ? AND user_id = ?",
			issueID, userID,
		); err != nil {
			return classify("delete vote", err)
		}
		if err := adjustCounter(ctx, tx, issueID, existing, -1); err != nil {
			return err
		}
	}

	if voteType != "" {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO issue_votes (issue_id, user_id, vote_type) VALUES (?, ?, ?)",
			issueID, userID, string(voteType),
		); err != nil {
			return classify("insert vote", err)
		}
		if err := adjustCounter(ctx, tx, issueID, voteType, 1); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("commit vote tx", err)
	}
	return nil
}

// RemoveVote clears the user's vote on an issue, if any.
func (s *Store) RemoveVote(ctx context.Context, issueID, userID string) error {
	return s.SetVote(ctx, issueID, userID, "")
}

func adjustCounter(ctx context.Context, tx *sql.Tx, issueID string, voteType models.VoteType, delta int) error {
	column := "upvotes"
	if voteType == models.VoteDown {
		column = "downvotes"
	}
	stmt := fmt.Sprintf("UPDATE issues SET %s = %s + ? WHERE id = ?", column, column)
	if _, err := tx.ExecContext(ctx, stmt, delta, issueID); err != nil {
		return classify("adjust vote counter", err)
	}
	return nil
}
