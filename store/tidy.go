package store

import (
	"context"
	"time"

	"campusvoice/models"

	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Tidy removes closed issues older than the retention window, together with
// their votes and comments (cascade), plus any expired sessions.
func (s *Store) Tidy(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()

	deleteIssues := sb.NewDeleteBuilder()
	sqlStr, args := deleteIssues.DeleteFrom("issues").
		Where(
			deleteIssues.Equal("status", string(models.StatusClosed)),
			deleteIssues.LessEqualThan("updated_at", cutoff),
		).
		BuildWithFlavor(sb.SQLite)

	log.WithFields(log.Fields{
		"sql":  sqlStr,
		"args": args,
	}).Info("Tidying database")

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, classify("tidy issues", err)
	}
	removed, _ := res.RowsAffected()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", time.Now().Unix(),
	); err != nil {
		return removed, classify("tidy sessions", err)
	}

	return removed, nil
}
