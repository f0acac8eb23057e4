package store

import (
	"context"
	"database/sql"
	"time"

	"campusvoice/models"
)

// CreateSession stores an opaque session token for a user.
func (s *Store) CreateSession(ctx context.Context, session models.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		session.Token, session.UserID, session.ExpiresAt.Unix(),
	)
	return classify("insert session", err)
}

// GetSession resolves a token to a session. Expired or unknown tokens
// return ErrNotFound.
func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at FROM sessions WHERE token = ?",
		token,
	).Scan(&session.Token, &session.UserID, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("get session", err)
	}

	session.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &session, nil
}

// DeleteSession signs the token out. Deleting an unknown token is a no-op.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return classify("delete session", err)
}
