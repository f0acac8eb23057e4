package store

import (
	"context"
	"database/sql"

	"campusvoice/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

// GetProfiles batch-fetches display profiles by id.
func (s *Store) GetProfiles(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "username", "firstname", "lastname").From("profiles")
	sb.Where(sb.In("id", asAny(ids)...))

	sqlStr, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify("get profiles", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		var username, firstname, lastname sql.NullString
		if err := rows.Scan(&p.ID, &username, &firstname, &lastname); err != nil {
			return nil, classify("scan profile", err)
		}
		p.Username = username.String
		p.Firstname = firstname.String
		p.Lastname = lastname.String
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("get profiles", err)
	}
	return profiles, nil
}

// CreateProfile inserts a display profile row.
func (s *Store) CreateProfile(ctx context.Context, p models.Profile) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("profiles").
		Cols("id", "username", "firstname", "lastname").
		Values(p.ID, nullable(p.Username), nullable(p.Firstname), nullable(p.Lastname))

	sqlStr, args := ib.BuildWithFlavor(sqlbuilder.SQLite)
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return classify("insert profile", err)
	}
	return nil
}
