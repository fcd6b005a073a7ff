package store

import (
	"context"
	"database/sql"
	"errors"

	"sprout/internal/models"
)

// GetUser loads the profile fields of a user.
func (s *Store) GetUser(ctx context.Context, userID int) (models.User, error) {
	var u models.User
	var email sql.NullString
	var lat, lon sql.NullFloat64
	var created any
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, latitude, longitude, created_at FROM users WHERE id = ?",
		userID,
	).Scan(&u.ID, &u.Username, &email, &lat, &lon, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.Email = email.String
	if lat.Valid && lon.Valid {
		u.Latitude = &lat.Float64
		u.Longitude = &lon.Float64
	}
	if t, ok := ParseTime(created); ok {
		u.CreatedAt = t
	}
	return u, nil
}

// UpdateLocation stores the coordinates used for weather lookups. Nil clears them.
func (s *Store) UpdateLocation(ctx context.Context, userID int, lat, lon *float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET latitude = ?, longitude = ? WHERE id = ?",
		lat, lon, userID,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// UpdateEmail sets the contact address. An empty string clears it.
func (s *Store) UpdateEmail(ctx context.Context, userID int, email string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET email = ? WHERE id = ?", nullString(email), userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}
