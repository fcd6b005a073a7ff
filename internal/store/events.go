package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"sprout/internal/models"
)

// EventFilter narrows ListEvents. Zero values mean "any".
type EventFilter struct {
	PlantID int
	Type    models.CareType
	Since   time.Time
}

// CreateEvent appends e to the history of a plant userID owns.
func (s *Store) CreateEvent(ctx context.Context, userID int, e models.CareEvent) (models.CareEvent, error) {
	var owner int
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM plants WHERE id = ?", e.PlantID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return models.CareEvent{}, ErrNotFound
	}
	if err != nil {
		return models.CareEvent{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO care_events (plant_id, type, note, image_url, created_at) VALUES (?, ?, ?, ?, ?)",
		e.PlantID, e.Type, e.Note, e.ImageURL, e.CreatedAt.UTC(),
	)
	if err != nil {
		return models.CareEvent{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.CareEvent{}, err
	}
	e.ID = int(id)
	return e, nil
}

// ListEvents returns the user's events newest-first.
func (s *Store) ListEvents(ctx context.Context, userID int, f EventFilter) ([]models.CareEvent, error) {
	where := []string{"p.user_id = ?"}
	args := []any{userID}
	if f.PlantID != 0 {
		where = append(where, "e.plant_id = ?")
		args = append(args, f.PlantID)
	}
	if f.Type != "" {
		where = append(where, "e.type = ?")
		args = append(args, string(f.Type))
	}
	if !f.Since.IsZero() {
		where = append(where, "e.created_at >= ?")
		args = append(args, f.Since.UTC())
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.plant_id, e.type, e.note, e.image_url, e.created_at
		FROM care_events e JOIN plants p ON p.id = e.plant_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY e.created_at DESC, e.id DESC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.CareEvent{}
	for rows.Next() {
		var e models.CareEvent
		var note, image sql.NullString
		var created any
		if err := rows.Scan(&e.ID, &e.PlantID, &e.Type, &note, &image, &created); err != nil {
			return nil, err
		}
		e.Note = stringPtr(note)
		e.ImageURL = stringPtr(image)
		if t, ok := ParseTime(created); ok {
			e.CreatedAt = t
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEvent removes exactly one event; no other row is touched.
func (s *Store) DeleteEvent(ctx context.Context, userID, eventID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM care_events
		WHERE id = ? AND plant_id IN (SELECT id FROM plants WHERE user_id = ?)`,
		eventID, userID,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}
