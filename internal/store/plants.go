package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sprout/internal/models"
)

const plantColumns = `
	p.id, p.user_id, p.nickname,
	COALESCE(p.species_scientific, ''), COALESCE(p.species_common, ''),
	COALESCE(p.water_every, ''), COALESCE(p.fert_every, ''), COALESCE(p.care_notes, ''),
	p.archived_at, p.created_at, p.updated_at,
	(SELECT MAX(e.created_at) FROM care_events e WHERE e.plant_id = p.id AND e.type = 'water'),
	(SELECT MAX(e.created_at) FROM care_events e WHERE e.plant_id = p.id AND e.type = 'fertilize')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlant(row rowScanner) (models.Plant, error) {
	var p models.Plant
	var archived, created, updated, lastWater, lastFert any
	err := row.Scan(
		&p.ID, &p.UserID, &p.Nickname,
		&p.SpeciesScientific, &p.SpeciesCommon,
		&p.WaterEvery, &p.FertEvery, &p.CareNotes,
		&archived, &created, &updated, &lastWater, &lastFert,
	)
	if err != nil {
		return models.Plant{}, err
	}
	p.ArchivedAt = timePtr(archived)
	if t, ok := ParseTime(created); ok {
		p.CreatedAt = t
	}
	if t, ok := ParseTime(updated); ok {
		p.UpdatedAt = t
	}
	p.LastWateredAt = timePtr(lastWater)
	p.LastFertilizedAt = timePtr(lastFert)
	return p, nil
}

// CreatePlant inserts p for p.UserID and returns the stored row.
func (s *Store) CreatePlant(ctx context.Context, p models.Plant) (models.Plant, error) {
	created := p.CreatedAt.UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO plants (user_id, nickname, species_scientific, species_common, water_every, fert_every, care_notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Nickname, nullString(p.SpeciesScientific), nullString(p.SpeciesCommon),
		nullString(p.WaterEvery), nullString(p.FertEvery), nullString(p.CareNotes), created, created,
	)
	if err != nil {
		return models.Plant{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Plant{}, err
	}
	return s.GetPlant(ctx, p.UserID, int(id))
}

// GetPlant returns the plant, archived or not, if userID owns it.
func (s *Store) GetPlant(ctx context.Context, userID, plantID int) (models.Plant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+plantColumns+` FROM plants p WHERE p.id = ? AND p.user_id = ?`,
		plantID, userID,
	)
	p, err := scanPlant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plant{}, ErrNotFound
	}
	return p, err
}

// ListPlants returns the user's active plants ordered by creation.
func (s *Store) ListPlants(ctx context.Context, userID int) ([]models.Plant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+plantColumns+` FROM plants p
		WHERE p.user_id = ? AND p.archived_at IS NULL
		ORDER BY p.created_at ASC, p.id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plants := []models.Plant{}
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		plants = append(plants, p)
	}
	return plants, rows.Err()
}

// UpdatePlant writes the editable fields of p.
func (s *Store) UpdatePlant(ctx context.Context, p models.Plant, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plants SET nickname = ?, species_scientific = ?, species_common = ?,
			water_every = ?, fert_every = ?, care_notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		p.Nickname, nullString(p.SpeciesScientific), nullString(p.SpeciesCommon),
		nullString(p.WaterEvery), nullString(p.FertEvery), nullString(p.CareNotes), now.UTC(),
		p.ID, p.UserID,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ArchivePlant soft-deletes a plant. Its events and tasks are kept.
func (s *Store) ArchivePlant(ctx context.Context, userID, plantID int, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plants SET archived_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND archived_at IS NULL`,
		at.UTC(), at.UTC(), plantID, userID,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
