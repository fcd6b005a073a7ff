package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sprout/internal/models"

	"github.com/mattn/go-sqlite3"
)

// TaskFilter narrows ListTasks. DueOnOrBefore is a YYYY-MM-DD bound.
type TaskFilter struct {
	PlantID       int
	OpenOnly      bool
	DueOnOrBefore string
}

// Snooze is the full write set of one snooze: the task's new due date and
// reason, plus the plant's widened water cadence when it changed.
type Snooze struct {
	TaskID     int
	PlantID    int
	Due        string
	Reason     string
	WaterEvery *string
}

const taskColumns = `t.id, t.plant_id, p.nickname, t.type, t.due_date, t.completed_at, t.snooze_reason`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var typ string
	var completed any
	var reason sql.NullString
	if err := row.Scan(&t.ID, &t.PlantID, &t.PlantName, &typ, &t.Due, &completed, &reason); err != nil {
		return models.Task{}, err
	}
	t.Type = models.CareType(typ)
	t.CompletedAt = timePtr(completed)
	t.SnoozeReason = reason.String
	return t, nil
}

// ListTasks returns the user's tasks ordered by due date. Tasks of archived
// plants are left out.
func (s *Store) ListTasks(ctx context.Context, userID int, f TaskFilter) ([]models.Task, error) {
	where := []string{"p.user_id = ?", "p.archived_at IS NULL"}
	args := []any{userID}
	if f.PlantID != 0 {
		where = append(where, "t.plant_id = ?")
		args = append(args, f.PlantID)
	}
	if f.OpenOnly {
		where = append(where, "t.completed_at IS NULL")
	}
	if f.DueOnOrBefore != "" {
		where = append(where, "t.due_date <= ?")
		args = append(args, f.DueOnOrBefore)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
		FROM tasks t JOIN plants p ON p.id = t.plant_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY t.due_date ASC, t.id ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns an open task owned by userID. Completed tasks are reported
// as ErrNotFound: nothing may act on them any more.
func (s *Store) GetTask(ctx context.Context, userID, taskID int) (models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+`
		FROM tasks t JOIN plants p ON p.id = t.plant_id
		WHERE t.id = ? AND p.user_id = ? AND t.completed_at IS NULL`,
		taskID, userID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

// InsertTasks adds open tasks, skipping any (plant, type, due) triple that
// already exists; a concurrent generator winning the race is not an error.
// It returns only the rows this call inserted.
func (s *Store) InsertTasks(ctx context.Context, tasks []models.Task) ([]models.Task, error) {
	if len(tasks) == 0 {
		return []models.Task{}, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks (plant_id, type, due_date) VALUES (?, ?, ?)
		ON CONFLICT(plant_id, type, due_date) DO NOTHING`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	inserted := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		res, err := stmt.ExecContext(ctx, t.PlantID, string(t.Type), t.Due)
		if err != nil {
			return nil, fmt.Errorf("insert task plant=%d type=%s due=%s: %w", t.PlantID, t.Type, t.Due, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		t.ID = int(id)
		inserted = append(inserted, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inserted, nil
}

// CompleteTask closes an open task and appends the matching care event in
// one transaction. Completing twice yields ErrNotFound.
func (s *Store) CompleteTask(ctx context.Context, userID, taskID int, at time.Time) (models.CareEvent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CareEvent{}, err
	}
	defer tx.Rollback()

	var plantID int
	var typ string
	err = tx.QueryRowContext(ctx,
		`SELECT t.plant_id, t.type FROM tasks t JOIN plants p ON p.id = t.plant_id
		WHERE t.id = ? AND p.user_id = ? AND t.completed_at IS NULL`,
		taskID, userID,
	).Scan(&plantID, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CareEvent{}, ErrNotFound
	}
	if err != nil {
		return models.CareEvent{}, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE tasks SET completed_at = ? WHERE id = ? AND completed_at IS NULL",
		at.UTC(), taskID,
	)
	if err != nil {
		return models.CareEvent{}, err
	}
	if err := expectOne(res); err != nil {
		return models.CareEvent{}, err
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO care_events (plant_id, type, created_at) VALUES (?, ?, ?)",
		plantID, typ, at.UTC(),
	)
	if err != nil {
		return models.CareEvent{}, fmt.Errorf("log care event for task %d: %w", taskID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.CareEvent{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.CareEvent{}, err
	}
	return models.CareEvent{ID: int(id), PlantID: plantID, Type: typ, CreatedAt: at}, nil
}

// SnoozeTask applies s atomically. The task must still be open.
func (s *Store) SnoozeTask(ctx context.Context, userID int, sn Snooze) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET due_date = ?, snooze_reason = ?
		WHERE id = ? AND completed_at IS NULL
			AND plant_id IN (SELECT id FROM plants WHERE user_id = ?)`,
		sn.Due, nullString(sn.Reason), sn.TaskID, userID,
	)
	switch {
	case isUniqueViolation(err):
		// The plant already has this care type on the new day; that task
		// stands in for the snoozed one.
		res, err = tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND completed_at IS NULL", sn.TaskID)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}

	if sn.WaterEvery != nil {
		_, err = tx.ExecContext(ctx,
			"UPDATE plants SET water_every = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?",
			*sn.WaterEvery, sn.PlantID, userID,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
