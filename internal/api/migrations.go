package api

import (
	"database/sql"
	"fmt"
)

// columnExists checks if a column exists on a given table (SQLite PRAGMA table_info)
func columnExists(db *sql.DB, table string, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var cid int
	var name string
	var ctype string
	var notnull int
	var dflt sql.NullString
	var pk int

	for rows.Next() {
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

type columnMigration struct {
	table, column, ddl string
}

// Columns added after the first schema release.
var columnMigrations = []columnMigration{
	{"users", "email", "TEXT"},
	{"users", "latitude", "REAL"},
	{"users", "longitude", "REAL"},
	{"plants", "archived_at", "DATETIME"},
	{"plants", "care_notes", "TEXT"},
	{"tasks", "snooze_reason", "TEXT"},
	{"refresh_tokens", "ttl_days", "INTEGER NOT NULL DEFAULT 7"},
}

// MigrateAddColumns brings older databases up to the current columns. It is idempotent.
func MigrateAddColumns(db *sql.DB) error {
	for _, m := range columnMigrations {
		exists, err := columnExists(db, m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.column, m.ddl)); err != nil {
			return fmt.Errorf("add %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

// MigrateNormalizeCareTypes lower-cases care types written by older clients
// (e.g. "Water") so scheduling and dedup see one spelling. It is idempotent.
func MigrateNormalizeCareTypes(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE care_events SET type = lower(trim(type)) WHERE type != lower(trim(type))"); err != nil {
		return err
	}
	// Skip task rows whose normalised form would collide with an existing task.
	if _, err := tx.Exec(`UPDATE OR IGNORE tasks SET type = lower(trim(type)) WHERE type != lower(trim(type))`); err != nil {
		return err
	}

	return tx.Commit()
}
