package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize opens (or creates) the SQLite database at dbPath and ensures the
// schema exists. encryptionKey is applied with PRAGMA key when non-empty,
// which needs a SQLCipher-linked build.
func Initialize(dbPath string, encryptionKey string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite serialises writers anyway; one connection also keeps ":memory:"
	// databases from splitting across pool connections.
	db.SetMaxOpenConns(1)

	if encryptionKey != "" {
		esc := strings.ReplaceAll(encryptionKey, "'", "''")
		if _, err := db.Exec(fmt.Sprintf("PRAGMA key = '%s';", esc)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set database encryption key: %w", err)
		}
		_, _ = db.Exec("PRAGMA cipher_compatibility = 4;")
		var count int
		row := db.QueryRow("SELECT count(*) FROM sqlite_master;")
		if err := row.Scan(&count); err != nil {
			db.Close()
			return nil, fmt.Errorf("database inaccessible with provided encryption key: %w", err)
		}
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		email TEXT,
		latitude REAL,
		longitude REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS plants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		nickname TEXT NOT NULL,
		species_scientific TEXT,
		species_common TEXT,
		water_every TEXT,
		fert_every TEXT,
		care_notes TEXT,
		archived_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	-- Append-only care history; rows are only ever inserted or deleted one at a time.
	CREATE TABLE IF NOT EXISTS care_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plant_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		note TEXT,
		image_url TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (plant_id) REFERENCES plants(id) ON DELETE CASCADE
	);

	-- due_date is a plain YYYY-MM-DD string: a calendar day with no time of day.
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plant_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		due_date TEXT NOT NULL,
		completed_at DATETIME,
		snooze_reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(plant_id, type, due_date),
		FOREIGN KEY (plant_id) REFERENCES plants(id) ON DELETE CASCADE
	);

	-- Server-side refresh token store for rotating refresh tokens
	CREATE TABLE IF NOT EXISTS refresh_tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		ttl_days INTEGER NOT NULL DEFAULT 7,
		revoked BOOLEAN DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_plants_user_id ON plants(user_id);
	CREATE INDEX IF NOT EXISTS idx_care_events_plant_created ON care_events(plant_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_tasks_plant_id ON tasks(plant_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
	CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id);
	`

	_, err := db.Exec(schema)
	return err
}
