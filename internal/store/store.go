// Package store is the SQLite-backed repository for plants, care events and
// tasks. Every read and write is scoped to the owning user.
package store

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound covers rows that are missing, owned by someone else, or (for
	// tasks) already completed.
	ErrNotFound = errors.New("store: not found")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for the auth tables, which are managed by the api package.
func (s *Store) DB() *sql.DB {
	return s.db
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTime reads timestamps that go-sqlite3 hands back untyped, e.g. the
// result of MAX(created_at) which carries no declared column type.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool reads SQLite boolean columns, which may come back as int64, bool
// or text depending on how the row was written.
func ParseBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int64:
		return t != 0, true
	case int:
		return t != 0, true
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		switch s {
		case "":
			return false, false
		case "true":
			return true, true
		case "false":
			return false, true
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n != 0, true
		}
		return false, false
	case []byte:
		return ParseBool(string(t))
	default:
		return false, false
	}
}

func timePtr(v any) *time.Time {
	if t, ok := ParseTime(v); ok {
		return &t
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
