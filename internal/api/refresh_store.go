package api

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"sprout/internal/store"
)

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// StoreRefreshToken stores a refresh token hash in the database with expiry
func StoreRefreshToken(db *sql.DB, userID int, token string, expiresAt time.Time, ttlDays int) error {
	th := hashToken(token)
	// Identical tokens can be minted within the same second; keep one row and
	// refresh its metadata.
	_, err := db.Exec(
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at, ttl_days) VALUES (?, ?, ?, ?)
		ON CONFLICT(token_hash) DO UPDATE SET expires_at = excluded.expires_at, ttl_days = excluded.ttl_days, revoked = 0`,
		userID, th, expiresAt.UTC(), ttlDays,
	)
	return err
}

// ValidateRefreshTokenInDB checks that the token exists, is not revoked and
// not expired. It returns the owning user id and the token's TTL in days.
func ValidateRefreshTokenInDB(db *sql.DB, token string) (int, int, error) {
	var userID, ttlDays int
	var expiresAt, revoked any
	row := db.QueryRow("SELECT user_id, expires_at, revoked, ttl_days FROM refresh_tokens WHERE token_hash = ?", hashToken(token))
	if err := row.Scan(&userID, &expiresAt, &revoked, &ttlDays); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, errors.New("refresh token not found")
		}
		return 0, 0, err
	}

	r, ok := store.ParseBool(revoked)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected revoked type: %T", revoked)
	}
	if r {
		return 0, 0, errors.New("refresh token revoked")
	}
	// An unreadable expiry is not fatal: the JWT carries its own exp claim.
	if t, ok := store.ParseTime(expiresAt); ok && time.Now().After(t) {
		return 0, 0, errors.New("refresh token expired")
	}
	return userID, ttlDays, nil
}

// RevokeRefreshToken revokes a refresh token by token string
func RevokeRefreshToken(db *sql.DB, token string) error {
	_, err := db.Exec("UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?", hashToken(token))
	return err
}
