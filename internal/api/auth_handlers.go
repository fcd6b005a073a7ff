package api

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"sprout/internal/auth"
	"sprout/internal/models"

	"github.com/gofiber/fiber/v2"
)

const refreshCookie = "refresh_token"

func setRefreshCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   auth.CookieSecure,
		SameSite: "Lax",
		Path:     "/api/auth",
	})
}

// issueTokens mints an access token plus a stored refresh token and sets the
// refresh cookie.
func issueTokens(c *fiber.Ctx, db *sql.DB, userID int, username string, days int) (string, error) {
	accessToken, err := auth.GenerateToken(userID, username)
	if err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Failed to generate token")
	}
	refreshToken, err := auth.GenerateRefreshToken(userID, username, days)
	if err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Failed to generate refresh token")
	}

	expiresAt := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	if err := StoreRefreshToken(db, userID, refreshToken, expiresAt, days); err != nil {
		log.Printf("Failed to store refresh token for user %d: %v", userID, err)
		return "", fiber.NewError(fiber.StatusInternalServerError, "Failed to store refresh token")
	}
	setRefreshCookie(c, refreshToken, expiresAt)
	return accessToken, nil
}

func RegisterHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Username and password are required")
		}

		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
		}

		result, err := db.Exec(
			"INSERT INTO users (username, password_hash) VALUES (?, ?)",
			req.Username, hashedPassword,
		)
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, "Username already exists")
		}
		userID, _ := result.LastInsertId()

		token, err := issueTokens(c, db, int(userID), req.Username, auth.RefreshDays(req.Remember))
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
			Token: token,
			User:  models.User{ID: int(userID), Username: req.Username},
		})
	}
}

func LoginHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var user models.User
		err := db.QueryRow(
			"SELECT id, username, password_hash, COALESCE(email, '') FROM users WHERE username = ?",
			strings.TrimSpace(req.Username),
		).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email)
		if errors.Is(err, sql.ErrNoRows) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}
		if err != nil {
			return storeError(err, "User")
		}

		if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}

		token, err := issueTokens(c, db, user.ID, user.Username, auth.RefreshDays(req.Remember))
		if err != nil {
			return err
		}

		return c.JSON(models.AuthResponse{
			Token: token,
			User:  user,
		})
	}
}

// RefreshTokenHandler generates a new access token from a valid refresh token
// cookie and rotates the refresh token.
func RefreshTokenHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refreshToken := c.Cookies(refreshCookie)
		if refreshToken == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Refresh token not found")
		}

		claims, err := auth.ValidateRefreshToken(refreshToken)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
		}

		dbUserID, ttlDays, err := ValidateRefreshTokenInDB(db, refreshToken)
		if err != nil {
			log.Printf("Refresh token DB validation failed: %v", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Refresh token not valid")
		}
		if dbUserID != claims.UserID {
			return fiber.NewError(fiber.StatusUnauthorized, "Token user mismatch")
		}

		// Revoke first: a rotated token minted in the same second hashes the same
		// and is re-enabled by the store below.
		if err := RevokeRefreshToken(db, refreshToken); err != nil {
			log.Printf("Failed to revoke refresh token: %v", err)
		}
		token, err := issueTokens(c, db, claims.UserID, claims.Username, ttlDays)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"token": token,
		})
	}
}

// LogoutHandler revokes the refresh token and clears its cookie
func LogoutHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if old := c.Cookies(refreshCookie); old != "" {
			_ = RevokeRefreshToken(db, old) // best-effort
		}
		setRefreshCookie(c, "", time.Now().Add(-1*time.Hour))

		return c.JSON(fiber.Map{
			"message": "Logged out successfully",
		})
	}
}
