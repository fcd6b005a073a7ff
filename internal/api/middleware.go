package api

import (
	"errors"
	"log"
	"strings"

	"sprout/internal/auth"
	"sprout/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)

		return c.Next()
	}
}

// RequestID tags every request with a UUID in X-Request-ID.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Generator: uuid.NewString,
	})
}

// CurrentUser returns the id AuthMiddleware attached to the request.
func CurrentUser(c *fiber.Ctx) (int, error) {
	id, ok := c.Locals("userID").(int)
	if !ok || id <= 0 {
		return 0, auth.ErrUnauthorized
	}
	return id, nil
}

// ErrorHandler renders every error as {"error": msg}. Storage outages are
// flagged retryable.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	body := fiber.Map{"error": err.Error()}
	if code == fiber.StatusServiceUnavailable {
		body["retryable"] = true
	}
	return c.Status(code).JSON(body)
}

// storeError maps repository errors to HTTP errors. what names the missing
// resource in 404 messages.
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	case errors.Is(err, auth.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	default:
		log.Printf("storage error: %v", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "Storage temporarily unavailable")
	}
}

func paramID(c *fiber.Ctx, name, what string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}
