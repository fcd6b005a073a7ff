package api

import (
	"strings"

	"sprout/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UpdateEmailRequest struct {
	Email *string `json:"email"`
}

// GetUserProfileHandler returns the current user's profile information
func GetUserProfileHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		user, err := d.Store.GetUser(c.Context(), userID)
		if err != nil {
			return storeError(err, "User")
		}

		profile := fiber.Map{
			"id":         user.ID,
			"username":   user.Username,
			"created_at": user.CreatedAt,
			"email":      nil,
			"latitude":   user.Latitude,
			"longitude":  user.Longitude,
		}
		if user.Email != "" {
			profile["email"] = user.Email
		}

		return c.JSON(profile)
	}
}

// UpdateUserEmailHandler updates the user's email address
func UpdateUserEmailHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		var req UpdateEmailRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		email := ""
		if req.Email != nil {
			email = strings.TrimSpace(*req.Email)
		}
		if email != "" && (len(email) < 3 || len(email) > 254 || !strings.Contains(email, "@")) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid email format")
		}

		if err := d.Store.UpdateEmail(c.Context(), userID, email); err != nil {
			return storeError(err, "User")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Email updated successfully",
		})
	}
}

// UpdateLocationHandler stores the coordinates used for weather. Sending
// both as null clears them.
func UpdateLocationHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		var req models.UpdateLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if (req.Latitude == nil) != (req.Longitude == nil) {
			return fiber.NewError(fiber.StatusBadRequest, "Latitude and longitude must be set together")
		}
		if req.Latitude != nil {
			if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
				return fiber.NewError(fiber.StatusBadRequest, "Coordinates out of range")
			}
		}

		if err := d.Store.UpdateLocation(c.Context(), userID, req.Latitude, req.Longitude); err != nil {
			return storeError(err, "User")
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"latitude":  req.Latitude,
			"longitude": req.Longitude,
		})
	}
}
