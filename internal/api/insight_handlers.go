package api

import (
	"github.com/gofiber/fiber/v2"
)

// ForecastHandler returns the seven-day what-if calendar.
func ForecastHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		days, err := d.Planner.Forecast(c.Context(), userID)
		if err != nil {
			return storeError(err, "User")
		}
		return c.JSON(days)
	}
}

// DashboardHandler returns the signed-in user's care dashboard.
func DashboardHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		dash, err := d.Planner.Dashboard(c.Context(), userID)
		if err != nil {
			return storeError(err, "User")
		}
		return c.JSON(dash)
	}
}

// DemoDashboardHandler serves the dashboard over the built-in showcase garden.
func DemoDashboardHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d.Demo == nil {
			return fiber.NewError(fiber.StatusNotFound, "Demo not available")
		}
		dash, err := d.Planner.DemoDashboard(c.Context(), d.Demo)
		if err != nil {
			return storeError(err, "Demo")
		}
		return c.JSON(dash)
	}
}
