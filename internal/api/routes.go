package api

import (
	"database/sql"

	"sprout/internal/careplan"
	"sprout/internal/planner"
	"sprout/internal/species"
	"sprout/internal/store"

	"github.com/gofiber/fiber/v2"
)

// Deps carries everything the handlers need. Species and CarePlans may be
// nil; their endpoints then return empty results.
type Deps struct {
	DB                  *sql.DB
	Store               *store.Store
	Planner             *planner.Planner
	Demo                planner.DashboardSource
	Species             *species.Client
	CarePlans           *careplan.Client
	DisableRegistration bool
}

func SetupRoutes(app *fiber.App, d *Deps) {
	api := app.Group("/api")

	// Configuration endpoint (public)
	api.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"disableRegistration": d.DisableRegistration,
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	if !d.DisableRegistration {
		auth.Post("/register", RegisterHandler(d.DB))
	}
	auth.Post("/login", LoginHandler(d.DB))
	auth.Post("/refresh", RefreshTokenHandler(d.DB))
	auth.Post("/logout", LogoutHandler(d.DB))

	// Demo dashboard (public, fixture data)
	api.Get("/demo/dashboard", DemoDashboardHandler(d))

	// Protected routes
	protected := api.Group("/", AuthMiddleware())

	plants := protected.Group("/plants")
	plants.Post("/", CreatePlantHandler(d))
	plants.Get("/", ListPlantsHandler(d))
	plants.Get("/:id", GetPlantHandler(d))
	plants.Put("/:id", UpdatePlantHandler(d))
	plants.Delete("/:id", ArchivePlantHandler(d))
	plants.Post("/:id/events", CreateEventHandler(d))
	plants.Get("/:id/events", ListEventsHandler(d))
	plants.Get("/:id/timeline", TimelineHandler(d))
	plants.Post("/:id/careplan", CarePlanHandler(d))

	protected.Delete("/events/:id", DeleteEventHandler(d))

	tasks := protected.Group("/tasks")
	tasks.Post("/generate", GenerateTasksHandler(d))
	tasks.Get("/", ListTasksHandler(d))
	tasks.Post("/:id/complete", CompleteTaskHandler(d))
	tasks.Post("/:id/snooze", SnoozeTaskHandler(d))

	protected.Get("/forecast", ForecastHandler(d))
	protected.Get("/dashboard", DashboardHandler(d))
	protected.Get("/species", SpeciesSearchHandler(d))

	// User profile routes
	user := protected.Group("/user")
	user.Get("/profile", GetUserProfileHandler(d))
	user.Put("/email", UpdateUserEmailHandler(d))
	user.Put("/location", UpdateLocationHandler(d))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
