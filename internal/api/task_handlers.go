package api

import (
	"strings"

	"sprout/internal/models"
	"sprout/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GenerateTasksHandler materialises due tasks up to the horizon and returns
// the ones created by this call.
func GenerateTasksHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		created, err := d.Planner.GenerateTasks(c.Context(), userID)
		if err != nil {
			return storeError(err, "Task")
		}
		return c.JSON(fiber.Map{"created": created})
	}
}

// ListTasksHandler tops up the schedule, then lists tasks. ?status=all
// includes completed ones; the default is open only. ?plantId= narrows.
func ListTasksHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		f := store.TaskFilter{OpenOnly: true}
		switch strings.ToLower(c.Query("status", "open")) {
		case "open":
		case "all":
			f.OpenOnly = false
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Status must be open or all")
		}
		if c.Query("plantId") != "" {
			id := c.QueryInt("plantId")
			if id <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid plant ID")
			}
			f.PlantID = id
		}

		if _, err := d.Planner.GenerateTasks(c.Context(), userID); err != nil {
			return storeError(err, "Task")
		}
		tasks, err := d.Store.ListTasks(c.Context(), userID, f)
		if err != nil {
			return storeError(err, "Task")
		}
		return c.JSON(tasks)
	}
}

// CompleteTaskHandler closes a task and returns the care event it logged.
func CompleteTaskHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		taskID, err := paramID(c, "id", "task")
		if err != nil {
			return err
		}

		event, err := d.Planner.Complete(c.Context(), userID, taskID)
		if err != nil {
			return storeError(err, "Task")
		}
		return c.JSON(event)
	}
}

// SnoozeTaskHandler pushes a task back. The body is optional; a missing or
// unusable "days" leaves the due date where it is.
func SnoozeTaskHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		taskID, err := paramID(c, "id", "task")
		if err != nil {
			return err
		}

		var req models.SnoozeRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}

		task, err := d.Planner.Snooze(c.Context(), userID, taskID, req.Days, strings.TrimSpace(req.Reason))
		if err != nil {
			return storeError(err, "Task")
		}
		return c.JSON(task)
	}
}
