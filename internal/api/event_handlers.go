package api

import (
	"strings"

	"sprout/internal/models"
	"sprout/internal/store"

	"github.com/gofiber/fiber/v2"
)

// CreateEventHandler logs a care event. Events are stamped with the server
// clock; clients cannot backdate them.
func CreateEventHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		plantID, err := paramID(c, "id", "plant")
		if err != nil {
			return err
		}

		var req models.CreateEventRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		typ := models.CareType(strings.ToLower(strings.TrimSpace(req.Type)))
		if !typ.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Type must be one of water, fertilize, note, photo")
		}
		if typ == models.CarePhoto && strings.TrimSpace(req.ImageURL) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Photo events need an imageUrl")
		}

		e := models.CareEvent{PlantID: plantID, Type: string(typ), CreatedAt: d.Planner.Now()}
		if note := strings.TrimSpace(req.Note); note != "" {
			e.Note = &note
		}
		if img := strings.TrimSpace(req.ImageURL); img != "" {
			e.ImageURL = &img
		}

		created, err := d.Store.CreateEvent(c.Context(), userID, e)
		if err != nil {
			return storeError(err, "Plant")
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// ListEventsHandler returns a plant's history newest-first, optionally
// filtered by ?type=.
func ListEventsHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		plantID, err := paramID(c, "id", "plant")
		if err != nil {
			return err
		}

		if _, err := d.Store.GetPlant(c.Context(), userID, plantID); err != nil {
			return storeError(err, "Plant")
		}
		f := store.EventFilter{PlantID: plantID}
		if t := c.Query("type"); t != "" {
			f.Type = models.CareType(t)
			if !f.Type.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid event type")
			}
		}

		events, err := d.Store.ListEvents(c.Context(), userID, f)
		if err != nil {
			return storeError(err, "Event")
		}
		return c.JSON(events)
	}
}

// DeleteEventHandler removes a single event, e.g. a photo the user no longer wants.
func DeleteEventHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		eventID, err := paramID(c, "id", "event")
		if err != nil {
			return err
		}

		if err := d.Store.DeleteEvent(c.Context(), userID, eventID); err != nil {
			return storeError(err, "Event")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
