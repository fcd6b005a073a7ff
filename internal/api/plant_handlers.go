package api

import (
	"strings"

	"sprout/internal/models"

	"github.com/gofiber/fiber/v2"
)

func CreatePlantHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		var req models.CreatePlantRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req.Nickname = strings.TrimSpace(req.Nickname)
		if req.Nickname == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nickname is required")
		}

		plant, err := d.Store.CreatePlant(c.Context(), models.Plant{
			UserID:            userID,
			Nickname:          req.Nickname,
			SpeciesScientific: strings.TrimSpace(req.SpeciesScientific),
			SpeciesCommon:     strings.TrimSpace(req.SpeciesCommon),
			WaterEvery:        strings.TrimSpace(req.WaterEvery),
			FertEvery:         strings.TrimSpace(req.FertEvery),
			CareNotes:         req.CareNotes,
			CreatedAt:         d.Planner.Now(),
		})
		if err != nil {
			return storeError(err, "Plant")
		}

		return c.Status(fiber.StatusCreated).JSON(plant)
	}
}

func ListPlantsHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}

		plants, err := d.Store.ListPlants(c.Context(), userID)
		if err != nil {
			return storeError(err, "Plant")
		}
		return c.JSON(plants)
	}
}

func GetPlantHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		plantID, err := paramID(c, "id", "plant")
		if err != nil {
			return err
		}

		plant, err := d.Store.GetPlant(c.Context(), userID, plantID)
		if err != nil {
			return storeError(err, "Plant")
		}
		return c.JSON(plant)
	}
}

// UpdatePlantHandler applies the fields present in the body. An empty string
// clears an optional field; the nickname cannot be cleared.
func UpdatePlantHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		plantID, err := paramID(c, "id", "plant")
		if err != nil {
			return err
		}

		var req models.UpdatePlantRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		plant, err := d.Store.GetPlant(c.Context(), userID, plantID)
		if err != nil {
			return storeError(err, "Plant")
		}
		if plant.ArchivedAt != nil {
			return fiber.NewError(fiber.StatusNotFound, "Plant not found")
		}

		if req.Nickname != nil {
			name := strings.TrimSpace(*req.Nickname)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nickname cannot be empty")
			}
			plant.Nickname = name
		}
		set := func(dst *string, src *string) {
			if src != nil {
				*dst = strings.TrimSpace(*src)
			}
		}
		set(&plant.SpeciesScientific, req.SpeciesScientific)
		set(&plant.SpeciesCommon, req.SpeciesCommon)
		set(&plant.WaterEvery, req.WaterEvery)
		set(&plant.FertEvery, req.FertEvery)
		set(&plant.CareNotes, req.CareNotes)

		if err := d.Store.UpdatePlant(c.Context(), plant, d.Planner.Now()); err != nil {
			return storeError(err, "Plant")
		}

		updated, err := d.Store.GetPlant(c.Context(), userID, plantID)
		if err != nil {
			return storeError(err, "Plant")
		}
		return c.JSON(updated)
	}
}

// ArchivePlantHandler soft-deletes a plant; its history stays queryable.
func ArchivePlantHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		plantID, err := paramID(c, "id", "plant")
		if err != nil {
			return err
		}

		if err := d.Store.ArchivePlant(c.Context(), userID, plantID, d.Planner.Now()); err != nil {
			return storeError(err, "Plant")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// TimelineHandler returns the plant's events plus projected due markers.
func TimelineHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUser(c)
		if err != nil {
			return storeError(err, "User")
		}
		plantID, err := paramID(c, "id", "plant")
		if err != nil {
			return err
		}

		events, err := d.Planner.Timeline(c.Context(), userID, plantID)
		if err != nil {
			return storeError(err, "Plant")
		}
		return c.JSON(events)
	}
}
