package api

import (
	"strings"

	"sprout/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SpeciesSearchHandler looks up ?q= in the species catalogue. It always
// answers 200; an unconfigured or failing catalogue yields an empty list.
func SpeciesSearchHandler(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if len(q) < 2 || d.Species == nil {
			return c.JSON([]models.Species{})
		}
		return c.JSON(d.Species.Search(c.Context(), q))
	}
}

// CarePlanHandler asks the suggestion provider for a cadence. With
// ?apply=true a usable suggestion is written to the plant. The plan is null
// when no suggestion is available.
func CarePlanHandler(d *Deps) fiber.Handler {
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

		var plan *models.CarePlan
		if d.CarePlans != nil {
			plan = d.CarePlans.Suggest(c.Context(), plant)
		}

		applied := false
		if plan != nil && c.QueryBool("apply") && plant.ArchivedAt == nil {
			plant.WaterEvery = plan.WaterEvery
			if plan.FertEvery != "" {
				plant.FertEvery = plan.FertEvery
			}
			if plan.Notes != "" && plant.CareNotes == "" {
				plant.CareNotes = plan.Notes
			}
			if err := d.Store.UpdatePlant(c.Context(), plant, d.Planner.Now()); err != nil {
				return storeError(err, "Plant")
			}
			applied = true
		}

		return c.JSON(fiber.Map{
			"plan":    plan,
			"applied": applied,
		})
	}
}
