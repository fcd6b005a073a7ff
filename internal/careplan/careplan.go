// Package careplan asks a chat-completions endpoint for a suggested care
// cadence for a species.
package careplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sprout/internal/models"
	"sprout/internal/schedule"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, Model: model, Timeout: timeout}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You are a houseplant care assistant. Reply with a JSON object with keys ` +
	`"waterEvery", "fertEvery" and "notes". Cadences use the form "<N> days", "<N> weeks" or "<N> months".`

// Suggest returns a care plan for the plant's species, or nil when the
// provider is not configured, unreachable, or answers with unusable cadences.
func (c *Client) Suggest(ctx context.Context, plant models.Plant) *models.CarePlan {
	if c == nil || c.APIKey == "" {
		return nil
	}
	plan, err := c.suggest(ctx, plant)
	if err != nil {
		log.Printf("careplan: suggestion for plant %d failed: %v", plant.ID, err)
		return nil
	}
	return plan
}

func (c *Client) suggest(ctx context.Context, plant models.Plant) (*models.CarePlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	species := plant.SpeciesScientific
	if species == "" {
		species = plant.SpeciesCommon
	}
	if species == "" {
		species = plant.Nickname
	}

	req := chatRequest{
		Model: c.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Species: %s. Current notes: %s", species, plant.CareNotes)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	a := fiber.Post(c.BaseURL + "/chat/completions")
	a.Set(fiber.HeaderAuthorization, "Bearer "+c.APIKey)
	a.JSON(req)
	a.Timeout(c.Timeout)
	var resp chatResponse
	code, _, errs := a.Struct(&resp)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", code)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response")
	}

	var plan models.CarePlan
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if _, ok := schedule.ParseInterval(plan.WaterEvery); !ok {
		return nil, fmt.Errorf("unusable water cadence %q", plan.WaterEvery)
	}
	if _, ok := schedule.ParseInterval(plan.FertEvery); !ok {
		plan.FertEvery = ""
	}
	return &plan, nil
}
