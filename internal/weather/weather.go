// Package weather reads daily forecasts and reference evapotranspiration from
// an Open-Meteo compatible endpoint.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sprout/internal/models"

	"github.com/gofiber/fiber/v2"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Provider is what the planner needs from a weather source.
type Provider interface {
	Daily(ctx context.Context, lat, lon float64, days int) ([]models.DayWeather, error)
	Evapotranspiration(ctx context.Context, lat, lon float64, pastDays int) ([]models.DayET0, error)
}

type Client struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{BaseURL: baseURL, Timeout: timeout}
}

type dailyResponse struct {
	Daily struct {
		Time         []string   `json:"time"`
		TempMax      []*float64 `json:"temperature_2m_max"`
		TempMin      []*float64 `json:"temperature_2m_min"`
		PrecipChance []*float64 `json:"precipitation_probability_max"`
		ET0          []*float64 `json:"et0_fao_evapotranspiration"`
	} `json:"daily"`
}

// Daily returns up to days forecast days starting today (provider timezone).
func (c *Client) Daily(ctx context.Context, lat, lon float64, days int) ([]models.DayWeather, error) {
	q := c.baseQuery(lat, lon)
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	q.Set("forecast_days", strconv.Itoa(days))

	var resp dailyResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return nil, err
	}

	out := make([]models.DayWeather, 0, len(resp.Daily.Time))
	for i, day := range resp.Daily.Time {
		out = append(out, models.DayWeather{
			Date:                day,
			TempMax:             at(resp.Daily.TempMax, i),
			TempMin:             at(resp.Daily.TempMin, i),
			PrecipitationChance: at(resp.Daily.PrecipChance, i),
		})
	}
	return out, nil
}

// Evapotranspiration returns FAO ET0 for the last pastDays days plus today.
func (c *Client) Evapotranspiration(ctx context.Context, lat, lon float64, pastDays int) ([]models.DayET0, error) {
	q := c.baseQuery(lat, lon)
	q.Set("daily", "et0_fao_evapotranspiration")
	q.Set("past_days", strconv.Itoa(pastDays))
	q.Set("forecast_days", "1")

	var resp dailyResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return nil, err
	}

	out := make([]models.DayET0, 0, len(resp.Daily.Time))
	for i, day := range resp.Daily.Time {
		out = append(out, models.DayET0{Date: day, ET0: at(resp.Daily.ET0, i)})
	}
	return out, nil
}

func (c *Client) baseQuery(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("timezone", "auto")
	return q
}

func (c *Client) get(ctx context.Context, q url.Values, v any) error {
	timeout := c.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	a := fiber.Get(c.BaseURL)
	a.QueryString(q.Encode())
	a.Timeout(timeout)
	code, _, errs := a.Struct(v)
	if len(errs) > 0 {
		return fmt.Errorf("weather request: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return fmt.Errorf("weather request: unexpected status %d", code)
	}
	return nil
}

func at(vals []*float64, i int) float64 {
	if i < len(vals) && vals[i] != nil {
		return *vals[i]
	}
	return 0
}
