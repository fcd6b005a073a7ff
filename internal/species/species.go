// Package species looks up plant species from a Perenual-style catalogue and
// keeps recent answers in a bounded LRU cache.
package species

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"sprout/internal/models"

	"github.com/gofiber/fiber/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 100

type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	cache   *lru.Cache[string, []models.Species]
}

// New returns a client. An empty baseURL or apiKey makes every lookup return
// an empty list without touching the network.
func New(baseURL, apiKey string, cacheSize int, timeout time.Duration) (*Client, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cache, err := lru.New[string, []models.Species](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		cache:   cache,
	}, nil
}

func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type listResponse struct {
	Data []struct {
		ID             int      `json:"id"`
		CommonName     string   `json:"common_name"`
		ScientificName []string `json:"scientific_name"`
		Watering       string   `json:"watering"`
		DefaultImage   *struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"default_image"`
	} `json:"data"`
}

// Search returns species matching q. Failures are logged and yield an empty
// list; only successful answers are cached.
func (c *Client) Search(ctx context.Context, q string) []models.Species {
	key := strings.ToLower(strings.TrimSpace(q))
	if key == "" || !c.Enabled() {
		return []models.Species{}
	}
	if hit, ok := c.cache.Get(key); ok {
		return hit
	}

	found, err := c.fetch(ctx, key)
	if err != nil {
		log.Printf("species: lookup %q failed: %v", key, err)
		return []models.Species{}
	}
	c.cache.Add(key, found)
	return found
}

// Len reports how many queries are cached.
func (c *Client) Len() int {
	return c.cache.Len()
}

func (c *Client) fetch(ctx context.Context, q string) ([]models.Species, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", q)

	a := fiber.Get(c.baseURL + "/species-list")
	a.QueryString(params.Encode())
	a.Timeout(c.timeout)
	var resp listResponse
	code, _, errs := a.Struct(&resp)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", code)
	}

	out := make([]models.Species, 0, len(resp.Data))
	for _, d := range resp.Data {
		s := models.Species{ID: d.ID, CommonName: d.CommonName, Watering: d.Watering}
		if len(d.ScientificName) > 0 {
			s.ScientificName = d.ScientificName[0]
		}
		if d.DefaultImage != nil {
			s.ImageURL = d.DefaultImage.Thumbnail
		}
		out = append(out, s)
	}
	return out, nil
}
