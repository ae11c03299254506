package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/upstream"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

// Config holds OpenFoodFacts client settings
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	UserAgent  string
}

// Client searches the OpenFoodFacts product database. No credentials needed.
type Client struct {
	baseURL string
	http    *upstream.Client
	logger  *zap.Logger
}

type searchResponse struct {
	Products []product `json:"products"`
}

type product struct {
	ProductName string         `json:"product_name"`
	Nutriments  map[string]any `json:"nutriments"`
}

// NewClient creates a new OpenFoodFacts client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}

	return &Client{
		baseURL: base,
		http: upstream.New(upstream.Options{
			Name:       "openfoodfacts",
			Timeout:    cfg.Timeout,
			RatePerSec: cfg.RatePerSec,
			Burst:      5,
			UserAgent:  cfg.UserAgent,
		}, logger),
		logger: logger.Named("openfoodfacts"),
	}
}

// SearchFood returns per-100g macros of the top search hit for query.
func (c *Client) SearchFood(ctx context.Context, query string) (*domain.Macros, error) {
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&json=1&page_size=1",
		c.baseURL, url.QueryEscape(strings.TrimSpace(query)))

	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode openfoodfacts search response: %v", domain.ErrMalformedResponse, err)
	}
	if len(parsed.Products) == 0 || parsed.Products[0].Nutriments == nil {
		return nil, domain.ErrNotFound
	}

	c.logger.Debug("search hit",
		zap.String("query", query),
		zap.String("product", parsed.Products[0].ProductName))

	macros := mapNutriments(parsed.Products[0].Nutriments)
	return &macros, nil
}

// mapNutriments reads the per-100g block. Sodium is reported in grams.
func mapNutriments(n map[string]any) domain.Macros {
	return domain.Macros{
		Calories: domain.SafeAmount(n["energy-kcal_100g"]),
		Protein:  domain.SafeAmount(n["proteins_100g"]),
		Carbs:    domain.SafeAmount(n["carbohydrates_100g"]),
		Fat:      domain.SafeAmount(n["fat_100g"]),
		Sodium:   domain.SafeAmount(domain.SafeFloat(n["sodium_100g"]) * 1000),
		Fiber:    domain.SafeAmount(n["fiber_100g"]),
	}
}
