package nutritionix

import (
	"bytes"
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

// Client handles communication with the Nutritionix v2 API
type Client struct {
	appID   string
	appKey  string
	baseURL string
	http    *upstream.Client
	logger  *zap.Logger
}

// Config holds Nutritionix client settings
type Config struct {
	AppID      string
	AppKey     string
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
}

// NewClient creates a new Nutritionix API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		appID:   cfg.AppID,
		appKey:  cfg.AppKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: upstream.New(upstream.Options{
			Name:       "nutritionix",
			Timeout:    cfg.Timeout,
			RatePerSec: cfg.RatePerSec,
			Burst:      10,
		}, logger),
		logger: logger.Named("nutritionix"),
	}
}

// InstantSearch returns branded products matching query
func (c *Client) InstantSearch(ctx context.Context, query string) ([]domain.BrandedCandidate, error) {
	body, err := c.post(ctx, "/v2/search/instant", query)
	if err != nil {
		return nil, err
	}

	var resp instantResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrMalformedResponse, err)
	}

	c.logger.Debug("instant search", zap.String("query", query), zap.Int("branded", len(resp.Branded)))
	return mapBrandedCandidates(resp.Branded), nil
}

// ItemDetail fetches full nutrients for a branded item id
func (c *Client) ItemDetail(ctx context.Context, id string) (*domain.Macros, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("nix_item_id", id)
	reqURL := fmt.Sprintf("%s/v2/search/item?%s", c.baseURL, params.Encode())

	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		c.setAuth(req)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	return decodeFirstFood(body)
}

// NaturalNutrients parses a natural-language phrase into nutrients
func (c *Client) NaturalNutrients(ctx context.Context, query string) (*domain.Macros, error) {
	body, err := c.post(ctx, "/v2/natural/nutrients", query)
	if err != nil {
		return nil, err
	}
	return decodeFirstFood(body)
}

// post sends {"query": query} as JSON to path
func (c *Client) post(ctx context.Context, path, query string) ([]byte, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := c.baseURL + path
	return c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		c.setAuth(req)
		return req, nil
	})
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)
}

func (c *Client) checkCredentials() error {
	if c.appID == "" || c.appKey == "" {
		return fmt.Errorf("%w: nutritionix app id/key not configured", domain.ErrMissingCredentials)
	}
	return nil
}

func decodeFirstFood(body []byte) (*domain.Macros, error) {
	var resp foodsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrMalformedResponse, err)
	}
	if len(resp.Foods) == 0 {
		return nil, domain.ErrNotFound
	}

	macros := MapToMacros(resp.Foods[0])
	return &macros, nil
}
