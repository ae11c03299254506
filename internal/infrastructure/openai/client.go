// Package openai talks to the chat completions API for the two model stages:
// identifying meal items and estimating the full nutrient set.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/upstream"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
	defaultTimeout = 60 * time.Second
)

// Config holds OpenAI client settings
type Config struct {
	APIKey        string
	BaseURL       string
	IdentifyModel string
	EstimateModel string
	Timeout       time.Duration
	RatePerSec    float64
}

// Client implements domain.Identifier and domain.MicronutrientEstimator
type Client struct {
	apiKey        string
	baseURL       string
	identifyModel string
	estimateModel string
	decoder       StructuredDecoder
	http          *upstream.Client
	logger        *zap.Logger
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new OpenAI client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	identifyModel := cfg.IdentifyModel
	if identifyModel == "" {
		identifyModel = defaultModel
	}
	estimateModel := cfg.EstimateModel
	if estimateModel == "" {
		estimateModel = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       base,
		identifyModel: identifyModel,
		estimateModel: estimateModel,
		decoder:       JSONExtractor{},
		http: upstream.New(upstream.Options{
			Name:       "openai",
			Timeout:    timeout,
			RatePerSec: cfg.RatePerSec,
			Burst:      5,
		}, logger),
		logger: logger.Named("openai"),
	}
}

// complete sends one chat completion and returns the first choice's text
func (c *Client) complete(ctx context.Context, model string, messages []message) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: openai api key not configured", domain.ErrMissingCredentials)
	}

	payload, err := json.Marshal(chatRequest{Model: model, Messages: messages, Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := c.baseURL + "/chat/completions"
	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", domain.ErrMalformedResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices returned", domain.ErrMalformedResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
