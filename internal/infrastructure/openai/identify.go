package openai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

const identifyPrompt = `You are a nutrition analyst. Identify all edible items and portion sizes from this text and image. ` +
	`Return JSON only, shaped as {"foods":[{"name":"...","portion_text":"...","confidence":0.0}]}.`

type identifyOutput struct {
	Foods []struct {
		Name        string `json:"name"`
		PortionText string `json:"portion_text"`
	} `json:"foods"`
}

// Identify asks the model for the edible items in a meal. Unparsable output
// yields an empty list, not an error.
func (c *Client) Identify(ctx context.Context, req domain.MealRequest) ([]domain.CandidateItem, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "(no description)"
	}

	messages := []message{
		{Role: "system", Content: identifyPrompt},
		{Role: "user", Content: description},
	}
	if photo := strings.TrimSpace(req.PhotoRef); photo != "" {
		messages = append(messages, message{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: "Analyze this image as part of the meal."},
				{Type: "image_url", ImageURL: &imageURL{URL: photo}},
			},
		})
	}

	text, err := c.complete(ctx, c.identifyModel, messages)
	if err != nil {
		return nil, err
	}

	var out identifyOutput
	if err := c.decoder.Decode(text, &out); err != nil {
		c.logger.Warn("unparsable identification output", zap.Error(err))
		return nil, nil
	}

	items := make([]domain.CandidateItem, 0, len(out.Foods))
	for _, f := range out.Foods {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		items = append(items, domain.CandidateItem{Name: name, PortionText: strings.TrimSpace(f.PortionText)})
	}

	c.logger.Debug("identified items", zap.Int("count", len(items)))
	return items, nil
}
