package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

const estimatePrompt = `You are a dietitian. You are given verified macronutrient totals for a single meal and the list of foods in it. ` +
	`Fill realistic micronutrients for the whole meal. Keep calories, protein, carbs, fat, fiber and sodium exactly as given; ` +
	`estimate them only when every verified total is 0. ` +
	`Return JSON only with the integer keys protein, calories, carbs, fat, vitaminA, vitaminC, vitaminD, vitaminE, vitaminK, ` +
	`vitaminB12, iron, calcium, magnesium, zinc, water, sodium, potassium, chloride, fiber.`

type estimateInput struct {
	VerifiedTotals domain.VerifiedAggregate `json:"verifiedTotals"`
	FoodList       []string                 `json:"foodList"`
}

// EstimateNutrients asks the model for the full nutrient set of a meal.
// Unparsable output yields a zero profile, not an error.
func (c *Client) EstimateNutrients(ctx context.Context, verified domain.VerifiedAggregate, foods []string) (domain.NutrientProfile, error) {
	if foods == nil {
		foods = []string{}
	}

	input, err := json.Marshal(estimateInput{VerifiedTotals: verified, FoodList: foods})
	if err != nil {
		return domain.NutrientProfile{}, fmt.Errorf("failed to marshal estimate input: %w", err)
	}

	messages := []message{
		{Role: "system", Content: estimatePrompt + "\n\n" + string(input)},
	}

	text, err := c.complete(ctx, c.estimateModel, messages)
	if err != nil {
		return domain.NutrientProfile{}, err
	}

	var out map[string]any
	if err := c.decoder.Decode(text, &out); err != nil {
		c.logger.Warn("unparsable estimation output", zap.Error(err))
		return domain.NutrientProfile{}, nil
	}

	return domain.ProfileFromMap(out), nil
}
