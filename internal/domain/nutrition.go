package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source identifies which lookup service produced a nutrient record
type Source int

const (
	SourceNone Source = iota
	SourceNutritionixBranded
	SourceNutritionixNatural
	SourceOpenFoodFacts
)

func (s Source) String() string {
	switch s {
	case SourceNutritionixBranded:
		return "Nutritionix Branded"
	case SourceNutritionixNatural:
		return "Nutritionix Natural"
	case SourceOpenFoodFacts:
		return "OpenFoodFacts"
	default:
		return "none"
	}
}

// IsBranded reports whether the record counts toward branded coverage
func (s Source) IsBranded() bool {
	return s == SourceNutritionixBranded
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Nutritionix Branded":
		*s = SourceNutritionixBranded
	case "Nutritionix Natural":
		*s = SourceNutritionixNatural
	case "OpenFoodFacts":
		*s = SourceOpenFoodFacts
	case "none", "":
		*s = SourceNone
	default:
		return fmt.Errorf("unknown nutrient source %q", string(text))
	}
	return nil
}

// MealRequest is the caller input for one analysis
type MealRequest struct {
	Description string `json:"description"`
	PhotoRef    string `json:"photoUrl,omitempty"`
	ForceMicros bool   `json:"-"`
}

// CandidateItem is one food identified in a meal
type CandidateItem struct {
	Name        string `json:"name"`
	PortionText string `json:"portion_text,omitempty"`
}

// Macros holds the macro fields reported by nutrition databases.
// Energy in kcal, sodium in mg, everything else in grams.
type Macros struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Fiber    int `json:"fiber"`
	Sodium   int `json:"sodium"`
}

// Add returns the element-wise sum of m and o
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Fiber:    m.Fiber + o.Fiber,
		Sodium:   m.Sodium + o.Sodium,
	}
}

// Scale multiplies every field by factor, rounding after the multiplication
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Calories: SafeInt(float64(m.Calories) * factor),
		Protein:  SafeInt(float64(m.Protein) * factor),
		Carbs:    SafeInt(float64(m.Carbs) * factor),
		Fat:      SafeInt(float64(m.Fat) * factor),
		Fiber:    SafeInt(float64(m.Fiber) * factor),
		Sodium:   SafeInt(float64(m.Sodium) * factor),
	}
}

// IsZero reports whether no macro was verified
func (m Macros) IsZero() bool {
	return m == Macros{}
}

// VerifiedAggregate is the portion-scaled sum of all resolved items
type VerifiedAggregate = Macros

// ResolvedNutrients is one item's macros tagged with provenance
type ResolvedNutrients struct {
	Source Source `json:"source"`
	Macros
}

// CoverageState tracks how many items were resolved from the branded tier
type CoverageState struct {
	BrandedHits int `json:"brandedHits"`
	TotalItems  int `json:"totalItems"`
}

// Ratio returns brandedHits/totalItems, with an empty meal counting as one item
func (c CoverageState) Ratio() float64 {
	total := c.TotalItems
	if total < 1 {
		total = 1
	}
	return float64(c.BrandedHits) / float64(total)
}

// NutrientProfile is the final per-meal output. Every field is always present.
type NutrientProfile struct {
	Protein  int `json:"protein"`
	Calories int `json:"calories"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`

	VitaminA   int `json:"vitaminA"`   // µg
	VitaminC   int `json:"vitaminC"`   // mg
	VitaminD   int `json:"vitaminD"`   // µg
	VitaminE   int `json:"vitaminE"`   // mg
	VitaminK   int `json:"vitaminK"`   // µg
	VitaminB12 int `json:"vitaminB12"` // µg
	Iron       int `json:"iron"`       // mg
	Calcium    int `json:"calcium"`    // mg
	Magnesium  int `json:"magnesium"`  // mg
	Zinc       int `json:"zinc"`       // mg

	Water     int `json:"water"`     // ml
	Sodium    int `json:"sodium"`    // mg
	Potassium int `json:"potassium"` // mg
	Chloride  int `json:"chloride"`  // mg
	Fiber     int `json:"fiber"`     // g
}

// Macros returns the macro subset of the profile
func (p NutrientProfile) Macros() Macros {
	return Macros{
		Calories: p.Calories,
		Protein:  p.Protein,
		Carbs:    p.Carbs,
		Fat:      p.Fat,
		Fiber:    p.Fiber,
		Sodium:   p.Sodium,
	}
}

// ProfileFromMacros builds a profile whose micronutrients are all zero
func ProfileFromMacros(m Macros) NutrientProfile {
	return NutrientProfile{
		Protein:  m.Protein,
		Calories: m.Calories,
		Carbs:    m.Carbs,
		Fat:      m.Fat,
		Sodium:   m.Sodium,
		Fiber:    m.Fiber,
	}
}

// ProfileFromMap converts a loosely typed decoded object into a profile.
// Missing or non-numeric keys become 0; "carbohydrates" is accepted for "carbs".
func ProfileFromMap(d map[string]any) NutrientProfile {
	carbs, ok := d["carbs"]
	if !ok || carbs == nil {
		carbs = d["carbohydrates"]
	}

	return NutrientProfile{
		Protein:    SafeInt(d["protein"]),
		Calories:   SafeInt(d["calories"]),
		Carbs:      SafeInt(carbs),
		Fat:        SafeInt(d["fat"]),
		VitaminA:   SafeInt(d["vitaminA"]),
		VitaminC:   SafeInt(d["vitaminC"]),
		VitaminD:   SafeInt(d["vitaminD"]),
		VitaminE:   SafeInt(d["vitaminE"]),
		VitaminK:   SafeInt(d["vitaminK"]),
		VitaminB12: SafeInt(d["vitaminB12"]),
		Iron:       SafeInt(d["iron"]),
		Calcium:    SafeInt(d["calcium"]),
		Magnesium:  SafeInt(d["magnesium"]),
		Zinc:       SafeInt(d["zinc"]),
		Water:      SafeInt(d["water"]),
		Sodium:     SafeInt(d["sodium"]),
		Potassium:  SafeInt(d["potassium"]),
		Chloride:   SafeInt(d["chloride"]),
		Fiber:      SafeInt(d["fiber"]),
	}
}

// SafeInt rounds any finite numeric value (numbers or numeric strings) to
// the nearest integer, saturating at the int range. NaN, infinities, nil and
// anything non-numeric give 0.
func SafeInt(v any) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Round(f)
	// float64(math.MaxInt) rounds up past the int range
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	if f <= float64(math.MinInt) {
		return math.MinInt
	}
	return int(f)
}

// SafeAmount is SafeInt floored at zero, for provider-reported quantities.
func SafeAmount(v any) int {
	n := SafeInt(v)
	if n < 0 {
		return 0
	}
	return n
}

// SafeFloat is the unrounded form of SafeInt, used when a unit conversion
// must happen before rounding.
func SafeFloat(v any) float64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
