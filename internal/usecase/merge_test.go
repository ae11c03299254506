package usecase

import (
	"testing"

	"github.com/platewise/backend/internal/domain"
)

func TestMerge(t *testing.T) {
	verified := domain.Macros{Calories: 520, Protein: 33, Carbs: 0, Fat: 26, Sodium: 650, Fiber: 0}
	estimate := domain.NutrientProfile{
		Calories: 610, Protein: 40, Carbs: 45, Fat: 30, Sodium: 900, Fiber: 4,
		VitaminC: 12, Iron: 3, Water: 250,
	}

	got := Merge(verified, estimate)

	if got.Calories != 520 || got.Protein != 33 || got.Fat != 26 || got.Sodium != 650 {
		t.Errorf("verified macros not preserved: %+v", got)
	}
	if got.Carbs != 45 || got.Fiber != 4 {
		t.Errorf("zero verified macros should take the estimate: carbs=%d fiber=%d", got.Carbs, got.Fiber)
	}
	if got.VitaminC != 12 || got.Iron != 3 || got.Water != 250 {
		t.Errorf("micronutrients should come from the estimate: %+v", got)
	}
}

func TestClamp(t *testing.T) {
	t.Run("forces macros into range", func(t *testing.T) {
		got := Clamp(domain.NutrientProfile{
			Calories: 5000, Protein: 0, Carbs: 200, Fat: 100, Sodium: 3000, Fiber: 30,
		})

		want := domain.NutrientProfile{Calories: 1100, Protein: 5, Carbs: 150, Fat: 60, Sodium: 2000, Fiber: 20}
		if got != want {
			t.Errorf("Clamp() = %+v, want %+v", got, want)
		}
	})

	t.Run("raises low macros", func(t *testing.T) {
		got := Clamp(domain.NutrientProfile{Calories: 50, Sodium: -5, Fiber: -1})

		if got.Calories != 100 || got.Protein != 5 || got.Carbs != 5 || got.Fat != 5 {
			t.Errorf("Clamp() = %+v", got)
		}
		if got.Sodium != 0 || got.Fiber != 0 {
			t.Errorf("sodium/fiber = %d/%d, want 0/0", got.Sodium, got.Fiber)
		}
	})

	t.Run("floors micronutrients at zero", func(t *testing.T) {
		got := Clamp(domain.NutrientProfile{
			Calories: 500, Protein: 20, Carbs: 50, Fat: 20,
			VitaminA: -1, VitaminB12: -3, Zinc: -2, Chloride: -10, Potassium: 800,
		})

		if got.VitaminA != 0 || got.VitaminB12 != 0 || got.Zinc != 0 || got.Chloride != 0 {
			t.Errorf("negative micronutrients survived: %+v", got)
		}
		if got.Potassium != 800 {
			t.Errorf("Potassium = %d, want 800", got.Potassium)
		}
	})

	t.Run("absurd model values saturate to the ceiling", func(t *testing.T) {
		got := Clamp(domain.ProfileFromMap(map[string]any{"calories": 1e19, "vitaminA": 1e19, "iron": -1e19}))

		if got.Calories != 1100 {
			t.Errorf("Calories = %d, want 1100", got.Calories)
		}
		if got.VitaminA <= 0 || got.Iron != 0 {
			t.Errorf("vitaminA/iron = %d/%d, want saturated/0", got.VitaminA, got.Iron)
		}
	})

	t.Run("leaves values in range untouched", func(t *testing.T) {
		in := domain.NutrientProfile{Calories: 650, Protein: 35, Carbs: 70, Fat: 22, Sodium: 900, Fiber: 6, VitaminC: 40}
		if got := Clamp(in); got != in {
			t.Errorf("Clamp() = %+v, want unchanged %+v", got, in)
		}
	})

	t.Run("is closed under repetition", func(t *testing.T) {
		profiles := []domain.NutrientProfile{
			{},
			{Calories: 99999, Protein: -4, Carbs: 151, Fat: 61, Sodium: 2001, Fiber: 21, Iron: -1},
			Merge(domain.Macros{Calories: 140, Carbs: 39, Sodium: 45}, domain.NutrientProfile{}),
		}

		for _, p := range profiles {
			once := Clamp(p)
			if twice := Clamp(once); twice != once {
				t.Errorf("Clamp not idempotent: %+v then %+v", once, twice)
			}
			assertWithinRanges(t, once)
		}
	})
}

func assertWithinRanges(t *testing.T, p domain.NutrientProfile) {
	t.Helper()
	checks := []struct {
		name string
		v    int
		b    Band
	}{
		{"calories", p.Calories, caloriesRange},
		{"protein", p.Protein, proteinRange},
		{"carbs", p.Carbs, carbsRange},
		{"fat", p.Fat, fatRange},
		{"sodium", p.Sodium, sodiumRange},
		{"fiber", p.Fiber, fiberRange},
	}
	for _, c := range checks {
		if !c.b.Contains(c.v) {
			t.Errorf("%s = %d, outside [%d, %d]", c.name, c.v, c.b.Min, c.b.Max)
		}
	}
}
