package usecase

import (
	"math"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Grilled Salmon", want: "grilled salmon"},
		{name: "drops combo and meal", input: "Big Mac Combo Meal", want: "big mac"},
		{name: "drops with", input: "Chicken with Rice", want: "chicken rice"},
		{name: "punctuation becomes space", input: "Coca-Cola 355ml", want: "coca cola 355ml"},
		{name: "collapses whitespace", input: "  fried \t rice \n ", want: "fried rice"},
		{name: "stop words only match whole words", input: "mealworm withers", want: "mealworm withers"},
		{name: "nothing usable", input: "!!!", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Canonicalize(tc.input)
			if got != tc.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{"Big Mac Combo Meal", "Coca-Cola 355ml", "Chicken with Rice & Beans", "  "}

	for _, in := range inputs {
		once := Canonicalize(in)
		if twice := Canonicalize(once); twice != once {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSimilarity(t *testing.T) {
	testCases := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "big mac", b: "big mac", want: 1},
		{name: "case and punctuation ignored", a: "coca cola", b: "Coca-Cola", want: 1},
		{name: "subset over larger set", a: "coca cola", b: "Coca-Cola Classic", want: 2.0 / 3.0},
		{name: "repeated tokens count once", a: "rice rice", b: "rice", want: 1},
		{name: "disjoint", a: "burger", b: "fries", want: 0},
		{name: "empty side", a: "", b: "fries", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Similarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if rev := Similarity(tc.b, tc.a); math.Abs(rev-got) > 1e-9 {
				t.Errorf("Similarity is not symmetric: %v vs %v", got, rev)
			}
		})
	}
}
