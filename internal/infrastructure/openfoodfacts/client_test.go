package openfoodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/upstream"
)

func TestMain(m *testing.M) {
	upstream.RetryBaseDelay = 0
	os.Exit(m.Run())
}

func TestSearchFoodParsesFirstProduct(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cgi/search.pl" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("search_terms") != "greek yogurt" || q.Get("page_size") != "1" || q.Get("json") != "1" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {
      "product_name": "Greek Yogurt",
      "nutriments": {
        "energy-kcal_100g": 97,
        "proteins_100g": 9.0,
        "carbohydrates_100g": "3.98",
        "fat_100g": 5,
        "sodium_100g": 0.036,
        "fiber_100g": 0
      }
    },
    {"product_name": "Ignored", "nutriments": {"energy-kcal_100g": 999}}
  ]
}`))
	}))
	defer ts.Close()

	c := NewClient(Config{BaseURL: ts.URL}, nil)
	got, err := c.SearchFood(context.Background(), "greek yogurt")
	if err != nil {
		t.Fatalf("search food: %v", err)
	}
	want := domain.Macros{Calories: 97, Protein: 9, Carbs: 4, Fat: 5, Sodium: 36}
	if *got != want {
		t.Fatalf("unexpected macros: %+v, want %+v", *got, want)
	}
}

func TestSearchFoodNoProducts(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"products":[]}`))
	}))
	defer ts.Close()

	c := NewClient(Config{BaseURL: ts.URL}, nil)
	_, err := c.SearchFood(context.Background(), "unobtainium")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchFoodProductWithoutNutriments(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[{"product_name":"Mystery"}]}`))
	}))
	defer ts.Close()

	c := NewClient(Config{BaseURL: ts.URL}, nil)
	_, err := c.SearchFood(context.Background(), "mystery")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchFoodMalformedBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer ts.Close()

	c := NewClient(Config{BaseURL: ts.URL}, nil)
	_, err := c.SearchFood(context.Background(), "bread")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestSearchFoodServerErrorExhaustsRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient(Config{BaseURL: ts.URL}, nil)
	_, err := c.SearchFood(context.Background(), "bread")
	if !errors.Is(err, domain.ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestMapNutrimentsHandlesGarbage(t *testing.T) {
	t.Parallel()

	got := mapNutriments(map[string]any{
		"energy-kcal_100g": "n/a",
		"proteins_100g":    -3.0,
		"sodium_100g":      nil,
		"fat_100g":         12.4,
	})
	want := domain.Macros{Fat: 12}
	if got != want {
		t.Fatalf("unexpected macros: %+v", got)
	}
}
