package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/platewise/backend/internal/usecase"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Nutritionix   NutritionixConfig   `mapstructure:"nutritionix"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	Rekognition   RekognitionConfig   `mapstructure:"rekognition"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Gate          usecase.GateConfig  `mapstructure:"gate"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit"`
	Log           LogConfig           `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenAIConfig holds chat completions configuration
type OpenAIConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	IdentifyModel string        `mapstructure:"identify_model"`
	EstimateModel string        `mapstructure:"estimate_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// NutritionixConfig holds Nutritionix API configuration
type NutritionixConfig struct {
	AppID   string        `mapstructure:"app_id"`
	AppKey  string        `mapstructure:"app_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OpenFoodFactsConfig holds OpenFoodFacts configuration
type OpenFoodFactsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RekognitionConfig holds the photo label fallback configuration
type RekognitionConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Region        string  `mapstructure:"region"`
	MaxLabels     int32   `mapstructure:"max_labels"`
	MinConfidence float32 `mapstructure:"min_confidence"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// PipelineConfig tunes per-request resolution
type PipelineConfig struct {
	ItemConcurrency int `mapstructure:"item_concurrency"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int     `mapstructure:"per_ip"`   // requests per minute
	Upstream float64 `mapstructure:"upstream"` // requests per second per provider
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches
// the default locations.
func LoadFrom(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/platewise/")
	}

	// Environment variable settings
	v.SetEnvPrefix("PLATEWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile reads .env from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key gets a default so
// AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*", "http://localhost:3000"})

	// Provider defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.identify_model", "gpt-4o")
	v.SetDefault("openai.estimate_model", "gpt-4o")
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("nutritionix.app_id", "")
	v.SetDefault("nutritionix.app_key", "")
	v.SetDefault("nutritionix.base_url", "https://trackapi.nutritionix.com")
	v.SetDefault("nutritionix.timeout", "30s")

	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "Platewise/1.0")
	v.SetDefault("openfoodfacts.timeout", "30s")

	v.SetDefault("rekognition.enabled", false)
	v.SetDefault("rekognition.region", "us-east-1")
	v.SetDefault("rekognition.max_labels", 10)
	v.SetDefault("rekognition.min_confidence", 75)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "12h")
	v.SetDefault("cache.max_entries", 200)

	// Gate defaults
	gate := usecase.DefaultGateConfig()
	v.SetDefault("gate.min_branded_coverage", gate.MinBrandedCoverage)
	v.SetDefault("gate.calories.min", gate.Calories.Min)
	v.SetDefault("gate.calories.max", gate.Calories.Max)
	v.SetDefault("gate.protein.min", gate.Protein.Min)
	v.SetDefault("gate.protein.max", gate.Protein.Max)
	v.SetDefault("gate.carbs.min", gate.Carbs.Min)
	v.SetDefault("gate.carbs.max", gate.Carbs.Max)
	v.SetDefault("gate.fat.min", gate.Fat.Min)
	v.SetDefault("gate.fat.max", gate.Fat.Max)

	v.SetDefault("pipeline.item_concurrency", 4)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.upstream", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set PLATEWISE_OPENAI_API_KEY)")
	}

	if config.Nutritionix.AppID == "" || config.Nutritionix.AppKey == "" {
		return fmt.Errorf("Nutritionix app id and key are required (set PLATEWISE_NUTRITIONIX_APP_ID and PLATEWISE_NUTRITIONIX_APP_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	gate := config.Gate
	if gate.MinBrandedCoverage < 0 || gate.MinBrandedCoverage > 1 {
		return fmt.Errorf("gate.min_branded_coverage must be within [0,1], got: %v", gate.MinBrandedCoverage)
	}
	bands := map[string]usecase.Band{
		"calories": gate.Calories,
		"protein":  gate.Protein,
		"carbs":    gate.Carbs,
		"fat":      gate.Fat,
	}
	for name, b := range bands {
		if b.Min > b.Max {
			return fmt.Errorf("gate.%s band is inverted: min %d > max %d", name, b.Min, b.Max)
		}
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}
