package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/cache"
	"github.com/platewise/backend/internal/infrastructure/nutritionix"
	"github.com/platewise/backend/internal/infrastructure/openai"
	"github.com/platewise/backend/internal/infrastructure/openfoodfacts"
	"github.com/platewise/backend/internal/infrastructure/rekognition"
	"github.com/platewise/backend/internal/usecase"
)

// app bundles the wired pipeline and the resources it holds
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *usecase.AnalysisService
	closers []io.Closer
}

// loadConfig reads the --config flag and loads configuration
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadFrom(path)
}

// newLogger builds a zap logger from log.level and log.format
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// newCache picks the result cache backend
func newCache(ctx context.Context, cfg config.CacheConfig) (domain.ResultCache, io.Closer, error) {
	if cfg.Type == "redis" {
		rc, err := cache.NewRedisCacheFromURL(ctx, cfg.RedisURL, cfg.TTL, cfg.MaxEntries)
		if err != nil {
			return nil, nil, err
		}
		return rc, rc, nil
	}
	mc := cache.NewMemoryCache(cfg.TTL, cfg.MaxEntries)
	return mc, mc, nil
}

// newApp wires providers, resolver and analysis service from cfg
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	resultCache, closer, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	nix := nutritionix.NewClient(nutritionix.Config{
		AppID:      cfg.Nutritionix.AppID,
		AppKey:     cfg.Nutritionix.AppKey,
		BaseURL:    cfg.Nutritionix.BaseURL,
		Timeout:    cfg.Nutritionix.Timeout,
		RatePerSec: cfg.RateLimit.Upstream,
	}, logger)

	off := openfoodfacts.NewClient(openfoodfacts.Config{
		BaseURL:    cfg.OpenFoodFacts.BaseURL,
		Timeout:    cfg.OpenFoodFacts.Timeout,
		RatePerSec: cfg.RateLimit.Upstream,
		UserAgent:  cfg.OpenFoodFacts.UserAgent,
	}, logger)

	llm := openai.NewClient(openai.Config{
		APIKey:        cfg.OpenAI.APIKey,
		BaseURL:       cfg.OpenAI.BaseURL,
		IdentifyModel: cfg.OpenAI.IdentifyModel,
		EstimateModel: cfg.OpenAI.EstimateModel,
		Timeout:       cfg.OpenAI.Timeout,
		RatePerSec:    cfg.RateLimit.Upstream,
	}, logger)

	identifiers := []domain.Identifier{llm}
	if cfg.Rekognition.Enabled {
		rek, err := rekognition.New(ctx, rekognition.Config{
			Region:        cfg.Rekognition.Region,
			MaxLabels:     cfg.Rekognition.MaxLabels,
			MinConfidence: cfg.Rekognition.MinConfidence,
		}, logger)
		if err != nil {
			_ = closer.Close()
			return nil, err
		}
		identifiers = append(identifiers, rek)
	}

	resolver := usecase.NewSourceResolver(nix, nix, off, logger)

	service := usecase.NewAnalysisService(
		usecase.NewFallbackIdentifier(logger, identifiers...),
		resolver,
		llm,
		resultCache,
		usecase.AnalysisServiceConfig{
			Gate:            cfg.Gate,
			ItemConcurrency: cfg.Pipeline.ItemConcurrency,
		},
		logger,
	)

	logger.Info("pipeline ready",
		zap.String("cache", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Bool("rekognition", cfg.Rekognition.Enabled),
		zap.String("identify_model", cfg.OpenAI.IdentifyModel),
	)

	return &app{cfg: cfg, logger: logger, service: service, closers: []io.Closer{closer}}, nil
}

// Close releases cache connections and flushes the logger
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// bootstrap loads config, builds the logger and wires the app
func bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, logger)
}
