// Package rekognition identifies foods in a meal photo with AWS Rekognition
// DetectLabels. It is the fallback when the model identifier finds nothing.
package rekognition

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/upstream"
)

const maxImageBytes = 5 << 20

// DetectLabelsAPI is the slice of the Rekognition client used here
type DetectLabelsAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// Config holds Rekognition settings
type Config struct {
	Region        string
	MaxLabels     int32
	MinConfidence float32
}

// Identifier implements domain.Identifier over photo labels
type Identifier struct {
	api           DetectLabelsAPI
	images        *upstream.Client
	maxLabels     int32
	minConfidence float32
	logger        *zap.Logger
}

// categoryLabels are parents that mark a label as edible. They are never
// returned as items themselves.
var categoryLabels = map[string]bool{
	"food":     true,
	"beverage": true,
	"drink":    true,
	"meal":     true,
	"dish":     true,
	"produce":  true,
}

// New loads the default AWS config for cfg.Region and builds an Identifier
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Identifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return NewWithAPI(rekognition.NewFromConfig(awsCfg), cfg, logger), nil
}

// NewWithAPI builds an Identifier over an existing DetectLabels client
func NewWithAPI(api DetectLabelsAPI, cfg Config, logger *zap.Logger) *Identifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxLabels := cfg.MaxLabels
	if maxLabels <= 0 {
		maxLabels = 10
	}
	minConfidence := cfg.MinConfidence
	if minConfidence <= 0 {
		minConfidence = 75
	}

	return &Identifier{
		api:           api,
		images:        upstream.New(upstream.Options{Name: "photo", MaxBody: maxImageBytes}, logger),
		maxLabels:     maxLabels,
		minConfidence: minConfidence,
		logger:        logger.Named("rekognition"),
	}
}

// Identify returns food labels detected in req.PhotoRef. Requests without a
// photo yield no items.
func (i *Identifier) Identify(ctx context.Context, req domain.MealRequest) ([]domain.CandidateItem, error) {
	ref := strings.TrimSpace(req.PhotoRef)
	if ref == "" {
		return nil, nil
	}

	data, err := i.loadImage(ctx, ref)
	if err != nil {
		return nil, err
	}

	out, err := i.api.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MaxLabels:     aws.Int32(i.maxLabels),
		MinConfidence: aws.Float32(i.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: detect labels: %v", domain.ErrUpstreamFailure, err)
	}

	items := foodLabels(out.Labels)
	i.logger.Debug("photo labels", zap.Int("labels", len(out.Labels)), zap.Int("foods", len(items)))
	return items, nil
}

// loadImage accepts a base64 data URI or an http(s) URL
func (i *Identifier) loadImage(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:image") {
		comma := strings.IndexByte(ref, ',')
		if comma < 0 || !strings.Contains(ref[:comma], ";base64") {
			return nil, fmt.Errorf("%w: invalid data URI", domain.ErrInvalidRequest)
		}
		data, err := base64.StdEncoding.DecodeString(ref[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid data URI: %v", domain.ErrInvalidRequest, err)
		}
		return data, nil
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return i.images.Do(ctx, func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		})
	}

	return nil, fmt.Errorf("%w: unsupported photo reference", domain.ErrInvalidRequest)
}

// foodLabels keeps labels whose parent chain contains a food category,
// dropping the category labels themselves and duplicates.
func foodLabels(labels []types.Label) []domain.CandidateItem {
	seen := make(map[string]bool)
	var items []domain.CandidateItem

	for _, l := range labels {
		name := strings.TrimSpace(aws.ToString(l.Name))
		key := strings.ToLower(name)
		if name == "" || categoryLabels[key] || seen[key] {
			continue
		}

		edible := false
		for _, p := range l.Parents {
			if categoryLabels[strings.ToLower(aws.ToString(p.Name))] {
				edible = true
				break
			}
		}
		if !edible {
			continue
		}

		seen[key] = true
		items = append(items, domain.CandidateItem{Name: name})
	}
	return items
}
