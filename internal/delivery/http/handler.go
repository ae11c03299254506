package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// MealAnalyzer is the pipeline surface the handlers need
type MealAnalyzer interface {
	Analyze(ctx context.Context, req *domain.MealRequest) (*domain.NutrientProfile, error)
	ResolveItem(ctx context.Context, item domain.CandidateItem) (*usecase.ItemResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer MealAnalyzer
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(analyzer MealAnalyzer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{analyzer: analyzer, logger: logger.Named("http")}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "platewise-backend",
		"version": Version,
	})
}

// analyzeRequest is the body of POST /api/v1/meals/analyze
type analyzeRequest struct {
	Description string `json:"description"`
	PhotoURL    string `json:"photoUrl"`
}

// AnalyzeMeal handles meal analysis requests
func (h *Handler) AnalyzeMeal(c *gin.Context) {
	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service not configured"})
		return
	}

	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	req := &domain.MealRequest{
		Description: body.Description,
		PhotoRef:    body.PhotoURL,
		ForceMicros: c.Query("forceMicros") == "true",
	}

	profile, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "description or photoUrl is required")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// resolveRequest is the body of POST /api/v1/nutrition/resolve
type resolveRequest struct {
	Item        string `json:"item" binding:"required"`
	PortionText string `json:"portion_text"`
}

// resolveResponse reports one item's provenance and scaled macros
type resolveResponse struct {
	Item       string        `json:"item"`
	Query      string        `json:"query"`
	Source     domain.Source `json:"source"`
	Multiplier float64       `json:"multiplier"`
	Macros     domain.Macros `json:"macros"`
}

// ResolveItem handles single-item resolution requests
func (h *Handler) ResolveItem(c *gin.Context) {
	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service not configured"})
		return
	}

	var body resolveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	res, err := h.analyzer.ResolveItem(c.Request.Context(), domain.CandidateItem{
		Name:        strings.TrimSpace(body.Item),
		PortionText: strings.TrimSpace(body.PortionText),
	})
	if err != nil {
		h.writeError(c, err, "item has no searchable text")
		return
	}

	c.JSON(http.StatusOK, resolveResponse{
		Item:       res.Item.Name,
		Query:      res.Query,
		Source:     res.Resolved.Source,
		Multiplier: res.Multiplier,
		Macros:     res.Contribution,
	})
}

// writeError maps pipeline errors to status codes; invalidMsg describes
// what the endpoint needed when the request had nothing to work with
func (h *Handler) writeError(c *gin.Context, err error, invalidMsg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMsg})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no nutrition source matched"})
	case errors.Is(err, domain.ErrMissingCredentials):
		h.logger.Error("missing upstream credentials", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service is not configured"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
