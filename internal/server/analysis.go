package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/models"
	"github.com/agrovision/backend/internal/storage"
)

type AnalysisHandler struct {
	analyses storage.AnalysisStore
	logger   *zap.Logger
}

func NewAnalysisHandler(analyses storage.AnalysisStore, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, logger: logger}
}

type analysisCreateRequest struct {
	NDVI        *float64 `json:"ndvi" binding:"required"`
	EVI         float64  `json:"evi"`
	SAVI        float64  `json:"savi"`
	NDWI        float64  `json:"ndwi"`
	HealthScore float64  `json:"health_score"`
	Issues      []string `json:"issues"`
}

// Create ingests one satellite reading for a farm. The chat core only
// consumes these; this endpoint exists so analysis producers can feed it.
func (h *AnalysisHandler) Create(c *gin.Context) {
	var req analysisCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	issues := req.Issues
	if issues == nil {
		issues = []string{}
	}

	analysis := &models.SatelliteAnalysis{
		ID:          uuid.New().String(),
		FarmID:      c.Param("id"),
		NDVI:        *req.NDVI,
		EVI:         req.EVI,
		SAVI:        req.SAVI,
		NDWI:        req.NDWI,
		HealthScore: req.HealthScore,
		Issues:      issues,
		CreatedAt:   time.Now(),
	}

	if err := h.analyses.SaveAnalysis(c.Request.Context(), analysis); err != nil {
		h.logger.Error("Failed to save analysis", zap.Error(err), zap.String("farm_id", analysis.FarmID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save analysis"})
		return
	}

	c.JSON(http.StatusCreated, analysis)
}

func (h *AnalysisHandler) Latest(c *gin.Context) {
	analysis, err := h.analyses.LatestAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no analysis for farm"})
			return
		}
		h.logger.Error("Failed to fetch latest analysis", zap.Error(err), zap.String("farm_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch analysis"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func (h *AnalysisHandler) Trend(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	trend, err := h.analyses.Trend(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.logger.Error("Failed to fetch trend", zap.Error(err), zap.String("farm_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch trend"})
		return
	}

	c.JSON(http.StatusOK, trend)
}
