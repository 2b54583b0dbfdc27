package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/models"
	"github.com/agrovision/backend/internal/storage"
)

type FarmHandler struct {
	farms  storage.FarmStore
	logger *zap.Logger
}

func NewFarmHandler(farms storage.FarmStore, logger *zap.Logger) *FarmHandler {
	return &FarmHandler{farms: farms, logger: logger}
}

type farmCreateRequest struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name" binding:"required"`
	CropType  string   `json:"crop_type" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Area      float64  `json:"area_hectares"`
	Address   string   `json:"location_address"`
}

type farmUpdateRequest struct {
	Name      *string  `json:"name"`
	CropType  *string  `json:"crop_type"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Area      *float64 `json:"area_hectares"`
	Address   *string  `json:"location_address"`
}

func (h *FarmHandler) Create(c *gin.Context) {
	var req farmCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	farm := &models.Farm{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Name:      req.Name,
		CropType:  strings.ToLower(req.CropType),
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Area:      req.Area,
		Address:   req.Address,
	}

	if err := h.farms.CreateFarm(c.Request.Context(), farm); err != nil {
		h.logger.Error("Failed to create farm", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create farm"})
		return
	}

	c.JSON(http.StatusCreated, farm)
}

func (h *FarmHandler) Get(c *gin.Context) {
	farm, err := h.farms.GetFarm(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
			return
		}
		h.logger.Error("Failed to fetch farm", zap.Error(err), zap.String("farm_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch farm"})
		return
	}

	c.JSON(http.StatusOK, farm)
}

func (h *FarmHandler) List(c *gin.Context) {
	userID := c.Query("user_id")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	farms, err := h.farms.ListFarms(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list farms", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list farms"})
		return
	}

	c.JSON(http.StatusOK, farms)
}

func (h *FarmHandler) Update(c *gin.Context) {
	var req farmUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	farm, err := h.farms.GetFarm(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
			return
		}
		h.logger.Error("Failed to fetch farm", zap.Error(err), zap.String("farm_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch farm"})
		return
	}

	if req.Name != nil {
		farm.Name = *req.Name
	}
	if req.CropType != nil {
		farm.CropType = strings.ToLower(*req.CropType)
	}
	if req.Latitude != nil {
		farm.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		farm.Longitude = *req.Longitude
	}
	if req.Area != nil {
		farm.Area = *req.Area
	}
	if req.Address != nil {
		farm.Address = *req.Address
	}

	if err := h.farms.UpdateFarm(c.Request.Context(), farm); err != nil {
		h.logger.Error("Failed to update farm", zap.Error(err), zap.String("farm_id", farm.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update farm"})
		return
	}

	c.JSON(http.StatusOK, farm)
}

func (h *FarmHandler) Delete(c *gin.Context) {
	err := h.farms.DeleteFarm(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
			return
		}
		h.logger.Error("Failed to delete farm", zap.Error(err), zap.String("farm_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete farm"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "farm deleted"})
}
