package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/advisor"
)

type ChatHandler struct {
	service *advisor.Service
	logger  *zap.Logger
}

func NewChatHandler(service *advisor.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

type chatRequest struct {
	UserID   string `json:"user_id"`
	FarmID   string `json:"farm_id"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

// Chat handles POST /api/chat. A missing message is the only user-visible
// error; everything past validation degrades inside the pipeline.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	msg, err := h.service.Respond(c.Request.Context(), advisor.Request{
		UserID:  req.UserID,
		FarmID:  req.FarmID,
		Message: req.Message,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id":          msg.ID,
		"response_text":    msg.ResponseText,
		"suggestions":      msg.Suggestions,
		"intent":           msg.Intent,
		"entities":         msg.Entities,
		"confidence_level": msg.Confidence,
		"timestamp":        msg.CreatedAt,
	})
}

// History handles GET /api/chat/history/:farm_id?limit=N.
func (h *ChatHandler) History(c *gin.Context) {
	farmID := c.Param("farm_id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	history, err := h.service.History(c.Request.Context(), farmID, limit)
	if err != nil {
		h.logger.Error("Failed to load chat history",
			zap.Error(err),
			zap.String("farm_id", farmID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, history)
}
