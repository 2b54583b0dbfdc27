package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	ChatHandler     *ChatHandler
	FarmHandler     *FarmHandler
	AnalysisHandler *AnalysisHandler
	AllowOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", healthCheck)

	api := router.Group("/api")
	{
		api.POST("/chat", cfg.ChatHandler.Chat)
		api.GET("/chat/history/:farm_id", cfg.ChatHandler.History)

		api.GET("/farms", cfg.FarmHandler.List)
		api.POST("/farms", cfg.FarmHandler.Create)
		api.GET("/farms/:id", cfg.FarmHandler.Get)
		api.PUT("/farms/:id", cfg.FarmHandler.Update)
		api.DELETE("/farms/:id", cfg.FarmHandler.Delete)

		api.GET("/farms/:id/analysis/latest", cfg.AnalysisHandler.Latest)
		api.GET("/farms/:id/analysis/trend", cfg.AnalysisHandler.Trend)
		api.POST("/farms/:id/analysis", cfg.AnalysisHandler.Create)
	}

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
