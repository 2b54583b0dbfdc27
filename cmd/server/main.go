package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/advisor"
	"github.com/agrovision/backend/internal/bot"
	"github.com/agrovision/backend/internal/classifier"
	"github.com/agrovision/backend/internal/server"
	"github.com/agrovision/backend/internal/storage"
	"github.com/agrovision/backend/internal/weather"
	"github.com/agrovision/backend/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Weather cache is optional: no Redis address means no caching
	var cache weather.Cache = weather.NoopCache{}
	if cfg.Redis.Addr != "" {
		redisCache, err := weather.NewRedisCache(cfg.Redis.Addr, logger)
		if err != nil {
			logger.Warn("Redis unavailable, weather caching disabled", zap.Error(err))
		} else {
			cache = redisCache
			defer redisCache.Close()
		}
	}

	weatherClient := weather.NewClient(cfg.Weather.APIKey, cache, logger)

	// LLM client is optional: without an API key every turn takes the
	// rule-based path
	var llmClient *openai.Client
	if cfg.LLM.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.LLM.APIKey)
		clientConfig.BaseURL = cfg.LLM.BaseURL
		llmClient = openai.NewClientWithConfig(clientConfig)
	} else {
		logger.Warn("No LLM API key configured, responses will be rule-based")
	}

	var clf classifier.Classifier = classifier.NewRuleClassifier()
	if llmClient != nil && cfg.LLM.ClassifyWithLLM {
		clf = classifier.NewLLMClassifier(llmClient, cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature, cfg.LLM.Timeout, logger)
	}

	contexts := advisor.NewContextBuilder(store, store, weatherClient, cfg.Chat.FetchTimeout, cfg.Chat.BuildTimeout, logger)
	generator := advisor.NewGenerator(llmClient, cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature, cfg.LLM.Timeout, logger)
	service := advisor.NewService(clf, contexts, generator, store, logger)

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:     server.NewChatHandler(service, logger),
		FarmHandler:     server.NewFarmHandler(store, logger),
		AnalysisHandler: server.NewAnalysisHandler(store, logger),
		AllowOrigins:    cfg.Server.AllowOrigins,
	})

	// Optional Telegram gateway
	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, service, store, logger)
		if err != nil {
			logger.Fatal("Failed to create Telegram bot", zap.Error(err))
		}
		go func() {
			if err := b.Start(); err != nil {
				logger.Error("Telegram bot stopped", zap.Error(err))
			}
		}()
		defer b.Stop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
