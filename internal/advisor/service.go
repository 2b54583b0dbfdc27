package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/classifier"
	"github.com/agrovision/backend/internal/models"
	"github.com/agrovision/backend/internal/storage"
)

// Request is one inbound chat turn.
type Request struct {
	UserID  string
	FarmID  string
	Message string
}

// Service runs the full turn pipeline: classify, build context, generate,
// persist. Persistence is best-effort: a storage fault is logged and the
// response is still returned to the caller.
type Service struct {
	classifier classifier.Classifier
	contexts   *ContextBuilder
	generator  *Generator
	chats      storage.ChatStore
	logger     *zap.Logger
}

func NewService(clf classifier.Classifier, contexts *ContextBuilder, generator *Generator, chats storage.ChatStore, logger *zap.Logger) *Service {
	return &Service{
		classifier: clf,
		contexts:   contexts,
		generator:  generator,
		chats:      chats,
		logger:     logger,
	}
}

// Respond processes one chat turn. The only error condition is an empty
// message; classification, context building, generation and persistence
// all degrade rather than fail.
func (s *Service) Respond(ctx context.Context, req Request) (*models.ChatMessage, error) {
	if req.Message == "" {
		return nil, fmt.Errorf("message is required")
	}

	result := s.classifier.Classify(req.Message)
	s.logger.Debug("Classified message",
		zap.String("intent", string(result.Intent)),
		zap.String("confidence", string(result.Confidence)),
		zap.Any("entities", result.Entities))

	bundle := s.contexts.Build(ctx, req.FarmID, result.Intent)

	text, suggestions, source := s.generator.Generate(ctx, req.Message, result.Intent, result.Entities, bundle)

	msg := &models.ChatMessage{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		FarmID:       req.FarmID,
		Message:      req.Message,
		ResponseText: text,
		Suggestions:  suggestions,
		Intent:       result.Intent,
		Entities:     result.Entities,
		Confidence:   result.Confidence,
		Source:       source,
		CreatedAt:    time.Now(),
	}

	if err := s.chats.SaveMessage(ctx, msg); err != nil {
		s.logger.Error("Failed to save chat turn",
			zap.Error(err),
			zap.String("chat_id", msg.ID),
			zap.String("user_id", req.UserID))
	}

	return msg, nil
}

// History returns the most recent turns for a farm, newest first. An
// unknown farm yields an empty slice, not an error.
func (s *Service) History(ctx context.Context, farmID string, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.chats.History(ctx, farmID, limit)
}
