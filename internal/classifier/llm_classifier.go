package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/models"
)

type llmClassification struct {
	Intent     string            `json:"intent"`
	Confidence string            `json:"confidence"`
	Entities   map[string]string `json:"entities"`
}

// LLMClassifier asks the model to classify the message and falls back to
// the rule classifier whenever the call or the parse fails. Classification
// therefore never fails.
type LLMClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	rules       *RuleClassifier
	logger      *zap.Logger
}

func NewLLMClassifier(client *openai.Client, model string, maxTokens int, temperature float64, timeout time.Duration, logger *zap.Logger) *LLMClassifier {
	return &LLMClassifier{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		rules:       NewRuleClassifier(),
		logger:      logger,
	}
}

func (c *LLMClassifier) Classify(message string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Classify this farmer message into exactly one intent from:
health_check, recommendation, problem_diagnosis, general_info, weather.

Also extract entities when present: crop_type (wheat, rice, corn, cotton),
date_reference (0d, -1d, -7d), farm_name.

Return a JSON object with this structure:
{
    "intent": "intent_name",
    "confidence": "high|medium|low",
    "entities": {"crop_type": "...", "date_reference": "...", "farm_name": "..."}
}

Message: %s`, message)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get LLM classification", zap.Error(err))
		return c.rules.Classify(message)
	}

	if len(resp.Choices) == 0 {
		c.logger.Error("LLM classification returned no choices")
		return c.rules.Classify(message)
	}

	var parsed llmClassification
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.logger.Error("Failed to parse LLM classification",
			zap.Error(err),
			zap.String("response", raw))
		return c.rules.Classify(message)
	}

	intent, ok := validIntent(parsed.Intent)
	if !ok {
		return c.rules.Classify(message)
	}

	entities := parsed.Entities
	if entities == nil {
		entities = ExtractEntities(message)
	}

	return Result{
		Intent:     intent,
		Confidence: validConfidence(parsed.Confidence),
		Entities:   entities,
	}
}

func validIntent(s string) (models.Intent, bool) {
	for _, intent := range models.Intents {
		if models.Intent(s) == intent {
			return intent, true
		}
	}
	return "", false
}

func validConfidence(s string) models.Confidence {
	switch models.Confidence(s) {
	case models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow:
		return models.Confidence(s)
	default:
		return models.ConfidenceMedium
	}
}
