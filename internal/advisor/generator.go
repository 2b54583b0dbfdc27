package advisor

import (
	"context"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/models"
)

// Response sources recorded on the persisted turn.
const (
	SourceLLM       = "llm"
	SourceRuleBased = "rule_based"
)

// completionClient is the slice of the OpenAI client the generator needs.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// suggestionBank provides per-intent suggestions when the model response
// contains no extractable action items. Injected at construction so
// locales can swap it without touching logic.
type suggestionBank map[models.Intent][]string

func defaultSuggestionBank() suggestionBank {
	return suggestionBank{
		models.IntentHealthCheck: {
			"Request a new satellite analysis",
			"Compare with last month's readings",
		},
		models.IntentRecommendation: {
			"Review the detailed analysis report",
			"Plan next week's field work",
		},
		models.IntentProblemDiagnosis: {
			"Inspect the affected area closely",
			"Share a photo of the affected plants",
		},
		models.IntentWeather: {
			"Check the 7-day forecast",
			"Adjust irrigation to the forecast",
		},
		models.IntentGeneralInfo: {
			"Ask about current crop health",
			"Get weather forecast",
			"Request recommendations",
		},
	}
}

// Generator produces the turn response. The LLM path is a single attempt
// with a hard timeout; any error, timeout or empty completion falls
// through to the deterministic template path.
type Generator struct {
	client      completionClient
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	bank        suggestionBank
	templates   templateBank
	logger      *zap.Logger
}

func NewGenerator(client *openai.Client, model string, maxTokens int, temperature float64, timeout time.Duration, logger *zap.Logger) *Generator {
	g := &Generator{
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		bank:        defaultSuggestionBank(),
		templates:   defaultTemplates,
		logger:      logger,
	}
	if client != nil {
		g.client = client
	}
	if g.timeout <= 0 {
		g.timeout = 8 * time.Second
	}
	return g
}

// Generate returns (response_text, 1..5 suggestions, source). It never
// fails and never returns an empty response.
func (g *Generator) Generate(ctx context.Context, message string, intent models.Intent, entities map[string]string, bundle *models.ChatContext) (string, []string, string) {
	if g.client != nil {
		if text, suggestions, ok := g.generateLLM(ctx, message, intent, entities, bundle); ok {
			return text, suggestions, SourceLLM
		}
	}

	text, suggestions := g.templates.respond(message, intent, entities, bundle)
	return text, suggestions, SourceRuleBased
}

func (g *Generator) generateLLM(ctx context.Context, message string, intent models.Intent, entities map[string]string, bundle *models.ChatContext) (string, []string, bool) {
	lctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contextBlock := renderContext(bundle, intent, entities)

	resp, err := g.client.CreateChatCompletion(
		lctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildUserPrompt(message, contextBlock),
				},
			},
			MaxTokens:   g.maxTokens,
			Temperature: float32(g.temperature),
		},
	)
	if err != nil {
		g.logger.Error("LLM generation failed, using rule-based response", zap.Error(err))
		return "", nil, false
	}

	if len(resp.Choices) == 0 {
		g.logger.Error("LLM returned no choices, using rule-based response")
		return "", nil, false
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		g.logger.Error("LLM returned empty completion, using rule-based response")
		return "", nil, false
	}

	suggestions := extractSuggestions(text)
	if len(suggestions) == 0 {
		suggestions = g.bank[intent]
	}
	if len(suggestions) == 0 {
		suggestions = defaultSuggestions
	}

	return text, suggestions, true
}

var suggestionLine = regexp.MustCompile(`^\s*[\d\-\*•]+[\.)]?\s*`)

// extractSuggestions pulls numbered or bulleted action items out of the
// model response, keeping at most five.
func extractSuggestions(text string) []string {
	var suggestions []string
	for _, line := range strings.Split(text, "\n") {
		if !suggestionLine.MatchString(line) {
			continue
		}
		suggestion := strings.TrimSpace(suggestionLine.ReplaceAllString(line, ""))
		if len(suggestion) > 10 {
			suggestions = append(suggestions, suggestion)
		}
		if len(suggestions) == 5 {
			break
		}
	}
	return suggestions
}
