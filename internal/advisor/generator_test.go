package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/agrovision/backend/internal/models"
)

type stubCompletion struct {
	content string
	err     error
}

func (s *stubCompletion) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func newTestGenerator(client completionClient) *Generator {
	g := NewGenerator(nil, "test-model", 500, 0.3, time.Second, zap.NewNop())
	g.client = client
	return g
}

func TestGenerateLLMPath(t *testing.T) {
	client := &stubCompletion{content: `Your wheat looks healthy overall.

1. Keep the irrigation schedule steady for now
2. Walk the field edges this week for pests
3. Re-check the NDVI reading in seven days`}
	g := newTestGenerator(client)

	text, suggestions, source := g.Generate(context.Background(), "how is my crop", models.IntentHealthCheck, nil, &models.ChatContext{})

	assert.Equal(t, SourceLLM, source)
	assert.Contains(t, text, "healthy overall")
	assert.Len(t, suggestions, 3)
	assert.Equal(t, "Keep the irrigation schedule steady for now", suggestions[0])
}

func TestGenerateFallsBackOnError(t *testing.T) {
	g := newTestGenerator(&stubCompletion{err: errors.New("upstream timeout")})

	for _, intent := range models.Intents {
		text, suggestions, source := g.Generate(context.Background(), "help me", intent, map[string]string{}, &models.ChatContext{})
		assert.Equal(t, SourceRuleBased, source, "intent %s", intent)
		assert.NotEmpty(t, text, "intent %s", intent)
		assert.GreaterOrEqual(t, len(suggestions), 1)
		assert.LessOrEqual(t, len(suggestions), 5)
	}
}

func TestGenerateFallsBackOnEmptyCompletion(t *testing.T) {
	g := newTestGenerator(&stubCompletion{content: "   "})

	text, _, source := g.Generate(context.Background(), "hello", models.IntentGeneralInfo, map[string]string{}, &models.ChatContext{})
	assert.Equal(t, SourceRuleBased, source)
	assert.NotEmpty(t, text)
}

func TestGenerateWithoutClientUsesRules(t *testing.T) {
	g := NewGenerator(nil, "test-model", 500, 0.3, time.Second, zap.NewNop())

	text, suggestions, source := g.Generate(context.Background(), "hello", models.IntentGeneralInfo, map[string]string{}, &models.ChatContext{})
	assert.Equal(t, SourceRuleBased, source)
	assert.NotEmpty(t, text)
	assert.NotEmpty(t, suggestions)
}

func TestGenerateBankSuggestionsWhenNoneExtractable(t *testing.T) {
	g := newTestGenerator(&stubCompletion{content: "Everything looks fine, nothing to do right now."})

	_, suggestions, source := g.Generate(context.Background(), "how is my crop", models.IntentHealthCheck, nil, &models.ChatContext{})
	assert.Equal(t, SourceLLM, source)
	assert.GreaterOrEqual(t, len(suggestions), 1)
	assert.LessOrEqual(t, len(suggestions), 5)
}

func TestExtractSuggestions(t *testing.T) {
	text := `Some intro line.

1. First concrete action item
2) Second concrete action item
- Third concrete action item
* short
• Fifth concrete action item here

Closing thought.`

	suggestions := extractSuggestions(text)
	assert.Equal(t, []string{
		"First concrete action item",
		"Second concrete action item",
		"Third concrete action item",
		"Fifth concrete action item here",
	}, suggestions)
}

func TestExtractSuggestionsCapsAtFive(t *testing.T) {
	text := `1. Suggestion number one here
2. Suggestion number two here
3. Suggestion number three here
4. Suggestion number four here
5. Suggestion number five here
6. Suggestion number six here`

	assert.Len(t, extractSuggestions(text), 5)
}
