package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovision/backend/internal/models"
)

func TestClassifyIntents(t *testing.T) {
	clf := NewRuleClassifier()

	tests := []struct {
		name       string
		message    string
		intent     models.Intent
		confidence models.Confidence
	}{
		{
			name:       "health check",
			message:    "How is my crop doing this week?",
			intent:     models.IntentHealthCheck,
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "health check multiple patterns",
			message:    "Check the health status of my crop, is the crop healthy?",
			intent:     models.IntentHealthCheck,
			confidence: models.ConfidenceHigh,
		},
		{
			name:       "recommendation",
			message:    "Please recommend a fertilizer",
			intent:     models.IntentRecommendation,
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "problem diagnosis",
			message:    "There is a disease and pest damage in my field",
			intent:     models.IntentProblemDiagnosis,
			confidence: models.ConfidenceHigh,
		},
		{
			name:       "weather",
			message:    "Will it rain tomorrow?",
			intent:     models.IntentWeather,
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "general info",
			message:    "Explain NDVI to me",
			intent:     models.IntentGeneralInfo,
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "no match falls back to general info",
			message:    "hello",
			intent:     models.IntentGeneralInfo,
			confidence: models.ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := clf.Classify(tt.message)
			assert.Equal(t, tt.intent, result.Intent)
			assert.Equal(t, tt.confidence, result.Confidence)
		})
	}
}

func TestClassifyAlwaysReturnsKnownIntent(t *testing.T) {
	clf := NewRuleClassifier()

	messages := []string{
		"",
		"hello",
		"üñré ñàmàsté",
		"what should I do about the yellowing disease in my wheat field, any advice?",
		"1234567890 !@#$%",
	}

	for _, msg := range messages {
		result := clf.Classify(msg)
		assert.Contains(t, models.Intents, result.Intent, "message %q", msg)
		assert.NotEmpty(t, result.Confidence)
	}
}

func TestClassifyTieBreakPriority(t *testing.T) {
	clf := NewRuleClassifier()

	// "problem" and "explain" match one pattern each; problem_diagnosis
	// outranks general_info in the priority order.
	result := clf.Classify("explain the problem")
	assert.Equal(t, models.IntentProblemDiagnosis, result.Intent)
}

func TestClassifyYellowingWheatScenario(t *testing.T) {
	clf := NewRuleClassifier()

	result := clf.Classify("My wheat crop leaves are yellowing, what should I do?")
	assert.Equal(t, models.IntentProblemDiagnosis, result.Intent)
	require.Contains(t, result.Entities, EntityCropType)
	assert.Equal(t, "wheat", result.Entities[EntityCropType])
}

func TestClassifyHelloHasNoEntities(t *testing.T) {
	clf := NewRuleClassifier()

	result := clf.Classify("hello")
	assert.Equal(t, models.IntentGeneralInfo, result.Intent)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
	assert.Empty(t, result.Entities)
}

func TestExtractEntitiesCropType(t *testing.T) {
	tests := []struct {
		message string
		crop    string
	}{
		{"My RICE field looks weak", "rice"},
		{"is dhan doing fine", "rice"},
		{"the maize is tall", "corn"},
		{"makka harvest time", "corn"},
		{"kapas prices are up", "cotton"},
		{"gehun or wheat, same thing", "wheat"},
	}

	for _, tt := range tests {
		entities := ExtractEntities(tt.message)
		require.Contains(t, entities, EntityCropType, "message %q", tt.message)
		assert.Equal(t, tt.crop, entities[EntityCropType])
	}
}

func TestExtractEntitiesDateReference(t *testing.T) {
	tests := []struct {
		message string
		token   string
	}{
		{"what happened today", "0d"},
		{"the readings from yesterday", "-1d"},
		{"compare with last week", "-7d"},
		{"compare with last   week", "-7d"},
	}

	for _, tt := range tests {
		entities := ExtractEntities(tt.message)
		require.Contains(t, entities, EntityDateRef, "message %q", tt.message)
		assert.Equal(t, tt.token, entities[EntityDateRef])
	}
}

func TestExtractEntitiesFarmName(t *testing.T) {
	entities := ExtractEntities("How is farm greenvalley doing?")
	require.Contains(t, entities, EntityFarmName)
	assert.Equal(t, "greenvalley", entities[EntityFarmName])
}

func TestExtractEntitiesAbsent(t *testing.T) {
	entities := ExtractEntities("nothing relevant here")
	assert.NotContains(t, entities, EntityCropType)
	assert.NotContains(t, entities, EntityDateRef)
	assert.NotContains(t, entities, EntityFarmName)
}
