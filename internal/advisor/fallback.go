package advisor

import (
	"fmt"
	"strings"

	"github.com/agrovision/backend/internal/classifier"
	"github.com/agrovision/backend/internal/models"
)

// fallbackEntry is one deterministic response template. The template may
// contain at most one fmt verb, filled from the bucketed parameter.
type fallbackEntry struct {
	template    string
	suggestions []string
}

// templateBank maps (intent, bucket) to a template. Injected into the
// generator at construction so locales can swap templates without
// touching logic. Keeping it a flat table instead of branching keeps
// every entry auditable and testable on its own.
type templateBank map[models.Intent]map[string]fallbackEntry

var defaultTemplates = templateBank{
	models.IntentHealthCheck: {
		"good": {
			template: "Based on the latest analysis of your farm, your crop is in good health (score: %.0f/100). Keep up the regular monitoring and maintenance.",
			suggestions: []string{
				"Continue regular irrigation schedule",
				"Monitor for any pest activity",
				"Check weather forecast for next week",
			},
		},
		"moderate": {
			template: "Based on the latest analysis of your farm, your crop shows moderate health (score: %.0f/100). Some attention is needed.",
			suggestions: []string{
				"Investigate areas with lower NDVI values",
				"Check soil moisture levels",
				"Consider nutrient supplementation",
			},
		},
		"poor": {
			template: "Based on the latest analysis of your farm, your crop needs immediate attention (score: %.0f/100).",
			suggestions: []string{
				"Conduct soil and water tests",
				"Consult with local agricultural officer",
				"Check for pest or disease signs",
			},
		},
		"no_data": {
			template: "Based on the latest analysis of your farm, I don't have recent analysis data. I recommend scheduling a new satellite scan.",
			suggestions: []string{
				"Request new satellite analysis",
				"Check field manually",
			},
		},
	},
	models.IntentRecommendation: {
		"issues": {
			template: "Based on your farm's current condition, here are my recommendations: I see there are some issues detected.",
			suggestions: []string{
				"Review detailed analysis report",
				"Prioritize high-severity issues first",
				"Monitor changes over next 7 days",
			},
		},
		"stable": {
			template: "Based on your farm's current condition, here are my recommendations: Your farm appears stable. Continue with regular care practices.",
			suggestions: []string{
				"Maintain current irrigation schedule",
				"Plan for upcoming season",
				"Keep monitoring weekly",
			},
		},
	},
	models.IntentProblemDiagnosis: {
		"yellowing": {
			template: "Let me help you diagnose the issue. Yellowing leaves often indicate nitrogen deficiency or water stress.",
			suggestions: []string{
				"Apply nitrogen-based fertilizer (Urea 20-30 kg/acre)",
				"Check irrigation - ensure adequate water",
				"Test soil for nutrient levels (₹500-1000)",
			},
		},
		"dying": {
			template: "Let me help you diagnose the issue. This is concerning and needs immediate attention.",
			suggestions: []string{
				"Inspect plants closely for pests/disease",
				"Check soil moisture immediately",
				"Contact local agricultural extension officer",
			},
		},
		"default": {
			template: "Let me help you diagnose the issue. Based on available data, I recommend conducting a detailed field inspection.",
			suggestions: []string{
				"Check for visible signs of pests or disease",
				"Test soil and water quality",
				"Review recent weather impact",
			},
		},
	},
	models.IntentWeather: {
		"hot": {
			template: "Let me provide weather information. Current temperature is %.1f°C. High temperature detected - ensure adequate irrigation.",
			suggestions: []string{
				"Increase irrigation frequency",
				"Monitor for heat stress",
			},
		},
		"normal": {
			template: "Let me provide weather information. Current temperature is %.1f°C. Temperature is within normal range.",
			suggestions: []string{
				"Continue regular care",
			},
		},
		"no_data": {
			template: "Let me provide weather information. Weather data is currently unavailable. Please check back later.",
			suggestions: []string{
				"Monitor local weather manually",
			},
		},
	},
	models.IntentGeneralInfo: {
		"default": {
			template: "I'm here to help you with %s farming. You can ask me about crop health, weather impact, recommendations, or any problems you're facing.",
			suggestions: []string{
				"Ask about current crop health",
				"Get weather forecast",
				"Request recommendations",
			},
		},
	},
}

var defaultSuggestions = []string{"Ask another question", "Request detailed analysis"}

// respond selects the template for the turn's intent and the bucketed
// context parameter. It never fails: a missing parameter falls through
// to a neutral bucket, and suggestions are never empty.
func (t templateBank) respond(message string, intent models.Intent, entities map[string]string, bundle *models.ChatContext) (string, []string) {
	bucket, arg := fallbackBucket(message, intent, entities, bundle)

	entry, ok := t[intent][bucket]
	if !ok {
		entry = t[models.IntentGeneralInfo]["default"]
		arg = "crop"
	}

	text := entry.template
	if arg != nil {
		text = fmt.Sprintf(entry.template, arg)
	}

	suggestions := entry.suggestions
	if len(suggestions) == 0 {
		suggestions = defaultSuggestions
	}
	return text, suggestions
}

// fallbackBucket reduces the context to the single parameter each intent's
// templates are keyed on.
func fallbackBucket(message string, intent models.Intent, entities map[string]string, bundle *models.ChatContext) (string, any) {
	switch intent {
	case models.IntentHealthCheck:
		if !bundle.HasAnalysis() {
			return "no_data", nil
		}
		score := bundle.Analysis.HealthScore
		switch {
		case score >= 75:
			return "good", score
		case score >= 50:
			return "moderate", score
		default:
			return "poor", score
		}

	case models.IntentRecommendation:
		if bundle.HasAnalysis() && len(bundle.Analysis.Issues) > 0 {
			return "issues", nil
		}
		return "stable", nil

	case models.IntentProblemDiagnosis:
		lower := strings.ToLower(message)
		if strings.Contains(lower, "yellowing") || strings.Contains(lower, "yellow") {
			return "yellowing", nil
		}
		if strings.Contains(lower, "dying") {
			return "dying", nil
		}
		return "default", nil

	case models.IntentWeather:
		if !bundle.HasWeather() {
			return "no_data", nil
		}
		temp := bundle.Weather.Temperature
		if temp > 35 {
			return "hot", temp
		}
		return "normal", temp

	default:
		cropType := entities[classifier.EntityCropType]
		if cropType == "" {
			cropType = "crop"
		}
		return "default", cropType
	}
}
