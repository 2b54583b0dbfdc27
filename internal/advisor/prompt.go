package advisor

import (
	"fmt"
	"strings"

	"github.com/agrovision/backend/internal/classifier"
	"github.com/agrovision/backend/internal/knowledge"
	"github.com/agrovision/backend/internal/models"
)

const systemPrompt = `You are an experienced agricultural advisor helping Indian farmers.
Your role is to provide practical, actionable advice in simple language.

Guidelines:
- Be conversational and friendly
- Avoid technical jargon unless necessary
- Provide specific, actionable recommendations
- Include cost estimates in Indian Rupees when relevant
- Consider local farming practices
- Be encouraging and supportive
- If data is limited, acknowledge it but still provide helpful guidance
- Keep responses concise (2-3 paragraphs max)`

// renderContext serializes the context bundle into the text block embedded
// in the LLM prompt. Absent sections are simply skipped.
func renderContext(bundle *models.ChatContext, intent models.Intent, entities map[string]string) string {
	var parts []string

	if bundle.FarmID != "" {
		parts = append(parts, fmt.Sprintf("Farm ID: %s", bundle.FarmID))
	}
	if bundle.Farm != nil {
		parts = append(parts, fmt.Sprintf("Farm Name: %s", bundle.Farm.Name))
		parts = append(parts, fmt.Sprintf("Area: %.1f hectares", bundle.Farm.Area))
	}

	cropType := entities[classifier.EntityCropType]
	if cropType == "" && bundle.Farm != nil {
		cropType = bundle.Farm.CropType
	}
	if cropType != "" {
		profile := knowledge.CropInfo(cropType)
		parts = append(parts, fmt.Sprintf("Crop Type: %s", cropType))
		parts = append(parts, fmt.Sprintf("Optimal NDVI Range: %.2f-%.2f", profile.OptimalNDVI.Min, profile.OptimalNDVI.Max))
		parts = append(parts, fmt.Sprintf("Water Needs: %s", profile.WaterNeeds))
	}

	if bundle.Analysis != nil {
		a := bundle.Analysis
		parts = append(parts, "\n--- Latest Crop Health Analysis ---")
		parts = append(parts, fmt.Sprintf("NDVI: %.2f", a.NDVI))
		parts = append(parts, fmt.Sprintf("EVI: %.2f", a.EVI))
		parts = append(parts, fmt.Sprintf("Health Score: %.0f/100", a.HealthScore))
		if len(a.Issues) > 0 {
			parts = append(parts, fmt.Sprintf("Detected Issues: %s", strings.Join(a.Issues, ", ")))
		}
	}

	if bundle.Weather != nil {
		w := bundle.Weather
		parts = append(parts, "\n--- Current Weather Conditions ---")
		parts = append(parts, fmt.Sprintf("Temperature: %.1f°C", w.Temperature))
		parts = append(parts, fmt.Sprintf("Humidity: %.0f%%", w.Humidity))
		parts = append(parts, fmt.Sprintf("Recent Rainfall: %.1fmm", w.Rainfall))
		if w.Description != "" {
			parts = append(parts, fmt.Sprintf("Weather: %s", w.Description))
		}
	}

	if len(bundle.Forecast) > 0 {
		parts = append(parts, "\n--- 7-Day Outlook ---")
		for _, day := range bundle.Forecast {
			parts = append(parts, fmt.Sprintf("%s: %.0f-%.0f°C, rain %.0f%%, %s",
				day.Date, day.TempMin, day.TempMax, day.RainfallProb, day.Description))
		}
	}

	if len(bundle.Trend) >= 2 && (intent == models.IntentHealthCheck || intent == models.IntentProblemDiagnosis) {
		recent := bundle.Trend
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		direction := "declining"
		if recent[len(recent)-1].Value > recent[0].Value {
			direction = "improving"
		}
		values := make([]string, 0, len(recent))
		for _, p := range recent {
			values = append(values, fmt.Sprintf("%.2f", p.Value))
		}
		parts = append(parts, "\n--- Historical Trend ---")
		parts = append(parts, fmt.Sprintf("Recent Trend: %s", direction))
		parts = append(parts, fmt.Sprintf("Last %d readings: %s", len(values), strings.Join(values, ", ")))
	}

	if intent == models.IntentProblemDiagnosis && bundle.Analysis != nil {
		diagnosis := knowledge.DiagnoseIndices(bundle.Analysis.NDVI, bundle.Analysis.NDWI, cropType)
		parts = append(parts, "\n--- Diagnosis ---")
		parts = append(parts, fmt.Sprintf("Confidence: %.2f", diagnosis.Confidence))
		for _, issue := range diagnosis.Issues {
			parts = append(parts, fmt.Sprintf("- %s", issue.Description))
		}
	}

	if intent == models.IntentRecommendation && bundle.Analysis != nil {
		diagnosis := knowledge.DiagnoseIndices(bundle.Analysis.NDVI, bundle.Analysis.NDWI, cropType)

		rainExpected := false
		for _, day := range bundle.Forecast {
			if day.RainfallAmount > 10 {
				rainExpected = true
				break
			}
		}
		area := 1.0
		if bundle.Farm != nil && bundle.Farm.Area > 0 {
			area = bundle.Farm.Area
		}

		recs := knowledge.RecommendActions(diagnosis, rainExpected, area)
		if len(recs) > 0 {
			parts = append(parts, "\n--- Recommended Actions ---")
			for _, rec := range recs {
				parts = append(parts, fmt.Sprintf("[%s] %s (%s, %s): %s",
					rec.Priority, rec.Action, rec.Timeframe, rec.EstimatedCost, rec.Details))
			}
		}
	}

	return strings.Join(parts, "\n")
}

func buildUserPrompt(message, contextBlock string) string {
	return fmt.Sprintf(`Farmer's Question: %s

Farm Context:
%s

Please provide a helpful response that:
1. Directly answers their question
2. Explains any relevant data points in simple terms
3. Gives 2-3 specific action items if applicable
4. Suggests follow-up steps or monitoring points

Keep it conversational and practical.`, message, contextBlock)
}
