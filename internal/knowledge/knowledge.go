package knowledge

import (
	"fmt"
	"sort"
	"strings"
)

// Range is an inclusive optimal band for a vegetation index.
type Range struct {
	Min float64
	Max float64
}

// CropProfile holds crop-specific thresholds and known failure modes.
type CropProfile struct {
	Name         string
	OptimalNDVI  Range
	OptimalEVI   Range
	OptimalSAVI  Range
	WaterNeeds   string
	CommonIssues map[string]string
}

var crops = map[string]CropProfile{
	"wheat": {
		Name:        "wheat",
		OptimalNDVI: Range{0.6, 0.8},
		OptimalEVI:  Range{0.4, 0.6},
		OptimalSAVI: Range{0.5, 0.7},
		WaterNeeds:  "moderate",
		CommonIssues: map[string]string{
			"yellow_rust":         "Low NDVI with patchy patterns",
			"water_stress":        "NDVI < 0.5, NDWI < -0.1",
			"nitrogen_deficiency": "NDVI < 0.5, uniform pattern",
		},
	},
	"rice": {
		Name:        "rice",
		OptimalNDVI: Range{0.7, 0.85},
		OptimalEVI:  Range{0.5, 0.7},
		OptimalSAVI: Range{0.6, 0.8},
		WaterNeeds:  "high",
		CommonIssues: map[string]string{
			"blast_disease":       "Sudden NDVI drop, localized",
			"water_stress":        "NDVI < 0.6, NDWI < 0.0",
			"nutrient_deficiency": "NDVI < 0.6, yellowing",
		},
	},
	"corn": {
		Name:        "corn",
		OptimalNDVI: Range{0.65, 0.85},
		OptimalEVI:  Range{0.45, 0.65},
		OptimalSAVI: Range{0.55, 0.75},
		WaterNeeds:  "high",
		CommonIssues: map[string]string{
			"drought_stress":      "NDVI < 0.6, NDWI < -0.15",
			"nitrogen_deficiency": "NDVI < 0.55, lower leaves yellow",
			"disease":             "Irregular NDVI patterns",
		},
	},
	"cotton": {
		Name:        "cotton",
		OptimalNDVI: Range{0.6, 0.75},
		OptimalEVI:  Range{0.4, 0.6},
		OptimalSAVI: Range{0.5, 0.7},
		WaterNeeds:  "moderate",
		CommonIssues: map[string]string{
			"water_stress":    "NDVI < 0.5, leaf curling",
			"pest_damage":     "Patchy low NDVI",
			"nutrient_stress": "Uniform low NDVI < 0.55",
		},
	},
}

var defaultProfile = CropProfile{
	Name:        "default",
	OptimalNDVI: Range{0.6, 0.8},
	OptimalEVI:  Range{0.4, 0.6},
	OptimalSAVI: Range{0.5, 0.7},
	WaterNeeds:  "moderate",
	CommonIssues: map[string]string{
		"general_stress": "Low vegetation indices",
	},
}

// CropInfo returns the knowledge-base profile for a crop type, falling
// back to the generic profile for unknown crops.
func CropInfo(cropType string) CropProfile {
	if profile, ok := crops[strings.ToLower(cropType)]; ok {
		return profile
	}
	return defaultProfile
}

// Issue is one diagnosed crop problem.
type Issue struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Diagnosis is the result of interpreting a set of spectral indices.
type Diagnosis struct {
	Healthy    bool    `json:"healthy"`
	Issues     []Issue `json:"issues"`
	Confidence float64 `json:"confidence"`
}

// DiagnoseIndices interprets vegetation indices against the crop's
// optimal bands and reports the detected issues.
func DiagnoseIndices(ndvi, ndwi float64, cropType string) Diagnosis {
	profile := CropInfo(cropType)

	var issues []Issue
	var scores []float64

	if ndvi < profile.OptimalNDVI.Min {
		severity := "moderate"
		if ndvi < profile.OptimalNDVI.Min*0.7 {
			severity = "severe"
		}
		issues = append(issues, Issue{
			Type:     "low_vegetation_health",
			Severity: severity,
			Description: fmt.Sprintf("NDVI (%.2f) is below optimal range (%.2f-%.2f)",
				ndvi, profile.OptimalNDVI.Min, profile.OptimalNDVI.Max),
			Confidence: 0.9,
		})
		scores = append(scores, 0.9)
	} else if ndvi > profile.OptimalNDVI.Max {
		issues = append(issues, Issue{
			Type:        "excessive_vegetation",
			Severity:    "low",
			Description: fmt.Sprintf("NDVI (%.2f) is above typical range - may indicate dense growth", ndvi),
			Confidence:  0.6,
		})
		scores = append(scores, 0.6)
	}

	if ndwi < -0.1 {
		severity := "moderate"
		if ndwi < -0.2 {
			severity = "severe"
		}
		issues = append(issues, Issue{
			Type:        "water_stress",
			Severity:    severity,
			Description: fmt.Sprintf("NDWI (%.2f) indicates water stress", ndwi),
			Confidence:  0.85,
		})
		scores = append(scores, 0.85)
	}

	if len(issues) == 0 {
		issues = append(issues, Issue{
			Type:        "healthy",
			Severity:    "none",
			Description: fmt.Sprintf("All indices within optimal range for %s", profile.Name),
			Confidence:  0.95,
		})
		scores = append(scores, 0.95)
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}

	healthy := len(issues) == 1 && issues[0].Type == "healthy"
	return Diagnosis{
		Healthy:    healthy,
		Issues:     issues,
		Confidence: total / float64(len(scores)),
	}
}

// Recommendation is one prioritized action for a diagnosed issue.
type Recommendation struct {
	Action        string `json:"action"`
	Priority      string `json:"priority"`
	Timeframe     string `json:"timeframe"`
	Details       string `json:"details"`
	EstimatedCost string `json:"estimated_cost"`
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// RecommendActions turns a diagnosis into prioritized field actions.
// rainExpected suppresses irrigation advice, farmArea scales amounts and
// cost estimates (in rupees).
func RecommendActions(diagnosis Diagnosis, rainExpected bool, farmArea float64) []Recommendation {
	if farmArea <= 0 {
		farmArea = 1.0
	}

	var recs []Recommendation
	for _, issue := range diagnosis.Issues {
		switch issue.Type {
		case "water_stress":
			if issue.Severity != "moderate" && issue.Severity != "severe" {
				continue
			}
			if rainExpected {
				recs = append(recs, Recommendation{
					Action:        "Monitor irrigation - rain expected",
					Priority:      "medium",
					Timeframe:     "this_week",
					Details:       "Rain is forecasted. Monitor soil moisture before irrigating.",
					EstimatedCost: "₹0",
				})
				continue
			}
			amount := 25
			priority := "medium"
			if issue.Severity == "severe" {
				amount = 40
				priority = "high"
			}
			recs = append(recs, Recommendation{
				Action:    "Immediate irrigation needed",
				Priority:  priority,
				Timeframe: "immediate",
				Details: fmt.Sprintf("Apply %dmm of water (~%dL for %.1f hectare)",
					amount, int(float64(amount)*farmArea*10), farmArea),
				EstimatedCost: fmt.Sprintf("₹%d", int(float64(amount)*farmArea*50)),
			})

		case "low_vegetation_health":
			recs = append(recs,
				Recommendation{
					Action:        "Soil testing and nutrient analysis",
					Priority:      "high",
					Timeframe:     "this_week",
					Details:       "Low NDVI may indicate nutrient deficiency. Test soil for N-P-K levels.",
					EstimatedCost: fmt.Sprintf("₹%d", int(500*farmArea)),
				},
				Recommendation{
					Action:        "Apply nitrogen fertilizer",
					Priority:      "medium",
					Timeframe:     "after_soil_test",
					Details:       "Based on soil test, apply urea or DAP as needed",
					EstimatedCost: fmt.Sprintf("₹%d", int(2000*farmArea)),
				})

		case "healthy":
			recs = append(recs, Recommendation{
				Action:        "Continue current management",
				Priority:      "low",
				Timeframe:     "ongoing",
				Details:       "Crop health is good. Maintain current irrigation and fertilization schedule.",
				EstimatedCost: "₹0",
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

// HealthCategory buckets an NDVI reading against the crop's optimal band.
func HealthCategory(ndvi float64, cropType string) (string, string) {
	profile := CropInfo(cropType)
	min, max := profile.OptimalNDVI.Min, profile.OptimalNDVI.Max

	switch {
	case ndvi >= max:
		return "excellent", "Vegetation is thriving with optimal growth"
	case ndvi >= min:
		return "good", "Vegetation health is within normal range"
	case ndvi >= min*0.7:
		return "fair", "Vegetation shows signs of stress, requires attention"
	default:
		return "poor", "Vegetation is severely stressed, immediate action needed"
	}
}
