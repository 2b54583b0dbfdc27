package models

import "time"

// Intent is the category of farmer request a message is classified into.
type Intent string

const (
	IntentHealthCheck      Intent = "health_check"
	IntentRecommendation   Intent = "recommendation"
	IntentProblemDiagnosis Intent = "problem_diagnosis"
	IntentGeneralInfo      Intent = "general_info"
	IntentWeather          Intent = "weather"
)

// Intents lists every valid intent in tie-break priority order:
// the most actionable intent wins when pattern counts are equal.
var Intents = []Intent{
	IntentHealthCheck,
	IntentProblemDiagnosis,
	IntentRecommendation,
	IntentWeather,
	IntentGeneralInfo,
}

// Confidence reflects how many classifier patterns matched the message.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ChatMessage is one persisted chat turn. Immutable once saved.
type ChatMessage struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	FarmID       string            `json:"farm_id,omitempty"`
	Message      string            `json:"message"`
	ResponseText string            `json:"response_text"`
	Suggestions  []string          `json:"suggestions"`
	Intent       Intent            `json:"intent"`
	Entities     map[string]string `json:"entities"`
	Confidence   Confidence        `json:"confidence"`
	Source       string            `json:"source"`
	CreatedAt    time.Time         `json:"timestamp"`
}

// Farm is a registered field belonging to a user.
type Farm struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CropType  string    `json:"crop_type"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Area      float64   `json:"area_hectares"`
	Address   string    `json:"location_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SatelliteAnalysis is one vegetation-index reading for a farm. The chat
// core only reads these; they are produced elsewhere.
type SatelliteAnalysis struct {
	ID          string    `json:"id"`
	FarmID      string    `json:"farm_id"`
	NDVI        float64   `json:"ndvi"`
	EVI         float64   `json:"evi"`
	SAVI        float64   `json:"savi"`
	NDWI        float64   `json:"ndwi"`
	HealthScore float64   `json:"health_score"`
	Issues      []string  `json:"issues"`
	CreatedAt   time.Time `json:"created_at"`
}

// TrendPoint is one historical reading used for trend context.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
