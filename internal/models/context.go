package models

// ChatContext is the per-turn bundle assembled for the response generator.
// Each section is optional: a nil pointer means the source was unavailable
// or errored and that section was degraded away. Never persisted.
type ChatContext struct {
	FarmID   string             `json:"farm_id"`
	Farm     *Farm              `json:"farm,omitempty"`
	Analysis *SatelliteAnalysis `json:"analysis,omitempty"`
	Weather  *Weather           `json:"weather,omitempty"`
	Forecast []ForecastDay      `json:"forecast,omitempty"`
	Trend    []TrendPoint       `json:"trend,omitempty"`
}

// HasAnalysis reports whether a satellite section made it into the bundle.
func (c *ChatContext) HasAnalysis() bool { return c != nil && c.Analysis != nil }

// HasWeather reports whether a weather section made it into the bundle.
func (c *ChatContext) HasWeather() bool { return c != nil && c.Weather != nil }
