package models

import "time"

// Weather holds current conditions at a farm's location.
type Weather struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Rainfall    float64   `json:"rainfall"`
	WindSpeed   float64   `json:"wind_speed"`
	Pressure    float64   `json:"pressure"`
	Description string    `json:"description"`
}

// ForecastDay is one day of a weather forecast.
type ForecastDay struct {
	Date           string  `json:"date"`
	TempMin        float64 `json:"temp_min"`
	TempMax        float64 `json:"temp_max"`
	Humidity       float64 `json:"humidity"`
	RainfallProb   float64 `json:"rainfall_prob"`
	RainfallAmount float64 `json:"rainfall_amount"`
	Description    string  `json:"description"`
}
