package marsdata

import "time"

// WeatherReading is the latest InSight surface reading, or a degraded placeholder.
type WeatherReading struct {
	Available bool     `json:"available"`
	Sol       string   `json:"sol,omitempty"`
	Date      *string  `json:"date"`
	Temp      *float64 `json:"temp"`
	Wind      *float64 `json:"wind"`
	Pressure  *float64 `json:"pressure"`
	Source    string   `json:"source"`
	Note      string   `json:"note,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// PhotoResult carries rover image URLs from the first sol that had any.
type PhotoResult struct {
	Photos []string `json:"photos"`
	Sol    *int     `json:"sol,omitempty"`
	Rover  string   `json:"rover"`
	Source string   `json:"source"`
	Note   string   `json:"note,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// WeatherReport is the decoded InSight feed: the ordered sol keys and per-sol readings.
type WeatherReport struct {
	SolKeys []string
	Sols    map[string]SolWeather
}

// SolWeather holds the optional fields projected from a single sol.
type SolWeather struct {
	FirstUTC    *string
	AirTemp     *float64
	WindSpeed   *float64
	AirPressure *float64
}

// RoverPhoto is a single upstream photo record.
type RoverPhoto struct {
	ID     int64
	ImgSrc string
}

// Config wires runtime knobs for the proxy.
type Config struct {
	CacheTTL  time.Duration
	Sols      []int
	MaxPhotos int
}
