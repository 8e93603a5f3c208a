package marsdata

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/mars-recycler/pkg/metrics"
)

const (
	// WeatherSource tags every weather payload.
	WeatherSource = "NASA InSight Mars Weather Service"
	// PhotoSource tags every photo payload.
	PhotoSource = "NASA Mars Rover Photos API"
	// Rover is the only rover queried.
	Rover = "curiosity"

	noWeatherNote      = "No current weather data. InSight ended surface operations in 2022; readings are archival."
	weatherFailureNote = "Weather data temporarily unavailable."
	noPhotosNote       = "No photos found."
	photoFailureNote   = "Rover photos temporarily unavailable."
)

var (
	// DefaultSols are tried in order until one returns photos.
	DefaultSols = []int{1000, 2000, 2500, 3000}

	// ErrUpstreamStatus marks a non-success HTTP status from NASA.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
)

const defaultMaxPhotos = 8

// Service proxies NASA data and degrades instead of failing.
type Service interface {
	Weather(ctx context.Context) WeatherReading
	Photos(ctx context.Context) PhotoResult
}

// NASAClient fetches raw data from the NASA open APIs.
type NASAClient interface {
	FetchWeather(ctx context.Context) (WeatherReport, error)
	FetchPhotos(ctx context.Context, sol int) ([]RoverPhoto, error)
}

// Cache stores successful proxy results.
type Cache interface {
	GetWeather(ctx context.Context) (WeatherReading, bool, error)
	SaveWeather(ctx context.Context, reading WeatherReading, ttl time.Duration) error
	GetPhotos(ctx context.Context) (PhotoResult, bool, error)
	SavePhotos(ctx context.Context, result PhotoResult, ttl time.Duration) error
}

type service struct {
	cfg    Config
	client NASAClient
	cache  Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewService wires up the Mars data proxy.
func NewService(cfg Config, client NASAClient, cache Cache, logger *slog.Logger) Service {
	if len(cfg.Sols) == 0 {
		cfg.Sols = DefaultSols
	}
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = defaultMaxPhotos
	}
	return &service{
		cfg:    cfg,
		client: client,
		cache:  cache,
		logger: logger.With("component", "marsdata.service"),
	}
}

// Weather returns the latest reading. Concurrent misses share one upstream call; the shared
// call outlives any single caller, and each caller stops waiting when its own ctx ends.
func (s *service) Weather(ctx context.Context) WeatherReading {
	if reading, ok := s.cachedWeather(ctx); ok {
		return reading
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("weather", func() (interface{}, error) {
		reading := s.fetchWeather(fetchCtx)
		if reading.Available {
			s.storeWeather(fetchCtx, reading)
		}
		return reading, nil
	})
	select {
	case res := <-ch:
		return res.Val.(WeatherReading)
	case <-ctx.Done():
		return weatherUnavailable(ctx.Err())
	}
}

// Photos returns rover photos from the first candidate sol that has any, with the same
// sharing rules as Weather.
func (s *service) Photos(ctx context.Context) PhotoResult {
	if result, ok := s.cachedPhotos(ctx); ok {
		return result
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("photos", func() (interface{}, error) {
		result := s.fetchPhotos(fetchCtx)
		if len(result.Photos) > 0 {
			s.storePhotos(fetchCtx, result)
		}
		return result, nil
	})
	select {
	case res := <-ch:
		return res.Val.(PhotoResult)
	case <-ctx.Done():
		return photosUnavailable(ctx.Err())
	}
}

func (s *service) fetchWeather(ctx context.Context) WeatherReading {
	report, err := s.client.FetchWeather(ctx)
	if err != nil {
		s.logger.Warn("mars weather fetch failed", "error", err)
		return weatherUnavailable(err)
	}
	if len(report.SolKeys) == 0 {
		return WeatherReading{Available: false, Source: WeatherSource, Note: noWeatherNote}
	}

	latest := report.SolKeys[len(report.SolKeys)-1]
	sol := report.Sols[latest]
	return WeatherReading{
		Available: true,
		Sol:       latest,
		Date:      sol.FirstUTC,
		Temp:      sol.AirTemp,
		Wind:      sol.WindSpeed,
		Pressure:  sol.AirPressure,
		Source:    WeatherSource,
	}
}

func (s *service) fetchPhotos(ctx context.Context) PhotoResult {
	for _, sol := range s.cfg.Sols {
		photos, err := s.client.FetchPhotos(ctx, sol)
		if err != nil {
			if errors.Is(err, ErrUpstreamStatus) {
				s.logger.Info("rover photos unavailable for sol, trying next", "sol", sol, "error", err)
				continue
			}
			s.logger.Warn("rover photo fetch failed", "sol", sol, "error", err)
			return photosUnavailable(err)
		}
		if len(photos) == 0 {
			continue
		}

		urls := make([]string, 0, min(len(photos), s.cfg.MaxPhotos))
		for _, p := range photos[:min(len(photos), s.cfg.MaxPhotos)] {
			urls = append(urls, p.ImgSrc)
		}
		found := sol
		return PhotoResult{Photos: urls, Sol: &found, Rover: Rover, Source: PhotoSource}
	}
	return PhotoResult{Photos: []string{}, Rover: Rover, Source: PhotoSource, Note: noPhotosNote}
}

func weatherUnavailable(err error) WeatherReading {
	return WeatherReading{
		Available: false,
		Source:    WeatherSource,
		Note:      weatherFailureNote,
		Error:     err.Error(),
	}
}

func photosUnavailable(err error) PhotoResult {
	return PhotoResult{
		Photos: []string{},
		Rover:  Rover,
		Source: PhotoSource,
		Note:   photoFailureNote,
		Error:  err.Error(),
	}
}

func (s *service) cachedWeather(ctx context.Context) (WeatherReading, bool) {
	if !s.cacheEnabled() {
		return WeatherReading{}, false
	}
	reading, ok, err := s.cache.GetWeather(ctx)
	if err != nil {
		s.logger.Warn("weather cache read failed", "error", err)
		metrics.RecordCacheLookup("weather", false)
		return WeatherReading{}, false
	}
	metrics.RecordCacheLookup("weather", ok)
	return reading, ok
}

func (s *service) storeWeather(ctx context.Context, reading WeatherReading) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.SaveWeather(ctx, reading, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("weather cache write failed", "error", err)
	}
}

func (s *service) cachedPhotos(ctx context.Context) (PhotoResult, bool) {
	if !s.cacheEnabled() {
		return PhotoResult{}, false
	}
	result, ok, err := s.cache.GetPhotos(ctx)
	if err != nil {
		s.logger.Warn("photo cache read failed", "error", err)
		metrics.RecordCacheLookup("photos", false)
		return PhotoResult{}, false
	}
	metrics.RecordCacheLookup("photos", ok)
	return result, ok
}

func (s *service) storePhotos(ctx context.Context, result PhotoResult) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.SavePhotos(ctx, result, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("photo cache write failed", "error", err)
	}
}

func (s *service) cacheEnabled() bool {
	return s.cache != nil && s.cfg.CacheTTL > 0
}
