package nasa

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
	"github.com/yanqian/mars-recycler/pkg/metrics"
)

// BreakerSettings tunes the circuit breaker around the NASA client.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
}

// DefaultBreakerSettings opens after 5+ requests at a 60% failure rate and probes again after 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  5,
		FailureRatio: 0.6,
		Interval:     time.Minute,
		OpenTimeout:  30 * time.Second,
	}
}

const (
	weatherBreaker = "nasa-weather"
	photosBreaker  = "nasa-photos"
)

// BreakerClient wraps Client so a dead upstream fails fast instead of tying up requests.
// Weather and photos trip independently.
type BreakerClient struct {
	client  marsdata.NASAClient
	weather *gobreaker.CircuitBreaker[marsdata.WeatherReport]
	photos  *gobreaker.CircuitBreaker[[]marsdata.RoverPhoto]
}

// NewBreakerClient wraps an upstream client with one circuit breaker per endpoint.
func NewBreakerClient(client marsdata.NASAClient, settings BreakerSettings, logger *slog.Logger) *BreakerClient {
	log := logger.With("component", "nasa.breaker")
	return &BreakerClient{
		client:  client,
		weather: gobreaker.NewCircuitBreaker[marsdata.WeatherReport](breakerSettings(weatherBreaker, settings, log)),
		photos:  gobreaker.NewCircuitBreaker[[]marsdata.RoverPhoto](breakerSettings(photosBreaker, settings, log)),
	}
}

func breakerSettings(name string, settings BreakerSettings, log *slog.Logger) gobreaker.Settings {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	}
}

// FetchWeather implements marsdata.NASAClient.
func (b *BreakerClient) FetchWeather(ctx context.Context) (marsdata.WeatherReport, error) {
	return b.weather.Execute(func() (marsdata.WeatherReport, error) {
		return b.client.FetchWeather(ctx)
	})
}

// FetchPhotos implements marsdata.NASAClient.
func (b *BreakerClient) FetchPhotos(ctx context.Context, sol int) ([]marsdata.RoverPhoto, error) {
	photos, err := b.photos.Execute(func() ([]marsdata.RoverPhoto, error) {
		return b.client.FetchPhotos(ctx, sol)
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// WeatherState reports the weather breaker state.
func (b *BreakerClient) WeatherState() gobreaker.State {
	return b.weather.State()
}

// PhotosState reports the photos breaker state.
func (b *BreakerClient) PhotosState() gobreaker.State {
	return b.photos.State()
}

// isSuccessful reports whether an outcome should count as healthy. Any HTTP status means
// NASA answered, so only transport failures and timeouts count against the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

var _ marsdata.NASAClient = (*BreakerClient)(nil)
var _ marsdata.NASAClient = (*Client)(nil)
