package marsdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeatherUsesLatestSol(t *testing.T) {
	client := &stubNASAClient{
		report: WeatherReport{
			SolKeys: []string{"674", "675"},
			Sols: map[string]SolWeather{
				"674": {FirstUTC: strPtr("2020-10-18T00:00:00Z"), AirTemp: floatPtr(-60)},
				"675": {FirstUTC: strPtr("2020-10-19T00:00:00Z"), AirTemp: floatPtr(-62.3), WindSpeed: floatPtr(7.2), AirPressure: floatPtr(750.1)},
			},
		},
	}
	svc := newServiceUnderTest(client, nil, 0)

	reading := svc.Weather(context.Background())
	require.True(t, reading.Available)
	require.Equal(t, "675", reading.Sol)
	require.Equal(t, "2020-10-19T00:00:00Z", *reading.Date)
	require.Equal(t, -62.3, *reading.Temp)
	require.Equal(t, 7.2, *reading.Wind)
	require.Equal(t, 750.1, *reading.Pressure)
	require.Equal(t, WeatherSource, reading.Source)
	require.Empty(t, reading.Error)
}

func TestWeatherMissingFieldsAreNull(t *testing.T) {
	client := &stubNASAClient{report: WeatherReport{SolKeys: []string{"100"}}}
	svc := newServiceUnderTest(client, nil, 0)

	reading := svc.Weather(context.Background())
	require.True(t, reading.Available)
	require.Equal(t, "100", reading.Sol)
	require.Nil(t, reading.Date)
	require.Nil(t, reading.Temp)
	require.Nil(t, reading.Wind)
	require.Nil(t, reading.Pressure)
}

func TestWeatherNoSolKeys(t *testing.T) {
	client := &stubNASAClient{report: WeatherReport{}}
	svc := newServiceUnderTest(client, nil, 0)

	reading := svc.Weather(context.Background())
	require.False(t, reading.Available)
	require.Equal(t, noWeatherNote, reading.Note)
	require.Equal(t, WeatherSource, reading.Source)
	require.Equal(t, 1, client.weatherCalls)
}

func TestWeatherUpstreamFailureDegrades(t *testing.T) {
	client := &stubNASAClient{weatherErr: errors.New("dial tcp: connection refused")}
	svc := newServiceUnderTest(client, nil, 0)

	reading := svc.Weather(context.Background())
	require.False(t, reading.Available)
	require.Contains(t, reading.Error, "connection refused")
	require.Equal(t, weatherFailureNote, reading.Note)
}

func TestPhotosFallsBackToFirstNonEmptySol(t *testing.T) {
	photos := make([]RoverPhoto, 0, 12)
	for i := 0; i < 12; i++ {
		photos = append(photos, RoverPhoto{ID: int64(i), ImgSrc: fmt.Sprintf("https://mars.example/3000/%d.jpg", i)})
	}
	client := &stubNASAClient{
		photos: map[int][]RoverPhoto{
			1000: {},
			2000: {},
			2500: {},
			3000: photos,
		},
	}
	svc := newServiceUnderTest(client, nil, 0)

	res := svc.Photos(context.Background())
	require.Len(t, res.Photos, 8)
	require.Equal(t, "https://mars.example/3000/0.jpg", res.Photos[0])
	for _, url := range res.Photos {
		require.Contains(t, url, "/3000/")
	}
	require.NotNil(t, res.Sol)
	require.Equal(t, 3000, *res.Sol)
	require.Equal(t, Rover, res.Rover)
	require.Equal(t, []int{1000, 2000, 2500, 3000}, client.solCalls)
}

func TestPhotosStopsAtFirstHit(t *testing.T) {
	client := &stubNASAClient{
		photos: map[int][]RoverPhoto{
			1000: {{ID: 1, ImgSrc: "a.jpg"}, {ID: 2, ImgSrc: "b.jpg"}},
			2000: {{ID: 3, ImgSrc: "c.jpg"}},
		},
	}
	svc := newServiceUnderTest(client, nil, 0)

	res := svc.Photos(context.Background())
	require.Equal(t, []string{"a.jpg", "b.jpg"}, res.Photos)
	require.Equal(t, 1000, *res.Sol)
	require.Equal(t, []int{1000}, client.solCalls)
}

func TestPhotosSkipsStatusErrors(t *testing.T) {
	client := &stubNASAClient{
		photoErrs: map[int]error{
			1000: fmt.Errorf("sol 1000: %w", ErrUpstreamStatus),
			2000: fmt.Errorf("sol 2000: %w", ErrUpstreamStatus),
		},
		photos: map[int][]RoverPhoto{2500: {{ID: 9, ImgSrc: "z.jpg"}}},
	}
	svc := newServiceUnderTest(client, nil, 0)

	res := svc.Photos(context.Background())
	require.Equal(t, []string{"z.jpg"}, res.Photos)
	require.Equal(t, 2500, *res.Sol)
	require.Empty(t, res.Error)
}

func TestPhotosNoneFound(t *testing.T) {
	client := &stubNASAClient{}
	svc := newServiceUnderTest(client, nil, 0)

	res := svc.Photos(context.Background())
	require.NotNil(t, res.Photos)
	require.Empty(t, res.Photos)
	require.Nil(t, res.Sol)
	require.Equal(t, noPhotosNote, res.Note)
	require.Len(t, client.solCalls, 4)
}

func TestPhotosTransportErrorAborts(t *testing.T) {
	client := &stubNASAClient{
		photoErrs: map[int]error{2000: errors.New("read: connection reset by peer")},
		photos:    map[int][]RoverPhoto{2500: {{ID: 1, ImgSrc: "never.jpg"}}},
	}
	svc := newServiceUnderTest(client, nil, 0)

	res := svc.Photos(context.Background())
	require.NotNil(t, res.Photos)
	require.Empty(t, res.Photos)
	require.Contains(t, res.Error, "connection reset")
	require.Equal(t, photoFailureNote, res.Note)
	require.Equal(t, []int{1000, 2000}, client.solCalls)
}

func TestWeatherServedFromCache(t *testing.T) {
	client := &stubNASAClient{report: WeatherReport{SolKeys: []string{"7"}}}
	cache := newStubCache()
	svc := newServiceUnderTest(client, cache, time.Minute)

	first := svc.Weather(context.Background())
	second := svc.Weather(context.Background())
	require.Equal(t, first, second)
	require.Equal(t, 1, client.weatherCalls)
	require.Equal(t, time.Minute, cache.lastTTL)
}

func TestDegradedWeatherIsNotCached(t *testing.T) {
	client := &stubNASAClient{weatherErr: errors.New("boom")}
	cache := newStubCache()
	svc := newServiceUnderTest(client, cache, time.Minute)

	svc.Weather(context.Background())
	svc.Weather(context.Background())
	require.Equal(t, 2, client.weatherCalls)
	require.Nil(t, cache.weather)
}

func TestPhotosServedFromCache(t *testing.T) {
	client := &stubNASAClient{photos: map[int][]RoverPhoto{1000: {{ID: 1, ImgSrc: "a.jpg"}}}}
	cache := newStubCache()
	svc := newServiceUnderTest(client, cache, time.Minute)

	svc.Photos(context.Background())
	res := svc.Photos(context.Background())
	require.Equal(t, []string{"a.jpg"}, res.Photos)
	require.Equal(t, []int{1000}, client.solCalls)
}

func TestEmptyPhotosAreNotCached(t *testing.T) {
	client := &stubNASAClient{}
	cache := newStubCache()
	svc := newServiceUnderTest(client, cache, time.Minute)

	svc.Photos(context.Background())
	svc.Photos(context.Background())
	require.Len(t, client.solCalls, 8)
	require.Nil(t, cache.photos)
}

func TestCacheReadErrorFallsThrough(t *testing.T) {
	client := &stubNASAClient{report: WeatherReport{SolKeys: []string{"1"}}}
	cache := newStubCache()
	cache.readErr = errors.New("valkey down")
	svc := newServiceUnderTest(client, cache, time.Minute)

	reading := svc.Weather(context.Background())
	require.True(t, reading.Available)
	require.Equal(t, 1, client.weatherCalls)
}

func TestCacheDisabledWithZeroTTL(t *testing.T) {
	client := &stubNASAClient{report: WeatherReport{SolKeys: []string{"1"}}}
	cache := newStubCache()
	svc := newServiceUnderTest(client, cache, 0)

	svc.Weather(context.Background())
	svc.Weather(context.Background())
	require.Equal(t, 2, client.weatherCalls)
	require.Nil(t, cache.weather)
}

func TestWeatherSharedFetchSurvivesLeaderCancel(t *testing.T) {
	client := newBlockingClient()
	svc := newServiceUnderTest(client, nil, 0)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan WeatherReading, 1)
	go func() { leader <- svc.Weather(leaderCtx) }()
	<-client.started

	follower := make(chan WeatherReading, 1)
	go func() { follower <- svc.Weather(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case reading := <-leader:
		require.False(t, reading.Available)
		require.Equal(t, context.Canceled.Error(), reading.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(client.release)
	select {
	case reading := <-follower:
		require.True(t, reading.Available)
		require.Equal(t, "7", reading.Sol)
		require.Empty(t, reading.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("follower never got a reading")
	}
	require.Equal(t, int32(1), client.weatherCalls.Load())
}

func TestPhotosSharedFetchSurvivesLeaderCancel(t *testing.T) {
	client := newBlockingClient()
	svc := newServiceUnderTest(client, nil, 0)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan PhotoResult, 1)
	go func() { leader <- svc.Photos(leaderCtx) }()
	<-client.started

	follower := make(chan PhotoResult, 1)
	go func() { follower <- svc.Photos(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	result := <-leader
	require.Equal(t, []string{}, result.Photos)
	require.Equal(t, photoFailureNote, result.Note)

	close(client.release)
	select {
	case result := <-follower:
		require.Equal(t, []string{"a.jpg"}, result.Photos)
		require.Equal(t, 1000, *result.Sol)
	case <-time.After(2 * time.Second):
		t.Fatal("follower never got photos")
	}
}

func newServiceUnderTest(client NASAClient, cache Cache, ttl time.Duration) Service {
	return NewService(Config{CacheTTL: ttl}, client, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubNASAClient struct {
	mu           sync.Mutex
	report       WeatherReport
	weatherErr   error
	weatherCalls int
	photos       map[int][]RoverPhoto
	photoErrs    map[int]error
	solCalls     []int
}

func (s *stubNASAClient) FetchWeather(ctx context.Context) (WeatherReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weatherCalls++
	if s.weatherErr != nil {
		return WeatherReport{}, s.weatherErr
	}
	return s.report, nil
}

func (s *stubNASAClient) FetchPhotos(ctx context.Context, sol int) ([]RoverPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solCalls = append(s.solCalls, sol)
	if err := s.photoErrs[sol]; err != nil {
		return nil, err
	}
	return s.photos[sol], nil
}

// blockingClient holds every fetch until release is closed and fails if its ctx ends first.
type blockingClient struct {
	started      chan struct{}
	release      chan struct{}
	once         sync.Once
	weatherCalls atomic.Int32
}

func newBlockingClient() *blockingClient {
	return &blockingClient{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingClient) wait(ctx context.Context) error {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingClient) FetchWeather(ctx context.Context) (WeatherReport, error) {
	b.weatherCalls.Add(1)
	if err := b.wait(ctx); err != nil {
		return WeatherReport{}, err
	}
	return WeatherReport{SolKeys: []string{"7"}}, nil
}

func (b *blockingClient) FetchPhotos(ctx context.Context, sol int) ([]RoverPhoto, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return []RoverPhoto{{ID: 1, ImgSrc: "a.jpg"}}, nil
}

type stubCache struct {
	weather *WeatherReading
	photos  *PhotoResult
	readErr error
	lastTTL time.Duration
}

func newStubCache() *stubCache {
	return &stubCache{}
}

func (c *stubCache) GetWeather(ctx context.Context) (WeatherReading, bool, error) {
	if c.readErr != nil {
		return WeatherReading{}, false, c.readErr
	}
	if c.weather == nil {
		return WeatherReading{}, false, nil
	}
	return *c.weather, true, nil
}

func (c *stubCache) SaveWeather(ctx context.Context, reading WeatherReading, ttl time.Duration) error {
	c.weather = &reading
	c.lastTTL = ttl
	return nil
}

func (c *stubCache) GetPhotos(ctx context.Context) (PhotoResult, bool, error) {
	if c.readErr != nil {
		return PhotoResult{}, false, c.readErr
	}
	if c.photos == nil {
		return PhotoResult{}, false, nil
	}
	return *c.photos, true, nil
}

func (c *stubCache) SavePhotos(ctx context.Context, result PhotoResult, ttl time.Duration) error {
	c.photos = &result
	c.lastTTL = ttl
	return nil
}

func strPtr(v string) *string {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
