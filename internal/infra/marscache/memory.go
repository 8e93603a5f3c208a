package marscache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryStore is an in-process cache for proxy results, used in dev and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	weather *entry[marsdata.WeatherReading]
	photos  *entry[marsdata.PhotoResult]
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// GetWeather implements marsdata.Cache.
func (s *MemoryStore) GetWeather(_ context.Context) (marsdata.WeatherReading, bool, error) {
	s.mu.RLock()
	e := s.weather
	s.mu.RUnlock()
	if e == nil || s.expired(e.expiresAt) {
		return marsdata.WeatherReading{}, false, nil
	}
	return e.value, true, nil
}

// SaveWeather implements marsdata.Cache.
func (s *MemoryStore) SaveWeather(_ context.Context, reading marsdata.WeatherReading, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = &entry[marsdata.WeatherReading]{value: reading, expiresAt: s.expiry(ttl)}
	return nil
}

// GetPhotos implements marsdata.Cache.
func (s *MemoryStore) GetPhotos(_ context.Context) (marsdata.PhotoResult, bool, error) {
	s.mu.RLock()
	e := s.photos
	s.mu.RUnlock()
	if e == nil || s.expired(e.expiresAt) {
		return marsdata.PhotoResult{}, false, nil
	}
	result := e.value
	result.Photos = append([]string(nil), e.value.Photos...)
	return result, true, nil
}

// SavePhotos implements marsdata.Cache.
func (s *MemoryStore) SavePhotos(_ context.Context, result marsdata.PhotoResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := result
	stored.Photos = append([]string(nil), result.Photos...)
	s.photos = &entry[marsdata.PhotoResult]{value: stored, expiresAt: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *MemoryStore) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return !s.now().Before(ts)
}

var _ marsdata.Cache = (*MemoryStore)(nil)
