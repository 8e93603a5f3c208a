package marscache

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
)

// ValkeyStore shares proxy results across instances through a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "marsdata"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetWeather(ctx context.Context) (marsdata.WeatherReading, bool, error) {
	var reading marsdata.WeatherReading
	ok, err := s.getJSON(ctx, s.weatherKey(), &reading)
	return reading, ok, err
}

func (s *ValkeyStore) SaveWeather(ctx context.Context, reading marsdata.WeatherReading, ttl time.Duration) error {
	return s.setJSON(ctx, s.weatherKey(), reading, ttl)
}

func (s *ValkeyStore) GetPhotos(ctx context.Context) (marsdata.PhotoResult, bool, error) {
	var result marsdata.PhotoResult
	ok, err := s.getJSON(ctx, s.photosKey(), &result)
	return result, ok, err
}

func (s *ValkeyStore) SavePhotos(ctx context.Context, result marsdata.PhotoResult, ttl time.Duration) error {
	return s.setJSON(ctx, s.photosKey(), result, ttl)
}

func (s *ValkeyStore) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (s *ValkeyStore) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(key).Value(string(payload))
	var cmd valkey.Completed
	if exp, ok := expiry(ttl); ok {
		cmd = builder.Ex(exp).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// expiry maps a cache TTL onto SET EX. Non-positive TTLs never expire; anything shorter
// than a second is raised to one because EX has second granularity.
func expiry(ttl time.Duration) (time.Duration, bool) {
	if ttl <= 0 {
		return 0, false
	}
	if ttl < time.Second {
		return time.Second, true
	}
	return ttl, true
}

func (s *ValkeyStore) weatherKey() string {
	return fmt.Sprintf("%s:weather", s.prefix)
}

func (s *ValkeyStore) photosKey() string {
	return fmt.Sprintf("%s:photos", s.prefix)
}

var _ marsdata.Cache = (*ValkeyStore)(nil)
