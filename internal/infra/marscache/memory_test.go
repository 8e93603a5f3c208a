package marscache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
)

func TestMemoryStoreWeatherRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.GetWeather(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	temp := -61.2
	reading := marsdata.WeatherReading{Available: true, Sol: "675", Temp: &temp, Source: marsdata.WeatherSource}
	require.NoError(t, store.SaveWeather(ctx, reading, time.Minute))

	got, ok, err := store.GetWeather(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, reading, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	sol := 1000
	require.NoError(t, store.SavePhotos(ctx, marsdata.PhotoResult{Photos: []string{"a.jpg"}, Sol: &sol}, time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, err := store.GetPhotos(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(time.Second)
	_, ok, err = store.GetPhotos(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.SaveWeather(ctx, marsdata.WeatherReading{Available: true}, 0))
	now = now.Add(24 * time.Hour)
	_, ok, err := store.GetWeather(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryStorePhotosAreCopied(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	photos := []string{"a.jpg", "b.jpg"}
	require.NoError(t, store.SavePhotos(ctx, marsdata.PhotoResult{Photos: photos}, time.Minute))
	photos[0] = "mutated.jpg"

	got, ok, err := store.GetPhotos(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, got.Photos)

	got.Photos[1] = "mutated.jpg"
	again, _, _ := store.GetPhotos(ctx)
	require.Equal(t, "b.jpg", again.Photos[1])
}
