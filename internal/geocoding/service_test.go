package geocoding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelroute/fuelroute/internal/cache"
)

type mockProvider struct {
	result    *Result
	err       error
	callCount atomic.Int32
}

func (m *mockProvider) Geocode(_ context.Context, _ string) (*Result, error) {
	m.callCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockProvider) Name() string { return "mock" }

func TestService_Geocode_CacheMiss(t *testing.T) {
	provider := &mockProvider{
		result: &Result{Latitude: 41.8781, Longitude: -87.6298, PlaceName: "Chicago, Illinois, United States", IsUS: true},
	}
	service := NewService(ServiceConfig{
		Provider: provider,
		Cache:    cache.NewMemoryStore(),
	})

	result, err := service.Geocode(context.Background(), "Chicago, IL")
	require.NoError(t, err)
	assert.Equal(t, 41.8781, result.Latitude)
	assert.True(t, result.IsUS)
	assert.Equal(t, int32(1), provider.callCount.Load())
}

func TestService_Geocode_CacheHit(t *testing.T) {
	provider := &mockProvider{
		result: &Result{Latitude: 41.8781, Longitude: -87.6298, PlaceName: "Chicago, Illinois, United States", IsUS: true},
	}
	service := NewService(ServiceConfig{
		Provider: provider,
		Cache:    cache.NewMemoryStore(),
	})
	ctx := context.Background()

	first, err := service.Geocode(ctx, "Chicago, IL")
	require.NoError(t, err)

	// Same query with different casing and padding hits the same entry.
	second, err := service.Geocode(ctx, "  chicago, il ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), provider.callCount.Load())
}

func TestService_Geocode_ProviderErrorNotCached(t *testing.T) {
	provider := &mockProvider{err: &Error{Provider: "mock", Message: "no geocoding result found", Err: ErrNotFound}}
	service := NewService(ServiceConfig{
		Provider: provider,
		Cache:    cache.NewMemoryStore(),
	})
	ctx := context.Background()

	_, err := service.Geocode(ctx, "nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = service.Geocode(ctx, "nowhere")
	require.Error(t, err)
	assert.Equal(t, int32(2), provider.callCount.Load(), "failures must not be cached")
}

func TestCacheKey_Normalization(t *testing.T) {
	assert.Equal(t, CacheKey("Chicago, IL"), CacheKey("  CHICAGO, il "))
	assert.Equal(t, "geocode:denver, co", CacheKey("Denver, CO"))
}
