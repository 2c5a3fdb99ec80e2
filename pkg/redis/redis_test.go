package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantedge/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host:    mr.Host(),
			Port:    mr.Port(),
			Enabled: true,
		},
	}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: false}}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1", Enabled: true},
	}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	cache := NewCache(client, "test")

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(context.Background(), "key", "v", time.Minute))
}

func TestCache_RoundTripAndTTL(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCache(client, "quantedge")
	ctx := context.Background()

	type board struct {
		Prices map[string]float64 `json:"prices"`
	}
	in := board{Prices: map[string]float64{"TCS": 3450.5, "INFY": 1520}}

	require.NoError(t, cache.Set(ctx, QuoteSnapshotKey(), in, time.Hour))
	assert.True(t, mr.Exists("quantedge:cache:quotes:snapshot"))

	var out board
	found, err := cache.Get(ctx, QuoteSnapshotKey(), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	mr.FastForward(2 * time.Hour)
	found, err = cache.Get(ctx, QuoteSnapshotKey(), &out)
	require.NoError(t, err)
	assert.False(t, found, "expired snapshot should miss")
}

func TestCache_Delete(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, "quantedge")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	var v int
	found, err := cache.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_CorruptValue(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCache(client, "quantedge")

	require.NoError(t, mr.Set("quantedge:cache:bad", "{not json"))

	var v map[string]interface{}
	_, err := cache.Get(context.Background(), "bad", &v)
	assert.Error(t, err)
}
