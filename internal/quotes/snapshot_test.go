package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/config"
	"github.com/wonny/quantedge/pkg/redis"
)

func newSnapshots(t *testing.T) (*RedisSnapshots, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.Config{Redis: config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    mr.Port(),
	}}
	client, err := redis.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisSnapshots(redis.NewCache(client, "quantedge"), time.Hour), mr
}

func TestRedisSnapshotsRoundTrip(t *testing.T) {
	snaps, mr := newSnapshots(t)
	ctx := context.Background()

	empty, err := snaps.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	at := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, snaps.Save(ctx, []contracts.Quote{
		{Symbol: "TCS", LastPrice: 4010, FetchedAt: at},
	}))
	assert.True(t, mr.Exists("quantedge:cache:quotes:snapshot"))

	loaded, err := snaps.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 4010.0, loaded[0].LastPrice)
	assert.True(t, at.Equal(loaded[0].FetchedAt))

	mr.FastForward(2 * time.Hour)
	expired, err := snaps.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestAggregatorWarmStartAndSave(t *testing.T) {
	snaps, _ := newSnapshots(t)
	ctx := context.Background()

	require.NoError(t, snaps.Save(ctx, []contracts.Quote{
		{Symbol: "S00", LastPrice: 11, FetchedAt: time.Now().Add(-time.Hour)},
	}))

	agg := newTestAggregator(t, makeSymbols(2), fetchFunc(func(ctx context.Context, batch []string) (map[string]contracts.Quote, error) {
		return nil, contracts.ErrNetworkError
	}))
	agg.WithSnapshots(snaps)

	require.NoError(t, agg.Start(ctx, nil))
	defer agg.Stop()

	// 스냅샷 값은 첫 사이클 실패에도 유지됨
	require.Eventually(t, func() bool { return agg.Status().Status == contracts.StatusError }, time.Second, 5*time.Millisecond)
	q, ok := agg.Quote("S00")
	require.True(t, ok)
	assert.Equal(t, 11.0, q.LastPrice)
	assert.True(t, q.Stale)

	agg.fetcher = fetchFunc(func(ctx context.Context, batch []string) (map[string]contracts.Quote, error) {
		return priced(batch, 22), nil
	})
	_, err := agg.Refresh(ctx)
	require.NoError(t, err)

	saved, err := snaps.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, 22.0, saved[0].LastPrice)
}

func TestWarmStartThenUnstampedFetchReplacesSnapshot(t *testing.T) {
	snaps, _ := newSnapshots(t)
	ctx := context.Background()

	require.NoError(t, snaps.Save(ctx, []contracts.Quote{
		{Symbol: "A", LastPrice: 100, FetchedAt: time.Now().Add(-time.Hour)},
	}))

	// FetchedAt 을 채우지 않는 fetcher
	agg := newTestAggregator(t, []string{"A"}, fetchFunc(func(ctx context.Context, batch []string) (map[string]contracts.Quote, error) {
		return map[string]contracts.Quote{"A": {Symbol: "A", LastPrice: 200}}, nil
	}))
	agg.WithSnapshots(snaps)

	require.NoError(t, agg.Start(ctx, nil))
	defer agg.Stop()

	require.Eventually(t, func() bool { return agg.Status().Status == contracts.StatusLive }, time.Second, 5*time.Millisecond)

	q, ok := agg.Quote("A")
	require.True(t, ok)
	assert.Equal(t, 200.0, q.LastPrice)
	assert.False(t, q.Stale)
	assert.WithinDuration(t, time.Now(), q.FetchedAt, time.Minute)
}

func TestDisabledRedisSnapshotsAreNoop(t *testing.T) {
	client, err := redis.New(context.Background(), &config.Config{})
	require.NoError(t, err)

	snaps := NewRedisSnapshots(redis.NewCache(client, "quantedge"), time.Hour)
	require.NoError(t, snaps.Save(context.Background(), []contracts.Quote{{Symbol: "TCS"}}))

	got, err := snaps.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

}
