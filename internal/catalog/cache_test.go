package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingObserver struct{ hits, misses int }

func (o *countingObserver) CacheResult(hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *countingObserver) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	obs := &countingObserver{}
	return NewCache(client, time.Minute, nil, obs), mr, obs
}

type listing struct {
	Names []string `json:"names"`
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	cache, _, obs := newTestCache(t)
	ctx := context.Background()
	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return listing{Names: []string{"protein-bar"}}, nil
	}

	var first, second listing
	require.NoError(t, cache.FetchJSON(ctx, &first, loader, "products", "page=1"))
	require.NoError(t, cache.FetchJSON(ctx, &second, loader, "products", "page=1"))
	require.Equal(t, 1, loads)
	require.Equal(t, first, second)
	require.Equal(t, 1, obs.hits)
	require.Equal(t, 1, obs.misses)

	require.NoError(t, cache.Bump(ctx))
	var third listing
	require.NoError(t, cache.FetchJSON(ctx, &third, loader, "products", "page=1"))
	require.Equal(t, 2, loads)
}

func TestVersionInitialisesAndIncrements(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), ver)

	require.NoError(t, cache.Bump(ctx))
	ver, err = cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), ver)

	stored, err := mr.Get(cacheVersionKey)
	require.NoError(t, err)
	require.Equal(t, "2", stored)

	key, err := cache.BuildKey(ctx, "products", "all")
	require.NoError(t, err)
	require.Equal(t, "products:all:v2", key)
}

func TestFetchJSONFallsBackWhenRedisDown(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	mr.Close()

	var out listing
	err := cache.FetchJSON(context.Background(), &out, func(context.Context) (any, error) {
		return listing{Names: []string{"a"}}, nil
	}, "products")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, out.Names)

	cache.Invalidate(context.Background())
}

func TestFetchJSONPropagatesLoaderError(t *testing.T) {
	cache, _, _ := newTestCache(t)
	boom := errors.New("boom")
	err := cache.FetchJSON(context.Background(), &listing{}, func(context.Context) (any, error) {
		return nil, boom
	}, "products")
	require.ErrorIs(t, err, boom)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var cache *Cache
	var out listing
	require.NoError(t, cache.FetchJSON(context.Background(), &out, func(context.Context) (any, error) {
		return listing{Names: []string{"x"}}, nil
	}, "products"))
	require.Equal(t, []string{"x"}, out.Names)
	require.NoError(t, cache.Bump(context.Background()))
}

func TestFetchJSONLoadSurvivesCallerCancel(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	loader := func(loadCtx context.Context) (any, error) {
		close(started)
		<-release
		if err := loadCtx.Err(); err != nil {
			return nil, err
		}
		return listing{Names: []string{"whey"}}, nil
	}

	done := make(chan error, 1)
	var got listing
	go func() { done <- cache.FetchJSON(ctx, &got, loader, "products", "page=1") }()

	<-started
	cancel()
	close(release)
	require.NoError(t, <-done)
	require.Equal(t, []string{"whey"}, got.Names)

	var cached listing
	require.NoError(t, cache.FetchJSON(context.Background(), &cached, func(context.Context) (any, error) {
		return nil, errors.New("loader must not run")
	}, "products", "page=1"))
	require.Equal(t, got, cached)
}
