package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemory_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[string]()
		defer c.Close()

		_, err := c.Get(context.Background(), "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("returns stored value", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[int]()
		defer c.Close()
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "key", 42, time.Minute))
		val, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, 42, val)
	})

	t.Run("expires exactly after ttl", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		c := cache.NewMemory[string](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

		clock.Advance(59 * time.Second)
		_, err := c.Get(ctx, "key")
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		_, err = c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})
}

func TestMemory_Set(t *testing.T) {
	t.Parallel()

	t.Run("zero TTL uses default", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Unix(0, 0)}
		c := cache.NewMemory[string](
			cache.WithDefaultTTL(time.Second),
			cache.WithClock(clock.Now),
			cache.WithCleanupInterval(0),
		)
		defer c.Close()
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "key", "value", 0))
		clock.Advance(2 * time.Second)
		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative TTL never expires", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Unix(0, 0)}
		c := cache.NewMemory[string](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "key", "forever", -1))
		clock.Advance(24 * 365 * time.Hour)
		val, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "forever", val)
	})

	t.Run("overwrite replaces value and ttl", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Unix(0, 0)}
		c := cache.NewMemory[string](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "key", "first", time.Second))
		require.NoError(t, c.Set(ctx, "key", "second", time.Minute))
		clock.Advance(30 * time.Second)

		val, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "second", val)
	})

	t.Run("returns ErrClosed after Close", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[string]()
		require.NoError(t, c.Close())
		require.ErrorIs(t, c.Set(context.Background(), "key", "value", time.Minute), cache.ErrClosed)
		require.ErrorIs(t, c.Delete(context.Background(), "key"), cache.ErrClosed)
		require.NoError(t, c.Close())
	})
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string]()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))
	require.NoError(t, c.Delete(ctx, "missing"))

	_, err := c.Get(ctx, "key")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Janitor(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string](cache.WithCleanupInterval(10 * time.Millisecond))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "value", 5*time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", "value", time.Minute))

	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	t.Run("returns cached value on hit", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[string]()
		defer c.Close()
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "key", "cached", time.Minute))
		val, err := cache.GetOrSet(ctx, c, "key", time.Minute, func(context.Context) (string, error) {
			t.Fatal("fn should not be called on cache hit")
			return "", nil
		})
		require.NoError(t, err)
		require.Equal(t, "cached", val)
	})

	t.Run("computes and stores on miss", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[string]()
		defer c.Close()
		ctx := context.Background()

		val, err := cache.GetOrSet(ctx, c, "miss-key", time.Minute, func(context.Context) (string, error) {
			return "computed", nil
		})
		require.NoError(t, err)
		require.Equal(t, "computed", val)

		stored, err := c.Get(ctx, "miss-key")
		require.NoError(t, err)
		require.Equal(t, "computed", stored)
	})

	t.Run("does not cache errors", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[string]()
		defer c.Close()
		ctx := context.Background()
		boom := errors.New("boom")

		_, err := cache.GetOrSet(ctx, c, "err-key", time.Minute, func(context.Context) (string, error) {
			return "", boom
		})
		require.ErrorIs(t, err, boom)

		_, err = c.Get(ctx, "err-key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("deduplicates concurrent misses", func(t *testing.T) {
		t.Parallel()
		c := cache.NewMemory[int]()
		defer c.Close()
		ctx := context.Background()

		var calls atomic.Int32
		release := make(chan struct{})
		var wg sync.WaitGroup
		for range 10 {
			wg.Go(func() {
				v, err := cache.GetOrSet(ctx, c, "sf-key", time.Minute, func(context.Context) (int, error) {
					calls.Add(1)
					<-release
					return 7, nil
				})
				require.NoError(t, err)
				require.Equal(t, 7, v)
			})
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.LessOrEqual(t, calls.Load(), int32(2))
	})
}
