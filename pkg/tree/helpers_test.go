package tree_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/pkg/blobstore"
	"github.com/dmitrymomot/drive/pkg/cache"
	"github.com/dmitrymomot/drive/pkg/tree"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	engine *tree.Engine
	store  *blobstore.Memory
	clock  *clock
}

func newFixture(t *testing.T, opts ...tree.Option) *fixture {
	t.Helper()
	return newFixtureWithStore(t, blobstore.NewMemory(), opts...)
}

func newFixtureWithStore(t *testing.T, store *blobstore.Memory, opts ...tree.Option) *fixture {
	t.Helper()

	clk := newClock()
	tokens := cache.NewMemory[string](cache.WithClock(clk.Now), cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = tokens.Close() })

	engine, err := tree.NewEngine(store, tokens, opts...)
	require.NoError(t, err)

	return &fixture{engine: engine, store: store, clock: clk}
}

func (f *fixture) root(t *testing.T, owner string) string {
	t.Helper()
	id, err := f.engine.ProvisionRoot(context.Background(), owner)
	require.NoError(t, err)
	return id
}

func (f *fixture) folder(t *testing.T, owner, parent, name string) string {
	t.Helper()
	n, err := f.engine.CreateFolder(context.Background(), owner, parent, name)
	require.NoError(t, err)
	return n.ID
}

func (f *fixture) exists(t *testing.T, id string) bool {
	t.Helper()
	_, err := f.store.GetByID(context.Background(), id)
	if err == nil {
		return true
	}
	require.ErrorIs(t, err, blobstore.ErrNotFound)
	return false
}

// sequence returns ids from a fixed list, for building hand-crafted stores.
func sequence(ids ...string) func() string {
	var (
		mu sync.Mutex
		i  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i]
		i++
		return id
	}
}
