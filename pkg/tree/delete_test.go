package tree_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/pkg/blobstore"
	"github.com/dmitrymomot/drive/pkg/cache"
	"github.com/dmitrymomot/drive/pkg/job"
	"github.com/dmitrymomot/drive/pkg/tree"
)

// buildTree creates a folder with nested folders and files below parent
// and returns every created id, the top folder first.
func buildTree(t *testing.T, f *fixture, owner, parent string, depth, width int) []string {
	t.Helper()
	ctx := context.Background()

	top := f.folder(t, owner, parent, "level")
	ids := []string{top}
	if depth == 0 {
		return ids
	}
	for range width {
		file, err := f.engine.CreateFile(ctx, owner, top, "f.txt", strings.NewReader("data"))
		require.NoError(t, err)
		ids = append(ids, file.ID)
		ids = append(ids, buildTree(t, f, owner, top, depth-1, width)...)
	}
	return ids
}

func TestDeleteSubtree(t *testing.T) {
	t.Parallel()

	t.Run("removes the target and every descendant", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		root := f.root(t, "alice")
		sibling := f.folder(t, "alice", root, "keep")
		subtree := buildTree(t, f, "alice", root, 3, 2)

		require.NoError(t, f.engine.DeleteSubtree(ctx, "alice", subtree[0]))

		for _, id := range subtree {
			assert.False(t, f.exists(t, id), id)
		}
		assert.True(t, f.exists(t, root))
		assert.True(t, f.exists(t, sibling))
		assert.Equal(t, 2, f.store.Len())
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		root := f.root(t, "alice")
		file, err := f.engine.CreateFile(ctx, "alice", root, "a.txt", strings.NewReader("x"))
		require.NoError(t, err)

		require.NoError(t, f.engine.DeleteSubtree(ctx, "alice", file.ID))
		assert.False(t, f.exists(t, file.ID))
		assert.True(t, f.exists(t, root))
	})

	t.Run("rerun after partial failure removes the rest", func(t *testing.T) {
		t.Parallel()
		store := &flakyDeletes{Memory: blobstore.NewMemory(), failAfter: 2}
		f := newFixtureWithStore(t, store.Memory)
		engine, err := tree.NewEngine(store, cache.NewMemory[string]())
		require.NoError(t, err)
		ctx := context.Background()

		root := f.root(t, "alice")
		subtree := buildTree(t, f, "alice", root, 3, 2)

		err = engine.DeleteSubtree(ctx, "alice", subtree[0])
		require.ErrorIs(t, err, tree.ErrInternal)
		assert.True(t, f.exists(t, subtree[0]))

		store.disable()
		require.NoError(t, engine.DeleteSubtree(ctx, "alice", subtree[0]))
		for _, id := range subtree {
			assert.False(t, f.exists(t, id), id)
		}
		assert.True(t, f.exists(t, root))
	})

	t.Run("deleting an already deleted node is a no-op", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.engine.DeleteSubtree(context.Background(), "alice", "gone"))
	})

	t.Run("canceled context stops the walk", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		root := f.root(t, "alice")
		subtree := buildTree(t, f, "alice", root, 1, 1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := f.engine.DeleteSubtree(ctx, "alice", subtree[0])
		require.ErrorIs(t, err, tree.ErrInternal)
		assert.True(t, f.exists(t, subtree[0]))
	})
}

// flakyDeletes fails every DeleteMany after the first failAfter calls until disabled.
type flakyDeletes struct {
	*blobstore.Memory
	mu        sync.Mutex
	calls     int
	failAfter int
	off       bool
}

func (s *flakyDeletes) DeleteMany(ctx context.Context, f blobstore.Filter) (int, error) {
	s.mu.Lock()
	s.calls++
	fail := !s.off && s.calls > s.failAfter
	s.mu.Unlock()
	if fail {
		return 0, errors.New("store unavailable")
	}
	return s.Memory.DeleteMany(ctx, f)
}

func (s *flakyDeletes) disable() {
	s.mu.Lock()
	s.off = true
	s.mu.Unlock()
}

func TestRequestDelete(t *testing.T) {
	t.Parallel()

	t.Run("accepted deletion completes in the background", func(t *testing.T) {
		t.Parallel()
		var (
			mu      sync.Mutex
			results []error
		)
		f := newFixture(t, tree.WithLocalDispatcher(tree.WithResultHandler(func(_ tree.DeleteRequest, err error) {
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		})))
		root := f.root(t, "alice")
		subtree := buildTree(t, f, "alice", root, 2, 2)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, f.engine.RequestDelete(ctx, "alice", subtree[0]))
		cancel() // the request ends; the deletion must not depend on it
		f.engine.Wait()

		for _, id := range subtree {
			assert.False(t, f.exists(t, id))
		}
		require.Len(t, results, 1)
		assert.NoError(t, results[0])
	})

	t.Run("root cannot be deleted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		root := f.root(t, "alice")

		err := f.engine.RequestDelete(context.Background(), "alice", root)
		require.ErrorIs(t, err, tree.ErrRootDeletion)
		require.ErrorIs(t, err, tree.ErrBadRequest)
		f.engine.Wait()
		assert.True(t, f.exists(t, root))
	})

	t.Run("foreign node is forbidden and untouched", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		root := f.root(t, "alice")
		docs := f.folder(t, "alice", root, "docs")

		err := f.engine.RequestDelete(context.Background(), "mallory", docs)
		require.ErrorIs(t, err, tree.ErrForbidden)
		f.engine.Wait()
		assert.True(t, f.exists(t, docs))
	})

	t.Run("missing node", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		err := f.engine.RequestDelete(context.Background(), "alice", "missing")
		require.ErrorIs(t, err, tree.ErrNotFound)
	})

	t.Run("job dispatcher enqueues the request", func(t *testing.T) {
		t.Parallel()
		q := &recordingQueue{}
		f := newFixture(t, tree.WithDispatcher(tree.NewJobDispatcher(q)))
		root := f.root(t, "alice")
		docs := f.folder(t, "alice", root, "docs")

		require.NoError(t, f.engine.RequestDelete(context.Background(), "alice", docs))
		f.engine.Wait()

		require.Len(t, q.calls, 1)
		assert.Equal(t, tree.DeleteSubtreeTaskName, q.calls[0].name)
		assert.Equal(t, tree.DeleteRequest{OwnerID: "alice", NodeID: docs}, q.calls[0].payload)
		assert.True(t, f.exists(t, docs), "deletion runs on the worker, not inline")
	})

	t.Run("enqueue failure is internal", func(t *testing.T) {
		t.Parallel()
		q := &recordingQueue{err: errors.New("queue down")}
		f := newFixture(t, tree.WithDispatcher(tree.NewJobDispatcher(q)))
		root := f.root(t, "alice")
		docs := f.folder(t, "alice", root, "docs")

		err := f.engine.RequestDelete(context.Background(), "alice", docs)
		require.ErrorIs(t, err, tree.ErrInternal)
	})
}

type enqueueCall struct {
	payload any
	name    string
}

type recordingQueue struct {
	err   error
	calls []enqueueCall
	mu    sync.Mutex
}

func (q *recordingQueue) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.calls = append(q.calls, enqueueCall{name: name, payload: payload})
	return nil
}

func TestDeleteSubtreeTask(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	root := f.root(t, "alice")
	subtree := buildTree(t, f, "alice", root, 1, 2)

	task := tree.NewDeleteSubtreeTask(f.engine)
	assert.Equal(t, tree.DeleteSubtreeTaskName, task.Name())
	require.NoError(t, task.Handle(context.Background(), tree.DeleteRequest{OwnerID: "alice", NodeID: subtree[0]}))

	for _, id := range subtree {
		assert.False(t, f.exists(t, id))
	}
}

func TestSweepTask(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	root := f.root(t, "alice")
	doomed := f.folder(t, "alice", root, "doomed")
	late := buildTree(t, f, "alice", doomed, 2, 1)
	keep := f.folder(t, "alice", root, "keep")

	// Only the folder row goes away, as when a child is created while its
	// parent is being deleted.
	_, err := f.store.DeleteMany(ctx, blobstore.Eq(blobstore.FieldID, doomed))
	require.NoError(t, err)

	task := tree.NewSweepTask(f.engine, f.store, "", nil)
	assert.Equal(t, tree.SweepTaskName, task.Name())
	assert.Equal(t, tree.DefaultSweepSchedule, task.Schedule())
	require.NoError(t, task.Handle(ctx))

	for _, id := range late {
		assert.False(t, f.exists(t, id), id)
	}
	assert.True(t, f.exists(t, root))
	assert.True(t, f.exists(t, keep))

	orphans, err := f.store.ListOrphans(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestScenario_CreateResolveDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	r := f.root(t, "A")
	d, err := f.engine.CreateFolder(ctx, "A", r, "docs")
	require.NoError(t, err)
	file, err := f.engine.CreateFile(ctx, "A", d.ID, "a.txt", strings.NewReader("bytes"))
	require.NoError(t, err)

	path, err := f.engine.ResolvePath(ctx, "A", file.ID)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, []string{r, d.ID, file.ID}, []string{path[0].ID, path[1].ID, path[2].ID})

	require.NoError(t, f.engine.RequestDelete(ctx, "A", d.ID))
	f.engine.Wait()

	assert.False(t, f.exists(t, d.ID))
	assert.False(t, f.exists(t, file.ID))
	assert.True(t, f.exists(t, r))
}
