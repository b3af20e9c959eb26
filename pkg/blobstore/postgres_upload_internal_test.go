package blobstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/pkg/storage"
)

// fakeTx records the insert and fails where told to.
type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.db.execErr != nil {
		return pgconn.CommandTag{}, t.db.execErr
	}
	t.db.sql, t.db.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.db.commitErr != nil {
		return t.db.commitErr
	}
	t.db.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.rolledBack = true
	return nil
}

type fakeDB struct {
	DB
	execErr    error
	commitErr  error
	sql        string
	args       []any
	committed  bool
	rolledBack bool
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{db: d}, nil
}

func newUploadStore(t *testing.T, conn *fakeDB) (*Postgres, *storage.Memory) {
	t.Helper()

	objects := storage.NewMemory()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store, err := NewPostgres(conn,
		WithObjectStorage(objects),
		WithIDGenerator(func() string { return "blob-1" }),
		WithClock(func() time.Time { return at }),
	)
	require.NoError(t, err)
	return store, objects
}

func TestPostgresUpload(t *testing.T) {
	t.Parallel()

	meta := Metadata{OwnerID: "alice", ParentFolderID: "root", Type: "File"}

	t.Run("stores row with final length", func(t *testing.T) {
		t.Parallel()

		conn := &fakeDB{}
		store, objects := newUploadStore(t, conn)

		id, err := store.Upload(context.Background(), "a.txt", meta, strings.NewReader("hello"))
		require.NoError(t, err)
		assert.Equal(t, "blob-1", id)
		assert.Equal(t, 1, objects.Len())
		assert.True(t, conn.committed)
		assert.Equal(t, insertBlob, conn.sql)
		require.Len(t, conn.args, 8)
		assert.Equal(t, int64(5), conn.args[5])
		assert.NotEmpty(t, conn.args[6])
	})

	t.Run("failed commit removes the object", func(t *testing.T) {
		t.Parallel()

		conn := &fakeDB{commitErr: errors.New("commit failed")}
		store, objects := newUploadStore(t, conn)

		_, err := store.Upload(context.Background(), "a.txt", meta, strings.NewReader("hello"))
		require.ErrorIs(t, err, ErrUploadFailed)
		assert.Equal(t, 0, objects.Len())
	})

	t.Run("failed insert removes the object", func(t *testing.T) {
		t.Parallel()

		conn := &fakeDB{execErr: errors.New("unique violation")}
		store, objects := newUploadStore(t, conn)

		_, err := store.Upload(context.Background(), "a.txt", meta, strings.NewReader("hello"))
		require.ErrorIs(t, err, ErrUploadFailed)
		assert.True(t, conn.rolledBack)
		assert.Equal(t, 0, objects.Len())
	})

	t.Run("canceled context still removes the object", func(t *testing.T) {
		t.Parallel()

		conn := &fakeDB{commitErr: context.Canceled}
		store, objects := newUploadStore(t, conn)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Upload(ctx, "a.txt", meta, strings.NewReader("hello"))
		require.Error(t, err)
		assert.Equal(t, 0, objects.Len())
	})

	t.Run("folder writes no object", func(t *testing.T) {
		t.Parallel()

		conn := &fakeDB{}
		store, objects := newUploadStore(t, conn)

		_, err := store.Upload(context.Background(), "docs", Metadata{OwnerID: "alice", Type: "Folder"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, objects.Len())
		assert.Equal(t, int64(0), conn.args[5])
		assert.Equal(t, "", conn.args[6])
	})
}
