package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/pkg/storage"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	t.Run("put and get round trip", func(t *testing.T) {
		t.Parallel()
		s := storage.NewMemory()
		ctx := context.Background()

		info, err := s.Put(ctx, "blobs/a", strings.NewReader("hello world"), -1)
		require.NoError(t, err)
		require.Equal(t, "blobs/a", info.Key)
		require.Equal(t, int64(11), info.Size)
		require.Equal(t, "text/plain", info.ContentType)

		rc, err := s.Get(ctx, "blobs/a")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, "hello world", string(data))
	})

	t.Run("empty body is allowed", func(t *testing.T) {
		t.Parallel()
		s := storage.NewMemory()

		info, err := s.Put(context.Background(), "blobs/empty", strings.NewReader(""), 0)
		require.NoError(t, err)
		require.Equal(t, int64(0), info.Size)
		require.Equal(t, storage.MIMEOctetStream, info.ContentType)
	})

	t.Run("explicit content type wins", func(t *testing.T) {
		t.Parallel()
		s := storage.NewMemory()

		info, err := s.Put(context.Background(), "k", strings.NewReader("{}"), 2, storage.WithContentType("application/json"))
		require.NoError(t, err)
		require.Equal(t, "application/json", info.ContentType)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := storage.NewMemory().Put(context.Background(), "", strings.NewReader("x"), 1)
		require.ErrorIs(t, err, storage.ErrEmptyKey)
	})

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := storage.NewMemory().Get(context.Background(), "nope")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()
		s := storage.NewMemory()
		ctx := context.Background()

		_, err := s.Put(ctx, "k", strings.NewReader("x"), 1)
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, "k"))
		require.NoError(t, s.Delete(ctx, "k"))
		require.Equal(t, 0, s.Len())
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := storage.New(storage.Config{Bucket: "b"})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)

	s, err := storage.New(storage.Config{Bucket: "b", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, storage.MIMEOctetStream},
		{"text", []byte("plain text"), "text/plain"},
		{"png", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
		{"pdf", []byte("%PDF-1.4"), "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, storage.DetectContentType(tt.data))
		})
	}
}
