package blobstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/drive/pkg/storage"
)

// putObject writes content under the blob's key and returns its size and type.
// A nil reader writes nothing.
func putObject(ctx context.Context, objects storage.Storage, id string, content io.Reader) (int64, string, error) {
	if content == nil {
		return 0, "", nil
	}
	info, err := objects.Put(ctx, objectKey(id), content, -1)
	if err != nil {
		return 0, "", errors.Join(ErrUploadFailed, err)
	}
	return info.Size, info.ContentType, nil
}

// openObject streams a blob's bytes. Blobs stored without content read as empty.
func openObject(ctx context.Context, objects storage.Storage, rec *Record) (io.ReadCloser, error) {
	rc, err := objects.Get(ctx, objectKey(rec.ID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) && rec.Length == 0 {
			return io.NopCloser(strings.NewReader("")), nil
		}
		return nil, errors.Join(ErrReadFailed, err)
	}
	return rc, nil
}

// deleteObjects removes the bytes of already-deleted records with bounded
// parallelism. Failures leave unreachable objects behind; they are logged and
// joined into the returned error.
func deleteObjects(ctx context.Context, objects storage.Storage, ids []string, limit int, log *slog.Logger) error {
	if len(ids) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	errs := make([]error, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			if err := objects.Delete(gctx, objectKey(id)); err != nil {
				log.WarnContext(ctx, "failed to delete blob object",
					slog.String("blob_id", id),
					slog.Any("error", err),
				)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}
