// Package storage provides the object layer that holds blob bytes.
//
// Keys are assigned by the caller; the blob store uses "blobs/{id}". Two
// implementations satisfy [Storage]: [S3Storage] for any S3-compatible
// service (AWS, MinIO, R2) and [Memory] for tests.
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "drive",
//		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
//		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
//		Endpoint:  "http://localhost:9000",
//		PathStyle: true,
//	})
//	info, err := store.Put(ctx, "blobs/"+id, r, -1)
//
// The content type is sniffed from the first 512 bytes unless
// [WithContentType] is given. S3 errors are normalized to [ErrNotFound],
// [ErrAccessDenied] and the operation-specific sentinels.
package storage
