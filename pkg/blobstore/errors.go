package blobstore

import "errors"

var (
	ErrNotFound      = errors.New("blobstore: blob not found")
	ErrInvalidFilter = errors.New("blobstore: invalid filter")
	ErrUploadFailed  = errors.New("blobstore: upload failed")
	ErrQueryFailed   = errors.New("blobstore: query failed")
	ErrDeleteFailed  = errors.New("blobstore: delete failed")
	ErrReadFailed    = errors.New("blobstore: read failed")
)
