package blobstore

import "time"

// Metadata is the document stored alongside each blob.
// ParentFolderID is empty for a root.
type Metadata struct {
	OwnerID        string
	ParentFolderID string
	Type           string
}

// Record is a blob as returned by the store.
type Record struct {
	UploadDate  time.Time
	ID          string
	Name        string
	ContentType string
	Metadata    Metadata
	Length      int64
}

func (r Record) value(f Field) string {
	switch f {
	case FieldID:
		return r.ID
	case FieldOwnerID:
		return r.Metadata.OwnerID
	case FieldParentFolderID:
		return r.Metadata.ParentFolderID
	case FieldType:
		return r.Metadata.Type
	}
	return ""
}

// objectKey is where the bytes of a blob live in object storage.
func objectKey(id string) string {
	return "blobs/" + id
}
