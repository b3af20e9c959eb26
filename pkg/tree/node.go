package tree

import (
	"time"

	"github.com/dmitrymomot/drive/pkg/blobstore"
)

// NodeType distinguishes files from folders. It never changes after creation.
type NodeType string

const (
	File   NodeType = "File"
	Folder NodeType = "Folder"
)

// Node is the caller-facing projection of a stored blob.
// ParentFolderID is empty for the account root.
type Node struct {
	UploadDate     time.Time `json:"uploadDate"`
	ID             string    `json:"id"`
	OwnerID        string    `json:"-"`
	Name           string    `json:"name"`
	ParentFolderID string    `json:"parentFolderId"`
	Type           NodeType  `json:"type"`
	ContentType    string    `json:"contentType,omitempty"`
	Length         int64     `json:"length"`
}

// IsRoot reports whether n is an account root.
func (n Node) IsRoot() bool {
	return n.ParentFolderID == ""
}

func nodeFromRecord(r *blobstore.Record) *Node {
	return &Node{
		ID:             r.ID,
		OwnerID:        r.Metadata.OwnerID,
		Name:           r.Name,
		ParentFolderID: r.Metadata.ParentFolderID,
		Type:           NodeType(r.Metadata.Type),
		ContentType:    r.ContentType,
		Length:         r.Length,
		UploadDate:     r.UploadDate,
	}
}

func nodesFromRecords(recs []blobstore.Record) []Node {
	out := make([]Node, len(recs))
	for i := range recs {
		out[i] = *nodeFromRecord(&recs[i])
	}
	return out
}

func childrenOf(ownerID, folderID string) blobstore.Filter {
	return blobstore.And(
		blobstore.Eq(blobstore.FieldParentFolderID, folderID),
		blobstore.Eq(blobstore.FieldOwnerID, ownerID),
	)
}

func rootsOf(ownerID string) blobstore.Filter {
	return blobstore.And(
		blobstore.Eq(blobstore.FieldParentFolderID, ""),
		blobstore.Eq(blobstore.FieldOwnerID, ownerID),
		blobstore.Eq(blobstore.FieldType, string(Folder)),
	)
}
