package blobstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/pkg/blobstore"
)

func TestFilter_Match(t *testing.T) {
	t.Parallel()

	rec := blobstore.Record{
		ID: "n1",
		Metadata: blobstore.Metadata{
			OwnerID:        "alice",
			ParentFolderID: "root",
			Type:           "File",
		},
	}

	tests := []struct {
		name   string
		filter blobstore.Filter
		want   bool
	}{
		{"eq id", blobstore.Eq(blobstore.FieldID, "n1"), true},
		{"eq id miss", blobstore.Eq(blobstore.FieldID, "n2"), false},
		{"eq empty parent", blobstore.Eq(blobstore.FieldParentFolderID, ""), false},
		{"and all", blobstore.And(
			blobstore.Eq(blobstore.FieldOwnerID, "alice"),
			blobstore.Eq(blobstore.FieldParentFolderID, "root"),
			blobstore.Eq(blobstore.FieldType, "File"),
		), true},
		{"and one miss", blobstore.And(
			blobstore.Eq(blobstore.FieldOwnerID, "alice"),
			blobstore.Eq(blobstore.FieldOwnerID, "bob"),
		), false},
		{"or one hit", blobstore.Or(
			blobstore.Eq(blobstore.FieldParentFolderID, "other"),
			blobstore.Eq(blobstore.FieldID, "n1"),
		), true},
		{"empty and", blobstore.And(), true},
		{"empty or", blobstore.Or(), false},
		{"zero filter", blobstore.Filter{}, true},
		{"nested", blobstore.And(
			blobstore.Eq(blobstore.FieldOwnerID, "alice"),
			blobstore.Or(blobstore.Eq(blobstore.FieldType, "Folder"), blobstore.Eq(blobstore.FieldID, "n1")),
		), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.filter.Match(rec))
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, blobstore.And(blobstore.Eq(blobstore.FieldOwnerID, "a")).Validate())

	err := blobstore.Or(
		blobstore.Eq(blobstore.FieldID, "x"),
		blobstore.Eq(blobstore.Field("name; DROP TABLE blobs"), "x"),
	).Validate()
	require.ErrorIs(t, err, blobstore.ErrInvalidFilter)
}

func TestFilter_String(t *testing.T) {
	t.Parallel()

	f := blobstore.Or(
		blobstore.Eq(blobstore.FieldParentFolderID, "f1"),
		blobstore.Eq(blobstore.FieldID, "f1"),
	)
	assert.Equal(t, `(parent_folder_id="f1" OR id="f1")`, f.String())
	assert.Equal(t, "TRUE", blobstore.And().String())
	assert.Equal(t, "FALSE", blobstore.Or().String())
}
