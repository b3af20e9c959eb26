package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListQuery(t *testing.T) {
	t.Parallel()

	query, args, err := listQuery(And(
		Eq(FieldParentFolderID, "folder"),
		Eq(FieldOwnerID, "alice"),
	))
	require.NoError(t, err)
	assert.Equal(t, selectColumns+` WHERE (parent_folder_id = $1 AND owner_id = $2) ORDER BY upload_date, id`, query)
	assert.Equal(t, []any{"folder", "alice"}, args)
}

func TestDeleteQuery(t *testing.T) {
	t.Parallel()

	t.Run("subtree level", func(t *testing.T) {
		t.Parallel()
		query, args, err := deleteQuery(Or(Eq(FieldParentFolderID, "f"), Eq(FieldID, "f")))
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM blobs WHERE (parent_folder_id = $1 OR id = $2) RETURNING id`, query)
		assert.Equal(t, []any{"f", "f"}, args)
	})

	t.Run("empty or deletes nothing", func(t *testing.T) {
		t.Parallel()
		query, args, err := deleteQuery(Or())
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM blobs WHERE FALSE RETURNING id`, query)
		assert.Empty(t, args)
	})

	t.Run("unknown field is rejected before rendering", func(t *testing.T) {
		t.Parallel()
		_, _, err := deleteQuery(Eq(Field("1=1 OR id"), "x"))
		require.ErrorIs(t, err, ErrInvalidFilter)
	})
}

func TestNewPostgres_RequiresDependencies(t *testing.T) {
	t.Parallel()
	_, err := NewPostgres(nil)
	require.Error(t, err)
}
