package snapshot_test

import (
	"context"
	"fmt"
	"testing"

	"summarizer-session-be/pkg/snapshot"
	"summarizer-session-be/pkg/snapshot/filestore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentHandle(t *testing.T) {
	user := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	assignment := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	c := snapshot.Coordinate{UserId: user, AssignmentId: assignment, Iteration: 3, Role: snapshot.RoleOutput}
	assert.Equal(t,
		"11111111-1111-1111-1111-111111111111-22222222-2222-2222-2222-222222222222-3-output",
		snapshot.AssignmentHandle(c))

	c.Digest = "0123456789ab"
	assert.Equal(t,
		"11111111-1111-1111-1111-111111111111-22222222-2222-2222-2222-222222222222-3-output.0123456789ab",
		snapshot.AssignmentHandle(c))

	assert.NoError(t, snapshot.ValidateHandle(snapshot.AssignmentHandle(c)))
}

func TestTemplateHandle(t *testing.T) {
	id := uuid.New()
	h := snapshot.TemplateHandle(id)

	assert.True(t, snapshot.IsTemplateHandle(h))
	assert.False(t, snapshot.IsTemplateHandle(snapshot.AssignmentHandle(snapshot.Coordinate{UserId: id, AssignmentId: id, Role: snapshot.RoleInput})))
	assert.False(t, snapshot.IsTemplateHandle("template-"))
}

func TestValidateHandle(t *testing.T) {
	for _, bad := range []string{"", "../x", "a/b", ".hidden", "with space"} {
		assert.Error(t, snapshot.ValidateHandle(bad), bad)
	}
}

func TestPutAddressed(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	c := snapshot.Coordinate{UserId: uuid.New(), AssignmentId: uuid.New(), Iteration: 1, Role: snapshot.RoleOutput}

	first, err := snapshot.PutAddressed(ctx, store, c, []byte("orphan"))
	require.NoError(t, err)
	assert.Equal(t, snapshot.AddressedHandle(c, []byte("orphan")), first)
	assert.NoError(t, snapshot.ValidateHandle(first))

	second, err := snapshot.PutAddressed(ctx, store, c, []byte("retry"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// replaying the same bytes lands on the handle that already holds them
	again, err := snapshot.PutAddressed(ctx, store, c, []byte("retry"))
	require.NoError(t, err)
	assert.Equal(t, second, again)

	blob, err := store.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []byte("retry"), blob)
	blob, err = store.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []byte("orphan"), blob)
}

func TestPutAddressed_ManyBlobsAtOneCoordinate(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	c := snapshot.Coordinate{UserId: uuid.New(), AssignmentId: uuid.New(), Role: snapshot.RoleLabels}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		handle, err := snapshot.PutAddressed(ctx, store, c, []byte(fmt.Sprintf(`[{"concept":"x%d"}]`, i)))
		require.NoError(t, err)
		assert.False(t, seen[handle], handle)
		seen[handle] = true
	}
}
