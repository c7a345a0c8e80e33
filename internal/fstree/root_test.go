package fstree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	root := Initialize("owner-pubkey")

	assert.Equal(t, "owner-pubkey", root.Authority())
	assert.Equal(t, uint64(0), root.CurrentEpoch())
	assert.True(t, root.Counter().IsZero())
	files, dirs := root.ObjectCount()
	assert.Zero(t, files)
	assert.Zero(t, dirs)
	require.NoError(t, root.CheckInvariants())
}

func TestUpdateEpochAuthority(t *testing.T) {
	root := Initialize("owner-pubkey")

	assert.ErrorIs(t, root.UpdateEpoch("intruder", 7), ErrUnauthorized)
	assert.Equal(t, uint64(0), root.CurrentEpoch())

	require.NoError(t, root.UpdateEpoch("owner-pubkey", 7))
	assert.Equal(t, uint64(7), root.CurrentEpoch())
}

func TestEndEpochStoredNotEnforced(t *testing.T) {
	root := Initialize("owner-pubkey")
	require.NoError(t, root.UpdateEpoch("owner-pubkey", 500))

	// EndEpoch below the current epoch is stored as supplied; nothing is
	// pruned or refused.
	require.NoError(t, root.AddFile("/old.txt", FileMeta{BlobID: "b", EndEpoch: 100}, false, 1))
	entry, err := root.Stat("/old.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), entry.EndEpoch)
}

func TestObjectIDText(t *testing.T) {
	id := NewObjectID(42)
	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "42", string(text))

	var parsed ObjectID
	require.NoError(t, parsed.UnmarshalText([]byte("42")))
	assert.Equal(t, id, parsed)
	assert.Zero(t, id.Cmp(parsed))
	assert.True(t, NewObjectID(41).Less(id))
}
