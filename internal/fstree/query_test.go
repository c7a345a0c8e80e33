package fstree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDir(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/dir1", []string{"folder"}, 1100))
	require.NoError(t, root.AddFile("/dir1/sub.txt", FileMeta{Size: 512, BlobID: "sb", EndEpoch: 300}, false, 1200))

	entries, err := root.ListDir("/dir1/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sub.txt", entries[0].Name)
	assert.False(t, entries[0].IsDir)
	assert.Equal(t, uint64(512), entries[0].Size)
	assert.Equal(t, "sb", entries[0].BlobID)

	// Root listing: directories precede files.
	require.NoError(t, root.AddFile("/top.txt", FileMeta{Size: 1, BlobID: "t"}, false, 1300))
	entries, err = root.ListDir("/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "dir1", entries[0].Name)
	assert.True(t, entries[0].IsDir)
	assert.Zero(t, entries[0].Size)
	assert.Empty(t, entries[0].BlobID)
	assert.Equal(t, "top.txt", entries[1].Name)
}

func TestListDirMissing(t *testing.T) {
	root, _ := newRoot(t)
	_, err := root.ListDir("/nope/")
	assert.ErrorIs(t, err, ErrPathError)

	require.NoError(t, root.AddFile("/f.txt", FileMeta{BlobID: "b"}, false, 1))
	// A file is not a directory as far as the walker is concerned.
	_, err = root.ListDir("/f.txt")
	assert.ErrorIs(t, err, ErrPathError)
}

func TestStatMissing(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/dir", nil, 1))

	_, err := root.Stat("/dir/none")
	assert.ErrorIs(t, err, ErrPathNotFound)
	_, err = root.Stat("/none/deeper")
	assert.ErrorIs(t, err, ErrPathError)
}

func TestGetDirAll(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/dir1", []string{"folder"}, 100))      // id 1
	require.NoError(t, root.AddFile("/dir1/a.txt", FileMeta{Size: 1, BlobID: "a"}, false, 200)) // id 2
	require.NoError(t, root.AddDir("/dir1/sd", nil, 300))                  // id 3
	require.NoError(t, root.AddFile("/dir1/sd/b.txt", FileMeta{Size: 2, BlobID: "b"}, false, 400)) // id 4

	snap, err := root.GetDirAll("/dir1")
	require.NoError(t, err)

	assert.Equal(t, NewObjectID(1), snap.DirID)
	require.Len(t, snap.Files, 2)
	assert.Equal(t, NewObjectID(2), snap.Files[0].ID)
	assert.Equal(t, "a", snap.Files[0].Object.BlobID)
	assert.Equal(t, NewObjectID(4), snap.Files[1].ID)

	// The target directory itself is part of the snapshot.
	require.Len(t, snap.Dirs, 2)
	top := snap.Dirs[0]
	assert.Equal(t, NewObjectID(1), top.ID)
	assert.Equal(t, []string{"folder"}, top.Tags)

	// Parallel child vectors: i-th name belongs to i-th id.
	require.Equal(t, []string{"a.txt"}, top.ChildFileNames)
	require.Equal(t, []ObjectID{NewObjectID(2)}, top.ChildFileIDs)
	require.Equal(t, []string{"sd"}, top.ChildDirNames)
	require.Equal(t, []ObjectID{NewObjectID(3)}, top.ChildDirIDs)

	sub := snap.Dirs[1]
	assert.Equal(t, NewObjectID(3), sub.ID)
	assert.Equal(t, []string{"b.txt"}, sub.ChildFileNames)
	assert.Equal(t, []ObjectID{NewObjectID(4)}, sub.ChildFileIDs)
	assert.Empty(t, sub.ChildDirNames)
}

func TestGetDirAllMissing(t *testing.T) {
	root, _ := newRoot(t)
	_, err := root.GetDirAll("/nope")
	assert.ErrorIs(t, err, ErrPathError)

	// Files do not resolve as directories.
	require.NoError(t, root.AddFile("/f.txt", FileMeta{BlobID: "b"}, false, 1))
	_, err = root.GetDirAll("/f.txt")
	assert.ErrorIs(t, err, ErrPathError)
}
