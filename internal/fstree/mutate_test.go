package fstree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures emitted events in order.
type recorder struct {
	events []Event
}

func (r *recorder) sink() Sink {
	return func(e Event) { r.events = append(r.events, e) }
}

func newRoot(t *testing.T) (*Root, *recorder) {
	t.Helper()
	rec := &recorder{}
	root := Initialize("owner-pubkey")
	root.SetSink(rec.sink())
	return root, rec
}

func TestAddFileAndStat(t *testing.T) {
	root, rec := newRoot(t)

	require.NoError(t, root.AddFile("/file1.txt", FileMeta{
		Size:     1024,
		BlobID:   "b1",
		EndEpoch: 200,
	}, false, 1000))

	entry, err := root.Stat("/file1.txt")
	require.NoError(t, err)
	assert.Equal(t, ListEntry{
		Name:     "file1.txt",
		CreateTS: 1000,
		IsDir:    false,
		Tags:     []string{},
		Size:     1024,
		BlobID:   "b1",
		EndEpoch: 200,
	}, entry)

	assert.Equal(t, NewObjectID(1), root.Counter())
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventFileAdded, rec.events[0].Kind)
	assert.Equal(t, "/file1.txt", rec.events[0].Path)
	require.NoError(t, root.CheckInvariants())
}

func TestAddFileDuplicateEmitsThenAborts(t *testing.T) {
	root, rec := newRoot(t)
	require.NoError(t, root.AddFile("/file1.txt", FileMeta{Size: 1024, BlobID: "b1", EndEpoch: 200}, false, 1000))

	err := root.AddFile("/file1.txt", FileMeta{Size: 2048, BlobID: "b2", EndEpoch: 300}, false, 1001)
	assert.ErrorIs(t, err, ErrFileAlreadyExists)

	// The notification carries the EXISTING metadata and precedes the abort.
	require.Len(t, rec.events, 2)
	last := rec.events[1]
	assert.Equal(t, EventFileAlreadyExists, last.Kind)
	require.NotNil(t, last.Entry)
	assert.Equal(t, uint64(1024), last.Entry.Size)
	assert.Equal(t, "b1", last.Entry.BlobID)

	// Failed operation left state (and counter) untouched.
	assert.Equal(t, NewObjectID(1), root.Counter())
	entry, err := root.Stat("/file1.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), entry.Size)
	require.NoError(t, root.CheckInvariants())
}

func TestAddFileOverwrite(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddFile("/file1.txt", FileMeta{Size: 1024, BlobID: "b1", EndEpoch: 200}, false, 1000))

	require.NoError(t, root.AddFile("/file1.txt", FileMeta{Size: 2048, BlobID: "b1_v2", EndEpoch: 250}, true, 1001))

	entry, err := root.Stat("/file1.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), entry.Size)
	assert.Equal(t, "b1_v2", entry.BlobID)
	assert.Equal(t, uint64(1001), entry.CreateTS)

	// Old object is gone, a fresh id was allocated for the replacement.
	assert.Equal(t, NewObjectID(2), root.Counter())
	files, dirs := root.ObjectCount()
	assert.Equal(t, 1, files)
	assert.Equal(t, 0, dirs)
	require.NoError(t, root.CheckInvariants())
}

func TestAddDirDuplicateEmitsThenAborts(t *testing.T) {
	root, rec := newRoot(t)
	require.NoError(t, root.AddDir("/dir1", []string{"folder"}, 1100))

	err := root.AddDir("/dir1", nil, 1200)
	assert.ErrorIs(t, err, ErrDirectoryAlreadyExists)

	require.Len(t, rec.events, 2)
	last := rec.events[1]
	assert.Equal(t, EventDirAlreadyExists, last.Kind)
	require.NotNil(t, last.Entry)
	assert.Equal(t, uint64(1100), last.Entry.CreateTS)
	assert.Equal(t, []string{"folder"}, last.Entry.Tags)

	assert.Equal(t, NewObjectID(1), root.Counter())
	require.NoError(t, root.CheckInvariants())
}

func TestAddFileMissingParentSegment(t *testing.T) {
	root, _ := newRoot(t)
	err := root.AddFile("/missing/file.txt", FileMeta{BlobID: "b"}, false, 1)
	assert.ErrorIs(t, err, ErrPathError)
}

func TestRenameFile(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/dir1", nil, 100))
	require.NoError(t, root.AddFile("/dir1/old.txt", FileMeta{Size: 7, BlobID: "b"}, false, 200))

	require.NoError(t, root.RenameFile("/dir1/old.txt", "/dir1/new.txt"))

	entry, err := root.Stat("/dir1/new.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(200), entry.CreateTS) // identity and timestamp preserved
	_, err = root.Stat("/dir1/old.txt")
	assert.ErrorIs(t, err, ErrPathNotFound)

	// Renames allocate nothing.
	assert.Equal(t, NewObjectID(2), root.Counter())
	require.NoError(t, root.CheckInvariants())
}

func TestRenameCrossDirectoryForbidden(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/dir1", nil, 100))
	require.NoError(t, root.AddFile("/x.txt", FileMeta{Size: 1, BlobID: "b"}, false, 200))

	err := root.RenameFile("/x.txt", "/dir1/x.txt")
	assert.ErrorIs(t, err, ErrRenamePathMismatch)

	require.NoError(t, root.AddDir("/dir1/sub", nil, 300))
	err = root.RenameDir("/dir1/sub", "/dir2/sub")
	assert.ErrorIs(t, err, ErrRenamePathMismatch)

	// Prefix segments are compared verbatim, not resolved.
	require.NoError(t, root.AddFile("/dir1/a.txt", FileMeta{BlobID: "b"}, false, 400))
	err = root.RenameFile("/dir1/a.txt", "/dir1/sub/a.txt")
	assert.ErrorIs(t, err, ErrRenamePathMismatch)
	require.NoError(t, root.CheckInvariants())
}

func TestRenameCollisionsAndMissing(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddFile("/a.txt", FileMeta{BlobID: "b"}, false, 1))
	require.NoError(t, root.AddFile("/b.txt", FileMeta{BlobID: "b"}, false, 2))
	require.NoError(t, root.AddDir("/d1", nil, 3))
	require.NoError(t, root.AddDir("/d2", nil, 4))

	assert.ErrorIs(t, root.RenameFile("/a.txt", "/b.txt"), ErrFileAlreadyExists)
	assert.ErrorIs(t, root.RenameDir("/d1", "/d2"), ErrDirectoryAlreadyExists)
	assert.ErrorIs(t, root.RenameFile("/ghost.txt", "/other.txt"), ErrPathError)
	assert.ErrorIs(t, root.RenameDir("/ghost", "/other"), ErrPathError)
	require.NoError(t, root.CheckInvariants())
}

func TestRenameRoundTripRestoresState(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddFile("/a.txt", FileMeta{Size: 5, BlobID: "b"}, false, 1))
	before := root.Snapshot()

	require.NoError(t, root.RenameFile("/a.txt", "/b.txt"))
	require.NoError(t, root.RenameFile("/b.txt", "/a.txt"))

	assert.Equal(t, before, root.Snapshot())
}

func TestDeleteFileRoundTrip(t *testing.T) {
	root, rec := newRoot(t)
	require.NoError(t, root.AddDir("/dir1", nil, 50))
	before := root.Snapshot()

	require.NoError(t, root.AddFile("/dir1/f.txt", FileMeta{Size: 9, BlobID: "b"}, false, 100))
	require.NoError(t, root.DeleteFile("/dir1/f.txt"))

	// Identical to the pre-add state except for the advanced counter.
	after := root.Snapshot()
	assert.Equal(t, NewObjectID(2), after.ObjIDCounter)
	after.ObjIDCounter = before.ObjIDCounter
	assert.Equal(t, before, after)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventDeleted, last.Kind)
	assert.Equal(t, "/dir1/f.txt", last.Path)
	assert.Nil(t, last.Entry)

	assert.ErrorIs(t, root.DeleteFile("/dir1/f.txt"), ErrPathNotFound)
	require.NoError(t, root.CheckInvariants())
}

func TestDeleteDirRecursive(t *testing.T) {
	root, rec := newRoot(t)
	require.NoError(t, root.AddDir("/dir1", []string{"folder"}, 1100))
	require.NoError(t, root.AddFile("/dir1/sub.txt", FileMeta{Size: 512, BlobID: "sb", EndEpoch: 300}, false, 1200))
	require.NoError(t, root.AddDir("/dir1/sd", nil, 1300))
	require.NoError(t, root.AddFile("/dir1/sd/deep.txt", FileMeta{Size: 1, BlobID: "d"}, false, 1400))

	require.NoError(t, root.DeleteDir("/dir1"))

	entries, err := root.ListDir("/")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Every descendant was garbage-collected in the same transaction.
	files, dirs := root.ObjectCount()
	assert.Zero(t, files)
	assert.Zero(t, dirs)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventDeleted, last.Kind)
	assert.Equal(t, "/dir1", last.Path)

	_, err = root.GetDirAll("/dir1")
	assert.ErrorIs(t, err, ErrPathError)
	require.NoError(t, root.CheckInvariants())
}

func TestDeleteDirKeepsSiblings(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/keep", nil, 1))
	require.NoError(t, root.AddFile("/keep/f.txt", FileMeta{BlobID: "b"}, false, 2))
	require.NoError(t, root.AddDir("/drop", nil, 3))
	require.NoError(t, root.AddFile("/drop/g.txt", FileMeta{BlobID: "b"}, false, 4))

	require.NoError(t, root.DeleteDir("/drop"))

	files, dirs := root.ObjectCount()
	assert.Equal(t, 1, files)
	assert.Equal(t, 1, dirs)
	_, err := root.Stat("/keep/f.txt")
	require.NoError(t, err)
	require.NoError(t, root.CheckInvariants())
}

func TestDeleteEmptyDir(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/empty", nil, 1))
	require.NoError(t, root.DeleteDir("/empty"))

	_, dirs := root.ObjectCount()
	assert.Zero(t, dirs)
	assert.ErrorIs(t, root.DeleteDir("/empty"), ErrPathNotFound)
}

func TestIDsNeverReused(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddFile("/a", FileMeta{BlobID: "b"}, false, 1))
	require.NoError(t, root.DeleteFile("/a"))
	require.NoError(t, root.AddFile("/a", FileMeta{BlobID: "b"}, false, 2))

	// The second allocation continued past the deleted id.
	assert.Equal(t, NewObjectID(2), root.Counter())
	require.NoError(t, root.CheckInvariants())
}

func TestFileAndDirMayShareName(t *testing.T) {
	root, _ := newRoot(t)
	require.NoError(t, root.AddDir("/thing", []string{"dir"}, 1))
	require.NoError(t, root.AddFile("/thing", FileMeta{Size: 3, BlobID: "b"}, false, 2))

	// Stat resolves file-first, shadowing the directory.
	entry, err := root.Stat("/thing")
	require.NoError(t, err)
	assert.False(t, entry.IsDir)

	// Both are listed: the directory first, then the file.
	entries, err := root.ListDir("/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsDir)
	assert.False(t, entries[1].IsDir)
	require.NoError(t, root.CheckInvariants())
}
