package fstree

import (
	"github.com/holiman/uint256"
)

// Limits on caller-supplied inputs. String lengths are counted in bytes.
const (
	MaxTags      = 5
	MaxStringLen = 64
	MaxPathLen   = 8 * MaxStringLen
)

// ObjectID is a 256-bit object identifier. The zero value is the reserved
// root sentinel; allocated ids start at 1 and are never reused, even after
// deletion.
type ObjectID uint256.Int

// NewObjectID builds an ObjectID from a uint64. Mainly useful in tests.
func NewObjectID(v uint64) ObjectID {
	return ObjectID(*uint256.NewInt(v))
}

// IsZero reports whether id is the root sentinel.
func (id ObjectID) IsZero() bool {
	u := uint256.Int(id)
	return u.IsZero()
}

// Next returns the id immediately after id. Wrap-around is not a practical
// concern at 256 bits.
func (id ObjectID) Next() ObjectID {
	u := uint256.Int(id)
	u.AddUint64(&u, 1)
	return ObjectID(u)
}

// Less reports whether id orders before other.
func (id ObjectID) Less(other ObjectID) bool {
	a := uint256.Int(id)
	b := uint256.Int(other)
	return a.Cmp(&b) < 0
}

// Cmp compares id against other, returning -1, 0 or 1.
func (id ObjectID) Cmp(other ObjectID) int {
	a := uint256.Int(id)
	b := uint256.Int(other)
	return a.Cmp(&b)
}

// String returns the decimal representation.
func (id ObjectID) String() string {
	u := uint256.Int(id)
	return u.Dec()
}

// MarshalText renders the id as a decimal string, which also makes it
// usable as a JSON object key.
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a decimal id string.
func (id *ObjectID) UnmarshalText(text []byte) error {
	u, err := uint256.FromDecimal(string(text))
	if err != nil {
		return err
	}
	*id = ObjectID(*u)
	return nil
}

// FileObject is a file's stored metadata. The core never holds file bytes;
// BlobID names the externally stored blob and EndEpoch is the epoch after
// which that reservation lapses (stored, not enforced).
type FileObject struct {
	CreateTS uint64   `json:"create_ts"`
	Tags     []string `json:"tags"`
	Size     uint64   `json:"size"`
	BlobID   string   `json:"blob_id"`
	EndEpoch uint64   `json:"end_epoch"`
}

// DirObject is a non-root directory: its metadata plus the name→id indexes
// of its immediate children, one per kind.
type DirObject struct {
	CreateTS            uint64              `json:"create_ts"`
	Tags                []string            `json:"tags"`
	ChildrenFiles       map[string]ObjectID `json:"children_files"`
	ChildrenDirectories map[string]ObjectID `json:"children_directories"`
}

// ListEntry describes one child of a directory. IsDir discriminates the
// two variants; for directories the content fields are zero.
type ListEntry struct {
	Name     string   `json:"name"`
	CreateTS uint64   `json:"create_ts"`
	IsDir    bool     `json:"is_dir"`
	Tags     []string `json:"tags"`
	Size     uint64   `json:"size"`
	BlobID   string   `json:"blob_id"`
	EndEpoch uint64   `json:"end_epoch"`
}

// FileRecord pairs a file id with its arena object.
type FileRecord struct {
	ID     ObjectID   `json:"id"`
	Object FileObject `json:"object"`
}

// DirRecord is a directory flattened for transport: the child indexes are
// parallel name/id vectors, the i-th name corresponding to the i-th id.
type DirRecord struct {
	ID             ObjectID   `json:"id"`
	CreateTS       uint64     `json:"create_ts"`
	Tags           []string   `json:"tags"`
	ChildFileNames []string   `json:"child_file_names"`
	ChildFileIDs   []ObjectID `json:"child_file_ids"`
	ChildDirNames  []string   `json:"child_dir_names"`
	ChildDirIDs    []ObjectID `json:"child_dir_ids"`
}

// RecursiveSnapshot is the result of GetDirAll: the target directory id
// plus every file and directory reachable from it, the target included.
type RecursiveSnapshot struct {
	DirID ObjectID     `json:"dir_id"`
	Files []FileRecord `json:"files"`
	Dirs  []DirRecord  `json:"dirs"`
}

// FileMeta carries the caller-supplied attributes of a new file.
type FileMeta struct {
	Tags     []string `json:"tags"`
	Size     uint64   `json:"size"`
	BlobID   string   `json:"blob_id"`
	EndEpoch uint64   `json:"end_epoch"`
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
