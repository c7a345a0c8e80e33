// Package fstree implements the hierarchical filesystem state machine.
//
// The state is a single Root object with five regions: root metadata
// (epoch, object-id counter, authority), two name→id indexes for the
// entries directly under "/", and two flat arenas mapping object ids to
// file and directory objects anywhere in the tree. Directories carry their
// own child indexes, so the tree is a graph of name→id edges resolved
// through arena lookups — an inode table rather than owning pointers.
//
// Operations:
//   - AddFile / AddDir: create objects, bumping the id counter
//   - RenameFile / RenameDir: move a name within one parent, id preserved
//   - DeleteFile / DeleteDir: destroy objects, recursively for directories
//   - ListDir / Stat / GetDirAll: read-only snapshots
//   - UpdateEpoch: advance the epoch, authority-gated
//
// Every operation is all-or-nothing: preconditions are checked before the
// first map mutation, and a failed operation leaves the state untouched.
// Mutations hold the root's write lock, reads the read lock; there is no
// finer-grained concurrency.
//
// State transitions are mirrored to a pluggable event Sink consumed by
// off-chain indexers.
package fstree
