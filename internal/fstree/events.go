package fstree

// EventKind discriminates the five state-transition events.
type EventKind string

const (
	EventFileAdded         EventKind = "file_added"
	EventFileAlreadyExists EventKind = "file_already_exists"
	EventDirAdded          EventKind = "dir_added"
	EventDirAlreadyExists  EventKind = "dir_already_exists"
	EventDeleted           EventKind = "deleted"
)

// Event mirrors one state transition (or an AlreadyExists notification
// preceding an abort). Entry carries the object's metadata as stored; it
// is nil for EventDeleted.
type Event struct {
	Kind  EventKind  `json:"kind"`
	Path  string     `json:"path"`
	Entry *ListEntry `json:"entry,omitempty"`
}

// Sink receives events synchronously from inside the emitting operation,
// with the root's lock held. Ordering follows the commit discipline:
// AlreadyExists before its abort, Added and Deleted after commit. Sinks
// must be fast and must not call back into the Root; anything slow should
// hand off to a queue.
type Sink func(Event)

func fileEntry(name string, obj *FileObject) *ListEntry {
	return &ListEntry{
		Name:     name,
		CreateTS: obj.CreateTS,
		IsDir:    false,
		Tags:     copyTags(obj.Tags),
		Size:     obj.Size,
		BlobID:   obj.BlobID,
		EndEpoch: obj.EndEpoch,
	}
}

func dirEntry(name string, obj *DirObject) *ListEntry {
	return &ListEntry{
		Name:     name,
		CreateTS: obj.CreateTS,
		IsDir:    true,
		Tags:     copyTags(obj.Tags),
	}
}
