package wire

import (
	"bytes"
	"fmt"

	"github.com/fardream/go-bcs/bcs"

	"github.com/siphonelee/walavie/internal/fstree"
)

// EncodeEntry encodes a single ListEntry.
func EncodeEntry(entry fstree.ListEntry) ([]byte, error) {
	return bcs.Marshal(&entry)
}

// EncodeEntries encodes a ListDir result as a length-prefixed sequence.
func EncodeEntries(entries []fstree.ListEntry) ([]byte, error) {
	return bcs.Marshal(&entries)
}

// EncodeSnapshot encodes a GetDirAll result.
func EncodeSnapshot(snap fstree.RecursiveSnapshot) ([]byte, error) {
	return bcs.Marshal(&snap)
}

// EncodeState encodes a persisted root snapshot.
func EncodeState(st fstree.State) ([]byte, error) {
	return bcs.Marshal(&st)
}

// DecodeState decodes a persisted root snapshot.
func DecodeState(data []byte) (fstree.State, error) {
	var st fstree.State
	if err := bcs.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return fstree.State{}, fmt.Errorf("decode root state: %w", err)
	}
	return st, nil
}

// Event payload layouts. File events carry the full stored metadata, dir
// events metadata without content fields, deletions the path alone.
type fileEventBody struct {
	Path     string
	CreateTS uint64
	Tags     []string
	Size     uint64
	BlobID   string
	EndEpoch uint64
}

type dirEventBody struct {
	Path     string
	CreateTS uint64
	Tags     []string
}

type deleteEventBody struct {
	Path string
}

// EncodeEvent encodes an event payload for off-chain indexers.
func EncodeEvent(e fstree.Event) ([]byte, error) {
	switch e.Kind {
	case fstree.EventFileAdded, fstree.EventFileAlreadyExists:
		if e.Entry == nil {
			return nil, fmt.Errorf("event %s without entry", e.Kind)
		}
		return bcs.Marshal(&fileEventBody{
			Path:     e.Path,
			CreateTS: e.Entry.CreateTS,
			Tags:     e.Entry.Tags,
			Size:     e.Entry.Size,
			BlobID:   e.Entry.BlobID,
			EndEpoch: e.Entry.EndEpoch,
		})
	case fstree.EventDirAdded, fstree.EventDirAlreadyExists:
		if e.Entry == nil {
			return nil, fmt.Errorf("event %s without entry", e.Kind)
		}
		return bcs.Marshal(&dirEventBody{
			Path:     e.Path,
			CreateTS: e.Entry.CreateTS,
			Tags:     e.Entry.Tags,
		})
	case fstree.EventDeleted:
		return bcs.Marshal(&deleteEventBody{Path: e.Path})
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}
