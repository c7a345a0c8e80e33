package fstree

// State is the complete root flattened for persistence: metadata, the two
// top-level indexes and both arenas as key-sorted parallel vectors. The
// layout is deterministic so the canonical encoding of a State round-trips
// bit for bit.
type State struct {
	CurrentEpoch uint64     `json:"current_epoch"`
	ObjIDCounter ObjectID   `json:"obj_id_counter"`
	Authority    string     `json:"authority"`
	FileNames    []string   `json:"file_names"`
	FileIDs      []ObjectID `json:"file_ids"`
	DirNames     []string   `json:"dir_names"`
	DirIDs       []ObjectID `json:"dir_ids"`

	Files []FileRecord `json:"files"`
	Dirs  []DirRecord  `json:"dirs"`
}

// Snapshot exports the full state under the read lock.
func (r *Root) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := State{
		CurrentEpoch: r.currentEpoch,
		ObjIDCounter: r.objIDCounter,
		Authority:    r.authority,
		FileNames:    make([]string, 0, len(r.childrenFiles)),
		FileIDs:      make([]ObjectID, 0, len(r.childrenFiles)),
		DirNames:     make([]string, 0, len(r.childrenDirectories)),
		DirIDs:       make([]ObjectID, 0, len(r.childrenDirectories)),
		Files:        make([]FileRecord, 0, len(r.fileArena)),
		Dirs:         make([]DirRecord, 0, len(r.dirArena)),
	}
	for _, name := range sortedNames(r.childrenFiles) {
		st.FileNames = append(st.FileNames, name)
		st.FileIDs = append(st.FileIDs, r.childrenFiles[name])
	}
	for _, name := range sortedNames(r.childrenDirectories) {
		st.DirNames = append(st.DirNames, name)
		st.DirIDs = append(st.DirIDs, r.childrenDirectories[name])
	}

	fileSet := make(map[ObjectID]struct{}, len(r.fileArena))
	for id := range r.fileArena {
		fileSet[id] = struct{}{}
	}
	for _, id := range sortedIDs(fileSet) {
		st.Files = append(st.Files, FileRecord{ID: id, Object: r.cloneFile(id)})
	}
	dirSet := make(map[ObjectID]struct{}, len(r.dirArena))
	for id := range r.dirArena {
		dirSet[id] = struct{}{}
	}
	for _, id := range sortedIDs(dirSet) {
		st.Dirs = append(st.Dirs, r.dirRecord(id))
	}
	return st
}

func (r *Root) cloneFile(id ObjectID) FileObject {
	obj := *r.fileArena[id]
	obj.Tags = copyTags(obj.Tags)
	return obj
}

// FromState rebuilds a root from a persisted State. The caller should run
// CheckInvariants on the result before trusting it.
func FromState(st State) *Root {
	r := Initialize(st.Authority)
	r.currentEpoch = st.CurrentEpoch
	r.objIDCounter = st.ObjIDCounter

	for i, name := range st.FileNames {
		r.childrenFiles[name] = st.FileIDs[i]
	}
	for i, name := range st.DirNames {
		r.childrenDirectories[name] = st.DirIDs[i]
	}
	for _, rec := range st.Files {
		obj := rec.Object
		obj.Tags = copyTags(obj.Tags)
		r.fileArena[rec.ID] = &obj
	}
	for _, rec := range st.Dirs {
		dir := &DirObject{
			CreateTS:            rec.CreateTS,
			Tags:                copyTags(rec.Tags),
			ChildrenFiles:       make(map[string]ObjectID, len(rec.ChildFileNames)),
			ChildrenDirectories: make(map[string]ObjectID, len(rec.ChildDirNames)),
		}
		for i, name := range rec.ChildFileNames {
			dir.ChildrenFiles[name] = rec.ChildFileIDs[i]
		}
		for i, name := range rec.ChildDirNames {
			dir.ChildrenDirectories[name] = rec.ChildDirIDs[i]
		}
		r.dirArena[rec.ID] = dir
	}
	return r
}
