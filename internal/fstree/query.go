package fstree

import "sort"

// ListDir returns one entry per immediate child of the directory at path.
// "/" lists the root; the empty path is invalid like everywhere else.
// Directories come first, then files; within each kind entries are
// ordered by name. Callers must not rely on the ordering being
// alphabetical — it is an implementation detail.
func (r *Root) ListDir(path string) ([]ListEntry, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ref, err := r.walkToDir(segments)
	if err != nil {
		return nil, err
	}

	entries := make([]ListEntry, 0, len(ref.dirs)+len(ref.files))
	for _, name := range sortedNames(ref.dirs) {
		dir, ok := r.dirArena[ref.dirs[name]]
		if !ok {
			return nil, ErrArenaMismatch
		}
		entries = append(entries, *dirEntry(name, dir))
	}
	for _, name := range sortedNames(ref.files) {
		file, ok := r.fileArena[ref.files[name]]
		if !ok {
			return nil, ErrArenaMismatch
		}
		entries = append(entries, *fileEntry(name, file))
	}
	return entries, nil
}

// Stat describes the object at path. The terminal name is resolved in the
// parent's file index first, then its directory index; a file therefore
// shadows a like-named directory in the same parent. The root path is not
// a valid argument.
func (r *Root) Stat(path string) (ListEntry, error) {
	segments, err := splitPath(path)
	if err != nil {
		return ListEntry{}, err
	}
	if len(segments) == 0 {
		return ListEntry{}, ErrPathError
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	parent, name, err := r.walkToParent(segments)
	if err != nil {
		return ListEntry{}, err
	}

	if id, ok := parent.files[name]; ok {
		file, ok := r.fileArena[id]
		if !ok {
			return ListEntry{}, ErrArenaMismatch
		}
		return *fileEntry(name, file), nil
	}
	if id, ok := parent.dirs[name]; ok {
		dir, ok := r.dirArena[id]
		if !ok {
			return ListEntry{}, ErrArenaMismatch
		}
		return *dirEntry(name, dir), nil
	}
	return ListEntry{}, ErrPathNotFound
}

// GetDirAll resolves path to a directory and returns a recursive snapshot
// of everything reachable from it: the directory id, every descendant file
// with its object, and every directory (the target included) flattened to
// parallel child name/id vectors. Records are ordered by id, child vectors
// by name.
func (r *Root) GetDirAll(path string) (RecursiveSnapshot, error) {
	segments, err := splitPath(path)
	if err != nil {
		return RecursiveSnapshot{}, err
	}
	if len(segments) == 0 {
		return RecursiveSnapshot{}, ErrInvalidPathOperationOnRoot
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	parent, name, err := r.walkToParent(segments)
	if err != nil {
		return RecursiveSnapshot{}, err
	}
	id, ok := parent.dirs[name]
	if !ok {
		return RecursiveSnapshot{}, ErrPathError
	}

	fileIDs, dirIDs, err := r.collectReachable(id)
	if err != nil {
		return RecursiveSnapshot{}, err
	}

	snap := RecursiveSnapshot{
		DirID: id,
		Files: make([]FileRecord, 0, len(fileIDs)),
		Dirs:  make([]DirRecord, 0, len(dirIDs)),
	}
	for _, fid := range sortedIDs(fileIDs) {
		snap.Files = append(snap.Files, FileRecord{ID: fid, Object: *r.fileArena[fid]})
	}
	for _, did := range sortedIDs(dirIDs) {
		snap.Dirs = append(snap.Dirs, r.dirRecord(did))
	}
	return snap, nil
}

// dirRecord flattens one directory arena entry. The caller guarantees the
// id resolves.
func (r *Root) dirRecord(id ObjectID) DirRecord {
	dir := r.dirArena[id]
	rec := DirRecord{
		ID:             id,
		CreateTS:       dir.CreateTS,
		Tags:           copyTags(dir.Tags),
		ChildFileNames: make([]string, 0, len(dir.ChildrenFiles)),
		ChildFileIDs:   make([]ObjectID, 0, len(dir.ChildrenFiles)),
		ChildDirNames:  make([]string, 0, len(dir.ChildrenDirectories)),
		ChildDirIDs:    make([]ObjectID, 0, len(dir.ChildrenDirectories)),
	}
	for _, name := range sortedNames(dir.ChildrenFiles) {
		rec.ChildFileNames = append(rec.ChildFileNames, name)
		rec.ChildFileIDs = append(rec.ChildFileIDs, dir.ChildrenFiles[name])
	}
	for _, name := range sortedNames(dir.ChildrenDirectories) {
		rec.ChildDirNames = append(rec.ChildDirNames, name)
		rec.ChildDirIDs = append(rec.ChildDirIDs, dir.ChildrenDirectories[name])
	}
	return rec
}

func sortedIDs(set map[ObjectID]struct{}) []ObjectID {
	ids := make([]ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}
