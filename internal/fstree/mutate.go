package fstree

// AddFile creates a file at path with the supplied metadata. The create
// timestamp is the caller's clock value nowMS (milliseconds since epoch);
// the state machine never reads the wall clock. If the terminal name is
// already a file in its parent: without overwrite the operation emits
// FileAlreadyExists with the existing metadata and aborts; with overwrite
// the old object is destroyed and a fresh id is allocated for the new one.
// A directory with the same name in the same parent is unaffected — the
// two indexes are independent.
func (r *Root) AddFile(path string, meta FileMeta, overwrite bool, nowMS uint64) error {
	if err := validateTags(meta.Tags); err != nil {
		return err
	}
	if err := validateString(meta.BlobID); err != nil {
		return err
	}
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return ErrInvalidPathOperationOnRoot
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, name, err := r.walkToParent(segments)
	if err != nil {
		return err
	}

	if existing, ok := parent.files[name]; ok {
		old, ok := r.fileArena[existing]
		if !ok {
			return ErrArenaMismatch
		}
		if !overwrite {
			r.emit(Event{Kind: EventFileAlreadyExists, Path: path, Entry: fileEntry(name, old)})
			return ErrFileAlreadyExists
		}
		delete(r.fileArena, existing)
		delete(parent.files, name)
	}

	id := r.nextID()
	obj := &FileObject{
		CreateTS: nowMS,
		Tags:     copyTags(meta.Tags),
		Size:     meta.Size,
		BlobID:   meta.BlobID,
		EndEpoch: meta.EndEpoch,
	}
	r.fileArena[id] = obj
	parent.files[name] = id

	r.emit(Event{Kind: EventFileAdded, Path: path, Entry: fileEntry(name, obj)})
	return nil
}

// AddDir creates an empty directory at path. A trailing slash is
// tolerated. If the terminal name is already a directory in its parent,
// DirAlreadyExists is emitted with the existing metadata and the operation
// aborts.
func (r *Root) AddDir(path string, tags []string, nowMS uint64) error {
	if err := validateTags(tags); err != nil {
		return err
	}
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return ErrInvalidPathOperationOnRoot
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, name, err := r.walkToParent(segments)
	if err != nil {
		return err
	}

	if existing, ok := parent.dirs[name]; ok {
		old, ok := r.dirArena[existing]
		if !ok {
			return ErrArenaMismatch
		}
		r.emit(Event{Kind: EventDirAlreadyExists, Path: path, Entry: dirEntry(name, old)})
		return ErrDirectoryAlreadyExists
	}

	id := r.nextID()
	obj := &DirObject{
		CreateTS:            nowMS,
		Tags:                copyTags(tags),
		ChildrenFiles:       make(map[string]ObjectID),
		ChildrenDirectories: make(map[string]ObjectID),
	}
	r.dirArena[id] = obj
	parent.dirs[name] = id

	r.emit(Event{Kind: EventDirAdded, Path: path, Entry: dirEntry(name, obj)})
	return nil
}

// RenameFile moves the name of a file within its parent. Renames never
// cross directories: from and to must agree on every segment except the
// last, or the operation aborts with ErrRenamePathMismatch. The object and
// its id are untouched; only the index entry moves.
func (r *Root) RenameFile(from, to string) error {
	fromSegs, toSegs, err := renameSegments(from, to)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, fromName, err := r.walkToParent(fromSegs)
	if err != nil {
		return err
	}
	toName := toSegs[len(toSegs)-1]

	id, ok := parent.files[fromName]
	if !ok {
		return ErrPathError
	}
	if _, taken := parent.files[toName]; taken {
		return ErrFileAlreadyExists
	}

	delete(parent.files, fromName)
	parent.files[toName] = id
	return nil
}

// RenameDir moves the name of a directory within its parent, under the
// same single-parent rule as RenameFile.
func (r *Root) RenameDir(from, to string) error {
	fromSegs, toSegs, err := renameSegments(from, to)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, fromName, err := r.walkToParent(fromSegs)
	if err != nil {
		return err
	}
	toName := toSegs[len(toSegs)-1]

	id, ok := parent.dirs[fromName]
	if !ok {
		return ErrPathError
	}
	if _, taken := parent.dirs[toName]; taken {
		return ErrDirectoryAlreadyExists
	}

	delete(parent.dirs, fromName)
	parent.dirs[toName] = id
	return nil
}

func renameSegments(from, to string) ([]string, []string, error) {
	fromSegs, err := splitPath(from)
	if err != nil {
		return nil, nil, err
	}
	toSegs, err := splitPath(to)
	if err != nil {
		return nil, nil, err
	}
	if len(fromSegs) == 0 || len(toSegs) == 0 {
		return nil, nil, ErrInvalidPathOperationOnRoot
	}
	if !samePrefix(fromSegs, toSegs) {
		return nil, nil, ErrRenamePathMismatch
	}
	return fromSegs, toSegs, nil
}

// DeleteFile removes a file: its arena entry and its parent index entry,
// in one transaction. Emits Deleted after commit.
func (r *Root) DeleteFile(path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return ErrInvalidPathOperationOnRoot
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, name, err := r.walkToParent(segments)
	if err != nil {
		return err
	}
	id, ok := parent.files[name]
	if !ok {
		return ErrPathNotFound
	}
	if _, ok := r.fileArena[id]; !ok {
		return ErrArenaMismatch
	}

	delete(parent.files, name)
	delete(r.fileArena, id)

	r.emit(Event{Kind: EventDeleted, Path: path})
	return nil
}

// DeleteDir removes a directory and every descendant file and directory
// in the same transaction. Non-empty directories are deleted recursively;
// there is no must-be-empty precondition. The reachable set is collected
// before the first removal so an abort leaves the state untouched.
func (r *Root) DeleteDir(path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return ErrInvalidPathOperationOnRoot
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, name, err := r.walkToParent(segments)
	if err != nil {
		return err
	}
	id, ok := parent.dirs[name]
	if !ok {
		return ErrPathNotFound
	}

	fileIDs, dirIDs, err := r.collectReachable(id)
	if err != nil {
		return err
	}

	delete(parent.dirs, name)
	for fid := range fileIDs {
		delete(r.fileArena, fid)
	}
	for did := range dirIDs {
		delete(r.dirArena, did)
	}

	r.emit(Event{Kind: EventDeleted, Path: path})
	return nil
}

// collectReachable gathers the ids of every file and directory reachable
// from dir id (the directory itself included), depth-first. Sets rather
// than sequences keep a single removal per id even if a bug ever aliased
// an object; a revisited directory means the tree is no longer a tree and
// surfaces ErrArenaMismatch instead of looping. Every collected file id is
// verified against the arena up front, because removal by an absent key
// must never be attempted.
func (r *Root) collectReachable(id ObjectID) (map[ObjectID]struct{}, map[ObjectID]struct{}, error) {
	fileIDs := make(map[ObjectID]struct{})
	dirIDs := make(map[ObjectID]struct{})

	stack := []ObjectID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := dirIDs[cur]; seen {
			return nil, nil, ErrArenaMismatch
		}
		dirIDs[cur] = struct{}{}

		dir, ok := r.dirArena[cur]
		if !ok {
			return nil, nil, ErrArenaMismatch
		}
		for _, fid := range dir.ChildrenFiles {
			if _, ok := r.fileArena[fid]; !ok {
				return nil, nil, ErrArenaMismatch
			}
			fileIDs[fid] = struct{}{}
		}
		for _, did := range dir.ChildrenDirectories {
			stack = append(stack, did)
		}
	}
	return fileIDs, dirIDs, nil
}
