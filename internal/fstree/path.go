package fstree

import "strings"

// validatePath applies the syntactic rules: non-empty, absolute, no empty
// segments, total length within MaxPathLen. Segment lengths are checked in
// splitPath once the path is cut up.
func validatePath(path string) error {
	if path == "" || len(path) > MaxPathLen {
		return ErrPathError
	}
	if !strings.HasPrefix(path, "/") {
		return ErrPathError
	}
	if strings.Contains(path, "//") {
		return ErrPathError
	}
	return nil
}

// splitPath validates path and cuts it into segments. A single trailing
// slash is tolerated ("/a/b/" and "/a/b" are the same target); the root
// path "/" yields zero segments and each caller decides whether that is
// acceptable for its operation.
func splitPath(path string) ([]string, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		if len(seg) == 0 || len(seg) > MaxStringLen {
			return nil, ErrPathError
		}
	}
	return segments, nil
}

// dirRef points at the child indexes of one directory, either the root's
// top-level indexes or a directory arena entry's. All walks terminate in a
// dirRef so the operations do not care which case they hit.
type dirRef struct {
	files map[string]ObjectID
	dirs  map[string]ObjectID
}

func (r *Root) rootRef() dirRef {
	return dirRef{files: r.childrenFiles, dirs: r.childrenDirectories}
}

// walkToParent descends through every segment but the last, asserting at
// each step that the segment names a directory in the current index and
// that its id resolves in the arena. It returns the parent's indexes and
// the terminal name. segments must be non-empty.
func (r *Root) walkToParent(segments []string) (dirRef, string, error) {
	cur := r.rootRef()
	for _, seg := range segments[:len(segments)-1] {
		id, ok := cur.dirs[seg]
		if !ok {
			return dirRef{}, "", ErrPathError
		}
		dir, ok := r.dirArena[id]
		if !ok {
			return dirRef{}, "", ErrArenaMismatch
		}
		cur = dirRef{files: dir.ChildrenFiles, dirs: dir.ChildrenDirectories}
	}
	return cur, segments[len(segments)-1], nil
}

// walkToDir descends through every segment, resolving the full path to a
// directory. Zero segments resolve to the root (sentinel id). A segment
// that does not exist anywhere along the walk is ErrPathError.
func (r *Root) walkToDir(segments []string) (ObjectID, dirRef, error) {
	var id ObjectID
	cur := r.rootRef()
	for _, seg := range segments {
		next, ok := cur.dirs[seg]
		if !ok {
			return ObjectID{}, dirRef{}, ErrPathError
		}
		dir, ok := r.dirArena[next]
		if !ok {
			return ObjectID{}, dirRef{}, ErrArenaMismatch
		}
		id = next
		cur = dirRef{files: dir.ChildrenFiles, dirs: dir.ChildrenDirectories}
	}
	return id, cur, nil
}

// samePrefix reports whether two rename paths denote entries of the same
// parent: equal depth and every non-terminal segment identical, compared
// verbatim.
func samePrefix(from, to []string) bool {
	if len(from) != len(to) {
		return false
	}
	for i := 0; i < len(from)-1; i++ {
		if from[i] != to[i] {
			return false
		}
	}
	return true
}

func validateTags(tags []string) error {
	if len(tags) > MaxTags {
		return ErrTooManyTags
	}
	for _, tag := range tags {
		if len(tag) > MaxStringLen {
			return ErrStringTooLong
		}
	}
	return nil
}

func validateString(s string) error {
	if len(s) > MaxStringLen {
		return ErrStringTooLong
	}
	return nil
}
