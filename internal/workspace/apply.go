// Package workspace mutates and reads the working tree on behalf of the engine.
//
// Apply is the only writer of repository files during a run. It validates a
// whole change set before touching the disk, so an unsafe, malformed or
// self-conflicting record aborts the attempt with nothing written.
package workspace

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mrz1836/slicer/internal/domain"
	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/pathutil"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// pendingTree is what the already validated records of a change set will
// leave on disk, keyed by repository-relative path.
type pendingTree struct {
	files map[string]bool // true once upserted, false once deleted
	dirs  map[string]struct{}
}

func newPendingTree() *pendingTree {
	return &pendingTree{files: make(map[string]bool), dirs: make(map[string]struct{})}
}

// check rejects a record that conflicts with an earlier record of the same set.
func (t *pendingTree) check(rel string, action domain.ChangeAction) error {
	if _, ok := t.dirs[rel]; ok {
		if action == domain.ActionDelete {
			return fmt.Errorf("refusing to delete directory %s created by an earlier change", rel) //nolint:err113 // wrapped with ErrApply by caller
		}
		return fmt.Errorf("cannot write file over directory %s created by an earlier change", rel) //nolint:err113 // wrapped with ErrApply by caller
	}
	if action != domain.ActionUpsert {
		return nil
	}
	for parent := path.Dir(rel); parent != "."; parent = path.Dir(parent) {
		if t.files[parent] {
			return fmt.Errorf("path component %s is a file written by an earlier change", parent) //nolint:err113 // wrapped with ErrApply by caller
		}
	}
	return nil
}

func (t *pendingTree) record(rel string, action domain.ChangeAction) {
	t.files[rel] = action == domain.ActionUpsert
	if action != domain.ActionUpsert {
		return
	}
	for parent := path.Dir(rel); parent != "."; parent = path.Dir(parent) {
		t.dirs[parent] = struct{}{}
	}
}

// deleted reports whether an earlier record removes rel.
func (t *pendingTree) deleted(rel string) bool {
	present, ok := t.files[rel]
	return ok && !present
}

// plannedChange is a change record that passed validation.
type plannedChange struct {
	rel    string
	target string
	action domain.ChangeAction
	body   string
}

// Apply writes every change in cs under dir and returns the touched paths,
// deduplicated in first-seen order.
//
// An upsert writes full content, creating parent directories. A delete
// removes the file if present and is a no-op otherwise. Unsafe paths fail
// with ErrUnsafePath; unknown actions, directory targets and path components
// that are files fail with ErrApply. Records are checked against the disk and
// against the earlier records of cs, all before the first write.
func Apply(dir string, cs domain.ChangeSet) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", errors.ErrApply, dir, err)
	}

	tree := newPendingTree()
	planned := make([]plannedChange, 0, len(cs.Changes))
	for i, change := range cs.Changes {
		p, err := plan(root, change, tree)
		if err != nil {
			return nil, fmt.Errorf("%w: change %d: %w", errors.ErrApply, i+1, err)
		}
		tree.record(p.rel, p.action)
		planned = append(planned, p)
	}

	touched := make([]string, 0, len(planned))
	for _, p := range planned {
		if err := execute(p); err != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", errors.ErrApply, p.action, p.rel, err)
		}
		touched = append(touched, p.rel)
	}
	return pathutil.Dedupe(touched), nil
}

func plan(root string, change domain.Change, tree *pendingTree) (plannedChange, error) {
	rel, err := pathutil.Normalize(change.Path)
	if err != nil {
		return plannedChange{}, err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if err := ensureInside(root, target); err != nil {
		return plannedChange{}, err
	}

	action := domain.ChangeAction(strings.ToLower(strings.TrimSpace(string(change.Action))))
	if action == domain.ActionUpsert || action == domain.ActionDelete {
		if err := tree.check(rel, action); err != nil {
			return plannedChange{}, err
		}
	}
	info, statErr := os.Stat(target)
	exists := statErr == nil

	switch action {
	case domain.ActionUpsert:
		if exists && info.IsDir() {
			return plannedChange{}, fmt.Errorf("cannot write file over directory %s", rel) //nolint:err113 // wrapped with ErrApply by caller
		}
		if err := ensureParentsAreDirs(root, target, tree); err != nil {
			return plannedChange{}, err
		}
	case domain.ActionDelete:
		if exists && info.IsDir() {
			return plannedChange{}, fmt.Errorf("refusing to delete directory %s", rel) //nolint:err113 // wrapped with ErrApply by caller
		}
	default:
		return plannedChange{}, fmt.Errorf("unknown action %q for %s", change.Action, rel) //nolint:err113 // wrapped with ErrApply by caller
	}

	return plannedChange{rel: rel, target: target, action: action, body: change.Content}, nil
}

func execute(p plannedChange) error {
	switch p.action {
	case domain.ActionUpsert:
		if err := os.MkdirAll(filepath.Dir(p.target), dirPerm); err != nil {
			return err
		}
		return os.WriteFile(p.target, []byte(p.body), filePerm) //#nosec G306 -- repository source files
	case domain.ActionDelete:
		if _, err := os.Lstat(p.target); err != nil {
			return nil
		}
		if err := os.Remove(p.target); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return nil
}

// ensureParentsAreDirs fails when an existing ancestor of target is not a
// directory, unless an earlier record of the set deletes that ancestor.
func ensureParentsAreDirs(root, target string, tree *pendingTree) error {
	for parent := filepath.Dir(target); parent != root && len(parent) > len(root); parent = filepath.Dir(parent) {
		info, err := os.Stat(parent)
		if err != nil || info.IsDir() {
			continue
		}
		rel, _ := filepath.Rel(root, parent)
		rel = filepath.ToSlash(rel)
		if tree.deleted(rel) {
			continue
		}
		return fmt.Errorf("path component %s is a file", rel) //nolint:err113 // wrapped with ErrApply by caller
	}
	return nil
}

// ensureInside resolves symlinks in the deepest existing ancestor of target
// and fails with ErrUnsafePath if that lands outside root.
func ensureInside(root, target string) error {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	existing := target
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		next := filepath.Dir(existing)
		if next == existing {
			return nil
		}
		existing = next
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		// A dangling symlink is replaced or removed like any other entry.
		resolved, err = filepath.EvalSymlinks(filepath.Dir(existing))
		if err != nil {
			return nil
		}
	}
	rel, err := filepath.Rel(realRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s resolves outside the working directory", errors.ErrUnsafePath, target)
	}
	return nil
}
