package git

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mrz1836/slicer/internal/constants"
)

// Introspector answers questions about one working tree.
// It holds no state besides the directory and limits.
type Introspector struct {
	dir      string
	maxFiles int
	timeout  time.Duration
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithMaxFiles overrides the tracked-file listing cap.
func WithMaxFiles(n int) Option {
	return func(r *Introspector) {
		r.maxFiles = n
	}
}

// WithQueryTimeout overrides the per-query timeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *Introspector) {
		r.timeout = d
	}
}

// NewIntrospector creates an Introspector rooted at dir.
func NewIntrospector(dir string, opts ...Option) *Introspector {
	r := &Introspector{
		dir:      dir,
		maxFiles: constants.MaxRepoFiles,
		timeout:  constants.GitQueryTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the working tree root.
func (r *Introspector) Dir() string {
	return r.dir
}

func (r *Introspector) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return runRaw(ctx, r.dir, args...)
}

// TrackedFiles lists tracked paths in git order, skipping slicer's own
// directory, capped at the configured maximum. Failure is returned to the caller.
func (r *Introspector) TrackedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "ls-files", "-z")
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, 64)
	for _, p := range strings.Split(out, "\x00") {
		if p == "" || isInternalPath(p) {
			continue
		}
		files = append(files, p)
		if len(files) == r.maxFiles {
			break
		}
	}
	return files, nil
}

// ChangedPaths returns the sorted set of modified, added, deleted and
// untracked paths. Rename entries report their destination.
// A failed query yields an empty set.
func (r *Introspector) ChangedPaths(ctx context.Context) []string {
	out, err := r.run(ctx, "status", "--porcelain", "-z", "-uall")
	if err != nil {
		return []string{}
	}
	return parsePorcelainZ(out)
}

// IsTracked reports whether path is in the index.
func (r *Introspector) IsTracked(ctx context.Context, path string) bool {
	_, err := r.run(ctx, "ls-files", "--error-unmatch", "--", path)
	return err == nil
}

// Diff returns one combined working-tree diff for the given paths.
func (r *Introspector) Diff(ctx context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	args := append([]string{"diff", "--"}, paths...)
	out, err := r.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// parsePorcelainZ parses `git status --porcelain -z` output.
// Entries are "XY PATH"; renames and copies are followed by an extra ORIG entry.
func parsePorcelainZ(output string) []string {
	seen := make(map[string]struct{})
	entries := strings.Split(output, "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 4 {
			continue
		}
		x := entry[0]
		path := entry[3:]
		if x == 'R' || x == 'C' {
			i++ // skip the source path
		}
		if isInternalPath(path) {
			continue
		}
		seen[path] = struct{}{}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// isInternalPath reports whether p lives under slicer's own directory.
func isInternalPath(p string) bool {
	return p == constants.SlicerHome || strings.HasPrefix(p, constants.SlicerHome+"/")
}
