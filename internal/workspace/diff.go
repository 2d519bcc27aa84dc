package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/domain"
)

// Repository is the slice of the git introspector diff capture needs.
type Repository interface {
	IsTracked(ctx context.Context, path string) bool
	Diff(ctx context.Context, paths []string) (string, error)
}

// Capture is the reviewer's view of everything a slice touched.
type Capture struct {
	Text  string
	Stats domain.DiffStats
}

// CaptureDiff classifies each touched path as tracked, untracked-but-present or
// deleted, and renders one combined text: a git diff for tracked paths, a full
// content block per untracked file, and a single deleted-path listing.
// Empty sections are dropped and the result is cut at MaxDiffChars.
func CaptureDiff(ctx context.Context, repo Repository, dir string, paths []string) Capture {
	if len(paths) == 0 {
		return Capture{}
	}

	var tracked, untracked, deleted []string
	for _, p := range paths {
		abs := filepath.Join(dir, filepath.FromSlash(p))
		switch {
		case repo.IsTracked(ctx, p):
			tracked = append(tracked, p)
		case exists(abs):
			untracked = append(untracked, p)
		default:
			deleted = append(deleted, p)
		}
	}

	var stats domain.DiffStats
	sections := make([]string, 0, len(untracked)+2)

	if len(tracked) > 0 {
		out, err := repo.Diff(ctx, tracked)
		if err != nil {
			out = err.Error()
		} else {
			stats = DiffStats(out)
		}
		sections = append(sections, out)
	}

	for _, p := range untracked {
		abs := filepath.Join(dir, filepath.FromSlash(p))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}
		content, _ := readCapped(dir, p)
		sections = append(sections, fmt.Sprintf("### UNTRACKED FILE: %s\n%s", p, content))
		stats.Files++
		stats.LinesAdded += countLines(content)
	}

	if len(deleted) > 0 {
		sections = append(sections, "### DELETED PATHS\n"+strings.Join(deleted, "\n"))
		stats.Files += len(deleted)
	}

	kept := sections[:0]
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	text := strings.Join(kept, "\n\n")
	return Capture{Text: Truncate(text, constants.MaxDiffChars, constants.DiffTruncatedMarker), Stats: stats}
}

// DiffStats counts files and added/removed lines in a unified diff.
// Unparsable input yields zero stats.
func DiffStats(unified string) domain.DiffStats {
	if strings.TrimSpace(unified) == "" {
		return domain.DiffStats{}
	}
	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(unified)).ReadAllFiles()
	if err != nil {
		return domain.DiffStats{}
	}

	stats := domain.DiffStats{Files: len(fileDiffs)}
	for _, fd := range fileDiffs {
		for _, hunk := range fd.Hunks {
			for _, line := range strings.Split(string(hunk.Body), "\n") {
				switch {
				case strings.HasPrefix(line, "+"):
					stats.LinesAdded++
				case strings.HasPrefix(line, "-"):
					stats.LinesRemoved++
				}
			}
		}
	}
	return stats
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(s, "\n"), "\n") + 1
}
