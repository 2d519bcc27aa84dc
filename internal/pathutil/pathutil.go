// Package pathutil validates repository-relative paths proposed by a model.
//
// Every path that reaches the filesystem from model output passes through
// Normalize first. Selection lists drop unsafe paths with FilterSafe; the
// apply step treats the same failure as fatal.
package pathutil

import (
	"strings"

	"github.com/mrz1836/slicer/internal/errors"
)

// Normalize converts a model-proposed path into a safe repository-relative form.
//
// Backslashes become forward slashes and one leading "./" is stripped. The
// path is rejected with ErrUnsafePath if it is empty after trimming, absolute,
// starts with "../", or contains a "/../" segment.
func Normalize(path string) (string, error) {
	p := strings.ReplaceAll(strings.TrimSpace(path), `\`, "/")
	if p == "" {
		return "", errors.Wrap(errors.ErrUnsafePath, "path is empty")
	}
	if strings.HasPrefix(p, "/") {
		return "", errors.Wrapf(errors.ErrUnsafePath, "absolute path %q", path)
	}
	if p == ".." || strings.HasPrefix(p, "../") || strings.Contains(p, "/../") || strings.HasSuffix(p, "/..") {
		return "", errors.Wrapf(errors.ErrUnsafePath, "path %q escapes the working directory", path)
	}
	p = strings.TrimPrefix(p, "./")
	if p == "" || p == "." {
		return "", errors.Wrapf(errors.ErrUnsafePath, "path %q names the working directory itself", path)
	}
	return p, nil
}

// FilterSafe normalizes every path and silently drops the unsafe ones.
// Order is preserved; duplicates are removed.
func FilterSafe(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, raw := range paths {
		p, err := Normalize(raw)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return Dedupe(out)
}

// Dedupe returns items with later duplicates removed, keeping first-occurrence order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
