package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mrz1836/slicer/internal/constants"
)

// NoFilesSelected stands in for the file context when nothing was selected.
const NoFilesSelected = "[no existing files selected]"

// LoadFileContext renders the selected files as "### FILE: <path>" blocks.
// Missing files are marked [MISSING]; long files are cut at MaxFileChars.
func LoadFileContext(dir string, files []string) string {
	if len(files) == 0 {
		return NoFilesSelected
	}
	blocks := make([]string, 0, len(files))
	for _, rel := range files {
		content, ok := readCapped(dir, rel)
		if !ok {
			blocks = append(blocks, fmt.Sprintf("### FILE: %s\n[MISSING]", rel))
			continue
		}
		blocks = append(blocks, fmt.Sprintf("### FILE: %s\n%s", rel, content))
	}
	return strings.Join(blocks, "\n\n")
}

// LoadContextFiles renders the spec's context files as "## <path>" blocks,
// marking absent ones [missing file]. It returns "" when there are none.
func LoadContextFiles(dir string, files []string) string {
	if len(files) == 0 {
		return ""
	}
	parts := make([]string, 0, len(files))
	for _, rel := range files {
		content, ok := readCapped(dir, rel)
		if !ok {
			parts = append(parts, fmt.Sprintf("## %s\n[missing file]", rel))
			continue
		}
		parts = append(parts, fmt.Sprintf("## %s\n%s", rel, content))
	}
	return strings.Join(parts, "\n\n")
}

// readCapped reads a regular file as text, truncated to MaxFileChars.
// ok is false when the path is absent or not a regular file.
func readCapped(dir, rel string) (string, bool) {
	path := filepath.Join(dir, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	data, err := os.ReadFile(path) //#nosec G304 -- rel passed the path sanitizer
	if err != nil {
		return fmt.Sprintf("[unable to read file: %s]", err.Error()), true
	}
	return Truncate(string(data), constants.MaxFileChars, constants.TruncatedMarker), true
}

// Truncate cuts text to limit characters and appends the marker after a blank line.
// Invalid UTF-8 is replaced so the result is always valid text.
func Truncate(text string, limit int, marker string) string {
	text = strings.ToValidUTF8(text, "�")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i] + "\n\n" + marker
		}
		count++
	}
	return text
}
