package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mrz1836/slicer/internal/domain"
)

// RenderRunSummary writes the text form of a finished run: the run
// directory, the overall failed flag, and one line per executed slice.
func RenderRunSummary(w io.Writer, summary *domain.RunSummary) {
	styles := NewOutputStyles()

	_, _ = fmt.Fprintf(w, "Run directory: %s\n", summary.RunDir)
	failed := fmt.Sprintf("%t", summary.Failed)
	if summary.Failed {
		failed = styles.Error.Render(failed)
	} else {
		failed = styles.Success.Render(failed)
	}
	_, _ = fmt.Fprintf(w, "Failed: %s\n", failed)

	for _, sl := range summary.Slices {
		style := SliceStatusStyle(styles, sl.Status)
		line := fmt.Sprintf("%s %s %s", SliceStatusIcon(sl.Status), sl.Slice.ID, sl.Status)
		detail := fmt.Sprintf("%s (%d %s)", sl.Slice.Title, len(sl.Attempts), plural(len(sl.Attempts), "attempt"))
		_, _ = fmt.Fprintf(w, "  %s  %s\n", style.Render(line), styles.Dim.Render(strings.TrimSpace(detail)))
	}
	if summary.StoppedAtSlice != "" {
		_, _ = fmt.Fprintln(w, styles.Dim.Render("Stopped after slice "+summary.StoppedAtSlice))
	}
}

// RenderPlanLocation writes where the planner's artifacts were saved.
func RenderPlanLocation(w io.Writer, dir string) {
	_, _ = fmt.Fprintf(w, "\nPlan logs: %s\n", dir)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
