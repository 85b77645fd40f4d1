package retrieval

import (
	"fmt"
	"strings"

	"github.com/recall-sh/recall/internal/models"
)

// Format modes for FormatMemory.
const (
	ModeCompact = "compact"
	ModeVerbose = "verbose"
)

// FormatMemory renders an episode for display. Compact mode yields a
// single line suitable for shell-hook output; verbose mode yields a
// multi-line block. Unknown modes render compact.
func FormatMemory(episode models.Episode, mode string) string {
	if mode == ModeVerbose {
		return formatVerbose(episode)
	}
	return formatCompact(episode)
}

func formatCompact(episode models.Episode) string {
	line := models.Truncate(episode.Summary, 120)
	if episode.Fix != "" {
		line += " | fix: " + models.Truncate(episode.Fix, 160)
	}
	return line
}

func formatVerbose(episode models.Episode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summary: %s\n", episode.Summary)
	if episode.Problem != "" {
		fmt.Fprintf(&b, "Problem: %s\n", episode.Problem)
	}
	if episode.Environment != "" {
		fmt.Fprintf(&b, "Environment: %s\n", episode.Environment)
	}
	if episode.Fix != "" {
		fmt.Fprintf(&b, "Fix: %s\n", episode.Fix)
	}
	if len(episode.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(episode.Keywords, ", "))
	}
	if episode.ID != "" {
		fmt.Fprintf(&b, "ID: %s\n", episode.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}
