package retrieval

import (
	"strings"

	"github.com/recall-sh/recall/internal/models"
)

// Suggest derives the next-step suggestion from a memory's fix.
// A single-command fix is suggested verbatim. A multi-step fix is split
// into its ordered steps; if the current command appears in a non-final
// step, the following step is suggested, otherwise the first step.
func Suggest(fix, currentCommand string) string {
	if fix == "" {
		return ""
	}
	if !strings.Contains(fix, models.StepSeparator) {
		return fix
	}

	steps := strings.Split(fix, models.StepSeparator)
	current := strings.TrimSpace(strings.ToLower(currentCommand))
	if current != "" {
		for i, step := range steps[:len(steps)-1] {
			if strings.Contains(strings.ToLower(step), current) {
				return strings.TrimSpace(steps[i+1])
			}
		}
	}
	return strings.TrimSpace(steps[0])
}
