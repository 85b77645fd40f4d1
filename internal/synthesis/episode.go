// Package synthesis builds episode records from raw terminal events,
// either one event at a time or from time-bounded event sequences.
package synthesis

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/significance"
)

const (
	maxProblemChars = 500
	maxProblemLines = 3
	maxSummaryChars = 80
)

// gitSubcommands are the git verbs extracted as keywords.
var gitSubcommands = map[string]struct{}{
	"push": {}, "pull": {}, "commit": {}, "merge": {}, "rebase": {},
	"checkout": {}, "switch": {}, "clone": {}, "fetch": {}, "stash": {},
	"reset": {}, "branch": {}, "log": {}, "diff": {}, "cherry-pick": {},
}

// packageManagerActions are the npm/yarn/pnpm verbs extracted as keywords.
var packageManagerActions = map[string]struct{}{
	"install": {}, "run": {}, "build": {}, "test": {}, "add": {},
	"remove": {}, "update": {}, "publish": {}, "ci": {}, "audit": {},
}

// errorSignatures are well-known failure tokens looked up in stderr.
var errorSignatures = []string{
	"ENOENT", "EACCES", "ECONNREFUSED", "ECONNRESET", "EADDRINUSE",
	"ETIMEDOUT", "EPERM", "timeout", "segmentation fault", "killed",
}

// Synthesizer turns raw events into episodes. All methods are pure and
// total: missing fields degrade to empty values, never errors.
type Synthesizer struct {
	classifier     *significance.Classifier
	sequenceWindow time.Duration
	minSequenceLen int
}

// New creates a Synthesizer. The classifier decides which member of a
// grouped sequence contributes the problem text.
func New(classifier *significance.Classifier, sequenceWindow time.Duration, minSequenceLen int) *Synthesizer {
	return &Synthesizer{
		classifier:     classifier,
		sequenceWindow: sequenceWindow,
		minSequenceLen: minSequenceLen,
	}
}

// FromEvent builds a single-event episode.
func (s *Synthesizer) FromEvent(event models.RawEvent) models.Episode {
	problem := deriveProblem(event)
	cmdName := commandName(event.Command)

	return models.Episode{
		ID:          newEpisodeID(event.Timestamp),
		ProjectHash: event.ProjectHash,
		Summary:     buildSummary(cmdName, problem, event.CWD),
		Problem:     problem,
		Environment: buildEnvironment(event),
		Fix:         event.Command,
		Keywords:    extractKeywords(event),
		CreatedAt:   episodeTime(event.Timestamp),
	}
}

// GroupEvents splits events into sequence groups. A new group starts
// when the gap to the previous event exceeds the window or the project
// hash changes. Groups shorter than the configured minimum are dropped,
// the trailing group included.
func (s *Synthesizer) GroupEvents(events []models.RawEvent) [][]models.RawEvent {
	var groups [][]models.RawEvent
	var current []models.RawEvent

	flush := func() {
		if len(current) >= s.minSequenceLen {
			groups = append(groups, current)
		}
		current = nil
	}

	for _, event := range events {
		if len(current) > 0 {
			prev := current[len(current)-1]
			if event.Timestamp.Sub(prev.Timestamp) > s.sequenceWindow ||
				event.ProjectHash != current[0].ProjectHash {
				flush()
			}
		}
		current = append(current, event)
	}
	flush()

	return groups
}

// FromEvents builds a multi-step episode from one sequence group. The
// fix preserves command order; the problem comes from the first member
// that failed or carried error text.
func (s *Synthesizer) FromEvents(group []models.RawEvent) models.Episode {
	commands := make([]string, 0, len(group))
	for _, event := range group {
		commands = append(commands, event.Command)
	}

	var problem string
	for _, event := range group {
		res := s.classifier.Classify(event)
		if res.IsSignificant && res.Reason != significance.ReasonImportantCommand {
			problem = deriveProblem(event)
			break
		}
	}

	summary := fmt.Sprintf("Multi-step workflow: %d commands", len(group))
	if problem != "" {
		summary += " - " + models.Truncate(firstLine(problem), maxSummaryChars)
	}

	episode := models.Episode{
		Summary:  summary,
		Problem:  problem,
		Fix:      strings.Join(commands, models.StepSeparator),
		Keywords: groupKeywords(group),
	}
	if len(group) > 0 {
		first := group[0]
		episode.ID = newEpisodeID(first.Timestamp)
		episode.ProjectHash = first.ProjectHash
		episode.Environment = buildEnvironment(first)
		episode.CreatedAt = episodeTime(first.Timestamp)
	} else {
		episode.ID = newEpisodeID(time.Time{})
		episode.CreatedAt = time.Now().UTC()
	}
	return episode
}

// deriveProblem returns the first lines of stderr, an exit-code note,
// or empty, in that order of preference.
func deriveProblem(event models.RawEvent) string {
	if stderr := strings.TrimSpace(event.StderrExcerpt); stderr != "" {
		lines := strings.Split(stderr, "\n")
		if len(lines) > maxProblemLines {
			lines = lines[:maxProblemLines]
		}
		problem := strings.TrimSpace(strings.Join(lines, "\n"))
		if len(problem) > maxProblemChars {
			problem = problem[:maxProblemChars]
		}
		return problem
	}
	if event.Failed() {
		return fmt.Sprintf("Command exited with code %d", *event.ExitCode)
	}
	return ""
}

func buildSummary(cmdName, problem, cwd string) string {
	outcome := "success"
	if problem != "" {
		outcome = models.Truncate(firstLine(problem), maxSummaryChars)
	}
	if cmdName == "" {
		cmdName = "(unknown)"
	}
	return fmt.Sprintf("%s - %s (%s)", cmdName, outcome, cwd)
}

func buildEnvironment(event models.RawEvent) string {
	var tags []string
	if event.CWD != "" {
		tags = append(tags, "dir:"+event.CWD)
	}
	if event.GitBranch != "" {
		tags = append(tags, "branch:"+event.GitBranch)
	}
	return strings.Join(tags, ",")
}

// extractKeywords builds the deduplicated keyword set for one event.
func extractKeywords(event models.RawEvent) []string {
	seen := make(map[string]struct{})
	var keywords []string
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	command := strings.ToLower(event.Command)
	tokens := strings.Fields(command)

	add(commandName(event.Command))

	if strings.Contains(command, "git") {
		for _, tok := range tokens {
			if _, ok := gitSubcommands[tok]; ok {
				add(tok)
			}
		}
	}
	if strings.Contains(command, "npm") || strings.Contains(command, "yarn") || strings.Contains(command, "pnpm") {
		for _, tok := range tokens {
			if _, ok := packageManagerActions[tok]; ok {
				add(tok)
			}
		}
	}

	if event.StderrExcerpt != "" {
		stderrLower := strings.ToLower(event.StderrExcerpt)
		for _, sig := range errorSignatures {
			if strings.Contains(stderrLower, strings.ToLower(sig)) {
				add(sig)
			}
		}
	}

	if seg := path.Base(strings.TrimRight(event.CWD, "/")); seg != "" && seg != "." && seg != "/" {
		add(seg)
	}

	return keywords
}

func groupKeywords(group []models.RawEvent) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, event := range group {
		for _, kw := range extractKeywords(event) {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// commandName strips any leading path from the command's base token,
// so "/usr/bin/python3 app.py" yields "python3".
func commandName(command string) string {
	base := models.BaseToken(command)
	if base == "" {
		return ""
	}
	return path.Base(base)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func episodeTime(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}

// newEpisodeID creates a timestamp-prefixed episode ID with a short
// random suffix, unique within a second.
// Format: ep_2026-01-15T14-30-45Z_1a2b3c4d.
func newEpisodeID(ts time.Time) string {
	formatted := episodeTime(ts).Format(time.RFC3339)
	formatted = strings.ReplaceAll(formatted, ":", "-")
	return "ep_" + formatted + "_" + uuid.NewString()[:8]
}
