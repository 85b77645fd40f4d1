// Package significance decides whether a raw terminal event is worth
// turning into an episode.
package significance

import (
	"slices"
	"strings"

	"github.com/recall-sh/recall/internal/models"
)

// Reasons reported by Classify. Empty reason means not significant.
const (
	ReasonErrorExit        = "error_exit"
	ReasonErrorInStderr    = "error_in_stderr"
	ReasonErrorInStdout    = "error_in_stdout"
	ReasonImportantCommand = "important_command"
)

// Result holds the outcome of classifying a single event.
type Result struct {
	IsSignificant bool
	Reason        string
}

// Classifier applies the ordered significance rules. It is a pure
// function of event and configuration; safe for concurrent use.
type Classifier struct {
	errorPatterns  []string
	ignoreCommands []string
	important      []string
}

// New creates a Classifier. Pattern matching is case-insensitive
// substring; commands are matched on their first token.
func New(errorPatterns, ignoreCommands, importantCommands []string) *Classifier {
	lower := func(in []string) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = strings.ToLower(s)
		}
		return out
	}
	return &Classifier{
		errorPatterns:  lower(errorPatterns),
		ignoreCommands: lower(ignoreCommands),
		important:      lower(importantCommands),
	}
}

// Classify evaluates the rules in order; the first match wins.
func (c *Classifier) Classify(event models.RawEvent) Result {
	if event.Failed() {
		return Result{IsSignificant: true, Reason: ReasonErrorExit}
	}
	if c.matchesErrorPattern(event.StderrExcerpt) {
		return Result{IsSignificant: true, Reason: ReasonErrorInStderr}
	}
	if c.matchesErrorPattern(event.StdoutExcerpt) {
		return Result{IsSignificant: true, Reason: ReasonErrorInStdout}
	}

	base := models.BaseToken(event.Command)
	if base != "" && !slices.Contains(c.ignoreCommands, base) && slices.Contains(c.important, base) {
		return Result{IsSignificant: true, Reason: ReasonImportantCommand}
	}

	return Result{}
}

func (c *Classifier) matchesErrorPattern(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, pattern := range c.errorPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
