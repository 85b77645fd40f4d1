// Package session tracks per-shell state between events, replacing the
// hidden module-level globals of earlier designs with an explicit
// object the caller owns.
package session

import (
	"strings"
	"time"

	"github.com/recall-sh/recall/internal/models"
)

// Tracker remembers the last directory, branch, and recent commands of
// one shell session. Not safe for concurrent use; a session's events
// are inherently serialized by the shell.
type Tracker struct {
	repeatWindow time.Duration

	lastProjectHash string
	lastBranch      string
	seenAny         bool

	// recent holds command -> last time it was observed.
	recent map[string]time.Time
}

// NewTracker creates a Tracker. Commands repeated within repeatWindow
// mark the context as repeated.
func NewTracker(repeatWindow time.Duration) *Tracker {
	return &Tracker{
		repeatWindow: repeatWindow,
		recent:       make(map[string]time.Time),
	}
}

// ContextFor builds the retrieval context for an event against the
// current session state. It does not mutate state; call Observe once
// the event has been fully processed.
func (t *Tracker) ContextFor(event models.RawEvent) models.Context {
	ctx := models.Context{
		Command:      event.Command,
		CWD:          event.CWD,
		GitBranch:    event.GitBranch,
		ExitCode:     event.ExitCode,
		ErrorExcerpt: event.StderrExcerpt,
		ProjectHash:  event.ProjectHash,
	}

	key := commandKey(event.Command)
	if last, ok := t.recent[key]; ok && key != "" {
		ctx.IsRepeated = event.Timestamp.Sub(last) <= t.repeatWindow
	}

	if t.seenAny {
		ctx.IsProjectEntry = event.ProjectHash != "" && event.ProjectHash != t.lastProjectHash
		ctx.BranchChanged = event.GitBranch != "" && t.lastBranch != "" && event.GitBranch != t.lastBranch
	}

	return ctx
}

// Observe folds the event into the session state and prunes stale
// command history.
func (t *Tracker) Observe(event models.RawEvent) {
	if key := commandKey(event.Command); key != "" {
		t.recent[key] = event.Timestamp
	}
	if event.ProjectHash != "" {
		t.lastProjectHash = event.ProjectHash
	}
	if event.GitBranch != "" {
		t.lastBranch = event.GitBranch
	}
	t.seenAny = true

	cutoff := event.Timestamp.Add(-t.repeatWindow)
	for cmd, ts := range t.recent {
		if ts.Before(cutoff) {
			delete(t.recent, cmd)
		}
	}
}

func commandKey(command string) string {
	return strings.Join(strings.Fields(strings.ToLower(command)), " ")
}
