package models

import "time"

// RawEvent is one captured terminal command execution. Immutable once
// recorded; the consolidation pass only flips its grouped flag in the
// store. A nil ExitCode means the code was not observed.
type RawEvent struct {
	ID            string    `json:"id,omitempty"`
	SessionID     string    `json:"session_id"`
	Timestamp     time.Time `json:"timestamp"`
	CWD           string    `json:"cwd"`
	GitBranch     string    `json:"git_branch,omitempty"`
	Command       string    `json:"command"`
	ExitCode      *int      `json:"exit_code,omitempty"`
	StdoutExcerpt string    `json:"stdout_excerpt,omitempty"`
	StderrExcerpt string    `json:"stderr_excerpt,omitempty"`
	ProjectHash   string    `json:"project_hash"`
}

// Failed reports whether the event carries a non-zero exit code.
func (e RawEvent) Failed() bool {
	return e.ExitCode != nil && *e.ExitCode != 0
}
