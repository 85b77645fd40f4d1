package models

import "time"

// StepSeparator joins the commands of a multi-step episode's fix, in order.
const StepSeparator = " -> "

// Episode is a synthesized problem/fix record derived from one or more
// terminal events. Summary is always non-empty. EmbeddingID is attached
// after embedding generation succeeds and is the only field ever mutated.
type Episode struct {
	ID          string    `json:"id"`
	ProjectHash string    `json:"project_hash"`
	Summary     string    `json:"summary"`
	Problem     string    `json:"problem,omitempty"`
	Environment string    `json:"environment,omitempty"`
	Fix         string    `json:"fix,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	EmbeddingID *string   `json:"embedding_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// EmbeddingText returns the text embedded for this episode: summary,
// problem, and fix joined on newlines, skipping empty parts.
func (e Episode) EmbeddingText() string {
	text := e.Summary
	if e.Problem != "" {
		text += "\n" + e.Problem
	}
	if e.Fix != "" {
		text += "\n" + e.Fix
	}
	return text
}
