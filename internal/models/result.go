package models

// ScoredMemory is an Episode annotated with the similarity signals and
// the blended confidence computed for one retrieval context. Transient,
// produced by the scorer and consumed by the orchestrator only.
type ScoredMemory struct {
	Episode       Episode `json:"episode"`
	SemanticScore float64 `json:"semantic_score"`
	ProjectMatch  bool    `json:"project_match"`
	CmdScore      float64 `json:"cmd_score"`
	Confidence    float64 `json:"confidence"`
}

// RetrievalResult is the terminal outcome of one retrieval attempt.
type RetrievalResult struct {
	Triggered bool           `json:"triggered"`
	Reason    string         `json:"reason,omitempty"`
	Memories  []ScoredMemory `json:"memories"`
	TopMemory *ScoredMemory  `json:"top_memory,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Formatted  string        `json:"formatted,omitempty"`
	Message    string        `json:"message,omitempty"`
}
