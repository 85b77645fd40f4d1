package models

// Context is the ephemeral snapshot of current terminal state used to
// decide and drive a retrieval attempt. It is constructed per attempt
// and never persisted.
type Context struct {
	Command        string `json:"command"`
	CWD            string `json:"cwd"`
	GitBranch      string `json:"git_branch,omitempty"`
	ExitCode       *int   `json:"exit_code,omitempty"`
	ErrorExcerpt   string `json:"error_excerpt,omitempty"`
	ProjectHash    string `json:"project_hash"`
	IsRepeated     bool   `json:"is_repeated"`
	IsProjectEntry bool   `json:"is_project_entry"`
	BranchChanged  bool   `json:"branch_changed"`
}

// Failed reports whether the context carries a non-zero exit code.
func (c Context) Failed() bool {
	return c.ExitCode != nil && *c.ExitCode != 0
}
