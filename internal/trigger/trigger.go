// Package trigger decides whether a context should start a retrieval
// attempt at all.
package trigger

import "github.com/recall-sh/recall/internal/models"

// Trigger reasons, in priority order.
const (
	ReasonError        = "error"
	ReasonRepeat       = "repeated_command"
	ReasonProjectEntry = "project_entry"
	ReasonBranchChange = "branch_change"
)

// Flags enables or disables individual triggers. Priority among enabled
// triggers is fixed: error > repeat > project entry > branch change.
type Flags struct {
	OnError        bool
	OnRepeat       bool
	OnProjectEntry bool
	OnBranchChange bool
}

// Result holds the outcome of evaluating a context.
type Result struct {
	ShouldTrigger bool
	Reason        string
}

// Evaluator checks a context against the configured trigger flags.
type Evaluator struct {
	flags Flags
}

// New creates an Evaluator with the given flags.
func New(flags Flags) *Evaluator {
	return &Evaluator{flags: flags}
}

// Evaluate returns the first enabled trigger the context satisfies.
func (e *Evaluator) Evaluate(ctx models.Context) Result {
	if e.flags.OnError && ctx.Failed() {
		return Result{ShouldTrigger: true, Reason: ReasonError}
	}
	if e.flags.OnRepeat && ctx.IsRepeated {
		return Result{ShouldTrigger: true, Reason: ReasonRepeat}
	}
	if e.flags.OnProjectEntry && ctx.IsProjectEntry {
		return Result{ShouldTrigger: true, Reason: ReasonProjectEntry}
	}
	if e.flags.OnBranchChange && ctx.BranchChanged {
		return Result{ShouldTrigger: true, Reason: ReasonBranchChange}
	}
	return Result{}
}
