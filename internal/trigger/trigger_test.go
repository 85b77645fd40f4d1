package trigger

import (
	"testing"

	"github.com/recall-sh/recall/internal/models"
)

func intPtr(n int) *int { return &n }

var allFlags = Flags{OnError: true, OnRepeat: true, OnProjectEntry: true, OnBranchChange: true}

func TestEvaluatePriority(t *testing.T) {
	tests := []struct {
		name   string
		flags  Flags
		ctx    models.Context
		want   bool
		reason string
	}{
		{
			"nothing set, all enabled",
			allFlags,
			models.Context{ExitCode: intPtr(0)},
			false, "",
		},
		{
			"error wins over repeat",
			allFlags,
			models.Context{ExitCode: intPtr(1), IsRepeated: true},
			true, ReasonError,
		},
		{
			"repeat wins over project entry",
			allFlags,
			models.Context{ExitCode: intPtr(0), IsRepeated: true, IsProjectEntry: true},
			true, ReasonRepeat,
		},
		{
			"project entry wins over branch change",
			allFlags,
			models.Context{IsProjectEntry: true, BranchChanged: true},
			true, ReasonProjectEntry,
		},
		{
			"branch change last",
			allFlags,
			models.Context{BranchChanged: true},
			true, ReasonBranchChange,
		},
		{
			"disabled error falls through to repeat",
			Flags{OnRepeat: true},
			models.Context{ExitCode: intPtr(2), IsRepeated: true},
			true, ReasonRepeat,
		},
		{
			"all disabled",
			Flags{},
			models.Context{ExitCode: intPtr(1), IsRepeated: true, IsProjectEntry: true, BranchChanged: true},
			false, "",
		},
		{
			"missing exit code is not an error",
			allFlags,
			models.Context{},
			false, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.flags).Evaluate(tt.ctx)
			if got.ShouldTrigger != tt.want || got.Reason != tt.reason {
				t.Errorf("Evaluate() = {%v %q}, want {%v %q}", got.ShouldTrigger, got.Reason, tt.want, tt.reason)
			}
		})
	}
}
