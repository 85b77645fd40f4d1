package significance

import (
	"testing"

	"github.com/recall-sh/recall/internal/models"
)

func testClassifier() *Classifier {
	return New(
		[]string{"error", "not found", "Permission Denied"},
		[]string{"ls", "cd"},
		[]string{"git", "npm", "docker"},
	)
}

func intPtr(n int) *int { return &n }

func TestClassifyRuleOrder(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		name   string
		event  models.RawEvent
		want   bool
		reason string
	}{
		{
			"non-zero exit wins over everything",
			models.RawEvent{Command: "npm run build", ExitCode: intPtr(1), StderrExcerpt: "Error: Module not found"},
			true, ReasonErrorExit,
		},
		{
			"stderr pattern",
			models.RawEvent{Command: "./run.sh", ExitCode: intPtr(0), StderrExcerpt: "warning: config NOT FOUND"},
			true, ReasonErrorInStderr,
		},
		{
			"stdout pattern checked after stderr",
			models.RawEvent{Command: "./run.sh", ExitCode: intPtr(0), StdoutExcerpt: "build error in main.go"},
			true, ReasonErrorInStdout,
		},
		{
			"important command",
			models.RawEvent{Command: "git push origin main", ExitCode: intPtr(0)},
			true, ReasonImportantCommand,
		},
		{
			"ignored command never important",
			models.RawEvent{Command: "ls -la", ExitCode: intPtr(0)},
			false, "",
		},
		{
			"plain command not significant",
			models.RawEvent{Command: "vim notes.txt", ExitCode: intPtr(0)},
			false, "",
		},
		{
			"nil exit code is not an error",
			models.RawEvent{Command: "vim notes.txt"},
			false, "",
		},
		{
			"empty event degrades to not significant",
			models.RawEvent{},
			false, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.event)
			if got.IsSignificant != tt.want || got.Reason != tt.reason {
				t.Errorf("Classify() = {%v %q}, want {%v %q}", got.IsSignificant, got.Reason, tt.want, tt.reason)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := testClassifier()
	event := models.RawEvent{Command: "npm run build", ExitCode: intPtr(1), StderrExcerpt: "Error: Module not found"}

	first := c.Classify(event)
	second := c.Classify(event)
	if first != second {
		t.Errorf("Classify not idempotent: %+v vs %+v", first, second)
	}
}

func TestClassifyCaseInsensitivePatterns(t *testing.T) {
	c := testClassifier()
	event := models.RawEvent{Command: "cat /etc/shadow", ExitCode: intPtr(0), StderrExcerpt: "cat: /etc/shadow: permission denied"}

	got := c.Classify(event)
	if !got.IsSignificant || got.Reason != ReasonErrorInStderr {
		t.Errorf("Classify() = %+v, want error_in_stderr", got)
	}
}
