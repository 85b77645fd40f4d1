package session

import (
	"testing"
	"time"

	"github.com/recall-sh/recall/internal/models"
)

func TestRepeatWithinWindow(t *testing.T) {
	tr := NewTracker(10 * time.Minute)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := models.RawEvent{Command: "npm run build", Timestamp: base, ProjectHash: "p1"}
	if ctx := tr.ContextFor(first); ctx.IsRepeated {
		t.Error("first occurrence should not be repeated")
	}
	tr.Observe(first)

	second := models.RawEvent{Command: "npm  run   build", Timestamp: base.Add(2 * time.Minute), ProjectHash: "p1"}
	if ctx := tr.ContextFor(second); !ctx.IsRepeated {
		t.Error("same command within window should be repeated, whitespace-insensitive")
	}
	tr.Observe(second)

	late := models.RawEvent{Command: "npm run build", Timestamp: base.Add(time.Hour), ProjectHash: "p1"}
	if ctx := tr.ContextFor(late); ctx.IsRepeated {
		t.Error("command outside the repeat window should not be repeated")
	}
}

func TestProjectEntry(t *testing.T) {
	tr := NewTracker(10 * time.Minute)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := models.RawEvent{Command: "ls", Timestamp: base, ProjectHash: "p1"}
	if ctx := tr.ContextFor(first); ctx.IsProjectEntry {
		t.Error("very first event is not a project entry")
	}
	tr.Observe(first)

	same := models.RawEvent{Command: "make", Timestamp: base.Add(time.Minute), ProjectHash: "p1"}
	if ctx := tr.ContextFor(same); ctx.IsProjectEntry {
		t.Error("same project is not an entry")
	}
	tr.Observe(same)

	moved := models.RawEvent{Command: "make", Timestamp: base.Add(2 * time.Minute), ProjectHash: "p2"}
	if ctx := tr.ContextFor(moved); !ctx.IsProjectEntry {
		t.Error("new project hash should mark a project entry")
	}
}

func TestBranchChanged(t *testing.T) {
	tr := NewTracker(10 * time.Minute)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tr.Observe(models.RawEvent{Command: "git status", Timestamp: base, ProjectHash: "p1", GitBranch: "main"})

	switched := models.RawEvent{Command: "git status", Timestamp: base.Add(time.Minute), ProjectHash: "p1", GitBranch: "feature/login"}
	if ctx := tr.ContextFor(switched); !ctx.BranchChanged {
		t.Error("branch switch should be detected")
	}

	// Events outside a repo carry no branch; that is not a change.
	outside := models.RawEvent{Command: "ls", Timestamp: base.Add(2 * time.Minute), ProjectHash: "p2"}
	if ctx := tr.ContextFor(outside); ctx.BranchChanged {
		t.Error("missing branch should not count as a change")
	}
}

func TestStaleHistoryPruned(t *testing.T) {
	tr := NewTracker(time.Minute)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tr.Observe(models.RawEvent{Command: "make", Timestamp: base})
	tr.Observe(models.RawEvent{Command: "ls", Timestamp: base.Add(time.Hour)})

	if len(tr.recent) != 1 {
		t.Errorf("stale entries should be pruned, have %d", len(tr.recent))
	}
}
