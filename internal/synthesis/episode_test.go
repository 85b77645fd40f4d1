package synthesis

import (
	"strings"
	"testing"
	"time"

	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/significance"
)

func testSynthesizer() *Synthesizer {
	classifier := significance.New(
		[]string{"error", "not found"},
		[]string{"ls", "cd"},
		[]string{"git", "npm", "docker"},
	)
	return New(classifier, 10*time.Minute, 3)
}

func intPtr(n int) *int { return &n }

func TestFromEventWithStderr(t *testing.T) {
	s := testSynthesizer()
	event := models.RawEvent{
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CWD:           "/home/dev/webapp",
		GitBranch:     "main",
		Command:       "npm run build",
		ExitCode:      intPtr(1),
		StderrExcerpt: "Error: Cannot find module 'left-pad'\n    at require\n    at main\n    at bootstrap",
		ProjectHash:   "abc123",
	}

	ep := s.FromEvent(event)

	if ep.ID == "" || !strings.HasPrefix(ep.ID, "ep_") {
		t.Errorf("episode ID = %q, want ep_ prefix", ep.ID)
	}
	if ep.ProjectHash != "abc123" {
		t.Errorf("project hash = %q", ep.ProjectHash)
	}
	// First 3 stderr lines only
	if strings.Contains(ep.Problem, "bootstrap") {
		t.Errorf("problem should keep only 3 lines, got %q", ep.Problem)
	}
	if !strings.HasPrefix(ep.Problem, "Error: Cannot find module") {
		t.Errorf("problem = %q", ep.Problem)
	}
	if ep.Fix != "npm run build" {
		t.Errorf("fix = %q, want raw command", ep.Fix)
	}
	if ep.Environment != "dir:/home/dev/webapp,branch:main" {
		t.Errorf("environment = %q", ep.Environment)
	}
	if !strings.HasPrefix(ep.Summary, "npm - ") || !strings.Contains(ep.Summary, "(/home/dev/webapp)") {
		t.Errorf("summary = %q", ep.Summary)
	}
}

func TestFromEventProblemFallbacks(t *testing.T) {
	s := testSynthesizer()

	exitOnly := s.FromEvent(models.RawEvent{Command: "make", ExitCode: intPtr(2)})
	if exitOnly.Problem != "Command exited with code 2" {
		t.Errorf("problem = %q", exitOnly.Problem)
	}

	success := s.FromEvent(models.RawEvent{Command: "git push", ExitCode: intPtr(0), CWD: "/repo"})
	if success.Problem != "" {
		t.Errorf("problem = %q, want empty for success", success.Problem)
	}
	if success.Summary != "git - success (/repo)" {
		t.Errorf("summary = %q", success.Summary)
	}
}

func TestFromEventLongStderrTruncated(t *testing.T) {
	s := testSynthesizer()
	ep := s.FromEvent(models.RawEvent{
		Command:       "cargo build",
		StderrExcerpt: strings.Repeat("x", 2000),
	})
	if len(ep.Problem) > 500 {
		t.Errorf("problem length = %d, want <= 500", len(ep.Problem))
	}
}

func TestFromEventEmptyEventDegrades(t *testing.T) {
	s := testSynthesizer()
	ep := s.FromEvent(models.RawEvent{})
	if ep.Summary == "" {
		t.Error("summary must be non-empty even for an empty event")
	}
	if ep.Problem != "" || ep.Fix != "" || ep.Environment != "" {
		t.Errorf("empty event should yield empty fields, got %+v", ep)
	}
}

func TestExtractKeywords(t *testing.T) {
	s := testSynthesizer()
	ep := s.FromEvent(models.RawEvent{
		CWD:           "/home/dev/webapp",
		Command:       "git push origin main",
		StderrExcerpt: "fatal: Could not read from remote repository. ECONNREFUSED, connection timeout",
	})

	for _, want := range []string{"git", "push", "econnrefused", "timeout", "webapp"} {
		found := false
		for _, kw := range ep.Keywords {
			if kw == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("keywords %v missing %q", ep.Keywords, want)
		}
	}

	// Deduplicated
	seen := map[string]int{}
	for _, kw := range ep.Keywords {
		seen[kw]++
		if seen[kw] > 1 {
			t.Errorf("keyword %q duplicated", kw)
		}
	}
}

func TestExtractKeywordsPackageManager(t *testing.T) {
	s := testSynthesizer()
	ep := s.FromEvent(models.RawEvent{Command: "pnpm install --frozen-lockfile", CWD: "/srv/api"})

	got := strings.Join(ep.Keywords, ",")
	if !strings.Contains(got, "pnpm") || !strings.Contains(got, "install") || !strings.Contains(got, "api") {
		t.Errorf("keywords = %v", ep.Keywords)
	}
}

func eventAt(ts time.Time, project, command string) models.RawEvent {
	return models.RawEvent{Timestamp: ts, ProjectHash: project, Command: command, CWD: "/p"}
}

func TestGroupEventsSingleWindow(t *testing.T) {
	s := testSynthesizer()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var events []models.RawEvent
	for i := 0; i < 5; i++ {
		events = append(events, eventAt(base.Add(time.Duration(i)*time.Minute), "p1", "make"))
	}
	// 2 hours later: starts a new group, but alone it is below min length
	events = append(events, eventAt(base.Add(2*time.Hour), "p1", "make"))

	groups := s.GroupEvents(events)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if len(groups[0]) != 5 {
		t.Errorf("len(groups[0]) = %d, want 5", len(groups[0]))
	}
}

func TestGroupEventsProjectBoundary(t *testing.T) {
	s := testSynthesizer()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	events := []models.RawEvent{
		eventAt(base, "p1", "git fetch"),
		eventAt(base.Add(time.Minute), "p1", "git rebase"),
		eventAt(base.Add(2*time.Minute), "p1", "git push"),
		eventAt(base.Add(3*time.Minute), "p2", "npm install"),
		eventAt(base.Add(4*time.Minute), "p2", "npm test"),
		eventAt(base.Add(5*time.Minute), "p2", "npm run build"),
	}

	groups := s.GroupEvents(events)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0][0].ProjectHash != "p1" || groups[1][0].ProjectHash != "p2" {
		t.Error("groups should split at the project boundary")
	}
}

func TestGroupEventsShortGroupsDropped(t *testing.T) {
	s := testSynthesizer()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	events := []models.RawEvent{
		eventAt(base, "p1", "make"),
		eventAt(base.Add(time.Minute), "p1", "make test"),
	}

	if groups := s.GroupEvents(events); len(groups) != 0 {
		t.Errorf("len(groups) = %d, want 0 for below-minimum sequence", len(groups))
	}

	if groups := s.GroupEvents(nil); len(groups) != 0 {
		t.Errorf("len(groups) = %d, want 0 for no events", len(groups))
	}
}

func TestGroupEventsTrailingGroupFlushed(t *testing.T) {
	s := testSynthesizer()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	events := []models.RawEvent{
		eventAt(base, "p1", "a"),
		// gap forces a new group; the first (single-event) one is dropped
		eventAt(base.Add(time.Hour), "p1", "b"),
		eventAt(base.Add(time.Hour+time.Minute), "p1", "c"),
		eventAt(base.Add(time.Hour+2*time.Minute), "p1", "d"),
	}

	groups := s.GroupEvents(events)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if len(groups[0]) != 3 || groups[0][0].Command != "b" {
		t.Errorf("trailing group = %v", groups[0])
	}
}

func TestFromEvents(t *testing.T) {
	s := testSynthesizer()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	group := []models.RawEvent{
		eventAt(base, "p1", "npm test"),
		{
			Timestamp: base.Add(time.Minute), ProjectHash: "p1", CWD: "/p",
			Command: "npm run build", ExitCode: intPtr(1),
			StderrExcerpt: "Error: build failed",
		},
		eventAt(base.Add(2*time.Minute), "p1", "npm run build"),
	}

	ep := s.FromEvents(group)

	if ep.Fix != "npm test -> npm run build -> npm run build" {
		t.Errorf("fix = %q", ep.Fix)
	}
	if ep.Problem != "Error: build failed" {
		t.Errorf("problem = %q, want text from first failing member", ep.Problem)
	}
	if !strings.HasPrefix(ep.Summary, "Multi-step workflow: 3 commands") {
		t.Errorf("summary = %q", ep.Summary)
	}
	if !strings.Contains(ep.Summary, "Error: build failed") {
		t.Errorf("summary should carry the problem suffix, got %q", ep.Summary)
	}
	if ep.ProjectHash != "p1" {
		t.Errorf("project hash = %q", ep.ProjectHash)
	}
}

func TestFromEventsNoFailures(t *testing.T) {
	s := testSynthesizer()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	group := []models.RawEvent{
		eventAt(base, "p1", "git fetch"),
		eventAt(base.Add(time.Minute), "p1", "git rebase"),
		eventAt(base.Add(2*time.Minute), "p1", "git push"),
	}

	ep := s.FromEvents(group)
	if ep.Problem != "" {
		t.Errorf("problem = %q, want empty for an all-success group", ep.Problem)
	}
	if ep.Summary != "Multi-step workflow: 3 commands" {
		t.Errorf("summary = %q", ep.Summary)
	}
}
