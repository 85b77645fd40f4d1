package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/scoring"
	"github.com/recall-sh/recall/internal/trigger"
)

type fakeStore struct {
	episodes   []models.Episode
	embeddings map[string][]float32
	searched   [][]string
	recentErr  error
	searchErr  error
}

func (s *fakeStore) RecentEpisodes(_ context.Context, projectHash string, limit int) ([]models.Episode, error) {
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	out := make([]models.Episode, 0, len(s.episodes))
	for _, ep := range s.episodes {
		if projectHash == "" || ep.ProjectHash == projectHash {
			out = append(out, ep)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) SearchEpisodes(_ context.Context, terms []string, _ int) ([]models.Episode, error) {
	s.searched = append(s.searched, terms)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	var out []models.Episode
	for _, ep := range s.episodes {
		for _, term := range terms {
			if strings.Contains(strings.ToLower(ep.Summary), strings.ToLower(term)) {
				out = append(out, ep)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) GetEmbedding(_ context.Context, episodeID string) ([]float32, error) {
	return s.embeddings[episodeID], nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return e.vector, e.err
}

func strptr(s string) *string { return &s }

func newOrchestrator(store Store, embedder Embedder) *Orchestrator {
	triggers := trigger.New(trigger.Flags{OnError: true, OnRepeat: true})
	scorer := scoring.New(scoring.Weights{Semantic: 0.5, Project: 0.3, Command: 0.2}, 0.3)
	opts := Options{MaxResults: 3, CandidateLimit: 100, EmbedTimeout: time.Second}
	return New(triggers, scorer, store, embedder, opts, nil, nil)
}

func errorContext() models.Context {
	one := 1
	return models.Context{
		Command:     "npm run build",
		CWD:         "/home/dev/webapp",
		ExitCode:    &one,
		ProjectHash: "p1",
	}
}

func TestNotTriggered(t *testing.T) {
	o := newOrchestrator(&fakeStore{}, &fakeEmbedder{})

	zero := 0
	result, err := o.Retrieve(context.Background(), models.Context{Command: "ls", ExitCode: &zero})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Triggered {
		t.Error("clean non-repeated context should not trigger")
	}
	if len(result.Memories) != 0 {
		t.Error("untriggered result should carry no memories")
	}
}

func TestSemanticPath(t *testing.T) {
	store := &fakeStore{
		episodes: []models.Episode{
			{ID: "ep_a", ProjectHash: "p1", Summary: "npm build OOM", Fix: "NODE_OPTIONS=--max-old-space-size=4096 npm run build", EmbeddingID: strptr("emb_a")},
			{ID: "ep_b", ProjectHash: "p1", Summary: "unrelated docker issue", Fix: "docker system prune", EmbeddingID: strptr("emb_b")},
		},
		embeddings: map[string][]float32{
			"ep_a": {1, 0, 0},
			"ep_b": {0, 1, 0},
		},
	}
	o := newOrchestrator(store, &fakeEmbedder{vector: []float32{1, 0, 0}})

	result, err := o.Retrieve(context.Background(), errorContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Triggered || result.Reason != trigger.ReasonError {
		t.Fatalf("expected error trigger, got %+v", result)
	}
	if result.TopMemory == nil || result.TopMemory.Episode.ID != "ep_a" {
		t.Fatalf("expected ep_a on top, got %+v", result.TopMemory)
	}
	if result.TopMemory.SemanticScore < 0.99 {
		t.Errorf("aligned vectors should score ~1, got %f", result.TopMemory.SemanticScore)
	}
	if result.Suggestion != "NODE_OPTIONS=--max-old-space-size=4096 npm run build" {
		t.Errorf("single-step fix should be suggested verbatim, got %q", result.Suggestion)
	}
	if result.Formatted == "" {
		t.Error("matched result should carry formatted output")
	}
	if len(store.searched) != 0 {
		t.Error("semantic path should not hit lexical search")
	}
}

func TestProviderFailureFallsBackToLexical(t *testing.T) {
	store := &fakeStore{
		episodes: []models.Episode{
			{ID: "ep_a", ProjectHash: "p1", Summary: "npm run build fails on CI", Fix: "rm -rf node_modules"},
		},
	}
	o := newOrchestrator(store, &fakeEmbedder{err: errors.New("connection refused")})

	result, err := o.Retrieve(context.Background(), errorContext())
	if err != nil {
		t.Fatalf("provider failure must not fail retrieval: %v", err)
	}
	if len(store.searched) != 1 {
		t.Fatal("expected one lexical search")
	}
	if result.TopMemory == nil || result.TopMemory.SemanticScore != 0.5 {
		t.Errorf("lexical matches carry the placeholder similarity, got %+v", result.TopMemory)
	}
}

func TestEmptyEmbeddingCorpusFallsBack(t *testing.T) {
	// Episodes exist but none carries an embedding yet.
	store := &fakeStore{
		episodes: []models.Episode{
			{ID: "ep_a", ProjectHash: "p1", Summary: "npm run build broke after upgrade", Fix: "npm ci"},
		},
	}
	o := newOrchestrator(store, &fakeEmbedder{vector: []float32{1, 0, 0}})

	result, err := o.Retrieve(context.Background(), errorContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.searched) != 1 {
		t.Fatal("empty embedding corpus should fall back to lexical search")
	}
	if result.TopMemory == nil {
		t.Fatal("lexical match expected")
	}
}

func TestDimensionMismatchFallsBack(t *testing.T) {
	store := &fakeStore{
		episodes: []models.Episode{
			{ID: "ep_a", ProjectHash: "p1", Summary: "npm run build out of memory", EmbeddingID: strptr("emb_a")},
		},
		embeddings: map[string][]float32{"ep_a": {1, 0}},
	}
	o := newOrchestrator(store, &fakeEmbedder{vector: []float32{1, 0, 0}})

	_, err := o.Retrieve(context.Background(), errorContext())
	if err != nil {
		t.Fatalf("dimension mismatch must recover via fallback: %v", err)
	}
	if len(store.searched) != 1 {
		t.Error("expected lexical fallback after dimension mismatch")
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	store := &fakeStore{recentErr: errors.New("connection reset")}
	o := newOrchestrator(store, &fakeEmbedder{vector: []float32{1, 0, 0}})

	_, err := o.Retrieve(context.Background(), errorContext())
	if !errors.Is(err, ErrStore) {
		t.Fatalf("store failure should propagate as ErrStore, got %v", err)
	}
}

func TestNoMatchesMessage(t *testing.T) {
	o := newOrchestrator(&fakeStore{}, &fakeEmbedder{err: errors.New("down")})

	result, err := o.Retrieve(context.Background(), errorContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Triggered {
		t.Error("error context should trigger")
	}
	if len(result.Memories) != 0 || result.Message != MessageNoMatches {
		t.Errorf("empty result should carry the no-matches message, got %+v", result)
	}
}

func TestMaxResultsTruncation(t *testing.T) {
	episodes := make([]models.Episode, 5)
	embeddings := make(map[string][]float32, 5)
	for i := range episodes {
		id := string(rune('a' + i))
		episodes[i] = models.Episode{
			ID: "ep_" + id, ProjectHash: "p1", Summary: "memory " + id,
			Fix: "npm run build", EmbeddingID: strptr("emb_" + id),
			CreatedAt: time.Date(2026, 3, 1, 9, i, 0, 0, time.UTC),
		}
		embeddings["ep_"+id] = []float32{1, 0, 0}
	}
	store := &fakeStore{episodes: episodes, embeddings: embeddings}
	o := newOrchestrator(store, &fakeEmbedder{vector: []float32{1, 0, 0}})

	result, err := o.Retrieve(context.Background(), errorContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Memories) != 3 {
		t.Errorf("results should be truncated to 3, got %d", len(result.Memories))
	}
	// Equal confidence resolves by recency, so the newest episode leads.
	if result.TopMemory.Episode.ID != "ep_e" {
		t.Errorf("newest episode should lead on ties, got %s", result.TopMemory.Episode.ID)
	}
}
