// Package capture wires classification, synthesis, persistence, and
// embedding generation into the event recording pipeline.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recall-sh/recall/internal/metrics"
	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/significance"
	"github.com/recall-sh/recall/internal/synthesis"
)

// Store is the slice of the episode store the recorder writes to.
type Store interface {
	InsertEvent(ctx context.Context, event models.RawEvent) error
	TouchSession(ctx context.Context, sessionID, cwd, branch string) error
	InsertEpisode(ctx context.Context, episode models.Episode) error
	AttachEmbedding(ctx context.Context, episodeID string, vector []float32, model string) error
	UngroupedEvents(ctx context.Context, since time.Time, limit int) ([]models.RawEvent, error)
	MarkEventsGrouped(ctx context.Context, ids []string) error
	EpisodesWithoutEmbedding(ctx context.Context, limit int) ([]models.Episode, error)
}

// Embedder generates vectors for stored episodes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Recorder runs the capture side of the pipeline: persist the raw
// event, synthesize an episode when significant, and attach an
// embedding. Embedding failures never fail a recording; the episode
// stays queued for backfill.
type Recorder struct {
	classifier   *significance.Classifier
	synthesizer  *synthesis.Synthesizer
	store        Store
	embedder     Embedder
	embedTimeout time.Duration
	window       time.Duration
	logger       *slog.Logger
	metrics      *metrics.Collector
}

// New creates a Recorder. The embedder may be nil (episodes are stored
// without vectors and picked up by Backfill later). The collector may
// be nil.
func New(classifier *significance.Classifier, synthesizer *synthesis.Synthesizer, store Store, embedder Embedder, embedTimeout, sequenceWindow time.Duration, logger *slog.Logger, collector *metrics.Collector) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		classifier:   classifier,
		synthesizer:  synthesizer,
		store:        store,
		embedder:     embedder,
		embedTimeout: embedTimeout,
		window:       sequenceWindow,
		logger:       logger,
		metrics:      collector,
	}
}

// RecordOutcome describes what one recorded event produced.
type RecordOutcome struct {
	Significant bool
	Reason      string
	Episode     *models.Episode
	Embedded    bool
}

// Record persists one raw event and, when significant, synthesizes and
// stores an episode for it. Store failures abandon the event; nothing
// else does.
func (r *Recorder) Record(ctx context.Context, event models.RawEvent) (RecordOutcome, error) {
	if event.ID == "" {
		event.ID = "ev_" + uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := r.store.InsertEvent(ctx, event); err != nil {
		return RecordOutcome{}, fmt.Errorf("record event: %w", err)
	}
	if event.SessionID != "" {
		if err := r.store.TouchSession(ctx, event.SessionID, event.CWD, event.GitBranch); err != nil {
			r.logger.Warn("session touch failed", "session", event.SessionID, "error", err)
		}
	}

	res := r.classifier.Classify(event)
	if !res.IsSignificant {
		return RecordOutcome{}, nil
	}

	start := time.Now()
	episode := r.synthesizer.FromEvent(event)
	r.recordOp(metrics.OpSynthesis, start)

	if err := r.store.InsertEpisode(ctx, episode); err != nil {
		return RecordOutcome{}, fmt.Errorf("store episode: %w", err)
	}

	embedded := r.embedEpisode(ctx, episode)
	return RecordOutcome{
		Significant: true,
		Reason:      res.Reason,
		Episode:     &episode,
		Embedded:    embedded,
	}, nil
}

// ConsolidateOutcome summarizes one consolidation run.
type ConsolidateOutcome struct {
	EventsScanned int
	Episodes      int
}

// Consolidate folds stored events into multi-step workflow episodes.
// Events older than the sequence window that formed no group can never
// join one later and are marked consumed so they are not rescanned.
func (r *Recorder) Consolidate(ctx context.Context, since time.Time, limit int) (ConsolidateOutcome, error) {
	events, err := r.store.UngroupedEvents(ctx, since, limit)
	if err != nil {
		return ConsolidateOutcome{}, fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return ConsolidateOutcome{}, nil
	}

	start := time.Now()
	groups := r.synthesizer.GroupEvents(events)
	r.recordOp(metrics.OpSynthesis, start)

	consumed := make(map[string]struct{}, len(events))
	outcome := ConsolidateOutcome{EventsScanned: len(events)}

	for _, group := range groups {
		episode := r.synthesizer.FromEvents(group)
		if err := r.store.InsertEpisode(ctx, episode); err != nil {
			return outcome, fmt.Errorf("store episode: %w", err)
		}
		for _, event := range group {
			consumed[event.ID] = struct{}{}
		}
		outcome.Episodes++
		r.embedEpisode(ctx, episode)
	}

	cutoff := time.Now().Add(-r.window)
	ids := make([]string, 0, len(events))
	for _, event := range events {
		if _, ok := consumed[event.ID]; ok {
			ids = append(ids, event.ID)
			continue
		}
		if event.Timestamp.Before(cutoff) {
			ids = append(ids, event.ID)
		}
	}
	if err := r.store.MarkEventsGrouped(ctx, ids); err != nil {
		return outcome, fmt.Errorf("mark grouped: %w", err)
	}
	return outcome, nil
}

// Backfill attaches embeddings to episodes that are still missing one.
// The progress callback, if non-nil, is invoked after every episode.
// Returns how many episodes were embedded.
func (r *Recorder) Backfill(ctx context.Context, limit int, progress func(done, total int)) (int, error) {
	if r.embedder == nil {
		return 0, fmt.Errorf("no embedding provider configured")
	}

	episodes, err := r.store.EpisodesWithoutEmbedding(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("load episodes: %w", err)
	}

	var embedded int
	for i, episode := range episodes {
		if ctx.Err() != nil {
			return embedded, ctx.Err()
		}
		if r.embedEpisode(ctx, episode) {
			embedded++
		}
		if progress != nil {
			progress(i+1, len(episodes))
		}
	}
	return embedded, nil
}

// embedEpisode generates and attaches an embedding, best effort.
func (r *Recorder) embedEpisode(ctx context.Context, episode models.Episode) bool {
	if r.embedder == nil {
		return false
	}

	embedCtx := ctx
	if r.embedTimeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, r.embedTimeout)
		defer cancel()
	}

	start := time.Now()
	vector, err := r.embedder.Embed(embedCtx, episode.EmbeddingText())
	r.recordOp(metrics.OpEmbedding, start)
	if err != nil {
		r.logger.Warn("embedding failed, episode queued for backfill",
			"episode", episode.ID, "error", err)
		return false
	}

	if err := r.store.AttachEmbedding(ctx, episode.ID, vector, r.embedder.Model()); err != nil {
		r.logger.Warn("attach embedding failed",
			"episode", episode.ID, "error", err)
		return false
	}
	return true
}

func (r *Recorder) recordOp(op string, start time.Time) {
	if r.metrics != nil {
		r.metrics.Record(op, time.Since(start))
	}
}
