// Package retrieval composes trigger evaluation, similarity search, and
// confidence scoring into the context to ranked-memories pipeline.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recall-sh/recall/internal/metrics"
	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/project"
	"github.com/recall-sh/recall/internal/scoring"
	"github.com/recall-sh/recall/internal/similarity"
	"github.com/recall-sh/recall/internal/trigger"
)

// MessageNoMatches is returned when a triggered retrieval finds nothing
// above the confidence floor.
const MessageNoMatches = "No relevant memories found"

// Store is the slice of the episode store the orchestrator reads from.
type Store interface {
	RecentEpisodes(ctx context.Context, projectHash string, limit int) ([]models.Episode, error)
	SearchEpisodes(ctx context.Context, terms []string, limit int) ([]models.Episode, error)
	GetEmbedding(ctx context.Context, episodeID string) ([]float32, error)
}

// Embedder generates the query vector for semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options bounds one retrieval attempt.
type Options struct {
	// MaxResults caps the returned memory list.
	MaxResults int

	// CandidateLimit caps how many recent episodes are considered.
	CandidateLimit int

	// EmbedTimeout bounds query embedding. A timeout counts as a
	// provider failure and falls back to lexical search.
	EmbedTimeout time.Duration
}

// Orchestrator runs the retrieval state machine: trigger, search, score,
// select. One attempt runs to completion before the next; terminal events
// are serialized by the shell session.
type Orchestrator struct {
	triggers *trigger.Evaluator
	scorer   *scoring.Scorer
	store    Store
	embedder Embedder
	opts     Options
	logger   *slog.Logger
	metrics  *metrics.Collector
}

// New creates an Orchestrator. The embedder may be nil, in which case
// every retrieval uses lexical search. The collector may be nil.
func New(triggers *trigger.Evaluator, scorer *scoring.Scorer, store Store, embedder Embedder, opts Options, logger *slog.Logger, collector *metrics.Collector) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		triggers: triggers,
		scorer:   scorer,
		store:    store,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
		metrics:  collector,
	}
}

// candidate pairs an episode with its raw similarity signal.
type candidate struct {
	episode models.Episode
	score   float64
}

// Retrieve runs one retrieval attempt for the given context.
// Store failures are returned to the caller; provider failures are
// recovered via lexical fallback and never fail the attempt.
func (o *Orchestrator) Retrieve(ctx context.Context, ec models.Context) (models.RetrievalResult, error) {
	if o.metrics != nil {
		defer func(start time.Time) {
			o.metrics.Record(metrics.OpRetrieval, time.Since(start))
		}(time.Now())
	}

	triggered := o.triggers.Evaluate(ec)
	if !triggered.ShouldTrigger {
		return models.RetrievalResult{Triggered: false, Memories: []models.ScoredMemory{}}, nil
	}

	candidates, err := o.semanticCandidates(ctx, ec)
	if err != nil {
		if !errors.Is(err, ErrProvider) {
			return models.RetrievalResult{Triggered: true, Reason: triggered.Reason}, err
		}
		o.logger.Warn("semantic search unavailable, falling back to lexical",
			"reason", triggered.Reason, "error", err)
		candidates, err = o.lexicalCandidates(ctx, ec)
		if err != nil {
			return models.RetrievalResult{Triggered: true, Reason: triggered.Reason}, err
		}
	}

	scored := make([]models.ScoredMemory, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, o.scorer.Score(c.episode, ec, c.score))
	}
	ranked := o.scorer.Rank(scored)

	if len(ranked) == 0 {
		return models.RetrievalResult{
			Triggered: true,
			Reason:    triggered.Reason,
			Memories:  []models.ScoredMemory{},
			Message:   MessageNoMatches,
		}, nil
	}

	if o.opts.MaxResults > 0 && len(ranked) > o.opts.MaxResults {
		ranked = ranked[:o.opts.MaxResults]
	}
	top := ranked[0]

	return models.RetrievalResult{
		Triggered:  true,
		Reason:     triggered.Reason,
		Memories:   ranked,
		TopMemory:  &top,
		Suggestion: Suggest(top.Episode.Fix, ec.Command),
		Formatted:  FormatMemory(top.Episode, ModeCompact),
	}, nil
}

// semanticCandidates embeds the context query and scores recent project
// episodes by cosine similarity. Errors wrapping ErrProvider signal the
// caller to fall back to lexical search; anything else is a store failure.
func (o *Orchestrator) semanticCandidates(ctx context.Context, ec models.Context) ([]candidate, error) {
	if o.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", ErrProvider)
	}

	embedCtx := ctx
	if o.opts.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, o.opts.EmbedTimeout)
		defer cancel()
	}
	query, err := o.embedder.Embed(embedCtx, queryText(ec))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	episodes, err := o.store.RecentEpisodes(ctx, ec.ProjectHash, o.opts.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	candidates := make([]candidate, 0, len(episodes))
	for _, ep := range episodes {
		if ep.EmbeddingID == nil {
			continue
		}
		vector, err := o.store.GetEmbedding(ctx, ep.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		if vector == nil {
			continue
		}
		score, err := similarity.Cosine(query, vector)
		if err != nil {
			// Dimension mismatch means the stored corpus does not match
			// the active model; treat like a provider failure.
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}
		candidates = append(candidates, candidate{episode: ep, score: score})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no embedded episodes for project", ErrProvider)
	}
	return candidates, nil
}

// lexicalCandidates searches summaries, problems, and keywords for the
// context's terms, assigning every match the placeholder similarity.
func (o *Orchestrator) lexicalCandidates(ctx context.Context, ec models.Context) ([]candidate, error) {
	terms := searchTerms(ec)
	if len(terms) == 0 {
		return nil, nil
	}

	episodes, err := o.store.SearchEpisodes(ctx, terms, o.opts.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	candidates := make([]candidate, 0, len(episodes))
	for _, ep := range episodes {
		candidates = append(candidates, candidate{episode: ep, score: similarity.LexicalPlaceholder})
	}
	return candidates, nil
}

// queryText builds the embedding query from the context.
func queryText(ec models.Context) string {
	text := ec.Command
	if ec.ErrorExcerpt != "" {
		text += "\n" + ec.ErrorExcerpt
	}
	return text
}

// searchTerms builds the lexical search terms: the command, the first
// line of the error excerpt, and the trailing path segment of cwd.
func searchTerms(ec models.Context) []string {
	var terms []string
	if cmd := strings.TrimSpace(ec.Command); cmd != "" {
		terms = append(terms, cmd)
	}
	if excerpt := strings.TrimSpace(ec.ErrorExcerpt); excerpt != "" {
		if idx := strings.IndexByte(excerpt, '\n'); idx >= 0 {
			excerpt = strings.TrimSpace(excerpt[:idx])
		}
		if excerpt != "" {
			terms = append(terms, excerpt)
		}
	}
	if segment := project.Segment(ec.CWD); segment != "" {
		terms = append(terms, segment)
	}
	return terms
}
