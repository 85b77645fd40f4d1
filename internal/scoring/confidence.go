// Package scoring blends similarity signals into a single ranked
// confidence per candidate episode.
package scoring

import (
	"sort"

	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/similarity"
)

// Weights holds the blend coefficients. They need not sum to 1; the
// blended score is clamped to [0,1].
type Weights struct {
	Semantic float64
	Project  float64
	Command  float64
}

// Scorer computes blended confidence scores and ranks candidates.
type Scorer struct {
	weights       Weights
	minConfidence float64
}

// New creates a Scorer with the given weights and confidence floor.
func New(weights Weights, minConfidence float64) *Scorer {
	return &Scorer{weights: weights, minConfidence: minConfidence}
}

// Score annotates one episode with its confidence for the context.
// cmdScore is 0 when either the context command or the episode fix is
// missing.
func (s *Scorer) Score(episode models.Episode, ctx models.Context, semanticScore float64) models.ScoredMemory {
	projectMatch := episode.ProjectHash != "" && episode.ProjectHash == ctx.ProjectHash

	var cmdScore float64
	if ctx.Command != "" && episode.Fix != "" {
		cmdScore = similarity.Command(ctx.Command, episode.Fix)
	}

	confidence := s.weights.Semantic*semanticScore + s.weights.Command*cmdScore
	if projectMatch {
		confidence += s.weights.Project
	}

	return models.ScoredMemory{
		Episode:       episode,
		SemanticScore: semanticScore,
		ProjectMatch:  projectMatch,
		CmdScore:      cmdScore,
		Confidence:    clamp01(confidence),
	}
}

// Rank scores every candidate, drops those below the confidence floor,
// and sorts the survivors by confidence descending. Ties keep retrieval
// order unless creation times differ, in which case the newer episode
// wins (the explicit secondary key).
func (s *Scorer) Rank(candidates []models.ScoredMemory) []models.ScoredMemory {
	ranked := make([]models.ScoredMemory, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= s.minConfidence {
			ranked = append(ranked, c)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Episode.CreatedAt.After(ranked[j].Episode.CreatedAt)
	})
	return ranked
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
