// Package similarity computes the semantic and lexical similarity
// signals used to rank candidate episodes.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrDimensionMismatch indicates cosine similarity was called on vectors
// of unequal length. This is a programming error in normal operation;
// callers treat it like a provider failure and fall back to lexical search.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// LexicalPlaceholder is the similarity assigned to lexical fallback
// matches, which carry no vector signal of their own.
const LexicalPlaceholder = 0.5

// Cosine returns the cosine similarity of two equal-length vectors,
// in [-1, 1]. A zero vector yields 0 against anything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Command scores how alike two command lines are. The base is the
// leading run of non-flag tokens ("git commit" in "git commit -m x"),
// everything from the first flag on is an argument. Different bases
// score 0, identical bases with no arguments score 1, otherwise the
// score is the Jaccard similarity of the argument token sets.
func Command(a, b string) float64 {
	baseA, argsA := splitCommand(a)
	baseB, argsB := splitCommand(b)
	if baseA == "" || baseB == "" {
		return 0
	}
	if baseA != baseB {
		return 0
	}
	if len(argsA) == 0 && len(argsB) == 0 {
		return 1.0
	}
	return jaccard(argsA, argsB)
}

func splitCommand(command string) (base string, args []string) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(command)))
	for i, t := range tokens {
		if strings.HasPrefix(t, "-") {
			return strings.Join(tokens[:i], " "), tokens[i:]
		}
	}
	return strings.Join(tokens, " "), nil
}

// jaccard computes |intersection| / |union| over two token lists,
// treating each as a set.
func jaccard(a, b []string) float64 {
	set := make(map[string]int)
	for _, t := range dedupe(a) {
		set[t] |= 1
	}
	for _, t := range dedupe(b) {
		set[t] |= 2
	}

	var intersection, union int
	for _, mask := range set {
		union++
		if mask == 3 {
			intersection++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
