// Package similarity scores string closeness on a 0-100 scale using
// normalized Levenshtein edit distance.
package similarity

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// levenshtein is a reusable metric instance with unit edit costs.
var levenshtein = metrics.NewLevenshtein()

// Score returns the similarity between a and b in [0, 100], where 100 means
// identical. The metric is symmetric and reflexive. Two empty strings score
// 100 by convention; an empty string against a non-empty one scores 0.
// Inputs are expected to be normalized already; Score performs no
// normalization of its own.
func Score(a, b string) float64 {
	// Handle empty strings
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	return strutil.Similarity(a, b, levenshtein) * 100
}
