// Package match ranks catalog entries against an unresolved counterparty
// name by normalized similarity.
package match

import (
	"errors"
	"sort"

	"github.com/supplyline/resolve/internal/normalize"
	"github.com/supplyline/resolve/internal/similarity"
)

// ErrEmptyCatalog is returned when ranking is attempted against an empty
// catalog. Resolving against an empty catalog is always a configuration
// fault, never a "no match".
var ErrEmptyCatalog = errors.New("supplier catalog is empty")

// DefaultLimit is the default number of candidates returned by Rank.
const DefaultLimit = 10

// Candidate is a ranked (score, catalog name) pair produced for one
// resolution attempt.
type Candidate struct {
	Score float64 `json:"score"`
	Name  string  `json:"name"`
}

// Rank scores every catalog name against the raw name and returns at most
// limit candidates ordered by descending score. Both sides are normalized
// with the strict comparison key before scoring. Score ties break on the
// candidate's lexicographic order, so repeated calls with the same inputs
// always return the same ordering.
func Rank(rawName string, catalog []string, limit int) ([]Candidate, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := normalize.Key(rawName)

	candidates := make([]Candidate, 0, len(catalog))
	for _, name := range catalog {
		candidates = append(candidates, Candidate{
			Score: similarity.Score(key, normalize.Key(name)),
			Name:  name,
		})
	}

	// Sort by score descending, then lexicographically for determinism
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Name < candidates[j].Name
	})

	// Apply limit after sorting
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}
