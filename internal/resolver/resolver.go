// Package resolver turns a free-text counterparty name into a canonical
// supplier reference, learning from operator decisions via the alias store.
package resolver

import (
	"fmt"
	"log/slog"

	"github.com/supplyline/resolve/internal/match"
)

// DefaultAutoAcceptThreshold is the minimum similarity score at which a
// match is trusted without human confirmation. It is tuned so that only
// near-exact spelling variants (accents, case, stray punctuation) pass;
// anything meaningfully different falls through to review.
const DefaultAutoAcceptThreshold = 95

// Status is the terminal state of one resolution attempt.
type Status int

const (
	// StatusResolved means the name maps to exactly one canonical supplier.
	StatusResolved Status = iota
	// StatusNeedsReview means confidence was insufficient and the ranked
	// candidates await a decision.
	StatusNeedsReview
	// StatusUnresolved means review was offered and declined, or the
	// channel was non-interactive.
	StatusUnresolved
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusNeedsReview:
		return "needs_review"
	case StatusUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of resolving one raw name. Candidates is populated
// whenever ranking happened, so callers can surface the near-misses.
type Outcome struct {
	Status     Status            `json:"status"`
	Entity     string            `json:"entity,omitempty"`
	Candidates []match.Candidate `json:"candidates,omitempty"`
}

// Chooser is the disambiguation channel: it lets an operator pick one of the
// ranked candidates for a raw name, or decline. Implementations must never
// block indefinitely in unattended contexts.
type Chooser interface {
	Choose(rawName string, candidates []match.Candidate) (string, bool)
}

// AliasStore is the slice of the alias store the resolver depends on.
type AliasStore interface {
	Lookup(rawName string) (string, bool)
	Add(rawName, canonical string) error
}

// Config holds resolver tuning.
type Config struct {
	AutoAcceptThreshold float64
	CandidateLimit      int
}

// Resolver orchestrates alias lookup, automatic acceptance and escalation to
// the disambiguation channel. It is synchronous: one name resolves fully,
// including any interactive prompt, before the next starts, so alias writes
// are visible to later lookups in the same run.
type Resolver struct {
	store     AliasStore
	catalog   []string
	chooser   Chooser
	threshold float64
	limit     int
	logger    *slog.Logger

	// rank is swappable for tests
	rank func(rawName string, catalog []string, limit int) ([]match.Candidate, error)
}

// New creates a Resolver over the given alias store, canonical name catalog
// and disambiguation channel. A nil chooser behaves like SilentChooser.
func New(cfg Config, store AliasStore, catalog []string, chooser Chooser, logger *slog.Logger) *Resolver {
	if cfg.AutoAcceptThreshold <= 0 {
		cfg.AutoAcceptThreshold = DefaultAutoAcceptThreshold
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = match.DefaultLimit
	}
	if chooser == nil {
		chooser = SilentChooser{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		store:     store,
		catalog:   catalog,
		chooser:   chooser,
		threshold: cfg.AutoAcceptThreshold,
		limit:     cfg.CandidateLimit,
		logger:    logger,
		rank:      match.Rank,
	}
}

// Classify resolves rawName as far as it can without operator involvement:
// alias hit or auto-accept yield StatusResolved, anything else yields
// StatusNeedsReview with the ranked candidates. No alias is ever written.
func (r *Resolver) Classify(rawName string) (Outcome, error) {
	// Alias hit short-circuits ranking entirely
	if canonical, ok := r.store.Lookup(rawName); ok {
		return Outcome{Status: StatusResolved, Entity: canonical}, nil
	}

	candidates, err := r.rank(rawName, r.catalog, r.limit)
	if err != nil {
		return Outcome{}, err
	}

	if candidates[0].Score >= r.threshold {
		// High-confidence match: accept without learning, so a later
		// catalog change re-ranks instead of replaying a machine guess
		return Outcome{Status: StatusResolved, Entity: candidates[0].Name, Candidates: candidates}, nil
	}

	return Outcome{Status: StatusNeedsReview, Candidates: candidates}, nil
}

// Resolve runs the full state machine: Classify, then hand a NeedsReview
// outcome to the disambiguation channel. An operator pick is learned in the
// alias store before returning; a skip (or silent channel) yields
// StatusUnresolved with the candidates retained for reporting.
func (r *Resolver) Resolve(rawName string) (Outcome, error) {
	outcome, err := r.Classify(rawName)
	if err != nil {
		return Outcome{}, err
	}
	if outcome.Status != StatusNeedsReview {
		return outcome, nil
	}

	selected, ok := r.chooser.Choose(rawName, outcome.Candidates)
	if !ok {
		outcome.Status = StatusUnresolved
		return outcome, nil
	}

	if err := r.store.Add(rawName, selected); err != nil {
		// The current run keeps the decision, but it will not be
		// remembered next run; log loudly rather than fail the row.
		r.logger.Error("learned alias was not persisted and will need review again next run",
			"raw_name", rawName, "entity", selected, "error", err)
	}

	outcome.Status = StatusResolved
	outcome.Entity = selected
	return outcome, nil
}
