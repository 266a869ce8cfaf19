// Package batch groups spreadsheet rows by raw counterparty name and
// resolves each group once.
package batch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/supplyline/resolve/internal/resolver"
)

// Row is any input record carrying a raw counterparty name. Grouping is by
// exact string equality on the raw value: two spellings of the same entity
// are two distinct groups, each resolved independently.
type Row interface {
	CounterpartyName() string
}

// Group is a set of rows sharing one raw name, with the canonical entity
// they resolved to.
type Group struct {
	RawName string
	Entity  string
	Rows    []Row
}

// UnresolvedError aggregates every name a run could not resolve, so an
// operator fixes all unknowns in one pass instead of one run per unknown.
type UnresolvedError struct {
	Names []string
}

// Error implements error.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf(
		"the following counterparties were not found in the catalog: %s. "+
			"If a name exists in the system under a different spelling, register it as an alias for the intended supplier.",
		strings.Join(e.Names, ", "))
}

// Processor resolves grouped rows through a single Resolver. The same
// Processor serves both caller policies: Process for best-effort partial
// results, ProcessStrict for all-or-nothing ingestion.
type Processor struct {
	resolver *resolver.Resolver
	logger   *slog.Logger
}

// NewProcessor creates a Processor over the given resolver.
func NewProcessor(r *resolver.Resolver, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{resolver: r, logger: logger}
}

// Process resolves every group and partitions the input into groups ready
// for persistence and the raw names that stayed unresolved (best-effort
// policy). Groups keep the order in which their name first appeared.
// Resolution errors other than declined identity are fatal and abort the
// run; already-resolved groups up to that point are discarded by the caller.
func (p *Processor) Process(rows []Row) ([]Group, []string, error) {
	groups := groupByName(rows)

	resolved := make([]Group, 0, len(groups))
	var unresolved []string

	for _, g := range groups {
		outcome, err := p.resolver.Resolve(g.RawName)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve %q: %w", g.RawName, err)
		}

		if outcome.Status != resolver.StatusResolved {
			p.logger.Warn("counterparty left unresolved", "raw_name", g.RawName, "rows", len(g.Rows))
			unresolved = append(unresolved, g.RawName)
			continue
		}

		g.Entity = outcome.Entity
		p.logger.Debug("counterparty resolved", "raw_name", g.RawName, "entity", g.Entity, "rows", len(g.Rows))
		resolved = append(resolved, g)
	}

	return resolved, unresolved, nil
}

// ProcessStrict runs every group to completion and fails with a single
// aggregate UnresolvedError if any name stayed unresolved (collect-all
// policy). No partial result is returned on failure.
func (p *Processor) ProcessStrict(rows []Row) ([]Group, error) {
	resolved, unresolved, err := p.Process(rows)
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		return nil, &UnresolvedError{Names: unresolved}
	}
	return resolved, nil
}

// groupByName buckets rows by exact raw name, preserving first-seen order.
func groupByName(rows []Row) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, row := range rows {
		name := row.CounterpartyName()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{RawName: name})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	return groups
}
