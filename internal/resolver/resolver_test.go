package resolver

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyline/resolve/internal/alias"
	"github.com/supplyline/resolve/internal/match"
)

// pickChooser selects a fixed 1-based rank and counts invocations.
type pickChooser struct {
	rank  int
	calls int
}

func (c *pickChooser) Choose(_ string, candidates []match.Candidate) (string, bool) {
	c.calls++
	return candidates[c.rank-1].Name, true
}

// skipChooser declines every time and counts invocations.
type skipChooser struct {
	calls int
}

func (c *skipChooser) Choose(string, []match.Candidate) (string, bool) {
	c.calls++
	return "", false
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// brokenStore fails every Add, as if the backing file were unwritable.
type brokenStore struct{}

func (brokenStore) Lookup(string) (string, bool) { return "", false }

func (brokenStore) Add(string, string) error { return errors.New("read-only file system") }

func newStore(t *testing.T) *alias.Store {
	t.Helper()
	s, err := alias.Open(t.TempDir(), "test")
	require.NoError(t, err)
	return s
}

func TestResolveAutoAcceptsSpellingVariant(t *testing.T) {
	store := newStore(t)
	chooser := &skipChooser{}
	r := New(Config{}, store, []string{"ACME LTDA"}, chooser, quietLogger())

	out, err := r.Resolve("Acme Ltda")
	require.NoError(t, err)

	assert.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "ACME LTDA", out.Entity)
	assert.GreaterOrEqual(t, out.Candidates[0].Score, float64(DefaultAutoAcceptThreshold))
	assert.Equal(t, 0, chooser.calls, "auto-accept must not consult the operator")
	assert.Equal(t, 0, store.Len(), "auto-accept must not learn an alias")
}

func TestResolveLearnsOperatorPick(t *testing.T) {
	store := newStore(t)
	catalog := []string{"ACME LTDA", "ACME COMERCIO"}
	chooser := &pickChooser{rank: 1}
	r := New(Config{}, store, catalog, chooser, quietLogger())

	out, err := r.Resolve("ACM LTD")
	require.NoError(t, err)

	assert.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "ACME LTDA", out.Entity)
	assert.Len(t, out.Candidates, 2)
	assert.Less(t, out.Candidates[0].Score, float64(DefaultAutoAcceptThreshold))

	learned, ok := store.Lookup("ACM LTD")
	assert.True(t, ok)
	assert.Equal(t, "ACME LTDA", learned)
}

func TestResolveSkipDoesNotMemoize(t *testing.T) {
	store := newStore(t)
	catalog := []string{"ACME LTDA", "ACME COMERCIO"}
	chooser := &skipChooser{}
	r := New(Config{}, store, catalog, chooser, quietLogger())

	out, err := r.Resolve("ACM LTD")
	require.NoError(t, err)
	assert.Equal(t, StatusUnresolved, out.Status)
	assert.Empty(t, out.Entity)
	assert.Equal(t, 0, store.Len())

	// A second attempt in the same run goes through review again
	out, err = r.Resolve("ACM LTD")
	require.NoError(t, err)
	assert.Equal(t, StatusUnresolved, out.Status)
	assert.Equal(t, 2, chooser.calls)
}

func TestResolveKeepsPickWhenAliasWriteFails(t *testing.T) {
	catalog := []string{"ACME LTDA", "ACME COMERCIO"}
	chooser := &pickChooser{rank: 1}
	r := New(Config{}, brokenStore{}, catalog, chooser, quietLogger())

	// The decision stands for this run even though it could not be persisted
	out, err := r.Resolve("ACM LTD")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "ACME LTDA", out.Entity)

	// Nothing was learned, so the same name goes through review again
	out, err = r.Resolve("ACM LTD")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, 2, chooser.calls)
}

func TestResolveAliasHitSkipsRanking(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Add("ACM LTD", "ACME LTDA"))

	r := New(Config{}, store, []string{"ACME LTDA"}, &skipChooser{}, quietLogger())

	rankCalls := 0
	r.rank = func(rawName string, catalog []string, limit int) ([]match.Candidate, error) {
		rankCalls++
		return match.Rank(rawName, catalog, limit)
	}

	out, err := r.Resolve("ACM LTD")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, out.Status)
	assert.Equal(t, "ACME LTDA", out.Entity)
	assert.Equal(t, 0, rankCalls, "alias hit must bypass the ranker")
}

func TestResolveEmptyCatalogIsConfigurationFault(t *testing.T) {
	r := New(Config{}, newStore(t), nil, &skipChooser{}, quietLogger())

	_, err := r.Resolve("anything")
	assert.ErrorIs(t, err, match.ErrEmptyCatalog)
}

func TestClassifyNeedsReviewCarriesCandidates(t *testing.T) {
	r := New(Config{}, newStore(t), []string{"ACME LTDA", "ACME COMERCIO"}, nil, quietLogger())

	out, err := r.Classify("ACM LTD")
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsReview, out.Status)
	assert.Len(t, out.Candidates, 2)
}

func TestResolveDeterministicAcrossCalls(t *testing.T) {
	store := newStore(t)
	r := New(Config{}, store, []string{"ACME LTDA"}, SilentChooser{}, quietLogger())

	first, err := r.Resolve("Acme Ltda")
	require.NoError(t, err)
	second, err := r.Resolve("Acme Ltda")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPromptChooser(t *testing.T) {
	candidates := []match.Candidate{
		{Score: 80, Name: "ACME LTDA"},
		{Score: 60, Name: "ACME COMERCIO"},
	}

	tests := []struct {
		name     string
		input    string
		want     string
		selected bool
	}{
		{"picks by rank", "2\n", "ACME COMERCIO", true},
		{"empty line is a skip", "\n", "", false},
		{"non-numeric is a skip", "abc\n", "", false},
		{"out of range is a skip", "99\n", "", false},
		{"zero is a skip", "0\n", "", false},
		{"eof is a skip", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			chooser := NewPromptChooser(strings.NewReader(tt.input), &out)

			got, ok := chooser.Choose("ACM LTD", candidates)
			assert.Equal(t, tt.selected, ok)
			assert.Equal(t, tt.want, got)

			menu := out.String()
			assert.Contains(t, menu, "1. ACME LTDA")
			assert.Contains(t, menu, "2. ACME COMERCIO")
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "resolved", StatusResolved.String())
	assert.Equal(t, "needs_review", StatusNeedsReview.String())
	assert.Equal(t, "unresolved", StatusUnresolved.String())
}

func TestNewAppliesDefaults(t *testing.T) {
	r := New(Config{}, newStore(t), []string{"A"}, nil, nil)
	assert.Equal(t, float64(DefaultAutoAcceptThreshold), r.threshold)
	assert.Equal(t, match.DefaultLimit, r.limit)
	require.NotNil(t, r.chooser)

	_, ok := r.chooser.Choose("x", nil)
	assert.False(t, ok, "nil chooser must behave like SilentChooser")
}

func TestResolveWrapsRankError(t *testing.T) {
	r := New(Config{}, newStore(t), []string{"A"}, nil, quietLogger())
	wantErr := errors.New("boom")
	r.rank = func(string, []string, int) ([]match.Candidate, error) {
		return nil, wantErr
	}

	_, err := r.Resolve("x")
	assert.ErrorIs(t, err, wantErr)
}
