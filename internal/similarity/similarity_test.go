package similarity

import "testing"

func TestScoreReflexive(t *testing.T) {
	for _, s := range []string{"acme", "sao joao carvoes", "a", ""} {
		if got := Score(s, s); got != 100 {
			t.Errorf("Score(%q, %q): expected 100 got %f", s, s, got)
		}
	}
}

func TestScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"acme", "acm"},
		{"santa fe", "santa cruz"},
		{"carvoaria uniao", "uniao carvoaria"},
		{"", "acme"},
	}
	for _, p := range pairs {
		if ab, ba := Score(p[0], p[1]), Score(p[1], p[0]); ab != ba {
			t.Errorf("Score(%q, %q)=%f but Score(%q, %q)=%f", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestScoreEmpty(t *testing.T) {
	if got := Score("", ""); got != 100 {
		t.Errorf("Score of two empty strings: expected 100 got %f", got)
	}
	if got := Score("acme", ""); got != 0 {
		t.Errorf("Score against empty string: expected 0 got %f", got)
	}
}

func TestScoreKnownDistance(t *testing.T) {
	// One deletion over four characters: 1 - 1/4 = 0.75
	if got := Score("acme", "acm"); got != 75 {
		t.Errorf("Score(acme, acm): expected 75 got %f", got)
	}
}

func TestScoreBounds(t *testing.T) {
	pairs := [][2]string{
		{"completely different", "xyz"},
		{"a", "b"},
		{"abc", "abc"},
	}
	for _, p := range pairs {
		got := Score(p[0], p[1])
		if got < 0 || got > 100 {
			t.Errorf("Score(%q, %q)=%f out of [0,100]", p[0], p[1], got)
		}
	}
}
