package prefilter

import (
	"testing"

	"github.com/plumbr-go/plumbr/arena"
	ac "github.com/plumbr-go/plumbr/internal/ahocorasick"
)

func buildAutomaton(t *testing.T, literals ...string) *ac.Automaton {
	t.Helper()
	ar, err := arena.New(1 << 20)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	t.Cleanup(func() { ar.Close() })
	b := ac.NewBuilder(0)
	for i, lit := range literals {
		if err := b.AddPattern([]byte(lit), uint32(i+1)); err != nil {
			t.Fatalf("AddPattern(%q): %v", lit, err)
		}
	}
	a, err := b.Build(ar, ac.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

func TestTriggerSetRejectsLinesWithoutAnyTriggerByte(t *testing.T) {
	full := buildAutomaton(t, "password", "AKIA", "secret")
	ts := NewTriggerSet(full)

	if ts.HasTrigger([]byte("nothing odd here today")) {
		t.Errorf("HasTrigger: unexpected true for a line with none of p/A/s")
	}
	if !ts.HasTrigger([]byte("has a password in it")) {
		t.Errorf("HasTrigger: expected true for a line containing 'password'")
	}
}

func TestTriggerSetNilAutomaton(t *testing.T) {
	ts := NewTriggerSet(nil)
	if ts.HasTrigger([]byte("anything")) {
		t.Errorf("HasTrigger on nil-derived set: expected false")
	}
	if ts.Partial() {
		t.Errorf("Partial() on nil-derived set: expected false")
	}
}

func TestTriggerSetCapsAtMaxTriggers(t *testing.T) {
	literals := make([]string, 0, 32)
	for c := byte('a'); c < byte('a')+32; c++ {
		literals = append(literals, string(c)+"xyz")
	}
	full := buildAutomaton(t, literals...)
	ts := NewTriggerSet(full)

	if ts.Count() > MaxTriggers {
		t.Fatalf("Count() = %d, want <= %d", ts.Count(), MaxTriggers)
	}
	if !ts.Partial() {
		t.Errorf("Partial(): expected true when more than %d distinct first bytes exist", MaxTriggers)
	}
}
