package ahocorasick

import (
	"math/rand"
	"testing"

	"github.com/plumbr-go/plumbr/arena"
)

func buildBoth(t *testing.T, literals [][]byte) (*Automaton, *Automaton) {
	t.Helper()
	buildOne := func(forceFlat bool) *Automaton {
		ar, err := arena.New(1 << 20)
		if err != nil {
			t.Fatalf("arena.New: %v", err)
		}
		t.Cleanup(func() { ar.Close() })
		b := NewBuilder(0)
		for i, lit := range literals {
			if err := b.AddPattern(lit, uint32(i+1)); err != nil {
				t.Fatalf("AddPattern(%q): %v", lit, err)
			}
		}
		a, err := b.Build(ar, Options{ForceFlat: forceFlat})
		if err != nil {
			t.Fatalf("Build(forceFlat=%v): %v", forceFlat, err)
		}
		return a
	}
	return buildOne(true), buildOne(false)
}

func collect(a *Automaton, text []byte) []Match {
	var out []Match
	a.ScanAll(text, func(m Match) bool {
		out = append(out, m)
		return true
	})
	return out
}

func TestScanFindsAllOccurrences(t *testing.T) {
	literals := [][]byte{[]byte("he"), []byte("she"), []byte("his"), []byte("hers")}
	flat, compressed := buildBoth(t, literals)

	text := []byte("ushers")
	wantPatternIDs := map[int]bool{1: true, 2: true, 4: true} // he, she, hers all end inside "ushers"

	for _, a := range []*Automaton{flat, compressed} {
		matches := collect(a, text)
		if len(matches) == 0 {
			t.Fatalf("no matches found in %q", text)
		}
		seen := map[int]bool{}
		for _, m := range matches {
			seen[int(m.PatternID)] = true
			if !wantPatternIDs[int(m.PatternID)] {
				t.Errorf("unexpected pattern id %d in match %+v", m.PatternID, m)
			}
		}
		for id := range wantPatternIDs {
			if !seen[id] {
				t.Errorf("pattern id %d not found in %q", id, text)
			}
		}
	}
}

// TestDFAIsTotal checks that every (state, byte) pair has a valid,
// in-bounds transition after Build — the automaton never needs to chase a
// failure link at scan time.
func TestDFAIsTotal(t *testing.T) {
	literals := [][]byte{[]byte("password"), []byte("secret"), []byte("token"), []byte("AKIA")}
	flat, compressed := buildBoth(t, literals)

	for name, a := range map[string]*Automaton{"flat": flat, "compressed": compressed} {
		for s := 0; s < a.stateCount; s++ {
			for b := 0; b < 256; b++ {
				next := a.delta(int32(s), byte(b))
				if next < 0 || int(next) >= a.stateCount {
					t.Fatalf("%s: delta(%d, %d) = %d out of range [0,%d)", name, s, b, next, a.stateCount)
				}
			}
		}
	}
}

// TestFlatCompressedEquivalence feeds random text through both
// representations of the same pattern set and requires identical match
// sequences.
func TestFlatCompressedEquivalence(t *testing.T) {
	literals := [][]byte{
		[]byte("password"), []byte("secret"), []byte("api_key"), []byte("token"),
		[]byte("AKIA"), []byte("ghp_"), []byte("Bearer"), []byte("-----BEGIN"),
	}
	flat, compressed := buildBoth(t, literals)

	rng := rand.New(rand.NewSource(1))
	alphabet := []byte("abcdefghijklmnopqrstuvwxyz_-: ")
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(64)
		text := make([]byte, n)
		for i := range text {
			text[i] = alphabet[rng.Intn(len(alphabet))]
		}
		// Occasionally splice in a literal to exercise real matches.
		if n > 8 && trial%3 == 0 {
			lit := literals[rng.Intn(len(literals))]
			at := rng.Intn(n - len(lit) + 1)
			copy(text[at:], lit)
		}

		got := collect(flat, text)
		want := collect(compressed, text)
		if len(got) != len(want) {
			t.Fatalf("trial %d: text %q: flat found %d matches, compressed found %d", trial, text, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("trial %d: text %q: match %d differs: flat=%+v compressed=%+v", trial, text, i, got[i], want[i])
			}
		}
	}
}

func TestAddPatternRejectsEmptyLiteral(t *testing.T) {
	b := NewBuilder(0)
	if err := b.AddPattern(nil, 1); err != ErrEmptyLiteral {
		t.Fatalf("AddPattern(nil): got %v, want ErrEmptyLiteral", err)
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	ar, err := arena.New(1 << 16)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	defer ar.Close()

	b := NewBuilder(0)
	if err := b.AddPattern([]byte("x"), 1); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if _, err := b.Build(ar, Options{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := b.AddPattern([]byte("y"), 2); err != ErrAlreadyBuilt {
		t.Fatalf("AddPattern after Build: got %v, want ErrAlreadyBuilt", err)
	}
	if _, err := b.Build(ar, Options{}); err != ErrAlreadyBuilt {
		t.Fatalf("second Build: got %v, want ErrAlreadyBuilt", err)
	}
}

func TestStateLimitExceeded(t *testing.T) {
	ar, err := arena.New(1 << 16)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	defer ar.Close()

	b := NewBuilder(4) // root + 3 states max
	if err := b.AddPattern([]byte("abcd"), 1); err != ErrStateLimitExceeded {
		t.Fatalf("AddPattern: got %v, want ErrStateLimitExceeded", err)
	}
}

func TestRootTriggerBytes(t *testing.T) {
	literals := [][]byte{[]byte("password"), []byte("secret"), []byte("password")}
	_, compressed := buildBoth(t, literals)

	triggers := compressed.RootTriggerBytes()
	seen := map[byte]bool{}
	for _, b := range triggers {
		seen[b] = true
	}
	if !seen['p'] || !seen['s'] {
		t.Fatalf("RootTriggerBytes() = %v, want to include 'p' and 's'", triggers)
	}
}

func TestScanFirstNonAllocAndHasMatch(t *testing.T) {
	literals := [][]byte{[]byte("ssn"), []byte("email")}
	flat, compressed := buildBoth(t, literals)

	for _, a := range []*Automaton{flat, compressed} {
		if a.HasMatch([]byte("no secrets here")) {
			t.Errorf("HasMatch: unexpected match in text with no literal")
		}
		if !a.HasMatch([]byte("your ssn is on file")) {
			t.Errorf("HasMatch: expected match for 'ssn'")
		}
		m, ok := ScanFirstNonAlloc(a, []byte("email then ssn"))
		if !ok {
			t.Fatalf("ScanFirstNonAlloc: expected a match")
		}
		if m.PatternID != 2 {
			t.Errorf("ScanFirstNonAlloc: got pattern id %d, want 2 (email)", m.PatternID)
		}
	}
}
