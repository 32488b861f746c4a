// Package ahocorasick implements the multi-literal matcher at the core of
// the redaction pipeline.
//
// An Automaton recognizes every occurrence of every literal in a fixed set
// in one left-to-right pass over the input. Construction happens in three
// passes over a Builder's scratch trie (insertion, BFS failure-link
// computation, DFA completion); the result is an immutable, arena-backed
// Automaton in either of two representations:
//
//   - flat: a state_count x 256 table of next-state ids. Used for the
//     sentinel and hot automata, which are small enough to stay in L1.
//   - compressed: a bitmap-compressed sparse-row table for every
//     non-root state, plus one flat row for the root. Used for the full
//     automaton, which can hold every pattern's literal.
//
// Both representations expose the same scan API and are required to
// produce identical match sequences for identical input (see
// automaton_test.go's flat/compressed equivalence checks).
package ahocorasick

import (
	"errors"
	"math/bits"
)

// MaxStateID is the largest state id an Automaton can address: ids are
// stored as 16-bit integers, so the state count must stay at or below
// this bound.
const MaxStateID = 32767

// DefaultMaxStates is the trie-capacity ceiling used when a caller does
// not specify one explicitly.
const DefaultMaxStates = 8192

// ErrEmptyLiteral is returned by AddPattern for a zero-length literal.
var ErrEmptyLiteral = errors.New("ahocorasick: empty literal")

// ErrAlreadyBuilt is returned by AddPattern once Build has run.
var ErrAlreadyBuilt = errors.New("ahocorasick: add after build")

// ErrStateLimitExceeded is returned by Build (or AddPattern, once the trie
// has already hit the limit while inserting) when the trie would need
// more states than the configured maximum, or more than MaxStateID.
var ErrStateLimitExceeded = errors.New("ahocorasick: state limit exceeded")

// Match is one literal match reported by a scan.
type Match struct {
	// Position is the index of the last byte of the match (the AC "end"
	// position). Start = Position - Length + 1.
	Position  int
	PatternID uint32
	Length    uint16
}

// MatchCallback is invoked once per match during ScanAll. Returning false
// stops the scan early.
type MatchCallback func(Match) bool

// Automaton is an immutable, built Aho-Corasick matcher. The zero value is
// not usable; construct one via Builder.Build.
type Automaton struct {
	stateCount int
	flat       bool

	// Metadata, parallel by state id, valid for both representations.
	isFinal   []bool
	patternID []uint32
	depth     []uint16
	output    []int32

	// Flat representation: stateCount*256 row-major table.
	flatTable []uint16

	// Compressed representation.
	rootRow       [256]uint16
	defaultTarget []uint16  // indexed by state-1
	bitmap        [][32]byte // indexed by state-1
	rowOffset     []int32    // indexed by state-1
	packed        []uint16

	prefetchDistance int
}

// StateCount returns the number of states in the built automaton. Exposed
// for tests and internal debugging only — the public pattern.Set API does
// not surface automaton internals (see SPEC_FULL.md Open Question 1).
func (a *Automaton) StateCount() int { return a.stateCount }

// IsFlat reports whether this automaton uses the flat (vs. compressed)
// representation.
func (a *Automaton) IsFlat() bool { return a.flat }

// SetPrefetchHint records a prefetch-ahead distance (minimum 1). No scan
// method reads it: this is an advisory, correctness-neutral knob carried
// over from the original C implementation's __builtin_prefetch tuning; Go
// has no portable prefetch intrinsic, so this is a documented no-op
// retained for API parity (see SPEC_FULL.md §6).
func (a *Automaton) SetPrefetchHint(distance int) {
	if distance < 1 {
		distance = 1
	}
	a.prefetchDistance = distance
}

func (a *Automaton) delta(state int32, b byte) int32 {
	if a.flat {
		return int32(a.flatTable[int(state)*256+int(b)])
	}
	if state == 0 {
		return int32(a.rootRow[b])
	}
	idx := state - 1
	bm := &a.bitmap[idx]
	bit := byte(1) << (b & 7)
	if bm[b>>3]&bit == 0 {
		return int32(a.defaultTarget[idx])
	}
	rank := bitmapRank(bm, b)
	return int32(a.packed[int(a.rowOffset[idx])+rank])
}

// bitmapRank counts the set bits in bm at positions strictly before b.
func bitmapRank(bm *[32]byte, b byte) int {
	byteIdx := int(b >> 3)
	rank := 0
	for i := 0; i < byteIdx; i++ {
		rank += bits.OnesCount8(bm[i])
	}
	mask := byte(1<<(b&7)) - 1
	rank += bits.OnesCount8(bm[byteIdx] & mask)
	return rank
}

// ScanAll walks text and invokes cb for every match, in left-to-right,
// innermost-first order (the order output-link chains are walked).
// Scanning stops early if cb returns false.
func (a *Automaton) ScanAll(text []byte, cb MatchCallback) {
	if len(text) == 0 {
		return
	}
	var state int32
	for i, b := range text {
		state = a.step(state, b)
		ms := state
		for ms != 0 {
			if a.isFinal[ms] {
				m := Match{Position: i, PatternID: a.patternID[ms], Length: a.depth[ms]}
				if !cb(m) {
					return
				}
			}
			ms = a.output[ms]
		}
	}
}

// step advances state by one byte. Because Build guarantees delta is
// total, this never chases a failure link at scan time.
func (a *Automaton) step(state int32, b byte) int32 {
	return a.delta(state, b)
}

// HasMatch reports whether text contains any match at all (any-match).
func (a *Automaton) HasMatch(text []byte) bool {
	_, ok := ScanFirstNonAlloc(a, text)
	return ok
}

// ScanFirstNonAlloc returns the first match in text without the closure
// allocation ScanAll's callback style would need. HasMatch is built on it,
// and package redact's sentinel checks call HasMatch on the hot path.
func ScanFirstNonAlloc(a *Automaton, text []byte) (Match, bool) {
	if len(text) == 0 {
		return Match{}, false
	}
	var state int32
	for i, b := range text {
		state = a.delta(state, b)
		ms := state
		for ms != 0 {
			if a.isFinal[ms] {
				return Match{Position: i, PatternID: a.patternID[ms], Length: a.depth[ms]}, true
			}
			ms = a.output[ms]
		}
	}
	return Match{}, false
}

// ScanAllCapped runs ScanAll, appending matches to out, but stops once
// len(out) reaches cap(out), mirroring the original engine's MAX_PER_LINE
// bound. It returns the (possibly truncated) slice of matches.
func ScanAllCapped(a *Automaton, text []byte, out []Match) []Match {
	cap0 := cap(out)
	a.ScanAll(text, func(m Match) bool {
		if len(out) >= cap0 {
			return false
		}
		out = append(out, m)
		return len(out) < cap0
	})
	return out
}

// RootTriggerBytes returns, in ascending byte order, every byte b for
// which the root state has a non-root transition — i.e. every byte that
// begins some literal in the automaton. Used by package prefilter to
// derive the SIMD trigger set (spec §4.2).
func (a *Automaton) RootTriggerBytes() []byte {
	var out []byte
	for b := 0; b < 256; b++ {
		if a.delta(0, byte(b)) != 0 {
			out = append(out, byte(b))
		}
	}
	return out
}
