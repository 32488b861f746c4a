// Package prefilter implements the SIMD byte-class pre-filter: a cheap
// first check over a derived "trigger" byte set that lets the bulk of
// unremarkable lines bypass every later stage of the redaction pipeline.
//
// Grounded in original_source/src/amd/sse42_filter.c, whose
// sse42_has_triggers/sse42_build_triggers pair this package's
// HasTrigger/NewTriggerSet mirror. The actual vector scan is delegated to
// the teacher's own github.com/coregx/coregex/simd package rather than
// reimplemented with raw CPUID + intrinsics, per the Non-goal on hardware
// probing in SPEC_FULL.md §1.
package prefilter

import (
	"github.com/coregx/coregex/simd"

	ac "github.com/plumbr-go/plumbr/internal/ahocorasick"
)

// MaxTriggers is the cap on distinct trigger bytes (K in spec §4.2); the
// original's SSE4.2 implementation derives this from a 16-byte vector
// register width, which this module keeps as the budget even though the
// underlying scan is no longer register-width-bound.
const MaxTriggers = 16

// TriggerSet is a derived "does this line contain any byte that could
// possibly begin a match" filter, built once from a full automaton's root
// transitions and then queried per line ahead of every other stage.
type TriggerSet struct {
	table   [256]bool
	partial bool
	count   int
}

// NewTriggerSet derives a TriggerSet from full's root transitions: every
// byte b with a non-root δ(0, b) begins some literal, and is added to the
// set in ascending order until MaxTriggers is reached. If more than
// MaxTriggers such bytes exist, the set is marked Partial: lines whose
// only triggering byte lies outside the set pass through unfiltered, which
// is sound only because the sentinel stage (package pattern's
// SentinelAC) is a second, independent filter (spec §4.2).
func NewTriggerSet(full *ac.Automaton) *TriggerSet {
	ts := &TriggerSet{}
	if full == nil {
		return ts
	}
	for _, b := range full.RootTriggerBytes() {
		if ts.count >= MaxTriggers {
			ts.partial = true
			break
		}
		ts.table[b] = true
		ts.count++
	}
	return ts
}

// HasTrigger reports whether line contains at least one byte in the
// trigger set. When the set is not Partial, a false return guarantees
// that line contains no byte that begins any literal of the automaton the
// set was derived from; when it is Partial, a false return gives no such
// guarantee.
func (ts *TriggerSet) HasTrigger(line []byte) bool {
	if ts.count == 0 {
		// No trigger bytes were derived at all: either the automaton has
		// no literals (nothing to trigger, "no" is correct) or derivation
		// was never run. Either way there is nothing to scan for.
		return false
	}
	return simd.MemchrInTable(line, &ts.table) >= 0
}

// Partial reports whether the trigger set is an incomplete sample of the
// true trigger-byte set (more than MaxTriggers candidates existed at
// derivation time).
func (ts *TriggerSet) Partial() bool { return ts.partial }

// Count reports the number of distinct trigger bytes held.
func (ts *TriggerSet) Count() int { return ts.count }
