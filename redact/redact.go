// Package redact implements the per-worker redactor: the pipeline that
// chains the SIMD trigger pre-filter, sentinel automaton, hot automaton,
// full automaton, regex verification, and rewrite into the output buffer.
//
// Grounded in original_source/src/redactor.c (verify_ac_matches,
// redactor_process, redactor_apply); regex verification uses
// github.com/coregx/coregex in place of PCRE2.
package redact

import (
	"github.com/coregx/coregex"

	"github.com/plumbr-go/plumbr/arena"
	ac "github.com/plumbr-go/plumbr/internal/ahocorasick"
	"github.com/plumbr-go/plumbr/pattern"
	"github.com/plumbr-go/plumbr/prefilter"
)

// MaxPerLine bounds both the number of AC candidates consulted and the
// number of verified matches rewritten, per line.
const MaxPerLine = 64

// AnchorBackoff is subtracted (along with the candidate's match length)
// from a candidate's end position to compute the tentative regex anchor,
// giving the host regex room to find a longer match that ends at the
// same position the literal scan found.
const AnchorBackoff = 10

// Match is one verified, rewrite-ready match within a line.
type Match struct {
	Start     int
	End       int
	PatternID uint32
}

// Stats is a point-in-time snapshot of a Redactor's counters. A Redactor
// is single-threaded (spec §5: "used by at most one thread at a time"),
// so no synchronization is needed inside Stats/ResetStats themselves;
// the parallel executor aggregates per-worker snapshots only between
// batches.
type Stats struct {
	LinesScanned  uint64
	LinesModified uint64

	// PatternsMatched counts verified matches across all processed lines.
	PatternsMatched uint64

	// Rejections by the stage that first ruled a line out.
	FilteredByTrigger    uint64
	FilteredBySentinel   uint64
	FilteredByColdEmpty  uint64
	FilteredByUnverified uint64
}

// Redactor is a per-worker object: it holds scratch buffers and a
// read-only reference to a built pattern.Set. A Redactor must not be used
// by more than one goroutine concurrently.
type Redactor struct {
	patterns *pattern.Set
	triggers *prefilter.TriggerSet

	outputCapacity int
	outBuf         []byte

	candidateBuf []ac.Match
	verifiedBuf  []Match
	mergedBuf    []Match

	stats Stats
}

// NewRedactor creates a Redactor over patterns (which must already be
// built), drawing its scratch and output buffers from ar. outputCapacity
// also doubles as the maximum accepted input line length (the only size
// for which the worst case — an unmodified copy-through — is guaranteed
// to fit).
func NewRedactor(ar *arena.Arena, patterns *pattern.Set, outputCapacity int) (*Redactor, error) {
	if patterns == nil || !patterns.Built() {
		return nil, ErrNilPatternSet
	}
	if outputCapacity <= 0 {
		outputCapacity = 4096
	}

	outBuf, err := arena.AllocSlice[byte](ar, outputCapacity)
	if err != nil {
		return nil, err
	}
	candidateBuf, err := arena.AllocSlice[ac.Match](ar, MaxPerLine)
	if err != nil {
		return nil, err
	}
	verifiedBuf, err := arena.AllocSlice[Match](ar, MaxPerLine)
	if err != nil {
		return nil, err
	}
	mergedBuf, err := arena.AllocSlice[Match](ar, MaxPerLine)
	if err != nil {
		return nil, err
	}

	return &Redactor{
		patterns:       patterns,
		triggers:       prefilter.NewTriggerSet(patterns.FullAC()),
		outputCapacity: outputCapacity,
		outBuf:         outBuf,
		candidateBuf:   candidateBuf[:0],
		verifiedBuf:    verifiedBuf[:0],
		mergedBuf:      mergedBuf[:0],
	}, nil
}

// Process runs the full pipeline over line and returns the redacted
// output. When no verified match is found, the returned slice aliases
// line itself (no copy is performed, per spec's "unmodified-line
// optimisation"). The returned slice is valid until the next call to
// Process on the same Redactor.
func (r *Redactor) Process(line []byte) ([]byte, error) {
	if len(line) == 0 {
		return line[:0], nil
	}
	if len(line) > r.outputCapacity {
		return nil, ErrLineTooLarge
	}
	r.stats.LinesScanned++

	sentinelAC := r.patterns.SentinelAC()
	hotAC := r.patterns.HotAC()

	// Stage 0: SIMD trigger pre-filter.
	if !r.triggers.HasTrigger(line) {
		if sentinelAC != nil && !sentinelAC.HasMatch(line) {
			r.stats.FilteredByTrigger++
			return line, nil
		}
		// Either the sentinel isn't available (no safety net — don't
		// risk a false elimination) or it caught what the partial
		// trigger set missed (spec §4.2). Either way go straight to the
		// cold automaton, skipping stage 1.
		return r.coldPath(line)
	}

	// Stage 1: sentinel any-match.
	if sentinelAC != nil && !sentinelAC.HasMatch(line) {
		r.stats.FilteredBySentinel++
		return line, nil
	}

	// Stage 2: hot scan + verify.
	if hotAC != nil {
		r.candidateBuf = ac.ScanAllCapped(hotAC, line, r.candidateBuf[:0])
		r.verify(line, r.candidateBuf)
		if len(r.verifiedBuf) > 0 {
			return r.rewrite(line)
		}
	}

	return r.coldPath(line)
}

func (r *Redactor) coldPath(line []byte) ([]byte, error) {
	fullAC := r.patterns.FullAC()
	if fullAC == nil {
		r.stats.FilteredByColdEmpty++
		return line, nil
	}
	r.candidateBuf = ac.ScanAllCapped(fullAC, line, r.candidateBuf[:0])
	if len(r.candidateBuf) == 0 {
		r.stats.FilteredByColdEmpty++
		return line, nil
	}
	r.verify(line, r.candidateBuf)
	if len(r.verifiedBuf) == 0 {
		r.stats.FilteredByUnverified++
		return line, nil
	}
	return r.rewrite(line)
}

// verify runs the pattern's regex, anchored near each candidate, and
// appends confirmed matches to r.verifiedBuf (reset by the caller first).
func (r *Redactor) verify(line []byte, candidates []ac.Match) {
	r.verifiedBuf = r.verifiedBuf[:0]
	for _, cand := range candidates {
		if len(r.verifiedBuf) >= MaxPerLine {
			break
		}
		p, ok := r.patterns.Get(cand.PatternID)
		if !ok {
			continue
		}
		anchor := int(cand.Position) - int(cand.Length) - AnchorBackoff
		if anchor < 0 {
			anchor = 0
		}
		loc := verifyRegex(p.Regex, line[anchor:])
		if loc == nil {
			continue
		}
		start := anchor + loc[0]
		end := anchor + loc[1]
		if end > len(line) {
			continue
		}
		r.verifiedBuf = append(r.verifiedBuf, Match{Start: start, End: end, PatternID: cand.PatternID})
		r.stats.PatternsMatched++
	}
}

// verifyRegex runs re against sub, bounded by coregex's own worst-case
// linear-time guarantee (see DESIGN.md for why this module carries no
// separate step/recursion limit knob).
func verifyRegex(re *coregex.Regex, sub []byte) []int {
	return re.FindIndex(sub)
}

// rewrite sorts r.verifiedBuf, merges overlaps, and copies the result
// into r.outBuf, failing closed on truncation.
func (r *Redactor) rewrite(line []byte) ([]byte, error) {
	insertionSortByStart(r.verifiedBuf)

	r.mergedBuf = r.mergedBuf[:0]
	for _, m := range r.verifiedBuf {
		if n := len(r.mergedBuf); n > 0 && m.Start < r.mergedBuf[n-1].End {
			if m.End > r.mergedBuf[n-1].End {
				r.mergedBuf[n-1].End = m.End
			}
			continue // earlier match's pattern_id (hence replacement) wins
		}
		r.mergedBuf = append(r.mergedBuf, m)
	}

	out := r.outBuf[:0]
	inPos := 0
	truncated := false
	wanted := 0

	appendBytes := func(b []byte) {
		wanted += len(b)
		if truncated {
			return
		}
		room := cap(out) - len(out)
		if room >= len(b) {
			out = append(out, b...)
			return
		}
		out = append(out, b[:room]...)
		truncated = true
	}

	for _, m := range r.mergedBuf {
		appendBytes(line[inPos:m.Start])
		p, ok := r.patterns.Get(m.PatternID)
		if ok {
			appendBytes(p.Replacement)
		}
		inPos = m.End
	}
	appendBytes(line[inPos:])

	r.stats.LinesModified++
	if truncated {
		return out, &TruncatedError{Written: len(out), Wanted: wanted}
	}
	return out, nil
}

// insertionSortByStart sorts buf by ascending Start in place. verifiedBuf
// holds at most MaxPerLine (64) entries, where insertion sort's O(n^2)
// worst case is cheaper than the boxing and reflect.Swapper sort.Slice
// pays on every call, and it allocates nothing — the rewrite path must
// stay off the Go heap like the rest of the per-line pipeline.
func insertionSortByStart(buf []Match) {
	for i := 1; i < len(buf); i++ {
		for j := i; j > 0 && buf[j-1].Start > buf[j].Start; j-- {
			buf[j-1], buf[j] = buf[j], buf[j-1]
		}
	}
}

// Stats returns a snapshot of this Redactor's counters.
func (r *Redactor) Stats() Stats { return r.stats }

// ResetStats zeroes every counter.
func (r *Redactor) ResetStats() { r.stats = Stats{} }
