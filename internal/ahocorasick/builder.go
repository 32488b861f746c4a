package ahocorasick

import (
	"github.com/plumbr-go/plumbr/arena"
)

// Options controls how Builder.Build materializes the finished automaton.
type Options struct {
	// ForceFlat disables the bitmap-compressed sparse-row representation
	// and always materializes a full state_count*256 table. The sentinel
	// and hot automata (small, few dozen states) use this; the full
	// automaton (hundreds to low thousands of states, one column of
	// which is densely populated and the rest sparse) does not.
	ForceFlat bool
}

// buildState is scratch-trie storage used only during Build; it is
// discarded once the immutable Automaton has been materialized.
type buildState struct {
	trieChild [256]int32 // -1 if absent
	goto_     [256]int32 // -1 until completed
	fail      int32
	output    int32 // 0 = none
	isFinal   bool
	patternID uint32
	depth     uint16
}

func newBuildState() *buildState {
	s := &buildState{}
	for i := range s.trieChild {
		s.trieChild[i] = -1
		s.goto_[i] = -1
	}
	return s
}

// Builder accumulates literal patterns into a scratch trie and compiles
// them into an Automaton. A Builder is single-use: call Build once.
type Builder struct {
	states    []*buildState
	maxStates int
	built     bool
}

// NewBuilder creates a Builder whose trie will never grow past maxStates
// states. A value <= 0 selects DefaultMaxStates.
func NewBuilder(maxStates int) *Builder {
	if maxStates <= 0 {
		maxStates = DefaultMaxStates
	}
	if maxStates > MaxStateID {
		maxStates = MaxStateID
	}
	b := &Builder{maxStates: maxStates}
	b.states = append(b.states, newBuildState()) // state 0: root
	return b
}

// AddPattern inserts literal into the trie, marking its terminal state as
// final for patternID. Inserting the same literal twice with different
// pattern ids keeps the earlier association (first-inserted wins), which
// matches the original catalog's first-match-wins semantics for
// synonymous literals (spec §3).
func (b *Builder) AddPattern(literal []byte, patternID uint32) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	if len(literal) == 0 {
		return ErrEmptyLiteral
	}
	cur := int32(0)
	for _, c := range literal {
		next := b.states[cur].trieChild[c]
		if next == -1 {
			if len(b.states) >= b.maxStates {
				return ErrStateLimitExceeded
			}
			next = int32(len(b.states))
			ns := newBuildState()
			ns.depth = b.states[cur].depth + 1
			b.states = append(b.states, ns)
			b.states[cur].trieChild[c] = next
			b.states[cur].goto_[c] = next
		}
		cur = next
	}
	term := b.states[cur]
	if !term.isFinal {
		term.isFinal = true
		term.patternID = patternID
	}
	return nil
}

// Build computes failure links, completes the transition function into a
// total DFA, and materializes the result into ar. ar must outlive the
// returned Automaton.
func (b *Builder) Build(ar *arena.Arena, opts Options) (*Automaton, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	if len(b.states) > MaxStateID {
		return nil, ErrStateLimitExceeded
	}

	root := b.states[0]
	// Root: every absent transition goes back to root.
	for c := 0; c < 256; c++ {
		if root.goto_[c] == -1 {
			root.goto_[c] = 0
		}
	}

	// BFS over the trie, completing goto_/fail/output as we go. Every
	// state popped from the queue already has a fully total goto_ row
	// inherited either directly (root) or via its parent's fail state
	// (which, by BFS order, was completed in an earlier or equal round).
	queue := make([]int32, 0, len(b.states))
	for c := 0; c < 256; c++ {
		child := root.trieChild[c]
		if child != -1 {
			b.states[child].fail = 0
			queue = append(queue, child)
		}
	}

	for qi := 0; qi < len(queue); qi++ {
		r := queue[qi]
		rs := b.states[r]
		failRow := b.states[rs.fail]

		for c := 0; c < 256; c++ {
			child := rs.trieChild[c]
			if child != -1 {
				// Explicit trie edge: compute its failure link by
				// following r's failure chain, which is already total.
				rs.goto_[c] = child
				fs := failRow.goto_[c]
				b.states[child].fail = fs
				if b.states[fs].isFinal {
					b.states[child].output = fs
				} else {
					b.states[child].output = b.states[fs].output
				}
				queue = append(queue, child)
			} else {
				// No explicit edge: fall through to the failure state's
				// (already total) transition for this byte.
				rs.goto_[c] = failRow.goto_[c]
			}
		}
	}

	if opts.ForceFlat {
		return b.materializeFlat(ar)
	}
	return b.materializeCompressed(ar)
}

func (b *Builder) materializeFlat(ar *arena.Arena) (*Automaton, error) {
	n := len(b.states)
	table, err := arena.AllocSlice[uint16](ar, n*256)
	if err != nil {
		return nil, err
	}
	meta, err := b.allocMeta(ar, n)
	if err != nil {
		return nil, err
	}
	for s := 0; s < n; s++ {
		row := b.states[s]
		for c := 0; c < 256; c++ {
			table[s*256+c] = uint16(row.goto_[c])
		}
	}
	a := &Automaton{stateCount: n, flat: true, flatTable: table}
	meta.apply(a)
	return a, nil
}

// metaArrays holds the per-state metadata common to both representations.
type metaArrays struct {
	isFinal   []bool
	patternID []uint32
	depth     []uint16
	output    []int32
}

func (b *Builder) allocMeta(ar *arena.Arena, n int) (*metaArrays, error) {
	isFinal, err := arena.AllocSlice[bool](ar, n)
	if err != nil {
		return nil, err
	}
	patternID, err := arena.AllocSlice[uint32](ar, n)
	if err != nil {
		return nil, err
	}
	depth, err := arena.AllocSlice[uint16](ar, n)
	if err != nil {
		return nil, err
	}
	output, err := arena.AllocSlice[int32](ar, n)
	if err != nil {
		return nil, err
	}
	for s := 0; s < n; s++ {
		st := b.states[s]
		isFinal[s] = st.isFinal
		patternID[s] = st.patternID
		depth[s] = st.depth
		output[s] = st.output
	}
	return &metaArrays{isFinal: isFinal, patternID: patternID, depth: depth, output: output}, nil
}

func (m *metaArrays) apply(a *Automaton) {
	a.isFinal = m.isFinal
	a.patternID = m.patternID
	a.depth = m.depth
	a.output = m.output
}

// compressedDefaultSampleThreshold is the frequency column 0's value must
// exceed before it is trusted as the row's default target without a full
// majority scan (spec §4.1's compression heuristic).
const compressedDefaultSampleThreshold = 128

// materializeCompressed builds the bitmap-compressed sparse-row
// representation: the root keeps a flat 256-entry row (it is the densest
// state in any realistic pattern set and sits on every transition), while
// every other state stores a default target plus a 256-bit bitmap and a
// packed array of the entries that differ from the default.
func (b *Builder) materializeCompressed(ar *arena.Arena) (*Automaton, error) {
	n := len(b.states)
	meta, err := b.allocMeta(ar, n)
	if err != nil {
		return nil, err
	}

	var rootRow [256]uint16
	for c := 0; c < 256; c++ {
		rootRow[c] = uint16(b.states[0].goto_[c])
	}

	nonRoot := n - 1
	defaultTarget, err := arena.AllocSlice[uint16](ar, nonRoot)
	if err != nil {
		return nil, err
	}
	bitmap, err := arena.AllocSlice[[32]byte](ar, nonRoot)
	if err != nil {
		return nil, err
	}
	rowOffset, err := arena.AllocSlice[int32](ar, nonRoot)
	if err != nil {
		return nil, err
	}

	// First pass: pick each row's default target and count packed entries.
	totalPacked := 0
	defaults := make([]uint16, nonRoot)
	for s := 1; s < n; s++ {
		row := &b.states[s].goto_
		def := pickDefaultTarget(row)
		defaults[s-1] = def
		for c := 0; c < 256; c++ {
			if uint16(row[c]) != def {
				totalPacked++
			}
		}
	}

	packed, err := arena.AllocSlice[uint16](ar, totalPacked)
	if err != nil {
		return nil, err
	}

	offset := int32(0)
	for s := 1; s < n; s++ {
		idx := s - 1
		row := &b.states[s].goto_
		def := defaults[idx]
		defaultTarget[idx] = def
		rowOffset[idx] = offset
		var bm [32]byte
		for c := 0; c < 256; c++ {
			if uint16(row[c]) != def {
				bm[c>>3] |= 1 << (uint(c) & 7)
				packed[offset] = uint16(row[c])
				offset++
			}
		}
		bitmap[idx] = bm
	}

	a := &Automaton{
		stateCount:    n,
		flat:          false,
		rootRow:       rootRow,
		defaultTarget: defaultTarget,
		bitmap:        bitmap,
		rowOffset:     rowOffset,
		packed:        packed,
	}
	meta.apply(a)
	return a, nil
}

// pickDefaultTarget chooses the value that appears most often in row,
// sampling column 0 first since in practice it is either the true
// majority (most bytes fall through to the same place, usually root) or
// close enough that the cheap sample pays for itself. Only when the
// sampled value is rare (<=128 occurrences, i.e. it could lose to some
// other value) do we pay for a full frequency scan.
func pickDefaultTarget(row *[256]int32) uint16 {
	sample := uint16(row[0])
	count := 0
	for c := 0; c < 256; c++ {
		if uint16(row[c]) == sample {
			count++
		}
	}
	if count > compressedDefaultSampleThreshold {
		return sample
	}

	freq := make(map[uint16]int, 16)
	best := sample
	bestCount := 0
	for c := 0; c < 256; c++ {
		v := uint16(row[c])
		freq[v]++
		if freq[v] > bestCount {
			bestCount = freq[v]
			best = v
		}
	}
	return best
}
