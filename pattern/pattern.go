// Package pattern implements the pattern record and pattern set: the
// immutable description of one sensitive-data pattern, and the build
// process that turns an ordered collection of them into the automata the
// redactor pipeline scans (sentinel, hot, and full Aho-Corasick tiers).
//
// Grounded in original_source/src/patterns.c; the compiled-regex handle
// is a *coregex.Regex rather than a pcre2_code, and AC construction is
// delegated to this module's own internal/ahocorasick package.
package pattern

import (
	"github.com/coregx/coregex"

	ac "github.com/plumbr-go/plumbr/internal/ahocorasick"

	upstreamac "github.com/coregx/ahocorasick"

	"github.com/plumbr-go/plumbr/arena"
)

// MaxPatterns bounds the number of patterns a Set may hold (PLUMBR_MAX_PATTERNS).
const MaxPatterns = 1024

// HotAutomatonBudget bounds the number of literals admitted to the hot
// automaton (PLUMBR_HOT_AC_SIZE).
const HotAutomatonBudget = 20

// SentinelAutomatonMaxStates bounds the sentinel automaton's trie; the
// built-in token list needs far fewer than this.
const SentinelAutomatonMaxStates = 512

// defaultReplacementPrefix/Suffix compose the "[REDACTED:<name>]" default
// token spliced in place of a match whose pattern specifies no explicit
// replacement.
const defaultReplacementPrefix = "[REDACTED:"
const defaultReplacementSuffix = "]"

// Pattern is the immutable description of one sensitive-data pattern.
// A Pattern is only ever produced by Set.Build and is safe to read
// concurrently from any number of goroutines thereafter.
type Pattern struct {
	ID          uint32
	Name        string
	Literal     []byte
	HasLiteral  bool
	Replacement []byte
	Regex       *coregex.Regex
}

// spec is the pre-build, mutable form of a pattern, accumulated by Add.
type spec struct {
	name        string
	literal     []byte
	hasLiteral  bool
	regexSrc    string
	replacement []byte
}

// Set is an ordered collection of patterns plus the automata built over
// them. The zero value is not usable; construct one with NewSet.
type Set struct {
	ar       *arena.Arena
	capacity int
	specs    []spec
	patterns []Pattern
	built    bool

	fullAC     *ac.Automaton
	hotAC      *ac.Automaton
	sentinelAC *ac.Automaton
}

// NewSet creates an empty Set backed by ar, able to hold up to capacity
// patterns (capacity <= 0 selects MaxPatterns).
func NewSet(ar *arena.Arena, capacity int) (*Set, error) {
	if ar == nil {
		return nil, errNilArena
	}
	if capacity <= 0 || capacity > MaxPatterns {
		capacity = MaxPatterns
	}
	return &Set{ar: ar, capacity: capacity}, nil
}

// Add registers one pattern. regexSrc must be non-empty; literal may be
// nil (no literal seed); when replacement is nil the default
// "[REDACTED:<name>]" is used. Add must be called before Build.
func (s *Set) Add(name string, literal []byte, regexSrc string, replacement []byte) error {
	if s.built {
		return ErrAlreadyBuilt
	}
	if name == "" {
		return ErrEmptyName
	}
	if regexSrc == "" {
		return ErrEmptyRegex
	}
	if len(s.specs) >= s.capacity {
		return ErrCapacityExceeded
	}

	sp := spec{name: name, regexSrc: regexSrc}
	if len(literal) > 0 {
		sp.literal = append([]byte(nil), literal...)
		sp.hasLiteral = true
	}
	if len(replacement) > 0 {
		sp.replacement = append([]byte(nil), replacement...)
	} else {
		sp.replacement = []byte(defaultReplacementPrefix + name + defaultReplacementSuffix)
	}
	s.specs = append(s.specs, sp)
	return nil
}

// Build compiles every pattern's regex, then constructs the full,
// bitmap-compressed Aho-Corasick automaton over every literal-bearing
// pattern, the flat hot automaton over the curated high-frequency name
// list, and the flat sentinel automaton over the fixed token list. Build
// may be called only once.
func (s *Set) Build() error {
	if s.built {
		return ErrBuiltTwice
	}

	s.patterns = make([]Pattern, len(s.specs))
	for i, sp := range s.specs {
		re, err := coregex.Compile(sp.regexSrc)
		if err != nil {
			return &RegexCompileError{Name: sp.name, Regex: sp.regexSrc, Err: err}
		}
		s.patterns[i] = Pattern{
			ID:          uint32(i + 1), // 0 is reserved for "no match" in ac.Automaton
			Name:        sp.name,
			Literal:     sp.literal,
			HasLiteral:  sp.hasLiteral,
			Replacement: sp.replacement,
			Regex:       re,
		}
	}

	if err := s.buildFullAC(); err != nil {
		return err
	}
	s.buildHotAC()   // advisory; failure degrades to full-AC-only, never an error
	s.buildSentinel() // advisory; failure skips the sentinel stage, never an error

	s.built = true
	return nil
}

func (s *Set) buildFullAC() error {
	b := ac.NewBuilder(0)
	anyLiteral := false
	for _, p := range s.patterns {
		if !p.HasLiteral {
			continue
		}
		anyLiteral = true
		if err := b.AddPattern(p.Literal, p.ID); err != nil {
			return err
		}
	}
	if !anyLiteral {
		s.fullAC = nil
		return nil
	}

	// Per SPEC_FULL.md §3: validate well-formedness of the literal set
	// through the upstream ahocorasick package before handing the same
	// literals to this module's own compressed automaton, which remains
	// the runtime matcher (see DESIGN.md for why).
	if err := validateLiteralsWithUpstream(s.patterns); err != nil {
		return err
	}

	built, err := b.Build(s.ar, ac.Options{ForceFlat: false})
	if err != nil {
		return err
	}
	s.fullAC = built
	return nil
}

// validateLiteralsWithUpstream feeds every literal through
// github.com/coregx/ahocorasick's own builder purely to surface
// malformed-literal errors (empty/duplicate handling) before this
// module's automaton is built; the resulting automaton is discarded.
func validateLiteralsWithUpstream(patterns []Pattern) error {
	ub := upstreamac.NewBuilder()
	any := false
	for _, p := range patterns {
		if !p.HasLiteral {
			continue
		}
		ub.AddPattern(p.Literal)
		any = true
	}
	if !any {
		return nil
	}
	_, err := ub.Build()
	return err
}

func (s *Set) buildHotAC() {
	byName := make(map[string]Pattern, len(s.patterns))
	for _, p := range s.patterns {
		if _, exists := byName[p.Name]; !exists {
			byName[p.Name] = p
		}
	}

	b := ac.NewBuilder(0)
	added := 0
	for _, name := range hotNames {
		if added >= HotAutomatonBudget {
			break
		}
		p, ok := byName[name]
		if !ok || !p.HasLiteral || len(p.Literal) == 0 {
			continue
		}
		if err := b.AddPattern(p.Literal, p.ID); err != nil {
			continue
		}
		added++
	}
	if added == 0 {
		s.hotAC = nil
		return
	}
	built, err := b.Build(s.ar, ac.Options{ForceFlat: true})
	if err != nil {
		s.hotAC = nil
		return
	}
	s.hotAC = built
}

func (s *Set) buildSentinel() {
	b := ac.NewBuilder(SentinelAutomatonMaxStates)
	for i, tok := range sentinelTokens {
		if err := b.AddPattern([]byte(tok), uint32(i)); err != nil {
			s.sentinelAC = nil
			return
		}
	}
	built, err := b.Build(s.ar, ac.Options{ForceFlat: true})
	if err != nil {
		s.sentinelAC = nil
		return
	}
	s.sentinelAC = built
}

// Count reports the number of patterns registered so far (before or
// after Build).
func (s *Set) Count() int { return len(s.specs) }

// Get returns the pattern with the given id (1-based, as assigned by
// Build), or false if id is out of range or the set has not been built.
func (s *Set) Get(id uint32) (*Pattern, bool) {
	if !s.built || id == 0 || int(id) > len(s.patterns) {
		return nil, false
	}
	return &s.patterns[id-1], true
}

// FullAC returns the full automaton over every literal-bearing pattern,
// or nil if the set holds no such pattern.
func (s *Set) FullAC() *ac.Automaton { return s.fullAC }

// HotAC returns the hot automaton, or nil if it was not built (empty
// curated list, or no curated name resolved to a literal-bearing
// pattern).
func (s *Set) HotAC() *ac.Automaton { return s.hotAC }

// SentinelAC returns the sentinel automaton, or nil if it failed to
// build (non-fatal: the pipeline skips the sentinel stage; lines without
// a trigger byte go to the full automaton, the rest to the hot and then
// the full automaton).
func (s *Set) SentinelAC() *ac.Automaton { return s.sentinelAC }

// Built reports whether Build has completed successfully.
func (s *Set) Built() bool { return s.built }
