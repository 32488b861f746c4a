package pattern

import "errors"

// errNilArena is returned by NewSet when given a nil arena.
var errNilArena = errors.New("pattern: nil arena")

// ErrEmptyRegex is returned by Add when regexSrc is empty.
var ErrEmptyRegex = errors.New("pattern: empty regex")

// ErrEmptyName is returned by Add when name is empty.
var ErrEmptyName = errors.New("pattern: empty name")

// ErrAlreadyBuilt is returned by Add once Build has run.
var ErrAlreadyBuilt = errors.New("pattern: add after build")

// ErrCapacityExceeded is returned by Add once the set holds MaxPatterns
// entries.
var ErrCapacityExceeded = errors.New("pattern: capacity exceeded")

// ErrBuiltTwice is returned by a second call to Build.
var ErrBuiltTwice = errors.New("pattern: already built")

// RegexCompileError wraps a regex compilation failure with the pattern
// name and source, mirroring the teacher's CompileError{Pattern, Err}
// idiom (nfa.CompileError).
type RegexCompileError struct {
	Name  string
	Regex string
	Err   error
}

func (e *RegexCompileError) Error() string {
	return "pattern: compile " + e.Name + " (" + e.Regex + "): " + e.Err.Error()
}

func (e *RegexCompileError) Unwrap() error { return e.Err }
