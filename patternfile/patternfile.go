// Package patternfile implements the pattern-file grammar the engine
// consumes: one pattern per line, `|`-separated fields in order
// name|literal|regex|replacement. Lines that are blank, or whose first
// non-whitespace byte is '#', are comments.
//
// This is the grammar contract only — no directory walking, no file
// globbing, no CLI wiring — per the Out-of-scope note in SPEC_FULL.md §1
// ("pattern-file loader's outer plumbing"); the engine's own tests
// exercise Parse directly against an io.Reader.
//
// Grounded in original_source/src/patterns.c's patterns_load_file, minus
// the filesystem-path handling (path traversal/absolute-path checks,
// directory walking) that belongs to the excluded outer plumbing.
package patternfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/plumbr-go/plumbr/pattern"
)

// Spec is one parsed pattern-file line, ready to hand to pattern.Set.Add.
type Spec struct {
	Name        string
	Literal     []byte
	Regex       string
	Replacement []byte
	Line        int // 1-based source line number, for error messages
}

// ParseError reports a malformed pattern-file line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("patternfile: line %d: %s", e.Line, e.Message)
}

// Parse reads every pattern line from r. Blank lines and lines whose
// first non-whitespace byte is '#' are skipped. A line with an empty name
// or an empty regex field (including a line with fewer than three fields,
// since regex is the third) is a ParseError, matching the original's
// "Invalid format (expected name|literal|regex|replacement)" rejection.
func Parse(r io.Reader) ([]Spec, error) {
	var specs []Spec
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}

		fields := strings.SplitN(line, "|", 4)
		name := strings.TrimSpace(firstField(fields, 0))
		if name == "" {
			return nil, &ParseError{Line: lineNo, Message: "invalid format (expected name|literal|regex|replacement)"}
		}
		regex := firstField(fields, 2)
		if regex == "" {
			return nil, &ParseError{Line: lineNo, Message: "invalid format (expected name|literal|regex|replacement)"}
		}

		sp := Spec{Name: name, Regex: regex, Line: lineNo}
		if lit := firstField(fields, 1); lit != "" {
			sp.Literal = []byte(lit)
		} else if extracted, ok := pattern.ExtractLiteral(regex); ok {
			// The line omitted an explicit literal; derive one from the
			// regex's own prefix so the pattern still gets an automaton
			// seed. A pattern with no literal never yields an automaton
			// candidate, so the redactor never runs its regex.
			sp.Literal = extracted
		}
		if repl := firstField(fields, 3); repl != "" {
			sp.Replacement = []byte(repl)
		}
		specs = append(specs, sp)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}

func firstField(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return fields[i]
}
