package patternfile

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	input := `# a comment
  # indented comment

aws_access_key|AKIA|AKIA[0-9A-Z]{16}|[REDACTED:aws]
derived_literal||foo{2,4}|
no_derivable_literal||.+|
`
	specs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("len(specs) = %d, want 3", len(specs))
	}

	if specs[0].Name != "aws_access_key" || string(specs[0].Literal) != "AKIA" ||
		specs[0].Regex != "AKIA[0-9A-Z]{16}" || string(specs[0].Replacement) != "[REDACTED:aws]" {
		t.Errorf("specs[0] = %+v", specs[0])
	}
	// No explicit literal field, but a usable one can be extracted from the
	// regex's prefix up to the first metacharacter.
	if specs[1].Name != "derived_literal" || string(specs[1].Literal) != "foo" ||
		specs[1].Regex != "foo{2,4}" || specs[1].Replacement != nil {
		t.Errorf("specs[1] = %+v", specs[1])
	}
	// No explicit literal, and none can be derived (the regex starts with
	// a metacharacter) — Literal stays nil.
	if specs[2].Name != "no_derivable_literal" || specs[2].Literal != nil ||
		specs[2].Regex != ".+" || specs[2].Replacement != nil {
		t.Errorf("specs[2] = %+v", specs[2])
	}
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := Parse(strings.NewReader("|lit|regex|repl\n"))
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("Parse: got %v, want *ParseError", err)
	}
}

func TestParseRejectsMissingRegex(t *testing.T) {
	_, err := Parse(strings.NewReader("name|lit\n"))
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("Parse: got %v, want *ParseError", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	specs, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(specs) != 0 {
		t.Errorf("len(specs) = %d, want 0", len(specs))
	}
}
