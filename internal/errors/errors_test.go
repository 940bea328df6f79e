package errors

import (
	"strings"
	"testing"

	"github.com/mm-go/verifier/internal/lexer"
)

func TestDiagnostic_FormatWithoutPosition(t *testing.T) {
	d := NewDiagnostic(ProofShape, "th1", "proves wrong statement")
	got := d.Format(false)
	if !strings.Contains(got, "proof-shape") || !strings.Contains(got, "th1") {
		t.Errorf("Format() = %q, missing kind or label", got)
	}
}

func TestDiagnostic_FormatWithSourceContext(t *testing.T) {
	d := &Diagnostic{
		Kind:    Syntactic,
		Label:   "wp",
		Message: "unterminated comment",
		Source:  "$c wff $.\n$( oops",
		File:    "db.mm",
		Pos:     lexer.Position{File: "db.mm", Line: 2, Column: 1},
	}
	got := d.Format(false)
	if !strings.Contains(got, "db.mm:2:1") {
		t.Errorf("Format() missing position header: %q", got)
	}
	if !strings.Contains(got, "$( oops") {
		t.Errorf("Format() missing source line: %q", got)
	}
	if !strings.Contains(got, "^") {
		t.Errorf("Format() missing caret: %q", got)
	}
}

func TestDiagnostic_DefinitionIncludesRule(t *testing.T) {
	d := &Diagnostic{Kind: Definition, Label: "df-and", Message: "circular", Rule: "non-circularity"}
	got := d.Format(false)
	if !strings.Contains(got, "definition/non-circularity") {
		t.Errorf("Format() = %q, want rule code in header", got)
	}
}

func TestFormatErrors_Multiple(t *testing.T) {
	a := NewDiagnostic(Declarative, "x", "name already declared")
	b := NewDiagnostic(Scope, "y", "unmatched $}")
	got := FormatErrors([]*Diagnostic{a, b}, false)
	if !strings.Contains(got, "2 error(s)") {
		t.Errorf("FormatErrors() = %q, want count header", got)
	}
}
