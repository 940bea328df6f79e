// Package errors formats verifier diagnostics with source context,
// line/column information, and a caret pointing at the failing token,
// grouped by the error kinds of spec.md §7.
package errors

import (
	"fmt"
	"strings"

	"github.com/mm-go/verifier/internal/lexer"
)

// Kind classifies a Diagnostic by the taxonomy of spec.md §7.
type Kind int

const (
	Syntactic Kind = iota
	Declarative
	Scope
	Unification
	DisjointVariable
	ProofShape
	Definition
	Propositional
)

func (k Kind) String() string {
	switch k {
	case Syntactic:
		return "syntactic"
	case Declarative:
		return "declarative"
	case Scope:
		return "scope"
	case Unification:
		return "unification"
	case DisjointVariable:
		return "disjoint-variable"
	case ProofShape:
		return "proof-shape"
	case Definition:
		return "definition"
	case Propositional:
		return "propositional"
	default:
		return "unknown"
	}
}

// Diagnostic is a single verification error: the statement it occurred
// in, the failing sub-condition, its kind, and (if known) a source
// position and one of the six definition rule codes.
type Diagnostic struct {
	Kind    Kind
	Label   string
	Message string
	Source  string
	File    string
	Pos     lexer.Position

	// Rule is set only for Kind == Definition; it names which of the
	// six soundness rules (spec.md §4.9) failed.
	Rule string
}

// NewDiagnostic constructs a Diagnostic with no source-position context;
// callers that have a lexer.Position should set Pos directly.
func NewDiagnostic(kind Kind, label, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Label: label, Message: message}
}

// Error implements the error interface.
func (e *Diagnostic) Error() string { return e.Format(false) }

// Format renders the diagnostic with source context, optionally using
// ANSI colour for terminal output.
func (e *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	header := fmt.Sprintf("[%s] statement %q: %s", e.Kind, e.Label, e.Message)
	if e.Rule != "" {
		header = fmt.Sprintf("[%s/%s] statement %q: %s", e.Kind, e.Rule, e.Label, e.Message)
	}

	if e.Pos.Line == 0 {
		sb.WriteString(header)
		return sb.String()
	}

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s\n  at %s:%d:%d\n", header, e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s\n  at line %d:%d\n", header, e.Pos.Line, e.Pos.Column))
	}

	sourceLine := e.sourceLine(e.Pos.Line)
	if sourceLine != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}

	return sb.String()
}

func (e *Diagnostic) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors formats any number of diagnostics: nothing for none, the
// single Format rendering for one, and a numbered list for more. The
// verifier pipeline itself does not call it; verification stops at the
// first fatal diagnostic (spec.md §7).
func FormatErrors(diags []*Diagnostic, color bool) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format(color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("verification failed with %d error(s):\n\n", len(diags)))
	for i, d := range diags {
		sb.WriteString(fmt.Sprintf("[%d of %d]\n", i+1, len(diags)))
		sb.WriteString(d.Format(color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
