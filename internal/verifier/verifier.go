// Package verifier drives the full pipeline over a Metamath source
// file: lexing, statement reading, syntax parsing, definition checking
// and (optionally) propositional satisfiability checking (spec.md §2
// "Control flow").
package verifier

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/mm-go/verifier/internal/comment"
	"github.com/mm-go/verifier/internal/definition"
	"github.com/mm-go/verifier/internal/errors"
	"github.com/mm-go/verifier/internal/lexer"
	"github.com/mm-go/verifier/internal/mm"
	"github.com/mm-go/verifier/internal/propctor"
	"github.com/mm-go/verifier/internal/reader"
	"github.com/mm-go/verifier/internal/syntax"
)

// Progress reports pipeline advancement as a phase name and a fraction
// in [0, 1], grounded on original_source/util/progress.h's Progress
// class. A nil Progress is never called.
type Progress func(phase string, fraction float64)

// Result is everything produced by one call to Verify.
type Result struct {
	DB *mm.Database

	// Warnings carries non-fatal reader notices (incomplete proofs).
	Warnings []reader.Warning

	// CommentWarnings carries malformed or conflicting $j commands.
	CommentWarnings []string

	// Definitions holds every df- candidate that passed all six rules.
	Definitions []*definition.Result

	// DefinitionFailures holds a diagnostic for every candidate that
	// failed a rule; the candidate is simply not registered as a
	// definition (spec.md §4.9: "the definition is rejected but other
	// definitions continue").
	DefinitionFailures []*errors.Diagnostic

	// Propctors is the propositional-connective table built from the
	// primitives plus every accepted definition.
	Propctors *propctor.Table

	// PropctorFailures holds one error per definition the propositional
	// layer could not evaluate into a truth table.
	PropctorFailures []error

	// PropositionalFailures holds one diagnostic per assertion the
	// propositional layer marked Propositional whose conclusion turned
	// out to be counter-satisfiable against its hypotheses, populated
	// only when checking was requested (spec.md §7: "SAT
	// counter-examples are reported as failures only when checking is
	// explicitly enabled").
	PropositionalFailures []*errors.Diagnostic
}

// OK reports whether the verified database has no outstanding
// propositional failures. Rejected definitions and incomplete-proof
// warnings do not affect this: both are explicitly non-fatal per
// spec.md §7.
func (r *Result) OK() bool { return len(r.PropositionalFailures) == 0 }

type config struct {
	progress           Progress
	sectionPrefix      string
	checkPropositional bool
}

// Option configures a Verify call.
type Option func(*config)

// WithProgress registers a callback invoked as each phase starts.
func WithProgress(p Progress) Option {
	return func(c *config) { c.progress = p }
}

// WithSection stops statement reading once a section-heading comment is
// encountered: one whose text begins with "$t" (a typesetting block,
// which in practice precedes major sections) or with prefix, matching
// original_source/database.h's Database::read(..., upto).
func WithSection(prefix string) Option {
	return func(c *config) { c.sectionPrefix = prefix }
}

// WithPropositionalCheck enables the SAT-validity check of spec.md
// §4.10 against every assertion the propositional layer recognises.
func WithPropositionalCheck(enabled bool) Option {
	return func(c *config) { c.checkPropositional = enabled }
}

func (c *config) report(phase string, fraction float64) {
	if c.progress != nil {
		c.progress(phase, fraction)
	}
}

// Verify reads rootPath out of fsys and runs it through the full
// pipeline. A tokenizing failure (or a failure to load the source text)
// returns a nil Result. A failure while reading statements or parsing
// syntax trees returns the partially built Result, whose DB holds what
// was read before the failure; CommentWarnings is filled only once
// statement reading has succeeded. The returned error is the single
// diagnostic that aborted the run, if any (spec.md §7:
// "terminates the current verification immediately with a single
// diagnostic").
func Verify(fsys fs.FS, rootPath string, opts ...Option) (*Result, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	cfg.report("tokenizing", 0.0)
	toks, comments, err := lexer.Read(fsys, rootPath, lexer.WithName(rootPath))
	if err != nil {
		return nil, err
	}

	if cfg.sectionPrefix != "" {
		if cut, ok := sectionCutoff(comments, cfg.sectionPrefix); ok {
			toks, comments = toks[:cut], trimComments(comments, cut)
		}
	}

	src, err := readSource(fsys, rootPath)
	if err != nil {
		return nil, err
	}

	res := &Result{DB: mm.NewDatabase()}

	cfg.report("reading statements", 0.15)
	rdr := reader.New(res.DB, toks, src, rootPath)
	if err := rdr.Read(); err != nil {
		return res, err
	}
	res.Warnings = rdr.Warnings

	cfg.report("parsing syntax trees", 0.4)
	info, commentWarnings := comment.Parse(comments)
	res.CommentWarnings = commentWarnings
	if err := parseSyntaxTrees(res.DB, info); err != nil {
		return res, err
	}

	cfg.report("checking definitions", 0.6)
	equalities := definition.FindEqualityConstructors(res.DB)
	bound := info.BoundTypes(res.DB)
	// A `definition 'df' for 'sa'` comment ties df to sa even when df
	// lacks the bare "df-" prefix; `primitive 'sa'` binds sa to "",
	// meaning sa is deliberately left without one (spec.md §4.9, §6).
	// Mirrors original_source/def.cpp's Definitions constructor: pass
	// one over every df-prefixed assertion, pass two over every
	// comment-bound label, skipping the ones marked primitive.
	commentBound := make(map[string]bool, len(info.Definitions))
	for _, df := range info.Definitions {
		if df != "" {
			commentBound[df] = true
		}
	}
	checked := make(map[string]bool, len(res.DB.Assertions))
	for _, ass := range res.DB.Assertions {
		if checked[ass.Label] || (!definition.IsCandidate(ass.Label) && !commentBound[ass.Label]) {
			continue
		}
		checked[ass.Label] = true
		result, diag := definition.Check(ass, equalities, bound)
		if diag != nil {
			res.DefinitionFailures = append(res.DefinitionFailures, diag)
			continue
		}
		res.Definitions = append(res.Definitions, result)
	}

	cfg.report("building propositional metadata", 0.8)
	res.Propctors = propctor.NewTable(res.DB)
	res.PropctorFailures = res.Propctors.Extend(res.Definitions)
	markPropositional(res.DB, res.Propctors)

	if cfg.checkPropositional {
		cfg.report("checking propositional validity", 0.95)
		for _, ass := range res.DB.Assertions {
			if ass.Kind != mm.KindPropositional {
				continue
			}
			valid, ok := res.Propctors.CheckValid(ass)
			if !ok || valid {
				continue
			}
			d := errors.NewDiagnostic(errors.Propositional, ass.Label,
				"conclusion is counter-satisfiable against its hypotheses")
			res.PropositionalFailures = append(res.PropositionalFailures, d)
		}
	}

	cfg.report("done", 1.0)
	return res, nil
}

// parseSyntaxTrees runs the syntax parser over every assertion's
// conclusion and essential hypotheses, populating ConclusionRPN and
// HypRPN (spec.md §4.8). A statement that does not parse breaks the
// "reverse-Polish reconstructs the expression exactly" invariant and is
// fatal.
func parseSyntaxTrees(db *mm.Database, info *comment.Info) error {
	parser := syntax.NewParser(db, info.PrimitiveTypes(db), info.NormalizeTypes(db))
	for _, ass := range db.Assertions {
		rpn, err := parser.Parse(ass, ass.Conclusion)
		if err != nil {
			return errors.NewDiagnostic(errors.Unification, ass.Label, fmt.Sprintf("conclusion does not parse: %s", err))
		}
		ass.ConclusionRPN = rpn

		essentials := ass.EssentialHyps()
		if len(essentials) == 0 {
			continue
		}
		ass.HypRPN = make(map[*mm.Hypothesis]mm.RPN, len(essentials))
		for _, h := range essentials {
			hrpn, err := parser.Parse(ass, h.Expr)
			if err != nil {
				return errors.NewDiagnostic(errors.Unification, ass.Label, fmt.Sprintf("hypothesis %s does not parse: %s", h.Label, err))
			}
			ass.HypRPN[h] = hrpn
		}
	}
	return nil
}

// markPropositional sets Kind to KindPropositional on every theorem
// (trivial or not) whose conclusion and hypotheses build entirely out
// of registered propositional connectives (spec.md §6: "every assertion
// the Propositional Layer marks Propositional"). A trivial theorem
// (reader.go's single-hypothesis-reference demotion) still has a
// propositional conclusion worth checking.
func markPropositional(db *mm.Database, props *propctor.Table) {
	for _, ass := range db.Assertions {
		if ass.Kind != mm.KindTheorem && ass.Kind != mm.KindTrivial {
			continue
		}
		if _, ok := props.CNFOfAssertion(ass); ok {
			ass.Kind = mm.KindPropositional
		}
	}
}

// sectionCutoff finds the token-stream index at which reading should
// stop: the FollowedBy index of the first comment whose text begins
// with "$t" or with prefix.
func sectionCutoff(comments []lexer.Comment, prefix string) (int, bool) {
	for _, c := range comments {
		text := strings.TrimSpace(c.Text)
		if strings.HasPrefix(text, "$t") || strings.HasPrefix(text, prefix) {
			return c.FollowedBy, true
		}
	}
	return 0, false
}

// trimComments keeps only the comments that precede cut.
func trimComments(comments []lexer.Comment, cut int) []lexer.Comment {
	out := comments[:0:0]
	for _, c := range comments {
		if c.FollowedBy > cut {
			break
		}
		out = append(out, c)
	}
	return out
}

// readSource reads rootPath's raw text for diagnostic source-line
// rendering (internal/errors.Diagnostic.Format).
func readSource(fsys fs.FS, rootPath string) (string, error) {
	f, err := fsys.Open(rootPath)
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", rootPath, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", rootPath, err)
	}
	return string(data), nil
}
