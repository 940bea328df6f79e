// Package reader consumes the token stream produced by internal/lexer
// into a *mm.Database, dispatching each top-level statement to the
// Symbol Table, Scope Stack, Assertion Builder and Proof Executor
// (spec.md §4.4).
package reader

import (
	"fmt"

	"github.com/mm-go/verifier/internal/errors"
	"github.com/mm-go/verifier/internal/lexer"
	"github.com/mm-go/verifier/internal/mm"
	"github.com/mm-go/verifier/internal/proof"
	"github.com/mm-go/verifier/internal/scope"
	"github.com/mm-go/verifier/internal/symtab"
)

// Warning is a non-fatal notice produced while reading (spec.md §7:
// incomplete regular proofs produce a warning and continue).
type Warning struct {
	Label   string
	Message string
}

// Reader drives one pass over a token stream, building db as it goes.
type Reader struct {
	db    *mm.Database
	tab   *symtab.Table
	scope *scope.Stack
	toks  []lexer.Token
	pos   int
	src   string
	file  string

	Warnings []Warning
}

// New returns a Reader that will populate db from toks. src is the
// original file text, used only to render diagnostics with source
// context.
func New(db *mm.Database, toks []lexer.Token, src, file string) *Reader {
	return &Reader{
		db:    db,
		tab:   symtab.New(db),
		scope: scope.NewStack(),
		toks:  toks,
		src:   src,
		file:  file,
	}
}

func (r *Reader) peek() (lexer.Token, bool) {
	if r.pos >= len(r.toks) {
		return lexer.Token{}, false
	}
	return r.toks[r.pos], true
}

func (r *Reader) next() (lexer.Token, bool) {
	tok, ok := r.peek()
	if ok {
		r.pos++
	}
	return tok, ok
}

func (r *Reader) errAt(kind errors.Kind, label string, pos lexer.Position, format string, args ...any) error {
	return &errors.Diagnostic{
		Kind:    kind,
		Label:   label,
		Message: fmt.Sprintf(format, args...),
		Source:  r.src,
		File:    r.file,
		Pos:     pos,
	}
}

// Read consumes the whole token stream, populating db. It stops at the
// first fatal error (spec.md §7).
func (r *Reader) Read() error {
	for {
		tok, ok := r.peek()
		if !ok {
			return nil
		}

		switch tok.Text {
		case "${":
			r.next()
			r.scope.Push()

		case "$}":
			r.next()
			if err := r.scope.Pop(); err != nil {
				return r.errAt(errors.Scope, "", tok.Pos, "%s", err)
			}

		case "$c":
			if err := r.readConstants(); err != nil {
				return err
			}

		case "$v":
			if err := r.readVariables(); err != nil {
				return err
			}

		case "$d":
			if err := r.readDisjoint(); err != nil {
				return err
			}

		default:
			// A bare label precedes $f/$e/$a/$p.
			if err := r.readLabeledStatement(tok); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) readConstants() error {
	kwTok, _ := r.next() // consume $c
	if !r.scope.IsOuter() {
		return r.errAt(errors.Scope, "", kwTok.Pos, "$c not in outermost scope")
	}

	var names []string
	for {
		tok, ok := r.next()
		if !ok {
			return r.errAt(errors.Syntactic, "", kwTok.Pos, "unfinished $c statement")
		}
		if tok.Text == "$." {
			break
		}
		names = append(names, tok.Text)
	}
	if len(names) == 0 {
		return r.errAt(errors.Declarative, "", kwTok.Pos, "$c statement has an empty list")
	}
	for _, name := range names {
		if _, err := r.tab.AddConstant(name); err != nil {
			return r.errAt(errors.Declarative, "", kwTok.Pos, "%s", err)
		}
	}
	return nil
}

func (r *Reader) readVariables() error {
	kwTok, _ := r.next() // consume $v

	var names []string
	for {
		tok, ok := r.next()
		if !ok {
			return r.errAt(errors.Syntactic, "", kwTok.Pos, "unfinished $v statement")
		}
		if tok.Text == "$." {
			break
		}
		names = append(names, tok.Text)
	}

	for _, name := range names {
		sym, ok := r.db.Variables[name]
		if !ok {
			var err error
			sym, err = r.tab.AddVariable(name)
			if err != nil {
				return r.errAt(errors.Declarative, "", kwTok.Pos, "%s", err)
			}
		} else if r.scope.IsActiveVariable(sym) {
			return r.errAt(errors.Declarative, "", kwTok.Pos, "variable %s already active", name)
		}
		r.scope.ActivateVariable(sym)
	}
	return nil
}

func (r *Reader) readDisjoint() error {
	kwTok, _ := r.next() // consume $d

	var vars []*mm.Symbol
	for {
		tok, ok := r.next()
		if !ok {
			return r.errAt(errors.Syntactic, "", kwTok.Pos, "unfinished $d statement")
		}
		if tok.Text == "$." {
			break
		}
		sym, ok := r.db.Variables[tok.Text]
		if !ok || !r.scope.IsActiveVariable(sym) {
			return r.errAt(errors.Declarative, "", tok.Pos, "%s is not an active variable", tok.Text)
		}
		vars = append(vars, sym)
	}

	seen := make(map[*mm.Symbol]struct{}, len(vars))
	for _, v := range vars {
		if _, dup := seen[v]; dup {
			return r.errAt(errors.Declarative, "", kwTok.Pos, "$d statement repeats variable %s", v.Name)
		}
		seen[v] = struct{}{}
	}
	if len(vars) < 2 {
		return r.errAt(errors.Declarative, "", kwTok.Pos, "$d statement needs at least two variables")
	}

	r.scope.AddDisjoint(vars)
	return nil
}

// readLabeledStatement handles "label $f ...", "label $e ...",
// "label $a ..." and "label $p ...".
func (r *Reader) readLabeledStatement(labelTok lexer.Token) error {
	r.next() // consume label token
	label := labelTok.Text

	if r.db.NameTaken(label) {
		return r.errAt(errors.Declarative, label, labelTok.Pos, "label %s already declared", label)
	}

	kwTok, ok := r.next()
	if !ok {
		return r.errAt(errors.Syntactic, label, labelTok.Pos, "label %s not followed by a statement keyword", label)
	}

	switch kwTok.Text {
	case "$f":
		return r.readFloating(label, labelTok.Pos)
	case "$e":
		return r.readEssential(label, labelTok.Pos)
	case "$a":
		return r.readAxiom(label, labelTok.Pos)
	case "$p":
		return r.readTheorem(label, labelTok.Pos)
	default:
		return r.errAt(errors.Syntactic, label, kwTok.Pos, "unexpected token %s after label %s", kwTok.Text, label)
	}
}

func (r *Reader) readFloating(label string, pos lexer.Position) error {
	typeTok, ok := r.next()
	if !ok {
		return r.errAt(errors.Syntactic, label, pos, "unfinished $f statement")
	}
	typeSym, isConst := r.db.Constants[typeTok.Text]
	if !isConst {
		return r.errAt(errors.Declarative, label, typeTok.Pos, "%s is not a constant", typeTok.Text)
	}

	varTok, ok := r.next()
	if !ok {
		return r.errAt(errors.Syntactic, label, pos, "unfinished $f statement")
	}
	varSym, isVar := r.db.Variables[varTok.Text]
	if !isVar {
		return r.errAt(errors.Declarative, label, varTok.Pos, "%s is not a variable", varTok.Text)
	}
	switch r.scope.CanAddFloatingHyp(varSym) {
	case scope.FloatVarNotActive:
		return r.errAt(errors.Declarative, label, varTok.Pos, "%s is not an active variable", varTok.Text)
	case scope.FloatVarAlreadyTyped:
		return r.errAt(errors.Declarative, label, varTok.Pos, "%s already has an active floating hypothesis", varTok.Text)
	}

	endTok, ok := r.next()
	if !ok || endTok.Text != "$." {
		return r.errAt(errors.Syntactic, label, pos, "$f statement has an extra token")
	}

	if err := r.tab.AddLabel(label); err != nil {
		return r.errAt(errors.Declarative, label, pos, "%s", err)
	}
	h := &mm.Hypothesis{Label: label, Kind: mm.Floating, Expr: mm.Expression{typeSym, varSym}, Var: varSym}
	r.db.AddHypothesis(h)
	r.scope.AddHypothesis(h)
	return nil
}

// readExpression reads tokens up to terminator, interpreting the first
// as a type-code constant and the rest as constants or active
// floating-typed variables (spec.md §4.1/§4.4).
func (r *Reader) readExpression(label string, pos lexer.Position, terminator string) (mm.Expression, error) {
	typeTok, ok := r.next()
	if !ok {
		return nil, r.errAt(errors.Syntactic, label, pos, "unfinished statement")
	}
	typeSym, isConst := r.db.Constants[typeTok.Text]
	if !isConst {
		return nil, r.errAt(errors.Declarative, label, typeTok.Pos, "%s is not a constant", typeTok.Text)
	}

	expr := mm.Expression{typeSym}
	for {
		tok, ok := r.next()
		if !ok {
			return nil, r.errAt(errors.Syntactic, label, pos, "unfinished statement")
		}
		if tok.Text == terminator {
			return expr, nil
		}
		if c, isC := r.db.Constants[tok.Text]; isC {
			expr = append(expr, c)
			continue
		}
		if v, isV := r.db.Variables[tok.Text]; isV && r.scope.ActiveFloatingHyp(v) != nil {
			expr = append(expr, v)
			continue
		}
		return nil, r.errAt(errors.Declarative, label, tok.Pos,
			"token %s is not a constant or a variable with an active floating hypothesis", tok.Text)
	}
}

func (r *Reader) readEssential(label string, pos lexer.Position) error {
	expr, err := r.readExpression(label, pos, "$.")
	if err != nil {
		return err
	}
	if err := r.tab.AddLabel(label); err != nil {
		return r.errAt(errors.Declarative, label, pos, "%s", err)
	}
	h := &mm.Hypothesis{Label: label, Kind: mm.Essential, Expr: expr}
	r.db.AddHypothesis(h)
	r.scope.AddHypothesis(h)
	return nil
}

func (r *Reader) readAxiom(label string, pos lexer.Position) error {
	expr, err := r.readExpression(label, pos, "$.")
	if err != nil {
		return err
	}
	if err := r.tab.AddLabel(label); err != nil {
		return r.errAt(errors.Declarative, label, pos, "%s", err)
	}
	ass := r.scope.BuildAssertion(label, expr, mm.KindAxiom)
	r.db.AddAssertion(ass)
	return nil
}

func (r *Reader) readTheorem(label string, pos lexer.Position) error {
	expr, err := r.readExpression(label, pos, "$=")
	if err != nil {
		return err
	}
	if err := r.tab.AddLabel(label); err != nil {
		return r.errAt(errors.Declarative, label, pos, "%s", err)
	}
	ass := r.scope.BuildAssertion(label, expr, mm.KindTheorem)
	r.db.AddAssertion(ass)

	env := &proofEnv{scope: r.scope, db: r.db}

	tok, ok := r.peek()
	if !ok {
		return r.errAt(errors.Syntactic, label, pos, "unfinished $p statement")
	}

	var steps []mm.ProofStep
	var incomplete bool

	if tok.Text == "(" {
		r.next()
		prefix, err := r.readCompressedPrefix(label, pos)
		if err != nil {
			return err
		}
		letters, err := r.readCompressedLetters(label, pos)
		if err != nil {
			return err
		}
		steps, err = proof.DecodeCompressed(prefix, letters, env, label, ass.Mandatory)
		if err != nil {
			return r.errAt(errors.ProofShape, label, pos, "%s", err)
		}
	} else {
		tokens, err := r.readRegularProofTokens(label, pos)
		if err != nil {
			return err
		}
		steps, incomplete, err = proof.DecodeRegular(tokens, env, label)
		if err != nil {
			return r.errAt(errors.ProofShape, label, pos, "%s", err)
		}
	}

	if incomplete {
		r.Warnings = append(r.Warnings, Warning{Label: label, Message: "incomplete proof"})
		return nil
	}

	result, err := proof.Execute(steps, ass.Disjoint)
	if err != nil {
		return r.errAt(errors.Unification, label, pos, "%s", err)
	}
	if !result.Equal(ass.Conclusion) {
		return r.errAt(errors.ProofShape, label, pos, "proof of %s proves wrong statement", label)
	}
	ass.Proof = steps

	if len(steps) == 1 && steps[0].Kind == mm.StepHyp {
		ass.Kind = mm.KindTrivial
	}

	return nil
}

func (r *Reader) readCompressedPrefix(label string, pos lexer.Position) ([]string, error) {
	var labels []string
	for {
		tok, ok := r.next()
		if !ok {
			return nil, r.errAt(errors.Syntactic, label, pos, "unfinished $p statement")
		}
		if tok.Text == ")" {
			return labels, nil
		}
		labels = append(labels, tok.Text)
	}
}

func (r *Reader) readCompressedLetters(label string, pos lexer.Position) (string, error) {
	var letters string
	for {
		tok, ok := r.next()
		if !ok {
			return "", r.errAt(errors.Syntactic, label, pos, "unfinished $p statement")
		}
		if tok.Text == "$." {
			return letters, nil
		}
		letters += tok.Text
	}
}

func (r *Reader) readRegularProofTokens(label string, pos lexer.Position) ([]string, error) {
	var toks []string
	for {
		tok, ok := r.next()
		if !ok {
			return nil, r.errAt(errors.Syntactic, label, pos, "unfinished $p statement")
		}
		if tok.Text == "$." {
			return toks, nil
		}
		toks = append(toks, tok.Text)
	}
}

// proofEnv adapts scope.Stack + mm.Database to proof.Environment.
type proofEnv struct {
	scope *scope.Stack
	db    *mm.Database
}

func (e *proofEnv) ActiveHypByLabel(label string) *mm.Hypothesis { return e.scope.ActiveHypByLabel(label) }
func (e *proofEnv) AssertionByLabel(label string) *mm.Assertion  { return e.db.AssertionByLabel(label) }
