// Package definition recognises equality constructors and checks
// candidate definitions against the six soundness rules (spec.md
// §4.9), grounded on original_source/def.cpp's Definition constructor.
package definition

import (
	"strings"

	"github.com/mm-go/verifier/internal/errors"
	"github.com/mm-go/verifier/internal/mm"
)

// Result is a definition that passed all six rules.
type Result struct {
	Assertion *mm.Assertion
	// Ctor is the syntax axiom this assertion defines.
	Ctor *mm.Assertion
	// LHSVars are the constructor's arguments, in declaration order.
	LHSVars []*mm.Symbol
	// Dummy holds every variable used by Assertion that is not in
	// LHSVars (spec.md glossary "dummy variable").
	Dummy map[*mm.Symbol]bool
	// RHSRoot is the index into Assertion.ConclusionRPN of the defining
	// expression's root step, for callers that evaluate the RHS (the
	// propositional layer's truth-table synthesis, spec.md §4.10).
	RHSRoot int
}

// IsCandidate reports whether label carries the bare "df-" prefix that
// makes an assertion a definition candidate (spec.md §4.9). The other
// trigger named there, "or whose constructor is explicitly tied via a
// convention comment", has no label shape to test here: the caller
// resolves it against comment.Info.Definitions and adds the named
// assertion to the candidate set itself (original_source/def.cpp's
// Definitions constructor does the same two-pass thing: adddef on
// every df-prefixed assertion, then adddef again on every assertion
// named by a `definition ... for ...` command).
func IsCandidate(label string) bool {
	return strings.HasPrefix(label, "df-")
}

// Check runs the six definition rules against ass. equalities is the
// set produced by FindEqualityConstructors; bound maps a type-code
// constant to whether convention comments marked it bound
// (comment.Info.BoundTypes).
func Check(ass *mm.Assertion, equalities map[*mm.Assertion]bool, bound map[*mm.Symbol]bool) (*Result, *errors.Diagnostic) {
	if len(ass.EssentialHyps()) > 0 {
		return nil, ruleErr(ass, "no-essential-hypotheses", "has essential hypotheses")
	}

	root, rootOK := rootOf(ass.ConclusionRPN)
	if !rootOK || !equalities[root] {
		return nil, ruleErr(ass, "equality-root", "root symbol is not a recognised equality constructor")
	}

	ctor, lhsVars, rhsIdx, parseOK := splitDefinition(ass.ConclusionRPN)
	if !parseOK {
		return nil, ruleErr(ass, "parses", "definition does not parse into LHS and RHS")
	}

	if usesAxiom(ass.ConclusionRPN, rhsIdx, ctor, make(map[int]bool)) {
		return nil, ruleErr(ass, "non-circularity", "definition is circular: RHS mentions the defined syntax")
	}

	lhsSet := make(map[*mm.Symbol]bool, len(lhsVars))
	for _, v := range lhsVars {
		lhsSet[v] = true
	}
	dummy := make(map[*mm.Symbol]bool)
	for v := range ass.VariablesUsed() {
		if !lhsSet[v] {
			dummy[v] = true
		}
	}

	if !checkDisjoint(ass, dummy) {
		return nil, ruleErr(ass, "disjoint-variables", "disjoint-variable restrictions do not match dummy-variable status")
	}

	if !checkDummyBound(ass, dummy, bound) {
		return nil, ruleErr(ass, "dummy-bound", "a dummy variable's type is not declared bound")
	}

	return &Result{Assertion: ass, Ctor: ctor, LHSVars: lhsVars, Dummy: dummy, RHSRoot: rhsIdx}, nil
}

func ruleErr(ass *mm.Assertion, rule, msg string) *errors.Diagnostic {
	d := errors.NewDiagnostic(errors.Definition, ass.Label, msg)
	d.Rule = rule
	return d
}

// rootOf returns the assertion applied at rpn's final step.
func rootOf(rpn mm.RPN) (*mm.Assertion, bool) {
	if len(rpn) == 0 {
		return nil, false
	}
	last := rpn[len(rpn)-1]
	if last.Axiom == nil {
		return nil, false
	}
	return last.Axiom, true
}

// splitDefinition requires rpn's root to be a binary equality
// application whose first argument is itself an axiom applied directly
// to a contiguous prefix of bare-variable steps (the defined syntax's
// arguments), returning that axiom, its argument variables in order,
// and the index of the second (RHS) argument.
func splitDefinition(rpn mm.RPN) (ctor *mm.Assertion, lhsVars []*mm.Symbol, rhsIdx int, ok bool) {
	if len(rpn) == 0 {
		return nil, nil, 0, false
	}
	root := rpn[len(rpn)-1]
	if root.Axiom == nil || len(root.Args) != 2 {
		return nil, nil, 0, false
	}
	lhsIdx := root.Args[0]
	rhsIdx = root.Args[1]
	if lhsIdx < 0 || lhsIdx >= len(rpn)-1 {
		return nil, nil, 0, false
	}

	lhs := rpn[lhsIdx]
	if lhs.Axiom == nil || len(lhs.Args) != lhsIdx {
		return nil, nil, 0, false
	}

	seen := make(map[*mm.Symbol]bool, len(lhs.Args))
	vars := make([]*mm.Symbol, 0, len(lhs.Args))
	for i, argIdx := range lhs.Args {
		if argIdx != i || argIdx < 0 || argIdx >= len(rpn) || rpn[argIdx].Hyp == nil {
			return nil, nil, 0, false
		}
		v := rpn[argIdx].Hyp.Var
		if seen[v] {
			return nil, nil, 0, false
		}
		seen[v] = true
		vars = append(vars, v)
	}

	return lhs.Axiom, vars, rhsIdx, true
}

// usesAxiom reports whether the subtree rooted at rpn[idx] applies
// target anywhere (spec.md §4.9 rule 3, non-circularity).
func usesAxiom(rpn mm.RPN, idx int, target *mm.Assertion, visited map[int]bool) bool {
	if visited[idx] {
		return false
	}
	visited[idx] = true

	step := rpn[idx]
	if step.Axiom == nil {
		return false
	}
	if step.Axiom == target {
		return true
	}
	for _, arg := range step.Args {
		if usesAxiom(rpn, arg, target, visited) {
			return true
		}
	}
	return false
}

// checkDisjoint implements rule 4: for every pair of distinct
// variables used by ass, a $d restriction must hold between them iff
// at least one is dummy.
func checkDisjoint(ass *mm.Assertion, dummy map[*mm.Symbol]bool) bool {
	disjoint := make(map[mm.DisjointVars]bool, len(ass.Disjoint))
	for _, pair := range ass.Disjoint {
		disjoint[pair] = true
	}

	vars := make([]*mm.Symbol, 0, len(ass.VariablesUsed()))
	for v := range ass.VariablesUsed() {
		vars = append(vars, v)
	}

	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			pair := mm.NewDisjointVars(vars[i], vars[j])
			mustBeDisjoint := dummy[vars[i]] || dummy[vars[j]]
			if disjoint[pair] != mustBeDisjoint {
				return false
			}
		}
	}
	return true
}

// checkDummyBound implements rule 5: every dummy variable's declared
// type code must be marked bound by a convention comment.
func checkDummyBound(ass *mm.Assertion, dummy map[*mm.Symbol]bool, bound map[*mm.Symbol]bool) bool {
	typeOf := make(map[*mm.Symbol]*mm.Symbol, len(ass.FloatingHyps()))
	for _, h := range ass.FloatingHyps() {
		typeOf[h.Var] = h.Expr[0]
	}
	for v := range dummy {
		tc, ok := typeOf[v]
		if !ok || !bound[tc] {
			return false
		}
	}
	return true
}
