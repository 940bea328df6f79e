package propctor

import (
	"github.com/mm-go/verifier/internal/mm"
	"github.com/mm-go/verifier/internal/sat"
)

// atoms allocates SAT atoms for one assertion's propositional instance:
// one atom per distinct floating-hypothesis variable, reused across
// every hypothesis and the conclusion, plus a fresh atom for each
// constructor application (original_source/propctor.cpp's hypscnf/cnf,
// "its arguments bound to the current top-of-atom-stack, its output
// allocated as a fresh atom").
type atoms struct {
	next  int
	ofVar map[*mm.Symbol]int
}

func newAtoms() *atoms {
	return &atoms{ofVar: make(map[*mm.Symbol]int)}
}

func (a *atoms) forVar(v *mm.Symbol) int {
	if id, ok := a.ofVar[v]; ok {
		return id
	}
	id := a.next
	a.next++
	a.ofVar[v] = id
	return id
}

func (a *atoms) fresh() int {
	id := a.next
	a.next++
	return id
}

// appendExpr walks rpn from idx, appending every constructor's CNF
// (renumbered so its argument atoms are the already-computed atoms of
// its children and its output atom is freshly allocated) to out, and
// returns the atom that ends up representing rpn[idx]'s truth value.
// It reports false ok when the expression is not built entirely out of
// floating-hypothesis variables and registered propositional
// connectives.
func appendExpr(t *Table, rpn mm.RPN, idx int, a *atoms, memo map[int]int, out *sat.CNF) (int, bool) {
	if atom, done := memo[idx]; done {
		return atom, true
	}

	step := rpn[idx]
	if step.Hyp != nil {
		atom := a.forVar(step.Hyp.Var)
		memo[idx] = atom
		return atom, true
	}

	ctor, ok := t.byAxiom[step.Axiom]
	if !ok {
		return 0, false
	}

	argAtoms := make([]int, len(step.Args))
	for j, childIdx := range step.Args {
		atom, ok := appendExpr(t, rpn, childIdx, a, memo, out)
		if !ok {
			return 0, false
		}
		argAtoms[j] = atom
	}
	outAtom := a.fresh()

	remap := func(lit sat.Literal) sat.Literal {
		src := lit.Atom()
		dst := outAtom
		if src < len(argAtoms) {
			dst = argAtoms[src]
		}
		if lit.Negated() {
			return sat.Neg(dst)
		}
		return sat.Pos(dst)
	}
	for _, clause := range ctor.CNF {
		renamed := make(sat.Clause, len(clause))
		for i, lit := range clause {
			renamed[i] = remap(lit)
		}
		*out = append(*out, renamed)
	}

	memo[idx] = outAtom
	return outAtom, true
}

// CNFOfAssertion builds the satisfiability instance whose
// unsatisfiability is a necessary condition for ass to follow
// propositionally from its own essential hypotheses: every essential
// hypothesis's expression is appended and asserted true, the
// conclusion is appended and asserted false (spec.md §4.10). ok is
// false when ass's conclusion or some hypothesis uses a syntax axiom
// that is not a registered propositional connective, in which case the
// assertion cannot be checked this way.
func (t *Table) CNFOfAssertion(ass *mm.Assertion) (cnf sat.CNF, ok bool) {
	a := newAtoms()
	for _, h := range ass.EssentialHyps() {
		rpn, has := ass.HypRPN[h]
		if !has {
			return nil, false
		}
		atom, ok := appendExpr(t, rpn, len(rpn)-1, a, map[int]int{}, &cnf)
		if !ok {
			return nil, false
		}
		cnf = append(cnf, sat.Clause{sat.Pos(atom)})
	}

	if ass.ConclusionRPN == nil {
		return nil, false
	}
	atom, ok := appendExpr(t, ass.ConclusionRPN, len(ass.ConclusionRPN)-1, a, map[int]int{}, &cnf)
	if !ok {
		return nil, false
	}
	cnf = append(cnf, sat.Clause{sat.Neg(atom)})

	return cnf, true
}

// CheckValid reports whether ass's conclusion follows propositionally
// from its essential hypotheses: valid is true exactly when the CNF
// built by CNFOfAssertion is unsatisfiable. ok is false when the
// assertion is not entirely propositional (CNFOfAssertion could not be
// built), in which case valid is meaningless.
func (t *Table) CheckValid(ass *mm.Assertion) (valid bool, ok bool) {
	cnf, ok := t.CNFOfAssertion(ass)
	if !ok {
		return false, false
	}
	return !sat.Sat(cnf), true
}
