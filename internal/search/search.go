// Package search exposes the read-only view of a verified database
// that an external proof-search collaborator needs: assertions by
// insertion number, a propositional connective's metadata by label,
// and the satisfiability instance for an assertion's conclusion
// (spec.md §6, "external collaborator contract"). It implements no
// search tree, node, or policy of its own — the Monte-Carlo
// proof-search module stays external per spec.md §1.
package search

import (
	"github.com/mm-go/verifier/internal/mm"
	"github.com/mm-go/verifier/internal/propctor"
	"github.com/mm-go/verifier/internal/sat"
)

// View is the narrow, read-only contract handed to an external
// proof-search collaborator once a database has been fully verified.
type View struct {
	db    *mm.Database
	props *propctor.Table
}

// NewView wraps a verified database and its propositional table. props
// may be nil if the propositional layer was not run; PropctorByLabel
// and CNFOfAssertion then always report not-found.
func NewView(db *mm.Database, props *propctor.Table) *View {
	return &View{db: db, props: props}
}

// AssertionByNumber returns the assertion with the given 1-based
// insertion number, or nil if out of range.
func (v *View) AssertionByNumber(n int) *mm.Assertion {
	return v.db.AssertionByNumber(n)
}

// PropctorByLabel returns the propositional constructor metadata for
// the syntax axiom with the given label, if any.
func (v *View) PropctorByLabel(label string) (*propctor.Constructor, bool) {
	if v.props == nil {
		return nil, false
	}
	ass := v.db.AssertionByLabel(label)
	if ass == nil {
		return nil, false
	}
	return v.props.Lookup(ass)
}

// CNFOfAssertion returns the satisfiability instance (hypotheses
// asserted true, conclusion asserted false) for a, whose
// unsatisfiability is a necessary condition for a to follow
// propositionally. ok is false when a is not entirely propositional, or
// the propositional layer was not run.
func (v *View) CNFOfAssertion(a *mm.Assertion) (sat.CNF, bool) {
	if v.props == nil {
		return nil, false
	}
	return v.props.CNFOfAssertion(a)
}
