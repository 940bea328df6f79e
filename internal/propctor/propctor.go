// Package propctor builds truth tables and canonical CNF encodings for
// propositional connectives and assembles the satisfiability instance
// that decides whether a propositional assertion follows from its
// hypotheses (spec.md §4.10), grounded on
// original_source/propctor.h/propctor.cpp.
package propctor

import (
	"fmt"

	"github.com/mm-go/verifier/internal/definition"
	"github.com/mm-go/verifier/internal/mm"
	"github.com/mm-go/verifier/internal/sat"
)

// Constructor is the propositional metadata for one syntax axiom:
// argcount, its truth table over the 2^argcount input assignments, and
// a CNF over atoms 0..argcount-1 (inputs, bit j of the row index) plus
// atom argcount (output) that is satisfied exactly by rows consistent
// with the table (original_source/propctor.h's Propctor struct).
type Constructor struct {
	Label      string
	ArgCount   int
	TruthTable []bool
	CNF        sat.CNF
}

// Table maps syntax axioms to their propositional metadata. The zero
// value is not usable; build one with NewTable.
type Table struct {
	byAxiom map[*mm.Assertion]*Constructor
}

// primitiveTables lists the propositional connectives every Metamath
// propositional calculus is built from, keyed by their conventional
// syntax-axiom label (original_source/propctor.cpp's Propctors::init):
// implication, negation, and the truth constant.
var primitiveTables = []struct {
	label string
	table []bool
}{
	{"wi", []bool{true, false, true, true}},
	{"wn", []bool{true, false}},
	{"wtru", []bool{true}},
}

// NewTable seeds t with whichever primitive connectives db actually
// declares under their conventional labels; a database that uses
// different labels for its primitives simply starts with an empty
// table and relies entirely on Extend.
func NewTable(db *mm.Database) *Table {
	t := &Table{byAxiom: make(map[*mm.Assertion]*Constructor)}
	for _, p := range primitiveTables {
		ass := db.AssertionByLabel(p.label)
		if ass == nil {
			continue
		}
		n := 0
		for 1<<uint(n) < len(p.table) {
			n++
		}
		t.byAxiom[ass] = &Constructor{
			Label:      p.label,
			ArgCount:   n,
			TruthTable: p.table,
			CNF:        sat.FromTruthTable(p.table),
		}
	}
	return t
}

// Lookup reports the constructor metadata for ass, if any.
func (t *Table) Lookup(ass *mm.Assertion) (*Constructor, bool) {
	c, ok := t.byAxiom[ass]
	return c, ok
}

// Extend evaluates each definition's right-hand side over every
// assignment of its arguments, registering a Constructor for its
// defined syntax axiom (original_source/propctor.cpp's adddef). Unlike
// def.cpp, which processes definitions strictly in file order, this
// makes repeated passes so definitions may reference connectives
// introduced by other definitions regardless of list order, stopping
// once a full pass makes no progress. Each definition that still
// cannot be evaluated (its right-hand side reaches a dummy variable or
// a non-propositional connective) is reported as an error.
func (t *Table) Extend(defs []*definition.Result) []error {
	pending := make([]*definition.Result, len(defs))
	copy(pending, defs)

	var errs []error
	for len(pending) > 0 {
		var next []*definition.Result
		progressed := false

		for _, d := range pending {
			table, ok := t.evaluate(d)
			if !ok {
				next = append(next, d)
				continue
			}
			t.byAxiom[d.Ctor] = &Constructor{
				Label:      d.Ctor.Label,
				ArgCount:   len(d.LHSVars),
				TruthTable: table,
				CNF:        sat.FromTruthTable(table),
			}
			progressed = true
		}

		if !progressed {
			for _, d := range next {
				errs = append(errs, fmt.Errorf("propctor: %s cannot be evaluated propositionally", d.Assertion.Label))
			}
			break
		}
		pending = next
	}
	return errs
}

// evaluate computes d's truth table by walking its right-hand side over
// every assignment of d.LHSVars, mirroring
// original_source/propctor.cpp's calctruthvalue/evaltruthtableonstack.
func (t *Table) evaluate(d *definition.Result) ([]bool, bool) {
	argOf := make(map[*mm.Symbol]int, len(d.LHSVars))
	for i, v := range d.LHSVars {
		argOf[v] = i
	}

	size := 1 << uint(len(d.LHSVars))
	rpn := d.Assertion.ConclusionRPN
	table := make([]bool, size)
	for row := 0; row < size; row++ {
		v, ok := t.evalRPN(rpn, d.RHSRoot, argOf, row)
		if !ok {
			return nil, false
		}
		table[row] = v
	}
	return table, true
}

// evalRPN evaluates the subtree rooted at rpn[idx] under the bit
// assignment packed into row (bit j is argOf's variable j), returning
// false ok when the subtree reaches a variable outside argOf (a dummy
// variable cannot be evaluated truth-functionally) or a syntax axiom
// that is not itself a registered propositional connective.
func (t *Table) evalRPN(rpn mm.RPN, idx int, argOf map[*mm.Symbol]int, row int) (bool, bool) {
	step := rpn[idx]
	if step.Hyp != nil {
		pos, ok := argOf[step.Hyp.Var]
		if !ok {
			return false, false
		}
		return (row>>uint(pos))&1 == 1, true
	}

	ctor, ok := t.byAxiom[step.Axiom]
	if !ok {
		return false, false
	}
	index := 0
	for j, argIdx := range step.Args {
		v, ok := t.evalRPN(rpn, argIdx, argOf, row)
		if !ok {
			return false, false
		}
		if v {
			index |= 1 << uint(j)
		}
	}
	return ctor.TruthTable[index], true
}
