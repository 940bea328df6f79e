// Package sat builds conjunctive-normal-form instances from truth
// tables and decides their satisfiability with a DPLL solver (spec.md
// §4.10), grounded on original_source/cnf.h/cnf.cpp and
// original_source/satsolve/DPLL.h/DPLL.cpp.
package sat

// Literal encodes atom p as 2*p (positive) or 2*p+1 (negative),
// mirroring the original's unsigned literal scheme (P=0, !P=1, Q=2,
// !Q=3, ...).
type Literal int

// Pos and Neg build the positive and negative literal for an atom.
func Pos(atom int) Literal { return Literal(2 * atom) }
func Neg(atom int) Literal { return Literal(2*atom + 1) }

// Atom returns the atom a literal refers to.
func (l Literal) Atom() int { return int(l) / 2 }

// Negated reports whether the literal asserts its atom false.
func (l Literal) Negated() bool { return int(l)%2 == 1 }

// Clause is a disjunction of literals.
type Clause []Literal

// CNF is a conjunction of clauses.
type CNF []Clause

// AtomCount returns one past the highest atom referenced, or 1 for an
// empty instance (original_source/cnf.h's CNFClauses::atomcount).
func (c CNF) AtomCount() int {
	max := -1
	for _, clause := range c {
		for _, lit := range clause {
			if lit.Atom() > max {
				max = lit.Atom()
			}
		}
	}
	if max < 0 {
		return 1
	}
	return max + 1
}

// FromTruthTable builds a CNF over input atoms 0..n-1 plus one output
// atom n that is satisfied exactly by the assignments consistent with
// truthtable (len(truthtable) == 2^n): one clause per input row,
// excluding the single combination where the output disagrees with the
// table (spec.md §4.10 "a canonical CNF encoding that is satisfied
// exactly by assignments consistent with the truth table").
//
// This is the unminimised base case of original_source/cnf.cpp's
// CNFClauses(Bvector) constructor — it omits that constructor's
// mask-expansion step, which merges rows sharing a clause into fewer,
// shorter clauses. The resulting CNF is logically equivalent (each
// merge pass only combines base-case clauses that already individually
// hold), just larger; spec.md's own wording only requires satisfying
// exactly the truth table, not minimality.
func FromTruthTable(truthtable []bool) CNF {
	if len(truthtable) == 0 {
		return nil
	}
	n := 0
	for 1<<uint(n) < len(truthtable) {
		n++
	}
	output := n

	cnf := make(CNF, 0, len(truthtable))
	for row, desired := range truthtable {
		clause := make(Clause, 0, n+1)
		for i := 0; i < n; i++ {
			bit := Literal((row >> uint(i)) & 1)
			clause = append(clause, Literal(2*i)+bit)
		}
		outBit := Literal(0)
		if !desired {
			outBit = 1
		}
		clause = append(clause, Literal(2*output)+outBit)
		cnf = append(cnf, clause)
	}
	return cnf
}
