package sat

const decisionMark signedLiteral = 0

// activityIncrement is added to a literal's activity each time it
// appears in a conflicting clause.
const activityIncrement = 1.0

// activityDecayRate halves every literal's activity every this many
// conflicts, so recent conflicts dominate the decision heuristic.
const activityDecayRate = 1000

// signedLiteral is a variable-indexed literal: positive for an
// asserted-true atom (1-based), negative for its negation. 0 is
// reserved as the decision-mark sentinel on the backtrack stack.
type signedLiteral int

func sliteral(lit Literal) signedLiteral {
	if lit.Negated() {
		return -signedLiteral(lit.Atom() + 1)
	}
	return signedLiteral(lit.Atom() + 1)
}

func svar(lit signedLiteral) int {
	if lit < 0 {
		return int(-lit)
	}
	return int(lit)
}

const (
	valFalse = 0
	valTrue  = 1
	valNone  = -1
)

// Solver runs DPLL with occurrence lists, unit propagation and an
// activity-based decision heuristic, grounded on
// original_source/satsolve/DPLL.cpp.
type Solver struct {
	numVars int
	signed  [][]signedLiteral

	positive [][]int // positive[v] = indices into signed of clauses containing +v
	negative [][]int // negative[v] = indices into signed of clauses containing -v

	model []int // 1-indexed; model[0] unused

	stack         []signedLiteral
	nextPropagate int
	decisionLevel int

	positiveActivity []float64
	negativeActivity []float64
	conflicts        int
}

// NewSolver builds a solver for cnf over atoms 0..numVars-1.
func NewSolver(cnf CNF, numVars int) *Solver {
	s := &Solver{
		numVars:  numVars,
		positive: make([][]int, numVars+1),
		negative: make([][]int, numVars+1),
		model:    make([]int, numVars+1),
	}
	for i := range s.model {
		s.model[i] = valNone
	}
	s.positiveActivity = make([]float64, numVars+1)
	s.negativeActivity = make([]float64, numVars+1)

	s.signed = make([][]signedLiteral, len(cnf))
	for ci, clause := range cnf {
		row := make([]signedLiteral, len(clause))
		for li, lit := range clause {
			sl := sliteral(lit)
			row[li] = sl
			v := svar(sl)
			if sl > 0 {
				s.positive[v] = append(s.positive[v], ci)
			} else {
				s.negative[v] = append(s.negative[v], ci)
			}
		}
		s.signed[ci] = row
	}
	return s
}

func (s *Solver) valueOf(lit signedLiteral) int {
	v := svar(lit)
	if lit >= 0 {
		return s.model[v]
	}
	if s.model[v] == valNone {
		return valNone
	}
	return 1 - s.model[v]
}

func (s *Solver) setTrue(lit signedLiteral) {
	s.stack = append(s.stack, lit)
	if lit > 0 {
		s.model[svar(lit)] = valTrue
	} else {
		s.model[svar(lit)] = valFalse
	}
}

func (s *Solver) bumpActivity(lit signedLiteral) {
	v := svar(lit)
	if lit > 0 {
		s.positiveActivity[v] += activityIncrement
	} else {
		s.negativeActivity[v] += activityIncrement
	}
}

func (s *Solver) registerConflict(clause []signedLiteral) {
	s.conflicts++
	if s.conflicts%activityDecayRate == 0 {
		for i := 1; i <= s.numVars; i++ {
			s.positiveActivity[i] /= 2
			s.negativeActivity[i] /= 2
		}
	}
	for _, lit := range clause {
		s.bumpActivity(lit)
	}
}

// propagateConflict runs unit propagation to a fixed point, returning
// true the moment some clause is left with every literal false.
func (s *Solver) propagateConflict() bool {
	for s.nextPropagate < len(s.stack) {
		lit := s.stack[s.nextPropagate]
		s.nextPropagate++

		var toScan []int
		if lit > 0 {
			toScan = s.negative[svar(lit)]
		} else {
			toScan = s.positive[svar(lit)]
		}

		for _, ci := range toScan {
			clause := s.signed[ci]
			someTrue := false
			undefined := 0
			var lastUndefined signedLiteral

			for _, cl := range clause {
				switch s.valueOf(cl) {
				case valTrue:
					someTrue = true
				case valNone:
					undefined++
					lastUndefined = cl
				}
				if someTrue {
					break
				}
			}

			if !someTrue && undefined == 0 {
				s.registerConflict(clause)
				return true
			}
			if !someTrue && undefined == 1 {
				s.setTrue(lastUndefined)
			}
		}
	}
	return false
}

// backtrack unwinds the stack to the last decision and flips it.
func (s *Solver) backtrack() {
	i := len(s.stack) - 1
	var lit signedLiteral
	for s.stack[i] != decisionMark {
		lit = s.stack[i]
		s.model[svar(lit)] = valNone
		s.stack = s.stack[:i]
		i--
	}
	s.stack = s.stack[:i]
	s.decisionLevel--
	s.nextPropagate = len(s.stack)
	s.setTrue(-lit)
}

// nextDecision picks the undefined variable with the highest activity,
// preferring whichever polarity has accrued more; returns 0 if every
// variable is already assigned.
func (s *Solver) nextDecision() signedLiteral {
	best := 0.0
	var choice signedLiteral
	for v := 1; v <= s.numVars; v++ {
		if s.model[v] != valNone {
			continue
		}
		if s.positiveActivity[v] >= best {
			best = s.positiveActivity[v]
			choice = signedLiteral(v)
		}
		if s.negativeActivity[v] >= best {
			best = s.negativeActivity[v]
			choice = -signedLiteral(v)
		}
	}
	return choice
}

// checkUnitClauses seeds the model from every originally-unit clause,
// failing immediately if two disagree or a clause is empty.
func (s *Solver) checkUnitClauses() bool {
	for _, clause := range s.signed {
		if len(clause) == 0 {
			return false
		}
		if len(clause) == 1 {
			lit := clause[0]
			switch s.valueOf(lit) {
			case valFalse:
				return false
			case valNone:
				s.setTrue(lit)
			}
		}
	}
	return true
}

// Solve runs DPLL to completion and reports satisfiability. When
// satisfiable, the returned model is 1-indexed by atom+1 (index 0
// unused) with entries in {0, 1}; unconstrained atoms default to 0.
func (s *Solver) Solve() (bool, []int) {
	if !s.checkUnitClauses() {
		return false, nil
	}

	for {
		for s.propagateConflict() {
			if s.decisionLevel == 0 {
				return false, nil
			}
			s.backtrack()
		}
		decision := s.nextDecision()
		if decision == 0 {
			return true, s.finalModel()
		}
		s.stack = append(s.stack, decisionMark)
		s.nextPropagate++
		s.decisionLevel++
		s.setTrue(decision)
	}
}

func (s *Solver) finalModel() []int {
	out := make([]int, s.numVars+1)
	for v := 1; v <= s.numVars; v++ {
		if s.model[v] == valTrue {
			out[v] = 1
		}
	}
	return out
}

// Sat is a convenience wrapper for callers that only need
// satisfiability, not the witnessing model.
func Sat(cnf CNF) bool {
	n := cnf.AtomCount()
	ok, _ := NewSolver(cnf, n).Solve()
	return ok
}
