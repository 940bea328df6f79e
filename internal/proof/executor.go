package proof

import (
	"fmt"

	"github.com/mm-go/verifier/internal/mm"
)

// Substitution maps a variable to the expression it stands for within
// one assertion application. Substitutions are rebuilt fresh for every
// StepAssertion step (spec.md §3: "transient").
type Substitution map[*mm.Symbol]mm.Expression

// Execute runs steps on a working stack of expressions and a saved-steps
// vector, per the table in spec.md §4.6. theoremDisjoint is the disjoint
// variable restriction set of the theorem being proved, used to check
// every assertion application's own disjoint-variable pairs against it
// (spec.md §4.7). The proof is valid iff the stack ends with exactly one
// item.
func Execute(steps []mm.ProofStep, theoremDisjoint []mm.DisjointVars) (mm.Expression, error) {
	var stack []mm.Expression
	var saved []mm.Expression

	for _, step := range steps {
		switch step.Kind {
		case mm.StepHyp:
			stack = append(stack, step.Hyp.Expr)

		case mm.StepAssertion:
			result, newStack, err := applyAssertion(step.Ass, stack, theoremDisjoint)
			if err != nil {
				return nil, err
			}
			stack = append(newStack, result)

		case mm.StepLoad:
			if step.Index < 0 || step.Index >= len(saved) {
				return nil, fmt.Errorf("load step index %d out of range (%d steps saved)", step.Index, len(saved))
			}
			stack = append(stack, saved[step.Index])

		case mm.StepSave:
			if len(stack) == 0 {
				return nil, fmt.Errorf("no step to save")
			}
			saved = append(saved, stack[len(stack)-1])

		default:
			return nil, fmt.Errorf("invalid proof step")
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("proof does not end with exactly one item on the stack (has %d)", len(stack))
	}

	return stack[0], nil
}

// applyAssertion unifies a's mandatory hypotheses against the top of
// stack (last hypothesis matches the topmost item), checks a's disjoint
// restrictions, and returns the substituted conclusion together with the
// stack popped of the consumed items.
func applyAssertion(a *mm.Assertion, stack []mm.Expression, theoremDisjoint []mm.DisjointVars) (mm.Expression, []mm.Expression, error) {
	k := len(a.Mandatory)
	if len(stack) < k {
		return nil, nil, fmt.Errorf("stack underflow applying %s: need %d items, have %d", a.Label, k, len(stack))
	}

	base := len(stack) - k
	subst := make(Substitution)

	for i, h := range a.Mandatory {
		item := stack[base+i]

		switch h.Kind {
		case mm.Floating:
			if item.TypeCode() != h.Expr[0] {
				return nil, nil, fmt.Errorf("type-code mismatch applying %s: hypothesis %s expects %s, stack has %s",
					a.Label, h.Label, h.Expr[0].Name, item.TypeCode().Name)
			}
			subst[h.Var] = item[1:].Clone()

		case mm.Essential:
			expanded := substitute(h.Expr, subst)
			if !expanded.Equal(item) {
				return nil, nil, fmt.Errorf("essential hypothesis %s of %s does not match stack item", h.Label, a.Label)
			}
		}
	}

	if err := checkDisjoint(a, subst, theoremDisjoint); err != nil {
		return nil, nil, err
	}

	result := substitute(a.Conclusion, subst)
	return result, stack[:base], nil
}

// substitute rewrites expr, replacing every variable present in subst
// with its bound expression and leaving everything else (constants,
// unbound variables) untouched.
func substitute(expr mm.Expression, subst Substitution) mm.Expression {
	out := make(mm.Expression, 0, len(expr))
	for _, sym := range expr {
		if repl, ok := subst[sym]; ok {
			out = append(out, repl...)
			continue
		}
		out = append(out, sym)
	}
	return out
}

// checkDisjoint implements spec.md §4.7: for every restriction pair
// (x, y) of the applied assertion a, let V1 = variables(subst(x)),
// V2 = variables(subst(y)); require V1 ∩ V2 = ∅ and every cross pair
// (u, v) to be covered by theoremDisjoint.
func checkDisjoint(a *mm.Assertion, subst Substitution, theoremDisjoint []mm.DisjointVars) error {
	covered := make(map[mm.DisjointVars]struct{}, len(theoremDisjoint))
	for _, d := range theoremDisjoint {
		covered[d] = struct{}{}
	}

	for _, pair := range a.Disjoint {
		v1 := subst[pair.First].Variables()
		v2 := subst[pair.Second].Variables()

		for u := range v1 {
			if _, same := v2[u]; same {
				return fmt.Errorf("substitutions for %s and %s share variable %s, violating disjoint-variable restriction",
					pair.First.Name, pair.Second.Name, u.Name)
			}
		}

		for u := range v1 {
			for v := range v2 {
				if _, ok := covered[mm.NewDisjointVars(u, v)]; !ok {
					return fmt.Errorf("substitution %s:=%v, %s:=%v violates disjoint-variable hypothesis (no restriction on %s, %s)",
						pair.First.Name, subst[pair.First], pair.Second.Name, subst[pair.Second], u.Name, v.Name)
				}
			}
		}
	}

	return nil
}
