package scope

import "github.com/mm-go/verifier/internal/mm"

// BuildAssertion computes mandatory hypotheses, variables used and
// disjoint-variable restrictions for conclusion, as it would appear at
// the current point in s (spec.md §4.5), and returns the assertion ready
// for mm.Database.AddAssertion (which assigns Number).
func (s *Stack) BuildAssertion(label string, conclusion mm.Expression, kind mm.AssertionKind) *mm.Assertion {
	varsUsed := make(map[*mm.Symbol]struct{})
	for v := range conclusion.Variables() {
		varsUsed[v] = struct{}{}
	}

	// Walk frames innermost to outermost, and within a frame walk hyps
	// in reverse declaration order, exactly as scope.cpp's completeass
	// does: an essential hypothesis is always mandatory and contributes
	// its variables to varsUsed immediately, so that an outer floating
	// hypothesis typing one of those variables is correctly recognised
	// as mandatory even though it was declared before the essential
	// hypothesis that made it so. Each mandatory hypothesis found is
	// prepended, which yields final declaration order (outermost first,
	// forward within a frame) once the walk completes.
	var mandatory []*mm.Hypothesis
	for i := len(s.frames) - 1; i >= 0; i-- {
		hyps := s.frames[i].ActiveHyps
		for j := len(hyps) - 1; j >= 0; j-- {
			h := hyps[j]
			switch h.Kind {
			case mm.Essential:
				mandatory = append([]*mm.Hypothesis{h}, mandatory...)
				for v := range h.Expr.Variables() {
					varsUsed[v] = struct{}{}
				}
			case mm.Floating:
				if _, used := varsUsed[h.Var]; used {
					mandatory = append([]*mm.Hypothesis{h}, mandatory...)
				}
			}
		}
	}

	disjoint := s.disjointRestrictions(varsUsed)

	return &mm.Assertion{
		Label:      label,
		Conclusion: conclusion,
		Mandatory:  mandatory,
		Disjoint:   disjoint,
		Kind:       kind,
	}
}

// disjointRestrictions computes, for every active $d set, every
// unordered pair of its members that both lie in varsUsed (spec.md
// §4.5 step 3).
func (s *Stack) disjointRestrictions(varsUsed map[*mm.Symbol]struct{}) []mm.DisjointVars {
	var out []mm.DisjointVars
	for _, f := range s.frames {
		for _, set := range f.Disjoint {
			var filtered []*mm.Symbol
			for v := range set {
				if _, ok := varsUsed[v]; ok {
					filtered = append(filtered, v)
				}
			}
			for i := 0; i < len(filtered); i++ {
				for j := i + 1; j < len(filtered); j++ {
					out = append(out, mm.NewDisjointVars(filtered[i], filtered[j]))
				}
			}
		}
	}
	return out
}
