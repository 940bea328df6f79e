package definition

import "github.com/mm-go/verifier/internal/mm"

// equalityPattern encodes a reverse-Polish block as a sequence of symbolic
// variable-argument slots: a block of length n+1 is n bare-variable
// references followed by one application step, whose n arguments are
// matched positionally against the slot numbers. The same slot number
// occurring in more than one block must resolve to the same variable,
// and every block within one candidate assertion must share the same
// root application (spec.md §4.9 "equality constructor").
type equalityPattern struct {
	name  string
	hyps  [][]int
	concl []int
}

const numEqualityPatterns = 3

var equalityPatterns = [numEqualityPatterns]equalityPattern{
	{name: "reflexivity", concl: []int{1, 1}},
	{name: "symmetry", hyps: [][]int{{1, 2}}, concl: []int{2, 1}},
	{name: "transitivity", hyps: [][]int{{1, 2}, {2, 3}}, concl: []int{1, 3}},
}

// matchPattern tests whether ass's essential hypotheses (in order) and
// conclusion match the given slot pattern, and if so returns the shared
// root assertion all blocks applied.
func matchPattern(ass *mm.Assertion, hypSlots [][]int, conclSlots []int) (*mm.Assertion, bool) {
	essentials := ass.EssentialHyps()
	if len(essentials) != len(hypSlots) {
		return nil, false
	}

	subst := make(map[int]*mm.Symbol)
	var root *mm.Assertion

	matchBlock := func(rpn mm.RPN, slots []int) bool {
		if len(rpn) != len(slots)+1 {
			return false
		}
		last := rpn[len(rpn)-1]
		if last.Axiom == nil || len(last.Args) != len(slots) {
			return false
		}
		if root == nil {
			root = last.Axiom
		} else if root != last.Axiom {
			return false
		}
		for i, slot := range slots {
			idx := last.Args[i]
			if idx < 0 || idx >= len(rpn)-1 || rpn[idx].Hyp == nil {
				return false
			}
			v := rpn[idx].Hyp.Var
			if existing, ok := subst[slot]; ok {
				if existing != v {
					return false
				}
			} else {
				subst[slot] = v
			}
		}
		return true
	}

	for i, h := range essentials {
		rpn, ok := ass.HypRPN[h]
		if !ok || !matchBlock(rpn, hypSlots[i]) {
			return nil, false
		}
	}
	if ass.ConclusionRPN == nil || !matchBlock(ass.ConclusionRPN, conclSlots) {
		return nil, false
	}
	return root, true
}

// FindEqualityConstructors scans every assertion with a populated
// reverse-Polish form and reports the set of root assertions that have
// a witness for all three of reflexivity, symmetry and transitivity
// (spec.md §4.9; grounded on original_source/ass.cpp's Equalities
// builder, which requires a full reflexivity/symmetry/transitivity
// triple before admitting a constructor).
func FindEqualityConstructors(db *mm.Database) map[*mm.Assertion]bool {
	witnessed := make(map[*mm.Assertion][numEqualityPatterns]bool)

	for _, ass := range db.Assertions {
		if ass.ConclusionRPN == nil {
			continue
		}
		for i, p := range equalityPatterns {
			root, ok := matchPattern(ass, p.hyps, p.concl)
			if !ok {
				continue
			}
			w := witnessed[root]
			w[i] = true
			witnessed[root] = w
		}
	}

	result := make(map[*mm.Assertion]bool)
	for root, w := range witnessed {
		complete := true
		for _, found := range w {
			complete = complete && found
		}
		if complete {
			result[root] = true
		}
	}
	return result
}
