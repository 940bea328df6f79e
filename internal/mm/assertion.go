package mm

// AssertionKind classifies how an assertion is used downstream.
type AssertionKind int

const (
	// KindAxiom is a statement introduced by $a.
	KindAxiom AssertionKind = iota
	// KindTheorem is a statement introduced by $p.
	KindTheorem
	// KindTrivial marks a theorem whose proof is a single mandatory
	// hypothesis reference (no real derivation).
	KindTrivial
	// KindPropositional marks an assertion the Propositional Layer has
	// recognised as expressible purely in terms of propositional
	// constructors.
	KindPropositional
)

// Assertion is the record attached to an axiom or theorem (spec.md §3).
type Assertion struct {
	Label      string
	Conclusion Expression

	// Mandatory is ordered outermost frame first, and in declaration
	// order within each frame, per the Assertion Builder (spec.md §4.5).
	Mandatory []*Hypothesis

	// Disjoint holds the restriction pairs computed by the Assertion
	// Builder, already filtered to variables used by this assertion.
	Disjoint []DisjointVars

	// Number is the 1-based insertion index; Database.AssertionByNumber
	// must agree with it.
	Number int

	Kind AssertionKind

	// Proof holds the executed proof-step sequence; nil for axioms and
	// for theorems whose regular proof contained "?".
	Proof []ProofStep

	// Incomplete is set when a regular proof contained the "?" token.
	Incomplete bool

	// ConclusionRPN and HypRPN are populated by the Syntax Parser once
	// the whole file has been read (spec.md §4.8). HypRPN is keyed by
	// the essential hypothesis each entry parses.
	ConclusionRPN RPN
	HypRPN        map[*Hypothesis]RPN
}

// VariablesUsed returns every variable appearing in the conclusion or any
// essential mandatory hypothesis (spec.md §4.5 step 1).
func (a *Assertion) VariablesUsed() map[*Symbol]struct{} {
	vars := a.Conclusion.Variables()
	for _, h := range a.Mandatory {
		if h.Kind == Essential {
			for v := range h.Expr.Variables() {
				vars[v] = struct{}{}
			}
		}
	}
	return vars
}

// EssentialHyps returns the essential hypotheses among Mandatory, in
// order.
func (a *Assertion) EssentialHyps() []*Hypothesis {
	var out []*Hypothesis
	for _, h := range a.Mandatory {
		if h.Kind == Essential {
			out = append(out, h)
		}
	}
	return out
}

// FloatingHyps returns the floating hypotheses among Mandatory, in
// order.
func (a *Assertion) FloatingHyps() []*Hypothesis {
	var out []*Hypothesis
	for _, h := range a.Mandatory {
		if h.Kind == Floating {
			out = append(out, h)
		}
	}
	return out
}
