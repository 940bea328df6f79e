package mm

// RPNStep is one node of a reverse-Polish derivation tree: either a
// direct reference to a mandatory hypothesis (a leaf, when the
// expression is literally that hypothesis's content) or the application
// of a syntax axiom, whose Args name the child nodes (by index into the
// owning slice) that supply its substitution.
type RPNStep struct {
	// Hyp is set when this step is a leaf produced by a mandatory
	// hypothesis rather than a syntax axiom.
	Hyp *Hypothesis

	// Axiom is set when this step applies a syntax axiom; Args holds the
	// indices, into the same RPN slice, of the child steps supplying the
	// axiom's pattern variables, in the order those variables occur in
	// the axiom's conclusion.
	Axiom *Assertion
	Args  []int
}

// RPN is the reverse-Polish (post-order) form of an expression's
// derivation against the syntax axioms: a sequence of steps where each
// step's Args refer only to earlier indices, and the last step is the
// root.
type RPN []RPNStep
