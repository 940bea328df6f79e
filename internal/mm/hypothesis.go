package mm

// HypKind distinguishes a floating (type-declaring) hypothesis from an
// essential one.
type HypKind int

const (
	// Floating hypotheses have exactly two symbols: a type code followed
	// by a single variable.
	Floating HypKind = iota
	// Essential hypotheses carry an arbitrary expression.
	Essential
)

// Hypothesis is a pair (expression, kind) keyed by a label drawn from the
// shared label namespace. Hypotheses are append-only once created; a
// scope pop removes them from the active scope but never from the
// database's hypothesis table, so assertions that already captured a
// reference to one keep it valid (Design Note "Iterator invalidation in
// scope-bound vectors").
type Hypothesis struct {
	Label string
	Kind  HypKind
	Expr  Expression

	// Var is set only for Floating hypotheses: the variable it types.
	Var *Symbol
}

// DisjointVars is an unordered pair of distinct variables whose
// pairwise-disjoint substitution is required wherever the enclosing
// assertion is applied. Stored with First's VarID < Second's VarID so
// that two DisjointVars values describing the same pair compare equal.
type DisjointVars struct {
	First, Second *Symbol
}

// NewDisjointVars builds a DisjointVars with a canonical (lower id
// first) ordering.
func NewDisjointVars(a, b *Symbol) DisjointVars {
	if a.VarID > b.VarID {
		a, b = b, a
	}
	return DisjointVars{First: a, Second: b}
}
