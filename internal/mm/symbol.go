// Package mm holds the shared data model of the verifier: symbols,
// expressions, hypotheses, disjoint-variable sets, assertions, proof
// steps and the database that owns them all.
package mm

// SymbolKind distinguishes a constant from a variable.
type SymbolKind int

const (
	// Constant is a math-symbol token declared by $c.
	Constant SymbolKind = iota
	// Variable is a math-symbol token declared by $v.
	Variable
)

// Symbol is a constant or variable interned by identity. Variables carry
// a stable id assigned in declaration order starting at 1; 0 is reserved
// for constants (and for the zero Symbol value).
type Symbol struct {
	Name string
	Kind SymbolKind

	// VarID is nonzero only for variables; it is the declaration-order id.
	VarID int

	// FloatHyp is a slot for the label of a floating hypothesis typing
	// this variable. Nothing in the verifier sets it, so it stays "";
	// the floating hypothesis active for a variable is looked up with
	// scope.Stack.ActiveFloatingHyp instead.
	FloatHyp string
}

// IsVariable reports whether the symbol is a variable.
func (s *Symbol) IsVariable() bool { return s.Kind == Variable }

// Expression is a finite ordered sequence of Symbols whose first element
// is a type-code constant. An empty Expression is just the empty
// sequence; functions that can fail return an error rather than an
// empty Expression.
type Expression []*Symbol

// Empty reports whether e has no symbols.
func (e Expression) Empty() bool { return len(e) == 0 }

// TypeCode returns the leading type-code constant, or nil if e is empty.
func (e Expression) TypeCode() *Symbol {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}

// Equal reports whether e and o name the same symbols in the same order.
func (e Expression) Equal(o Expression) bool {
	if len(e) != len(o) {
		return false
	}
	for i := range e {
		if e[i] != o[i] {
			return false
		}
	}
	return true
}

// Variables returns the set of distinct variable symbols appearing in e.
func (e Expression) Variables() map[*Symbol]struct{} {
	vars := make(map[*Symbol]struct{})
	for _, sym := range e {
		if sym.IsVariable() {
			vars[sym] = struct{}{}
		}
	}
	return vars
}

// Clone returns a copy of e; callers that build substitution results
// must not alias the original backing array.
func (e Expression) Clone() Expression {
	out := make(Expression, len(e))
	copy(out, e)
	return out
}
