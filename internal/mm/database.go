package mm

// Database is the arena that owns every symbol, hypothesis and assertion
// produced while reading one Metamath file. It grows monotonically; no
// reference into it is invalidated by later growth (spec.md §5).
//
// A Database is not safe for concurrent use; the verifier owns exactly
// one per invocation (Design Note "Global mutable database").
type Database struct {
	Constants map[string]*Symbol
	Variables map[string]*Symbol
	Labels    map[string]struct{}

	// VarsByID preserves declaration order for iteration; index 0 is
	// unused (variable ids start at 1).
	VarsByID []*Symbol

	Hyps map[string]*Hypothesis

	// Assertions is indexed by Number-1; AssertionByNumber must agree
	// with it for every entry (spec.md §8 "Assertion numbering").
	Assertions []*Assertion

	byLabel map[string]*Assertion

	Comments []Comment
}

// Comment is a captured $( ... $) block: its text and the index of the
// next token in the surrounding stream.
type Comment struct {
	Text       string
	FollowedBy int
}

// NewDatabase returns an empty database ready for a fresh read.
func NewDatabase() *Database {
	return &Database{
		Constants: make(map[string]*Symbol),
		Variables: make(map[string]*Symbol),
		Labels:    make(map[string]struct{}),
		VarsByID:  []*Symbol{nil},
		Hyps:      make(map[string]*Hypothesis),
		byLabel:   make(map[string]*Assertion),
	}
}

// NameTaken reports whether name is already a constant, variable or
// label (spec.md §3 invariant: three disjoint namespaces).
func (db *Database) NameTaken(name string) bool {
	if _, ok := db.Constants[name]; ok {
		return true
	}
	if _, ok := db.Variables[name]; ok {
		return true
	}
	_, ok := db.Labels[name]
	return ok
}

// AddConstant interns name as a new constant. Caller must have already
// checked NameTaken.
func (db *Database) AddConstant(name string) *Symbol {
	s := &Symbol{Name: name, Kind: Constant}
	db.Constants[name] = s
	return s
}

// AddVariable interns name as a new variable with the next declaration
// id. Caller must have already checked NameTaken.
func (db *Database) AddVariable(name string) *Symbol {
	s := &Symbol{Name: name, Kind: Variable, VarID: len(db.VarsByID)}
	db.Variables[name] = s
	db.VarsByID = append(db.VarsByID, s)
	return s
}

// AddLabel reserves name in the label namespace. Caller must have
// already checked NameTaken.
func (db *Database) AddLabel(name string) {
	db.Labels[name] = struct{}{}
}

// AddHypothesis records h under its label. Caller must have already
// reserved the label via AddLabel.
func (db *Database) AddHypothesis(h *Hypothesis) {
	db.Hyps[h.Label] = h
}

// AddAssertion appends a to the assertion table, assigning Number and
// keeping AssertionByNumber/AssertionByLabel consistent.
func (db *Database) AddAssertion(a *Assertion) {
	a.Number = len(db.Assertions) + 1
	db.Assertions = append(db.Assertions, a)
	db.byLabel[a.Label] = a
}

// AssertionByNumber returns the assertion with the given 1-based
// insertion number, or nil if out of range.
func (db *Database) AssertionByNumber(n int) *Assertion {
	if n < 1 || n > len(db.Assertions) {
		return nil
	}
	return db.Assertions[n-1]
}

// AssertionByLabel returns the assertion with the given label, or nil.
func (db *Database) AssertionByLabel(label string) *Assertion {
	return db.byLabel[label]
}
