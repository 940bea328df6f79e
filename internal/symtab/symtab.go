// Package symtab interns the three disjoint name spaces of a Metamath
// database: constants, variables and labels (spec.md §4.2).
package symtab

import "github.com/mm-go/verifier/internal/mm"

// Table wraps a *mm.Database's interning operations with the uniqueness
// checks spec.md §4.2 requires. It does not own the database; it is a
// thin, stateless helper so that the reader and scope packages share one
// enforcement point for name collisions.
type Table struct {
	db *mm.Database
}

// New wraps db for interning.
func New(db *mm.Database) *Table { return &Table{db: db} }

// AddConstant interns name as a constant. Fails if name is already a
// constant, variable or label.
func (t *Table) AddConstant(name string) (*mm.Symbol, error) {
	if t.db.NameTaken(name) {
		return nil, &DuplicateNameError{Name: name}
	}
	return t.db.AddConstant(name), nil
}

// AddVariable interns name as a variable. Fails if name is already a
// constant, variable or label.
func (t *Table) AddVariable(name string) (*mm.Symbol, error) {
	if t.db.NameTaken(name) {
		return nil, &DuplicateNameError{Name: name}
	}
	return t.db.AddVariable(name), nil
}

// AddLabel reserves name in the label namespace. Fails if name is
// already a constant, variable or label.
func (t *Table) AddLabel(name string) error {
	if t.db.NameTaken(name) {
		return &DuplicateNameError{Name: name}
	}
	t.db.AddLabel(name)
	return nil
}

// DuplicateNameError reports an attempt to reuse a name already present
// in one of the three namespaces.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return "name already declared: " + e.Name
}
