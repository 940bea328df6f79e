package definition

import (
	"testing"

	"github.com/mm-go/verifier/internal/mm"
)

// buildEqDatabase builds a database with a "wff" grammar, a binary
// equality-shaped constructor "<->", and the three axioms that make it
// an equality constructor under FindEqualityConstructors: reflexivity
// (p <-> p), symmetry (p <-> q => q <-> p) and transitivity
// (p <-> q & q <-> r => p <-> r).
func buildEqDatabase(t *testing.T) (db *mm.Database, eqv *mm.Assertion) {
	t.Helper()
	db = mm.NewDatabase()
	wff := db.AddConstant("wff")
	iff := db.AddConstant("<->")
	p := db.AddVariable("p")
	q := db.AddVariable("q")
	r := db.AddVariable("r")

	wp := &mm.Hypothesis{Label: "wp", Kind: mm.Floating, Expr: mm.Expression{wff, p}, Var: p}
	wq := &mm.Hypothesis{Label: "wq", Kind: mm.Floating, Expr: mm.Expression{wff, q}, Var: q}
	wr := &mm.Hypothesis{Label: "wr", Kind: mm.Floating, Expr: mm.Expression{wff, r}, Var: r}

	eqv = &mm.Assertion{Label: "wb", Conclusion: mm.Expression{wff, iff, p, q}, Mandatory: []*mm.Hypothesis{wp, wq}, Kind: mm.KindAxiom}
	db.AddAssertion(eqv)

	hypStepP := mm.RPNStep{Hyp: wp}
	hypStepQ := mm.RPNStep{Hyp: wq}
	hypStepR := mm.RPNStep{Hyp: wr}
	eqvStep := func(a, b int) mm.RPNStep { return mm.RPNStep{Axiom: eqv, Args: []int{a, b}} }

	refl := &mm.Assertion{Label: "bid-refl", Conclusion: mm.Expression{wff, iff, p, p}, Mandatory: []*mm.Hypothesis{wp}, Kind: mm.KindAxiom}
	refl.ConclusionRPN = mm.RPN{hypStepP, hypStepP, eqvStep(0, 1)}
	db.AddAssertion(refl)

	symHyp := &mm.Hypothesis{Label: "bi-sym-hyp", Kind: mm.Essential, Expr: mm.Expression{wff, iff, p, q}}
	sym := &mm.Assertion{
		Label:      "bid-sym",
		Conclusion: mm.Expression{wff, iff, q, p},
		Mandatory:  []*mm.Hypothesis{wp, wq, symHyp},
		Kind:       mm.KindAxiom,
	}
	sym.HypRPN = map[*mm.Hypothesis]mm.RPN{symHyp: {hypStepP, hypStepQ, eqvStep(0, 1)}}
	sym.ConclusionRPN = mm.RPN{hypStepQ, hypStepP, eqvStep(0, 1)}
	db.AddAssertion(sym)

	transHyp1 := &mm.Hypothesis{Label: "bi-trans-hyp1", Kind: mm.Essential, Expr: mm.Expression{wff, iff, p, q}}
	transHyp2 := &mm.Hypothesis{Label: "bi-trans-hyp2", Kind: mm.Essential, Expr: mm.Expression{wff, iff, q, r}}
	trans := &mm.Assertion{
		Label:      "bid-trans",
		Conclusion: mm.Expression{wff, iff, p, r},
		Mandatory:  []*mm.Hypothesis{wp, wq, wr, transHyp1, transHyp2},
		Kind:       mm.KindAxiom,
	}
	trans.HypRPN = map[*mm.Hypothesis]mm.RPN{
		transHyp1: {hypStepP, hypStepQ, eqvStep(0, 1)},
		transHyp2: {hypStepQ, hypStepR, eqvStep(0, 1)},
	}
	trans.ConclusionRPN = mm.RPN{hypStepP, hypStepR, eqvStep(0, 1)}
	db.AddAssertion(trans)

	return db, eqv
}

func TestFindEqualityConstructors_RecognisesCompleteTriple(t *testing.T) {
	db, eqv := buildEqDatabase(t)
	result := FindEqualityConstructors(db)
	if !result[eqv] {
		t.Fatal("expected <-> to be recognised as an equality constructor")
	}
}

func TestFindEqualityConstructors_IncompleteTripleNotRecognised(t *testing.T) {
	db := mm.NewDatabase()
	wff := db.AddConstant("wff")
	iff := db.AddConstant("<->")
	p := db.AddVariable("p")
	wp := &mm.Hypothesis{Label: "wp", Kind: mm.Floating, Expr: mm.Expression{wff, p}, Var: p}
	eqv := &mm.Assertion{Label: "wb", Conclusion: mm.Expression{wff, iff, p, p}, Mandatory: []*mm.Hypothesis{wp}}
	db.AddAssertion(eqv)
	refl := &mm.Assertion{Label: "bid-refl", Conclusion: mm.Expression{wff, iff, p, p}, Mandatory: []*mm.Hypothesis{wp}}
	refl.ConclusionRPN = mm.RPN{{Hyp: wp}, {Hyp: wp}, {Axiom: eqv, Args: []int{0, 1}}}
	db.AddAssertion(refl)

	result := FindEqualityConstructors(db)
	if result[eqv] {
		t.Fatal("only reflexivity was witnessed; <-> must not be recognised yet")
	}
}

// definitionFixture is a df- candidate shaped "wi3(q, r) <-> x": the
// defined syntax wi3 applied to bare variables q and r on the LHS,
// equated to x (a dummy variable) on the RHS.
type definitionFixture struct {
	ass, eqv, ctor *mm.Assertion
	q, r, x        *mm.Symbol
	wq, wr, wx     *mm.Hypothesis
}

func buildDefinitionFixture() *definitionFixture {
	db := mm.NewDatabase()
	wff := db.AddConstant("wff")
	iff := db.AddConstant("<->")
	q := db.AddVariable("q")
	r := db.AddVariable("r")
	x := db.AddVariable("x")

	wq := &mm.Hypothesis{Label: "wq", Kind: mm.Floating, Expr: mm.Expression{wff, q}, Var: q}
	wr := &mm.Hypothesis{Label: "wr", Kind: mm.Floating, Expr: mm.Expression{wff, r}, Var: r}
	wx := &mm.Hypothesis{Label: "wx", Kind: mm.Floating, Expr: mm.Expression{wff, x}, Var: x}

	eqv := &mm.Assertion{Label: "wb", Conclusion: mm.Expression{wff, iff, q, r}}
	ctor := &mm.Assertion{Label: "wi3", Conclusion: mm.Expression{wff, q, r}}

	ass := &mm.Assertion{
		Label:      "df-i3",
		Conclusion: mm.Expression{wff, iff, q, r, x},
		Mandatory:  []*mm.Hypothesis{wq, wr, wx},
	}
	// RPN: [q, r, wi3(0,1), x, eqv(2,3)] — LHS = wi3(q, r), RHS = x.
	ass.ConclusionRPN = mm.RPN{
		{Hyp: wq},
		{Hyp: wr},
		{Axiom: ctor, Args: []int{0, 1}},
		{Hyp: wx},
		{Axiom: eqv, Args: []int{2, 3}},
	}

	return &definitionFixture{ass: ass, eqv: eqv, ctor: ctor, q: q, r: r, x: x, wq: wq, wr: wr, wx: wx}
}

func TestCheck_AcceptsSoundDefinition(t *testing.T) {
	fx := buildDefinitionFixture()
	equalities := map[*mm.Assertion]bool{fx.eqv: true}

	xType := fx.wx.Expr[0]
	bound := map[*mm.Symbol]bool{xType: true}
	fx.ass.Disjoint = []mm.DisjointVars{
		mm.NewDisjointVars(fx.q, fx.x),
		mm.NewDisjointVars(fx.r, fx.x),
	}

	result, diag := Check(fx.ass, equalities, bound)
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if result.Ctor != fx.ctor {
		t.Errorf("Ctor = %v, want %v", result.Ctor, fx.ctor)
	}
	if !result.Dummy[fx.x] {
		t.Error("x should be recorded as dummy")
	}
}

func TestCheck_RejectsCircularDefinition(t *testing.T) {
	fx := buildDefinitionFixture()
	equalities := map[*mm.Assertion]bool{fx.eqv: true}
	bound := map[*mm.Symbol]bool{fx.wx.Expr[0]: true}
	fx.ass.Disjoint = []mm.DisjointVars{
		mm.NewDisjointVars(fx.q, fx.x),
		mm.NewDisjointVars(fx.r, fx.x),
	}

	// Replace the RHS (index 3, x) with another application of ctor,
	// making the definition circular.
	fx.ass.ConclusionRPN = mm.RPN{
		{Hyp: fx.wq},
		{Hyp: fx.wr},
		{Axiom: fx.ctor, Args: []int{0, 1}},
		{Axiom: fx.ctor, Args: []int{0, 1}},
		{Axiom: fx.ass.ConclusionRPN[len(fx.ass.ConclusionRPN)-1].Axiom, Args: []int{2, 3}},
	}

	_, diag := Check(fx.ass, equalities, bound)
	if diag == nil {
		t.Fatal("expected a circularity diagnostic")
	}
	if diag.Rule != "non-circularity" {
		t.Errorf("Rule = %q, want non-circularity", diag.Rule)
	}
}

func TestCheck_RejectsUnboundDummyVariable(t *testing.T) {
	fx := buildDefinitionFixture()
	equalities := map[*mm.Assertion]bool{fx.eqv: true}
	fx.ass.Disjoint = []mm.DisjointVars{
		mm.NewDisjointVars(fx.q, fx.x),
		mm.NewDisjointVars(fx.r, fx.x),
	}

	_, diag := Check(fx.ass, equalities, map[*mm.Symbol]bool{})
	if diag == nil {
		t.Fatal("expected a dummy-bound diagnostic")
	}
	if diag.Rule != "dummy-bound" {
		t.Errorf("Rule = %q, want dummy-bound", diag.Rule)
	}
}

func TestCheck_RejectsMissingDisjointRestriction(t *testing.T) {
	fx := buildDefinitionFixture()
	equalities := map[*mm.Assertion]bool{fx.eqv: true}
	bound := map[*mm.Symbol]bool{fx.wx.Expr[0]: true}
	// No $d x q or $d x r recorded: rule 4 should fail.

	_, diag := Check(fx.ass, equalities, bound)
	if diag == nil {
		t.Fatal("expected a disjoint-variables diagnostic")
	}
	if diag.Rule != "disjoint-variables" {
		t.Errorf("Rule = %q, want disjoint-variables", diag.Rule)
	}
}

func TestCheck_RejectsNonEqualityRoot(t *testing.T) {
	fx := buildDefinitionFixture()
	_, diag := Check(fx.ass, map[*mm.Assertion]bool{}, map[*mm.Symbol]bool{})
	if diag == nil {
		t.Fatal("expected an equality-root diagnostic")
	}
	if diag.Rule != "equality-root" {
		t.Errorf("Rule = %q, want equality-root", diag.Rule)
	}
}
