package propctor

import (
	"testing"

	"github.com/mm-go/verifier/internal/definition"
	"github.com/mm-go/verifier/internal/mm"
	"github.com/mm-go/verifier/internal/sat"
)

// propFixture builds a tiny propositional calculus: wff, variables ph
// and ps, the primitive connectives wi (implication) and wn (negation),
// and a defined connective wa ("or"), df-or: (ph \/ ps) <-> (-. ph -> ps).
type propFixture struct {
	db         *mm.Database
	wi, wn, wa *mm.Assertion
	ph, ps     *mm.Symbol
	wph, wps   *mm.Hypothesis
}

func buildPropFixture() *propFixture {
	db := mm.NewDatabase()
	wff := db.AddConstant("wff")
	arrow := db.AddConstant("->")
	not := db.AddConstant("-.")
	or := db.AddConstant("\\/")
	iff := db.AddConstant("<->")
	ph := db.AddVariable("ph")
	ps := db.AddVariable("ps")

	wph := &mm.Hypothesis{Label: "wph", Kind: mm.Floating, Expr: mm.Expression{wff, ph}, Var: ph}
	wps := &mm.Hypothesis{Label: "wps", Kind: mm.Floating, Expr: mm.Expression{wff, ps}, Var: ps}

	wi := &mm.Assertion{Label: "wi", Conclusion: mm.Expression{wff, arrow, ph, ps}, Mandatory: []*mm.Hypothesis{wph, wps}, Kind: mm.KindAxiom}
	db.AddAssertion(wi)
	wn := &mm.Assertion{Label: "wn", Conclusion: mm.Expression{wff, not, ph}, Mandatory: []*mm.Hypothesis{wph}, Kind: mm.KindAxiom}
	db.AddAssertion(wn)
	wa := &mm.Assertion{Label: "wo", Conclusion: mm.Expression{wff, or, ph, ps}, Mandatory: []*mm.Hypothesis{wph, wps}, Kind: mm.KindAxiom}
	db.AddAssertion(wa)

	eqv := &mm.Assertion{Label: "wb", Conclusion: mm.Expression{wff, iff, ph, ps}, Mandatory: []*mm.Hypothesis{wph, wps}, Kind: mm.KindAxiom}
	db.AddAssertion(eqv)

	return &propFixture{db: db, wi: wi, wn: wn, wa: wa, ph: ph, ps: ps, wph: wph, wps: wps}
}

func TestNewTable_SeedsPrimitivesByLabel(t *testing.T) {
	fx := buildPropFixture()
	table := NewTable(fx.db)

	wi, ok := table.Lookup(fx.wi)
	if !ok {
		t.Fatal("wi should be seeded as a primitive")
	}
	if wi.ArgCount != 2 || len(wi.TruthTable) != 4 {
		t.Fatalf("wi = %+v, want argcount 2, table of length 4", wi)
	}
	if wi.TruthTable[1] {
		t.Error("wi(T, F) should be false")
	}
	if !wi.TruthTable[3] {
		t.Error("wi(T, T) should be true")
	}

	wn, ok := table.Lookup(fx.wn)
	if !ok {
		t.Fatal("wn should be seeded as a primitive")
	}
	if wn.TruthTable[0] != true || wn.TruthTable[1] != false {
		t.Errorf("wn truth table = %v, want [true false]", wn.TruthTable)
	}
}

// buildOrDefinition returns a definition.Result for df-or: wo(ph, ps)
// <-> wi(wn(ph), ps), i.e. (ph \/ ps) <-> (-. ph -> ps).
func buildOrDefinition(fx *propFixture) *definition.Result {
	eqv := fx.db.AssertionByLabel("wb")
	ass := &mm.Assertion{
		Label:     "df-or",
		Mandatory: []*mm.Hypothesis{fx.wph, fx.wps},
	}
	// RPN: [ph, ps, wo(0,1), ph, wn(3), ps, wi(4,5), eqv(2,6)]
	ass.ConclusionRPN = mm.RPN{
		{Hyp: fx.wph},                          // 0: ph
		{Hyp: fx.wps},                          // 1: ps
		{Axiom: fx.wa, Args: []int{0, 1}},      // 2: wo(ph, ps)
		{Hyp: fx.wph},                          // 3: ph
		{Axiom: fx.wn, Args: []int{3}},         // 4: -. ph
		{Hyp: fx.wps},                          // 5: ps
		{Axiom: fx.wi, Args: []int{4, 5}},      // 6: -. ph -> ps
		{Axiom: eqv, Args: []int{2, 6}},        // 7: wo(...) <-> (...)
	}
	return &definition.Result{
		Assertion: ass,
		Ctor:      fx.wa,
		LHSVars:   []*mm.Symbol{fx.ph, fx.ps},
		Dummy:     map[*mm.Symbol]bool{},
		RHSRoot:   6,
	}
}

func TestExtend_EvaluatesDefinedConnective(t *testing.T) {
	fx := buildPropFixture()
	table := NewTable(fx.db)

	errs := table.Extend([]*definition.Result{buildOrDefinition(fx)})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	or, ok := table.Lookup(fx.wa)
	if !ok {
		t.Fatal("wo should now be registered")
	}
	want := []bool{false, true, true, true} // F F->F, T F->T, F T->T, T T->T
	for i, w := range want {
		if or.TruthTable[i] != w {
			t.Errorf("or.TruthTable[%d] = %v, want %v", i, or.TruthTable[i], w)
		}
	}
}

func TestExtend_ReportsUnresolvableDefinition(t *testing.T) {
	fx := buildPropFixture()
	table := NewTable(fx.db)

	d := buildOrDefinition(fx)
	d.LHSVars = []*mm.Symbol{fx.ph} // drop ps from the known arguments

	errs := table.Extend([]*definition.Result{d})
	if len(errs) == 0 {
		t.Fatal("expected an error: ps is now out of scope for the truth table")
	}
}

func TestCheckValid_DetectsPropositionalTautology(t *testing.T) {
	fx := buildPropFixture()
	table := NewTable(fx.db)

	// ph -> ph, as a theorem with no essential hypotheses.
	thm := &mm.Assertion{Label: "id", Mandatory: []*mm.Hypothesis{fx.wph}}
	thm.ConclusionRPN = mm.RPN{
		{Hyp: fx.wph},
		{Hyp: fx.wph},
		{Axiom: fx.wi, Args: []int{0, 1}},
	}

	valid, ok := table.CheckValid(thm)
	if !ok {
		t.Fatal("ph -> ph should be checkable")
	}
	if !valid {
		t.Error("ph -> ph is a tautology and should be valid")
	}
}

func TestCheckValid_DetectsNonTautology(t *testing.T) {
	fx := buildPropFixture()
	table := NewTable(fx.db)

	// ph -> ps, with no hypotheses: not a tautology.
	thm := &mm.Assertion{Label: "bogus", Mandatory: []*mm.Hypothesis{fx.wph, fx.wps}}
	thm.ConclusionRPN = mm.RPN{
		{Hyp: fx.wph},
		{Hyp: fx.wps},
		{Axiom: fx.wi, Args: []int{0, 1}},
	}

	valid, ok := table.CheckValid(thm)
	if !ok {
		t.Fatal("ph -> ps should be checkable")
	}
	if valid {
		t.Error("ph -> ps is not a tautology and should not be reported valid")
	}
}

func TestCNFOfAssertion_UsesHypothesesAsUnitClauses(t *testing.T) {
	fx := buildPropFixture()
	table := NewTable(fx.db)

	// Modus ponens: hyp1 = ph, hyp2 = ph -> ps, conclusion = ps. Valid,
	// so hyp1 & hyp2 & not-ps must be unsatisfiable.
	hyp1 := &mm.Hypothesis{Label: "hyp1", Kind: mm.Essential}
	hyp2 := &mm.Hypothesis{Label: "hyp2", Kind: mm.Essential}
	thm := &mm.Assertion{Label: "mp", Mandatory: []*mm.Hypothesis{fx.wph, fx.wps, hyp1, hyp2}}
	thm.HypRPN = map[*mm.Hypothesis]mm.RPN{
		hyp1: {{Hyp: fx.wph}},
		hyp2: {{Hyp: fx.wph}, {Hyp: fx.wps}, {Axiom: fx.wi, Args: []int{0, 1}}},
	}
	thm.ConclusionRPN = mm.RPN{{Hyp: fx.wps}}

	cnf, ok := table.CNFOfAssertion(thm)
	if !ok {
		t.Fatal("modus ponens instance should build a CNF")
	}
	if sat.Sat(cnf) {
		t.Error("hyp1 & hyp2 & not-ps should be unsatisfiable: modus ponens is valid")
	}

	valid, ok := table.CheckValid(thm)
	if !ok || !valid {
		t.Errorf("modus ponens should be reported valid, got valid=%v ok=%v", valid, ok)
	}
}
