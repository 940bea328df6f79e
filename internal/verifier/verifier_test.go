package verifier

import (
	"testing"
	"testing/fstest"

	"github.com/mm-go/verifier/internal/mm"
)

// basicGrammar is a self-contained propositional fragment: wff grammar,
// the three primitive connectives, and one trivial theorem, used as the
// common fixture for pipeline-wiring tests.
const basicGrammar = `
$c wff ( ) -> -. T. $.
$v ph ps $.
wph $f wff ph $.
wps $f wff ps $.
wi $a wff ( ph -> ps ) $.
wn $a wff -. ph $.
wtru $a wff T. $.

id $p wff ( ph -> ph ) $= wph wph wi $.
`

func buildFS(src string) fstest.MapFS {
	return fstest.MapFS{"db.mm": &fstest.MapFile{Data: []byte(src)}}
}

func TestVerify_ReadsAGrammarAndTheorem(t *testing.T) {
	res, err := Verify(buildFS(basicGrammar), "db.mm")
	if err != nil {
		t.Fatalf("Verify returned fatal error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected OK, got failures: %v", res.PropositionalFailures)
	}

	wi := res.DB.AssertionByLabel("wi")
	if wi == nil {
		t.Fatal("wi should be registered")
	}
	if wi.ConclusionRPN == nil {
		t.Error("wi's conclusion should have been parsed into reverse-Polish form")
	}

	id := res.DB.AssertionByLabel("id")
	if id == nil {
		t.Fatal("id should be registered")
	}
	if id.ConclusionRPN == nil {
		t.Error("id's conclusion should have been parsed into reverse-Polish form")
	}

	ctor, ok := res.Propctors.Lookup(wi)
	if !ok {
		t.Fatal("wi should be seeded into the propositional table")
	}
	if ctor.ArgCount != 2 {
		t.Errorf("wi.ArgCount = %d, want 2", ctor.ArgCount)
	}
}

func TestVerify_ChecksPropositionalValidityWhenRequested(t *testing.T) {
	res, err := Verify(buildFS(basicGrammar), "db.mm", WithPropositionalCheck(true))
	if err != nil {
		t.Fatalf("Verify returned fatal error: %v", err)
	}
	id := res.DB.AssertionByLabel("id")
	if id.Kind != mm.KindPropositional {
		t.Errorf("id's Kind = %v, want KindPropositional", id.Kind)
	}
	if !res.OK() {
		t.Fatalf("ph -> ph is a tautology, expected no propositional failures, got %v", res.PropositionalFailures)
	}
}

func TestVerify_ReportsFatalErrorOnBadStatement(t *testing.T) {
	src := `
$c wff $.
$v ph $.
wph $f wff ph $.
bogus $a wff ph
`
	_, err := Verify(buildFS(src), "db.mm")
	if err == nil {
		t.Fatal("expected a fatal error on an unterminated $a statement")
	}
}

func TestVerify_ProgressCallbackReachesDone(t *testing.T) {
	var phases []string
	_, err := Verify(buildFS(basicGrammar), "db.mm", WithProgress(func(phase string, fraction float64) {
		phases = append(phases, phase)
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(phases) == 0 || phases[len(phases)-1] != "done" {
		t.Errorf("phases = %v, want the last phase to be \"done\"", phases)
	}
}

func TestVerify_WithSectionStopsBeforeMarkedComment(t *testing.T) {
	src := basicGrammar + `
$( $t Section: irrelevant typesetting comment $)
bogus-after-cutoff $a wff ph -. $.
`
	res, err := Verify(buildFS(src), "db.mm", WithSection("ignored-prefix"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DB.AssertionByLabel("bogus-after-cutoff") != nil {
		t.Error("statement after the $t comment should not have been read")
	}
	if res.DB.AssertionByLabel("id") == nil {
		t.Error("statements before the cutoff should still be read")
	}
}

// TestVerify_ParsesAliasedTurnstileConclusions exercises the canonical
// Metamath setup, where logical assertions carry a '|-' conclusion
// declared an alias of 'wff' via a $j convention comment, and the
// syntax parser must normalize it to parse against the wff grammar.
func TestVerify_ParsesAliasedTurnstileConclusions(t *testing.T) {
	src := `
$( $j syntax 'wff'; syntax '|-' as 'wff'; $)
$c wff |- ( ) -> $.
$v ph ps $.
wph $f wff ph $.
wps $f wff ps $.
wi $a wff ( ph -> ps ) $.
ax-1 $a |- ( ph -> ph ) $.
`
	res, err := Verify(buildFS(src), "db.mm")
	if err != nil {
		t.Fatalf("Verify returned fatal error: %v", err)
	}
	ax1 := res.DB.AssertionByLabel("ax-1")
	if ax1 == nil {
		t.Fatal("ax-1 should be registered")
	}
	if ax1.ConclusionRPN == nil {
		t.Fatal("ax-1's aliased '|-' conclusion should have parsed against the wff syntax axioms")
	}
	last := ax1.ConclusionRPN[len(ax1.ConclusionRPN)-1]
	if last.Axiom == nil || last.Axiom.Label != "wi" {
		t.Errorf("ax-1's root derivation = %+v, want the wi syntax axiom", last)
	}
}

// TestVerify_ChecksDefinitionBoundByConventionComment exercises §4.9's
// alternate definition trigger: a constructor tied to its defining
// assertion by a `definition 'df' for 'sa';` comment is run through the
// six-rule check even though the assertion's own label does not start
// with "df-". wa-def's conclusion deliberately doesn't have the
// LHS-equals-RHS shape Check requires, so it is expected to fail one of
// the rules; what this test actually guards is that it is attempted at
// all, where before this fix a non-"df-" label bound only by comment
// was silently skipped.
func TestVerify_ChecksDefinitionBoundByConventionComment(t *testing.T) {
	src := `
$( $j definition 'wa-def' for 'wn'; $)
$c wff -. $.
$v ph $.
wph $f wff ph $.
wn $a wff -. ph $.

wa-def $p wff -. ph $= wph wn $.
`
	res, err := Verify(buildFS(src), "db.mm")
	if err != nil {
		t.Fatalf("Verify returned fatal error: %v", err)
	}
	attempted := false
	for _, d := range res.DefinitionFailures {
		if d.Label == "wa-def" {
			attempted = true
		}
	}
	for _, d := range res.Definitions {
		if d.Assertion.Label == "wa-def" {
			attempted = true
		}
	}
	if !attempted {
		t.Error("wa-def should have been run through definition.Check via its comment binding, even without a df- label")
	}
}
