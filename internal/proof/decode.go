// Package proof decodes regular and compressed Metamath proofs into a
// flat sequence of mm.ProofStep values and executes that sequence on a
// substitution stack (spec.md §4.6, §4.7).
package proof

import (
	"fmt"

	"github.com/mm-go/verifier/internal/mm"
)

// Environment resolves the labels a proof step can reference: an active
// hypothesis or an already-recorded assertion. Satisfied by
// internal/scope.Stack and *mm.Database together (kept as a narrow
// interface here so this package never imports internal/scope).
type Environment interface {
	ActiveHypByLabel(label string) *mm.Hypothesis
	AssertionByLabel(label string) *mm.Assertion
}

// DecodeRegular flattens a regular proof's label tokens into steps. A
// single "?" token is allowed and marks the proof incomplete (a
// warning, not an error); self-reference to theoremLabel is forbidden.
func DecodeRegular(tokens []string, env Environment, theoremLabel string) (steps []mm.ProofStep, incomplete bool, err error) {
	if len(tokens) == 0 {
		return nil, false, fmt.Errorf("no proof for theorem %s", theoremLabel)
	}

	for _, tok := range tokens {
		if tok == "?" {
			incomplete = true
			continue
		}
		if tok == theoremLabel {
			return nil, false, fmt.Errorf("self-reference in proof of %s", theoremLabel)
		}
		step, err := resolveLabel(tok, env)
		if err != nil {
			return nil, false, fmt.Errorf("proof of %s refers to %s which is not an active statement", theoremLabel, tok)
		}
		steps = append(steps, step)
	}

	if incomplete {
		return nil, true, nil
	}
	return steps, false, nil
}

func resolveLabel(label string, env Environment) (mm.ProofStep, error) {
	if h := env.ActiveHypByLabel(label); h != nil {
		return mm.ProofStep{Kind: mm.StepHyp, Hyp: h}, nil
	}
	if a := env.AssertionByLabel(label); a != nil {
		return mm.ProofStep{Kind: mm.StepAssertion, Ass: a}, nil
	}
	return mm.ProofStep{}, fmt.Errorf("unknown label %s", label)
}

// DecodeCompressed flattens a compressed proof. prefixLabels are the
// tokens inside the parenthesised "( L1 L2 ... )" list; mandatory is the
// theorem's mandatory hypotheses, prepended to prefixLabels to form the
// full label prefix per spec.md §4.6. None of prefixLabels may name a
// mandatory hypothesis or the theorem itself.
func DecodeCompressed(prefixLabels []string, letters string, env Environment, theoremLabel string, mandatory []*mm.Hypothesis) ([]mm.ProofStep, error) {
	prefix := make([]mm.ProofStep, 0, len(mandatory)+len(prefixLabels))
	for _, h := range mandatory {
		prefix = append(prefix, mm.ProofStep{Kind: mm.StepHyp, Hyp: h})
	}

	mandatoryLabels := make(map[string]struct{}, len(mandatory))
	for _, h := range mandatory {
		mandatoryLabels[h.Label] = struct{}{}
	}

	for _, tok := range prefixLabels {
		if tok == theoremLabel {
			return nil, fmt.Errorf("self-reference in proof of %s", theoremLabel)
		}
		if _, ok := mandatoryLabels[tok]; ok {
			return nil, fmt.Errorf("compressed proof of %s has mandatory hypothesis %s in label list", theoremLabel, tok)
		}
		step, err := resolveLabel(tok, env)
		if err != nil {
			return nil, fmt.Errorf("proof of %s refers to %s which is not an active statement", theoremLabel, tok)
		}
		prefix = append(prefix, step)
	}

	numbers, err := decodeLetters(letters, theoremLabel)
	if err != nil {
		return nil, err
	}

	L := len(prefix)
	steps := make([]mm.ProofStep, 0, len(numbers))
	for _, n := range numbers {
		switch {
		case n == 0:
			steps = append(steps, mm.ProofStep{Kind: mm.StepSave})
		case n >= 1 && n <= L:
			steps = append(steps, prefix[n-1])
		default:
			steps = append(steps, mm.ProofStep{Kind: mm.StepLoad, Index: n - L - 1})
		}
	}

	return steps, nil
}

// decodeLetters implements the base-20/base-5 letter decoding of
// spec.md §6: A-T are digits 1-20, U-Y are digits 1-5 (continuation),
// Z is a back-reference marker emitting 0. A bare Z or a run ending
// mid-number is an error.
func decodeLetters(letters string, label string) ([]int, error) {
	var nums []int
	num := 0
	justGotNum := false

	for _, c := range letters {
		switch {
		case c >= 'A' && c <= 'T':
			num = 20*num + int(c-'A') + 1
			nums = append(nums, num)
			num = 0
			justGotNum = true

		case c >= 'U' && c <= 'Y':
			num = 5*num + int(c-'T')
			justGotNum = false

		case c == 'Z':
			if !justGotNum {
				return nil, fmt.Errorf("stray Z found in compressed proof of %s", label)
			}
			nums = append(nums, 0)
			justGotNum = false

		default:
			return nil, fmt.Errorf("bogus character %q in compressed proof of %s", c, label)
		}
	}

	if num != 0 {
		return nil, fmt.Errorf("compressed proof of %s ends in unfinished number", label)
	}

	return nums, nil
}
