package syntax

import "github.com/mm-go/verifier/internal/mm"

// Reconstruct executes rpn against the syntax axioms it references and
// returns the expression it derives, with typeCode prepended (spec.md
// §8 "Reverse-Polish round-trip": executing reverse-polish(e) must
// reconstruct e exactly).
func Reconstruct(rpn mm.RPN, typeCode *mm.Symbol) (mm.Expression, error) {
	if len(rpn) == 0 {
		return nil, errEmptyExpression
	}

	outputs := make([]mm.Expression, len(rpn))
	for i, step := range rpn {
		switch {
		case step.Hyp != nil:
			outputs[i] = mm.Expression{step.Hyp.Var}

		case step.Axiom != nil:
			axVarType := make(map[*mm.Symbol]struct{})
			for _, h := range step.Axiom.FloatingHyps() {
				axVarType[h.Var] = struct{}{}
			}

			var content mm.Expression
			argIdx := 0
			for _, tok := range step.Axiom.Conclusion[1:] {
				if _, isPatVar := axVarType[tok]; isPatVar {
					content = append(content, outputs[step.Args[argIdx]]...)
					argIdx++
					continue
				}
				content = append(content, tok)
			}
			outputs[i] = content

		default:
			return nil, syntaxError("invalid reverse-Polish step")
		}
	}

	content := outputs[len(rpn)-1]
	result := make(mm.Expression, 0, len(content)+1)
	result = append(result, typeCode)
	result = append(result, content...)
	return result, nil
}
