// Package syntax builds reverse-Polish derivation trees for expressions
// against the syntax-axiom grammar (spec.md §4.8), run once the whole
// file has been read.
package syntax

import "github.com/mm-go/verifier/internal/mm"

// Parser builds reverse-Polish trees. It is constructed once per
// database (after reading completes) and reused to parse every stored
// expression.
type Parser struct {
	byTypeCode map[*mm.Symbol][]*mm.Assertion
	alias      map[*mm.Symbol]*mm.Symbol
}

// NewParser collects every syntax axiom — an axiom whose conclusion's
// type code is primitive and whose mandatory hypotheses are all
// floating — keyed by leading type code. primitive reports, for a
// type-code constant, whether it is primitive (spec.md §4.8); a type
// code absent from primitive is treated as primitive (the default for
// "never aliased", per the glossary). alias maps an aliased type code
// (e.g. '|-') to the primitive root it was declared "as" (e.g. 'wff',
// via `$j syntax '|-' as 'wff';`, comment.Info.NormalizeTypes); a type
// code absent from alias is already primitive.
func NewParser(db *mm.Database, primitive map[*mm.Symbol]bool, alias map[*mm.Symbol]*mm.Symbol) *Parser {
	p := &Parser{byTypeCode: make(map[*mm.Symbol][]*mm.Assertion), alias: alias}

	for _, ax := range db.Assertions {
		if ax.Kind != mm.KindAxiom {
			continue
		}
		tc := ax.Conclusion.TypeCode()
		if tc == nil {
			continue
		}
		if isPrim, known := primitive[tc]; known && !isPrim {
			continue
		}
		allFloating := true
		for _, h := range ax.Mandatory {
			if h.Kind == mm.Essential {
				allFloating = false
				break
			}
		}
		if !allFloating {
			continue
		}
		p.byTypeCode[tc] = append(p.byTypeCode[tc], ax)
	}

	return p
}

// normalize resolves tc to its primitive root via alias, matching
// original_source/syntaxiom.cpp's `exp[0] = typecodes.normalize(exp[0])`
// done before every rPolish call.
func (p *Parser) normalize(tc *mm.Symbol) *mm.Symbol {
	if root, ok := p.alias[tc]; ok {
		return root
	}
	return tc
}

type memoKey struct {
	typeCode *mm.Symbol
	start    int
}

type candidate struct {
	end int
	rpn mm.RPN
}

// Parse builds the reverse-Polish form of expr as it occurred in the
// context of ass (ass.FloatingHyps() supplies the type each mandatory
// variable carried at declaration time). Returns an error if no
// derivation consumes the whole expression.
func (p *Parser) Parse(ass *mm.Assertion, expr mm.Expression) (mm.RPN, error) {
	if expr.Empty() {
		return nil, errEmptyExpression
	}

	varType := make(map[*mm.Symbol]*mm.Hypothesis)
	for _, h := range ass.FloatingHyps() {
		varType[h.Var] = h
	}

	content := expr[1:]
	memo := make(map[memoKey][]candidate)

	cands := p.parseRange(memo, content, varType, p.normalize(expr.TypeCode()), 0)
	for _, c := range cands {
		if c.end == len(content) {
			return c.rpn, nil
		}
	}
	return nil, errNoDerivation
}

func (p *Parser) parseRange(memo map[memoKey][]candidate, content []*mm.Symbol, varType map[*mm.Symbol]*mm.Hypothesis, typeCode *mm.Symbol, start int) []candidate {
	key := memoKey{typeCode, start}
	if v, ok := memo[key]; ok {
		return v
	}
	// Guard against runaway left-recursive grammars; a syntax grammar
	// with genuine left recursion on the same (type, position) pair is
	// malformed, and this keeps the parser from looping on it.
	memo[key] = nil

	var results []candidate

	// (a) direct type declaration: a variable typed T at this position.
	if start < len(content) {
		sym := content[start]
		if sym.IsVariable() {
			if h, ok := varType[sym]; ok && p.normalize(h.Expr[0]) == typeCode {
				results = append(results, candidate{
					end: start + 1,
					rpn: mm.RPN{{Hyp: h}},
				})
			}
		}
	}

	// (b) each syntax axiom whose conclusion starts with typeCode.
	for _, ax := range p.byTypeCode[typeCode] {
		results = append(results, p.matchAxiom(memo, content, varType, ax, start)...)
	}

	memo[key] = results
	return results
}

// matchAxiom scans ax's conclusion pattern (everything after its
// leading type code) left to right from position start in content,
// recursing into parseRange at each pattern variable, and returns one
// candidate per way the whole pattern can be consumed.
func (p *Parser) matchAxiom(memo map[memoKey][]candidate, content []*mm.Symbol, varType map[*mm.Symbol]*mm.Hypothesis, ax *mm.Assertion, start int) []candidate {
	axVarType := make(map[*mm.Symbol]*mm.Hypothesis)
	for _, h := range ax.FloatingHyps() {
		axVarType[h.Var] = h
	}
	pattern := ax.Conclusion[1:]

	type state struct {
		pos      int
		combined mm.RPN
		rootIdx  []int
		varRange map[*mm.Symbol][2]int
	}

	states := []state{{pos: start, varRange: map[*mm.Symbol][2]int{}}}

	for _, tok := range pattern {
		var next []state
		if h, isPatVar := axVarType[tok]; isPatVar {
			targetType := p.normalize(h.Expr[0])
			for _, st := range states {
				for _, c := range p.parseRange(memo, content, varType, targetType, st.pos) {
					offset := len(st.combined)
					combined := append(append(mm.RPN{}, st.combined...), offsetRPN(c.rpn, offset)...)
					rootIdx := append(append([]int{}, st.rootIdx...), offset+len(c.rpn)-1)
					varRange := make(map[*mm.Symbol][2]int, len(st.varRange)+1)
					for k, v := range st.varRange {
						varRange[k] = v
					}
					varRange[tok] = [2]int{st.pos, c.end}
					next = append(next, state{pos: c.end, combined: combined, rootIdx: rootIdx, varRange: varRange})
				}
			}
		} else {
			for _, st := range states {
				if st.pos < len(content) && content[st.pos] == tok {
					next = append(next, state{pos: st.pos + 1, combined: st.combined, rootIdx: st.rootIdx, varRange: st.varRange})
				}
			}
		}
		states = next
		if len(states) == 0 {
			return nil
		}
	}

	var out []candidate
	for _, st := range states {
		if !disjointSatisfied(ax, content, st.varRange) {
			continue
		}
		finalStep := mm.RPNStep{Axiom: ax, Args: st.rootIdx}
		rpn := append(append(mm.RPN{}, st.combined...), finalStep)
		out = append(out, candidate{end: st.pos, rpn: rpn})
	}
	return out
}

// offsetRPN returns a copy of rpn with every Args index shifted by
// offset, so it can be concatenated after offset existing steps.
func offsetRPN(rpn mm.RPN, offset int) mm.RPN {
	out := make(mm.RPN, len(rpn))
	for i, step := range rpn {
		newArgs := make([]int, len(step.Args))
		for j, a := range step.Args {
			newArgs[j] = a + offset
		}
		out[i] = mm.RPNStep{Hyp: step.Hyp, Axiom: step.Axiom, Args: newArgs}
	}
	return out
}

// disjointSatisfied checks ax's own disjoint-variable restrictions
// against the content sub-ranges matched to each pattern variable
// (spec.md §4.8: "check the axiom's own disjoint-variable restrictions
// against substitutions accumulated so far").
func disjointSatisfied(ax *mm.Assertion, content []*mm.Symbol, varRange map[*mm.Symbol][2]int) bool {
	for _, pair := range ax.Disjoint {
		r1, ok1 := varRange[pair.First]
		r2, ok2 := varRange[pair.Second]
		if !ok1 || !ok2 {
			continue
		}
		for _, sym := range content[r1[0]:r1[1]] {
			if !sym.IsVariable() {
				continue
			}
			for _, sym2 := range content[r2[0]:r2[1]] {
				if sym == sym2 {
					return false
				}
			}
		}
	}
	return true
}

type syntaxError string

func (e syntaxError) Error() string { return string(e) }

const (
	errEmptyExpression = syntaxError("cannot parse the empty expression")
	errNoDerivation    = syntaxError("no syntax-axiom derivation covers the whole expression")
)
