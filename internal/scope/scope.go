// Package scope implements the scope stack (spec.md §4.3) and the
// Assertion Builder (spec.md §4.5), grounded on original_source's
// Scopes/Scope (scope.h, scope.cpp).
package scope

import "github.com/mm-go/verifier/internal/mm"

// Frame is a single scope: the bottom frame is global, new frames are
// pushed on ${ and popped on $}.
type Frame struct {
	// ActiveVars holds the variables declared $v within this frame.
	ActiveVars map[*mm.Symbol]struct{}

	// ActiveHyps is every hypothesis (floating and essential) added
	// while this frame was on top, in declaration order.
	ActiveHyps []*mm.Hypothesis

	// Disjoint holds the $d sets declared in this frame, each as the
	// set of variables named.
	Disjoint []map[*mm.Symbol]struct{}

	// Floating maps an active variable to the floating hypothesis
	// currently typing it, within this frame.
	Floating map[*mm.Symbol]*mm.Hypothesis
}

func newFrame() *Frame {
	return &Frame{
		ActiveVars: make(map[*mm.Symbol]struct{}),
		Floating:   make(map[*mm.Symbol]*mm.Hypothesis),
	}
}

// Stack is a stack of Frames, bottom frame always present and global.
type Stack struct {
	frames []*Frame
}

// NewStack returns a Stack containing only the global frame.
func NewStack() *Stack {
	return &Stack{frames: []*Frame{newFrame()}}
}

// IsOuter reports whether the stack holds only the global frame. $c and
// the include mechanism are only valid when this is true.
func (s *Stack) IsOuter() bool { return len(s.frames) == 1 }

// Push opens a new frame (${).
func (s *Stack) Push() { s.frames = append(s.frames, newFrame()) }

// Pop closes the top frame ($}). It is an error to pop the global frame.
func (s *Stack) Pop() error {
	if s.IsOuter() {
		return errExtraEndScope
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// errExtraEndScope is returned by Pop when called on the global frame.
var errExtraEndScope = scopeError("unmatched $}")

type scopeError string

func (e scopeError) Error() string { return string(e) }

// Top returns the active frame.
func (s *Stack) Top() *Frame { return s.frames[len(s.frames)-1] }

// ActiveFloatingHyp returns the floating hypothesis currently typing var,
// searching frames from top to bottom, or nil if none.
func (s *Stack) ActiveFloatingHyp(v *mm.Symbol) *mm.Hypothesis {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if h, ok := s.frames[i].Floating[v]; ok {
			return h
		}
	}
	return nil
}

// IsActiveVariable reports whether v is active in some frame.
func (s *Stack) IsActiveVariable(v *mm.Symbol) bool {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i].ActiveVars[v]; ok {
			return true
		}
	}
	return false
}

// ActiveHypByLabel returns the active hypothesis with the given label,
// or nil if none is active.
func (s *Stack) ActiveHypByLabel(label string) *mm.Hypothesis {
	for i := len(s.frames) - 1; i >= 0; i-- {
		for _, h := range s.frames[i].ActiveHyps {
			if h.Label == label {
				return h
			}
		}
	}
	return nil
}

// IsDisjoint reports whether v1 and v2 are covered, as an unordered
// pair, by some active $d set.
func (s *Stack) IsDisjoint(v1, v2 *mm.Symbol) bool {
	if v1 == v2 {
		return false
	}
	for _, f := range s.frames {
		for _, set := range f.Disjoint {
			_, in1 := set[v1]
			_, in2 := set[v2]
			if in1 && in2 {
				return true
			}
		}
	}
	return false
}

// ActivateVariable records v as active in the top frame.
func (s *Stack) ActivateVariable(v *mm.Symbol) {
	s.Top().ActiveVars[v] = struct{}{}
}

// AddDisjoint records a $d set in the top frame.
func (s *Stack) AddDisjoint(vars []*mm.Symbol) {
	set := make(map[*mm.Symbol]struct{}, len(vars))
	for _, v := range vars {
		set[v] = struct{}{}
	}
	s.Top().Disjoint = append(s.Top().Disjoint, set)
}

// AddHypothesis records h as active in the top frame, and as the
// typing hypothesis for its variable if h is floating.
func (s *Stack) AddHypothesis(h *mm.Hypothesis) {
	top := s.Top()
	top.ActiveHyps = append(top.ActiveHyps, h)
	if h.Kind == mm.Floating {
		top.Floating[h.Var] = h
	}
}

// FloatErr is the erraddfloatinghyp result: whether var is eligible for
// a new floating hypothesis, and why not if not.
type FloatErr int

const (
	FloatOK FloatErr = iota
	FloatVarNotActive
	FloatVarAlreadyTyped
)

// CanAddFloatingHyp reports whether a new $f may be declared on var.
func (s *Stack) CanAddFloatingHyp(v *mm.Symbol) FloatErr {
	if !s.IsActiveVariable(v) {
		return FloatVarNotActive
	}
	if s.ActiveFloatingHyp(v) != nil {
		return FloatVarAlreadyTyped
	}
	return FloatOK
}
