package typesystem

import (
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/token"
)

// MismatchError reports that a formal instance cannot be matched by an actual one.
type MismatchError struct {
	Formal *Instance
	Actual *Instance
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected `%s`, found `%s`", e.Formal, e.Actual)
}

// BindingConflictError reports a constraint bound to two different instances
// in the same substitution.
type BindingConflictError struct {
	Name  string
	Bound *Instance
	Other *Instance
}

func (e *BindingConflictError) Error() string {
	return fmt.Sprintf("constraint `%s` is bound to `%s` and cannot also be `%s`", e.Name, e.Bound, e.Other)
}

// Bindings maps constraint placeholders to the instances they stand for in
// one substitution. A constraint, once bound to a complete instance, cannot
// be rebound to a different one.
type Bindings struct {
	constraints []token.Token
	bound       map[string]*Instance
}

// NewBindings starts an empty substitution over the given constraints.
func NewBindings(constraints []token.Token) *Bindings {
	return &Bindings{
		constraints: constraints,
		bound:       make(map[string]*Instance),
	}
}

// IsConstraint reports whether name can be bound by this substitution.
func (b *Bindings) IsConstraint(name string) bool {
	for _, c := range b.constraints {
		if c.Lexeme == name {
			return true
		}
	}
	return false
}

// Lookup returns what name is bound to.
func (b *Bindings) Lookup(name string) (*Instance, bool) {
	inst, ok := b.bound[name]
	return inst, ok
}

// Bind records name -> inst. Rebinding to a strong-equal instance is a
// no-op; an incomplete binding may be refined by a compatible complete one.
func (b *Bindings) Bind(name string, inst *Instance) error {
	prev, ok := b.bound[name]
	if !ok {
		b.bound[name] = inst.Copy()
		return nil
	}
	if StrongCompare(prev, inst) {
		return nil
	}
	if WeakCompare(prev, inst) {
		if !prev.IsComplete() && inst.IsComplete() {
			b.bound[name] = inst.Copy()
			return nil
		}
		if !inst.IsComplete() {
			return nil
		}
	}
	return &BindingConflictError{Name: name, Bound: prev, Other: inst}
}

// Complete reports whether every constraint is bound to a complete instance.
func (b *Bindings) Complete() bool {
	for _, c := range b.constraints {
		inst, ok := b.bound[c.Lexeme]
		if !ok || !inst.IsComplete() {
			return false
		}
	}
	return true
}

// Unbound lists constraints that have no complete binding.
func (b *Bindings) Unbound() []token.Token {
	var out []token.Token
	for _, c := range b.constraints {
		if inst, ok := b.bound[c.Lexeme]; !ok || !inst.IsComplete() {
			out = append(out, c)
		}
	}
	return out
}

// Instances returns the bound instance of every constraint, in declaration
// order, or nil where a constraint is unbound.
func (b *Bindings) Instances() []*Instance {
	out := make([]*Instance, len(b.constraints))
	for k, c := range b.constraints {
		out[k] = b.bound[c.Lexeme]
	}
	return out
}

// Match walks formal and actual together, binding the formal's constraint
// placeholders to the corresponding parts of actual. Concrete parts of formal
// must have the same shape as actual. Abstract or wildcard parts of actual
// match anything and bind nothing.
func Match(formal, actual *Instance, b *Bindings) error {
	if formal == nil || actual == nil {
		return &MismatchError{Formal: formal, Actual: actual}
	}
	if formal.Abstract {
		if b.IsConstraint(formal.Name()) && !actual.IsStar() {
			return b.Bind(formal.Name(), actual)
		}
		return nil
	}
	if actual.Abstract || actual.IsStar() || formal.IsStar() {
		return nil
	}
	if !sameShape(formal, actual) {
		return &MismatchError{Formal: formal, Actual: actual}
	}
	for k := range formal.Params {
		if err := Match(formal.Params[k], actual.Params[k], b); err != nil {
			if _, ok := err.(*MismatchError); ok {
				return &MismatchError{Formal: formal, Actual: actual}
			}
			return err
		}
	}
	return nil
}

// Substitute returns a copy of inst with every bound placeholder replaced by
// its binding. Replaced nodes remember the placeholder token in OldToken.
func Substitute(inst *Instance, b *Bindings) *Instance {
	if inst == nil {
		return nil
	}
	if inst.Abstract {
		if bound, ok := b.bound[inst.Name()]; ok {
			out := bound.Copy()
			out.OldToken = inst.Token
			out.Refresh()
			return out
		}
		return inst.Copy()
	}
	out := *inst
	if inst.Params != nil {
		out.Params = make([]*Instance, len(inst.Params))
		for k, p := range inst.Params {
			out.Params[k] = Substitute(p, b)
		}
	}
	out.Refresh()
	return &out
}

// Fill returns a copy of inferred in which every wildcard slot, and every
// abstract slot whose placeholder is not fixed, takes the corresponding
// part of declared. Where the shapes disagree inferred is kept as is, so the
// caller's comparison reports the mismatch.
func Fill(inferred, declared *Instance, fixed func(name string) bool) *Instance {
	if inferred == nil || declared == nil {
		return inferred.Copy()
	}
	if inferred.IsStar() || (inferred.Abstract && (fixed == nil || !fixed(inferred.Name()))) {
		return declared.Copy()
	}
	if inferred.Abstract || declared.Abstract || declared.IsStar() || !sameShape(inferred, declared) {
		return inferred.Copy()
	}
	out := *inferred
	out.Params = make([]*Instance, len(inferred.Params))
	for k := range inferred.Params {
		out.Params[k] = Fill(inferred.Params[k], declared.Params[k], fixed)
	}
	out.Refresh()
	return &out
}
