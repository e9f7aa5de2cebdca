package analyzer

import (
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// checkType validates the constructors of t. Every constructor parameter
// must be buildable with t's own constraints as the only standins, and a
// public type may only expose public types through its constructors.
func (c *Checker) checkType(t *typesystem.Type, h home) error {
	if t.State.Done() {
		if t.State == typesystem.StateInvalid {
			return errorf(diagnostics.ErrT001, t.Token, "type `%s` is invalid", t.Name())
		}
		return nil
	}
	if err := t.State.Begin(); err != nil {
		return errorf(diagnostics.ErrT001, t.Token, "type `%s`: %v", t.Name(), err)
	}
	err := c.typeBody(t, h)
	_ = t.State.Finish(err == nil)
	return err
}

func (c *Checker) typeBody(t *typesystem.Type, h home) error {
	w := c.newWalker(home{program: h.program, scope: h.scope, namespace: t.Namespace})
	for _, ct := range t.Constraints {
		if w.standins[ct.Lexeme] {
			return errorf(diagnostics.ErrT001, ct, "constraint `%s` declared twice on type `%s`", ct.Lexeme, t.Name())
		}
		w.standins[ct.Lexeme] = true
	}

	for _, ctor := range t.Defaults {
		parametrized := false
		for i, p := range ctor.Params {
			if err := w.constructorParam(t, p); err != nil {
				return wrap(diagnostics.ErrT001, ctor.Token,
					fmt.Sprintf("in parameter %d of constructor `%s`", i+1, ctor.Name()), err)
			}
			parametrized = parametrized || p.Parametrized
		}
		ctor.Parametrized = parametrized
	}
	for _, ctor := range t.Records {
		parametrized := false
		seen := make(map[string]bool, len(ctor.Fields))
		for _, f := range ctor.Fields {
			if seen[f.Name()] {
				return errorf(diagnostics.ErrT001, f.Token, "field `%s` declared twice in constructor `%s`", f.Name(), ctor.Name())
			}
			seen[f.Name()] = true
			if err := w.constructorParam(t, f.Instance); err != nil {
				return wrap(diagnostics.ErrT001, f.Token,
					fmt.Sprintf("in field `%s` of constructor `%s`", f.Name(), ctor.Name()), err)
			}
			parametrized = parametrized || f.Instance.Parametrized
		}
		ctor.Parametrized = parametrized
	}
	return nil
}

func (w *walker) constructorParam(t *typesystem.Type, p *typesystem.Instance) error {
	if p.HasStar() {
		return errorf(diagnostics.ErrT001, p.Token, "`*` cannot be used in a declaration")
	}
	if _, _, err := w.validate(p); err != nil {
		return err
	}
	if t.Public {
		return checkExposure(p)
	}
	return nil
}
