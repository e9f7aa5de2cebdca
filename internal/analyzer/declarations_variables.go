package analyzer

import (
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// checkGlobalVariable checks a namespace-level variable from where it was
// declared. It runs at most once, on first use or in source order,
// whichever comes first.
func (c *Checker) checkGlobalVariable(v *ast.VariableDeclaration, h home) error {
	return c.newWalker(h).checkVariable(v)
}

// checkLocalVariable checks v and then declares it, so its initializer
// cannot see it.
func (w *walker) checkLocalVariable(v *ast.VariableDeclaration) error {
	if err := w.checkVariable(v); err != nil {
		return err
	}
	if err := w.scope.AddVariable(w.namespace, v); err != nil {
		return wrap(diagnostics.ErrV001, v.Token, "in declaration", err)
	}
	return nil
}

func (w *walker) checkVariable(v *ast.VariableDeclaration) error {
	if err := v.State.Begin(); err != nil {
		if isReentrant(err) {
			return errorf(diagnostics.ErrV001, v.Token, "variable `%s` refers to itself", v.Name())
		}
		if v.State == typesystem.StateInvalid {
			return errorf(diagnostics.ErrV001, v.Token, "variable `%s` is invalid", v.Name())
		}
		return nil
	}
	err := w.variableBody(v)
	_ = v.State.Finish(err == nil)
	return err
}

// variableBody validates the declared instance, then reconciles it with
// the initializer. Without a declared instance the variable takes the
// inferred one, which must be fully determined.
func (w *walker) variableBody(v *ast.VariableDeclaration) error {
	if v.Type != nil {
		if v.Type.HasStar() {
			return errorf(diagnostics.ErrV001, v.Token, "declared type of `%s` cannot contain `*`", v.Name())
		}
		if _, _, err := w.validate(v.Type); err != nil {
			return wrap(diagnostics.ErrV001, v.Token, fmt.Sprintf("in declared type of `%s`", v.Name()), err)
		}
	}

	if v.Value == nil {
		if !v.Mutable && !v.IsParameter {
			return errorf(diagnostics.ErrV001, v.Token, "immutable variable `%s` needs an initializer", v.Name())
		}
		if v.Type == nil {
			return errorf(diagnostics.ErrV001, v.Token, "variable `%s` needs a type or an initializer", v.Name())
		}
		return w.exposure(v)
	}

	inferred, err := w.inferExpected(v.Value, v.Type)
	if err != nil {
		return err
	}
	if v.Type == nil {
		if w.undetermined(inferred) {
			return errorf(diagnostics.ErrV001, v.Token,
				"cannot infer the type of `%s` from `%s`, add a type annotation", v.Name(), inferred)
		}
		v.Type = inferred
		return w.exposure(v)
	}

	filled := typesystem.Fill(inferred, v.Type, w.fixed)
	if !w.compare(filled, v.Type) {
		return errorf(diagnostics.ErrV001, v.Token,
			"variable `%s` is declared `%s` but initialized with `%s`", v.Name(), v.Type, inferred)
	}
	v.Value.SetInstance(filled)
	return w.exposure(v)
}

func (w *walker) exposure(v *ast.VariableDeclaration) error {
	if !v.Public {
		return nil
	}
	if err := checkExposure(v.Type); err != nil {
		return wrap(diagnostics.ErrV001, v.Token, fmt.Sprintf("public variable `%s`", v.Name()), err)
	}
	return nil
}
