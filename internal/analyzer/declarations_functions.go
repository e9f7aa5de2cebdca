package analyzer

import (
	"errors"
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/controlflow"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/symbols"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

func (c *Checker) functionWalker(fn *ast.FunctionDeclaration, h home) *walker {
	w := c.newWalker(h)
	w.fn = fn
	for _, ct := range fn.Constraints {
		w.standins[ct.Lexeme] = true
	}
	return w
}

// checkFunctionHeader validates the constraints, parameters and return
// instance of fn. It runs before fn is added to its scope.
func (c *Checker) checkFunctionHeader(fn *ast.FunctionDeclaration, h home) error {
	w := c.functionWalker(fn, h)
	seen := make(map[string]bool, len(fn.Constraints))
	for _, ct := range fn.Constraints {
		if seen[ct.Lexeme] {
			return errorf(diagnostics.ErrF001, ct, "constraint `%s` declared twice on function `%s`", ct.Lexeme, fn.Name())
		}
		seen[ct.Lexeme] = true
	}

	names := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		p.IsParameter = true
		if names[p.Name()] {
			return errorf(diagnostics.ErrF001, p.Token, "parameter `%s` declared twice", p.Name())
		}
		names[p.Name()] = true
		if p.Type == nil {
			return errorf(diagnostics.ErrF001, p.Token, "parameter `%s` has no type", p.Name())
		}
		if p.Value != nil {
			return errorf(diagnostics.ErrF001, p.Token, "parameter `%s` cannot have a default value", p.Name())
		}
		if p.Type.HasStar() {
			return errorf(diagnostics.ErrF001, p.Type.Token, "`*` cannot be used in a declaration")
		}
		if _, _, err := w.validate(p.Type); err != nil {
			return wrap(diagnostics.ErrF001, p.Token, fmt.Sprintf("in parameter `%s`", p.Name()), err)
		}
		if p.State == typesystem.StateUnknown {
			_ = p.State.Begin()
			_ = p.State.Finish(true)
		}
	}

	if fn.Return == nil {
		return errorf(diagnostics.ErrF001, fn.Token, "function `%s` has no return type", fn.Name())
	}
	if fn.Return.HasStar() {
		return errorf(diagnostics.ErrF001, fn.Return.Token, "`*` cannot be used in a declaration")
	}
	if _, _, err := w.validate(fn.Return); err != nil {
		return wrap(diagnostics.ErrF001, fn.Token, "in return type", err)
	}

	if fn.Public && fn.Generic == nil {
		for _, inst := range append(fn.ParamInstances(), fn.Return) {
			if err := checkExposure(inst); err != nil {
				return wrap(diagnostics.ErrF001, fn.Token, fmt.Sprintf("public function `%s`", fn.Name()), err)
			}
		}
	}
	return nil
}

// checkFunctionBody checks the body of fn once, then runs flow analysis:
// unreachable declarations are reported, and a function that returns
// anything but unit or void must return on every path.
func (c *Checker) checkFunctionBody(fn *ast.FunctionDeclaration, h home) error {
	if fn.Builtin {
		return nil
	}
	switch fn.State {
	case typesystem.StateValid, typesystem.StateChecking:
		return nil
	case typesystem.StateInvalid:
		return errorf(diagnostics.ErrF001, fn.Token, "function `%s` is invalid", fn.Name())
	}
	if fn.Body == nil {
		return errorf(diagnostics.ErrF001, fn.Token, "function `%s` has no body", fn.Name())
	}
	_ = fn.State.Begin()
	err := c.functionBody(fn, h)
	_ = fn.State.Finish(err == nil)
	return err
}

func (c *Checker) functionBody(fn *ast.FunctionDeclaration, h home) error {
	w := c.functionWalker(fn, h)
	w.scope = symbols.NewEnclosedScope(h.scope, symbols.ScopeFunction)
	for _, p := range fn.Params {
		if err := w.scope.AddVariable(w.namespace, p); err != nil {
			return wrap(diagnostics.ErrF001, p.Token, "in parameters", err)
		}
	}
	if err := w.checkDeclarations(fn.Body.Declarations); err != nil {
		return err
	}

	result := controlflow.Analyze(fn.Body)
	if fn.Generic == nil {
		for _, f := range result.Unreachable {
			if err := c.unreachable(f, h); err != nil {
				return err
			}
		}
	}
	if !result.Terminates && !isUnitOrVoid(fn.Return) {
		return errorf(diagnostics.ErrF001, fn.Token,
			"function `%s` returns `%s` but does not return on every path", fn.Name(), fn.Return)
	}
	return nil
}

// unreachable records a finding as a warning, or returns it when the
// configuration makes unreachable code fatal.
func (c *Checker) unreachable(f controlflow.Finding, h home) error {
	de := diagnostics.NewError(diagnostics.ErrW001, f.Token, f.Message).InFile(h.program.File)
	if c.cfg.Unreachable == config.SeverityError {
		de.Fatal = true
		return de
	}
	c.warnings = append(c.warnings, de)
	return nil
}

// isReentrant reports whether err says a declaration was reached again
// while it was being checked.
func isReentrant(err error) bool {
	return errors.Is(err, typesystem.ErrReentrant)
}
