package analyzer

import (
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// inferCall dispatches a call to a function when one of that name is
// visible, otherwise to the constructor its argument syntax selects.
func (w *walker) inferCall(e *ast.CallExpression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	nss := w.namespaces(e.Namespace)
	if w.functionVisible(nss, e.Name()) {
		if e.HasRecordSyntax() {
			return nil, errorf(diagnostics.ErrE001, e.Token, "function `%s` does not take named arguments", e.Name())
		}
		args := make([]*typesystem.Instance, len(e.Args))
		for i, arg := range e.Args {
			inst, err := w.infer(arg.Value)
			if err != nil {
				return nil, err
			}
			args[i] = inst
		}
		fn, ret, err := w.findFunction(e.Token, e.Name(), nss, args, expected)
		if err != nil {
			return nil, err
		}
		e.Kind = ast.FunctionCall
		e.Function = fn
		return ret, nil
	}
	if e.HasRecordSyntax() {
		return w.inferRecordConstructor(e, nss)
	}
	return w.inferDefaultConstructor(e, nss)
}

func (w *walker) functionVisible(nss []string, name string) bool {
	for _, ns := range nss {
		if w.scope.FunctionExists(ns, name) {
			return true
		}
	}
	return false
}

func (w *walker) inferDefaultConstructor(e *ast.CallExpression, nss []string) (*typesystem.Instance, error) {
	var ctor *typesystem.DefaultConstructor
	for _, ns := range nss {
		if c, ok := w.scope.GetDefaultConstructor(ns, e.Name(), len(e.Args)); ok {
			ctor = c
			break
		}
	}
	if ctor == nil {
		return nil, errorf(diagnostics.ErrE001, e.Token,
			"no function or default constructor `%s` taking %d argument(s)", e.Name(), len(e.Args))
	}

	inst, rename := instantiate(ctor.Type, e.Token)
	b := typesystem.NewBindings(freshConstraints(rename))
	for i, arg := range e.Args {
		formal := typesystem.Substitute(ctor.Params[i], rename)
		if err := w.bindArgument(arg.Value, formal, b); err != nil {
			return nil, wrap(diagnostics.ErrE001, arg.Value.GetToken(),
				fmt.Sprintf("in argument %d of constructor `%s`", i+1, e.Name()), err)
		}
	}
	e.Kind = ast.DefaultConstructorCall
	e.Default = ctor
	return typesystem.Substitute(inst, b), nil
}

func (w *walker) inferRecordConstructor(e *ast.CallExpression, nss []string) (*typesystem.Instance, error) {
	var ctor *typesystem.RecordConstructor
	for _, ns := range nss {
		if c, ok := w.scope.GetRecordConstructor(ns, e.Name(), len(e.Args)); ok {
			ctor = c
			break
		}
	}
	if ctor == nil {
		return nil, errorf(diagnostics.ErrE001, e.Token,
			"no record constructor `%s` taking %d field(s)", e.Name(), len(e.Args))
	}

	inst, rename := instantiate(ctor.Type, e.Token)
	b := typesystem.NewBindings(freshConstraints(rename))
	seen := make(map[string]bool, len(e.Args))
	for _, arg := range e.Args {
		if !arg.IsNamed() {
			return nil, errorf(diagnostics.ErrE001, arg.Value.GetToken(),
				"record constructor `%s` takes named arguments only", e.Name())
		}
		field, ok := ctor.Field(arg.Name.Lexeme)
		if !ok {
			return nil, errorf(diagnostics.ErrE001, arg.Name, "record constructor `%s` has no field `%s`", e.Name(), arg.Name.Lexeme)
		}
		if seen[arg.Name.Lexeme] {
			return nil, errorf(diagnostics.ErrE001, arg.Name, "field `%s` given twice", arg.Name.Lexeme)
		}
		seen[arg.Name.Lexeme] = true
		formal := typesystem.Substitute(field, rename)
		if err := w.bindArgument(arg.Value, formal, b); err != nil {
			return nil, wrap(diagnostics.ErrE001, arg.Value.GetToken(),
				fmt.Sprintf("in field `%s` of constructor `%s`", arg.Name.Lexeme, e.Name()), err)
		}
	}
	e.Kind = ast.RecordConstructorCall
	e.Record = ctor
	return typesystem.Substitute(inst, b), nil
}

// bindArgument infers a constructor argument and matches it against its
// formal instance. An underscore leaves the slot open.
func (w *walker) bindArgument(arg ast.Expression, formal *typesystem.Instance, b *typesystem.Bindings) error {
	if _, ok := arg.(*ast.UnderscoreExpression); ok {
		arg.SetInstance(typesystem.Star(arg.GetToken()))
		return nil
	}
	actual, err := w.inferExpected(arg, formal)
	if err != nil {
		return err
	}
	if err := typesystem.Match(formal, actual, b); err != nil {
		return errorf(diagnostics.ErrE001, arg.GetToken(), "%v", err)
	}
	return nil
}

// inferIdentifier resolves a name as a variable, then as a nullary
// default constructor.
func (w *walker) inferIdentifier(e *ast.IdentifierExpression) (*typesystem.Instance, error) {
	nss := w.namespaces(e.Namespace)
	for _, ns := range nss {
		if v, ok := w.scope.GetVariable(ns, e.Name()); ok {
			inst, err := w.useVariable(e, v)
			if err != nil {
				return nil, err
			}
			e.Kind = ast.VariableIdentifier
			e.Variable = v
			return inst, nil
		}
	}
	for _, ns := range nss {
		if c, ok := w.scope.GetDefaultConstructor(ns, e.Name(), 0); ok {
			inst, _ := instantiate(c.Type, e.Token)
			e.Kind = ast.ConstructorIdentifier
			e.Constructor = c
			return inst, nil
		}
	}
	if w.functionVisible(nss, e.Name()) {
		return nil, errorf(diagnostics.ErrE001, e.Token, "function `%s` used as a value", e.Name())
	}
	return nil, errorf(diagnostics.ErrE001, e.Token, "unknown identifier `%s`", e.Name())
}

// useVariable returns the instance of v, checking a global variable on
// first use.
func (w *walker) useVariable(e *ast.IdentifierExpression, v *ast.VariableDeclaration) (*typesystem.Instance, error) {
	switch v.State {
	case typesystem.StateChecking:
		return nil, errorf(diagnostics.ErrE001, e.Token, "variable `%s` is used in its own initializer", v.Name())
	case typesystem.StateUnknown:
		if h, ok := w.c.homes[v]; ok {
			if err := w.c.checkGlobalVariable(v, h); err != nil {
				return nil, err
			}
		}
	}
	if v.State == typesystem.StateInvalid || v.Type == nil {
		return nil, errorf(diagnostics.ErrE001, e.Token, "variable `%s` has no valid type", v.Name())
	}
	return v.Type, nil
}
