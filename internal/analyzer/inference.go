package analyzer

import (
	"fmt"
	"slices"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// infer computes the instance of e without contextual expectation.
func (w *walker) infer(e ast.Expression) (*typesystem.Instance, error) {
	return w.inferExpected(e, nil)
}

// inferExpected computes and memoizes the instance of e. expected, when
// known from context, steers overload resolution on return types and fills
// wildcard slots; it is never forced onto the result. A parser-supplied
// instance takes precedence over expected and must weak-compare with what
// is inferred.
func (w *walker) inferExpected(e ast.Expression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	if e.Inferred() {
		return e.Instance(), nil
	}

	declared := e.Annotation()
	if declared != nil {
		if _, _, err := w.validate(declared); err != nil {
			return nil, err
		}
		expected = declared
	}

	inferred, err := w.inferNode(e, expected)
	if err != nil {
		return nil, err
	}
	if declared != nil {
		if !typesystem.WeakCompare(inferred, declared) {
			return nil, errorf(diagnostics.ErrE001, e.GetToken(),
				"expression is annotated `%s` but has type `%s`", declared, inferred)
		}
		inferred = typesystem.Fill(inferred, declared, w.fixed)
	}
	if _, _, err := w.validate(inferred); err != nil {
		return nil, err
	}
	e.SetInstance(inferred)
	return inferred, nil
}

func (w *walker) inferNode(e ast.Expression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	switch e := e.(type) {
	case *ast.LiteralExpression:
		return w.builtinInstance(e.Kind.String(), e.Token)
	case *ast.TupleExpression:
		return w.inferTuple(e, expected)
	case *ast.ListExpression:
		return w.inferList(e, expected)
	case *ast.MapExpression:
		return w.inferMap(e, expected)
	case *ast.CallExpression:
		return w.inferCall(e, expected)
	case *ast.IdentifierExpression:
		return w.inferIdentifier(e)
	case *ast.CastExpression:
		return w.inferCast(e)
	case *ast.UnaryExpression:
		return w.inferUnary(e, expected)
	case *ast.BinaryExpression:
		return w.inferBinary(e, expected)
	case *ast.MatchExpression:
		return w.inferMatch(e)
	case *ast.AssignmentExpression:
		return w.inferAssignment(e)
	case *ast.GroupedExpression:
		return w.inferExpected(e.Inner, expected)
	case *ast.UnderscoreExpression:
		if !w.inPattern {
			return nil, errorf(diagnostics.ErrE001, e.Token, "`_` is only allowed in patterns and constructor arguments")
		}
		return typesystem.Star(e.Token), nil
	default:
		panic(fmt.Sprintf("[compiler error] unexpected expression %T", e))
	}
}

// param returns the k-th parameter of expected if it has the given shape.
func param(expected *typesystem.Instance, category typesystem.Category, arity, k int) *typesystem.Instance {
	if expected == nil || expected.Category != category || len(expected.Params) != arity || k >= arity {
		return nil
	}
	return expected.Params[k]
}

func (w *walker) inferTuple(e *ast.TupleExpression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	elems := make([]*typesystem.Instance, len(e.Elements))
	for i, el := range e.Elements {
		inst, err := w.inferExpected(el, param(expected, typesystem.Tuple, len(e.Elements), i))
		if err != nil {
			return nil, err
		}
		elems[i] = inst
	}
	return typesystem.NewTuple(e.Token, elems...), nil
}

// inferList takes the element instance from the first element. Every other
// element must weak-compare with it; later elements may complete parts the
// first one left open.
func (w *walker) inferList(e *ast.ListExpression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	if len(e.Elements) == 0 {
		return typesystem.NewList(e.Token, typesystem.Star(e.Token)), nil
	}
	hint := param(expected, typesystem.List, 1, 0)
	elem, err := w.inferExpected(e.Elements[0], hint)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(e.Elements); i++ {
		inst, err := w.inferExpected(e.Elements[i], hint)
		if err != nil {
			return nil, err
		}
		if !typesystem.WeakCompare(elem, inst) {
			return nil, errorf(diagnostics.ErrE001, e.Elements[i].GetToken(),
				"list element at index %d has type `%s` but the list holds `%s`", i, inst, elem)
		}
		elem = typesystem.Fill(elem, inst, w.fixed)
	}
	return typesystem.NewList(e.Token, elem), nil
}

// inferMap works like inferList on keys and values, and requires a
// `__hash__` function for the key once the key instance is concrete.
func (w *walker) inferMap(e *ast.MapExpression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	if len(e.Pairs) == 0 {
		return typesystem.NewMap(e.Token, typesystem.Star(e.Token), typesystem.Star(e.Token)), nil
	}
	keyHint := param(expected, typesystem.Map, 2, 0)
	valueHint := param(expected, typesystem.Map, 2, 1)

	var key, value *typesystem.Instance
	for i, pair := range e.Pairs {
		k, err := w.inferExpected(pair.Key, keyHint)
		if err != nil {
			return nil, err
		}
		v, err := w.inferExpected(pair.Value, valueHint)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			key, value = k, v
			continue
		}
		if !typesystem.WeakCompare(key, k) {
			return nil, errorf(diagnostics.ErrE001, pair.Key.GetToken(),
				"map key at index %d has type `%s` but the map is keyed by `%s`", i, k, key)
		}
		if !typesystem.WeakCompare(value, v) {
			return nil, errorf(diagnostics.ErrE001, pair.Value.GetToken(),
				"map value at index %d has type `%s` but the map holds `%s`", i, v, value)
		}
		key = typesystem.Fill(key, k, w.fixed)
		value = typesystem.Fill(value, v, w.fixed)
	}
	if key.IsComplete() {
		if err := w.requireHashable(key, e.Pairs[0].Key); err != nil {
			return nil, err
		}
	}
	return typesystem.NewMap(e.Token, key, value), nil
}

// requireHashable looks for a unary `__hash__` accepting key, in the
// current namespaces and in the namespace the key type is declared in.
func (w *walker) requireHashable(key *typesystem.Instance, at ast.Expression) error {
	namespaces := w.namespaces("")
	home := key.Namespace
	if key.Builder != nil {
		home = key.Builder.Namespace
	}
	if home != "" && !slices.Contains(namespaces, home) {
		namespaces = append(namespaces, home)
	}
	for _, ns := range namespaces {
		for _, fn := range w.scope.GetFunctions(ns, config.HashFuncName, 1) {
			if typesystem.WeakCompare(fn.Params[0].Type, key) {
				return nil
			}
		}
	}
	return errorf(diagnostics.ErrT001, at.GetToken(), "key not hashable: no `%s` accepts `%s`", config.HashFuncName, key)
}
