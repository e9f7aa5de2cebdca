package analyzer

import (
	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// inferCast is the identity when the value already has the target type;
// otherwise it resolves a `__cast__` overload returning the target.
func (w *walker) inferCast(e *ast.CastExpression) (*typesystem.Instance, error) {
	if _, _, err := w.validate(e.Target); err != nil {
		return nil, err
	}
	value, err := w.inferExpected(e.Value, e.Target)
	if err != nil {
		return nil, err
	}
	if typesystem.StrongCompare(value, e.Target) {
		return e.Target, nil
	}
	fn, ret, err := w.findFunction(e.Token, config.CastFuncName, w.namespaces(""), []*typesystem.Instance{value}, e.Target)
	if err != nil {
		return nil, wrap(diagnostics.ErrE001, e.Token, "cannot cast `"+value.String()+"` to `"+e.Target.String()+"`", err)
	}
	e.Function = fn
	return ret, nil
}

func (w *walker) inferUnary(e *ast.UnaryExpression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	name, ok := config.UnaryOperators[e.Operator]
	if !ok {
		return nil, errorf(diagnostics.ErrE001, e.Token, "unknown unary operator `%s`", e.Operator)
	}
	operand, err := w.infer(e.Operand)
	if err != nil {
		return nil, err
	}
	fn, ret, err := w.findFunction(e.Token, name, w.namespaces(""), []*typesystem.Instance{operand}, expected)
	if err != nil {
		return nil, err
	}
	e.Function = fn
	return ret, nil
}

func (w *walker) inferBinary(e *ast.BinaryExpression, expected *typesystem.Instance) (*typesystem.Instance, error) {
	name, ok := config.BinaryOperators[e.Operator]
	if !ok {
		return nil, errorf(diagnostics.ErrE001, e.Token, "unknown binary operator `%s`", e.Operator)
	}
	left, err := w.infer(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := w.infer(e.Right)
	if err != nil {
		return nil, err
	}
	fn, ret, err := w.findFunction(e.Token, name, w.namespaces(""), []*typesystem.Instance{left, right}, expected)
	if err != nil {
		return nil, err
	}
	e.Function = fn
	return ret, nil
}

// inferMatch checks that the pattern can describe the value. Underscores
// are allowed anywhere inside the pattern.
func (w *walker) inferMatch(e *ast.MatchExpression) (*typesystem.Instance, error) {
	value, err := w.infer(e.Value)
	if err != nil {
		return nil, err
	}
	outer := w.inPattern
	w.inPattern = true
	pattern, err := w.inferExpected(e.Pattern, value)
	w.inPattern = outer
	if err != nil {
		return nil, err
	}
	if !typesystem.WeakCompare(value, pattern) {
		return nil, errorf(diagnostics.ErrE001, e.Pattern.GetToken(),
			"pattern of type `%s` can never match a value of type `%s`", pattern, value)
	}
	return w.builtinInstance(config.BoolTypeName, e.Token)
}

// inferAssignment requires a mutable variable (or `_`) on the left. The
// expression has the type of the assigned variable.
func (w *walker) inferAssignment(e *ast.AssignmentExpression) (*typesystem.Instance, error) {
	if _, ok := e.Target.(*ast.UnderscoreExpression); ok {
		value, err := w.infer(e.Value)
		if err != nil {
			return nil, err
		}
		e.Target.SetInstance(value)
		return value, nil
	}
	id, ok := unwrapGroup(e.Target).(*ast.IdentifierExpression)
	if !ok {
		return nil, errorf(diagnostics.ErrE001, e.Target.GetToken(), "only variables can be assigned to")
	}
	target, err := w.infer(e.Target)
	if err != nil {
		return nil, err
	}
	if id.Kind != ast.VariableIdentifier {
		return nil, errorf(diagnostics.ErrE001, id.Token, "`%s` is not a variable", id.Name())
	}
	if !id.Variable.Mutable {
		return nil, errorf(diagnostics.ErrE001, id.Token, "cannot assign to immutable variable `%s`", id.Name())
	}
	value, err := w.inferExpected(e.Value, target)
	if err != nil {
		return nil, err
	}
	if !w.compare(typesystem.Fill(value, target, w.fixed), target) {
		return nil, errorf(diagnostics.ErrE001, e.Value.GetToken(),
			"cannot assign `%s` to variable `%s` of type `%s`", value, id.Name(), target)
	}
	return target, nil
}

func unwrapGroup(e ast.Expression) ast.Expression {
	for {
		g, ok := e.(*ast.GroupedExpression)
		if !ok {
			return e
		}
		e = g.Inner
	}
}
