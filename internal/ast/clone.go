package ast

import (
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// InstanceMapper rewrites a type instance while a tree is cloned.
type InstanceMapper func(*typesystem.Instance) *typesystem.Instance

// CloneFunction deep-copies fn: parameters, return instance and the whole
// body. Every declared instance (parameters, return, local variable types,
// cast targets, parser-seeded expression instances) goes through mapInst.
// Inferred instances and resolved references are dropped so the copy is
// checked afresh. The copy has no specializations of its own.
func CloneFunction(fn *FunctionDeclaration, mapInst InstanceMapper) *FunctionDeclaration {
	c := &cloner{mapInst: mapInst, vars: make(map[*VariableDeclaration]*VariableDeclaration)}
	out := &FunctionDeclaration{
		Token:       fn.Token,
		Namespace:   fn.Namespace,
		Program:     fn.Program,
		Public:      fn.Public,
		Builtin:     fn.Builtin,
		Constraints: append(fn.Constraints[:0:0], fn.Constraints...),
		Return:      c.instance(fn.Return),
	}
	out.Params = make([]*VariableDeclaration, len(fn.Params))
	for i, p := range fn.Params {
		out.Params[i] = c.variable(p)
	}
	out.Body = c.block(fn.Body)
	return out
}

// CloneExpression deep-copies a single expression tree.
func CloneExpression(e Expression, mapInst InstanceMapper) Expression {
	c := &cloner{mapInst: mapInst, vars: make(map[*VariableDeclaration]*VariableDeclaration)}
	return c.expression(e)
}

type cloner struct {
	mapInst InstanceMapper
	vars    map[*VariableDeclaration]*VariableDeclaration
}

func (c *cloner) instance(inst *typesystem.Instance) *typesystem.Instance {
	if inst == nil {
		return nil
	}
	if c.mapInst == nil {
		return inst.Copy()
	}
	return c.mapInst(inst)
}

func (c *cloner) variable(v *VariableDeclaration) *VariableDeclaration {
	if v == nil {
		return nil
	}
	out := &VariableDeclaration{
		Token:       v.Token,
		Namespace:   v.Namespace,
		Program:     v.Program,
		Public:      v.Public,
		Mutable:     v.Mutable,
		IsParameter: v.IsParameter,
		Type:        c.instance(v.Type),
		Value:       c.expression(v.Value),
	}
	c.vars[v] = out
	return out
}

func (c *cloner) block(b *Block) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Token: b.Token, Declarations: make([]Declaration, len(b.Declarations))}
	for i, d := range b.Declarations {
		out.Declarations[i] = c.declaration(d)
	}
	return out
}

func (c *cloner) declaration(d Declaration) Declaration {
	switch d := d.(type) {
	case *VariableDeclaration:
		return c.variable(d)
	case *StatementDeclaration:
		return &StatementDeclaration{Statement: c.statement(d.Statement)}
	case *ImportDeclaration:
		cp := *d
		return &cp
	case *NamespaceDeclaration:
		out := &NamespaceDeclaration{Token: d.Token, Name: d.Name, Declarations: make([]Declaration, len(d.Declarations))}
		for i, inner := range d.Declarations {
			out.Declarations[i] = c.declaration(inner)
		}
		return out
	case *TypeDeclaration:
		return &TypeDeclaration{Token: d.Token, Type: d.Type}
	case *FunctionDeclaration:
		return CloneFunction(d, c.mapInst)
	default:
		panic(fmt.Sprintf("[compiler error] unexpected declaration %T", d))
	}
}

func (c *cloner) statement(s Statement) Statement {
	switch s := s.(type) {
	case *WhileStatement:
		return &WhileStatement{Token: s.Token, Condition: c.expression(s.Condition), Body: c.block(s.Body)}
	case *IfStatement:
		out := &IfStatement{
			Token:     s.Token,
			Condition: c.expression(s.Condition),
			Then:      c.block(s.Then),
			Else:      c.block(s.Else),
		}
		for _, elif := range s.Elifs {
			out.Elifs = append(out.Elifs, &ElifBranch{
				Token:     elif.Token,
				Condition: c.expression(elif.Condition),
				Body:      c.block(elif.Body),
			})
		}
		return out
	case *BreakStatement:
		return &BreakStatement{Token: s.Token}
	case *ContinueStatement:
		return &ContinueStatement{Token: s.Token}
	case *PassStatement:
		return &PassStatement{Token: s.Token}
	case *ReturnStatement:
		return &ReturnStatement{Token: s.Token, Value: c.expression(s.Value)}
	case *ExpressionStatement:
		return &ExpressionStatement{Token: s.Token, Expression: c.expression(s.Expression)}
	case *BlockStatement:
		return &BlockStatement{Token: s.Token, Block: c.block(s.Block)}
	default:
		panic(fmt.Sprintf("[compiler error] unexpected statement %T", s))
	}
}

func (c *cloner) expressions(es []Expression) []Expression {
	if es == nil {
		return nil
	}
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = c.expression(e)
	}
	return out
}

func (c *cloner) expression(e Expression) Expression {
	if e == nil {
		return nil
	}
	var out Expression
	switch e := e.(type) {
	case *LiteralExpression:
		out = &LiteralExpression{Token: e.Token, Kind: e.Kind}
	case *TupleExpression:
		out = &TupleExpression{Token: e.Token, Elements: c.expressions(e.Elements)}
	case *ListExpression:
		out = &ListExpression{Token: e.Token, Elements: c.expressions(e.Elements)}
	case *MapExpression:
		pairs := make([]MapPair, len(e.Pairs))
		for i, p := range e.Pairs {
			pairs[i] = MapPair{Key: c.expression(p.Key), Value: c.expression(p.Value)}
		}
		out = &MapExpression{Token: e.Token, Pairs: pairs}
	case *CallExpression:
		args := make([]Argument, len(e.Args))
		for i, a := range e.Args {
			args[i] = Argument{Name: a.Name, Value: c.expression(a.Value)}
		}
		out = &CallExpression{Token: e.Token, Namespace: e.Namespace, Args: args}
	case *IdentifierExpression:
		out = &IdentifierExpression{Token: e.Token, Namespace: e.Namespace}
	case *CastExpression:
		out = &CastExpression{Token: e.Token, Target: c.instance(e.Target), Value: c.expression(e.Value)}
	case *UnaryExpression:
		out = &UnaryExpression{Token: e.Token, Operator: e.Operator, Operand: c.expression(e.Operand)}
	case *BinaryExpression:
		out = &BinaryExpression{Token: e.Token, Operator: e.Operator, Left: c.expression(e.Left), Right: c.expression(e.Right)}
	case *MatchExpression:
		out = &MatchExpression{Token: e.Token, Value: c.expression(e.Value), Pattern: c.expression(e.Pattern), Negated: e.Negated}
	case *AssignmentExpression:
		out = &AssignmentExpression{Token: e.Token, Target: c.expression(e.Target), Value: c.expression(e.Value)}
	case *GroupedExpression:
		out = &GroupedExpression{Token: e.Token, Inner: c.expression(e.Inner)}
	case *UnderscoreExpression:
		out = &UnderscoreExpression{Token: e.Token}
	default:
		panic(fmt.Sprintf("[compiler error] unexpected expression %T", e))
	}
	if ann := e.Annotation(); ann != nil {
		out.Annotate(c.instance(ann))
	}
	return out
}
