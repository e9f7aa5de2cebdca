package astio

import (
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"gopkg.in/yaml.v3"
)

var expressionKinds = []string{
	"int", "dec", "float", "string", "tuple", "list", "map", "call", "id",
	"cast", "unary", "binary", "match", "assign", "group",
}

// expression reads one expression. Plain scalars are shorthands: YAML
// integers and floats are literals, quoted scalars are strings, `_` is the
// underscore and anything else is an identifier, optionally `Ns.name`.
// Mapping forms take an optional `type:` key whose instance is attached as
// if the parser had written it.
func (d *decoder) expression(n *yaml.Node) (ast.Expression, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalarExpression(n)
	case yaml.MappingNode:
	case yaml.AliasNode:
		return d.expression(n.Alias)
	default:
		return nil, nodeErrorf(n, "expected an expression")
	}

	kind, value := "", (*yaml.Node)(nil)
	for _, k := range expressionKinds {
		if v, ok := field(n, k); ok {
			kind, value = k, v
			break
		}
	}
	if kind == "" {
		return nil, nodeErrorf(n, "unknown expression")
	}
	e, err := d.mappingExpression(n, kind, value)
	if err != nil {
		return nil, err
	}
	if t, ok := field(n, "type"); ok {
		inst, err := d.typeInstance(t)
		if err != nil {
			return nil, err
		}
		e.Annotate(inst)
	}
	return e, nil
}

func (d *decoder) scalarExpression(n *yaml.Node) (ast.Expression, error) {
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return &ast.LiteralExpression{Token: tokenOf(n, token.STRING), Kind: ast.StringLiteral}, nil
	}
	switch n.Tag {
	case "!!int":
		return &ast.LiteralExpression{Token: tokenOf(n, token.INTEGER), Kind: ast.IntLiteral}, nil
	case "!!float":
		return &ast.LiteralExpression{Token: tokenOf(n, token.FLOAT), Kind: ast.FloatLiteral}, nil
	case "!!null":
		return nil, nodeErrorf(n, "expected an expression")
	}
	if n.Value == "_" {
		return &ast.UnderscoreExpression{Token: tokenOf(n, token.UNDERSCORE)}, nil
	}
	ns, name, err := qualified(n)
	if err != nil {
		return nil, err
	}
	tok := tokenOf(n, token.IDENT)
	tok.Lexeme = name
	return &ast.IdentifierExpression{Token: tok, Namespace: ns}, nil
}

func (d *decoder) mappingExpression(n *yaml.Node, kind string, value *yaml.Node) (ast.Expression, error) {
	tok := keyToken(n, kind, token.IDENT)
	switch kind {
	case "int":
		return literal(value, token.INTEGER, ast.IntLiteral), nil
	case "dec":
		return literal(value, token.DECIMAL, ast.DecLiteral), nil
	case "float":
		return literal(value, token.FLOAT, ast.FloatLiteral), nil
	case "string":
		return literal(value, token.STRING, ast.StringLiteral), nil

	case "tuple":
		elems, err := d.expressionList(value)
		if err != nil {
			return nil, err
		}
		return &ast.TupleExpression{Token: tok, Elements: elems}, nil

	case "list":
		elems, err := d.expressionList(value)
		if err != nil {
			return nil, err
		}
		return &ast.ListExpression{Token: tok, Elements: elems}, nil

	case "map":
		return d.mapExpression(tok, value)

	case "call":
		return d.callExpression(n, value)

	case "id":
		ns, name, err := qualified(value)
		if err != nil {
			return nil, err
		}
		if explicit, ok := field(n, "ns"); ok {
			ns = explicit.Value
		}
		id := tokenOf(value, token.IDENT)
		id.Lexeme = name
		return &ast.IdentifierExpression{Token: id, Namespace: ns}, nil

	case "cast":
		target, err := d.typeInstance(value)
		if err != nil {
			return nil, err
		}
		operand, err := d.requiredExpression(n, "value")
		if err != nil {
			return nil, err
		}
		return &ast.CastExpression{Token: keyToken(n, kind, token.CAST), Target: target, Value: operand}, nil

	case "unary":
		operand, err := d.requiredExpression(n, "operand")
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Token: tokenOf(value, token.OPERATOR), Operator: value.Value, Operand: operand}, nil

	case "binary":
		left, err := d.requiredExpression(n, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.requiredExpression(n, "right")
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpression{Token: tokenOf(value, token.OPERATOR), Operator: value.Value, Left: left, Right: right}, nil

	case "match":
		subject, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		pattern, err := d.requiredExpression(n, "pattern")
		if err != nil {
			return nil, err
		}
		return &ast.MatchExpression{Token: keyToken(n, kind, token.IS), Value: subject, Pattern: pattern, Negated: flag(n, "negated")}, nil

	case "assign":
		target, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		rhs, err := d.requiredExpression(n, "value")
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{Token: keyToken(n, kind, token.OPERATOR), Target: target, Value: rhs}, nil

	default: // group
		inner, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		return &ast.GroupedExpression{Token: tok, Inner: inner}, nil
	}
}

func (d *decoder) requiredExpression(n *yaml.Node, key string) (ast.Expression, error) {
	v, ok := field(n, key)
	if !ok {
		return nil, nodeErrorf(n, "missing %q", key)
	}
	return d.expression(v)
}

func (d *decoder) expressionList(n *yaml.Node) ([]ast.Expression, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "expected a list of expressions")
	}
	out := make([]ast.Expression, 0, len(n.Content))
	for _, item := range n.Content {
		e, err := d.expression(item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// mapExpression reads a list of [key, value] pairs.
func (d *decoder) mapExpression(tok token.Token, n *yaml.Node) (ast.Expression, error) {
	m := &ast.MapExpression{Token: tok}
	if isNull(n) {
		return m, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "a map is a list of [key, value] pairs")
	}
	for _, pair := range n.Content {
		if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
			return nil, nodeErrorf(pair, "a map entry is a [key, value] pair")
		}
		k, err := d.expression(pair.Content[0])
		if err != nil {
			return nil, err
		}
		v, err := d.expression(pair.Content[1])
		if err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, ast.MapPair{Key: k, Value: v})
	}
	return m, nil
}

// callExpression reads
//
//	call: name          (or Ns.name, or with `ns: Ns`)
//	args: [...]         positional arguments
//	fields: {x: ..}     named arguments, in order
func (d *decoder) callExpression(n, name *yaml.Node) (ast.Expression, error) {
	ns, callee, err := qualified(name)
	if err != nil {
		return nil, err
	}
	if explicit, ok := field(n, "ns"); ok {
		ns = explicit.Value
	}
	tok := tokenOf(name, token.IDENT)
	tok.Lexeme = callee
	call := &ast.CallExpression{Token: tok, Namespace: ns}

	if args, ok := field(n, "args"); ok {
		elems, err := d.expressionList(args)
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			call.Args = append(call.Args, ast.Argument{Value: e})
		}
	}
	if fields, ok := field(n, "fields"); ok && !isNull(fields) {
		if fields.Kind != yaml.MappingNode {
			return nil, nodeErrorf(fields, "fields must be a mapping")
		}
		for i := 0; i+1 < len(fields.Content); i += 2 {
			e, err := d.expression(fields.Content[i+1])
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, ast.Argument{Name: tokenOf(fields.Content[i], token.IDENT), Value: e})
		}
	}
	return call, nil
}

func literal(n *yaml.Node, typ token.TokenType, kind ast.LiteralKind) ast.Expression {
	return &ast.LiteralExpression{Token: tokenOf(n, typ), Kind: kind}
}

// qualified splits `Ns.name` into its namespace and name.
func qualified(n *yaml.Node) (string, string, error) {
	ns, name := "", n.Value
	if i := strings.LastIndex(n.Value, "."); i >= 0 {
		ns, name = n.Value[:i], n.Value[i+1:]
		if !isIdentifier(ns) {
			return "", "", nodeErrorf(n, "invalid namespace %q", ns)
		}
	}
	if !isIdentifier(name) {
		return "", "", nodeErrorf(n, "invalid name %q", n.Value)
	}
	return ns, name, nil
}
