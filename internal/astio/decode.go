// Package astio decodes programs serialised as YAML into the AST. It is the
// boundary with the parser: every node keeps the line and column of the YAML
// node it came from, so diagnostics point back into the source document.
package astio

import (
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
	"gopkg.in/yaml.v3"
)

type decoder struct {
	file        string
	progName    string
	namespace   string
	constraints map[string]bool
}

// Decode reads one program document. file is used for diagnostics and
// overridden by a `file:` key in the document.
func Decode(file string, data []byte) (*ast.Program, *diagnostics.DiagnosticError) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, toDiagnostic(file, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "empty document").InFile(file)
	}
	d := &decoder{file: file, namespace: config.GlobalNamespace}
	prog, err := d.program(root.Content[0])
	if err != nil {
		return nil, toDiagnostic(d.file, err)
	}
	return prog, nil
}

func (d *decoder) program(n *yaml.Node) (*ast.Program, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "a program must be a mapping")
	}
	if f, ok := field(n, "file"); ok {
		d.file = f.Value
	}
	name, ok := field(n, "name")
	if !ok || name.Value == "" {
		return nil, nodeErrorf(n, "a program needs a name")
	}
	d.progName = name.Value
	prog := &ast.Program{File: d.file, Name: d.progName}
	decls, ok := field(n, "declarations")
	if !ok {
		return prog, nil
	}
	var err error
	prog.Declarations, err = d.declarations(decls)
	return prog, err
}

func (d *decoder) declarations(n *yaml.Node) ([]ast.Declaration, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "expected a list of declarations")
	}
	out := make([]ast.Declaration, 0, len(n.Content))
	for _, item := range n.Content {
		decl, err := d.declaration(item)
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}
	return out, nil
}

var declarationKinds = []string{
	"import", "namespace", "function", "var", "val", "type",
	"while", "if", "return", "expr", "block",
}

func (d *decoder) declaration(n *yaml.Node) (ast.Declaration, error) {
	if n.Kind == yaml.ScalarNode {
		stmt, err := d.keywordStatement(n)
		if err != nil {
			return nil, err
		}
		return &ast.StatementDeclaration{Statement: stmt}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "expected a declaration")
	}
	kind, value := "", (*yaml.Node)(nil)
	for _, k := range declarationKinds {
		if v, ok := field(n, k); ok {
			kind, value = k, v
			break
		}
	}
	switch kind {
	case "import":
		return &ast.ImportDeclaration{Token: tokenOf(value, token.IMPORT), Path: value.Value}, nil
	case "namespace":
		return d.namespaceDeclaration(n, value)
	case "function":
		return d.functionDeclaration(n, value)
	case "var", "val":
		return d.variableDeclaration(n, value, kind == "var")
	case "type":
		return d.typeDeclaration(n, value)
	case "":
		return nil, nodeErrorf(n, "unknown declaration")
	default:
		stmt, err := d.statement(n, kind, value)
		if err != nil {
			return nil, err
		}
		return &ast.StatementDeclaration{Statement: stmt}, nil
	}
}

func (d *decoder) namespaceDeclaration(n, name *yaml.Node) (ast.Declaration, error) {
	if !isIdentifier(name.Value) {
		return nil, nodeErrorf(name, "invalid namespace name %q", name.Value)
	}
	outer := d.namespace
	d.namespace = name.Value
	defer func() { d.namespace = outer }()

	decl := &ast.NamespaceDeclaration{Token: tokenOf(name, token.NAMESPACE), Name: name.Value}
	if body, ok := field(n, "declarations"); ok {
		var err error
		if decl.Declarations, err = d.declarations(body); err != nil {
			return nil, err
		}
	}
	return decl, nil
}

func (d *decoder) functionDeclaration(n, name *yaml.Node) (ast.Declaration, error) {
	fn := &ast.FunctionDeclaration{
		Token:     tokenOf(name, token.IDENT),
		Namespace: d.namespace,
		Program:   d.progName,
		Public:    flag(n, "public"),
	}
	outer := d.constraints
	defer func() { d.constraints = outer }()
	d.constraints = make(map[string]bool)
	for k := range outer {
		d.constraints[k] = true
	}
	if cs, ok := field(n, "constraints"); ok {
		toks, err := identifiers(cs)
		if err != nil {
			return nil, err
		}
		fn.Constraints = toks
		for _, c := range toks {
			d.constraints[c.Lexeme] = true
		}
	}

	if params, ok := field(n, "params"); ok && !isNull(params) {
		if params.Kind != yaml.SequenceNode {
			return nil, nodeErrorf(params, "params must be a list")
		}
		for _, p := range params.Content {
			if p.Kind != yaml.MappingNode || len(p.Content) != 2 {
				return nil, nodeErrorf(p, "a parameter is written `name: type`")
			}
			inst, err := d.typeInstance(p.Content[1])
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, &ast.VariableDeclaration{
				Token:       tokenOf(p.Content[0], token.IDENT),
				Namespace:   d.namespace,
				Program:     d.progName,
				IsParameter: true,
				Type:        inst,
			})
		}
	}

	if ret, ok := field(n, "returns"); ok {
		inst, err := d.typeInstance(ret)
		if err != nil {
			return nil, err
		}
		fn.Return = inst
	} else {
		fn.Return = typesystem.NewInstance(token.New(token.IDENT, config.VoidTypeName, name.Line, name.Column), "")
	}

	fn.Body = &ast.Block{Token: tokenOf(name, token.IDENT)}
	if body, ok := field(n, "body"); ok {
		block, err := d.block(body)
		if err != nil {
			return nil, err
		}
		fn.Body = block
	}
	return fn, nil
}

func (d *decoder) variableDeclaration(n, name *yaml.Node, mutable bool) (ast.Declaration, error) {
	if !isIdentifier(name.Value) && name.Value != "_" {
		return nil, nodeErrorf(name, "invalid variable name %q", name.Value)
	}
	v := &ast.VariableDeclaration{
		Token:     tokenOf(name, token.IDENT),
		Namespace: d.namespace,
		Program:   d.progName,
		Public:    flag(n, "public"),
		Mutable:   mutable,
	}
	if t, ok := field(n, "type"); ok {
		inst, err := d.typeInstance(t)
		if err != nil {
			return nil, err
		}
		v.Type = inst
	}
	if value, ok := field(n, "value"); ok {
		e, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		v.Value = e
	}
	return v, nil
}

// typeDeclaration reads
//
//	type: maybe(a)
//	public: true
//	constructors: [Just(a), None, {Point: {x: int, y: int}}]
func (d *decoder) typeDeclaration(n, header *yaml.Node) (ast.Declaration, error) {
	if header.Kind != yaml.ScalarNode {
		return nil, nodeErrorf(header, "a type header is written `name(constraints...)`")
	}
	head, err := parseTypeString(header.Value, header.Line, header.Column, nil)
	if err != nil {
		return nil, err
	}
	if head.Category != typesystem.User || head.Namespace != "" || head.IsStar() {
		return nil, nodeErrorf(header, "invalid type header %q", header.Value)
	}
	t := &typesystem.Type{
		Token:     head.Token,
		Namespace: d.namespace,
		Program:   d.progName,
		Public:    flag(n, "public"),
	}
	constraints := make(map[string]bool)
	for _, p := range head.Params {
		if p.Category != typesystem.User || len(p.Params) > 0 || p.Namespace != "" {
			return nil, nodeErrorf(header, "type constraints must be plain names, found %s", p)
		}
		t.Constraints = append(t.Constraints, p.Token)
		constraints[p.Name()] = true
	}

	ctors, ok := field(n, "constructors")
	if !ok || isNull(ctors) {
		return &ast.TypeDeclaration{Token: t.Token, Type: t}, nil
	}
	if ctors.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(ctors, "constructors must be a list")
	}
	for _, c := range ctors.Content {
		switch c.Kind {
		case yaml.ScalarNode:
			inst, err := parseTypeString(c.Value, c.Line, c.Column, constraints)
			if err != nil {
				return nil, err
			}
			if inst.Category != typesystem.User || inst.Abstract || inst.Namespace != "" {
				return nil, nodeErrorf(c, "invalid constructor %q", c.Value)
			}
			t.AddDefault(&typesystem.DefaultConstructor{Token: inst.Token, Params: inst.Params})
		case yaml.MappingNode:
			if len(c.Content) != 2 || c.Content[1].Kind != yaml.MappingNode {
				return nil, nodeErrorf(c, "a record constructor is written `Name: {field: type, ...}`")
			}
			rec := &typesystem.RecordConstructor{Token: tokenOf(c.Content[0], token.IDENT)}
			fields := c.Content[1]
			for i := 0; i < len(fields.Content); i += 2 {
				inst, err := d.typeInstanceWith(fields.Content[i+1], constraints)
				if err != nil {
					return nil, err
				}
				rec.Fields = append(rec.Fields, typesystem.Field{Token: tokenOf(fields.Content[i], token.IDENT), Instance: inst})
			}
			t.AddRecord(rec)
		default:
			return nil, nodeErrorf(c, "invalid constructor")
		}
	}
	return &ast.TypeDeclaration{Token: t.Token, Type: t}, nil
}

func (d *decoder) block(n *yaml.Node) (*ast.Block, error) {
	decls, err := d.declarations(n)
	if err != nil {
		return nil, err
	}
	return &ast.Block{Token: tokenOf(n, token.IDENT), Declarations: decls}, nil
}

func (d *decoder) optionalBlock(n *yaml.Node, key string) (*ast.Block, error) {
	body, ok := field(n, key)
	if !ok {
		return nil, nil
	}
	return d.block(body)
}

func (d *decoder) keywordStatement(n *yaml.Node) (ast.Statement, error) {
	switch n.Value {
	case "break":
		return &ast.BreakStatement{Token: tokenOf(n, token.BREAK)}, nil
	case "continue":
		return &ast.ContinueStatement{Token: tokenOf(n, token.CONTINUE)}, nil
	case "pass":
		return &ast.PassStatement{Token: tokenOf(n, token.PASS)}, nil
	case "return":
		return &ast.ReturnStatement{Token: tokenOf(n, token.RETURN)}, nil
	default:
		return nil, nodeErrorf(n, "unknown statement %q", n.Value)
	}
}

func (d *decoder) statement(n *yaml.Node, kind string, value *yaml.Node) (ast.Statement, error) {
	switch kind {
	case "while":
		cond, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		body, err := d.optionalBlock(n, "body")
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = &ast.Block{Token: tokenOf(value, token.WHILE)}
		}
		return &ast.WhileStatement{Token: keyToken(n, kind, token.WHILE), Condition: cond, Body: body}, nil

	case "if":
		return d.ifStatement(n, value)

	case "return":
		stmt := &ast.ReturnStatement{Token: keyToken(n, kind, token.RETURN)}
		if !isNull(value) {
			e, err := d.expression(value)
			if err != nil {
				return nil, err
			}
			stmt.Value = e
		}
		return stmt, nil

	case "expr":
		e, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Token: e.GetToken(), Expression: e}, nil

	default: // block
		b, err := d.block(value)
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Token: keyToken(n, kind, token.IDENT), Block: b}, nil
	}
}

// ifStatement reads
//
//	if: <condition>
//	then: [...]
//	elif: [{cond: <condition>, body: [...]}, ...]
//	else: [...]
func (d *decoder) ifStatement(n, cond *yaml.Node) (ast.Statement, error) {
	c, err := d.expression(cond)
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Token: keyToken(n, "if", token.IF), Condition: c}
	if stmt.Then, err = d.optionalBlock(n, "then"); err != nil {
		return nil, err
	}
	if stmt.Then == nil {
		stmt.Then = &ast.Block{Token: stmt.Token}
	}
	if elifs, ok := field(n, "elif"); ok && !isNull(elifs) {
		if elifs.Kind != yaml.SequenceNode {
			return nil, nodeErrorf(elifs, "elif must be a list")
		}
		for _, e := range elifs.Content {
			condNode, ok := field(e, "cond")
			if !ok {
				return nil, nodeErrorf(e, "elif needs a cond")
			}
			ec, err := d.expression(condNode)
			if err != nil {
				return nil, err
			}
			body, err := d.optionalBlock(e, "body")
			if err != nil {
				return nil, err
			}
			if body == nil {
				body = &ast.Block{Token: tokenOf(e, token.ELIF)}
			}
			stmt.Elifs = append(stmt.Elifs, &ast.ElifBranch{Token: tokenOf(e, token.ELIF), Condition: ec, Body: body})
		}
	}
	if stmt.Else, err = d.optionalBlock(n, "else"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (d *decoder) typeInstance(n *yaml.Node) (*typesystem.Instance, error) {
	return d.typeInstanceWith(n, d.constraints)
}

// typeInstanceWith accepts a type string, or the YAML flow forms [t] and
// {k: v} for lists and maps.
func (d *decoder) typeInstanceWith(n *yaml.Node, constraints map[string]bool) (*typesystem.Instance, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return parseTypeString(n.Value, n.Line, n.Column, constraints)
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			return nil, nodeErrorf(n, "a list type has exactly one element type")
		}
		elem, err := d.typeInstanceWith(n.Content[0], constraints)
		if err != nil {
			return nil, err
		}
		return typesystem.NewList(tokenOf(n, token.IDENT), elem), nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, nodeErrorf(n, "a map type has exactly one key and one value type")
		}
		key, err := d.typeInstanceWith(n.Content[0], constraints)
		if err != nil {
			return nil, err
		}
		value, err := d.typeInstanceWith(n.Content[1], constraints)
		if err != nil {
			return nil, err
		}
		return typesystem.NewMap(tokenOf(n, token.IDENT), key, value), nil
	default:
		return nil, nodeErrorf(n, "expected a type")
	}
}

// field returns the value of key in mapping n.
func field(n *yaml.Node, key string) (*yaml.Node, bool) {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1], true
		}
	}
	return nil, false
}

// keyToken is the position of key itself, which is where statements start.
func keyToken(n *yaml.Node, key string, typ token.TokenType) token.Token {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return tokenOf(n.Content[i], typ)
		}
	}
	return tokenOf(n, typ)
}

func flag(n *yaml.Node, key string) bool {
	v, ok := field(n, key)
	if !ok {
		return false
	}
	var b bool
	return v.Decode(&b) == nil && b
}

func isNull(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func tokenOf(n *yaml.Node, typ token.TokenType) token.Token {
	return token.New(typ, n.Value, n.Line, n.Column)
}

func identifiers(n *yaml.Node) ([]token.Token, error) {
	if n.Kind == yaml.ScalarNode {
		if isNull(n) {
			return nil, nil
		}
		var out []token.Token
		for _, part := range strings.Split(n.Value, ",") {
			name := strings.TrimSpace(part)
			if !isIdentifier(name) {
				return nil, nodeErrorf(n, "invalid constraint %q", name)
			}
			out = append(out, token.New(token.IDENT, name, n.Line, n.Column))
		}
		return out, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "expected a list of names")
	}
	out := make([]token.Token, 0, len(n.Content))
	for _, c := range n.Content {
		if !isIdentifier(c.Value) {
			return nil, nodeErrorf(c, "invalid constraint %q", c.Value)
		}
		out = append(out, tokenOf(c, token.IDENT))
	}
	return out, nil
}
