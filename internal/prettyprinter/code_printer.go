// Package prettyprinter renders programs back to source form. With types
// enabled it spells out the instance inferred for every variable, which
// is how checked programs are inspected.
package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"or":  1,
	"and": 2,
	"==":  3,
	"!=":  3,
	"<":   4,
	">":   4,
	"<=":  4,
	">=":  4,
	"|":   5,
	"^":   6,
	"&":   7,
	"<<":  8,
	">>":  8,
	"+":   9,
	"-":   9,
	"*":   10,
	"/":   10,
	"%":   10,
	"**":  11, // right-assoc
	"=":   0,
}

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 12
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"**": true,
	"=":  true,
}

// prefixPrecedence binds tighter than every binary operator except `**`.
const prefixPrecedence = 11

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
	types  bool // annotate variables with their instances
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// NewTypedPrinter annotates every variable with its declared or inferred
// instance, including variables whose source omits the type.
func NewTypedPrinter() *CodePrinter {
	return &CodePrinter{types: true}
}

// Print renders one program.
func Print(prog *ast.Program, typed bool) string {
	p := NewCodePrinter()
	if typed {
		p = NewTypedPrinter()
	}
	p.Program(prog)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *CodePrinter) line(s string) {
	p.writeIndent()
	p.write(s)
	p.writeln()
}

func (p *CodePrinter) Program(prog *ast.Program) {
	for i, d := range prog.Declarations {
		if i > 0 {
			if _, ok := d.(*ast.ImportDeclaration); !ok {
				p.writeln()
			}
		}
		p.Declaration(d)
	}
}

func (p *CodePrinter) Declaration(d ast.Declaration) {
	switch d := d.(type) {
	case *ast.ImportDeclaration:
		p.line("import " + d.Path)
	case *ast.NamespaceDeclaration:
		p.line("namespace " + d.Name + " {")
		p.indent++
		for _, inner := range d.Declarations {
			p.Declaration(inner)
		}
		p.indent--
		p.line("}")
	case *ast.TypeDeclaration:
		p.typeDeclaration(d.Type)
	case *ast.FunctionDeclaration:
		p.function(d)
	case *ast.VariableDeclaration:
		p.writeIndent()
		p.variable(d)
		p.writeln()
	case *ast.StatementDeclaration:
		p.statement(d.Statement)
	}
}

func (p *CodePrinter) typeDeclaration(t *typesystem.Type) {
	p.writeIndent()
	if t.Public {
		p.write("pub ")
	}
	p.write("type " + t.String())
	var ctors []string
	for _, c := range t.Defaults {
		s := c.Name()
		if len(c.Params) > 0 {
			s += "(" + instances(c.Params) + ")"
		}
		ctors = append(ctors, s)
	}
	for _, c := range t.Records {
		fields := make([]string, len(c.Fields))
		for i, f := range c.Fields {
			fields[i] = f.Name() + ": " + f.Instance.String()
		}
		ctors = append(ctors, c.Name()+"("+strings.Join(fields, ", ")+")")
	}
	if len(ctors) > 0 {
		p.write(" = " + strings.Join(ctors, " | "))
	}
	p.writeln()
}

func (p *CodePrinter) function(fn *ast.FunctionDeclaration) {
	p.writeIndent()
	if fn.Public {
		p.write("pub ")
	}
	p.write("def " + fn.Name())
	if len(fn.Constraints) > 0 {
		names := make([]string, len(fn.Constraints))
		for i, c := range fn.Constraints {
			names[i] = c.Lexeme
		}
		p.write("[" + strings.Join(names, ", ") + "]")
	}
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = param.Name() + ": " + param.Type.String()
	}
	p.write("(" + strings.Join(params, ", ") + ") -> " + fn.Return.String())
	if fn.Builtin {
		p.writeln()
		return
	}
	p.write(" ")
	p.block(fn.Body)
	p.writeln()
	for _, spec := range fn.Specializations() {
		p.line("// " + spec.Name() + "(" + instances(spec.ParamInstances()) + ") -> " + spec.Return.String())
	}
}

func (p *CodePrinter) variable(v *ast.VariableDeclaration) {
	if v.Public {
		p.write("pub ")
	}
	if v.Mutable {
		p.write("var ")
	} else {
		p.write("val ")
	}
	p.write(v.Name())
	if v.Type != nil && (p.types || v.Value == nil) {
		p.write(": " + v.Type.String())
	}
	if v.Value != nil {
		p.write(" = ")
		p.printExpr(v.Value, 0, false)
	}
}

// block prints `{`, the declarations, then `}` without a trailing newline.
func (p *CodePrinter) block(b *ast.Block) {
	p.write("{")
	p.writeln()
	p.indent++
	if b != nil {
		for _, d := range b.Declarations {
			p.Declaration(d)
		}
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) statement(s ast.Statement) {
	switch s := s.(type) {
	case *ast.WhileStatement:
		p.writeIndent()
		p.write("while ")
		p.printExpr(s.Condition, 0, false)
		p.write(" ")
		p.block(s.Body)
		p.writeln()
	case *ast.IfStatement:
		p.writeIndent()
		p.write("if ")
		p.printExpr(s.Condition, 0, false)
		p.write(" ")
		p.block(s.Then)
		for _, elif := range s.Elifs {
			p.write(" elif ")
			p.printExpr(elif.Condition, 0, false)
			p.write(" ")
			p.block(elif.Body)
		}
		if s.Else != nil {
			p.write(" else ")
			p.block(s.Else)
		}
		p.writeln()
	case *ast.BreakStatement:
		p.line("break")
	case *ast.ContinueStatement:
		p.line("continue")
	case *ast.PassStatement:
		p.line("pass")
	case *ast.ReturnStatement:
		p.writeIndent()
		p.write("return")
		if s.Value != nil {
			p.write(" ")
			p.printExpr(s.Value, 0, false)
		}
		p.writeln()
	case *ast.ExpressionStatement:
		p.writeIndent()
		p.printExpr(s.Expression, 0, false)
		p.writeln()
	case *ast.BlockStatement:
		p.writeIndent()
		p.block(s.Block)
		p.writeln()
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		p.infix(e.Operator, e.Left, e.Right, parentPrec, isRight)
	case *ast.AssignmentExpression:
		p.infix("=", e.Target, e.Value, parentPrec, isRight)
	case *ast.UnaryExpression:
		needParens := parentPrec > prefixPrecedence
		if needParens {
			p.write("(")
		}
		p.write(e.Operator)
		if e.Operator == "not" {
			p.write(" ")
		}
		p.printExpr(e.Operand, prefixPrecedence, false)
		if needParens {
			p.write(")")
		}
	case *ast.LiteralExpression:
		if e.Kind == ast.StringLiteral {
			p.write(quote(e.Token.Lexeme))
		} else {
			p.write(e.Token.Lexeme)
		}
	case *ast.TupleExpression:
		p.write("(")
		p.exprList(e.Elements)
		if len(e.Elements) == 1 {
			p.write(",")
		}
		p.write(")")
	case *ast.ListExpression:
		p.write("[")
		p.exprList(e.Elements)
		p.write("]")
	case *ast.MapExpression:
		p.write("{")
		for i, pair := range e.Pairs {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(pair.Key, 0, false)
			p.write(": ")
			p.printExpr(pair.Value, 0, false)
		}
		p.write("}")
	case *ast.CallExpression:
		p.write(qualify(e.Namespace, e.Name()) + "(")
		for i, a := range e.Args {
			if i > 0 {
				p.write(", ")
			}
			if a.IsNamed() {
				p.write(a.Name.Lexeme + " = ")
			}
			p.printExpr(a.Value, 0, false)
		}
		p.write(")")
	case *ast.IdentifierExpression:
		p.write(qualify(e.Namespace, e.Name()))
	case *ast.CastExpression:
		p.write("cast(" + e.Target.String() + ") ")
		p.printExpr(e.Value, prefixPrecedence, false)
	case *ast.MatchExpression:
		needParens := parentPrec > 3
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Value, 4, false)
		if e.Negated {
			p.write(" is not ")
		} else {
			p.write(" is ")
		}
		p.printExpr(e.Pattern, 4, true)
		if needParens {
			p.write(")")
		}
	case *ast.GroupedExpression:
		p.write("(")
		p.printExpr(e.Inner, 0, false)
		p.write(")")
	case *ast.UnderscoreExpression:
		p.write("_")
	}
}

func (p *CodePrinter) infix(op string, left, right ast.Expression, parentPrec int, isRight bool) {
	prec := getPrecedence(op)
	needParens := prec < parentPrec
	// For same precedence, check associativity
	if prec == parentPrec {
		if isRight && !rightAssoc[op] {
			needParens = true
		} else if !isRight && rightAssoc[op] {
			needParens = true
		}
	}
	if needParens {
		p.write("(")
	}
	p.printExpr(left, prec, false)
	p.write(" " + op + " ")
	p.printExpr(right, prec, true)
	if needParens {
		p.write(")")
	}
}

func (p *CodePrinter) exprList(es []ast.Expression) {
	for i, e := range es {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(e, 0, false)
	}
}

func qualify(ns, name string) string {
	if ns == "" || ns == config.GlobalNamespace {
		return name
	}
	return ns + "." + name
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}

func instances(insts []*typesystem.Instance) string {
	parts := make([]string, len(insts))
	for i, inst := range insts {
		parts[i] = inst.String()
	}
	return strings.Join(parts, ", ")
}
