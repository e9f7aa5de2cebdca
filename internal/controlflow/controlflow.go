// Package controlflow decides, structurally and conservatively, whether a
// function body terminates on every path and which declarations in it can
// never be reached.
package controlflow

import (
	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/token"
)

// Finding is one unreachable declaration.
type Finding struct {
	Token   token.Token
	Message string
}

// Result is the outcome of analysing one function body.
type Result struct {
	// Terminates is true when every path through the body returns or
	// provably never finishes.
	Terminates  bool
	Unreachable []Finding
}

// flow summarises one declaration or block.
type flow struct {
	terminates bool // returns, or diverges, on every path
	interrupts bool // unconditionally leaves the block by break or continue
	breaks     bool // some path breaks out of the innermost enclosing loop
}

type analyzer struct {
	findings []Finding
}

// Analyze walks body once and collects every unreachable declaration.
func Analyze(body *ast.Block) Result {
	a := &analyzer{}
	f := a.block(body)
	return Result{Terminates: f.terminates, Unreachable: a.findings}
}

func (a *analyzer) block(b *ast.Block) flow {
	var out flow
	if b == nil {
		return out
	}
	for _, decl := range b.Declarations {
		if out.terminates || out.interrupts {
			// Nested declarations of a dead one are not visited.
			a.findings = append(a.findings, Finding{
				Token:   decl.GetToken(),
				Message: "declaration is never reached",
			})
			continue
		}
		f := a.declaration(decl)
		out.breaks = out.breaks || f.breaks
		out.terminates = f.terminates
		out.interrupts = f.interrupts
	}
	return out
}

func (a *analyzer) declaration(d ast.Declaration) flow {
	stmt, ok := d.(*ast.StatementDeclaration)
	if !ok {
		return flow{}
	}
	return a.statement(stmt.Statement)
}

func (a *analyzer) statement(s ast.Statement) flow {
	switch s := s.(type) {
	case *ast.ReturnStatement:
		return flow{terminates: true}
	case *ast.BreakStatement:
		return flow{interrupts: true, breaks: true}
	case *ast.ContinueStatement:
		return flow{interrupts: true}
	case *ast.BlockStatement:
		return a.block(s.Block)
	case *ast.IfStatement:
		return a.ifStatement(s)
	case *ast.WhileStatement:
		return a.whileStatement(s)
	case *ast.PassStatement, *ast.ExpressionStatement:
		return flow{}
	default:
		return flow{}
	}
}

// An if terminates only when it has an else and every branch terminates.
func (a *analyzer) ifStatement(s *ast.IfStatement) flow {
	branches := []flow{a.block(s.Then)}
	for _, elif := range s.Elifs {
		branches = append(branches, a.block(elif.Body))
	}
	hasElse := s.Else != nil
	if hasElse {
		branches = append(branches, a.block(s.Else))
	}

	out := flow{terminates: hasElse, interrupts: hasElse}
	for _, b := range branches {
		out.breaks = out.breaks || b.breaks
		if !b.terminates {
			out.terminates = false
		}
		if !b.terminates && !b.interrupts {
			out.interrupts = false
		}
	}
	// Every branch leaves, but not all by returning.
	if out.terminates {
		out.interrupts = false
	}
	return out
}

// A while terminates when its body unconditionally terminates, or when it
// loops forever: the condition is the literal True constructor and nothing
// breaks out of it.
func (a *analyzer) whileStatement(s *ast.WhileStatement) flow {
	body := a.block(s.Body)
	if body.terminates {
		return flow{terminates: true}
	}
	if isTrue(s.Condition) && !body.breaks {
		return flow{terminates: true}
	}
	return flow{}
}

func isTrue(e ast.Expression) bool {
	for {
		g, ok := e.(*ast.GroupedExpression)
		if !ok {
			break
		}
		e = g.Inner
	}
	id, ok := e.(*ast.IdentifierExpression)
	if !ok {
		return false
	}
	return id.Name() == config.TrueCtorName && (id.Namespace == "" || id.Namespace == config.GlobalNamespace)
}
