package analyzer

import (
	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/modules"
	"github.com/ntwalibas/avalon-sub000/internal/symbols"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// entry is one namespace-level declaration with the place it lives in.
type entry struct {
	decl ast.Declaration
	h    home
}

// Check checks programs in the given order, which must put every program
// after the programs it imports. Built-in programs are checked together
// first, in a prelude scope every other program imports. The root, the
// last program of order, is returned once everything checked.
//
// The first fatal diagnostic stops the run and is returned as a
// *diagnostics.DiagnosticError.
func (c *Checker) Check(order []*ast.Program) (*ast.Program, error) {
	var builtins, user []*ast.Program
	for _, p := range order {
		if p.Builtin {
			builtins = append(builtins, p)
		} else {
			user = append(user, p)
		}
	}
	if len(builtins) > 0 {
		if err := c.checkUnits(builtins, c.prelude); err != nil {
			return nil, err
		}
		for _, p := range builtins {
			c.scopes[p.Name] = c.prelude
		}
	}
	for _, p := range user {
		c.log.Printf("check: %s", p.Name)
		if err := c.checkProgram(p); err != nil {
			return nil, err
		}
	}
	if len(order) == 0 {
		return nil, nil
	}
	return order[len(order)-1], nil
}

// CheckTable orders the programs reachable from root and checks them.
func (c *Checker) CheckTable(table *modules.Table, root string) (*ast.Program, error) {
	order, err := table.Order(root)
	if err != nil {
		return nil, err
	}
	return c.Check(order)
}

// checkProgram builds the scope of p from the prelude and p's imports,
// then checks p in it.
func (c *Checker) checkProgram(p *ast.Program) error {
	scope := symbols.NewEmptyScope(symbols.ScopeGlobal)
	if _, err := scope.Import(c.prelude); err != nil {
		return fatal(diagnostics.Wrap(diagnostics.ErrX001, token.Token{}, "importing built-ins", err), p.File)
	}
	for _, imp := range p.Imports() {
		dep, ok := c.scopes[imp.Path]
		if !ok {
			return fatal(errorf(diagnostics.ErrI001, imp.Token, "program `%s` is not checked before `%s`", imp.Path, p.Name), p.File)
		}
		outcome, err := scope.Import(dep)
		if err != nil {
			return fatal(wrap(diagnostics.ErrI001, imp.Token, "importing `"+imp.Path+"`", err), p.File)
		}
		c.log.Printf("import: %s into %s (%s)", imp.Path, p.Name, outcome)
	}
	c.scopes[p.Name] = scope
	return c.checkUnits([]*ast.Program{p}, scope)
}

// checkUnits populates scope from programs and checks them:
//  1. types are declared, then their constructors checked,
//  2. function headers are checked and functions declared, variables declared,
//  3. function bodies and variables are checked in source order.
//
// Declaring everything before checking bodies lets declarations refer to
// each other regardless of order.
func (c *Checker) checkUnits(programs []*ast.Program, scope *symbols.Scope) error {
	var entries []entry
	for _, p := range programs {
		var err error
		entries, err = flatten(entries, p.Declarations, home{program: p, scope: scope, namespace: config.GlobalNamespace}, false)
		if err != nil {
			return fatal(err, p.File)
		}
	}

	for _, e := range entries {
		if d, ok := e.decl.(*ast.TypeDeclaration); ok {
			d.Type.Namespace = e.h.namespace
			if err := scope.AddType(e.h.namespace, d.Type); err != nil {
				return fatal(wrap(diagnostics.ErrT001, d.Type.Token, "in declaration", err), e.h.program.File)
			}
		}
	}
	for _, e := range entries {
		if d, ok := e.decl.(*ast.TypeDeclaration); ok {
			if err := c.checkType(d.Type, e.h); err != nil {
				return fatal(err, e.h.program.File)
			}
		}
	}

	for _, e := range entries {
		switch d := e.decl.(type) {
		case *ast.FunctionDeclaration:
			d.Namespace = e.h.namespace
			if err := c.checkFunctionHeader(d, e.h); err != nil {
				return fatal(err, e.h.program.File)
			}
			if err := scope.AddFunction(e.h.namespace, d); err != nil {
				return fatal(wrap(diagnostics.ErrF001, d.Token, "in declaration", err), e.h.program.File)
			}
			c.homes[d] = e.h
		case *ast.VariableDeclaration:
			d.Namespace = e.h.namespace
			if err := scope.AddVariable(e.h.namespace, d); err != nil {
				return fatal(wrap(diagnostics.ErrV001, d.Token, "in declaration", err), e.h.program.File)
			}
			c.homes[d] = e.h
		}
	}

	for _, e := range entries {
		var err error
		switch d := e.decl.(type) {
		case *ast.FunctionDeclaration:
			err = c.checkFunctionBody(d, e.h)
		case *ast.VariableDeclaration:
			if d.State == typesystem.StateUnknown {
				err = c.checkGlobalVariable(d, e.h)
			}
		case *ast.StatementDeclaration:
			err = errorf(diagnostics.ErrS001, d.GetToken(), "statements are not allowed at namespace level")
		}
		if err != nil {
			return fatal(err, e.h.program.File)
		}
	}
	return nil
}

// flatten lists the namespace-level declarations of decls with the
// namespace each belongs to. Namespaces do not nest.
func flatten(out []entry, decls []ast.Declaration, h home, nested bool) ([]entry, error) {
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.NamespaceDeclaration:
			if nested {
				return nil, errorf(diagnostics.ErrB001, d.Token, "namespace `%s` cannot be declared inside namespace `%s`", d.Name, h.namespace)
			}
			inner := h
			inner.namespace = d.Name
			var err error
			if out, err = flatten(out, d.Declarations, inner, true); err != nil {
				return nil, err
			}
		case *ast.ImportDeclaration:
			if nested {
				return nil, errorf(diagnostics.ErrB001, d.Token, "imports must be at the top of the program")
			}
		default:
			out = append(out, entry{decl: d, h: h})
		}
	}
	return out, nil
}

// fatal stamps err with the file being checked and makes sure it is a
// diagnostic.
func fatal(err error, file string) error {
	de, ok := diagnostics.As(err)
	if !ok {
		de = diagnostics.Wrap(diagnostics.ErrX001, token.Token{}, "unexpected failure", err)
	}
	return de.InFile(file)
}
