package modules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/token"
)

// Table maps fully qualified program names to parsed programs. A fresh
// table already holds the built-in programs.
type Table struct {
	programs map[string]*ast.Program
	builtins []*ast.Program
}

func NewTable() *Table {
	t := &Table{programs: make(map[string]*ast.Program)}
	for _, p := range BuiltinPrograms() {
		t.programs[p.Name] = p
		t.builtins = append(t.builtins, p)
	}
	return t
}

// Add registers a user program. Names are unique across the table.
func (t *Table) Add(p *ast.Program) error {
	if p.Name == "" {
		return diagnostics.NewError(diagnostics.ErrI001, token.Token{}, "program has no name").InFile(p.File)
	}
	if existing, ok := t.programs[p.Name]; ok {
		return diagnostics.Errorf(diagnostics.ErrI001, token.Token{},
			"program `%s` is declared twice (%s and %s)", p.Name, describe(existing), describe(p)).InFile(p.File)
	}
	t.programs[p.Name] = p
	return nil
}

func (t *Table) Get(name string) (*ast.Program, bool) {
	p, ok := t.programs[name]
	return p, ok
}

// Names returns the user program names, sorted.
func (t *Table) Names() []string {
	var names []string
	for name, p := range t.programs {
		if !p.Builtin {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Order returns the programs root depends on, dependencies first and root
// last, preceded by every built-in program. Imports of an unknown program
// and import cycles are InvalidImport.
func (t *Table) Order(root string) ([]*ast.Program, error) {
	p, ok := t.programs[root]
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrI001, token.Token{}, "program `%s` not found", root)
	}
	o := &orderer{table: t, state: make(map[string]visitState)}
	for _, b := range t.builtins {
		o.state[b.Name] = visited
	}
	if err := o.visit(p); err != nil {
		return nil, err
	}
	return append(append([]*ast.Program(nil), t.builtins...), o.order...), nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

type orderer struct {
	table *Table
	state map[string]visitState
	stack []string
	order []*ast.Program
}

func (o *orderer) visit(p *ast.Program) error {
	o.state[p.Name] = visiting
	o.stack = append(o.stack, p.Name)
	for _, imp := range p.Imports() {
		dep, ok := o.table.programs[imp.Path]
		if !ok {
			return diagnostics.Errorf(diagnostics.ErrI001, imp.Token, "program `%s` not found", imp.Path).InFile(p.File)
		}
		switch o.state[dep.Name] {
		case visiting:
			return diagnostics.Errorf(diagnostics.ErrI001, imp.Token, "import cycle %s", o.cycle(dep.Name)).InFile(p.File)
		case unvisited:
			if err := o.visit(dep); err != nil {
				return err
			}
		}
	}
	o.stack = o.stack[:len(o.stack)-1]
	o.state[p.Name] = visited
	o.order = append(o.order, p)
	return nil
}

// cycle renders the import path from name back to itself.
func (o *orderer) cycle(name string) string {
	start := 0
	for i, n := range o.stack {
		if n == name {
			start = i
			break
		}
	}
	path := append(append([]string(nil), o.stack[start:]...), name)
	return strings.Join(path, " -> ")
}

func describe(p *ast.Program) string {
	if p.File != "" {
		return p.File
	}
	if p.Builtin {
		return "built-in"
	}
	return fmt.Sprintf("program %q", p.Name)
}
