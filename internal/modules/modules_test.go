package modules

import (
	"errors"
	"strings"
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/token"
)

func program(name string, imports ...string) *ast.Program {
	p := &ast.Program{Name: name, File: name + ".yaml"}
	for i, imp := range imports {
		p.Declarations = append(p.Declarations, &ast.ImportDeclaration{
			Token: token.New(token.IMPORT, "import", i+1, 1),
			Path:  imp,
		})
	}
	return p
}

func names(programs []*ast.Program) []string {
	var out []string
	for _, p := range programs {
		if !p.Builtin {
			out = append(out, p.Name)
		}
	}
	return out
}

func assertImportError(t *testing.T, err error, fragment string) {
	t.Helper()
	if !errors.Is(err, &diagnostics.DiagnosticError{Code: diagnostics.ErrI001}) {
		t.Fatalf("expected InvalidImport, got %v", err)
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Fatalf("expected %q in %q", fragment, err.Error())
	}
}

func TestOrderPutsDependenciesFirst(t *testing.T) {
	table := NewTable()
	for _, p := range []*ast.Program{
		program("app", "geo", "util"),
		program("geo", "util"),
		program("util"),
		program("unused"),
	} {
		if err := table.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	order, err := table.Order("app")
	if err != nil {
		t.Fatal(err)
	}
	for i, name := range config.BuiltinPrograms {
		if order[i].Name != name || !order[i].Builtin {
			t.Fatalf("built-ins must come first in order, got %s at %d", order[i].Name, i)
		}
	}
	got := strings.Join(names(order), ",")
	if got != "util,geo,app" {
		t.Errorf("order = %s", got)
	}
}

func TestOrderReportsCycles(t *testing.T) {
	table := NewTable()
	for _, p := range []*ast.Program{program("a", "b"), program("b", "c"), program("c", "a")} {
		if err := table.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	_, err := table.Order("a")
	assertImportError(t, err, "a -> b -> c -> a")
}

func TestOrderReportsUnknownImport(t *testing.T) {
	table := NewTable()
	if err := table.Add(program("a", "missing")); err != nil {
		t.Fatal(err)
	}
	_, err := table.Order("a")
	assertImportError(t, err, "a.yaml:1:1")
}

func TestDuplicateProgram(t *testing.T) {
	table := NewTable()
	if err := table.Add(program("a")); err != nil {
		t.Fatal(err)
	}
	assertImportError(t, table.Add(program("a")), "declared twice")
	assertImportError(t, table.Add(program(config.IntTypeName)), "built-in")
}

func TestBuiltinProgramsAreFresh(t *testing.T) {
	first, second := BuiltinPrograms(), BuiltinPrograms()
	if first[0] == second[0] || first[0].Declarations[0] == second[0].Declarations[0] {
		t.Fatalf("built-in programs must not be shared between calls")
	}
	boolType := first[0].Declarations[0].(*ast.TypeDeclaration).Type
	if boolType.Name() != config.BoolTypeName || len(boolType.Defaults) != 2 {
		t.Fatalf("unexpected bool type %v", boolType)
	}
	for _, p := range first {
		for _, d := range p.Declarations {
			if fn, ok := d.(*ast.FunctionDeclaration); ok && (!fn.Builtin || !fn.Public) {
				t.Errorf("%s.%s should be a public built-in", p.Name, fn.Name())
			}
		}
	}
}
