package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/astio"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/modules"
)

// analyzeSource decodes each source as one program and checks the last
// one together with everything it imports.
func analyzeSource(t *testing.T, cfg *config.Config, sources ...string) (*Checker, *ast.Program, error) {
	t.Helper()
	table := modules.NewTable()
	root := ""
	for i, src := range sources {
		prog, derr := astio.Decode(fmt.Sprintf("test%d.yaml", i), []byte(src))
		if derr != nil {
			t.Fatalf("decode: %v", derr)
		}
		if err := table.Add(prog); err != nil {
			t.Fatalf("add: %v", err)
		}
		root = prog.Name
	}
	c := NewChecker(cfg, nil)
	prog, err := c.CheckTable(table, root)
	return c, prog, err
}

// expectNoErrors checks sources in the default configuration and fails on
// any fatal diagnostic.
func expectNoErrors(t *testing.T, sources ...string) (*Checker, *ast.Program) {
	t.Helper()
	c, prog, err := analyzeSource(t, nil, sources...)
	if err != nil {
		t.Fatalf("expected no errors, got: %v", err)
	}
	return c, prog
}

// expectError asserts a diagnostic with the given code whose message
// contains substr.
func expectError(t *testing.T, code diagnostics.ErrorCode, substr string, sources ...string) *diagnostics.DiagnosticError {
	t.Helper()
	return expectErrorWith(t, nil, code, substr, sources...)
}

func expectErrorWith(t *testing.T, cfg *config.Config, code diagnostics.ErrorCode, substr string, sources ...string) *diagnostics.DiagnosticError {
	t.Helper()
	_, _, err := analyzeSource(t, cfg, sources...)
	if err == nil {
		t.Fatalf("expected error %s, but got none", code)
	}
	de, ok := diagnostics.As(err)
	if !ok {
		t.Fatalf("expected a diagnostic, got %T: %v", err, err)
	}
	if de.Code != code {
		t.Fatalf("expected error %s, got %s: %v", code, de.Code, de)
	}
	if !strings.Contains(de.Error(), substr) {
		t.Errorf("expected error message to contain %q, got: %s", substr, de.Error())
	}
	return de
}

func function(t *testing.T, prog *ast.Program, name string) *ast.FunctionDeclaration {
	t.Helper()
	for _, d := range prog.Declarations {
		if fn, ok := d.(*ast.FunctionDeclaration); ok && fn.Name() == name {
			return fn
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

func variable(t *testing.T, prog *ast.Program, name string) *ast.VariableDeclaration {
	t.Helper()
	for _, d := range prog.Declarations {
		if v, ok := d.(*ast.VariableDeclaration); ok && v.Name() == name {
			return v
		}
	}
	t.Fatalf("variable %s not found", name)
	return nil
}

// statement returns the i-th declaration of fn's body as a statement.
func statement(t *testing.T, fn *ast.FunctionDeclaration, i int) ast.Statement {
	t.Helper()
	sd, ok := fn.Body.Declarations[i].(*ast.StatementDeclaration)
	if !ok {
		t.Fatalf("declaration %d of %s is not a statement", i, fn.Name())
	}
	return sd.Statement
}
