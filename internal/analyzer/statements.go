package analyzer

import (
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/symbols"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// checkBlock checks b in a scope of its own.
func (w *walker) checkBlock(b *ast.Block) error {
	outer := w.scope
	w.scope = symbols.NewEnclosedScope(outer, symbols.ScopeBlock)
	defer func() { w.scope = outer }()
	return w.checkDeclarations(b.Declarations)
}

// checkDeclarations checks the contents of a function body or block, in
// order. Only variables and statements may appear there.
func (w *walker) checkDeclarations(decls []ast.Declaration) error {
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.VariableDeclaration:
			if err := w.checkLocalVariable(d); err != nil {
				return err
			}
		case *ast.StatementDeclaration:
			if _, ok := d.Statement.(*ast.PassStatement); ok && len(decls) > 1 {
				return errorf(diagnostics.ErrS001, d.GetToken(), "`pass` must be the only statement of its block")
			}
			if err := w.checkStatement(d.Statement); err != nil {
				return err
			}
		default:
			return errorf(diagnostics.ErrB001, d.GetToken(), "%s is not allowed inside a function body", declarationKind(d))
		}
	}
	return nil
}

func declarationKind(d ast.Declaration) string {
	switch d.(type) {
	case *ast.ImportDeclaration:
		return "an import"
	case *ast.NamespaceDeclaration:
		return "a namespace"
	case *ast.TypeDeclaration:
		return "a type declaration"
	case *ast.FunctionDeclaration:
		return "a function declaration"
	default:
		return fmt.Sprintf("%T", d)
	}
}

func (w *walker) checkStatement(s ast.Statement) error {
	switch s := s.(type) {
	case *ast.WhileStatement:
		if err := w.checkCondition(s.Condition); err != nil {
			return err
		}
		w.loops++
		defer func() { w.loops-- }()
		return w.checkBlock(s.Body)
	case *ast.IfStatement:
		if err := w.checkCondition(s.Condition); err != nil {
			return err
		}
		if err := w.checkBlock(s.Then); err != nil {
			return err
		}
		for _, elif := range s.Elifs {
			if err := w.checkCondition(elif.Condition); err != nil {
				return err
			}
			if err := w.checkBlock(elif.Body); err != nil {
				return err
			}
		}
		if s.Else != nil {
			return w.checkBlock(s.Else)
		}
		return nil
	case *ast.BreakStatement:
		if w.loops == 0 {
			return errorf(diagnostics.ErrS001, s.Token, "`break` outside of a loop")
		}
		return nil
	case *ast.ContinueStatement:
		if w.loops == 0 {
			return errorf(diagnostics.ErrS001, s.Token, "`continue` outside of a loop")
		}
		return nil
	case *ast.PassStatement:
		return nil
	case *ast.ReturnStatement:
		return w.checkReturn(s)
	case *ast.ExpressionStatement:
		_, err := w.infer(s.Expression)
		return err
	case *ast.BlockStatement:
		return w.checkBlock(s.Block)
	default:
		panic(fmt.Sprintf("[compiler error] unexpected statement %T", s))
	}
}

// checkCondition requires a bool condition.
func (w *walker) checkCondition(e ast.Expression) error {
	boolean, err := w.builtinInstance(config.BoolTypeName, e.GetToken())
	if err != nil {
		return err
	}
	inst, err := w.inferExpected(e, boolean)
	if err != nil {
		return err
	}
	if !typesystem.StrongCompare(inst, boolean) {
		return errorf(diagnostics.ErrS001, e.GetToken(), "condition must be `bool`, found `%s`", inst)
	}
	return nil
}

// checkReturn compares the returned value with the function's return
// instance. Returns always compare strongly, after open slots of the value
// have been filled from the declared instance.
func (w *walker) checkReturn(s *ast.ReturnStatement) error {
	if w.fn == nil {
		return errorf(diagnostics.ErrS001, s.Token, "`return` outside of a function")
	}
	want := w.fn.Return
	if s.Value == nil {
		if !isUnitOrVoid(want) {
			return errorf(diagnostics.ErrS001, s.Token, "missing return value, function `%s` returns `%s`", w.fn.Name(), want)
		}
		return nil
	}
	if isBuiltin(want, config.VoidTypeName) {
		return errorf(diagnostics.ErrS001, s.Token, "function `%s` returns `void` and cannot return a value", w.fn.Name())
	}
	got, err := w.inferExpected(s.Value, want)
	if err != nil {
		return err
	}
	filled := typesystem.Fill(got, want, w.fixed)
	if !typesystem.StrongCompare(filled, want) {
		return errorf(diagnostics.ErrS001, s.Value.GetToken(),
			"function `%s` returns `%s`, found `%s`", w.fn.Name(), want, got)
	}
	s.Value.SetInstance(filled)
	return nil
}
