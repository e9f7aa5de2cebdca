package symbols

import (
	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// IsImported reports whether decl was brought into ns by Import rather than
// declared by the program itself.
func (s *Scope) IsImported(ns string, decl any) bool {
	if tbl, ok := s.lookup(ns); ok {
		return tbl.imported[decl]
	}
	return false
}

// Import copies every public declaration that from owns (not the ones from
// itself imported) into s, namespace by namespace. Re-importing a
// declaration already visible here is reported as AlreadyPresent; only a
// different declaration under the same key is a collision.
func (s *Scope) Import(from *Scope) (ImportOutcome, error) {
	outcome := AlreadyPresent
	record := func(o ImportOutcome, err error) error {
		if err != nil {
			return err
		}
		if o == Added {
			outcome = Added
		}
		return nil
	}
	for _, ns := range from.nsOrder {
		src := from.namespaces[ns]
		for _, t := range src.typeOrder {
			if !t.Public || src.imported[t] {
				continue
			}
			if err := record(s.ImportType(ns, t)); err != nil {
				return outcome, err
			}
		}
		for _, fn := range src.funcOrder {
			if !fn.Public || src.imported[fn] {
				continue
			}
			if err := record(s.ImportFunction(ns, fn)); err != nil {
				return outcome, err
			}
		}
		for _, v := range src.varOrder {
			if !v.Public || src.imported[v] {
				continue
			}
			if err := record(s.ImportVariable(ns, v)); err != nil {
				return outcome, err
			}
		}
	}
	return outcome, nil
}

func (s *Scope) ImportType(ns string, t *typesystem.Type) (ImportOutcome, error) {
	tbl := s.table(ns)
	if existing, ok := tbl.types[arityKey{t.Name(), t.Arity()}]; ok && existing == t {
		return AlreadyPresent, nil
	}
	if err := s.AddType(ns, t); err != nil {
		return Added, err
	}
	tbl.imported[t] = true
	return Added, nil
}

func (s *Scope) ImportFunction(ns string, fn *ast.FunctionDeclaration) (ImportOutcome, error) {
	tbl := s.table(ns)
	for _, existing := range tbl.functions[fn.Name()] {
		if existing == fn {
			return AlreadyPresent, nil
		}
	}
	if err := s.AddFunction(ns, fn); err != nil {
		return Added, err
	}
	tbl.imported[fn] = true
	return Added, nil
}

func (s *Scope) ImportVariable(ns string, v *ast.VariableDeclaration) (ImportOutcome, error) {
	tbl := s.table(ns)
	if existing, ok := tbl.variables[v.Name()]; ok && existing == v {
		return AlreadyPresent, nil
	}
	if err := s.AddVariable(ns, v); err != nil {
		return Added, err
	}
	tbl.imported[v] = true
	return Added, nil
}
