package symbols

import (
	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// Scope is the symbol table of one program, or one nested level inside a
// function when it has an outer scope. Insertions never overwrite: a
// colliding symbol yields a *CollisionError.
type Scope struct {
	outer      *Scope
	scopeType  ScopeType
	namespaces map[string]*namespaceTable
	nsOrder    []string
}

func NewEmptyScope(scopeType ScopeType) *Scope {
	return &Scope{
		scopeType:  scopeType,
		namespaces: make(map[string]*namespaceTable),
	}
}

func NewEnclosedScope(outer *Scope, scopeType ScopeType) *Scope {
	s := NewEmptyScope(scopeType)
	s.outer = outer
	return s
}

func (s *Scope) Outer() *Scope { return s.outer }

func (s *Scope) Type() ScopeType { return s.scopeType }

// IsGlobalScope reports whether s is a program-level scope.
func (s *Scope) IsGlobalScope() bool {
	return s.scopeType == ScopeGlobal || s.scopeType == ScopePrelude
}

// Namespaces lists the namespaces declared at this level, in creation order.
func (s *Scope) Namespaces() []string {
	return append([]string(nil), s.nsOrder...)
}

func (s *Scope) table(ns string) *namespaceTable {
	t, ok := s.namespaces[ns]
	if !ok {
		t = newNamespaceTable()
		s.namespaces[ns] = t
		s.nsOrder = append(s.nsOrder, ns)
	}
	return t
}

func (s *Scope) lookup(ns string) (*namespaceTable, bool) {
	t, ok := s.namespaces[ns]
	return t, ok
}

// AddType registers t and its constructors in namespace ns.
func (s *Scope) AddType(ns string, t *typesystem.Type) error {
	tbl := s.table(ns)
	key := arityKey{t.Name(), t.Arity()}
	if existing, ok := tbl.types[key]; ok {
		return &CollisionError{Kind: TypeSymbol, Namespace: ns, Name: t.Name(), Token: t.Token, Existing: existing.Token}
	}
	for _, c := range t.Defaults {
		if existing, ok := tbl.defaults[arityKey{c.Name(), c.Arity()}]; ok {
			return &CollisionError{Kind: DefaultConstructorSymbol, Namespace: ns, Name: c.Name(), Token: c.Token, Existing: existing.Token}
		}
	}
	for _, c := range t.Records {
		if existing, ok := tbl.records[arityKey{c.Name(), c.Arity()}]; ok {
			return &CollisionError{Kind: RecordConstructorSymbol, Namespace: ns, Name: c.Name(), Token: c.Token, Existing: existing.Token}
		}
	}
	tbl.types[key] = t
	tbl.typeOrder = append(tbl.typeOrder, t)
	for _, c := range t.Defaults {
		tbl.defaults[arityKey{c.Name(), c.Arity()}] = c
	}
	for _, c := range t.Records {
		tbl.records[arityKey{c.Name(), c.Arity()}] = c
	}
	return nil
}

// AddFunction adds fn to the overload set of its name in ns. Overloads must
// differ in their signature, and a function may not share its name with a
// variable.
func (s *Scope) AddFunction(ns string, fn *ast.FunctionDeclaration) error {
	tbl := s.table(ns)
	if v, ok := tbl.variables[fn.Name()]; ok {
		return &CollisionError{Kind: FunctionSymbol, Namespace: ns, Name: fn.Name(), Token: fn.Token, Existing: v.Token}
	}
	sig := signature(fn)
	for _, other := range tbl.functions[fn.Name()] {
		if signature(other) == sig {
			return &CollisionError{Kind: FunctionSymbol, Namespace: ns, Name: fn.Name(), Token: fn.Token, Existing: other.Token}
		}
	}
	tbl.functions[fn.Name()] = append(tbl.functions[fn.Name()], fn)
	tbl.funcOrder = append(tbl.funcOrder, fn)
	return nil
}

// AddVariable declares v in ns at this scope level. Shadowing a variable
// of an outer level is allowed; redeclaring at the same level is not.
func (s *Scope) AddVariable(ns string, v *ast.VariableDeclaration) error {
	tbl := s.table(ns)
	if existing, ok := tbl.variables[v.Name()]; ok {
		return &CollisionError{Kind: VariableSymbol, Namespace: ns, Name: v.Name(), Token: v.Token, Existing: existing.Token}
	}
	if fns := tbl.functions[v.Name()]; len(fns) > 0 {
		return &CollisionError{Kind: VariableSymbol, Namespace: ns, Name: v.Name(), Token: v.Token, Existing: fns[0].Token}
	}
	tbl.variables[v.Name()] = v
	tbl.varOrder = append(tbl.varOrder, v)
	return nil
}

func (s *Scope) TypeExists(ns, name string, arity int) bool {
	_, ok := s.GetType(ns, name, arity)
	return ok
}

// GetType finds a type by name and arity, searching outer scopes.
func (s *Scope) GetType(ns, name string, arity int) (*typesystem.Type, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if tbl, ok := sc.lookup(ns); ok {
			if t, ok := tbl.types[arityKey{name, arity}]; ok {
				return t, true
			}
		}
	}
	return nil, false
}

// TypeNameExists reports whether a type of that name exists with any arity.
func (s *Scope) TypeNameExists(ns, name string) bool {
	for sc := s; sc != nil; sc = sc.outer {
		if tbl, ok := sc.lookup(ns); ok {
			for key := range tbl.types {
				if key.name == name {
					return true
				}
			}
		}
	}
	return false
}

// FunctionExists reports whether any overload of name is visible in ns.
func (s *Scope) FunctionExists(ns, name string) bool {
	return len(s.AllFunctions(ns, name)) > 0
}

// AllFunctions returns every overload of name, of any arity.
func (s *Scope) AllFunctions(ns, name string) []*ast.FunctionDeclaration {
	for sc := s; sc != nil; sc = sc.outer {
		if tbl, ok := sc.lookup(ns); ok {
			if fns := tbl.functions[name]; len(fns) > 0 {
				return append([]*ast.FunctionDeclaration(nil), fns...)
			}
		}
	}
	return nil
}

// GetFunctions returns the overload set of name restricted to arity, in
// declaration order.
func (s *Scope) GetFunctions(ns, name string, arity int) []*ast.FunctionDeclaration {
	var out []*ast.FunctionDeclaration
	for _, fn := range s.AllFunctions(ns, name) {
		if fn.Arity() == arity {
			out = append(out, fn)
		}
	}
	return out
}

func (s *Scope) VariableExists(ns, name string) bool {
	_, ok := s.GetVariable(ns, name)
	return ok
}

// GetVariable finds the innermost variable of that name.
func (s *Scope) GetVariable(ns, name string) (*ast.VariableDeclaration, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if tbl, ok := sc.lookup(ns); ok {
			if v, ok := tbl.variables[name]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

func (s *Scope) GetDefaultConstructor(ns, name string, arity int) (*typesystem.DefaultConstructor, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if tbl, ok := sc.lookup(ns); ok {
			if c, ok := tbl.defaults[arityKey{name, arity}]; ok {
				return c, true
			}
		}
	}
	return nil, false
}

func (s *Scope) GetRecordConstructor(ns, name string, arity int) (*typesystem.RecordConstructor, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if tbl, ok := sc.lookup(ns); ok {
			if c, ok := tbl.records[arityKey{name, arity}]; ok {
				return c, true
			}
		}
	}
	return nil, false
}

// Types returns the types declared at this level in ns, in insertion order.
func (s *Scope) Types(ns string) []*typesystem.Type {
	if tbl, ok := s.lookup(ns); ok {
		return append([]*typesystem.Type(nil), tbl.typeOrder...)
	}
	return nil
}

// Functions returns the functions declared at this level in ns, in insertion order.
func (s *Scope) Functions(ns string) []*ast.FunctionDeclaration {
	if tbl, ok := s.lookup(ns); ok {
		return append([]*ast.FunctionDeclaration(nil), tbl.funcOrder...)
	}
	return nil
}

// Variables returns the variables declared at this level in ns, in insertion order.
func (s *Scope) Variables(ns string) []*ast.VariableDeclaration {
	if tbl, ok := s.lookup(ns); ok {
		return append([]*ast.VariableDeclaration(nil), tbl.varOrder...)
	}
	return nil
}
