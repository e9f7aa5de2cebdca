package symbols

import (
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

type ScopeType int

const (
	ScopePrelude  ScopeType = iota // Built-in programs
	ScopeGlobal                    // Program top level
	ScopeFunction                  // Function parameters
	ScopeBlock                     // Nested block
)

type SymbolKind int

const (
	TypeSymbol SymbolKind = iota
	FunctionSymbol
	VariableSymbol
	DefaultConstructorSymbol
	RecordConstructorSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case TypeSymbol:
		return "type"
	case FunctionSymbol:
		return "function"
	case VariableSymbol:
		return "variable"
	case DefaultConstructorSymbol:
		return "default constructor"
	default:
		return "record constructor"
	}
}

// CollisionError is returned when an insertion would shadow or replace a
// symbol already declared in the same namespace.
type CollisionError struct {
	Kind      SymbolKind
	Namespace string
	Name      string
	Token     token.Token // The symbol being inserted
	Existing  token.Token // The symbol already present
}

func (e *CollisionError) Error() string {
	where := ""
	if !e.Existing.IsSynthetic() {
		where = " at " + e.Existing.Position()
	}
	return fmt.Sprintf("%s `%s` collides with a declaration in namespace `%s`%s", e.Kind, e.Name, e.Namespace, where)
}

// ImportOutcome distinguishes a fresh import from re-importing a
// declaration that is already visible. Neither is an error.
type ImportOutcome int

const (
	Added ImportOutcome = iota
	AlreadyPresent
)

func (o ImportOutcome) String() string {
	if o == AlreadyPresent {
		return "already present"
	}
	return "added"
}

// arityKey identifies types and constructors, which may be overloaded by arity.
type arityKey struct {
	name  string
	arity int
}

// namespaceTable holds the symbols of one namespace at one scope level.
type namespaceTable struct {
	types     map[arityKey]*typesystem.Type
	functions map[string][]*ast.FunctionDeclaration
	variables map[string]*ast.VariableDeclaration
	defaults  map[arityKey]*typesystem.DefaultConstructor
	records   map[arityKey]*typesystem.RecordConstructor

	// Insertion order, for deterministic imports.
	typeOrder []*typesystem.Type
	funcOrder []*ast.FunctionDeclaration
	varOrder  []*ast.VariableDeclaration

	// Declarations that came from another program's scope.
	imported map[any]bool
}

func newNamespaceTable() *namespaceTable {
	return &namespaceTable{
		types:     make(map[arityKey]*typesystem.Type),
		functions: make(map[string][]*ast.FunctionDeclaration),
		variables: make(map[string]*ast.VariableDeclaration),
		defaults:  make(map[arityKey]*typesystem.DefaultConstructor),
		records:   make(map[arityKey]*typesystem.RecordConstructor),
		imported:  make(map[any]bool),
	}
}

// signature names a function by its parameters and return instance. Two
// overloads collide only when both agree; overloading on the return alone is
// allowed and resolved from the call site's expected type.
func signature(fn *ast.FunctionDeclaration) string {
	return typesystem.MangleSignature(fn.Name(), fn.ParamInstances(), fn.Return)
}
