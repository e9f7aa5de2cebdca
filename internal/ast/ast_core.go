package ast

import (
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// Node is implemented by every AST node.
type Node interface {
	GetToken() token.Token
}

// Declaration is the closed set of declaration variants:
// *ImportDeclaration, *NamespaceDeclaration, *TypeDeclaration,
// *FunctionDeclaration, *VariableDeclaration, *StatementDeclaration.
type Declaration interface {
	Node
	declarationNode()
}

// Program is one parsed compilation unit.
type Program struct {
	File         string // Source path, used in diagnostics
	Name         string // Fully qualified program name, e.g. "std.io"
	Declarations []Declaration
	Builtin      bool
}

// Imports lists the programs this one imports, in source order.
func (p *Program) Imports() []*ImportDeclaration {
	var out []*ImportDeclaration
	for _, d := range p.Declarations {
		if imp, ok := d.(*ImportDeclaration); ok {
			out = append(out, imp)
		}
	}
	return out
}

// ImportDeclaration: import std.io
type ImportDeclaration struct {
	Token token.Token
	Path  string
}

func (d *ImportDeclaration) GetToken() token.Token { return d.Token }
func (d *ImportDeclaration) declarationNode()      {}

// NamespaceDeclaration: namespace Geo { ... }
type NamespaceDeclaration struct {
	Token        token.Token
	Name         string
	Declarations []Declaration
}

func (d *NamespaceDeclaration) GetToken() token.Token { return d.Token }
func (d *NamespaceDeclaration) declarationNode()      {}

// TypeDeclaration wraps the Type builder it declares. The Type itself, with
// its constructors, is what the scope stores.
type TypeDeclaration struct {
	Token token.Token
	Type  *typesystem.Type
}

func (d *TypeDeclaration) GetToken() token.Token { return d.Token }
func (d *TypeDeclaration) declarationNode()      {}

// VariableDeclaration: var x : int = 1, val y = 2, or a function parameter.
type VariableDeclaration struct {
	Token       token.Token
	Namespace   string
	Program     string
	Public      bool
	Mutable     bool
	IsParameter bool
	Type        *typesystem.Instance // Declared instance, nil when omitted
	Value       Expression           // Initializer, nil when omitted
	State       typesystem.ValidationState
}

func (d *VariableDeclaration) GetToken() token.Token { return d.Token }
func (d *VariableDeclaration) declarationNode()      {}
func (d *VariableDeclaration) Name() string          { return d.Token.Lexeme }

// StatementDeclaration places a statement where a declaration is expected.
type StatementDeclaration struct {
	Statement Statement
}

func (d *StatementDeclaration) GetToken() token.Token { return d.Statement.GetToken() }
func (d *StatementDeclaration) declarationNode()      {}

// FunctionDeclaration is a possibly generic function. Specializations
// generated from it are owned by it and never replaced once added.
type FunctionDeclaration struct {
	Token       token.Token
	Namespace   string
	Program     string
	Public      bool
	Builtin     bool
	Constraints []token.Token
	Params      []*VariableDeclaration
	Return      *typesystem.Instance
	Body        *Block
	State       typesystem.ValidationState

	// Set on specializations: the generic function and the instances its
	// constraints were bound to, in constraint order.
	Generic   *FunctionDeclaration
	Arguments []*typesystem.Instance

	specializations map[string]*FunctionDeclaration
	specOrder       []string
}

func (d *FunctionDeclaration) GetToken() token.Token { return d.Token }
func (d *FunctionDeclaration) declarationNode()      {}
func (d *FunctionDeclaration) Name() string          { return d.Token.Lexeme }
func (d *FunctionDeclaration) Arity() int            { return len(d.Params) }

// IsGeneric reports whether the function declares constraints.
func (d *FunctionDeclaration) IsGeneric() bool { return len(d.Constraints) > 0 }

// IsConstraint reports whether name is one of the function's placeholders.
func (d *FunctionDeclaration) IsConstraint(name string) bool {
	for _, c := range d.Constraints {
		if c.Lexeme == name {
			return true
		}
	}
	return false
}

// ParamInstances returns the declared parameter instances in order.
func (d *FunctionDeclaration) ParamInstances() []*typesystem.Instance {
	out := make([]*typesystem.Instance, len(d.Params))
	for i, p := range d.Params {
		out[i] = p.Type
	}
	return out
}

// Signature is the mangled name of the function's current signature.
func (d *FunctionDeclaration) Signature() string {
	return typesystem.MangleSignature(d.Name(), d.ParamInstances(), d.Return)
}

// Specialization returns the specialization registered under key.
func (d *FunctionDeclaration) Specialization(key string) (*FunctionDeclaration, bool) {
	spec, ok := d.specializations[key]
	return spec, ok
}

// AddSpecialization registers spec under key. The table is append-only:
// if key is already present the existing specialization is returned and
// spec is discarded.
func (d *FunctionDeclaration) AddSpecialization(key string, spec *FunctionDeclaration) *FunctionDeclaration {
	if existing, ok := d.specializations[key]; ok {
		return existing
	}
	if d.specializations == nil {
		d.specializations = make(map[string]*FunctionDeclaration)
	}
	d.specializations[key] = spec
	d.specOrder = append(d.specOrder, key)
	return spec
}

// Specializations returns the generated specializations in creation order.
func (d *FunctionDeclaration) Specializations() []*FunctionDeclaration {
	out := make([]*FunctionDeclaration, len(d.specOrder))
	for i, key := range d.specOrder {
		out[i] = d.specializations[key]
	}
	return out
}

// Block is a brace-delimited list of declarations.
type Block struct {
	Token        token.Token
	Declarations []Declaration
}

func (b *Block) GetToken() token.Token { return b.Token }
