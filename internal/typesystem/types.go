package typesystem

import (
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/token"
)

// Category tags the shape of a type instance.
type Category int

const (
	User Category = iota
	Tuple
	List
	Map
)

func (c Category) String() string {
	switch c {
	case Tuple:
		return "tuple"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return "user"
	}
}

// Type is a named builder of type instances. It owns its constructors;
// instances built from it only point back at it.
type Type struct {
	Token       token.Token
	Namespace   string
	Program     string        // Fully qualified name of the declaring program
	Constraints []token.Token // Type-level constraint placeholders, in order
	Public      bool
	Defaults    []*DefaultConstructor
	Records     []*RecordConstructor
	State       ValidationState
}

func (t *Type) Name() string { return t.Token.Lexeme }

// Arity is the number of constraints the type is parametrized by.
func (t *Type) Arity() int { return len(t.Constraints) }

// IsConstraint reports whether name is one of the type's placeholders.
func (t *Type) IsConstraint(name string) bool {
	for _, c := range t.Constraints {
		if c.Lexeme == name {
			return true
		}
	}
	return false
}

// AddDefault attaches a positional constructor to the type.
func (t *Type) AddDefault(c *DefaultConstructor) {
	c.Type = t
	t.Defaults = append(t.Defaults, c)
}

// AddRecord attaches a named constructor to the type.
func (t *Type) AddRecord(c *RecordConstructor) {
	c.Type = t
	t.Records = append(t.Records, c)
}

// Instantiate builds an instance of t whose parameters are the abstract
// placeholders of the type's own constraints.
func (t *Type) Instantiate(tok token.Token) *Instance {
	params := make([]*Instance, len(t.Constraints))
	for i, c := range t.Constraints {
		params[i] = NewAbstract(c)
	}
	inst := &Instance{
		Token:     tok,
		Namespace: t.Namespace,
		Category:  User,
		Params:    params,
		Builder:   t,
	}
	inst.Refresh()
	return inst
}

func (t *Type) String() string {
	if len(t.Constraints) == 0 {
		return t.Name()
	}
	names := make([]string, len(t.Constraints))
	for i, c := range t.Constraints {
		names[i] = c.Lexeme
	}
	return t.Name() + "(" + strings.Join(names, ", ") + ")"
}

// DefaultConstructor builds a value from positional arguments.
type DefaultConstructor struct {
	Token        token.Token
	Params       []*Instance
	Type         *Type
	Parametrized bool
}

func (c *DefaultConstructor) Name() string { return c.Token.Lexeme }
func (c *DefaultConstructor) Arity() int   { return len(c.Params) }

// Field is one named parameter of a record constructor.
type Field struct {
	Token    token.Token
	Instance *Instance
}

func (f Field) Name() string { return f.Token.Lexeme }

// RecordConstructor builds a value from named arguments.
type RecordConstructor struct {
	Token        token.Token
	Fields       []Field
	Type         *Type
	Parametrized bool
}

func (c *RecordConstructor) Name() string { return c.Token.Lexeme }
func (c *RecordConstructor) Arity() int   { return len(c.Fields) }

// Field looks a field up by name.
func (c *RecordConstructor) Field(name string) (*Instance, bool) {
	for _, f := range c.Fields {
		if f.Name() == name {
			return f.Instance, true
		}
	}
	return nil, false
}

// Instance is a usable occurrence of a type.
//
// An abstract instance stands for a constraint placeholder and has no
// builder. A concrete user instance points at the Type it is built from once
// the validator has resolved it; tuple, list and map instances never need a
// builder.
type Instance struct {
	Token        token.Token
	OldToken     token.Token // Placeholder token this instance replaced during substitution
	Namespace    string      // Namespace qualifier recorded by the parser
	Category     Category
	Params       []*Instance
	Builder      *Type
	Abstract     bool
	Parametrized bool
}

// NewInstance creates an unresolved user instance as the parser would.
func NewInstance(tok token.Token, namespace string, params ...*Instance) *Instance {
	inst := &Instance{Token: tok, Namespace: namespace, Category: User, Params: params}
	inst.Refresh()
	return inst
}

// NewAbstract creates an instance bound to a constraint placeholder.
func NewAbstract(tok token.Token) *Instance {
	return &Instance{Token: tok, Category: User, Abstract: true, Parametrized: true}
}

// NewConcrete creates a resolved user instance of t.
func NewConcrete(t *Type, tok token.Token, params ...*Instance) *Instance {
	inst := &Instance{Token: tok, Namespace: t.Namespace, Category: User, Params: params, Builder: t}
	inst.Refresh()
	return inst
}

func NewTuple(tok token.Token, elements ...*Instance) *Instance {
	inst := &Instance{Token: tok, Category: Tuple, Params: elements}
	inst.Refresh()
	return inst
}

func NewList(tok token.Token, element *Instance) *Instance {
	inst := &Instance{Token: tok, Category: List, Params: []*Instance{element}}
	inst.Refresh()
	return inst
}

func NewMap(tok token.Token, key, value *Instance) *Instance {
	inst := &Instance{Token: tok, Category: Map, Params: []*Instance{key, value}}
	inst.Refresh()
	return inst
}

// Star creates the wildcard instance: no type could be determined.
func Star(tok token.Token) *Instance {
	tok.Lexeme = config.StarName
	return &Instance{Token: tok, Category: User}
}

func (i *Instance) Name() string { return i.Token.Lexeme }

// IsStar reports whether i is the wildcard instance itself.
func (i *Instance) IsStar() bool {
	return i.Category == User && !i.Abstract && i.Name() == config.StarName
}

// HasStar reports whether the wildcard occurs anywhere in i.
func (i *Instance) HasStar() bool {
	if i.IsStar() {
		return true
	}
	for _, p := range i.Params {
		if p.HasStar() {
			return true
		}
	}
	return false
}

// IsComplete reports whether i is fully concrete: no abstract part and no wildcard.
func (i *Instance) IsComplete() bool {
	return !i.Parametrized && !i.HasStar()
}

// Refresh recomputes the parametrized flag from the parameter tree.
func (i *Instance) Refresh() {
	p := i.Abstract
	for _, param := range i.Params {
		param.Refresh()
		if param.Parametrized {
			p = true
		}
	}
	i.Parametrized = p
}

// Copy returns a deep copy of i. The builder reference is shared.
func (i *Instance) Copy() *Instance {
	if i == nil {
		return nil
	}
	c := *i
	if i.Params != nil {
		c.Params = make([]*Instance, len(i.Params))
		for k, p := range i.Params {
			c.Params[k] = p.Copy()
		}
	}
	return &c
}

// Walk visits i and every instance below it, parents first.
func (i *Instance) Walk(fn func(*Instance)) {
	fn(i)
	for _, p := range i.Params {
		p.Walk(fn)
	}
}

// AbstractNames lists the distinct placeholder names in i, in first-seen order.
func (i *Instance) AbstractNames() []string {
	var names []string
	seen := make(map[string]bool)
	i.Walk(func(x *Instance) {
		if x.Abstract && !seen[x.Name()] {
			seen[x.Name()] = true
			names = append(names, x.Name())
		}
	})
	return names
}

// String renders i the way it is written in source.
func (i *Instance) String() string {
	if i == nil {
		return "<nil>"
	}
	params := make([]string, len(i.Params))
	for k, p := range i.Params {
		params[k] = p.String()
	}
	switch i.Category {
	case Tuple:
		return "(" + strings.Join(params, ", ") + ")"
	case List:
		return "[" + strings.Join(params, ", ") + "]"
	case Map:
		if len(params) == 2 {
			return "{" + params[0] + ": " + params[1] + "}"
		}
		return "{" + strings.Join(params, ", ") + "}"
	}
	name := i.Name()
	if i.Namespace != "" && i.Namespace != config.GlobalNamespace && !i.Abstract {
		name = i.Namespace + "." + name
	}
	if len(params) == 0 {
		return name
	}
	return name + "(" + strings.Join(params, ", ") + ")"
}
