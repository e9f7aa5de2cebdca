package analyzer

import (
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// freshSuffix marks placeholders introduced by the checker itself. Source
// identifiers cannot contain it, so fresh placeholders never capture a
// constraint of the enclosing declaration.
const freshSuffix = "'"

func isFresh(name string) bool {
	return strings.HasSuffix(name, freshSuffix)
}

// typeToken is at, renamed to the type's name, so instances print as types.
func typeToken(name string, at token.Token) token.Token {
	at.Lexeme = name
	return at
}

// builtinInstance builds an instance of a built-in type.
func (w *walker) builtinInstance(name string, at token.Token) (*typesystem.Instance, error) {
	t, ok := w.scope.GetType(config.GlobalNamespace, name, 0)
	if !ok {
		return nil, errorf(diagnostics.ErrE001, at, "built-in type `%s` is not available", name)
	}
	return typesystem.NewConcrete(t, typeToken(name, at)), nil
}

// instantiate builds an instance of t with fresh placeholders for its
// constraints, and the bindings that rename t's own placeholders to them.
func instantiate(t *typesystem.Type, at token.Token) (*typesystem.Instance, *typesystem.Bindings) {
	fresh := make([]token.Token, len(t.Constraints))
	rename := typesystem.NewBindings(t.Constraints)
	for i, c := range t.Constraints {
		fresh[i] = typeToken(c.Lexeme+freshSuffix, at)
		_ = rename.Bind(c.Lexeme, typesystem.NewAbstract(fresh[i]))
	}
	inst := typesystem.Substitute(t.Instantiate(typeToken(t.Name(), at)), rename)
	return inst, rename
}

// freshConstraints lists the placeholder names an instantiation introduced.
func freshConstraints(rename *typesystem.Bindings) []token.Token {
	var out []token.Token
	for _, inst := range rename.Instances() {
		out = append(out, inst.Token)
	}
	return out
}

// isBuiltin reports whether inst is the named built-in type.
func isBuiltin(inst *typesystem.Instance, name string) bool {
	return inst != nil && inst.Builder != nil &&
		inst.Builder.Namespace == config.GlobalNamespace && inst.Builder.Name() == name
}

func isUnitOrVoid(inst *typesystem.Instance) bool {
	return isBuiltin(inst, config.UnitTypeName) || isBuiltin(inst, config.VoidTypeName)
}

// undetermined reports whether inst still has parts no declaration fixes:
// a wildcard, or a placeholder that is not a visible constraint.
func (w *walker) undetermined(inst *typesystem.Instance) bool {
	if inst.HasStar() {
		return true
	}
	for _, name := range inst.AbstractNames() {
		if !w.fixed(name) {
			return true
		}
	}
	return false
}
