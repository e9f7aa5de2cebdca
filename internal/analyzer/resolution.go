package analyzer

import (
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

type candidate struct {
	fn       *ast.FunctionDeclaration
	bindings *typesystem.Bindings
	score    int
}

// findFunction resolves a call of name with the given argument instances.
//
// Candidates are the overloads of matching arity whose parameters accept
// the arguments. When several remain, those whose return instance accepts
// expected are preferred, then the most specific parameters win. A tie
// is an ambiguity outside generic bodies; inside one, the first declared
// candidate is used, since the body is checked again per specialization.
//
// Outside generic bodies a generic candidate must have every constraint
// inferred and is specialized; the specialization is returned. Inside one
// the generic declaration is returned with a provisional return instance
// in which unbound constraints are renamed apart.
func (w *walker) findFunction(at token.Token, name string, nss []string, args []*typesystem.Instance, expected *typesystem.Instance) (*ast.FunctionDeclaration, *typesystem.Instance, error) {
	var pool []*ast.FunctionDeclaration
	seen := make(map[*ast.FunctionDeclaration]bool)
	for _, ns := range nss {
		for _, fn := range w.scope.GetFunctions(ns, name, len(args)) {
			if !seen[fn] {
				seen[fn] = true
				pool = append(pool, fn)
			}
		}
	}
	if len(pool) == 0 {
		return nil, nil, errorf(diagnostics.ErrE001, at, "no function `%s` taking %d argument(s)", name, len(args))
	}

	var matches []candidate
	for _, fn := range pool {
		b := typesystem.NewBindings(fn.Constraints)
		if matchParams(fn, args, b) {
			matches = append(matches, candidate{fn: fn, bindings: b, score: paramSpecificity(fn)})
		}
	}
	if len(matches) == 0 {
		return nil, nil, errorf(diagnostics.ErrE001, at, "no overload of `%s` accepts (%s)", name, joinInstances(args))
	}
	if len(matches) > 1 && expected != nil {
		var byReturn []candidate
		for _, m := range matches {
			b := copyBindings(m.fn, m.bindings)
			if typesystem.Match(m.fn.Return, expected, b) == nil {
				byReturn = append(byReturn, candidate{fn: m.fn, bindings: b, score: m.score})
			}
		}
		if len(byReturn) > 0 {
			matches = byReturn
		}
	}

	best := []candidate{matches[0]}
	for _, m := range matches[1:] {
		switch {
		case m.score > best[0].score:
			best = []candidate{m}
		case m.score == best[0].score:
			best = append(best, m)
		}
	}
	if len(best) > 1 && !w.generic() {
		return nil, nil, errorf(diagnostics.ErrE001, at, "call to `%s` is ambiguous between %s and %s",
			name, describe(best[0].fn), describe(best[1].fn))
	}
	chosen := best[0]

	if !chosen.fn.IsGeneric() {
		return chosen.fn, chosen.fn.Return.Copy(), nil
	}
	if !w.generic() {
		if unbound := chosen.bindings.Unbound(); len(unbound) > 0 {
			return nil, nil, errorf(diagnostics.ErrE001, at,
				"cannot infer constraint `%s` of function `%s` from this call", unbound[0].Lexeme, name)
		}
		spec, err := w.c.specialize(chosen.fn, chosen.bindings)
		if err != nil {
			return nil, nil, err
		}
		return spec, spec.Return.Copy(), nil
	}
	for _, c := range chosen.fn.Constraints {
		if _, ok := chosen.bindings.Lookup(c.Lexeme); !ok {
			_ = chosen.bindings.Bind(c.Lexeme, typesystem.NewAbstract(typeToken(c.Lexeme+freshSuffix, at)))
		}
	}
	return chosen.fn, typesystem.Substitute(chosen.fn.Return, chosen.bindings), nil
}

func matchParams(fn *ast.FunctionDeclaration, args []*typesystem.Instance, b *typesystem.Bindings) bool {
	for i, p := range fn.Params {
		if typesystem.Match(p.Type, args[i], b) != nil {
			return false
		}
	}
	return true
}

// copyBindings replays b onto a fresh substitution, so a failed return
// match leaves the original untouched.
func copyBindings(fn *ast.FunctionDeclaration, b *typesystem.Bindings) *typesystem.Bindings {
	out := typesystem.NewBindings(fn.Constraints)
	for _, c := range fn.Constraints {
		if inst, ok := b.Lookup(c.Lexeme); ok {
			_ = out.Bind(c.Lexeme, inst)
		}
	}
	return out
}

func paramSpecificity(fn *ast.FunctionDeclaration) int {
	score := 0
	for _, p := range fn.Params {
		score += typesystem.Specificity(p.Type)
	}
	return score
}

func joinInstances(insts []*typesystem.Instance) string {
	parts := make([]string, len(insts))
	for i, inst := range insts {
		parts[i] = inst.String()
	}
	return strings.Join(parts, ", ")
}

// describe renders a function header for messages: name(int, a) -> a.
func describe(fn *ast.FunctionDeclaration) string {
	return fn.Name() + "(" + joinInstances(fn.ParamInstances()) + ") -> " + fn.Return.String()
}
