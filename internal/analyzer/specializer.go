package analyzer

import (
	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// specialize returns the specialization of generic fn under bindings b,
// generating and checking it on first request. Specializations are keyed
// by their program-qualified concrete signature and registered on fn before their
// body is checked, so a recursive call inside the body finds itself.
func (c *Checker) specialize(fn *ast.FunctionDeclaration, b *typesystem.Bindings) (*ast.FunctionDeclaration, error) {
	params := make([]*typesystem.Instance, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = typesystem.Substitute(p.Type, b)
	}
	key := typesystem.SpecializationKey(fn.Name(), params, typesystem.Substitute(fn.Return, b))
	if spec, ok := fn.Specialization(key); ok {
		return spec, nil
	}
	if c.depth >= c.cfg.MaxSpecializationDepth {
		return nil, errorf(diagnostics.ErrF001, fn.Token,
			"specializing `%s` nests deeper than %d levels", fn.Name(), c.cfg.MaxSpecializationDepth)
	}

	spec := ast.CloneFunction(fn, func(inst *typesystem.Instance) *typesystem.Instance {
		return typesystem.Substitute(inst, b)
	})
	spec.Constraints = nil
	spec.Generic = fn
	spec.Arguments = b.Instances()
	spec = fn.AddSpecialization(key, spec)

	h := c.homes[fn]
	c.homes[spec] = h
	c.log.Printf("specialize %s as %s", describe(fn), describe(spec))

	c.depth++
	defer func() { c.depth-- }()
	if err := c.checkFunctionHeader(spec, h); err != nil {
		return nil, fatal(wrap(diagnostics.ErrF001, fn.Token, "in specialization "+describe(spec), err), h.program.File)
	}
	if err := c.checkFunctionBody(spec, h); err != nil {
		return nil, fatal(wrap(diagnostics.ErrF001, fn.Token, "in specialization "+describe(spec), err), h.program.File)
	}
	return spec, nil
}
