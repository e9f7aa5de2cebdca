package analyzer

import (
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/symbols"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// simpleCheck confirms that the head of inst names something buildable:
// a structural category, a standin visible here, or a type found through
// scope. It resolves inst in place: a standin becomes abstract, a type name
// gets its builder and the builder's namespace. Parameters are not visited.
func simpleCheck(inst *typesystem.Instance, scope *symbols.Scope, namespaces []string, standins map[string]bool) error {
	if inst.Category != typesystem.User || inst.IsStar() || inst.Builder != nil {
		return nil
	}
	if inst.Abstract {
		if standins[inst.Name()] || isFresh(inst.Name()) {
			return nil
		}
		return errorf(diagnostics.ErrT001, inst.Token, "unknown constraint `%s`", inst.Name())
	}
	explicit := inst.Namespace != "" && inst.Namespace != config.GlobalNamespace
	if !explicit && standins[inst.Name()] {
		if len(inst.Params) > 0 {
			return errorf(diagnostics.ErrT001, inst.Token, "constraint `%s` cannot take parameters", inst.Name())
		}
		inst.Abstract = true
		inst.Namespace = ""
		inst.Refresh()
		return nil
	}
	if explicit {
		namespaces = []string{inst.Namespace}
	}
	for _, ns := range namespaces {
		if t, ok := scope.GetType(ns, inst.Name(), len(inst.Params)); ok {
			inst.Builder = t
			inst.Namespace = t.Namespace
			return nil
		}
	}
	for _, ns := range namespaces {
		if scope.TypeNameExists(ns, inst.Name()) {
			return errorf(diagnostics.ErrT001, inst.Token, "type `%s` does not take %d parameter(s)", inst.Name(), len(inst.Params))
		}
	}
	return errorf(diagnostics.ErrT001, inst.Token, "unknown type `%s`", inst)
}

// complexCheck validates inst and every instance below it. isStandin is
// true when inst itself is a bare constraint; isParametrized when anything
// in it is still abstract. Neither is an error.
func complexCheck(inst *typesystem.Instance, scope *symbols.Scope, namespaces []string, standins map[string]bool) (isStandin, isParametrized bool, err error) {
	if err := simpleCheck(inst, scope, namespaces, standins); err != nil {
		return false, false, err
	}
	if inst.Abstract {
		return true, true, nil
	}
	for _, p := range inst.Params {
		if _, _, err := complexCheck(p, scope, namespaces, standins); err != nil {
			return false, false, err
		}
	}
	inst.Refresh()
	return false, inst.Parametrized, nil
}

// checkExposure enforces that a public declaration only exposes types
// built from public types.
func checkExposure(inst *typesystem.Instance) error {
	var err error
	inst.Walk(func(i *typesystem.Instance) {
		if err != nil || i.Builder == nil || i.Builder.Public {
			return
		}
		err = errorf(diagnostics.ErrT001, i.Token, "public declaration exposes private type `%s`", i.Builder.Name())
	})
	return err
}

func (w *walker) validate(inst *typesystem.Instance) (isStandin, isParametrized bool, err error) {
	return complexCheck(inst, w.scope, w.namespaces(""), w.standins)
}
