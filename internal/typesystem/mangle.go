package typesystem

import (
	"strings"

	"github.com/ntwalibas/avalon-sub000/internal/config"
)

// Mangle produces the canonical name of an instance: the builder name
// followed by the bracketed, comma-joined mangled parameters. It is used as a
// map key, so it carries no whitespace.
func Mangle(i *Instance) string {
	return mangle(i, false)
}

func mangle(i *Instance, qualify bool) string {
	if i == nil {
		return ""
	}
	params := make([]string, len(i.Params))
	for k, p := range i.Params {
		params[k] = mangle(p, qualify)
	}
	switch i.Category {
	case Tuple:
		return "(" + strings.Join(params, ",") + ")"
	case List:
		return "[" + strings.Join(params, ",") + "]"
	case Map:
		return "{" + strings.Join(params, ":") + "}"
	}
	name := i.Name()
	if i.Abstract {
		name = "'" + name
	} else if ns := instanceNamespace(i); ns != "" && ns != config.GlobalNamespace {
		name = ns + "." + name
	}
	if qualify && !i.Abstract && i.Builder != nil && i.Builder.Program != "" {
		name = i.Builder.Program + ":" + name
	}
	if len(params) == 0 {
		return name
	}
	return name + "(" + strings.Join(params, ",") + ")"
}

// MangleSignature names a function signature, e.g. "add(int,int)->int".
func MangleSignature(name string, params []*Instance, ret *Instance) string {
	parts := make([]string, len(params))
	for k, p := range params {
		parts[k] = Mangle(p)
	}
	return name + "(" + strings.Join(parts, ",") + ")->" + Mangle(ret)
}

// SpecializationKey is MangleSignature with every user type prefixed by its
// declaring program, e.g. "id(app:T)->app:T". Two programs may each declare
// a private type of the same name; their specializations must not collide.
func SpecializationKey(name string, params []*Instance, ret *Instance) string {
	parts := make([]string, len(params))
	for k, p := range params {
		parts[k] = mangle(p, true)
	}
	return name + "(" + strings.Join(parts, ",") + ")->" + mangle(ret, true)
}

func instanceNamespace(i *Instance) string {
	if i.Builder != nil {
		return i.Builder.Namespace
	}
	return i.Namespace
}
