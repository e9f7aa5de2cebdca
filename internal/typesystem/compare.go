package typesystem

// StrongCompare reports structural identity: both concrete with the same
// builder and pairwise strong-comparable parameters, or both the same
// abstract placeholder. An abstract instance never equals a concrete one,
// and the wildcard equals nothing.
func StrongCompare(a, b *Instance) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Abstract || b.Abstract {
		return a.Abstract && b.Abstract && a.Name() == b.Name()
	}
	if a.IsStar() || b.IsStar() {
		return false
	}
	if !sameShape(a, b) {
		return false
	}
	for k := range a.Params {
		if !StrongCompare(a.Params[k], b.Params[k]) {
			return false
		}
	}
	return true
}

// WeakCompare reports structural compatibility: an abstract placeholder (or
// the wildcard) on either side stands in for anything, recursively.
func WeakCompare(a, b *Instance) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Abstract || b.Abstract || a.IsStar() || b.IsStar() {
		return true
	}
	if !sameShape(a, b) {
		return false
	}
	for k := range a.Params {
		if !WeakCompare(a.Params[k], b.Params[k]) {
			return false
		}
	}
	return true
}

// sameShape compares category, builder and arity of two non-abstract
// instances. Without a builder it falls back to name and namespace.
func sameShape(a, b *Instance) bool {
	if a.Category != b.Category || len(a.Params) != len(b.Params) {
		return false
	}
	if a.Category != User {
		return true
	}
	if a.Builder != nil && b.Builder != nil {
		return a.Builder == b.Builder
	}
	if a.Name() != b.Name() {
		return false
	}
	// An unqualified name has not been placed in a namespace yet.
	na, nb := instanceNamespace(a), instanceNamespace(b)
	return na == "" || nb == "" || na == nb
}

// Specificity counts the positions of i that are fixed: every
// non-abstract node scores one. Used to rank overload candidates.
func Specificity(i *Instance) int {
	if i == nil || i.Abstract {
		return 0
	}
	score := 1
	for _, p := range i.Params {
		score += Specificity(p)
	}
	return score
}
