package typesystem

import (
	"errors"
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/token"
)

func ident(name string) token.Token {
	return token.New(token.IDENT, name, 1, 1)
}

func newType(name string, constraints ...string) *Type {
	toks := make([]token.Token, len(constraints))
	for i, c := range constraints {
		toks[i] = ident(c)
	}
	return &Type{Token: ident(name), Namespace: config.GlobalNamespace, Constraints: toks, Public: true}
}

type fixture struct {
	intT, stringT, maybeT *Type
	intI, stringI         *Instance
	a, b                  *Instance
}

func newFixture() fixture {
	f := fixture{
		intT:    newType("int"),
		stringT: newType("string"),
		maybeT:  newType("maybe", "a"),
	}
	f.intI = NewConcrete(f.intT, ident("int"))
	f.stringI = NewConcrete(f.stringT, ident("string"))
	f.a = NewAbstract(ident("a"))
	f.b = NewAbstract(ident("b"))
	return f
}

func (f fixture) maybe(p *Instance) *Instance {
	return NewConcrete(f.maybeT, ident("maybe"), p)
}

func (f fixture) all() []*Instance {
	return []*Instance{
		f.intI,
		f.stringI,
		f.a,
		f.b,
		f.maybe(f.intI),
		f.maybe(f.a),
		f.maybe(f.stringI),
		NewList(ident("["), f.intI),
		NewList(ident("["), f.a),
		NewList(ident("["), Star(ident("["))),
		NewMap(ident("{"), f.stringI, f.intI),
		NewTuple(ident("("), f.intI, f.stringI),
		NewTuple(ident("("), f.a, f.stringI),
		Star(ident("[")),
	}
}

func TestStrongCompareReflexiveOnConcrete(t *testing.T) {
	f := newFixture()
	for _, x := range f.all() {
		if x.Abstract || x.HasStar() {
			continue
		}
		if !StrongCompare(x, x) {
			t.Errorf("StrongCompare(%s, %s) = false", x, x)
		}
		if !StrongCompare(x, x.Copy()) {
			t.Errorf("StrongCompare(%s, copy) = false", x)
		}
	}
}

func TestStrongCompareAbstractNeverConcrete(t *testing.T) {
	f := newFixture()
	for _, x := range f.all() {
		if x.Abstract {
			continue
		}
		if StrongCompare(f.a, x) || StrongCompare(x, f.a) {
			t.Errorf("StrongCompare(a, %s) should be false", x)
		}
	}
	if !StrongCompare(f.a, NewAbstract(ident("a"))) {
		t.Errorf("identical placeholders should strong-compare")
	}
	if StrongCompare(f.a, f.b) {
		t.Errorf("distinct placeholders should not strong-compare")
	}
}

func TestWeakCompareSymmetric(t *testing.T) {
	f := newFixture()
	all := f.all()
	for _, x := range all {
		for _, y := range all {
			if WeakCompare(x, y) != WeakCompare(y, x) {
				t.Errorf("WeakCompare(%s, %s) is not symmetric", x, y)
			}
			if StrongCompare(x, y) && !WeakCompare(x, y) {
				t.Errorf("StrongCompare(%s, %s) holds but WeakCompare does not", x, y)
			}
		}
	}
}

func TestWeakCompare(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name string
		a, b *Instance
		want bool
	}{
		{"abstract vs concrete", f.a, f.intI, true},
		{"parametrized param", f.maybe(f.a), f.maybe(f.intI), true},
		{"different builders", f.intI, f.stringI, false},
		{"different params", f.maybe(f.intI), f.maybe(f.stringI), false},
		{"list wildcard", NewList(ident("["), Star(ident("["))), NewList(ident("["), f.intI), true},
		{"list vs map", NewList(ident("["), f.intI), NewMap(ident("{"), f.intI, f.intI), false},
		{"tuple arity", NewTuple(ident("("), f.intI), NewTuple(ident("("), f.intI, f.intI), false},
		{"unresolved other namespace", NewInstance(ident("T"), "A"), NewInstance(ident("T"), "B"), false},
		{"unresolved same namespace", NewInstance(ident("T"), "A"), NewInstance(ident("T"), "A"), true},
		{"unresolved unqualified", NewInstance(ident("T"), ""), NewInstance(ident("T"), "A"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeakCompare(tt.a, tt.b); got != tt.want {
				t.Errorf("WeakCompare(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParametrizedFlag(t *testing.T) {
	f := newFixture()
	if f.maybe(f.intI).Parametrized {
		t.Errorf("maybe(int) should not be parametrized")
	}
	nested := NewList(ident("["), f.maybe(f.a))
	if !nested.Parametrized {
		t.Errorf("[maybe(a)] should be parametrized")
	}
	if got := nested.AbstractNames(); len(got) != 1 || got[0] != "a" {
		t.Errorf("AbstractNames = %v", got)
	}
}

func TestMangle(t *testing.T) {
	f := newFixture()
	geo := newType("point")
	geo.Namespace = "Geo"
	tests := []struct {
		inst *Instance
		want string
	}{
		{f.intI, "int"},
		{f.maybe(f.intI), "maybe(int)"},
		{f.maybe(f.a), "maybe('a)"},
		{NewTuple(ident("("), f.intI, f.stringI), "(int,string)"},
		{NewList(ident("["), f.maybe(f.intI)), "[maybe(int)]"},
		{NewMap(ident("{"), f.stringI, f.intI), "{string:int}"},
		{NewConcrete(geo, ident("point")), "Geo.point"},
	}
	for _, tt := range tests {
		if got := Mangle(tt.inst); got != tt.want {
			t.Errorf("Mangle(%s) = %q, want %q", tt.inst, got, tt.want)
		}
	}
	sig := MangleSignature("add", []*Instance{f.intI, f.intI}, f.intI)
	if sig != "add(int,int)->int" {
		t.Errorf("MangleSignature = %q", sig)
	}
}

func TestSpecializationKeyQualifiesPrograms(t *testing.T) {
	left := newType("T")
	left.Program = "left"
	right := newType("T")
	right.Program = "right"
	l := NewConcrete(left, ident("T"))
	r := NewConcrete(right, ident("T"))

	if Mangle(l) != Mangle(r) {
		t.Fatalf("Mangle should not depend on the program: %q vs %q", Mangle(l), Mangle(r))
	}
	lk := SpecializationKey("id", []*Instance{l}, l)
	rk := SpecializationKey("id", []*Instance{r}, r)
	if lk == rk {
		t.Errorf("keys collide: %q", lk)
	}
	if lk != "id(left:T)->left:T" {
		t.Errorf("SpecializationKey = %q", lk)
	}
}

func TestString(t *testing.T) {
	f := newFixture()
	m := NewMap(ident("{"), f.stringI, NewList(ident("["), f.maybe(f.intI)))
	if m.String() != "{string: [maybe(int)]}" {
		t.Errorf("String() = %q", m.String())
	}
}

func TestMatchAndSubstitute(t *testing.T) {
	f := newFixture()
	b := NewBindings([]token.Token{ident("a")})

	formal := NewList(ident("["), f.maybe(f.a))
	actual := NewList(ident("["), f.maybe(f.intI))
	if err := Match(formal, actual, b); err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !b.Complete() {
		t.Fatalf("expected all constraints bound, unbound: %v", b.Unbound())
	}

	out := Substitute(NewTuple(ident("("), f.a, f.a), b)
	if Mangle(out) != "(int,int)" {
		t.Errorf("Substitute = %s", Mangle(out))
	}
	if out.Parametrized {
		t.Errorf("substituted instance should not be parametrized")
	}
	if out.Params[0].OldToken.Lexeme != "a" {
		t.Errorf("substituted node should remember its placeholder, got %q", out.Params[0].OldToken.Lexeme)
	}
	if !f.a.Abstract || f.a.Builder != nil {
		t.Errorf("Substitute must not mutate its input")
	}
}

func TestMatchRejectsConflictingBinding(t *testing.T) {
	f := newFixture()
	b := NewBindings([]token.Token{ident("a")})
	if err := Match(f.a, f.intI, b); err != nil {
		t.Fatalf("first binding: %v", err)
	}
	if err := Match(f.a, f.intI, b); err != nil {
		t.Fatalf("same binding again: %v", err)
	}
	err := Match(f.a, f.stringI, b)
	var conflict *BindingConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected BindingConflictError, got %v", err)
	}
	if conflict.Name != "a" {
		t.Errorf("conflict on %q", conflict.Name)
	}
}

func TestMatchRefinesIncompleteBinding(t *testing.T) {
	f := newFixture()
	b := NewBindings([]token.Token{ident("a")})
	if err := b.Bind("a", f.maybe(f.b)); err != nil {
		t.Fatal(err)
	}
	if err := b.Bind("a", f.maybe(f.intI)); err != nil {
		t.Fatalf("refinement rejected: %v", err)
	}
	got, _ := b.Lookup("a")
	if Mangle(got) != "maybe(int)" {
		t.Errorf("binding = %s", Mangle(got))
	}
}

func TestMatchShapeMismatch(t *testing.T) {
	f := newFixture()
	b := NewBindings([]token.Token{ident("a")})
	err := Match(f.maybe(f.a), f.intI, b)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
}

func TestFill(t *testing.T) {
	f := newFixture()
	inferred := NewList(ident("["), Star(ident("[")))
	declared := NewList(ident("["), f.intI)
	if got := Fill(inferred, declared, nil); !StrongCompare(got, declared) {
		t.Errorf("Fill star = %s", got)
	}

	fixed := func(name string) bool { return name == "a" }
	free := f.maybe(f.b)
	if got := Fill(free, f.maybe(f.intI), fixed); !StrongCompare(got, f.maybe(f.intI)) {
		t.Errorf("free placeholder should be filled, got %s", got)
	}
	kept := f.maybe(f.a)
	if got := Fill(kept, f.maybe(f.intI), fixed); StrongCompare(got, f.maybe(f.intI)) {
		t.Errorf("fixed placeholder should not be filled, got %s", got)
	}
}

func TestSpecificity(t *testing.T) {
	f := newFixture()
	if Specificity(f.a) != 0 {
		t.Errorf("abstract specificity should be 0")
	}
	if Specificity(f.maybe(f.intI)) <= Specificity(f.maybe(f.a)) {
		t.Errorf("maybe(int) should be more specific than maybe(a)")
	}
}

func TestTypeInstantiate(t *testing.T) {
	f := newFixture()
	inst := f.maybeT.Instantiate(ident("maybe"))
	if !inst.Parametrized || inst.Builder != f.maybeT || !inst.Params[0].Abstract {
		t.Errorf("Instantiate = %+v", inst)
	}
}

func TestValidationStateMachine(t *testing.T) {
	var s ValidationState
	if err := s.Begin(); err != nil {
		t.Fatalf("Unknown -> Checking: %v", err)
	}
	if err := s.Begin(); !errors.Is(err, ErrReentrant) {
		t.Fatalf("re-entering should report ErrReentrant, got %v", err)
	}
	if err := s.Finish(true); err != nil {
		t.Fatalf("Checking -> Valid: %v", err)
	}
	if !s.Done() || s != StateValid {
		t.Fatalf("state = %s", s)
	}
	var te *TransitionError
	if err := s.Begin(); !errors.As(err, &te) {
		t.Fatalf("Valid -> Checking should be rejected, got %v", err)
	}
	if err := s.Finish(false); !errors.As(err, &te) {
		t.Fatalf("Valid -> Invalid should be rejected, got %v", err)
	}

	var failed ValidationState
	_ = failed.Begin()
	_ = failed.Finish(false)
	if failed != StateInvalid {
		t.Fatalf("state = %s, want invalid", failed)
	}
}
