package ast

import (
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

func tok(lexeme string) token.Token {
	return token.New(token.IDENT, lexeme, 1, 1)
}

func TestCloneFunctionSubstitutesAndResets(t *testing.T) {
	a := typesystem.NewAbstract(tok("a"))
	param := &VariableDeclaration{Token: tok("x"), Type: a, IsParameter: true}
	ident := &IdentifierExpression{Token: tok("x")}
	ident.SetInstance(a)
	annotated := &ListExpression{Token: tok("[")}
	annotated.Annotate(typesystem.NewList(tok("["), a))
	fn := &FunctionDeclaration{
		Token:       tok("id"),
		Constraints: []token.Token{tok("a")},
		Params:      []*VariableDeclaration{param},
		Return:      a,
		Body: &Block{Declarations: []Declaration{
			&VariableDeclaration{Token: tok("y"), Value: annotated},
			&StatementDeclaration{Statement: &ReturnStatement{Token: tok("return"), Value: ident}},
		}},
	}

	intI := typesystem.NewInstance(tok("int"), "")
	b := typesystem.NewBindings(fn.Constraints)
	if err := b.Bind("a", intI); err != nil {
		t.Fatal(err)
	}
	clone := CloneFunction(fn, func(i *typesystem.Instance) *typesystem.Instance {
		return typesystem.Substitute(i, b)
	})

	if clone == fn || clone.Params[0] == param {
		t.Fatalf("clone must not share declarations")
	}
	if clone.Params[0].Type.Abstract || clone.Return.Abstract {
		t.Errorf("parameter and return instances should be substituted")
	}
	if !fn.Params[0].Type.Abstract {
		t.Errorf("original function must be untouched")
	}

	ret := clone.Body.Declarations[1].(*StatementDeclaration).Statement.(*ReturnStatement)
	if ret.Value.Instance() != nil {
		t.Errorf("inferred instances must be reset on the clone")
	}
	y := clone.Body.Declarations[0].(*VariableDeclaration)
	if !y.Value.FromParser() || y.Value.Instance().Params[0].Abstract {
		t.Errorf("parser-seeded instance should be kept and substituted, got %v", y.Value.Instance())
	}
	if len(clone.Specializations()) != 0 {
		t.Errorf("clone should start without specializations")
	}
}

func TestSpecializationsAreAppendOnly(t *testing.T) {
	fn := &FunctionDeclaration{Token: tok("f")}
	first := &FunctionDeclaration{Token: tok("f")}
	second := &FunctionDeclaration{Token: tok("f")}

	if got := fn.AddSpecialization("f(int)->int", first); got != first {
		t.Fatalf("first add should register the specialization")
	}
	if got := fn.AddSpecialization("f(int)->int", second); got != first {
		t.Fatalf("second add under the same key must return the existing one")
	}
	fn.AddSpecialization("f(string)->string", second)
	specs := fn.Specializations()
	if len(specs) != 2 || specs[0] != first || specs[1] != second {
		t.Fatalf("unexpected specializations: %v", specs)
	}
	if got, ok := fn.Specialization("f(string)->string"); !ok || got != second {
		t.Fatalf("lookup failed")
	}
}

func TestHasRecordSyntax(t *testing.T) {
	positional := &CallExpression{Token: tok("Just"), Args: []Argument{{Value: &UnderscoreExpression{}}}}
	named := &CallExpression{Token: tok("Point"), Args: []Argument{{Name: tok("x"), Value: &UnderscoreExpression{}}}}
	if positional.HasRecordSyntax() {
		t.Errorf("positional call reported record syntax")
	}
	if !named.HasRecordSyntax() {
		t.Errorf("named call did not report record syntax")
	}
}

func TestAnnotationSurvivesInference(t *testing.T) {
	a := typesystem.NewAbstract(tok("a"))
	intI := typesystem.NewInstance(tok("int"), "")
	e := &IdentifierExpression{Token: tok("x")}
	e.Annotate(intI)
	if e.Inferred() || e.Instance() != intI {
		t.Fatalf("before inference the annotation is the instance")
	}

	e.SetInstance(a)
	if !e.Inferred() || e.Instance() != a {
		t.Errorf("inferred instance should take over, got %v", e.Instance())
	}
	if !e.FromParser() || e.Annotation() != intI {
		t.Errorf("annotation must be kept after inference, got %v", e.Annotation())
	}

	c := CloneExpression(e, func(i *typesystem.Instance) *typesystem.Instance { return i })
	if c.Inferred() {
		t.Errorf("the copy must be inferred again")
	}
	if c.Annotation() != intI {
		t.Errorf("the copy should carry the annotation, got %v", c.Annotation())
	}
}
