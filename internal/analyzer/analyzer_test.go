package analyzer

import (
	"strings"
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
)

func TestReturnOfBinaryIsInferred(t *testing.T) {
	_, prog := expectNoErrors(t, `
name: app
declarations:
  - function: three
    returns: int
    body:
      - return: {binary: "+", left: 1, right: 2}
`)
	ret := statement(t, function(t, prog, "three"), 0).(*ast.ReturnStatement)
	if got := ret.Value.Instance().String(); got != "int" {
		t.Errorf("1 + 2 inferred as %s, want int", got)
	}
	bin := ret.Value.(*ast.BinaryExpression)
	if bin.Function == nil || bin.Function.Name() != config.AddFuncName || !bin.Function.Builtin {
		t.Errorf("+ should resolve to the built-in %s", config.AddFuncName)
	}
}

func TestLiteralAndStructuralInference(t *testing.T) {
	_, prog := expectNoErrors(t, `
name: app
declarations:
  - val: i
    value: 1
  - val: f
    value: 1.5
  - val: d
    value: {dec: "2.50"}
  - val: s
    value: "text"
  - val: pair
    value: {tuple: [1, "one"]}
  - val: xs
    value: {list: [1, 2, 3]}
  - val: table
    value: {map: [["a", 1], ["b", 2]]}
  - val: empty
    type: "[int]"
    value: {list: []}
`)
	tests := map[string]string{
		"i":     "int",
		"f":     "float",
		"d":     "dec",
		"s":     "string",
		"pair":  "(int, string)",
		"xs":    "[int]",
		"table": "{string: int}",
		"empty": "[int]",
	}
	for name, want := range tests {
		if got := variable(t, prog, name).Type.String(); got != want {
			t.Errorf("%s: got %s, want %s", name, got, want)
		}
	}
}

func TestListElementMismatchNamesIndex(t *testing.T) {
	de := expectError(t, diagnostics.ErrE001, "index 2", `
name: app
declarations:
  - val: xs
    value: {list: [1, 2, "x"]}
`)
	if de.File != "test0.yaml" {
		t.Errorf("diagnostic should be stamped with the file, got %q", de.File)
	}
}

func TestMapKeyMustBeHashable(t *testing.T) {
	expectError(t, diagnostics.ErrT001, "key not hashable", `
name: app
declarations:
  - val: m
    value: {map: [[{list: [1]}, 2]]}
`)
}

func TestEmptyListNeedsAType(t *testing.T) {
	expectError(t, diagnostics.ErrV001, "cannot infer the type of `xs`", `
name: app
declarations:
  - val: xs
    value: {list: []}
`)
}

func TestWhileTrueWithBreak(t *testing.T) {
	expectNoErrors(t, `
name: app
declarations:
  - function: spin
    body:
      - while: True
        body:
          - break
`)
}

func TestWhileTrueWithoutBreakDiverges(t *testing.T) {
	expectNoErrors(t, `
name: app
declarations:
  - function: forever
    returns: int
    body:
      - while: True
        body:
          - pass
`)
}

func TestBreakOutsideLoop(t *testing.T) {
	expectError(t, diagnostics.ErrS001, "`break` outside of a loop", `
name: app
declarations:
  - function: f
    body:
      - break
`)
}

func TestStatementAtNamespaceLevel(t *testing.T) {
	expectError(t, diagnostics.ErrS001, "namespace level", `
name: app
declarations:
  - break
`)
}

func TestPassMustStandAlone(t *testing.T) {
	expectError(t, diagnostics.ErrS001, "`pass` must be the only statement", `
name: app
declarations:
  - function: f
    body:
      - pass
      - return
`)
}

func TestPublicFunctionExposingPrivateType(t *testing.T) {
	de := expectError(t, diagnostics.ErrF001, "private type `secret`", `
name: app
declarations:
  - type: secret
    constructors: [Secret]
  - function: leak
    public: true
    params:
      - s: secret
    body: [pass]
`)
	if de.Token.Lexeme != "leak" {
		t.Errorf("diagnostic should point at the function, got %q", de.Token.Lexeme)
	}
}

func TestIfWithoutElseDoesNotTerminate(t *testing.T) {
	const src = `
name: app
declarations:
  - function: pick
    params:
      - b: bool
    returns: int
    body:
      - if: b
        then:
          - return: 1
`
	expectError(t, diagnostics.ErrF001, "does not return on every path", src)

	expectNoErrors(t, src+`        else:
          - return: 2
`)
}

func TestReturnRules(t *testing.T) {
	tests := []struct {
		name, body, returns string
		code                diagnostics.ErrorCode
		substr              string
	}{
		{"wrong type", `- return: "s"`, "int", diagnostics.ErrS001, "returns `int`, found `string`"},
		{"bare return in int function", `- return`, "int", diagnostics.ErrS001, "missing return value"},
		{"value from void function", `- return: 1`, "void", diagnostics.ErrS001, "cannot return a value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.code, tt.substr, `
name: app
declarations:
  - function: f
    returns: `+tt.returns+`
    body:
      `+tt.body+`
`)
		})
	}
}

func TestConditionMustBeBool(t *testing.T) {
	expectError(t, diagnostics.ErrS001, "condition must be `bool`", `
name: app
declarations:
  - function: f
    body:
      - if: 1
        then: [pass]
`)
}

func TestSpecializationsAreCached(t *testing.T) {
	_, prog := expectNoErrors(t, `
name: app
declarations:
  - function: id
    constraints: [a]
    params:
      - x: a
    returns: a
    body:
      - return: x
  - function: main
    body:
      - expr: {call: id, args: [1]}
      - expr: {call: id, args: [2]}
      - expr: {call: id, args: ["s"]}
`)
	id := function(t, prog, "id")
	main := function(t, prog, "main")
	call := func(i int) *ast.CallExpression {
		return statement(t, main, i).(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	}

	first, second, third := call(0).Function, call(1).Function, call(2).Function
	if first != second {
		t.Errorf("calling id with int twice should reuse one specialization")
	}
	if first == third {
		t.Errorf("id(string) should be a different specialization")
	}
	if first.Generic != id || first.IsGeneric() {
		t.Errorf("specialization should point back at the generic function and have no constraints")
	}
	if got := first.Arguments[0].String(); got != "int" {
		t.Errorf("constraint bound to %s, want int", got)
	}
	if n := len(id.Specializations()); n != 2 {
		t.Errorf("expected 2 specializations, got %d", n)
	}
	if got := call(2).Instance().String(); got != "string" {
		t.Errorf("id(\"s\") inferred as %s", got)
	}
}

func TestSpecializationDepthIsBounded(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSpecializationDepth = 4
	expectErrorWith(t, cfg, diagnostics.ErrF001, "nests deeper than 4 levels", `
name: app
declarations:
  - function: grow
    constraints: [a]
    params:
      - x: a
    returns: int
    body:
      - return: {call: grow, args: [{tuple: [x, x]}]}
  - function: main
    returns: int
    body:
      - return: {call: grow, args: [1]}
`)
}

func TestUnboundConstraintInConcreteContext(t *testing.T) {
	expectError(t, diagnostics.ErrE001, "cannot infer constraint `a`", `
name: app
declarations:
  - function: make
    constraints: [a]
    returns: "[a]"
    body:
      - return: {list: []}
  - function: main
    body:
      - expr: {call: make}
`)
}

func TestOverloadPrefersSpecificCandidate(t *testing.T) {
	_, prog := expectNoErrors(t, `
name: app
declarations:
  - function: show
    constraints: [a]
    params:
      - x: a
    returns: string
    body:
      - return: "generic"
  - function: show
    params:
      - x: int
    returns: string
    body:
      - return: "int"
  - val: s
    value: {call: show, args: [1]}
  - val: t
    value: {call: show, args: [1.5]}
`)
	if fn := variable(t, prog, "s").Value.(*ast.CallExpression).Function; fn.IsGeneric() || fn.Generic != nil {
		t.Errorf("show(1) should pick show(int)")
	}
	if fn := variable(t, prog, "t").Value.(*ast.CallExpression).Function; fn.Generic == nil {
		t.Errorf("show(1.5) should specialize the generic show")
	}
}

func TestAmbiguousOverload(t *testing.T) {
	expectError(t, diagnostics.ErrE001, "ambiguous", `
name: app
declarations:
  - function: pick
    constraints: [a]
    params:
      - x: a
      - y: int
    returns: int
    body:
      - return: y
  - function: pick
    constraints: [b]
    params:
      - x: int
      - y: b
    returns: int
    body:
      - return: x
  - val: p
    value: {call: pick, args: [1, 2]}
`)
}

func TestCastPicksOverloadByTarget(t *testing.T) {
	_, prog := expectNoErrors(t, `
name: app
declarations:
  - val: f
    value: {cast: float, value: 1}
  - val: i
    value: {cast: int, value: 1}
`)
	cast := variable(t, prog, "f").Value.(*ast.CastExpression)
	if cast.Function == nil || cast.Function.Return.String() != "float" {
		t.Errorf("cast(float) 1 should use __cast__(int) -> float")
	}
	if identity := variable(t, prog, "i").Value.(*ast.CastExpression); identity.Function != nil {
		t.Errorf("casting to the same type needs no function")
	}
	expectError(t, diagnostics.ErrE001, "no overload of `__cast__`", `
name: app
declarations:
  - val: b
    value: {cast: bool, value: "s"}
`)
}

func TestDuplicateFunction(t *testing.T) {
	expectError(t, diagnostics.ErrF001, "collides", `
name: app
declarations:
  - function: f
    params:
      - x: int
    body: [pass]
  - function: f
    params:
      - y: int
    body: [pass]
`)
}

func TestUnknownType(t *testing.T) {
	expectError(t, diagnostics.ErrV001, "unknown type `nope`", `
name: app
declarations:
  - var: x
    type: nope
`)
}

func TestValNeedsInitializer(t *testing.T) {
	expectError(t, diagnostics.ErrV001, "needs an initializer", `
name: app
declarations:
  - val: x
    type: int
`)
}

func TestGlobalsAreCheckedOnFirstUse(t *testing.T) {
	_, prog := expectNoErrors(t, `
name: app
declarations:
  - val: b
    value: a
  - val: a
    value: 1
`)
	if got := variable(t, prog, "b").Type.String(); got != "int" {
		t.Errorf("b inferred as %s", got)
	}
	expectError(t, diagnostics.ErrE001, "own initializer", `
name: app
declarations:
  - val: a
    value: {binary: "+", left: a, right: 1}
`)
}

func TestAssignment(t *testing.T) {
	expectNoErrors(t, `
name: app
declarations:
  - function: f
    body:
      - var: x
        value: 1
      - expr: {assign: x, value: 2}
      - expr: {assign: _, value: "ignored"}
`)
	expectError(t, diagnostics.ErrE001, "immutable variable `x`", `
name: app
declarations:
  - function: f
    body:
      - val: x
        value: 1
      - expr: {assign: x, value: 2}
`)
	expectError(t, diagnostics.ErrE001, "cannot assign `string`", `
name: app
declarations:
  - function: f
    body:
      - var: x
        value: 1
      - expr: {assign: x, value: "s"}
`)
}

func TestLocalCannotSeeItselfInInitializer(t *testing.T) {
	expectError(t, diagnostics.ErrE001, "unknown identifier `x`", `
name: app
declarations:
  - function: f
    body:
      - val: x
        value: x
`)
}

func TestNamespaces(t *testing.T) {
	expectNoErrors(t, `
name: app
declarations:
  - namespace: Geo
    declarations:
      - val: origin
        value: 0
      - function: shift
        returns: int
        body:
          - return: {binary: "+", left: origin, right: 1}
  - val: o
    value: Geo.origin
  - val: s
    value: {call: Geo.shift}
`)
	expectError(t, diagnostics.ErrE001, "unknown identifier `origin`", `
name: app
declarations:
  - namespace: Geo
    declarations:
      - val: origin
        value: 0
  - val: o
    value: origin
`)
}

func TestUnderscoreOnlyInPatterns(t *testing.T) {
	expectError(t, diagnostics.ErrE001, "only allowed in patterns", `
name: app
declarations:
  - val: x
    value: _
`)
}

func TestComparisonMode(t *testing.T) {
	const src = `
name: app
declarations:
  - function: f
    constraints: [a]
    params:
      - x: a
    body:
      - val: y
        type: a
        value: 1
`
	expectErrorWith(t, nil, diagnostics.ErrV001, "declared `a` but initialized with `int`", src)

	lax := config.Default()
	lax.Mode = config.ModeLax
	if _, _, err := analyzeSource(t, lax, src); err != nil {
		t.Errorf("lax mode should accept a weakly comparable initializer: %v", err)
	}
}

func TestUnreachableCode(t *testing.T) {
	const src = `
name: app
declarations:
  - function: f
    body:
      - return
      - expr: 1
`
	c, _, err := analyzeSource(t, nil, src)
	if err != nil {
		t.Fatalf("unreachable code is a warning by default: %v", err)
	}
	warnings := c.Warnings()
	if len(warnings) != 1 || warnings[0].Code != diagnostics.ErrW001 || warnings[0].Fatal {
		t.Fatalf("expected one non-fatal W001, got %v", warnings)
	}

	strict := config.Default()
	strict.Unreachable = config.SeverityError
	de := expectErrorWith(t, strict, diagnostics.ErrW001, "never reached", src)
	if !de.Fatal {
		t.Errorf("unreachable code should be fatal when configured as an error")
	}
}

func TestSpecializationsOfSameNamedTypesAcrossPrograms(t *testing.T) {
	const lib = `
name: lib
declarations:
  - function: id
    public: true
    constraints: [a]
    params:
      - x: a
    returns: a
    body:
      - return: x
`
	const left = `
name: left
declarations:
  - import: lib
  - type: T
    constructors:
      - MkLeft
  - val: v
    type: T
    value: {call: id, args: [MkLeft]}
`
	const app = `
name: app
declarations:
  - import: lib
  - import: left
  - type: T
    constructors:
      - MkApp
  - val: v
    type: T
    value: {call: id, args: [MkApp]}
`
	_, prog := expectNoErrors(t, lib, left, app)

	call := variable(t, prog, "v").Value.(*ast.CallExpression)
	if call.Function == nil || call.Function.Generic == nil {
		t.Fatalf("id should resolve to a specialization")
	}
	if got := call.Function.Return.Builder; got == nil || got.Program != "app" {
		t.Errorf("specialization returns a type from %v, want app", got)
	}
	if n := len(call.Function.Generic.Specializations()); n != 2 {
		t.Errorf("expected one specialization per program, got %d", n)
	}
}

func TestAnnotationsInsideGenericBodies(t *testing.T) {
	const generic = `
  - function: f
    constraints: [a]
    params:
      - x: a
    returns: a
    body:
      - return: {group: x, type: int}
`
	const caller = `
  - function: main
    body:
      - expr: {call: f, args: ["s"]}
`
	orders := map[string]string{
		"generic first": "name: app\ndeclarations:" + generic + caller,
		"caller first":  "name: app\ndeclarations:" + caller + generic,
	}
	for name, src := range orders {
		t.Run(name, func(t *testing.T) {
			_, _, err := analyzeSource(t, nil, src)
			if err == nil {
				t.Fatalf("f(\"s\") should violate the int annotation")
			}
			if !strings.Contains(err.Error(), "annotated `int` but has type `string`") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestHashLookedUpNextToKeyType(t *testing.T) {
	expectNoErrors(t, `
name: app
declarations:
  - namespace: Geo
    declarations:
      - type: point
        constructors:
          - Origin
      - function: __hash__
        params:
          - p: point
        returns: int
        body:
          - return: 0
  - val: m
    value: {map: [[Geo.Origin, 1]]}
`)
}
