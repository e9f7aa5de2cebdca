package prettyprinter

import (
	"strings"
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/analyzer"
	"github.com/ntwalibas/avalon-sub000/internal/astio"
	"github.com/ntwalibas/avalon-sub000/internal/modules"
)

const source = `
name: app
declarations:
  - type: maybe(a)
    constructors: [Just(a), None]
  - val: x
    value: {binary: "*", left: {group: {binary: "+", left: 1, right: 2}}, right: 3}
  - function: id
    constraints: [a]
    params:
      - v: a
    returns: a
    body:
      - return: v
`

func TestPrintSource(t *testing.T) {
	prog, err := astio.Decode("app.yaml", []byte(source))
	if err != nil {
		t.Fatal(err)
	}
	want := `type maybe(a) = Just(a) | None

val x = (1 + 2) * 3

def id[a](v: a) -> a {
    return v
}
`
	if got := Print(prog, false); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintTyped(t *testing.T) {
	prog, derr := astio.Decode("app.yaml", []byte(source+`  - val: y
    value: {call: id, args: ["s"]}
`))
	if derr != nil {
		t.Fatal(derr)
	}
	table := modules.NewTable()
	if err := table.Add(prog); err != nil {
		t.Fatal(err)
	}
	if _, err := analyzer.NewChecker(nil, nil).CheckTable(table, prog.Name); err != nil {
		t.Fatal(err)
	}

	got := Print(prog, true)
	for _, want := range []string{
		"val x: int = (1 + 2) * 3",
		`val y: string = id("s")`,
		"// id(string) -> string",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
}

func TestPrecedence(t *testing.T) {
	prog, err := astio.Decode("app.yaml", []byte(`
name: app
declarations:
  - val: a
    value: {binary: "-", left: {binary: "-", left: 1, right: 2}, right: 3}
  - val: b
    value: {binary: "-", left: 1, right: {binary: "-", left: 2, right: 3}}
  - val: c
    value: {binary: "**", left: 2, right: {binary: "**", left: 3, right: 2}}
  - val: d
    value: {unary: "-", operand: {binary: "+", left: 1, right: 2}}
`))
	if err != nil {
		t.Fatal(err)
	}
	tests := []string{"1 - 2 - 3", "1 - (2 - 3)", "2 ** 3 ** 2", "-(1 + 2)"}
	lines := strings.Split(strings.TrimSpace(Print(prog, false)), "\n\n")
	for i, want := range tests {
		if !strings.HasSuffix(lines[i], " = "+want) {
			t.Errorf("got %q, want suffix %q", lines[i], want)
		}
	}
}
