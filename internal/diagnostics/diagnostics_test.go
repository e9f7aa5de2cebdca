package diagnostics

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/token"
)

func TestErrorFormat(t *testing.T) {
	tok := token.New(token.IDENT, "foo", 3, 7)
	err := NewError(ErrT001, tok, "no type `foo` in scope").InFile("main.avl")
	want := "main.avl:3:7: invalid type: no type `foo` in scope"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !err.Fatal {
		t.Errorf("T001 should be fatal")
	}
}

func TestUnreachableIsNotFatal(t *testing.T) {
	err := NewError(ErrW001, token.Token{}, "after return")
	if err.Fatal {
		t.Errorf("W001 should not be fatal")
	}
}

func TestWrapKeepsCauseAndRetags(t *testing.T) {
	inner := NewError(ErrT001, token.New(token.IDENT, "foo", 2, 5), "no type `foo` in scope")
	outer := Wrap(ErrV001, token.New(token.IDENT, "x", 2, 1), "variable `x`", inner)

	if outer.Code != ErrV001 {
		t.Errorf("expected V001, got %s", outer.Code)
	}
	if !strings.Contains(outer.Message, "variable `x`: invalid type: no type `foo` in scope") {
		t.Errorf("unexpected message: %s", outer.Message)
	}
	if !errors.Is(outer, &DiagnosticError{Code: ErrT001}) {
		t.Errorf("wrapped diagnostic should still match its cause")
	}
	wrappedTwice := fmt.Errorf("context: %w", outer)
	if de, ok := As(wrappedTwice); !ok || de.Code != ErrV001 {
		t.Errorf("As should find the outer diagnostic, got %v", de)
	}
}

func TestWrapBorrowsTokenWhenSynthetic(t *testing.T) {
	inner := NewError(ErrE001, token.New(token.IDENT, "y", 9, 2), "bad")
	outer := Wrap(ErrF001, token.Token{}, "function `f`", inner)
	if outer.Token.Line != 9 || outer.Token.Column != 2 {
		t.Errorf("expected inner token position, got %s", outer.Token.Position())
	}
}

func TestSort(t *testing.T) {
	diags := []*DiagnosticError{
		NewError(ErrE001, token.New(token.IDENT, "c", 5, 1), "c"),
		NewError(ErrE001, token.New(token.IDENT, "a", 1, 9), "a"),
		NewError(ErrE001, token.New(token.IDENT, "b", 1, 10), "b"),
	}
	Sort(diags)
	got := []string{diags[0].Token.Lexeme, diags[1].Token.Lexeme, diags[2].Token.Lexeme}
	if strings.Join(got, "") != "abc" {
		t.Errorf("unexpected order: %v", got)
	}
}
