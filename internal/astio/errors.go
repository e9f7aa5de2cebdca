package astio

import (
	"errors"
	"fmt"

	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"gopkg.in/yaml.v3"
)

// positionError is a decoding failure at a known position. It is turned
// into a diagnostic once the file is known.
type positionError struct {
	line   int
	column int
	msg    string
}

func (e *positionError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.line, e.column, e.msg)
}

func nodeErrorf(n *yaml.Node, format string, args ...interface{}) error {
	return &positionError{line: n.Line, column: n.Column, msg: fmt.Sprintf(format, args...)}
}

// toDiagnostic converts any decoding failure into a MalformedProgram
// diagnostic stamped with file.
func toDiagnostic(file string, err error) *diagnostics.DiagnosticError {
	var pe *positionError
	if errors.As(err, &pe) {
		tok := token.New(token.ILLEGAL, "", pe.line, pe.column)
		return diagnostics.NewError(diagnostics.ErrP001, tok, pe.msg).InFile(file)
	}
	if de, ok := diagnostics.As(err); ok {
		return de.InFile(file)
	}
	// yaml.v3 syntax errors carry their own "yaml: line N:" prefix.
	return diagnostics.NewError(diagnostics.ErrP001, token.Token{}, err.Error()).InFile(file)
}
