package diagnostics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ntwalibas/avalon-sub000/internal/token"
)

type ErrorCode string

const (
	ErrT001 ErrorCode = "T001" // InvalidType
	ErrE001 ErrorCode = "E001" // InvalidExpression
	ErrS001 ErrorCode = "S001" // InvalidStatement
	ErrV001 ErrorCode = "V001" // InvalidVariable
	ErrF001 ErrorCode = "F001" // InvalidFunction
	ErrB001 ErrorCode = "B001" // InvalidBlock
	ErrI001 ErrorCode = "I001" // InvalidImport
	ErrW001 ErrorCode = "W001" // UnreachableCode, non-fatal unless configured otherwise
	ErrP001 ErrorCode = "P001" // Malformed serialized program
	ErrX001 ErrorCode = "X001" // Internal compiler error
)

var errorTemplates = map[ErrorCode]string{
	ErrT001: "invalid type: %s",
	ErrE001: "invalid expression: %s",
	ErrS001: "invalid statement: %s",
	ErrV001: "invalid variable: %s",
	ErrF001: "invalid function: %s",
	ErrB001: "invalid block: %s",
	ErrI001: "invalid import: %s",
	ErrW001: "unreachable code: %s",
	ErrP001: "malformed program: %s",
	ErrX001: "[compiler error] %s",
}

// Kind returns the taxonomy name of the code.
func (c ErrorCode) Kind() string {
	switch c {
	case ErrT001:
		return "InvalidType"
	case ErrE001:
		return "InvalidExpression"
	case ErrS001:
		return "InvalidStatement"
	case ErrV001:
		return "InvalidVariable"
	case ErrF001:
		return "InvalidFunction"
	case ErrB001:
		return "InvalidBlock"
	case ErrI001:
		return "InvalidImport"
	case ErrW001:
		return "UnreachableCode"
	case ErrP001:
		return "MalformedProgram"
	default:
		return "InternalError"
	}
}

// DiagnosticError is the CheckError handed back to the orchestrator's caller.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string // Message after template expansion, without position
	Fatal   bool
	Cause   error
}

// NewError builds a diagnostic from the code's template.
// Every code except W001 is fatal.
func NewError(code ErrorCode, tok token.Token, detail string) *DiagnosticError {
	tmpl, ok := errorTemplates[code]
	if !ok {
		tmpl = "%s"
	}
	return &DiagnosticError{
		Code:    code,
		Token:   tok,
		Message: fmt.Sprintf(tmpl, detail),
		Fatal:   code != ErrW001,
	}
}

// Errorf is NewError with a formatted detail.
func Errorf(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

// Wrap re-tags err with the caller's code, prefixing context.
// The wrapped diagnostic keeps the innermost token when the caller has none.
func Wrap(code ErrorCode, tok token.Token, context string, err error) *DiagnosticError {
	inner := err.Error()
	var de *DiagnosticError
	if errors.As(err, &de) {
		inner = de.Message
		if tok.IsSynthetic() {
			tok = de.Token
		}
	}
	wrapped := NewError(code, tok, context+": "+inner)
	wrapped.Cause = err
	return wrapped
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Token.Line, e.Token.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Cause
}

// Is matches diagnostics by code, so errors.Is(err, &DiagnosticError{Code: ErrT001}) works.
func (e *DiagnosticError) Is(target error) bool {
	t, ok := target.(*DiagnosticError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Token == token.Token{} || t.Token == e.Token)
}

// InFile stamps the source path if the diagnostic does not have one yet.
func (e *DiagnosticError) InFile(path string) *DiagnosticError {
	if e.File == "" {
		e.File = path
	}
	return e
}

// As extracts the diagnostic from err, if there is one.
func As(err error) (*DiagnosticError, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Sort orders diagnostics by file, line, then column.
func Sort(diags []*DiagnosticError) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Token.Line != b.Token.Line {
			return a.Token.Line < b.Token.Line
		}
		return a.Token.Column < b.Token.Column
	})
}
