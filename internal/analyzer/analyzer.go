package analyzer

import (
	"io"
	"log"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/symbols"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// Checker runs semantic analysis over programs in dependency order.
// It is single-use per program set and not safe for concurrent use: every
// program's scope is built from the scopes of the programs checked before it.
type Checker struct {
	cfg      *config.Config
	log      *log.Logger
	prelude  *symbols.Scope
	scopes   map[string]*symbols.Scope
	homes    map[ast.Declaration]home
	warnings []*diagnostics.DiagnosticError
	depth    int // Nested specializations currently being checked
}

// home is where a global declaration was declared; lazily checked
// variables and generated specializations are checked from there.
type home struct {
	program   *ast.Program
	scope     *symbols.Scope
	namespace string
}

func NewChecker(cfg *config.Config, logger *log.Logger) *Checker {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Checker{
		cfg:     cfg,
		log:     logger,
		prelude: symbols.NewEmptyScope(symbols.ScopePrelude),
		scopes:  make(map[string]*symbols.Scope),
		homes:   make(map[ast.Declaration]home),
	}
}

// Warnings returns the non-fatal diagnostics collected so far.
func (c *Checker) Warnings() []*diagnostics.DiagnosticError {
	return c.warnings
}

// Scope returns the scope built for a checked program.
func (c *Checker) Scope(program string) (*symbols.Scope, bool) {
	s, ok := c.scopes[program]
	return s, ok
}

// walker carries the position of the check: program, namespace, enclosing
// function and the innermost scope.
type walker struct {
	c         *Checker
	program   *ast.Program
	scope     *symbols.Scope
	namespace string
	fn        *ast.FunctionDeclaration // nil at namespace level
	standins  map[string]bool          // Constraint names visible here
	loops     int
	inPattern bool
}

func (c *Checker) newWalker(h home) *walker {
	return &walker{
		c:         c,
		program:   h.program,
		scope:     h.scope,
		namespace: h.namespace,
		standins:  map[string]bool{},
	}
}

// fixed reports whether name is a constraint of the enclosing declaration;
// such placeholders are never filled in from context.
func (w *walker) fixed(name string) bool {
	return w.standins[name]
}

// generic reports whether the walker is inside a generic body, where
// abstract instances are expected and resolution may stay provisional.
func (w *walker) generic() bool {
	return len(w.standins) > 0
}

// namespaces lists where an unqualified name is looked up: the current
// namespace, then the global one. A qualified name is looked up only in its
// own namespace.
func (w *walker) namespaces(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	if w.namespace == config.GlobalNamespace || w.namespace == "" {
		return []string{config.GlobalNamespace}
	}
	return []string{w.namespace, config.GlobalNamespace}
}

// compare applies the configured policy for declared-versus-inferred checks.
func (w *walker) compare(inferred, declared *typesystem.Instance) bool {
	if w.c.cfg.Mode == config.ModeLax {
		return typesystem.WeakCompare(inferred, declared)
	}
	return typesystem.StrongCompare(inferred, declared)
}

func errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) error {
	return diagnostics.Errorf(code, tok, format, args...)
}

// wrap re-tags a lower-level failure. Diagnostics of the same code pass
// through unchanged.
func wrap(code diagnostics.ErrorCode, tok token.Token, context string, err error) error {
	if de, ok := diagnostics.As(err); ok && de.Code == code {
		return err
	}
	return diagnostics.Wrap(code, tok, context, err)
}
