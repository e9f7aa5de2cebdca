// symbols/symbol_table.go - Scope entry point
//
// The package is split into focused files:
// - symbol_table_core.go: ScopeType, SymbolKind, keys, CollisionError
// - symbol_table_operations.go: construction, insertion, lookup
// - symbol_table_imports.go: copying public declarations between program scopes

package symbols
