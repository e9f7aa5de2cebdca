package astio

import (
	"path/filepath"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"golang.org/x/tools/txtar"
)

// IsSourceFile reports whether path has a serialized-program extension.
func IsSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range config.SourceFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DecodeArchive decodes every program file of a txtar archive, in archive
// order. Sections that are not program files are left to the caller.
func DecodeArchive(ar *txtar.Archive) ([]*ast.Program, *diagnostics.DiagnosticError) {
	var programs []*ast.Program
	for _, f := range ar.Files {
		if !IsSourceFile(f.Name) {
			continue
		}
		prog, err := Decode(f.Name, f.Data)
		if err != nil {
			return nil, err
		}
		programs = append(programs, prog)
	}
	return programs, nil
}
