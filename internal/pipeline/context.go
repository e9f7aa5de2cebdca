package pipeline

import (
	"io"
	"log"

	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/modules"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state shared by the stages.
type PipelineContext struct {
	Config *config.Config
	Logger *log.Logger

	// Inputs. Sources is keyed by path; paths missing from it are read
	// from disk by the decoding stage.
	Files   []string
	Sources map[string][]byte
	Root    string // Program to check; defaults to the last decoded one

	Programs []*ast.Program      // Decoded, in input order
	Table    *modules.Table      // Built-ins plus Programs
	Order    []*ast.Program      // Checking order, root last
	Checked  *ast.Program        // Root program once checked
	Errors   []*diagnostics.DiagnosticError
	Warnings []*diagnostics.DiagnosticError
}

func NewPipelineContext(cfg *config.Config, files ...string) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &PipelineContext{
		Config:  cfg,
		Logger:  log.New(io.Discard, "", 0),
		Files:   files,
		Sources: make(map[string][]byte),
	}
}

// Failed reports whether any stage produced a fatal diagnostic.
func (ctx *PipelineContext) Failed() bool {
	for _, err := range ctx.Errors {
		if err.Fatal {
			return true
		}
	}
	return false
}
