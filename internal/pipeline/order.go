package pipeline

import (
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/modules"
	"github.com/ntwalibas/avalon-sub000/internal/token"
)

// ImportOrderProcessor builds the program table and computes the checking
// order from the root program's imports.
type ImportOrderProcessor struct{}

func (p *ImportOrderProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Failed() || len(ctx.Programs) == 0 {
		return ctx
	}
	table := modules.NewTable()
	for _, prog := range ctx.Programs {
		if err := table.Add(prog); err != nil {
			ctx.Errors = append(ctx.Errors, asDiagnostic(err))
			return ctx
		}
	}
	ctx.Table = table

	root := ctx.Root
	if root == "" {
		root = ctx.Programs[len(ctx.Programs)-1].Name
		ctx.Root = root
	}
	order, err := table.Order(root)
	if err != nil {
		ctx.Errors = append(ctx.Errors, asDiagnostic(err))
		return ctx
	}
	ctx.Order = order
	for _, prog := range order {
		ctx.Logger.Printf("order: %s", prog.Name)
	}
	return ctx
}

func asDiagnostic(err error) *diagnostics.DiagnosticError {
	if de, ok := diagnostics.As(err); ok {
		return de
	}
	return diagnostics.Wrap(diagnostics.ErrX001, token.Token{}, "pipeline", err)
}
