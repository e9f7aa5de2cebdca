package analyzer

import (
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/pipeline"
	"github.com/ntwalibas/avalon-sub000/internal/token"
)

// CheckProcessor runs the checker over the order computed by the import
// stage.
type CheckProcessor struct{}

func (p *CheckProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || len(ctx.Order) == 0 {
		return ctx
	}
	checker := NewChecker(ctx.Config, ctx.Logger)
	root, err := checker.Check(ctx.Order)
	ctx.Warnings = append(ctx.Warnings, checker.Warnings()...)
	if err != nil {
		de, ok := diagnostics.As(err)
		if !ok {
			de = diagnostics.Wrap(diagnostics.ErrX001, token.Token{}, "check", err)
		}
		ctx.Errors = append(ctx.Errors, de)
		return ctx
	}
	ctx.Checked = root
	return ctx
}
