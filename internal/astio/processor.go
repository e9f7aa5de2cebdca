package astio

import (
	"os"

	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/pipeline"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"golang.org/x/tools/txtar"
)

// DecodeProcessor turns the input files into programs. A .txtar input
// contributes every program file it holds.
type DecodeProcessor struct{}

func (dp *DecodeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	for _, path := range ctx.Files {
		data, ok := ctx.Sources[path]
		if !ok {
			var err error
			data, err = os.ReadFile(path)
			if err != nil {
				ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, token.Token{}, err.Error()).InFile(path))
				continue
			}
			ctx.Sources[path] = data
		}

		if !IsSourceFile(path) {
			programs, derr := DecodeArchive(txtar.Parse(data))
			if derr != nil {
				ctx.Errors = append(ctx.Errors, derr)
				continue
			}
			ctx.Programs = append(ctx.Programs, programs...)
			continue
		}

		prog, derr := Decode(path, data)
		if derr != nil {
			ctx.Errors = append(ctx.Errors, derr)
			continue
		}
		ctx.Programs = append(ctx.Programs, prog)
	}
	return ctx
}
