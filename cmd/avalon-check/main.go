package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/ntwalibas/avalon-sub000/internal/analyzer"
	"github.com/ntwalibas/avalon-sub000/internal/astio"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/diagnostics"
	"github.com/ntwalibas/avalon-sub000/internal/pipeline"
	"github.com/ntwalibas/avalon-sub000/internal/prettyprinter"
	"github.com/ntwalibas/avalon-sub000/internal/utils"
)

const usage = `Usage: avalon-check [flags] <program.yaml | archive.txtar | dir>...

Checks serialized programs. The root is the last program given unless
-root names another one; everything it imports must be among the inputs.

Flags:
`

func main() {
	log.SetFlags(0)

	configPath := flag.String("config", "", "path to avalon.yaml")
	root := flag.String("root", "", "name of the program to check")
	watch := flag.Bool("watch", false, "check again whenever an input changes")
	noColor := flag.Bool("no-color", false, "disable colored output")
	printRoot := flag.Bool("print", false, "print the checked root program with its inferred types")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	logger := log.New(io.Discard, "", 0)
	if cfg.Trace {
		logger = log.New(os.Stderr, "trace: ", 0)
	}
	color := !*noColor && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
	files, err := utils.ExpandInputs(flag.Args())
	if err != nil {
		log.Fatalf("inputs: %v", err)
	}

	run := func() bool {
		ctx := pipeline.NewPipelineContext(cfg, files...)
		ctx.Logger = logger
		ctx.Root = *root
		ctx = pipeline.New(
			&astio.DecodeProcessor{},
			&pipeline.ImportOrderProcessor{},
			&analyzer.CheckProcessor{},
		).Run(ctx)
		report(os.Stdout, ctx, color)
		if *printRoot && ctx.Checked != nil && !ctx.Failed() {
			fmt.Print(prettyprinter.Print(ctx.Checked, true))
		}
		return !ctx.Failed()
	}

	if !*watch {
		if !run() {
			os.Exit(1)
		}
		return
	}
	if err := watchFiles(files, run); err != nil {
		log.Fatalf("watch: %v", err)
	}
}

func report(w io.Writer, ctx *pipeline.PipelineContext, color bool) {
	diagnostics.Sort(ctx.Warnings)
	diagnostics.Sort(ctx.Errors)
	for _, d := range ctx.Warnings {
		fmt.Fprintln(w, paint(color, "33", "warning: ")+d.Error())
	}
	for _, d := range ctx.Errors {
		fmt.Fprintln(w, paint(color, "31", "error: ")+d.Error())
	}
	if !ctx.Failed() && ctx.Checked != nil {
		fmt.Fprintln(w, paint(color, "32", "ok: ")+ctx.Checked.Name)
	}
}

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// watchFiles runs check once, then again after every burst of writes to
// the directories holding files.
func watchFiles(files []string, check func() bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool)
	inputs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		inputs[abs] = true
		dir := filepath.Dir(abs)
		if !watched[dir] {
			if err := w.Add(dir); err != nil {
				return err
			}
			watched[dir] = true
		}
	}

	check()
	var debounce <-chan time.Time
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !inputs[ev.Name] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(100 * time.Millisecond)
		case <-debounce:
			debounce = nil
			fmt.Println()
			check()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}
