package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spicelang/spice-sub000/colors"
	"github.com/spicelang/spice-sub000/internal/config"
	"github.com/spicelang/spice-sub000/internal/context_v2"
	"github.com/spicelang/spice-sub000/internal/pipeline"
)

var ErrNoLoader = errors.New("no loader: pass a Loader or a Parse function")

// Options for compilation
type Options struct {
	// Config file (.yaml, .yml or .properties); empty means defaults
	ConfigPath string
	// Import paths of the modules to compile
	Entries []string
	// Loader serves the parsed files. When nil, files are read below the
	// project root and handed to Parse.
	Loader context_v2.Loader
	Parse  context_v2.ParseFunc
	// Diagnostics and traces go here, os.Stderr when nil
	Out io.Writer
	// Debug output, in addition to the debug setting of the config
	Debug bool
	// Print the compilation summary after the diagnostics
	Summary bool
}

// Result of compilation
type Result struct {
	Success  bool
	Errors   int
	Warnings int
	Context  *context_v2.CompilerContext
}

// Compile runs semantic analysis over the entries and everything they import
func Compile(opts *Options) (Result, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return Result{}, err
		}
		cfg = loaded
	}
	if opts.Debug {
		cfg.Debug = true
	}
	setColorMode(cfg.Color, out)

	loader := opts.Loader
	if loader == nil {
		if opts.Parse == nil {
			return Result{}, ErrNoLoader
		}
		loader = context_v2.NewFileLoader(cfg, opts.Parse)
	}

	ctx := context_v2.New(cfg, loader)
	ctx.DebugOut = out
	p := pipeline.New(ctx)
	runErr := p.Run(opts.Entries...)

	ctx.Diagnostics.EmitAll(out)
	if opts.Summary {
		p.PrintSummary(out)
	}

	res := Result{
		Success:  runErr == nil && !ctx.HasErrors(),
		Errors:   ctx.Diagnostics.ErrorCount(),
		Warnings: ctx.Diagnostics.WarningCount(),
		Context:  ctx,
	}
	if runErr != nil && !errors.Is(runErr, pipeline.ErrCompilationFailed) && !errors.Is(runErr, pipeline.ErrAborted) {
		return res, fmt.Errorf("compiling %v: %w", opts.Entries, runErr)
	}
	return res, nil
}

func setColorMode(mode string, out io.Writer) {
	switch mode {
	case config.ColorAlways:
		colors.SetMode(colors.Always)
	case config.ColorNever:
		colors.SetMode(colors.Never)
	default:
		if colors.IsTerminal(out) {
			colors.SetMode(colors.Always)
		} else {
			colors.SetMode(colors.Never)
		}
	}
}
