// Command ssapipe runs the optimization pass pipeline over a single
// function read from a fixture source file (see internal/fixture) and
// prints a colored, pass-by-pass trace of convergence. It exists to drive
// the pass suite interactively; it is not a general IR printer (the spec
// excludes that as an external-collaborator concern).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"midend/internal/fixture"
	"midend/internal/ir"
	"midend/internal/passes"
)

func main() {
	configPath := flag.String("config", "", "path to a pipeline YAML config (default: passes.DefaultPipeline)")
	maxIterations := flag.Int("max-iterations", 32, "fixed-point iteration cap when -config is not given")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ssapipe [-config pipeline.yaml] <fixture-file>")
		os.Exit(1)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		color.Red("failed to read fixture: %s", err)
		os.Exit(1)
	}

	pipeline, iterations, err := resolvePipeline(*configPath, *maxIterations)
	if err != nil {
		color.Red("failed to load pipeline config: %s", err)
		os.Exit(1)
	}

	fn := buildFixture(string(source))

	color.Cyan("running %d passes over %q (cap %d iterations)", len(pipeline), fn.Name(), iterations)
	if !runTraced(fn, pipeline, iterations) {
		os.Exit(1)
	}

	if problems := ir.Verify(fn); len(problems) > 0 {
		color.Red("verification failed with %d problem(s):", len(problems))
		for _, p := range problems {
			fmt.Println("  " + p)
		}
		os.Exit(1)
	}
	color.Green("✅ converged, %d instruction(s) remain, verification clean", instructionCount(fn))
}

// buildFixture recovers from fixture.Build's diag.Invariant panic and
// reports it the same way the teacher's CLI reports a parse error, rather
// than letting the process crash with a raw stack trace.
func buildFixture(source string) (fn *ir.Function) {
	defer func() {
		if r := recover(); r != nil {
			color.Red("❌ %s", r)
			os.Exit(1)
		}
	}()
	ctx := ir.NewContext()
	return fixture.Build(ctx, source)
}

func resolvePipeline(configPath string, maxIterations int) ([]passes.Pass, int, error) {
	if configPath == "" {
		return passes.DefaultPipeline(), maxIterations, nil
	}
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", configPath, err)
	}
	cfg, err := passes.ParsePipelineConfig(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", configPath, err)
	}
	return cfg.Build(), cfg.MaxIterations, nil
}

// runTraced mirrors passes.RunToFixedPoint's loop but prints a colored line
// per pass per iteration, since RunToFixedPoint itself reports only a final
// iteration count. It reports whether a fixed point was reached.
func runTraced(fn *ir.Function, pipeline []passes.Pass, maxIterations int) bool {
	for iteration := 1; iteration <= maxIterations; iteration++ {
		anyChanged := false
		for _, p := range pipeline {
			changed := p.Run(fn)
			anyChanged = anyChanged || changed
			if changed {
				color.Yellow("  [%d] %-12s changed (%d instrs)", iteration, p.Name(), instructionCount(fn))
			}
		}
		if !anyChanged {
			color.Cyan("fixed point reached after %d iteration(s)", iteration)
			return true
		}
	}
	color.Red("did not converge within %d iterations", maxIterations)
	return false
}

func instructionCount(fn *ir.Function) int {
	n := 0
	for _, b := range fn.Blocks() {
		n += len(b.Instructions())
	}
	return n
}
