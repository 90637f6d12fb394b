// Package passes implements the §4.6 pass suite: a pure function
// `Run(*ir.Function) bool` per pass, reporting whether it changed
// anything, plus a driver that repeats the pass list until none of them
// report a change.
package passes

import (
	"gopkg.in/yaml.v3"

	"midend/internal/diag"
	"midend/internal/ir"
)

// Pass is a single optimization over one Function. Passes never surface
// errors (spec §7): a pass that cannot make progress simply returns false.
type Pass interface {
	Name() string
	Run(fn *ir.Function) bool
}

// RunToFixedPoint runs every pass in order, repeating the full list until a
// complete pass over it makes no further change, matching the driver loop
// `while any_pass_changed: run_all_passes()`. maxIterations bounds
// pathological non-terminating rewrite sequences; it is a safety net, not
// a tuning knob a well-behaved pipeline should ever hit.
func RunToFixedPoint(fn *ir.Function, pipeline []Pass, maxIterations int) int {
	iterations := 0
	converged := false
	for iterations < maxIterations {
		iterations++
		anyChanged := false
		for _, p := range pipeline {
			if p.Run(fn) {
				anyChanged = true
			}
		}
		if !anyChanged {
			converged = true
			break
		}
	}
	diag.Invariant(converged, "RunToFixedPoint: exceeded %d iterations without converging", maxIterations)
	return iterations
}

// DefaultPipeline returns the pass list in the order new code should use
// when no PipelineConfig overrides it: constant propagation first (it
// unlocks simplification and DCE), then the rewrite-y passes, then DCE
// last in each round to sweep up anything the rewrites stranded.
func DefaultPipeline() []Pass {
	return []Pass{
		ConstantPropagation{},
		InstructionSimplification{},
		ConditionalCommonOpExtraction{},
		LocalReordering{},
		DeadCodeElimination{},
	}
}

var registry = map[string]Pass{
	"constprop":  ConstantPropagation{},
	"simplify":   InstructionSimplification{},
	"commonop":   ConditionalCommonOpExtraction{},
	"reorder":    LocalReordering{},
	"dce":        DeadCodeElimination{},
	"cmpselect":  CmpSimplification{},
}

// PipelineConfig is the YAML-serializable shape of a pass pipeline: an
// ordered list of pass names plus an iteration cap, so a deployment can
// retune pass order (or drop a pass entirely) without a recompile.
type PipelineConfig struct {
	Passes        []string `yaml:"passes"`
	MaxIterations int      `yaml:"max_iterations"`
}

// ParsePipelineConfig decodes a YAML document into a PipelineConfig.
func ParsePipelineConfig(data []byte) (PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PipelineConfig{}, err
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 32
	}
	return cfg, nil
}

// Build resolves a PipelineConfig's pass names into concrete Pass values,
// in the configured order; a config that lists no passes yields
// DefaultPipeline(). An unknown pass name is a configuration error
// (category 1 in spec §7's terms — a bug in the caller, not a runtime
// absence), so it panics via diag.Invariant rather than returning an error.
func (cfg PipelineConfig) Build() []Pass {
	if len(cfg.Passes) == 0 {
		return DefaultPipeline()
	}
	pipeline := make([]Pass, 0, len(cfg.Passes))
	for _, name := range cfg.Passes {
		p, ok := registry[name]
		diag.Invariant(ok, "PipelineConfig: unknown pass %q", name)
		pipeline = append(pipeline, p)
	}
	return pipeline
}
