package passes

import "midend/internal/ir"

// CmpSimplification is the standalone form of §4.6.6: an older pass with
// semantics identical to the cmp/select/cmp collapse embedded in
// InstructionSimplification. It shares simplifyCmpSelectCmp rather than
// re-implementing the rule, since the spec notes only one form needs to be
// retained — keeping both as thin, independently selectable passes lets a
// PipelineConfig enable either one without duplicating the rewrite logic.
type CmpSimplification struct{}

func (CmpSimplification) Name() string { return "cmpselect" }

func (cs CmpSimplification) Run(fn *ir.Function) bool {
	if fn.IsExtern() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks() {
		ir.ForEachInstrSafe(b, func(instr ir.Instruction) {
			cmp, ok := instr.(*ir.IntCompareInstr)
			if !ok {
				return
			}
			if _, ok := simplifyCmpSelectCmp(cmp); ok {
				changed = true
			}
		})
	}
	return changed
}
