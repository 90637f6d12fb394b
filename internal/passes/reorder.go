package passes

import "midend/internal/ir"

// LocalReordering performs the two within-block rewrites of spec §4.6.4:
// pulling a matching div/mod pair adjacent to each other, and pulling an
// operand-producing instruction closer to a consumer when that is safe. Neither rewrite crosses a block boundary.
type LocalReordering struct{}

func (LocalReordering) Name() string { return "reorder" }

func (lr LocalReordering) Run(fn *ir.Function) bool {
	if fn.IsExtern() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks() {
		if reorderDivMod(b) {
			changed = true
		}
		if pullProducersCloser(b) {
			changed = true
		}
	}
	return changed
}

// reorderDivMod scans for a divu/divs and a modu/mods pair over the same
// operands and moves the later one to sit immediately after the earlier.
func reorderDivMod(b *ir.Block) bool {
	changed := false
	instrs := b.Instructions()
	for i, a := range instrs {
		ab, ok := a.(*ir.BinaryInstr)
		if !ok || !isDivOrMod(ab.Op()) {
			continue
		}
		for j := i + 1; j < len(instrs); j++ {
			bb, ok := instrs[j].(*ir.BinaryInstr)
			if !ok || !isDivOrMod(bb.Op()) {
				continue
			}
			if !isMatchingDivModPair(ab, bb) {
				continue
			}
			if isImmediatelyAfter(a, bb) {
				break
			}
			moveImmediatelyAfter(bb, a)
			changed = true
			break
		}
	}
	return changed
}

func isDivOrMod(op ir.BinaryOp) bool {
	switch op {
	case ir.OpDivU, ir.OpModU, ir.OpDivS, ir.OpModS:
		return true
	default:
		return false
	}
}

// isMatchingDivModPair reports whether a and b are a divu/modu or divs/mods
// pair (one div and one mod of the same signedness) over the same operands
// in the same order.
func isMatchingDivModPair(a, b *ir.BinaryInstr) bool {
	if a.Lhs() != b.Lhs() || a.Rhs() != b.Rhs() {
		return false
	}
	unsignedPair := (a.Op() == ir.OpDivU && b.Op() == ir.OpModU) || (a.Op() == ir.OpModU && b.Op() == ir.OpDivU)
	signedPair := (a.Op() == ir.OpDivS && b.Op() == ir.OpModS) || (a.Op() == ir.OpModS && b.Op() == ir.OpDivS)
	return unsignedPair || signedPair
}

func isImmediatelyAfter(earlier, later ir.Instruction) bool {
	return instructionAfter(earlier) == later
}

// instructionAfter returns the instruction physically following instr in
// its block's intrusive list, via a fresh walk (there is no exported
// "next" accessor on Instruction).
func instructionAfter(instr ir.Instruction) ir.Instruction {
	b := instr.Block()
	if b == nil {
		return nil
	}
	instrs := b.Instructions()
	for i, cur := range instrs {
		if cur == instr && i+1 < len(instrs) {
			return instrs[i+1]
		}
	}
	return nil
}

// moveImmediatelyAfter detaches later and reinserts it immediately after
// earlier. No between-use check is needed here, matching the original:
// later is moving backward to sit next to earlier, and SSA's def-before-use
// invariant already guarantees nothing positioned before later's original
// spot can reference later's result, so nothing can be stranded.
func moveImmediatelyAfter(later, earlier ir.Instruction) {
	ir.MoveAfter(later, earlier)
}

// pullProducersCloser implements rewrite 2: when Load.ptr/Store.ptr is an
// Offset, or CondBranch.cond/Select.cond is an IntCompare, defined earlier
// in the same block, move the producer to sit immediately before that use
// when nothing between the two reads the producer's result.
func pullProducersCloser(b *ir.Block) bool {
	changed := false
	for _, instr := range b.Instructions() {
		var producer ir.Instruction
		switch in := instr.(type) {
		case *ir.LoadInstr:
			producer, _ = in.Ptr().(*ir.OffsetInstr)
		case *ir.StoreInstr:
			producer, _ = in.Ptr().(*ir.OffsetInstr)
		case *ir.CondBranchInstr:
			producer, _ = in.Cond().(*ir.IntCompareInstr)
		case *ir.SelectInstr:
			producer, _ = in.Cond().(*ir.IntCompareInstr)
		}
		if producer == nil || producer.Block() != b {
			continue
		}
		if isImmediatelyAfter(producer, instr) {
			continue
		}
		if !nothingBetweenUses(producer, instr) {
			continue
		}
		moveImmediatelyBefore(producer, instr)
		changed = true
	}
	return changed
}

// nothingBetweenUses walks the instructions strictly between producer and
// use (exclusive of both) and reports whether none of them reference
// producer as an operand. This is the only safety condition the move
// needs: producer may still have other uses elsewhere in the function (even
// later in the same block, past use), since those positions are unaffected
// by sliding producer forward to sit just before use.
func nothingBetweenUses(producer, use ir.Instruction) bool {
	for cur := instructionAfter(producer); cur != nil && cur != use; cur = instructionAfter(cur) {
		for _, op := range cur.Operands() {
			if op == ir.Value(producer) {
				return false
			}
		}
	}
	return true
}

func moveImmediatelyBefore(instr, ref ir.Instruction) {
	ir.MoveBefore(instr, ref)
}
