package passes

import "midend/internal/ir"

// DeadCodeElimination removes instructions that cannot affect the program's
// observable behavior: non-volatile instructions with no users, and dead
// self-referential phi cycles. Eliminating an instruction disconnects it
// from its operands and pushes any operand that became unused back onto
// the worklist, so the whole thing runs to a fixed point in one call.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "dce" }

func (DeadCodeElimination) Run(fn *ir.Function) bool {
	if fn.IsExtern() {
		return false
	}
	changed := false

	var worklist []ir.Instruction
	seed := func(instr ir.Instruction) {
		if isEliminationCandidate(instr) {
			worklist = append(worklist, instr)
		}
	}
	for _, b := range fn.Blocks() {
		for _, instr := range b.Instructions() {
			seed(instr)
		}
	}

	// Phi self-cycles require a separate, set-based elimination since no
	// single phi in the cycle is individually unused.
	for _, b := range fn.Blocks() {
		for _, instr := range b.Instructions() {
			phi, ok := instr.(*ir.PhiInstr)
			if !ok || !phi.IsUsed() {
				continue
			}
			if cycle := deadPhiCycle(phi); cycle != nil {
				eliminateCycle(cycle, &worklist)
				changed = true
			}
		}
	}

	for len(worklist) > 0 {
		instr := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if instr.Block() == nil || instr.IsUsed() {
			continue
		}
		operands := instr.Operands()
		instr.Destroy()
		changed = true
		for _, op := range operands {
			if opInstr, ok := op.(ir.Instruction); ok && isEliminationCandidate(opInstr) {
				worklist = append(worklist, opInstr)
			}
		}
	}

	return changed
}

// isEliminationCandidate reports whether instr is (a) not volatile and
// (b) either void-typed (its "value" is never observable) with no users,
// or non-void and unused. Volatile instructions (store, call, the
// terminators) are never eliminated here regardless of use count.
func isEliminationCandidate(instr ir.Instruction) bool {
	if instr.Block() == nil {
		return false
	}
	if instr.IsVolatile() {
		return false
	}
	return !instr.IsUsed()
}

// deadPhiCycle reports whether phi is a dead self-referential cycle: every
// direct user of phi is non-volatile and is used only by phi itself. This
// is a one-hop check, exactly matching the original's is_dead_recursive_phi
// — it inspects only phi's immediate users, not a transitive closure of
// everything reachable by repeatedly following Users() edges. On a match it
// returns phi together with those direct users (the set that becomes dead
// together once phi's incoming edges to them are severed); otherwise nil.
func deadPhiCycle(phi *ir.PhiInstr) []ir.Instruction {
	cycle := []ir.Instruction{phi}
	seen := map[ir.Instruction]bool{phi: true}
	for _, use := range phi.Users() {
		if use.User.IsVolatile() || !use.User.IsUsedOnlyBy(phi) {
			return nil
		}
		if !seen[use.User] {
			seen[use.User] = true
			cycle = append(cycle, use.User)
		}
	}
	return cycle
}

// eliminateCycle destroys every member of a closed dead component. Unlike
// ordinary dead instructions, cycle members can reference each other (a
// phi referencing its own loop-carried increment, which in turn
// references the phi), so no member is individually unused until the
// cycle's internal edges are cut first: disconnect every operand within the
// component, then destroy every member (now genuinely unused). Any operand
// outside the component that becomes unused as a result is pushed onto
// worklist, the same way the ordinary elimination path does, so a single
// Run call still reaches a fixed point.
func eliminateCycle(cycle []ir.Instruction, worklist *[]ir.Instruction) {
	inCycle := make(map[ir.Instruction]bool, len(cycle))
	for _, instr := range cycle {
		inCycle[instr] = true
	}

	var external []ir.Instruction
	for _, instr := range cycle {
		for i, op := range instr.Operands() {
			if op == nil {
				continue
			}
			instr.SetOperand(i, nil)
			if opInstr, ok := op.(ir.Instruction); ok && !inCycle[opInstr] {
				external = append(external, opInstr)
			}
		}
	}

	for _, instr := range cycle {
		if instr.Block() != nil {
			instr.Destroy()
		}
	}

	for _, opInstr := range external {
		if isEliminationCandidate(opInstr) {
			*worklist = append(*worklist, opInstr)
		}
	}
}
