package ir

import "fmt"

// Verify checks the §8 testable invariants against fn and returns a
// human-readable description of every violation found, or nil if fn is
// sound. Unlike diag.Invariant, Verify never panics: it is meant to be run
// after IR construction and after each pass in a test suite (the same role
// golang.org/x/tools/go/ssa's sanity.go plays for Go's own SSA builder),
// surfacing every violation at once instead of crashing on the first one.
func Verify(fn *Function) []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if fn.IsExtern() {
		return nil
	}

	blockSet := make(map[*Block]bool, len(fn.blocks))
	for _, b := range fn.blocks {
		blockSet[b] = true
	}

	for _, b := range fn.blocks {
		verifyBlockTermination(b, report)
		verifySuccessorsInFunction(b, blockSet, report)
		verifyPhiPredecessors(b, report)
	}

	verifyUserSetSymmetry(fn, report)

	return problems
}

func verifyBlockTermination(b *Block, report func(string, ...any)) {
	if b.IsEmpty() {
		report("block %q is empty (no terminator)", b.Label())
		return
	}
	count := 0
	for instr := b.First(); instr != nil; instr = instr.nextInstr() {
		if instr.IsTerminator() {
			count++
			if instr != b.Last() {
				report("block %q: terminator %d is not the last instruction", b.Label(), instr.ID())
			}
		}
	}
	if count == 0 {
		report("block %q: no terminator", b.Label())
	} else if count > 1 {
		report("block %q: %d terminators, expected exactly 1", b.Label(), count)
	}
}

func verifySuccessorsInFunction(b *Block, blockSet map[*Block]bool, report func(string, ...any)) {
	for _, succ := range b.Successors() {
		if succ == nil {
			report("block %q: terminator names a nil successor", b.Label())
			continue
		}
		if !blockSet[succ] {
			report("block %q: terminator targets block %q outside this function", b.Label(), succ.Label())
		}
	}
}

func verifyPhiPredecessors(b *Block, report func(string, ...any)) {
	preds := b.Predecessors()
	predSet := make(map[*Block]bool, len(preds))
	for _, p := range preds {
		predSet[p] = true
	}

	for instr := b.First(); instr != nil; instr = instr.nextInstr() {
		phi, ok := instr.(*PhiInstr)
		if !ok {
			continue
		}
		seen := make(map[*Block]bool)
		for _, in := range phi.Incomings() {
			if seen[in.Block] {
				report("block %q: phi %d has duplicate incoming for predecessor %q", b.Label(), phi.ID(), in.Block.Label())
			}
			seen[in.Block] = true
			if !predSet[in.Block] {
				report("block %q: phi %d names %q which is not a predecessor", b.Label(), phi.ID(), in.Block.Label())
			}
			if in.Value != nil && in.Value.Type() != phi.Type() {
				report("block %q: phi %d incoming from %q has type %v, expected %v", b.Label(), phi.ID(), in.Block.Label(), in.Value.Type(), phi.Type())
			}
		}
		for p := range predSet {
			if !seen[p] {
				report("block %q: phi %d is missing an incoming for predecessor %q", b.Label(), phi.ID(), p.Label())
			}
		}
	}
}

func verifyUserSetSymmetry(fn *Function, report func(string, ...any)) {
	for _, b := range fn.blocks {
		for instr := b.First(); instr != nil; instr = instr.nextInstr() {
			for i, op := range instr.Operands() {
				if op == nil {
					continue
				}
				found := false
				for _, u := range op.Users() {
					if u.User == instr && u.Index == i {
						found = true
						break
					}
				}
				if !found {
					report("instruction %d: operand %d not reflected in its user set", instr.ID(), i)
				}
			}
		}
	}
}
