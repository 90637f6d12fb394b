package ir

import "midend/internal/diag"

// MoveBefore relocates an already-inserted instr to sit immediately before
// ref, both within the same block. Used by the local-reordering pass
// (§4.6.4) to pull a producer closer to its consumer without reconstructing
// it (which would also require re-threading every existing use).
func MoveBefore(instr, ref Instruction) {
	diag.Invariant(instr.Block() == ref.Block(), "MoveBefore: instructions are in different blocks")
	instr.Unlink()
	instr.insertBefore(ref)
}

// MoveAfter relocates an already-inserted instr to sit immediately after
// ref, both within the same block.
func MoveAfter(instr, ref Instruction) {
	diag.Invariant(instr.Block() == ref.Block(), "MoveAfter: instructions are in different blocks")
	instr.Unlink()
	instr.insertAfter(ref)
}
