package ir

import "midend/internal/diag"

// ReplaceInstructionAndDestroy inserts newInstr immediately before self,
// rewrites every current user of self to reference newInstr instead, and
// destroys self. newInstr must be detached and must share self's type
// (spec invariant 6: types of operands/replacements must match).
func ReplaceInstructionAndDestroy(self, newInstr Instruction) Instruction {
	diag.Invariant(self.Block() != nil, "ReplaceInstructionAndDestroy: self is detached")
	diag.Invariant(newInstr.Block() == nil, "ReplaceInstructionAndDestroy: replacement is already inserted")
	diag.Invariant(self.Type() == newInstr.Type(), "ReplaceInstructionAndDestroy: type mismatch %v vs %v", self.Type(), newInstr.Type())

	newInstr.insertBefore(self)
	self.ReplaceUsesWith(newInstr)
	self.Destroy()
	return newInstr
}
