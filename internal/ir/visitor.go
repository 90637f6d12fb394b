package ir

// InstructionVisitor implements double dispatch over the closed instruction
// kind set: every concrete instruction's Accept method calls back into the
// matching Visit method. The kind set is closed, so every implementation
// must provide every method; there is no "default" fallback, by design —
// adding a new instruction kind is a compile error at every call site until
// every visitor is updated.
type InstructionVisitor interface {
	VisitUnary(*UnaryInstr) any
	VisitBinary(*BinaryInstr) any
	VisitIntCompare(*IntCompareInstr) any
	VisitCast(*CastInstr) any
	VisitLoad(*LoadInstr) any
	VisitStore(*StoreInstr) any
	VisitStackAlloc(*StackAllocInstr) any
	VisitOffset(*OffsetInstr) any
	VisitCall(*CallInstr) any
	VisitBranch(*BranchInstr) any
	VisitCondBranch(*CondBranchInstr) any
	VisitSelect(*SelectInstr) any
	VisitRet(*RetInstr) any
	VisitPhi(*PhiInstr) any
}
