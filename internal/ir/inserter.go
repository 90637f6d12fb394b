package ir

import "midend/internal/diag"

// cursorPos tags where an Inserter places the next emitted instruction.
type cursorPos int

const (
	posBack cursorPos = iota
	posFront
	posBefore
	posAfter
)

// Inserter is a stateful cursor that builds instructions and inserts them
// at a fixed position relative to a block or another instruction. Every
// emit_X call constructs the instruction detached, inserts it at the
// cursor, advances the cursor past it, and returns it. The inserter
// performs no validation beyond operand-type matching (done by the
// instruction constructors themselves).
type Inserter struct {
	ctx *Context

	block *Block
	pos   cursorPos
	ref   Instruction // the anchor instruction for posBefore/posAfter
}

// NewInserterAtBack returns an Inserter that appends to the end of b.
func NewInserterAtBack(b *Block) *Inserter {
	return &Inserter{ctx: ownerContext(b), block: b, pos: posBack}
}

// NewInserterAtFront returns an Inserter that prepends to the front of b.
func NewInserterAtFront(b *Block) *Inserter {
	return &Inserter{ctx: ownerContext(b), block: b, pos: posFront}
}

// NewInserterBefore returns an Inserter that inserts immediately before ref.
func NewInserterBefore(ref Instruction) *Inserter {
	diag.Invariant(ref.Block() != nil, "NewInserterBefore: ref instruction is detached")
	return &Inserter{ctx: ownerContext(ref.Block()), pos: posBefore, ref: ref}
}

// NewInserterAfter returns an Inserter that inserts immediately after ref.
func NewInserterAfter(ref Instruction) *Inserter {
	diag.Invariant(ref.Block() != nil, "NewInserterAfter: ref instruction is detached")
	return &Inserter{ctx: ownerContext(ref.Block()), pos: posAfter, ref: ref}
}

func ownerContext(b *Block) *Context {
	return b.Function().ctx
}

// place inserts instr at the cursor and advances the cursor to sit right
// after the newly inserted instruction, so a chain of emit_X calls produces
// instructions in call order.
func (ins *Inserter) place(instr Instruction) {
	switch ins.pos {
	case posFront:
		instr.insertAtFront(ins.block)
		ins.pos = posAfter
		ins.ref = instr
	case posBack:
		instr.insertAtBack(ins.block)
		ins.ref = instr
	case posBefore:
		instr.insertBefore(ins.ref)
		// cursor stays positioned before the same ref
	case posAfter:
		instr.insertAfter(ins.ref)
		ins.ref = instr
	default:
		diag.Unreachable("Inserter.place: unhandled cursor position %d", ins.pos)
	}
}

func (ins *Inserter) EmitUnary(op UnaryOp, v Value) *UnaryInstr {
	i := newUnaryInstr(ins.ctx, op, v)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitBinary(lhs Value, op BinaryOp, rhs Value) *BinaryInstr {
	i := newBinaryInstr(ins.ctx, lhs, op, rhs)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitIntCompare(lhs Value, pred ComparePred, rhs Value) *IntCompareInstr {
	i := newIntCompareInstr(ins.ctx, lhs, pred, rhs)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitCast(kind CastKind, v Value, toType *Type) *CastInstr {
	i := newCastInstr(ins.ctx, kind, v, toType)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitLoad(ptr Value) *LoadInstr {
	i := newLoadInstr(ins.ctx, ptr)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitStore(ptr, val Value) *StoreInstr {
	i := newStoreInstr(ins.ctx, ptr, val)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitStackAlloc(elemType *Type, count Value) *StackAllocInstr {
	i := newStackAllocInstr(ins.ctx, elemType, count)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitOffset(base, index Value) *OffsetInstr {
	i := newOffsetInstr(ins.ctx, base, index)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitCall(callee *Function, args []Value) *CallInstr {
	i := newCallInstr(ins.ctx, callee, args)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitBranch(target *Block) *BranchInstr {
	i := newBranchInstr(ins.ctx, target)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitCondBranch(cond Value, trueBlock, falseBlock *Block) *CondBranchInstr {
	i := newCondBranchInstr(ins.ctx, cond, trueBlock, falseBlock)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitSelect(cond, trueVal, falseVal Value) *SelectInstr {
	i := newSelectInstr(ins.ctx, cond, trueVal, falseVal)
	ins.place(i)
	return i
}

func (ins *Inserter) EmitRet(resultType *Type, value Value) *RetInstr {
	i := newRetInstr(ins.ctx, resultType, value)
	ins.place(i)
	return i
}

// EmitPhi creates a phi detached and inserts it at the cursor. Incoming
// pairs are added afterward via PhiInstr.AddIncoming once all predecessors
// are known (typical during SSA construction, where predecessors may not
// all exist yet when the phi is first created).
func (ins *Inserter) EmitPhi(typ *Type) *PhiInstr {
	i := newPhiInstr(ins.ctx, typ)
	ins.place(i)
	return i
}
