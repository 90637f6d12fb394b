package ir

import "midend/internal/diag"

// InstrKind tags the closed set of instruction kinds. Every exhaustive
// switch over InstrKind (the visitor, the pattern matcher, the passes) must
// handle every case; reaching a default arm is a diag.Unreachable.
type InstrKind int

const (
	KindUnary InstrKind = iota
	KindBinary
	KindIntCompare
	KindCast
	KindLoad
	KindStore
	KindStackAlloc
	KindOffset
	KindCall
	KindBranch
	KindCondBranch
	KindSelect
	KindRet
	KindPhi
)

func (k InstrKind) String() string {
	names := [...]string{
		"unary", "binary", "icmp", "cast", "load", "store", "stackalloc",
		"offset", "call", "br", "condbr", "select", "ret", "phi",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "InstrKind(?)"
	}
	return names[k]
}

// UnaryOp is the operator of a UnaryInstr.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

func (o UnaryOp) String() string {
	if o == OpNeg {
		return "neg"
	}
	return "not"
}

// BinaryOp is the operator of a BinaryInstr.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpModS
	OpDivS
	OpModU
	OpDivU
	OpShr
	OpShl
	OpSar
	OpAnd
	OpOr
	OpXor
)

func (o BinaryOp) String() string {
	names := [...]string{"add", "sub", "mul", "mods", "divs", "modu", "divu", "shr", "shl", "sar", "and", "or", "xor"}
	if int(o) < 0 || int(o) >= len(names) {
		return "BinaryOp(?)"
	}
	return names[o]
}

// IsCommutative reports whether operand order doesn't matter for o.
func (o BinaryOp) IsCommutative() bool {
	switch o {
	case OpAdd, OpMul, OpAnd, OpOr, OpXor:
		return true
	default:
		return false
	}
}

// ComparePred is the predicate of an IntCompare.
type ComparePred int

const (
	PredEq ComparePred = iota
	PredNe
	PredGtU
	PredGteU
	PredGtS
	PredGteS
	PredLtU
	PredLteU
	PredLtS
	PredLteS
)

func (p ComparePred) String() string {
	names := [...]string{"eq", "ne", "gtu", "gteu", "gts", "gtes", "ltu", "lteu", "lts", "ltes"}
	if int(p) < 0 || int(p) >= len(names) {
		return "ComparePred(?)"
	}
	return names[p]
}

// Inverted returns the predicate that is true exactly when p is false, for
// the same operand order (e.g. Eq <-> Ne, GtU <-> LteU).
func (p ComparePred) Inverted() ComparePred {
	switch p {
	case PredEq:
		return PredNe
	case PredNe:
		return PredEq
	case PredGtU:
		return PredLteU
	case PredLteU:
		return PredGtU
	case PredGteU:
		return PredLtU
	case PredLtU:
		return PredGteU
	case PredGtS:
		return PredLteS
	case PredLteS:
		return PredGtS
	case PredGteS:
		return PredLtS
	case PredLtS:
		return PredGteS
	default:
		diag.Unreachable("ComparePred.Inverted: unhandled predicate %v", p)
		return p
	}
}

// CastKind is the operator of a Cast.
type CastKind int

const (
	CastZeroExtend CastKind = iota
	CastSignExtend
	CastTruncate
	CastBitcast
)

func (k CastKind) String() string {
	switch k {
	case CastZeroExtend:
		return "zext"
	case CastSignExtend:
		return "sext"
	case CastTruncate:
		return "trunc"
	case CastBitcast:
		return "bitcast"
	default:
		return "CastKind(?)"
	}
}

// Instruction is a Value that belongs to exactly one Block at a time (or is
// detached, awaiting insertion), with an ordered operand vector and a
// volatility flag forbidding DCE on instructions with unknown side effects
// or that transfer control.
type Instruction interface {
	Value

	ID() int
	Kind() InstrKind
	Block() *Block

	Operands() []Value
	Operand(i int) Value
	SetOperand(i int, v Value)

	IsVolatile() bool
	IsTerminator() bool

	Accept(v InstructionVisitor) any

	// Unlink detaches the instruction from its Block without destroying it
	// (Inserted -> Detached). Its operands/users are left untouched.
	Unlink()

	// Destroy disconnects the instruction from every operand (updating
	// those operands' user sets) and transitions it to Destroyed. It is a
	// hard error to destroy an instruction with a non-empty user set.
	Destroy()

	// DestroyIfUnused is a no-op when the instruction is used, otherwise
	// behaves like Destroy.
	DestroyIfUnused()

	// ReplaceUsesAndDestroy calls ReplaceUsesWith(newVal) then Destroy().
	ReplaceUsesAndDestroy(newVal Value)

	// insert placement, used by Inserter and Block
	insertBefore(other Instruction)
	insertAfter(other Instruction)
	insertAtFront(b *Block)
	insertAtBack(b *Block)

	prevInstr() Instruction
	nextInstr() Instruction
	setPrevInstr(Instruction)
	setNextInstr(Instruction)
	setBlock(*Block)
}

// InstrBase is embedded by every concrete instruction kind. It supplies the
// Value/Instruction bookkeeping (user set via valueBase, block linkage,
// volatility, id) so each kind only needs to declare its own operand fields
// and the handful of methods that project them.
type InstrBase struct {
	valueBase
	id       int
	kind     InstrKind
	block    *Block
	prev     Instruction
	next     Instruction
	volatile bool
}

func (ib *InstrBase) initInstr(self Instruction, ctx *Context, typ *Type, kind InstrKind, volatile bool) {
	ib.init(self, ctx, typ, ValInstruction)
	ib.id = ctx.nextInstrID()
	ib.kind = kind
	ib.volatile = volatile
}

func (ib *InstrBase) self() Instruction { return ib.valueBase.self.(Instruction) }

func (ib *InstrBase) ID() int            { return ib.id }
func (ib *InstrBase) Kind() InstrKind    { return ib.kind }
func (ib *InstrBase) Block() *Block      { return ib.block }
func (ib *InstrBase) IsVolatile() bool   { return ib.volatile }
func (ib *InstrBase) IsTerminator() bool { return false }

func (ib *InstrBase) prevInstr() Instruction       { return ib.prev }
func (ib *InstrBase) nextInstr() Instruction       { return ib.next }
func (ib *InstrBase) setPrevInstr(p Instruction)   { ib.prev = p }
func (ib *InstrBase) setNextInstr(n Instruction)   { ib.next = n }
func (ib *InstrBase) setBlock(b *Block)            { ib.block = b }

// replaceOperand is the sole mutation path concrete kinds route through: it
// removes self from the old operand's user set (if any) and adds self to
// the new operand's user set (if any), so Value's user-set invariant always
// holds after SetOperand returns.
func (ib *InstrBase) replaceOperand(slot *Value, idx int, v Value) {
	old := *slot
	self := ib.self()
	if old != nil {
		old.removeUser(self, idx)
	}
	*slot = v
	if v != nil {
		v.addUser(self, idx)
	}
}

func (ib *InstrBase) Unlink() {
	b := ib.block
	diag.Invariant(b != nil, "Unlink: instruction %d is already detached", ib.id)
	b.unlink(ib.self())
	ib.block = nil
	ib.prev = nil
	ib.next = nil
}

func (ib *InstrBase) Destroy() {
	diag.Invariant(!ib.IsUsed(), "Destroy: instruction %d still has users", ib.id)
	self := ib.self()
	if ib.block != nil {
		ib.Unlink()
	}
	for i, op := range self.Operands() {
		if op != nil {
			self.SetOperand(i, nil)
		}
	}
}

func (ib *InstrBase) DestroyIfUnused() {
	if !ib.IsUsed() {
		ib.self().Destroy()
	}
}

func (ib *InstrBase) ReplaceUsesAndDestroy(newVal Value) {
	ib.ReplaceUsesWith(newVal)
	ib.self().Destroy()
}

func (ib *InstrBase) insertBefore(other Instruction) {
	diag.Invariant(ib.block == nil, "insertBefore: instruction %d already inserted", ib.id)
	b := other.Block()
	diag.Invariant(b != nil, "insertBefore: target instruction is detached")
	b.insertBeforeInstr(ib.self(), other)
}

func (ib *InstrBase) insertAfter(other Instruction) {
	diag.Invariant(ib.block == nil, "insertAfter: instruction %d already inserted", ib.id)
	b := other.Block()
	diag.Invariant(b != nil, "insertAfter: target instruction is detached")
	b.insertAfterInstr(ib.self(), other)
}

func (ib *InstrBase) insertAtFront(b *Block) {
	diag.Invariant(ib.block == nil, "insertAtFront: instruction %d already inserted", ib.id)
	b.pushFront(ib.self())
}

func (ib *InstrBase) insertAtBack(b *Block) {
	diag.Invariant(ib.block == nil, "insertAtBack: instruction %d already inserted", ib.id)
	b.pushBack(ib.self())
}
