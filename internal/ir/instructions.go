package ir

import "midend/internal/diag"

func checkOperandIndex(i, n int) {
	diag.Invariant(i >= 0 && i < n, "operand index %d out of range [0,%d)", i, n)
}

// ---- UnaryInstr: op(v), result type = v's type ----

type UnaryInstr struct {
	InstrBase
	op UnaryOp
	v  Value
}

func newUnaryInstr(ctx *Context, op UnaryOp, v Value) *UnaryInstr {
	diag.Invariant(v.Type().IsInteger(), "UnaryInstr: operand type %v is not an integer", v.Type())
	i := &UnaryInstr{op: op}
	i.initInstr(i, ctx, v.Type(), KindUnary, false)
	i.replaceOperand(&i.v, 0, v)
	return i
}

func (i *UnaryInstr) Op() UnaryOp  { return i.op }
func (i *UnaryInstr) V() Value     { return i.v }
func (i *UnaryInstr) Operands() []Value { return []Value{i.v} }
func (i *UnaryInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 1)
	return i.v
}
func (i *UnaryInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 1)
	i.replaceOperand(&i.v, 0, v)
}
func (i *UnaryInstr) Accept(vis InstructionVisitor) any { return vis.VisitUnary(i) }

// ---- BinaryInstr: lhs op rhs, shared integer type ----

type BinaryInstr struct {
	InstrBase
	op       BinaryOp
	lhs, rhs Value
}

func newBinaryInstr(ctx *Context, lhs Value, op BinaryOp, rhs Value) *BinaryInstr {
	diag.Invariant(lhs.Type() == rhs.Type(), "BinaryInstr: operand type mismatch %v vs %v", lhs.Type(), rhs.Type())
	diag.Invariant(lhs.Type().IsInteger(), "BinaryInstr: operand type %v is not an integer", lhs.Type())
	b := &BinaryInstr{op: op}
	b.initInstr(b, ctx, lhs.Type(), KindBinary, false)
	b.replaceOperand(&b.lhs, 0, lhs)
	b.replaceOperand(&b.rhs, 1, rhs)
	return b
}

func (b *BinaryInstr) Op() BinaryOp  { return b.op }
func (b *BinaryInstr) Lhs() Value    { return b.lhs }
func (b *BinaryInstr) Rhs() Value    { return b.rhs }
func (b *BinaryInstr) Operands() []Value { return []Value{b.lhs, b.rhs} }
func (b *BinaryInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		return b.lhs
	}
	return b.rhs
}
func (b *BinaryInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		b.replaceOperand(&b.lhs, 0, v)
	} else {
		b.replaceOperand(&b.rhs, 1, v)
	}
}
func (b *BinaryInstr) Accept(vis InstructionVisitor) any { return vis.VisitBinary(b) }

// ---- IntCompare: lhs pred rhs, result I1 ----

type IntCompareInstr struct {
	InstrBase
	pred     ComparePred
	lhs, rhs Value
}

func newIntCompareInstr(ctx *Context, lhs Value, pred ComparePred, rhs Value) *IntCompareInstr {
	diag.Invariant(lhs.Type() == rhs.Type(), "IntCompare: operand type mismatch %v vs %v", lhs.Type(), rhs.Type())
	diag.Invariant(lhs.Type().IsInteger(), "IntCompare: operand type %v is not an integer", lhs.Type())
	c := &IntCompareInstr{pred: pred}
	c.initInstr(c, ctx, ctx.I1Type(), KindIntCompare, false)
	c.replaceOperand(&c.lhs, 0, lhs)
	c.replaceOperand(&c.rhs, 1, rhs)
	return c
}

func (c *IntCompareInstr) Pred() ComparePred { return c.pred }
func (c *IntCompareInstr) Lhs() Value        { return c.lhs }
func (c *IntCompareInstr) Rhs() Value        { return c.rhs }
func (c *IntCompareInstr) Operands() []Value { return []Value{c.lhs, c.rhs} }
func (c *IntCompareInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		return c.lhs
	}
	return c.rhs
}
func (c *IntCompareInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		c.replaceOperand(&c.lhs, 0, v)
	} else {
		c.replaceOperand(&c.rhs, 1, v)
	}
}
func (c *IntCompareInstr) Accept(vis InstructionVisitor) any { return vis.VisitIntCompare(c) }

// ---- Cast: kind(v) -> toType ----

type CastInstr struct {
	InstrBase
	kind CastKind
	v    Value
}

func newCastInstr(ctx *Context, kind CastKind, v Value, toType *Type) *CastInstr {
	diag.Invariant(v.Type().IsInteger(), "Cast: operand type %v is not an integer", v.Type())
	diag.Invariant(toType.IsInteger(), "Cast: target type %v is not an integer", toType)
	c := &CastInstr{kind: kind}
	c.initInstr(c, ctx, toType, KindCast, false)
	c.replaceOperand(&c.v, 0, v)
	return c
}

func (c *CastInstr) CastKind() CastKind { return c.kind }
func (c *CastInstr) V() Value           { return c.v }
func (c *CastInstr) Operands() []Value  { return []Value{c.v} }
func (c *CastInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 1)
	return c.v
}
func (c *CastInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 1)
	c.replaceOperand(&c.v, 0, v)
}
func (c *CastInstr) Accept(vis InstructionVisitor) any { return vis.VisitCast(c) }

// ---- Load: *ptr, volatile ----

type LoadInstr struct {
	InstrBase
	ptr Value
}

func newLoadInstr(ctx *Context, ptr Value) *LoadInstr {
	diag.Invariant(ptr.Type().IsPointer(), "Load: operand type %v is not a pointer", ptr.Type())
	l := &LoadInstr{}
	l.initInstr(l, ctx, ptr.Type().Elem(), KindLoad, true)
	l.replaceOperand(&l.ptr, 0, ptr)
	return l
}

func (l *LoadInstr) Ptr() Value       { return l.ptr }
func (l *LoadInstr) Operands() []Value { return []Value{l.ptr} }
func (l *LoadInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 1)
	return l.ptr
}
func (l *LoadInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 1)
	l.replaceOperand(&l.ptr, 0, v)
}
func (l *LoadInstr) Accept(vis InstructionVisitor) any { return vis.VisitLoad(l) }

// ---- Store: *ptr = value, void, volatile ----

type StoreInstr struct {
	InstrBase
	ptr Value
	val Value
}

func newStoreInstr(ctx *Context, ptr, val Value) *StoreInstr {
	diag.Invariant(ptr.Type().IsPointer(), "Store: operand type %v is not a pointer", ptr.Type())
	diag.Invariant(ptr.Type().Elem() == val.Type(), "Store: value type %v does not match pointee %v", val.Type(), ptr.Type().Elem())
	s := &StoreInstr{}
	s.initInstr(s, ctx, ctx.VoidType(), KindStore, true)
	s.replaceOperand(&s.ptr, 0, ptr)
	s.replaceOperand(&s.val, 1, val)
	return s
}

func (s *StoreInstr) Ptr() Value   { return s.ptr }
func (s *StoreInstr) Val() Value   { return s.val }
func (s *StoreInstr) Operands() []Value { return []Value{s.ptr, s.val} }
func (s *StoreInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		return s.ptr
	}
	return s.val
}
func (s *StoreInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		s.replaceOperand(&s.ptr, 0, v)
	} else {
		s.replaceOperand(&s.val, 1, v)
	}
}
func (s *StoreInstr) Accept(vis InstructionVisitor) any { return vis.VisitStore(s) }

// ---- StackAlloc: alloca elemType, count -> pointer to elemType ----

type StackAllocInstr struct {
	InstrBase
	elemType *Type
	count    Value
}

func newStackAllocInstr(ctx *Context, elemType *Type, count Value) *StackAllocInstr {
	diag.Invariant(count.Type().IsInteger(), "StackAlloc: count type %v is not an integer", count.Type())
	if c, ok := count.(*Constant); ok {
		diag.Invariant(c.Bits() >= 1, "StackAlloc: count must be >= 1, got %d", c.Bits())
	}
	s := &StackAllocInstr{elemType: elemType}
	s.initInstr(s, ctx, ctx.PointerTo(elemType), KindStackAlloc, false)
	s.replaceOperand(&s.count, 0, count)
	return s
}

func (s *StackAllocInstr) ElemType() *Type { return s.elemType }
func (s *StackAllocInstr) Count() Value    { return s.count }
func (s *StackAllocInstr) Operands() []Value { return []Value{s.count} }
func (s *StackAllocInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 1)
	return s.count
}
func (s *StackAllocInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 1)
	s.replaceOperand(&s.count, 0, v)
}
func (s *StackAllocInstr) Accept(vis InstructionVisitor) any { return vis.VisitStackAlloc(s) }

// ---- Offset: base + index, pointer arithmetic, result type = base type ----

type OffsetInstr struct {
	InstrBase
	base  Value
	index Value
}

func newOffsetInstr(ctx *Context, base, index Value) *OffsetInstr {
	diag.Invariant(base.Type().IsPointer(), "Offset: base type %v is not a pointer", base.Type())
	diag.Invariant(index.Type() == ctx.I64Type(), "Offset: index type %v is not i64", index.Type())
	o := &OffsetInstr{}
	o.initInstr(o, ctx, base.Type(), KindOffset, false)
	o.replaceOperand(&o.base, 0, base)
	o.replaceOperand(&o.index, 1, index)
	return o
}

func (o *OffsetInstr) Base() Value  { return o.base }
func (o *OffsetInstr) Index() Value { return o.index }
func (o *OffsetInstr) Operands() []Value { return []Value{o.base, o.index} }
func (o *OffsetInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		return o.base
	}
	return o.index
}
func (o *OffsetInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 2)
	if idx == 0 {
		o.replaceOperand(&o.base, 0, v)
	} else {
		o.replaceOperand(&o.index, 1, v)
	}
}
func (o *OffsetInstr) Accept(vis InstructionVisitor) any { return vis.VisitOffset(o) }

// ---- Call: callee(args...), result = callee's return type, volatile ----

type CallInstr struct {
	InstrBase
	callee *Function
	args   []Value
}

func newCallInstr(ctx *Context, callee *Function, args []Value) *CallInstr {
	diag.Invariant(len(args) == len(callee.Params()), "Call: argument count %d does not match callee %q arity %d", len(args), callee.Name(), len(callee.Params()))
	for i, a := range args {
		diag.Invariant(a.Type() == callee.Param(i).Type(), "Call: argument %d type %v does not match parameter type %v", i, a.Type(), callee.Param(i).Type())
	}
	c := &CallInstr{callee: callee, args: append([]Value(nil), args...)}
	c.initInstr(c, ctx, callee.ResultType(), KindCall, true)
	for i, a := range args {
		c.args[i] = nil
		c.replaceOperand(&c.args[i], i, a)
	}
	return c
}

func (c *CallInstr) Callee() *Function { return c.callee }
func (c *CallInstr) Args() []Value     { return append([]Value(nil), c.args...) }
func (c *CallInstr) Operands() []Value { return append([]Value(nil), c.args...) }
func (c *CallInstr) Operand(idx int) Value {
	checkOperandIndex(idx, len(c.args))
	return c.args[idx]
}
func (c *CallInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, len(c.args))
	c.replaceOperand(&c.args[idx], idx, v)
}
func (c *CallInstr) Accept(vis InstructionVisitor) any { return vis.VisitCall(c) }

// ---- Branch: unconditional jump, void terminator ----

type BranchInstr struct {
	InstrBase
	target *Block
}

func newBranchInstr(ctx *Context, target *Block) *BranchInstr {
	b := &BranchInstr{target: target}
	b.initInstr(b, ctx, ctx.VoidType(), KindBranch, true)
	return b
}

func (b *BranchInstr) Target() *Block        { return b.target }
func (b *BranchInstr) SetTarget(t *Block)    { b.target = t }
func (b *BranchInstr) Operands() []Value     { return nil }
func (b *BranchInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 0)
	return nil
}
func (b *BranchInstr) SetOperand(idx int, v Value) { checkOperandIndex(idx, 0) }
func (b *BranchInstr) IsTerminator() bool          { return true }
func (b *BranchInstr) Accept(vis InstructionVisitor) any { return vis.VisitBranch(b) }

// ---- CondBranch: br cond, trueBlock, falseBlock, void terminator ----

type CondBranchInstr struct {
	InstrBase
	cond                  Value
	trueBlock, falseBlock *Block
}

func newCondBranchInstr(ctx *Context, cond Value, trueBlock, falseBlock *Block) *CondBranchInstr {
	diag.Invariant(cond.Type() == ctx.I1Type(), "CondBranch: condition type %v is not i1", cond.Type())
	c := &CondBranchInstr{trueBlock: trueBlock, falseBlock: falseBlock}
	c.initInstr(c, ctx, ctx.VoidType(), KindCondBranch, true)
	c.replaceOperand(&c.cond, 0, cond)
	return c
}

func (c *CondBranchInstr) Cond() Value         { return c.cond }
func (c *CondBranchInstr) TrueBlock() *Block   { return c.trueBlock }
func (c *CondBranchInstr) FalseBlock() *Block  { return c.falseBlock }
func (c *CondBranchInstr) SetTrueBlock(b *Block)  { c.trueBlock = b }
func (c *CondBranchInstr) SetFalseBlock(b *Block) { c.falseBlock = b }
func (c *CondBranchInstr) Operands() []Value   { return []Value{c.cond} }
func (c *CondBranchInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 1)
	return c.cond
}
func (c *CondBranchInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 1)
	c.replaceOperand(&c.cond, 0, v)
}
func (c *CondBranchInstr) IsTerminator() bool { return true }
func (c *CondBranchInstr) Accept(vis InstructionVisitor) any { return vis.VisitCondBranch(c) }

// ---- Select: cond ? trueVal : falseVal ----

type SelectInstr struct {
	InstrBase
	cond               Value
	trueVal, falseVal  Value
}

func newSelectInstr(ctx *Context, cond, trueVal, falseVal Value) *SelectInstr {
	diag.Invariant(cond.Type() == ctx.I1Type(), "Select: condition type %v is not i1", cond.Type())
	diag.Invariant(trueVal.Type() == falseVal.Type(), "Select: arm type mismatch %v vs %v", trueVal.Type(), falseVal.Type())
	s := &SelectInstr{}
	s.initInstr(s, ctx, trueVal.Type(), KindSelect, false)
	s.replaceOperand(&s.cond, 0, cond)
	s.replaceOperand(&s.trueVal, 1, trueVal)
	s.replaceOperand(&s.falseVal, 2, falseVal)
	return s
}

func (s *SelectInstr) Cond() Value     { return s.cond }
func (s *SelectInstr) TrueVal() Value  { return s.trueVal }
func (s *SelectInstr) FalseVal() Value { return s.falseVal }
func (s *SelectInstr) Operands() []Value {
	return []Value{s.cond, s.trueVal, s.falseVal}
}
func (s *SelectInstr) Operand(idx int) Value {
	checkOperandIndex(idx, 3)
	switch idx {
	case 0:
		return s.cond
	case 1:
		return s.trueVal
	default:
		return s.falseVal
	}
}
func (s *SelectInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, 3)
	switch idx {
	case 0:
		s.replaceOperand(&s.cond, 0, v)
	case 1:
		s.replaceOperand(&s.trueVal, 1, v)
	default:
		s.replaceOperand(&s.falseVal, 2, v)
	}
}
func (s *SelectInstr) Accept(vis InstructionVisitor) any { return vis.VisitSelect(s) }

// ---- Ret: return value?, void terminator ----

type RetInstr struct {
	InstrBase
	value Value // nil iff the function returns void
}

func newRetInstr(ctx *Context, resultType *Type, value Value) *RetInstr {
	if resultType.Kind() == KindVoid {
		diag.Invariant(value == nil, "Ret: void function must not return a value")
	} else {
		diag.Invariant(value != nil, "Ret: non-void function must return a value")
		diag.Invariant(value.Type() == resultType, "Ret: value type %v does not match result type %v", value.Type(), resultType)
	}
	r := &RetInstr{}
	r.initInstr(r, ctx, ctx.VoidType(), KindRet, true)
	if value != nil {
		r.replaceOperand(&r.value, 0, value)
	}
	return r
}

func (r *RetInstr) Value() Value { return r.value }
func (r *RetInstr) Operands() []Value {
	if r.value == nil {
		return nil
	}
	return []Value{r.value}
}
func (r *RetInstr) Operand(idx int) Value {
	checkOperandIndex(idx, len(r.Operands()))
	return r.value
}
func (r *RetInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, len(r.Operands()))
	r.replaceOperand(&r.value, 0, v)
}
func (r *RetInstr) IsTerminator() bool { return true }
func (r *RetInstr) Accept(vis InstructionVisitor) any { return vis.VisitRet(r) }

// ---- Phi: merges SSA definitions at block entry ----

// PhiIncoming pairs a predecessor Block with the Value the phi takes when
// control arrives from that predecessor.
type PhiIncoming struct {
	Block *Block
	Value Value
}

type PhiInstr struct {
	InstrBase
	incomings []PhiIncoming
}

func newPhiInstr(ctx *Context, typ *Type) *PhiInstr {
	p := &PhiInstr{}
	p.initInstr(p, ctx, typ, KindPhi, false)
	return p
}

// AddIncoming appends a new (predecessor, value) pair. The predecessor must
// not already have an incoming entry (spec invariant 4: predecessor blocks
// are distinct) and value must share the phi's type.
func (p *PhiInstr) AddIncoming(pred *Block, value Value) {
	diag.Invariant(value.Type() == p.Type(), "Phi: incoming value type %v does not match phi type %v", value.Type(), p.Type())
	for _, in := range p.incomings {
		diag.Invariant(in.Block != pred, "Phi: duplicate incoming for predecessor block %q", pred.Label())
	}
	idx := len(p.incomings)
	p.incomings = append(p.incomings, PhiIncoming{Block: pred})
	p.replaceOperand(&p.incomings[idx].Value, idx, value)
}

// Incomings returns the phi's (predecessor, value) pairs in insertion order.
func (p *PhiInstr) Incomings() []PhiIncoming {
	return append([]PhiIncoming(nil), p.incomings...)
}

// IncomingForBlock returns the value the phi takes for pred, if pred has an
// entry.
func (p *PhiInstr) IncomingForBlock(pred *Block) (Value, bool) {
	for _, in := range p.incomings {
		if in.Block == pred {
			return in.Value, true
		}
	}
	return nil, false
}

func (p *PhiInstr) Operands() []Value {
	out := make([]Value, len(p.incomings))
	for i, in := range p.incomings {
		out[i] = in.Value
	}
	return out
}
func (p *PhiInstr) Operand(idx int) Value {
	checkOperandIndex(idx, len(p.incomings))
	return p.incomings[idx].Value
}
func (p *PhiInstr) SetOperand(idx int, v Value) {
	checkOperandIndex(idx, len(p.incomings))
	p.replaceOperand(&p.incomings[idx].Value, idx, v)
}
func (p *PhiInstr) Accept(vis InstructionVisitor) any { return vis.VisitPhi(p) }
