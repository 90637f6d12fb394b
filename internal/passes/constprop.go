package passes

import (
	"midend/internal/ir"
)

// ConstantPropagation folds every instruction whose result is fully
// determined by constant operands, replaces its uses with the folded
// constant (or, for CondBranch/Select, the selected arm/target), and
// destroys the original instruction. Arithmetic wraps modulo 2^n exactly as
// the declared bit width dictates; division or modulus by zero is simply
// left unfolded rather than aborting the pass.
type ConstantPropagation struct{}

func (ConstantPropagation) Name() string { return "constprop" }

func (cp ConstantPropagation) Run(fn *ir.Function) bool {
	if fn.IsExtern() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks() {
		ir.ForEachInstrSafe(b, func(instr ir.Instruction) {
			if foldInstruction(instr) {
				changed = true
			}
		})
	}
	return changed
}

// foldInstruction attempts to fold a single instruction, returning true if
// it rewrote the graph.
func foldInstruction(instr ir.Instruction) bool {
	switch in := instr.(type) {
	case *ir.UnaryInstr:
		return foldUnary(in)
	case *ir.BinaryInstr:
		return foldBinary(in)
	case *ir.IntCompareInstr:
		return foldIntCompare(in)
	case *ir.CastInstr:
		return foldCast(in)
	case *ir.CondBranchInstr:
		return foldCondBranch(in)
	case *ir.SelectInstr:
		return foldSelect(in)
	default:
		return false
	}
}

func asConstant(v ir.Value) (*ir.Constant, bool) {
	c, ok := v.(*ir.Constant)
	return c, ok
}

func replaceWithConst(instr ir.Instruction, c *ir.Constant) {
	instr.ReplaceUsesWith(c)
	instr.Destroy()
}

func foldUnary(in *ir.UnaryInstr) bool {
	c, ok := asConstant(in.V())
	if !ok {
		return false
	}
	t := in.Type()
	var result uint64
	switch in.Op() {
	case ir.OpNeg:
		result = (^c.Bits() + 1) & t.Mask()
	case ir.OpNot:
		result = (^c.Bits()) & t.Mask()
	}
	ctx := contextOf(in)
	replaceWithConst(in, ctx.IntConst(t, result))
	return true
}

func foldBinary(in *ir.BinaryInstr) bool {
	lc, lok := asConstant(in.Lhs())
	rc, rok := asConstant(in.Rhs())
	if !lok || !rok {
		return false
	}
	t := in.Type()
	ctx := contextOf(in)

	switch in.Op() {
	case ir.OpDivU, ir.OpModU:
		if rc.Bits() == 0 {
			return false
		}
	case ir.OpDivS, ir.OpModS:
		if rc.Bits() == 0 {
			return false
		}
	}

	result := evalBinary(in.Op(), lc, rc, t)
	replaceWithConst(in, ctx.IntConst(t, result))
	return true
}

// isMinSigned reports whether l is the minimum signed value representable
// in a width whose full bit mask is mask (i.e. only its sign bit is set).
func isMinSigned(l, mask uint64) bool {
	if mask == ^uint64(0) {
		return l == uint64(1)<<63
	}
	return l == (mask>>1)+1
}

func evalBinary(op ir.BinaryOp, lc, rc *ir.Constant, t *ir.Type) uint64 {
	mask := t.Mask()
	l, r := lc.Bits(), rc.Bits()
	ls, rs := lc.SignedBits(), rc.SignedBits()
	switch op {
	case ir.OpAdd:
		return (l + r) & mask
	case ir.OpSub:
		return (l - r) & mask
	case ir.OpMul:
		return (l * r) & mask
	case ir.OpDivU:
		return (l / r) & mask
	case ir.OpModU:
		return (l % r) & mask
	case ir.OpDivS:
		if rs == -1 && isMinSigned(l, mask) {
			return l & mask // MinInt/-1 wraps to itself in two's complement
		}
		return uint64(ls/rs) & mask
	case ir.OpModS:
		if rs == -1 && isMinSigned(l, mask) {
			return 0
		}
		return uint64(ls%rs) & mask
	case ir.OpShl:
		return (l << (r & 63)) & mask
	case ir.OpShr:
		return (l >> (r & 63)) & mask
	case ir.OpSar:
		return uint64(ls>>(r&63)) & mask
	case ir.OpAnd:
		return l & r & mask
	case ir.OpOr:
		return (l | r) & mask
	case ir.OpXor:
		return (l ^ r) & mask
	default:
		return 0
	}
}

func foldIntCompare(in *ir.IntCompareInstr) bool {
	lc, lok := asConstant(in.Lhs())
	rc, rok := asConstant(in.Rhs())
	if !lok || !rok {
		return false
	}
	var result bool
	l, r := lc.Bits(), rc.Bits()
	ls, rs := lc.SignedBits(), rc.SignedBits()
	switch in.Pred() {
	case ir.PredEq:
		result = l == r
	case ir.PredNe:
		result = l != r
	case ir.PredGtU:
		result = l > r
	case ir.PredGteU:
		result = l >= r
	case ir.PredLtU:
		result = l < r
	case ir.PredLteU:
		result = l <= r
	case ir.PredGtS:
		result = ls > rs
	case ir.PredGteS:
		result = ls >= rs
	case ir.PredLtS:
		result = ls < rs
	case ir.PredLteS:
		result = ls <= rs
	}
	ctx := contextOf(in)
	bit := uint64(0)
	if result {
		bit = 1
	}
	replaceWithConst(in, ctx.IntConst(ctx.I1Type(), bit))
	return true
}

// foldCast applies the cast-semantics table verbatim: bitcast/truncate/
// zero-extend mask to the target width; sign-extend propagates the source
// top bit upward before masking.
func foldCast(in *ir.CastInstr) bool {
	c, ok := asConstant(in.V())
	if !ok {
		return false
	}
	toType := in.Type()
	ctx := contextOf(in)
	var result uint64
	switch in.CastKind() {
	case ir.CastBitcast, ir.CastTruncate, ir.CastZeroExtend:
		result = c.Bits() & toType.Mask()
	case ir.CastSignExtend:
		fromBits := c.Type().BitSize()
		if fromBits == 0 || fromBits >= 64 {
			result = c.Bits() & toType.Mask()
		} else {
			signBit := uint64(1) << uint(fromBits-1)
			if c.Bits()&signBit != 0 {
				result = (c.Bits() | ^((uint64(1) << uint(fromBits)) - 1)) & toType.Mask()
			} else {
				result = c.Bits() & toType.Mask()
			}
		}
	}
	replaceWithConst(in, ctx.IntConst(toType, result))
	return true
}

func foldCondBranch(in *ir.CondBranchInstr) bool {
	c, ok := asConstant(in.Cond())
	if !ok {
		return false
	}
	target := in.FalseBlock()
	if c.Bits() != 0 {
		target = in.TrueBlock()
	}
	ir.NewInserterBefore(in).EmitBranch(target)
	in.Destroy()
	return true
}

func foldSelect(in *ir.SelectInstr) bool {
	c, ok := asConstant(in.Cond())
	if !ok {
		return false
	}
	arm := in.FalseVal()
	if c.Bits() != 0 {
		arm = in.TrueVal()
	}
	in.ReplaceUsesWith(arm)
	in.Destroy()
	return true
}

func contextOf(instr ir.Instruction) *ir.Context {
	return instr.Block().Function().Module().Context()
}
