package passes

import (
	"midend/internal/ir"
	"midend/internal/match"
)

// InstructionSimplification performs the algebraic rewrites of spec
// §4.6.3: identity/annihilator simplifications on BinaryInstr, the
// cmp/select/cmp collapse, and same-value phi simplification. Whenever a
// rewrite produces a new instruction, that instruction is immediately
// offered back to the simplifier (bounded re-visit) before continuing the
// block walk, since a single rewrite often unlocks another.
type InstructionSimplification struct{}

func (InstructionSimplification) Name() string { return "simplify" }

func (is InstructionSimplification) Run(fn *ir.Function) bool {
	if fn.IsExtern() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks() {
		ir.ForEachInstrSafe(b, func(instr ir.Instruction) {
			if simplifyRecursively(instr, 0) {
				changed = true
			}
		})
	}
	return changed
}

const maxRevisitDepth = 8

// simplifyRecursively attempts to simplify instr, and if the rewrite
// produced a fresh instruction in its place, attempts to simplify that one
// too, up to a bounded depth (a cheap guard against a pathological rewrite
// loop; real pipelines re-converge in one or two hops).
func simplifyRecursively(instr ir.Instruction, depth int) bool {
	if depth > maxRevisitDepth {
		return false
	}
	next, ok := simplifyOnce(instr)
	if !ok {
		return false
	}
	if next != nil {
		simplifyRecursively(next, depth+1)
	}
	return true
}

// simplifyOnce tries every applicable rewrite against instr. On success it
// returns (replacement, true); replacement is nil when the instruction was
// merely destroyed in favor of an existing value with no newly created
// instruction to re-visit.
func simplifyOnce(instr ir.Instruction) (ir.Instruction, bool) {
	switch in := instr.(type) {
	case *ir.BinaryInstr:
		return simplifyBinary(in)
	case *ir.IntCompareInstr:
		return simplifyCmpSelectCmp(in)
	case *ir.PhiInstr:
		return simplifyPhi(in)
	default:
		return nil, false
	}
}

func simplifyBinary(in *ir.BinaryInstr) (ir.Instruction, bool) {
	ctx := contextOf(in)
	lhs, rhs := in.Lhs(), in.Rhs()

	switch in.Op() {
	case ir.OpSub:
		// sub X, X -> 0
		if lhs == rhs {
			replaceWithConst(in, ctx.ZeroConst(in.Type()))
			return nil, true
		}
	case ir.OpAdd:
		// add X, 0 -> X (either operand order)
		var x ir.Value
		if match.Binary(match.Value(&x), ir.OpAdd, match.Zero())(in) {
			in.ReplaceUsesWith(x)
			in.Destroy()
			return nil, true
		}
	case ir.OpMul:
		var x ir.Value
		if match.Binary(match.Value(&x), ir.OpMul, match.Zero())(in) {
			// mul X, 0 -> 0
			replaceWithConst(in, ctx.ZeroConst(in.Type()))
			return nil, true
		}
		if match.Binary(match.Value(&x), ir.OpMul, match.One())(in) {
			// mul X, 1 -> X
			in.ReplaceUsesWith(x)
			in.Destroy()
			return nil, true
		}
		if shift, ok := mulPowerOfTwoShift(lhs, rhs); ok {
			newInstr := ir.NewInserterBefore(in).EmitBinary(shift.base, ir.OpShl, ctx.IntConst(in.Type(), uint64(shift.k)))
			in.ReplaceUsesAndDestroy(newInstr)
			return newInstr, true
		}
	}
	return nil, false
}

type shlRewrite struct {
	base ir.Value
	k    int
}

// mulPowerOfTwoShift recognizes mul X, 2^k (k >= 2, either operand order)
// and returns the non-constant operand plus the shift amount.
func mulPowerOfTwoShift(lhs, rhs ir.Value) (shlRewrite, bool) {
	tryOrder := func(x, c ir.Value) (shlRewrite, bool) {
		cst, ok := c.(*ir.Constant)
		if !ok {
			return shlRewrite{}, false
		}
		k, ok := log2Exact(cst.Bits())
		if !ok || k < 2 {
			return shlRewrite{}, false
		}
		return shlRewrite{base: x, k: k}, true
	}
	if r, ok := tryOrder(lhs, rhs); ok {
		return r, true
	}
	return tryOrder(rhs, lhs)
}

// log2Exact reports (log2(n), true) iff n is a power of two.
func log2Exact(n uint64) (int, bool) {
	if n == 0 || n&(n-1) != 0 {
		return 0, false
	}
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k, true
}

// simplifyCmpSelectCmp implements the cmp/select/cmp collapse: a cmp
// comparing a select's result against one of the select's own constant
// arms, using Eq or Ne, is replaced by the select's condition (inverted
// when exactly one of these holds: the matched arm is the false-arm, the
// predicate is Ne).
func simplifyCmpSelectCmp(outer *ir.IntCompareInstr) (ir.Instruction, bool) {
	if outer.Pred() != ir.PredEq && outer.Pred() != ir.PredNe {
		return nil, false
	}

	var sel *ir.SelectInstr
	var armConst ir.Value
	lhsSel, lhsOk := outer.Lhs().(*ir.SelectInstr)
	rhsSel, rhsOk := outer.Rhs().(*ir.SelectInstr)
	switch {
	case lhsOk:
		sel, armConst = lhsSel, outer.Rhs()
	case rhsOk:
		sel, armConst = rhsSel, outer.Lhs()
	default:
		return nil, false
	}

	trueC, trueOk := sel.TrueVal().(*ir.Constant)
	falseC, falseOk := sel.FalseVal().(*ir.Constant)
	if !trueOk || !falseOk || trueC == falseC {
		return nil, false
	}
	matchedC, ok := armConst.(*ir.Constant)
	if !ok {
		return nil, false
	}

	var matchedIsTrueArm bool
	switch matchedC {
	case trueC:
		matchedIsTrueArm = true
	case falseC:
		matchedIsTrueArm = false
	default:
		return nil, false
	}

	// outer is `select == matchedArm` or `select != matchedArm`. The value
	// of that comparison, in terms of sel.Cond(), is:
	//   Eq, matched true arm  -> cond
	//   Eq, matched false arm -> !cond
	//   Ne, matched true arm  -> !cond
	//   Ne, matched false arm -> cond
	wantDirect := (outer.Pred() == ir.PredEq) == matchedIsTrueArm

	cond := sel.Cond()
	var replacement ir.Value
	var newInner ir.Instruction
	inner, innerIsCmp := cond.(*ir.IntCompareInstr)
	switch {
	case wantDirect:
		replacement = cond
	case innerIsCmp:
		newCmp := ir.NewInserterBefore(outer).EmitIntCompare(inner.Lhs(), inner.Pred().Inverted(), inner.Rhs())
		replacement = newCmp
		newInner = newCmp
	default:
		// The inverted case only has a rewrite when the select's condition
		// is itself an IntCompare whose predicate can be inverted; matching
		// the original, there is no fallback for other condition shapes.
		return nil, false
	}

	outer.ReplaceUsesWith(replacement)
	outer.Destroy()
	sel.DestroyIfUnused()
	if innerCmp, ok := cond.(*ir.IntCompareInstr); ok {
		innerCmp.DestroyIfUnused()
	}
	return newInner, true
}

// simplifyPhi replaces a phi whose incoming values are all syntactically
// equal (ignoring incomings that refer back to the phi itself) with that
// shared value.
func simplifyPhi(p *ir.PhiInstr) (ir.Instruction, bool) {
	var unique ir.Value
	for _, in := range p.Incomings() {
		if in.Value == ir.Value(p) {
			continue
		}
		if unique == nil {
			unique = in.Value
			continue
		}
		if unique != in.Value {
			return nil, false
		}
	}
	if unique == nil {
		return nil, false
	}
	p.ReplaceUsesWith(unique)
	p.Destroy()
	return nil, true
}
