package passes

import "midend/internal/ir"

// ConditionalCommonOpExtraction implements §4.6.5: when every input of a
// Phi or Select is the result of the same operation shape (the same
// UnaryOp, or the same BinaryOp against the same RHS constant/value),
// perform the operation once after the join instead of once per arm.
//   phi[op(x_i, c) for i]           -> op(phi[x_i], c)
//   cond ? op(a, c) : op(b, c)      -> op(cond ? a : b, c)
type ConditionalCommonOpExtraction struct{}

func (ConditionalCommonOpExtraction) Name() string { return "commonop" }

func (ce ConditionalCommonOpExtraction) Run(fn *ir.Function) bool {
	if fn.IsExtern() {
		return false
	}
	changed := false
	for _, b := range fn.Blocks() {
		ir.ForEachInstrSafe(b, func(instr ir.Instruction) {
			switch in := instr.(type) {
			case *ir.PhiInstr:
				if liftPhiCommonOp(in) {
					changed = true
				}
			case *ir.SelectInstr:
				if liftSelectCommonOp(in) {
					changed = true
				}
			}
		})
	}
	return changed
}

// commonShape describes the operation shared by every arm of a phi/select,
// once recognized: either a UnaryOp over a single varying operand, or a
// BinaryOp over a varying lhs and a shared rhs.
type commonShape struct {
	unary    *ir.UnaryOp
	binary   *ir.BinaryOp
	sharedRhs ir.Value // only set for the binary shape
}

func unaryShapeOf(v ir.Value) (ir.Value, commonShape, bool) {
	u, ok := v.(*ir.UnaryInstr)
	if !ok {
		return nil, commonShape{}, false
	}
	op := u.Op()
	return u.V(), commonShape{unary: &op}, true
}

func binaryShapeOf(v ir.Value) (ir.Value, commonShape, bool) {
	b, ok := v.(*ir.BinaryInstr)
	if !ok {
		return nil, commonShape{}, false
	}
	op := b.Op()
	return b.Lhs(), commonShape{binary: &op, sharedRhs: b.Rhs()}, true
}

func sameShape(a, b commonShape) bool {
	switch {
	case a.unary != nil && b.unary != nil:
		return *a.unary == *b.unary
	case a.binary != nil && b.binary != nil:
		return *a.binary == *b.binary && a.sharedRhs == b.sharedRhs
	default:
		return false
	}
}

func liftPhiCommonOp(p *ir.PhiInstr) bool {
	incomings := p.Incomings()
	if len(incomings) < 2 {
		return false
	}

	varying := make([]ir.Value, len(incomings))
	var shape commonShape
	for i, in := range incomings {
		x, s, ok := unaryShapeOf(in.Value)
		if !ok {
			x, s, ok = binaryShapeOf(in.Value)
		}
		if !ok {
			return false
		}
		if i == 0 {
			shape = s
		} else if !sameShape(shape, s) {
			return false
		}
		varying[i] = x
	}

	newPhi := ir.NewInserterAtFront(p.Block()).EmitPhi(varying[0].Type())
	for i, in := range incomings {
		newPhi.AddIncoming(in.Block, varying[i])
	}

	var lifted ir.Instruction
	ins := ir.NewInserterAfter(newPhi)
	if shape.unary != nil {
		lifted = ins.EmitUnary(*shape.unary, newPhi)
	} else {
		lifted = ins.EmitBinary(newPhi, *shape.binary, shape.sharedRhs)
	}

	oldArms := make([]ir.Instruction, 0, len(incomings))
	for _, in := range incomings {
		if instr, ok := in.Value.(ir.Instruction); ok {
			oldArms = append(oldArms, instr)
		}
	}
	p.ReplaceUsesWith(lifted)
	p.Destroy()
	for _, arm := range oldArms {
		arm.DestroyIfUnused()
	}
	return true
}

func liftSelectCommonOp(s *ir.SelectInstr) bool {
	trueX, trueShape, trueOk := unaryShapeOf(s.TrueVal())
	if !trueOk {
		trueX, trueShape, trueOk = binaryShapeOf(s.TrueVal())
	}
	falseX, falseShape, falseOk := unaryShapeOf(s.FalseVal())
	if !falseOk {
		falseX, falseShape, falseOk = binaryShapeOf(s.FalseVal())
	}
	if !trueOk || !falseOk || !sameShape(trueShape, falseShape) {
		return false
	}

	trueArm, trueIsInstr := s.TrueVal().(ir.Instruction)
	falseArm, falseIsInstr := s.FalseVal().(ir.Instruction)

	newSelect := ir.NewInserterBefore(s).EmitSelect(s.Cond(), trueX, falseX)

	var lifted ir.Instruction
	ins := ir.NewInserterAfter(newSelect)
	if trueShape.unary != nil {
		lifted = ins.EmitUnary(*trueShape.unary, newSelect)
	} else {
		lifted = ins.EmitBinary(newSelect, *trueShape.binary, trueShape.sharedRhs)
	}

	s.ReplaceUsesWith(lifted)
	s.Destroy()
	if trueIsInstr {
		trueArm.DestroyIfUnused()
	}
	if falseIsInstr {
		falseArm.DestroyIfUnused()
	}
	return true
}
