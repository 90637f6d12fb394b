package fixture

import (
	"strconv"
	"strings"

	"midend/internal/diag"
	"midend/internal/ir"
)

var binaryOps = map[string]ir.BinaryOp{
	"add": ir.OpAdd, "sub": ir.OpSub, "mul": ir.OpMul,
	"mods": ir.OpModS, "divs": ir.OpDivS, "modu": ir.OpModU, "divu": ir.OpDivU,
	"shr": ir.OpShr, "shl": ir.OpShl, "sar": ir.OpSar,
	"and": ir.OpAnd, "or": ir.OpOr, "xor": ir.OpXor,
}

var unaryOps = map[string]ir.UnaryOp{
	"neg": ir.OpNeg, "not": ir.OpNot,
}

var comparePreds = map[string]ir.ComparePred{
	"eq": ir.PredEq, "ne": ir.PredNe,
	"gtu": ir.PredGtU, "gteu": ir.PredGteU, "gts": ir.PredGtS, "gtes": ir.PredGteS,
	"ltu": ir.PredLtU, "lteu": ir.PredLteU, "lts": ir.PredLtS, "ltes": ir.PredLteS,
}

var castKinds = map[string]ir.CastKind{
	"zext": ir.CastZeroExtend, "sext": ir.CastSignExtend, "trunc": ir.CastTruncate, "bitcast": ir.CastBitcast,
}

func typeFromName(ctx *ir.Context, name string) *ir.Type {
	switch name {
	case "i1":
		return ctx.I1Type()
	case "i8":
		return ctx.I8Type()
	case "i16":
		return ctx.I16Type()
	case "i32":
		return ctx.I32Type()
	case "i64":
		return ctx.I64Type()
	case "ptr":
		return ctx.PointerTo(ctx.I8Type())
	default:
		diag.Invariant(false, "fixture: unknown type name %q", name)
		return nil
	}
}

func parseIntLiteral(s string) uint64 {
	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		diag.Invariant(err == nil, "fixture: bad hex literal %q", s)
		return v
	}
	v, err := strconv.ParseInt(s, 10, 64)
	diag.Invariant(err == nil, "fixture: bad integer literal %q", s)
	return uint64(v)
}

// pendingPhi records a phi whose incoming edges must be wired once every
// block in the function has been fully built, since an incoming value may
// be produced by a block that appears later in the source text.
type pendingPhi struct {
	phi       *ir.PhiInstr
	incomings []*PhiIncoming
}

type builder struct {
	ctx    *ir.Context
	fn     *ir.Function
	module *ir.Module

	blocks map[string]*ir.Block
	regs   map[string]ir.Value
	params map[string]*ir.Parameter

	pending []pendingPhi
}

// Build parses src and materializes its last declared function as a real
// ir.Function. Helper functions declared earlier in src are created first
// (by name, so "call" instructions in later functions can resolve them) and
// remain reachable through fn.Module().Lookup.
func Build(ctx *ir.Context, src string) *ir.Function {
	program := parse(src)
	diag.Invariant(len(program.Functions) > 0, "fixture.Build: source declares no function")

	m := ctx.NewModule("fixture")
	var last *ir.Function
	for _, decl := range program.Functions {
		last = buildFunction(ctx, m, decl)
	}
	return last
}

func buildFunction(ctx *ir.Context, m *ir.Module, decl *FunctionDecl) *ir.Function {
	paramNames := make([]string, len(decl.Params))
	paramTypes := make([]*ir.Type, len(decl.Params))
	for i, p := range decl.Params {
		paramNames[i] = p.Name
		paramTypes[i] = typeFromName(ctx, p.Type)
	}
	resultType := typeFromName(ctx, decl.Result)

	var fn *ir.Function
	if decl.Extern || len(decl.Blocks) == 0 {
		fn = m.NewExternFunction(decl.Name, resultType, paramNames, paramTypes)
		return fn
	}
	fn = m.NewFunction(decl.Name, resultType, paramNames, paramTypes)

	b := &builder{
		ctx:    ctx,
		fn:     fn,
		module: m,
		blocks: map[string]*ir.Block{},
		regs:   map[string]ir.Value{},
		params: map[string]*ir.Parameter{},
	}
	for _, p := range fn.Params() {
		b.params[p.Name()] = p
	}

	for _, blockDecl := range decl.Blocks {
		b.blocks[blockDecl.Label] = fn.NewBlock(blockDecl.Label)
	}

	for _, blockDecl := range decl.Blocks {
		block := b.blocks[blockDecl.Label]
		ins := ir.NewInserterAtBack(block)
		for _, instr := range blockDecl.Instrs {
			b.emit(ins, instr)
		}
	}

	for _, p := range b.pending {
		for _, inc := range p.incomings {
			target, ok := b.blocks[inc.Block]
			diag.Invariant(ok, "fixture: phi incoming references unknown block %q", inc.Block)
			val := b.resolve(inc.Value, p.phi.Type())
			p.phi.AddIncoming(target, val)
		}
	}

	return fn
}

// tryResolveTyped resolves op only if its type is already known without a
// hint (a register or a parameter); returns nil for an integer literal,
// whose type must be inferred from a sibling operand.
func (b *builder) tryResolveTyped(op *Operand) ir.Value {
	switch {
	case op.Reg != nil:
		v, ok := b.regs[*op.Reg]
		diag.Invariant(ok, "fixture: undefined register %%%s", *op.Reg)
		return v
	case op.Name != nil:
		p, ok := b.params[*op.Name]
		diag.Invariant(ok, "fixture: undefined name %q", *op.Name)
		return p
	default:
		return nil
	}
}

func (b *builder) resolve(op *Operand, hint *ir.Type) ir.Value {
	if v := b.tryResolveTyped(op); v != nil {
		return v
	}
	diag.Invariant(op.Int != nil, "fixture: operand has no alternative set")
	diag.Invariant(hint != nil, "fixture: integer literal %q needs a typed sibling operand to infer its width", *op.Int)
	return b.ctx.IntConst(hint, parseIntLiteral(*op.Int))
}

// resolvePair resolves two operands of a binary-shaped instruction,
// inferring a literal's type from whichever side is already typed.
func (b *builder) resolvePair(lhs, rhs *Operand) (ir.Value, ir.Value) {
	lv := b.tryResolveTyped(lhs)
	rv := b.tryResolveTyped(rhs)
	switch {
	case lv != nil:
		return lv, b.resolve(rhs, lv.Type())
	case rv != nil:
		return b.resolve(lhs, rv.Type()), rv
	default:
		diag.Invariant(false, "fixture: binary-shaped instruction needs at least one non-literal operand")
		return nil, nil
	}
}

func (b *builder) setDest(dest *string, v ir.Value) {
	if dest != nil {
		b.regs[*dest] = v
	}
}

func (b *builder) emit(ins *ir.Inserter, instr *InstrDecl) {
	switch {
	case instr.Phi != nil:
		p := instr.Phi
		typ := typeFromName(b.ctx, p.Type)
		phi := ins.EmitPhi(typ)
		b.setDest(instr.Dest, phi)
		b.pending = append(b.pending, pendingPhi{phi: phi, incomings: p.Incomings})

	case instr.Binary != nil:
		op := instr.Binary
		lv, rv := b.resolvePair(op.Lhs, op.Rhs)
		kind, ok := binaryOps[op.Operator]
		diag.Invariant(ok, "fixture: unknown binary operator %q", op.Operator)
		b.setDest(instr.Dest, ins.EmitBinary(lv, kind, rv))

	case instr.Unary != nil:
		op := instr.Unary
		v := b.tryResolveTyped(op.V)
		diag.Invariant(v != nil, "fixture: unary operand must be a register or parameter")
		kind, ok := unaryOps[op.Operator]
		diag.Invariant(ok, "fixture: unknown unary operator %q", op.Operator)
		b.setDest(instr.Dest, ins.EmitUnary(kind, v))

	case instr.Compare != nil:
		op := instr.Compare
		lv, rv := b.resolvePair(op.Lhs, op.Rhs)
		pred, ok := comparePreds[op.Pred]
		diag.Invariant(ok, "fixture: unknown compare predicate %q", op.Pred)
		b.setDest(instr.Dest, ins.EmitIntCompare(lv, pred, rv))

	case instr.Cast != nil:
		op := instr.Cast
		v := b.tryResolveTyped(op.V)
		diag.Invariant(v != nil, "fixture: cast operand must be a register or parameter")
		kind, ok := castKinds[op.Kind]
		diag.Invariant(ok, "fixture: unknown cast kind %q", op.Kind)
		toType := typeFromName(b.ctx, op.Type)
		b.setDest(instr.Dest, ins.EmitCast(kind, v, toType))

	case instr.Load != nil:
		op := instr.Load
		ptr := b.tryResolveTyped(op.Ptr)
		diag.Invariant(ptr != nil, "fixture: load pointer must be a register or parameter")
		b.setDest(instr.Dest, ins.EmitLoad(ptr))

	case instr.Store != nil:
		op := instr.Store
		ptr := b.tryResolveTyped(op.Ptr)
		diag.Invariant(ptr != nil, "fixture: store pointer must be a register or parameter")
		val := b.resolve(op.Val, ptr.Type().Elem())
		ins.EmitStore(ptr, val)

	case instr.Alloc != nil:
		op := instr.Alloc
		elemType := typeFromName(b.ctx, op.Type)
		count := b.resolve(op.Count, b.ctx.I64Type())
		b.setDest(instr.Dest, ins.EmitStackAlloc(elemType, count))

	case instr.Offset != nil:
		op := instr.Offset
		base := b.tryResolveTyped(op.Base)
		diag.Invariant(base != nil, "fixture: offset base must be a register or parameter")
		index := b.resolve(op.Index, b.ctx.I64Type())
		b.setDest(instr.Dest, ins.EmitOffset(base, index))

	case instr.Call != nil:
		op := instr.Call
		callee, ok := b.module.Lookup(op.Callee)
		diag.Invariant(ok, "fixture: call references unknown function %q", op.Callee)
		args := make([]ir.Value, len(op.Args))
		for i, a := range op.Args {
			args[i] = b.resolve(a, b.ctx.I64Type())
		}
		b.setDest(instr.Dest, ins.EmitCall(callee, args))

	case instr.Branch != nil:
		target, ok := b.blocks[instr.Branch.Target]
		diag.Invariant(ok, "fixture: br references unknown block %q", instr.Branch.Target)
		ins.EmitBranch(target)

	case instr.CondBranch != nil:
		op := instr.CondBranch
		cond := b.tryResolveTyped(op.Cond)
		diag.Invariant(cond != nil, "fixture: condbr condition must be a register or parameter")
		trueBlock, ok := b.blocks[op.TrueBlock]
		diag.Invariant(ok, "fixture: condbr references unknown block %q", op.TrueBlock)
		falseBlock, ok := b.blocks[op.FalseBlock]
		diag.Invariant(ok, "fixture: condbr references unknown block %q", op.FalseBlock)
		ins.EmitCondBranch(cond, trueBlock, falseBlock)

	case instr.Select != nil:
		op := instr.Select
		cond := b.tryResolveTyped(op.Cond)
		diag.Invariant(cond != nil, "fixture: select condition must be a register or parameter")
		tv, fv := b.resolvePair(op.TrueVal, op.FalseVal)
		b.setDest(instr.Dest, ins.EmitSelect(cond, tv, fv))

	case instr.Ret != nil:
		op := instr.Ret
		var v ir.Value
		if op.Value != nil {
			v = b.resolve(op.Value, b.fn.ResultType())
		}
		ins.EmitRet(b.fn.ResultType(), v)

	default:
		diag.Unreachable("fixture: instruction has no recognized form")
	}
}
