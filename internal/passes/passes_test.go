package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"midend/internal/ir"
	"midend/internal/passes"
)

func TestConstantPropagationFoldsWithWrap(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i8 := ctx.I8Type()
	fn := m.NewFunction("f", i8, nil, nil)
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)
	lhs := ctx.IntConst(i8, 200)
	rhs := ctx.IntConst(i8, 100)
	add := ins.EmitBinary(lhs, ir.OpAdd, rhs)
	ins.EmitRet(i8, add)

	changed := passes.ConstantPropagation{}.Run(fn)
	require.True(t, changed)

	ret := fn.Entry().Last().(*ir.RetInstr)
	c, ok := ret.Value().(*ir.Constant)
	require.True(t, ok)
	require.Equal(t, uint64(44), c.Bits()) // 200+100 = 300, mod 256 = 44
}

func TestSimplifyMulPowerOfTwoBecomesShift(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("f", i32, []string{"x"}, []*ir.Type{i32})
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)
	eight := ctx.IntConst(i32, 8)
	mul := ins.EmitBinary(fn.Param(0), ir.OpMul, eight)
	ins.EmitRet(i32, mul)

	changed := passes.InstructionSimplification{}.Run(fn)
	require.True(t, changed)

	ret := fn.Entry().Last().(*ir.RetInstr)
	shl, ok := ret.Value().(*ir.BinaryInstr)
	require.True(t, ok)
	require.Equal(t, ir.OpShl, shl.Op())
	require.Equal(t, ir.Value(fn.Param(0)), shl.Lhs())
	shiftAmount, ok := shl.Rhs().(*ir.Constant)
	require.True(t, ok)
	require.Equal(t, uint64(3), shiftAmount.Bits())
}

func TestSimplifyAddZeroIsIdentity(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("f", i32, []string{"x"}, []*ir.Type{i32})
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)
	add := ins.EmitBinary(fn.Param(0), ir.OpAdd, ctx.ZeroConst(i32))
	ins.EmitRet(i32, add)

	changed := passes.InstructionSimplification{}.Run(fn)
	require.True(t, changed)

	ret := fn.Entry().Last().(*ir.RetInstr)
	require.Equal(t, ir.Value(fn.Param(0)), ret.Value())
}

// TestCmpSelectCmpCollapsesToInnerCondition builds:
//   inner = icmp eq x, y
//   sel   = select inner, 1, 0
//   outer = icmp eq sel, 1
// which should collapse outer directly to inner.
func TestCmpSelectCmpCollapsesToInnerCondition(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("f", i32, []string{"x", "y"}, []*ir.Type{i32, i32})
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)

	inner := ins.EmitIntCompare(fn.Param(0), ir.PredEq, fn.Param(1))
	one := ctx.IntConst(i32, 1)
	zero := ctx.IntConst(i32, 0)
	sel := ins.EmitSelect(inner, one, zero)
	outer := ins.EmitIntCompare(sel, ir.PredEq, one)
	cast := ins.EmitCast(ir.CastZeroExtend, outer, i32)
	ins.EmitRet(i32, cast)

	changed := passes.InstructionSimplification{}.Run(fn)
	require.True(t, changed)

	castResult := fn.Entry().Last().(*ir.RetInstr).Value().(*ir.CastInstr)
	require.Equal(t, ir.Value(inner), castResult.V())
}

func TestPhiLiftInDiamond(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("f", i32, []string{"a", "b", "cond"}, []*ir.Type{i32, i32, ctx.I1Type()})
	entry := fn.NewBlock("entry")
	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	joinB := fn.NewBlock("join")

	ir.NewInserterAtBack(entry).EmitCondBranch(fn.Param(2), thenB, elseB)

	five := ctx.IntConst(i32, 5)
	thenVal := ir.NewInserterAtBack(thenB).EmitBinary(fn.Param(0), ir.OpAdd, five)
	ir.NewInserterAtBack(thenB).EmitBranch(joinB)

	elseVal := ir.NewInserterAtBack(elseB).EmitBinary(fn.Param(1), ir.OpAdd, five)
	ir.NewInserterAtBack(elseB).EmitBranch(joinB)

	phi := ir.NewInserterAtFront(joinB).EmitPhi(i32)
	phi.AddIncoming(thenB, thenVal)
	phi.AddIncoming(elseB, elseVal)
	ir.NewInserterAtBack(joinB).EmitRet(i32, phi)

	changed := passes.ConditionalCommonOpExtraction{}.Run(fn)
	require.True(t, changed)

	ret := joinB.Last().(*ir.RetInstr)
	lifted, ok := ret.Value().(*ir.BinaryInstr)
	require.True(t, ok)
	require.Equal(t, ir.OpAdd, lifted.Op())
	require.Equal(t, ir.Value(five), lifted.Rhs())

	newPhi, ok := lifted.Lhs().(*ir.PhiInstr)
	require.True(t, ok)
	require.Len(t, newPhi.Incomings(), 2)
}

func TestDeadCodeEliminationRemovesUnusedAdd(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("g", i32, []string{"x"}, []*ir.Type{i32})
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)
	unused := ins.EmitBinary(fn.Param(0), ir.OpAdd, ctx.IntConst(i32, 1))
	ins.EmitRet(i32, fn.Param(0))

	changed := passes.DeadCodeElimination{}.Run(fn)
	require.True(t, changed)
	require.Nil(t, unused.Block())
}

func TestDeadCodeEliminationBreaksSelfReferentialPhiCycle(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("loop", i32, []string{"n"}, []*ir.Type{i32})
	entry := fn.NewBlock("entry")
	loop := fn.NewBlock("loop")

	ir.NewInserterAtBack(entry).EmitBranch(loop)

	phi := ir.NewInserterAtFront(loop).EmitPhi(i32)
	inc := ir.NewInserterAtBack(loop).EmitBinary(phi, ir.OpAdd, ctx.IntConst(i32, 1))
	phi.AddIncoming(entry, fn.Param(0))
	phi.AddIncoming(loop, inc)
	ir.NewInserterAtBack(loop).EmitRet(i32, ctx.IntConst(i32, 0))

	changed := passes.DeadCodeElimination{}.Run(fn)
	require.True(t, changed)
	require.Nil(t, phi.Block())
	require.Nil(t, inc.Block())
}

func TestRunToFixedPointConverges(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("f", i32, nil, nil)
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)
	lhs := ctx.IntConst(i32, 2)
	rhs := ctx.IntConst(i32, 3)
	add := ins.EmitBinary(lhs, ir.OpAdd, rhs)
	mul := ins.EmitBinary(add, ir.OpMul, ctx.IntConst(i32, 0))
	ins.EmitRet(i32, mul)

	iterations := passes.RunToFixedPoint(fn, passes.DefaultPipeline(), 32)
	require.Greater(t, iterations, 0)

	ret := fn.Entry().Last().(*ir.RetInstr)
	c, ok := ret.Value().(*ir.Constant)
	require.True(t, ok)
	require.Equal(t, uint64(0), c.Bits())

	problems := ir.Verify(fn)
	require.Empty(t, problems)
}

func TestPipelineConfigBuildsFromYAML(t *testing.T) {
	cfg, err := passes.ParsePipelineConfig([]byte("passes:\n  - constprop\n  - dce\nmax_iterations: 5\n"))
	require.NoError(t, err)
	require.Equal(t, 5, cfg.MaxIterations)

	pipeline := cfg.Build()
	require.Len(t, pipeline, 2)
	require.Equal(t, "constprop", pipeline[0].Name())
	require.Equal(t, "dce", pipeline[1].Name())
}
