package match_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"midend/internal/ir"
	"midend/internal/match"
)

func buildBinary(t *testing.T) (*ir.Context, *ir.Block, *ir.BinaryInstr, *ir.Parameter) {
	t.Helper()
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	fn := m.NewFunction("f", i32, []string{"x"}, []*ir.Type{i32})
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)
	zero := ctx.IntConst(i32, 0)
	add := ins.EmitBinary(fn.Param(0), ir.OpAdd, zero)
	ins.EmitRet(i32, add)
	return ctx, b, add, fn.Param(0)
}

func TestBinaryMatchesCommutedOperands(t *testing.T) {
	_, _, add, x := buildBinary(t)

	var bound ir.Value
	m := match.Binary(match.Zero(), ir.OpAdd, match.Value(&bound))
	require.True(t, m(add))
	require.Equal(t, ir.Value(x), bound)
}

func TestBinarySpecificRejectsCommutedOperands(t *testing.T) {
	_, _, add, _ := buildBinary(t)

	m := match.BinarySpecific(match.Zero(), ir.OpAdd, match.Value(new(ir.Value)))
	require.False(t, m(add))
}

func TestExactMatchesPointerIdentity(t *testing.T) {
	_, _, add, x := buildBinary(t)
	require.True(t, match.Exact(x)(x))
	require.False(t, match.Exact(x)(add))
}

func TestConstantBindsBits(t *testing.T) {
	ctx := ir.NewContext()
	c := ctx.IntConst(ctx.I8Type(), 200)
	var bits uint64
	require.True(t, match.Constant(&bits)(c))
	require.Equal(t, uint64(200), bits)
}

func TestNegativeOneRespectsWidth(t *testing.T) {
	ctx := ir.NewContext()
	allOnes8 := ctx.IntConst(ctx.I8Type(), 0xFF)
	notAllOnes := ctx.IntConst(ctx.I8Type(), 0x7F)
	require.True(t, match.NegativeOne()(allOnes8))
	require.False(t, match.NegativeOne()(notAllOnes))
}

func TestCastHelpersDistinguishKind(t *testing.T) {
	ctx := ir.NewContext()
	m := ctx.NewModule("m")
	i32 := ctx.I32Type()
	i8 := ctx.I8Type()
	fn := m.NewFunction("f", i32, []string{"x"}, []*ir.Type{i8})
	b := fn.NewBlock("entry")
	ins := ir.NewInserterAtBack(b)
	sext := ins.EmitCast(ir.CastSignExtend, fn.Param(0), i32)
	ins.EmitRet(i32, sext)

	require.True(t, match.Sext(match.Value(new(ir.Value)))(sext))
	require.False(t, match.Zext(match.Value(new(ir.Value)))(sext))
}
