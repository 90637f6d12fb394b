package fixture_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"midend/internal/fixture"
	"midend/internal/ir"
)

func TestBuildSimpleFunction(t *testing.T) {
	ctx := ir.NewContext()
	fn := fixture.Build(ctx, `
fn add(x: i32, y: i32) -> i32 {
entry: %0 = add x, y; ret %0
}
`)

	require.Equal(t, "add", fn.Name())
	require.Len(t, fn.Params(), 2)
	require.Empty(t, ir.Verify(fn))

	ret := fn.Entry().Last().(*ir.RetInstr)
	add, ok := ret.Value().(*ir.BinaryInstr)
	require.True(t, ok)
	require.Equal(t, ir.OpAdd, add.Op())
}

func TestBuildDiamondWithPhi(t *testing.T) {
	ctx := ir.NewContext()
	fn := fixture.Build(ctx, `
fn pick(cond: i1, a: i32, b: i32) -> i32 {
entry: condbr cond, then, otherwise
then: br join
otherwise: br join
join: %r = phi i32 [then, a] [otherwise, b]; ret %r
}
`)

	require.Empty(t, ir.Verify(fn))
	joinBlock := fn.Blocks()[3]
	phi, ok := joinBlock.First().(*ir.PhiInstr)
	require.True(t, ok)
	require.Len(t, phi.Incomings(), 2)
}

func TestBuildCallsHelperDeclaredEarlier(t *testing.T) {
	ctx := ir.NewContext()
	fn := fixture.Build(ctx, `
extern fn double(x: i32) -> i32
fn triple(x: i32) -> i32 {
entry: %c = call double(x); %r = add %c, x; ret %r
}
`)

	require.Equal(t, "triple", fn.Name())
	require.Empty(t, ir.Verify(fn))

	helper, ok := fn.Module().Lookup("double")
	require.True(t, ok)
	require.True(t, helper.IsExtern())
}

func TestBuildFoldsThroughConstantLiterals(t *testing.T) {
	ctx := ir.NewContext()
	fn := fixture.Build(ctx, `
fn eight(x: i32) -> i32 {
entry: %s = mul x, 8; ret %s
}
`)

	mul := fn.Entry().First().(*ir.BinaryInstr)
	rhs, ok := mul.Rhs().(*ir.Constant)
	require.True(t, ok)
	require.Equal(t, uint64(8), rhs.Bits())
}

func TestBuildPanicsOnSyntaxError(t *testing.T) {
	ctx := ir.NewContext()
	require.Panics(t, func() {
		fixture.Build(ctx, `fn broken( -> i32 { entry: ret }`)
	})
}
