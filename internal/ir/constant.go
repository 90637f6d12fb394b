package ir

import "midend/internal/diag"

// Constant is an interned compile-time integer value.
// Interning means equal (type, bit pattern) pairs always yield the same
// *Constant object (spec invariant 7), so constants can be compared with ==.
type Constant struct {
	valueBase
	bits uint64 // low Type().BitSize() bits are significant
}

// Bits returns the constant's unsigned bit pattern, masked to its type's
// width.
func (c *Constant) Bits() uint64 { return c.bits }

// SignedBits reinterprets Bits() as a two's-complement signed value of the
// constant's width.
func (c *Constant) SignedBits() int64 {
	bits := c.Type().BitSize()
	if bits == 0 || bits >= 64 {
		return int64(c.bits)
	}
	signBit := uint64(1) << uint(bits-1)
	if c.bits&signBit == 0 {
		return int64(c.bits)
	}
	return int64(c.bits | ^((uint64(1) << uint(bits)) - 1))
}

// IsZero reports whether the constant's masked bit pattern is zero.
func (c *Constant) IsZero() bool { return c.bits == 0 }

type constKey struct {
	typ  *Type
	bits uint64
}

// IntConst returns the interned constant of type t with the given unsigned
// bit pattern, masked to t's width. t must be an integer type.
func (ctx *Context) IntConst(t *Type, bits uint64) *Constant {
	diag.Invariant(t.IsInteger(), "IntConst: %v is not an integer type", t)

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.requireLive()

	masked := bits & t.Mask()
	key := constKey{typ: t, bits: masked}
	if c, ok := ctx.consts[key]; ok {
		return c
	}
	c := &Constant{bits: masked}
	c.init(c, ctx, t, ValConstant)
	ctx.consts[key] = c
	return c
}

// ZeroConst returns the interned zero-valued constant of type t.
func (ctx *Context) ZeroConst(t *Type) *Constant {
	return ctx.IntConst(t, 0)
}

// UndefinedValue represents an unspecified value of a given type (e.g. the
// initial value of a stack slot before any store). It participates in the
// user-set graph like any other Value but is never itself an Instruction.
type UndefinedValue struct {
	valueBase
}

// NewUndefined creates a fresh, uninterned undefined value of type t. Unlike
// constants, undefined values are not deduplicated: each call produces a
// distinct object, matching the intuition that "unspecified" carries no
// identity to compare against.
func NewUndefined(ctx *Context, t *Type) *UndefinedValue {
	u := &UndefinedValue{}
	u.init(u, ctx, t, ValUndefined)
	return u
}

// Parameter is a Function's formal parameter. It is a Value like any other
// (its Type is the declared parameter type) and can be used as an operand
// anywhere a value of that type is expected.
type Parameter struct {
	valueBase
	name  string
	index int
}

// Name returns the parameter's declared name (for diagnostics only; not
// part of SSA identity).
func (p *Parameter) Name() string { return p.name }

// Index returns the parameter's zero-based position in its Function's
// parameter list.
func (p *Parameter) Index() int { return p.index }

func newParameter(ctx *Context, name string, t *Type, index int) *Parameter {
	p := &Parameter{name: name, index: index}
	p.init(p, ctx, t, ValParameter)
	return p
}
