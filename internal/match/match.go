// Package match provides composable matchers over ir.Value shapes, used by
// the simplifier to recognize algebraic patterns without hand-written type switches at every call site.
// A Matcher never mutates the graph: it only inspects and optionally binds.
package match

import "midend/internal/ir"

// Matcher reports whether v has the expected shape, optionally binding
// intermediate results as a side effect of a successful match.
type Matcher func(v ir.Value) bool

// Value always matches and binds the matched value into *out.
func Value(out *ir.Value) Matcher {
	return func(v ir.Value) bool {
		*out = v
		return true
	}
}

// Exact matches iff v is pointer-identical to want.
func Exact(want ir.Value) Matcher {
	return func(v ir.Value) bool {
		return v == want
	}
}

// Constant matches a Constant value, binding its unsigned bit pattern.
func Constant(out *uint64) Matcher {
	return func(v ir.Value) bool {
		c, ok := v.(*ir.Constant)
		if !ok {
			return false
		}
		*out = c.Bits()
		return true
	}
}

// constBits matches a Constant whose masked bit pattern equals want.
func constBits(want uint64) Matcher {
	return func(v ir.Value) bool {
		c, ok := v.(*ir.Constant)
		if !ok {
			return false
		}
		return c.Bits() == (want & v.Type().Mask())
	}
}

// Zero matches an integer constant with bit pattern 0, any width.
func Zero() Matcher { return constBits(0) }

// One matches an integer constant with bit pattern 1, any width.
func One() Matcher { return constBits(1) }

// NegativeOne matches an all-ones bit pattern for the constant's own width.
func NegativeOne() Matcher {
	return func(v ir.Value) bool {
		c, ok := v.(*ir.Constant)
		if !ok {
			return false
		}
		return c.Bits() == v.Type().Mask()
	}
}

// Unary matches a UnaryInstr with the given op whose operand satisfies inner.
func Unary(op ir.UnaryOp, inner Matcher) Matcher {
	return func(v ir.Value) bool {
		u, ok := v.(*ir.UnaryInstr)
		if !ok || u.Op() != op {
			return false
		}
		return inner(u.V())
	}
}

// Binary matches a BinaryInstr with the given op. If op is commutative, both
// operand orders are tried against (lhs, rhs); otherwise only the literal
// order is tried. This is the commutativity-aware form named `binary` in the
// matcher contract.
func Binary(lhs Matcher, op ir.BinaryOp, rhs Matcher) Matcher {
	return func(v ir.Value) bool {
		b, ok := v.(*ir.BinaryInstr)
		if !ok || b.Op() != op {
			return false
		}
		if lhs(b.Lhs()) && rhs(b.Rhs()) {
			return true
		}
		if op.IsCommutative() && lhs(b.Rhs()) && rhs(b.Lhs()) {
			return true
		}
		return false
	}
}

// BinarySpecific matches a BinaryInstr with the given op in the literal
// operand order only, never trying the commuted arrangement even if op is
// commutative.
func BinarySpecific(lhs Matcher, op ir.BinaryOp, rhs Matcher) Matcher {
	return func(v ir.Value) bool {
		b, ok := v.(*ir.BinaryInstr)
		if !ok || b.Op() != op {
			return false
		}
		return lhs(b.Lhs()) && rhs(b.Rhs())
	}
}

// Compare matches an IntCompareInstr with the given predicate.
func Compare(out **ir.IntCompareInstr, pred ir.ComparePred, lhs, rhs Matcher) Matcher {
	return func(v ir.Value) bool {
		c, ok := v.(*ir.IntCompareInstr)
		if !ok || c.Pred() != pred {
			return false
		}
		if !(lhs(c.Lhs()) && rhs(c.Rhs())) {
			return false
		}
		if out != nil {
			*out = c
		}
		return true
	}
}

// CompareNe matches an IntCompareInstr with predicate Ne.
func CompareNe(out **ir.IntCompareInstr, lhs, rhs Matcher) Matcher {
	return Compare(out, ir.PredNe, lhs, rhs)
}

// CompareEq matches an IntCompareInstr with predicate Eq.
func CompareEq(out **ir.IntCompareInstr, lhs, rhs Matcher) Matcher {
	return Compare(out, ir.PredEq, lhs, rhs)
}

// Cast matches a CastInstr of any kind whose operand satisfies inner,
// optionally binding the matched instruction and its kind.
// Either out pointer may be nil when the caller doesn't need the binding.
func Cast(out **ir.CastInstr, kindOut *ir.CastKind, inner Matcher) Matcher {
	return func(v ir.Value) bool {
		c, ok := v.(*ir.CastInstr)
		if !ok || !inner(c.V()) {
			return false
		}
		if out != nil {
			*out = c
		}
		if kindOut != nil {
			*kindOut = c.CastKind()
		}
		return true
	}
}

func castOfKind(kind ir.CastKind, inner Matcher) Matcher {
	return func(v ir.Value) bool {
		c, ok := v.(*ir.CastInstr)
		if !ok || c.CastKind() != kind {
			return false
		}
		return inner(c.V())
	}
}

// Bitcast matches a CastInstr of kind Bitcast.
func Bitcast(inner Matcher) Matcher { return castOfKind(ir.CastBitcast, inner) }

// Sext matches a CastInstr of kind SignExtend.
func Sext(inner Matcher) Matcher { return castOfKind(ir.CastSignExtend, inner) }

// Zext matches a CastInstr of kind ZeroExtend.
func Zext(inner Matcher) Matcher { return castOfKind(ir.CastZeroExtend, inner) }

// Trunc matches a CastInstr of kind Truncate.
func Trunc(inner Matcher) Matcher { return castOfKind(ir.CastTruncate, inner) }
