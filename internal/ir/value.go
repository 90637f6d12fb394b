package ir

import "midend/internal/diag"

// ValueKind tags the closed set of Value subkinds.
type ValueKind int

const (
	ValConstant ValueKind = iota
	ValParameter
	ValUndefined
	ValInstruction
)

func (k ValueKind) String() string {
	switch k {
	case ValConstant:
		return "constant"
	case ValParameter:
		return "parameter"
	case ValUndefined:
		return "undef"
	case ValInstruction:
		return "instruction"
	default:
		return "value"
	}
}

// Use records one (user, operand-index) entry in a Value's user set. The
// user set is a multiset keyed on (User, Index): if the same Instruction
// references a Value from two different operand positions, that Value's
// user set holds two distinct Use entries for it.
type Use struct {
	User  Instruction
	Index int
}

// Value is the root of the IR's object graph. Every Value tracks its Type
// and the full set of Instructions that reference it as an operand (its
// "users"). The only mutation path for references is Instruction.SetOperand,
// which keeps both sides of the operand/user relationship consistent.
type Value interface {
	Type() *Type
	ValueKind() ValueKind

	// Users returns the value's user set in insertion order. The returned
	// slice is a defensive copy; mutating it has no effect on the graph.
	Users() []Use
	IsUsed() bool

	// IsUsedOnlyBy reports whether every entry in the user set names other,
	// regardless of operand index. A Value with an empty user set is not
	// "used only by" anything: this returns false.
	IsUsedOnlyBy(other Instruction) bool

	// UserCountExcludingSelf counts users that are not the value itself
	// (relevant only when the Value is also an Instruction that can appear
	// in its own operand list, e.g. a self-referential phi).
	UserCountExcludingSelf() int

	// ReplaceUsesWith rewrites every current user to reference newVal
	// instead, via each user's SetOperand. A no-op when
	// newVal is the receiver itself.
	ReplaceUsesWith(newVal Value)

	addUser(u Instruction, idx int)
	removeUser(u Instruction, idx int)
}

// valueBase is embedded by every concrete Value implementation (Constant,
// Parameter, UndefinedValue, and every Instruction kind via InstrBase). It
// owns the user-set bookkeeping so every Value gets ReplaceUsesWith,
// IsUsedOnlyBy, and friends by method promotion rather than by repeating
// them per kind.
type valueBase struct {
	ctx   *Context
	typ   *Type
	kind  ValueKind
	self  Value // back-pointer to the concrete wrapper, set at construction
	users []Use
}

func (vb *valueBase) init(self Value, ctx *Context, typ *Type, kind ValueKind) {
	vb.self = self
	vb.ctx = ctx
	vb.typ = typ
	vb.kind = kind
}

func (vb *valueBase) Type() *Type          { return vb.typ }
func (vb *valueBase) ValueKind() ValueKind { return vb.kind }

func (vb *valueBase) Users() []Use {
	return append([]Use(nil), vb.users...)
}

func (vb *valueBase) IsUsed() bool { return len(vb.users) > 0 }

func (vb *valueBase) IsUsedOnlyBy(other Instruction) bool {
	if len(vb.users) == 0 {
		return false
	}
	for _, u := range vb.users {
		if u.User != other {
			return false
		}
	}
	return true
}

func (vb *valueBase) UserCountExcludingSelf() int {
	n := 0
	for _, u := range vb.users {
		if Value(u.User) != vb.self {
			n++
		}
	}
	return n
}

func (vb *valueBase) ReplaceUsesWith(newVal Value) {
	if vb.self == newVal {
		return
	}
	uses := append([]Use(nil), vb.users...)
	for _, u := range uses {
		u.User.SetOperand(u.Index, newVal)
	}
}

func (vb *valueBase) addUser(u Instruction, idx int) {
	vb.users = append(vb.users, Use{User: u, Index: idx})
}

func (vb *valueBase) removeUser(u Instruction, idx int) {
	for i, e := range vb.users {
		if e.User == u && e.Index == idx {
			vb.users = append(vb.users[:i], vb.users[i+1:]...)
			return
		}
	}
	diag.Invariant(false, "removeUser: (%v, %d) not found in user set", u, idx)
}
