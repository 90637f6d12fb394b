package ir

import "midend/internal/diag"

// Function is a named, typed procedure: a result type, a parameter list
// (each parameter is itself a Value), and an ordered set of Blocks with a
// designated entry. A Function may be extern (no blocks), in which case it
// exists only to be called or referenced, never optimized.
type Function struct {
	ctx    *Context
	module *Module

	name       string
	resultType *Type
	extern     bool

	params []*Parameter
	blocks []*Block
	entry  *Block

	blockCounter int
}

// Name returns the function's name.
func (fn *Function) Name() string { return fn.name }

// Module returns the owning Module.
func (fn *Function) Module() *Module { return fn.module }

// ResultType returns the function's declared return type (VoidType() for a
// function returning nothing).
func (fn *Function) ResultType() *Type { return fn.resultType }

// IsExtern reports whether this is a declaration with no blocks.
func (fn *Function) IsExtern() bool { return fn.extern }

// Params returns the function's formal parameters in declaration order.
func (fn *Function) Params() []*Parameter {
	return append([]*Parameter(nil), fn.params...)
}

// Param returns the i-th parameter.
func (fn *Function) Param(i int) *Parameter {
	diag.Invariant(i >= 0 && i < len(fn.params), "Param: index %d out of range", i)
	return fn.params[i]
}

// Entry returns the function's designated entry block, or nil for an
// extern function.
func (fn *Function) Entry() *Block { return fn.entry }

// Blocks returns every block owned by this function, in creation order.
func (fn *Function) Blocks() []*Block {
	return append([]*Block(nil), fn.blocks...)
}

// NewBlock creates and appends a new, empty Block to this function. The
// first block created becomes the entry block.
func (fn *Function) NewBlock(label string) *Block {
	diag.Invariant(!fn.extern, "NewBlock: function %q is extern", fn.name)
	fn.blockCounter++
	if label == "" {
		label = defaultBlockLabel(fn.blockCounter)
	}
	b := &Block{fn: fn, label: label}
	fn.blocks = append(fn.blocks, b)
	if fn.entry == nil {
		fn.entry = b
	}
	return b
}

func defaultBlockLabel(n int) string {
	const letters = "bb"
	return letters + itoa(n)
}

// itoa avoids pulling in strconv for this one call site; kept trivial on
// purpose since block labels are debug-only.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func newFunction(ctx *Context, m *Module, name string, resultType *Type, paramNames []string, paramTypes []*Type, extern bool) *Function {
	diag.Invariant(len(paramNames) == len(paramTypes), "newFunction: parameter name/type count mismatch")
	fn := &Function{
		ctx:        ctx,
		module:     m,
		name:       name,
		resultType: resultType,
		extern:     extern,
	}
	for i, t := range paramTypes {
		fn.params = append(fn.params, newParameter(ctx, paramNames[i], t, i))
	}
	return fn
}

// destroyCascade tears the function down: it first disconnects every
// operand reference held by any instruction in the function (which, as a
// side effect, empties every instruction's user set, since every reference
// to it has just been cleared), then destroys every instruction in reverse
// list order: last block first, and within a block last instruction first.
// This follows list position, not creation id. This is the only sanctioned way to remove an instruction
// that still has users: bulk-destroying the parent container.
func (fn *Function) destroyCascade() {
	for _, b := range fn.blocks {
		for instr := b.first; instr != nil; instr = instr.nextInstr() {
			for i, op := range instr.Operands() {
				if op != nil {
					instr.SetOperand(i, nil)
				}
			}
		}
	}
	for i := len(fn.blocks) - 1; i >= 0; i-- {
		b := fn.blocks[i]
		for instr := b.last; instr != nil; {
			prev := instr.prevInstr()
			instr.setBlock(nil)
			instr.setPrevInstr(nil)
			instr.setNextInstr(nil)
			instr.Destroy()
			instr = prev
		}
		b.first, b.last = nil, nil
	}
	fn.blocks = nil
	fn.entry = nil
}
