package ir

// Safe iteration adapters: the only sanctioned way for a pass to delete,
// unlink, or replace the instruction or use it is currently looking at.
// Every other iteration form (Block.Instructions, Value.Users) hands back a
// snapshot slice and forbids structural mutation during the walk by
// construction — there is nothing live to invalidate.

// InstrCursor walks a block's instruction list, pre-reading the successor
// pointer before each element is yielded. A caller may legally Unlink,
// Destroy, or otherwise detach the just-yielded instruction from its block
// without invalidating the rest of the walk.
type InstrCursor struct {
	next Instruction
}

// NewInstrCursor returns a cursor starting at b's first instruction.
func NewInstrCursor(b *Block) *InstrCursor {
	return &InstrCursor{next: b.First()}
}

// Next returns the next instruction in the walk and advances the cursor,
// or (nil, false) once the walk is exhausted. The successor pointer is
// captured before Next returns, so the caller may freely mutate the
// returned instruction's block linkage before calling Next again.
func (c *InstrCursor) Next() (Instruction, bool) {
	cur := c.next
	if cur == nil {
		return nil, false
	}
	c.next = cur.nextInstr()
	return cur, true
}

// ForEachInstrSafe walks every instruction in b, invoking fn on each. fn may
// legally Unlink, Destroy, or replace-and-destroy the instruction it was
// just handed: the walk's successor pointer is captured beforehand.
func ForEachInstrSafe(b *Block, fn func(Instruction)) {
	cur := b.First()
	for cur != nil {
		next := cur.nextInstr()
		fn(cur)
		cur = next
	}
}

// ForEachUserSafe walks a snapshot of v's current user set, invoking fn on
// each Use. fn may legally call SetOperand on the use it was just handed
// (removing v from that operand slot, possibly adding v elsewhere) without
// perturbing the rest of the walk, since the snapshot was already taken.
func ForEachUserSafe(v Value, fn func(Use)) {
	for _, u := range v.Users() {
		fn(u)
	}
}
