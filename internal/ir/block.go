package ir

import "midend/internal/diag"

// Block is an ordered, intrusively-linked list of Instructions ending in
// exactly one terminator (Branch, CondBranch, or Ret). It owns its
// instructions and knows its Function.
type Block struct {
	fn    *Function
	label string

	first Instruction
	last  Instruction
}

// Function returns the Block's owning Function.
func (b *Block) Function() *Function { return b.fn }

// Label returns the block's debug name.
func (b *Block) Label() string { return b.label }

// IsEmpty reports whether the block has no instructions yet.
func (b *Block) IsEmpty() bool { return b.first == nil }

// First returns the block's first instruction, or nil if empty.
func (b *Block) First() Instruction { return b.first }

// Last returns the block's last instruction, or nil if empty.
func (b *Block) Last() Instruction { return b.last }

// Terminator returns the block's terminating instruction (Branch,
// CondBranch, or Ret), or nil if the block is not yet terminated. Per spec
// invariant 2, a terminator may only ever be the last instruction of a
// block, so this is simply "is the last instruction a terminator".
func (b *Block) Terminator() Instruction {
	if b.last != nil && b.last.IsTerminator() {
		return b.last
	}
	return nil
}

// Instructions returns the block's instructions in order, as a snapshot
// slice. Passes that need to delete or replace the current element while
// iterating should use the safe-iteration adapters in iterator.go instead.
func (b *Block) Instructions() []Instruction {
	var out []Instruction
	for i := b.first; i != nil; i = i.nextInstr() {
		out = append(out, i)
	}
	return out
}

// pushFront inserts instr as the new first instruction of the block.
func (b *Block) pushFront(instr Instruction) {
	instr.setBlock(b)
	instr.setPrevInstr(nil)
	instr.setNextInstr(b.first)
	if b.first != nil {
		b.first.setPrevInstr(instr)
	} else {
		b.last = instr
	}
	b.first = instr
}

// pushBack appends instr as the new last instruction of the block.
func (b *Block) pushBack(instr Instruction) {
	instr.setBlock(b)
	instr.setNextInstr(nil)
	instr.setPrevInstr(b.last)
	if b.last != nil {
		b.last.setNextInstr(instr)
	} else {
		b.first = instr
	}
	b.last = instr
}

// insertBeforeInstr inserts instr immediately before other, which must
// already belong to this block.
func (b *Block) insertBeforeInstr(instr, other Instruction) {
	diag.Invariant(other.Block() == b, "insertBeforeInstr: target not in this block")
	prev := other.prevInstr()
	instr.setBlock(b)
	instr.setPrevInstr(prev)
	instr.setNextInstr(other)
	other.setPrevInstr(instr)
	if prev != nil {
		prev.setNextInstr(instr)
	} else {
		b.first = instr
	}
}

// insertAfterInstr inserts instr immediately after other, which must
// already belong to this block.
func (b *Block) insertAfterInstr(instr, other Instruction) {
	diag.Invariant(other.Block() == b, "insertAfterInstr: target not in this block")
	next := other.nextInstr()
	instr.setBlock(b)
	instr.setPrevInstr(other)
	instr.setNextInstr(next)
	other.setNextInstr(instr)
	if next != nil {
		next.setPrevInstr(instr)
	} else {
		b.last = instr
	}
}

// unlink removes instr from this block's list without touching its
// operands or users. Callers (InstrBase.Unlink) are responsible for
// clearing instr's own block/prev/next fields afterward.
func (b *Block) unlink(instr Instruction) {
	diag.Invariant(instr.Block() == b, "unlink: instruction not in this block")
	prev := instr.prevInstr()
	next := instr.nextInstr()
	if prev != nil {
		prev.setNextInstr(next)
	} else {
		b.first = next
	}
	if next != nil {
		next.setPrevInstr(prev)
	} else {
		b.last = prev
	}
}

// Predecessors returns every block in the same function whose terminator
// names b as a successor. Computed on demand rather than cached, so it can
// never go stale across a rewrite that only updates terminators.
func (b *Block) Predecessors() []*Block {
	var preds []*Block
	for _, other := range b.fn.blocks {
		for _, succ := range other.Successors() {
			if succ == b {
				preds = append(preds, other)
				break
			}
		}
	}
	return preds
}

// Successors returns the blocks this block's terminator may transfer
// control to, in operand order. Empty if the block is unterminated or ends
// in Ret.
func (b *Block) Successors() []*Block {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	switch t := term.(type) {
	case *BranchInstr:
		return []*Block{t.target}
	case *CondBranchInstr:
		return []*Block{t.trueBlock, t.falseBlock}
	case *RetInstr:
		return nil
	default:
		diag.Unreachable("Successors: unhandled terminator kind %v", term.Kind())
		return nil
	}
}
