package fixture

// Program is the root of a parsed fixture: zero or more function
// declarations, in source order.
type Program struct {
	Functions []*FunctionDecl `@@*`
}

// FunctionDecl is `[extern] fn NAME(params) -> result { blocks }`. An
// extern function has no block list at all, mirroring Function.IsExtern().
type FunctionDecl struct {
	Extern bool         `[ @"extern" ]`
	Name   string       `"fn" @Ident`
	Params []*ParamDecl `"(" [ @@ { "," @@ } ] ")"`
	Result string       `"->" @Ident`
	Blocks []*BlockDecl `[ "{" @@* "}" ]`
}

type ParamDecl struct {
	Name string `@Ident ":"`
	Type string `@Ident`
}

// BlockDecl is `label: instr; instr; ...`.
type BlockDecl struct {
	Label  string       `@Ident ":"`
	Instrs []*InstrDecl `@@ { ";" @@ } [ ";" ]`
}

// InstrDecl is an optional `%dest =` followed by exactly one instruction
// form. Only one of the alternatives is ever non-nil.
type InstrDecl struct {
	Dest *string `[ "%" @(Ident | Integer) "=" ]`

	Phi        *PhiOp        `( @@`
	Binary     *BinaryOp     `| @@`
	Unary      *UnaryOp      `| @@`
	Compare    *CompareOp    `| @@`
	Cast       *CastOp       `| @@`
	Load       *LoadOp       `| @@`
	Store      *StoreOp      `| @@`
	Alloc      *AllocOp      `| @@`
	Offset     *OffsetOp     `| @@`
	Call       *CallOp       `| @@`
	Branch     *BranchOp     `| @@`
	CondBranch *CondBranchOp `| @@`
	Select     *SelectOp     `| @@`
	Ret        *RetOp        `| @@ )`
}

// Operand is a register reference, a bare name (a function parameter), or
// an integer literal. Exactly one field is non-nil.
type Operand struct {
	Reg  *string `  "%" @(Ident | Integer)`
	Name *string `| @Ident`
	Int  *string `| @Integer`
}

type BinaryOp struct {
	Operator string   `@("add" | "sub" | "mul" | "mods" | "divs" | "modu" | "divu" | "shr" | "shl" | "sar" | "and" | "or" | "xor")`
	Lhs      *Operand `@@ ","`
	Rhs      *Operand `@@`
}

type UnaryOp struct {
	Operator string   `@("neg" | "not")`
	V        *Operand `@@`
}

type CompareOp struct {
	Pred string   `"icmp" @("eq" | "ne" | "gtu" | "gteu" | "gts" | "gtes" | "ltu" | "lteu" | "lts" | "ltes")`
	Lhs  *Operand `@@ ","`
	Rhs  *Operand `@@`
}

type CastOp struct {
	Kind string   `@("zext" | "sext" | "trunc" | "bitcast")`
	V    *Operand `@@ "to"`
	Type string   `@Ident`
}

type LoadOp struct {
	Ptr *Operand `"load" @@`
}

type StoreOp struct {
	Val *Operand `"store" @@ ","`
	Ptr *Operand `@@`
}

type AllocOp struct {
	Type  string   `"alloca" @Ident ","`
	Count *Operand `@@`
}

type OffsetOp struct {
	Base  *Operand `"offset" @@ ","`
	Index *Operand `@@`
}

type CallOp struct {
	Callee string     `"call" @Ident "("`
	Args   []*Operand `[ @@ { "," @@ } ] ")"`
}

type BranchOp struct {
	Target string `"br" @Ident`
}

type CondBranchOp struct {
	Cond       *Operand `"condbr" @@ ","`
	TrueBlock  string   `@Ident ","`
	FalseBlock string   `@Ident`
}

type SelectOp struct {
	Cond     *Operand `"select" @@ ","`
	TrueVal  *Operand `@@ ","`
	FalseVal *Operand `@@`
}

type RetOp struct {
	Value *Operand `"ret" [ @@ ]`
}

type PhiOp struct {
	Type      string         `"phi" @Ident`
	Incomings []*PhiIncoming `{ @@ }`
}

type PhiIncoming struct {
	Block string   `"[" @Ident ","`
	Value *Operand `@@ "]"`
}
