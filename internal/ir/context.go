package ir

import (
	"github.com/sasha-s/go-deadlock"
	"github.com/segmentio/ksuid"

	"midend/internal/diag"
)

// Context bounds the lifetime of every type, interned constant, and module
// created from it. Every IR object carries a back-reference to its owning
// Context. Destroying a Context releases everything it transitively owns.
//
// A Context's intern tables are process-wide, long-lived state: programs
// that drive several independent Functions (batch tooling, a fuzzer replaying
// many inputs) against one shared type table do so from more than one
// goroutine in practice, so the tables are guarded by a deadlock-checked
// mutex rather than a bare sync.Mutex. The engine itself (§5) stays strictly
// single-threaded: no two goroutines ever run passes over the same Function
// concurrently, only the Context's registries are shared.
type Context struct {
	mu deadlock.Mutex

	// SessionID is a K-sortable id stamped at creation, surfaced in
	// diagnostic log lines and panic messages so multiple Contexts created
	// in one process (e.g. a fuzz loop) can be told apart. It is never used
	// as a Value or Block identity; those stay cheap monotonic ints.
	SessionID ksuid.KSUID

	types  map[typeKey]*Type
	consts map[constKey]*Constant

	modules   []*Module
	idCounter int

	destroyed bool
}

// nextInstrID returns a fresh, monotonically increasing instruction id,
// unique within this Context.
func (ctx *Context) nextInstrID() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.idCounter++
	return ctx.idCounter
}

// NewContext creates a fresh, empty Context.
func NewContext() *Context {
	return &Context{
		SessionID: ksuid.New(),
		types:     make(map[typeKey]*Type),
		consts:    make(map[constKey]*Constant),
	}
}

// requireLive panics if the Context has been destroyed. Must be called with
// ctx.mu held.
func (ctx *Context) requireLive() {
	diag.Invariant(!ctx.destroyed, "use of destroyed Context %s", ctx.SessionID)
}

// NewModule creates a new, empty Module owned by this Context.
func (ctx *Context) NewModule(name string) *Module {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.requireLive()

	m := &Module{ctx: ctx, name: name, functions: make(map[string]*Function)}
	ctx.modules = append(ctx.modules, m)
	return m
}

// Modules returns every Module owned by this Context, in creation order.
func (ctx *Context) Modules() []*Module {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return append([]*Module(nil), ctx.modules...)
}

// Destroy releases everything the Context transitively owns: every Module,
// Function, Block, Instruction, and interned Type/Constant. Afterwards,
// interning a type or constant or creating a module through this Context is
// a hard error; objects obtained from it before Destroy are not checked and
// do not panic when used.
func (ctx *Context) Destroy() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.destroyed {
		return
	}
	for i := len(ctx.modules) - 1; i >= 0; i-- {
		ctx.modules[i].destroyLocked()
	}
	ctx.modules = nil
	ctx.types = nil
	ctx.consts = nil
	ctx.destroyed = true
}
