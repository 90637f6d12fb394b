package ir

import "midend/internal/diag"

// Module is a named collection of Functions, supporting lookup by name, as
// the scope a Call instruction resolves its callee against.
type Module struct {
	ctx  *Context
	name string

	order     []*Function
	functions map[string]*Function
}

// Name returns the module's name.
func (m *Module) Name() string { return m.name }

// Context returns the owning Context.
func (m *Module) Context() *Context { return m.ctx }

// NewFunction declares and defines a new function in this module, creating
// its parameters immediately. Blocks are added afterward via Function.NewBlock.
func (m *Module) NewFunction(name string, resultType *Type, paramNames []string, paramTypes []*Type) *Function {
	return m.declare(name, resultType, paramNames, paramTypes, false)
}

// NewExternFunction declares a function with no body: it may still be
// called (its ResultType and Params are meaningful for type-checking a
// Call), but NewBlock on it is forbidden.
func (m *Module) NewExternFunction(name string, resultType *Type, paramNames []string, paramTypes []*Type) *Function {
	return m.declare(name, resultType, paramNames, paramTypes, true)
}

func (m *Module) declare(name string, resultType *Type, paramNames []string, paramTypes []*Type, extern bool) *Function {
	diag.Invariant(resultType != nil, "declare: nil result type")
	_, exists := m.functions[name]
	diag.Invariant(!exists, "declare: function %q already exists in module %q", name, m.name)

	fn := newFunction(m.ctx, m, name, resultType, paramNames, paramTypes, extern)
	m.functions[name] = fn
	m.order = append(m.order, fn)
	return fn
}

// Lookup returns the function registered under name, if any.
func (m *Module) Lookup(name string) (*Function, bool) {
	fn, ok := m.functions[name]
	return fn, ok
}

// Functions returns every function in this module, in declaration order.
func (m *Module) Functions() []*Function {
	return append([]*Function(nil), m.order...)
}

// destroyLocked tears down every function in the module. Called with the
// owning Context's mutex held, as part of Context.Destroy's cascade.
func (m *Module) destroyLocked() {
	for i := len(m.order) - 1; i >= 0; i-- {
		m.order[i].destroyCascade()
	}
	m.order = nil
	m.functions = nil
}
