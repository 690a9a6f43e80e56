// Package environment implements Ralix's runtime scope stack, mapping
// each bound name to its heap address.
package environment

import "github.com/ralix-lang/ralix/internal/object"

type scope map[string]*object.Addr

// Environment is a stack of name->Addr scopes, innermost last. Unlike
// the compile-time symboltable it carries no type information — that
// was already checked before evaluation began.
type Environment struct {
	scopes []scope
}

// New returns an Environment with a single global scope.
func New() *Environment {
	e := &Environment{}
	e.EnterScope()
	return e
}

// EnterScope pushes a fresh scope, used on entry to a block or
// function call.
func (e *Environment) EnterScope() {
	e.scopes = append(e.scopes, scope{})
}

// LeaveScope pops the innermost scope, returning the addresses that
// were bound in it so the caller can drop them from the heap.
func (e *Environment) LeaveScope() []*object.Addr {
	cur := e.scopes[len(e.scopes)-1]
	addrs := make([]*object.Addr, 0, len(cur))
	for _, a := range cur {
		addrs = append(addrs, a)
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
	return addrs
}

// Define binds name to addr in the innermost scope.
func (e *Environment) Define(name string, addr *object.Addr) {
	e.scopes[len(e.scopes)-1][name] = addr
}

// Get walks scopes from innermost to outermost looking for name.
func (e *Environment) Get(name string) (*object.Addr, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if a, ok := e.scopes[i][name]; ok {
			return a, true
		}
	}
	return nil, false
}

// Snapshot captures only the innermost lexical scope. A closure keeps
// one of these for its defining scope: only the scope live at function
// creation is captured, not a live link to outer scopes.
func (e *Environment) Snapshot() *Environment {
	snap := &Environment{scopes: []scope{{}}}
	merged := snap.scopes[0]
	cur := e.scopes[len(e.scopes)-1]
	for k, v := range cur {
		merged[k] = v
	}
	return snap
}

// Extend returns a new Environment holding a copy of this one's
// innermost scope plus a fresh empty scope on top, used to seed a
// function call's environment from its closure snapshot.
func (e *Environment) Extend() *Environment {
	base := e.Snapshot()
	base.EnterScope()
	return base
}
