// Package symboltable implements Ralix's compile-time scope stack,
// mapping each identifier to its static Type and whether it is const.
package symboltable

import (
	"fmt"

	"github.com/ralix-lang/ralix/internal/types"
)

// Entry is what a name resolves to at check time.
type Entry struct {
	Type       types.Type
	IsConstant bool
}

type scope map[string]Entry

// SymbolTable is a stack of lexical scopes, innermost last.
type SymbolTable struct {
	scopes []scope
}

// New returns a SymbolTable with a single, empty global scope.
func New() *SymbolTable {
	st := &SymbolTable{}
	st.EnterScope()
	return st
}

// EnterScope pushes a fresh, empty scope.
func (st *SymbolTable) EnterScope() {
	st.scopes = append(st.scopes, scope{})
}

// LeaveScope pops the innermost scope. Calling it on an empty table is
// a programmer error and panics, matching the paired Enter/Leave
// discipline the checker and evaluator both rely on.
func (st *SymbolTable) LeaveScope() {
	if len(st.scopes) == 0 {
		panic("symboltable: LeaveScope on empty stack")
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
}

// Depth returns the number of currently open scopes.
func (st *SymbolTable) Depth() int { return len(st.scopes) }

// Define binds name in the innermost scope, returning an error if name
// is already defined there (redeclaration within the same scope).
func (st *SymbolTable) Define(name string, t types.Type, isConstant bool) error {
	cur := st.scopes[len(st.scopes)-1]
	if _, exists := cur[name]; exists {
		return fmt.Errorf("AlreadyDefined(%s)", name)
	}
	cur[name] = Entry{Type: t, IsConstant: isConstant}
	return nil
}

// Redefine overwrites name's entry in the innermost scope, whether or
// not name is already defined there.
func (st *SymbolTable) Redefine(name string, t types.Type, isConstant bool) {
	st.scopes[len(st.scopes)-1][name] = Entry{Type: t, IsConstant: isConstant}
}

// Resolve walks scopes from innermost to outermost looking for name.
// Unlike the early Rust prototype this does not consume the entry: a
// name remains resolvable after being looked up.
func (st *SymbolTable) Resolve(name string) (Entry, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if e, ok := st.scopes[i][name]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// CurrentScopeHas reports whether name is defined in the innermost
// scope specifically (used to detect shadowing-vs-redeclaration).
func (st *SymbolTable) CurrentScopeHas(name string) bool {
	_, ok := st.scopes[len(st.scopes)-1][name]
	return ok
}
