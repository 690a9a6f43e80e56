// Package heap implements Ralix's append-only object store. Every
// aggregate or address-of'd value lives in a Heap slot, addressed by a
// typed object.Addr handle.
package heap

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ralix-lang/ralix/internal/object"
)

// Heap is an append-only vector of live Objects, stamped with a
// session id so an object.Addr minted by one Heap can be rejected
// (rather than silently misread) if it is ever presented to another.
type Heap struct {
	store     []object.Object
	SessionID string
}

// New returns an empty Heap with a fresh session id.
func New() *Heap {
	return &Heap{SessionID: uuid.NewString()}
}

// Alloc appends v and returns a typed handle to it.
func (h *Heap) Alloc(v object.Object) *object.Addr {
	h.store = append(h.store, v)
	return &object.Addr{Index: len(h.store) - 1, ElemType: v.Type(), SessionID: h.SessionID}
}

// ErrStaleAddress is returned by Read/Write when an Addr from a
// different Heap session is presented.
type ErrStaleAddress struct{ Addr *object.Addr }

func (e *ErrStaleAddress) Error() string {
	return fmt.Sprintf("stale address: %s does not belong to this heap", e.Addr.Inspect())
}

func (h *Heap) check(addr *object.Addr) error {
	if addr.SessionID != "" && addr.SessionID != h.SessionID {
		return &ErrStaleAddress{Addr: addr}
	}
	if addr.Index < 0 || addr.Index >= len(h.store) {
		return fmt.Errorf("address out of range: %d", addr.Index)
	}
	return nil
}

// Read returns the object addr points to.
func (h *Heap) Read(addr *object.Addr) (object.Object, error) {
	if err := h.check(addr); err != nil {
		return nil, err
	}
	return h.store[addr.Index], nil
}

// Write replaces the object addr points to.
func (h *Heap) Write(addr *object.Addr, v object.Object) error {
	if err := h.check(addr); err != nil {
		return err
	}
	h.store[addr.Index] = v
	return nil
}

// Len reports how many slots have ever been allocated (drop does not
// shrink it; see Drop).
func (h *Heap) Len() int { return len(h.store) }

// Drop clears the slot's content so it can be garbage collected by Go
// even though the slot index remains reserved (the heap never
// compacts, matching its append-only design).
func (h *Heap) Drop(addr *object.Addr) error {
	if err := h.check(addr); err != nil {
		return err
	}
	h.store[addr.Index] = nil
	return nil
}
