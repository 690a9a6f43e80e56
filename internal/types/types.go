// Package types implements Ralix's type algebra: the Type grammar, the
// "satisfies" directional compatibility rule, and Hindley-Milner style
// unification over type variables.
package types

import "fmt"

// Type is any member of the Ralix type grammar.
type Type interface {
	String() string
	// Apply substitutes type variables bound in s, returning a new Type.
	Apply(s Subst) Type
	// FreeTypeVariables returns the TypeVars still free in this type.
	FreeTypeVariables() []*TypeVar
}

// Primitive is a nullary, singleton-like type (Bool, Char, Int, Float,
// String, Null, Void, Never, Unknown).
type Primitive struct {
	Name string
}

func (p *Primitive) String() string                     { return p.Name }
func (p *Primitive) Apply(Subst) Type                    { return p }
func (p *Primitive) FreeTypeVariables() []*TypeVar       { return nil }

var (
	Bool    = &Primitive{"bool"}
	Char    = &Primitive{"char"}
	Int     = &Primitive{"int"}
	Float   = &Primitive{"float"}
	String  = &Primitive{"string"}
	Null    = &Primitive{"null"}
	Void    = &Primitive{"void"}
	Never   = &Primitive{"never"}
	Unknown = &Primitive{"unknown"}
)

// Nullable is `T?`.
type Nullable struct{ Elem Type }

func (n *Nullable) String() string { return n.Elem.String() + "?" }
func (n *Nullable) Apply(s Subst) Type {
	return &Nullable{Elem: n.Elem.Apply(s)}
}
func (n *Nullable) FreeTypeVariables() []*TypeVar { return n.Elem.FreeTypeVariables() }

// Array is `arr[T]`.
type Array struct{ Elem Type }

func (a *Array) String() string              { return "arr[" + a.Elem.String() + "]" }
func (a *Array) Apply(s Subst) Type          { return &Array{Elem: a.Elem.Apply(s)} }
func (a *Array) FreeTypeVariables() []*TypeVar { return a.Elem.FreeTypeVariables() }

// HashMap is `map[K, V]`.
type HashMap struct{ Key, Value Type }

func (h *HashMap) String() string { return fmt.Sprintf("map[%s, %s]", h.Key.String(), h.Value.String()) }
func (h *HashMap) Apply(s Subst) Type {
	return &HashMap{Key: h.Key.Apply(s), Value: h.Value.Apply(s)}
}
func (h *HashMap) FreeTypeVariables() []*TypeVar {
	return append(h.Key.FreeTypeVariables(), h.Value.FreeTypeVariables()...)
}

// Addr is `T*`, a typed heap handle.
type Addr struct{ Elem Type }

func (a *Addr) String() string              { return a.Elem.String() + "*" }
func (a *Addr) Apply(s Subst) Type          { return &Addr{Elem: a.Elem.Apply(s)} }
func (a *Addr) FreeTypeVariables() []*TypeVar { return a.Elem.FreeTypeVariables() }

// AsValue is `type[T]`, the type of a type literal naming T.
type AsValue struct{ Elem Type }

func (v *AsValue) String() string              { return "type[" + v.Elem.String() + "]" }
func (v *AsValue) Apply(s Subst) Type          { return &AsValue{Elem: v.Elem.Apply(s)} }
func (v *AsValue) FreeTypeVariables() []*TypeVar { return v.Elem.FreeTypeVariables() }

// Function is `fn(params) -> R`, optionally generic over Generics.
type Function struct {
	Params    []Type
	Return    Type
	Generics  []*TypeVar
}

func (f *Function) String() string {
	s := "fn("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") -> " + f.Return.String()
}

func (f *Function) Apply(s Subst) Type {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Apply(s)
	}
	return &Function{Params: params, Return: f.Return.Apply(s), Generics: f.Generics}
}

func (f *Function) FreeTypeVariables() []*TypeVar {
	bound := map[string]bool{}
	for _, g := range f.Generics {
		bound[g.Name] = true
	}
	var out []*TypeVar
	for _, p := range f.Params {
		for _, tv := range p.FreeTypeVariables() {
			if !bound[tv.Name] {
				out = append(out, tv)
			}
		}
	}
	for _, tv := range f.Return.FreeTypeVariables() {
		if !bound[tv.Name] {
			out = append(out, tv)
		}
	}
	return out
}

// TypeVar is a generic placeholder, identified by name and a fresh id
// that the checker assigns when it checks the declaring function (so
// two params named T in different functions never unify against each
// other). The parser records generic names only, without ids.
type TypeVar struct {
	Name string
	ID   int
}

func (tv *TypeVar) String() string { return tv.Name }
func (tv *TypeVar) Apply(s Subst) Type {
	if t, ok := s[tv.key()]; ok {
		return t
	}
	return tv
}
func (tv *TypeVar) FreeTypeVariables() []*TypeVar { return []*TypeVar{tv} }
func (tv *TypeVar) key() string                   { return fmt.Sprintf("%s#%d", tv.Name, tv.ID) }

// Equal reports whether two Types are structurally identical (not merely
// compatible — see Satisfies for the directional rule).
func Equal(a, b Type) bool {
	return a.String() == b.String() && sameShape(a, b)
}

// sameShape distinguishes types that happen to print the same (this
// never actually occurs in Ralix's grammar, but guards against future
// additions breaking Equal silently).
func sameShape(a, b Type) bool {
	switch a.(type) {
	case *TypeVar:
		_, ok := b.(*TypeVar)
		return ok
	default:
		return true
	}
}

// Hashable reports whether t may be used as a HashMap key.
func Hashable(t Type) bool {
	switch t.(type) {
	case *Primitive:
		p := t.(*Primitive)
		return p == Bool || p == Char || p == Int || p == String
	default:
		return false
	}
}

// IsNullish reports whether t is Null or a Nullable.
func IsNullish(t Type) bool {
	if t == Null {
		return true
	}
	_, ok := t.(*Nullable)
	return ok
}

// UnwrapNullable strips one layer of Nullable; a non-nullable type is
// returned unchanged (it must never recurse or loop).
func UnwrapNullable(t Type) Type {
	if n, ok := t.(*Nullable); ok {
		return n.Elem
	}
	return t
}

// Satisfies reports whether a value of type `have` may be used where
// `want` is expected. This is a directional relation, not equality:
// Never satisfies everything, everything satisfies Unknown, a non-null
// T satisfies T?, and two function types satisfy each other when params
// are contravariant and the return type covariant (checked structurally
// here, since Ralix has no subtyping beyond these rules).
func Satisfies(have, want Type) bool {
	if want == Unknown {
		return true
	}
	if want == Void {
		return true
	}
	if have == Never {
		return true
	}
	if Equal(have, want) {
		return true
	}
	if wn, ok := want.(*Nullable); ok {
		if have == Null {
			return true
		}
		if hn, ok := have.(*Nullable); ok {
			return Satisfies(hn.Elem, wn.Elem)
		}
		return Satisfies(have, wn.Elem)
	}
	switch w := want.(type) {
	case *Array:
		if h, ok := have.(*Array); ok {
			return Satisfies(h.Elem, w.Elem)
		}
	case *HashMap:
		if h, ok := have.(*HashMap); ok {
			return Satisfies(h.Key, w.Key) && Satisfies(h.Value, w.Value)
		}
	case *Addr:
		if h, ok := have.(*Addr); ok {
			return Equal(h.Elem, w.Elem)
		}
	case *AsValue:
		if h, ok := have.(*AsValue); ok {
			return Satisfies(h.Elem, w.Elem)
		}
	case *Function:
		h, ok := have.(*Function)
		if !ok || len(h.Params) != len(w.Params) {
			return false
		}
		for i := range h.Params {
			if !Satisfies(w.Params[i], h.Params[i]) {
				return false
			}
		}
		return Satisfies(h.Return, w.Return)
	}
	return false
}
