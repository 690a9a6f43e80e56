// Package object defines Ralix's runtime value representation: the
// tagged Object union the evaluator produces and stores on the heap,
// plus the move-vs-copy rule that governs what happens when an object
// is read back out of a variable.
package object

import (
	"fmt"
	"strings"

	"github.com/ralix-lang/ralix/internal/types"
)

// Kind tags an Object's runtime representation.
type Kind int

const (
	IntKind Kind = iota
	FloatKind
	CharKind
	BoolKind
	StringKind
	NullKind
	TypeKind
	AddrKind
	FunctionKind
	ArrayKind
	HashMapKind
)

// Object is any Ralix runtime value.
type Object interface {
	Kind() Kind
	Type() types.Type
	Inspect() string
}

type Int struct{ Value int64 }

func (o *Int) Kind() Kind        { return IntKind }
func (o *Int) Type() types.Type  { return types.Int }
func (o *Int) Inspect() string   { return fmt.Sprintf("%d", o.Value) }

type Float struct{ Value float64 }

func (o *Float) Kind() Kind       { return FloatKind }
func (o *Float) Type() types.Type { return types.Float }
func (o *Float) Inspect() string  { return fmt.Sprintf("%g", o.Value) }

type Char struct{ Value rune }

func (o *Char) Kind() Kind       { return CharKind }
func (o *Char) Type() types.Type { return types.Char }
func (o *Char) Inspect() string  { return "'" + string(o.Value) + "'" }

type Bool struct{ Value bool }

func (o *Bool) Kind() Kind       { return BoolKind }
func (o *Bool) Type() types.Type { return types.Bool }
func (o *Bool) Inspect() string  { return fmt.Sprintf("%t", o.Value) }

// String is shared by reference (its backing Go string is immutable),
// so copying it on read is a cheap, safe bit-copy of the header.
type String struct{ Value string }

func (o *String) Kind() Kind       { return StringKind }
func (o *String) Type() types.Type { return types.String }
func (o *String) Inspect() string  { return o.Value }

type Null struct{}

func (o *Null) Kind() Kind       { return NullKind }
func (o *Null) Type() types.Type { return types.Null }
func (o *Null) Inspect() string  { return "null" }

// TypeValue is a first-class Type used as a value, e.g. the result of
// `typeof(x)` or a type literal passed as a generic argument.
type TypeValue struct{ Value types.Type }

func (o *TypeValue) Kind() Kind       { return TypeKind }
func (o *TypeValue) Type() types.Type { return &types.AsValue{Elem: o.Value} }
func (o *TypeValue) Inspect() string  { return o.Value.String() }

// Addr is a typed heap handle: an index into a Heap plus the static
// element type. Reading a handle from another Heap session is caught
// (see heap.Heap); the element type is used for display and typing
// only and is not compared against the stored value on read.
type Addr struct {
	Index     int
	ElemType  types.Type
	SessionID string // the owning Heap's session id; see heap.Heap
}

func (o *Addr) Kind() Kind       { return AddrKind }
func (o *Addr) Type() types.Type { return &types.Addr{Elem: o.ElemType} }
func (o *Addr) Inspect() string  { return fmt.Sprintf("<addr to a `%s`>", o.ElemType.String()) }

// Function is shared by reference: calling it reads the same captured
// environment snapshot from every copy.
type Function struct {
	Name       string
	Params     []FunctionParam
	ReturnType types.Type
	Generics   []*types.TypeVar
	Body       interface{} // *ast.Scope; kept as interface{} to avoid an import cycle with the evaluator
	Closure    interface{} // *environment.Environment, same reason
}

// FunctionParam is one resolved parameter of a Function value.
type FunctionParam struct {
	Name string
	Type types.Type
}

func (o *Function) Kind() Kind { return FunctionKind }
func (o *Function) Type() types.Type {
	params := make([]types.Type, len(o.Params))
	for i, p := range o.Params {
		params[i] = p.Type
	}
	return &types.Function{Params: params, Return: o.ReturnType, Generics: o.Generics}
}
func (o *Function) Inspect() string {
	names := make([]string, len(o.Params))
	for i, p := range o.Params {
		names[i] = p.Type.String() + " " + p.Name
	}
	return fmt.Sprintf("fn %s(%s) -> %s", o.Name, strings.Join(names, ", "), o.ReturnType.String())
}

// Array is a mutable aggregate: it is not copied on read. An identifier
// read hands back the same Array, and the binding it came from stays
// live, so both names share one value.
type Array struct {
	ElemType types.Type
	Elements []Object
}

func (o *Array) Kind() Kind       { return ArrayKind }
func (o *Array) Type() types.Type { return &types.Array{Elem: o.ElemType} }
func (o *Array) Inspect() string {
	parts := make([]string, len(o.Elements))
	for i, e := range o.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// HashMap is a mutable aggregate: like Array, it is not copied on read
// and the binding it came from stays live.
// Keys are restricted to hashable types (types.Hashable) and stored
// under their Inspect() rendering so Int/Bool/Char/String keys compare
// structurally rather than by pointer identity.
type HashMap struct {
	KeyType   types.Type
	ValueType types.Type
	Keys      map[string]Object
	Values    map[string]Object
}

// NewHashMap returns an empty HashMap of the given key/value type.
func NewHashMap(key, value types.Type) *HashMap {
	return &HashMap{KeyType: key, ValueType: value, Keys: map[string]Object{}, Values: map[string]Object{}}
}

func (o *HashMap) Kind() Kind       { return HashMapKind }
func (o *HashMap) Type() types.Type { return &types.HashMap{Key: o.KeyType, Value: o.ValueType} }
func (o *HashMap) Inspect() string {
	parts := make([]string, 0, len(o.Values))
	for k, key := range o.Keys {
		parts = append(parts, key.Inspect()+": "+o.Values[k].Inspect())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// HashKey renders an Object usable as a HashMap key into its map
// storage key. Only hashable objects (types.Hashable) reach this.
func HashKey(o Object) string {
	return o.Inspect()
}

// CopyBits reports whether o bitwise-copies on identifier read, and
// returns that copy. Scalars and reference-shared values (Int, Char,
// Float, Bool, String, Null, TypeValue, Addr, Function) copy; aggregates
// (Array, HashMap) do not, and the caller hands back the original
// value instead.
func CopyBits(o Object) (Object, bool) {
	switch v := o.(type) {
	case *Int:
		c := *v
		return &c, true
	case *Float:
		c := *v
		return &c, true
	case *Char:
		c := *v
		return &c, true
	case *Bool:
		c := *v
		return &c, true
	case *String:
		c := *v
		return &c, true
	case *Null:
		return &Null{}, true
	case *TypeValue:
		c := *v
		return &c, true
	case *Addr:
		c := *v
		return &c, true
	case *Function:
		return v, true // shared by reference; the pointer itself is what's copied
	default:
		return nil, false
	}
}

// IsTruthy reports o's boolean coercion, used by if/else conditions.
func IsTruthy(o Object) bool {
	b, ok := o.(*Bool)
	return ok && b.Value
}
