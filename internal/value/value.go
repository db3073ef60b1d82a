// Package value implements Asteria's tagged value model: the untyped
// calculus of null, boolean, integer, real, string, opaque, function,
// array, and object that every reference, scope, and expression result
// ultimately reduces to.
//
// Containers hold values inline by move; a Value never implicitly aliases
// another Value's backing store across an assignment — DeepClone is
// explicit the way simple_function.cpp / reference.cpp treat
// Stored_value.
package value

import (
	"asteria/internal/failure"
)

// Kind tags the active alternative of the Value sum.
type Kind uint8

const (
	Null Kind = iota
	Boolean
	Integer
	Real
	String
	OpaqueKind
	FunctionKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case String:
		return "string"
	case OpaqueKind:
		return "opaque"
	case FunctionKind:
		return "function"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged sum at the center of the language: null, boolean,
// integer, real, string, opaque, function, array, object. It is a
// plain comparable-by-method struct, not an interface: scalars are held
// inline, containers and callables are held by pointer so that sharing a
// Value shares identity the way a reference into a Variable's cell would.
type Value struct {
	kind Kind
	b    bool
	i    int64
	r    float64
	s    string
	op   *Opaque
	fn   *Function
	arr  *Array
	obj  *Object
}

// Opaque is a host-owned handle. Two opaque values are equal iff they
// share the same identity (pointer equality), never by structural data.
type Opaque struct {
	Tag  string
	Data interface{}
}

// Array is the mutable backing store of an array Value.
type Array struct {
	Elements []Value
}

// Object is the mutable, insertion-ordered backing store of an object
// Value. Keys are unique; order of first insertion is preserved across
// re-assignment of an existing key.
type Object struct {
	keys []string
	m    map[string]Value
}

// NewObject returns an empty, ready-to-use Object.
func NewObject() *Object {
	return &Object{m: make(map[string]Value)}
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.m[key]
	return v, ok
}

// Set inserts or overwrites key, preserving original insertion order.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.m[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.m[key] = v
}

// Delete removes key, if present, returning its prior value.
func (o *Object) Delete(key string) (Value, bool) {
	v, ok := o.m[key]
	if !ok {
		return Null_, false
	}
	delete(o.m, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns keys in insertion order. The caller must not mutate it.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Null_ is the canonical null value (named with a trailing underscore to
// avoid shadowing the Null Kind constant).
var Null_ = Value{kind: Null}

func Bool(b bool) Value         { return Value{kind: Boolean, b: b} }
func Int(i int64) Value         { return Value{kind: Integer, i: i} }
func Real(r float64) Value      { return Value{kind: Real, r: r} }
func Str(s string) Value        { return Value{kind: String, s: s} }
func OpaqueVal(o *Opaque) Value { return Value{kind: OpaqueKind, op: o} }
func FuncVal(f *Function) Value { return Value{kind: FunctionKind, fn: f} }
func ArrayVal(a *Array) Value   { return Value{kind: ArrayKind, arr: a} }
func ObjectVal(o *Object) Value { return Value{kind: ObjectKind, obj: o} }

func NewArray(elems ...Value) Value {
	return ArrayVal(&Array{Elements: elems})
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

func (v Value) Bool() bool       { return v.b }
func (v Value) Int() int64       { return v.i }
func (v Value) Float() float64   { return v.r }
func (v Value) String_() string  { return v.s }
func (v Value) Opaque() *Opaque  { return v.op }
func (v Value) Function() *Function { return v.fn }
func (v Value) Array() *Array    { return v.arr }
func (v Value) Object() *Object  { return v.obj }

// Truthy reports the value's boolean coercion: null, false, integer 0,
// real 0.0, and the empty string are false; everything else, including
// NaN, is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case Null:
		return false
	case Boolean:
		return v.b
	case Integer:
		return v.i != 0
	case Real:
		return v.r != 0 // NaN != 0 is true, matching "NaN is true"
	case String:
		return v.s != ""
	default:
		return true
	}
}

// TypeMismatch builds a standard type_mismatch failure naming the actual
// kind found where kind `want` was required.
func (v Value) TypeMismatch(context, want string) *failure.Failure {
	return failure.New(failure.TypeMismatch, "%s requires %s, got %s", context, want, v.kind)
}

// FailureRender implements failure.Payload so a Value can be attached to
// a `user` failure raised by `throw`.
func (v Value) FailureRender() string { return v.Render(true) }
