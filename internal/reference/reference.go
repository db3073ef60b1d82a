// Package reference implements the lvalue/rvalue path abstraction: a
// Reference is a root (constant, temporary, variable, or an
// uninstantiated-parameter placeholder) plus zero or more path modifiers
// that are re-resolved from scratch on every access — no interior pointer
// is ever cached across suspensions.
package reference

import (
	"asteria/internal/failure"
	"asteria/internal/value"
	"asteria/internal/variable"
)

// MaxArrayLength bounds automatic array extension during path writes; an
// attempt to grow past it fails with failure.Resource.
const MaxArrayLength = 1 << 24

type rootKind uint8

const (
	rootConstant rootKind = iota
	rootTemporary
	rootVariable
	rootPlaceholder
)

type modifierKind uint8

const (
	modArrayIndex modifierKind = iota
	modObjectKey
)

// Modifier is one path step: either an array index (negative = from end)
// or an object key.
type Modifier struct {
	kind  modifierKind
	index int64
	key   string
}

func ArrayIndex(i int64) Modifier  { return Modifier{kind: modArrayIndex, index: i} }
func ObjectKey(k string) Modifier  { return Modifier{kind: modObjectKey, key: k} }

// Reference is a root plus an ordered path of modifiers.
type Reference struct {
	kind  rootKind
	cval  value.Value
	vvar  *variable.Variable
	mods  []Modifier
}

// Constant builds an rvalue reference over a fixed value. Writes fail
// with failure.NotAssignable.
func Constant(v value.Value) *Reference { return &Reference{kind: rootConstant, cval: v} }

// Temporary builds an rvalue reference over a value owned by the current
// evaluating stack frame.
func Temporary(v value.Value) *Reference { return &Reference{kind: rootTemporary, cval: v} }

// FromVariable builds an lvalue reference over a heap variable.
func FromVariable(v *variable.Variable) *Reference { return &Reference{kind: rootVariable, vvar: v} }

// Placeholder builds a reference standing in for an uninstantiated
// variadic/parameter slot; it behaves like Temporary(null).
func Placeholder() *Reference { return &Reference{kind: rootPlaceholder, cval: value.Null_} }

func (r *Reference) IsConstant() bool  { return r.kind == rootConstant }
func (r *Reference) IsTemporary() bool { return r.kind == rootTemporary }

// Variable exposes the underlying cell for reference-equality checks and
// for the function runtime's __this binding; nil for non-variable roots.
func (r *Reference) Variable() *variable.Variable {
	if r.kind == rootVariable {
		return r.vvar
	}
	return nil
}

// Clone returns an independent copy sharing the same root and a fresh
// copy of the path, so zooming into the clone never mutates the
// original — used wherever one evaluated reference must be read as both
// a call receiver and, separately, zoomed into to find the callee.
func (r *Reference) Clone() *Reference {
	c := *r
	if r.mods != nil {
		c.mods = append([]Modifier(nil), r.mods...)
	}
	return &c
}

func (r *Reference) rootValue() value.Value {
	if r.kind == rootVariable {
		return r.vvar.Get()
	}
	return r.cval
}

// ZoomIn appends a modifier, returning the same Reference for chaining.
func (r *Reference) ZoomIn(m Modifier) *Reference {
	r.mods = append(r.mods, m)
	return r
}

// ZoomOut drops the last modifier, or — if already at the root — resets
// this Reference to constant(null).
func (r *Reference) ZoomOut() *Reference {
	if len(r.mods) == 0 {
		r.kind = rootConstant
		r.cval = value.Null_
		r.vvar = nil
		return r
	}
	r.mods = r.mods[:len(r.mods)-1]
	return r
}

func normalizeIndex(index int64, length int) int64 {
	n := index
	if n < 0 {
		n += int64(length)
	}
	return n
}

// Read resolves the full path and returns the addressed value. Reading
// never mutates the container.
func (r *Reference) Read() (value.Value, *failure.Failure) {
	cur := r.rootValue()
	for i, m := range r.mods {
		last := i == len(r.mods)-1
		switch m.kind {
		case modArrayIndex:
			if cur.Kind() != value.ArrayKind {
				return value.Value{}, failure.New(failure.TypeMismatch, "array index applied to %s", cur.Kind())
			}
			arr := cur.Array()
			n := normalizeIndex(m.index, len(arr.Elements))
			if n < 0 || n >= int64(len(arr.Elements)) {
				return value.Null_, nil
			}
			cur = arr.Elements[n]
		case modObjectKey:
			if cur.Kind() != value.ObjectKind {
				return value.Value{}, failure.New(failure.TypeMismatch, "object key applied to %s", cur.Kind())
			}
			v, ok := cur.Object().Get(m.key)
			if !ok {
				if !last {
					return value.Value{}, failure.New(failure.UnsetMember, "missing object key %q", m.key)
				}
				return value.Null_, nil
			}
			cur = v
		}
	}
	return cur, nil
}

// Write resolves the path, auto-materialising array slots and object
// keys as it goes, and stores newVal at the addressed slot.
func (r *Reference) Write(newVal value.Value) (value.Value, *failure.Failure) {
	switch r.kind {
	case rootConstant, rootTemporary, rootPlaceholder:
		return value.Value{}, failure.New(failure.NotAssignable, "cannot write through a constant or temporary reference")
	}
	if r.vvar.IsImmutable() {
		return value.Value{}, failure.New(failure.ImmutableAssign, "cannot write through an immutable variable")
	}
	if len(r.mods) == 0 {
		if err := r.vvar.Set(newVal); err != nil {
			return value.Value{}, err
		}
		return newVal, nil
	}
	cur := r.vvar.Get()
	for i, m := range r.mods {
		last := i == len(r.mods)-1
		switch m.kind {
		case modArrayIndex:
			if cur.Kind() != value.ArrayKind {
				return value.Value{}, failure.New(failure.TypeMismatch, "array index applied to %s", cur.Kind())
			}
			arr := cur.Array()
			n, ferr := extendArrayForIndex(arr, m.index)
			if ferr != nil {
				return value.Value{}, ferr
			}
			if last {
				arr.Elements[n] = newVal
				return newVal, nil
			}
			cur = arr.Elements[n]
		case modObjectKey:
			if cur.Kind() != value.ObjectKind {
				return value.Value{}, failure.New(failure.TypeMismatch, "object key applied to %s", cur.Kind())
			}
			obj := cur.Object()
			if last {
				obj.Set(m.key, newVal)
				return newVal, nil
			}
			existing, ok := obj.Get(m.key)
			if !ok {
				obj.Set(m.key, value.Null_)
				existing = value.Null_
			}
			cur = existing
		}
	}
	return value.Value{}, nil
}

// extendArrayForIndex implements write-side auto-extension: negative
// overflow prepends nulls and rebinds index 0; overflow past the end
// appends nulls. Returns the normalised, now-always-valid index.
func extendArrayForIndex(arr *value.Array, index int64) (int64, *failure.Failure) {
	length := int64(len(arr.Elements))
	n := index
	if n < 0 {
		n += length
	}
	if n < 0 {
		count := -n
		if length+count > MaxArrayLength {
			return 0, failure.New(failure.Resource, "array grown past implementation limit (prepend %d)", count)
		}
		prefix := make([]value.Value, count)
		arr.Elements = append(prefix, arr.Elements...)
		return 0, nil
	}
	if n >= length {
		count := n - length + 1
		if length+count > MaxArrayLength {
			return 0, failure.New(failure.Resource, "array grown past implementation limit (append %d)", count)
		}
		arr.Elements = append(arr.Elements, make([]value.Value, count)...)
	}
	return n, nil
}

// Unset removes the value at the addressed slot — an array element is
// reset to null in place (the array's length is never changed by unset);
// an object key is removed outright. Fails failure.NoModifier if this
// reference has no path at all.
func (r *Reference) Unset() (value.Value, *failure.Failure) {
	if len(r.mods) == 0 {
		return value.Value{}, failure.New(failure.NoModifier, "unset() requires a reference with a path")
	}
	cur := r.rootValue()
	for i, m := range r.mods {
		last := i == len(r.mods)-1
		switch m.kind {
		case modArrayIndex:
			if cur.Kind() != value.ArrayKind {
				return value.Value{}, failure.New(failure.TypeMismatch, "array index applied to %s", cur.Kind())
			}
			arr := cur.Array()
			n := normalizeIndex(m.index, len(arr.Elements))
			if n < 0 || n >= int64(len(arr.Elements)) {
				return value.Null_, nil
			}
			if last {
				old := arr.Elements[n]
				arr.Elements[n] = value.Null_
				return old, nil
			}
			cur = arr.Elements[n]
		case modObjectKey:
			if cur.Kind() != value.ObjectKind {
				return value.Value{}, failure.New(failure.TypeMismatch, "object key applied to %s", cur.Kind())
			}
			obj := cur.Object()
			if last {
				old, ok := obj.Delete(m.key)
				if !ok {
					return value.Null_, nil
				}
				return old, nil
			}
			v, ok := obj.Get(m.key)
			if !ok {
				return value.Null_, nil
			}
			cur = v
		}
	}
	return value.Value{}, nil
}
