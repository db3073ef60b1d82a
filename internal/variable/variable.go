// Package variable implements the heap-allocated mutable cell that backs
// every declared binding: exactly one Value plus an immutability flag,
// created by a declaration, an auto-materialised container slot, or a
// host-bound constant, and mutated only through a Reference in lvalue
// mode.
package variable

import (
	"sync/atomic"

	"asteria/internal/failure"
	"asteria/internal/value"
)

// Variable is a reference-counted cell. The refcount here is a logical,
// script-visible accounting device (queried by internal/global's cycle
// collector and by diagnostics) rather than the mechanism that actually
// reclaims memory — Go's own tracing collector already reclaims cycles
// correctly, so duplicating manual refcounting purely to free memory
// would fight the host runtime for no benefit. See DESIGN.md for the
// rationale.
type Variable struct {
	val       value.Value
	immutable bool
	refs      int32
}

// New creates a variable holding v. immutable variables can only be
// produced frozen from birth (host-bound constants) or via Freeze.
func New(v value.Value, immutable bool) *Variable {
	return &Variable{val: v, immutable: immutable}
}

// Get returns the variable's current value.
func (v *Variable) Get() value.Value { return v.val }

// Set stores a new value, failing immutable_assign if frozen.
func (v *Variable) Set(val value.Value) *failure.Failure {
	if v.immutable {
		return failure.New(failure.ImmutableAssign, "cannot assign to an immutable variable")
	}
	v.val = val
	return nil
}

// ForceSet stores a new value bypassing the immutability check.
// internal/reference does not use it: a write through a reference whose
// root is an immutable variable fails, whether or not it has a path.
func (v *Variable) ForceSet(val value.Value) { v.val = val }

// Freeze sets the immutable flag. Idempotent.
func (v *Variable) Freeze() { v.immutable = true }

func (v *Variable) IsImmutable() bool { return v.immutable }

// Retain/Release maintain the logical refcount used by the cycle
// collector (internal/global) to recognise variables that are only kept
// alive by a reference cycle among scopes and closures.
func (v *Variable) Retain()  { atomic.AddInt32(&v.refs, 1) }
func (v *Variable) Release() { atomic.AddInt32(&v.refs, -1) }
func (v *Variable) RefCount() int32 { return atomic.LoadInt32(&v.refs) }

// Variable identity is just Go pointer equality; no method needed,
// callers compare *Variable pointers directly.
